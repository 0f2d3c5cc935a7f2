package appointment

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/kbaidoo/EduMeet-server/cmd/models"
	"github.com/kbaidoo/EduMeet-server/cmd/utils"
	"github.com/kbaidoo/EduMeet-server/service/notification"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "app.db")), &gorm.Config{})
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.Teacher{}, &models.AvailabilitySlot{},
		&models.Appointment{}, &models.Message{}); err != nil {
		t.Fatalf("migrating test database: %v", err)
	}
	return db
}

func seedAppointment(t *testing.T, db *gorm.DB) (models.Teacher, models.User, models.Appointment) {
	t.Helper()
	teacher := models.Teacher{
		Name: "Dr. Owusu", Email: "owusu@example.com", PasswordHash: "x",
		Department: "mathematics", IsApproved: true,
	}
	if err := db.Create(&teacher).Error; err != nil {
		t.Fatalf("seeding teacher: %v", err)
	}
	student := models.User{
		Username: "ama", Email: "ama@example.com", PasswordHash: "x",
		Role: models.RoleUser, IsApproved: true,
	}
	if err := db.Create(&student).Error; err != nil {
		t.Fatalf("seeding student: %v", err)
	}
	appt := models.Appointment{
		TeacherID: teacher.ID, StudentID: student.ID,
		Date: "2025-09-01", StartTime: "09:00", EndTime: "09:30",
		Subject: "Algebra revision", Status: models.StatusPending,
	}
	if err := db.Create(&appt).Error; err != nil {
		t.Fatalf("seeding appointment: %v", err)
	}
	return teacher, student, appt
}

func asSession(req *http.Request, id uint, role string) *http.Request {
	ctx := context.WithValue(req.Context(), utils.UserIDKey, id)
	ctx = context.WithValue(ctx, utils.RoleKey, role)
	return req.WithContext(ctx)
}

func TestUpdateAppointmentStatusSecondDecisionFails(t *testing.T) {
	db := setupDB(t)
	teacher, _, appt := seedAppointment(t, db)
	h := NewAppointmentHandler(db, notification.Noop{})

	decide := func(status string) *httptest.ResponseRecorder {
		body := strings.NewReader(`{"status":"` + status + `"}`)
		req := httptest.NewRequest("PATCH", "/appointments/teacher/appointments/1", body)
		req = mux.SetURLVars(req, map[string]string{"id": strconv.FormatUint(uint64(appt.ID), 10)})
		rec := httptest.NewRecorder()
		h.UpdateAppointmentStatus(rec, asSession(req, teacher.ID, models.RoleTeacher))
		return rec
	}

	if rec := decide(models.StatusApproved); rec.Code != http.StatusOK {
		t.Fatalf("first decision: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	// the state is terminal now, a second decision must lose
	if rec := decide(models.StatusRejected); rec.Code != http.StatusBadRequest {
		t.Fatalf("second decision: expected 400, got %d: %s", rec.Code, rec.Body.String())
	}

	var got models.Appointment
	if err := db.First(&got, appt.ID).Error; err != nil {
		t.Fatalf("reloading appointment: %v", err)
	}
	if got.Status != models.StatusApproved {
		t.Fatalf("expected status to reflect only the first decision, got %s", got.Status)
	}
}

func TestUpdateAppointmentStatusWrongTeacher(t *testing.T) {
	db := setupDB(t)
	_, _, appt := seedAppointment(t, db)
	h := NewAppointmentHandler(db, notification.Noop{})

	body := strings.NewReader(`{"status":"approved"}`)
	req := httptest.NewRequest("PATCH", "/appointments/teacher/appointments/1", body)
	req = mux.SetURLVars(req, map[string]string{"id": strconv.FormatUint(uint64(appt.ID), 10)})
	rec := httptest.NewRecorder()
	h.UpdateAppointmentStatus(rec, asSession(req, appt.TeacherID+1, models.RoleTeacher))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for another teacher's appointment, got %d", rec.Code)
	}
}

func TestCancelAppointmentOnlyFromPending(t *testing.T) {
	db := setupDB(t)
	_, student, appt := seedAppointment(t, db)
	h := NewAppointmentHandler(db, notification.Noop{})

	cancel := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest("PATCH", "/appointments/1/cancel", nil)
		req = mux.SetURLVars(req, map[string]string{"id": strconv.FormatUint(uint64(appt.ID), 10)})
		rec := httptest.NewRecorder()
		h.CancelAppointment(rec, asSession(req, student.ID, models.RoleUser))
		return rec
	}

	if rec := cancel(); rec.Code != http.StatusOK {
		t.Fatalf("cancelling pending: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if rec := cancel(); rec.Code != http.StatusBadRequest {
		t.Fatalf("cancelling twice: expected 400, got %d: %s", rec.Code, rec.Body.String())
	}

	var got models.Appointment
	if err := db.First(&got, appt.ID).Error; err != nil {
		t.Fatalf("reloading appointment: %v", err)
	}
	if got.Status != models.StatusCancelled {
		t.Fatalf("expected cancelled, got %s", got.Status)
	}
}

func TestCancelAppointmentRejectsDecidedState(t *testing.T) {
	db := setupDB(t)
	_, student, appt := seedAppointment(t, db)
	if err := db.Model(&appt).Update("status", models.StatusApproved).Error; err != nil {
		t.Fatalf("seeding approved state: %v", err)
	}
	h := NewAppointmentHandler(db, notification.Noop{})

	req := httptest.NewRequest("PATCH", "/appointments/1/cancel", nil)
	req = mux.SetURLVars(req, map[string]string{"id": strconv.FormatUint(uint64(appt.ID), 10)})
	rec := httptest.NewRecorder()
	h.CancelAppointment(rec, asSession(req, student.ID, models.RoleUser))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 cancelling an approved appointment, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), models.StatusApproved) {
		t.Fatalf("expected the blocking status in the error, got %q", rec.Body.String())
	}
}
