package auth

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/kbaidoo/EduMeet-server/cmd/models"
	"github.com/kbaidoo/EduMeet-server/service/notification"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "app.db")), &gorm.Config{})
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.Teacher{}, &models.AvailabilitySlot{}); err != nil {
		t.Fatalf("migrating test database: %v", err)
	}
	return db
}

func TestRegisterAcceptsFreshEmail(t *testing.T) {
	db := setupDB(t)
	h := NewHandler(db, notification.Noop{}, "admin@example.com")

	body := strings.NewReader(`{"username":"kwame","email":"kwame@example.com","password":"longenough"}`)
	rec := httptest.NewRecorder()
	h.HandleRegister(rec, httptest.NewRequest("POST", "/auth/register", body))

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestRegisterRejectsTeacherEmail(t *testing.T) {
	db := setupDB(t)
	if err := db.Create(&models.Teacher{
		Name: "Dr. Owusu", Email: "owusu@example.com", PasswordHash: "x", Department: "physics",
	}).Error; err != nil {
		t.Fatalf("seeding teacher: %v", err)
	}
	h := NewHandler(db, notification.Noop{}, "admin@example.com")

	// a user row with a teacher's email would shadow the teacher at login
	body := strings.NewReader(`{"username":"kwame","email":"owusu@example.com","password":"longenough"}`)
	rec := httptest.NewRecorder()
	h.HandleRegister(rec, httptest.NewRequest("POST", "/auth/register", body))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for a teacher's email, got %d", rec.Code)
	}
	var count int64
	db.Model(&models.User{}).Count(&count)
	if count != 0 {
		t.Fatalf("user row created despite email collision")
	}
}

func TestRegisterTeacherRejectsUserEmail(t *testing.T) {
	db := setupDB(t)
	if err := db.Create(&models.User{
		Username: "ama", Email: "ama@example.com", PasswordHash: "x", Role: models.RoleUser,
	}).Error; err != nil {
		t.Fatalf("seeding user: %v", err)
	}
	h := NewHandler(db, notification.Noop{}, "admin@example.com")

	body := strings.NewReader(`{"name":"Ama Mensah","email":"ama@example.com","password":"longenough","department":"physics"}`)
	rec := httptest.NewRecorder()
	h.HandleRegisterTeacher(rec, httptest.NewRequest("POST", "/auth/register/teacher", body))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for a user's email, got %d", rec.Code)
	}
	var count int64
	db.Model(&models.Teacher{}).Count(&count)
	if count != 0 {
		t.Fatalf("teacher row created despite email collision")
	}
}

func TestProfileUpdateRejectsCrossTableEmail(t *testing.T) {
	db := setupDB(t)
	if err := db.Create(&models.Teacher{
		Name: "Dr. Owusu", Email: "owusu@example.com", PasswordHash: "x", Department: "physics",
	}).Error; err != nil {
		t.Fatalf("seeding teacher: %v", err)
	}
	user := models.User{Username: "ama", Email: "ama@example.com", PasswordHash: "x", Role: models.RoleUser}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("seeding user: %v", err)
	}
	h := NewHandler(db, notification.Noop{}, "admin@example.com")

	rec := httptest.NewRecorder()
	h.updateUserProfile(rec, user.ID, "", "owusu@example.com", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 moving onto a teacher's email, got %d", rec.Code)
	}

	// keeping your own email is not a collision
	rec = httptest.NewRecorder()
	h.updateUserProfile(rec, user.ID, "", "ama@example.com", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 keeping own email, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestImageRouteResolvesAtRouterRoot(t *testing.T) {
	h := NewHandler(nil, notification.Noop{}, "")

	router := mux.NewRouter()
	h.RegisterRoutes(router.PathPrefix("/api/v1").Subrouter())
	h.RegisterImageRoutes(router)

	// SaveImage stores "/images/<file>" paths, so this is the URL clients hit
	var match mux.RouteMatch
	if !router.Match(httptest.NewRequest("GET", "/images/avatar.png", nil), &match) || match.MatchErr != nil {
		t.Fatalf("stored /images/... path does not resolve on the router")
	}
}

func TestServeImageRejectsTraversal(t *testing.T) {
	h := NewHandler(nil, notification.Noop{}, "")

	for _, name := range []string{"..", "..%2Fsecret", `..\secret`} {
		req := mux.SetURLVars(httptest.NewRequest("GET", "/images/x", nil), map[string]string{"filename": name})
		rec := httptest.NewRecorder()
		h.ServeImage(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 for %q, got %d", name, rec.Code)
		}
	}
}
