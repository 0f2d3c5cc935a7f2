package appointment

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"gorm.io/gorm"

	"github.com/kbaidoo/EduMeet-server/cmd/models"
	"github.com/kbaidoo/EduMeet-server/cmd/utils"
	"github.com/kbaidoo/EduMeet-server/service/notification"
)

type AppointmentHandler struct {
	db       *gorm.DB
	notifier notification.Notifier
}

func NewAppointmentHandler(db *gorm.DB, notifier notification.Notifier) *AppointmentHandler {
	return &AppointmentHandler{db: db, notifier: notifier}
}

func (h *AppointmentHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/appointments/book", utils.RequireRole(models.RoleUser, h.BookAppointment)).Methods("POST")
	router.HandleFunc("/appointments/my-appointments", utils.RequireRole(models.RoleUser, h.GetMyAppointments)).Methods("GET")
	router.HandleFunc("/appointments/{id}/cancel", utils.RequireRole(models.RoleUser, h.CancelAppointment)).Methods("PATCH")
	router.HandleFunc("/appointments/teacher/appointments", utils.RequireRole(models.RoleTeacher, h.GetTeacherAppointments)).Methods("GET")
	router.HandleFunc("/appointments/teacher/appointments/{id}", utils.RequireRole(models.RoleTeacher, h.UpdateAppointmentStatus)).Methods("PATCH")
	router.HandleFunc("/appointments/teacher/availability", utils.RequireRole(models.RoleTeacher, h.GetAvailability)).Methods("GET")
	router.HandleFunc("/appointments/teacher/availability", utils.RequireRole(models.RoleTeacher, h.UpdateAvailability)).Methods("POST")
}

// BookAppointment creates a pending appointment after checking the requested
// slot against the teacher's weekly window for that weekday. Both sides get a
// best-effort email; booking success depends only on the row being written.
func (h *AppointmentHandler) BookAppointment(w http.ResponseWriter, r *http.Request) {
	var bookingRequest struct {
		TeacherID uint   `json:"teacherId"`
		Date      string `json:"date"`
		StartTime string `json:"startTime"`
		EndTime   string `json:"endTime"`
		Purpose   string `json:"purpose"`
		Message   string `json:"message"`
	}

	if err := json.NewDecoder(r.Body).Decode(&bookingRequest); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if bookingRequest.Purpose == "" {
		http.Error(w, "Purpose is required", http.StatusBadRequest)
		return
	}
	if !isValidClock(bookingRequest.StartTime) || !isValidClock(bookingRequest.EndTime) {
		http.Error(w, "Invalid time format (HH:mm)", http.StatusBadRequest)
		return
	}

	studentID, _ := utils.GetUserIDFromContext(r)

	var student models.User
	if err := h.db.First(&student, studentID).Error; err != nil {
		http.Error(w, "Student not found", http.StatusUnauthorized)
		return
	}

	var teacher models.Teacher
	if err := h.db.Preload("Availability", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC")
	}).First(&teacher, bookingRequest.TeacherID).Error; err != nil {
		http.Error(w, "Teacher not found", http.StatusNotFound)
		return
	}

	day, err := weekdayName(bookingRequest.Date)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	window, ok := windowFor(teacher.Availability, day)
	if !ok {
		http.Error(w, fmt.Sprintf("Teacher has no availability on %s", day), http.StatusBadRequest)
		return
	}
	if !slotWithin(window, bookingRequest.StartTime, bookingRequest.EndTime) {
		http.Error(w, fmt.Sprintf("Requested slot is outside the teacher's %s availability (%s - %s)",
			day, window.StartTime, window.EndTime), http.StatusBadRequest)
		return
	}

	appointment := models.Appointment{
		TeacherID: teacher.ID,
		StudentID: student.ID,
		Date:      bookingRequest.Date,
		StartTime: bookingRequest.StartTime,
		EndTime:   bookingRequest.EndTime,
		Subject:   bookingRequest.Purpose,
		Message:   bookingRequest.Message,
		Status:    models.StatusPending,
	}

	if err := h.db.Create(&appointment).Error; err != nil {
		http.Error(w, "Error creating appointment", http.StatusInternalServerError)
		return
	}

	notified := h.notifier.Notify(notification.AppointmentRequested(teacher, student, appointment))
	h.notifier.Notify(notification.AppointmentRequestConfirmation(student, teacher, appointment))

	message := "Appointment booked successfully"
	if notified {
		message += " and notifications sent"
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success":     true,
		"message":     message,
		"appointment": appointment,
	})
}

// GetMyAppointments lists the student's appointments ordered by date and
// start time. Teachers deleted after booking degrade to placeholders instead
// of breaking the listing.
func (h *AppointmentHandler) GetMyAppointments(w http.ResponseWriter, r *http.Request) {
	studentID, _ := utils.GetUserIDFromContext(r)

	var appointments []models.Appointment
	if err := h.db.Where("student_id = ?", studentID).
		Order("date ASC, start_time ASC, id ASC").
		Find(&appointments).Error; err != nil {
		http.Error(w, "Error retrieving appointments", http.StatusInternalServerError)
		return
	}

	teachers, err := h.teachersByID(appointments)
	if err != nil {
		http.Error(w, "Error retrieving appointments", http.StatusInternalServerError)
		return
	}

	views := make([]models.StudentAppointmentView, 0, len(appointments))
	for _, appt := range appointments {
		view := models.StudentAppointmentView{
			ID:                appt.ID,
			Date:              appt.Date,
			StartTime:         appt.StartTime,
			EndTime:           appt.EndTime,
			Subject:           appt.Subject,
			Message:           appt.Message,
			Status:            appt.Status,
			TeacherID:         appt.TeacherID,
			TeacherName:       models.DeletedTeacherName,
			TeacherEmail:      models.NoEmail,
			TeacherDepartment: models.UnknownDepartment,
		}
		if teacher, ok := teachers[appt.TeacherID]; ok {
			view.TeacherName = teacher.Name
			view.TeacherEmail = teacher.Email
			view.TeacherDepartment = teacher.Department
			view.TeacherProfilePic = teacher.ProfilePic
		}
		views = append(views, view)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success":      true,
		"count":        len(views),
		"appointments": views,
	})
}

// GetTeacherAppointments lists the teacher's appointments newest first, with
// the same placeholder tolerance for deleted students.
func (h *AppointmentHandler) GetTeacherAppointments(w http.ResponseWriter, r *http.Request) {
	teacherID, _ := utils.GetUserIDFromContext(r)

	var appointments []models.Appointment
	if err := h.db.Where("teacher_id = ?", teacherID).
		Order("created_at DESC").
		Find(&appointments).Error; err != nil {
		http.Error(w, "Error retrieving appointments", http.StatusInternalServerError)
		return
	}

	students, err := h.studentsByID(appointments)
	if err != nil {
		http.Error(w, "Error retrieving appointments", http.StatusInternalServerError)
		return
	}

	views := make([]models.TeacherAppointmentView, 0, len(appointments))
	for _, appt := range appointments {
		view := models.TeacherAppointmentView{
			ID:           appt.ID,
			Date:         appt.Date,
			StartTime:    appt.StartTime,
			EndTime:      appt.EndTime,
			Subject:      appt.Subject,
			Message:      appt.Message,
			Status:       appt.Status,
			StudentID:    appt.StudentID,
			StudentName:  models.DeletedUserName,
			StudentEmail: models.NoEmail,
		}
		if student, ok := students[appt.StudentID]; ok {
			view.StudentName = student.Username
			view.StudentEmail = student.Email
			view.StudentProfilePic = student.ProfilePic
		}
		views = append(views, view)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success":      true,
		"appointments": views,
	})
}

// UpdateAppointmentStatus lets the owning teacher approve or reject a pending
// appointment. The write is conditional on the current status, so of two
// racing decisions exactly one wins and the other sees the state error.
func (h *AppointmentHandler) UpdateAppointmentStatus(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	appointmentID, err := strconv.ParseUint(vars["id"], 10, 64)
	if err != nil {
		http.Error(w, "Invalid appointment ID", http.StatusBadRequest)
		return
	}

	var statusUpdate struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&statusUpdate); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if !isDecision(statusUpdate.Status) {
		http.Error(w, "Invalid status. Use 'approved' or 'rejected'", http.StatusBadRequest)
		return
	}

	teacherID, _ := utils.GetUserIDFromContext(r)

	var appointment models.Appointment
	if err := h.db.Where("id = ? AND teacher_id = ?", appointmentID, teacherID).
		First(&appointment).Error; err != nil {
		http.Error(w, "Appointment not found", http.StatusNotFound)
		return
	}

	result := h.db.Model(&models.Appointment{}).
		Where("id = ? AND teacher_id = ? AND status = ?", appointmentID, teacherID, models.StatusPending).
		Update("status", statusUpdate.Status)
	if result.Error != nil {
		http.Error(w, "Error updating appointment", http.StatusInternalServerError)
		return
	}
	if result.RowsAffected == 0 {
		http.Error(w, fmt.Sprintf("Cannot update appointment with status: %s", appointment.Status), http.StatusBadRequest)
		return
	}
	appointment.Status = statusUpdate.Status

	var student models.User
	if err := h.db.First(&student, appointment.StudentID).Error; err == nil {
		h.notifier.Notify(notification.AppointmentDecided(student, appointment))
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success":     true,
		"message":     fmt.Sprintf("Appointment %s successfully", appointment.Status),
		"appointment": appointment,
	})
}

// CancelAppointment is the student-side terminal transition. Same conditional
// write discipline as the teacher decision; the teacher is told the slot is
// free again.
func (h *AppointmentHandler) CancelAppointment(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	appointmentID, err := strconv.ParseUint(vars["id"], 10, 64)
	if err != nil {
		http.Error(w, "Invalid appointment ID", http.StatusBadRequest)
		return
	}

	studentID, _ := utils.GetUserIDFromContext(r)

	var appointment models.Appointment
	if err := h.db.Where("id = ? AND student_id = ?", appointmentID, studentID).
		First(&appointment).Error; err != nil {
		http.Error(w, "Appointment not found", http.StatusNotFound)
		return
	}

	result := h.db.Model(&models.Appointment{}).
		Where("id = ? AND student_id = ? AND status = ?", appointmentID, studentID, models.StatusPending).
		Update("status", models.StatusCancelled)
	if result.Error != nil {
		http.Error(w, "Error cancelling appointment", http.StatusInternalServerError)
		return
	}
	if result.RowsAffected == 0 {
		http.Error(w, fmt.Sprintf("Cannot cancel appointment with status: %s", appointment.Status), http.StatusBadRequest)
		return
	}
	appointment.Status = models.StatusCancelled

	var teacher models.Teacher
	if err := h.db.First(&teacher, appointment.TeacherID).Error; err == nil {
		h.notifier.Notify(notification.AppointmentCancelled(teacher, appointment))
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": true,
		"message": "Appointment cancelled successfully",
	})
}

func (h *AppointmentHandler) GetAvailability(w http.ResponseWriter, r *http.Request) {
	teacherID, _ := utils.GetUserIDFromContext(r)

	var teacher models.Teacher
	if err := h.db.Preload("Availability", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC")
	}).First(&teacher, teacherID).Error; err != nil {
		http.Error(w, "Teacher not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success":      true,
		"availability": teacher.Availability,
	})
}

// UpdateAvailability replaces the teacher's whole window list in a single
// transaction. Only approved teachers may publish availability.
func (h *AppointmentHandler) UpdateAvailability(w http.ResponseWriter, r *http.Request) {
	teacherID, _ := utils.GetUserIDFromContext(r)

	var updateRequest struct {
		Availability []models.AvailabilitySlot `json:"availability"`
	}
	if err := json.NewDecoder(r.Body).Decode(&updateRequest); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	var teacher models.Teacher
	if err := h.db.First(&teacher, teacherID).Error; err != nil {
		http.Error(w, "Teacher not found", http.StatusNotFound)
		return
	}
	if !teacher.IsApproved {
		http.Error(w, "Your account needs to be approved before setting availability", http.StatusForbidden)
		return
	}

	if err := validateSlots(updateRequest.Availability); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	slots := make([]models.AvailabilitySlot, len(updateRequest.Availability))
	for i, slot := range updateRequest.Availability {
		slots[i] = models.AvailabilitySlot{
			TeacherID: teacher.ID,
			Day:       slot.Day,
			StartTime: slot.StartTime,
			EndTime:   slot.EndTime,
			Position:  i,
		}
	}

	err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Where("teacher_id = ?", teacher.ID).
			Delete(&models.AvailabilitySlot{}).Error; err != nil {
			return err
		}
		if len(slots) == 0 {
			return nil
		}
		return tx.Create(&slots).Error
	})
	if err != nil {
		http.Error(w, "Error updating availability", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success":      true,
		"message":      "Availability updated successfully",
		"availability": slots,
	})
}

func (h *AppointmentHandler) teachersByID(appointments []models.Appointment) (map[uint]models.Teacher, error) {
	ids := make([]uint, 0, len(appointments))
	for _, appt := range appointments {
		ids = append(ids, appt.TeacherID)
	}
	result := make(map[uint]models.Teacher, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	var teachers []models.Teacher
	if err := h.db.Where("id IN ?", ids).Find(&teachers).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return result, nil
		}
		return nil, err
	}
	for _, teacher := range teachers {
		result[teacher.ID] = teacher
	}
	return result, nil
}

func (h *AppointmentHandler) studentsByID(appointments []models.Appointment) (map[uint]models.User, error) {
	ids := make([]uint, 0, len(appointments))
	for _, appt := range appointments {
		ids = append(ids, appt.StudentID)
	}
	result := make(map[uint]models.User, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	var students []models.User
	if err := h.db.Where("id IN ?", ids).Find(&students).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return result, nil
		}
		return nil, err
	}
	for _, student := range students {
		result[student.ID] = student
	}
	return result, nil
}
