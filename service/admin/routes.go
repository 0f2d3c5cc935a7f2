package admin

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/kbaidoo/EduMeet-server/cmd/models"
	"github.com/kbaidoo/EduMeet-server/cmd/utils"
)

type AdminHandler struct {
	db *gorm.DB
}

func NewAdminHandler(db *gorm.DB) *AdminHandler {
	return &AdminHandler{db: db}
}

func (h *AdminHandler) RegisterRoutes(router *mux.Router) {
	admin := func(next http.HandlerFunc) http.HandlerFunc {
		return utils.RequireRole(models.RoleAdmin, next)
	}

	router.HandleFunc("/admin/add-teacher", admin(h.AddTeacher)).Methods("POST")
	router.HandleFunc("/admin/teachers", admin(h.GetAllTeachers)).Methods("GET")
	router.HandleFunc("/admin/teachers/{id}", admin(h.UpdateTeacher)).Methods("PATCH")
	router.HandleFunc("/admin/teachers/{id}", admin(h.DeleteTeacher)).Methods("DELETE")
	router.HandleFunc("/admin/pending-teachers", admin(h.GetPendingTeachers)).Methods("GET")
	router.HandleFunc("/admin/pending-students", admin(h.GetPendingStudents)).Methods("GET")
	router.HandleFunc("/admin/approve-teacher/{id}", admin(h.ApproveTeacher)).Methods("PATCH")
	router.HandleFunc("/admin/approve-student/{id}", admin(h.ApproveStudent)).Methods("PATCH")
	router.HandleFunc("/admin/reject-teacher/{id}", admin(h.RejectTeacher)).Methods("DELETE")
	router.HandleFunc("/admin/reject-student/{id}", admin(h.RejectStudent)).Methods("DELETE")
	router.HandleFunc("/admin/stats", admin(h.GetStats)).Methods("GET")
}

// AddTeacher creates an admin-vouched teacher, approved immediately.
func (h *AdminHandler) AddTeacher(w http.ResponseWriter, r *http.Request) {
	var addRequest struct {
		Name       string `json:"name"`
		Email      string `json:"email"`
		Department string `json:"department"`
		Password   string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&addRequest); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	name := strings.TrimSpace(addRequest.Name)
	email := strings.ToLower(strings.TrimSpace(addRequest.Email))
	department := strings.TrimSpace(addRequest.Department)

	if name == "" || email == "" || department == "" || addRequest.Password == "" {
		http.Error(w, "Please provide all required fields", http.StatusBadRequest)
		return
	}

	var existingTeacher models.Teacher
	if result := h.db.Where("email = ?", email).First(&existingTeacher); result.Error == nil {
		http.Error(w, "Email already exists", http.StatusBadRequest)
		return
	} else if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}

	// the user namespace shares the email space, see login's users-first lookup
	var existingUser models.User
	if result := h.db.Where("email = ?", email).First(&existingUser); result.Error == nil {
		http.Error(w, "Email already exists", http.StatusBadRequest)
		return
	} else if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(addRequest.Password), bcrypt.DefaultCost)
	if err != nil {
		http.Error(w, "Error hashing password", http.StatusInternalServerError)
		return
	}

	teacher := models.Teacher{
		Name:         name,
		Email:        email,
		PasswordHash: string(passwordHash),
		Department:   department,
		IsApproved:   true,
	}
	if err := h.db.Create(&teacher).Error; err != nil {
		http.Error(w, "Error adding teacher", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": true,
		"message": "Teacher added successfully",
		"teacher": teacher,
	})
}

func (h *AdminHandler) GetAllTeachers(w http.ResponseWriter, r *http.Request) {
	var teachers []models.Teacher
	if err := h.db.Preload("Availability").Find(&teachers).Error; err != nil {
		http.Error(w, "Error retrieving teachers", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success":  true,
		"teachers": teachers,
	})
}

// UpdateTeacher edits name, department or the approval flag in place.
func (h *AdminHandler) UpdateTeacher(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	teacherID, err := strconv.ParseUint(vars["id"], 10, 64)
	if err != nil {
		http.Error(w, "Invalid teacher ID", http.StatusBadRequest)
		return
	}

	var updateRequest struct {
		Name       string `json:"name"`
		Department string `json:"department"`
		IsApproved *bool  `json:"is_approved"`
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

	if updateRequest.Name != "" {
		teacher.Name = updateRequest.Name
	}
	if updateRequest.Department != "" {
		teacher.Department = updateRequest.Department
	}
	if updateRequest.IsApproved != nil {
		teacher.IsApproved = *updateRequest.IsApproved
	}

	if err := h.db.Save(&teacher).Error; err != nil {
		http.Error(w, "Error updating teacher", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": true,
		"message": "Teacher updated successfully",
		"teacher": teacher,
	})
}

func (h *AdminHandler) GetPendingTeachers(w http.ResponseWriter, r *http.Request) {
	var teachers []models.Teacher
	if err := h.db.Where("is_approved = ?", false).Find(&teachers).Error; err != nil {
		http.Error(w, "Error retrieving teachers", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success":  true,
		"teachers": teachers,
	})
}

func (h *AdminHandler) GetPendingStudents(w http.ResponseWriter, r *http.Request) {
	var students []models.User
	if err := h.db.Where("role = ? AND is_approved = ?", models.RoleUser, false).
		Find(&students).Error; err != nil {
		http.Error(w, "Error retrieving students", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success":  true,
		"students": students,
	})
}

func (h *AdminHandler) ApproveTeacher(w http.ResponseWriter, r *http.Request) {
	h.approve(w, r, &models.Teacher{}, "Teacher")
}

func (h *AdminHandler) ApproveStudent(w http.ResponseWriter, r *http.Request) {
	h.approve(w, r, &models.User{}, "Student")
}

func (h *AdminHandler) approve(w http.ResponseWriter, r *http.Request, model interface{}, kind string) {
	vars := mux.Vars(r)
	id, err := strconv.ParseUint(vars["id"], 10, 64)
	if err != nil {
		http.Error(w, "Invalid ID", http.StatusBadRequest)
		return
	}

	result := h.db.Model(model).Where("id = ?", id).Update("is_approved", true)
	if result.Error != nil {
		http.Error(w, "Error approving account", http.StatusInternalServerError)
		return
	}
	if result.RowsAffected == 0 {
		http.Error(w, kind+" not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": true,
		"message": kind + " approved successfully",
	})
}

// RejectTeacher hard-deletes the account. Rejection is irreversible; there is
// no soft-reject state. Appointments referencing the id are kept and degrade
// to placeholders in listings.
func (h *AdminHandler) RejectTeacher(w http.ResponseWriter, r *http.Request) {
	h.hardDeleteTeacher(w, r, "Teacher registration rejected successfully")
}

func (h *AdminHandler) DeleteTeacher(w http.ResponseWriter, r *http.Request) {
	h.hardDeleteTeacher(w, r, "Teacher deleted successfully")
}

func (h *AdminHandler) hardDeleteTeacher(w http.ResponseWriter, r *http.Request, message string) {
	vars := mux.Vars(r)
	id, err := strconv.ParseUint(vars["id"], 10, 64)
	if err != nil {
		http.Error(w, "Invalid teacher ID", http.StatusBadRequest)
		return
	}

	err = h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Where("teacher_id = ?", id).
			Delete(&models.AvailabilitySlot{}).Error; err != nil {
			return err
		}
		result := tx.Unscoped().Delete(&models.Teacher{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		http.Error(w, "Teacher not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, "Error deleting teacher", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": true,
		"message": message,
	})
}

func (h *AdminHandler) RejectStudent(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id, err := strconv.ParseUint(vars["id"], 10, 64)
	if err != nil {
		http.Error(w, "Invalid student ID", http.StatusBadRequest)
		return
	}

	result := h.db.Unscoped().Where("role = ?", models.RoleUser).Delete(&models.User{}, id)
	if result.Error != nil {
		http.Error(w, "Error deleting student", http.StatusInternalServerError)
		return
	}
	if result.RowsAffected == 0 {
		http.Error(w, "Student not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": true,
		"message": "Student registration rejected successfully",
	})
}

// GetStats reports six months of registrations plus the current
// approved/pending split for the admin dashboard.
func (h *AdminHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	windows := monthlyWindows(time.Now(), 6)
	monthlyStats := make([]map[string]interface{}, 0, len(windows))
	for _, window := range windows {
		var teachers, students int64
		if err := h.db.Model(&models.Teacher{}).
			Where("created_at >= ? AND created_at < ?", window.Start, window.End).
			Count(&teachers).Error; err != nil {
			http.Error(w, "Error retrieving stats", http.StatusInternalServerError)
			return
		}
		if err := h.db.Model(&models.User{}).
			Where("role = ? AND created_at >= ? AND created_at < ?", models.RoleUser, window.Start, window.End).
			Count(&students).Error; err != nil {
			http.Error(w, "Error retrieving stats", http.StatusInternalServerError)
			return
		}
		monthlyStats = append(monthlyStats, map[string]interface{}{
			"month":    window.Label,
			"teachers": teachers,
			"students": students,
		})
	}

	var teachersTotal, teachersActive, studentsTotal, studentsActive int64
	counts := []struct {
		query *gorm.DB
		dst   *int64
	}{
		{h.db.Model(&models.Teacher{}), &teachersTotal},
		{h.db.Model(&models.Teacher{}).Where("is_approved = ?", true), &teachersActive},
		{h.db.Model(&models.User{}).Where("role = ?", models.RoleUser), &studentsTotal},
		{h.db.Model(&models.User{}).Where("role = ? AND is_approved = ?", models.RoleUser, true), &studentsActive},
	}
	for _, c := range counts {
		if err := c.query.Count(c.dst).Error; err != nil {
			http.Error(w, "Error retrieving stats", http.StatusInternalServerError)
			return
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": true,
		"data": map[string]interface{}{
			"monthlyStats": monthlyStats,
			"statusStats": map[string]interface{}{
				"teachers": map[string]int64{
					"active":  teachersActive,
					"pending": teachersTotal - teachersActive,
					"total":   teachersTotal,
				},
				"students": map[string]int64{
					"active":  studentsActive,
					"pending": studentsTotal - studentsActive,
					"total":   studentsTotal,
				},
			},
		},
	})
}
