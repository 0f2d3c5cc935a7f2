package auth

import (
	"encoding/json"
	"errors"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/kbaidoo/EduMeet-server/cmd/models"
	"github.com/kbaidoo/EduMeet-server/cmd/utils"
	"github.com/kbaidoo/EduMeet-server/service/notification"
)

const sessionTTL = 24 * time.Hour

type Handler struct {
	db         *gorm.DB
	notifier   notification.Notifier
	adminEmail string
}

func NewHandler(db *gorm.DB, notifier notification.Notifier, adminEmail string) *Handler {
	return &Handler{db: db, notifier: notifier, adminEmail: adminEmail}
}

func (h *Handler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/auth/register", h.HandleRegister).Methods("POST")
	router.HandleFunc("/auth/register/teacher", h.HandleRegisterTeacher).Methods("POST")
	router.HandleFunc("/auth/login", h.handleLogin).Methods("POST")
	router.HandleFunc("/auth/logout", h.handleLogout).Methods("GET")
	router.HandleFunc("/auth/check-auth", utils.RequireAuth(h.handleCheckAuth)).Methods("GET")
	router.HandleFunc("/auth/profile", utils.RequireAuth(h.UpdateProfile)).Methods("PATCH")
	router.HandleFunc("/auth/search/teachers", h.SearchTeachers).Methods("GET")
	router.HandleFunc("/auth/search/teachers/{id}", h.SearchTeacherByID).Methods("GET")
}

// RegisterImageRoutes mounts the uploaded-image route on the root router.
// SaveImage stores "/images/<file>" paths, so the route must resolve there
// rather than under the /api/v1 prefix.
func (h *Handler) RegisterImageRoutes(router *mux.Router) {
	router.HandleFunc("/images/{filename}", h.ServeImage).Methods("GET")
}

// HandleRegister creates a student account pending admin approval.
func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var registerRequest struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&registerRequest); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	username := strings.TrimSpace(registerRequest.Username)
	email := strings.ToLower(strings.TrimSpace(registerRequest.Email))

	if len(username) < 3 {
		http.Error(w, "Username must be at least 3 characters long", http.StatusBadRequest)
		return
	}
	if email == "" || !strings.Contains(email, "@") {
		http.Error(w, "Invalid email format", http.StatusBadRequest)
		return
	}
	if len(registerRequest.Password) < 8 {
		http.Error(w, "Password must be at least 8 characters long", http.StatusBadRequest)
		return
	}

	var existingUser models.User
	if result := h.db.Where("username = ?", username).First(&existingUser); result.Error == nil {
		http.Error(w, "Username already taken", http.StatusBadRequest)
		return
	} else if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}

	taken, err := h.emailInUse(email, 0, 0)
	if err != nil {
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}
	if taken {
		http.Error(w, "Email already registered", http.StatusBadRequest)
		return
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(registerRequest.Password), bcrypt.DefaultCost)
	if err != nil {
		http.Error(w, "Error hashing password", http.StatusInternalServerError)
		return
	}

	user := models.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(passwordHash),
		Role:         models.RoleUser,
		IsApproved:   false,
	}
	if err := h.db.Create(&user).Error; err != nil {
		http.Error(w, "Error registering user", http.StatusInternalServerError)
		return
	}

	h.notifier.Notify(notification.StudentRegistered(h.adminEmail, user))

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": true,
		"message": "Registration successful. Please wait for admin approval.",
	})
}

// HandleRegisterTeacher creates a teacher account pending admin approval.
func (h *Handler) HandleRegisterTeacher(w http.ResponseWriter, r *http.Request) {
	var registerRequest struct {
		Name       string `json:"name"`
		Email      string `json:"email"`
		Password   string `json:"password"`
		Department string `json:"department"`
	}
	if err := json.NewDecoder(r.Body).Decode(&registerRequest); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	name := strings.TrimSpace(registerRequest.Name)
	email := strings.ToLower(strings.TrimSpace(registerRequest.Email))
	department := strings.TrimSpace(registerRequest.Department)

	if len(name) < 3 {
		http.Error(w, "Name must be at least 3 characters long", http.StatusBadRequest)
		return
	}
	if email == "" || !strings.Contains(email, "@") {
		http.Error(w, "Invalid email format", http.StatusBadRequest)
		return
	}
	if len(registerRequest.Password) < 8 {
		http.Error(w, "Password must be at least 8 characters long", http.StatusBadRequest)
		return
	}
	if department == "" {
		http.Error(w, "Department is required", http.StatusBadRequest)
		return
	}

	taken, err := h.emailInUse(email, 0, 0)
	if err != nil {
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}
	if taken {
		http.Error(w, "Email already exists", http.StatusBadRequest)
		return
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(registerRequest.Password), bcrypt.DefaultCost)
	if err != nil {
		http.Error(w, "Error hashing password", http.StatusInternalServerError)
		return
	}

	teacher := models.Teacher{
		Name:         name,
		Email:        email,
		PasswordHash: string(passwordHash),
		Department:   department,
		IsApproved:   false,
	}
	if err := h.db.Create(&teacher).Error; err != nil {
		http.Error(w, "Error registering teacher", http.StatusInternalServerError)
		return
	}

	h.notifier.Notify(notification.TeacherRegistered(h.adminEmail, teacher))

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": true,
		"message": "Teacher registration successful. Please wait for admin approval.",
	})
}

// handleLogin checks users then teachers (the namespaces are disjoint), and
// only looks at the approval flag after the password matched.
func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var loginRequest struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&loginRequest); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	email := strings.ToLower(strings.TrimSpace(loginRequest.Email))

	var (
		id           uint
		role         string
		passwordHash string
		isApproved   bool
		displayName  string
		profilePic   string
	)

	var user models.User
	if err := h.db.Where("email = ?", email).First(&user).Error; err == nil {
		id, role, passwordHash = user.ID, user.Role, user.PasswordHash
		isApproved, displayName, profilePic = user.IsApproved, user.Username, user.ProfilePic
	} else {
		var teacher models.Teacher
		if err := h.db.Where("email = ?", email).First(&teacher).Error; err != nil {
			http.Error(w, "Invalid credentials", http.StatusUnauthorized)
			return
		}
		id, role, passwordHash = teacher.ID, models.RoleTeacher, teacher.PasswordHash
		isApproved, displayName, profilePic = teacher.IsApproved, teacher.Name, teacher.ProfilePic
	}

	if err := bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(loginRequest.Password)); err != nil {
		http.Error(w, "Invalid credentials", http.StatusUnauthorized)
		return
	}

	if !isApproved {
		http.Error(w, "Your account is pending approval", http.StatusForbidden)
		return
	}

	token, err := utils.GenerateSessionToken(id, role, sessionTTL)
	if err != nil {
		http.Error(w, "Error generating token", http.StatusInternalServerError)
		return
	}
	utils.SetSessionCookie(w, token, sessionTTL)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": true,
		"user": map[string]interface{}{
			"id":         id,
			"username":   displayName,
			"email":      email,
			"role":       role,
			"profilePic": profilePic,
		},
	})
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	utils.ClearSessionCookie(w)
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"message": "User logged out!"})
}

func (h *Handler) handleCheckAuth(w http.ResponseWriter, r *http.Request) {
	userID, _ := utils.GetUserIDFromContext(r)
	role, _ := utils.GetRoleFromContext(r)

	w.Header().Set("Content-Type", "application/json")

	if role == models.RoleTeacher {
		var teacher models.Teacher
		if err := h.db.First(&teacher, userID).Error; err != nil {
			http.Error(w, "Authentication invalid", http.StatusUnauthorized)
			return
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": true,
			"user": map[string]interface{}{
				"id":         teacher.ID,
				"name":       teacher.Name,
				"email":      teacher.Email,
				"role":       models.RoleTeacher,
				"department": teacher.Department,
				"profilePic": teacher.ProfilePic,
			},
		})
		return
	}

	var user models.User
	if err := h.db.First(&user, userID).Error; err != nil {
		http.Error(w, "Authentication invalid", http.StatusUnauthorized)
		return
	}
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": true,
		"user": map[string]interface{}{
			"id":         user.ID,
			"username":   user.Username,
			"email":      user.Email,
			"role":       user.Role,
			"profilePic": user.ProfilePic,
		},
	})
}

// SearchTeachers is the public directory: approved teachers only, optionally
// filtered, grouped by department.
func (h *Handler) SearchTeachers(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("query")
	department := r.URL.Query().Get("department")

	dbQuery := h.db.Model(&models.Teacher{}).Where("is_approved = ?", true).
		Preload("Availability", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		})

	if query != "" {
		pattern := "%" + query + "%"
		dbQuery = dbQuery.Where("name ILIKE ? OR email ILIKE ?", pattern, pattern)
	}
	if department != "" {
		dbQuery = dbQuery.Where("department = ?", department)
	}

	var teachers []models.Teacher
	if err := dbQuery.Order("name ASC").Find(&teachers).Error; err != nil {
		http.Error(w, "Error searching teachers", http.StatusInternalServerError)
		return
	}

	teachersByDepartment, departments := groupByDepartment(teachers)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success":              true,
		"departments":          departments,
		"teachersByDepartment": teachersByDepartment,
		"total":                len(teachers),
	})
}

func (h *Handler) SearchTeacherByID(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	teacherID, err := strconv.ParseUint(vars["id"], 10, 64)
	if err != nil {
		http.Error(w, "Invalid teacher ID", http.StatusBadRequest)
		return
	}

	var teacher models.Teacher
	if err := h.db.Where("id = ? AND is_approved = ?", teacherID, true).
		Preload("Availability", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).First(&teacher).Error; err != nil {
		http.Error(w, "Teacher not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": true,
		"teacher": map[string]interface{}{
			"id":           teacher.ID,
			"name":         teacher.Name,
			"email":        teacher.Email,
			"department":   teacher.Department,
			"profilePic":   teacher.ProfilePic,
			"availability": teacher.Availability,
		},
	})
}

// UpdateProfile is the authenticated self-edit: display name and email, plus
// an optional multipart profile picture.
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, _ := utils.GetUserIDFromContext(r)
	role, _ := utils.GetRoleFromContext(r)

	var (
		name, email, picture string
	)

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(utils.MaxImageSize); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}
		name = strings.TrimSpace(r.FormValue("name"))
		if name == "" {
			name = strings.TrimSpace(r.FormValue("username"))
		}
		email = strings.ToLower(strings.TrimSpace(r.FormValue("email")))

		if file, header, err := r.FormFile("profilePic"); err == nil {
			defer file.Close()
			path, err := utils.SaveImage(file, header)
			if err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			picture = path
		}
	} else {
		var updateRequest struct {
			Name     string `json:"name"`
			Username string `json:"username"`
			Email    string `json:"email"`
		}
		if err := json.NewDecoder(r.Body).Decode(&updateRequest); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		name = strings.TrimSpace(updateRequest.Name)
		if name == "" {
			name = strings.TrimSpace(updateRequest.Username)
		}
		email = strings.ToLower(strings.TrimSpace(updateRequest.Email))
	}

	if role == models.RoleTeacher {
		h.updateTeacherProfile(w, userID, name, email, picture)
		return
	}
	h.updateUserProfile(w, userID, name, email, picture)
}

func (h *Handler) updateTeacherProfile(w http.ResponseWriter, teacherID uint, name, email, picture string) {
	var teacher models.Teacher
	if err := h.db.First(&teacher, teacherID).Error; err != nil {
		http.Error(w, "Teacher not found", http.StatusNotFound)
		return
	}

	if email != "" && email != teacher.Email {
		taken, err := h.emailInUse(email, 0, teacherID)
		if err != nil {
			http.Error(w, "Error updating profile", http.StatusInternalServerError)
			return
		}
		if taken {
			http.Error(w, "Email already exists", http.StatusBadRequest)
			return
		}
		teacher.Email = email
	}
	if name != "" {
		teacher.Name = name
	}
	if picture != "" {
		teacher.ProfilePic = picture
	}

	if err := h.db.Save(&teacher).Error; err != nil {
		http.Error(w, "Error updating profile", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": true,
		"message": "Profile updated successfully",
		"user": map[string]interface{}{
			"id":         teacher.ID,
			"name":       teacher.Name,
			"email":      teacher.Email,
			"department": teacher.Department,
			"profilePic": teacher.ProfilePic,
			"role":       models.RoleTeacher,
		},
	})
}

func (h *Handler) updateUserProfile(w http.ResponseWriter, userID uint, username, email, picture string) {
	var user models.User
	if err := h.db.First(&user, userID).Error; err != nil {
		http.Error(w, "User not found", http.StatusNotFound)
		return
	}

	if username != "" && username != user.Username {
		var other models.User
		if err := h.db.Where("username = ? AND id <> ?", username, userID).First(&other).Error; err == nil {
			http.Error(w, "Username already taken", http.StatusBadRequest)
			return
		}
		user.Username = username
	}
	if email != "" && email != user.Email {
		taken, err := h.emailInUse(email, userID, 0)
		if err != nil {
			http.Error(w, "Error updating profile", http.StatusInternalServerError)
			return
		}
		if taken {
			http.Error(w, "Email already registered", http.StatusBadRequest)
			return
		}
		user.Email = email
	}
	if picture != "" {
		user.ProfilePic = picture
	}

	if err := h.db.Save(&user).Error; err != nil {
		http.Error(w, "Error updating profile", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": true,
		"message": "Profile updated successfully",
		"user": map[string]interface{}{
			"id":         user.ID,
			"username":   user.Username,
			"email":      user.Email,
			"role":       user.Role,
			"profilePic": user.ProfilePic,
		},
	})
}

// emailInUse checks both account namespaces. An email registered to any user
// or teacher blocks registration, otherwise login's users-first lookup would
// shadow the teacher account. The exclude ids let profile updates skip the
// caller's own row.
func (h *Handler) emailInUse(email string, excludeUserID, excludeTeacherID uint) (bool, error) {
	var user models.User
	err := h.db.Where("email = ? AND id <> ?", email, excludeUserID).First(&user).Error
	if err == nil {
		return true, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, err
	}

	var teacher models.Teacher
	err = h.db.Where("email = ? AND id <> ?", email, excludeTeacherID).First(&teacher).Error
	if err == nil {
		return true, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, err
	}
	return false, nil
}

func (h *Handler) ServeImage(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	filename := vars["filename"]

	if filename == "" || strings.Contains(filename, "..") || strings.ContainsAny(filename, `/\`) {
		http.Error(w, "Invalid path", http.StatusBadRequest)
		return
	}

	imagePath := filepath.Join(utils.ImagePath, filename)
	w.Header().Set("Cache-Control", "public, max-age=3600")
	http.ServeFile(w, r, imagePath)
}
