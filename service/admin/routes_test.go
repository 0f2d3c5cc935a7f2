package admin

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/kbaidoo/EduMeet-server/cmd/models"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "app.db")), &gorm.Config{})
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.Teacher{}); err != nil {
		t.Fatalf("migrating test database: %v", err)
	}
	return db
}

func TestGetStats(t *testing.T) {
	db := setupDB(t)
	seed := []interface{}{
		&models.Teacher{Name: "Dr. Owusu", Email: "owusu@example.com", PasswordHash: "x", Department: "physics", IsApproved: true},
		&models.Teacher{Name: "Ama Mensah", Email: "mensah@example.com", PasswordHash: "x", Department: "mathematics"},
		&models.User{Username: "kwame", Email: "kwame@example.com", PasswordHash: "x", Role: models.RoleUser, IsApproved: true},
		&models.User{Username: "admin", Email: "admin@example.com", PasswordHash: "x", Role: models.RoleAdmin, IsApproved: true},
	}
	for _, row := range seed {
		if err := db.Create(row).Error; err != nil {
			t.Fatalf("seeding: %v", err)
		}
	}

	h := NewAdminHandler(db)
	rec := httptest.NewRecorder()
	h.GetStats(rec, httptest.NewRequest("GET", "/admin/stats", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Success bool `json:"success"`
		Data    struct {
			MonthlyStats []struct {
				Month    string `json:"month"`
				Teachers int    `json:"teachers"`
				Students int    `json:"students"`
			} `json:"monthlyStats"`
			StatusStats struct {
				Teachers map[string]int `json:"teachers"`
				Students map[string]int `json:"students"`
			} `json:"statusStats"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}

	if len(resp.Data.MonthlyStats) != 6 {
		t.Fatalf("expected 6 monthly windows, got %d", len(resp.Data.MonthlyStats))
	}
	current := resp.Data.MonthlyStats[5]
	if current.Teachers != 2 || current.Students != 1 {
		t.Fatalf("current month: expected 2 teachers and 1 student, got %d/%d", current.Teachers, current.Students)
	}

	teachers := resp.Data.StatusStats.Teachers
	if teachers["total"] != 2 || teachers["active"] != 1 || teachers["pending"] != 1 {
		t.Fatalf("unexpected teacher split: %v", teachers)
	}
	// the admin account must not count as a student
	students := resp.Data.StatusStats.Students
	if students["total"] != 1 || students["active"] != 1 || students["pending"] != 0 {
		t.Fatalf("unexpected student split: %v", students)
	}
}

func TestAddTeacherRejectsUserEmail(t *testing.T) {
	db := setupDB(t)
	if err := db.Create(&models.User{
		Username: "ama", Email: "ama@example.com", PasswordHash: "x", Role: models.RoleUser,
	}).Error; err != nil {
		t.Fatalf("seeding user: %v", err)
	}

	h := NewAdminHandler(db)
	body := strings.NewReader(`{"name":"Ama Mensah","email":"ama@example.com","department":"physics","password":"longenough"}`)
	rec := httptest.NewRecorder()
	h.AddTeacher(rec, httptest.NewRequest("POST", "/admin/add-teacher", body))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for a user's email, got %d", rec.Code)
	}
	var count int64
	db.Model(&models.Teacher{}).Count(&count)
	if count != 0 {
		t.Fatalf("teacher row created despite email collision")
	}
}
