package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/kbaidoo/EduMeet-server/cmd/api"
	"github.com/kbaidoo/EduMeet-server/cmd/models"
	"github.com/kbaidoo/EduMeet-server/db"
)

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "migrate":
			runMigrations()
			return
		case "create-admin":
			runCreateAdmin()
			return
		case "clear-db":
			runClearDB()
			return
		default:
			log.Fatalf("Unknown command: %s", os.Args[1])
		}
	}

	startServer()
}

func runMigrations() {
	DB, err := db.NewPSQLStorage()
	if err != nil {
		log.Fatalf("Database initialization error: %v", err)
	}
	defer closeDB(DB)
	log.Println("Connected to the database for migrations")

	if err := performMigrations(DB); err != nil {
		log.Fatalf("Migration error: %v", err)
	}
	log.Println("Migrations completed successfully")
}

func performMigrations(DB *gorm.DB) error {
	migrations := map[interface{}]string{
		&models.User{}:             "User",
		&models.Teacher{}:          "Teacher",
		&models.AvailabilitySlot{}: "AvailabilitySlot",
		&models.Appointment{}:      "Appointment",
		&models.Message{}:          "Message",
	}

	log.Println("Starting database migrations...")
	for model, name := range migrations {
		log.Printf("Migrating %s table...", name)
		if err := DB.AutoMigrate(model); err != nil {
			return fmt.Errorf("error migrating %s table: %w", name, err)
		}
		log.Printf("%s migration successful", name)
	}

	if err := createDirectoryIfNotExist("uploads/images"); err != nil {
		return err
	}
	log.Println("All migrations and directory setup completed successfully")
	return nil
}

// runCreateAdmin seeds the administrator account from ADMIN_EMAIL and
// ADMIN_PASSWORD. Idempotent: an existing admin with that email is left
// untouched.
func runCreateAdmin() {
	DB, err := db.NewPSQLStorage()
	if err != nil {
		log.Fatalf("Database initialization error: %v", err)
	}
	defer closeDB(DB)

	email := os.Getenv("ADMIN_EMAIL")
	password := os.Getenv("ADMIN_PASSWORD")
	if email == "" || password == "" {
		log.Fatal("ADMIN_EMAIL and ADMIN_PASSWORD must be set")
	}

	var existing models.User
	if err := DB.Where("email = ?", email).First(&existing).Error; err == nil {
		log.Printf("Admin account %s already exists", email)
		return
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("Error hashing admin password: %v", err)
	}

	admin := models.User{
		Username:     "admin",
		Email:        email,
		PasswordHash: string(passwordHash),
		Role:         models.RoleAdmin,
		IsApproved:   true,
	}
	if err := DB.Create(&admin).Error; err != nil {
		log.Fatalf("Error creating admin account: %v", err)
	}
	log.Printf("Admin account %s created", email)
}

// runClearDB drops every application table. Development helper, destructive.
func runClearDB() {
	DB, err := db.NewPSQLStorage()
	if err != nil {
		log.Fatalf("Database initialization error: %v", err)
	}
	defer closeDB(DB)

	tables := []interface{}{
		&models.Message{},
		&models.Appointment{},
		&models.AvailabilitySlot{},
		&models.Teacher{},
		&models.User{},
	}
	for _, table := range tables {
		if err := DB.Migrator().DropTable(table); err != nil {
			log.Fatalf("Error dropping table: %v", err)
		}
	}
	log.Println("All tables dropped")
}

func createDirectoryIfNotExist(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := os.MkdirAll(path, 0755); err != nil {
			return fmt.Errorf("could not create directory %s: %w", path, err)
		}
	}
	return nil
}

func closeDB(DB *gorm.DB) {
	sqlDB, _ := DB.DB()
	sqlDB.Close()
	log.Println("Database connection closed")
}

func startServer() {
	DB, err := db.NewPSQLStorage()
	if err != nil {
		log.Fatalf("Database initialization error: %v", err)
	}
	defer closeDB(DB)
	log.Println("Connected to the database")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	port := os.Getenv("SERVER_PORT")
	if port == "" {
		port = "8080"
	}
	server := api.NewApiServer(":"+port, DB)

	go func() {
		if err := server.Run(); err != nil {
			log.Fatalf("Server error: %v", err)
		}
	}()
	log.Printf("Server running on port %s", port)

	<-quit
	log.Println("Shutting down server...")
}
