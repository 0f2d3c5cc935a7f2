package api

import (
	"log"
	"net/http"
	"os"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"gorm.io/gorm"

	"github.com/kbaidoo/EduMeet-server/cmd/utils"
	"github.com/kbaidoo/EduMeet-server/service/admin"
	"github.com/kbaidoo/EduMeet-server/service/appointment"
	"github.com/kbaidoo/EduMeet-server/service/auth"
	"github.com/kbaidoo/EduMeet-server/service/message"
	"github.com/kbaidoo/EduMeet-server/service/notification"
)

type APIServer struct {
	address string
	db      *gorm.DB
}

func NewApiServer(address string, db *gorm.DB) *APIServer {
	return &APIServer{
		address: address,
		db:      db,
	}
}

func (s *APIServer) Run() error {
	router := mux.NewRouter()
	subrouter := router.PathPrefix("/api/v1").Subrouter()

	mailer := notification.NewMailerFromEnv()

	authHandler := auth.NewHandler(s.db, mailer, mailer.AdminEmail())
	authHandler.RegisterRoutes(subrouter)
	authHandler.RegisterImageRoutes(router)

	appointmentHandler := appointment.NewAppointmentHandler(s.db, mailer)
	appointmentHandler.RegisterRoutes(subrouter)

	adminHandler := admin.NewAdminHandler(s.db)
	adminHandler.RegisterRoutes(subrouter)

	messageHandler := message.NewMessageHandler(s.db)
	messageHandler.RegisterRoutes(subrouter)

	origin := os.Getenv("CLIENT_ORIGIN")
	if origin == "" {
		origin = "http://localhost:5173"
	}
	cors := handlers.CORS(
		handlers.AllowedOrigins([]string{origin}),
		handlers.AllowedMethods([]string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"}),
		handlers.AllowedHeaders([]string{"Content-Type"}),
		handlers.AllowCredentials(),
	)

	log.Println("Server running at", s.address)
	return http.ListenAndServe(s.address, cors(utils.AuthMiddleware(router)))
}
