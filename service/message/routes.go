package message

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"gorm.io/gorm"

	"github.com/kbaidoo/EduMeet-server/cmd/models"
	"github.com/kbaidoo/EduMeet-server/cmd/utils"
)

type MessageHandler struct {
	db *gorm.DB
}

func NewMessageHandler(db *gorm.DB) *MessageHandler {
	return &MessageHandler{db: db}
}

func (h *MessageHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/messages/send", utils.RequireAuth(h.SendMessage)).Methods("POST")
	router.HandleFunc("/messages/{appointmentId}", utils.RequireAuth(h.GetMessages)).Methods("GET")
	router.HandleFunc("/messages/{messageId}/read", utils.RequireAuth(h.MarkAsRead)).Methods("PATCH")
}

// SendMessage stores a chat message scoped to one appointment. The receiver
// is derived from the appointment; a client-supplied receiver_id that
// disagrees with it is rejected rather than honoured.
func (h *MessageHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	var sendRequest struct {
		AppointmentID uint   `json:"appointmentId"`
		ReceiverID    uint   `json:"receiverId"`
		Content       string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&sendRequest); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if sendRequest.AppointmentID == 0 || sendRequest.Content == "" {
		http.Error(w, "Please provide all required fields", http.StatusBadRequest)
		return
	}

	senderID, _ := utils.GetUserIDFromContext(r)
	senderRole, _ := utils.GetRoleFromContext(r)

	var appointment models.Appointment
	if err := h.db.First(&appointment, sendRequest.AppointmentID).Error; err != nil {
		http.Error(w, "Appointment not found", http.StatusNotFound)
		return
	}

	receiverID, receiverRole, err := counterparty(appointment, senderID, senderRole)
	if err != nil {
		http.Error(w, "Not authorized to message on this appointment", http.StatusForbidden)
		return
	}
	if sendRequest.ReceiverID != 0 && sendRequest.ReceiverID != receiverID {
		http.Error(w, "Receiver is not a participant of this appointment", http.StatusForbidden)
		return
	}
	if !messagingOpen(appointment.Status) {
		http.Error(w, "Messaging is closed for this appointment", http.StatusForbidden)
		return
	}

	message := models.Message{
		AppointmentID: appointment.ID,
		SenderID:      senderID,
		SenderRole:    senderRole,
		ReceiverID:    receiverID,
		ReceiverRole:  receiverRole,
		Content:       sendRequest.Content,
		Read:          false,
	}
	if err := h.db.Create(&message).Error; err != nil {
		http.Error(w, "Error sending message", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success":      true,
		"message":      message,
		"senderName":   h.displayName(message.SenderID, message.SenderRole),
		"receiverName": h.displayName(message.ReceiverID, message.ReceiverRole),
	})
}

// GetMessages returns the full thread for an appointment, oldest first.
// Only the two participants may read it.
func (h *MessageHandler) GetMessages(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	appointmentID, err := strconv.ParseUint(vars["appointmentId"], 10, 64)
	if err != nil {
		http.Error(w, "Invalid appointment ID", http.StatusBadRequest)
		return
	}

	requesterID, _ := utils.GetUserIDFromContext(r)
	requesterRole, _ := utils.GetRoleFromContext(r)

	var appointment models.Appointment
	if err := h.db.First(&appointment, appointmentID).Error; err != nil {
		http.Error(w, "Appointment not found", http.StatusNotFound)
		return
	}
	if !isParticipant(appointment, requesterID, requesterRole) {
		http.Error(w, "Not authorized to view these messages", http.StatusForbidden)
		return
	}

	var messages []models.Message
	if err := h.db.Where("appointment_id = ?", appointmentID).
		Order("created_at ASC, id ASC").
		Find(&messages).Error; err != nil {
		http.Error(w, "Error retrieving messages", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success":  true,
		"messages": messages,
	})
}

// MarkAsRead flips the read flag, only for the designated receiver of an
// unread message. "Already read" and "not yours" deliberately look the same.
func (h *MessageHandler) MarkAsRead(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	messageID, err := strconv.ParseUint(vars["messageId"], 10, 64)
	if err != nil {
		http.Error(w, "Invalid message ID", http.StatusBadRequest)
		return
	}

	requesterID, _ := utils.GetUserIDFromContext(r)
	requesterRole, _ := utils.GetRoleFromContext(r)

	result := h.db.Model(&models.Message{}).
		Where("id = ? AND receiver_id = ? AND receiver_role = ? AND read = ?",
			messageID, requesterID, requesterRole, false).
		Update("read", true)
	if result.Error != nil {
		http.Error(w, "Error updating message", http.StatusInternalServerError)
		return
	}
	if result.RowsAffected == 0 {
		http.Error(w, "Message not found", http.StatusNotFound)
		return
	}

	var message models.Message
	if err := h.db.First(&message, messageID).Error; err != nil {
		http.Error(w, "Message not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": true,
		"message": message,
	})
}

func (h *MessageHandler) displayName(id uint, role string) string {
	if role == models.RoleTeacher {
		var teacher models.Teacher
		if err := h.db.First(&teacher, id).Error; err != nil {
			return models.DeletedTeacherName
		}
		return teacher.Name
	}
	var user models.User
	if err := h.db.First(&user, id).Error; err != nil {
		return models.DeletedUserName
	}
	return user.Username
}
