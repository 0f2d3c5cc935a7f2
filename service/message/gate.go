package message

import (
	"errors"

	"github.com/kbaidoo/EduMeet-server/cmd/models"
)

var errNotParticipant = errors.New("sender is not a participant of this appointment")

// counterparty resolves the receiver from the appointment itself. The client
// never chooses who a message goes to; the appointment does.
func counterparty(appt models.Appointment, senderID uint, senderRole string) (uint, string, error) {
	switch senderRole {
	case models.RoleTeacher:
		if senderID != appt.TeacherID {
			return 0, "", errNotParticipant
		}
		return appt.StudentID, models.RoleUser, nil
	case models.RoleUser:
		if senderID != appt.StudentID {
			return 0, "", errNotParticipant
		}
		return appt.TeacherID, models.RoleTeacher, nil
	default:
		return 0, "", errNotParticipant
	}
}

func isParticipant(appt models.Appointment, id uint, role string) bool {
	_, _, err := counterparty(appt, id, role)
	return err == nil
}

// messagingOpen allows chat while an appointment is pending or approved.
// Terminal rejections and cancellations close the thread.
func messagingOpen(status string) bool {
	return status == models.StatusPending || status == models.StatusApproved
}
