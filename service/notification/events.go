package notification

import (
	"fmt"

	"github.com/kbaidoo/EduMeet-server/cmd/models"
)

const signature = "\n\nBest regards,\nTeacher Appointment System"

func StudentRegistered(adminEmail string, student models.User) Event {
	return Event{
		To:      adminEmail,
		Subject: "New User Registration",
		Body: fmt.Sprintf("A new user has registered:\nUsername: %s\nEmail: %s",
			student.Username, student.Email),
	}
}

func TeacherRegistered(adminEmail string, teacher models.Teacher) Event {
	return Event{
		To:      adminEmail,
		Subject: "New Teacher Registration",
		Body: fmt.Sprintf("A new teacher has registered and needs approval:\nName: %s\nEmail: %s\nDepartment: %s",
			teacher.Name, teacher.Email, teacher.Department),
	}
}

func AppointmentRequested(teacher models.Teacher, student models.User, appt models.Appointment) Event {
	return Event{
		To:      teacher.Email,
		Subject: "New Appointment Request",
		Body: fmt.Sprintf(
			"Dear %s,\n\nYou have received a new appointment request:\n\nStudent: %s\nDate: %s\nTime: %s - %s\nPurpose: %s\nMessage: %s\n\nPlease log in to your dashboard to approve or reject this request.%s",
			teacher.Name, student.Username, appt.Date, appt.StartTime, appt.EndTime,
			appt.Subject, appt.Message, signature),
	}
}

func AppointmentRequestConfirmation(student models.User, teacher models.Teacher, appt models.Appointment) Event {
	return Event{
		To:      student.Email,
		Subject: "Appointment Request Confirmation",
		Body: fmt.Sprintf(
			"Dear %s,\n\nYour appointment request has been submitted:\n\nTeacher: %s\nDate: %s\nTime: %s - %s\nPurpose: %s\n\nYou will receive another email when the teacher responds to your request.%s",
			student.Username, teacher.Name, appt.Date, appt.StartTime, appt.EndTime,
			appt.Subject, signature),
	}
}

func AppointmentDecided(student models.User, appt models.Appointment) Event {
	followUp := "Please feel free to book another appointment."
	if appt.Status == models.StatusApproved {
		followUp = "Please be on time for your appointment."
	}
	return Event{
		To:      student.Email,
		Subject: fmt.Sprintf("Appointment %s", appt.Status),
		Body: fmt.Sprintf(
			"Dear %s,\n\nYour appointment scheduled for %s from %s to %s has been %s.\n%s%s",
			student.Username, appt.Date, appt.StartTime, appt.EndTime, appt.Status,
			followUp, signature),
	}
}

func AppointmentCancelled(teacher models.Teacher, appt models.Appointment) Event {
	return Event{
		To:      teacher.Email,
		Subject: "Appointment Cancelled",
		Body: fmt.Sprintf(
			"Dear %s,\n\nThe following appointment has been cancelled by the student:\n\nDate: %s\nTime: %s - %s\n\nThe time slot is now available for other bookings.%s",
			teacher.Name, appt.Date, appt.StartTime, appt.EndTime, signature),
	}
}
