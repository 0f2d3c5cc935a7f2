package notification

import (
	"log"
	"os"
	"strconv"

	"gopkg.in/gomail.v2"
)

// Event is one outbound email. Delivery is best effort: a failed or skipped
// send never fails the operation that raised the event.
type Event struct {
	To      string
	Subject string
	Body    string
}

// Notifier dispatches an event without blocking the caller. The return value
// reports whether the event was accepted for delivery, not whether delivery
// succeeded.
type Notifier interface {
	Notify(event Event) bool
}

// Mailer sends events over SMTP on a background goroutine.
type Mailer struct {
	dialer     *gomail.Dialer
	from       string
	adminEmail string
}

// NewMailerFromEnv builds a Mailer from SMTP_HOST, SMTP_PORT, SMTP_USER,
// SMTP_PASS and ADMIN_EMAIL. With no SMTP host configured it degrades to a
// mailer that drops every event.
func NewMailerFromEnv() *Mailer {
	host := os.Getenv("SMTP_HOST")
	if host == "" {
		return &Mailer{adminEmail: os.Getenv("ADMIN_EMAIL")}
	}

	port, err := strconv.Atoi(os.Getenv("SMTP_PORT"))
	if err != nil {
		port = 587
	}
	user := os.Getenv("SMTP_USER")

	return &Mailer{
		dialer:     gomail.NewDialer(host, port, user, os.Getenv("SMTP_PASS")),
		from:       user,
		adminEmail: os.Getenv("ADMIN_EMAIL"),
	}
}

// AdminEmail is the configured administrator contact. Registration events go
// here instead of looking up "the" admin account at runtime.
func (m *Mailer) AdminEmail() string {
	return m.adminEmail
}

func (m *Mailer) Notify(event Event) bool {
	if m.dialer == nil || event.To == "" {
		return false
	}

	go func() {
		msg := gomail.NewMessage()
		msg.SetHeader("From", m.from)
		msg.SetHeader("To", event.To)
		msg.SetHeader("Subject", event.Subject)
		msg.SetBody("text/plain", event.Body)

		if err := m.dialer.DialAndSend(msg); err != nil {
			log.Printf("notification to %s failed: %v", event.To, err)
		}
	}()
	return true
}

// Noop swallows every event. Used in tests.
type Noop struct{}

func (Noop) Notify(Event) bool { return false }
