package email

import (
	"fmt"
	"net/smtp"
	"strings"

	"github.com/Dias221467/habit_tracker/internal/config"
)

// Mailer sends plain text email over SMTP.
type Mailer struct {
	host     string
	port     string
	sender   string
	password string
	send     func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// NewMailer returns nil when SMTP is not configured.
func NewMailer(cfg *config.Config) *Mailer {
	if cfg.SMTPHost == "" || cfg.SMTPSender == "" {
		return nil
	}
	return &Mailer{
		host:     cfg.SMTPHost,
		port:     cfg.SMTPPort,
		sender:   cfg.SMTPSender,
		password: cfg.SMTPPassword,
		send:     smtp.SendMail,
	}
}

// SendEmail sends a plain text email to a single recipient.
func (m *Mailer) SendEmail(to, subject, body string) error {
	auth := smtp.PlainAuth("", m.sender, m.password, m.host)
	address := m.host + ":" + m.port

	if err := m.send(address, auth, m.sender, []string{to}, composeMessage(m.sender, to, subject, body)); err != nil {
		return fmt.Errorf("failed to send email: %v", err)
	}
	return nil
}

func composeMessage(from, to, subject, body string) []byte {
	// Header values must not carry line breaks.
	clean := strings.NewReplacer("\r", "", "\n", " ")
	return []byte("From: " + clean.Replace(from) + "\r\n" +
		"To: " + clean.Replace(to) + "\r\n" +
		"Subject: " + clean.Replace(subject) + "\r\n" +
		"Content-Type: text/plain; charset=UTF-8\r\n" +
		"\r\n" + body + "\r\n")
}
