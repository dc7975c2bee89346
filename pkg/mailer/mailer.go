// Package mailer sends transactional email over SMTP.
//
// The defaults point at Mailtrap (smtp.mailtrap.io:2525), which is useful for
// development and testing environments.
package mailer

import (
	"fmt"
	"net/smtp"
	"strings"
)

// Config holds the SMTP settings.
type Config struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string // Sender address, must be accepted by the SMTP account
}

// Mailer sends email through one SMTP account.
type Mailer struct {
	cfg  Config
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// New validates cfg and returns a Mailer.
func New(cfg Config) (*Mailer, error) {
	if cfg.Host == "" || cfg.Port == "" {
		return nil, fmt.Errorf("SMTP host and port must be provided")
	}
	if cfg.Username == "" || cfg.Password == "" {
		return nil, fmt.Errorf("SMTP username and password must be provided")
	}
	if cfg.From == "" {
		return nil, fmt.Errorf("sender email address cannot be empty")
	}
	return &Mailer{cfg: cfg, send: smtp.SendMail}, nil
}

// SendEmail sends body to recipient. The Content-Type is text/html when body
// looks like HTML and text/plain otherwise.
func (m *Mailer) SendEmail(recipient, subject, body string) error {
	if recipient == "" {
		return fmt.Errorf("recipient email address cannot be empty")
	}
	if subject == "" {
		return fmt.Errorf("email subject cannot be empty")
	}

	auth := smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	addr := m.cfg.Host + ":" + m.cfg.Port
	if err := m.send(addr, auth, m.cfg.From, []string{recipient}, buildMessage(recipient, m.cfg.From, subject, body)); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

func buildMessage(recipient, sender, subject, body string) []byte {
	contentType := "text/plain; charset=UTF-8"
	lower := strings.ToLower(body)
	if strings.Contains(lower, "<html>") || strings.Contains(lower, "<p>") {
		contentType = "text/html; charset=UTF-8"
	}

	return []byte(fmt.Sprintf("To: %s\r\n"+
		"From: %s\r\n"+
		"Subject: %s\r\n"+
		"Content-Type: %s\r\n"+
		"\r\n"+
		"%s\r\n", recipient, sender, subject, contentType, body))
}
