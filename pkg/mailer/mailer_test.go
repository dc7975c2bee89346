package mailer

import (
	"errors"
	"net/smtp"
	"strings"
	"testing"
)

type sentMail struct {
	addr string
	from string
	to   []string
	msg  string
}

func newTestMailer(t *testing.T, sendErr error) (*Mailer, *[]sentMail) {
	t.Helper()
	m, err := New(Config{Host: "smtp.test", Port: "2525", Username: "u", Password: "p", From: "noreply@lifeledger.test"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	var sent []sentMail
	m.send = func(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
		sent = append(sent, sentMail{addr: addr, from: from, to: to, msg: string(msg)})
		return sendErr
	}
	return m, &sent
}

func TestNewValidatesConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"missing host", Config{Port: "25", Username: "u", Password: "p", From: "a@x.io"}},
		{"missing credentials", Config{Host: "h", Port: "25", From: "a@x.io"}},
		{"missing sender", Config{Host: "h", Port: "25", Username: "u", Password: "p"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := New(tc.cfg); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestSendEmail(t *testing.T) {
	m, sent := newTestMailer(t, nil)

	if err := m.SendEmail("buyer@x.io", "Receipt", "<p>Thanks</p>"); err != nil {
		t.Fatalf("SendEmail: %v", err)
	}
	if len(*sent) != 1 {
		t.Fatalf("sent %d messages, want 1", len(*sent))
	}
	got := (*sent)[0]
	if got.addr != "smtp.test:2525" || got.from != "noreply@lifeledger.test" || got.to[0] != "buyer@x.io" {
		t.Errorf("unexpected envelope: %+v", got)
	}
	if !strings.Contains(got.msg, "Content-Type: text/html") || !strings.Contains(got.msg, "Subject: Receipt\r\n") {
		t.Errorf("unexpected message:\n%s", got.msg)
	}

	if err := m.SendEmail("buyer@x.io", "Plain", "thanks"); err != nil {
		t.Fatalf("SendEmail: %v", err)
	}
	if !strings.Contains((*sent)[1].msg, "Content-Type: text/plain") {
		t.Errorf("plain body sent as %q", (*sent)[1].msg)
	}
}

func TestSendEmailErrors(t *testing.T) {
	m, sent := newTestMailer(t, errors.New("connection refused"))

	if err := m.SendEmail("", "s", "b"); err == nil {
		t.Error("expected error for empty recipient")
	}
	if err := m.SendEmail("a@x.io", "", "b"); err == nil {
		t.Error("expected error for empty subject")
	}
	if len(*sent) != 0 {
		t.Errorf("validation failures reached SMTP: %d", len(*sent))
	}
	if err := m.SendEmail("a@x.io", "s", "b"); err == nil || !strings.Contains(err.Error(), "connection refused") {
		t.Errorf("err = %v, want wrapped send error", err)
	}
}
