package provider

import (
	"context"
	"fmt"
	"net/smtp"
)

// SMTPSender delivers email through a plain SMTP relay.  The stdlib client
// is enough here: messages are single-part text, one recipient each.
type SMTPSender struct {
	host string
	port int
	user string
	pass string
	from string
}

func NewSMTPSender(host string, port int, user, pass, from string) *SMTPSender {
	return &SMTPSender{host: host, port: port, user: user, pass: pass, from: from}
}

// Send submits the message.  net/smtp has no context support; the dial
// timeout is bounded by the relay's TCP defaults, and callers already
// treat delivery as best-effort.
func (s *SMTPSender) Send(_ context.Context, destination, subject, body string) error {
	addr := fmt.Sprintf("%s:%d", s.host, s.port)
	msg := []byte(fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n%s\r\n",
		s.from, destination, subject, body))
	var auth smtp.Auth
	if s.user != "" {
		auth = smtp.PlainAuth("", s.user, s.pass, s.host)
	}
	return smtp.SendMail(addr, auth, s.from, []string{destination}, msg)
}
