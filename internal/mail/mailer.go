package mail

import (
	"gopkg.in/gomail.v2"
)

// Mailer sends plain-text mail over SMTP.
type Mailer struct {
	dialer *gomail.Dialer
	sender string
}

// NewMailer creates a new Mailer.
func NewMailer(host string, port int, username, password, sender string) *Mailer {
	return &Mailer{
		dialer: gomail.NewDialer(host, port, username, password),
		sender: sender,
	}
}

// Send delivers one message to the given recipients.
func (m *Mailer) Send(to []string, subject, body string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.sender)
	msg.SetHeader("To", to...)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)

	return m.dialer.DialAndSend(msg)
}
