package mail

import (
	"fmt"

	"gopkg.in/gomail.v2"
)

// Mailer dispatches outbound account mail.
type Mailer interface {
	SendPasswordReset(to, newPassword string) error
}

// SMTPMailer sends mail through a plain SMTP transport.
type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPMailer(host string, port int, username, password, from string) *SMTPMailer {
	return &SMTPMailer{
		dialer: gomail.NewDialer(host, port, username, password),
		from:   from,
	}
}

// SendPasswordReset mails the freshly generated plaintext password to
// the account owner.
func (m *SMTPMailer) SendPasswordReset(to, newPassword string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", "Cookify 🍪 - Account Password Reset")
	msg.SetBody("text/plain", fmt.Sprintf("Your new password is %s", newPassword))
	msg.AddAlternative("text/html", fmt.Sprintf("<p>Your new password is <b>%s</b></p>", newPassword))

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("send password reset mail: %w", err)
	}
	return nil
}
