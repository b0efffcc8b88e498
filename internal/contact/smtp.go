package contact

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/smtp"
	"strings"
)

// ErrNotConfigured is returned when SMTP credentials are missing.
var ErrNotConfigured = errors.New("SMTP credentials not configured")

// Envelope is one outgoing contact email.
type Envelope struct {
	FromName  string
	FromEmail string
	Subject   string
	Budget    string
	Body      string
}

// Sender delivers a contact email.
type Sender interface {
	Send(ctx context.Context, e Envelope) error
}

// SMTPSender sends mail through an authenticated SMTP relay.
type SMTPSender struct {
	Host     string
	Port     string
	User     string
	Password string
	To       string

	// send is smtp.SendMail unless replaced in tests.
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func (s *SMTPSender) Send(ctx context.Context, e Envelope) error {
	if s.User == "" || s.Password == "" {
		return ErrNotConfigured
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	send := s.send
	if send == nil {
		send = smtp.SendMail
	}

	auth := smtp.PlainAuth("", s.User, s.Password, s.Host)
	if err := send(net.JoinHostPort(s.Host, s.Port), auth, s.User, []string{s.To}, s.compose(e)); err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	return nil
}

func (s *SMTPSender) compose(e Envelope) []byte {
	subject := fmt.Sprintf("Portfolio Contact: %s (%s)", headerSafe(e.FromName), headerSafe(e.Subject))

	var body strings.Builder
	body.WriteString("New contact form submission from your portfolio:\r\n\r\n")
	fmt.Fprintf(&body, "Name: %s\r\n", headerSafe(e.FromName))
	fmt.Fprintf(&body, "Email: %s\r\n", headerSafe(e.FromEmail))
	fmt.Fprintf(&body, "Subject: %s\r\n", headerSafe(e.Subject))
	if e.Budget != "" {
		fmt.Fprintf(&body, "Budget: %s\r\n", headerSafe(e.Budget))
	}
	fmt.Fprintf(&body, "Message:\r\n%s\r\n\r\n", e.Body)
	body.WriteString("---\r\nSent from your portfolio contact form\r\n")

	return []byte("To: " + s.To + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"From: " + s.User + "\r\n" +
		"Reply-To: " + headerSafe(e.FromEmail) + "\r\n" +
		"Content-Type: text/plain; charset=UTF-8\r\n" +
		"\r\n" +
		body.String())
}

// headerSafe strips CR and LF so user input cannot inject headers.
func headerSafe(s string) string {
	return strings.NewReplacer("\r", " ", "\n", " ").Replace(s)
}
