// Package mail delivers account confirmation messages over SMTP.
package mail

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"strings"

	"gopkg.in/gomail.v2"
)

// ConfirmPath is appended to the base URL to build the confirmation link.
const ConfirmPath = "api/auth/confirmed_email/"

// Confirmation is a single confirmation mail.
type Confirmation struct {
	Email    string
	Username string
	Token    string
	BaseURL  string
}

// Link returns the confirmation URL carried by the message.
func (c Confirmation) Link() string {
	base := c.BaseURL
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	return base + ConfirmPath + c.Token
}

// Sender delivers a confirmation synchronously.
type Sender interface {
	Send(ctx context.Context, c Confirmation) error
}

var confirmTemplate = template.Must(template.New("confirm").Parse(`<!DOCTYPE html>
<html>
<body>
<p>Hi {{.Username}},</p>
<p>Thanks for signing up. Please confirm your email address by following the link below:</p>
<p><a href="{{.Link}}">Confirm email</a></p>
<p>If you did not create an account, ignore this message.</p>
</body>
</html>`))

// SMTPConfig holds the SMTP relay settings.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string
}

// SMTPSender sends confirmations through an SMTP relay. Port 465 uses
// implicit TLS; other ports upgrade with STARTTLS when offered.
type SMTPSender struct {
	cfg    SMTPConfig
	dialer *gomail.Dialer
}

// NewSMTPSender creates an SMTPSender.
func NewSMTPSender(cfg SMTPConfig) *SMTPSender {
	return &SMTPSender{
		cfg:    cfg,
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
	}
}

// Send renders and delivers c.
func (s *SMTPSender) Send(ctx context.Context, c Confirmation) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m, err := s.message(c)
	if err != nil {
		return err
	}
	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("smtp send to %s: %w", c.Email, err)
	}
	return nil
}

func (s *SMTPSender) message(c Confirmation) (*gomail.Message, error) {
	body, err := renderConfirmation(c)
	if err != nil {
		return nil, err
	}

	m := gomail.NewMessage()
	m.SetAddressHeader("From", s.cfg.From, s.cfg.FromName)
	m.SetHeader("To", c.Email)
	m.SetHeader("Subject", "Confirm your email")
	m.SetBody("text/html", body)
	return m, nil
}

func renderConfirmation(c Confirmation) (string, error) {
	var buf bytes.Buffer
	if err := confirmTemplate.Execute(&buf, c); err != nil {
		return "", fmt.Errorf("render confirmation: %w", err)
	}
	return buf.String(), nil
}
