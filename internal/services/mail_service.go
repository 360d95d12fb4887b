package services

import (
	"bytes"
	"context"
	"fmt"
	"net/smtp"
	"strings"
	"text/template"

	"neor/internal/config"
	"neor/internal/logger"
)

// Mailer delivers a plain text message to one recipient.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// NewMailer returns an SMTP mailer, or a logging one when SMTP is not
// configured so that codes are still visible in development.
func NewMailer(cfg config.SMTPConfig, log *logger.Logger) Mailer {
	log = log.WithComponent("mail")
	if !cfg.Enabled() {
		log.Warn("SMTP disabled: missing SMTP environment variables, emails will only be logged")
		return &logMailer{log: log}
	}
	return &SMTPMailer{cfg: cfg, log: log}
}

type SMTPMailer struct {
	cfg config.SMTPConfig
	log *logger.Logger
}

func (s *SMTPMailer) Send(ctx context.Context, to, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.ContainsAny(to, "\r\n") || strings.ContainsAny(subject, "\r\n") {
		return fmt.Errorf("mail: header injection attempt")
	}

	auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	addr := s.cfg.Host + ":" + s.cfg.Port

	msg := []byte("To: " + to + "\r\n" +
		"From: neor <" + s.cfg.From + ">\r\n" +
		"Subject: " + subject + "\r\n" +
		"MIME-version: 1.0;\r\nContent-Type: text/plain; charset=\"UTF-8\";\r\n\r\n" +
		body)

	if err := smtp.SendMail(addr, auth, s.cfg.From, []string{to}, msg); err != nil {
		s.log.Errorw("Failed to send email", "to", to, "error", err)
		return fmt.Errorf("mail: send: %w", err)
	}
	s.log.Infow("Email sent", "to", to, "subject", subject)
	return nil
}

type logMailer struct {
	log *logger.Logger
}

func (m *logMailer) Send(_ context.Context, to, subject, body string) error {
	m.log.Infow("Email (not sent)", "to", to, "subject", subject, "body", body)
	return nil
}

var emailTemplates = template.Must(template.New("email").Parse(`
{{define "verification"}}Your registration verification code is {{.Code}}.

To proceed go to https://{{.Domain}}/email-verification

If you didn't sign up at https://{{.Domain}} ignore this message.{{end}}
{{define "reset"}}Your password reset code is {{.Code}}.

To proceed go to https://{{.Domain}}/password-change

If you didn't request a password reset at https://{{.Domain}} ignore this message.{{end}}
{{define "changed"}}The password of your account at https://{{.Domain}} was changed.

If this wasn't you, reset your password at https://{{.Domain}}/password-reset{{end}}
`))

func renderEmail(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := emailTemplates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("failed to execute template %s: %w", name, err)
	}
	return buf.String(), nil
}
