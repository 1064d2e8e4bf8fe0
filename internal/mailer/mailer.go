// Package mailer sends plain-text email over SMTP.
package mailer

import (
	"context"
	"fmt"
	"net/smtp"
)

// SMTPConfig holds the server credentials used for one send. Values come
// from the settings snapshot at call time.
type SMTPConfig struct {
	Server   string
	Port     string
	Username string
	Password string
}

// ConfigSource supplies fresh SMTP settings per call.
type ConfigSource func() SMTPConfig

// SMTPMailer implements bot.Mailer with net/smtp.
type SMTPMailer struct {
	config ConfigSource
	// send is swappable for tests; defaults to smtp.SendMail.
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// New constructs an SMTPMailer.
func New(config ConfigSource) *SMTPMailer {
	return &SMTPMailer{
		config: config,
		send:   smtp.SendMail,
	}
}

// Send delivers one plain-text message. Missing server or username settings
// are a configuration error, reported explicitly.
func (m *SMTPMailer) Send(ctx context.Context, to, subject, body string) error {
	cfg := m.config()
	if cfg.Server == "" || cfg.Username == "" {
		return fmt.Errorf("smtp settings are not configured")
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("send mail: %w", err)
	}

	msg := "From: " + cfg.Username + "\r\n" +
		"To: " + to + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"Content-Type: text/plain; charset=UTF-8\r\n\r\n" +
		body + "\r\n"
	addr := fmt.Sprintf("%s:%s", cfg.Server, cfg.Port)
	auth := smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Server)
	if err := m.send(addr, auth, cfg.Username, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	return nil
}
