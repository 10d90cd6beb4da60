package mailer

import (
	"crypto/tls"
	"fmt"
	"net/smtp"

	"github.com/djangocameroon/website-api/pkg/config"
)

// Transport delivers a rendered HTML email.
type Transport interface {
	Send(to, subject, htmlBody string) error
}

// SMTPTransport sends mail over implicit TLS.
type SMTPTransport struct {
	cfg config.SMTPConfig
}

// NewSMTPTransport constructs the SMTP transport.
func NewSMTPTransport(cfg config.SMTPConfig) *SMTPTransport {
	return &SMTPTransport{cfg: cfg}
}

// Send dials the SMTP server, authenticates, and submits one message.
func (t *SMTPTransport) Send(to, subject, htmlBody string) error {
	from := t.cfg.FromEmail
	if from == "" {
		from = t.cfg.Username
	}

	msg := []byte(
		fmt.Sprintf("From: %s\r\n", from) +
			fmt.Sprintf("To: %s\r\n", to) +
			fmt.Sprintf("Subject: %s\r\n", subject) +
			"MIME-Version: 1.0\r\n" +
			"Content-Type: text/html; charset=\"utf-8\"\r\n" +
			"\r\n" +
			htmlBody,
	)

	serverAddr := t.cfg.Host + ":" + t.cfg.Port

	conn, err := tls.Dial("tcp", serverAddr, &tls.Config{ServerName: t.cfg.Host})
	if err != nil {
		return fmt.Errorf("dial smtp server: %w", err)
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, t.cfg.Host)
	if err != nil {
		return fmt.Errorf("smtp handshake: %w", err)
	}
	defer client.Quit()

	auth := smtp.PlainAuth("", t.cfg.Username, t.cfg.Password, t.cfg.Host)
	if err := client.Auth(auth); err != nil {
		return fmt.Errorf("smtp auth: %w", err)
	}

	if err := client.Mail(from); err != nil {
		return fmt.Errorf("smtp mail from: %w", err)
	}
	if err := client.Rcpt(to); err != nil {
		return fmt.Errorf("smtp rcpt to: %w", err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("smtp data: %w", err)
	}
	if _, err := w.Write(msg); err != nil {
		return fmt.Errorf("smtp write body: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("smtp close body: %w", err)
	}

	return nil
}
