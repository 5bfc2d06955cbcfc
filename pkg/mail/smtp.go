// Package mail sends repaired templates to a test inbox.
package mail

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net/mail"
	"net/smtp"
	"net/textproto"
	"strconv"
	"strings"
	"time"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/google/uuid"

	"github.com/joeblew999/plat-mailfix/pkg/config"
)

// ErrNoRecipients is returned for a message without recipients.
var ErrNoRecipients = errors.New("no recipients")

// Config holds configuration for sending emails via SMTP.
type Config struct {
	SMTPHost  string
	SMTPPort  string
	Username  string
	Password  string
	FromEmail string
	FromName  string
}

// ConfigFromEnv builds a Config from the SMTP_* environment variables.
func ConfigFromEnv() Config {
	s := config.GetSMTP()
	return Config{
		SMTPHost:  s.Host,
		SMTPPort:  strconv.Itoa(s.Port),
		Username:  s.Username,
		Password:  s.Password,
		FromEmail: s.From,
		FromName:  s.FromName,
	}
}

// Validate reports missing settings.
func (c Config) Validate() error {
	var missing []string
	if c.SMTPHost == "" {
		missing = append(missing, "SMTP_HOST")
	}
	if c.FromEmail == "" {
		missing = append(missing, "SMTP_FROM")
	}
	if len(missing) > 0 {
		return fmt.Errorf("smtp not configured: missing %s", strings.Join(missing, ", "))
	}
	if _, err := mail.ParseAddress(c.FromEmail); err != nil {
		return fmt.Errorf("invalid sender %q: %w", c.FromEmail, err)
	}
	return nil
}

// Message is one test send.
type Message struct {
	To      []string
	Subject string
	HTML    string
	Text    string
}

// NewMessage builds a message whose text alternative is derived from html.
func NewMessage(to []string, subject, html string) (Message, error) {
	if len(to) == 0 {
		return Message{}, ErrNoRecipients
	}
	for _, addr := range to {
		if _, err := mail.ParseAddress(addr); err != nil {
			return Message{}, fmt.Errorf("invalid recipient %q: %w", addr, err)
		}
	}
	text, err := PlainText(html)
	if err != nil {
		return Message{}, err
	}
	return Message{To: to, Subject: subject, HTML: html, Text: text}, nil
}

// PlainText converts an email body to Markdown, which reads acceptably
// as a text/plain part.
func PlainText(html string) (string, error) {
	text, err := htmltomarkdown.ConvertString(html)
	if err != nil {
		return "", fmt.Errorf("convert to text: %w", err)
	}
	return strings.TrimSpace(text), nil
}

// Build encodes m as a multipart/alternative message from c's sender.
func (c Config) Build(m Message, now time.Time) ([]byte, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	parts := []struct{ contentType, content string }{
		{"text/plain; charset=UTF-8", m.Text},
		{"text/html; charset=UTF-8", m.HTML},
	}
	for _, p := range parts {
		header := textproto.MIMEHeader{}
		header.Set("Content-Type", p.contentType)
		header.Set("Content-Transfer-Encoding", "quoted-printable")
		pw, err := mw.CreatePart(header)
		if err != nil {
			return nil, err
		}
		qp := quotedprintable.NewWriter(pw)
		if _, err := qp.Write([]byte(p.content)); err != nil {
			return nil, err
		}
		if err := qp.Close(); err != nil {
			return nil, err
		}
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	from := mail.Address{Name: c.FromName, Address: c.FromEmail}
	domain := "localhost"
	if _, d, ok := strings.Cut(c.FromEmail, "@"); ok {
		domain = d
	}

	var msg bytes.Buffer
	fmt.Fprintf(&msg, "From: %s\r\n", from.String())
	fmt.Fprintf(&msg, "To: %s\r\n", strings.Join(m.To, ", "))
	fmt.Fprintf(&msg, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", m.Subject))
	fmt.Fprintf(&msg, "Date: %s\r\n", now.Format(time.RFC1123Z))
	fmt.Fprintf(&msg, "Message-ID: <%s@%s>\r\n", uuid.NewString(), domain)
	msg.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&msg, "Content-Type: multipart/alternative; boundary=%q\r\n", mw.Boundary())
	msg.WriteString("\r\n")
	msg.Write(body.Bytes())
	return msg.Bytes(), nil
}

// Sender delivers one message.
type Sender interface {
	Send(ctx context.Context, m Message) error
}

// SMTPSender sends through net/smtp with PLAIN auth when a username is set.
type SMTPSender struct {
	Config Config
}

// Send sends m. The context only guards the start of the exchange;
// net/smtp offers no cancellation once connected.
func (s SMTPSender) Send(ctx context.Context, m Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.Config.Validate(); err != nil {
		return err
	}
	if len(m.To) == 0 {
		return ErrNoRecipients
	}
	raw, err := s.Config.Build(m, time.Now())
	if err != nil {
		return fmt.Errorf("build message: %w", err)
	}

	var auth smtp.Auth
	if s.Config.Username != "" {
		auth = smtp.PlainAuth("", s.Config.Username, s.Config.Password, s.Config.SMTPHost)
	}
	return smtp.SendMail(
		s.Config.SMTPHost+":"+s.Config.SMTPPort,
		auth,
		s.Config.FromEmail,
		m.To,
		raw,
	)
}

// GmailConfig returns a pre-configured Config for Gmail SMTP using the
// SMTP_USERNAME and SMTP_PASSWORD (app password) settings.
func GmailConfig() Config {
	c := ConfigFromEnv()
	c.SMTPHost = "smtp.gmail.com"
	c.SMTPPort = "587"
	c.FromEmail = c.Username
	return c
}
