package mail

import (
	"bytes"
	"context"
	"io"
	"mime"
	"mime/multipart"
	"net/mail"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testConfig = Config{
	SMTPHost:  "smtp.example.com",
	SMTPPort:  "587",
	FromEmail: "qa@example.com",
	FromName:  "QA Inbox",
}

func TestNewMessage(t *testing.T) {
	m, err := NewMessage([]string{"a@example.com"}, "Hi", `<h1>Hello</h1><p>See <a href="https://x.com">offer</a></p>`)
	require.NoError(t, err)
	assert.Contains(t, m.Text, "# Hello")
	assert.Contains(t, m.Text, "[offer](https://x.com)")

	_, err = NewMessage(nil, "Hi", "<p>x</p>")
	assert.ErrorIs(t, err, ErrNoRecipients)

	_, err = NewMessage([]string{"not an address"}, "Hi", "<p>x</p>")
	assert.ErrorContains(t, err, "invalid recipient")
}

func TestBuild(t *testing.T) {
	m := Message{
		To:      []string{"a@example.com", "b@example.com"},
		Subject: "Spring sale – 20% off",
		HTML:    `<p style="color:#ff0000">Grüße</p>`,
		Text:    "Grüße",
	}
	raw, err := testConfig.Build(m, time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	msg, err := mail.ReadMessage(bytes.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, `"QA Inbox" <qa@example.com>`, msg.Header.Get("From"))
	assert.Equal(t, "a@example.com, b@example.com", msg.Header.Get("To"))
	assert.Contains(t, msg.Header.Get("Message-ID"), "@example.com>")

	subject, err := new(mime.WordDecoder).DecodeHeader(msg.Header.Get("Subject"))
	require.NoError(t, err)
	assert.Equal(t, m.Subject, subject)

	mediaType, params, err := mime.ParseMediaType(msg.Header.Get("Content-Type"))
	require.NoError(t, err)
	assert.Equal(t, "multipart/alternative", mediaType)

	mr := multipart.NewReader(msg.Body, params["boundary"])
	var types, bodies []string
	for {
		p, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		b, err := io.ReadAll(p)
		require.NoError(t, err)
		types = append(types, p.Header.Get("Content-Type"))
		bodies = append(bodies, string(b))
	}
	assert.Equal(t, []string{"text/plain; charset=UTF-8", "text/html; charset=UTF-8"}, types)
	assert.Equal(t, []string{m.Text, m.HTML}, bodies)
}

func TestValidate(t *testing.T) {
	assert.NoError(t, testConfig.Validate())
	assert.ErrorContains(t, Config{}.Validate(), "SMTP_HOST, SMTP_FROM")
	assert.ErrorContains(t, Config{SMTPHost: "h", FromEmail: "nope"}.Validate(), "invalid sender")
}

func TestSMTPSenderRejectsEarly(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, SMTPSender{Config: testConfig}.Send(ctx, Message{To: []string{"a@example.com"}}), context.Canceled)
	assert.ErrorIs(t, SMTPSender{Config: testConfig}.Send(context.Background(), Message{}), ErrNoRecipients)
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("SMTP_HOST", "mail.example.com")
	t.Setenv("SMTP_PORT", "")
	t.Setenv("SMTP_USERNAME", "u@example.com")
	t.Setenv("SMTP_FROM", "")
	c := ConfigFromEnv()
	assert.Equal(t, "mail.example.com", c.SMTPHost)
	assert.Equal(t, "587", c.SMTPPort)
	assert.Equal(t, "u@example.com", c.FromEmail)
	assert.Equal(t, "smtp.gmail.com", GmailConfig().SMTPHost)
}
