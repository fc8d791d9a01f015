package services

import (
	"context"
	"lexdesk/config"
	"lexdesk/services/i18n"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withTemplates(t *testing.T, files fstest.MapFS) {
	t.Helper()
	original := emailTemplates
	emailTemplates = files
	t.Cleanup(func() { emailTemplates = original })
}

func TestLoadTemplate(t *testing.T) {
	withTemplates(t, fstest.MapFS{
		"test_template.html":    {Data: []byte("<html><body>Hello {{.UserName}}</body></html>")},
		"test_template.txt":     {Data: []byte("Hello {{.UserName}}")},
		"test_template_es.html": {Data: []byte("<html><body>Hola {{.UserName}}</body></html>")},
		"test_template_es.txt":  {Data: []byte("Hola {{.UserName}}")},
	})

	type data struct {
		UserName string
	}
	tplData := data{UserName: "John"}

	t.Run("Load Base Template", func(t *testing.T) {
		html, text, err := loadTemplate("test_template", "en", tplData)
		assert.NoError(t, err)
		assert.Contains(t, html, "Hello John")
		assert.Contains(t, text, "Hello John")
	})

	t.Run("Load Localized Template", func(t *testing.T) {
		html, text, err := loadTemplate("test_template", "es", tplData)
		assert.NoError(t, err)
		assert.Contains(t, html, "Hola John")
		assert.Contains(t, text, "Hola John")
	})

	t.Run("Fallback to Base when Localized Missing", func(t *testing.T) {
		html, text, err := loadTemplate("test_template", "fr", tplData)
		assert.NoError(t, err)
		assert.Contains(t, html, "Hello John") // Should fallback to base
		assert.Contains(t, text, "Hello John")
	})

	t.Run("Template Not Found", func(t *testing.T) {
		_, _, err := loadTemplate("non_existent", "en", tplData)
		assert.Error(t, err)
	})

	t.Run("HTML is escaped, text is not", func(t *testing.T) {
		html, text, err := loadTemplate("test_template", "en", data{UserName: "<b>O'Brien & Co</b>"})
		assert.NoError(t, err)
		assert.NotContains(t, html, "<b>")
		assert.Equal(t, "Hello <b>O'Brien & Co</b>", text)
	})
}

func TestBuildEmailWithFallback(t *testing.T) {
	withTemplates(t, fstest.MapFS{
		"test_build.html": {Data: []byte("HTML {{.Val}}")},
		"test_build.txt":  {Data: []byte("Text {{.Val}}")},
	})

	email := buildEmailWithFallback("test_build", "en", map[string]string{"Val": "OK"}, "test@example.com")
	assert.Equal(t, []string{"test@example.com"}, email.To)
	assert.Equal(t, "HTML OK", email.HTMLBody)
	assert.Equal(t, "Text OK", email.TextBody)
}

func TestEmbeddedTemplates(t *testing.T) {
	require.NoError(t, i18n.EnsureLoaded())

	for _, lang := range i18n.SupportedLanguages {
		t.Run(lang, func(t *testing.T) {
			reply := BuildAutoReplyEmail("luis@rivera.law", AutoReplyEmailData{
				RecipientName:  "Luis",
				ClientName:     "Ana",
				CaseNumber:     "2025-0042",
				CategoryLabel:  "billing",
				TriggerPreview: "How much do I owe?",
				ReplyContent:   "Dear Ana,",
				CaseURL:        "https://app.lexdesk.test/cases/1",
			}, lang)
			assert.Contains(t, reply.Subject, "2025-0042")
			assert.Contains(t, reply.TextBody, "How much do I owe?")
			assert.Contains(t, reply.HTMLBody, "https://app.lexdesk.test/cases/1")

			msg := BuildMessageNotificationEmail("ana@example.com", MessageNotificationEmailData{
				RecipientName: "Ana",
				SenderName:    "Luis",
				CaseNumber:    "2025-0042",
				Preview:       "Bring the lease",
				CaseURL:       "https://app.lexdesk.test/cases/1",
			}, lang)
			assert.Contains(t, msg.Subject, "Luis")
			assert.Contains(t, msg.TextBody, "Bring the lease")

			reminder := BuildHearingReminderEmail("ana@example.com", HearingReminderEmailData{
				RecipientName:   "Ana",
				CaseNumber:      "2025-0042",
				Date:            "March 3, 2025",
				Location:        "Courtroom 4B",
				DurationMinutes: 60,
				CaseURL:         "https://app.lexdesk.test/cases/1",
			}, lang)
			assert.Contains(t, reminder.Subject, "March 3, 2025")
			assert.Contains(t, reminder.TextBody, "Courtroom 4B")
			assert.NotContains(t, reminder.TextBody, "{{")
		})
	}
}

func TestNewMailer(t *testing.T) {
	t.Run("Test mode logs", func(t *testing.T) {
		m, err := NewMailer(&config.Config{EmailTestMode: true})
		require.NoError(t, err)
		assert.IsType(t, ConsoleMailer{}, m)
	})

	t.Run("Resend", func(t *testing.T) {
		m, err := NewMailer(&config.Config{EmailProvider: config.EmailProviderResend, ResendAPIKey: "re_key"})
		require.NoError(t, err)
		assert.IsType(t, &ResendMailer{}, m)
	})

	t.Run("SendGrid", func(t *testing.T) {
		m, err := NewMailer(&config.Config{EmailProvider: config.EmailProviderSendGrid, SendGridAPIKey: "SG.key"})
		require.NoError(t, err)
		assert.IsType(t, &SendGridMailer{}, m)
	})

	t.Run("SendGrid without key", func(t *testing.T) {
		_, err := NewMailer(&config.Config{EmailProvider: config.EmailProviderSendGrid})
		assert.EqualError(t, err, "SENDGRID_API_KEY not configured")
	})

	t.Run("Unknown provider", func(t *testing.T) {
		_, err := NewMailer(&config.Config{EmailProvider: "pigeon"})
		assert.Error(t, err)
	})
}

func TestMailerSend(t *testing.T) {
	email := &Email{To: []string{"test@example.com"}, Subject: "Test", HTMLBody: "Body"}

	t.Run("Test mode", func(t *testing.T) {
		m, err := NewMailer(&config.Config{EmailTestMode: true})
		require.NoError(t, err)
		assert.NoError(t, m.Send(context.Background(), email))
	})

	t.Run("No API key", func(t *testing.T) {
		_, err := NewMailer(&config.Config{})
		assert.EqualError(t, err, "RESEND_API_KEY not configured")
	})

	t.Run("No body", func(t *testing.T) {
		m, err := NewMailer(&config.Config{ResendAPIKey: "key"})
		require.NoError(t, err)
		err = m.Send(context.Background(), &Email{To: []string{"test@example.com"}, Subject: "Test"})
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "email must have either HTMLBody or TextBody")
	})
}

func TestConsoleMailerRequiresRecipient(t *testing.T) {
	err := ConsoleMailer{}.Send(context.Background(), &Email{TextBody: "x"})
	assert.EqualError(t, err, "email has no recipients")
}

func TestTruncate(t *testing.T) {
	s := "Hello World"
	assert.Equal(t, "Hello", truncate(s, 5))
	assert.Equal(t, "Hello World", truncate(s, 20))
}
