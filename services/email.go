package services

import (
	"bytes"
	"context"
	"fmt"
	htmltemplate "html/template"
	"io/fs"
	"lexdesk/config"
	"lexdesk/services/i18n"
	"lexdesk/templates"
	"strings"
	texttemplate "text/template"

	"github.com/resend/resend-go/v2"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.uber.org/zap"
)

// emailTemplates is the file system templates are read from. Tests swap it.
var emailTemplates fs.FS = mustSub(templates.Emails, "emails")

func mustSub(fsys fs.FS, dir string) fs.FS {
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		panic(err)
	}
	return sub
}

// Email represents an email message
type Email struct {
	To       []string
	Subject  string
	HTMLBody string
	TextBody string
}

func (e *Email) validate() error {
	if len(e.To) == 0 {
		return fmt.Errorf("email has no recipients")
	}
	if e.HTMLBody == "" && e.TextBody == "" {
		return fmt.Errorf("email must have either HTMLBody or TextBody")
	}
	return nil
}

// Mailer delivers one email.
type Mailer interface {
	Send(ctx context.Context, email *Email) error
}

// NewMailer returns the mailer selected by configuration. Test mode always
// logs instead of sending.
func NewMailer(cfg *config.Config) (Mailer, error) {
	if cfg.EmailTestMode {
		return ConsoleMailer{}, nil
	}
	switch cfg.EmailProvider {
	case config.EmailProviderSendGrid:
		if cfg.SendGridAPIKey == "" {
			return nil, fmt.Errorf("SENDGRID_API_KEY not configured")
		}
		return &SendGridMailer{
			client: sendgrid.NewSendClient(cfg.SendGridAPIKey),
			from:   mail.NewEmail(cfg.EmailFromName, cfg.EmailFrom),
		}, nil
	case config.EmailProviderResend, "":
		if cfg.ResendAPIKey == "" {
			return nil, fmt.Errorf("RESEND_API_KEY not configured")
		}
		return &ResendMailer{
			client: resend.NewClient(cfg.ResendAPIKey),
			from:   fmt.Sprintf("%s <%s>", cfg.EmailFromName, cfg.EmailFrom),
		}, nil
	default:
		return nil, fmt.Errorf("unknown email provider %q", cfg.EmailProvider)
	}
}

// ResendMailer sends through the Resend API.
type ResendMailer struct {
	client *resend.Client
	from   string
}

func (m *ResendMailer) Send(ctx context.Context, email *Email) error {
	if err := email.validate(); err != nil {
		return err
	}
	params := &resend.SendEmailRequest{
		From:    m.from,
		To:      email.To,
		Subject: email.Subject,
		Html:    email.HTMLBody,
		Text:    email.TextBody,
	}
	sent, err := m.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		return fmt.Errorf("failed to send email via Resend: %w", err)
	}
	zap.S().Infow("Email sent via Resend", "id", sent.Id, "to", email.To)
	return nil
}

// SendGridMailer sends through the SendGrid v3 API.
type SendGridMailer struct {
	client *sendgrid.Client
	from   *mail.Email
}

func (m *SendGridMailer) Send(ctx context.Context, email *Email) error {
	if err := email.validate(); err != nil {
		return err
	}
	message := mail.NewV3Mail()
	message.SetFrom(m.from)
	message.Subject = email.Subject
	p := mail.NewPersonalization()
	for _, to := range email.To {
		p.AddTos(mail.NewEmail("", to))
	}
	message.AddPersonalizations(p)
	if email.TextBody != "" {
		message.AddContent(mail.NewContent("text/plain", email.TextBody))
	}
	if email.HTMLBody != "" {
		message.AddContent(mail.NewContent("text/html", email.HTMLBody))
	}

	response, err := m.client.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("failed to send email via SendGrid: %w", err)
	}
	if response.StatusCode >= 400 {
		zap.S().Errorw("SendGrid returned error status", "status", response.StatusCode, "body", response.Body, "to", email.To)
		return fmt.Errorf("sendgrid error: status %d", response.StatusCode)
	}
	zap.S().Infow("Email sent via SendGrid", "to", email.To, "subject", email.Subject)
	return nil
}

// ConsoleMailer logs emails instead of sending them (development mode).
type ConsoleMailer struct{}

func (ConsoleMailer) Send(ctx context.Context, email *Email) error {
	if err := email.validate(); err != nil {
		return err
	}
	zap.S().Infow("Email logged (test mode, not sent)",
		"to", email.To,
		"subject", email.Subject,
		"text", email.TextBody,
		"html", truncate(email.HTMLBody, 500),
	)
	return nil
}

// truncate truncates a string to a maximum length
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen]
}

// loadTemplate renders templateName for lang. It reads
// templateName_lang.html/.txt and falls back to templateName.html/.txt.
func loadTemplate(templateName string, lang string, data interface{}) (html string, text string, err error) {
	read := func(ext string) (string, []byte, error) {
		name := fmt.Sprintf("%s_%s%s", templateName, lang, ext)
		content, err := fs.ReadFile(emailTemplates, name)
		if err == nil {
			return name, content, nil
		}
		name = templateName + ext
		content, err = fs.ReadFile(emailTemplates, name)
		if err != nil {
			return name, nil, fmt.Errorf("failed to read template %s: %w", name, err)
		}
		return name, content, nil
	}

	name, content, err := read(".html")
	if err != nil {
		return "", "", err
	}
	htmlTmpl, err := htmltemplate.New(name).Parse(string(content))
	if err != nil {
		return "", "", fmt.Errorf("failed to parse template %s: %w", name, err)
	}
	var htmlBuf bytes.Buffer
	if err := htmlTmpl.Execute(&htmlBuf, data); err != nil {
		return "", "", fmt.Errorf("failed to execute template %s: %w", name, err)
	}

	name, content, err = read(".txt")
	if err != nil {
		return "", "", err
	}
	textTmpl, err := texttemplate.New(name).Parse(string(content))
	if err != nil {
		return "", "", fmt.Errorf("failed to parse template %s: %w", name, err)
	}
	var textBuf bytes.Buffer
	if err := textTmpl.Execute(&textBuf, data); err != nil {
		return "", "", fmt.Errorf("failed to execute template %s: %w", name, err)
	}

	return htmlBuf.String(), strings.TrimSpace(textBuf.String()), nil
}

// buildEmailWithFallback renders a template, retrying in English when the
// requested language fails.
func buildEmailWithFallback(templateName string, lang string, tmplData interface{}, toEmail string) *Email {
	htmlBody, textBody, err := loadTemplate(templateName, lang, tmplData)
	if err != nil {
		zap.S().Warnw("Failed to load email template", "template", templateName, "lang", lang, "error", err)
		if lang != "en" {
			htmlBody, textBody, err = loadTemplate(templateName, "en", tmplData)
			if err != nil {
				zap.S().Errorw("Failed to load default email template", "template", templateName, "error", err)
			}
		}
	}

	return &Email{
		To:       []string{toEmail},
		HTMLBody: htmlBody,
		TextBody: textBody,
	}
}

// AutoReplyEmailData contains data for the auto-reply notice template
type AutoReplyEmailData struct {
	RecipientName  string
	ClientName     string
	CaseNumber     string
	CaseTitle      string
	HearingDate    string
	CategoryLabel  string
	TriggerPreview string
	ReplyContent   string
	CaseURL        string
}

// BuildAutoReplyEmail tells a participant that an automatic reply was sent to the client
func BuildAutoReplyEmail(toEmail string, data AutoReplyEmailData, lang string) *Email {
	email := buildEmailWithFallback("auto_reply", lang, data, toEmail)
	email.Subject = i18n.Translate(lang, "email.subject.auto_reply", map[string]interface{}{
		"clientName": data.ClientName,
		"caseNumber": data.CaseNumber,
	})
	return email
}

// MessageNotificationEmailData contains data for the new message template
type MessageNotificationEmailData struct {
	RecipientName string
	SenderName    string
	CaseNumber    string
	CaseTitle     string
	HearingDate   string
	Preview       string
	CaseURL       string
}

// BuildMessageNotificationEmail creates a new message notification
func BuildMessageNotificationEmail(toEmail string, data MessageNotificationEmailData, lang string) *Email {
	email := buildEmailWithFallback("new_message", lang, data, toEmail)
	email.Subject = i18n.Translate(lang, "email.subject.new_message", map[string]interface{}{"senderName": data.SenderName})
	return email
}

// HearingReminderEmailData contains data for the hearing reminder template
type HearingReminderEmailData struct {
	RecipientName   string
	CaseNumber      string
	CaseTitle       string
	Date            string
	Location        string
	DurationMinutes int
	JudgeName       string
	LawyerName      string
	CaseURL         string
}

// BuildHearingReminderEmail creates a reminder for an upcoming hearing
func BuildHearingReminderEmail(toEmail string, data HearingReminderEmailData, lang string) *Email {
	email := buildEmailWithFallback("hearing_reminder", lang, data, toEmail)
	email.Subject = i18n.Translate(lang, "email.subject.hearing_reminder", map[string]interface{}{"date": data.Date})
	return email
}
