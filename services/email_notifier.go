package services

import (
	"context"
	"fmt"
	"lexdesk/models"
	"lexdesk/services/autoreply"
	"lexdesk/services/i18n"

	"go.uber.org/zap"
)

// EmailNotifier delivers conversation notifications by email and keeps a
// ledger row per delivery in the notifications table.
type EmailNotifier struct {
	Mailer        Mailer
	Notifications *NotificationService // optional
	DefaultLang   string
}

func NewEmailNotifier(mailer Mailer, notifications *NotificationService, defaultLang string) *EmailNotifier {
	return &EmailNotifier{
		Mailer:        mailer,
		Notifications: notifications,
		DefaultLang:   i18n.Normalize(defaultLang, "en"),
	}
}

var _ autoreply.Notifier = (*EmailNotifier)(nil)

func (n *EmailNotifier) lang(recipientLang string) string {
	return i18n.Normalize(recipientLang, n.DefaultLang)
}

func hearingDate(c *models.Case, h *models.Hearing, lang string) string {
	if h == nil {
		return ""
	}
	var firm *models.Firm
	if c != nil {
		firm = c.Firm
	}
	return autoreply.NewFormatter(lang, firm.Location(), firm.CurrencyCode()).DateTime(h.ScheduledAt)
}

// SendAutoReplyEmail tells a participant that the client got an automatic reply.
func (n *EmailNotifier) SendAutoReplyEmail(ctx context.Context, notice autoreply.AutoReplyNotice, to autoreply.Recipient) error {
	lang := n.lang(to.Lang)
	email := BuildAutoReplyEmail(to.Email, AutoReplyEmailData{
		RecipientName:  to.Name,
		ClientName:     notice.Case.Client.Name,
		CaseNumber:     notice.Case.CaseNumber,
		CaseTitle:      titleOf(notice.Case),
		HearingDate:    hearingDate(notice.Case, notice.Hearing, lang),
		CategoryLabel:  i18n.Translate(lang, "email.category."+string(notice.Category)),
		TriggerPreview: Preview(notice.Trigger.Content, 280),
		ReplyContent:   notice.Reply.Content,
		CaseURL:        notice.CaseURL,
	}, lang)

	record := &models.Notification{
		RecipientEmail: to.Email,
		CaseID:         &notice.Case.ID,
		MessageID:      &notice.Reply.ID,
		Kind:           models.NotificationKindAutoReply,
		Title:          i18n.Translate(lang, "email.notification.auto_reply_title", map[string]interface{}{"caseNumber": notice.Case.CaseNumber}),
		LinkURL:        notice.CaseURL,
	}
	return n.deliver(ctx, record, to, email)
}

// SendMessageNotification tells a participant about a new message.
func (n *EmailNotifier) SendMessageNotification(ctx context.Context, notice autoreply.MessageNotice, to autoreply.Recipient) error {
	lang := n.lang(to.Lang)
	email := BuildMessageNotificationEmail(to.Email, MessageNotificationEmailData{
		RecipientName: to.Name,
		SenderName:    notice.Message.SenderName,
		CaseNumber:    notice.Case.CaseNumber,
		CaseTitle:     titleOf(notice.Case),
		HearingDate:   hearingDate(notice.Case, notice.Hearing, lang),
		Preview:       Preview(notice.Message.Content, 280),
		CaseURL:       notice.CaseURL,
	}, lang)

	messageID := notice.Message.MessageID
	record := &models.Notification{
		RecipientEmail: to.Email,
		CaseID:         &notice.Case.ID,
		MessageID:      &messageID,
		Kind:           models.NotificationKindNewMessage,
		Title:          i18n.Translate(lang, "email.notification.new_message_title", map[string]interface{}{"senderName": notice.Message.SenderName}),
		LinkURL:        notice.CaseURL,
	}
	return n.deliver(ctx, record, to, email)
}

// SendHearingReminder reminds one participant of an upcoming hearing.
func (n *EmailNotifier) SendHearingReminder(ctx context.Context, c *models.Case, h *models.Hearing, to autoreply.Recipient, caseURL string) error {
	lang := n.lang(to.Lang)
	data := HearingReminderEmailData{
		RecipientName:   to.Name,
		CaseNumber:      c.CaseNumber,
		CaseTitle:       titleOf(c),
		Date:            hearingDate(c, h, lang),
		Location:        h.Location,
		DurationMinutes: h.DurationMinutes,
		CaseURL:         caseURL,
	}
	if h.HasJudge() {
		data.JudgeName = h.Judge.Name
	}
	if c.AssignedTo != nil {
		data.LawyerName = c.AssignedTo.Name
	}
	email := BuildHearingReminderEmail(to.Email, data, lang)

	record := &models.Notification{
		RecipientEmail: to.Email,
		CaseID:         &c.ID,
		Kind:           models.NotificationKindHearingReminder,
		Title:          email.Subject,
		LinkURL:        caseURL,
	}
	return n.deliver(ctx, record, to, email)
}

// Redeliver sends a stored notification again and updates its ledger row.
func (n *EmailNotifier) Redeliver(ctx context.Context, record *models.Notification) error {
	email := &Email{
		To:       []string{record.RecipientEmail},
		Subject:  record.Title,
		HTMLBody: record.HTMLBody,
		TextBody: record.Message,
	}
	err := n.Mailer.Send(ctx, email)
	n.settle(ctx, record, err)
	return err
}

func (n *EmailNotifier) deliver(ctx context.Context, record *models.Notification, to autoreply.Recipient, email *Email) error {
	if email.HTMLBody == "" && email.TextBody == "" {
		return fmt.Errorf("no email body rendered for %s", to.Email)
	}
	if to.UserID != "" {
		userID := to.UserID
		record.UserID = &userID
	}
	if record.Title == "" {
		record.Title = email.Subject
	}
	record.Message = email.TextBody
	record.HTMLBody = email.HTMLBody

	recorded := false
	if n.Notifications != nil {
		if err := n.Notifications.Record(ctx, record); err != nil {
			zap.S().Warnw("Failed to record notification", "recipient", to.Email, "kind", record.Kind, "error", err)
		} else {
			recorded = true
		}
	}

	err := n.Mailer.Send(ctx, email)
	if recorded {
		n.settle(ctx, record, err)
	}
	return err
}

func (n *EmailNotifier) settle(ctx context.Context, record *models.Notification, sendErr error) {
	if n.Notifications == nil || record.ID == "" {
		return
	}
	var err error
	if sendErr != nil {
		err = n.Notifications.MarkFailed(ctx, record.ID, sendErr)
	} else {
		err = n.Notifications.MarkDelivered(ctx, record.ID)
	}
	if err != nil {
		zap.S().Warnw("Failed to update notification status", "notification_id", record.ID, "error", err)
	}
}

func titleOf(c *models.Case) string {
	if c.Title != nil {
		return *c.Title
	}
	return ""
}
