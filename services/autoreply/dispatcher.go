package autoreply

import (
	"context"
	"errors"
	"fmt"
	"lexdesk/models"
	"lexdesk/services/i18n"
	"time"

	"go.uber.org/zap"
)

// MessageStore persists the generated reply. CreateMessage must write the
// whole row or nothing.
type MessageStore interface {
	CreateMessage(ctx context.Context, message *models.Message) error
}

// Publisher pushes a persisted message to connected participants.
type Publisher interface {
	PublishMessage(message *models.Message, userIDs []string)
}

// MessageCreatedEvent describes a message that has already been stored.
type MessageCreatedEvent struct {
	MessageID   string
	CaseID      string
	HearingID   *string
	SenderID    string
	SenderRole  string
	SenderName  string
	SenderEmail string
	Content     string
	CreatedAt   time.Time
	// Locale is the sender's request locale, used when the client has no
	// language preference stored.
	Locale string
}

// EventFromMessage builds the event for a stored message and its sender.
func EventFromMessage(msg *models.Message, sender *models.User, locale string) MessageCreatedEvent {
	ev := MessageCreatedEvent{
		MessageID: msg.ID,
		CaseID:    msg.CaseID,
		HearingID: msg.HearingID,
		SenderID:  msg.SenderID,
		Content:   msg.Content,
		CreatedAt: msg.CreatedAt,
		Locale:    locale,
	}
	if sender != nil {
		ev.SenderRole = sender.Role
		ev.SenderName = sender.Name
		ev.SenderEmail = sender.Email
	}
	return ev
}

// Result reports what the pipeline did with one message. Err holds the
// failure that stopped the auto-reply step, if any; it is informational and
// never means the triggering message was lost.
type Result struct {
	Category  Category        `json:"category,omitempty"`
	AutoReply *models.Message `json:"auto_reply,omitempty"`
	Skip      SkipReason      `json:"skip,omitempty"`
	Outcomes  []Outcome       `json:"outcomes"`
	Err       error           `json:"-"`
}

// Options configures a Dispatcher.
type Options struct {
	Enabled        bool
	DefaultLang    string
	AppURL         string
	EmergencyPhone string
	UpcomingLimit  int
	DocumentLimit  int
}

// Dispatcher runs enrichment, selection, composition, persistence and
// notification fan-out for each new message, in that order.
type Dispatcher struct {
	Enabled     bool
	DefaultLang string

	Directory Directory
	Selector  *Selector
	Enricher  *Enricher
	Composer  *Composer
	Store     MessageStore
	Notifier  Notifier
	Publisher Publisher

	fanOut FanOut
}

func NewDispatcher(rules *RuleTable, dir Directory, store MessageStore, notifier Notifier, opts Options) *Dispatcher {
	if rules == nil {
		rules = DefaultRules()
	}
	if err := i18n.EnsureLoaded(); err != nil {
		zap.S().Errorw("Failed to load translations", "error", err)
	}
	return &Dispatcher{
		Enabled:     opts.Enabled,
		DefaultLang: i18n.Normalize(opts.DefaultLang, "en"),
		Directory:   dir,
		Selector:    NewSelector(rules),
		Enricher:    NewEnricher(dir, opts.UpcomingLimit, opts.DocumentLimit),
		Composer:    NewComposer(opts.AppURL, opts.EmergencyPhone),
		Store:       store,
		Notifier:    notifier,
	}
}

// HandleMessageCreated runs the pipeline for a stored message. It never
// returns an error: every failure is logged and recorded on the Result.
func (d *Dispatcher) HandleMessageCreated(ctx context.Context, ev MessageCreatedEvent) (res *Result) {
	res = &Result{}
	log := zap.S().With("message_id", ev.MessageID, "case_id", ev.CaseID)
	defer func() {
		if p := recover(); p != nil {
			log.Errorw("Auto-reply pipeline panicked", "panic", p)
			res.Err = fmt.Errorf("auto-reply pipeline panicked: %v", p)
		}
	}()

	var rc *ReplyContext
	switch {
	case !d.Enabled:
		res.Skip = SkipDisabled
	case ev.SenderRole != models.RoleClient:
		res.Skip = SkipSenderNotClient
	default:
		rc = d.autoReply(ctx, ev, res, log)
	}

	caseRecord, hearing := d.participants(ctx, ev, rc, log)
	if caseRecord == nil {
		return res
	}

	if res.AutoReply != nil && d.Publisher != nil {
		d.Publisher.PublishMessage(res.AutoReply, ParticipantIDs(caseRecord, hearing))
	}

	recipients := Recipients(caseRecord, hearing, ev.SenderID, ev.SenderEmail)
	caseURL := d.Composer.CaseURL(caseRecord.ID)

	var send func(context.Context, Recipient) error
	if res.AutoReply != nil {
		notice := AutoReplyNotice{
			Case:     caseRecord,
			Hearing:  hearing,
			Category: res.Category,
			Trigger:  ev,
			Reply:    res.AutoReply,
			CaseURL:  caseURL,
		}
		send = func(ctx context.Context, r Recipient) error {
			return d.Notifier.SendAutoReplyEmail(ctx, notice, r)
		}
	} else {
		notice := MessageNotice{Case: caseRecord, Hearing: hearing, Message: ev, CaseURL: caseURL}
		send = func(ctx context.Context, r Recipient) error {
			return d.Notifier.SendMessageNotification(ctx, notice, r)
		}
	}
	res.Outcomes = d.fanOut.Dispatch(ctx, recipients, send)
	return res
}

// autoReply produces and stores the reply. It returns the context it
// enriched so the fan-out can reuse it.
func (d *Dispatcher) autoReply(ctx context.Context, ev MessageCreatedEvent, res *Result, log *zap.SugaredLogger) *ReplyContext {
	enrichment, err := d.Enricher.Enrich(ctx, ev.CaseID, ev.HearingID)
	if err != nil {
		log.Errorw("Failed to load auto-reply context", "error", err)
		res.Err = err
		return nil
	}
	if !enrichment.IsFound() {
		log.Infow("Auto-reply skipped", "reason", enrichment.Skip)
		res.Skip = enrichment.Skip
		return nil
	}
	rc := enrichment.Context

	rule := d.Selector.Select(ev.Content)
	res.Category = rule.Category
	lang := d.ReplyLanguage(rc.Client, ev.Locale)

	replyTo := ev.MessageID
	reply := &models.Message{
		CaseID:            ev.CaseID,
		HearingID:         ev.HearingID,
		SenderID:          rc.Lawyer.ID,
		Content:           d.Composer.Compose(rule, rc, lang),
		MessageType:       models.MessageTypeText,
		IsAutoReply:       true,
		ReplyToID:         &replyTo,
		AutoReplyCategory: string(rule.Category),
	}
	if err := d.Store.CreateMessage(ctx, reply); err != nil {
		log.Errorw("Failed to store auto-reply", "category", rule.Category, "error", err)
		res.Err = err
		return rc
	}
	reply.Sender = rc.Lawyer
	res.AutoReply = reply
	log.Infow("Auto-reply sent", "category", rule.Category, "reply_id", reply.ID, "lang", lang)
	return rc
}

// participants returns the case and hearing whose members hear about the
// message, reusing the enriched context when there is one.
func (d *Dispatcher) participants(ctx context.Context, ev MessageCreatedEvent, rc *ReplyContext, log *zap.SugaredLogger) (*models.Case, *models.Hearing) {
	if rc != nil {
		return rc.Case, rc.Hearing
	}
	caseRecord, err := d.Directory.GetCaseByID(ctx, ev.CaseID)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			log.Errorw("Failed to load case for notifications", "error", err)
		}
		return nil, nil
	}
	if ev.HearingID == nil || *ev.HearingID == "" {
		return caseRecord, nil
	}
	hearing, err := d.Directory.GetHearingByID(ctx, *ev.HearingID)
	if err != nil || hearing.CaseID != caseRecord.ID {
		log.Warnw("Hearing not available for notifications", "hearing_id", *ev.HearingID, "error", err)
		return caseRecord, nil
	}
	return caseRecord, hearing
}

// ReplyLanguage picks the reply locale: the client's stored language, then
// the request locale, then the default.
func (d *Dispatcher) ReplyLanguage(client *models.User, requestLocale string) string {
	fallback := i18n.Normalize(requestLocale, d.DefaultLang)
	if client == nil {
		return fallback
	}
	return i18n.Normalize(client.Language, fallback)
}

// ParticipantIDs lists who sees a conversation: the client, the assigned
// lawyer and, for hearing messages, the judge.
func ParticipantIDs(c *models.Case, h *models.Hearing) []string {
	ids := []string{c.ClientID}
	if c.AssignedToID != nil && *c.AssignedToID != "" {
		ids = append(ids, *c.AssignedToID)
	}
	if h != nil && h.JudgeID != nil && *h.JudgeID != "" {
		ids = append(ids, *h.JudgeID)
	}
	return ids
}

// Preview is what an auto-reply would look like, without storing or
// notifying anything.
type Preview struct {
	Category Category   `json:"category"`
	Template string     `json:"template"`
	Lang     string     `json:"lang"`
	Skip     SkipReason `json:"skip,omitempty"`
	Content  string     `json:"content,omitempty"`
}

// Preview runs selection, enrichment and composition for content.
func (d *Dispatcher) Preview(ctx context.Context, caseID string, hearingID *string, content, locale string) (*Preview, error) {
	rule := d.Selector.Select(content)
	p := &Preview{Category: rule.Category, Template: rule.TemplateID()}

	enrichment, err := d.Enricher.Enrich(ctx, caseID, hearingID)
	if err != nil {
		return nil, err
	}
	if !enrichment.IsFound() {
		p.Skip = enrichment.Skip
		p.Lang = i18n.Normalize(locale, d.DefaultLang)
		return p, nil
	}
	p.Lang = d.ReplyLanguage(enrichment.Context.Client, locale)
	p.Content = d.Composer.Compose(rule, enrichment.Context, p.Lang)
	return p, nil
}
