package autoreply

import (
	"context"
	"fmt"
	"lexdesk/models"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// Recipient is one participant to notify about a conversation event.
type Recipient struct {
	UserID string
	Name   string
	Email  string
	Role   string
	Lang   string
}

// AutoReplyNotice tells the other participants that an automatic reply went
// out to the client.
type AutoReplyNotice struct {
	Case     *models.Case
	Hearing  *models.Hearing
	Category Category
	Trigger  MessageCreatedEvent
	Reply    *models.Message
	CaseURL  string
}

// MessageNotice tells the other participants about a new message.
type MessageNotice struct {
	Case    *models.Case
	Hearing *models.Hearing
	Message MessageCreatedEvent
	CaseURL string
}

// Notifier delivers one notification to one recipient.
type Notifier interface {
	SendAutoReplyEmail(ctx context.Context, notice AutoReplyNotice, to Recipient) error
	SendMessageNotification(ctx context.Context, notice MessageNotice, to Recipient) error
}

type OutcomeStatus string

const (
	OutcomeDelivered OutcomeStatus = "delivered"
	OutcomeFailed    OutcomeStatus = "failed"
)

// Outcome is the delivery result for one recipient.
type Outcome struct {
	Recipient Recipient     `json:"recipient"`
	Status    OutcomeStatus `json:"status"`
	Reason    string        `json:"reason,omitempty"`
}

func Delivered(r Recipient) Outcome {
	return Outcome{Recipient: r, Status: OutcomeDelivered}
}

func Failed(r Recipient, err error) Outcome {
	return Outcome{Recipient: r, Status: OutcomeFailed, Reason: err.Error()}
}

// Recipients lists who hears about a message in the conversation of c (and
// h for hearing-scoped messages): the client, the assigned lawyer and the
// hearing's judge. The sender is excluded by id and by email, entries without
// an email are dropped, and emails are deduplicated case-insensitively.
func Recipients(c *models.Case, h *models.Hearing, senderID, senderEmail string) []Recipient {
	if c == nil {
		return nil
	}
	candidates := []*models.User{&c.Client}
	if c.AssignedTo != nil {
		candidates = append(candidates, c.AssignedTo)
	}
	if h != nil && h.HasJudge() {
		candidates = append(candidates, h.Judge)
	}

	sender := strings.ToLower(strings.TrimSpace(senderEmail))
	seen := make(map[string]bool)
	var out []Recipient
	for _, u := range candidates {
		email := strings.ToLower(strings.TrimSpace(u.Email))
		if email == "" || u.ID == "" {
			continue
		}
		if u.ID == senderID || (sender != "" && email == sender) {
			continue
		}
		if seen[email] {
			continue
		}
		seen[email] = true
		out = append(out, Recipient{
			UserID: u.ID,
			Name:   u.Name,
			Email:  u.Email,
			Role:   u.Role,
			Lang:   u.Language,
		})
	}
	return out
}

// FanOut sends to every recipient in parallel. One failed or panicking send
// never stops the others.
type FanOut struct{}

// Dispatch returns one Outcome per recipient, in recipient order.
func (FanOut) Dispatch(ctx context.Context, recipients []Recipient, send func(context.Context, Recipient) error) []Outcome {
	outcomes := make([]Outcome, len(recipients))
	var wg sync.WaitGroup
	for i, r := range recipients {
		wg.Add(1)
		go func(i int, r Recipient) {
			defer wg.Done()
			defer func() {
				if p := recover(); p != nil {
					outcomes[i] = Failed(r, fmt.Errorf("panic: %v", p))
				}
			}()
			if err := send(ctx, r); err != nil {
				outcomes[i] = Failed(r, err)
				return
			}
			outcomes[i] = Delivered(r)
		}(i, r)
	}
	wg.Wait()

	logOutcomes(outcomes)
	return outcomes
}

func logOutcomes(outcomes []Outcome) {
	if len(outcomes) == 0 {
		return
	}
	delivered := 0
	for _, o := range outcomes {
		if o.Status == OutcomeDelivered {
			delivered++
			continue
		}
		zap.S().Warnw("Notification delivery failed",
			"recipient", o.Recipient.Email,
			"role", o.Recipient.Role,
			"reason", o.Reason,
		)
	}
	zap.S().Infow("Notification fan-out complete",
		"recipients", len(outcomes),
		"delivered", delivered,
		"failed", len(outcomes)-delivered,
	)
}
