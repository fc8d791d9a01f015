package handlers

import (
	"context"
	"errors"
	"fmt"
	"lexdesk/middleware"
	"lexdesk/models"
	"lexdesk/services"
	"lexdesk/services/autoreply"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// MessageHandler serves case and hearing conversations.
type MessageHandler struct {
	Cases      *services.CaseDirectory
	Messages   *services.MessageService
	Dispatcher *autoreply.Dispatcher
	Publisher  autoreply.Publisher // optional
}

type postMessageRequest struct {
	Content string `json:"content"`
}

type postMessageResponse struct {
	Message   *models.Message      `json:"message"`
	AutoReply *models.Message      `json:"auto_reply,omitempty"`
	Category  autoreply.Category   `json:"category,omitempty"`
	Skip      autoreply.SkipReason `json:"skip,omitempty"`
	Notified  int                  `json:"notified"`
	Failed    int                  `json:"failed"`
}

// lookupError maps a directory error to an HTTP error.
func lookupError(err error, what string) error {
	if errors.Is(err, services.ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, what+" not found")
	}
	zap.S().Errorw("Lookup failed", "what", what, "error", err)
	return echo.NewHTTPError(http.StatusInternalServerError, "Failed to load "+what)
}

// loadCase returns the case if the current user takes part in it.
func (h *MessageHandler) loadCase(c echo.Context) (*models.Case, error) {
	caseRecord, err := h.Cases.GetCaseByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return nil, lookupError(err, "Case")
	}
	if !services.IsCaseParticipant(middleware.GetCurrentUser(c), caseRecord) {
		return nil, echo.NewHTTPError(http.StatusForbidden, "Access denied")
	}
	return caseRecord, nil
}

// loadHearing returns the hearing and its case if the current user takes part in it.
func (h *MessageHandler) loadHearing(c echo.Context) (*models.Case, *models.Hearing, error) {
	ctx := c.Request().Context()
	hearing, err := h.Cases.GetHearingByID(ctx, c.Param("id"))
	if err != nil {
		return nil, nil, lookupError(err, "Hearing")
	}
	caseRecord, err := h.Cases.GetCaseByID(ctx, hearing.CaseID)
	if err != nil {
		return nil, nil, lookupError(err, "Case")
	}
	if !services.IsHearingParticipant(middleware.GetCurrentUser(c), caseRecord, hearing) {
		return nil, nil, echo.NewHTTPError(http.StatusForbidden, "Access denied")
	}
	return caseRecord, hearing, nil
}

// PostCaseMessage handles POST /api/cases/:id/messages
func (h *MessageHandler) PostCaseMessage(c echo.Context) error {
	caseRecord, err := h.loadCase(c)
	if err != nil {
		return err
	}
	return h.post(c, caseRecord, nil)
}

// PostHearingMessage handles POST /api/hearings/:id/messages
func (h *MessageHandler) PostHearingMessage(c echo.Context) error {
	caseRecord, hearing, err := h.loadHearing(c)
	if err != nil {
		return err
	}
	return h.post(c, caseRecord, hearing)
}

// post stores the message, pushes it to connected participants, then runs
// the auto-reply and notification pipeline before answering.
func (h *MessageHandler) post(c echo.Context, caseRecord *models.Case, hearing *models.Hearing) error {
	user := middleware.GetCurrentUser(c)

	var req postMessageRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}

	message := &models.Message{
		CaseID:   caseRecord.ID,
		SenderID: user.ID,
		Content:  services.SanitizeMessageContent(req.Content),
	}
	if hearing != nil {
		message.HearingID = &hearing.ID
	}
	if err := h.Messages.CreateMessage(c.Request().Context(), message); err != nil {
		if errors.Is(err, services.ErrEmptyMessage) {
			return echo.NewHTTPError(http.StatusBadRequest, "Message content is required")
		}
		zap.S().Errorw("Failed to create message", "case_id", caseRecord.ID, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to send message")
	}
	message.Sender = user

	if h.Publisher != nil {
		h.Publisher.PublishMessage(message, autoreply.ParticipantIDs(caseRecord, hearing))
	}

	resp := postMessageResponse{Message: message}
	if h.Dispatcher != nil {
		// The message is stored; a client hanging up must not stop the reply.
		ctx := context.WithoutCancel(c.Request().Context())
		ev := autoreply.EventFromMessage(message, user, middleware.GetLocale(c))
		res := h.Dispatcher.HandleMessageCreated(ctx, ev)
		resp.AutoReply = res.AutoReply
		resp.Category = res.Category
		resp.Skip = res.Skip
		for _, o := range res.Outcomes {
			if o.Status == autoreply.OutcomeDelivered {
				resp.Notified++
			} else {
				resp.Failed++
			}
		}
	}
	return c.JSON(http.StatusCreated, resp)
}

// ListCaseMessages handles GET /api/cases/:id/messages
func (h *MessageHandler) ListCaseMessages(c echo.Context) error {
	caseRecord, err := h.loadCase(c)
	if err != nil {
		return err
	}
	messages, err := h.Messages.ListCaseMessages(c.Request().Context(), caseRecord.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to load messages")
	}
	return c.JSON(http.StatusOK, messages)
}

// ListHearingMessages handles GET /api/hearings/:id/messages
func (h *MessageHandler) ListHearingMessages(c echo.Context) error {
	_, hearing, err := h.loadHearing(c)
	if err != nil {
		return err
	}
	messages, err := h.Messages.ListHearingMessages(c.Request().Context(), hearing.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to load messages")
	}
	return c.JSON(http.StatusOK, messages)
}

// ExportCaseMessages handles GET /api/cases/:id/messages/export
func (h *MessageHandler) ExportCaseMessages(c echo.Context) error {
	caseRecord, err := h.loadCase(c)
	if err != nil {
		return err
	}
	messages, err := h.Messages.ListAllCaseMessages(c.Request().Context(), caseRecord.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to load messages")
	}

	buf, err := services.ExportTranscript(caseRecord, messages, middleware.GetLocale(c))
	if err != nil {
		zap.S().Errorw("Failed to export transcript", "case_id", caseRecord.ID, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to export messages")
	}

	filename := fmt.Sprintf("case-%s-messages-%s.xlsx", caseRecord.CaseNumber, time.Now().Format("20060102"))
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return c.Blob(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}
