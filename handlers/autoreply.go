package handlers

import (
	"lexdesk/middleware"
	"lexdesk/services"
	"lexdesk/services/autoreply"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// AutoReplyHandler exposes the rule table and reply previews to staff.
type AutoReplyHandler struct {
	Rules      *autoreply.RuleTable
	Cases      *services.CaseDirectory
	Dispatcher *autoreply.Dispatcher
}

type previewRequest struct {
	CaseID    string  `json:"case_id"`
	HearingID *string `json:"hearing_id,omitempty"`
	Content   string  `json:"content"`
}

// GetRules handles GET /api/auto-reply/rules
func (h *AutoReplyHandler) GetRules(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"fallback": h.Rules.Fallback,
		"rules":    h.Rules.Rules,
		"priority": h.Rules.Priority(),
	})
}

// PreviewReply handles POST /api/auto-reply/preview. Nothing is stored or sent.
func (h *AutoReplyHandler) PreviewReply(c echo.Context) error {
	var req previewRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	req.CaseID = strings.TrimSpace(req.CaseID)
	if req.CaseID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "case_id is required")
	}
	if req.HearingID != nil && strings.TrimSpace(*req.HearingID) == "" {
		req.HearingID = nil
	}

	ctx := c.Request().Context()
	caseRecord, err := h.Cases.GetCaseByID(ctx, req.CaseID)
	if err != nil {
		return lookupError(err, "Case")
	}
	if !services.IsCaseParticipant(middleware.GetCurrentUser(c), caseRecord) {
		return echo.NewHTTPError(http.StatusForbidden, "Access denied")
	}

	content := services.SanitizeMessageContent(req.Content)
	preview, err := h.Dispatcher.Preview(ctx, caseRecord.ID, req.HearingID, content, middleware.GetLocale(c))
	if err != nil {
		zap.S().Errorw("Failed to preview auto-reply", "case_id", caseRecord.ID, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to preview reply")
	}
	return c.JSON(http.StatusOK, preview)
}
