package handlers

import (
	"context"
	"fmt"
	"lexdesk/middleware"
	"lexdesk/models"
	"lexdesk/services/autoreply"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type postResponse struct {
	Message   models.Message  `json:"message"`
	AutoReply *models.Message `json:"auto_reply"`
	Category  string          `json:"category"`
	Skip      string          `json:"skip"`
	Notified  int             `json:"notified"`
	Failed    int             `json:"failed"`
}

func TestPostCaseMessage(t *testing.T) {
	env := setupEnv(t, testConfig())
	path := fmt.Sprintf("/api/cases/%s/messages", env.Case.ID)

	t.Run("Client message gets an auto-reply", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, path, &env.Client, map[string]string{"content": "When is my court date?"})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		var resp postResponse
		decode(t, rec, &resp)
		assert.Equal(t, "When is my court date?", resp.Message.Content)
		assert.Equal(t, string(autoreply.CategoryHearingInfo), resp.Category)
		require.NotNil(t, resp.AutoReply)
		assert.True(t, resp.AutoReply.IsAutoReply)
		assert.Equal(t, env.Lawyer.ID, resp.AutoReply.SenderID)
		require.NotNil(t, resp.AutoReply.ReplyToID)
		assert.Equal(t, resp.Message.ID, *resp.AutoReply.ReplyToID)
		assert.Contains(t, resp.AutoReply.Content, "Dear Ana Client,")

		// Case-level message: the lawyer hears about it, the judge does not.
		assert.Equal(t, 1, resp.Notified)
		assert.Equal(t, []string{env.Lawyer.Email}, env.Mailer.recipients())

		var count int64
		env.DB.Model(&models.Message{}).Where("case_id = ?", env.Case.ID).Count(&count)
		assert.Equal(t, int64(2), count)
	})

	t.Run("Lawyer message notifies the client without a reply", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, path, &env.Lawyer, map[string]string{"content": "Please send the lease."})
		require.Equal(t, http.StatusCreated, rec.Code)

		var resp postResponse
		decode(t, rec, &resp)
		assert.Nil(t, resp.AutoReply)
		assert.Equal(t, string(autoreply.SkipSenderNotClient), resp.Skip)
		assert.Equal(t, 1, resp.Notified)
		assert.Contains(t, env.Mailer.recipients(), env.Client.Email)
	})

	t.Run("Markup is stripped", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, path, &env.Lawyer, map[string]string{"content": "<b>Signed</b><script>x()</script>"})
		require.Equal(t, http.StatusCreated, rec.Code)
		var resp postResponse
		decode(t, rec, &resp)
		assert.Equal(t, "Signed", resp.Message.Content)
	})

	t.Run("Empty content", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, path, &env.Client, map[string]string{"content": "  <p></p> "})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("Non-participant", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, path, &env.Stranger, map[string]string{"content": "hello"})
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("Judge cannot post in the case conversation", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, path, &env.Judge, map[string]string{"content": "hello"})
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("Unknown case", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/api/cases/missing/messages", &env.Client, map[string]string{"content": "hello"})
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("Anonymous", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, path, nil, map[string]string{"content": "hello"})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestPostHearingMessage(t *testing.T) {
	env := setupEnv(t, testConfig())
	path := fmt.Sprintf("/api/hearings/%s/messages", env.Hearing.ID)

	t.Run("Judge message reaches client and lawyer", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, path, &env.Judge, map[string]string{"content": "Bring the original lease."})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		var resp postResponse
		decode(t, rec, &resp)
		require.NotNil(t, resp.Message.HearingID)
		assert.Equal(t, env.Hearing.ID, *resp.Message.HearingID)
		assert.Nil(t, resp.AutoReply)
		assert.Equal(t, 2, resp.Notified)
		assert.ElementsMatch(t, []string{env.Client.Email, env.Lawyer.Email}, env.Mailer.recipients())
	})

	t.Run("Client hearing message is answered in the hearing conversation", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, path, &env.Client, map[string]string{"content": "Where is the hearing?"})
		require.Equal(t, http.StatusCreated, rec.Code)

		var resp postResponse
		decode(t, rec, &resp)
		require.NotNil(t, resp.AutoReply)
		require.NotNil(t, resp.AutoReply.HearingID)
		assert.Equal(t, env.Hearing.ID, *resp.AutoReply.HearingID)
		assert.Contains(t, resp.AutoReply.Content, "Courtroom 4B")
		// Lawyer and judge
		assert.Equal(t, 2, resp.Notified)
	})

	t.Run("Listing", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, path, &env.Judge, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		var messages []models.Message
		decode(t, rec, &messages)
		assert.Len(t, messages, 3)
	})

	t.Run("Non-participant", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, path, &env.Stranger, nil)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}

func TestListCaseMessages(t *testing.T) {
	env := setupEnv(t, testConfig())
	path := fmt.Sprintf("/api/cases/%s/messages", env.Case.ID)

	require.Equal(t, http.StatusCreated, env.do(t, http.MethodPost, path, &env.Client, map[string]string{"content": "Any update on my case?"}).Code)
	hearingPath := fmt.Sprintf("/api/hearings/%s/messages", env.Hearing.ID)
	require.Equal(t, http.StatusCreated, env.do(t, http.MethodPost, hearingPath, &env.Judge, map[string]string{"content": "Noted."}).Code)

	rec := env.do(t, http.MethodGet, path, &env.Client, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var messages []models.Message
	decode(t, rec, &messages)
	// The hearing conversation is listed separately.
	require.Len(t, messages, 2)
	assert.Equal(t, "Any update on my case?", messages[0].Content)
	assert.True(t, messages[1].IsAutoReply)
	assert.Equal(t, string(autoreply.CategoryCaseStatus), messages[1].AutoReplyCategory)
}

func TestAutoReplyDisabled(t *testing.T) {
	cfg := testConfig()
	cfg.AutoReplyEnabled = false
	env := setupEnv(t, cfg)

	rec := env.do(t, http.MethodPost, fmt.Sprintf("/api/cases/%s/messages", env.Case.ID), &env.Client, map[string]string{"content": "hello"})
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp postResponse
	decode(t, rec, &resp)
	assert.Nil(t, resp.AutoReply)
	assert.Equal(t, string(autoreply.SkipDisabled), resp.Skip)
	assert.Equal(t, 1, resp.Notified)
}

func TestMessageRateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.MessageRateLimit = 2
	env := setupEnv(t, cfg)
	path := fmt.Sprintf("/api/cases/%s/messages", env.Case.ID)

	for i := 0; i < 2; i++ {
		rec := env.do(t, http.MethodPost, path, &env.Lawyer, map[string]string{"content": fmt.Sprintf("note %d", i)})
		require.Equal(t, http.StatusCreated, rec.Code)
	}
	rec := env.do(t, http.MethodPost, path, &env.Lawyer, map[string]string{"content": "one too many"})
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)

	// Other participants have their own budget, and reads are not limited.
	assert.Equal(t, http.StatusCreated, env.do(t, http.MethodPost, path, &env.Client, map[string]string{"content": "hi"}).Code)
	assert.Equal(t, http.StatusOK, env.do(t, http.MethodGet, path, &env.Lawyer, nil).Code)
}

func TestExportCaseMessages(t *testing.T) {
	env := setupEnv(t, testConfig())
	path := fmt.Sprintf("/api/cases/%s/messages", env.Case.ID)
	require.Equal(t, http.StatusCreated, env.do(t, http.MethodPost, path, &env.Client, map[string]string{"content": "hello"}).Code)

	rec := env.do(t, http.MethodGet, path+"/export", &env.Lawyer, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "case-2025-0042-messages-")
	assert.NotEmpty(t, rec.Body.Bytes())

	assert.Equal(t, http.StatusForbidden, env.do(t, http.MethodGet, path+"/export", &env.Stranger, nil).Code)
}

// hangUpPublisher cancels the request as soon as the triggering message has
// been stored and broadcast, like a client closing the tab.
type hangUpPublisher struct {
	cancel context.CancelFunc
}

func (p hangUpPublisher) PublishMessage(m *models.Message, userIDs []string) {
	if !m.IsAutoReply {
		p.cancel()
	}
}

func TestPostMessageSurvivesClientDisconnect(t *testing.T) {
	env := setupEnv(t, testConfig())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	h := &MessageHandler{
		Cases:      env.App.Cases,
		Messages:   env.App.Messages,
		Dispatcher: env.App.Dispatcher,
		Publisher:  hangUpPublisher{cancel: cancel},
	}

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"content":"Any update on my case status?"}`)).WithContext(ctx)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(env.Case.ID)
	c.Set(middleware.ContextKeyUser, &env.Client)
	c.Set("locale", "en")

	require.NoError(t, h.PostCaseMessage(c))
	require.Error(t, ctx.Err(), "request context should be cancelled")
	assert.Equal(t, http.StatusCreated, rec.Code)

	var resp postResponse
	decode(t, rec, &resp)
	require.NotNil(t, resp.AutoReply)
	assert.Equal(t, string(autoreply.CategoryCaseStatus), resp.Category)

	var stored int64
	env.DB.Model(&models.Message{}).Where("case_id = ? AND is_auto_reply = ?", env.Case.ID, true).Count(&stored)
	assert.Equal(t, int64(1), stored)
	assert.Equal(t, []string{env.Lawyer.Email}, env.Mailer.recipients())
}
