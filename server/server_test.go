package server_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/tbxark/tripagent/agent"
	"github.com/tbxark/tripagent/internal/llmtest"
	"github.com/tbxark/tripagent/progress"
	"github.com/tbxark/tripagent/server"
	"github.com/tbxark/tripagent/structured"
	"github.com/tbxark/tripagent/types"
)

type chatBody struct {
	SessionID string `json:"session_id"`
	Kind      string `json:"kind"`
	Message   string `json:"message"`
	Field     string `json:"field"`
	Done      bool   `json:"done"`
}

func buildTestRouter(replies ...llmtest.Reply) *gin.Engine {
	gin.SetMode(gin.TestMode)
	tracker := progress.NewTracker()
	client := structured.NewClient(llmtest.New(replies...), structured.WithReporter(tracker))
	flow := agent.NewToolBasedTripFlow(client, tracker)
	conv := agent.NewConversation(flow, agent.NewMemoryStateReadWriter("test"), nil)
	return server.New(conv, tracker, types.LanguageZH).Router()
}

func doRequest(r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestChatStartsSession(t *testing.T) {
	r := buildTestRouter(llmtest.Reply{Args: `{"destination":"青岛","start_date":"","end_date":""}`})

	w := doRequest(r, http.MethodPost, "/api/chat", map[string]string{"message": "我想去青岛"})
	require.Equal(t, http.StatusOK, w.Code)
	var body chatBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.NotEmpty(t, body.SessionID)
	require.Equal(t, "question", body.Kind)
	require.Equal(t, types.FieldStartDate, body.Field)
	require.False(t, body.Done)

	w = doRequest(r, http.MethodGet, "/api/sessions/"+body.SessionID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var state agent.ConversationState
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &state))
	require.Equal(t, "青岛", state.Request.Destination)
	require.Equal(t, 1, state.Metadata.UserTurns)

	w = doRequest(r, http.MethodDelete, "/api/sessions/"+body.SessionID, nil)
	require.Equal(t, http.StatusNoContent, w.Code)
	w = doRequest(r, http.MethodGet, "/api/sessions/"+body.SessionID, nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestChatCompleteRequestIsDone(t *testing.T) {
	r := buildTestRouter(llmtest.Reply{Args: `{"destination":"青岛","start_date":"7月1日","end_date":"7月3日"}`})
	w := doRequest(r, http.MethodPost, "/api/chat", map[string]string{"session_id": "abc-1", "message": "7月1日到3日去青岛"})
	require.Equal(t, http.StatusOK, w.Code)
	var body chatBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Equal(t, "abc-1", body.SessionID)
	require.Equal(t, "itinerary", body.Kind)
	require.True(t, body.Done)
}

func TestChatRejectsBadInput(t *testing.T) {
	r := buildTestRouter(llmtest.Reply{Args: `{}`})

	req := httptest.NewRequest(http.MethodPost, "/api/chat", bytes.NewBufferString("{"))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(r, http.MethodPost, "/api/chat", map[string]string{"message": "  "})
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(r, http.MethodPost, "/api/chat", map[string]string{"session_id": "bad id!", "message": "hi"})
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(r, http.MethodGet, "/api/sessions/bad$id", nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestProgressAndHealth(t *testing.T) {
	r := buildTestRouter(llmtest.Reply{Args: `{"destination":"青岛","start_date":"","end_date":""}`})
	w := doRequest(r, http.MethodGet, "/healthz", nil)
	require.Equal(t, http.StatusOK, w.Code)

	doRequest(r, http.MethodPost, "/api/chat", map[string]string{"message": "我想去青岛"})
	w = doRequest(r, http.MethodGet, "/api/progress", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var snapshot map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &snapshot))
	require.Equal(t, progress.StatusDone, snapshot["workflow"])

	w = doRequest(r, http.MethodGet, "/api/progress?format=markdown", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "workflow")
}
