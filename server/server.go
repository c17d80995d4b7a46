// Package server exposes the trip conversation over HTTP.
package server

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/tbxark/tripagent/agent"
	"github.com/tbxark/tripagent/progress"
	"github.com/tbxark/tripagent/types"
)

const (
	defaultChatTimeout = 90 * time.Second
	maxSessionIDLength = 64
)

type Server struct {
	conversation *agent.Conversation
	tracker      *progress.Tracker
	language     types.Language
	chatTimeout  time.Duration
}

func New(conversation *agent.Conversation, tracker *progress.Tracker, language types.Language) *Server {
	if tracker == nil {
		tracker = progress.NewTracker()
	}
	return &Server{
		conversation: conversation,
		tracker:      tracker,
		language:     language,
		chatTimeout:  defaultChatTimeout,
	}
}

// Router builds the gin engine with every route registered.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(Recovery(), Logging())
	r.GET("/healthz", s.Health)
	api := r.Group("/api")
	api.POST("/chat", s.Chat)
	api.GET("/sessions/:id", s.Session)
	api.DELETE("/sessions/:id", s.DeleteSession)
	api.GET("/progress", s.Progress)
	return r
}

// Run serves until ctx is cancelled.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		slog.Info("http server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

type chatRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

type chatResponse struct {
	SessionID string              `json:"session_id"`
	Kind      agent.Kind          `json:"kind"`
	Message   string              `json:"message"`
	Field     string              `json:"field,omitempty"`
	Forced    bool                `json:"forced,omitempty"`
	Done      bool                `json:"done"`
	Request   types.TravelRequest `json:"request"`
}

func writeJSON(c *gin.Context, status int, v any) {
	c.JSON(status, v)
}

func writeError(c *gin.Context, status int, msg string) {
	writeJSON(c, status, errorResponse{Error: msg})
}

func isValidSessionID(v string) bool {
	if v == "" || len(v) > maxSessionIDLength {
		return false
	}
	for _, c := range v {
		if (c >= '0' && c <= '9') || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '-' || c == '_' {
			continue
		}
		return false
	}
	return true
}

func (s *Server) Health(c *gin.Context) {
	writeJSON(c, http.StatusOK, map[string]string{"status": "ok"})
}

// Chat handles POST /api/chat. A missing session id starts a new session.
func (s *Server) Chat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	req.SessionID = strings.TrimSpace(req.SessionID)
	req.Message = strings.TrimSpace(req.Message)
	if req.Message == "" {
		writeError(c, http.StatusBadRequest, "missing message")
		return
	}
	if req.SessionID == "" {
		req.SessionID = uuid.NewString()
	} else if !isValidSessionID(req.SessionID) {
		writeError(c, http.StatusBadRequest, "invalid session_id")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), s.chatTimeout)
	defer cancel()
	ctx = agent.WithStateKey(ctx, req.SessionID)

	resp, err := s.conversation.Chat(ctx, req.Message)
	if err != nil {
		slog.Error("chat failed", "session", req.SessionID, "error", err)
		writeError(c, http.StatusInternalServerError, agent.ErrorMessage(s.language))
		return
	}
	writeJSON(c, http.StatusOK, chatResponse{
		SessionID: req.SessionID,
		Kind:      resp.Kind,
		Message:   resp.Message,
		Field:     resp.Field,
		Forced:    resp.Forced,
		Done:      resp.Final(),
		Request:   resp.Request,
	})
}

// Session handles GET /api/sessions/:id.
func (s *Server) Session(c *gin.Context) {
	id := c.Param("id")
	if !isValidSessionID(id) {
		writeError(c, http.StatusBadRequest, "invalid session id")
		return
	}
	state, err := s.conversation.State(agent.WithStateKey(c.Request.Context(), id))
	if err != nil {
		slog.Error("read session failed", "session", id, "error", err)
		writeError(c, http.StatusInternalServerError, "internal error")
		return
	}
	if len(state.Messages) == 0 {
		writeError(c, http.StatusNotFound, "session not found")
		return
	}
	writeJSON(c, http.StatusOK, state)
}

// DeleteSession handles DELETE /api/sessions/:id.
func (s *Server) DeleteSession(c *gin.Context) {
	id := c.Param("id")
	if !isValidSessionID(id) {
		writeError(c, http.StatusBadRequest, "invalid session id")
		return
	}
	if err := s.conversation.Reset(agent.WithStateKey(c.Request.Context(), id)); err != nil {
		slog.Error("delete session failed", "session", id, "error", err)
		writeError(c, http.StatusInternalServerError, "internal error")
		return
	}
	c.Status(http.StatusNoContent)
}

// Progress handles GET /api/progress. ?format=markdown renders the tracker table.
func (s *Server) Progress(c *gin.Context) {
	if c.Query("format") == "markdown" {
		c.String(http.StatusOK, s.tracker.Render())
		return
	}
	writeJSON(c, http.StatusOK, s.tracker.Snapshot())
}
