// Package server exposes the assistant over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	errx "github.com/erpbot/server/internal/core/error"
	logx "github.com/erpbot/server/pkg/logger"
)

// Assistant is what the HTTP layer needs from the chatbot.
type Assistant interface {
	Respond(ctx context.Context, sessionID, prompt string) (string, error)
	Reset(ctx context.Context, sessionID string) error
}

type ChatRequest struct {
	SessionID     string `json:"session_id" binding:"required"`
	PromptMessage string `json:"prompt_message" binding:"required"`
}

type ChatResponse struct {
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type Handler struct {
	assistant Assistant
}

func NewHandler(assistant Assistant) *Handler {
	return &Handler{assistant: assistant}
}

// Chat answers one prompt in a session.
func (h *Handler) Chat(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	msg, err := h.assistant.Respond(c.Request.Context(), req.SessionID, req.PromptMessage)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, ChatResponse{Message: msg})
}

// ClearSession drops the stored history of a session.
func (h *Handler) ClearSession(c *gin.Context) {
	if err := h.assistant.Reset(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func writeError(c *gin.Context, err error) {
	_ = c.Error(err)
	status := errx.StatusOf(err)
	msg := errx.SystemErrorMessage
	var app *errx.AppError
	if errors.As(err, &app) && status < http.StatusInternalServerError {
		msg = app.Error()
	}
	c.JSON(status, ErrorResponse{Error: msg})
}

// NewRouter wires the routes and middleware.
func NewRouter(h *Handler) *gin.Engine {
	r := gin.New()
	r.Use(RequestID(), RequestLogger(), gin.CustomRecovery(func(c *gin.Context, rec any) {
		logx.Error().Interface("panic", rec).Str("path", c.Request.URL.Path).Msg("handler panicked")
		c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{Error: errx.SystemErrorMessage})
	}))

	r.GET("/healthz", h.Health)
	api := r.Group("/api")
	api.POST("/method/chat", h.Chat)
	api.DELETE("/sessions/:id", h.ClearSession)
	return r
}

// RequestID propagates X-Request-ID or assigns a new one.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Writer.Header().Set("X-Request-ID", id)
		c.Next()
	}
}

// RequestLogger logs each request through the structured logger.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		ev := logx.Info()
		switch {
		case status >= 500:
			ev = logx.Error()
		case status >= 400:
			ev = logx.Warn()
		}
		if len(c.Errors) > 0 {
			ev = ev.Strs("errors", c.Errors.Errors())
		}
		ev.Str("request_id", c.GetString("request_id")).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Msg("HTTP Request")
	}
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func Run(ctx context.Context, addr string, handler http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logx.Info().Str("addr", addr).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	logx.Info().Msg("http server shutting down")
	return srv.Shutdown(shutdownCtx)
}
