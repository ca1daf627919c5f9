// Package chatbot is the entry point shared by the HTTP, CLI and MCP surfaces.
package chatbot

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/erpbot/server/internal/agent/model"
	"github.com/erpbot/server/internal/agent/relevance"
	errx "github.com/erpbot/server/internal/core/error"
	logx "github.com/erpbot/server/pkg/logger"
)

// Runner runs one agent turn. graph.Runner satisfies it.
type Runner interface {
	Invoke(ctx context.Context, in model.QueryInput) (string, error)
}

// Normalizer forces an answer into Spanish.
type Normalizer interface {
	EnsureSpanish(ctx context.Context, text string) string
}

type Bot struct {
	gate       *relevance.Gate
	runner     Runner
	normalizer Normalizer
	sessions   model.ConversationRepository
}

func New(gate *relevance.Gate, runner Runner, normalizer Normalizer, sessions model.ConversationRepository) *Bot {
	return &Bot{gate: gate, runner: runner, normalizer: normalizer, sessions: sessions}
}

func invalid(format string, args ...any) error {
	return errx.New(errx.Validationf(format, args...), http.StatusBadRequest, errx.ValidationMessage)
}

// Respond answers prompt within the session. Prompts outside the ERP domain
// get the refusal message without touching the session or the model.
func (b *Bot) Respond(ctx context.Context, sessionID, prompt string) (string, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return "", invalid("session_id is required")
	}
	if strings.TrimSpace(prompt) == "" {
		return "", invalid("prompt_message is required")
	}

	if !b.gate.IsRelated(prompt) {
		logx.Info().Str("session_id", sessionID).Msg("prompt rejected by relevance gate")
		return relevance.RefusalMessage, nil
	}

	out, err := b.runner.Invoke(ctx, model.QueryInput{SessionID: sessionID, Query: prompt})
	if err != nil {
		logx.Error().Err(err).Str("session_id", sessionID).Msg("agent run failed")
		return "", fmt.Errorf("agent run: %w", err)
	}
	return b.normalizer.EnsureSpanish(ctx, out), nil
}

// Reset clears a session's stored history.
func (b *Bot) Reset(ctx context.Context, sessionID string) error {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return invalid("session_id is required")
	}
	return b.sessions.ClearHistory(ctx, sessionID)
}
