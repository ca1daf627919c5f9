package model

import (
	"context"

	"github.com/cloudwego/eino/schema"
)

// ConversationRepository persists the message history of chat sessions.
type ConversationRepository interface {
	AddMessage(ctx context.Context, sessionID string, message *schema.Message) error
	// LoadHistory returns every stored message of the session, oldest first.
	// An unknown session yields an empty history.
	LoadHistory(ctx context.Context, sessionID string) (*History, error)
	ClearHistory(ctx context.Context, sessionID string) error
	GetMessageCount(ctx context.Context, sessionID string) (int, error)
}

type History struct {
	SessionID string
	Messages  []*schema.Message
}

// Last returns at most n trailing messages.
func (h *History) Last(n int) []*schema.Message {
	if h == nil {
		return nil
	}
	if n <= 0 || len(h.Messages) <= n {
		return h.Messages
	}
	return h.Messages[len(h.Messages)-n:]
}
