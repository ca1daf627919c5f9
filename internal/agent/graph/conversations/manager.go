// Package conversations shapes the stored session history into the message
// window sent to the assistant model.
package conversations

import (
	"context"
	"strings"

	"github.com/cloudwego/eino/schema"
	"github.com/erpbot/server/internal/agent/model"
)

const defaultMaxTurns = 20

type MessagesManager struct {
	repo     model.ConversationRepository
	maxTurns int
}

func NewMessagesManager(repo model.ConversationRepository, cfg model.ConversationConfig) *MessagesManager {
	mm := &MessagesManager{repo: repo, maxTurns: cfg.MaxTurns}
	if mm.maxTurns <= 0 {
		mm.maxTurns = defaultMaxTurns
	}
	return mm
}

// AppendUserMessage stores the user query and returns the context window the
// assistant sees: the system prompt followed by the most recent messages.
func (mm *MessagesManager) AppendUserMessage(ctx context.Context, sessionID, query, systemPrompt string) ([]*schema.Message, error) {
	if err := mm.repo.AddMessage(ctx, sessionID, schema.UserMessage(query)); err != nil {
		return nil, err
	}
	return mm.BuildContext(ctx, sessionID, systemPrompt)
}

// BuildContext loads the last maxTurns messages of the session behind the
// system prompt. Messages without content are left out.
func (mm *MessagesManager) BuildContext(ctx context.Context, sessionID, systemPrompt string) ([]*schema.Message, error) {
	history, err := mm.repo.LoadHistory(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	window := history.Last(mm.maxTurns)
	out := make([]*schema.Message, 0, len(window)+1)
	out = append(out, schema.SystemMessage(systemPrompt))
	for _, msg := range window {
		if msg == nil || strings.TrimSpace(msg.Content) == "" {
			continue
		}
		out = append(out, msg)
	}
	return out, nil
}

func (mm *MessagesManager) SaveResponse(ctx context.Context, sessionID, content string) error {
	return mm.repo.AddMessage(ctx, sessionID, schema.AssistantMessage(content, nil))
}

func (mm *MessagesManager) Clear(ctx context.Context, sessionID string) error {
	return mm.repo.ClearHistory(ctx, sessionID)
}
