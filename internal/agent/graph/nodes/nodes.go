package nodes

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/erpbot/server/internal/agent/graph/conversations"
	"github.com/erpbot/server/internal/agent/graph/prompts"
	"github.com/erpbot/server/internal/agent/model"
	logx "github.com/erpbot/server/pkg/logger"
)

// NewInputConverterPreHandler binds the run state to the session and clears
// the per-query counters.
func NewInputConverterPreHandler() func(context.Context, model.QueryInput, *model.AppState) (model.QueryInput, error) {
	return func(ctx context.Context, in model.QueryInput, s *model.AppState) (model.QueryInput, error) {
		*s = model.AppState{SessionID: in.SessionID}
		return in, nil
	}
}

// NewInputConverterNode stores the user query and builds the assistant context:
// the rendered system prompt followed by the recent session history.
func NewInputConverterNode(
	mm *conversations.MessagesManager,
	erpCfg *model.ERPConfig,
	now func() time.Time,
) *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, input model.QueryInput) ([]*schema.Message, error) {
		systemPrompt, err := prompts.RenderAssistantSystem(ctx, *erpCfg, now())
		if err != nil {
			return nil, fmt.Errorf("render assistant system prompt: %w", err)
		}

		messages, err := mm.AppendUserMessage(ctx, input.SessionID, input.Query, systemPrompt)
		if err != nil {
			return nil, fmt.Errorf("build session context: %w", err)
		}
		return messages, nil
	})
}

// NewAssistantChatModelPreHandler appends the node input to the run history and
// hands the whole history to the model. Once the tool budget is spent a system
// notice asks the model to wrap up.
func NewAssistantChatModelPreHandler(maxToolCalls int) func(context.Context, []*schema.Message, *model.AppState) ([]*schema.Message, error) {
	return func(ctx context.Context, in []*schema.Message, state *model.AppState) ([]*schema.Message, error) {
		if len(in) > 0 {
			repairToolCallID(in[len(in)-1], state.History)
		}

		state.History = append(state.History, in...)

		if checkAndMarkToolLimit(state, maxToolCalls) {
			maxToolCalls = normalizeMaxToolCalls(maxToolCalls)
			wrapUp := &schema.Message{
				Role: schema.System,
				Content: fmt.Sprintf(
					"AVISO DEL SISTEMA: alcanzaste el límite de llamadas a herramientas (%d). "+
						"Responde ahora en español con la información que ya obtuviste e indica qué no pudiste completar.",
					maxToolCalls,
				),
			}
			state.History = append(state.History, wrapUp)
		}

		logx.Debug().Str("session_id", state.SessionID).Int("messages", len(state.History)).Msg("assistant thinking")
		return state.History, nil
	}
}

// NewAssistantChatModelPostHandler records usage, fills missing tool call ids
// and persists the final answer.
func NewAssistantChatModelPostHandler(
	mm *conversations.MessagesManager,
	modelName string,
) func(context.Context, *schema.Message, *model.AppState) (*schema.Message, error) {
	return func(ctx context.Context, out *schema.Message, state *model.AppState) (*schema.Message, error) {
		if out == nil {
			return nil, fmt.Errorf("assistant model returned no message")
		}
		recordUsageCost(out, state, NodeAssistantChatModel, modelName)
		assignToolCallIDs(out, state)
		state.History = append(state.History, out)

		if !isFinalAnswer(out, state) {
			logx.Debug().Str("session_id", state.SessionID).Int("tool_calls", len(out.ToolCalls)).Msg("assistant requested tools")
			return out, nil
		}
		if err := mm.SaveResponse(ctx, state.SessionID, out.Content); err != nil {
			logx.Error().Err(err).Str("session_id", state.SessionID).Msg("save assistant answer failed")
		}
		return out, nil
	}
}

// assignToolCallIDs gives call_N ids to tool calls the provider left unnamed.
func assignToolCallIDs(out *schema.Message, state *model.AppState) {
	for i := range out.ToolCalls {
		if strings.TrimSpace(out.ToolCalls[i].ID) != "" {
			continue
		}
		state.ToolCallIDSeq++
		out.ToolCalls[i].ID = fmt.Sprintf("call_%d", state.ToolCallIDSeq)
	}
}

// isFinalAnswer reports whether out ends the run with user-facing text.
func isFinalAnswer(out *schema.Message, state *model.AppState) bool {
	if out.Role != schema.Assistant || strings.TrimSpace(out.Content) == "" {
		return false
	}
	return len(out.ToolCalls) == 0 || state.ToolCallLimitReached
}

// NewToolExecutorCondition sends pending tool calls to the executor unless the
// tool budget is already spent.
func NewToolExecutorCondition() func(context.Context, *schema.Message) (string, error) {
	return func(ctx context.Context, in *schema.Message) (string, error) {
		var spent bool
		_ = compose.ProcessState(ctx, func(_ context.Context, state *model.AppState) error {
			spent = state.ToolCallLimitReached
			return nil
		})

		switch {
		case spent:
			return compose.END, nil
		case in != nil && len(in.ToolCalls) > 0:
			return NodeToolExecutor, nil
		default:
			return compose.END, nil
		}
	}
}

// NewToolExecutorPreHandler counts one tool round against the budget.
func NewToolExecutorPreHandler(maxToolCalls int) func(context.Context, *schema.Message, *model.AppState) (*schema.Message, error) {
	return func(ctx context.Context, in *schema.Message, state *model.AppState) (*schema.Message, error) {
		if incrementToolCallAndCheck(state, maxToolCalls) {
			logx.Warn().
				Str("session_id", state.SessionID).
				Int("tool_rounds", state.ToolCallCount).
				Int("max_tool_calls", normalizeMaxToolCalls(maxToolCalls)).
				Msg("tool budget spent, assistant will be asked to wrap up")
		}
		return in, nil
	}
}
