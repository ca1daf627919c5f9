package nodes

import (
	"strings"

	"github.com/cloudwego/eino/schema"

	"github.com/erpbot/server/internal/agent/model"
	logx "github.com/erpbot/server/pkg/logger"
)

const (
	NodeInputConverter     = "InputConverter"
	NodeAssistantChatModel = "AssistantChatModel"
	NodeToolExecutor       = "ToolExecutor"
)

const DefaultMaxToolCalls = 10

// normalizeMaxToolCalls returns a sane default when the provided value is invalid.
func normalizeMaxToolCalls(n int) int {
	if n <= 0 {
		return DefaultMaxToolCalls
	}
	return n
}

// checkAndMarkToolLimit marks the state when the tool budget is spent.
// Returns true only the first time.
func checkAndMarkToolLimit(state *model.AppState, max int) bool {
	max = normalizeMaxToolCalls(max)
	if !state.ToolCallLimitReached && state.ToolCallCount >= max {
		state.ToolCallLimitReached = true
		return true
	}
	return false
}

// incrementToolCallAndCheck counts one tool round and reports whether it went over the limit.
func incrementToolCallAndCheck(state *model.AppState, max int) bool {
	max = normalizeMaxToolCalls(max)
	state.ToolCallCount++
	if state.ToolCallCount > max {
		state.ToolCallLimitReached = true
		return true
	}
	return false
}

// recordUsageCost prices the usage reported on out, stores it in out.Extra
// and adds it to the running total.
func recordUsageCost(out *schema.Message, state *model.AppState, node, modelName string) {
	if out == nil || out.ResponseMeta == nil || out.ResponseMeta.Usage == nil {
		return
	}
	usage := out.ResponseMeta.Usage
	cost := model.ResolvePricing(modelName).Of(usage)
	if out.Extra == nil {
		out.Extra = map[string]any{}
	}
	out.Extra["usage_cost"] = map[string]any{
		"currency":          "USD",
		"model":             modelName,
		"prompt_tokens":     usage.PromptTokens,
		"completion_tokens": usage.CompletionTokens,
		"total_tokens":      usage.TotalTokens,
		"input_cost":        cost.Input,
		"output_cost":       cost.Output,
		"total_cost":        cost.Total(),
	}
	logx.Debug().
		Str("session_id", state.SessionID).
		Str("node", node).
		Str("model", modelName).
		Int("prompt_tokens", usage.PromptTokens).
		Int("completion_tokens", usage.CompletionTokens).
		Float64("total_cost_usd", cost.Total()).
		Msg("LLM usage")

	state.TotalCostUSD += cost.Total()
	out.Extra["usage_cost_total_usd"] = state.TotalCostUSD
}

// repairToolCallID fills a missing tool_call_id on a tool result with the
// most recent assistant tool call id in history.
func repairToolCallID(msg *schema.Message, history []*schema.Message) {
	if msg == nil || msg.Role != schema.Tool || strings.TrimSpace(msg.ToolCallID) != "" {
		return
	}
	for i := len(history) - 1; i >= 0; i-- {
		h := history[i]
		if h == nil || h.Role != schema.Assistant || len(h.ToolCalls) == 0 {
			continue
		}
		if id := h.ToolCalls[0].ID; strings.TrimSpace(id) != "" {
			msg.ToolCallID = id
		}
		return
	}
}
