package model

import (
	"strings"
	"time"

	logx "github.com/erpbot/server/pkg/logger"
)

// ================ Config ================
type ConversationConfig struct {
	TTL      string `envconfig:"CONVERSATION_TTL" default:"30m"`
	MaxTurns int    `envconfig:"CONVERSATION_MAX_TURNS" default:"20"`
	Tools    struct {
		MaxCalls int `envconfig:"CONVERSATION_TOOL_MAX_CALLS" default:"10"`
	}
}

// TTLDuration parses TTL. An invalid value falls back to 30 minutes.
func (c ConversationConfig) TTLDuration() time.Duration {
	d, err := time.ParseDuration(strings.TrimSpace(c.TTL))
	if err != nil {
		logx.Warn().Err(err).Str("ttl", c.TTL).Msg("invalid CONVERSATION_TTL, using 30m")
		return 30 * time.Minute
	}
	return d
}

type AssistantModelConfig struct {
	Model       string  `envconfig:"ASSISTANT_MODEL" default:"gemini-2.5-flash"`
	MaxTokens   int     `envconfig:"ASSISTANT_MAX_TOKENS" default:"4000"`
	Temperature float32 `envconfig:"ASSISTANT_TEMPERATURE" default:"0"`
}

type TranslatorConfig struct {
	Model     string `envconfig:"TRANSLATOR_MODEL" default:"gemini-2.5-flash-lite"`
	MaxTokens int    `envconfig:"TRANSLATOR_MAX_TOKENS" default:"2000"`
}

type RelevanceConfig struct {
	Keywords []string `envconfig:"RELEVANCE_KEYWORDS"`
}

type ERPConfig struct {
	CompanyCurrency string `envconfig:"ERP_COMPANY_CURRENCY" default:"GTQ"`
	CompanyName     string `envconfig:"ERP_COMPANY_NAME" default:"Mi Empresa"`
}
