package nodes

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino-ext/components/model/gemini"
	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"google.golang.org/genai"

	"github.com/erpbot/server/internal/agent/model"
	logx "github.com/erpbot/server/pkg/logger"
)

// ToolCallingModel is a chat model that accepts tool bindings.
type ToolCallingModel interface {
	einomodel.BaseChatModel
	BindTools(tools []*schema.ToolInfo) error
}

// ChatModelConfig holds the configuration for chat model creation
type ChatModelConfig struct {
	APIKey          string
	BaseURL         string
	AssistantConfig *model.AssistantModelConfig
	TranslatorCfg   *model.TranslatorConfig
}

// ChatModels holds the assistant and translator chat models
type ChatModels struct {
	Assistant           ToolCallingModel
	Translator          einomodel.BaseChatModel
	AssistantModelName  string
	TranslatorModelName string
}

// NewChatModels creates the assistant and translator Gemini models on one client.
func NewChatModels(ctx context.Context, config ChatModelConfig) (*ChatModels, error) {
	if config.AssistantConfig == nil || config.TranslatorCfg == nil {
		return nil, fmt.Errorf("chat model config is incomplete")
	}

	clientCfg := &genai.ClientConfig{
		APIKey:  config.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if config.BaseURL != "" {
		clientCfg.HTTPOptions.BaseURL = config.BaseURL
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		logx.Error().Err(err).Msg("Error creating Gemini client")
		return nil, fmt.Errorf("error creating Gemini client: %w", err)
	}

	assistant, err := gemini.NewChatModel(ctx, &gemini.Config{
		Client:      client,
		Model:       config.AssistantConfig.Model,
		Temperature: &config.AssistantConfig.Temperature,
		MaxTokens:   &config.AssistantConfig.MaxTokens,
		ThinkingConfig: &genai.ThinkingConfig{
			IncludeThoughts: false,
			ThinkingBudget:  genai.Ptr(int32(1024)),
		},
	})
	if err != nil {
		logx.Error().Err(err).Msg("Error creating assistant model")
		return nil, fmt.Errorf("error creating assistant model: %w", err)
	}

	// translation should be literal
	var zero float32
	translator, err := gemini.NewChatModel(ctx, &gemini.Config{
		Client:      client,
		Model:       config.TranslatorCfg.Model,
		Temperature: &zero,
		MaxTokens:   &config.TranslatorCfg.MaxTokens,
	})
	if err != nil {
		logx.Error().Err(err).Msg("Error creating translator model")
		return nil, fmt.Errorf("error creating translator model: %w", err)
	}

	return &ChatModels{
		Assistant:           assistant,
		Translator:          translator,
		AssistantModelName:  config.AssistantConfig.Model,
		TranslatorModelName: config.TranslatorCfg.Model,
	}, nil
}

// BindToolsToAssistant binds tools to the assistant chat model
func (cm *ChatModels) BindToolsToAssistant(ctx context.Context, tools []*schema.ToolInfo) error {
	if err := cm.Assistant.BindTools(tools); err != nil {
		logx.Error().Err(err).Msg("Failed to bind tools")
		return fmt.Errorf("failed to bind tools: %w", err)
	}

	logx.Debug().Int("tools", len(tools)).Msg("Successfully bound tools to assistant model")
	return nil
}
