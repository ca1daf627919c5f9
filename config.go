package main

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/erpbot/server/internal/agent/model"
	"github.com/erpbot/server/internal/core"
	"github.com/erpbot/server/pkg/database"
	logx "github.com/erpbot/server/pkg/logger"
	pkgredis "github.com/erpbot/server/pkg/redis"
)

// AppConfig defines all configurable parameters of the service, sourced from
// environment variables (loaded from .env for local runs).
type AppConfig struct {
	Environment core.Environment `envconfig:"ENVIRONMENT" default:"development"`
	LogLevel    string           `envconfig:"LOG_LEVEL"`

	// Infrastructure
	Redis    pkgredis.Config
	Database database.Config

	// LLM provider
	APIKey  string `envconfig:"GEMINI_API_KEY"`
	BaseURL string `envconfig:"GEMINI_BASE_URL"`

	// Agent configs
	Assistant    model.AssistantModelConfig
	Translator   model.TranslatorConfig
	Conversation model.ConversationConfig
	Relevance    model.RelevanceConfig
	ERP          model.ERPConfig

	HTTPAddr string `envconfig:"HTTP_ADDR" default:":8080"`
}

// loadConfig reads envFile when it exists and then the process environment.
func loadConfig(envFile string) (*AppConfig, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	var cfg AppConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("process environment config: %w", err)
	}
	return &cfg, nil
}

// requireLLM checks the settings the agent needs to reach Gemini.
func (c *AppConfig) requireLLM() error {
	if c.APIKey == "" {
		return errors.New("GEMINI_API_KEY is required")
	}
	return nil
}

func initLogger(cfg *AppConfig) {
	logx.Init(logx.LoggerOpts{Environment: cfg.Environment, Level: cfg.LogLevel})
}
