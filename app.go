package main

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/erpbot/server/internal/agent/chatbot"
	"github.com/erpbot/server/internal/agent/graph"
	"github.com/erpbot/server/internal/agent/graph/nodes"
	"github.com/erpbot/server/internal/agent/language"
	"github.com/erpbot/server/internal/agent/relevance"
	"github.com/erpbot/server/internal/agent/repo"
	"github.com/erpbot/server/internal/erp"
	"github.com/erpbot/server/pkg/database"
	logx "github.com/erpbot/server/pkg/logger"
)

// app holds the long-lived clients behind every command.
type app struct {
	cfg   *AppConfig
	db    *gorm.DB
	store *erp.Store
	rdb   *redis.Client
}

// openStore connects the ERP database and optionally migrates it.
func openStore(ctx context.Context, cfg *AppConfig) (*app, error) {
	db, err := cfg.Database.Open(ctx)
	if err != nil {
		return nil, err
	}
	if cfg.Database.AutoMigrate {
		if err := erp.Migrate(ctx, db); err != nil {
			_ = database.Close(db)
			return nil, err
		}
	}
	return &app{
		cfg:   cfg,
		db:    db,
		store: erp.NewStore(db, erp.WithCurrency(cfg.ERP.CompanyCurrency)),
	}, nil
}

func (a *app) Close() {
	if a.rdb != nil {
		_ = a.rdb.Close()
	}
	if a.db != nil {
		_ = database.Close(a.db)
	}
}

// assistantModel returns the configured model, unless the settings document overrides it.
func (a *app) assistantModel(ctx context.Context) string {
	override, err := a.store.ModelOverride(ctx)
	if err != nil {
		logx.Warn().Err(err).Msg("could not read model override, using configured model")
		return a.cfg.Assistant.Model
	}
	if override != "" {
		logx.Info().Str("model", override).Msg("using model from bot settings")
		return override
	}
	return a.cfg.Assistant.Model
}

// newBot wires Redis, the chat models, the agent graph and the language normalizer.
func (a *app) newBot(ctx context.Context) (*chatbot.Bot, error) {
	if err := a.cfg.requireLLM(); err != nil {
		return nil, err
	}

	rdb, err := a.cfg.Redis.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("initialise redis client: %w", err)
	}
	a.rdb = rdb
	sessions := repo.NewSessionStore(rdb, a.cfg.Conversation.TTLDuration())

	assistantCfg := a.cfg.Assistant
	assistantCfg.Model = a.assistantModel(ctx)
	cms, err := nodes.NewChatModels(ctx, nodes.ChatModelConfig{
		APIKey:          a.cfg.APIKey,
		BaseURL:         a.cfg.BaseURL,
		AssistantConfig: &assistantCfg,
		TranslatorCfg:   &a.cfg.Translator,
	})
	if err != nil {
		return nil, err
	}

	runner, err := graph.BuildResponseGraph(ctx, graph.Config{
		ChatModels:       cms,
		Store:            a.store,
		ERP:              a.cfg.ERP,
		Conversation:     a.cfg.Conversation,
		ConversationRepo: sessions,
	})
	if err != nil {
		return nil, fmt.Errorf("build graph: %w", err)
	}

	normalizer := language.NewNormalizer(language.NewDetector(), language.NewChatTranslator(cms.Translator))
	return chatbot.New(relevance.NewGate(a.cfg.Relevance.Keywords), runner, normalizer, sessions), nil
}
