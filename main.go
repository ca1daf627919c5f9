package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/erpbot/server/internal/agent/graph/tools"
	"github.com/erpbot/server/internal/erp"
	"github.com/erpbot/server/internal/mcpserver"
	"github.com/erpbot/server/internal/server"
	logx "github.com/erpbot/server/pkg/logger"
)

const (
	Name    = "erpbot"
	Version = "0.1.0"
)

var envFile string

var rootCmd = &cobra.Command{
	Use:           Name,
	Short:         "Spanish-speaking ERP assistant",
	Long:          "erpbot answers natural-language questions about customers, suppliers, items, invoices and orders, and records new documents through tool calls.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// setup loads config, initialises logging and opens the ERP store.
func setup(ctx context.Context) (*app, error) {
	cfg, err := loadConfig(envFile)
	if err != nil {
		return nil, err
	}
	initLogger(cfg)
	return openStore(ctx, cfg)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the chat API over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := setup(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		bot, err := a.newBot(ctx)
		if err != nil {
			return err
		}
		return server.Run(ctx, a.cfg.HTTPAddr, server.NewRouter(server.NewHandler(bot)))
	},
}

var sessionID string

var chatCmd = &cobra.Command{
	Use:   "chat <prompt>",
	Short: "Send one prompt and print the answer",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := setup(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		bot, err := a.newBot(ctx)
		if err != nil {
			return err
		}
		answer, err := bot.Respond(ctx, sessionID, strings.Join(args, " "))
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), answer)
		return nil
	},
}

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Expose the ERP tools over MCP stdio",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := setup(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		s := mcpserver.New(Name, Version)
		if err := s.RegisterTools(ctx, tools.GetERPTools(a.store)); err != nil {
			return err
		}
		return s.Run(ctx)
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the ERP schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := setup(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		if err := erp.Migrate(ctx, a.db); err != nil {
			return err
		}
		logx.Info().Str("driver", a.cfg.Database.Driver).Msg("schema migrated")
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before the environment")
	chatCmd.Flags().StringVarP(&sessionID, "session", "s", "cli", "session id used for the conversation history")
	rootCmd.AddCommand(serveCmd, chatCmd, mcpCmd, migrateCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		logx.Error().Err(err).Msg("command failed")
		stop()
		os.Exit(1)
	}
}
