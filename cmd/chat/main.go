package main

import (
	"fmt"
	"net/http"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/zhouzirui/mathtutor-chat/internal/client/chatbot"
	"github.com/zhouzirui/mathtutor-chat/internal/config"
	"github.com/zhouzirui/mathtutor-chat/internal/logging"
	"github.com/zhouzirui/mathtutor-chat/internal/tui/chat"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "chat",
		Short:        "Chat with the math tutor bot from the terminal",
		SilenceUsage: true,
		Args:         cobra.NoArgs,
	}

	cmd.Flags().String("endpoint", "", "chatbot endpoint URL (env CHAT_ENDPOINT)")
	cmd.Flags().Bool("supersede", false, "cancel the previous request when a new one is sent (env CHAT_SUPERSEDE)")
	cmd.Flags().Duration("timeout", 0, "per-request timeout, 0 for none (env CHAT_TIMEOUT)")
	cmd.Flags().String("log-file", "", "diagnostic log file (env LOG_FILE)")
	cmd.Flags().String("log-level", "", "debug, info, warn or error (env LOG_LEVEL)")

	cmd.RunE = func(cmd *cobra.Command, _ []string) error {
		// .env 缺失时静默使用系统环境变量。
		_ = godotenv.Load()

		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		if err := applyFlags(cmd, cfg); err != nil {
			return err
		}

		// 终端被界面占用，日志只写文件。
		logger, err := logging.New(cfg.Log.Level, cfg.Log.File)
		if err != nil {
			return err
		}
		defer func() { _ = logger.Sync() }()
		zap.ReplaceGlobals(logger)

		return run(cfg.Client, logger)
	}

	return cmd
}

// applyFlags lets explicitly set flags override the environment.
func applyFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()

	if flags.Changed("endpoint") {
		endpoint, _ := flags.GetString("endpoint")
		cfg.Client.Endpoint = endpoint
	}
	if flags.Changed("supersede") {
		supersede, _ := flags.GetBool("supersede")
		cfg.Client.Supersede = supersede
	}
	if flags.Changed("timeout") {
		timeout, _ := flags.GetDuration("timeout")
		if timeout < 0 {
			return fmt.Errorf("invalid --timeout %s: must not be negative", timeout)
		}
		cfg.Client.Timeout = timeout
	}
	if flags.Changed("log-file") {
		file, _ := flags.GetString("log-file")
		cfg.Log.File = file
	}
	if flags.Changed("log-level") {
		level, _ := flags.GetString("log-level")
		cfg.Log.Level = level
	}
	return nil
}

func run(cfg config.ClientConfig, logger *zap.Logger) error {
	client := chatbot.New(cfg.Endpoint, &http.Client{Transport: http.DefaultTransport})

	model := chat.New(client, chat.Options{
		Endpoint:  cfg.Endpoint,
		Supersede: cfg.Supersede,
		Timeout:   cfg.Timeout,
		Logger:    logger,
	})

	logger.Info("chat client started",
		zap.String("endpoint", cfg.Endpoint),
		zap.Bool("supersede", cfg.Supersede),
		zap.Duration("timeout", cfg.Timeout),
	)
	started := time.Now()

	if _, err := tea.NewProgram(model, tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("chat ui: %w", err)
	}

	logger.Info("chat client exited", zap.Duration("uptime", time.Since(started)))
	return nil
}
