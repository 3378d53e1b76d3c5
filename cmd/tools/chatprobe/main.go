package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/zhouzirui/mathtutor-chat/internal/client/chatbot"
	"github.com/zhouzirui/mathtutor-chat/internal/config"
	"github.com/zhouzirui/mathtutor-chat/internal/logging"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		endpoint string
		timeout  time.Duration
		asJSON   bool
	)

	cmd := &cobra.Command{
		Use:          "chatprobe [text...]",
		Short:        "Send one line to the chatbot endpoint and print the reply",
		SilenceUsage: true,
		Args:         cobra.ArbitraryArgs,
	}

	cmd.Flags().StringVar(&endpoint, "endpoint", "", "chatbot endpoint URL (默认读取 CHAT_ENDPOINT)")
	cmd.Flags().DurationVar(&timeout, "timeout", 45*time.Second, "请求超时时间")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the full reply as JSON")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		_ = godotenv.Load()

		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("配置加载失败: %w", err)
		}
		if endpoint == "" {
			endpoint = cfg.Client.Endpoint
		}

		logger, err := logging.New(cfg.Log.Level, "stderr")
		if err != nil {
			return err
		}
		defer func() { _ = logger.Sync() }()

		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()

		text := strings.Join(args, " ")
		logger.Info("sending probe", zap.String("endpoint", endpoint), zap.String("text", text))

		return probe(ctx, chatbot.New(endpoint, nil), text, cmd.OutOrStdout(), asJSON)
	}

	return cmd
}

func probe(ctx context.Context, client *chatbot.Client, text string, out io.Writer, asJSON bool) error {
	started := time.Now()
	reply, err := client.Send(ctx, text)
	if err != nil {
		return err
	}

	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(reply)
	}

	zap.L().Debug("probe finished", zap.Duration("elapsed", time.Since(started)))
	_, err = fmt.Fprintln(out, reply.Text.String())
	return err
}
