package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/zhouzirui/mathtutor-chat/internal/config"
	"github.com/zhouzirui/mathtutor-chat/internal/handler"
	"github.com/zhouzirui/mathtutor-chat/internal/handler/socket"
	"github.com/zhouzirui/mathtutor-chat/internal/logging"
	"github.com/zhouzirui/mathtutor-chat/internal/model/intent"
	"github.com/zhouzirui/mathtutor-chat/internal/service/ai"
	"github.com/zhouzirui/mathtutor-chat/internal/service/chat"
	"github.com/zhouzirui/mathtutor-chat/internal/service/chatbot"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.Log.Level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()
	zap.ReplaceGlobals(logger)

	if envErr != nil {
		logger.Warn("failed to load .env file, continuing with system environment variables only", zap.Error(envErr))
	}

	intents, err := loadIntents(cfg.Chatbot)
	if err != nil {
		logger.Fatal("failed to load intents", zap.Error(err))
	}
	intentStore := intent.NewMemoryStore(intents)
	chatService := chat.NewService()

	// 意图未命中时由大模型兜底。
	var aiService *ai.Service
	if cfg.AI.Enabled() {
		aiService, err = ai.NewService(ctx, cfg.AI, intent.Tags(intents), logger)
		if err != nil {
			logger.Warn("failed to initialize AI service, continuing without LLM fallback", zap.Error(err))
			aiService = nil
		} else {
			logger.Info("AI service initialized", zap.String("model", cfg.AI.Model), zap.Bool("stream", aiService.StreamingEnabled()))
		}
	} else {
		logger.Info("Ark 凭证未配置，跳过大模型兜底")
	}

	opts := []chatbot.Option{chatbot.WithLogger(logger)}
	if aiService != nil {
		opts = append(opts, chatbot.WithResponder(aiService))
	}
	bot := chatbot.NewService(intentStore, cfg.Chatbot.Threshold, chatService, opts...)

	sockets := socket.NewConnectionManager()
	router := handler.NewRouter(intentStore, chatService, bot, aiService, sockets, logger)

	startServer(ctx, logger, cfg.Server, router, sockets.CloseAll)
}

func loadIntents(cfg config.ChatbotConfig) ([]intent.Intent, error) {
	if cfg.IntentsFile == "" {
		return intent.Seed(), nil
	}
	return intent.LoadFile(cfg.IntentsFile)
}

func startServer(ctx context.Context, logger *zap.Logger, serverCfg config.ServerConfig, router http.Handler, onShutdown func()) {
	addr := serverCfg.Addr
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	srv.RegisterOnShutdown(onShutdown)

	logger.Info("math tutor chatbot listening", zap.String("addr", addr))
	if err := runServer(ctx, srv); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
	logger.Info("server stopped")
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
