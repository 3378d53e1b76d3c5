package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/zhouzirui/mathtutor-chat/internal/handler/chat"
	"github.com/zhouzirui/mathtutor-chat/internal/handler/chatbot"
	"github.com/zhouzirui/mathtutor-chat/internal/handler/intent"
	"github.com/zhouzirui/mathtutor-chat/internal/handler/socket"
	"github.com/zhouzirui/mathtutor-chat/internal/handler/stream"
	middlewarePkg "github.com/zhouzirui/mathtutor-chat/internal/middleware"
	intentModel "github.com/zhouzirui/mathtutor-chat/internal/model/intent"
	aiService "github.com/zhouzirui/mathtutor-chat/internal/service/ai"
	chatService "github.com/zhouzirui/mathtutor-chat/internal/service/chat"
	chatbotService "github.com/zhouzirui/mathtutor-chat/internal/service/chatbot"
	"github.com/zhouzirui/mathtutor-chat/pkg/utils"
)

// NewRouter wires HTTP routes to core services. aiSvc and sockets may be nil.
func NewRouter(intents intentModel.Store, chatSvc *chatService.Service, bot *chatbotService.Service, aiSvc *aiService.Service, sockets *socket.ConnectionManager, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	if sockets == nil {
		sockets = socket.NewConnectionManager()
	}

	var generator stream.Generator
	if aiSvc != nil {
		generator = aiSvc
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		utils.RespondJSON(w, http.StatusOK, map[string]any{
			"status":  "ok",
			"llm":     aiSvc != nil,
			"sockets": sockets.Count(),
		})
	})

	r.Route("/api", func(api chi.Router) {
		chatbot.New(bot, logger).RegisterRoutes(api)
		chat.New(chatSvc).RegisterRoutes(api)
		intent.New(intents).RegisterRoutes(api)
		stream.New(bot, generator, logger).RegisterRoutes(api)
		socket.New(bot, sockets, logger).RegisterRoutes(api)
	})

	return r
}
