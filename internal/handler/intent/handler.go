package intent

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/zhouzirui/mathtutor-chat/internal/model/intent"
	"github.com/zhouzirui/mathtutor-chat/pkg/utils"
)

// Handler 意图列表的HTTP处理器
type Handler struct {
	intents intent.Store
}

// New 创建意图处理器
func New(intents intent.Store) *Handler {
	return &Handler{intents: intents}
}

// RegisterRoutes 注册意图相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/intents", h.handleListIntents)
}

// handleListIntents 列出所有意图，不暴露候选回复
func (h *Handler) handleListIntents(w http.ResponseWriter, r *http.Request) {
	items := h.intents.List()
	for i := range items {
		items[i].Responses = nil
	}
	utils.RespondJSON(w, http.StatusOK, items)
}
