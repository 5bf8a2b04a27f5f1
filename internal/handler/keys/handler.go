package keys

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	keyModel "github.com/zhouzirui/mindbff/backend/internal/model/keys"
	"github.com/zhouzirui/mindbff/backend/internal/settings"
	"github.com/zhouzirui/mindbff/backend/pkg/utils"
)

// Handler 暴露用户的两把 API 密钥。响应中只返回掩码后的值。
type Handler struct {
	settings *settings.Handle
}

func New(handle *settings.Handle) *Handler {
	return &Handler{settings: handle}
}

// RegisterRoutes 注册密钥相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/keys", h.handleGet)
	r.Put("/keys", h.handlePut)
}

type keysResponse struct {
	Keys     keyModel.Pair `json:"keys"`
	HasChat  bool          `json:"hasChat"`
	HasVoice bool          `json:"hasVoice"`
	Complete bool          `json:"complete"`
}

func present(pair keyModel.Pair) keysResponse {
	return keysResponse{
		Keys:     pair.Masked(),
		HasChat:  pair.HasChat(),
		HasVoice: pair.HasVoice(),
		Complete: pair.Complete(),
	}
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, present(h.settings.Keys()))
}

// savePayload 用指针区分"字段缺失"和"显式清空"。
type savePayload struct {
	ChatKey  *string `json:"openai"`
	VoiceKey *string `json:"elevenlabs"`
}

func (h *Handler) handlePut(w http.ResponseWriter, r *http.Request) {
	var payload savePayload
	if err := utils.DecodeJSON(r, &payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	// an empty body would otherwise wipe both keys
	if payload.ChatKey == nil && payload.VoiceKey == nil {
		utils.RespondError(w, http.StatusBadRequest, "openai or elevenlabs is required")
		return
	}

	var pair keyModel.Pair
	if payload.ChatKey != nil {
		pair.ChatKey = *payload.ChatKey
	}
	if payload.VoiceKey != nil {
		pair.VoiceKey = *payload.VoiceKey
	}

	if err := h.settings.Save(pair); err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "failed to save keys")
		return
	}
	utils.RespondJSON(w, http.StatusOK, present(h.settings.Keys()))
}
