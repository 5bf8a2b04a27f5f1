package chat

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/zhouzirui/mindbff/backend/internal/model/chat"
	chatService "github.com/zhouzirui/mindbff/backend/internal/service/chat"
	"github.com/zhouzirui/mindbff/backend/internal/settings"
	"github.com/zhouzirui/mindbff/backend/pkg/utils"
)

// Handler 聊天服务的HTTP处理器
type Handler struct {
	chatSvc  *chatService.Service
	settings *settings.Handle
}

// New 创建聊天处理器
func New(chatSvc *chatService.Service, handle *settings.Handle) *Handler {
	return &Handler{
		chatSvc:  chatSvc,
		settings: handle,
	}
}

// RegisterRoutes 注册聊天相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/chat/session", h.handleCreateSession)
	r.Get("/chat/{sessionID}/messages", h.handleListMessages)
	r.Post("/chat/{sessionID}/messages", h.handleSendMessage)
}

type sessionResponse struct {
	Session  chat.Session   `json:"session"`
	Messages []chat.Message `json:"messages"`
}

// handleCreateSession 创建会话，首条消息是伙伴的问候
func (h *Handler) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	session, err := h.chatSvc.CreateSession(r.Context())
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	messages, err := h.chatSvc.LoadTranscript(r.Context(), session.ID)
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	utils.RespondJSON(w, http.StatusCreated, sessionResponse{Session: session, Messages: messages})
}

func (h *Handler) handleListMessages(w http.ResponseWriter, r *http.Request) {
	messages, err := h.chatSvc.LoadTranscript(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]any{"messages": messages})
}

// handleSendMessage 追加用户消息并返回伙伴的回复。上游失败时回复是道歉文本，状态码仍为 200。
func (h *Handler) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Content string `json:"content"`
	}
	if err := utils.DecodeJSON(r, &payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	sessionID := chi.URLParam(r, "sessionID")
	reply, err := h.chatSvc.Send(r.Context(), sessionID, h.settings.Keys().ChatKey, payload.Content)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	messages, _ := h.chatSvc.LoadTranscript(r.Context(), sessionID)
	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"reply":    reply,
		"messages": messages,
	})
}

func respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, chatService.ErrSessionNotFound):
		utils.RespondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, chatService.ErrEmptyMessage):
		utils.RespondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, chatService.ErrBusy):
		utils.RespondError(w, http.StatusConflict, err.Error())
	default:
		utils.RespondError(w, http.StatusInternalServerError, err.Error())
	}
}
