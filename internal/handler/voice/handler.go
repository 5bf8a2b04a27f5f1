package voice

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	voiceService "github.com/zhouzirui/mindbff/backend/internal/service/voice"
	"github.com/zhouzirui/mindbff/backend/internal/settings"
	"github.com/zhouzirui/mindbff/backend/pkg/utils"
)

// maxAudioChunk bounds one uploaded audio chunk.
const maxAudioChunk = 1 << 20

// Session 抽象语音会话，便于测试与替换实现
type Session interface {
	Toggle(ctx context.Context, voiceKey string) error
	SendAudio(chunk []byte) error
	Snapshot() voiceService.Snapshot
	Subscribe(fn func(voiceService.Snapshot)) func()
}

// Handler 语音陪伴的HTTP处理器
type Handler struct {
	session   Session
	settings  *settings.Handle
	heartbeat time.Duration
}

func New(session Session, handle *settings.Handle) *Handler {
	return &Handler{session: session, settings: handle, heartbeat: 15 * time.Second}
}

// RegisterRoutes 注册语音相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/voice", func(vr chi.Router) {
		vr.Post("/toggle", h.handleToggle)
		vr.Get("/status", h.handleStatus)
		vr.Get("/events", h.handleEvents)
		vr.Post("/audio", h.handleAudio)
	})
}

// handleToggle starts or stops the conversation. The session outlives the request,
// so the request's cancellation is detached.
func (h *Handler) handleToggle(w http.ResponseWriter, r *http.Request) {
	ctx := context.WithoutCancel(r.Context())
	err := h.session.Toggle(ctx, h.settings.Keys().VoiceKey)
	snap := h.session.Snapshot()

	switch {
	case err == nil:
		utils.RespondJSON(w, http.StatusOK, snap)
	case errors.Is(err, voiceService.ErrMissingCredential):
		utils.RespondJSON(w, http.StatusPreconditionFailed, errorResponse{Error: err.Error(), Status: snap})
	case errors.Is(err, voiceService.ErrPermissionDenied):
		utils.RespondJSON(w, http.StatusForbidden, errorResponse{Error: snap.Error, Status: snap})
	default:
		utils.RespondJSON(w, http.StatusBadGateway, errorResponse{Error: snap.Error, Status: snap})
	}
}

type errorResponse struct {
	Error  string                `json:"error"`
	Status voiceService.Snapshot `json:"status"`
}

func (h *Handler) handleStatus(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, h.session.Snapshot())
}

// handleAudio forwards a raw audio chunk captured by the browser.
func (h *Handler) handleAudio(w http.ResponseWriter, r *http.Request) {
	chunk, err := io.ReadAll(io.LimitReader(r.Body, maxAudioChunk+1))
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, "failed to read audio")
		return
	}
	if len(chunk) == 0 || len(chunk) > maxAudioChunk {
		utils.RespondError(w, http.StatusBadRequest, "audio chunk must be between 1 byte and 1 MiB")
		return
	}

	if err := h.session.SendAudio(chunk); err != nil {
		status := http.StatusBadGateway
		if errors.Is(err, voiceService.ErrNotActive) {
			status = http.StatusConflict
		}
		utils.RespondError(w, status, err.Error())
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

// handleEvents streams a "status" event on every state change, starting with the current one.
func (h *Handler) handleEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		utils.RespondError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}
	utils.SetupSSEHeaders(w)

	updates := make(chan voiceService.Snapshot, 8)
	unsubscribe := h.session.Subscribe(func(snap voiceService.Snapshot) {
		select {
		case updates <- snap:
		default:
			log.Printf("[voice] dropping status update for slow subscriber")
		}
	})
	defer unsubscribe()

	if err := utils.SendSSEEvent(w, flusher, "status", h.session.Snapshot()); err != nil {
		return
	}

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case snap := <-updates:
			if err := utils.SendSSEEvent(w, flusher, "status", snap); err != nil {
				return
			}
		case <-ticker.C:
			if _, err := io.WriteString(w, ": keep-alive\n\n"); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}
