package journal

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	journalService "github.com/zhouzirui/mindbff/backend/internal/service/journal"
	"github.com/zhouzirui/mindbff/backend/internal/settings"
	"github.com/zhouzirui/mindbff/backend/pkg/utils"
)

// Where a saved entry went, shown to the user as-is.
const (
	SavedOnDevice  = "Saved on this device"
	SavedInSession = "Kept for this session only"
)

// Handler 日记分析与保存
type Handler struct {
	analyzer *journalService.Analyzer
	settings *settings.Handle
	durable  bool
	now      func() time.Time
}

// New builds the handler. durable tells the user whether saved entries survive a restart.
func New(analyzer *journalService.Analyzer, handle *settings.Handle, durable bool, now func() time.Time) *Handler {
	if now == nil {
		now = time.Now
	}
	return &Handler{analyzer: analyzer, settings: handle, durable: durable, now: now}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/journal/analyze", h.handleAnalyze)
	r.Get("/journal/entries", h.handleList)
	r.Post("/journal/entries", h.handleSave)
}

func (h *Handler) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Text string `json:"text"`
	}
	if err := utils.DecodeJSON(r, &payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	summary, err := h.analyzer.Analyze(r.Context(), payload.Text, h.settings.Keys().ChatKey)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]string{"summary": summary})
}

func (h *Handler) handleSave(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Text *string `json:"text"`
	}
	if err := utils.DecodeJSON(r, &payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if payload.Text != nil {
		h.analyzer.Draft(*payload.Text)
	}

	entry, err := h.analyzer.Save(r.Context(), h.now())
	if err != nil {
		respondServiceError(w, err)
		return
	}

	location := SavedInSession
	if h.durable {
		location = SavedOnDevice
	}
	utils.RespondJSON(w, http.StatusCreated, map[string]any{
		"entry":   entry,
		"durable": h.durable,
		"message": location,
	})
}

// handleList returns saved entries; ?days=N limits to the last N days.
func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	var since time.Time
	if raw := r.URL.Query().Get("days"); raw != "" {
		days, err := strconv.Atoi(raw)
		if err != nil || days < 1 {
			utils.RespondError(w, http.StatusBadRequest, "days must be a positive integer")
			return
		}
		since = h.now().AddDate(0, 0, -days)
	}

	entries, err := h.analyzer.Entries(r.Context(), since)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]any{"entries": entries})
}

func respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, journalService.ErrEmptyEntry):
		utils.RespondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, journalService.ErrBusy):
		utils.RespondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, journalService.ErrMissingCredential):
		utils.RespondError(w, http.StatusPreconditionFailed, err.Error())
	case errors.Is(err, journalService.ErrNoStore):
		utils.RespondError(w, http.StatusServiceUnavailable, err.Error())
	default:
		utils.RespondError(w, http.StatusInternalServerError, err.Error())
	}
}
