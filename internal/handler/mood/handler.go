package mood

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/zhouzirui/mindbff/backend/internal/model/mood"
	moodService "github.com/zhouzirui/mindbff/backend/internal/service/mood"
	"github.com/zhouzirui/mindbff/backend/pkg/utils"
)

// Handler 心情记录与周图表
type Handler struct {
	recorder *moodService.Recorder
	now      func() time.Time
}

func New(recorder *moodService.Recorder, now func() time.Time) *Handler {
	if now == nil {
		now = time.Now
	}
	return &Handler{recorder: recorder, now: now}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/mood/levels", h.handleLevels)
	r.Post("/mood", h.handleSubmit)
	r.Get("/mood/week", h.handleWeek)
}

type levelView struct {
	mood.LevelInfo
	BarHeight int `json:"barHeight"`
}

type sampleView struct {
	Day       string      `json:"day"`
	Level     *mood.Level `json:"level"`
	Emoji     string      `json:"emoji,omitempty"`
	BarHeight int         `json:"barHeight"`
}

func (h *Handler) handleLevels(w http.ResponseWriter, r *http.Request) {
	levels := mood.Levels()
	views := make([]levelView, len(levels))
	for i, info := range levels {
		views[i] = levelView{LevelInfo: info, BarHeight: moodService.BarHeightPercent(info.Value)}
	}
	utils.RespondJSON(w, http.StatusOK, map[string]any{"levels": views})
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Level *int `json:"level"`
	}
	if err := utils.DecodeJSON(r, &payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if payload.Level == nil {
		utils.RespondError(w, http.StatusBadRequest, moodService.ErrNoSelection.Error())
		return
	}

	if err := h.recorder.Select(mood.Level(*payload.Level)); err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	record, err := h.recorder.Submit(r.Context(), h.now())
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, moodService.ErrNoSelection) {
			status = http.StatusBadRequest
		}
		utils.RespondError(w, status, err.Error())
		return
	}
	utils.RespondJSON(w, http.StatusCreated, record)
}

// handleWeek returns the current week, or the demonstration series with ?sample=true.
func (h *Handler) handleWeek(w http.ResponseWriter, r *http.Request) {
	sample := false
	if raw := r.URL.Query().Get("sample"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			utils.RespondError(w, http.StatusBadRequest, "sample must be a boolean")
			return
		}
		sample = parsed
	}

	var samples []mood.Sample
	if sample {
		samples = moodService.SampleWeek()
	} else {
		var err error
		samples, err = h.recorder.Week(r.Context(), h.now())
		if err != nil {
			status := http.StatusInternalServerError
			if errors.Is(err, moodService.ErrNoStore) {
				status = http.StatusServiceUnavailable
			}
			utils.RespondError(w, status, err.Error())
			return
		}
	}

	views := make([]sampleView, len(samples))
	for i, s := range samples {
		views[i] = sampleView{Day: s.Day, Level: s.Level}
		if s.Level != nil {
			views[i].Emoji = s.Level.Info().Emoji
			views[i].BarHeight = moodService.BarHeightPercent(*s.Level)
		}
	}
	utils.RespondJSON(w, http.StatusOK, map[string]any{"sample": sample, "days": views})
}
