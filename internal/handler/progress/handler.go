package progress

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	progressService "github.com/zhouzirui/mindbff/backend/internal/service/progress"
	"github.com/zhouzirui/mindbff/backend/pkg/utils"
)

type Handler struct {
	builder *progressService.Builder
	now     func() time.Time
}

func New(builder *progressService.Builder, now func() time.Time) *Handler {
	if now == nil {
		now = time.Now
	}
	return &Handler{builder: builder, now: now}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/progress", h.handleGet)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	report, err := h.builder.Build(r.Context(), h.now())
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	utils.RespondJSON(w, http.StatusOK, report)
}
