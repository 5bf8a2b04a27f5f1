package affirmation

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/zhouzirui/mindbff/backend/internal/affirmation"
	"github.com/zhouzirui/mindbff/backend/pkg/utils"
)

// Handler serves the affirmation of the day.
type Handler struct {
	now func() time.Time
}

func New(now func() time.Time) *Handler {
	if now == nil {
		now = time.Now
	}
	return &Handler{now: now}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/affirmation", h.handleGet)
}

type response struct {
	Date  string `json:"date"`
	Index int    `json:"index"`
	Text  string `json:"text"`
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	day := h.now()
	if raw := r.URL.Query().Get("date"); raw != "" {
		parsed, err := time.ParseInLocation("2006-01-02", raw, day.Location())
		if err != nil {
			utils.RespondError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
			return
		}
		day = parsed
	}

	utils.RespondJSON(w, http.StatusOK, response{
		Date:  day.Format(affirmation.DateLayout),
		Index: affirmation.Index(day),
		Text:  affirmation.Pick(day),
	})
}
