package screen

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/zhouzirui/mindbff/backend/internal/shell"
	"github.com/zhouzirui/mindbff/backend/pkg/utils"
)

// Handler exposes the navigation state of the four screens.
type Handler struct {
	nav *shell.Navigator
}

func New(nav *shell.Navigator) *Handler {
	return &Handler{nav: nav}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/screens", h.handleList)
	r.Get("/screens/{destination}", h.handleSelect)
}

type response struct {
	Active shell.Destination `json:"active"`
	Tabs   []shell.Tab       `json:"tabs"`
	// Fallback is true when the requested screen was unknown.
	Fallback bool `json:"fallback,omitempty"`
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, response{Active: h.nav.Active(), Tabs: h.nav.Tabs()})
}

func (h *Handler) handleSelect(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "destination")
	_, known := shell.Parse(name)
	active := h.nav.Select(name)
	utils.RespondJSON(w, http.StatusOK, response{Active: active, Tabs: h.nav.Tabs(), Fallback: !known})
}
