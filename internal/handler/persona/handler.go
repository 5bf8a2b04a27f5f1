package persona

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/zhouzirui/mindbff/backend/internal/model/persona"
	"github.com/zhouzirui/mindbff/backend/pkg/utils"
)

// Handler persona服务的HTTP处理器
type Handler struct {
	personas persona.Store
}

// New 创建persona处理器
func New(personas persona.Store) *Handler {
	if personas == nil {
		personas = persona.NewMemoryStore(persona.Seed())
	}
	return &Handler{
		personas: personas,
	}
}

// RegisterRoutes 注册persona相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/personas", h.handleListPersonas)
	r.Get("/personas/{personaID}", h.handleGetPersona)
}

// summary 是对外公开的 persona 信息，不包含 system prompt。
type summary struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Greeting  string `json:"greeting,omitempty"`
	MaxTokens int    `json:"maxTokens"`
}

func toSummary(p persona.Persona) summary {
	return summary{ID: p.ID, Name: p.Name, Greeting: p.Greeting, MaxTokens: p.MaxTokens}
}

// handleListPersonas 列出所有persona
func (h *Handler) handleListPersonas(w http.ResponseWriter, r *http.Request) {
	items := h.personas.List()
	out := make([]summary, 0, len(items))
	for _, p := range items {
		out = append(out, toSummary(p))
	}
	utils.RespondJSON(w, http.StatusOK, out)
}

func (h *Handler) handleGetPersona(w http.ResponseWriter, r *http.Request) {
	p, ok := h.personas.FindByID(chi.URLParam(r, "personaID"))
	if !ok {
		utils.RespondError(w, http.StatusNotFound, "persona not found")
		return
	}
	utils.RespondJSON(w, http.StatusOK, toSummary(p))
}
