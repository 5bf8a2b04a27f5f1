package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/zhouzirui/mindbff/backend/internal/handler/affirmation"
	"github.com/zhouzirui/mindbff/backend/internal/handler/chat"
	"github.com/zhouzirui/mindbff/backend/internal/handler/journal"
	"github.com/zhouzirui/mindbff/backend/internal/handler/keys"
	"github.com/zhouzirui/mindbff/backend/internal/handler/mood"
	"github.com/zhouzirui/mindbff/backend/internal/handler/persona"
	"github.com/zhouzirui/mindbff/backend/internal/handler/progress"
	"github.com/zhouzirui/mindbff/backend/internal/handler/screen"
	"github.com/zhouzirui/mindbff/backend/internal/handler/voice"
	middlewarePkg "github.com/zhouzirui/mindbff/backend/internal/middleware"
	personaModel "github.com/zhouzirui/mindbff/backend/internal/model/persona"
	chatService "github.com/zhouzirui/mindbff/backend/internal/service/chat"
	journalService "github.com/zhouzirui/mindbff/backend/internal/service/journal"
	moodService "github.com/zhouzirui/mindbff/backend/internal/service/mood"
	progressService "github.com/zhouzirui/mindbff/backend/internal/service/progress"
	"github.com/zhouzirui/mindbff/backend/internal/settings"
	"github.com/zhouzirui/mindbff/backend/internal/shell"
	"github.com/zhouzirui/mindbff/backend/pkg/utils"
)

// Dependencies lists the services the HTTP surface talks to.
type Dependencies struct {
	Settings  *settings.Handle
	Navigator *shell.Navigator
	Personas  personaModel.Store
	Chat      *chatService.Service
	Journal   *journalService.Analyzer
	Mood      *moodService.Recorder
	Progress  *progressService.Builder
	Voice     voice.Session
	// Durable reports whether saved history survives a restart.
	Durable bool
	Now     func() time.Time
}

// NewRouter wires HTTP routes to core services.
func NewRouter(deps Dependencies) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	r.Route("/api", func(api chi.Router) {
		api.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			utils.RespondJSON(w, http.StatusOK, map[string]any{
				"status":  "ok",
				"durable": deps.Durable,
				"keys":    deps.Settings.Keys().Complete(),
			})
		})

		keys.New(deps.Settings).RegisterRoutes(api)
		affirmation.New(deps.Now).RegisterRoutes(api)
		screen.New(deps.Navigator).RegisterRoutes(api)
		persona.New(deps.Personas).RegisterRoutes(api)
		chat.New(deps.Chat, deps.Settings).RegisterRoutes(api)
		journal.New(deps.Journal, deps.Settings, deps.Durable, deps.Now).RegisterRoutes(api)
		mood.New(deps.Mood, deps.Now).RegisterRoutes(api)
		progress.New(deps.Progress, deps.Now).RegisterRoutes(api)
		voice.New(deps.Voice, deps.Settings).RegisterRoutes(api)
	})

	return r
}
