package handler

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/securemov/ana-chat/backend/internal/feed"
	"github.com/securemov/ana-chat/backend/internal/handler/assistant"
	"github.com/securemov/ana-chat/backend/internal/handler/chat"
	feedHandler "github.com/securemov/ana-chat/backend/internal/handler/feed"
	"github.com/securemov/ana-chat/backend/internal/handler/persona"
	"github.com/securemov/ana-chat/backend/internal/handler/stream"
	middlewarePkg "github.com/securemov/ana-chat/backend/internal/middleware"
	personaModel "github.com/securemov/ana-chat/backend/internal/model/persona"
	chatService "github.com/securemov/ana-chat/backend/internal/service/chat"
	"github.com/securemov/ana-chat/backend/pkg/utils"
)

// Pinger is a dependency checked by /healthz.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Dependencies are the services exposed over HTTP.
type Dependencies struct {
	Personas  personaModel.Store
	Chat      *chatService.Service
	Assistant assistant.Service
	Feed      feed.Subscriber
	// Checks maps a dependency name to its health probe.
	Checks map[string]Pinger
	// AssistantLimiter throttles POST /api/ai and assistant invocations on
	// POST /api/messages; nil disables limiting.
	AssistantLimiter *middlewarePkg.RateLimiter
	Logger           zerolog.Logger
}

// NewRouter wires HTTP routes to core services.
func NewRouter(deps Dependencies) http.Handler {
	r := chi.NewRouter()

	r.Use(middlewarePkg.Metrics)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middlewarePkg.Logger(deps.Logger))
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		utils.RespondError(w, http.StatusMethodNotAllowed, "method not allowed")
	})
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		utils.RespondError(w, http.StatusNotFound, "not found")
	})

	r.Get("/healthz", healthHandler(deps.Checks))
	r.Handle("/metrics", promhttp.Handler())

	// Create handlers
	personaHandler := persona.New(deps.Personas)
	assistantHandler := assistant.New(deps.Assistant)
	var assistantLimiter chat.Limiter
	if deps.AssistantLimiter != nil {
		assistantLimiter = deps.AssistantLimiter
	}
	chatHandler := chat.New(deps.Chat, assistantLimiter)
	streamHandler := stream.New(deps.Chat, deps.Feed, deps.Logger)
	wsHandler := feedHandler.NewWebSocketHandler(deps.Chat, deps.Feed, deps.Logger)

	r.Route("/api", func(api chi.Router) {
		personaHandler.RegisterRoutes(api)
		chatHandler.RegisterRoutes(api)

		api.Group(func(limited chi.Router) {
			if deps.AssistantLimiter != nil {
				limited.Use(deps.AssistantLimiter.Middleware)
			}
			assistantHandler.RegisterRoutes(limited)
		})

		// 需要加入码的接口
		api.Group(func(protected chi.Router) {
			protected.Use(middlewarePkg.RequireJoinCode(deps.Chat))
			chatHandler.RegisterProtectedRoutes(protected)
			protected.Get("/stream", streamHandler.HandleStream)
			protected.Get("/feed", wsHandler.HandleWebSocket)
		})
	})

	return r
}

// healthHandler reports "ok" when every dependency answers its ping.
func healthHandler(checks map[string]Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		names := make([]string, 0, len(checks))
		for name := range checks {
			names = append(names, name)
		}
		sort.Strings(names)

		status := http.StatusOK
		results := make(map[string]string, len(checks))
		for _, name := range names {
			if err := checks[name].Ping(ctx); err != nil {
				results[name] = err.Error()
				status = http.StatusServiceUnavailable
				continue
			}
			results[name] = "ok"
		}

		overall := "ok"
		if status != http.StatusOK {
			overall = "degraded"
		}
		utils.RespondJSON(w, status, map[string]any{
			"status": overall,
			"checks": results,
		})
	}
}
