package httpadapter

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/PabloGalante/tubot/internal/adapters/ratelimit"
	"github.com/PabloGalante/tubot/internal/app/auth"
	"github.com/PabloGalante/tubot/internal/app/bots"
	"github.com/PabloGalante/tubot/internal/app/chat"
	"github.com/PabloGalante/tubot/internal/domain"
)

// maxBodySize bounds request bodies; a full transcript fits comfortably.
const maxBodySize = 1 << 20

type Deps struct {
	Chat *chat.Service
	Bots *bots.Service
	Auth *auth.Service

	// Limiter throttles POST /chatbot/message. Nil disables it.
	Limiter ratelimit.Limiter
	// Checks are pinged by /healthz, by name.
	Checks map[string]domain.Pinger

	AllowedOrigins []string
	// ChatTimeout bounds one completion request; zero means 90s.
	ChatTimeout time.Duration
}

type Server struct {
	chat   *chat.Service
	bots   *bots.Service
	auth   *auth.Service
	checks map[string]domain.Pinger
}

// NewServer wires every route of tubot-api.
func NewServer(d Deps) http.Handler {
	s := &Server{
		chat:   d.Chat,
		bots:   d.Bots,
		auth:   d.Auth,
		checks: d.Checks,
	}

	origins := d.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	chatTimeout := d.ChatTimeout
	if chatTimeout <= 0 {
		chatTimeout = 90 * time.Second
	}

	r := chi.NewRouter()
	r.Use(withMetrics)
	r.Use(chimw.RequestID)
	r.Use(withLogging)
	r.Use(chimw.Recoverer)
	r.Use(chimw.RequestSize(maxBodySize))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders: []string{"X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset", "Retry-After"},
		MaxAge:         300,
	}))

	r.Get("/", s.handleRoot)
	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/chatbot", func(r chi.Router) {
		if d.Limiter != nil {
			r.Use(ratelimit.Middleware(d.Limiter, "chatbot_message"))
		}
		r.Use(chimw.Timeout(chatTimeout))
		r.Post("/message", s.handleChatMessage)
	})

	r.Post("/auth/signup", s.handleSignUp)
	r.Post("/auth/signin", s.handleSignIn)

	r.Group(func(r chi.Router) {
		r.Use(s.requireAuth)

		r.Post("/auth/signout", s.handleSignOut)
		r.Get("/profiles/{id}", s.handleGetProfile)

		r.Get("/bots", s.handleListBots)
		r.Post("/bots", s.handleCreateBot)
		r.Put("/bots/{id}", s.handleUpdateBot)
		r.Delete("/bots/{id}", s.handleDeleteBot)
	})

	return r
}
