package httpadapter

import (
	"context"
	"net/http"
	"time"

	"github.com/PabloGalante/tubot/internal/domain"
)

// ─────────────────────────────────────────────
// DTOs (request/response)
// ─────────────────────────────────────────────

type rootResponse struct {
	Status    string   `json:"status"`
	Endpoints []string `json:"endpoints"`
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

type chatMessageRequest struct {
	Messages     []domain.ChatMessage `json:"messages"`
	Instructions string               `json:"instructions"`
	Model        string               `json:"model"`
	Temperature  *float64             `json:"temperature"`
}

// ─────────────────────────────────────────────
// Handlers
// ─────────────────────────────────────────────

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, rootResponse{
		Status: "API funcionando",
		Endpoints: []string{
			"POST /chatbot/message",
			"POST /auth/signup",
			"POST /auth/signin",
			"POST /auth/signout",
			"GET /profiles/{id}",
			"GET /bots",
			"POST /bots",
			"PUT /bots/{id}",
			"DELETE /bots/{id}",
		},
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	resp := healthResponse{Status: "ok"}
	status := http.StatusOK
	if len(s.checks) > 0 {
		resp.Checks = make(map[string]string, len(s.checks))
	}
	for name, p := range s.checks {
		if err := p.Ping(ctx); err != nil {
			resp.Checks[name] = err.Error()
			resp.Status = "degraded"
			status = http.StatusServiceUnavailable
			continue
		}
		resp.Checks[name] = "ok"
	}
	writeJSON(w, status, resp)
}

func (s *Server) handleChatMessage(w http.ResponseWriter, r *http.Request) {
	var req chatMessageRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(r.Context(), w, err)
		return
	}

	resp, err := s.chat.Complete(r.Context(), domain.ChatRequest{
		Messages:     req.Messages,
		Instructions: req.Instructions,
		Model:        req.Model,
		Temperature:  req.Temperature,
	})
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}
