package httpadapter

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/PabloGalante/tubot/internal/domain"
)

type listBotsResponse struct {
	Bots    []domain.Bot `json:"bots"`
	MaxBots int          `json:"max_bots"`
}

func (s *Server) handleListBots(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r.Context())

	list, err := s.bots.List(r.Context(), claims.UserID())
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, listBotsResponse{Bots: list, MaxBots: domain.MaxBots})
}

func (s *Server) handleCreateBot(w http.ResponseWriter, r *http.Request) {
	var draft domain.BotDraft
	if err := decodeJSON(r, &draft); err != nil {
		writeError(r.Context(), w, err)
		return
	}

	bot, err := s.bots.Create(r.Context(), claimsFrom(r.Context()).UserID(), draft)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusCreated, bot)
}

func (s *Server) handleUpdateBot(w http.ResponseWriter, r *http.Request) {
	var draft domain.BotDraft
	if err := decodeJSON(r, &draft); err != nil {
		writeError(r.Context(), w, err)
		return
	}

	id := domain.BotID(chi.URLParam(r, "id"))
	bot, err := s.bots.Update(r.Context(), claimsFrom(r.Context()).UserID(), id, draft)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, bot)
}

func (s *Server) handleDeleteBot(w http.ResponseWriter, r *http.Request) {
	id := domain.BotID(chi.URLParam(r, "id"))
	if err := s.bots.Delete(r.Context(), claimsFrom(r.Context()).UserID(), id); err != nil {
		writeError(r.Context(), w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
