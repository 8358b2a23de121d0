package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/PabloGalante/tubot/internal/domain"
)

// BotStore keeps every user's bots in insertion order.
type BotStore struct {
	mu   sync.RWMutex
	bots map[domain.UserID][]domain.Bot
}

func NewBotStore() *BotStore {
	return &BotStore{
		bots: make(map[domain.UserID][]domain.Bot),
	}
}

func (s *BotStore) ListBots(_ context.Context, userID domain.UserID) ([]domain.Bot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Bot, 0, len(s.bots[userID]))
	for _, b := range s.bots[userID] {
		out = append(out, b.Clone())
	}
	return out, nil
}

func (s *BotStore) SaveBot(_ context.Context, userID domain.UserID, bot domain.Bot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.bots[userID]
	i := slices.IndexFunc(list, func(b domain.Bot) bool { return b.ID == bot.ID })
	if i >= 0 {
		list[i] = bot.Clone()
		return nil
	}
	s.bots[userID] = append(list, bot.Clone())
	return nil
}

func (s *BotStore) DeleteBot(_ context.Context, userID domain.UserID, id domain.BotID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.bots[userID] = slices.DeleteFunc(s.bots[userID], func(b domain.Bot) bool { return b.ID == id })
	return nil
}
