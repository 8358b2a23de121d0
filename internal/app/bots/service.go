// Package bots keeps each user's roster in a BotStore.
package bots

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/pkg/errors"

	"github.com/PabloGalante/tubot/internal/app/roster"
	"github.com/PabloGalante/tubot/internal/domain"
	"github.com/PabloGalante/tubot/internal/metrics"
	"github.com/PabloGalante/tubot/internal/observability"
)

const (
	MaxNameLength        = 50
	MaxPersonalityLength = 1000
)

type Service struct {
	store domain.BotStore
	opts  []roster.Option

	// one lock per user keeps load-modify-save sequences from interleaving
	locks sync.Map
}

func NewService(store domain.BotStore, opts ...roster.Option) *Service {
	return &Service{store: store, opts: opts}
}

func (s *Service) lock(userID domain.UserID) func() {
	v, _ := s.locks.LoadOrStore(userID, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

func (s *Service) load(ctx context.Context, userID domain.UserID) (*roster.Roster, error) {
	stored, err := s.store.ListBots(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(err, "list bots")
	}
	return roster.FromBots(stored, s.opts...), nil
}

func (s *Service) List(ctx context.Context, userID domain.UserID) ([]domain.Bot, error) {
	r, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	return r.Bots(), nil
}

// Create adds a bot to the user's roster. It fails with domain.ErrRosterFull
// once the user holds domain.MaxBots bots.
func (s *Service) Create(ctx context.Context, userID domain.UserID, draft domain.BotDraft) (domain.Bot, error) {
	if err := validate(draft); err != nil {
		return domain.Bot{}, err
	}

	defer s.lock(userID)()

	r, err := s.load(ctx, userID)
	if err != nil {
		return domain.Bot{}, err
	}

	bot, ok := r.Create(draft)
	if !ok {
		metrics.BotLimitRejections.Inc()
		return domain.Bot{}, domain.ErrRosterFull
	}
	if err := s.store.SaveBot(ctx, userID, bot); err != nil {
		return domain.Bot{}, errors.Wrap(err, "save bot")
	}

	metrics.BotsCreated.Inc()
	observability.LoggerFromContext(ctx).Info().
		Str("user_id", string(userID)).
		Str("bot_id", string(bot.ID)).
		Int("roster_size", r.Len()).
		Msg("bot created")
	return bot, nil
}

// Update replaces the editable fields of an existing bot.
func (s *Service) Update(ctx context.Context, userID domain.UserID, id domain.BotID, draft domain.BotDraft) (domain.Bot, error) {
	if err := validate(draft); err != nil {
		return domain.Bot{}, err
	}

	defer s.lock(userID)()

	r, err := s.load(ctx, userID)
	if err != nil {
		return domain.Bot{}, err
	}

	ok := r.Update(domain.Bot{
		ID:          id,
		Name:        draft.Name,
		Personality: draft.Personality,
		Documents:   draft.Documents,
	})
	if !ok {
		return domain.Bot{}, domain.ErrBotNotFound
	}

	bot, _ := r.Lookup(id)
	if err := s.store.SaveBot(ctx, userID, bot); err != nil {
		return domain.Bot{}, errors.Wrap(err, "save bot")
	}
	return bot, nil
}

// Delete removes a bot. Deleting a bot that does not exist succeeds.
func (s *Service) Delete(ctx context.Context, userID domain.UserID, id domain.BotID) error {
	defer s.lock(userID)()

	r, err := s.load(ctx, userID)
	if err != nil {
		return err
	}
	if !r.Delete(id) {
		return nil
	}
	return errors.Wrap(s.store.DeleteBot(ctx, userID, id), "delete bot")
}

func validate(draft domain.BotDraft) error {
	name := strings.TrimSpace(draft.Name)
	switch {
	case name == "":
		return &domain.ValidationError{Field: "name", Reason: "is required"}
	case utf8.RuneCountInString(name) > MaxNameLength:
		return &domain.ValidationError{Field: "name", Reason: fmt.Sprintf("must be at most %d characters", MaxNameLength)}
	case utf8.RuneCountInString(draft.Personality) > MaxPersonalityLength:
		return &domain.ValidationError{Field: "personality", Reason: fmt.Sprintf("must be at most %d characters", MaxPersonalityLength)}
	}
	return nil
}
