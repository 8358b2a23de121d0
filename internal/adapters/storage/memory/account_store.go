package memory

import (
	"context"
	"sync"

	"github.com/PabloGalante/tubot/internal/domain"
)

type AccountStore struct {
	mu       sync.RWMutex
	accounts map[string]*domain.Account // by normalized email
	profiles map[domain.UserID]*domain.Profile
}

func NewAccountStore() *AccountStore {
	return &AccountStore{
		accounts: make(map[string]*domain.Account),
		profiles: make(map[domain.UserID]*domain.Profile),
	}
}

func (s *AccountStore) CreateAccount(_ context.Context, acc *domain.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	email := domain.NormalizeEmail(acc.Email)
	if _, exists := s.accounts[email]; exists {
		return domain.ErrEmailTaken
	}

	cp := *acc
	cp.Email = email
	s.accounts[email] = &cp
	return nil
}

func (s *AccountStore) GetAccountByEmail(_ context.Context, email string) (*domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	acc, ok := s.accounts[domain.NormalizeEmail(email)]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *acc
	return &cp, nil
}

func (s *AccountStore) GetProfile(_ context.Context, userID domain.UserID) (*domain.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.profiles[userID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *AccountStore) UpsertProfile(_ context.Context, p *domain.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *p
	s.profiles[p.UserID] = &cp
	return nil
}
