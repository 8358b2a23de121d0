// Package auth is the server-side identity backend: local accounts, bcrypt
// password hashes and revocable JWT access tokens.
package auth

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"

	"github.com/PabloGalante/tubot/internal/domain"
	"github.com/PabloGalante/tubot/internal/metrics"
	"github.com/PabloGalante/tubot/internal/observability"
)

const (
	MinPasswordLength = 6
	// bcrypt ignores everything past 72 bytes
	MaxPasswordBytes = 72
)

// Form-level messages, matching what the shell shows for any backend.
const (
	MsgRegistrationFailed = "Registration failed"
	MsgLoginFailed        = "Login failed"
	MsgLogoutFailed       = "Logout failed"
	MsgInvalidCredentials = "Invalid login credentials"
	MsgEmailTaken         = "User already registered"
	MsgPasswordTooShort   = "Password should be at least 6 characters"
	MsgPasswordTooLong    = "Password cannot be longer than 72 bytes"
	MsgInvalidEmail       = "Unable to validate email address: invalid format"
)

type Service struct {
	accounts domain.AccountStore
	denylist domain.TokenDenylist
	tokens   *TokenManager
	cost     int
	now      func() time.Time
}

type Option func(*Service)

// WithBcryptCost is for tests, where the default cost is too slow.
func WithBcryptCost(cost int) Option {
	return func(s *Service) { s.cost = cost }
}

func NewService(accounts domain.AccountStore, denylist domain.TokenDenylist, tokens *TokenManager, opts ...Option) *Service {
	s := &Service{
		accounts: accounts,
		denylist: denylist,
		tokens:   tokens,
		cost:     bcrypt.DefaultCost,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func fail(op, msg string, err error) error {
	metrics.AuthEvents.WithLabelValues(op, "error").Inc()
	return &domain.AuthError{Op: op, Message: msg, Err: err}
}

// SignUp creates an account, its profile and a session.
func (s *Service) SignUp(ctx context.Context, email, password, username string) (domain.AuthResult, error) {
	const op = "signup"

	email = domain.NormalizeEmail(email)
	if !strings.Contains(email, "@") {
		return domain.AuthResult{}, fail(op, MsgInvalidEmail, nil)
	}
	if len(password) < MinPasswordLength {
		return domain.AuthResult{}, fail(op, MsgPasswordTooShort, nil)
	}
	if len(password) > MaxPasswordBytes {
		return domain.AuthResult{}, fail(op, MsgPasswordTooLong, nil)
	}
	username = strings.TrimSpace(username)
	if username == "" {
		username = domain.EmailLocalPart(email)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return domain.AuthResult{}, fail(op, MsgRegistrationFailed, err)
	}

	acc := &domain.Account{
		ID:           domain.UserID(uuid.NewString()),
		Email:        email,
		Username:     username,
		PasswordHash: string(hash),
		CreatedAt:    s.now(),
	}
	if err := s.accounts.CreateAccount(ctx, acc); err != nil {
		if errors.Is(err, domain.ErrEmailTaken) {
			return domain.AuthResult{}, fail(op, MsgEmailTaken, err)
		}
		return domain.AuthResult{}, fail(op, MsgRegistrationFailed, err)
	}
	if err := s.accounts.UpsertProfile(ctx, &domain.Profile{UserID: acc.ID, Username: username, Email: email}); err != nil {
		return domain.AuthResult{}, fail(op, MsgRegistrationFailed, err)
	}

	user := domain.User{ID: acc.ID, Username: username, Email: email}
	session, err := s.tokens.Issue(user)
	if err != nil {
		return domain.AuthResult{}, fail(op, MsgRegistrationFailed, err)
	}

	metrics.AuthEvents.WithLabelValues(op, "ok").Inc()
	observability.LoggerFromContext(ctx).Info().Str("user_id", string(acc.ID)).Msg("account created")
	return domain.AuthResult{User: user, Session: session}, nil
}

func (s *Service) SignIn(ctx context.Context, email, password string) (domain.AuthResult, error) {
	const op = "signin"

	acc, err := s.accounts.GetAccountByEmail(ctx, domain.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.AuthResult{}, fail(op, MsgInvalidCredentials, err)
		}
		return domain.AuthResult{}, fail(op, MsgLoginFailed, err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(acc.PasswordHash), []byte(password)); err != nil {
		return domain.AuthResult{}, fail(op, MsgInvalidCredentials, nil)
	}

	user := domain.User{ID: acc.ID, Username: acc.Username, Email: acc.Email}
	session, err := s.tokens.Issue(user)
	if err != nil {
		return domain.AuthResult{}, fail(op, MsgLoginFailed, err)
	}

	metrics.AuthEvents.WithLabelValues(op, "ok").Inc()
	return domain.AuthResult{User: user, Session: session}, nil
}

// SignOut revokes the token until it would have expired anyway.
func (s *Service) SignOut(ctx context.Context, accessToken string) error {
	const op = "signout"

	claims, err := s.tokens.Parse(accessToken)
	if err != nil {
		return fail(op, MsgLogoutFailed, err)
	}
	ttl := claims.ExpiresAt.Time.Sub(s.now())
	if ttl <= 0 {
		metrics.AuthEvents.WithLabelValues(op, "ok").Inc()
		return nil
	}
	if err := s.denylist.Revoke(ctx, claims.ID, ttl); err != nil {
		return fail(op, MsgLogoutFailed, err)
	}

	metrics.AuthEvents.WithLabelValues(op, "ok").Inc()
	return nil
}

// Authenticate resolves a bearer token to its claims, rejecting revoked ones.
func (s *Service) Authenticate(ctx context.Context, accessToken string) (*Claims, error) {
	claims, err := s.tokens.Parse(accessToken)
	if err != nil {
		return nil, errors.Wrap(domain.ErrUnauthorized, err.Error())
	}
	revoked, err := s.denylist.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, errors.Wrap(err, "check token denylist")
	}
	if revoked {
		return nil, errors.Wrap(domain.ErrUnauthorized, "token revoked")
	}
	return claims, nil
}

// GetProfile returns the profile of userID. The token must be valid.
func (s *Service) GetProfile(ctx context.Context, userID domain.UserID, accessToken string) (domain.Profile, error) {
	if _, err := s.Authenticate(ctx, accessToken); err != nil {
		return domain.Profile{}, err
	}
	p, err := s.accounts.GetProfile(ctx, userID)
	if err != nil {
		return domain.Profile{}, err
	}
	return *p, nil
}
