package profile

import (
	"context"
	"strings"

	"github.com/PabloGalante/tubot/internal/domain"
	"github.com/PabloGalante/tubot/internal/observability"
)

// Service resolves display names through the identity gateway.
type Service struct {
	gateway domain.IdentityGateway
}

// NewService creates a profile service from an IdentityGateway
func NewService(gateway domain.IdentityGateway) *Service {
	return &Service{
		gateway: gateway,
	}
}

// Username returns the profile username of user. Any failure falls back to
// the local part of the user's email, so it never errors.
func (s *Service) Username(ctx context.Context, user domain.User, accessToken string) string {
	fallback := domain.EmailLocalPart(user.Email)

	if s.gateway == nil || accessToken == "" {
		return fallback
	}

	p, err := s.gateway.GetProfile(ctx, user.ID, accessToken)
	if err != nil {
		observability.LoggerFromContext(ctx).Debug().Err(err).
			Str("user_id", string(user.ID)).
			Msg("profile lookup failed, using email")
		return fallback
	}
	if name := strings.TrimSpace(p.Username); name != "" {
		return name
	}
	return fallback
}
