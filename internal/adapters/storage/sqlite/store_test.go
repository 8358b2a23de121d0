package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/PabloGalante/tubot/internal/adapters/storage/sqlite"
	"github.com/PabloGalante/tubot/internal/domain"
)

func newStore(t *testing.T) *sqlite.Store {
	t.Helper()
	s, err := sqlite.NewStore(context.Background(), filepath.Join(t.TempDir(), "tubot.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestBotsRoundTripInOrder(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	created := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, s.SaveBot(ctx, "u1", domain.Bot{ID: "b1", Name: "Aria", Documents: []string{"faq.pdf"}, Color: "#00ffff", CreatedAt: created}))
	require.NoError(t, s.SaveBot(ctx, "u1", domain.Bot{ID: "b2", Name: "Bruno", Color: "#ff00ff", CreatedAt: created}))
	require.NoError(t, s.SaveBot(ctx, "u2", domain.Bot{ID: "b3", Name: "Coco", Color: "#ff3300", CreatedAt: created}))

	// update keeps position and color
	require.NoError(t, s.SaveBot(ctx, "u1", domain.Bot{ID: "b1", Name: "Ariadna", Personality: "seria", Color: "#ffff00", CreatedAt: created}))

	bots, err := s.ListBots(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, bots, 2)
	require.Equal(t, "Ariadna", bots[0].Name)
	require.Equal(t, "seria", bots[0].Personality)
	require.Equal(t, domain.Color("#00ffff"), bots[0].Color)
	require.Empty(t, bots[0].Documents)
	require.Equal(t, "Bruno", bots[1].Name)
	require.True(t, created.Equal(bots[1].CreatedAt))

	require.NoError(t, s.DeleteBot(ctx, "u1", "b1"))
	require.NoError(t, s.DeleteBot(ctx, "u1", "b3")) // belongs to u2

	bots, err = s.ListBots(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, bots, 1)

	bots, err = s.ListBots(ctx, "u2")
	require.NoError(t, err)
	require.Len(t, bots, 1)
}

func TestAccounts(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	acc := &domain.Account{ID: "u1", Email: "Ana@Example.com", Username: "ana", PasswordHash: "hash", CreatedAt: time.Now()}
	require.NoError(t, s.CreateAccount(ctx, acc))
	require.ErrorIs(t, s.CreateAccount(ctx, &domain.Account{ID: "u2", Email: "ana@example.com", PasswordHash: "x", CreatedAt: time.Now()}), domain.ErrEmailTaken)

	got, err := s.GetAccountByEmail(ctx, "ANA@EXAMPLE.COM")
	require.NoError(t, err)
	require.Equal(t, domain.UserID("u1"), got.ID)
	require.Equal(t, "ana@example.com", got.Email)

	_, err = s.GetAccountByEmail(ctx, "nadie@example.com")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestProfiles(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	_, err := s.GetProfile(ctx, "u1")
	require.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, s.UpsertProfile(ctx, &domain.Profile{UserID: "u1", Username: "ana"}))
	require.NoError(t, s.UpsertProfile(ctx, &domain.Profile{UserID: "u1", Username: "Ana P."}))

	p, err := s.GetProfile(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, "Ana P.", p.Username)
}
