package bots_test

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/PabloGalante/tubot/internal/adapters/storage/memory"
	"github.com/PabloGalante/tubot/internal/app/bots"
	"github.com/PabloGalante/tubot/internal/domain"
)

const user = domain.UserID("user-1")

func TestCreateAndList(t *testing.T) {
	ctx := context.Background()
	svc := bots.NewService(memory.NewBotStore())

	created, err := svc.Create(ctx, user, domain.BotDraft{Name: " Aria ", Personality: "amable"})
	require.NoError(t, err)
	require.Equal(t, "Aria", created.Name)
	require.NotEmpty(t, created.ID)
	require.Contains(t, domain.Palette, created.Color)

	list, err := svc.List(ctx, user)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, created.ID, list[0].ID)

	other, err := svc.List(ctx, "someone-else")
	require.NoError(t, err)
	require.Empty(t, other)
}

func TestCreateRosterFull(t *testing.T) {
	ctx := context.Background()
	svc := bots.NewService(memory.NewBotStore())

	for i := 0; i < domain.MaxBots; i++ {
		_, err := svc.Create(ctx, user, domain.BotDraft{Name: fmt.Sprintf("bot-%d", i)})
		require.NoError(t, err)
	}

	_, err := svc.Create(ctx, user, domain.BotDraft{Name: "ninth"})
	require.ErrorIs(t, err, domain.ErrRosterFull)

	list, err := svc.List(ctx, user)
	require.NoError(t, err)
	require.Len(t, list, domain.MaxBots)
}

func TestCreateValidation(t *testing.T) {
	ctx := context.Background()
	svc := bots.NewService(memory.NewBotStore())

	for _, draft := range []domain.BotDraft{
		{Name: "   "},
		{Name: strings.Repeat("n", bots.MaxNameLength+1)},
		{Name: "ok", Personality: strings.Repeat("p", bots.MaxPersonalityLength+1)},
	} {
		_, err := svc.Create(ctx, user, draft)
		var verr *domain.ValidationError
		require.ErrorAs(t, err, &verr)
	}
}

func TestUpdate(t *testing.T) {
	ctx := context.Background()
	svc := bots.NewService(memory.NewBotStore())

	created, err := svc.Create(ctx, user, domain.BotDraft{Name: "Aria"})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, user, created.ID, domain.BotDraft{Name: "Ariadna", Personality: "seria", Documents: []string{"a.pdf"}})
	require.NoError(t, err)
	require.Equal(t, "Ariadna", updated.Name)
	require.Equal(t, created.Color, updated.Color)
	require.Equal(t, []string{"a.pdf"}, updated.Documents)

	list, err := svc.List(ctx, user)
	require.NoError(t, err)
	require.Equal(t, "seria", list[0].Personality)

	_, err = svc.Update(ctx, user, "missing", domain.BotDraft{Name: "x"})
	require.ErrorIs(t, err, domain.ErrBotNotFound)
}

func TestDeleteIsIdempotent(t *testing.T) {
	ctx := context.Background()
	svc := bots.NewService(memory.NewBotStore())

	created, err := svc.Create(ctx, user, domain.BotDraft{Name: "Aria"})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, user, created.ID))
	require.NoError(t, svc.Delete(ctx, user, created.ID))

	list, err := svc.List(ctx, user)
	require.NoError(t, err)
	require.Empty(t, list)
}
