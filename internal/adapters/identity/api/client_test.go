package api_test

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	httpadapter "github.com/PabloGalante/tubot/internal/adapters/http"
	"github.com/PabloGalante/tubot/internal/adapters/identity/api"
	"github.com/PabloGalante/tubot/internal/adapters/llm"
	"github.com/PabloGalante/tubot/internal/adapters/storage/memory"
	"github.com/PabloGalante/tubot/internal/app/auth"
	"github.com/PabloGalante/tubot/internal/app/bots"
	"github.com/PabloGalante/tubot/internal/app/chat"
	"github.com/PabloGalante/tubot/internal/domain"
)

func newClient(t *testing.T) *api.Client {
	t.Helper()

	srv := httptest.NewServer(httpadapter.NewServer(httpadapter.Deps{
		Chat: chat.NewService(llm.NewMockLLM(), "mock", ""),
		Bots: bots.NewService(memory.NewBotStore()),
		Auth: auth.NewService(
			memory.NewAccountStore(),
			memory.NewDenylist(),
			auth.NewTokenManager("test-secret", time.Hour),
			auth.WithBcryptCost(bcrypt.MinCost),
		),
	}))
	t.Cleanup(srv.Close)
	return api.New(srv.URL)
}

func TestIdentityRoundTrip(t *testing.T) {
	ctx := context.Background()
	c := newClient(t)

	res, err := c.SignUp(ctx, "Ana@Example.com", "secreto", "ana")
	require.NoError(t, err)
	require.Equal(t, "ana@example.com", res.User.Email)
	require.NotNil(t, res.Session)

	_, err = c.SignUp(ctx, "ana@example.com", "secreto", "ana")
	var aerr *domain.AuthError
	require.ErrorAs(t, err, &aerr)
	require.Equal(t, auth.MsgEmailTaken, aerr.Message)

	in, err := c.SignIn(ctx, "ana@example.com", "secreto")
	require.NoError(t, err)
	token := in.Session.AccessToken

	p, err := c.GetProfile(ctx, in.User.ID, token)
	require.NoError(t, err)
	require.Equal(t, "ana", p.Username)

	require.NoError(t, c.SignOut(ctx, token))
	_, err = c.GetProfile(ctx, in.User.ID, token)
	require.Error(t, err)
}

func TestSignInWrongPassword(t *testing.T) {
	ctx := context.Background()
	c := newClient(t)

	_, err := c.SignUp(ctx, "ana@example.com", "secreto", "ana")
	require.NoError(t, err)

	_, err = c.SignIn(ctx, "ana@example.com", "otra-cosa")
	var aerr *domain.AuthError
	require.ErrorAs(t, err, &aerr)
	require.Equal(t, auth.MsgInvalidCredentials, aerr.Message)
}

func TestBotClient(t *testing.T) {
	ctx := context.Background()
	c := newClient(t)

	res, err := c.SignUp(ctx, "ana@example.com", "secreto", "ana")
	require.NoError(t, err)
	b := c.Bots(res.Session.AccessToken)

	bot, err := b.Create(ctx, domain.BotDraft{Name: "Aria"})
	require.NoError(t, err)

	_, err = b.Update(ctx, "missing", domain.BotDraft{Name: "x"})
	require.ErrorIs(t, err, domain.ErrBotNotFound)

	list, err := b.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, bot.ID, list[0].ID)

	require.NoError(t, b.Delete(ctx, bot.ID))
	list, err = b.List(ctx)
	require.NoError(t, err)
	require.Empty(t, list)
}
