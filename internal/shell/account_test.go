package shell_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/PabloGalante/tubot/internal/adapters/storage/localstate"
	"github.com/PabloGalante/tubot/internal/domain"
	"github.com/PabloGalante/tubot/internal/shell"
)

type fakeGateway struct {
	profile    domain.Profile
	profileErr error
	signOutErr error
	signUps    []string
	signedOut  []string
}

func (g *fakeGateway) SignUp(_ context.Context, email, _, username string) (domain.AuthResult, error) {
	g.signUps = append(g.signUps, username)
	return domain.AuthResult{
		User:    domain.User{ID: "u1", Email: email},
		Session: &domain.AuthSession{AccessToken: "tok-1", ExpiresAt: time.Now().Add(time.Hour)},
	}, nil
}

func (g *fakeGateway) SignIn(_ context.Context, email, password string) (domain.AuthResult, error) {
	if password != "secreto123" {
		return domain.AuthResult{}, &domain.AuthError{Op: "signin", Message: "Invalid login credentials"}
	}
	return domain.AuthResult{
		User:    domain.User{ID: "u1", Email: email},
		Session: &domain.AuthSession{AccessToken: "tok-2"},
	}, nil
}

func (g *fakeGateway) SignOut(_ context.Context, token string) error {
	g.signedOut = append(g.signedOut, token)
	return g.signOutErr
}

func (g *fakeGateway) GetProfile(context.Context, domain.UserID, string) (domain.Profile, error) {
	return g.profile, g.profileErr
}

func TestSignUpPersistsUser(t *testing.T) {
	gw := &fakeGateway{}
	state := localstate.New(t.TempDir())
	acc := shell.NewAccount(gw, state)

	rec, err := acc.SignUp(context.Background(), "ana", " Ana@Example.com ", "secreto123", "secreto123")
	require.NoError(t, err)
	require.Equal(t, "ana", rec.User.Username)
	require.Equal(t, "ana@example.com", rec.User.Email)
	require.Equal(t, []string{"ana"}, gw.signUps)

	restored, ok, err := acc.Current()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, rec.User, restored.User)
	require.Equal(t, "tok-1", restored.AccessToken())
}

func TestSignUpFormChecks(t *testing.T) {
	gw := &fakeGateway{}
	acc := shell.NewAccount(gw, localstate.New(t.TempDir()))
	ctx := context.Background()

	_, err := acc.SignUp(ctx, "", "ana@example.com", "x", "x")
	var aerr *domain.AuthError
	require.True(t, errors.As(err, &aerr))
	require.Equal(t, shell.MsgMissingFields, aerr.Message)

	_, err = acc.SignUp(ctx, "ana", "ana@example.com", "x", "y")
	require.True(t, errors.As(err, &aerr))
	require.Equal(t, shell.MsgPasswordMismatch, aerr.Message)
	require.Empty(t, gw.signUps)
}

func TestSignInUsesProfileName(t *testing.T) {
	gw := &fakeGateway{profile: domain.Profile{Username: "Ana B."}}
	acc := shell.NewAccount(gw, localstate.New(t.TempDir()))

	rec, err := acc.SignIn(context.Background(), "ana@example.com", "secreto123")
	require.NoError(t, err)
	require.Equal(t, "Ana B.", rec.User.Username)
}

func TestSignInFallsBackToEmail(t *testing.T) {
	gw := &fakeGateway{profileErr: errors.New("no profile")}
	acc := shell.NewAccount(gw, localstate.New(t.TempDir()))

	rec, err := acc.SignIn(context.Background(), "ana@example.com", "secreto123")
	require.NoError(t, err)
	require.Equal(t, "ana", rec.User.Username)
}

func TestSignInFailureKeepsSignedOut(t *testing.T) {
	acc := shell.NewAccount(&fakeGateway{}, localstate.New(t.TempDir()))

	_, err := acc.SignIn(context.Background(), "ana@example.com", "mala")
	require.Error(t, err)
	require.Equal(t, "Invalid login credentials", shell.Describe(err))

	_, ok, err := acc.Current()
	require.NoError(t, err)
	require.False(t, ok)
}

func TestSignOutClearsEvenWhenRemoteFails(t *testing.T) {
	gw := &fakeGateway{signOutErr: errors.New("offline")}
	state := localstate.New(t.TempDir())
	acc := shell.NewAccount(gw, state)
	ctx := context.Background()

	_, err := acc.SignUp(ctx, "ana", "ana@example.com", "secreto123", "secreto123")
	require.NoError(t, err)

	require.Error(t, acc.SignOut(ctx))
	require.Equal(t, []string{"tok-1"}, gw.signedOut)

	_, statErr := os.Stat(state.Path())
	require.True(t, os.IsNotExist(statErr))

	require.NoError(t, acc.SignOut(ctx))
	require.Len(t, gw.signedOut, 1)
}
