package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/PabloGalante/tubot/internal/adapters/storage/memory"
	"github.com/PabloGalante/tubot/internal/app/auth"
	"github.com/PabloGalante/tubot/internal/domain"
)

func newService() *auth.Service {
	return auth.NewService(
		memory.NewAccountStore(),
		memory.NewDenylist(),
		auth.NewTokenManager("test-secret", time.Hour),
		auth.WithBcryptCost(bcrypt.MinCost),
	)
}

func authError(t *testing.T, err error) *domain.AuthError {
	t.Helper()
	var aerr *domain.AuthError
	require.ErrorAs(t, err, &aerr)
	return aerr
}

func TestSignUpAndSignIn(t *testing.T) {
	ctx := context.Background()
	svc := newService()

	res, err := svc.SignUp(ctx, "  Ana@Example.com ", "secreto", "ana")
	require.NoError(t, err)
	require.Equal(t, "ana@example.com", res.User.Email)
	require.Equal(t, "ana", res.User.Username)
	require.NotNil(t, res.Session)
	require.NotEmpty(t, res.Session.AccessToken)

	res2, err := svc.SignIn(ctx, "ANA@example.com", "secreto")
	require.NoError(t, err)
	require.Equal(t, res.User.ID, res2.User.ID)

	claims, err := svc.Authenticate(ctx, res2.Session.AccessToken)
	require.NoError(t, err)
	require.Equal(t, res.User.ID, claims.UserID())
}

func TestSignUpDefaultsUsernameToLocalPart(t *testing.T) {
	ctx := context.Background()
	svc := newService()

	res, err := svc.SignUp(ctx, "bruno@example.com", "secreto", " ")
	require.NoError(t, err)
	require.Equal(t, "bruno", res.User.Username)

	p, err := svc.GetProfile(ctx, res.User.ID, res.Session.AccessToken)
	require.NoError(t, err)
	require.Equal(t, "bruno", p.Username)
}

func TestSignUpFailures(t *testing.T) {
	ctx := context.Background()
	svc := newService()

	_, err := svc.SignUp(ctx, "ana@example.com", "secreto", "ana")
	require.NoError(t, err)

	require.Equal(t, auth.MsgEmailTaken, authError(t, errOf(svc.SignUp(ctx, "ANA@example.com", "secreto", "x"))).Message)
	require.Equal(t, auth.MsgPasswordTooShort, authError(t, errOf(svc.SignUp(ctx, "b@example.com", "123", "b"))).Message)
	require.Equal(t, auth.MsgInvalidEmail, authError(t, errOf(svc.SignUp(ctx, "not-an-email", "secreto", "c"))).Message)
}

func TestSignInWrongPassword(t *testing.T) {
	ctx := context.Background()
	svc := newService()

	_, err := svc.SignUp(ctx, "ana@example.com", "secreto", "ana")
	require.NoError(t, err)

	aerr := authError(t, errOf(svc.SignIn(ctx, "ana@example.com", "otra-cosa")))
	require.Equal(t, auth.MsgInvalidCredentials, aerr.Message)

	aerr = authError(t, errOf(svc.SignIn(ctx, "nadie@example.com", "secreto")))
	require.Equal(t, auth.MsgInvalidCredentials, aerr.Message)
}

func TestSignOutRevokesToken(t *testing.T) {
	ctx := context.Background()
	svc := newService()

	res, err := svc.SignUp(ctx, "ana@example.com", "secreto", "ana")
	require.NoError(t, err)
	token := res.Session.AccessToken

	require.NoError(t, svc.SignOut(ctx, token))

	_, err = svc.Authenticate(ctx, token)
	require.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = svc.GetProfile(ctx, res.User.ID, token)
	require.ErrorIs(t, err, domain.ErrUnauthorized)

	require.Equal(t, auth.MsgLogoutFailed, authError(t, svc.SignOut(ctx, "garbage")).Message)
}

func TestTokenManagerRejectsForeignTokens(t *testing.T) {
	user := domain.User{ID: "u1", Email: "ana@example.com"}

	session, err := auth.NewTokenManager("one", time.Hour).Issue(user)
	require.NoError(t, err)

	_, err = auth.NewTokenManager("two", time.Hour).Parse(session.AccessToken)
	require.ErrorIs(t, err, auth.ErrInvalidToken)

	expired, err := auth.NewTokenManager("one", -time.Minute).Issue(user)
	require.NoError(t, err)
	_, err = auth.NewTokenManager("one", time.Hour).Parse(expired.AccessToken)
	require.ErrorIs(t, err, auth.ErrExpiredToken)
}

func errOf(_ domain.AuthResult, err error) error {
	return err
}
