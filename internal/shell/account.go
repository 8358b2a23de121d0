package shell

import (
	"context"
	"strings"

	"github.com/pkg/errors"

	"github.com/PabloGalante/tubot/internal/adapters/storage/localstate"
	"github.com/PabloGalante/tubot/internal/app/profile"
	"github.com/PabloGalante/tubot/internal/domain"
	"github.com/PabloGalante/tubot/internal/observability"
)

// Form-level messages shown before the gateway is called.
const (
	MsgMissingFields    = "Please fill in all fields"
	MsgPasswordMismatch = "Passwords do not match"
)

// Account ties the identity gateway to the locally persisted user record.
type Account struct {
	gateway  domain.IdentityGateway
	state    *localstate.Store
	profiles *profile.Service
}

func NewAccount(gateway domain.IdentityGateway, state *localstate.Store) *Account {
	return &Account{
		gateway:  gateway,
		state:    state,
		profiles: profile.NewService(gateway),
	}
}

func formError(op, msg string) error {
	return &domain.AuthError{Op: op, Message: msg}
}

// Current restores the signed-in user. A missing or corrupt record reports
// signed out.
func (a *Account) Current() (localstate.Record, bool, error) {
	return a.state.Init()
}

// SignUp registers and signs the user in.
func (a *Account) SignUp(ctx context.Context, username, email, password, confirm string) (localstate.Record, error) {
	username = strings.TrimSpace(username)
	email = domain.NormalizeEmail(email)
	if username == "" || email == "" || password == "" {
		return localstate.Record{}, formError("signup", MsgMissingFields)
	}
	if password != confirm {
		return localstate.Record{}, formError("signup", MsgPasswordMismatch)
	}

	res, err := a.gateway.SignUp(ctx, email, password, username)
	if err != nil {
		return localstate.Record{}, err
	}

	user := res.User
	user.Username = username
	if user.Email == "" {
		user.Email = email
	}
	rec := localstate.Record{User: user, Session: res.Session}
	if err := a.state.Save(rec); err != nil {
		return localstate.Record{}, err
	}
	return rec, nil
}

// SignIn authenticates and resolves the display name from the profile.
func (a *Account) SignIn(ctx context.Context, email, password string) (localstate.Record, error) {
	email = domain.NormalizeEmail(email)
	if email == "" || password == "" {
		return localstate.Record{}, formError("signin", MsgMissingFields)
	}

	res, err := a.gateway.SignIn(ctx, email, password)
	if err != nil {
		return localstate.Record{}, err
	}

	rec := localstate.Record{User: res.User, Session: res.Session}
	if rec.User.Email == "" {
		rec.User.Email = email
	}
	rec.User.Username = a.profiles.Username(ctx, rec.User, rec.AccessToken())

	if err := a.state.Save(rec); err != nil {
		return localstate.Record{}, err
	}
	return rec, nil
}

// SignOut clears the local record even when the gateway call fails; the
// gateway error is still returned so the caller can report it.
func (a *Account) SignOut(ctx context.Context) error {
	rec, ok, err := a.state.Init()
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}

	var gwErr error
	if token := rec.AccessToken(); token != "" {
		gwErr = a.gateway.SignOut(ctx, token)
		if gwErr != nil {
			observability.Logger().Warn().Err(gwErr).Msg("remote sign-out failed")
		}
	}

	if err := a.state.Clear(); err != nil {
		return errors.Wrap(err, "clear local state")
	}
	return gwErr
}
