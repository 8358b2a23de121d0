// Package supabase implements domain.IdentityGateway against Supabase's
// GoTrue auth API and the PostgREST profiles table.
package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/PabloGalante/tubot/internal/domain"
	"github.com/PabloGalante/tubot/internal/observability"
)

const (
	msgRegistrationFailed = "Registration failed"
	msgLoginFailed        = "Login failed"
	msgLogoutFailed       = "Logout failed"
)

type Gateway struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	now        func() time.Time
}

func New(baseURL, apiKey string) *Gateway {
	return &Gateway{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		now:        time.Now,
	}
}

type gotrueUser struct {
	ID           string         `json:"id"`
	Email        string         `json:"email"`
	UserMetadata map[string]any `json:"user_metadata"`
}

// tokenResponse covers both shapes GoTrue answers sign-up with: a session
// wrapping the user, or the bare user while e-mail confirmation is pending.
type tokenResponse struct {
	AccessToken string      `json:"access_token"`
	ExpiresIn   int64       `json:"expires_in"`
	ExpiresAt   int64       `json:"expires_at"`
	User        *gotrueUser `json:"user"`

	ID    string `json:"id"`
	Email string `json:"email"`
}

func (t tokenResponse) user() gotrueUser {
	if t.User != nil {
		return *t.User
	}
	return gotrueUser{ID: t.ID, Email: t.Email}
}

func (g *Gateway) session(t tokenResponse) *domain.AuthSession {
	if t.AccessToken == "" {
		return nil
	}
	exp := g.now().Add(time.Duration(t.ExpiresIn) * time.Second)
	if t.ExpiresAt > 0 {
		exp = time.Unix(t.ExpiresAt, 0)
	}
	return &domain.AuthSession{AccessToken: t.AccessToken, ExpiresAt: exp}
}

// errorBody holds the fields GoTrue and PostgREST use for error text.
type errorBody struct {
	Msg              string `json:"msg"`
	Message          string `json:"message"`
	ErrorDescription string `json:"error_description"`
}

func (e errorBody) text() string {
	for _, s := range []string{e.Msg, e.ErrorDescription, e.Message} {
		if s = strings.TrimSpace(s); s != "" {
			return s
		}
	}
	return ""
}

// statusError is a non-2xx answer; message is whatever the server said.
type statusError struct {
	status  int
	message string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("supabase returned %d: %s", e.status, e.message)
}

func (g *Gateway) do(ctx context.Context, method, path, bearer string, body any, out any, header http.Header) error {
	var rdr io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return errors.Wrap(err, "encode request")
		}
		rdr = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, g.baseURL+path, rdr)
	if err != nil {
		return errors.Wrap(err, "build request")
	}
	req.Header.Set("apikey", g.apiKey)
	req.Header.Set("Content-Type", "application/json")
	if bearer == "" {
		bearer = g.apiKey
	}
	req.Header.Set("Authorization", "Bearer "+bearer)
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return errors.Wrap(err, "supabase request")
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return errors.Wrap(err, "read supabase response")
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var eb errorBody
		_ = json.Unmarshal(raw, &eb)
		return &statusError{status: resp.StatusCode, message: eb.text()}
	}
	if out == nil || len(raw) == 0 {
		return nil
	}
	return errors.Wrap(json.Unmarshal(raw, out), "decode supabase response")
}

// authError prefers the server's message and falls back to the form-level one.
func authError(op, fallback string, err error) error {
	msg := fallback
	var serr *statusError
	if errors.As(err, &serr) && serr.message != "" {
		msg = serr.message
	}
	return &domain.AuthError{Op: op, Message: msg, Err: err}
}

func (g *Gateway) SignUp(ctx context.Context, email, password, username string) (domain.AuthResult, error) {
	email = domain.NormalizeEmail(email)
	body := map[string]any{
		"email":    email,
		"password": password,
		"data":     map[string]string{"username": username},
	}

	var tr tokenResponse
	if err := g.do(ctx, http.MethodPost, "/auth/v1/signup", "", body, &tr, nil); err != nil {
		return domain.AuthResult{}, authError("signup", msgRegistrationFailed, err)
	}
	u := tr.user()
	if u.ID == "" {
		return domain.AuthResult{}, &domain.AuthError{Op: "signup", Message: msgRegistrationFailed}
	}
	if u.Email == "" {
		u.Email = email
	}

	sess := g.session(tr)
	token := ""
	if sess != nil {
		token = sess.AccessToken
	}
	profile := []map[string]string{{"user_id": u.ID, "username": username, "email": u.Email}}
	hdr := http.Header{"Prefer": []string{"resolution=merge-duplicates,return=minimal"}}
	if err := g.do(ctx, http.MethodPost, "/rest/v1/profiles", token, profile, nil, hdr); err != nil {
		// the account exists either way; the name falls back to the email
		observability.LoggerFromContext(ctx).Warn().Err(err).Str("user_id", u.ID).Msg("profile upsert failed")
	}

	return domain.AuthResult{
		User:    domain.User{ID: domain.UserID(u.ID), Username: username, Email: u.Email},
		Session: sess,
	}, nil
}

func (g *Gateway) SignIn(ctx context.Context, email, password string) (domain.AuthResult, error) {
	body := map[string]string{"email": domain.NormalizeEmail(email), "password": password}

	var tr tokenResponse
	if err := g.do(ctx, http.MethodPost, "/auth/v1/token?grant_type=password", "", body, &tr, nil); err != nil {
		return domain.AuthResult{}, authError("signin", msgLoginFailed, err)
	}
	sess := g.session(tr)
	u := tr.user()
	if sess == nil || u.ID == "" {
		return domain.AuthResult{}, &domain.AuthError{Op: "signin", Message: msgLoginFailed}
	}

	username, _ := u.UserMetadata["username"].(string)
	return domain.AuthResult{
		User:    domain.User{ID: domain.UserID(u.ID), Username: username, Email: u.Email},
		Session: sess,
	}, nil
}

func (g *Gateway) SignOut(ctx context.Context, accessToken string) error {
	if accessToken == "" {
		return nil
	}
	if err := g.do(ctx, http.MethodPost, "/auth/v1/logout", accessToken, nil, nil, nil); err != nil {
		return authError("signout", msgLogoutFailed, err)
	}
	return nil
}

func (g *Gateway) GetProfile(ctx context.Context, userID domain.UserID, accessToken string) (domain.Profile, error) {
	q := url.Values{}
	q.Set("select", "username,email")
	q.Set("user_id", "eq."+string(userID))

	var rows []domain.Profile
	if err := g.do(ctx, http.MethodGet, "/rest/v1/profiles?"+q.Encode(), accessToken, nil, &rows, nil); err != nil {
		return domain.Profile{}, errors.Wrap(err, "get profile")
	}
	if len(rows) == 0 {
		return domain.Profile{}, domain.ErrNotFound
	}
	p := rows[0]
	p.UserID = userID
	return p, nil
}
