// Package api talks to the tubot-api identity and bot endpoints.
package api

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
)

const (
	msgRegistrationFailed = "Registration failed"
	msgLoginFailed        = "Login failed"
	msgLogoutFailed       = "Logout failed"
)

// Client implements domain.IdentityGateway and the remote bot roster.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func New(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// StatusError is a non-2xx reply. Detail is the server's {detail}, if any.
type StatusError struct {
	Status int
	Detail string
}

func (e *StatusError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("tubot-api returned %d", e.Status)
	}
	return fmt.Sprintf("tubot-api returned %d: %s", e.Status, e.Detail)
}

func (c *Client) do(ctx context.Context, method, path, token string, body, out any) error {
	var rdr io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return errors.Wrap(err, "encode request")
		}
		rdr = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rdr)
	if err != nil {
		return errors.Wrap(err, "build request")
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrap(err, "tubot-api request")
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return errors.Wrap(err, "read tubot-api response")
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var eb struct {
			Detail string `json:"detail"`
		}
		_ = json.Unmarshal(raw, &eb)
		return &StatusError{Status: resp.StatusCode, Detail: eb.Detail}
	}
	if out == nil || len(raw) == 0 {
		return nil
	}
	return errors.Wrap(json.Unmarshal(raw, out), "decode tubot-api response")
}

func authError(op, fallback string, err error) error {
	msg := fallback
	var serr *StatusError
	if errors.As(err, &serr) && serr.Detail != "" {
		msg = serr.Detail
	}
	return &domain.AuthError{Op: op, Message: msg, Err: err}
}

func (c *Client) SignUp(ctx context.Context, email, password, username string) (domain.AuthResult, error) {
	body := map[string]string{
		"email":    domain.NormalizeEmail(email),
		"password": password,
		"username": username,
	}
	var out domain.AuthResult
	if err := c.do(ctx, http.MethodPost, "/auth/signup", "", body, &out); err != nil {
		return domain.AuthResult{}, authError("signup", msgRegistrationFailed, err)
	}
	return out, nil
}

func (c *Client) SignIn(ctx context.Context, email, password string) (domain.AuthResult, error) {
	body := map[string]string{"email": domain.NormalizeEmail(email), "password": password}
	var out domain.AuthResult
	if err := c.do(ctx, http.MethodPost, "/auth/signin", "", body, &out); err != nil {
		return domain.AuthResult{}, authError("signin", msgLoginFailed, err)
	}
	if out.Session == nil {
		return domain.AuthResult{}, &domain.AuthError{Op: "signin", Message: msgLoginFailed}
	}
	return out, nil
}

func (c *Client) SignOut(ctx context.Context, accessToken string) error {
	if accessToken == "" {
		return nil
	}
	if err := c.do(ctx, http.MethodPost, "/auth/signout", accessToken, nil, nil); err != nil {
		return authError("signout", msgLogoutFailed, err)
	}
	return nil
}

func (c *Client) GetProfile(ctx context.Context, userID domain.UserID, accessToken string) (domain.Profile, error) {
	var out domain.Profile
	if err := c.do(ctx, http.MethodGet, "/profiles/"+url.PathEscape(string(userID)), accessToken, nil, &out); err != nil {
		return domain.Profile{}, err
	}
	out.UserID = userID
	return out, nil
}
