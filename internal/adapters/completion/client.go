// Package completion is the HTTP client of the chat completion service.
package completion

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/PabloGalante/tubot/internal/domain"
	"github.com/PabloGalante/tubot/internal/observability"
)

const messagePath = "/chatbot/message"

// maxBodySize caps how much of a response body is read.
const maxBodySize = 1 << 20

type Client struct {
	baseURL    string
	httpClient *http.Client
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// New returns a client for the service rooted at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 90 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type errorBody struct {
	Detail string `json:"detail"`
}

// Complete implements domain.Completer. Every failure is a
// *domain.CompletionError.
func (c *Client) Complete(ctx context.Context, req domain.ChatRequest) (domain.ChatResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return domain.ChatResponse{}, errors.Wrap(err, "encode chat request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+messagePath, bytes.NewReader(body))
	if err != nil {
		return domain.ChatResponse{}, &domain.CompletionError{Kind: domain.FailureTransport, Err: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return domain.ChatResponse{}, &domain.CompletionError{Kind: domain.FailureTimeout, Err: err}
		}
		return domain.ChatResponse{}, &domain.CompletionError{Kind: domain.FailureTransport, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return domain.ChatResponse{}, &domain.CompletionError{Kind: domain.FailureTransport, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var eb errorBody
		// a non-JSON body, or a non-string detail such as a validation error
		// list, leaves Detail empty and the generic server message applies
		_ = json.Unmarshal(raw, &eb)
		observability.LoggerFromContext(ctx).Warn().
			Int("status", resp.StatusCode).
			Str("detail", eb.Detail).
			Msg("completion service returned an error")
		return domain.ChatResponse{}, &domain.CompletionError{
			Kind:   domain.FailureStatus,
			Status: resp.StatusCode,
			Detail: strings.TrimSpace(eb.Detail),
		}
	}

	var out domain.ChatResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return domain.ChatResponse{}, &domain.CompletionError{Kind: domain.FailureMalformed, Status: resp.StatusCode, Err: err}
	}
	if out.Reply == "" {
		return domain.ChatResponse{}, &domain.CompletionError{
			Kind:   domain.FailureMalformed,
			Status: resp.StatusCode,
			Err:    errors.New("response has no reply"),
		}
	}
	return out, nil
}
