package llm

import (
	"context"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
	openai "github.com/sashabaranov/go-openai"

	"github.com/PabloGalante/tubot/internal/domain"
)

const (
	DefaultOpenRouterURL = "https://openrouter.ai/api/v1"
	openRouterTitle      = "TuBot"
	maxReplyTokens       = 1000
)

type OpenRouterConfig struct {
	APIKey  string
	BaseURL string
	// Referer is sent as HTTP-Referer; OpenRouter uses it for attribution.
	Referer string
	Timeout time.Duration
}

// OpenRouterClient talks to OpenRouter's OpenAI-compatible chat API.
type OpenRouterClient struct {
	client *openai.Client
}

func NewOpenRouterClient(cfg OpenRouterConfig) (*OpenRouterClient, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("openrouter: api key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultOpenRouterURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 60 * time.Second
	}

	oc := openai.DefaultConfig(cfg.APIKey)
	oc.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	oc.HTTPClient = &http.Client{
		Timeout: cfg.Timeout,
		Transport: &headerTransport{
			base: http.DefaultTransport,
			headers: map[string]string{
				"HTTP-Referer": cfg.Referer,
				"X-Title":      openRouterTitle,
			},
		},
	}

	return &OpenRouterClient{client: openai.NewClientWithConfig(oc)}, nil
}

// wireTemperature keeps a requested 0 on the wire: go-openai omits a zero
// Temperature, which would leave the provider on its own default.
func wireTemperature(t float32) float32 {
	if t == 0 {
		return math.SmallestNonzeroFloat32
	}
	return t
}

// GenerateReply implements domain.LLMClient.
func (c *OpenRouterClient) GenerateReply(ctx context.Context, req domain.ChatRequest) (domain.ChatResponse, error) {
	msgs := BuildMessages(req)
	oaMsgs := make([]openai.ChatCompletionMessage, 0, len(msgs))
	for _, m := range msgs {
		oaMsgs = append(oaMsgs, openai.ChatCompletionMessage{Role: string(m.Role), Content: m.Content})
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       req.Model,
		Messages:    oaMsgs,
		Temperature: wireTemperature(temperature(req)),
		MaxTokens:   maxReplyTokens,
	})
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			return domain.ChatResponse{}, errors.Wrapf(err, "openrouter status %d", apiErr.HTTPStatusCode)
		}
		return domain.ChatResponse{}, errors.Wrap(err, "openrouter request")
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return domain.ChatResponse{}, errors.New("openrouter returned no choices")
	}

	tokens := resp.Usage.TotalTokens
	model := resp.Model
	if model == "" {
		model = req.Model
	}
	return domain.ChatResponse{
		Reply:      resp.Choices[0].Message.Content,
		ModelUsed:  model,
		TokensUsed: &tokens,
	}, nil
}

type headerTransport struct {
	base    http.RoundTripper
	headers map[string]string
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	for k, v := range t.headers {
		if v != "" {
			req.Header.Set(k, v)
		}
	}
	return t.base.RoundTrip(req)
}
