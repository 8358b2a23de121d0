// Package chat answers completion requests with a language model provider.
package chat

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/pkg/errors"

	"github.com/PabloGalante/tubot/internal/domain"
	"github.com/PabloGalante/tubot/internal/metrics"
	"github.com/PabloGalante/tubot/internal/observability"
)

const (
	DefaultModel       = "mistralai/mistral-7b-instruct"
	DefaultTemperature = 0.7
	MaxInstructions    = 1000
)

// Service validates chat requests and forwards them to the provider.
// It satisfies domain.Completer, so the shell can run without the API.
type Service struct {
	llm          domain.LLMClient
	provider     string
	defaultModel string
}

// NewService creates a chat service. provider only labels metrics and logs.
func NewService(llm domain.LLMClient, provider, defaultModel string) *Service {
	if defaultModel == "" {
		defaultModel = DefaultModel
	}
	return &Service{
		llm:          llm,
		provider:     provider,
		defaultModel: defaultModel,
	}
}

// Complete implements domain.Completer.
func (s *Service) Complete(ctx context.Context, req domain.ChatRequest) (domain.ChatResponse, error) {
	log := observability.LoggerFromContext(ctx)

	req, err := s.normalize(req)
	if err != nil {
		metrics.CompletionsTotal.WithLabelValues(s.provider, "invalid").Inc()
		return domain.ChatResponse{}, err
	}

	start := time.Now()
	resp, err := s.llm.GenerateReply(ctx, req)
	metrics.CompletionDuration.WithLabelValues(s.provider).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.CompletionsTotal.WithLabelValues(s.provider, "error").Inc()
		log.Error().Err(err).
			Str("provider", s.provider).
			Str("model", req.Model).
			Msg("provider failed")
		return domain.ChatResponse{}, &upstreamError{err: err}
	}
	if strings.TrimSpace(resp.Reply) == "" {
		metrics.CompletionsTotal.WithLabelValues(s.provider, "error").Inc()
		return domain.ChatResponse{}, errors.Wrap(domain.ErrUpstream, "empty reply")
	}
	if resp.ModelUsed == "" {
		resp.ModelUsed = req.Model
	}

	metrics.CompletionsTotal.WithLabelValues(s.provider, "ok").Inc()
	log.Info().
		Str("provider", s.provider).
		Str("model", resp.ModelUsed).
		Int("messages", len(req.Messages)).
		Dur("elapsed", time.Since(start)).
		Msg("completion served")
	return resp, nil
}

// upstreamError matches domain.ErrUpstream and keeps the provider's error
// reachable, so callers can still tell a deadline from a refusal.
type upstreamError struct {
	err error
}

func (e *upstreamError) Error() string {
	return domain.ErrUpstream.Error() + ": " + e.err.Error()
}

func (e *upstreamError) Is(target error) bool { return target == domain.ErrUpstream }

func (e *upstreamError) Unwrap() error { return e.err }

// normalize applies defaults and rejects requests the provider must not see.
func (s *Service) normalize(req domain.ChatRequest) (domain.ChatRequest, error) {
	if len(req.Messages) == 0 {
		return req, &domain.ValidationError{Field: "messages", Reason: "at least one message is required"}
	}
	for i, m := range req.Messages {
		switch m.Role {
		case domain.RoleSystem, domain.RoleUser, domain.RoleAssistant:
		default:
			return req, &domain.ValidationError{
				Field:  fmt.Sprintf("messages[%d].role", i),
				Reason: fmt.Sprintf("unknown role %q", m.Role),
			}
		}
	}
	if utf8.RuneCountInString(req.Instructions) > MaxInstructions {
		return req, &domain.ValidationError{
			Field:  "instructions",
			Reason: fmt.Sprintf("must be at most %d characters", MaxInstructions),
		}
	}

	if req.Temperature == nil {
		t := DefaultTemperature
		req.Temperature = &t
	} else if *req.Temperature < 0 || *req.Temperature > 1 {
		return req, &domain.ValidationError{Field: "temperature", Reason: "must be between 0 and 1"}
	}
	if strings.TrimSpace(req.Model) == "" {
		req.Model = s.defaultModel
	}
	return req, nil
}
