package llm

import (
	"context"
	"fmt"

	"github.com/PabloGalante/tubot/internal/domain"
)

// MockLLM answers without a network call. Used in development and tests.
type MockLLM struct{}

func NewMockLLM() *MockLLM {
	return &MockLLM{}
}

func (m *MockLLM) GenerateReply(ctx context.Context, req domain.ChatRequest) (domain.ChatResponse, error) {
	if err := ctx.Err(); err != nil {
		return domain.ChatResponse{}, err
	}
	tokens := len(req.Messages)
	return domain.ChatResponse{
		Reply:      fmt.Sprintf("Recibí tu mensaje: %q", lastUserMessage(req.Messages)),
		ModelUsed:  req.Model,
		TokensUsed: &tokens,
	}, nil
}
