package llm

import (
	"context"

	"github.com/pkg/errors"
	"google.golang.org/genai"

	"github.com/PabloGalante/tubot/internal/domain"
)

type VertexClient struct {
	client    *genai.Client
	modelName string
}

// NewVertexClient creates an LLMClient backed by Vertex AI (Gemini). Requests
// name OpenRouter models, so every call goes to modelName instead.
func NewVertexClient(ctx context.Context, projectID, location, modelName string) (*VertexClient, error) {
	if projectID == "" || location == "" {
		return nil, errors.New("vertex: project and location must be set")
	}
	if modelName == "" {
		modelName = "gemini-2.5-flash"
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		Project:  projectID,
		Location: location,
		Backend:  genai.BackendVertexAI,
	})
	if err != nil {
		return nil, errors.Wrap(err, "creating Vertex AI client")
	}

	return &VertexClient{
		client:    client,
		modelName: modelName,
	}, nil
}

// GenerateReply implements domain.LLMClient using Vertex AI.
func (v *VertexClient) GenerateReply(ctx context.Context, req domain.ChatRequest) (domain.ChatResponse, error) {
	prompt := BuildPrompt(req)

	var contents []*genai.Content
	for _, m := range prompt.History {
		role := genai.Role(genai.RoleUser)
		if m.Role == domain.RoleAssistant {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(m.Content, role))
	}

	temp := temperature(req)
	cfg := &genai.GenerateContentConfig{
		Temperature:     &temp,
		MaxOutputTokens: 1000,
	}
	if prompt.System != "" {
		// system instructions travel with the user role on Vertex
		cfg.SystemInstruction = genai.NewContentFromText(prompt.System, genai.RoleUser)
	}

	res, err := v.client.Models.GenerateContent(ctx, v.modelName, contents, cfg)
	if err != nil {
		return domain.ChatResponse{}, errors.Wrap(err, "vertex generate content")
	}

	text := res.Text()
	if text == "" {
		return domain.ChatResponse{}, errors.New("vertex returned empty text")
	}

	out := domain.ChatResponse{Reply: text, ModelUsed: v.modelName}
	if res.UsageMetadata != nil {
		tokens := int(res.UsageMetadata.TotalTokenCount)
		out.TokensUsed = &tokens
	}
	return out, nil
}
