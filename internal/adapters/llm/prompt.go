package llm

import (
	"strings"

	"github.com/PabloGalante/tubot/internal/domain"
)

// DefaultTemperature is used when a request leaves temperature unset.
const DefaultTemperature = 0.7

// Prompt is a chat request split into the system text and the dialogue,
// for providers that take the system instruction separately.
type Prompt struct {
	System  string
	History []domain.ChatMessage
}

// BuildMessages returns the message list a provider receives: the bot's
// instructions first as a system message, then the transcript in order.
func BuildMessages(req domain.ChatRequest) []domain.ChatMessage {
	out := make([]domain.ChatMessage, 0, len(req.Messages)+1)
	if instructions := strings.TrimSpace(req.Instructions); instructions != "" {
		out = append(out, domain.ChatMessage{Role: domain.RoleSystem, Content: instructions})
	}
	return append(out, req.Messages...)
}

// BuildPrompt folds every system message into Prompt.System.
func BuildPrompt(req domain.ChatRequest) Prompt {
	var (
		system []string
		p      Prompt
	)
	for _, m := range BuildMessages(req) {
		if m.Role == domain.RoleSystem {
			system = append(system, m.Content)
			continue
		}
		p.History = append(p.History, m)
	}
	p.System = strings.Join(system, "\n\n")
	return p
}

func temperature(req domain.ChatRequest) float32 {
	if req.Temperature == nil {
		return DefaultTemperature
	}
	return float32(*req.Temperature)
}

// lastUserMessage returns the newest user turn, or "".
func lastUserMessage(msgs []domain.ChatMessage) string {
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Role == domain.RoleUser {
			return msgs[i].Content
		}
	}
	return ""
}
