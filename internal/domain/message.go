package domain

// Message is one entry of a conversation transcript.
type Message struct {
	ID        MessageID `json:"id"`
	Text      string    `json:"text"`
	Sender    Sender    `json:"sender"`
	Timestamp Timestamp `json:"timestamp"`

	// Failed marks bot messages that report a completion failure.
	Failed bool `json:"failed,omitempty"`
}

// ChatMessage is a role-tagged transcript entry as sent on the wire.
type ChatMessage struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is the body of POST /chatbot/message.
type ChatRequest struct {
	Messages     []ChatMessage `json:"messages"`
	Instructions string        `json:"instructions"`
	Model        string        `json:"model,omitempty"`
	Temperature  *float64      `json:"temperature,omitempty"`
}

// ChatResponse is the success body of POST /chatbot/message.
type ChatResponse struct {
	Reply      string `json:"reply"`
	ModelUsed  string `json:"model_used,omitempty"`
	TokensUsed *int   `json:"tokens_used,omitempty"`
}

// RoleFor maps a transcript sender to its wire role.
func RoleFor(s Sender) Role {
	if s == SenderUser {
		return RoleUser
	}
	return RoleAssistant
}

// ToChatMessages serializes a transcript in order.
func ToChatMessages(transcript []Message) []ChatMessage {
	out := make([]ChatMessage, 0, len(transcript))
	for _, m := range transcript {
		out = append(out, ChatMessage{Role: RoleFor(m.Sender), Content: m.Text})
	}
	return out
}
