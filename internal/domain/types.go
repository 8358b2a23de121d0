package domain

import "time"

type UserID string
type BotID string
type MessageID string

type Timestamp = time.Time

// Sender identifies who authored a transcript message.
type Sender string

const (
	SenderUser Sender = "user"
	SenderBot  Sender = "bot"
)

// Role is the role tag used on the wire by the completion service.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ConversationState is the state of the single in-flight request guard.
type ConversationState int

const (
	StateIdle ConversationState = iota
	StateAwaitingReply
)

func (s ConversationState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAwaitingReply:
		return "awaiting_reply"
	default:
		return "unknown"
	}
}
