package domain

import (
	"context"
	"time"
)

// Completer produces one assistant reply for a transcript. The HTTP client
// of the completion service and the in-process chat service implement it.
type Completer interface {
	Complete(ctx context.Context, req ChatRequest) (ChatResponse, error)
}

// LLMClient is a language model provider behind the completion service.
type LLMClient interface {
	GenerateReply(ctx context.Context, req ChatRequest) (ChatResponse, error)
}

// IdentityGateway owns sign-up, sign-in, sign-out and profile retrieval.
type IdentityGateway interface {
	SignUp(ctx context.Context, email, password, username string) (AuthResult, error)
	SignIn(ctx context.Context, email, password string) (AuthResult, error)
	SignOut(ctx context.Context, accessToken string) error
	GetProfile(ctx context.Context, userID UserID, accessToken string) (Profile, error)
}

// BotStore persists the bots of each user, in insertion order.
type BotStore interface {
	ListBots(ctx context.Context, userID UserID) ([]Bot, error)
	SaveBot(ctx context.Context, userID UserID, bot Bot) error
	DeleteBot(ctx context.Context, userID UserID, id BotID) error
}

// AccountStore persists local accounts and their profiles.
type AccountStore interface {
	CreateAccount(ctx context.Context, acc *Account) error
	GetAccountByEmail(ctx context.Context, email string) (*Account, error)
	GetProfile(ctx context.Context, userID UserID) (*Profile, error)
	UpsertProfile(ctx context.Context, p *Profile) error
}

// TokenDenylist remembers revoked access tokens until they expire.
type TokenDenylist interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// Pinger is implemented by stores that can report connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}
