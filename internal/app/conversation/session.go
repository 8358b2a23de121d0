// Package conversation runs one bot's transcript and the single outstanding
// completion request against it.
package conversation

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/pkg/errors"

	"github.com/PabloGalante/tubot/internal/domain"
	"github.com/PabloGalante/tubot/internal/observability"
)

const (
	DefaultModel   = "mistralai/mistral-7b-instruct"
	DefaultTimeout = 60 * time.Second
)

// Models lists the model identifiers a conversation can target.
var Models = []string{
	DefaultModel,
	"openai/gpt-3.5-turbo",
}

// BotLookup resolves a bot by id. *roster.Roster satisfies it.
type BotLookup interface {
	Lookup(id domain.BotID) (domain.Bot, bool)
}

// Greeting is the seed message a conversation opens with.
func Greeting(name string) string {
	return fmt.Sprintf("¡Hola! Soy %s. ¿En qué puedo ayudarte hoy?", name)
}

// Exchange is the outcome of one Submit: the user message and the bot
// message that answered it (a failure report when Reply.Failed is set).
type Exchange struct {
	Request domain.Message
	Reply   domain.Message
}

type Session struct {
	mu         sync.Mutex
	state      domain.ConversationState
	transcript []domain.Message
	model      string

	bots      BotLookup
	botID     domain.BotID
	completer domain.Completer
	timeout   time.Duration
	now       func() time.Time
}

type Option func(*Session)

func WithModel(model string) Option {
	return func(s *Session) { s.model = model }
}

// WithRequestTimeout bounds each completion call. Zero disables the bound.
func WithRequestTimeout(d time.Duration) Option {
	return func(s *Session) { s.timeout = d }
}

func WithClock(fn func() time.Time) Option {
	return func(s *Session) { s.now = fn }
}

// New opens a conversation with the bot id and seeds the greeting.
func New(bots BotLookup, botID domain.BotID, completer domain.Completer, opts ...Option) (*Session, error) {
	s := &Session{
		state:     domain.StateIdle,
		model:     DefaultModel,
		bots:      bots,
		botID:     botID,
		completer: completer,
		timeout:   DefaultTimeout,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if !slices.Contains(Models, s.model) {
		return nil, errors.Wrapf(domain.ErrUnknownModel, "%q", s.model)
	}

	bot, ok := bots.Lookup(botID)
	if !ok {
		return nil, domain.ErrBotNotFound
	}
	s.seed(bot)
	return s, nil
}

func (s *Session) seed(bot domain.Bot) {
	s.transcript = []domain.Message{s.newMessage(domain.SenderBot, Greeting(bot.Name))}
}

func (s *Session) newMessage(sender domain.Sender, text string) domain.Message {
	return domain.Message{
		ID:        domain.MessageID(ulid.Make().String()),
		Text:      text,
		Sender:    sender,
		Timestamp: s.now(),
	}
}

// Submit sends input to the bot and waits for the reply. Completion failures
// are not returned: they end up as a bot message in the transcript and the
// session goes back to idle.
func (s *Session) Submit(ctx context.Context, input string) (Exchange, error) {
	if strings.TrimSpace(input) == "" {
		return Exchange{}, domain.ErrEmptyInput
	}

	s.mu.Lock()
	if s.state != domain.StateIdle {
		s.mu.Unlock()
		return Exchange{}, domain.ErrRequestInFlight
	}
	bot, ok := s.bots.Lookup(s.botID)
	if !ok {
		s.mu.Unlock()
		return Exchange{}, domain.ErrBotNotFound
	}

	userMsg := s.newMessage(domain.SenderUser, input)
	s.transcript = append(s.transcript, userMsg)
	s.state = domain.StateAwaitingReply

	req := domain.ChatRequest{
		Messages:     domain.ToChatMessages(s.transcript),
		Instructions: bot.Personality,
		Model:        s.model,
	}
	s.mu.Unlock()

	log := observability.LoggerFromContext(ctx).With().
		Str("bot_id", string(s.botID)).
		Str("model", req.Model).
		Int("history", len(req.Messages)).
		Logger()
	log.Debug().Msg("requesting completion")

	callCtx := ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	start := time.Now()
	resp, err := s.completer.Complete(callCtx, req)

	var reply domain.Message
	switch {
	case err != nil:
		log.Warn().Err(err).Dur("elapsed", time.Since(start)).Msg("completion failed")
		text := domain.FailureText(err)
		if errors.Is(callCtx.Err(), context.DeadlineExceeded) {
			text = domain.MsgTimeout
		}
		reply = s.newMessage(domain.SenderBot, text)
		reply.Failed = true
	default:
		log.Debug().Dur("elapsed", time.Since(start)).Msg("completion received")
		reply = s.newMessage(domain.SenderBot, resp.Reply)
	}

	s.mu.Lock()
	s.transcript = append(s.transcript, reply)
	s.state = domain.StateIdle
	s.mu.Unlock()

	return Exchange{Request: userMsg, Reply: reply}, nil
}

// Transcript returns a copy of the messages so far.
func (s *Session) Transcript() []domain.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.transcript)
}

func (s *Session) State() domain.ConversationState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Bot returns the live roster entry for this conversation.
func (s *Session) Bot() (domain.Bot, bool) {
	return s.bots.Lookup(s.botID)
}

func (s *Session) BotID() domain.BotID {
	return s.botID
}

func (s *Session) Model() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.model
}

// SetModel switches the model used by the next Submit.
func (s *Session) SetModel(model string) error {
	if !slices.Contains(Models, model) {
		return errors.Wrapf(domain.ErrUnknownModel, "%q", model)
	}
	s.mu.Lock()
	s.model = model
	s.mu.Unlock()
	return nil
}

// Reset clears the transcript and seeds a fresh greeting. It fails while a
// reply is pending.
func (s *Session) Reset() error {
	bot, ok := s.bots.Lookup(s.botID)
	if !ok {
		return domain.ErrBotNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != domain.StateIdle {
		return domain.ErrRequestInFlight
	}
	s.seed(bot)
	return nil
}
