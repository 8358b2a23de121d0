// Package shell is the interactive chat client: it holds the signed-in user
// and the bot roster, and routes free text to the open conversation.
package shell

import (
	"context"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/muesli/termenv"
	"github.com/peterh/liner"
	"github.com/pkg/errors"

	"github.com/PabloGalante/tubot/internal/app/conversation"
	"github.com/PabloGalante/tubot/internal/app/roster"
	"github.com/PabloGalante/tubot/internal/domain"
)

// LineReader is the part of *liner.State the shell needs.
type LineReader interface {
	Prompt(prompt string) (string, error)
	AppendHistory(item string)
}

// RemoteRoster persists bots on the server. *api.BotClient satisfies it.
type RemoteRoster interface {
	List(ctx context.Context) ([]domain.Bot, error)
	Create(ctx context.Context, draft domain.BotDraft) (domain.Bot, error)
	Update(ctx context.Context, id domain.BotID, draft domain.BotDraft) (domain.Bot, error)
	Delete(ctx context.Context, id domain.BotID) error
}

type Config struct {
	User      domain.User
	Completer domain.Completer
	// Remote is optional; without it bots live only for the process.
	Remote  RemoteRoster
	Model   string
	Timeout time.Duration
	// Profile colors bot names; termenv.Ascii prints plain text.
	Profile termenv.Profile
}

type Shell struct {
	in  LineReader
	out io.Writer
	cfg Config

	roster  *roster.Roster
	session *conversation.Session
	model   string
}

func New(in LineReader, out io.Writer, cfg Config) *Shell {
	model := cfg.Model
	if model == "" {
		model = conversation.DefaultModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = conversation.DefaultTimeout
	}
	return &Shell{
		in:     in,
		out:    out,
		cfg:    cfg,
		roster: roster.New(),
		model:  model,
	}
}

// Roster exposes the shell's bots, mainly for tests.
func (s *Shell) Roster() *roster.Roster {
	return s.roster
}

// Load pulls the user's bots from the remote roster, if there is one.
func (s *Shell) Load(ctx context.Context) error {
	if s.cfg.Remote == nil {
		return nil
	}
	bots, err := s.cfg.Remote.List(ctx)
	if err != nil {
		return errors.Wrap(err, "load bots")
	}
	s.roster = roster.FromBots(bots)
	return nil
}

// Run reads lines until /quit, EOF or Ctrl+C.
func (s *Shell) Run(ctx context.Context) error {
	s.printf("Hola %s. Escribe /help para ver los comandos.\n", s.cfg.User.Username)
	s.listBots()

	for {
		line, err := s.in.Prompt(s.prompt())
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, liner.ErrPromptAborted) {
				s.printf("\n")
				return nil
			}
			return errors.Wrap(err, "read input")
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		s.in.AppendHistory(line)

		more, err := s.Execute(ctx, line)
		if err != nil {
			s.printf("error: %s\n", Describe(err))
		}
		if !more {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
}

func (s *Shell) prompt() string {
	if s.session != nil {
		if bot, ok := s.session.Bot(); ok {
			return bot.Name + "> "
		}
	}
	return "tubot> "
}

// Execute handles one input line and reports whether the loop continues.
func (s *Shell) Execute(ctx context.Context, line string) (bool, error) {
	if !strings.HasPrefix(line, "/") {
		return true, s.send(ctx, line)
	}

	cmd, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)

	switch cmd {
	case "/quit", "/exit":
		return false, nil
	case "/help":
		s.help()
	case "/bots":
		s.listBots()
	case "/new":
		return true, s.create(ctx, arg)
	case "/open":
		return true, s.open(arg)
	case "/close":
		s.close()
	case "/rename":
		return true, s.rename(ctx, arg)
	case "/delete":
		return true, s.remove(ctx, arg)
	case "/model":
		return true, s.setModel(arg)
	case "/reset":
		return true, s.reset()
	default:
		s.printf("Comando desconocido %q. Escribe /help.\n", cmd)
	}
	return true, nil
}

func (s *Shell) help() {
	s.printf(`Comandos:
  /bots              lista tus bots
  /new [nombre]      crea un bot
  /open <n>          abre la conversación con el bot n
  /close             cierra la conversación
  /rename <nombre>   renombra el bot abierto
  /delete [n]        elimina el bot n (o el abierto)
  /model [modelo]    muestra o cambia el modelo
  /reset             reinicia la conversación
  /quit              salir
`)
}

func (s *Shell) listBots() {
	bots := s.roster.Bots()
	if len(bots) == 0 {
		s.printf("No tienes bots todavía. Crea uno con /new.\n")
		return
	}
	active, _ := s.roster.Active()
	for i, b := range bots {
		marker := " "
		if b.ID == active.ID {
			marker = "*"
		}
		s.printf("%s %d. %s\n", marker, i+1, s.paint(b))
	}
	s.printf("  %d/%d bots\n", len(bots), domain.MaxBots)
}

func (s *Shell) create(ctx context.Context, name string) error {
	if s.roster.IsFull() {
		s.printf("%s\n", domain.MsgRosterFull)
		return nil
	}

	var err error
	if name == "" {
		if name, err = s.ask("Nombre: "); err != nil {
			return err
		}
	}
	if strings.TrimSpace(name) == "" {
		s.printf("El bot necesita un nombre.\n")
		return nil
	}
	personality, err := s.ask("Personalidad e instrucciones: ")
	if err != nil {
		return err
	}
	docs, err := s.ask("Documentos de contexto (separados por coma): ")
	if err != nil {
		return err
	}
	draft := domain.BotDraft{Name: name, Personality: personality, Documents: splitList(docs)}

	var bot domain.Bot
	if s.cfg.Remote != nil {
		if bot, err = s.cfg.Remote.Create(ctx, draft); err != nil {
			return err
		}
		if !s.roster.Add(bot) {
			return domain.ErrRosterFull
		}
	} else {
		var ok bool
		if bot, ok = s.roster.Create(draft); !ok {
			s.printf("%s\n", domain.MsgRosterFull)
			return nil
		}
	}
	s.printf("Bot %s creado.\n", s.paint(bot))
	return nil
}

func (s *Shell) ask(prompt string) (string, error) {
	v, err := s.in.Prompt(prompt)
	if err != nil {
		return "", errors.Wrap(err, "read input")
	}
	return strings.TrimSpace(v), nil
}

func splitList(v string) []string {
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// resolve accepts a 1-based position or a bot id.
func (s *Shell) resolve(arg string) (domain.Bot, bool) {
	if n, err := strconv.Atoi(arg); err == nil {
		bots := s.roster.Bots()
		if n < 1 || n > len(bots) {
			return domain.Bot{}, false
		}
		return bots[n-1], true
	}
	return s.roster.Lookup(domain.BotID(arg))
}

func (s *Shell) open(arg string) error {
	if arg == "" {
		s.printf("Uso: /open <n>\n")
		return nil
	}
	bot, ok := s.resolve(arg)
	if !ok {
		return domain.ErrBotNotFound
	}

	sess, err := conversation.New(s.roster, bot.ID, s.cfg.Completer,
		conversation.WithModel(s.model),
		conversation.WithRequestTimeout(s.cfg.Timeout),
	)
	if err != nil {
		return err
	}
	s.roster.Select(bot.ID)
	s.session = sess

	for _, m := range sess.Transcript() {
		s.render(bot, m)
	}
	return nil
}

func (s *Shell) close() {
	s.roster.ClearSelection()
	s.session = nil
}

func (s *Shell) rename(ctx context.Context, name string) error {
	bot, ok := s.roster.Active()
	if !ok {
		s.printf("Abre un bot con /open primero.\n")
		return nil
	}
	if strings.TrimSpace(name) == "" {
		s.printf("Uso: /rename <nombre>\n")
		return nil
	}

	if s.cfg.Remote != nil {
		draft := domain.BotDraft{Name: name, Personality: bot.Personality, Documents: bot.Documents}
		if _, err := s.cfg.Remote.Update(ctx, bot.ID, draft); err != nil {
			return err
		}
	}
	renamed, ok := s.roster.Rename(bot.ID, name)
	if !ok {
		return domain.ErrBotNotFound
	}
	s.printf("Ahora se llama %s.\n", s.paint(renamed))
	return nil
}

func (s *Shell) remove(ctx context.Context, arg string) error {
	var (
		bot domain.Bot
		ok  bool
	)
	if arg == "" {
		bot, ok = s.roster.Active()
	} else {
		bot, ok = s.resolve(arg)
	}
	if !ok {
		return domain.ErrBotNotFound
	}

	if s.cfg.Remote != nil {
		if err := s.cfg.Remote.Delete(ctx, bot.ID); err != nil {
			return err
		}
	}
	s.roster.Delete(bot.ID)
	if s.session != nil && s.session.BotID() == bot.ID {
		s.session = nil
	}
	s.printf("Bot %s eliminado.\n", bot.Name)
	return nil
}

func (s *Shell) setModel(model string) error {
	if model == "" {
		for _, m := range conversation.Models {
			marker := " "
			if m == s.model {
				marker = "*"
			}
			s.printf("%s %s\n", marker, m)
		}
		return nil
	}
	if s.session != nil {
		if err := s.session.SetModel(model); err != nil {
			return err
		}
	} else if !slices.Contains(conversation.Models, model) {
		return errors.Wrap(domain.ErrUnknownModel, model)
	}
	s.model = model
	s.printf("Modelo: %s\n", model)
	return nil
}

func (s *Shell) reset() error {
	if s.session == nil {
		s.printf("Abre un bot con /open primero.\n")
		return nil
	}
	if err := s.session.Reset(); err != nil {
		return err
	}
	bot, _ := s.session.Bot()
	for _, m := range s.session.Transcript() {
		s.render(bot, m)
	}
	return nil
}

func (s *Shell) send(ctx context.Context, text string) error {
	if s.session == nil {
		s.printf("Abre un bot con /open <n> para conversar.\n")
		return nil
	}
	bot, ok := s.session.Bot()
	if !ok {
		s.close()
		return domain.ErrBotNotFound
	}

	s.printf("%s está escribiendo...\n", bot.Name)
	ex, err := s.session.Submit(ctx, text)
	if err != nil {
		if errors.Is(err, domain.ErrEmptyInput) {
			return nil
		}
		return err
	}
	if latest, ok := s.session.Bot(); ok {
		bot = latest
	}
	s.render(bot, ex.Reply)
	return nil
}

func (s *Shell) render(bot domain.Bot, m domain.Message) {
	stamp := m.Timestamp.Format("15:04")
	if m.Sender == domain.SenderUser {
		s.printf("[%s] tú: %s\n", stamp, m.Text)
		return
	}
	text := m.Text
	if m.Failed {
		text = s.cfg.Profile.String(text).Foreground(s.cfg.Profile.Color("#ff3300")).String()
	}
	s.printf("[%s] %s: %s\n", stamp, s.paint(bot), text)
}

// paint renders the bot name in its color.
func (s *Shell) paint(b domain.Bot) string {
	return s.cfg.Profile.String(b.Name).Foreground(s.cfg.Profile.Color(string(b.Color))).String()
}

func (s *Shell) printf(format string, args ...any) {
	fmt.Fprintf(s.out, format, args...)
}

// Describe picks the user-facing text of err.
func Describe(err error) string {
	var aerr *domain.AuthError
	switch {
	case errors.As(err, &aerr):
		return aerr.Message
	case errors.Is(err, domain.ErrRosterFull):
		return domain.MsgRosterFull
	case errors.Is(err, domain.ErrBotNotFound):
		return "bot no encontrado"
	case errors.Is(err, domain.ErrRequestInFlight):
		return "espera la respuesta anterior"
	case errors.Is(err, domain.ErrUnauthorized):
		return "sesión expirada, vuelve a iniciar sesión"
	default:
		return err.Error()
	}
}
