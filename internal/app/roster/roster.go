// Package roster holds the bounded, ordered collection of a user's bots and
// the current selection.
//
// Operations that cannot apply (creating past MaxBots, deleting or updating
// an unknown id) are silent no-ops reported through a boolean result.
package roster

import (
	"math/rand/v2"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/PabloGalante/tubot/internal/domain"
)

type Roster struct {
	mu       sync.RWMutex
	bots     []domain.Bot
	selected domain.BotID

	newID     func() domain.BotID
	pickColor func() domain.Color
	now       func() time.Time
}

type Option func(*Roster)

// WithIDGenerator overrides how bot ids are minted.
func WithIDGenerator(fn func() domain.BotID) Option {
	return func(r *Roster) { r.newID = fn }
}

// WithColorPicker overrides the random palette draw.
func WithColorPicker(fn func() domain.Color) Option {
	return func(r *Roster) { r.pickColor = fn }
}

func WithClock(fn func() time.Time) Option {
	return func(r *Roster) { r.now = fn }
}

func New(opts ...Option) *Roster {
	r := &Roster{
		newID:     func() domain.BotID { return domain.BotID(uuid.NewString()) },
		pickColor: RandomColor,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// FromBots builds a roster around bots loaded from storage, keeping their
// order. A stored list longer than MaxBots is kept as is but reports full.
func FromBots(bots []domain.Bot, opts ...Option) *Roster {
	r := New(opts...)
	r.bots = make([]domain.Bot, 0, len(bots))
	for _, b := range bots {
		r.bots = append(r.bots, b.Clone())
	}
	return r
}

// RandomColor draws uniformly from domain.Palette.
func RandomColor() domain.Color {
	return domain.Palette[rand.IntN(len(domain.Palette))]
}

// Create appends a new bot. It returns false, changing nothing, when the
// roster is full or the name is blank.
func (r *Roster) Create(draft domain.BotDraft) (domain.Bot, bool) {
	name := strings.TrimSpace(draft.Name)
	if name == "" {
		return domain.Bot{}, false
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.bots) >= domain.MaxBots {
		return domain.Bot{}, false
	}

	bot := domain.Bot{
		ID:          r.newID(),
		Name:        name,
		Personality: draft.Personality,
		Documents:   slices.Clone(draft.Documents),
		Color:       r.pickColor(),
		CreatedAt:   r.now(),
	}
	if bot.Documents == nil {
		bot.Documents = []string{}
	}

	r.bots = append(r.bots, bot)
	return bot.Clone(), true
}

// Add appends a bot that already carries its id and color, as returned by a
// remote roster. It reports false when the roster is full or the id exists.
func (r *Roster) Add(bot domain.Bot) bool {
	if strings.TrimSpace(bot.Name) == "" || bot.ID == "" {
		return false
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.bots) >= domain.MaxBots || r.indexOf(bot.ID) >= 0 {
		return false
	}
	r.bots = append(r.bots, bot.Clone())
	return true
}

// Delete removes the bot with id. Deleting the selected bot clears the
// selection.
func (r *Roster) Delete(id domain.BotID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		return false
	}

	r.bots = slices.Delete(r.bots, i, i+1)
	if r.selected == id {
		r.selected = ""
	}
	return true
}

// Update replaces name, personality and documents of the bot with the same
// id. The color is kept from the stored entry.
func (r *Roster) Update(bot domain.Bot) bool {
	name := strings.TrimSpace(bot.Name)
	if name == "" {
		return false
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(bot.ID)
	if i < 0 {
		return false
	}

	cur := r.bots[i]
	cur.Name = name
	cur.Personality = bot.Personality
	cur.Documents = slices.Clone(bot.Documents)
	if cur.Documents == nil {
		cur.Documents = []string{}
	}
	r.bots[i] = cur
	return true
}

// Rename is Update with only the name changed.
func (r *Roster) Rename(id domain.BotID, name string) (domain.Bot, bool) {
	bot, ok := r.Lookup(id)
	if !ok {
		return domain.Bot{}, false
	}
	bot.Name = name
	if !r.Update(bot) {
		return domain.Bot{}, false
	}
	return r.Lookup(id)
}

// Select marks id as the active conversation target.
func (r *Roster) Select(id domain.BotID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.indexOf(id) < 0 {
		return false
	}
	r.selected = id
	return true
}

func (r *Roster) ClearSelection() {
	r.mu.Lock()
	r.selected = ""
	r.mu.Unlock()
}

// Active resolves the current selection against the roster.
func (r *Roster) Active() (domain.Bot, bool) {
	r.mu.RLock()
	id := r.selected
	r.mu.RUnlock()

	if id == "" {
		return domain.Bot{}, false
	}
	return r.Lookup(id)
}

func (r *Roster) Lookup(id domain.BotID) (domain.Bot, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i := r.indexOf(id)
	if i < 0 {
		return domain.Bot{}, false
	}
	return r.bots[i].Clone(), true
}

// Bots returns the bots in insertion order.
func (r *Roster) Bots() []domain.Bot {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Bot, 0, len(r.bots))
	for _, b := range r.bots {
		out = append(out, b.Clone())
	}
	return out
}

func (r *Roster) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.bots)
}

// IsFull reports whether Create would be rejected.
func (r *Roster) IsFull() bool {
	return r.Len() >= domain.MaxBots
}

func (r *Roster) indexOf(id domain.BotID) int {
	return slices.IndexFunc(r.bots, func(b domain.Bot) bool { return b.ID == id })
}
