package domain

import "slices"

// MaxBots is the maximum number of bots a user can hold.
const MaxBots = 8

// Color is a CSS hex color assigned to a bot at creation.
type Color string

// Palette holds the neon colors bots are painted with.
var Palette = []Color{
	"#00ffff",
	"#ff00ff",
	"#ff3300",
	"#00ff00",
	"#ffff00",
	"#ff00aa",
}

// Bot is a named persona the user converses with.
type Bot struct {
	ID          BotID     `json:"id"`
	Name        string    `json:"name"`
	Personality string    `json:"personality"`
	Documents   []string  `json:"documents"`
	Color       Color     `json:"color"`
	CreatedAt   Timestamp `json:"created_at"`
}

// Clone returns a copy that shares no memory with b.
func (b Bot) Clone() Bot {
	out := b
	out.Documents = slices.Clone(b.Documents)
	if out.Documents == nil {
		out.Documents = []string{}
	}
	return out
}

// BotDraft is the user-supplied part of a bot.
type BotDraft struct {
	Name        string   `json:"name"`
	Personality string   `json:"personality"`
	Documents   []string `json:"documents"`
}
