// Package sqlite stores bots, accounts and profiles in an embedded SQLite
// database.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"

	"github.com/PabloGalante/tubot/internal/domain"
)

type Store struct {
	db *sql.DB
}

// NewStore opens (and creates when missing) the database at path.
// ":memory:" gives a throwaway database.
func NewStore(ctx context.Context, path string) (*Store, error) {
	if path == "" {
		path = "./data/tubot.db"
	}

	dsn := path
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, errors.Wrap(err, "create sqlite dir")
		}
		dsn = path + "?_journal_mode=WAL&_foreign_keys=on&_busy_timeout=5000"
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "open sqlite")
	}
	// a second connection to ":memory:" would be a different database
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "ping sqlite")
	}

	s := &Store{db: db}
	if err := s.initSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) initSchema(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS bots (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL UNIQUE,
		user_id TEXT NOT NULL,
		name TEXT NOT NULL,
		personality TEXT NOT NULL DEFAULT '',
		documents TEXT NOT NULL DEFAULT '[]',
		color TEXT NOT NULL,
		created_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS accounts (
		id TEXT PRIMARY KEY,
		email TEXT NOT NULL UNIQUE,
		username TEXT NOT NULL DEFAULT '',
		password_hash TEXT NOT NULL,
		created_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS profiles (
		user_id TEXT PRIMARY KEY,
		username TEXT NOT NULL DEFAULT '',
		email TEXT NOT NULL DEFAULT ''
	);

	CREATE INDEX IF NOT EXISTS idx_bots_user ON bots(user_id, seq);
	`
	_, err := s.db.ExecContext(ctx, schema)
	return errors.Wrap(err, "init sqlite schema")
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// ─────────────────────────────────────────
// BotStore
// ─────────────────────────────────────────

func (s *Store) ListBots(ctx context.Context, userID domain.UserID) ([]domain.Bot, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, personality, documents, color, created_at
		FROM bots WHERE user_id = ? ORDER BY seq
	`, string(userID))
	if err != nil {
		return nil, errors.Wrap(err, "sqlite ListBots")
	}
	defer rows.Close()

	out := []domain.Bot{}
	for rows.Next() {
		var (
			b    domain.Bot
			docs string
		)
		if err := rows.Scan(&b.ID, &b.Name, &b.Personality, &docs, &b.Color, &b.CreatedAt); err != nil {
			return nil, errors.Wrap(err, "sqlite scan bot")
		}
		if err := json.Unmarshal([]byte(docs), &b.Documents); err != nil {
			return nil, errors.Wrapf(err, "decode documents of bot %s", b.ID)
		}
		out = append(out, b.Clone())
	}
	return out, errors.Wrap(rows.Err(), "sqlite ListBots")
}

func (s *Store) SaveBot(ctx context.Context, userID domain.UserID, bot domain.Bot) error {
	docs, err := json.Marshal(bot.Clone().Documents)
	if err != nil {
		return errors.Wrap(err, "encode documents")
	}
	if bot.CreatedAt.IsZero() {
		bot.CreatedAt = time.Now()
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO bots (id, user_id, name, personality, documents, color, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			personality = excluded.personality,
			documents = excluded.documents
		WHERE bots.user_id = excluded.user_id
	`, string(bot.ID), string(userID), bot.Name, bot.Personality, string(docs), string(bot.Color), bot.CreatedAt.UTC())
	return errors.Wrap(err, "sqlite SaveBot")
}

func (s *Store) DeleteBot(ctx context.Context, userID domain.UserID, id domain.BotID) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM bots WHERE user_id = ? AND id = ?`, string(userID), string(id))
	return errors.Wrap(err, "sqlite DeleteBot")
}

// ─────────────────────────────────────────
// AccountStore
// ─────────────────────────────────────────

func (s *Store) CreateAccount(ctx context.Context, acc *domain.Account) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO accounts (id, email, username, password_hash, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, string(acc.ID), domain.NormalizeEmail(acc.Email), acc.Username, acc.PasswordHash, acc.CreatedAt.UTC())
	if err != nil {
		var serr sqlite3.Error
		if errors.As(err, &serr) && serr.ExtendedCode == sqlite3.ErrConstraintUnique {
			return domain.ErrEmailTaken
		}
		return errors.Wrap(err, "sqlite CreateAccount")
	}
	return nil
}

func (s *Store) GetAccountByEmail(ctx context.Context, email string) (*domain.Account, error) {
	acc := &domain.Account{}
	err := s.db.QueryRowContext(ctx, `
		SELECT id, email, username, password_hash, created_at
		FROM accounts WHERE email = ?
	`, domain.NormalizeEmail(email)).Scan(&acc.ID, &acc.Email, &acc.Username, &acc.PasswordHash, &acc.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, errors.Wrap(err, "sqlite GetAccountByEmail")
	}
	return acc, nil
}

func (s *Store) GetProfile(ctx context.Context, userID domain.UserID) (*domain.Profile, error) {
	p := &domain.Profile{}
	err := s.db.QueryRowContext(ctx, `
		SELECT user_id, username, email FROM profiles WHERE user_id = ?
	`, string(userID)).Scan(&p.UserID, &p.Username, &p.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, errors.Wrap(err, "sqlite GetProfile")
	}
	return p, nil
}

func (s *Store) UpsertProfile(ctx context.Context, p *domain.Profile) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO profiles (user_id, username, email) VALUES (?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET username = excluded.username, email = excluded.email
	`, string(p.UserID), p.Username, p.Email)
	return errors.Wrap(err, "sqlite UpsertProfile")
}
