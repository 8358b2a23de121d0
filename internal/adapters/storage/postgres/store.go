// Package postgres stores bots, accounts and profiles in PostgreSQL.
package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"

	"github.com/PabloGalante/tubot/internal/domain"
)

const uniqueViolation = "23505"

const schema = `
CREATE TABLE IF NOT EXISTS bots (
	seq BIGSERIAL PRIMARY KEY,
	id TEXT NOT NULL UNIQUE,
	user_id TEXT NOT NULL,
	name TEXT NOT NULL,
	personality TEXT NOT NULL DEFAULT '',
	documents TEXT[] NOT NULL DEFAULT '{}',
	color TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_bots_user ON bots(user_id, seq);

CREATE TABLE IF NOT EXISTS accounts (
	id TEXT PRIMARY KEY,
	email TEXT NOT NULL UNIQUE,
	username TEXT NOT NULL DEFAULT '',
	password_hash TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS profiles (
	user_id TEXT PRIMARY KEY,
	username TEXT NOT NULL DEFAULT '',
	email TEXT NOT NULL DEFAULT ''
);
`

// Store handles PostgreSQL operations over a connection pool.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore connects to databaseURL and makes sure the tables exist.
func NewStore(ctx context.Context, databaseURL string) (*Store, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, errors.Wrap(err, "create pgx pool")
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, errors.Wrap(err, "ping postgres")
	}

	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, errors.Wrap(err, "init postgres schema")
	}

	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	s.pool.Close()
}

func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *Store) ListBots(ctx context.Context, userID domain.UserID) ([]domain.Bot, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, name, personality, documents, color, created_at
		FROM bots WHERE user_id = $1 ORDER BY seq
	`, string(userID))
	if err != nil {
		return nil, errors.Wrap(err, "postgres ListBots")
	}
	defer rows.Close()

	out := []domain.Bot{}
	for rows.Next() {
		var (
			b                     domain.Bot
			id, name, personality string
			color                 string
			docs                  []string
		)
		if err := rows.Scan(&id, &name, &personality, &docs, &color, &b.CreatedAt); err != nil {
			return nil, errors.Wrap(err, "postgres scan bot")
		}
		b.ID = domain.BotID(id)
		b.Name = name
		b.Personality = personality
		b.Documents = docs
		b.Color = domain.Color(color)
		out = append(out, b.Clone())
	}
	return out, errors.Wrap(rows.Err(), "postgres ListBots")
}

func (s *Store) SaveBot(ctx context.Context, userID domain.UserID, bot domain.Bot) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO bots (id, user_id, name, personality, documents, color, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			personality = EXCLUDED.personality,
			documents = EXCLUDED.documents
		WHERE bots.user_id = EXCLUDED.user_id
	`, string(bot.ID), string(userID), bot.Name, bot.Personality, bot.Clone().Documents, string(bot.Color), bot.CreatedAt)
	return errors.Wrap(err, "postgres SaveBot")
}

func (s *Store) DeleteBot(ctx context.Context, userID domain.UserID, id domain.BotID) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM bots WHERE user_id = $1 AND id = $2`, string(userID), string(id))
	return errors.Wrap(err, "postgres DeleteBot")
}

func (s *Store) CreateAccount(ctx context.Context, acc *domain.Account) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO accounts (id, email, username, password_hash, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, string(acc.ID), domain.NormalizeEmail(acc.Email), acc.Username, acc.PasswordHash, acc.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return domain.ErrEmailTaken
		}
		return errors.Wrap(err, "postgres CreateAccount")
	}
	return nil
}

func (s *Store) GetAccountByEmail(ctx context.Context, email string) (*domain.Account, error) {
	var id string
	acc := &domain.Account{}
	err := s.pool.QueryRow(ctx, `
		SELECT id, email, username, password_hash, created_at
		FROM accounts WHERE email = $1
	`, domain.NormalizeEmail(email)).Scan(&id, &acc.Email, &acc.Username, &acc.PasswordHash, &acc.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, errors.Wrap(err, "postgres GetAccountByEmail")
	}
	acc.ID = domain.UserID(id)
	return acc, nil
}

func (s *Store) GetProfile(ctx context.Context, userID domain.UserID) (*domain.Profile, error) {
	p := &domain.Profile{UserID: userID}
	err := s.pool.QueryRow(ctx, `
		SELECT username, email FROM profiles WHERE user_id = $1
	`, string(userID)).Scan(&p.Username, &p.Email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, errors.Wrap(err, "postgres GetProfile")
	}
	return p, nil
}

func (s *Store) UpsertProfile(ctx context.Context, p *domain.Profile) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO profiles (user_id, username, email) VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO UPDATE SET username = EXCLUDED.username, email = EXCLUDED.email
	`, string(p.UserID), p.Username, p.Email)
	return errors.Wrap(err, "postgres UpsertProfile")
}
