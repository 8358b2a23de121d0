package main

import (
	"context"

	"github.com/pkg/errors"

	"github.com/PabloGalante/tubot/internal/config"
	"github.com/PabloGalante/tubot/internal/domain"
	"github.com/PabloGalante/tubot/internal/observability"

	firestorestore "github.com/PabloGalante/tubot/internal/adapters/storage/firestore"
	memstore "github.com/PabloGalante/tubot/internal/adapters/storage/memory"
	pgstore "github.com/PabloGalante/tubot/internal/adapters/storage/postgres"
	sqlitestore "github.com/PabloGalante/tubot/internal/adapters/storage/sqlite"
)

type stores struct {
	bots     domain.BotStore
	accounts domain.AccountStore
	checks   map[string]domain.Pinger
	closers  []func()
}

func (s *stores) close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}

// openStores picks the bot and account storage from TUBOT_STORAGE_BACKEND.
func openStores(ctx context.Context, cfg *config.Config) (*stores, error) {
	log := observability.Logger()
	s := &stores{checks: map[string]domain.Pinger{}}

	switch cfg.StorageBackend {
	case "firestore":
		log.Info().Str("project", cfg.GCPProjectID).Msg("[STORE] Using Firestore storage")
		fs, err := firestorestore.NewStore(ctx, cfg.GCPProjectID)
		if err != nil {
			return nil, errors.Wrap(err, "initializing Firestore store")
		}
		// 1 store, implements 2 interfaces
		s.bots, s.accounts = fs, fs
		s.checks["firestore"] = fs
		s.closers = append(s.closers, func() { _ = fs.Close() })

	case "postgres":
		log.Info().Msg("[STORE] Using Postgres storage")
		pg, err := pgstore.NewStore(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, errors.Wrap(err, "initializing Postgres store")
		}
		s.bots, s.accounts = pg, pg
		s.checks["postgres"] = pg
		s.closers = append(s.closers, pg.Close)

	case "sqlite":
		log.Info().Str("path", cfg.SQLitePath).Msg("[STORE] Using SQLite storage")
		sq, err := sqlitestore.NewStore(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, errors.Wrap(err, "initializing SQLite store")
		}
		s.bots, s.accounts = sq, sq
		s.checks["sqlite"] = sq
		s.closers = append(s.closers, func() { _ = sq.Close() })

	default:
		log.Info().Msg("[STORE] Using in-memory storage")
		s.bots = memstore.NewBotStore()
		s.accounts = memstore.NewAccountStore()
	}
	return s, nil
}
