package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	httpadapter "github.com/PabloGalante/tubot/internal/adapters/http"
	"github.com/PabloGalante/tubot/internal/adapters/llm"
	"github.com/PabloGalante/tubot/internal/adapters/ratelimit"
	memstore "github.com/PabloGalante/tubot/internal/adapters/storage/memory"
	redisstore "github.com/PabloGalante/tubot/internal/adapters/storage/redis"
	"github.com/PabloGalante/tubot/internal/app/auth"
	"github.com/PabloGalante/tubot/internal/app/bots"
	"github.com/PabloGalante/tubot/internal/app/chat"
	"github.com/PabloGalante/tubot/internal/config"
	"github.com/PabloGalante/tubot/internal/domain"
	"github.com/PabloGalante/tubot/internal/observability"
)

const shutdownTimeout = 30 * time.Second

func main() {
	if err := run(); err != nil {
		observability.Logger().Fatal().Err(err).Msg("tubot-api stopped")
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	observability.Init(cfg.IsDevelopment(), cfg.LogLevel)
	log := observability.Logger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	llmClient, err := llm.FromConfig(ctx, cfg)
	if err != nil {
		return err
	}

	st, err := openStores(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.close()

	// Redis is optional: token denylist and a shared rate limit window.
	var (
		denylist domain.TokenDenylist = memstore.NewDenylist()
		limiter  ratelimit.Limiter
	)
	window := time.Minute
	if cfg.RedisURL != "" {
		rdb, err := redisstore.Connect(ctx, cfg.RedisURL)
		if err != nil {
			return err
		}
		defer rdb.Close()
		log.Info().Msg("[REDIS] Using Redis for token denylist and rate limits")

		dl := redisstore.NewDenylist(rdb)
		denylist = dl
		st.checks["redis"] = dl
		if cfg.ChatRateLimit > 0 {
			limiter = ratelimit.NewRedisLimiter(rdb, "tubot:ratelimit:", cfg.ChatRateLimit, window)
		}
	} else if cfg.ChatRateLimit > 0 {
		limiter = ratelimit.NewMemoryLimiter(cfg.ChatRateLimit, window)
	}

	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL)

	handler := httpadapter.NewServer(httpadapter.Deps{
		Chat:           chat.NewService(llmClient, cfg.LLMProvider, cfg.DefaultModel),
		Bots:           bots.NewService(st.bots),
		Auth:           auth.NewService(st.accounts, denylist, tokens),
		Limiter:        limiter,
		Checks:         st.checks,
		AllowedOrigins: cfg.AllowedOrigins,
		ChatTimeout:    cfg.CompletionTimeout + 30*time.Second,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("addr", srv.Addr).Str("provider", cfg.LLMProvider).
			Str("storage", cfg.StorageBackend).Msg("TuBot API listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
