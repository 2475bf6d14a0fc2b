package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/matchbet/external/matchfeed"
	"github.com/riskibarqy/matchbet/internal/config"
	"github.com/riskibarqy/matchbet/internal/domain/gamesession"
	"github.com/riskibarqy/matchbet/internal/infrastructure/ratelimit"
	repocache "github.com/riskibarqy/matchbet/internal/infrastructure/repository/cache"
	"github.com/riskibarqy/matchbet/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/matchbet/internal/infrastructure/repository/postgres"
	"github.com/riskibarqy/matchbet/internal/interfaces/httpapi"
	"github.com/riskibarqy/matchbet/internal/platform/cache"
	idgen "github.com/riskibarqy/matchbet/internal/platform/id"
	"github.com/riskibarqy/matchbet/internal/platform/logging"
	"github.com/riskibarqy/matchbet/internal/usecase"
)

// App holds the HTTP server and the background pieces that share its lifetime.
type App struct {
	Server *http.Server
	Hub    *httpapi.SessionHub
	// LiveSync is nil unless the live sync loop is enabled.
	LiveSync *usecase.LiveSyncService

	closers []func() error
}

func New(ctx context.Context, cfg config.Config, logger *logging.Logger) (*App, error) {
	if cfg.HTTPAddr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	a := &App{}
	repo, err := a.sessionRepository(ctx, cfg, logger)
	if err != nil {
		_ = a.Close()
		return nil, err
	}

	games := usecase.NewGameService(repo, idgen.NewUUIDGenerator(), usecase.GameServiceConfig{
		CustomPolicy: cfg.CustomEventPolicy,
	}, logger.Named("game"))

	a.Hub = httpapi.NewSessionHub(cfg.CORSAllowedOrigins, logger.Named("stream"))
	games.SetNotifier(a.Hub)

	var liveSync *usecase.LiveSyncService
	if cfg.MatchFeedEnabled {
		feed, err := a.matchFeedClient(ctx, cfg, logger)
		if err != nil {
			_ = a.Close()
			return nil, err
		}
		liveSync = usecase.NewLiveSyncService(games, feed, usecase.LiveSyncConfig{
			Workers:      cfg.LiveSyncWorkers,
			TickInterval: cfg.LiveSyncTick,
			RetryAfter:   cfg.LiveSyncRetryAfter,
		}, logger.Named("livesync"))
		if cfg.LiveSyncEnabled {
			a.LiveSync = liveSync
		}
	}

	handler := httpapi.NewHandler(games, liveSync, a.Hub, logger)
	router := httpapi.NewRouter(handler, logger, cfg.CORSAllowedOrigins)

	a.Server = &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	return a, nil
}

// Close releases the stores and clients opened by New. The HTTP server is shut down by the caller.
func (a *App) Close() error {
	if a.Hub != nil {
		a.Hub.Close()
	}

	var err error
	for i := len(a.closers) - 1; i >= 0; i-- {
		err = crerr.CombineErrors(err, a.closers[i]())
	}
	a.closers = nil
	return err
}

func (a *App) sessionRepository(ctx context.Context, cfg config.Config, logger *logging.Logger) (gamesession.Repository, error) {
	switch cfg.StoreDriver {
	case config.StorePostgres:
		dsn := NormalizeDBURL(cfg.DBURL, cfg.DBDisablePreparedBinary)
		if cfg.DBAutoMigrate {
			if err := MigrateUp(dsn, "", logger.Named("migration")); err != nil {
				return nil, err
			}
		}

		db, err := openDB(ctx, dsn)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, db.Close)

		var repo gamesession.Repository = postgres.NewSessionRepository(db)
		if cfg.DBListCacheTTL > 0 {
			repo = repocache.NewSessionRepository(repo, cache.NewStore[[]gamesession.Summary](cfg.DBListCacheTTL))
		}
		if cfg.SeedDemo {
			if err := seedDemoSession(ctx, repo, cfg.CustomEventPolicy); err != nil {
				return nil, err
			}
		}
		logger.Info("session store ready",
			"driver", cfg.StoreDriver,
			"db_name", sessionStoreName(dsn),
			"list_cache_ttl", cfg.DBListCacheTTL,
		)
		return repo, nil
	default:
		var seed []gamesession.Snapshot
		if cfg.SeedDemo {
			seed = append(seed, demoSession(cfg.CustomEventPolicy))
		}
		logger.Info("session store ready", "driver", config.StoreMemory, "seeded", len(seed))
		return memory.NewSessionRepository(seed...), nil
	}
}

func (a *App) matchFeedClient(ctx context.Context, cfg config.Config, logger *logging.Logger) (*matchfeed.Client, error) {
	var limiter matchfeed.RateLimiter = ratelimit.Noop{}
	if cfg.RedisEnabled {
		redisCfg := ratelimit.RedisConfig{
			Addr:       cfg.RedisAddr,
			Password:   cfg.RedisPassword,
			DB:         cfg.RedisDB,
			TLSEnabled: cfg.RedisTLSEnabled,
			Limit:      cfg.RateLimitRequests,
			Window:     cfg.RateLimitWindow,
		}
		rdb, err := ratelimit.NewRedisClient(ctx, redisCfg)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, rdb.Close)
		limiter = ratelimit.NewRedisLimiter(rdb, redisCfg)
	}

	var responses *cache.Store[[]byte]
	if cfg.MatchFeedCacheTTL > 0 {
		responses = cache.NewStore[[]byte](cfg.MatchFeedCacheTTL)
	}

	return matchfeed.NewClient(matchfeed.ClientConfig{
		BaseURL:        cfg.MatchFeedBaseURL,
		Token:          cfg.MatchFeedToken,
		Timeout:        cfg.MatchFeedTimeout,
		MaxRetries:     cfg.MatchFeedMaxRetries,
		Logger:         logger.Named("matchfeed"),
		CircuitBreaker: cfg.MatchFeedCircuit,
		RateLimiter:    limiter,
		Cache:          responses,
	}), nil
}

func demoSession(policy gamesession.CustomPolicy) gamesession.Snapshot {
	snap := memory.SeedDemoSession(time.Now())
	if policy != "" {
		snap.Policy = policy
	}
	return snap
}

// seedDemoSession stores the demo session unless one with the same id already exists.
func seedDemoSession(ctx context.Context, repo gamesession.Repository, policy gamesession.CustomPolicy) error {
	snap := demoSession(policy)
	if _, err := repo.Get(ctx, snap.ID); err == nil {
		return nil
	} else if !crerr.Is(err, gamesession.ErrNotFound) {
		return fmt.Errorf("check demo session: %w", err)
	}
	if err := repo.Save(ctx, snap); err != nil {
		return fmt.Errorf("seed demo session: %w", err)
	}
	return nil
}
