package container

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/gdugdh24/match-matrix-backend/internal/config"
	"github.com/gdugdh24/match-matrix-backend/internal/delivery/http"
	"github.com/gdugdh24/match-matrix-backend/internal/delivery/http/handler"
	"github.com/gdugdh24/match-matrix-backend/internal/delivery/http/middleware"
	"github.com/gdugdh24/match-matrix-backend/internal/infrastructure/cache"
	"github.com/gdugdh24/match-matrix-backend/internal/infrastructure/database"
	"github.com/gdugdh24/match-matrix-backend/internal/infrastructure/gemini"
	"github.com/gdugdh24/match-matrix-backend/internal/infrastructure/lock"
	"github.com/gdugdh24/match-matrix-backend/internal/infrastructure/scheduler"
	"github.com/gdugdh24/match-matrix-backend/internal/infrastructure/server"
	"github.com/gdugdh24/match-matrix-backend/internal/repository"
	"github.com/gdugdh24/match-matrix-backend/internal/repository/memory"
	"github.com/gdugdh24/match-matrix-backend/internal/repository/postgres"
	"github.com/gdugdh24/match-matrix-backend/internal/usecase/export"
	"github.com/gdugdh24/match-matrix-backend/internal/usecase/matching"
	"github.com/gdugdh24/match-matrix-backend/internal/usecase/registration"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
)

// Container holds all application dependencies
type Container struct {
	Config    *config.Config
	DB        *sqlx.DB
	Redis     *redis.Client
	Server    *server.Server
	Gemini    *gemini.GeminiClient
	Engine    *matching.Engine
	Scheduler *scheduler.AutoFill
	Logger    *slog.Logger
}

type repositories struct {
	participants repository.ParticipantRepository
	matches      repository.MatchRepository
	whitelist    repository.WhitelistRepository
}

// NewContainer creates a new dependency injection container
func NewContainer(ctx context.Context, cfg *config.Config, logger *slog.Logger) (_ *Container, err error) {
	c := &Container{Config: cfg, Logger: logger}
	defer func() {
		if err != nil {
			_ = c.Close()
		}
	}()

	var repos repositories
	switch cfg.Storage.Type {
	case config.StorageTypePostgres:
		c.DB, err = database.NewPostgresDB(ctx, &cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		repos = repositories{
			participants: postgres.NewParticipantRepository(c.DB),
			matches:      postgres.NewMatchRepository(c.DB),
			whitelist:    postgres.NewWhitelistRepository(c.DB),
		}
	default:
		logger.Warn("using in-memory storage, data is lost on restart")
		repos = repositories{
			participants: memory.NewParticipantRepository(),
			matches:      memory.NewMatchRepository(),
			whitelist:    memory.NewWhitelistRepository(),
		}
	}

	opts := matching.Options{
		Strategy:       newStrategy(cfg.Matching.Strategy),
		Scorer:         newScorer(cfg.Matching.Scorer, cfg.Matching.ScoreMin, cfg.Matching.ScoreMax),
		OnDemandScorer: newScorer(cfg.Matching.Scorer, cfg.Matching.OnDemandScoreMin, cfg.Matching.OnDemandScoreMax),
		Logger:         logger,
	}

	if cfg.RedisEnabled() {
		c.Redis, err = database.NewRedisClient(ctx, &cfg.Redis)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize redis: %w", err)
		}
		opts.Locker = lock.NewRedisLocker(c.Redis, cfg.Matching.LockTTL, cfg.Matching.LockWait)
		opts.Cache = cache.NewExplanationCache(c.Redis, cfg.Matching.ExplanationTTL)
	}

	if cfg.GeminiAPIKey != "" {
		geminiClient, gerr := gemini.NewGeminiClient(ctx, cfg.GeminiAPIKey)
		if gerr != nil {
			// explanations fall back to the template
			logger.Warn("failed to initialize gemini client", "error", gerr)
		} else {
			c.Gemini = geminiClient
			opts.Explainer = geminiClient
		}
	}

	c.Engine = matching.NewEngine(repos.participants, repos.matches, opts)

	registrationUseCase := registration.NewRegistrationUseCase(
		repos.participants,
		repos.whitelist,
		c.Engine,
		cfg.Registration.RequireWhitelist,
		logger,
	)
	exportUseCase := export.NewExportUseCase(c.Engine)

	if cfg.Matching.AutoFillInterval > 0 {
		c.Scheduler, err = scheduler.NewAutoFill(c.Engine, cfg.Matching.AutoFillInterval, logger)
		if err != nil {
			return nil, err
		}
	}

	router := http.NewRouter(
		handler.NewParticipantHandler(registrationUseCase),
		handler.NewMatchHandler(c.Engine),
		handler.NewAdminHandler(c.Engine, registrationUseCase, exportUseCase),
		middleware.NewAccessLogMiddleware(logger),
	)

	c.Server = server.NewServer(&cfg.Server, router.Setup(), logger)
	return c, nil
}

func newStrategy(name string) matching.Strategy {
	if name == "greedy" {
		return matching.GreedyStrategy{}
	}
	return matching.NewRandomStrategy(nil)
}

func newScorer(name string, min, max int) matching.Scorer {
	if name == "similarity" {
		return matching.SimilarityScorer{}
	}
	return matching.NewRandomScorer(min, max, nil)
}

// Close stops background jobs and closes all connections
func (c *Container) Close() error {
	var errs []error

	if c.Scheduler != nil {
		if err := c.Scheduler.Shutdown(); err != nil {
			errs = append(errs, fmt.Errorf("failed to stop scheduler: %w", err))
		}
	}

	if c.Gemini != nil {
		if err := c.Gemini.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close gemini client: %w", err))
		}
	}

	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close redis: %w", err))
		}
	}

	if c.DB != nil {
		if err := c.DB.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		}
	}

	return errors.Join(errs...)
}
