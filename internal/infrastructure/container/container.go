package container

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/gdugdh24/nearby-backend/internal/config"
	"github.com/gdugdh24/nearby-backend/internal/delivery/http"
	"github.com/gdugdh24/nearby-backend/internal/delivery/http/handler"
	"github.com/gdugdh24/nearby-backend/internal/delivery/http/middleware"
	"github.com/gdugdh24/nearby-backend/internal/infrastructure/database"
	"github.com/gdugdh24/nearby-backend/internal/infrastructure/gemini"
	"github.com/gdugdh24/nearby-backend/internal/infrastructure/scheduler"
	"github.com/gdugdh24/nearby-backend/internal/infrastructure/server"
	"github.com/gdugdh24/nearby-backend/internal/infrastructure/sessionstore"
	"github.com/gdugdh24/nearby-backend/internal/repository"
	"github.com/gdugdh24/nearby-backend/internal/repository/memory"
	"github.com/gdugdh24/nearby-backend/internal/repository/postgres"
	"github.com/gdugdh24/nearby-backend/internal/usecase/auth"
	"github.com/gdugdh24/nearby-backend/internal/usecase/feed"
	"github.com/gdugdh24/nearby-backend/internal/usecase/flow"
	"github.com/gdugdh24/nearby-backend/internal/usecase/ledger"
	"github.com/gdugdh24/nearby-backend/internal/usecase/moderation"
	"github.com/gdugdh24/nearby-backend/internal/usecase/profile"
	"github.com/gdugdh24/nearby-backend/internal/usecase/ratelimit"
	"github.com/gdugdh24/nearby-backend/internal/usecase/swipe"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
)

type repositories struct {
	tx       repository.TxManager
	profiles repository.ProfileRepository
	likes    repository.LikeRepository
	matches  repository.MatchRepository
	views    repository.ViewRepository
	reports  repository.ReportRepository
	messages repository.AdminMessageRepository
}

// Container holds all application dependencies
type Container struct {
	Config     *config.Config
	Logger     *slog.Logger
	DB         *sqlx.DB
	Redis      *redis.Client
	Gemini     *gemini.IcebreakerClient
	Scheduler  *scheduler.Scheduler
	Server     *server.Server
	Controller *flow.Controller
	Tokens     *auth.TokenUseCase
}

// NewContainer creates a new dependency injection container
func NewContainer(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Container, error) {
	c := &Container{Config: cfg, Logger: logger}

	repos, err := c.initRepositories(ctx)
	if err != nil {
		c.Close()
		return nil, err
	}

	sessions, memorySessions, err := c.initSessions(ctx)
	if err != nil {
		c.Close()
		return nil, err
	}

	// Icebreakers are optional; matches are created without them.
	var icebreaker swipe.IcebreakerSuggester
	if cfg.GeminiAPIKey != "" {
		client, err := gemini.NewIcebreakerClient(ctx, cfg.GeminiAPIKey, logger)
		if err != nil {
			logger.Warn("gemini client unavailable, icebreakers disabled", "error", err)
		} else {
			c.Gemini = client
			icebreaker = client
		}
	}

	m := &cfg.Matching

	// Initialize use cases
	profileUseCase := profile.NewProfileUseCase(
		repos.profiles,
		repos.likes,
		repos.matches,
		repos.views,
		profile.Defaults{
			SearchAgeMin:   m.DefaultSearchAgeMin,
			SearchAgeMax:   m.DefaultSearchAgeMax,
			SearchRadiusKm: m.DefaultSearchRadiusKm,
		},
		logger,
	)

	ledgerUseCase := ledger.NewLedger(repos.profiles, repos.likes, repos.views, repos.reports, logger)

	limiter := ratelimit.NewLimiter(
		repos.profiles,
		ratelimit.Policy{DailyLimit: m.DailyLikeLimit, PremiumDailyLimit: m.PremiumDailyLikeLimit},
		m.Location,
	)

	feedUseCase := feed.NewFeedUseCase(repos.profiles, ledgerUseCase, feed.RadiusPolicy(m.RadiusPolicy), logger)

	swipeUseCase := swipe.NewSwipeUseCase(
		repos.tx,
		repos.profiles,
		repos.matches,
		ledgerUseCase,
		limiter,
		icebreaker,
		swipe.Config{
			ConversationDuration:        m.ConversationDuration(),
			PremiumConversationDuration: m.PremiumConversationDuration(),
		},
		logger,
	)

	moderationUseCase := moderation.NewModerationUseCase(
		profileUseCase,
		ledgerUseCase,
		repos.profiles,
		repos.messages,
		m.Location,
		logger,
	)

	c.Controller = flow.NewController(
		profileUseCase,
		feedUseCase,
		swipeUseCase,
		ledgerUseCase,
		moderationUseCase,
		sessions,
		flow.Options{Admins: cfg.Admin.Identities, CollectInterests: m.CollectInterests},
		logger,
	)

	c.Tokens = auth.NewTokenUseCase(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.TokenTTL)

	// Background jobs
	c.Scheduler = scheduler.New(logger)
	err = c.Scheduler.Add(cfg.Sweeper.Schedule, "expire_matches", func(ctx context.Context) error {
		n, err := swipeUseCase.SweepExpired(ctx)
		if err == nil && n > 0 {
			logger.Info("expired matches deactivated", "count", n)
		}
		return err
	})
	if err != nil {
		c.Close()
		return nil, err
	}
	if memorySessions != nil {
		err = c.Scheduler.Add(cfg.Sweeper.Schedule, "session_gc", func(context.Context) error {
			if n := memorySessions.GC(); n > 0 {
				logger.Debug("expired sessions dropped", "count", n)
			}
			return nil
		})
		if err != nil {
			c.Close()
			return nil, err
		}
	}

	// Initialize handlers
	eventHandler := handler.NewEventHandler(c.Controller)
	profileHandler := handler.NewProfileHandler(profileUseCase)
	swipeHandler := handler.NewSwipeHandler(feedUseCase, swipeUseCase)
	reportHandler := handler.NewReportHandler(ledgerUseCase)
	adminHandler := handler.NewAdminHandler(moderationUseCase)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(c.Tokens)

	// Initialize router
	router := http.NewRouter(
		eventHandler,
		profileHandler,
		swipeHandler,
		reportHandler,
		adminHandler,
		authMiddleware,
		cfg.CORS.AllowedOrigins,
		logger,
	)

	c.Server = server.NewServer(&cfg.Server, router.Setup(), logger)

	logger.Info("application initialized",
		"storage", cfg.Storage.Type,
		"redis_sessions", cfg.Redis.Enabled,
		"icebreakers", icebreaker != nil,
		"radius_policy", m.RadiusPolicy,
	)
	return c, nil
}

func (c *Container) initRepositories(ctx context.Context) (*repositories, error) {
	if c.Config.Storage.Type == config.StorageMemory {
		store := memory.NewStore()
		return &repositories{
			tx:       memory.NewTxManager(store),
			profiles: memory.NewProfileRepository(store),
			likes:    memory.NewLikeRepository(store),
			matches:  memory.NewMatchRepository(store),
			views:    memory.NewViewRepository(store),
			reports:  memory.NewReportRepository(store),
			messages: memory.NewAdminMessageRepository(store),
		}, nil
	}

	db, err := database.NewPostgresDB(&c.Config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	c.DB = db
	if err := database.Migrate(ctx, db); err != nil {
		return nil, err
	}

	return &repositories{
		tx:       postgres.NewTxManager(db),
		profiles: postgres.NewProfileRepository(db),
		likes:    postgres.NewLikeRepository(db),
		matches:  postgres.NewMatchRepository(db),
		views:    postgres.NewViewRepository(db),
		reports:  postgres.NewReportRepository(db),
		messages: postgres.NewAdminMessageRepository(db),
	}, nil
}

// initSessions returns the session store. The memory store is also returned
// so its garbage collection can be scheduled.
func (c *Container) initSessions(ctx context.Context) (flow.SessionStore, *flow.MemorySessionStore, error) {
	ttl := c.Config.Flow.SessionTTL
	if !c.Config.Redis.Enabled {
		store := flow.NewMemorySessionStore(ttl)
		return store, store, nil
	}

	client, err := database.NewRedisClient(ctx, &c.Config.Redis)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize redis: %w", err)
	}
	c.Redis = client
	return sessionstore.NewRedisStore(client, ttl), nil, nil
}

// Close closes all connections
func (c *Container) Close() error {
	var errs []error

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
