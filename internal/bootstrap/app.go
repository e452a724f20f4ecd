package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"aichat-backend/internal/ai"
	appsvc "aichat-backend/internal/app"
	"aichat-backend/internal/cache"
	"aichat-backend/internal/config"
	"aichat-backend/internal/pkg/logger"
	"aichat-backend/internal/pkg/metrics"
	mongoClient "aichat-backend/internal/platform/mongo"
	mysqlClient "aichat-backend/internal/platform/mysql"
	redisClient "aichat-backend/internal/platform/redis"
	"aichat-backend/internal/repository"
	"aichat-backend/internal/repository/memory"
	mongorepo "aichat-backend/internal/repository/mongo"
	mysqlrepo "aichat-backend/internal/repository/mysql"
)

type App struct {
	Config      *config.Config
	Logger      *zap.Logger
	Metrics     *metrics.Metrics
	Redis       *redis.Client
	AuthService *appsvc.AuthService
	ChatService *appsvc.ChatService
	RateLimiter *cache.RateLimiter

	// HealthChecks maps a dependency name to its probe.
	HealthChecks map[string]func(context.Context) error
	StartedAt    time.Time

	closers []func() error
}

// Stores bundles the selected persistence backend.
type Stores struct {
	Users repository.UserStore
	Chats repository.ChatStore
	Close func() error
}

func New(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config failed: %w", err)
	}

	log, err := logger.New(cfg.App.Env)
	if err != nil {
		return nil, fmt.Errorf("init logger failed: %w", err)
	}

	stores, err := openStores(ctx, cfg)
	if err != nil {
		return nil, err
	}

	redisCli, err := redisClient.New(ctx, cfg.Redis, cfg.App.Name)
	if err != nil {
		_ = stores.Close()
		return nil, err
	}

	llm, err := ai.New(ai.Config{
		Provider:     cfg.LLM.Provider,
		BaseURL:      cfg.LLM.BaseURL,
		APIKey:       cfg.LLM.APIKey,
		Model:        cfg.LLM.Model,
		SystemPrompt: cfg.LLM.SystemPrompt,
		Timeout:      time.Duration(cfg.LLM.TimeoutSeconds) * time.Second,
	})
	if err != nil {
		_ = redisCli.Close()
		_ = stores.Close()
		return nil, fmt.Errorf("init llm client failed: %w", err)
	}

	log.Info("bootstrap complete",
		zap.String("storage", cfg.Storage.Driver),
		zap.String("llm_provider", cfg.LLM.Provider),
		zap.String("llm_model", cfg.LLM.Model),
	)
	return Assemble(cfg, log, stores, redisCli, llm), nil
}

// Assemble wires services and middleware dependencies from already opened
// clients. The returned App owns stores and redisCli.
func Assemble(cfg *config.Config, log *zap.Logger, stores Stores, redisCli *redis.Client, llm ai.Client) *App {
	m := metrics.New("aichat")
	denylist := cache.NewTokenDenylist(redisCli)

	app := &App{
		Config:  cfg,
		Logger:  log,
		Metrics: m,
		Redis:   redisCli,
		AuthService: appsvc.NewAuthService(
			stores.Users,
			denylist,
			cfg.Auth.JWTSecret,
			time.Duration(cfg.Auth.JWTExpireMinute)*time.Minute,
		),
		ChatService: appsvc.NewChatService(
			stores.Chats,
			ai.Instrument(llm, cfg.LLM.Provider, m.GatewayCalls),
			cfg.LLM.MaxHistory,
		),
		HealthChecks: map[string]func(context.Context) error{
			"redis": denylist.Ping,
		},
		StartedAt: time.Now(),
	}
	if cfg.RateLimit.Enabled {
		app.RateLimiter = cache.NewRateLimiter(redisCli, cfg.RateLimit.AuthLimit, time.Duration(cfg.RateLimit.WindowSeconds)*time.Second)
	}
	if p, ok := stores.Chats.(repository.Pinger); ok {
		app.HealthChecks[cfg.Storage.Driver] = p.Ping
	}

	if stores.Close != nil {
		app.closers = append(app.closers, stores.Close)
	}
	app.closers = append(app.closers, redisCli.Close, func() error {
		_ = log.Sync()
		return nil
	})
	return app
}

func openStores(ctx context.Context, cfg *config.Config) (Stores, error) {
	switch cfg.Storage.Driver {
	case config.DriverMongo:
		db, err := mongoClient.New(ctx, cfg.Mongo.URI, cfg.Mongo.Database)
		if err != nil {
			return Stores{}, err
		}
		disconnect := func() error {
			closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return db.Client().Disconnect(closeCtx)
		}
		if err := mongorepo.EnsureIndexes(ctx, db); err != nil {
			_ = disconnect()
			return Stores{}, err
		}
		return Stores{
			Users: mongorepo.NewUserRepository(db),
			Chats: mongorepo.NewChatRepository(db),
			Close: disconnect,
		}, nil

	case config.DriverMySQL:
		db, err := mysqlClient.New(ctx, cfg.MySQLDSN())
		if err != nil {
			return Stores{}, err
		}
		if err := mysqlrepo.Migrate(db); err != nil {
			_ = closeGorm(db)
			return Stores{}, fmt.Errorf("auto migrate tables failed: %w", err)
		}
		return Stores{
			Users: mysqlrepo.NewUserRepository(db),
			Chats: mysqlrepo.NewChatRepository(db),
			Close: func() error { return closeGorm(db) },
		}, nil

	case config.DriverMemory:
		return Stores{
			Users: memory.NewUserRepository(),
			Chats: memory.NewChatRepository(),
			Close: func() error { return nil },
		}, nil

	default:
		return Stores{}, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}

func closeGorm(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (a *App) Close() error {
	var errs []error
	for _, closeFn := range a.closers {
		if err := closeFn(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
