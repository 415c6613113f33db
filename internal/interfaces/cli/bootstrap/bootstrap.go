// Package bootstrap loads configuration and opens the shared connections every
// command needs.
package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/orris-inc/passage/internal/infrastructure/config"
	"github.com/orris-inc/passage/internal/infrastructure/database"
	"github.com/orris-inc/passage/internal/interfaces/container"
	"github.com/orris-inc/passage/internal/shared/biztime"
	sharedConfig "github.com/orris-inc/passage/internal/shared/config"
	"github.com/orris-inc/passage/internal/shared/logger"
)

type Options struct {
	Env        string
	ConfigPath string
	// WithRedis connects to Redis for the event bus, sweep locks and rate limiting.
	WithRedis bool
	// InlineFamilySync runs family sync on the caller instead of the bus.
	InlineFamilySync bool
}

// Runtime is the set of live connections behind one command invocation.
type Runtime struct {
	Config    *config.Config
	Logger    logger.Interface
	DB        *gorm.DB
	Redis     *redis.Client
	Container *container.Container
}

func Init(opts Options) (*Runtime, error) {
	cfg, err := config.Load(opts.Env, opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if err := logger.Init(&cfg.Logger, cfg.Server.Mode == "debug"); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	log := logger.NewLogger()

	if err := biztime.Init(cfg.Scheduler.Timezone); err != nil {
		return nil, fmt.Errorf("failed to initialize business timezone: %w", err)
	}

	if err := database.Init(&cfg.Database); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	rt := &Runtime{Config: cfg, Logger: log, DB: database.Get()}

	if opts.WithRedis {
		client, err := ConnectRedis(context.Background(), &cfg.Redis)
		if err != nil {
			rt.Close()
			return nil, err
		}
		rt.Redis = client
	}

	var containerOpts []container.Option
	if opts.InlineFamilySync {
		containerOpts = append(containerOpts, container.WithInlineFamilySync())
	}
	c, err := container.New(cfg, rt.DB, rt.Redis, log, containerOpts...)
	if err != nil {
		rt.Close()
		return nil, err
	}
	rt.Container = c

	return rt, nil
}

// InitDatabaseOnly loads configuration and opens the database, nothing else.
func InitDatabaseOnly(env, configPath string) (*config.Config, logger.Interface, error) {
	cfg, err := config.Load(env, configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := logger.Init(&cfg.Logger, cfg.Server.Mode == "debug"); err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	if err := database.Init(&cfg.Database); err != nil {
		return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	return cfg, logger.NewLogger(), nil
}

// ConnectRedis opens a client and verifies it with a ping.
func ConnectRedis(ctx context.Context, cfg *sharedConfig.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.GetAddr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.GetAddr(), err)
	}
	return client, nil
}

func (r *Runtime) Close() {
	if r.Redis != nil {
		if err := r.Redis.Close(); err != nil {
			r.Logger.Warnw("failed to close redis client", "error", err)
		}
	}
	if err := database.Close(); err != nil {
		r.Logger.Warnw("failed to close database", "error", err)
	}
}
