package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/orris-inc/passage/internal/infrastructure/migration"
	"github.com/orris-inc/passage/internal/interfaces/cli/bootstrap"
	"github.com/orris-inc/passage/internal/shared/goroutine"
	"github.com/orris-inc/passage/internal/shared/version"
)

var (
	env         string
	configPath  string
	autoMigrate bool
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "server",
		Short: "Start the HTTP server and background sweeps",
		Long:  `Serve client profiles, run the auto-renew, alert and device cleanup sweeps, and apply family sync events from Redis.`,
		RunE:  run,
	}

	cmd.Flags().StringVarP(&env, "env", "e", "production", "Environment (development, test, production)")
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to config file (default: ./configs/config.yaml)")
	cmd.Flags().BoolVar(&autoMigrate, "auto-migrate", false, "Create or update tables on startup")

	return cmd
}

func run(cmd *cobra.Command, args []string) error {
	if envVar := os.Getenv("ENV"); envVar != "" {
		env = envVar
	}

	rt, err := bootstrap.Init(bootstrap.Options{
		Env:        mapEnvToGinMode(env),
		ConfigPath: configPath,
		WithRedis:  true,
	})
	if err != nil {
		return err
	}
	defer rt.Close()

	log := rt.Logger
	cfg := rt.Config
	log.Infow("starting server",
		"version", version.String(),
		"environment", env,
		"auto_migrate", autoMigrate,
	)

	if autoMigrate {
		if err := migration.NewManager(false).Migrate(rt.DB, migration.AutoMigrateModels()...); err != nil {
			return fmt.Errorf("auto-migration failed: %w", err)
		}
	}

	gin.SetMode(cfg.Server.Mode)
	gin.DefaultWriter = io.Discard

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	goroutine.SafeGo(log, "family-sync-subscriber", func() {
		if err := rt.Container.SubscribeFamilySync(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Errorw("family sync subscriber exited", "error", err)
		}
	})

	sched, err := rt.Container.NewScheduler()
	if err != nil {
		return err
	}
	sched.Start()
	defer func() {
		if err := sched.Stop(); err != nil {
			log.Errorw("failed to stop scheduler", "error", err)
		}
	}()

	srv := &http.Server{
		Addr:         cfg.Server.GetAddr(),
		Handler:      rt.Container.NewRouter().GetEngine(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Infow("server starting", "address", srv.Addr, "mode", cfg.Server.Mode)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("failed to start server: %w", err)
		}
	case <-ctx.Done():
	}

	log.Infow("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorw("server forced to shutdown", "error", err)
		return err
	}

	log.Infow("server exited gracefully")
	return nil
}

func mapEnvToGinMode(environment string) string {
	switch environment {
	case "production", "prod", "release":
		return gin.ReleaseMode
	case "test", "testing":
		return gin.TestMode
	default:
		return gin.DebugMode
	}
}
