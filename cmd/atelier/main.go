package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/inkworks/atelier/internal/api"
	"github.com/inkworks/atelier/internal/catalog"
	"github.com/inkworks/atelier/internal/config"
	"github.com/inkworks/atelier/internal/messaging"
	"github.com/inkworks/atelier/internal/runtime"
	pgstore "github.com/inkworks/atelier/internal/store"
	"github.com/inkworks/atelier/internal/writer"
)

func main() {
	_ = godotenv.Load()

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "configs/atelier.json"
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config %s: %v\n", cfgPath, err)
		os.Exit(1)
	}

	logger := newLogger(cfg.Server.LogLevel)
	defer logger.Sync()

	logger.Info("Starting Atelier...", zap.String("config", cfgPath))

	// Role catalog: built-ins plus any external catalog files.
	configs := catalog.DefaultConfigs()
	if cfg.CatalogDir != "" {
		external, err := catalog.LoadDir(cfg.CatalogDir)
		if err != nil {
			logger.Fatal("load catalog", zap.String("dir", cfg.CatalogDir), zap.Error(err))
		}
		configs = external.MergedConfigs()
		logger.Info("Loaded external catalog",
			zap.String("dir", cfg.CatalogDir),
			zap.Int("roles", len(external.Roles)))
	}

	// Optional persistence.
	var store *pgstore.Store
	if cfg.Database.Postgres.DSN != "" {
		ps, pgErr := pgstore.New(cfg.Database.Postgres.DSN, logger)
		if pgErr != nil {
			logger.Warn("PostgreSQL unavailable, running without persistence", zap.Error(pgErr))
		} else {
			if mErr := ps.Migrate(context.Background(), "migrations"); mErr != nil {
				logger.Fatal("migration failed", zap.Error(mErr))
			}
			store = ps
			defer store.Close()
		}
	}

	// Optional messaging.
	var bus *messaging.Bus
	if cfg.Database.Redis.URL != "" {
		b, busErr := messaging.NewBus(cfg.Database.Redis.URL, logger)
		if busErr != nil {
			logger.Warn("Redis unavailable, running without messaging", zap.Error(busErr))
		} else {
			bus = b
			defer bus.Close()
		}
	}

	registry := runtime.New(configs, writer.ForRole, bus, logger)
	if store != nil {
		registry.SetRunRecorder(store)
	}
	if err := catalog.RegisterDefaults(registry, logger); err != nil {
		logger.Fatal("bootstrap catalog", zap.Error(err))
	}

	// Persist the effective catalog so external tooling can inspect it.
	if store != nil {
		ctx := context.Background()
		for _, rc := range configs {
			if err := store.SaveConfig(ctx, rc); err != nil {
				logger.Warn("persist role config", zap.String("role", rc.Role), zap.Error(err))
			}
		}
		for _, name := range registry.ListTeams() {
			if team, ok := registry.Team(name); ok {
				if err := store.SaveTeam(ctx, team); err != nil {
					logger.Warn("persist team", zap.String("team", name), zap.Error(err))
				}
			}
		}
		for _, name := range registry.ListWorkflows("") {
			if w, ok := registry.Workflow(name); ok {
				if err := store.SaveWorkflow(ctx, w.Meta()); err != nil {
					logger.Warn("persist workflow", zap.String("workflow", name), zap.Error(err))
				}
			}
		}
	}

	handler := api.NewHandler(registry, logger)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: handler.Router(),
	}

	go func() {
		logger.Info("Atelier listening", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down Atelier...")
	srv.Shutdown(context.Background())
	registry.Shutdown()
}

func newLogger(level string) *zap.Logger {
	lvl := zapcore.InfoLevel
	if parsed, err := zapcore.ParseLevel(level); err == nil {
		lvl = parsed
	}
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	logger, _ := cfg.Build()
	return logger
}
