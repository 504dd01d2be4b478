package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"argos-engine/internal/api"
	"argos-engine/internal/api/handlers"
	"argos-engine/internal/chart"
	"argos-engine/internal/classifier"
	"argos-engine/internal/fixture"
	"argos-engine/internal/ledger"
	"argos-engine/internal/llm"
	"argos-engine/internal/migrations"
	"argos-engine/internal/planner"
	"argos-engine/internal/repository"
	"argos-engine/internal/service"
	"argos-engine/pkg/config"
	"argos-engine/pkg/logger"
	"argos-engine/pkg/postgres"
	"argos-engine/pkg/sqlite"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// @title Argos Engine API
// @version 1.0
// @description Natural-language questions over a transaction ledger
// @termsOfService http://swagger.io/terms/

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:5001
// @BasePath /

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logger.Level, cfg.Logger.Format); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	appLogger := logger.Get()
	logger.Info("Starting Argos engine",
		zap.String("data_source", cfg.Source.Kind),
		zap.String("llm_provider", cfg.LLM.Provider),
		zap.Bool("charts", cfg.Charts.Enabled),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Ledger
	source, closeSource := buildSource(ctx, cfg, appLogger)
	defer closeSource()

	store := ledger.NewStore(source, ledger.NewNormalizer(logger.Named("ledger")), cfg.Source.Limit, logger.Named("ledger"))
	if res, err := store.Refresh(ctx); err != nil {
		logger.Warn("Initial ledger load failed, serving empty ledger", zap.Error(err))
	} else {
		logger.Info("Ledger ready", zap.Int("rows", res.Rows))
	}

	// Planner
	backend, closeBackend, err := buildBackend(ctx, cfg, appLogger)
	if err != nil {
		logger.Fatal("Failed to initialize LLM backend", zap.Error(err))
	}
	defer closeBackend()

	var renderer planner.ChartRenderer
	if cfg.Charts.Enabled {
		renderer = chart.NewRenderer(cfg.Charts.Dir, logger.Named("chart"))
	}
	executor := planner.NewExecutor(renderer, cfg.Charts.Enabled, logger.Named("executor"))
	queryPlanner := planner.New(backend, executor, cfg.LLM.MaxSteps, logger.Named("planner"))

	// Services
	askService := service.NewAskService(queryPlanner, store, classifier.New(cfg.Charts.Enabled, logger.Named("classifier")), appLogger)
	trendService := service.NewTrendService(store)
	ledgerService := service.NewLedgerService(store, cfg.Source.Kind, appLogger)

	// Handlers
	app := api.SetupRouter(api.Handlers{
		Ask:    handlers.NewAskHandler(askService, appLogger),
		Ledger: handlers.NewLedgerHandler(trendService, ledgerService, appLogger),
		Chart:  handlers.NewChartHandler(cfg.Charts.Dir, appLogger),
	}, cfg, appLogger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return store.Run(gctx, cfg.Source.RefreshInterval)
	})
	g.Go(func() error {
		addr := ":" + cfg.Server.Port
		logger.Info("Server starting", zap.String("address", addr))
		return app.Listen(addr)
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down server")
		return app.ShutdownWithTimeout(10 * time.Second)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Server stopped with error", zap.Error(err))
	}
}

// buildSource wires the configured data source. A source that cannot be set
// up is replaced by one that always fails, so the service still starts and
// answers from the empty ledger.
func buildSource(ctx context.Context, cfg *config.Config, appLogger *zap.Logger) (ledger.Source, func()) {
	noop := func() {}

	switch cfg.Source.Kind {
	case config.SourcePostgres:
		pool, err := postgres.NewPool(ctx, &cfg.Database, appLogger)
		if err != nil {
			appLogger.Error("Failed to connect to database", zap.Error(err))
			return ledger.UnavailableSource{Err: err}, noop
		}
		return repository.NewTransactionRepository(pool, appLogger), pool.Close

	case config.SourceSQLite:
		db, err := sqlite.Open(ctx, cfg.Source.SQLitePath, appLogger)
		if err != nil {
			appLogger.Error("Failed to open SQLite database", zap.Error(err))
			return ledger.UnavailableSource{Err: err}, noop
		}
		if err := migrations.Up(db, migrations.DialectSQLite, appLogger); err != nil {
			appLogger.Error("Failed to migrate SQLite database", zap.Error(err))
			_ = db.Close()
			return ledger.UnavailableSource{Err: err}, noop
		}
		return repository.NewSQLiteTransactionRepository(db, appLogger), func() { _ = db.Close() }

	default:
		gen := fixture.NewGenerator(cfg.Source.SyntheticRows, cfg.Source.SyntheticSeed)
		return gen, noop
	}
}

func buildBackend(ctx context.Context, cfg *config.Config, appLogger *zap.Logger) (llm.Backend, func(), error) {
	noop := func() {}
	retryLogger := logger.Named("llm")

	switch cfg.LLM.Provider {
	case config.ProviderGemini:
		b, err := llm.NewGeminiBackend(ctx, &cfg.Gemini, retryLogger)
		if err != nil {
			return nil, noop, err
		}
		return llm.WithRetry(b, cfg.LLM.Timeout, retryLogger), noop, nil

	case config.ProviderGigaChat:
		b, err := llm.NewGigaChatBackend(ctx, &cfg.GigaChat, retryLogger)
		if err != nil {
			return nil, noop, err
		}
		return llm.WithRetry(b, cfg.LLM.Timeout, retryLogger), func() { _ = b.Close() }, nil

	default:
		appLogger.Info("Using offline keyword backend")
		return llm.WithRetry(llm.NewKeywordBackend(retryLogger), cfg.LLM.Timeout, retryLogger), noop, nil
	}
}
