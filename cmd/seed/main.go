package main

import (
	"context"
	"log"

	"argos-engine/internal/fixture"
	"argos-engine/internal/migrations"
	"argos-engine/internal/models"
	"argos-engine/internal/repository"
	"argos-engine/pkg/config"
	"argos-engine/pkg/logger"
	"argos-engine/pkg/postgres"
	"argos-engine/pkg/sqlite"

	"github.com/dustin/go-humanize"
	"github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"
)

// Postgres caps a statement at 65535 parameters; eight columns per row keeps
// this well below it.
const batchSize = 500

type batchWriter interface {
	CreateBatch(ctx context.Context, transactions []models.RawTransaction) error
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Init(cfg.Logger.Level, cfg.Logger.Format); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()
	appLogger := logger.Get()

	ctx := context.Background()

	var writer batchWriter
	switch cfg.Source.Kind {
	case config.SourcePostgres:
		pool, err := postgres.NewPool(ctx, &cfg.Database, appLogger)
		if err != nil {
			logger.Fatal("Failed to connect to database", zap.Error(err))
		}
		defer pool.Close()

		db := stdlib.OpenDBFromPool(pool)
		defer db.Close()
		if err := migrations.Up(db, migrations.DialectPostgres, appLogger); err != nil {
			logger.Fatal("Failed to migrate database", zap.Error(err))
		}
		writer = repository.NewTransactionRepository(pool, appLogger)

	case config.SourceSQLite:
		db, err := sqlite.Open(ctx, cfg.Source.SQLitePath, appLogger)
		if err != nil {
			logger.Fatal("Failed to open SQLite database", zap.Error(err))
		}
		defer db.Close()

		if err := migrations.Up(db, migrations.DialectSQLite, appLogger); err != nil {
			logger.Fatal("Failed to migrate database", zap.Error(err))
		}
		writer = repository.NewSQLiteTransactionRepository(db, appLogger)

	default:
		logger.Fatal("Seeding needs DATA_SOURCE=postgres or DATA_SOURCE=sqlite", zap.String("data_source", cfg.Source.Kind))
	}

	rows := fixture.NewGenerator(cfg.Source.SyntheticRows, cfg.Source.SyntheticSeed).Generate()
	logger.Info("Starting database seeding...", zap.Int("rows", len(rows)))

	for start := 0; start < len(rows); start += batchSize {
		end := min(start+batchSize, len(rows))
		if err := writer.CreateBatch(ctx, rows[start:end]); err != nil {
			logger.Fatal("Failed to insert transactions", zap.Int("offset", start), zap.Error(err))
		}
	}

	logger.Info("Database seeding completed successfully!",
		zap.String("rows", humanize.Comma(int64(len(rows)))),
		zap.String("data_source", cfg.Source.Kind),
	)
}
