package repository

import (
	"context"
	"database/sql"
	"fmt"

	"argos-engine/internal/models"

	"github.com/Masterminds/squirrel"
	"go.uber.org/zap"
)

// SQLiteTransactionRepository reads the ledger from a local SQLite file.
type SQLiteTransactionRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewSQLiteTransactionRepository(db *sql.DB, logger *zap.Logger) *SQLiteTransactionRepository {
	return &SQLiteTransactionRepository{
		db:     db,
		logger: logger,
	}
}

func (r *SQLiteTransactionRepository) FetchRecent(ctx context.Context, limit int) ([]models.RawTransaction, error) {
	query, args, err := recentTransactionsQuery(limit, squirrel.Question)
	if err != nil {
		return nil, fmt.Errorf("failed to build ledger query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	var transactions []models.RawTransaction
	for rows.Next() {
		var (
			tx     models.RawTransaction
			date   any
			amount string
		)
		if err := rows.Scan(
			&tx.ID, &date, &tx.Merchant, &tx.Category, &amount, &tx.Currency, &tx.BankName, &tx.Source,
		); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		if b, ok := date.([]byte); ok {
			date = string(b)
		}
		tx.Date = date
		tx.Amount = amount
		transactions = append(transactions, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transactions: %w", err)
	}

	r.logger.Debug("Fetched transactions", zap.Int("count", len(transactions)))
	return transactions, nil
}

func (r *SQLiteTransactionRepository) CreateBatch(ctx context.Context, transactions []models.RawTransaction) error {
	if len(transactions) == 0 {
		return nil
	}

	query, args, err := insertTransactionsQuery(transactions, squirrel.Question, isoDate)
	if err != nil {
		return fmt.Errorf("failed to build insert: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to insert transactions: %w", err)
	}
	return nil
}
