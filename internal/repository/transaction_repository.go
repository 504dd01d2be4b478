package repository

import (
	"context"
	"fmt"

	"argos-engine/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// TransactionRepository reads the ledger from PostgreSQL.
type TransactionRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewTransactionRepository(db *pgxpool.Pool, logger *zap.Logger) *TransactionRepository {
	return &TransactionRepository{
		db:     db,
		logger: logger,
	}
}

// FetchRecent returns up to limit transactions, newest first.
func (r *TransactionRepository) FetchRecent(ctx context.Context, limit int) ([]models.RawTransaction, error) {
	sql, args, err := recentTransactionsQuery(limit, squirrel.Dollar)
	if err != nil {
		return nil, fmt.Errorf("failed to build ledger query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
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

func (r *TransactionRepository) CreateBatch(ctx context.Context, transactions []models.RawTransaction) error {
	if len(transactions) == 0 {
		return nil
	}

	sql, args, err := insertTransactionsQuery(transactions, squirrel.Dollar, passDate)
	if err != nil {
		return fmt.Errorf("failed to build insert: %w", err)
	}

	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("failed to insert transactions: %w", err)
	}
	return nil
}
