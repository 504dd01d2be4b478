package repository

import (
	"fmt"
	"time"

	"argos-engine/internal/models"

	"github.com/Masterminds/squirrel"
)

const transactionTable = `"Transaction"`

// These are the columns of the ledger table as the bookkeeping app creates
// it. It has no payment method column, so relational rows leave it empty.
// Amount is read as text so the decimal value survives until normalization.
var ledgerColumns = []string{
	"id",
	"date",
	"merchant",
	"category",
	"CAST(amount AS TEXT) AS amount",
	"COALESCE(currency, '') AS currency",
	`COALESCE("bankName", '') AS "bankName"`,
	"COALESCE(source, '') AS source",
}

var insertColumns = []string{"id", "date", "merchant", "category", "amount", "currency", `"bankName"`, "source"}

func recentTransactionsQuery(limit int, format squirrel.PlaceholderFormat) (string, []interface{}, error) {
	if limit <= 0 {
		return "", nil, fmt.Errorf("invalid limit %d", limit)
	}
	return squirrel.Select(ledgerColumns...).
		From(transactionTable).
		OrderBy("date DESC", "id").
		Limit(uint64(limit)).
		PlaceholderFormat(format).
		ToSql()
}

func insertTransactionsQuery(transactions []models.RawTransaction, format squirrel.PlaceholderFormat, dateArg func(any) any) (string, []interface{}, error) {
	builder := squirrel.Insert(transactionTable).
		Columns(insertColumns...).
		PlaceholderFormat(format)

	for _, tx := range transactions {
		builder = builder.Values(
			tx.ID, dateArg(tx.Date), tx.Merchant, tx.Category, tx.Amount, tx.Currency, tx.BankName, tx.Source,
		)
	}

	// Seeding the same fixture twice must not fail on existing ids.
	return builder.Suffix("ON CONFLICT (id) DO NOTHING").ToSql()
}

func passDate(v any) any {
	return v
}

// isoDate stores dates as YYYY-MM-DD text, which sorts correctly in SQLite.
func isoDate(v any) any {
	switch d := v.(type) {
	case time.Time:
		return d.Format("2006-01-02")
	case *time.Time:
		if d == nil {
			return nil
		}
		return d.Format("2006-01-02")
	default:
		return v
	}
}
