package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"argos-engine/internal/apperr"
	"argos-engine/internal/models"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const DefaultCurrency = "INR"

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05-07",
	"02/01/2006",
}

var (
	ErrMissingDate   = errors.New("missing date")
	ErrMissingAmount = errors.New("missing amount")
)

// Source is anything that can hand over up to limit most-recent ledger rows.
type Source interface {
	FetchRecent(ctx context.Context, limit int) ([]models.RawTransaction, error)
}

// UnavailableSource stands in for a source that could not be set up. Every
// fetch fails with the setup error, so the store serves the empty table.
type UnavailableSource struct {
	Err error
}

func (s UnavailableSource) FetchRecent(context.Context, int) ([]models.RawTransaction, error) {
	return nil, fmt.Errorf("data source unavailable: %w", s.Err)
}

type Normalizer struct {
	logger *zap.Logger
}

func NewNormalizer(logger *zap.Logger) *Normalizer {
	return &Normalizer{logger: logger}
}

// Load fetches rows from src and normalizes them. When the source fails the
// returned table is the typed-empty table and the error is a data source error.
func (n *Normalizer) Load(ctx context.Context, src Source, limit int) (*Table, error) {
	raw, err := src.FetchRecent(ctx, limit)
	if err != nil {
		n.logger.Error("Data source unavailable, using empty ledger", zap.Error(err))
		return EmptyTable(), apperr.DataSource("ledger.Load", err)
	}
	return n.Normalize(raw), nil
}

// Normalize coerces raw rows into the canonical table. Rows whose date or
// amount cannot be coerced are dropped.
func (n *Normalizer) Normalize(raw []models.RawTransaction) *Table {
	if len(raw) == 0 {
		return EmptyTable()
	}

	rows := make([]models.Transaction, 0, len(raw))
	dropped := 0
	for i, r := range raw {
		tx, err := normalizeRow(r)
		if err != nil {
			dropped++
			n.logger.Debug("Dropping malformed ledger row",
				zap.Int("index", i),
				zap.String("id", r.ID),
				zap.Error(err),
			)
			continue
		}
		rows = append(rows, tx)
	}

	if dropped > 0 {
		n.logger.Warn("Dropped malformed ledger rows",
			zap.Int("dropped", dropped),
			zap.Int("kept", len(rows)),
		)
	}

	return &Table{rows: rows, loadedAt: time.Now()}
}

func normalizeRow(r models.RawTransaction) (models.Transaction, error) {
	date, err := CoerceDate(r.Date)
	if err != nil {
		return models.Transaction{}, fmt.Errorf("failed to coerce date: %w", err)
	}
	amount, err := CoerceAmount(r.Amount)
	if err != nil {
		return models.Transaction{}, fmt.Errorf("failed to coerce amount: %w", err)
	}

	currency := strings.ToUpper(strings.TrimSpace(r.Currency))
	if currency == "" {
		currency = DefaultCurrency
	}

	return models.Transaction{
		ID:            strings.TrimSpace(r.ID),
		Date:          date,
		Merchant:      strings.TrimSpace(r.Merchant),
		Category:      r.Category,
		Amount:        amount,
		Currency:      currency,
		BankName:      strings.TrimSpace(r.BankName),
		Source:        strings.TrimSpace(r.Source),
		PaymentMethod: strings.TrimSpace(r.PaymentMethod),
	}, nil
}

// CoerceDate converts a date representation to a calendar date at UTC midnight.
func CoerceDate(v any) (time.Time, error) {
	switch d := v.(type) {
	case time.Time:
		if d.IsZero() {
			return time.Time{}, ErrMissingDate
		}
		return calendarDate(d), nil
	case *time.Time:
		if d == nil || d.IsZero() {
			return time.Time{}, ErrMissingDate
		}
		return calendarDate(*d), nil
	case string:
		s := strings.TrimSpace(d)
		if s == "" {
			return time.Time{}, ErrMissingDate
		}
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return calendarDate(t), nil
			}
		}
		return time.Time{}, fmt.Errorf("unrecognized date %q", s)
	case nil:
		return time.Time{}, ErrMissingDate
	default:
		return time.Time{}, fmt.Errorf("unsupported date type %T", v)
	}
}

func calendarDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// CoerceAmount converts a numeric representation to a finite float64.
func CoerceAmount(v any) (float64, error) {
	var f float64
	switch a := v.(type) {
	case float64:
		f = a
	case float32:
		f = float64(a)
	case int:
		f = float64(a)
	case int32:
		f = float64(a)
	case int64:
		f = float64(a)
	case decimal.Decimal:
		f = a.InexactFloat64()
	case *decimal.Decimal:
		if a == nil {
			return 0, ErrMissingAmount
		}
		f = a.InexactFloat64()
	case decimal.NullDecimal:
		if !a.Valid {
			return 0, ErrMissingAmount
		}
		f = a.Decimal.InexactFloat64()
	case json.Number:
		d, err := decimal.NewFromString(a.String())
		if err != nil {
			return 0, fmt.Errorf("invalid amount %q: %w", a.String(), err)
		}
		f = d.InexactFloat64()
	case string:
		s := strings.TrimSpace(a)
		if s == "" {
			return 0, ErrMissingAmount
		}
		d, err := decimal.NewFromString(s)
		if err != nil {
			return 0, fmt.Errorf("invalid amount %q: %w", s, err)
		}
		f = d.InexactFloat64()
	case nil:
		return 0, ErrMissingAmount
	default:
		return 0, fmt.Errorf("unsupported amount type %T", v)
	}

	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("non-finite amount %v", f)
	}
	return f, nil
}
