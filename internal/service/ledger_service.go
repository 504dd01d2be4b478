package service

import (
	"context"
	"time"

	"argos-engine/internal/ledger"

	"go.uber.org/zap"
)

type Refresher interface {
	TableProvider
	Refresh(ctx context.Context) (ledger.RefreshResult, error)
}

type LedgerStatus struct {
	Source   string
	Rows     int
	Total    float64
	LoadedAt time.Time
}

type LedgerService struct {
	store      Refresher
	sourceName string
	logger     *zap.Logger
}

func NewLedgerService(store Refresher, sourceName string, logger *zap.Logger) *LedgerService {
	return &LedgerService{
		store:      store,
		sourceName: sourceName,
		logger:     logger,
	}
}

// Refresh reloads the ledger. A failing source is reported through the
// Degraded flag rather than as an error, since the store keeps serving a
// usable snapshot either way.
func (s *LedgerService) Refresh(ctx context.Context) ledger.RefreshResult {
	res, err := s.store.Refresh(ctx)
	if err != nil {
		s.logger.Warn("Ledger refresh degraded",
			zap.String("source", s.sourceName),
			zap.Error(err),
		)
	}
	return res
}

func (s *LedgerService) Status() LedgerStatus {
	table := s.store.Current()
	return LedgerStatus{
		Source:   s.sourceName,
		Rows:     table.Len(),
		Total:    table.Total(),
		LoadedAt: table.LoadedAt(),
	}
}
