package ledger

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// Store owns the current ledger snapshot. Readers never lock; a refresh builds
// a new table and swaps the pointer.
type Store struct {
	current    atomic.Pointer[Table]
	source     Source
	normalizer *Normalizer
	limit      int
	logger     *zap.Logger

	refreshMu sync.Mutex
	loaded    bool
}

type RefreshResult struct {
	Rows     int       `json:"rows"`
	Degraded bool      `json:"degraded"`
	LoadedAt time.Time `json:"loaded_at"`
}

func NewStore(source Source, normalizer *Normalizer, limit int, logger *zap.Logger) *Store {
	s := &Store{
		source:     source,
		normalizer: normalizer,
		limit:      limit,
		logger:     logger,
	}
	s.current.Store(EmptyTable())
	return s
}

// Current returns the snapshot in effect. It is never nil.
func (s *Store) Current() *Table {
	return s.current.Load()
}

// Refresh reloads the ledger from the source. If the source fails and a
// snapshot was loaded before, the previous snapshot stays in place.
func (s *Store) Refresh(ctx context.Context) (RefreshResult, error) {
	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()

	table, err := s.normalizer.Load(ctx, s.source, s.limit)
	if err != nil {
		if s.loaded {
			prev := s.current.Load()
			s.logger.Warn("Ledger refresh failed, keeping previous snapshot",
				zap.Int("rows", prev.Len()),
				zap.Error(err),
			)
			return RefreshResult{Rows: prev.Len(), Degraded: true, LoadedAt: prev.LoadedAt()}, err
		}
		s.current.Store(table)
		return RefreshResult{Rows: 0, Degraded: true, LoadedAt: table.LoadedAt()}, err
	}

	s.current.Store(table)
	s.loaded = true
	s.logger.Info("Ledger snapshot loaded", zap.Int("rows", table.Len()))
	return RefreshResult{Rows: table.Len(), LoadedAt: table.LoadedAt()}, nil
}

// Run refreshes the ledger every interval until ctx is done.
func (s *Store) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		<-ctx.Done()
		return nil
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if _, err := s.Refresh(ctx); err != nil {
				s.logger.Warn("Scheduled ledger refresh failed", zap.Error(err))
			}
		}
	}
}
