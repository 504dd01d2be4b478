package service

import (
	"argos-engine/internal/trends"
)

type TrendService struct {
	tables TableProvider
}

func NewTrendService(tables TableProvider) *TrendService {
	return &TrendService{tables: tables}
}

// Summary recomputes the dashboard aggregates from the current snapshot.
func (s *TrendService) Summary() trends.Summary {
	return trends.Summarize(s.tables.Current())
}
