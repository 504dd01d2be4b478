// Package trends computes the fixed dashboard summaries over a ledger table.
package trends

import (
	"time"

	"argos-engine/internal/ledger"
)

type MonthTotal struct {
	Month string  `json:"month"`
	Total float64 `json:"total"`
}

type CategoryTotal struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

type Summary struct {
	MonthlyTrend  []MonthTotal    `json:"monthly_trend"`
	CategorySplit []CategoryTotal `json:"category_split"`
}

// Summarize buckets spend by calendar month name and by category.
//
// Months are keyed by name only, so the same month of different years lands
// in one bucket. Months come out in calendar order, categories in order of
// first appearance.
func Summarize(table *ledger.Table) Summary {
	var monthly [12]float64
	var seenMonth [12]bool

	categoryIdx := make(map[string]int)
	split := make([]CategoryTotal, 0)

	for i := 0; i < table.Len(); i++ {
		tx := table.Row(i)

		m := tx.Date.Month() - time.January
		monthly[m] += tx.Amount
		seenMonth[m] = true

		idx, ok := categoryIdx[tx.Category]
		if !ok {
			idx = len(split)
			categoryIdx[tx.Category] = idx
			split = append(split, CategoryTotal{Name: tx.Category})
		}
		split[idx].Value += tx.Amount
	}

	trend := make([]MonthTotal, 0)
	for m := range monthly {
		if !seenMonth[m] {
			continue
		}
		trend = append(trend, MonthTotal{
			Month: (time.January + time.Month(m)).String(),
			Total: monthly[m],
		})
	}

	return Summary{MonthlyTrend: trend, CategorySplit: split}
}
