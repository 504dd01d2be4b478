// Package fixture generates a synthetic ledger for demos and tests.
package fixture

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"argos-engine/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/shopspring/decimal"
)

const (
	DefaultRows = 100
	SourceLabel = "SYNTHETIC"
	windowDays  = 90
)

type category struct {
	name      models.TransactionCategory
	merchants []string
	min, max  int
}

var categories = []category{
	{name: models.CategoryFood, merchants: []string{"Swiggy", "Zomato", "Starbucks", "KFC", "Dominos"}, min: 150, max: 1500},
	{name: models.CategoryTransport, merchants: []string{"Uber", "Ola", "Rapido", "Shell Fuel", "IndiGo"}, min: 50, max: 2000},
	{name: models.CategoryShopping, merchants: []string{"Amazon", "Flipkart", "Myntra", "Uniqlo"}, min: 500, max: 15000},
	{name: models.CategoryBills, merchants: []string{"Jio Prepaid", "Bescom", "Netflix", "ACT Fibernet", "HDFC CC Bill"}, min: 500, max: 15000},
	{name: models.CategoryEntertainment, merchants: []string{"BookMyShow", "PVR", "Steam Games"}, min: 50, max: 2000},
}

var (
	paymentMethods = []string{"UPI", "Credit Card", "Debit Card"}
	banks          = []string{"HDFC", "SBI", "ICICI", "Axis"}
)

type Option func(*Generator)

// WithClock anchors the 90 day window to a fixed point in time.
func WithClock(now func() time.Time) Option {
	return func(g *Generator) {
		g.now = now
	}
}

type Generator struct {
	rows int
	seed int64
	now  func() time.Time

	mu     sync.Mutex
	shared *gofakeit.Faker
}

// NewGenerator creates a generator of rows transactions. A non-zero seed makes
// every Generate call return the same ledger.
func NewGenerator(rows int, seed int64, opts ...Option) *Generator {
	if rows <= 0 {
		rows = DefaultRows
	}
	g := &Generator{
		rows:   rows,
		seed:   seed,
		now:    time.Now,
		shared: gofakeit.New(0),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate builds the synthetic ledger in generation order.
func (g *Generator) Generate() []models.RawTransaction {
	g.mu.Lock()
	defer g.mu.Unlock()

	faker := g.shared
	if g.seed != 0 {
		faker = gofakeit.New(g.seed)
	}

	anchor := g.now()
	out := make([]models.RawTransaction, 0, g.rows)
	for i := 0; i < g.rows; i++ {
		cat := categories[faker.Number(0, len(categories)-1)]
		daysAgo := faker.Number(0, windowDays)

		out = append(out, models.RawTransaction{
			ID:            fmt.Sprintf("txn_%d", i),
			Date:          anchor.AddDate(0, 0, -daysAgo),
			Merchant:      faker.RandomString(cat.merchants),
			Category:      string(cat.name),
			Amount:        decimal.NewFromInt(int64(faker.Number(cat.min, cat.max))),
			Currency:      "INR",
			BankName:      faker.RandomString(banks),
			Source:        SourceLabel,
			PaymentMethod: faker.RandomString(paymentMethods),
		})
	}
	return out
}

// FetchRecent returns up to limit generated transactions, newest first.
func (g *Generator) FetchRecent(ctx context.Context, limit int) ([]models.RawTransaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rows := g.Generate()
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Date.(time.Time).After(rows[j].Date.(time.Time))
	})
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	return rows, nil
}
