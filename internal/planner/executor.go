package planner

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"argos-engine/internal/apperr"
	"argos-engine/internal/chart"
	"argos-engine/internal/ledger"
	"argos-engine/internal/models"

	"go.uber.org/zap"
)

const NoMatchesText = "No matching transactions found."

// ErrRender marks execution failures caused by chart output rather than by the plan.
var ErrRender = errors.New("chart rendering failed")

// ChartRenderer writes a chart and returns the path of the finished file.
type ChartRenderer interface {
	Render(ctx context.Context, spec chart.Spec) (string, error)
	Dir() string
}

type group struct {
	key   string
	rows  []models.Transaction
	value float64
}

type Executor struct {
	charts        ChartRenderer
	chartsEnabled bool
	logger        *zap.Logger
}

// NewExecutor creates an executor. A nil renderer disables charts.
func NewExecutor(charts ChartRenderer, chartsEnabled bool, logger *zap.Logger) *Executor {
	return &Executor{
		charts:        charts,
		chartsEnabled: chartsEnabled && charts != nil,
		logger:        logger,
	}
}

// Execute runs plan against table. The table is only read.
func (e *Executor) Execute(ctx context.Context, plan *Plan, table *ledger.Table) (Result, error) {
	match, err := compileFilters(plan.Filters)
	if err != nil {
		return Result{}, apperr.Execution("planner.Execute", err)
	}
	if err := checkGroupBy(plan.GroupBy); err != nil {
		return Result{}, apperr.Execution("planner.Execute", err)
	}
	if plan.Aggregate.Func != "count" {
		col, ok := lookupColumn(plan.Aggregate.Column)
		if !ok {
			return Result{}, apperr.Execution("planner.Execute", fmt.Errorf("unknown column %q", plan.Aggregate.Column))
		}
		if col.kind != kindNumber {
			return Result{}, apperr.Execution("planner.Execute", fmt.Errorf("cannot %s %s column %q", plan.Aggregate.Func, col.kind, col.name))
		}
	}

	var rows []models.Transaction
	for i := 0; i < table.Len(); i++ {
		if tx := table.Row(i); match(tx) {
			rows = append(rows, tx)
		}
	}
	if len(rows) == 0 {
		return TextResult(NoMatchesText), nil
	}

	groups := groupRows(rows, plan.GroupBy)
	for i := range groups {
		groups[i].value = aggregate(groups[i].rows, plan.Aggregate.Func)
	}
	sortGroups(groups, plan.Sort)
	if plan.Limit > 0 && len(groups) > plan.Limit {
		groups = groups[:plan.Limit]
	}

	vars := templateVars(plan, rows, groups)

	switch {
	case plan.Operation == OpChart && e.chartsEnabled:
		return e.renderChart(ctx, plan, groups, vars)
	case plan.Operation == OpValue:
		return TextResult(valueText(plan, groups, vars)), nil
	default:
		return TextResult(tableText(plan, groups, vars)), nil
	}
}

func checkGroupBy(cols []string) error {
	for _, name := range cols {
		col, ok := lookupColumn(name)
		if !ok {
			return fmt.Errorf("unknown column %q", name)
		}
		if col.kind == kindNumber {
			return fmt.Errorf("cannot group by number column %q", name)
		}
	}
	return nil
}

// groupRows keeps groups in first-occurrence order.
func groupRows(rows []models.Transaction, by []string) []group {
	if len(by) == 0 {
		return []group{{key: "all", rows: rows}}
	}

	index := make(map[string]int)
	var groups []group
	for _, tx := range rows {
		parts := make([]string, len(by))
		for i, col := range by {
			parts[i] = textValue(tx, col)
		}
		key := strings.Join(parts, " / ")

		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, group{key: key})
		}
		groups[i].rows = append(groups[i].rows, tx)
	}
	return groups
}

func aggregate(rows []models.Transaction, fn string) float64 {
	if len(rows) == 0 {
		return 0
	}
	switch fn {
	case "count":
		return float64(len(rows))
	case "avg":
		return sum(rows) / float64(len(rows))
	case "max":
		m := math.Inf(-1)
		for _, tx := range rows {
			m = math.Max(m, tx.Amount)
		}
		return m
	case "min":
		m := math.Inf(1)
		for _, tx := range rows {
			m = math.Min(m, tx.Amount)
		}
		return m
	default:
		return sum(rows)
	}
}

func sum(rows []models.Transaction) float64 {
	var total float64
	for _, tx := range rows {
		total += tx.Amount
	}
	return total
}

func sortGroups(groups []group, s *Sort) {
	if s == nil {
		return
	}
	desc := s.Order == "desc"
	sort.SliceStable(groups, func(i, j int) bool {
		if s.By == "key" {
			if desc {
				return groups[i].key > groups[j].key
			}
			return groups[i].key < groups[j].key
		}
		if desc {
			return groups[i].value > groups[j].value
		}
		return groups[i].value < groups[j].value
	})
}

func (e *Executor) renderChart(ctx context.Context, plan *Plan, groups []group, vars map[string]string) (Result, error) {
	points := make([]chart.Point, 0, len(groups))
	for _, g := range groups {
		points = append(points, chart.Point{Label: g.key, Value: g.value})
	}

	title := plan.Chart.Title
	if title == "" {
		title = defaultTitle(plan)
	}

	path, err := e.charts.Render(ctx, chart.Spec{Kind: chart.Kind(plan.Chart.Type), Title: title, Points: points})
	if err != nil {
		return Result{}, apperr.Execution("planner.renderChart", fmt.Errorf("%w: %v", ErrRender, err))
	}

	file, err := chart.BaseName(path, e.charts.Dir())
	if err != nil {
		return Result{}, apperr.Execution("planner.renderChart", fmt.Errorf("%w: %v", ErrRender, err))
	}

	e.logger.Info("Chart written", zap.String("file", file), zap.Int("groups", len(groups)))
	return ChartResult(file, resolveTemplate(plan.Answer, vars)), nil
}

func defaultTitle(plan *Plan) string {
	return fmt.Sprintf("%s by %s", aggregateLabel(plan.Aggregate.Func), strings.Join(plan.GroupBy, " and "))
}
