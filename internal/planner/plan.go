package planner

import (
	"errors"
	"fmt"
	"strings"
)

type Operation string

const (
	OpValue Operation = "value"
	OpTable Operation = "table"
	OpChart Operation = "chart"
)

const (
	MaxLimit        = 100
	maxGroupBy      = 2
	maxAnswerLength = 500
)

var (
	allowedOperations = map[Operation]bool{OpValue: true, OpTable: true, OpChart: true}
	allowedFilterOps  = map[string]bool{
		"eq": true, "neq": true, "in": true, "contains": true,
		"gt": true, "gte": true, "lt": true, "lte": true, "between": true,
	}
	allowedAggregates = map[string]bool{"sum": true, "count": true, "avg": true, "min": true, "max": true}
	allowedSortKeys   = map[string]bool{"value": true, "key": true}
	allowedOrders     = map[string]bool{"asc": true, "desc": true}
	allowedCharts     = map[string]bool{"bar": true, "line": true, "pie": true}
)

var ErrInvalidPlan = errors.New("invalid plan")

type Filter struct {
	Column string `json:"column"`
	Op     string `json:"op"`
	Value  any    `json:"value,omitempty"`
	Values []any  `json:"values,omitempty"`
}

type Aggregate struct {
	Func   string `json:"func"`
	Column string `json:"column,omitempty"`
}

type Sort struct {
	By    string `json:"by"`
	Order string `json:"order"`
}

type ChartSpec struct {
	Type  string `json:"type"`
	Title string `json:"title,omitempty"`
}

// Plan is the only thing a model may ask for: a read-only filter, group,
// aggregate, sort and plot pipeline over the ledger.
type Plan struct {
	Operation Operation  `json:"operation"`
	Filters   []Filter   `json:"filters,omitempty"`
	GroupBy   []string   `json:"group_by,omitempty"`
	Aggregate Aggregate  `json:"aggregate"`
	Sort      *Sort      `json:"sort,omitempty"`
	Limit     int        `json:"limit,omitempty"`
	Chart     *ChartSpec `json:"chart,omitempty"`
	Answer    string     `json:"answer,omitempty"`
}

// applyDefaults fills in fields a model commonly leaves out.
func (p *Plan) applyDefaults() {
	p.Operation = Operation(strings.ToLower(strings.TrimSpace(string(p.Operation))))
	if p.Operation == "" {
		if len(p.GroupBy) > 0 {
			p.Operation = OpTable
		} else {
			p.Operation = OpValue
		}
	}

	p.Aggregate.Func = strings.ToLower(strings.TrimSpace(p.Aggregate.Func))
	if p.Aggregate.Func == "" {
		p.Aggregate.Func = "sum"
	}
	if p.Aggregate.Column == "" {
		p.Aggregate.Column = "amount"
	}

	for i := range p.Filters {
		p.Filters[i].Op = strings.ToLower(strings.TrimSpace(p.Filters[i].Op))
		if p.Filters[i].Op == "" {
			p.Filters[i].Op = "eq"
		}
		if len(p.Filters[i].Values) == 0 {
			if list, ok := p.Filters[i].Value.([]any); ok {
				p.Filters[i].Values = list
				p.Filters[i].Value = nil
			}
		}
	}

	if p.Sort != nil {
		p.Sort.By = strings.ToLower(p.Sort.By)
		p.Sort.Order = strings.ToLower(p.Sort.Order)
		if p.Sort.By == "" {
			p.Sort.By = "value"
		}
		if p.Sort.Order == "" {
			p.Sort.Order = "desc"
		}
	}

	if p.Operation == OpChart {
		if p.Chart == nil {
			p.Chart = &ChartSpec{}
		}
		p.Chart.Type = strings.ToLower(p.Chart.Type)
		if p.Chart.Type == "" {
			p.Chart.Type = "bar"
		}
	}
}

// Validate checks the plan against the operation whitelist. Column names are
// resolved later, against the table.
func (p *Plan) Validate() error {
	if !allowedOperations[p.Operation] {
		return fmt.Errorf("%w: operation %q is not allowed", ErrInvalidPlan, p.Operation)
	}
	for i, f := range p.Filters {
		if strings.TrimSpace(f.Column) == "" {
			return fmt.Errorf("%w: filter %d has no column", ErrInvalidPlan, i)
		}
		if !allowedFilterOps[f.Op] {
			return fmt.Errorf("%w: filter op %q is not allowed", ErrInvalidPlan, f.Op)
		}
		switch f.Op {
		case "in":
			if len(f.Values) == 0 {
				return fmt.Errorf("%w: filter %q needs values", ErrInvalidPlan, f.Op)
			}
		case "between":
			if len(f.Values) != 2 {
				return fmt.Errorf("%w: between needs exactly two values", ErrInvalidPlan)
			}
		default:
			if f.Value == nil {
				return fmt.Errorf("%w: filter %q on %q needs a value", ErrInvalidPlan, f.Op, f.Column)
			}
		}
	}
	if len(p.GroupBy) > maxGroupBy {
		return fmt.Errorf("%w: at most %d group_by columns", ErrInvalidPlan, maxGroupBy)
	}
	for _, g := range p.GroupBy {
		if strings.TrimSpace(g) == "" {
			return fmt.Errorf("%w: empty group_by column", ErrInvalidPlan)
		}
	}
	if !allowedAggregates[p.Aggregate.Func] {
		return fmt.Errorf("%w: aggregate %q is not allowed", ErrInvalidPlan, p.Aggregate.Func)
	}
	if p.Sort != nil {
		if !allowedSortKeys[p.Sort.By] {
			return fmt.Errorf("%w: sort by %q is not allowed", ErrInvalidPlan, p.Sort.By)
		}
		if !allowedOrders[p.Sort.Order] {
			return fmt.Errorf("%w: sort order %q is not allowed", ErrInvalidPlan, p.Sort.Order)
		}
	}
	if p.Limit < 0 || p.Limit > MaxLimit {
		return fmt.Errorf("%w: limit must be between 0 and %d", ErrInvalidPlan, MaxLimit)
	}
	if p.Operation == OpChart {
		if !allowedCharts[p.Chart.Type] {
			return fmt.Errorf("%w: chart type %q is not allowed", ErrInvalidPlan, p.Chart.Type)
		}
		if len(p.GroupBy) == 0 {
			return fmt.Errorf("%w: a chart needs at least one group_by column", ErrInvalidPlan)
		}
	}
	if len(p.Answer) > maxAnswerLength {
		return fmt.Errorf("%w: answer template is too long", ErrInvalidPlan)
	}
	return nil
}
