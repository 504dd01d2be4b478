package planner

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"argos-engine/internal/ledger"
	"argos-engine/internal/models"
)

type predicate func(tx models.Transaction) bool

var opsByKind = map[columnKind]map[string]bool{
	kindString: {"eq": true, "neq": true, "in": true, "contains": true},
	kindNumber: {"eq": true, "neq": true, "in": true, "gt": true, "gte": true, "lt": true, "lte": true, "between": true},
	kindDate:   {"eq": true, "neq": true, "in": true, "gt": true, "gte": true, "lt": true, "lte": true, "between": true},
}

// compileFilters resolves every filter against the column set. All filters
// must hold for a row to match.
func compileFilters(filters []Filter) (predicate, error) {
	preds := make([]predicate, 0, len(filters))
	for _, f := range filters {
		p, err := compileFilter(f)
		if err != nil {
			return nil, err
		}
		preds = append(preds, p)
	}
	return func(tx models.Transaction) bool {
		for _, p := range preds {
			if !p(tx) {
				return false
			}
		}
		return true
	}, nil
}

func compileFilter(f Filter) (predicate, error) {
	col, ok := lookupColumn(f.Column)
	if !ok {
		return nil, fmt.Errorf("unknown column %q", f.Column)
	}
	if !opsByKind[col.kind][f.Op] {
		return nil, fmt.Errorf("op %q cannot be applied to %s column %q", f.Op, col.kind, col.name)
	}

	switch col.kind {
	case kindNumber:
		return compileNumberFilter(col, f)
	case kindDate:
		return compileDateFilter(col, f)
	default:
		return compileStringFilter(col, f)
	}
}

func compileStringFilter(col column, f Filter) (predicate, error) {
	get := func(tx models.Transaction) string {
		return strings.ToLower(textValue(tx, col.name))
	}

	switch f.Op {
	case "in":
		set := make(map[string]bool, len(f.Values))
		for _, v := range f.Values {
			set[strings.ToLower(scalarText(v))] = true
		}
		return func(tx models.Transaction) bool { return set[get(tx)] }, nil
	}

	want := strings.ToLower(scalarText(f.Value))
	switch f.Op {
	case "eq":
		return func(tx models.Transaction) bool { return get(tx) == want }, nil
	case "neq":
		return func(tx models.Transaction) bool { return get(tx) != want }, nil
	default:
		return func(tx models.Transaction) bool { return strings.Contains(get(tx), want) }, nil
	}
}

func compileNumberFilter(col column, f Filter) (predicate, error) {
	if f.Op == "in" || f.Op == "between" {
		nums := make([]float64, 0, len(f.Values))
		for _, v := range f.Values {
			n, err := toNumber(v)
			if err != nil {
				return nil, fmt.Errorf("column %q: %w", col.name, err)
			}
			nums = append(nums, n)
		}
		if f.Op == "between" {
			lo, hi := nums[0], nums[1]
			return func(tx models.Transaction) bool { return tx.Amount >= lo && tx.Amount <= hi }, nil
		}
		return func(tx models.Transaction) bool {
			for _, n := range nums {
				if tx.Amount == n {
					return true
				}
			}
			return false
		}, nil
	}

	want, err := toNumber(f.Value)
	if err != nil {
		return nil, fmt.Errorf("column %q: %w", col.name, err)
	}
	return numberPredicate(f.Op, want), nil
}

func numberPredicate(op string, want float64) predicate {
	return func(tx models.Transaction) bool {
		v := tx.Amount
		switch op {
		case "eq":
			return v == want
		case "neq":
			return v != want
		case "gt":
			return v > want
		case "gte":
			return v >= want
		case "lt":
			return v < want
		default:
			return v <= want
		}
	}
}

func compileDateFilter(col column, f Filter) (predicate, error) {
	if f.Op == "in" || f.Op == "between" {
		dates := make([]time.Time, 0, len(f.Values))
		for _, v := range f.Values {
			d, err := toDate(v)
			if err != nil {
				return nil, fmt.Errorf("column %q: %w", col.name, err)
			}
			dates = append(dates, d)
		}
		if f.Op == "between" {
			lo, hi := dates[0], dates[1]
			return func(tx models.Transaction) bool { return !tx.Date.Before(lo) && !tx.Date.After(hi) }, nil
		}
		return func(tx models.Transaction) bool {
			for _, d := range dates {
				if tx.Date.Equal(d) {
					return true
				}
			}
			return false
		}, nil
	}

	want, err := toDate(f.Value)
	if err != nil {
		return nil, fmt.Errorf("column %q: %w", col.name, err)
	}
	return func(tx models.Transaction) bool {
		switch f.Op {
		case "eq":
			return tx.Date.Equal(want)
		case "neq":
			return !tx.Date.Equal(want)
		case "gt":
			return tx.Date.After(want)
		case "gte":
			return !tx.Date.Before(want)
		case "lt":
			return tx.Date.Before(want)
		default:
			return !tx.Date.After(want)
		}
	}, nil
}

func scalarText(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case nil:
		return ""
	default:
		return fmt.Sprint(t)
	}
}

func toNumber(v any) (float64, error) {
	switch t := v.(type) {
	case float64:
		return t, nil
	case string:
		n, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, fmt.Errorf("%q is not a number", t)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("%v (%T) is not a number", v, v)
	}
}

func toDate(v any) (time.Time, error) {
	s, ok := v.(string)
	if !ok {
		return time.Time{}, fmt.Errorf("%v (%T) is not a date", v, v)
	}
	d, err := ledger.CoerceDate(s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%q is not a date", s)
	}
	return d, nil
}
