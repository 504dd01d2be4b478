package planner

import (
	"fmt"
	"regexp"
	"strings"

	"argos-engine/internal/models"
	"argos-engine/pkg/markup"

	"github.com/dustin/go-humanize"
)

var placeholderPattern = regexp.MustCompile(`\{[a-z_]+\}`)

func aggregateLabel(fn string) string {
	switch fn {
	case "count":
		return "Number of transactions"
	case "avg":
		return "Average amount"
	case "max":
		return "Largest amount"
	case "min":
		return "Smallest amount"
	default:
		return "Total spent"
	}
}

func formatValue(fn string, v float64) string {
	if fn == "count" {
		return humanize.Comma(int64(v))
	}
	return humanize.FormatFloat("#,###.##", v)
}

func withCurrency(fn, value, currency string) string {
	if fn == "count" || currency == "" {
		return value
	}
	return value + " " + currency
}

// currencyOf returns the shared currency of rows, or "" when they differ.
func currencyOf(rows []models.Transaction) string {
	if len(rows) == 0 {
		return ""
	}
	c := rows[0].Currency
	for _, tx := range rows[1:] {
		if tx.Currency != c {
			return ""
		}
	}
	return c
}

func templateVars(plan *Plan, rows []models.Transaction, groups []group) map[string]string {
	fn := plan.Aggregate.Func
	vars := map[string]string{
		"count":    humanize.Comma(int64(len(rows))),
		"currency": currencyOf(rows),
		"total":    formatValue("sum", sum(rows)),
	}
	if len(groups) > 0 {
		top := groups[0]
		vars["value"] = formatValue(fn, top.value)
		vars["top_value"] = formatValue(fn, top.value)
		vars["top_key"] = top.key
	}
	return vars
}

// resolveTemplate substitutes known placeholders in one pass, drops unknown
// ones and strips any markup the model wrote into the template.
func resolveTemplate(tmpl string, vars map[string]string) string {
	if tmpl == "" {
		return ""
	}
	out := placeholderPattern.ReplaceAllStringFunc(tmpl, func(ph string) string {
		return vars[strings.Trim(ph, "{}")]
	})
	out = markup.Strip(out)
	return strings.Join(strings.Fields(out), " ")
}

func valueText(plan *Plan, groups []group, vars map[string]string) string {
	if s := resolveTemplate(plan.Answer, vars); s != "" {
		return s
	}

	fn := plan.Aggregate.Func
	top := groups[0]
	value := withCurrency(fn, formatValue(fn, top.value), vars["currency"])
	if len(plan.GroupBy) == 0 {
		if fn == "count" {
			return fmt.Sprintf("%s: %s", aggregateLabel(fn), value)
		}
		return fmt.Sprintf("%s: %s across %s transactions", aggregateLabel(fn), value, vars["count"])
	}
	return fmt.Sprintf("%s: %s", top.key, value)
}

func tableText(plan *Plan, groups []group, vars map[string]string) string {
	fn := plan.Aggregate.Func

	var b strings.Builder
	header := resolveTemplate(plan.Answer, vars)
	if header == "" {
		header = aggregateLabel(fn)
		if len(plan.GroupBy) > 0 {
			header += " by " + strings.Join(plan.GroupBy, " and ")
		}
		header += ":"
	}
	b.WriteString(header)

	for _, g := range groups {
		label := g.key
		if len(plan.GroupBy) == 0 {
			label = aggregateLabel(fn)
		}
		fmt.Fprintf(&b, "\n%s: %s", label, withCurrency(fn, formatValue(fn, g.value), vars["currency"]))
	}
	return b.String()
}
