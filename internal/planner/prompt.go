package planner

import (
	"fmt"
	"strings"
	"time"

	"argos-engine/internal/ledger"
	"argos-engine/internal/llm"
)

const maxKnownValues = 30

// Columns whose distinct values are shown to the model so it can spell filters.
var summarizedColumns = []string{ledger.ColumnCategory, ledger.ColumnMerchant, ledger.ColumnPaymentMethod, ledger.ColumnBankName}

const planFormat = `{
  "operation": "value" | "table" | "chart",
  "filters": [{"column": "<column>", "op": "eq|neq|in|contains|gt|gte|lt|lte|between", "value": <value>, "values": [<value>, ...]}],
  "group_by": ["<column>", ...],
  "aggregate": {"func": "sum|count|avg|min|max", "column": "amount"},
  "sort": {"by": "value|key", "order": "asc|desc"},
  "limit": <0-100>,
  "chart": {"type": "bar|line|pie", "title": "<title>"},
  "answer": "<one sentence using {value} {count} {top_key} {top_value} {currency} {total}>"
}`

const planRules = `Rules:
- Reply with ONE JSON object only. No markdown, no code, no explanation.
- Use only the columns listed above. Never invent columns or operations.
- "value" answers with a single number; with group_by it reports the first group after sorting.
- "table" lists one line per group; "chart" plots the groups and needs group_by.
- Use "in" and "between" with "values"; every other op uses "value".
- Dates are compared as "YYYY-MM-DD" strings. Month names belong to the "month" column.
- For "top N" questions sort by value desc and set limit to N.
- Use "line" charts for trends over time grouped by "year_month", "pie" for shares.`

// BuildPrompt describes the ledger schema and a data summary, never raw rows.
// Feedback lists reasons earlier plans were rejected.
func BuildPrompt(question string, table *ledger.Table, feedback []string) string {
	var b strings.Builder

	b.WriteString("You are a data analyst for a personal transaction ledger.\n")
	b.WriteString("Translate the question into a JSON query plan that a safe executor will run.\n\n")

	b.WriteString("Columns:\n")
	for _, c := range columns() {
		fmt.Fprintf(&b, "- %s (%s): %s\n", c.name, c.kind, c.describe)
	}
	b.WriteString("\n")

	writeDataSummary(&b, table)

	b.WriteString("Plan format:\n")
	b.WriteString(planFormat)
	b.WriteString("\n\n")
	b.WriteString(planRules)
	b.WriteString("\n\n")

	for _, reason := range feedback {
		fmt.Fprintf(&b, "Your previous plan was rejected: %s. Return a corrected plan.\n", reason)
	}
	if len(feedback) > 0 {
		b.WriteString("\n")
	}

	b.WriteString(llm.QuestionPrefix)
	b.WriteString(strings.TrimSpace(question))
	b.WriteString("\n")
	return b.String()
}

func writeDataSummary(b *strings.Builder, table *ledger.Table) {
	n := table.Len()
	if n == 0 {
		b.WriteString("Data summary: the ledger is currently empty.\n\n")
		return
	}

	first, last := table.Row(0).Date, table.Row(0).Date
	for i := 1; i < n; i++ {
		d := table.Row(i).Date
		if d.Before(first) {
			first = d
		}
		if d.After(last) {
			last = d
		}
	}

	fmt.Fprintf(b, "Data summary: %d transactions from %s to %s, currency %s.\n",
		n, first.Format(time.DateOnly), last.Format(time.DateOnly), strings.Join(table.Distinct(ledger.ColumnCurrency), ", "))

	for _, col := range summarizedColumns {
		values := table.Distinct(col)
		if len(values) == 0 {
			continue
		}
		if len(values) > maxKnownValues {
			values = values[:maxKnownValues]
		}
		fmt.Fprintf(b, "%s%s: %s\n", llm.KnownValuesPrefix, col, strings.Join(values, ", "))
	}
	b.WriteString("\n")
}
