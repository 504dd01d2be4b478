package llm

import (
	"context"
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

var topN = regexp.MustCompile(`\btop\s+(\d{1,2})\b`)

// KeywordBackend answers without a remote model by mapping keywords in the
// question to a plan. It reads the question and the known column values from
// the prompt, so it stays behind the same Backend interface.
type KeywordBackend struct {
	logger *zap.Logger
}

func NewKeywordBackend(logger *zap.Logger) *KeywordBackend {
	return &KeywordBackend{logger: logger}
}

type keywordPlan struct {
	Operation string           `json:"operation"`
	Filters   []map[string]any `json:"filters,omitempty"`
	GroupBy   []string         `json:"group_by,omitempty"`
	Aggregate map[string]any   `json:"aggregate"`
	Sort      map[string]any   `json:"sort,omitempty"`
	Limit     int              `json:"limit,omitempty"`
	Chart     map[string]any   `json:"chart,omitempty"`
}

func (b *KeywordBackend) GenerateStep(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	question, known := parsePrompt(prompt)
	q := strings.ToLower(question)

	plan := keywordPlan{
		Operation: "value",
		Aggregate: map[string]any{"func": aggregateFor(q), "column": "amount"},
	}

	if col := groupColumnFor(q); col != "" {
		plan.GroupBy = []string{col}
		plan.Operation = "table"
	}

	if m := topN.FindStringSubmatch(q); m != nil {
		n, _ := strconv.Atoi(m[1])
		plan.Limit = n
		plan.Sort = map[string]any{"by": "value", "order": "desc"}
		if len(plan.GroupBy) == 0 {
			plan.GroupBy = []string{"merchant"}
			plan.Operation = "table"
		}
	}

	if kind := chartKindFor(q); kind != "" {
		if len(plan.GroupBy) == 0 {
			plan.GroupBy = []string{"category"}
		}
		if kind == "line" && plan.GroupBy[0] == "month" {
			plan.GroupBy = []string{"year_month"}
			plan.Sort = map[string]any{"by": "key", "order": "asc"}
		}
		plan.Operation = "chart"
		plan.Chart = map[string]any{"type": kind}
	}

	for column, values := range known {
		for _, v := range values {
			if containsWord(q, strings.ToLower(v)) && !grouped(plan.GroupBy, column) {
				plan.Filters = append(plan.Filters, map[string]any{"column": column, "op": "eq", "value": v})
				break
			}
		}
	}
	if f := monthFilter(q); f != nil && !grouped(plan.GroupBy, "month") {
		plan.Filters = append(plan.Filters, f)
	}

	out, err := json.Marshal(plan)
	if err != nil {
		return "", err
	}
	b.logger.Debug("Keyword plan", zap.String("question", question), zap.ByteString("plan", out))
	return string(out), nil
}

// monthFilter matches every month named in q. Several months become one "in"
// filter so they widen the selection instead of excluding each other.
func monthFilter(q string) map[string]any {
	var months []string
	for m := time.January; m <= time.December; m++ {
		if containsWord(q, strings.ToLower(m.String())) {
			months = append(months, m.String())
		}
	}
	switch len(months) {
	case 0:
		return nil
	case 1:
		return map[string]any{"column": "month", "op": "eq", "value": months[0]}
	default:
		return map[string]any{"column": "month", "op": "in", "values": months}
	}
}

func parsePrompt(prompt string) (string, map[string][]string) {
	var question string
	known := make(map[string][]string)
	for _, line := range strings.Split(prompt, "\n") {
		switch {
		case strings.HasPrefix(line, QuestionPrefix):
			question = strings.TrimPrefix(line, QuestionPrefix)
		case strings.HasPrefix(line, KnownValuesPrefix):
			rest := strings.TrimPrefix(line, KnownValuesPrefix)
			column, values, ok := strings.Cut(rest, ": ")
			if !ok {
				continue
			}
			known[column] = strings.Split(values, ", ")
		}
	}
	return question, known
}

func aggregateFor(q string) string {
	switch {
	case hasAny(q, "how many", "count", "number of"):
		return "count"
	case hasAny(q, "average", "avg", "mean"):
		return "avg"
	case hasAny(q, "largest", "biggest", "highest", "most expensive", "maximum"):
		return "max"
	case hasAny(q, "smallest", "lowest", "cheapest", "minimum"):
		return "min"
	default:
		return "sum"
	}
}

func groupColumnFor(q string) string {
	switch {
	case hasAny(q, "per category", "by category", "each category", "categories"):
		return "category"
	case hasAny(q, "per merchant", "by merchant", "each merchant", "merchants"):
		return "merchant"
	case hasAny(q, "per month", "by month", "each month", "monthly", "over time", "trend"):
		return "month"
	case hasAny(q, "weekday", "day of week", "day of the week"):
		return "weekday"
	case hasAny(q, "payment method", "payment methods"):
		return "payment_method"
	case hasAny(q, "per bank", "by bank", "each bank"):
		return "bank_name"
	}
	return ""
}

func chartKindFor(q string) string {
	if !hasAny(q, "chart", "plot", "graph", "visuali", "draw") {
		return ""
	}
	switch {
	case hasAny(q, "pie", "share", "split", "breakdown"):
		return "pie"
	case hasAny(q, "line", "trend", "over time"):
		return "line"
	default:
		return "bar"
	}
}

func hasAny(s string, needles ...string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}

func containsWord(s, word string) bool {
	if word == "" {
		return false
	}
	re, err := regexp.Compile(`\b` + regexp.QuoteMeta(word) + `\b`)
	if err != nil {
		return false
	}
	return re.MatchString(s)
}

func grouped(groupBy []string, column string) bool {
	for _, g := range groupBy {
		if g == column {
			return true
		}
	}
	return false
}
