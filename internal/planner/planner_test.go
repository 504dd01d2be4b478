package planner

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"argos-engine/internal/apperr"
	"argos-engine/internal/chart"
	"argos-engine/internal/ledger"
	"argos-engine/internal/llm"
	"argos-engine/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func sampleTable() *ledger.Table {
	return ledger.NewTable([]models.Transaction{
		{ID: "1", Date: day(2024, 1, 10), Merchant: "Swiggy", Category: "Food", Amount: 100, Currency: "INR", PaymentMethod: "UPI"},
		{ID: "2", Date: day(2024, 2, 5), Merchant: "Zomato", Category: "Food", Amount: 50, Currency: "INR", PaymentMethod: "Credit Card"},
		{ID: "3", Date: day(2024, 2, 7), Merchant: "Netflix", Category: "Bills", Amount: 649, Currency: "INR", PaymentMethod: "Credit Card"},
		{ID: "4", Date: day(2024, 3, 1), Merchant: "Uber", Category: "Transport", Amount: 320.5, Currency: "INR", PaymentMethod: "UPI"},
		{ID: "5", Date: day(2024, 3, 15), Merchant: "Amazon", Category: "Shopping", Amount: 2499, Currency: "INR", PaymentMethod: "Debit Card"},
	})
}

func newPlanner(backend llm.Backend, renderer ChartRenderer, chartsEnabled bool) *Planner {
	return New(backend, NewExecutor(renderer, chartsEnabled, zap.NewNop()), 3, zap.NewNop())
}

func TestAnswerScalarValue(t *testing.T) {
	backend := llm.ScriptedText(`{"operation":"value","filters":[{"column":"category","op":"eq","value":"food"}],"aggregate":{"func":"sum","column":"amount"}}`)
	p := newPlanner(backend, nil, false)

	res, err := p.Answer(context.Background(), "How much did I spend on food?", sampleTable())
	require.NoError(t, err)
	assert.Equal(t, ResultText, res.Kind)
	assert.Equal(t, "Total spent: 150.00 INR across 2 transactions", res.Text)
	assert.Equal(t, 1, backend.Calls())

	prompt := backend.Prompts()[0]
	assert.Contains(t, prompt, "Question: How much did I spend on food?")
	assert.Contains(t, prompt, "Known values for category: Food, Bills, Transport, Shopping")
	assert.Contains(t, prompt, "5 transactions from 2024-01-10 to 2024-03-15")
	assert.NotContains(t, prompt, "Swiggy,100")
}

func TestAnswerUsesTemplate(t *testing.T) {
	backend := llm.ScriptedText("```json\n" +
		`{"operation":"value","group_by":["category"],"sort":{"by":"value","order":"desc"},"limit":1,"answer":"You spent the most on {top_key} ({top_value} {currency}) {unknown}"}` +
		"\n```")
	p := newPlanner(backend, nil, false)

	res, err := p.Answer(context.Background(), "Where did most of my money go?", sampleTable())
	require.NoError(t, err)
	assert.Equal(t, "You spent the most on Shopping (2,499.00 INR)", res.Text)
}

func TestAnswerStripsMarkupFromTemplate(t *testing.T) {
	backend := llm.ScriptedText(`{"operation":"value","answer":"<b>Total</b> <script>alert(1)</script>&lt;script&gt;alert(2)&lt;/script&gt;{total} {currency}"}`)
	p := newPlanner(backend, nil, false)

	res, err := p.Answer(context.Background(), "How much did I spend?", sampleTable())
	require.NoError(t, err)
	assert.Equal(t, "Total 3,618.50 INR", res.Text)
	assert.NotContains(t, res.Text, "<")
}

func TestAnswerTemplateDoesNotExpandSubstitutedValues(t *testing.T) {
	table := ledger.NewTable([]models.Transaction{
		{ID: "1", Date: day(2024, 1, 10), Merchant: "{count} Club", Category: "Fun", Amount: 10, Currency: "INR"},
	})
	backend := llm.ScriptedText(`{"operation":"value","group_by":["merchant"],"sort":{"by":"value","order":"desc"},"limit":1,"answer":"Top: {top_key} ({count})"}`)
	p := newPlanner(backend, nil, false)

	res, err := p.Answer(context.Background(), "Top merchant?", table)
	require.NoError(t, err)
	assert.Equal(t, "Top: {count} Club (1)", res.Text)
}

func TestAnswerKeywordPlanCoversSeveralMonths(t *testing.T) {
	p := newPlanner(llm.NewKeywordBackend(zap.NewNop()), nil, false)

	res, err := p.Answer(context.Background(), "How much did I spend in january and february?", sampleTable())
	require.NoError(t, err)
	assert.Equal(t, "Total spent: 799.00 INR across 3 transactions", res.Text)
}

func TestAnswerTopMerchantsTable(t *testing.T) {
	backend := llm.ScriptedText(`Here is the plan: {"operation":"table","group_by":["merchant"],"sort":{"by":"value","order":"desc"},"limit":2}`)
	p := newPlanner(backend, nil, false)

	res, err := p.Answer(context.Background(), "Top 2 merchants?", sampleTable())
	require.NoError(t, err)
	assert.Equal(t, "Total spent by merchant:\nAmazon: 2,499.00 INR\nNetflix: 649.00 INR", res.Text)
}

func TestAnswerGroupsByDerivedMonth(t *testing.T) {
	backend := llm.ScriptedText(`{"operation":"table","group_by":["month"],"aggregate":{"func":"count"}}`)
	p := newPlanner(backend, nil, false)

	res, err := p.Answer(context.Background(), "How many transactions per month?", sampleTable())
	require.NoError(t, err)
	assert.Equal(t, "Number of transactions by month:\nJanuary: 1\nFebruary: 2\nMarch: 2", res.Text)
}

func TestAnswerDateAndAmountFilters(t *testing.T) {
	backend := llm.ScriptedText(`{"operation":"value","filters":[{"column":"date","op":"between","values":["2024-02-01","2024-03-01"]},{"column":"amount","op":"gt","value":60}],"aggregate":{"func":"avg"}}`)
	p := newPlanner(backend, nil, false)

	res, err := p.Answer(context.Background(), "Average spend above 60 in February?", sampleTable())
	require.NoError(t, err)
	assert.Equal(t, "Average amount: 484.75 INR across 2 transactions", res.Text)
}

func TestAnswerNoMatches(t *testing.T) {
	backend := llm.ScriptedText(`{"operation":"value","filters":[{"column":"merchant","op":"eq","value":"Starbucks"}]}`)
	p := newPlanner(backend, nil, false)

	res, err := p.Answer(context.Background(), "Starbucks spend?", sampleTable())
	require.NoError(t, err)
	assert.Equal(t, NoMatchesText, res.Text)

	empty := llm.ScriptedText(`{"operation":"value","aggregate":{"func":"sum"}}`)
	res, err = newPlanner(empty, nil, false).Answer(context.Background(), "Total?", ledger.EmptyTable())
	require.NoError(t, err)
	assert.Equal(t, NoMatchesText, res.Text)
	assert.Contains(t, empty.Prompts()[0], "the ledger is currently empty")
}

func TestAnswerScriptExhausted(t *testing.T) {
	backend := llm.ScriptedText("not a plan")
	_, err := newPlanner(backend, nil, false).Answer(context.Background(), "Anything?", sampleTable())
	assert.ErrorIs(t, err, llm.ErrScriptExhausted)
	assert.True(t, apperr.Is(err, apperr.KindPlanning))
	assert.Equal(t, 2, backend.Calls())
}

func TestAnswerRefinesAfterUnparsableOutput(t *testing.T) {
	backend := llm.ScriptedText(
		"Sure! Let me think about this.",
		`{"operation":"value","aggregate":{"func":"count"}}`,
	)
	p := newPlanner(backend, nil, false)

	res, err := p.Answer(context.Background(), "How many transactions?", sampleTable())
	require.NoError(t, err)
	assert.Equal(t, "Number of transactions: 5", res.Text)
	require.Equal(t, 2, backend.Calls())
	assert.Contains(t, backend.Prompts()[1], "Your previous plan was rejected: no JSON plan in model output")
}

func TestAnswerRefinesAfterExecutionError(t *testing.T) {
	backend := llm.ScriptedText(
		`{"operation":"table","group_by":["shop"]}`,
		`{"operation":"table","group_by":["merchant"],"limit":1}`,
	)
	p := newPlanner(backend, nil, false)

	res, err := p.Answer(context.Background(), "Spend per shop", sampleTable())
	require.NoError(t, err)
	assert.Equal(t, "Total spent by merchant:\nSwiggy: 100.00 INR", res.Text)
	assert.Contains(t, backend.Prompts()[1], `unknown column "shop"`)
}

func TestAnswerGivesUpAfterMaxSteps(t *testing.T) {
	bad := `{"operation":"value","filters":[{"column":"category","op":"gt","value":"Food"}]}`
	backend := llm.ScriptedText(bad, bad, bad, bad)
	p := newPlanner(backend, nil, false)

	_, err := p.Answer(context.Background(), "Food above what?", sampleTable())
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindExecution))
	assert.Equal(t, 3, backend.Calls())
}

func TestAnswerRejectsNonWhitelistedPlans(t *testing.T) {
	cases := map[string]string{
		"unknown field":        `{"operation":"value","code":"import os; os.remove('/')"}`,
		"unknown operation":    `{"operation":"exec"}`,
		"unknown aggregate":    `{"operation":"value","aggregate":{"func":"median"}}`,
		"unknown filter op":    `{"operation":"value","filters":[{"column":"amount","op":"regex","value":".*"}]}`,
		"chart without groups": `{"operation":"chart","chart":{"type":"bar"}}`,
		"limit too large":      `{"operation":"table","group_by":["merchant"],"limit":1000}`,
	}
	for name, reply := range cases {
		t.Run(name, func(t *testing.T) {
			backend := llm.ScriptedText(reply)
			p := New(backend, NewExecutor(nil, false, zap.NewNop()), 1, zap.NewNop())

			_, err := p.Answer(context.Background(), "question", sampleTable())
			require.Error(t, err)
			assert.True(t, apperr.Is(err, apperr.KindPlanning))
			assert.ErrorIs(t, err, ErrInvalidPlan)
		})
	}
}

func TestAnswerBackendFailureIsPlanningError(t *testing.T) {
	backend := llm.NewScripted(llm.Reply{Err: errors.New("quota exceeded for key AIzaSyExample")})
	p := newPlanner(backend, nil, false)

	_, err := p.Answer(context.Background(), "How much?", sampleTable())
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindPlanning))
	assert.Equal(t, 1, backend.Calls())
}

func TestAnswerRendersChart(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "charts")
	backend := llm.ScriptedText(`{"operation":"chart","group_by":["category"],"chart":{"type":"pie","title":"Spend by category"}}`)
	p := newPlanner(backend, chart.NewRenderer(dir, zap.NewNop()), true)

	res, err := p.Answer(context.Background(), "Plot my spending by category", sampleTable())
	require.NoError(t, err)
	assert.Equal(t, ResultChart, res.Kind)
	assert.NotContains(t, res.ChartFile, string(os.PathSeparator))
	assert.True(t, strings.HasSuffix(res.ChartFile, ".png"))
	assert.FileExists(t, filepath.Join(dir, res.ChartFile))
}

func TestAnswerChartDegradesToTextWhenDisabled(t *testing.T) {
	backend := llm.ScriptedText(`{"operation":"chart","group_by":["payment_method"],"chart":{"type":"bar"}}`)
	p := newPlanner(backend, nil, false)

	res, err := p.Answer(context.Background(), "Plot spend per payment method", sampleTable())
	require.NoError(t, err)
	assert.Equal(t, ResultText, res.Kind)
	assert.Equal(t, "Total spent by payment_method:\nUPI: 420.50 INR\nCredit Card: 699.00 INR\nDebit Card: 2,499.00 INR", res.Text)
}

type brokenRenderer struct{ dir string }

func (b brokenRenderer) Render(context.Context, chart.Spec) (string, error) {
	return "", errors.New("disk full")
}

func (b brokenRenderer) Dir() string { return b.dir }

type escapingRenderer struct{ dir string }

func (e escapingRenderer) Render(context.Context, chart.Spec) (string, error) {
	return filepath.Join(e.dir, "..", "outside.png"), nil
}

func (e escapingRenderer) Dir() string { return e.dir }

func TestAnswerChartFailuresAreNotRefined(t *testing.T) {
	reply := `{"operation":"chart","group_by":["category"]}`

	for name, renderer := range map[string]ChartRenderer{
		"render error":    brokenRenderer{dir: t.TempDir()},
		"path traversal": escapingRenderer{dir: t.TempDir()},
	} {
		t.Run(name, func(t *testing.T) {
			backend := llm.ScriptedText(reply, reply)
			p := newPlanner(backend, renderer, true)

			_, err := p.Answer(context.Background(), "chart it", sampleTable())
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrRender)
			assert.True(t, apperr.Is(err, apperr.KindExecution))
			assert.Equal(t, 1, backend.Calls())
		})
	}
}

func TestAnswerDoesNotMutateTable(t *testing.T) {
	table := sampleTable()
	before := table.Rows()

	backend := llm.ScriptedText(`{"operation":"table","group_by":["category"],"sort":{"by":"key","order":"asc"}}`)
	_, err := newPlanner(backend, nil, false).Answer(context.Background(), "by category", table)
	require.NoError(t, err)

	assert.Equal(t, before, table.Rows())
}
