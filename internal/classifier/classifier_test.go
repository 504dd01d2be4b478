package classifier

import (
	"errors"
	"strings"
	"testing"

	"argos-engine/internal/apperr"
	"argos-engine/internal/models"
	"argos-engine/internal/planner"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

var apiKeyPattern = secretPatterns[0]

func TestClassifyRawChartNameWithChartsEnabled(t *testing.T) {
	c := New(true, zap.NewNop())

	env := c.ClassifyRaw("chart_1.png")

	assert.Equal(t, models.Envelope{Kind: models.EnvelopeChart, Payload: "/charts/chart_1.png"}, env)
}

func TestClassifyRawChartNameWithChartsDisabled(t *testing.T) {
	c := New(false, zap.NewNop())

	env := c.ClassifyRaw("chart_1.png")

	assert.Equal(t, models.Envelope{Kind: models.EnvelopeText, Payload: "chart_1.png"}, env)
}

func TestClassifyRawReducesPathToBaseName(t *testing.T) {
	c := New(true, zap.NewNop())

	env := c.ClassifyRaw("/var/lib/argos/static/charts/chart_7.PNG")

	assert.Equal(t, models.EnvelopeChart, env.Kind)
	assert.Equal(t, "/charts/chart_7.PNG", env.Payload)
}

func TestClassifyRawStringifiesOtherValues(t *testing.T) {
	c := New(true, zap.NewNop())

	assert.Equal(t, models.Envelope{Kind: models.EnvelopeText, Payload: "42.5"}, c.ClassifyRaw(42.5))
	assert.Equal(t, models.Envelope{Kind: models.EnvelopeText, Payload: "Total spent: 150.00 INR"}, c.ClassifyRaw("Total spent: 150.00 INR"))
}

func TestClassifyRawPlanningErrorIsSanitized(t *testing.T) {
	c := New(true, zap.NewNop())
	cause := errors.New("Traceback (most recent call last): client failed with key AIzaSyA1b2C3d4E5f6G7h8I9j0KlMnOpQrStUv")

	env := c.ClassifyRaw(apperr.Planning("planner.Answer", cause))

	assert.Equal(t, models.EnvelopeError, env.Kind)
	assert.NotEmpty(t, env.Payload)
	assert.NotContains(t, env.Payload, "Traceback")
	assert.False(t, apiKeyPattern.MatchString(env.Payload))
	assert.Equal(t, msgPlanning, env.Payload)
}

func TestClassifyTypedResults(t *testing.T) {
	enabled := New(true, zap.NewNop())
	disabled := New(false, zap.NewNop())

	chartRes := planner.ChartResult("chart_abc.png", "Total spent by category")

	assert.Equal(t,
		models.Envelope{Kind: models.EnvelopeChart, Payload: "/charts/chart_abc.png"},
		enabled.Classify(chartRes, nil))
	assert.Equal(t,
		models.Envelope{Kind: models.EnvelopeText, Payload: "Total spent by category"},
		disabled.Classify(chartRes, nil))

	// A textual answer that happens to end in .png stays text.
	textRes := planner.TextResult("see report.png")
	assert.Equal(t, models.EnvelopeText, enabled.Classify(textRes, nil).Kind)

	assert.Equal(t, models.EnvelopeText, enabled.Classify(planner.TextResult(""), nil).Kind)
	assert.Equal(t, msgNoAnswer, enabled.Classify(planner.TextResult(""), nil).Payload)
}

func TestClassifyRejectsTraversalInChartResult(t *testing.T) {
	c := New(true, zap.NewNop())

	env := c.Classify(planner.ChartResult("../../etc/passwd.png", ""), nil)

	assert.Equal(t, models.EnvelopeError, env.Kind)
	assert.NotContains(t, env.Payload, "..")
}

func TestClassifyErrorMessagesByKind(t *testing.T) {
	c := New(true, zap.NewNop())
	cases := map[string]struct {
		err  error
		want string
	}{
		"planning":    {apperr.Planning("op", errors.New("x")), msgPlanning},
		"execution":   {apperr.Execution("op", errors.New("x")), msgExecution},
		"data source": {apperr.DataSource("op", errors.New("x")), msgDataSource},
		"validation":  {apperr.Validation("op", errors.New("x")), msgValidation},
		"unknown":     {errors.New("goroutine 1 [running]"), msgUnknown},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			env := c.Classify(planner.Result{}, tc.err)
			assert.Equal(t, models.EnvelopeError, env.Kind)
			assert.Equal(t, tc.want, env.Payload)
		})
	}
}

func TestSanitize(t *testing.T) {
	t.Run("strips stack traces", func(t *testing.T) {
		got := Sanitize("plan failed\nTraceback (most recent call last):\n  File \"x\", line 1")
		assert.Equal(t, "plan failed", got)
	})

	t.Run("redacts credentials", func(t *testing.T) {
		got := Sanitize("call failed: api_key=sk-abcdef1234567890 Bearer eyJhbGciOi.payload.sig")
		assert.NotContains(t, got, "sk-abcdef")
		assert.NotContains(t, got, "eyJhbGciOi")
		assert.Contains(t, got, "[redacted]")
	})

	t.Run("drops markup", func(t *testing.T) {
		assert.Equal(t, "hello world", Sanitize("<script>alert(1)</script><b>hello</b> world"))
	})

	t.Run("escaped markup stays inert", func(t *testing.T) {
		got := Sanitize("&lt;script&gt;alert(1)&lt;/script&gt;failed")
		assert.NotContains(t, got, "<script")
		assert.Equal(t, "failed", got)
	})

	t.Run("keeps apostrophes", func(t *testing.T) {
		assert.Equal(t, msgPlanning, Sanitize(msgPlanning))
	})

	t.Run("never empty", func(t *testing.T) {
		assert.Equal(t, msgUnknown, Sanitize(""))
		assert.Equal(t, msgUnknown, Sanitize("Traceback: boom"))
	})

	t.Run("bounded length", func(t *testing.T) {
		got := Sanitize(strings.Repeat("a", 1000))
		assert.Equal(t, maxMessageRunes+3, len([]rune(got)))
	})
}
