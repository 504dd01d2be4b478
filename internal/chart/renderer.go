// Package chart renders query results to PNG files in the chart directory.
package chart

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	gochart "github.com/wcharczuk/go-chart/v2"
	"go.uber.org/zap"
)

type Kind string

const (
	KindBar  Kind = "bar"
	KindLine Kind = "line"
	KindPie  Kind = "pie"
)

const (
	defaultWidth  = 800
	defaultHeight = 450
	barWidth      = 40
	barSpacing    = 20
	maxLabelRunes = 18
)

var ErrNoData = errors.New("nothing to plot")

type Point struct {
	Label string
	Value float64
}

type Spec struct {
	Kind   Kind
	Title  string
	Points []Point
}

type Renderer struct {
	dir    string
	logger *zap.Logger
}

func NewRenderer(dir string, logger *zap.Logger) *Renderer {
	return &Renderer{
		dir:    dir,
		logger: logger,
	}
}

func (r *Renderer) Dir() string {
	return r.dir
}

// Render writes spec as a PNG and returns its path once the file is complete.
func (r *Renderer) Render(ctx context.Context, spec Spec) (string, error) {
	if len(spec.Points) == 0 {
		return "", ErrNoData
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create chart directory: %w", err)
	}

	tmp, err := os.CreateTemp(r.dir, ".chart-*.tmp")
	if err != nil {
		return "", fmt.Errorf("failed to create chart file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := draw(tmp, spec); err != nil {
		tmp.Close()
		return "", fmt.Errorf("failed to draw %s chart: %w", spec.Kind, err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("failed to write chart file: %w", err)
	}

	final := filepath.Join(r.dir, "chart_"+uuid.NewString()+".png")
	if err := os.Rename(tmpName, final); err != nil {
		return "", fmt.Errorf("failed to publish chart file: %w", err)
	}

	r.logger.Debug("Chart rendered",
		zap.String("kind", string(spec.Kind)),
		zap.Int("points", len(spec.Points)),
		zap.String("path", final),
	)
	return final, nil
}

func draw(w io.Writer, spec Spec) error {
	kind := spec.Kind
	switch {
	case kind == KindPie && !pieable(spec.Points):
		kind = KindBar
	case kind == KindLine && len(spec.Points) < 2:
		kind = KindBar
	}

	switch kind {
	case KindPie:
		return drawPie(w, spec)
	case KindLine:
		return drawLine(w, spec)
	default:
		return drawBar(w, spec)
	}
}

func pieable(points []Point) bool {
	var total float64
	for _, p := range points {
		if p.Value < 0 {
			return false
		}
		total += p.Value
	}
	return total > 0
}

func valueRange(points []Point) *gochart.ContinuousRange {
	lo, hi := 0.0, 0.0
	for _, p := range points {
		lo = math.Min(lo, p.Value)
		hi = math.Max(hi, p.Value)
	}
	if hi == lo {
		hi = lo + 1
	}
	return &gochart.ContinuousRange{Min: lo, Max: hi * 1.1}
}

func drawBar(w io.Writer, spec Spec) error {
	bars := make([]gochart.Value, 0, len(spec.Points))
	for _, p := range spec.Points {
		bars = append(bars, gochart.Value{Label: shorten(p.Label), Value: p.Value})
	}

	width := defaultWidth
	if need := len(bars)*(barWidth+barSpacing) + 160; need > width {
		width = need
	}

	c := gochart.BarChart{
		Title:      spec.Title,
		Width:      width,
		Height:     defaultHeight,
		BarWidth:   barWidth,
		BarSpacing: barSpacing,
		Background: gochart.Style{Padding: gochart.Box{Top: 40}},
		YAxis:      gochart.YAxis{Range: valueRange(spec.Points)},
		Bars:       bars,
	}
	return c.Render(gochart.PNG, w)
}

func drawPie(w io.Writer, spec Spec) error {
	values := make([]gochart.Value, 0, len(spec.Points))
	for _, p := range spec.Points {
		values = append(values, gochart.Value{Label: shorten(p.Label), Value: p.Value})
	}

	c := gochart.PieChart{
		Title:  spec.Title,
		Width:  defaultHeight,
		Height: defaultHeight,
		Values: values,
	}
	return c.Render(gochart.PNG, w)
}

func drawLine(w io.Writer, spec Spec) error {
	xs := make([]float64, len(spec.Points))
	ys := make([]float64, len(spec.Points))
	ticks := make([]gochart.Tick, len(spec.Points))
	for i, p := range spec.Points {
		xs[i] = float64(i)
		ys[i] = p.Value
		ticks[i] = gochart.Tick{Value: float64(i), Label: shorten(p.Label)}
	}

	c := gochart.Chart{
		Title:      spec.Title,
		Width:      defaultWidth,
		Height:     defaultHeight,
		Background: gochart.Style{Padding: gochart.Box{Top: 40}},
		XAxis:      gochart.XAxis{Ticks: ticks},
		YAxis:      gochart.YAxis{Range: valueRange(spec.Points)},
		Series: []gochart.Series{
			gochart.ContinuousSeries{XValues: xs, YValues: ys},
		},
	}
	return c.Render(gochart.PNG, w)
}

func shorten(label string) string {
	r := []rune(label)
	if len(r) <= maxLabelRunes {
		return label
	}
	return string(r[:maxLabelRunes-1]) + "…"
}
