package planner

type ResultKind int

const (
	ResultText ResultKind = iota
	ResultChart
)

func (k ResultKind) String() string {
	if k == ResultChart {
		return "chart"
	}
	return "text"
}

// Result is what an executed plan produced. ChartFile is a bare file name in
// the chart directory and is only set for ResultChart.
type Result struct {
	Kind      ResultKind
	Text      string
	ChartFile string
}

func TextResult(text string) Result {
	return Result{Kind: ResultText, Text: text}
}

func ChartResult(file, caption string) Result {
	return Result{Kind: ResultChart, ChartFile: file, Text: caption}
}
