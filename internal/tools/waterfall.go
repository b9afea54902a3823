package tools

import (
	"sort"
	"strconv"

	"retailiq/internal/dataset"
	"retailiq/internal/routing"
	"retailiq/internal/table"
)

// WaterfallStep is one group's contribution to the year-over-year change.
type WaterfallStep struct {
	Name      string
	Start     float64
	End       float64
	Change    float64
	ChangePct float64
}

// WaterfallSummary is the typed payload behind the decomposition table.
type WaterfallSummary struct {
	Metric     routing.Metric
	GroupLabel string
	StartYear  int
	EndYear    int
	TotalStart float64
	TotalEnd   float64
	Steps      []WaterfallStep
}

// MarginWaterfall decomposes the change between the first and last year into
// per-group contributions, largest gain first. Margin rate is not additive;
// it falls back to margin.
func MarginWaterfall(ds *dataset.Dataset, f routing.Filters) *Result {
	metric := f.Metric
	if metric == "" || metric == routing.MetricMarginRate {
		metric = routing.MetricMargin
	}
	group := groupOrDefault(f.GroupBy)

	filter := baseFilter(f)
	rows := ds.Select(filter)
	byYear := yearGroupSums(rows, group)
	years := dataset.Years(rows)

	sum := &WaterfallSummary{Metric: metric, GroupLabel: groupLabel(group)}

	title := metric.Label() + " Waterfall by " + sum.GroupLabel + titleSuffix(filter)
	res := &Result{
		Tool:  routing.ToolMarginWaterfall,
		Title: title,
		Chart: &ChartSpec{
			Type:   "waterfall",
			Title:  title,
			YLabel: metric.Label(),
		},
		Data: sum,
	}

	if len(years) == 0 {
		res.Table = table.New(sum.GroupLabel)
		return res
	}
	// A single year degenerates to a zero-change waterfall rather than an
	// error, mirroring the start year against itself.
	sum.StartYear = years[0]
	sum.EndYear = years[len(years)-1]

	names := map[string]bool{}
	for _, byGroup := range byYear {
		for k := range byGroup {
			names[k] = true
		}
	}
	value := func(year int, name string) float64 {
		if a, ok := byYear[year][name]; ok {
			return a.metric(metric)
		}
		return 0
	}
	for _, name := range sortedNames(names) {
		s := WaterfallStep{
			Name:  name,
			Start: value(sum.StartYear, name),
			End:   value(sum.EndYear, name),
		}
		s.Change = s.End - s.Start
		s.ChangePct = pctChange(s.Start, s.End)
		sum.Steps = append(sum.Steps, s)
		sum.TotalStart += s.Start
		sum.TotalEnd += s.End
	}
	sort.SliceStable(sum.Steps, func(i, j int) bool { return sum.Steps[i].Change > sum.Steps[j].Change })

	t := table.New(sum.GroupLabel,
		strconv.Itoa(sum.StartYear), strconv.Itoa(sum.EndYear), "Change", "Change %")
	for _, s := range sum.Steps {
		t.Append(s.Name,
			fmtMetric(metric, s.Start), fmtMetric(metric, s.End),
			fmtChange(metric, s.Change), table.SignedPct(s.ChangePct))
	}
	res.Table = t
	if len(sum.Steps) > 0 {
		res.TopItem = sum.Steps[0].Name
	}
	return res
}
