package tools

import (
	"sort"
	"strconv"

	"retailiq/internal/dataset"
	"retailiq/internal/routing"
	"retailiq/internal/table"
)

// YoYRow is one group's year-over-year delta.
type YoYRow struct {
	Name      string
	Start     float64
	End       float64
	Change    float64
	ChangePct float64
}

// YoYSummary is the typed payload behind the YoY comparison table.
type YoYSummary struct {
	GroupBy    routing.GroupBy
	GroupLabel string
	Metric     routing.Metric
	StartYear  int
	EndYear    int
	// HasChange is false when the slice covers fewer than two years, in
	// which case Change and ChangePct are zero and only Start is filled.
	HasChange bool
	Rows      []YoYRow
}

// YoYComparison compares a metric across the first and last year present in
// the filtered slice, grouped by the requested dimension.
func YoYComparison(ds *dataset.Dataset, f routing.Filters) *Result {
	group := groupOrDefault(f.GroupBy)
	metric := f.MetricOrDefault()
	filter := baseFilter(f)
	rows := ds.Select(filter)

	years := dataset.Years(rows)
	byYear := yearGroupSums(rows, group)

	sum := &YoYSummary{
		GroupBy:    group,
		GroupLabel: groupLabel(group),
		Metric:     metric,
	}

	title := "YoY Comparison - " + metric.Label() + titleSuffix(filter)
	res := &Result{
		Tool:  routing.ToolYoYComparison,
		Title: title,
		Chart: &ChartSpec{
			Type:   "grouped_bar",
			Title:  title,
			XLabel: sum.GroupLabel,
			YLabel: metric.Label(),
		},
		Data: sum,
	}

	if len(years) == 0 {
		res.Table = table.New(sum.GroupLabel)
		return res
	}

	sum.StartYear = years[0]
	sum.EndYear = years[len(years)-1]
	sum.HasChange = len(years) >= 2
	if !sum.HasChange {
		res.Note = "Need 2 years of data for year-over-year comparison"
	}

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
		r := YoYRow{Name: name, Start: value(sum.StartYear, name)}
		if sum.HasChange {
			r.End = value(sum.EndYear, name)
			r.Change = r.End - r.Start
			r.ChangePct = pctChange(r.Start, r.End)
		}
		sum.Rows = append(sum.Rows, r)
	}

	if sum.HasChange {
		t := table.New(sum.GroupLabel,
			strconv.Itoa(sum.StartYear), strconv.Itoa(sum.EndYear),
			"Change", "Change %")
		for _, r := range sum.Rows {
			t.Append(r.Name,
				fmtMetric(metric, r.Start), fmtMetric(metric, r.End),
				fmtChange(metric, r.Change), table.SignedPct(r.ChangePct))
		}
		res.Table = t
	} else {
		t := table.New(sum.GroupLabel, strconv.Itoa(sum.StartYear))
		for _, r := range sum.Rows {
			t.Append(r.Name, fmtMetric(metric, r.Start))
		}
		res.Table = t
	}

	if len(sum.Rows) > 0 {
		res.TopItem = sum.Rows[0].Name
	}
	return res
}

func sortedNames(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// sortedByChangePct returns the rows ordered by ChangePct ascending (worst
// first) without mutating the input.
func sortedByChangePct(rows []YoYRow) []YoYRow {
	out := make([]YoYRow, len(rows))
	copy(out, rows)
	sort.SliceStable(out, func(i, j int) bool { return out[i].ChangePct < out[j].ChangePct })
	return out
}
