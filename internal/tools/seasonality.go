package tools

import (
	"strconv"

	"retailiq/internal/dataset"
	"retailiq/internal/routing"
	"retailiq/internal/table"
)

var monthNames = []string{
	"Jan", "Feb", "Mar", "Apr", "May", "Jun",
	"Jul", "Aug", "Sep", "Oct", "Nov", "Dec",
}

var quarterNames = []string{"Q1", "Q2", "Q3", "Q4"}

// SeasonRow is one time bucket's value per year.
type SeasonRow struct {
	Period    string
	ByYear    []float64
	ChangePct float64
}

// SeasonSummary is the typed payload behind the seasonality overlay.
type SeasonSummary struct {
	Metric    routing.Metric
	Grain     routing.TimeGrain
	Years     []int
	HasChange bool
	Rows      []SeasonRow
}

// SeasonalityTrends overlays each year's monthly (or quarterly) curve so
// within-year patterns line up across years.
func SeasonalityTrends(ds *dataset.Dataset, f routing.Filters) *Result {
	metric := f.MetricOrDefault()
	grain := f.TimeGrain
	if grain != routing.GrainQuarter {
		grain = routing.GrainMonth
	}

	filter := baseFilter(f)
	rows := ds.Select(filter)

	bucket := func(r dataset.Row) int {
		if grain == routing.GrainQuarter {
			return r.Quarter
		}
		return r.Month
	}
	labels := monthNames
	periods := 12
	if grain == routing.GrainQuarter {
		labels = quarterNames
		periods = 4
	}

	type key struct{ year, period int }
	accs := map[key]*acc{}
	for _, r := range rows {
		k := key{r.Year, bucket(r)}
		a, ok := accs[k]
		if !ok {
			a = &acc{}
			accs[k] = a
		}
		a.add(r)
	}

	years := dataset.Years(rows)
	sum := &SeasonSummary{
		Metric:    metric,
		Grain:     grain,
		Years:     years,
		HasChange: len(years) == 2,
	}

	for p := 1; p <= periods; p++ {
		row := SeasonRow{Period: labels[p-1]}
		any := false
		for _, yr := range years {
			v := 0.0
			if a, ok := accs[key{yr, p}]; ok {
				v = a.metric(metric)
				any = true
			}
			row.ByYear = append(row.ByYear, v)
		}
		if !any {
			continue
		}
		if sum.HasChange {
			row.ChangePct = pctChange(row.ByYear[0], row.ByYear[1])
		}
		sum.Rows = append(sum.Rows, row)
	}

	grainLabel := "Monthly"
	periodLabel := "Month"
	if grain == routing.GrainQuarter {
		grainLabel = "Quarterly"
		periodLabel = "Quarter"
	}
	title := grainLabel + " Seasonality - " + metric.Label() + titleSuffix(filter)

	cols := []string{periodLabel}
	for _, yr := range years {
		cols = append(cols, strconv.Itoa(yr))
	}
	if sum.HasChange {
		cols = append(cols, "Change %")
	}
	t := table.New(cols...)
	for _, row := range sum.Rows {
		cells := []string{row.Period}
		for _, v := range row.ByYear {
			cells = append(cells, fmtMetric(metric, v))
		}
		if sum.HasChange {
			cells = append(cells, table.SignedPct(row.ChangePct))
		}
		t.Append(cells...)
	}

	res := &Result{
		Tool:  routing.ToolSeasonalityTrends,
		Title: title,
		Table: t,
		Chart: &ChartSpec{
			Type:   "line_overlay",
			Title:  title,
			XLabel: periodLabel,
			YLabel: metric.Label(),
			Series: yearStrings(years),
		},
		Data: sum,
	}
	if len(sum.Rows) > 0 {
		res.TopItem = sum.Rows[0].Period
	}
	return res
}

func yearStrings(years []int) []string {
	out := make([]string, len(years))
	for i, y := range years {
		out[i] = strconv.Itoa(y)
	}
	return out
}
