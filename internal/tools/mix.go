package tools

import (
	"strconv"

	"retailiq/internal/dataset"
	"retailiq/internal/routing"
	"retailiq/internal/table"
)

// MixRow is one division's value and share per year.
type MixRow struct {
	Name   string
	Values []float64
	Shares []float64
	// ShiftPP is the share change in percentage points when exactly two
	// years are present.
	ShiftPP float64
}

// MixSummary is the typed payload behind the division mix table.
type MixSummary struct {
	Metric   routing.Metric
	Years    []int
	HasShift bool
	Rows     []MixRow
}

// DivisionMix computes each division's share of the total per year and the
// share shift between years. Margin rate is not a mix metric; it falls back
// to sales.
func DivisionMix(ds *dataset.Dataset, f routing.Filters) *Result {
	metric := f.MetricOrDefault()
	if metric == routing.MetricMarginRate {
		metric = routing.MetricSales
	}

	filter := baseFilter(f)
	rows := ds.Select(filter)

	byYear := yearGroupSums(rows, routing.GroupDivision)
	years := dataset.Years(rows)
	if f.Year > 0 {
		for _, yr := range years {
			if yr == f.Year {
				years = []int{yr}
				break
			}
		}
	}

	totals := map[int]float64{}
	names := map[string]bool{}
	for _, yr := range years {
		for name, a := range byYear[yr] {
			totals[yr] += a.metric(metric)
			names[name] = true
		}
	}

	sum := &MixSummary{Metric: metric, Years: years, HasShift: len(years) == 2}
	for _, name := range sortedNames(names) {
		row := MixRow{Name: name}
		for _, yr := range years {
			v := 0.0
			if a, ok := byYear[yr][name]; ok {
				v = a.metric(metric)
			}
			share := 0.0
			if totals[yr] > 0 {
				share = v / totals[yr] * 100
			}
			row.Values = append(row.Values, v)
			row.Shares = append(row.Shares, share)
		}
		if sum.HasShift {
			row.ShiftPP = row.Shares[1] - row.Shares[0]
		}
		sum.Rows = append(sum.Rows, row)
	}

	title := "Division Mix - " + metric.Label() + titleSuffix(filter)
	cols := []string{"Division"}
	for _, yr := range years {
		y := strconv.Itoa(yr)
		cols = append(cols, y, y+" Share")
	}
	if sum.HasShift {
		cols = append(cols, "Shift pp")
	}
	t := table.New(cols...)
	for _, row := range sum.Rows {
		cells := []string{row.Name}
		for i := range years {
			cells = append(cells, fmtMetric(metric, row.Values[i]), table.Pct(row.Shares[i]))
		}
		if sum.HasShift {
			cells = append(cells, table.SignedPct(row.ShiftPP))
		}
		t.Append(cells...)
	}

	res := &Result{
		Tool:  routing.ToolDivisionMix,
		Title: title,
		Table: t,
		Chart: &ChartSpec{
			Type:   "donut_pair",
			Title:  title,
			Series: yearStrings(years),
		},
		Data: sum,
	}
	if len(sum.Rows) > 0 {
		res.TopItem = sum.Rows[0].Name
	}
	return res
}
