package tools

import (
	"strconv"

	"retailiq/internal/dataset"
	"retailiq/internal/routing"
	"retailiq/internal/stats"
	"retailiq/internal/table"
)

// Status is the red/amber/green health flag on a scorecard line.
type Status string

const (
	StatusRed   Status = "RED"
	StatusAmber Status = "AMBER"
	StatusGreen Status = "GREEN"
)

// ScorecardRow is one division's health line. The TOTAL row uses the same
// shape with Division set to "TOTAL".
type ScorecardRow struct {
	Division        string
	SalesStart      float64
	SalesEnd        float64
	GrowthPct       float64
	MarginRateStart float64
	MarginRateEnd   float64
	MarginChangePP  float64
	UnitsEnd        float64
	Status          Status
}

// ScorecardSummary is the typed payload behind the executive scorecard.
type ScorecardSummary struct {
	StartYear int
	EndYear   int
	Rows      []ScorecardRow
	Total     ScorecardRow
}

// KPIScorecard is the executive overview: every division's sales, growth,
// and margin trajectory with a RAG flag. Always full-business; filters are
// ignored.
//
// Flag rules: red when growth is negative or margin fell more than two
// points; green when growth beats 5% and the margin rate is above the
// divisional median; amber otherwise.
func KPIScorecard(ds *dataset.Dataset, _ routing.Filters) *Result {
	byYear := yearGroupSums(ds.Rows, routing.GroupDivision)
	years := dataset.Years(ds.Rows)

	sum := &ScorecardSummary{}
	title := "KPI Scorecard - Executive Summary"
	res := &Result{
		Tool:  routing.ToolKPIScorecard,
		Title: title,
		Chart: &ChartSpec{Type: "scorecard", Title: title},
		Data:  sum,
	}
	if len(years) == 0 {
		res.Table = table.New("Division")
		return res
	}
	sum.StartYear = years[0]
	sum.EndYear = years[len(years)-1]

	names := map[string]bool{}
	for _, byGroup := range byYear {
		for k := range byGroup {
			names[k] = true
		}
	}
	get := func(year int, name string) *acc {
		if a, ok := byYear[year][name]; ok {
			return a
		}
		return &acc{}
	}

	var endRates []float64
	for _, name := range sortedNames(names) {
		start, end := get(sum.StartYear, name), get(sum.EndYear, name)
		row := ScorecardRow{
			Division:        name,
			SalesStart:      start.sales,
			SalesEnd:        end.sales,
			GrowthPct:       pctChange(start.sales, end.sales),
			MarginRateStart: start.marginRate() * 100,
			MarginRateEnd:   end.marginRate() * 100,
			UnitsEnd:        end.units,
		}
		row.MarginChangePP = row.MarginRateEnd - row.MarginRateStart
		sum.Rows = append(sum.Rows, row)
		endRates = append(endRates, row.MarginRateEnd)
	}

	medianRate := stats.Median(endRates)
	for i := range sum.Rows {
		sum.Rows[i].Status = ragStatus(sum.Rows[i], medianRate)
	}

	var totalStart, totalEnd acc
	for _, name := range sortedNames(names) {
		s, e := get(sum.StartYear, name), get(sum.EndYear, name)
		totalStart.sales += s.sales
		totalStart.margin += s.margin
		totalEnd.sales += e.sales
		totalEnd.margin += e.margin
		totalEnd.units += e.units
	}
	sum.Total = ScorecardRow{
		Division:        "TOTAL",
		SalesStart:      totalStart.sales,
		SalesEnd:        totalEnd.sales,
		GrowthPct:       pctChange(totalStart.sales, totalEnd.sales),
		MarginRateStart: totalStart.marginRate() * 100,
		MarginRateEnd:   totalEnd.marginRate() * 100,
		UnitsEnd:        totalEnd.units,
	}
	sum.Total.MarginChangePP = sum.Total.MarginRateEnd - sum.Total.MarginRateStart
	switch {
	case sum.Total.GrowthPct > 5:
		sum.Total.Status = StatusGreen
	case sum.Total.GrowthPct < 0:
		sum.Total.Status = StatusRed
	default:
		sum.Total.Status = StatusAmber
	}

	t := table.New("Division",
		"Sales "+strconv.Itoa(sum.StartYear), "Sales "+strconv.Itoa(sum.EndYear),
		"YoY Growth",
		"Margin% "+strconv.Itoa(sum.StartYear), "Margin% "+strconv.Itoa(sum.EndYear),
		"Margin Chg", "Units "+strconv.Itoa(sum.EndYear), "Status")
	appendRow := func(r ScorecardRow) {
		t.Append(r.Division,
			table.Money(r.SalesStart), table.Money(r.SalesEnd),
			table.SignedPct(r.GrowthPct),
			table.Pct(r.MarginRateStart), table.Pct(r.MarginRateEnd),
			table.SignedPct(r.MarginChangePP),
			table.Count(r.UnitsEnd),
			string(r.Status))
	}
	for _, r := range sum.Rows {
		appendRow(r)
	}
	appendRow(sum.Total)
	res.Table = t
	if len(sum.Rows) > 0 {
		res.TopItem = sum.Rows[0].Division
	}
	return res
}

func ragStatus(r ScorecardRow, medianRate float64) Status {
	switch {
	case r.GrowthPct < 0 || r.MarginChangePP < -2:
		return StatusRed
	case r.GrowthPct > 5 && r.MarginRateEnd > medianRate:
		return StatusGreen
	default:
		return StatusAmber
	}
}
