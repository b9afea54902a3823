package insight

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"retailiq/internal/routing"
	"retailiq/internal/tools"
)

func TestDigestYoYTwoYears(t *testing.T) {
	res := &tools.Result{Data: &tools.YoYSummary{
		GroupBy:    routing.GroupDivision,
		GroupLabel: "Division",
		Metric:     routing.MetricSales,
		StartYear:  2023,
		EndYear:    2024,
		HasChange:  true,
		Rows: []tools.YoYRow{
			{Name: "Apparel", Start: 1000, End: 1200, Change: 200, ChangePct: 20},
			{Name: "Outdoor", Start: 500, End: 400, Change: -100, ChangePct: -20},
		},
	}}
	got := Digest(res)

	assert.Contains(t, got, "Strongest growth: Apparel at +20.0% (change of +$200)")
	assert.Contains(t, got, "Weakest performance: Outdoor at -20.0% (change of -$100)")
	assert.Contains(t, got, "All division results:")
	assert.Contains(t, got, "  - Apparel: 2023=$1,000, 2024=$1,200, change=+20.0%")
	assert.Contains(t, got, "  - Outdoor: 2023=$500, 2024=$400, change=-20.0%")
	// Rows listed strongest first.
	assert.Less(t, strings.Index(got, "- Apparel: 2023"), strings.Index(got, "- Outdoor: 2023"))
}

func TestDigestYoYSingleYear(t *testing.T) {
	res := &tools.Result{Data: &tools.YoYSummary{
		GroupLabel: "Region",
		Metric:     routing.MetricUnits,
		StartYear:  2024,
		Rows:       []tools.YoYRow{{Name: "East", Start: 1500}},
	}}
	got := Digest(res)
	assert.Contains(t, got, "Results by region:")
	assert.Contains(t, got, "  - East: 2024=1,500")
	assert.NotContains(t, got, "Strongest growth")
}

func TestDigestYoYEmpty(t *testing.T) {
	res := &tools.Result{Data: &tools.YoYSummary{}}
	assert.Equal(t, "No year-over-year data available.", Digest(res))
}

func TestDigestCrosstab(t *testing.T) {
	res := &tools.Result{Data: &tools.CrosstabSummary{
		Metric:  routing.MetricSales,
		Regions: []string{"East", "West"},
		Rows: []tools.CrosstabRow{
			{Brand: "Acme", Values: []float64{1000, 500}, Total: 1500},
			{Brand: "Nimbus", Values: []float64{0, 3000}, Total: 3000},
		},
	}}
	got := Digest(res)

	assert.Contains(t, got, "Top 5 brands by total across all regions:")
	assert.Contains(t, got, "  - Nimbus: $3,000")
	assert.Contains(t, got, "    Best region: West ($3,000)")
	assert.Contains(t, got, "  - Acme: $1,500")
	assert.Contains(t, got, "    Best region: East ($1,000)")
	// Only two brands, so no bottom section.
	assert.NotContains(t, got, "Bottom 3 brands:")
	assert.Contains(t, got, "Regional totals:")
	assert.Contains(t, got, "  - East: $1,000")
	assert.Contains(t, got, "  - West: $3,500")
}

func TestDigestCrosstabBottomSection(t *testing.T) {
	res := &tools.Result{Data: &tools.CrosstabSummary{
		Metric:  routing.MetricSales,
		Regions: []string{"East"},
		Rows: []tools.CrosstabRow{
			{Brand: "A", Values: []float64{400}, Total: 400},
			{Brand: "B", Values: []float64{300}, Total: 300},
			{Brand: "C", Values: []float64{200}, Total: 200},
			{Brand: "D", Values: []float64{100}, Total: 100},
		},
	}}
	got := Digest(res)
	require.Contains(t, got, "Bottom 3 brands:")
	bottom := got[strings.Index(got, "Bottom 3 brands:"):]
	assert.Contains(t, bottom, "  - B: $300")
	assert.Contains(t, bottom, "  - C: $200")
	assert.Contains(t, bottom, "  - D: $100")
}

func TestDigestForecast(t *testing.T) {
	res := &tools.Result{Data: &tools.ForecastSummary{
		Metric: routing.MetricSales,
		Historical: []tools.MonthPoint{
			{Year: 2024, Month: 4, Value: 100},
			{Year: 2024, Month: 5, Value: 200},
			{Year: 2024, Month: 6, Value: 300},
		},
		Forecast: []tools.MonthPoint{
			{Year: 2024, Month: 7, Value: 400},
			{Year: 2025, Month: 6, Value: 600},
		},
	}}
	got := Digest(res)

	assert.Contains(t, got, "Recent historical monthly values:")
	assert.Contains(t, got, "  - 2024-06: $300")
	assert.Contains(t, got, "Historical average: $200")
	assert.Contains(t, got, "Historical range: $100 to $300")
	assert.Contains(t, got, "  - Start: $400")
	assert.Contains(t, got, "  - End (12 months out): $600")
	assert.Contains(t, got, "Projected growth from latest actual: +100.0%")
}

func TestDigestForecastEmpty(t *testing.T) {
	res := &tools.Result{Data: &tools.ForecastSummary{}}
	assert.Equal(t, "No forecast data available.", Digest(res))
}

func TestDigestAnomalies(t *testing.T) {
	res := &tools.Result{
		Data: &tools.AnomalySummary{
			Metric:  routing.MetricMarginRate,
			Scanned: 12,
			Outliers: []tools.Outlier{
				{Product: "Tent", Category: "Camping", ZScore: -2.5},
				{Product: "Lamp", Category: "Lighting", ZScore: 2.2},
			},
		},
		Callouts: []string{"Tent has an unusually low margin rate"},
	}
	got := Digest(res)

	assert.Contains(t, got, "Total outliers flagged: 2")
	assert.Contains(t, got, "  - Tent has an unusually low margin rate")
	assert.Contains(t, got, "Outliers above average: 1")
	assert.Contains(t, got, "Outliers below average: 1")
	assert.Contains(t, got, "  - Tent (Camping): 2.5 std devs below average")
	assert.Contains(t, got, "  - Lamp (Lighting): 2.2 std devs above average")
}

func TestDigestAnomaliesNone(t *testing.T) {
	res := &tools.Result{Data: &tools.AnomalySummary{Scanned: 12}}
	assert.Equal(t, "No anomalies detected in this data slice.", Digest(res))
}

func TestDigestPriceVolume(t *testing.T) {
	res := &tools.Result{Data: &tools.PVMSummary{Rows: []tools.PVMRow{
		{Category: "Audio", AvgPrice: 120, MarginPct: 50, TotalUnits: 900, TotalSales: 108000},
		{Category: "Furniture", AvgPrice: 400, MarginPct: 20, TotalUnits: 100, TotalSales: 40000},
	}}}
	got := Digest(res)

	assert.Contains(t, got, "Total categories analyzed: 2")
	assert.Contains(t, got, "Price range: $120.00 to $400.00")
	assert.Contains(t, got, "Average margin rate: 35.0%")
	assert.Contains(t, got, "Highest margin: Audio (margin rate: 50.0%, price: $120.00)")
	assert.Contains(t, got, "Lowest margin: Furniture (margin rate: 20.0%, price: $400.00)")
	assert.Contains(t, got, "Volume leader: Audio (900 units, price: $120.00, margin: 50.0%)")
	assert.Contains(t, got, "Revenue leader: Audio ($108,000 in sales)")
	assert.Contains(t, got, "Sweet spot categories (above-avg margin AND volume): 1")
	assert.Contains(t, got, "  - Audio: margin 50.0%, 900 units, $120.00")
}

func TestDigestDefaultLine(t *testing.T) {
	res := &tools.Result{Data: &tools.MixSummary{}}
	assert.Equal(t, "Analysis complete. Data is displayed in the chart and table.", Digest(res))
}
