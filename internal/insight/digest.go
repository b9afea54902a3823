// Package insight builds the compact textual digest of a tool result that
// feeds the narrative-generation pass. The digest is the only
// dataset-derived information allowed into that prompt, so the generator
// quotes real figures instead of inventing them.
package insight

import (
	"fmt"
	"sort"
	"strings"

	"retailiq/internal/routing"
	"retailiq/internal/table"
	"retailiq/internal/tools"
)

// Digest routes a result to its summarizer. Tools without a dedicated
// summarizer get a generic closing line; their tables speak for themselves.
func Digest(res *tools.Result) string {
	switch data := res.Data.(type) {
	case *tools.YoYSummary:
		return summarizeYoY(data)
	case *tools.CrosstabSummary:
		return summarizeCrosstab(data)
	case *tools.ForecastSummary:
		return summarizeForecast(data)
	case *tools.AnomalySummary:
		return summarizeAnomalies(data, res.Callouts)
	case *tools.PVMSummary:
		return summarizePriceVolume(data)
	default:
		return "Analysis complete. Data is displayed in the chart and table."
	}
}

func summarizeYoY(sum *tools.YoYSummary) string {
	if sum == nil || len(sum.Rows) == 0 {
		return "No year-over-year data available."
	}

	var lines []string
	fmtVal := func(v float64) string { return fmtMetricPlain(sum.Metric, v) }

	if sum.HasChange {
		sorted := make([]tools.YoYRow, len(sum.Rows))
		copy(sorted, sum.Rows)
		sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].ChangePct > sorted[j].ChangePct })

		top, bottom := sorted[0], sorted[len(sorted)-1]
		lines = append(lines, fmt.Sprintf("Strongest growth: %s at %+.1f%% (change of %s)",
			top.Name, top.ChangePct, signed(sum.Metric, top.Change)))
		lines = append(lines, fmt.Sprintf("Weakest performance: %s at %+.1f%% (change of %s)",
			bottom.Name, bottom.ChangePct, signed(sum.Metric, bottom.Change)))

		lines = append(lines, fmt.Sprintf("\nAll %s results:", strings.ToLower(sum.GroupLabel)))
		for _, r := range sorted {
			lines = append(lines, fmt.Sprintf("  - %s: %d=%s, %d=%s, change=%+.1f%%",
				r.Name, sum.StartYear, fmtVal(r.Start), sum.EndYear, fmtVal(r.End), r.ChangePct))
		}
	} else {
		lines = append(lines, fmt.Sprintf("Results by %s:", strings.ToLower(sum.GroupLabel)))
		for _, r := range sum.Rows {
			lines = append(lines, fmt.Sprintf("  - %s: %d=%s", r.Name, sum.StartYear, fmtVal(r.Start)))
		}
	}
	return strings.Join(lines, "\n")
}

func summarizeCrosstab(sum *tools.CrosstabSummary) string {
	if sum == nil || len(sum.Rows) == 0 {
		return "No cross-tab data available."
	}

	ranked := make([]tools.CrosstabRow, len(sum.Rows))
	copy(ranked, sum.Rows)
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Total > ranked[j].Total })

	var lines []string
	lines = append(lines, "Top 5 brands by total across all regions:")
	for i, row := range ranked {
		if i == 5 {
			break
		}
		lines = append(lines, fmt.Sprintf("  - %s: %s", row.Brand, fmtMetricPlain(sum.Metric, row.Total)))
		bestIdx := 0
		for j, v := range row.Values {
			if v > row.Values[bestIdx] {
				bestIdx = j
			}
		}
		lines = append(lines, fmt.Sprintf("    Best region: %s (%s)",
			sum.Regions[bestIdx], fmtMetricPlain(sum.Metric, row.Values[bestIdx])))
	}

	if n := len(ranked); n > 3 {
		lines = append(lines, "\nBottom 3 brands:")
		for _, row := range ranked[n-3:] {
			lines = append(lines, fmt.Sprintf("  - %s: %s", row.Brand, fmtMetricPlain(sum.Metric, row.Total)))
		}
	}

	lines = append(lines, "\nRegional totals:")
	for i, region := range sum.Regions {
		total := 0.0
		for _, row := range sum.Rows {
			total += row.Values[i]
		}
		lines = append(lines, fmt.Sprintf("  - %s: %s", region, fmtMetricPlain(sum.Metric, total)))
	}
	return strings.Join(lines, "\n")
}

func summarizeForecast(sum *tools.ForecastSummary) string {
	if sum == nil || (len(sum.Historical) == 0 && len(sum.Forecast) == 0) {
		return "No forecast data available."
	}

	var lines []string
	fmtVal := func(v float64) string { return fmtMetricPlain(sum.Metric, v) }

	if n := len(sum.Historical); n > 0 {
		lines = append(lines, "Recent historical monthly values:")
		start := n - 3
		if start < 0 {
			start = 0
		}
		for _, p := range sum.Historical[start:] {
			lines = append(lines, fmt.Sprintf("  - %04d-%02d: %s", p.Year, p.Month, fmtVal(p.Value)))
		}

		min, max, total := sum.Historical[0].Value, sum.Historical[0].Value, 0.0
		for _, p := range sum.Historical {
			if p.Value < min {
				min = p.Value
			}
			if p.Value > max {
				max = p.Value
			}
			total += p.Value
		}
		lines = append(lines, fmt.Sprintf("\nHistorical average: %s", fmtVal(total/float64(n))))
		lines = append(lines, fmt.Sprintf("Historical range: %s to %s", fmtVal(min), fmtVal(max)))
	}

	if len(sum.Forecast) > 0 {
		first := sum.Forecast[0]
		last := sum.Forecast[len(sum.Forecast)-1]
		lines = append(lines, "\nForecasted values (next 12 months):")
		lines = append(lines, fmt.Sprintf("  - Start: %s", fmtVal(first.Value)))
		lines = append(lines, fmt.Sprintf("  - End (12 months out): %s", fmtVal(last.Value)))

		if n := len(sum.Historical); n > 0 {
			lastHist := sum.Historical[n-1].Value
			if lastHist != 0 {
				change := (last.Value - lastHist) / lastHist * 100
				lines = append(lines, fmt.Sprintf("  - Projected growth from latest actual: %+.1f%%", change))
			}
		}
	}
	return strings.Join(lines, "\n")
}

func summarizeAnomalies(sum *tools.AnomalySummary, callouts []string) string {
	if sum == nil || len(sum.Outliers) == 0 {
		return "No anomalies detected in this data slice."
	}

	var lines []string
	lines = append(lines, fmt.Sprintf("Total outliers flagged: %d", len(sum.Outliers)))

	if len(callouts) > 0 {
		lines = append(lines, "\nKey outliers:")
		for i, c := range callouts {
			if i == 5 {
				break
			}
			lines = append(lines, "  - "+c)
		}
	}

	high, low := 0, 0
	for _, o := range sum.Outliers {
		if o.ZScore > 0 {
			high++
		} else {
			low++
		}
	}
	lines = append(lines, fmt.Sprintf("\nOutliers above average: %d", high))
	lines = append(lines, fmt.Sprintf("Outliers below average: %d", low))

	lines = append(lines, "\nMost extreme outliers:")
	for i, o := range sum.Outliers {
		if i == 3 {
			break
		}
		direction := "above"
		if o.ZScore < 0 {
			direction = "below"
		}
		z := o.ZScore
		if z < 0 {
			z = -z
		}
		lines = append(lines, fmt.Sprintf("  - %s (%s): %.1f std devs %s average",
			o.Product, o.Category, z, direction))
	}
	return strings.Join(lines, "\n")
}

func summarizePriceVolume(sum *tools.PVMSummary) string {
	if sum == nil || len(sum.Rows) == 0 {
		return "No price-volume data available."
	}

	minPrice, maxPrice := sum.Rows[0].AvgPrice, sum.Rows[0].AvgPrice
	marginTotal, unitsTotal := 0.0, 0.0
	best, worst, topVolume, topRevenue := sum.Rows[0], sum.Rows[0], sum.Rows[0], sum.Rows[0]
	for _, r := range sum.Rows {
		if r.AvgPrice < minPrice {
			minPrice = r.AvgPrice
		}
		if r.AvgPrice > maxPrice {
			maxPrice = r.AvgPrice
		}
		marginTotal += r.MarginPct
		unitsTotal += r.TotalUnits
		if r.MarginPct > best.MarginPct {
			best = r
		}
		if r.MarginPct < worst.MarginPct {
			worst = r
		}
		if r.TotalUnits > topVolume.TotalUnits {
			topVolume = r
		}
		if r.TotalSales > topRevenue.TotalSales {
			topRevenue = r
		}
	}
	n := float64(len(sum.Rows))

	var lines []string
	lines = append(lines, fmt.Sprintf("Total categories analyzed: %d", len(sum.Rows)))
	lines = append(lines, fmt.Sprintf("Price range: $%.2f to $%.2f", minPrice, maxPrice))
	lines = append(lines, fmt.Sprintf("Average margin rate: %.1f%%", marginTotal/n))

	lines = append(lines, fmt.Sprintf("\nHighest margin: %s (margin rate: %.1f%%, price: $%.2f)",
		best.Category, best.MarginPct, best.AvgPrice))
	lines = append(lines, fmt.Sprintf("Lowest margin: %s (margin rate: %.1f%%, price: $%.2f)",
		worst.Category, worst.MarginPct, worst.AvgPrice))

	lines = append(lines, fmt.Sprintf("\nVolume leader: %s (%s units, price: $%.2f, margin: %.1f%%)",
		topVolume.Category, table.Count(topVolume.TotalUnits), topVolume.AvgPrice, topVolume.MarginPct))
	lines = append(lines, fmt.Sprintf("Revenue leader: %s (%s in sales)",
		topRevenue.Category, table.Money(topRevenue.TotalSales)))

	avgMargin := marginTotal / n
	avgUnits := unitsTotal / n
	var sweet []tools.PVMRow
	for _, r := range sum.Rows {
		if r.MarginPct > avgMargin && r.TotalUnits > avgUnits {
			sweet = append(sweet, r)
		}
	}
	if len(sweet) > 0 {
		lines = append(lines, fmt.Sprintf("\nSweet spot categories (above-avg margin AND volume): %d", len(sweet)))
		for i, r := range sweet {
			if i == 3 {
				break
			}
			lines = append(lines, fmt.Sprintf("  - %s: margin %.1f%%, %s units, $%.2f",
				r.Category, r.MarginPct, table.Count(r.TotalUnits), r.AvgPrice))
		}
	}
	return strings.Join(lines, "\n")
}

// fmtMetricPlain renders a metric value for digest text.
func fmtMetricPlain(m routing.Metric, v float64) string {
	switch m {
	case routing.MetricUnits:
		return table.Count(v)
	case routing.MetricMarginRate:
		return fmt.Sprintf("%.1f%%", v*100)
	default:
		return table.Money(v)
	}
}

func signed(m routing.Metric, v float64) string {
	if v < 0 {
		return "-" + fmtMetricPlain(m, -v)
	}
	return "+" + fmtMetricPlain(m, v)
}
