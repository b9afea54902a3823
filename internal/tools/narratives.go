package tools

import (
	"fmt"
	"sort"
	"strings"

	"retailiq/internal/dataset"
	"retailiq/internal/routing"
	"retailiq/internal/stats"
)

// yoyBrandNarrative phrases the brand-level YoY story inside one division:
// the worst decliners first, then the brands proving the division can grow.
func yoyBrandNarrative(sum *YoYSummary, division string) string {
	if !sum.HasChange || len(sum.Rows) == 0 {
		return ""
	}
	sorted := sortedByChangePct(sum.Rows)
	prose := metricProse(sum.Metric)

	var parts []string
	w1 := sorted[0]
	parts = append(parts, fmt.Sprintf(
		"%s is the primary driver of %s's decline, falling %+.1f%% YoY and losing %s in %s.",
		w1.Name, division, w1.ChangePct, fmtMetric(sum.Metric, abs(w1.Change)), prose))

	if len(sorted) >= 3 {
		w2, w3 := sorted[1], sorted[2]
		parts = append(parts, fmt.Sprintf(
			"%s (%+.1f%%) and %s (%+.1f%%) compound the problem with combined losses of %s.",
			w2.Name, w2.ChangePct, w3.Name, w3.ChangePct,
			fmtMetric(sum.Metric, abs(w2.Change)+abs(w3.Change))))
	}

	if len(sorted) >= 2 {
		b1 := sorted[len(sorted)-1]
		b2 := sorted[len(sorted)-2]
		parts = append(parts, fmt.Sprintf(
			"%s and %s are bright spots at %+.1f%% and %+.1f%% respectively, "+
				"proving the %s category can grow with the right brands.",
			b1.Name, b2.Name, b1.ChangePct, b2.ChangePct, division))
	}

	return strings.Join(parts, " ")
}

// yoyRegionNarrative phrases the region-level YoY story, drilling into each
// notable region's divisional drivers.
func yoyRegionNarrative(sum *YoYSummary, ds *dataset.Dataset) string {
	if !sum.HasChange || len(sum.Rows) == 0 {
		return ""
	}
	sorted := make([]YoYRow, len(sum.Rows))
	copy(sorted, sum.Rows)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].ChangePct > sorted[j].ChangePct })

	var parts []string

	best := sorted[0]
	lead := fmt.Sprintf("%s is the fastest growing region at %+.1f%% YoY, adding %s in revenue",
		best.Name, best.ChangePct, fmtMetric(sum.Metric, abs(best.Change)))
	drivers := regionDivisionChanges(ds, best.Name, sum.Metric, sum.StartYear, sum.EndYear)
	if len(drivers) >= 2 {
		lead += fmt.Sprintf(" driven primarily by %s (%+.1f%%) and %s (%+.1f%%) in that region.",
			drivers[0].name, drivers[0].pct, drivers[1].name, drivers[1].pct)
	} else if len(drivers) == 1 {
		lead += fmt.Sprintf(" driven primarily by %s (%+.1f%%) in that region.",
			drivers[0].name, drivers[0].pct)
	} else {
		lead += "."
	}
	parts = append(parts, lead)

	if len(sorted) >= 2 {
		second := sorted[1]
		smallest := sorted[0]
		for _, r := range sorted[1:] {
			if r.End < smallest.End {
				smallest = r
			}
		}
		if second.Name == smallest.Name {
			parts = append(parts, fmt.Sprintf(
				"%s shows strong momentum at %+.1f%% despite being the smallest region, "+
					"representing an expansion opportunity.", second.Name, second.ChangePct))
		} else {
			parts = append(parts, fmt.Sprintf("%s follows at %+.1f%% YoY.", second.Name, second.ChangePct))
		}
	}

	worst := sorted[len(sorted)-1]
	if worst.ChangePct < 0 {
		drag := ""
		if drags := regionDivisionChanges(ds, worst.Name, sum.Metric, sum.StartYear, sum.EndYear); len(drags) > 0 {
			last := drags[len(drags)-1]
			drag = fmt.Sprintf(", dragged down by %s (%+.1f%%)", last.name, last.pct)
		}
		parts = append(parts, fmt.Sprintf(
			"%s is the only declining region at %+.1f%%%s; a targeted divisional review "+
				"for the %s region is recommended.", worst.Name, worst.ChangePct, drag, worst.Name))
	} else {
		parts = append(parts, fmt.Sprintf("All regions are growing, with %s being the slowest at %+.1f%%.",
			worst.Name, worst.ChangePct))
	}

	return strings.Join(parts, " ")
}

type divChange struct {
	name string
	pct  float64
}

// regionDivisionChanges returns a region's divisional YoY changes, fastest
// growth first.
func regionDivisionChanges(ds *dataset.Dataset, region string, m routing.Metric, startYear, endYear int) []divChange {
	rows := ds.Select(dataset.Filter{Region: region})
	byYear := yearGroupSums(rows, routing.GroupDivision)

	names := map[string]bool{}
	for k := range byYear[startYear] {
		names[k] = true
	}
	var out []divChange
	for _, name := range sortedNames(names) {
		start, okS := byYear[startYear][name]
		end, okE := byYear[endYear][name]
		if !okS || !okE {
			continue
		}
		out = append(out, divChange{name, pctChange(start.metric(m), end.metric(m))})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].pct > out[j].pct })
	return out
}

// forecastNarrative phrases the trajectory directly from the fitted line.
func forecastNarrative(sum *ForecastSummary) string {
	if len(sum.Historical) == 0 || len(sum.Forecast) == 0 {
		return ""
	}
	lastActual := sum.Historical[len(sum.Historical)-1]
	endForecast := sum.Forecast[len(sum.Forecast)-1]

	var histVals []float64
	for _, p := range sum.Historical {
		histVals = append(histVals, p.Value)
	}
	avg := stats.Mean(histVals)

	direction := "an upward"
	if sum.Slope < 0 {
		direction = "a downward"
	}
	subject := "The overall business"
	if sum.GroupValue != "" {
		subject = sum.GroupValue
	}
	projected := pctChange(lastActual.Value, endForecast.Value)

	return fmt.Sprintf(
		"%s is on %s monthly trajectory for %s. The latest actual (%s) came in at %s "+
			"against a historical monthly average of %s, and the linear projection puts "+
			"%s twelve months out at %s, a %+.1f%% move from the latest actual. "+
			"Treat the projection as a straight-line read; it carries a 95%% band from "+
			"the residual spread and ignores seasonality.",
		subject, direction, metricProse(sum.Metric),
		monthStamp(lastActual.Year, lastActual.Month), fmtMetric(sum.Metric, lastActual.Value),
		fmtMetric(sum.Metric, avg),
		metricProse(sum.Metric), fmtMetric(sum.Metric, endForecast.Value), projected)
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
