package tools

import (
	"fmt"
	"sort"

	"retailiq/internal/dataset"
	"retailiq/internal/routing"
	"retailiq/internal/stats"
	"retailiq/internal/table"
)

const forecastHorizon = 12

// MonthPoint is one monthly value on the trendline. Lower and Upper bound
// the confidence band and are only set on forecast points.
type MonthPoint struct {
	Year  int
	Month int
	Value float64
	Lower float64
	Upper float64
}

// ForecastSummary is the typed payload behind the trendline table.
type ForecastSummary struct {
	Metric     routing.Metric
	GroupValue string
	Historical []MonthPoint
	Forecast   []MonthPoint
	Slope      float64
}

// ForecastTrendline aggregates the slice monthly, fits an ordinary
// least-squares line over the sequential month index, and projects twelve
// months past the last observed month with a 95% band from the residuals.
func ForecastTrendline(ds *dataset.Dataset, f routing.Filters) *Result {
	metric := f.MetricOrDefault()
	group := groupOrDefault(f.GroupBy)

	rows := ds.Rows
	if f.GroupValue != "" {
		rows = nil
		for _, r := range ds.Rows {
			if dimValue(r, group) == f.GroupValue {
				rows = append(rows, r)
			}
		}
	}

	type ym struct{ year, month int }
	accs := map[ym]*acc{}
	for _, r := range rows {
		k := ym{r.Year, r.Month}
		a, ok := accs[k]
		if !ok {
			a = &acc{}
			accs[k] = a
		}
		a.add(r)
	}
	keys := make([]ym, 0, len(accs))
	for k := range accs {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].year != keys[j].year {
			return keys[i].year < keys[j].year
		}
		return keys[i].month < keys[j].month
	})

	sum := &ForecastSummary{Metric: metric, GroupValue: f.GroupValue}

	title := "Forecast - " + metric.Label()
	if f.GroupValue != "" {
		title += " - " + f.GroupValue
	}
	res := &Result{
		Tool:  routing.ToolForecastTrendline,
		Title: title,
		Chart: &ChartSpec{
			Type:   "trendline",
			Title:  title,
			XLabel: "Date",
			YLabel: metric.Label(),
			Series: []string{"Historical", "Forecast"},
		},
		Data: sum,
	}

	if len(keys) == 0 {
		res.Table = table.New("Date", metric.Label(), "Type")
		return res
	}

	xs := make([]float64, len(keys))
	ys := make([]float64, len(keys))
	for i, k := range keys {
		xs[i] = float64(i)
		ys[i] = accs[k].metric(metric)
		sum.Historical = append(sum.Historical, MonthPoint{Year: k.year, Month: k.month, Value: ys[i]})
	}

	line := stats.FitOLS(xs, ys)
	band := 1.96 * stats.Std(stats.Residuals(line, xs, ys))
	sum.Slope = line.Slope

	year, month := keys[len(keys)-1].year, keys[len(keys)-1].month
	for i := 1; i <= forecastHorizon; i++ {
		month++
		if month > 12 {
			month = 1
			year++
		}
		v := line.At(float64(len(keys) - 1 + i))
		sum.Forecast = append(sum.Forecast, MonthPoint{
			Year: year, Month: month,
			Value: v, Lower: v - band, Upper: v + band,
		})
	}

	t := table.New("Date", metric.Label(), "Type")
	for _, p := range sum.Historical {
		t.Append(monthStamp(p.Year, p.Month), fmtMetric(metric, p.Value), "historical")
	}
	for _, p := range sum.Forecast {
		t.Append(monthStamp(p.Year, p.Month), fmtMetric(metric, p.Value), "forecast")
	}
	res.Table = t
	res.Narrative = forecastNarrative(sum)
	return res
}

func monthStamp(year, month int) string {
	return fmt.Sprintf("%04d-%02d", year, month)
}
