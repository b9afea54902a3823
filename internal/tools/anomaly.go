package tools

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"retailiq/internal/dataset"
	"retailiq/internal/routing"
	"retailiq/internal/stats"
	"retailiq/internal/table"
)

const (
	outlierThreshold = 2.0
	maxCallouts      = 5
)

// Outlier is one product flagged beyond the z-score threshold.
type Outlier struct {
	Product  string
	Category string
	Division string
	Value    float64
	ZScore   float64
}

// AnomalySummary is the typed payload behind the outlier table.
type AnomalySummary struct {
	Metric   routing.Metric
	Scanned  int
	Outliers []Outlier
}

// AnomalyDetection aggregates to product level and flags products whose
// metric sits more than two standard deviations from the mean. A zero
// standard deviation flags nothing.
func AnomalyDetection(ds *dataset.Dataset, f routing.Filters) *Result {
	metric := f.Metric
	if metric == "" {
		metric = routing.MetricMarginRate
	}
	// Units is not part of this tool's metric set; fall back like any
	// other unknown value.
	if metric == routing.MetricUnits {
		metric = routing.MetricMarginRate
	}

	filter := dataset.Filter{Division: f.Division, Region: f.Region}
	rows := ds.Select(filter)

	type product struct{ name, category, division string }
	accs := map[product]*acc{}
	var order []product
	for _, r := range rows {
		k := product{r.Product, r.Category, r.Division}
		a, ok := accs[k]
		if !ok {
			a = &acc{}
			accs[k] = a
			order = append(order, k)
		}
		a.add(r)
	}
	sort.Slice(order, func(i, j int) bool { return order[i].name < order[j].name })

	values := make([]float64, len(order))
	for i, p := range order {
		values[i] = accs[p].metric(metric)
	}
	mean := stats.Mean(values)
	std := stats.Std(values)

	sum := &AnomalySummary{Metric: metric, Scanned: len(order)}
	for i, p := range order {
		z := 0.0
		if std != 0 {
			z = (values[i] - mean) / std
		}
		if math.Abs(z) > outlierThreshold {
			sum.Outliers = append(sum.Outliers, Outlier{
				Product:  p.name,
				Category: p.category,
				Division: p.division,
				Value:    values[i],
				ZScore:   z,
			})
		}
	}
	sort.SliceStable(sum.Outliers, func(i, j int) bool {
		return math.Abs(sum.Outliers[i].ZScore) > math.Abs(sum.Outliers[j].ZScore)
	})

	title := "Anomaly Detection - " + metric.Label()
	t := table.New("Product", "Category", "Division", metric.Label(), "Z-Score")
	for _, o := range sum.Outliers {
		t.Append(o.Product, o.Category, o.Division,
			fmtMetric(metric, o.Value), fmt.Sprintf("%.1f", o.ZScore))
	}

	var callouts []string
	for i, o := range sum.Outliers {
		if i == maxCallouts {
			break
		}
		direction := "unusually high"
		if o.ZScore < 0 {
			direction = "unusually low"
		}
		callouts = append(callouts, fmt.Sprintf("%s (%s) has %s %s (z-score: %.1f).",
			o.Product, o.Category, direction, metricProse(metric), o.ZScore))
	}
	if len(callouts) == 0 {
		callouts = append(callouts, "No significant outliers detected in this data slice.")
	}

	res := &Result{
		Tool:  routing.ToolAnomalyDetection,
		Title: title,
		Table: t,
		Chart: &ChartSpec{
			Type:   "scatter",
			Title:  title,
			XLabel: "Product",
			YLabel: metric.Label(),
			Series: []string{"Normal", "Outlier"},
		},
		Callouts: callouts,
		Data:     sum,
	}
	if len(sum.Outliers) > 0 {
		res.TopItem = sum.Outliers[0].Product
	}
	return res
}

func metricProse(m routing.Metric) string {
	return strings.ToLower(m.Label())
}
