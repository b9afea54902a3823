package tools

import (
	"sort"

	"retailiq/internal/dataset"
	"retailiq/internal/routing"
	"retailiq/internal/table"
)

// BenchmarkRow is one brand's standing within one category.
type BenchmarkRow struct {
	Category   string
	Brand      string
	Value      float64
	SharePct   float64
	MarginRate float64
}

// BenchmarkSummary is the typed payload behind the brand share table.
type BenchmarkSummary struct {
	Metric routing.Metric
	// Highlight is the brand the question singled out, if any.
	Highlight string
	Rows      []BenchmarkRow
}

// BrandBenchmarking computes each brand's share within its category. A brand
// filter highlights rather than excludes, so the brand is always seen
// against its full competitive set. Margin rate is not a share metric; it
// falls back to sales.
func BrandBenchmarking(ds *dataset.Dataset, f routing.Filters) *Result {
	metric := f.MetricOrDefault()
	if metric == routing.MetricMarginRate {
		metric = routing.MetricSales
	}

	filter := dataset.Filter{Division: f.Division, Region: f.Region, Category: f.Category}
	rows := ds.Select(filter)

	type key struct{ category, brand string }
	accs := map[key]*acc{}
	catTotals := map[string]float64{}
	for _, r := range rows {
		k := key{r.Category, r.Brand}
		a, ok := accs[k]
		if !ok {
			a = &acc{}
			accs[k] = a
		}
		a.add(r)
	}
	for k, a := range accs {
		catTotals[k.category] += a.metric(metric)
	}

	sum := &BenchmarkSummary{Metric: metric, Highlight: f.Brand}
	for k, a := range accs {
		share := 0.0
		if catTotals[k.category] > 0 {
			share = a.metric(metric) / catTotals[k.category] * 100
		}
		sum.Rows = append(sum.Rows, BenchmarkRow{
			Category:   k.category,
			Brand:      k.brand,
			Value:      a.metric(metric),
			SharePct:   share,
			MarginRate: a.marginRate(),
		})
	}
	sort.SliceStable(sum.Rows, func(i, j int) bool {
		if sum.Rows[i].Category != sum.Rows[j].Category {
			return sum.Rows[i].Category < sum.Rows[j].Category
		}
		return sum.Rows[i].Value > sum.Rows[j].Value
	})

	suffix := titleSuffix(filter)
	if f.Brand != "" {
		if suffix == "" {
			suffix = " (Brand: " + f.Brand + ")"
		} else {
			suffix = suffix[:len(suffix)-1] + ", Brand: " + f.Brand + ")"
		}
	}
	title := "Brand Share by Category - " + metric.Label() + suffix

	t := table.New("Category", "Brand", metric.Label(), "Share", "Margin Rate")
	for _, r := range sum.Rows {
		t.Append(r.Category, r.Brand,
			fmtMetric(metric, r.Value),
			table.Pct(r.SharePct),
			table.Pct(r.MarginRate*100))
	}

	res := &Result{
		Tool:  routing.ToolBrandBenchmarking,
		Title: title,
		Table: t,
		Chart: &ChartSpec{
			Type:   "stacked_bar",
			Title:  title,
			XLabel: "Category",
			YLabel: "Share %",
		},
		Data: sum,
	}
	if len(sum.Rows) > 0 {
		res.TopItem = sum.Rows[0].Brand
	}
	return res
}
