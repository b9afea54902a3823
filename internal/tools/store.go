package tools

import (
	"fmt"
	"sort"

	"retailiq/internal/dataset"
	"retailiq/internal/routing"
	"retailiq/internal/stats"
	"retailiq/internal/table"
)

const defaultStoreTopN = 10

// StoreRow is one store's full KPI line.
type StoreRow struct {
	Name       string
	Size       float64
	Sales      float64
	Margin     float64
	MarginRate float64
	Units      float64
}

// StoreSummary is the typed payload behind the store ranking.
type StoreSummary struct {
	Metric routing.Metric
	View   routing.View
	TopN   int
	// Corr is the size-vs-metric correlation across all stores, 0 when
	// store sizes are missing.
	Corr float64
	Rows []StoreRow
}

// StorePerformance ranks stores by the chosen metric. Rows carry every KPI
// so the ranking metric can be judged in context.
func StorePerformance(ds *dataset.Dataset, f routing.Filters) *Result {
	metric := f.MetricOrDefault()
	view := f.View
	if view != routing.ViewBottom {
		view = routing.ViewTop
	}
	topN := f.TopN
	if topN <= 0 {
		topN = defaultStoreTopN
	}

	filter := baseFilter(f)
	rows := ds.Select(filter)

	type store struct {
		name string
		size float64
	}
	accs := map[store]*acc{}
	for _, r := range rows {
		k := store{r.StoreName, r.StoreSize}
		a, ok := accs[k]
		if !ok {
			a = &acc{}
			accs[k] = a
		}
		a.add(r)
	}

	sum := &StoreSummary{Metric: metric, View: view, TopN: topN}
	for k, a := range accs {
		sum.Rows = append(sum.Rows, StoreRow{
			Name:       k.name,
			Size:       k.size,
			Sales:      a.sales,
			Margin:     a.margin,
			MarginRate: a.marginRate(),
			Units:      a.units,
		})
	}

	value := func(r StoreRow) float64 {
		switch metric {
		case routing.MetricMargin:
			return r.Margin
		case routing.MetricUnits:
			return r.Units
		case routing.MetricMarginRate:
			return r.MarginRate
		default:
			return r.Sales
		}
	}
	asc := view == routing.ViewBottom
	sort.SliceStable(sum.Rows, func(i, j int) bool {
		if asc {
			return value(sum.Rows[i]) < value(sum.Rows[j])
		}
		return value(sum.Rows[i]) > value(sum.Rows[j])
	})

	var sizes, vals []float64
	for _, r := range sum.Rows {
		if r.Size > 0 {
			sizes = append(sizes, r.Size)
			vals = append(vals, value(r))
		}
	}
	if len(sizes) >= 2 {
		sum.Corr = stats.Corr(sizes, vals)
	}
	if len(sum.Rows) > topN {
		sum.Rows = sum.Rows[:topN]
	}

	viewLabel := "Top"
	if asc {
		viewLabel = "Bottom"
	}
	title := fmt.Sprintf("Store Performance - %s%s", metric.Label(), titleSuffix(filter))

	t := table.New("Store", "Size", "Sales", "Margin", "Margin Rate", "Units")
	for _, r := range sum.Rows {
		t.Append(r.Name,
			table.Count(r.Size),
			table.Money(r.Sales),
			table.Money(r.Margin),
			table.Pct(r.MarginRate*100),
			table.Count(r.Units))
	}

	res := &Result{
		Tool:  routing.ToolStorePerformance,
		Title: title,
		Table: t,
		Chart: &ChartSpec{
			Type:   "bar_scatter",
			Title:  title,
			XLabel: metric.Label(),
			YLabel: "Store",
			Notes: []string{
				fmt.Sprintf("%s %d stores by %s", viewLabel, topN, metric.Label()),
				fmt.Sprintf("Store size correlation r=%.2f", sum.Corr),
			},
		},
		Data: sum,
	}
	if len(sum.Rows) > 0 {
		res.TopItem = sum.Rows[0].Name
	}
	return res
}
