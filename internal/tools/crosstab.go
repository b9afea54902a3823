package tools

import (
	"sort"

	"retailiq/internal/dataset"
	"retailiq/internal/routing"
	"retailiq/internal/table"
)

// CrosstabRow is one brand's values across all regions.
type CrosstabRow struct {
	Brand  string
	Values []float64
	Total  float64
}

// CrosstabSummary is the typed payload behind the brand x region pivot.
type CrosstabSummary struct {
	Metric  routing.Metric
	Regions []string
	Rows    []CrosstabRow
}

// BrandRegionCrosstab pivots the filtered slice into a brand x region grid.
// Rows are ranked by row total descending; a positive topN truncates the
// ranking to the leading brands.
func BrandRegionCrosstab(ds *dataset.Dataset, f routing.Filters) *Result {
	metric := f.MetricOrDefault()
	filter := baseFilter(f)
	rows := ds.Select(filter)

	type key struct{ brand, region string }
	accs := map[key]*acc{}
	brandSet := map[string]bool{}
	regionSet := map[string]bool{}
	for _, r := range rows {
		k := key{r.Brand, r.Region}
		a, ok := accs[k]
		if !ok {
			a = &acc{}
			accs[k] = a
		}
		a.add(r)
		brandSet[r.Brand] = true
		regionSet[r.Region] = true
	}

	sum := &CrosstabSummary{Metric: metric, Regions: sortedNames(regionSet)}
	for _, brand := range sortedNames(brandSet) {
		row := CrosstabRow{Brand: brand}
		for _, region := range sum.Regions {
			v := 0.0
			if a, ok := accs[key{brand, region}]; ok {
				v = a.metric(metric)
			}
			row.Values = append(row.Values, v)
			row.Total += v
		}
		sum.Rows = append(sum.Rows, row)
	}

	sort.SliceStable(sum.Rows, func(i, j int) bool { return sum.Rows[i].Total > sum.Rows[j].Total })
	if f.TopN > 0 && f.TopN < len(sum.Rows) {
		sum.Rows = sum.Rows[:f.TopN]
	}

	title := "Brand x Region - " + metric.Label() + titleSuffix(filter)
	t := table.New(append([]string{"Brand"}, sum.Regions...)...)
	for _, row := range sum.Rows {
		cells := []string{row.Brand}
		for _, v := range row.Values {
			cells = append(cells, fmtMetric(metric, v))
		}
		t.Append(cells...)
	}

	res := &Result{
		Tool:  routing.ToolBrandRegionCrosstab,
		Title: title,
		Table: t,
		Chart: &ChartSpec{
			Type:   "heatmap",
			Title:  title,
			XLabel: "Region",
			YLabel: "Brand",
		},
		Data: sum,
	}
	if len(sum.Rows) > 0 {
		res.TopItem = sum.Rows[0].Brand
	}
	return res
}
