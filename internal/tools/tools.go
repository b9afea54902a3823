// Package tools implements the analytical aggregations. Every tool is a pure
// function of (dataset, filters) returning a Result; nothing here touches the
// classifier or session state.
package tools

import (
	"sort"
	"strings"

	"retailiq/internal/dataset"
	"retailiq/internal/routing"
	"retailiq/internal/table"
)

// ChartSpec describes the chart a client should render for a result. The
// server never renders; it ships the spec alongside the table.
type ChartSpec struct {
	Type   string   `json:"type"`
	Title  string   `json:"title"`
	XLabel string   `json:"x_label,omitempty"`
	YLabel string   `json:"y_label,omitempty"`
	Series []string `json:"series,omitempty"`
	Notes  []string `json:"notes,omitempty"`
}

// Result is one tool invocation's output. It is constructed fresh per
// question and never mutated afterwards.
type Result struct {
	Tool  routing.Tool
	Title string

	// Table is the display table; may be empty when the slice has no data.
	Table *table.Table
	Chart *ChartSpec

	// Callouts are plain-language outlier notes (anomaly detection only).
	Callouts []string

	// Narrative is a pre-computed insight. When non-empty it is
	// authoritative and the narrative-generation pass is skipped.
	Narrative string

	// Note carries a placeholder message when the tool cannot run on the
	// available data (for example a single year where two are needed).
	Note string

	// TopItem is the leading label of the result, kept for session memory.
	TopItem string

	// Data is the typed payload the insight assembler digests.
	Data any
}

// acc accumulates the base measures one group needs to answer any metric.
type acc struct {
	sales  float64
	margin float64
	units  float64
	price  float64
	priceN int
}

func (a *acc) add(r dataset.Row) {
	a.sales += r.Sales
	a.margin += r.Margin
	a.units += r.Units
	a.price += r.Price
	a.priceN++
}

// metric resolves the accumulated value for one metric. Margin rate is
// always recomputed from the sums, never averaged.
func (a *acc) metric(m routing.Metric) float64 {
	switch m {
	case routing.MetricMargin:
		return a.margin
	case routing.MetricUnits:
		return a.units
	case routing.MetricMarginRate:
		return a.marginRate()
	default:
		return a.sales
	}
}

func (a *acc) marginRate() float64 {
	if a.sales == 0 {
		return 0
	}
	return a.margin / a.sales
}

func (a *acc) avgPrice() float64 {
	if a.priceN == 0 {
		return 0
	}
	return a.price / float64(a.priceN)
}

// baseFilter lifts the dimension filters out of a routing filter set.
func baseFilter(f routing.Filters) dataset.Filter {
	return dataset.Filter{
		Division: f.Division,
		Region:   f.Region,
		Category: f.Category,
		Brand:    f.Brand,
	}
}

// dimValue reads the row value for a grouping dimension.
func dimValue(r dataset.Row, g routing.GroupBy) string {
	switch g {
	case routing.GroupRegion:
		return r.Region
	case routing.GroupBrand:
		return r.Brand
	case routing.GroupCategory:
		return r.Category
	default:
		return r.Division
	}
}

// groupLabel is the column header for a grouping dimension.
func groupLabel(g routing.GroupBy) string {
	switch g {
	case routing.GroupRegion:
		return "Region"
	case routing.GroupBrand:
		return "Brand"
	case routing.GroupCategory:
		return "Category"
	default:
		return "Division"
	}
}

// groupOrDefault coerces an unknown grouping to division.
func groupOrDefault(g routing.GroupBy) routing.GroupBy {
	switch g {
	case routing.GroupDivision, routing.GroupRegion, routing.GroupBrand, routing.GroupCategory:
		return g
	default:
		return routing.GroupDivision
	}
}

// titleSuffix renders the active-filter annotation appended to chart titles.
func titleSuffix(f dataset.Filter) string {
	parts := f.Active()
	if len(parts) == 0 {
		return ""
	}
	return " (" + strings.Join(parts, ", ") + ")"
}

// groupSums accumulates rows per value of one dimension and returns the
// sorted group names with their accumulators.
func groupSums(rows []dataset.Row, g routing.GroupBy) ([]string, map[string]*acc) {
	accs := map[string]*acc{}
	for _, r := range rows {
		k := dimValue(r, g)
		a, ok := accs[k]
		if !ok {
			a = &acc{}
			accs[k] = a
		}
		a.add(r)
	}
	names := make([]string, 0, len(accs))
	for k := range accs {
		names = append(names, k)
	}
	sort.Strings(names)
	return names, accs
}

// yearGroupSums accumulates rows per (year, group value).
func yearGroupSums(rows []dataset.Row, g routing.GroupBy) map[int]map[string]*acc {
	out := map[int]map[string]*acc{}
	for _, r := range rows {
		byGroup, ok := out[r.Year]
		if !ok {
			byGroup = map[string]*acc{}
			out[r.Year] = byGroup
		}
		k := dimValue(r, g)
		a, ok := byGroup[k]
		if !ok {
			a = &acc{}
			byGroup[k] = a
		}
		a.add(r)
	}
	return out
}

// fmtMetric renders a metric value for display tables.
func fmtMetric(m routing.Metric, v float64) string {
	switch m {
	case routing.MetricUnits:
		return table.Count(v)
	case routing.MetricMarginRate:
		return table.Pct(v * 100)
	default:
		return table.Money(v)
	}
}

// fmtChange renders a signed metric delta for display tables.
func fmtChange(m routing.Metric, v float64) string {
	if v < 0 {
		return "-" + fmtMetric(m, -v)
	}
	return "+" + fmtMetric(m, v)
}

// pctChange returns the percent change from a to b, 0 if a is 0.
func pctChange(a, b float64) float64 {
	if a == 0 {
		return 0
	}
	return (b - a) / a * 100
}
