package tools

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"retailiq/internal/dataset"
	"retailiq/internal/routing"
	"retailiq/internal/stats"
	"retailiq/internal/table"
)

// Quadrant is a cell of the growth-margin matrix.
type Quadrant string

const (
	QuadrantStar         Quadrant = "Stars"
	QuadrantCashCow      Quadrant = "Cash Cows"
	QuadrantQuestionMark Quadrant = "Question Marks"
	QuadrantDog          Quadrant = "Dogs"
)

// MatrixRow is one group's position on the growth-margin matrix.
type MatrixRow struct {
	Name       string
	SalesEnd   float64
	MarginRate float64
	GrowthPct  float64
	Quadrant   Quadrant
}

// MatrixSummary is the typed payload behind the quadrant table.
type MatrixSummary struct {
	GroupLabel   string
	StartYear    int
	EndYear      int
	MedianGrowth float64
	MedianMargin float64
	Rows         []MatrixRow
}

// GrowthMarginMatrix places each division (or category) on a 2x2 of YoY
// sales growth vs margin rate. Thresholds are the data medians; a value on
// the median counts as high.
func GrowthMarginMatrix(ds *dataset.Dataset, f routing.Filters) *Result {
	group := f.GroupBy
	if group != routing.GroupCategory {
		group = routing.GroupDivision
	}

	filter := baseFilter(f)
	rows := ds.Select(filter)
	byYear := yearGroupSums(rows, group)
	years := dataset.Years(rows)

	sum := &MatrixSummary{GroupLabel: groupLabel(group)}
	title := "Growth-Margin Matrix (" + sum.GroupLabel + ")" + titleSuffix(filter)
	res := &Result{
		Tool:  routing.ToolGrowthMarginMatrix,
		Title: title,
		Chart: &ChartSpec{
			Type:   "quadrant_bubble",
			Title:  title,
			XLabel: "Margin Rate %",
			YLabel: "YoY Growth %",
			Series: []string{string(QuadrantStar), string(QuadrantCashCow), string(QuadrantQuestionMark), string(QuadrantDog)},
		},
		Data: sum,
	}
	if len(years) < 2 {
		res.Table = table.New(sum.GroupLabel)
		res.Note = "Need 2 years of data for growth-margin analysis"
		return res
	}
	sum.StartYear = years[0]
	sum.EndYear = years[len(years)-1]

	names := map[string]bool{}
	for k := range byYear[sum.StartYear] {
		names[k] = true
	}
	var growths, margins []float64
	for _, name := range sortedNames(names) {
		start, okS := byYear[sum.StartYear][name]
		end, okE := byYear[sum.EndYear][name]
		if !okS || !okE {
			continue
		}
		row := MatrixRow{
			Name:       name,
			SalesEnd:   end.sales,
			MarginRate: end.marginRate() * 100,
			GrowthPct:  pctChange(start.sales, end.sales),
		}
		sum.Rows = append(sum.Rows, row)
		growths = append(growths, row.GrowthPct)
		margins = append(margins, row.MarginRate)
	}
	if len(sum.Rows) == 0 {
		res.Table = table.New(sum.GroupLabel)
		res.Note = "Not enough data for matrix"
		return res
	}

	sum.MedianGrowth = stats.Median(growths)
	sum.MedianMargin = stats.Median(margins)
	for i := range sum.Rows {
		sum.Rows[i].Quadrant = assignQuadrant(sum.Rows[i], sum.MedianGrowth, sum.MedianMargin)
	}
	sort.SliceStable(sum.Rows, func(i, j int) bool {
		if sum.Rows[i].Quadrant != sum.Rows[j].Quadrant {
			return sum.Rows[i].Quadrant < sum.Rows[j].Quadrant
		}
		return sum.Rows[i].Name < sum.Rows[j].Name
	})

	t := table.New(sum.GroupLabel, "Sales "+strconv.Itoa(sum.EndYear), "Margin Rate", "YoY Growth", "Quadrant")
	for _, r := range sum.Rows {
		t.Append(r.Name,
			table.Money(r.SalesEnd),
			table.Pct(r.MarginRate),
			table.SignedPct(r.GrowthPct),
			string(r.Quadrant))
	}
	res.Table = t
	res.TopItem = sum.Rows[0].Name
	res.Narrative = matrixNarrative(sum)
	return res
}

func assignQuadrant(r MatrixRow, medGrowth, medMargin float64) Quadrant {
	highGrowth := r.GrowthPct >= medGrowth
	highMargin := r.MarginRate >= medMargin
	switch {
	case highGrowth && highMargin:
		return QuadrantStar
	case !highGrowth && highMargin:
		return QuadrantCashCow
	case highGrowth && !highMargin:
		return QuadrantQuestionMark
	default:
		return QuadrantDog
	}
}

// matrixNarrative phrases the portfolio read directly from the quadrants.
func matrixNarrative(sum *MatrixSummary) string {
	byQuadrant := map[Quadrant][]MatrixRow{}
	for _, r := range sum.Rows {
		byQuadrant[r.Quadrant] = append(byQuadrant[r.Quadrant], r)
	}
	describe := func(q Quadrant) string {
		rows := byQuadrant[q]
		parts := make([]string, len(rows))
		for i, r := range rows {
			parts[i] = fmt.Sprintf("%s (%+.1f%% growth, %.1f%% margin)", r.Name, r.GrowthPct, r.MarginRate)
		}
		return strings.Join(parts, ", ")
	}

	var parts []string
	if s := describe(QuadrantStar); s != "" {
		parts = append(parts, fmt.Sprintf("Stars combining above-median growth and margin: %s; these earn continued investment.", s))
	}
	if s := describe(QuadrantCashCow); s != "" {
		parts = append(parts, fmt.Sprintf("Cash cows with strong margins but slowing growth: %s; harvest them to fund the stars.", s))
	}
	if s := describe(QuadrantQuestionMark); s != "" {
		parts = append(parts, fmt.Sprintf("Question marks growing fast on thin margins: %s; pricing or cost work could convert them.", s))
	}
	if s := describe(QuadrantDog); s != "" {
		parts = append(parts, fmt.Sprintf("Dogs trailing on both axes: %s; candidates for rationalization.", s))
	}
	return strings.Join(parts, " ")
}
