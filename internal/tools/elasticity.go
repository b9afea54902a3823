package tools

import (
	"fmt"
	"math"
	"sort"

	"retailiq/internal/dataset"
	"retailiq/internal/routing"
	"retailiq/internal/stats"
	"retailiq/internal/table"
)

// Price moves below this threshold (in percent) are treated as noise and
// produce zero elasticity.
const minPriceMovePct = 0.5

var scenarioSteps = []float64{-15, -10, -5, 5, 10, 15}

// ElasticityRow is one group's arc elasticity between the two years.
type ElasticityRow struct {
	Name          string
	Elasticity    float64
	PriceChange   float64
	UnitsChange   float64
	SalesEnd      float64
	MarginEnd     float64
	AvgPriceEnd   float64
}

// Scenario projects one price-change step for one group.
type Scenario struct {
	Name             string
	Elasticity       float64
	PriceChangePct   float64
	UnitsChangePct   float64
	RevenueImpactPct float64
	ProjectedRevenue float64
}

// ElasticitySummary is the typed payload behind the scenario table.
type ElasticitySummary struct {
	GroupLabel string
	StartYear  int
	EndYear    int
	Rows       []ElasticityRow
	Scenarios  []Scenario
	// CrossElasticity is the pooled log-log slope across products, nil
	// when fewer than five priced products are available.
	CrossElasticity *float64
}

// PriceElasticity estimates demand response per category (or per product
// when a category filter narrows the slice) from the year-over-year arc
// elasticity, validated by a cross-sectional log-log fit.
func PriceElasticity(ds *dataset.Dataset, f routing.Filters) *Result {
	filter := baseFilter(f)
	rows := ds.Select(filter)

	groupOf := func(r dataset.Row) string { return r.Category }
	label := "Category"
	if f.Category != "" {
		groupOf = func(r dataset.Row) string { return r.Product }
		label = "Product"
	}

	years := dataset.Years(rows)
	sum := &ElasticitySummary{GroupLabel: label}
	title := "Price Elasticity by " + label + titleSuffix(filter)
	res := &Result{
		Tool:  routing.ToolPriceElasticity,
		Title: title,
		Chart: &ChartSpec{
			Type:   "bar",
			Title:  title,
			XLabel: label,
			YLabel: "Elasticity Coefficient (Ed)",
		},
		Data: sum,
	}
	if len(years) < 2 {
		res.Table = table.New(label)
		res.Note = "Need 2 years of data to estimate elasticity"
		return res
	}
	sum.StartYear = years[0]
	sum.EndYear = years[len(years)-1]

	type yearKey struct {
		year int
		name string
	}
	accs := map[yearKey]*acc{}
	names := map[string]bool{}
	for _, r := range rows {
		k := yearKey{r.Year, groupOf(r)}
		a, ok := accs[k]
		if !ok {
			a = &acc{}
			accs[k] = a
		}
		a.add(r)
		names[k.name] = true
	}

	for _, name := range sortedNames(names) {
		d1, ok1 := accs[yearKey{sum.StartYear, name}]
		d2, ok2 := accs[yearKey{sum.EndYear, name}]
		if !ok1 || !ok2 {
			continue
		}
		p1, p2 := d1.avgPrice(), d2.avgPrice()
		q1, q2 := d1.units, d2.units

		dpPct := 0.0
		if p1 > 0 {
			dpPct = (p2 - p1) / p1 * 100
		}
		dqPct := 0.0
		if q1 > 0 {
			dqPct = (q2 - q1) / q1 * 100
		}
		e := 0.0
		if math.Abs(dpPct) > minPriceMovePct {
			e = dqPct / dpPct
		}
		sum.Rows = append(sum.Rows, ElasticityRow{
			Name:        name,
			Elasticity:  e,
			PriceChange: dpPct,
			UnitsChange: dqPct,
			SalesEnd:    d2.sales,
			MarginEnd:   d2.margin,
			AvgPriceEnd: p2,
		})
	}
	if len(sum.Rows) == 0 {
		res.Table = table.New(label)
		res.Note = "Not enough data for elasticity estimation"
		return res
	}
	sort.SliceStable(sum.Rows, func(i, j int) bool { return sum.Rows[i].Elasticity < sum.Rows[j].Elasticity })

	// Pooled log-log validation across products.
	prodAccs := map[string]*acc{}
	for _, r := range rows {
		a, ok := prodAccs[r.Product]
		if !ok {
			a = &acc{}
			prodAccs[r.Product] = a
		}
		a.add(r)
	}
	var logP, logQ []float64
	for _, a := range prodAccs {
		if a.avgPrice() > 0 && a.units > 0 {
			logP = append(logP, math.Log(a.avgPrice()))
			logQ = append(logQ, math.Log(a.units))
		}
	}
	if len(logP) >= 5 {
		slope := stats.FitOLS(logP, logQ).Slope
		sum.CrossElasticity = &slope
	}

	for _, row := range sum.Rows {
		for _, pct := range scenarioSteps {
			unitChg := row.Elasticity * pct
			mult := (1 + pct/100) * (1 + unitChg/100)
			sum.Scenarios = append(sum.Scenarios, Scenario{
				Name:             row.Name,
				Elasticity:       row.Elasticity,
				PriceChangePct:   pct,
				UnitsChangePct:   unitChg,
				RevenueImpactPct: (mult - 1) * 100,
				ProjectedRevenue: row.SalesEnd * mult,
			})
		}
	}

	t := table.New(label, "Elasticity", "Price Change", "Units Change", "Revenue Impact", "Projected Revenue")
	for _, s := range sum.Scenarios {
		t.Append(s.Name,
			fmt.Sprintf("%.2f", s.Elasticity),
			table.SignedPct(s.PriceChangePct),
			table.SignedPct(s.UnitsChangePct),
			table.SignedPct(s.RevenueImpactPct),
			table.Money(s.ProjectedRevenue))
	}
	res.Table = t
	if sum.CrossElasticity != nil {
		res.Chart.Notes = append(res.Chart.Notes,
			fmt.Sprintf("Cross-sectional elasticity (log-log): %.2f", *sum.CrossElasticity))
	}
	res.TopItem = sum.Rows[0].Name
	return res
}
