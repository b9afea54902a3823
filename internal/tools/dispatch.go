package tools

import (
	"retailiq/internal/dataset"
	"retailiq/internal/routing"
)

// Run dispatches a validated routing decision to its aggregation. An
// unrecognized tool (including out_of_scope, which callers should intercept
// first) degrades to the default YoY comparison on sales.
func Run(ds *dataset.Dataset, dec routing.Decision) *Result {
	f := dec.Filters
	switch dec.Tool {
	case routing.ToolYoYComparison:
		return runYoY(ds, f)
	case routing.ToolBrandRegionCrosstab:
		return BrandRegionCrosstab(ds, f)
	case routing.ToolForecastTrendline:
		return ForecastTrendline(ds, f)
	case routing.ToolAnomalyDetection:
		return AnomalyDetection(ds, f)
	case routing.ToolPriceVolumeMargin:
		return PriceVolumeMargin(ds, f)
	case routing.ToolStorePerformance:
		return StorePerformance(ds, f)
	case routing.ToolSeasonalityTrends:
		return SeasonalityTrends(ds, f)
	case routing.ToolDivisionMix:
		return DivisionMix(ds, f)
	case routing.ToolMarginWaterfall:
		return MarginWaterfall(ds, f)
	case routing.ToolKPIScorecard:
		return KPIScorecard(ds, f)
	case routing.ToolPriceElasticity:
		return PriceElasticity(ds, f)
	case routing.ToolBrandBenchmarking:
		return BrandBenchmarking(ds, f)
	case routing.ToolGrowthMarginMatrix:
		return GrowthMarginMatrix(ds, f)
	default:
		return runYoY(ds, routing.Filters{Metric: routing.MetricSales})
	}
}

// runYoY attaches the deterministic narratives the plain aggregation cannot
// know it qualifies for: brand-level drilldowns inside a division, and the
// region overview with divisional drivers.
func runYoY(ds *dataset.Dataset, f routing.Filters) *Result {
	res := YoYComparison(ds, f)
	sum, ok := res.Data.(*YoYSummary)
	if !ok || !sum.HasChange || len(sum.Rows) == 0 {
		return res
	}
	group := groupOrDefault(f.GroupBy)
	switch {
	case f.Division != "" && group == routing.GroupBrand:
		res.Narrative = yoyBrandNarrative(sum, f.Division)
	case f.Division == "" && group == routing.GroupRegion:
		res.Narrative = yoyRegionNarrative(sum, ds)
	}
	return res
}
