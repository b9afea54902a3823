// Package routing turns an untrusted classifier response plus the raw
// question into a validated (tool, filters) decision ready for dispatch.
// The classifier is explicitly untrusted: a deterministic keyword layer can
// override its tool choice and fills in any filters it missed.
package routing

import "strings"

// Tool names the analytical operation the routing layer selected. The set is
// closed: 13 analytical tools plus the out_of_scope sentinel.
type Tool string

const (
	ToolYoYComparison       Tool = "yoy_comparison"
	ToolBrandRegionCrosstab Tool = "brand_region_crosstab"
	ToolForecastTrendline   Tool = "forecast_trendline"
	ToolAnomalyDetection    Tool = "anomaly_detection"
	ToolPriceVolumeMargin   Tool = "price_volume_margin"
	ToolStorePerformance    Tool = "store_performance"
	ToolSeasonalityTrends   Tool = "seasonality_trends"
	ToolDivisionMix         Tool = "division_mix"
	ToolMarginWaterfall     Tool = "margin_waterfall"
	ToolKPIScorecard        Tool = "kpi_scorecard"
	ToolPriceElasticity     Tool = "price_elasticity"
	ToolBrandBenchmarking   Tool = "brand_benchmarking"
	ToolGrowthMarginMatrix  Tool = "growth_margin_matrix"
	ToolOutOfScope          Tool = "out_of_scope"

	// DefaultTool is the safe fallback whenever routing cannot decide.
	DefaultTool = ToolYoYComparison
)

// ValidTools is the closed tool enumeration in catalog order.
var ValidTools = []Tool{
	ToolYoYComparison,
	ToolBrandRegionCrosstab,
	ToolForecastTrendline,
	ToolAnomalyDetection,
	ToolPriceVolumeMargin,
	ToolStorePerformance,
	ToolSeasonalityTrends,
	ToolDivisionMix,
	ToolMarginWaterfall,
	ToolKPIScorecard,
	ToolPriceElasticity,
	ToolBrandBenchmarking,
	ToolGrowthMarginMatrix,
	ToolOutOfScope,
}

// IsValidTool reports membership in the closed enumeration.
func IsValidTool(name Tool) bool {
	for _, t := range ValidTools {
		if t == name {
			return true
		}
	}
	return false
}

// Label renders a tool name for prose, e.g. "yoy comparison".
func (t Tool) Label() string { return strings.ReplaceAll(string(t), "_", " ") }

// Metric is one of the recognized KPI metrics.
type Metric string

const (
	MetricSales      Metric = "sales"
	MetricMargin     Metric = "margin"
	MetricUnits      Metric = "units"
	MetricMarginRate Metric = "margin_rate"
)

// Label renders a metric for titles, e.g. "Margin Rate".
func (m Metric) Label() string {
	parts := strings.Split(string(m), "_")
	for i, p := range parts {
		if p != "" {
			parts[i] = strings.ToUpper(p[:1]) + p[1:]
		}
	}
	return strings.Join(parts, " ")
}

// GroupBy is one of the recognized grouping dimensions.
type GroupBy string

const (
	GroupDivision GroupBy = "division"
	GroupRegion   GroupBy = "region"
	GroupBrand    GroupBy = "brand"
	GroupCategory GroupBy = "category"
)

// TimeGrain selects monthly or quarterly bucketing. The zero value means the
// tool picks its own default (month).
type TimeGrain string

const (
	GrainMonth   TimeGrain = "month"
	GrainQuarter TimeGrain = "quarter"
)

// View selects top or bottom performers.
type View string

const (
	ViewTop    View = "top"
	ViewBottom View = "bottom"
)

// Filters is the fully normalized filter set handed to dispatch. Zero values
// mean unset; no sentinel strings like "null" or "none" survive parsing.
type Filters struct {
	Metric     Metric    `json:"metric,omitempty"`
	Division   string    `json:"division,omitempty"`
	Region     string    `json:"region,omitempty"`
	Category   string    `json:"category,omitempty"`
	Brand      string    `json:"brand,omitempty"`
	GroupBy    GroupBy   `json:"group_by,omitempty"`
	GroupValue string    `json:"group_value,omitempty"`
	TimeGrain  TimeGrain `json:"time_grain,omitempty"`
	TopN       int       `json:"top_n,omitempty"`
	View       View      `json:"view,omitempty"`
	Year       int       `json:"year,omitempty"`
}

// MetricOrDefault returns the metric, falling back to sales.
func (f Filters) MetricOrDefault() Metric {
	if f.Metric == "" {
		return MetricSales
	}
	return f.Metric
}

// Decision is the routing output: a member of the valid tool set plus a
// normalized filter set. OverrideTrace is a human-readable note set when the
// keyword layer overrode the classifier's tool choice; it exists for
// debugging only and never affects dispatch.
type Decision struct {
	Tool          Tool    `json:"tool"`
	Filters       Filters `json:"filters"`
	OverrideTrace string  `json:"override_trace,omitempty"`
}

// DefaultDecision is the safe fallback used when the classifier is
// unreachable or unparseable.
func DefaultDecision() Decision {
	return Decision{Tool: DefaultTool, Filters: Filters{Metric: MetricSales}}
}
