package routing

import (
	"fmt"
	"strings"

	"retailiq/internal/dataset"
)

// Router is the rule-based safety net over the classifier. Its keyword table
// is an explicit ordered list: the first matching rule wins, and the order
// is a deliberate tie-break policy. Overlapping vocabulary (for example
// "growth" appearing in both the region and quadrant groups) makes the order
// outcome-determining, so tests pin it entry by entry.
type Router struct {
	summary *dataset.Summary
	rules   []Rule
}

// Rule pairs a named predicate with the tool it selects.
type Rule struct {
	Name  string
	Tool  Tool
	Match func(q string) bool
}

// yoyVocab wins over brand and mix vocabulary when both are present.
var yoyVocab = []string{
	"year over year", "year-over-year", "yoy", "vs last year",
	"versus last year", "grew", "grow", "decline", "compare 2023",
	"2023 vs 2024", "2024 vs 2023",
}

var outOfScopeVocab = []string{
	"average order value", "order value", "order size",
	"customer", "retention", "loyalty", "churn", "satisfaction",
	"inventory", "stock level", "out of stock", "warehouse",
	"competitor", "competition", "rival",
	"employee", "staff", "headcount", "payroll",
	"website", "web traffic", "conversion rate", "app download", "clicks",
}

// NewRouter builds the keyword table against the dataset's controlled
// vocabulary (brand names participate in the brand rule).
func NewRouter(summary *dataset.Summary) *Router {
	r := &Router{summary: summary}

	hasYoY := func(q string) bool { return containsAny(q, yoyVocab...) }
	hasBrandTerm := func(q string) bool {
		if containsAny(q, "brand", "brands") {
			return true
		}
		for _, b := range summary.Brands {
			if strings.Contains(q, strings.ToLower(b)) {
				return true
			}
		}
		return false
	}

	r.rules = []Rule{
		{"out_of_scope", ToolOutOfScope, func(q string) bool {
			return containsAny(q, outOfScopeVocab...)
		}},
		{"brand", ToolBrandRegionCrosstab, func(q string) bool {
			return hasBrandTerm(q) && !hasYoY(q)
		}},
		{"executive_overview", ToolKPIScorecard, func(q string) bool {
			return containsAny(q, "overall", "overview", "executive", "scorecard",
				"health check", "business health", "kpi", "big picture",
				"how is the business", "how are we doing")
		}},
		{"margin_decomposition", ToolMarginWaterfall, func(q string) bool {
			if containsAny(q, "waterfall", "decomposition", "bridge", "what drove") {
				return true
			}
			return strings.Contains(q, "margin") &&
				containsAny(q, "why", "change", "changed", "drop", "erod")
		}},
		// Region before the quadrant rule: both groups claim "growth".
		{"region_analysis", ToolYoYComparison, func(q string) bool {
			return containsAny(q, "by region", "across regions", "per region",
				"each region", "regional", "which region", "region growth")
		}},
		{"quadrant", ToolGrowthMarginMatrix, func(q string) bool {
			return containsAny(q, "bcg", "quadrant", "matrix", "stars", "dogs",
				"cash cow", "question mark", "portfolio", "growth margin",
				"growth-margin", "growth vs margin")
		}},
		{"elasticity", ToolPriceElasticity, func(q string) bool {
			return containsAny(q, "elastic", "price sensitiv", "sensitivity to price",
				"raise prices", "lower prices", "price increase", "price cut")
		}},
		{"seasonality", ToolSeasonalityTrends, func(q string) bool {
			return containsAny(q, "season", "monthly pattern", "quarterly pattern",
				"by month", "by quarter", "month over month", "time of year")
		}},
		{"store", ToolStorePerformance, func(q string) bool {
			return containsAny(q, "store", "stores", "location", "outlet", "branch")
		}},
		{"mix_share", ToolDivisionMix, func(q string) bool {
			return containsAny(q, "mix", "share of", "percentage of", "proportion",
				"contribution", "breakdown", "composition", "represent") && !hasYoY(q)
		}},
		{"forecast", ToolForecastTrendline, func(q string) bool {
			return containsAny(q, "forecast", "project", "predict", "2025",
				"trajectory", "next year", "trendline", "trend line", "extrapolate")
		}},
		{"anomaly", ToolAnomalyDetection, func(q string) bool {
			return containsAny(q, "anomal", "outlier", "unusual", "weird",
				"looks off", "flag", "suspicious")
		}},
		{"pricing", ToolPriceVolumeMargin, func(q string) bool {
			return containsAny(q, "price", "pricing", "sweet spot")
		}},
		{"brand_benchmarking", ToolBrandBenchmarking, func(q string) bool {
			return containsAny(q, "benchmark", "head to head", "dominat",
				"owns the", "market leader", "competitive position")
		}},
		{"yoy", ToolYoYComparison, hasYoY},
	}
	return r
}

// Rules exposes the ordered keyword table for entry-by-entry tests.
func (r *Router) Rules() []Rule { return r.rules }

// ValidateTool coerces an unrecognized tool name to the safe default.
func (r *Router) ValidateTool(name Tool) Tool {
	if IsValidTool(name) {
		return name
	}
	return DefaultTool
}

// RouteByKeywords scans the lowercased question against the ordered rule
// table and returns the first matching tool. ok is false when no rule
// matched, in which case the caller should trust the classifier's validated
// choice.
func (r *Router) RouteByKeywords(question string) (tool Tool, rule string, ok bool) {
	q := strings.ToLower(question)
	for _, ru := range r.rules {
		if ru.Match(q) {
			return ru.Tool, ru.Name, true
		}
	}
	return "", "", false
}

// Resolve applies the full safety net to a parsed classifier decision:
// tool-name coercion, keyword override, then filter backfill. The override
// trace annotation never affects dispatch.
func (r *Router) Resolve(question string, dec Decision) Decision {
	validated := r.ValidateTool(dec.Tool)
	if kw, rule, ok := r.RouteByKeywords(question); ok && kw != validated {
		dec.OverrideTrace = fmt.Sprintf("keyword rule %q overrode %s -> %s", rule, validated, kw)
		validated = kw
	}
	dec.Tool = validated
	dec.Filters = r.BackfillFilters(question, dec.Filters)
	return dec
}

// OutOfScopeMessage returns the fixed explanatory response for a question
// routed to the out_of_scope sentinel, by sub-category.
func OutOfScopeMessage(question string) string {
	q := strings.ToLower(question)
	switch {
	case containsAny(q, "average order value", "order value", "order size"):
		return "I can't compute order-level metrics like average order value: the dataset contains product-line transactions without order identifiers. Try asking about sales, margin or units by division, region, brand or category."
	case containsAny(q, "customer", "retention", "loyalty", "churn", "satisfaction"):
		return "Customer-level data (retention, loyalty, satisfaction) isn't part of this dataset. I can analyse sales, margin and units across divisions, regions, brands, categories and stores."
	case containsAny(q, "inventory", "stock level", "out of stock", "warehouse"):
		return "Inventory and stock levels aren't tracked in this dataset. I can analyse what was sold: sales, margin and units by division, region, brand, category or store."
	case containsAny(q, "competitor", "competition", "rival"):
		return "Competitor data isn't available here; the dataset covers only our own transactions. I can benchmark our brands against each other within categories instead."
	default:
		return "This question requires data not available in the current dataset. I can answer questions about sales, margin and units across divisions, regions, brands, categories and stores for 2023-2024."
	}
}

func containsAny(q string, terms ...string) bool {
	for _, t := range terms {
		if strings.Contains(q, t) {
			return true
		}
	}
	return false
}
