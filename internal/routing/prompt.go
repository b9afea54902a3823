package routing

import (
	"fmt"
	"strings"

	"retailiq/internal/dataset"
)

// toolCatalog is the routing prompt's tool list. The numbering and the
// trigger phrases are part of the prompt contract the classifier is tuned
// against, so keep entries in this order.
var toolCatalog = []struct {
	Tool     Tool
	Purpose  string
	Filters  string
	Triggers string
}{
	{ToolYoYComparison,
		"year-over-year comparisons, growth analysis, performance trends",
		`metric, division, region, category, brand (all optional, default metric="sales")`,
		`"grew", "vs last year", "year over year", "performance", "top/bottom by", "worst/best"`},
	{ToolBrandRegionCrosstab,
		"comparing brands across regions, or regional performance by brand",
		`metric (default "sales"), top_n`,
		`"brands in region", "regional performance", "cross-tab", "heatmap", "which brands"`},
	{ToolForecastTrendline,
		"projections, trends, forecasts into 2025",
		`group_by (one of "division","region","brand","category"), group_value, metric`,
		`"project", "forecast", "trend", "trajectory", "predict", "2025"`},
	{ToolAnomalyDetection,
		"finding outliers, unusual patterns, anomalies",
		`metric (default "margin_rate"), division, region`,
		`"anomaly", "outlier", "unusual", "flag", "looks off", "weird"`},
	{ToolPriceVolumeMargin,
		"price-margin-volume relationships, pricing analysis",
		`division, category`,
		`"price", "pricing", "sweet spot", "price vs margin", "relationship between price"`},
	{ToolStorePerformance,
		"ranking stores, store-level winners and losers",
		`metric, region, top_n, view ("top" or "bottom")`,
		`"store", "stores", "location", "which store", "best/worst store"`},
	{ToolSeasonalityTrends,
		"monthly or quarterly seasonal patterns",
		`metric, division, category, time_grain ("month" or "quarter")`,
		`"seasonal", "seasonality", "by month", "by quarter", "time of year"`},
	{ToolDivisionMix,
		"share-of-business mix across divisions or categories",
		`metric, group_by, year`,
		`"mix", "share", "percentage of", "composition", "breakdown"`},
	{ToolMarginWaterfall,
		"explaining what drove the margin change between years",
		`division, region`,
		`"why did margin", "margin change", "margin bridge", "waterfall", "what drove"`},
	{ToolKPIScorecard,
		"executive overview of all divisions at once",
		`(none)`,
		`"overview", "scorecard", "dashboard", "health check", "how is the business"`},
	{ToolPriceElasticity,
		"price sensitivity and demand response to price changes",
		`division, category`,
		`"elasticity", "price sensitive", "demand response", "if we raise prices"`},
	{ToolBrandBenchmarking,
		"benchmarking a brand against its category average",
		`brand, category, metric`,
		`"benchmark", "vs category", "compare brand", "brand against"`},
	{ToolGrowthMarginMatrix,
		"growth vs margin portfolio quadrants (stars, dogs)",
		`group_by, metric`,
		`"quadrant", "matrix", "stars", "dogs", "portfolio", "invest or divest"`},
	{ToolOutOfScope,
		"questions the dataset cannot answer (customers, inventory, competitors, employees, web traffic)",
		`(none)`,
		`"customer", "loyalty", "inventory", "stock", "competitor", "employee", "website"`},
}

// BuildRoutingPrompt constructs the first-pass system prompt: dataset schema,
// filter vocabulary, the tool catalog, and session memory. memoryBlock is a
// pre-rendered description of session state, or empty for a fresh session.
func BuildRoutingPrompt(sum *dataset.Summary, memoryBlock string) string {
	if memoryBlock == "" {
		memoryBlock = "No prior context - this is the first question."
	}

	var b strings.Builder
	fmt.Fprintf(&b, `You are a Private Business Intelligence Agent for a retail chain.
You analyze a dataset with %s rows of retail transaction data.

Dataset columns: YEAR, QUARTER, MONTH, STORE_ID, STORE_NAME, STORE_SIZE, REGION, PRODUCT_ID, BRAND, PRODUCT_CATEGORY, PRODUCT_DIVISION, PRODUCT_NAME, SELLING_PRICE_PER_UNIT, UNITS_SOLD, COST_PER_UNIT
Derived KPI columns: SALES, COGS, MARGIN, MARGIN_RATE

Available filter values:
- divisions: %s
- regions: %s
- categories: %s
- brands: %s
- metrics: ["sales", "margin", "units", "margin_rate"]
- years: %s

You have exactly %d analysis tools. Pick the ONE best tool for each question:

`,
		thousands(sum.TotalRows),
		quoteList(sum.Divisions), quoteList(sum.Regions),
		quoteList(sum.Categories), quoteList(sum.Brands),
		intList(sum.Years), len(toolCatalog))

	for i, t := range toolCatalog {
		fmt.Fprintf(&b, "%d. %q - Use for %s.\n   Filters: %s\n   Triggers: %s\n\n",
			i+1, string(t.Tool), t.Purpose, t.Filters, t.Triggers)
	}

	fmt.Fprintf(&b, `Session memory (context from prior questions):
%s

IMPORTANT RULES:
- If the user references "that region", "the top brand", "it", etc., resolve from session memory above.
- Always pick the MOST APPROPRIATE tool. When in doubt, use yoy_comparison.
- Your ONLY job is to pick the tool and filters. Do NOT generate insights.

You MUST respond with ONLY a valid JSON object in this EXACT format, nothing else:
{
  "tool": "tool_name_here",
  "filters": {
    "metric": "sales",
    "division": null,
    "region": null,
    "category": null,
    "brand": null,
    "group_by": null,
    "group_value": null,
    "time_grain": null,
    "top_n": null,
    "view": null,
    "year": null
  }
}

Do NOT include any text, explanation, or markdown outside the JSON object.
Do NOT wrap the JSON in code fences.
Respond with ONLY the JSON object.`, memoryBlock)

	return b.String()
}

// BuildInsightPrompt constructs the second-pass system prompt that turns the
// tool's data digest into a written business insight.
func BuildInsightPrompt(tool Tool, dataSummary string) string {
	return fmt.Sprintf(`You are a senior Business Intelligence analyst at a retail chain.
You have just run the %q analysis tool and received real data results.

Here are the ACTUAL DATA RESULTS from the analysis:
---
%s
---

Based on these real numbers, write a business insight and suggest follow-up questions.

RULES FOR YOUR INSIGHT:
- Reference SPECIFIC numbers, percentages, and entity names from the data above.
- Explain what the numbers MEAN for the business.
- Include business reasoning: WHY might these patterns exist? What should a business leader do about it?
- If there are notable outliers or surprises in the data, call them out.
- Write 3-5 sentences. Be specific and analytical, not vague.
- Do NOT say "likely shows" or "may indicate" - you have the real data, so state facts.

RULES FOR SUGGESTIONS:
- Suggest 3 follow-up questions that reference specific entities from the data.
- Each question should help the user dig deeper into interesting findings.

You MUST respond with ONLY a valid JSON object in this EXACT format:
{
  "insight": "Your 3-5 sentence data-driven business insight here.",
  "suggestions": [
    "Follow-up question 1",
    "Follow-up question 2",
    "Follow-up question 3"
  ]
}

Do NOT include any text outside the JSON object.
Respond with ONLY the JSON object.`, strings.ReplaceAll(string(tool), "_", " "), dataSummary)
}

func quoteList(vals []string) string {
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = fmt.Sprintf("%q", v)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func intList(vals []int) string {
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = fmt.Sprintf("%d", v)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func thousands(n int) string {
	s := fmt.Sprintf("%d", n)
	if len(s) <= 3 {
		return s
	}
	var b strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}
