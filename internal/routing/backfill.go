package routing

import (
	"regexp"
	"strconv"
	"strings"
)

var topNRe = regexp.MustCompile(`(?:top|bottom)\s+(\d+)`)

// BackfillFilters fills any filter the classifier left unset by scanning the
// question against the controlled vocabulary. It never overwrites a value
// the classifier already supplied, which also makes it idempotent: running
// it twice on the same (question, filters) pair is a no-op the second time.
func (r *Router) BackfillFilters(question string, f Filters) Filters {
	q := strings.ToLower(question)

	if f.Region == "" {
		f.Region = matchValue(q, r.summary.Regions)
	}
	if f.Division == "" {
		f.Division = matchValue(q, r.summary.Divisions)
	}
	if f.Category == "" {
		f.Category = matchValue(q, r.summary.Categories)
	}
	if f.Brand == "" {
		f.Brand = matchValue(q, r.summary.Brands)
	}

	if f.Metric == "" {
		switch {
		case containsAny(q, "margin rate", "margin_rate", "margin %", "margin percent", "profitability rate"):
			f.Metric = MetricMarginRate
		case containsAny(q, "margin", "profit"):
			f.Metric = MetricMargin
		case containsAny(q, "units", "volume", "quantity", "how many"):
			f.Metric = MetricUnits
		default:
			f.Metric = MetricSales
		}
	}

	if f.GroupBy == "" {
		switch {
		// Explicit region-analysis phrasing only groups by region when the
		// question is not already narrowed to one region.
		case f.Region == "" && containsAny(q, "by region", "across regions", "per region", "each region", "regional"):
			f.GroupBy = GroupRegion
		case containsAny(q, "brand", "brands"):
			f.GroupBy = GroupBrand
		case containsAny(q, "category", "categories"):
			f.GroupBy = GroupCategory
		case f.Region == "" && strings.Contains(q, "region"):
			f.GroupBy = GroupRegion
		case f.Division != "":
			// A division filter narrows the slice, so group one level down.
			f.GroupBy = GroupCategory
		default:
			f.GroupBy = GroupDivision
		}
	}

	if f.GroupValue == "" {
		switch f.GroupBy {
		case GroupDivision:
			f.GroupValue = f.Division
		case GroupRegion:
			f.GroupValue = f.Region
		case GroupBrand:
			f.GroupValue = f.Brand
		case GroupCategory:
			f.GroupValue = f.Category
		}
	}

	if f.TimeGrain == "" {
		switch {
		case containsAny(q, "quarter", "quarterly", "q1", "q2", "q3", "q4"):
			f.TimeGrain = GrainQuarter
		case containsAny(q, "month", "monthly"):
			f.TimeGrain = GrainMonth
		}
	}

	if f.TopN == 0 {
		if m := topNRe.FindStringSubmatch(q); m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil {
				f.TopN = n
			}
		}
	}

	if f.View == "" {
		switch {
		case containsAny(q, "worst", "bottom", "lowest", "underperform", "weakest", "declining"):
			f.View = ViewBottom
		case containsAny(q, "best", "top", "highest", "leading", "strongest"):
			f.View = ViewTop
		}
	}

	if f.Year == 0 {
		switch {
		case strings.Contains(q, "2023"):
			f.Year = 2023
		case strings.Contains(q, "2024"):
			f.Year = 2024
		}
	}

	return f
}

// matchValue returns the first controlled value appearing in the lowercased
// question as a substring. List order is the match priority.
func matchValue(q string, values []string) string {
	for _, v := range values {
		if v != "" && strings.Contains(q, strings.ToLower(v)) {
			return v
		}
	}
	return ""
}
