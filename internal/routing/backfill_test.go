package routing

import "testing"

func TestBackfillDimensionsFromVocabulary(t *testing.T) {
	r := NewRouter(testSummary())

	f := r.BackfillFilters("How is Zenith doing in the west for footwear?", Filters{})
	if f.Region != "West" {
		t.Fatalf("region: got=%q want=West", f.Region)
	}
	if f.Brand != "Zenith" {
		t.Fatalf("brand: got=%q want=Zenith", f.Brand)
	}
	if f.Category != "Footwear" {
		t.Fatalf("category: got=%q want=Footwear", f.Category)
	}
	if f.Division != "" {
		t.Fatalf("division should stay unset: got=%q", f.Division)
	}
}

func TestBackfillNeverOverwrites(t *testing.T) {
	r := NewRouter(testSummary())

	in := Filters{Region: "East", Metric: MetricUnits, GroupBy: GroupBrand, TopN: 3}
	f := r.BackfillFilters("show margin for the west, top 10", in)
	if f.Region != "East" {
		t.Fatalf("region overwritten: got=%q", f.Region)
	}
	if f.Metric != MetricUnits {
		t.Fatalf("metric overwritten: got=%q", f.Metric)
	}
	if f.GroupBy != GroupBrand {
		t.Fatalf("group_by overwritten: got=%q", f.GroupBy)
	}
	if f.TopN != 3 {
		t.Fatalf("top_n overwritten: got=%d", f.TopN)
	}
}

func TestBackfillIsIdempotent(t *testing.T) {
	r := NewRouter(testSummary())
	q := "top 5 brands by margin in the east, monthly"
	once := r.BackfillFilters(q, Filters{})
	twice := r.BackfillFilters(q, once)
	if once != twice {
		t.Fatalf("not idempotent:\nonce=%+v\ntwice=%+v", once, twice)
	}
}

func TestBackfillMetricHeuristics(t *testing.T) {
	r := NewRouter(testSummary())
	cases := []struct {
		question string
		want     Metric
	}{
		{"what is the margin rate by division", MetricMarginRate},
		{"show margin by region", MetricMargin},
		{"how profitable are we", MetricMargin},
		{"how many units did we sell", MetricUnits},
		{"what was the sales volume", MetricUnits},
		{"revenue by division", MetricSales},
	}
	for _, c := range cases {
		if got := r.BackfillFilters(c.question, Filters{}).Metric; got != c.want {
			t.Errorf("%q: metric got=%s want=%s", c.question, got, c.want)
		}
	}
}

func TestBackfillGroupByPrecedence(t *testing.T) {
	r := NewRouter(testSummary())

	// Region phrasing groups by region only when no single region is set.
	if f := r.BackfillFilters("sales by region", Filters{}); f.GroupBy != GroupRegion {
		t.Fatalf("by region: got=%s", f.GroupBy)
	}
	if f := r.BackfillFilters("sales by region in the east", Filters{}); f.GroupBy == GroupRegion {
		t.Fatalf("narrowed to one region must not group by region: got=%s", f.GroupBy)
	}
	if f := r.BackfillFilters("compare brands", Filters{}); f.GroupBy != GroupBrand {
		t.Fatalf("brands: got=%s", f.GroupBy)
	}
	if f := r.BackfillFilters("compare categories", Filters{}); f.GroupBy != GroupCategory {
		t.Fatalf("categories: got=%s", f.GroupBy)
	}
	// A division filter drops grouping one level down.
	if f := r.BackfillFilters("how is apparel doing", Filters{}); f.GroupBy != GroupCategory {
		t.Fatalf("division filter: got=%s", f.GroupBy)
	}
	if f := r.BackfillFilters("how are we doing", Filters{}); f.GroupBy != GroupDivision {
		t.Fatalf("default: got=%s", f.GroupBy)
	}
}

func TestBackfillGroupValueMirrorsFilter(t *testing.T) {
	r := NewRouter(testSummary())
	f := r.BackfillFilters("forecast for apparel by category", Filters{})
	if f.GroupBy != GroupCategory || f.Division != "Apparel" {
		t.Fatalf("setup: %+v", f)
	}
	if f.GroupValue != "" {
		t.Fatalf("group value should mirror the category filter (unset): got=%q", f.GroupValue)
	}

	f = r.BackfillFilters("forecast for the east region", Filters{GroupBy: GroupRegion})
	if f.GroupValue != "East" {
		t.Fatalf("group value: got=%q want=East", f.GroupValue)
	}
}

func TestBackfillGrainTopNViewYear(t *testing.T) {
	r := NewRouter(testSummary())

	f := r.BackfillFilters("show quarterly numbers for top 7 worst stores in 2023", Filters{})
	if f.TimeGrain != GrainQuarter {
		t.Fatalf("grain: got=%s", f.TimeGrain)
	}
	if f.TopN != 7 {
		t.Fatalf("top_n: got=%d", f.TopN)
	}
	if f.View != ViewBottom {
		t.Fatalf("view (bottom words win): got=%s", f.View)
	}
	if f.Year != 2023 {
		t.Fatalf("year: got=%d", f.Year)
	}

	f = r.BackfillFilters("monthly trend for the best performers in 2024", Filters{})
	if f.TimeGrain != GrainMonth || f.View != ViewTop || f.Year != 2024 {
		t.Fatalf("grain/view/year: %+v", f)
	}

	if f := r.BackfillFilters("bottom 4 brands", Filters{}); f.TopN != 4 || f.View != ViewBottom {
		t.Fatalf("bottom n: %+v", f)
	}
}
