package session

import (
	"strings"
	"testing"

	"retailiq/internal/routing"
)

func TestCommitMergesEntities(t *testing.T) {
	m := NewMemory()

	m.Commit(routing.ToolYoYComparison, routing.Filters{Region: "East", Brand: "Acme"}, "first insight", "Acme")
	m.Commit(routing.ToolDivisionMix, routing.Filters{Region: "West"}, "second insight", "")

	// Region overwritten, brand retained even though the second turn had none.
	if m.Entities["region"] != "West" {
		t.Fatalf("region: got=%q want=West", m.Entities["region"])
	}
	if m.Entities["brand"] != "Acme" {
		t.Fatalf("brand lost on merge: got=%q", m.Entities["brand"])
	}
}

func TestCommitReplacesLastFiltersWholesale(t *testing.T) {
	m := NewMemory()

	m.Commit(routing.ToolYoYComparison, routing.Filters{Metric: routing.MetricMargin, Region: "East", TopN: 5}, "x", "")
	m.Commit(routing.ToolStorePerformance, routing.Filters{Metric: routing.MetricSales}, "y", "")

	if m.LastFilters["tool"] != string(routing.ToolStorePerformance) {
		t.Fatalf("tool: got=%q", m.LastFilters["tool"])
	}
	if _, ok := m.LastFilters["region"]; ok {
		t.Fatal("stale region filter survived the replace")
	}
	if _, ok := m.LastFilters["top_n"]; ok {
		t.Fatal("stale top_n filter survived the replace")
	}
	if m.LastFilters["metric"] != "sales" {
		t.Fatalf("metric: got=%q", m.LastFilters["metric"])
	}
}

func TestCommitTruncatesDescription(t *testing.T) {
	m := NewMemory()
	long := strings.Repeat("a", 500)
	m.Commit(routing.ToolYoYComparison, routing.Filters{}, long, "item")
	if len(m.LastResult.Description) != 200 {
		t.Fatalf("description length: got=%d want=200", len(m.LastResult.Description))
	}
	if m.LastResult.TopItem != "item" {
		t.Fatalf("top item: got=%q", m.LastResult.TopItem)
	}
}

func TestEmpty(t *testing.T) {
	m := NewMemory()
	if !m.Empty() {
		t.Fatal("fresh memory should be empty")
	}
	m.Commit(routing.ToolYoYComparison, routing.Filters{}, "insight", "")
	if m.Empty() {
		t.Fatal("memory with a committed turn is not empty")
	}
}

func TestPromptBlock(t *testing.T) {
	m := NewMemory()
	if m.PromptBlock() != "" {
		t.Fatal("empty memory renders no block")
	}

	m.Commit(routing.ToolBrandRegionCrosstab,
		routing.Filters{Metric: routing.MetricSales, Region: "East", Brand: "Acme", TopN: 5},
		"Acme leads the East.", "Acme")

	block := m.PromptBlock()
	for _, want := range []string{
		"Current entities: region=East, brand=Acme",
		"Last tool used: brand_region_crosstab",
		"metric=sales",
		"region=East",
		"top_n=5",
		"Last analysis: Acme leads the East.",
		"Top item from last result: Acme",
	} {
		if !strings.Contains(block, want) {
			t.Errorf("prompt block missing %q:\n%s", want, block)
		}
	}
}
