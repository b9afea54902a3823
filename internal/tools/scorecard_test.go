package tools

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"retailiq/internal/dataset"
	"retailiq/internal/routing"
)

// scorecardFixture crafts one division per flag: Grow goes green (+10%
// growth, 40% margin above the median), Flat stays amber (+2%), Shrink goes
// red (-10%).
func scorecardFixture() *dataset.Dataset {
	return fixture(
		dataset.Row{Year: 2023, Month: 1, Division: "Grow", Price: 1000, Units: 1, Cost: 600},
		dataset.Row{Year: 2024, Month: 1, Division: "Grow", Price: 1100, Units: 1, Cost: 660},
		dataset.Row{Year: 2023, Month: 1, Division: "Flat", Price: 1000, Units: 1, Cost: 800},
		dataset.Row{Year: 2024, Month: 1, Division: "Flat", Price: 1020, Units: 1, Cost: 816},
		dataset.Row{Year: 2023, Month: 1, Division: "Shrink", Price: 1000, Units: 1, Cost: 700},
		dataset.Row{Year: 2024, Month: 1, Division: "Shrink", Price: 900, Units: 1, Cost: 630},
	)
}

func TestKPIScorecardRAGFlags(t *testing.T) {
	res := KPIScorecard(scorecardFixture(), routing.Filters{})
	sum, ok := res.Data.(*ScorecardSummary)
	require.True(t, ok)

	require.Len(t, sum.Rows, 3)
	byName := map[string]ScorecardRow{}
	for _, r := range sum.Rows {
		byName[r.Division] = r
	}

	grow := byName["Grow"]
	assert.InDelta(t, 10, grow.GrowthPct, 1e-9)
	assert.InDelta(t, 40, grow.MarginRateEnd, 1e-9)
	assert.Equal(t, StatusGreen, grow.Status)

	flat := byName["Flat"]
	assert.InDelta(t, 2, flat.GrowthPct, 1e-9)
	assert.Equal(t, StatusAmber, flat.Status)

	shrink := byName["Shrink"]
	assert.InDelta(t, -10, shrink.GrowthPct, 1e-9)
	assert.Equal(t, StatusRed, shrink.Status)
}

func TestKPIScorecardMarginDropGoesRed(t *testing.T) {
	// Growing sales but the margin rate falls more than two points.
	ds := fixture(
		dataset.Row{Year: 2023, Month: 1, Division: "Eroding", Price: 1000, Units: 1, Cost: 600},
		dataset.Row{Year: 2024, Month: 1, Division: "Eroding", Price: 1100, Units: 1, Cost: 770},
		dataset.Row{Year: 2023, Month: 1, Division: "Steady", Price: 1000, Units: 1, Cost: 600},
		dataset.Row{Year: 2024, Month: 1, Division: "Steady", Price: 1000, Units: 1, Cost: 600},
	)
	res := KPIScorecard(ds, routing.Filters{})
	sum := res.Data.(*ScorecardSummary)

	byName := map[string]ScorecardRow{}
	for _, r := range sum.Rows {
		byName[r.Division] = r
	}
	eroding := byName["Eroding"]
	assert.InDelta(t, -10, eroding.MarginChangePP, 1e-9)
	assert.Equal(t, StatusRed, eroding.Status)
}

func TestKPIScorecardTotalRow(t *testing.T) {
	res := KPIScorecard(scorecardFixture(), routing.Filters{})
	sum := res.Data.(*ScorecardSummary)

	total := sum.Total
	assert.Equal(t, "TOTAL", total.Division)
	assert.InDelta(t, 3000, total.SalesStart, 1e-9)
	assert.InDelta(t, 3020, total.SalesEnd, 1e-9)
	// Growth under 5% and not negative: amber.
	assert.Equal(t, StatusAmber, total.Status)

	// TOTAL is the last table line.
	last := res.Table.Rows[res.Table.Len()-1]
	assert.Equal(t, "TOTAL", last[0])
}

func TestKPIScorecardIgnoresFilters(t *testing.T) {
	res := KPIScorecard(scorecardFixture(), routing.Filters{Division: "Grow", Region: "Nowhere"})
	sum := res.Data.(*ScorecardSummary)
	assert.Len(t, sum.Rows, 3)
}
