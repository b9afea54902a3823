package tools

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"retailiq/internal/routing"
)

func TestDivisionMixSharesAndShift(t *testing.T) {
	// 2023: Apparel 1000 of 1500 (66.7%). 2024: Apparel 1200 of 1600 (75%).
	res := DivisionMix(twoYearDivisions(), routing.Filters{})
	sum, ok := res.Data.(*MixSummary)
	require.True(t, ok)

	assert.Equal(t, []int{2023, 2024}, sum.Years)
	assert.True(t, sum.HasShift)
	require.Len(t, sum.Rows, 2)

	apparel := sum.Rows[0]
	assert.Equal(t, "Apparel", apparel.Name)
	assert.InDelta(t, 66.6667, apparel.Shares[0], 1e-3)
	assert.InDelta(t, 75, apparel.Shares[1], 1e-9)
	assert.InDelta(t, 8.3333, apparel.ShiftPP, 1e-3)

	outdoor := sum.Rows[1]
	assert.InDelta(t, -8.3333, outdoor.ShiftPP, 1e-3)

	// Shares per year add to 100.
	assert.InDelta(t, 100, apparel.Shares[0]+outdoor.Shares[0], 1e-9)
	assert.Equal(t, []string{"Division", "2023", "2023 Share", "2024", "2024 Share", "Shift pp"}, res.Table.Columns)
}

func TestDivisionMixYearFilter(t *testing.T) {
	res := DivisionMix(twoYearDivisions(), routing.Filters{Year: 2024})
	sum := res.Data.(*MixSummary)

	assert.Equal(t, []int{2024}, sum.Years)
	assert.False(t, sum.HasShift)
	require.Len(t, sum.Rows, 2)
	assert.Len(t, sum.Rows[0].Shares, 1)
}

func TestDivisionMixMarginRateFallsBackToSales(t *testing.T) {
	res := DivisionMix(twoYearDivisions(), routing.Filters{Metric: routing.MetricMarginRate})
	sum := res.Data.(*MixSummary)
	assert.Equal(t, routing.MetricSales, sum.Metric)
}
