package tools

import "retailiq/internal/dataset"

// derive fills the KPI columns the loader would have computed.
func derive(r dataset.Row) dataset.Row {
	r.Sales = r.Price * r.Units
	r.COGS = r.Cost * r.Units
	r.Margin = r.Sales - r.COGS
	if r.Sales != 0 {
		r.MarginRate = r.Margin / r.Sales
	}
	return r
}

func fixture(rows ...dataset.Row) *dataset.Dataset {
	ds := &dataset.Dataset{}
	for _, r := range rows {
		ds.Rows = append(ds.Rows, derive(r))
	}
	return ds
}

// twoYearDivisions is the standard two-division, two-year slice most tool
// tests start from: Apparel grows 20%, Outdoor declines 20%.
func twoYearDivisions() *dataset.Dataset {
	return fixture(
		dataset.Row{Year: 2023, Quarter: 1, Month: 1, Region: "East", Division: "Apparel", Category: "Footwear", Brand: "Acme", Product: "Runner", Price: 100, Units: 10, Cost: 60},
		dataset.Row{Year: 2024, Quarter: 1, Month: 1, Region: "East", Division: "Apparel", Category: "Footwear", Brand: "Acme", Product: "Runner", Price: 100, Units: 12, Cost: 60},
		dataset.Row{Year: 2023, Quarter: 2, Month: 4, Region: "West", Division: "Outdoor", Category: "Camping", Brand: "Nimbus", Product: "Tent", Price: 250, Units: 2, Cost: 150},
		dataset.Row{Year: 2024, Quarter: 2, Month: 4, Region: "West", Division: "Outdoor", Category: "Camping", Brand: "Nimbus", Product: "Tent", Price: 200, Units: 2, Cost: 150},
	)
}
