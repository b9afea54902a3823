package dataset

import "sort"

// Summary is the read-only dataset projection used for sidebar stats and as
// the controlled vocabulary the routing layer matches against. Computed once
// per load.
type Summary struct {
	TotalRows   int                 `json:"total_rows"`
	Years       []int               `json:"years"`
	Regions     []string            `json:"regions"`
	Divisions   []string            `json:"divisions"`
	Categories  []string            `json:"categories"`
	Brands      []string            `json:"brands"`
	StoreNames  []string            `json:"store_names"`
	SalesByYear map[int]float64     `json:"sales_by_year"`
}

// Summarize builds the Summary projection.
func Summarize(d *Dataset) *Summary {
	s := &Summary{
		TotalRows:   len(d.Rows),
		SalesByYear: map[int]float64{},
	}
	regions := map[string]bool{}
	divisions := map[string]bool{}
	categories := map[string]bool{}
	brands := map[string]bool{}
	stores := map[string]bool{}
	for _, r := range d.Rows {
		regions[r.Region] = true
		divisions[r.Division] = true
		categories[r.Category] = true
		brands[r.Brand] = true
		if r.StoreName != "" {
			stores[r.StoreName] = true
		}
		s.SalesByYear[r.Year] += r.Sales
	}
	s.Years = Years(d.Rows)
	s.Regions = sortedKeys(regions)
	s.Divisions = sortedKeys(divisions)
	s.Categories = sortedKeys(categories)
	s.Brands = sortedKeys(brands)
	s.StoreNames = sortedKeys(stores)
	return s
}

func sortedKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
