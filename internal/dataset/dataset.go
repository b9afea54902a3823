// Package dataset holds the in-memory retail transaction table and its
// derived KPI columns. The dataset is loaded once and treated as read-only
// for the lifetime of the process.
package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
)

// Row is a single retail transaction line. SALES, COGS, MARGIN and
// MARGIN_RATE are derived from the base columns at load time and must never
// be mutated independently.
type Row struct {
	Year      int
	Quarter   int
	Month     int
	StoreID   string
	StoreName string
	StoreSize float64
	Region    string
	ProductID string
	Brand     string
	Category  string
	Division  string
	Product   string
	Price     float64
	Units     float64
	Cost      float64

	Sales      float64
	COGS       float64
	Margin     float64
	MarginRate float64
}

// Dataset is the immutable loaded table.
type Dataset struct {
	Rows []Row
}

// Filter is the common dimension filter every aggregation accepts. Empty
// fields are no-ops.
type Filter struct {
	Division string
	Region   string
	Category string
	Brand    string
}

// Match reports whether the row passes every set dimension.
func (f Filter) Match(r Row) bool {
	if f.Division != "" && r.Division != f.Division {
		return false
	}
	if f.Region != "" && r.Region != f.Region {
		return false
	}
	if f.Category != "" && r.Category != f.Category {
		return false
	}
	if f.Brand != "" && r.Brand != f.Brand {
		return false
	}
	return true
}

// Active returns human-readable "Div: X" style labels for the set filters,
// in the fixed division/region/category/brand order.
func (f Filter) Active() []string {
	var parts []string
	if f.Division != "" {
		parts = append(parts, "Div: "+f.Division)
	}
	if f.Region != "" {
		parts = append(parts, "Reg: "+f.Region)
	}
	if f.Category != "" {
		parts = append(parts, "Cat: "+f.Category)
	}
	if f.Brand != "" {
		parts = append(parts, "Brand: "+f.Brand)
	}
	return parts
}

// Select returns the rows passing the filter. The returned slice shares no
// backing array with future appends; rows themselves are copied values.
func (d *Dataset) Select(f Filter) []Row {
	out := make([]Row, 0, len(d.Rows))
	for _, r := range d.Rows {
		if f.Match(r) {
			out = append(out, r)
		}
	}
	return out
}

// Years returns the sorted distinct years present in rows.
func Years(rows []Row) []int {
	seen := map[int]bool{}
	for _, r := range rows {
		seen[r.Year] = true
	}
	out := make([]int, 0, len(seen))
	for y := range seen {
		out = append(out, y)
	}
	sort.Ints(out)
	return out
}

var baseColumns = []string{
	"YEAR", "QUARTER", "MONTH", "STORE_ID", "STORE_NAME", "STORE_SIZE",
	"REGION", "PRODUCT_ID", "BRAND", "PRODUCT_CATEGORY", "PRODUCT_DIVISION",
	"PRODUCT_NAME", "SELLING_PRICE_PER_UNIT", "UNITS_SOLD", "COST_PER_UNIT",
}

// Load reads the transaction CSV at path and computes the derived KPI
// columns:
//
//	SALES       = SELLING_PRICE_PER_UNIT * UNITS_SOLD
//	COGS        = COST_PER_UNIT * UNITS_SOLD
//	MARGIN      = SALES - COGS
//	MARGIN_RATE = MARGIN / SALES   (0 when SALES is 0)
func Load(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("dataset: open %s: %w", path, err)
	}
	defer f.Close()
	return Read(f)
}

// Read parses CSV rows from r. The header must contain every base column;
// column order is free.
func Read(r io.Reader) (*Dataset, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("dataset: read header: %w", err)
	}
	idx := map[string]int{}
	for i, name := range header {
		idx[strings.ToUpper(strings.TrimSpace(name))] = i
	}
	for _, name := range baseColumns {
		if _, ok := idx[name]; !ok {
			return nil, fmt.Errorf("dataset: missing column %s", name)
		}
	}

	ds := &Dataset{}
	line := 1
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("dataset: line %d: %w", line+1, err)
		}
		line++
		get := func(name string) string { return strings.TrimSpace(rec[idx[name]]) }

		row := Row{
			StoreID:   get("STORE_ID"),
			StoreName: get("STORE_NAME"),
			Region:    get("REGION"),
			ProductID: get("PRODUCT_ID"),
			Brand:     get("BRAND"),
			Category:  get("PRODUCT_CATEGORY"),
			Division:  get("PRODUCT_DIVISION"),
			Product:   get("PRODUCT_NAME"),
		}
		if row.Year, err = strconv.Atoi(get("YEAR")); err != nil {
			return nil, fmt.Errorf("dataset: line %d: YEAR: %w", line, err)
		}
		if row.Quarter, err = strconv.Atoi(get("QUARTER")); err != nil {
			return nil, fmt.Errorf("dataset: line %d: QUARTER: %w", line, err)
		}
		if row.Month, err = strconv.Atoi(get("MONTH")); err != nil {
			return nil, fmt.Errorf("dataset: line %d: MONTH: %w", line, err)
		}
		// Store size may be blank or non-numeric in exports; treat as 0.
		row.StoreSize, _ = strconv.ParseFloat(get("STORE_SIZE"), 64)
		if row.Price, err = strconv.ParseFloat(get("SELLING_PRICE_PER_UNIT"), 64); err != nil {
			return nil, fmt.Errorf("dataset: line %d: SELLING_PRICE_PER_UNIT: %w", line, err)
		}
		if row.Units, err = strconv.ParseFloat(get("UNITS_SOLD"), 64); err != nil {
			return nil, fmt.Errorf("dataset: line %d: UNITS_SOLD: %w", line, err)
		}
		if row.Cost, err = strconv.ParseFloat(get("COST_PER_UNIT"), 64); err != nil {
			return nil, fmt.Errorf("dataset: line %d: COST_PER_UNIT: %w", line, err)
		}

		row.Sales = row.Price * row.Units
		row.COGS = row.Cost * row.Units
		row.Margin = row.Sales - row.COGS
		if row.Sales != 0 {
			row.MarginRate = row.Margin / row.Sales
		}
		ds.Rows = append(ds.Rows, row)
	}
	return ds, nil
}
