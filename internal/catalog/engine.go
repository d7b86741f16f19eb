package catalog

import (
	"slices"
	"sort"
	"strings"
)

// SortKey selects the ordering of a filtered product list.
type SortKey string

const (
	SortNone      SortKey = ""
	SortPriceAsc  SortKey = "price-asc"
	SortPriceDesc SortKey = "price-desc"
)

// ParseSortKey maps a raw sort parameter to a SortKey.
// Unknown values degrade to SortNone.
func ParseSortKey(raw string) SortKey {
	switch SortKey(raw) {
	case SortPriceAsc, SortPriceDesc:
		return SortKey(raw)
	default:
		return SortNone
	}
}

// Criteria is the transient set of filter inputs for one filter action.
// Empty sets and an empty query do not constrain; MaxPrice <= 0 means no
// price ceiling. The zero value is therefore the identity filter.
type Criteria struct {
	Brands   []string
	RAMs     []string
	ROMs     []string
	MaxPrice float64
	Sort     SortKey
	Query    string
}

// Apply narrows the catalog by every populated criterion in a fixed order
// (brands, free-text query, RAM, ROM, price ceiling) and then sorts the
// result. All criteria intersect: a brand constraint stays in force when a
// free-text query is present. The input slice is never mutated; sorting is
// stable, so ties and SortNone preserve the post-filter relative order.
func Apply(catalog []Product, c Criteria) []Product {
	query := strings.ToLower(strings.TrimSpace(c.Query))

	filtered := make([]Product, 0, len(catalog))
	for _, p := range catalog {
		if len(c.Brands) > 0 && !slices.Contains(c.Brands, p.Brand) {
			continue
		}
		if query != "" &&
			!strings.Contains(strings.ToLower(p.Name), query) &&
			!strings.Contains(strings.ToLower(p.Brand), query) {
			continue
		}
		if len(c.RAMs) > 0 && !slices.Contains(c.RAMs, p.RAM) {
			continue
		}
		if len(c.ROMs) > 0 && !slices.Contains(c.ROMs, p.ROM) {
			continue
		}
		if c.MaxPrice > 0 && p.Price > c.MaxPrice {
			continue
		}
		filtered = append(filtered, p)
	}

	switch c.Sort {
	case SortPriceAsc:
		sort.SliceStable(filtered, func(i, j int) bool { return filtered[i].Price < filtered[j].Price })
	case SortPriceDesc:
		sort.SliceStable(filtered, func(i, j int) bool { return filtered[i].Price > filtered[j].Price })
	}
	return filtered
}

// FacetValues enumerates the values offered by the filter controls.
// They are always derived from the full catalog, not a filtered view.
type FacetValues struct {
	Brands []string `json:"brands"`
	RAMs   []string `json:"rams"`
	ROMs   []string `json:"roms"`
}

// Facets returns the distinct brands in first-seen order and the distinct
// RAM/ROM values sorted ascending, with absent values excluded.
func Facets(catalog []Product) FacetValues {
	var facets FacetValues
	seenBrand := make(map[string]bool)
	seenRAM := make(map[string]bool)
	seenROM := make(map[string]bool)
	for _, p := range catalog {
		if !seenBrand[p.Brand] {
			seenBrand[p.Brand] = true
			facets.Brands = append(facets.Brands, p.Brand)
		}
		if p.RAM != "" && !seenRAM[p.RAM] {
			seenRAM[p.RAM] = true
			facets.RAMs = append(facets.RAMs, p.RAM)
		}
		if p.ROM != "" && !seenROM[p.ROM] {
			seenROM[p.ROM] = true
			facets.ROMs = append(facets.ROMs, p.ROM)
		}
	}
	sort.Strings(facets.RAMs)
	sort.Strings(facets.ROMs)
	return facets
}

// NewArrivals returns the first n catalog entries, used for the home view.
func NewArrivals(catalog []Product, n int) []Product {
	if n <= 0 {
		return nil
	}
	if n > len(catalog) {
		n = len(catalog)
	}
	return slices.Clone(catalog[:n])
}
