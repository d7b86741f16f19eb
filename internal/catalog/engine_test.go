package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// fixtureCatalog returns a small catalog with brand/name variants.
func fixtureCatalog() []Product {
	return []Product{
		{ID: 1, Name: "Nova X", Brand: "Nova", Price: 5000, RAM: "6GB", ROM: "128GB"},
		{ID: 2, Name: "Nova X", Brand: "Nova", Price: 20000, RAM: "12GB", ROM: "256GB"},
		{ID: 3, Name: "Pulse 9", Brand: "Pulse", Price: 10000, RAM: "8GB", ROM: "128GB"},
		{ID: 4, Name: "Pulse 9 Lite", Brand: "Pulse", Price: 8000, RAM: "6GB", ROM: "64GB"},
		{ID: 5, Name: "Aster One", Brand: "Aster", Price: 10000},
	}
}

func Test_Apply(t *testing.T) {
	catalog := fixtureCatalog()
	testCases := []struct {
		name        string
		criteria    Criteria
		expectedIDs []int64
	}{
		{
			name:        "identity - zero criteria returns catalog in original order",
			criteria:    Criteria{},
			expectedIDs: []int64{1, 2, 3, 4, 5},
		},
		{
			name:        "brand filter keeps only matching brands",
			criteria:    Criteria{Brands: []string{"Pulse"}},
			expectedIDs: []int64{3, 4},
		},
		{
			name:        "free-text query matches name or brand case-insensitively",
			criteria:    Criteria{Query: "pulse"},
			expectedIDs: []int64{3, 4},
		},
		{
			name:        "query intersects with brand filter",
			criteria:    Criteria{Brands: []string{"Nova"}, Query: "pulse"},
			expectedIDs: nil,
		},
		{
			name:        "ram filter",
			criteria:    Criteria{RAMs: []string{"6GB"}},
			expectedIDs: []int64{1, 4},
		},
		{
			name:        "rom filter",
			criteria:    Criteria{ROMs: []string{"128GB"}},
			expectedIDs: []int64{1, 3},
		},
		{
			name:        "price ceiling",
			criteria:    Criteria{MaxPrice: 9000},
			expectedIDs: []int64{1, 4},
		},
		{
			name:        "all criteria conjoined",
			criteria:    Criteria{Brands: []string{"Nova", "Pulse"}, RAMs: []string{"6GB"}, MaxPrice: 6000},
			expectedIDs: []int64{1},
		},
		{
			name:        "price ascending",
			criteria:    Criteria{Sort: SortPriceAsc},
			expectedIDs: []int64{1, 4, 3, 5, 2},
		},
		{
			name:        "price descending",
			criteria:    Criteria{Sort: SortPriceDesc},
			expectedIDs: []int64{2, 3, 5, 4, 1},
		},
		{
			name:        "sort none preserves filtered order",
			criteria:    Criteria{Brands: []string{"Pulse", "Aster"}, Sort: SortNone},
			expectedIDs: []int64{3, 4, 5},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// when
			result := Apply(catalog, tc.criteria)
			// then
			ids := make([]int64, 0, len(result))
			for _, p := range result {
				ids = append(ids, p.ID)
			}
			if tc.expectedIDs == nil {
				assert.Empty(t, ids)
				return
			}
			assert.Equal(t, tc.expectedIDs, ids)
		})
	}
}

func Test_Apply_StableSortKeepsTieOrder(t *testing.T) {
	// given two products with equal price, ids 3 and 5
	result := Apply(fixtureCatalog(), Criteria{Sort: SortPriceAsc})
	// then id 3 precedes id 5 because it precedes it in the catalog
	var tieOrder []int64
	for _, p := range result {
		if p.Price == 10000 {
			tieOrder = append(tieOrder, p.ID)
		}
	}
	assert.Equal(t, []int64{3, 5}, tieOrder)
}

func Test_Apply_DoesNotMutateInput(t *testing.T) {
	catalog := fixtureCatalog()
	_ = Apply(catalog, Criteria{Sort: SortPriceDesc})
	ids := make([]int64, 0, len(catalog))
	for _, p := range catalog {
		ids = append(ids, p.ID)
	}
	assert.Equal(t, []int64{1, 2, 3, 4, 5}, ids)
}

func Test_Facets(t *testing.T) {
	facets := Facets(fixtureCatalog())

	// brands in first-seen order
	assert.Equal(t, []string{"Nova", "Pulse", "Aster"}, facets.Brands)
	// ram/rom sorted ascending, absent values excluded
	assert.Equal(t, []string{"12GB", "6GB", "8GB"}, facets.RAMs)
	assert.Equal(t, []string{"128GB", "256GB", "64GB"}, facets.ROMs)
}

func Test_NewArrivals(t *testing.T) {
	catalog := fixtureCatalog()

	first := NewArrivals(catalog, 2)
	assert.Len(t, first, 2)
	assert.Equal(t, int64(1), first[0].ID)

	// asking for more than available returns the whole catalog
	all := NewArrivals(catalog, 50)
	assert.Len(t, all, len(catalog))
}

func Test_ParseSortKey(t *testing.T) {
	assert.Equal(t, SortPriceAsc, ParseSortKey("price-asc"))
	assert.Equal(t, SortPriceDesc, ParseSortKey("price-desc"))
	// unknown values degrade to no sorting
	assert.Equal(t, SortNone, ParseSortKey("rating-desc"))
	assert.Equal(t, SortNone, ParseSortKey(""))
}
