package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_VariantsOf(t *testing.T) {
	catalog := fixtureCatalog()

	// given a product with a same-name sibling
	variants := VariantsOf(catalog, catalog[1])

	// then every same-name entry is present, ascending by price
	require.Len(t, variants, 2)
	assert.Equal(t, int64(1), variants[0].ID)
	assert.Equal(t, int64(2), variants[1].ID)
	assert.LessOrEqual(t, variants[0].Price, variants[1].Price)
}

func Test_VariantsOf_NoSiblings(t *testing.T) {
	catalog := fixtureCatalog()

	variants := VariantsOf(catalog, catalog[4])

	// a product without siblings yields itself only
	require.Len(t, variants, 1)
	assert.Equal(t, catalog[4].ID, variants[0].ID)
}

func Test_Related(t *testing.T) {
	catalog := fixtureCatalog()

	related := Related(catalog, catalog[2], 4)

	// same brand, excluding the product itself
	require.Len(t, related, 1)
	assert.Equal(t, int64(4), related[0].ID)

	// the limit caps the result
	assert.Len(t, Related(catalog, catalog[0], 0), 0)
}
