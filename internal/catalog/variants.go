package catalog

import "sort"

// VariantsOf returns every catalog entry sharing the product's display name,
// ascending by price. A product with no siblings yields a single-element
// slice containing itself. Selecting a variant is a presentation concern:
// it only changes which product id later cart/wishlist actions target.
func VariantsOf(catalog []Product, product Product) []Product {
	var variants []Product
	for _, p := range catalog {
		if p.Name == product.Name {
			variants = append(variants, p)
		}
	}
	sort.SliceStable(variants, func(i, j int) bool { return variants[i].Price < variants[j].Price })
	return variants
}

// Related returns up to n entries of the same brand, excluding the product itself.
func Related(catalog []Product, product Product, n int) []Product {
	if n <= 0 {
		return nil
	}
	var related []Product
	for _, p := range catalog {
		if p.Brand == product.Brand && p.ID != product.ID {
			related = append(related, p)
			if len(related) == n {
				break
			}
		}
	}
	return related
}
