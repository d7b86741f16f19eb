// Package catalog holds the product model, the origin document source, the
// session-lifetime cache and the pure filtering/variant logic over it.
package catalog

// Product is a single catalog entry. Entries are immutable once fetched;
// two products sharing a Name are storage/RAM variants of the same device.
type Product struct {
	ID        int64   `json:"id"`
	Name      string  `json:"name"`
	Brand     string  `json:"brand"`
	Price     float64 `json:"price"`
	Image     string  `json:"image"`
	RAM       string  `json:"ram,omitempty"`
	ROM       string  `json:"rom,omitempty"`
	Camera    string  `json:"camera,omitempty"`
	Processor string  `json:"processor,omitempty"`
}
