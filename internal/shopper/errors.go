// Package shopper applies cart, wishlist and session actions against the
// slot store and computes order totals.
package shopper

import "errors"

var (
	ErrLoginRequired = errors.New("login required")
	ErrCartEmpty     = errors.New("cart is empty")
)
