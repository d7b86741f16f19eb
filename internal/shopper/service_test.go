package shopper

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/abgdnv/storefront/internal/catalog"
	"github.com/abgdnv/storefront/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubCatalog serves a fixed product list without fetching.
type stubCatalog struct {
	products []catalog.Product
}

func (s *stubCatalog) Load(_ context.Context) []catalog.Product {
	return s.products
}

func (s *stubCatalog) FindByID(_ context.Context, id int64) (*catalog.Product, error) {
	for _, p := range s.products {
		if p.ID == id {
			return &p, nil
		}
	}
	return nil, catalog.ErrProductNotFound
}

func testProducts() []catalog.Product {
	return []catalog.Product{
		{ID: 1, Name: "Nova X", Brand: "Nova", Price: 10000},
		{ID: 2, Name: "Pulse 9", Brand: "Pulse", Price: 5000},
		{ID: 3, Name: "Aster One", Brand: "Aster", Price: 20000},
	}
}

func newTestService(products []catalog.Product) (*Service, store.SlotStore) {
	slots := store.NewMemStore()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(slots, &stubCatalog{products: products}, logger), slots
}

func Test_AddToCart(t *testing.T) {
	svc, _ := newTestService(testProducts())
	ctx := context.Background()

	// first add creates a line with quantity 1
	cart, err := svc.AddToCart(ctx, 1)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 1, cart.Items[0].Quantity)

	// second add increments the same line
	cart, err = svc.AddToCart(ctx, 1)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 2, cart.Items[0].Quantity)
}

func Test_AddToCart_UnknownProduct(t *testing.T) {
	svc, _ := newTestService(testProducts())
	ctx := context.Background()

	_, err := svc.AddToCart(ctx, 999)
	assert.ErrorIs(t, err, catalog.ErrProductNotFound)

	// the stored cart was not mutated
	cart, err := svc.Cart(ctx)
	require.NoError(t, err)
	assert.Empty(t, cart.Items)
}

func Test_ChangeQuantity(t *testing.T) {
	testCases := []struct {
		name          string
		setup         []int64 // products added once each
		productID     int64
		delta         int
		expectedItems map[int64]int // product id -> quantity
	}{
		{
			name:          "increment existing line",
			setup:         []int64{1},
			productID:     1,
			delta:         1,
			expectedItems: map[int64]int{1: 2},
		},
		{
			name:          "decrement to zero removes the line",
			setup:         []int64{1},
			productID:     1,
			delta:         -1,
			expectedItems: map[int64]int{},
		},
		{
			name:          "unknown product is a no-op",
			setup:         []int64{1},
			productID:     2,
			delta:         1,
			expectedItems: map[int64]int{1: 1},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			svc, _ := newTestService(testProducts())
			ctx := context.Background()
			for _, id := range tc.setup {
				_, err := svc.AddToCart(ctx, id)
				require.NoError(t, err)
			}
			// when
			cart, err := svc.ChangeQuantity(ctx, tc.productID, tc.delta)
			// then
			require.NoError(t, err)
			got := make(map[int64]int)
			for _, item := range cart.Items {
				got[item.Product.ID] = item.Quantity
			}
			assert.Equal(t, tc.expectedItems, got)
		})
	}
}

func Test_RemoveFromCart(t *testing.T) {
	svc, _ := newTestService(testProducts())
	ctx := context.Background()

	_, err := svc.AddToCart(ctx, 1)
	require.NoError(t, err)
	_, err = svc.AddToCart(ctx, 2)
	require.NoError(t, err)

	cart, err := svc.RemoveFromCart(ctx, 1)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, int64(2), cart.Items[0].Product.ID)

	// removing an absent line changes nothing
	cart, err = svc.RemoveFromCart(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, cart.Items, 1)
}

func Test_ComputeTotals(t *testing.T) {
	products := testProducts()
	testCases := []struct {
		name     string
		lines    []Line
		expected Totals
	}{
		{
			name:     "empty cart is all zeros",
			lines:    nil,
			expected: Totals{},
		},
		{
			name:  "quantity two of a 10000 product",
			lines: []Line{{ProductID: 1, Quantity: 2}},
			expected: Totals{
				Subtotal: 20000,
				Tax:      3600,
				Shipping: 50,
				Total:    23650,
			},
		},
		{
			name:  "unresolved lines contribute nothing and are counted",
			lines: []Line{{ProductID: 2, Quantity: 1}, {ProductID: 999, Quantity: 3}},
			expected: Totals{
				Subtotal:   5000,
				Tax:        900,
				Shipping:   50,
				Total:      5950,
				Unresolved: 1,
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, ComputeTotals(tc.lines, products))
		})
	}
}

func Test_ClearCart(t *testing.T) {
	svc, _ := newTestService(testProducts())
	ctx := context.Background()

	_, err := svc.AddToCart(ctx, 1)
	require.NoError(t, err)
	require.NoError(t, svc.ClearCart(ctx))

	cart, err := svc.Cart(ctx)
	require.NoError(t, err)
	assert.Empty(t, cart.Items)
	assert.Equal(t, Totals{}, cart.Totals)
}

func Test_CleanupCart(t *testing.T) {
	svc, slots := newTestService(testProducts())
	ctx := context.Background()

	// a stored cart holding a line for a product that left the catalog
	require.NoError(t, slots.Save(ctx, SlotCart, []byte(`[{"id":1,"quantity":1},{"id":999,"quantity":2}]`)))

	cart, err := svc.Cart(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, cart.Totals.Unresolved)

	cart, err = svc.CleanupCart(ctx)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Zero(t, cart.Totals.Unresolved)
}

func Test_ToggleWishlist_Idempotence(t *testing.T) {
	svc, _ := newTestService(testProducts())
	ctx := context.Background()

	wishlist, err := svc.ToggleWishlist(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, wishlist.Count)

	// double toggle restores the prior state
	wishlist, err = svc.ToggleWishlist(ctx, 1)
	require.NoError(t, err)
	assert.Zero(t, wishlist.Count)
	assert.Empty(t, wishlist.Items)
}

func Test_Wishlist_PreservesInsertionOrder(t *testing.T) {
	svc, _ := newTestService(testProducts())
	ctx := context.Background()

	for _, id := range []int64{3, 1} {
		_, err := svc.ToggleWishlist(ctx, id)
		require.NoError(t, err)
	}

	wishlist, err := svc.Wishlist(ctx)
	require.NoError(t, err)
	require.Len(t, wishlist.Items, 2)
	assert.Equal(t, int64(3), wishlist.Items[0].ID)
	assert.Equal(t, int64(1), wishlist.Items[1].ID)
}

func Test_MalformedSlotPayloadsTreatedAsEmpty(t *testing.T) {
	svc, slots := newTestService(testProducts())
	ctx := context.Background()

	require.NoError(t, slots.Save(ctx, SlotCart, []byte(`{"not":"an array"}`)))
	require.NoError(t, slots.Save(ctx, SlotWishlist, []byte(`garbage`)))

	cart, err := svc.Cart(ctx)
	require.NoError(t, err)
	assert.Empty(t, cart.Items)

	wishlist, err := svc.Wishlist(ctx)
	require.NoError(t, err)
	assert.Zero(t, wishlist.Count)

	// the next write repairs the slot
	_, err = svc.AddToCart(ctx, 1)
	require.NoError(t, err)
	cart, err = svc.Cart(ctx)
	require.NoError(t, err)
	assert.Len(t, cart.Items, 1)
}

func Test_Counters(t *testing.T) {
	svc, _ := newTestService(testProducts())
	ctx := context.Background()

	_, err := svc.AddToCart(ctx, 1)
	require.NoError(t, err)
	_, err = svc.AddToCart(ctx, 1)
	require.NoError(t, err)
	_, err = svc.AddToCart(ctx, 2)
	require.NoError(t, err)
	_, err = svc.ToggleWishlist(ctx, 3)
	require.NoError(t, err)

	counters, err := svc.Counters(ctx)
	require.NoError(t, err)
	// cart badge counts quantities, not lines
	assert.Equal(t, 3, counters.CartCount)
	assert.Equal(t, 1, counters.WishlistCount)
}

func Test_Checkout(t *testing.T) {
	svc, _ := newTestService(testProducts())
	ctx := context.Background()

	// not logged in
	_, err := svc.Checkout(ctx)
	assert.ErrorIs(t, err, ErrLoginRequired)

	// logged in, empty cart
	require.NoError(t, svc.Login(ctx))
	_, err = svc.Checkout(ctx)
	assert.ErrorIs(t, err, ErrCartEmpty)

	// happy path: receipt carries totals, cart is cleared
	_, err = svc.AddToCart(ctx, 1)
	require.NoError(t, err)
	_, err = svc.AddToCart(ctx, 1)
	require.NoError(t, err)

	receipt, err := svc.Checkout(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, receipt.OrderID)
	assert.Equal(t, 23650.0, receipt.Totals.Total)

	cart, err := svc.Cart(ctx)
	require.NoError(t, err)
	assert.Empty(t, cart.Items)

	// logout gates checkout again
	require.NoError(t, svc.Logout(ctx))
	_, err = svc.Checkout(ctx)
	assert.ErrorIs(t, err, ErrLoginRequired)
}
