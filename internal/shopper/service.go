package shopper

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"sync"

	"github.com/abgdnv/storefront/internal/catalog"
	"github.com/abgdnv/storefront/internal/store"
	"github.com/google/uuid"
)

// Slot names owned by this package.
const (
	SlotCart     = "cart"
	SlotWishlist = "wishlist"
	SlotSession  = "session"
)

const (
	taxRate     = 0.18
	shippingFee = 50.0
)

// Line is one stored cart entry: a product id with a quantity of at least 1.
type Line struct {
	ProductID int64 `json:"id"`
	Quantity  int   `json:"quantity"`
}

// Catalog is the read side the accumulator needs from the catalog cache.
type Catalog interface {
	Load(ctx context.Context) []catalog.Product
	FindByID(ctx context.Context, id int64) (*catalog.Product, error)
}

// ShopperService defines the cart, wishlist and session operations.
type ShopperService interface {
	// Cart returns the resolved cart view with totals.
	Cart(ctx context.Context) (*CartDto, error)

	// AddToCart increments the line for the product, appending a new line with
	// quantity 1 on first add. Returns catalog.ErrProductNotFound for unknown
	// ids without mutating the stored cart.
	AddToCart(ctx context.Context, productID int64) (*CartDto, error)

	// ChangeQuantity adds delta to the matching line; a resulting quantity of
	// zero or less removes the line. Unknown product ids are a no-op.
	ChangeQuantity(ctx context.Context, productID int64, delta int) (*CartDto, error)

	// RemoveFromCart deletes the line unconditionally if present.
	RemoveFromCart(ctx context.Context, productID int64) (*CartDto, error)

	// ClearCart replaces the stored cart with an empty one.
	ClearCart(ctx context.Context) error

	// CleanupCart drops lines whose product no longer resolves in the catalog.
	CleanupCart(ctx context.Context) (*CartDto, error)

	// Wishlist returns the wishlisted products in insertion order.
	Wishlist(ctx context.Context) (*WishlistDto, error)

	// ToggleWishlist adds the product id to the wishlist, or removes it when
	// already present. Toggling twice restores the prior state.
	ToggleWishlist(ctx context.Context, productID int64) (*WishlistDto, error)

	// Counters returns the header badge numbers.
	Counters(ctx context.Context) (*CountersDto, error)

	// Login marks the session as logged in. There is no credential verification.
	Login(ctx context.Context) error

	// Logout clears the logged-in flag.
	Logout(ctx context.Context) error

	// Checkout validates the session and cart, computes the final totals,
	// clears the cart and returns a receipt. Returns ErrLoginRequired or
	// ErrCartEmpty when the preconditions fail.
	Checkout(ctx context.Context) (*CheckoutDto, error)
}

// Service implements ShopperService on top of a slot store and the catalog cache.
type Service struct {
	// mu serializes every read-modify-write cycle so each user action is one
	// logical step against the stored state.
	mu      sync.Mutex
	slots   store.SlotStore
	catalog Catalog
	logger  *slog.Logger
}

// NewService creates a new instance of ShopperService.
func NewService(slots store.SlotStore, cat Catalog, logger *slog.Logger) *Service {
	return &Service{
		slots:   slots,
		catalog: cat,
		logger:  logger.With("component", "shopper"),
	}
}

// CartItemDto is one resolved cart line.
type CartItemDto struct {
	Product  catalog.Product `json:"product"`
	Quantity int             `json:"quantity"`
	Total    float64         `json:"total"`
}

// Totals is the order summary. Monetary values are unrounded; rendering to
// two decimals is the client's concern.
type Totals struct {
	Subtotal   float64 `json:"subtotal"`
	Tax        float64 `json:"tax"`
	Shipping   float64 `json:"shipping"`
	Total      float64 `json:"total"`
	Unresolved int     `json:"unresolved,omitempty"`
}

// CartDto is the full cart view.
type CartDto struct {
	Items  []CartItemDto `json:"items"`
	Totals Totals        `json:"totals"`
}

// WishlistDto is the resolved wishlist view.
type WishlistDto struct {
	Items []catalog.Product `json:"items"`
	Count int               `json:"count"`
}

// CountersDto carries the header badge numbers: total cart quantity and wishlist size.
type CountersDto struct {
	CartCount     int `json:"cart_count"`
	WishlistCount int `json:"wishlist_count"`
}

// CheckoutDto is the checkout receipt.
type CheckoutDto struct {
	OrderID string `json:"order_id"`
	Totals  Totals `json:"totals"`
}

// ComputeTotals sums the resolvable lines and applies tax and shipping.
// Lines whose product is missing from the catalog contribute nothing and are
// counted in Unresolved so callers can surface the degraded state.
func ComputeTotals(lines []Line, products []catalog.Product) Totals {
	prices := make(map[int64]float64, len(products))
	for _, p := range products {
		prices[p.ID] = p.Price
	}

	var t Totals
	for _, line := range lines {
		price, ok := prices[line.ProductID]
		if !ok {
			t.Unresolved++
			continue
		}
		t.Subtotal += price * float64(line.Quantity)
	}
	t.Tax = t.Subtotal * taxRate
	if t.Subtotal > 0 {
		t.Shipping = shippingFee
	}
	t.Total = t.Subtotal + t.Tax + t.Shipping
	return t
}

// Cart returns the resolved cart view with totals.
func (s *Service) Cart(ctx context.Context) (*CartDto, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	lines, err := s.loadLines(ctx)
	if err != nil {
		return nil, err
	}
	return s.cartView(ctx, lines), nil
}

// AddToCart increments an existing line or appends a new one with quantity 1.
func (s *Service) AddToCart(ctx context.Context, productID int64) (*CartDto, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.catalog.FindByID(ctx, productID); err != nil {
		return nil, fmt.Errorf("cannot add product %d to cart: %w", productID, err)
	}

	lines, err := s.loadLines(ctx)
	if err != nil {
		return nil, err
	}
	found := false
	for i := range lines {
		if lines[i].ProductID == productID {
			lines[i].Quantity++
			found = true
			break
		}
	}
	if !found {
		lines = append(lines, Line{ProductID: productID, Quantity: 1})
	}
	if err := s.saveLines(ctx, lines); err != nil {
		return nil, err
	}
	return s.cartView(ctx, lines), nil
}

// ChangeQuantity adds delta to the matching line, removing it at zero or below.
func (s *Service) ChangeQuantity(ctx context.Context, productID int64, delta int) (*CartDto, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	lines, err := s.loadLines(ctx)
	if err != nil {
		return nil, err
	}
	changed := false
	for i := range lines {
		if lines[i].ProductID != productID {
			continue
		}
		lines[i].Quantity += delta
		if lines[i].Quantity <= 0 {
			lines = append(lines[:i], lines[i+1:]...)
		}
		changed = true
		break
	}
	if changed {
		if err := s.saveLines(ctx, lines); err != nil {
			return nil, err
		}
	}
	return s.cartView(ctx, lines), nil
}

// RemoveFromCart deletes the line for the product if present.
func (s *Service) RemoveFromCart(ctx context.Context, productID int64) (*CartDto, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	lines, err := s.loadLines(ctx)
	if err != nil {
		return nil, err
	}
	kept := lines[:0]
	for _, line := range lines {
		if line.ProductID != productID {
			kept = append(kept, line)
		}
	}
	if len(kept) != len(lines) {
		if err := s.saveLines(ctx, kept); err != nil {
			return nil, err
		}
	}
	return s.cartView(ctx, kept), nil
}

// ClearCart replaces the stored cart with an empty one.
func (s *Service) ClearCart(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLines(ctx, []Line{})
}

// CleanupCart drops lines whose product no longer resolves in the catalog.
func (s *Service) CleanupCart(ctx context.Context) (*CartDto, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	lines, err := s.loadLines(ctx)
	if err != nil {
		return nil, err
	}
	known := make(map[int64]bool)
	for _, p := range s.catalog.Load(ctx) {
		known[p.ID] = true
	}
	kept := lines[:0]
	for _, line := range lines {
		if known[line.ProductID] {
			kept = append(kept, line)
		}
	}
	if len(kept) != len(lines) {
		s.logger.InfoContext(ctx, "Removed unresolved cart lines", "removed", len(lines)-len(kept))
		if err := s.saveLines(ctx, kept); err != nil {
			return nil, err
		}
	}
	return s.cartView(ctx, kept), nil
}

// Wishlist returns the wishlisted products in insertion order.
// Ids that no longer resolve are skipped.
func (s *Service) Wishlist(ctx context.Context) (*WishlistDto, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids, err := s.loadWishlist(ctx)
	if err != nil {
		return nil, err
	}
	return s.wishlistView(ctx, ids), nil
}

// ToggleWishlist flips membership of the product id in the wishlist.
func (s *Service) ToggleWishlist(ctx context.Context, productID int64) (*WishlistDto, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids, err := s.loadWishlist(ctx)
	if err != nil {
		return nil, err
	}
	id := strconv.FormatInt(productID, 10)
	kept := ids[:0]
	removed := false
	for _, existing := range ids {
		if existing == id {
			removed = true
			continue
		}
		kept = append(kept, existing)
	}
	if !removed {
		kept = append(kept, id)
	}
	if err := s.saveWishlist(ctx, kept); err != nil {
		return nil, err
	}
	return s.wishlistView(ctx, kept), nil
}

// Counters returns the header badge numbers.
func (s *Service) Counters(ctx context.Context) (*CountersDto, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	lines, err := s.loadLines(ctx)
	if err != nil {
		return nil, err
	}
	ids, err := s.loadWishlist(ctx)
	if err != nil {
		return nil, err
	}
	counters := &CountersDto{WishlistCount: len(ids)}
	for _, line := range lines {
		counters.CartCount += line.Quantity
	}
	return counters, nil
}

// Login marks the session as logged in.
func (s *Service) Login(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveSession(ctx, sessionState{LoggedIn: true})
}

// Logout clears the logged-in flag.
func (s *Service) Logout(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveSession(ctx, sessionState{})
}

// Checkout validates the session and cart, clears the cart and returns a receipt.
func (s *Service) Checkout(ctx context.Context) (*CheckoutDto, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, err := s.loadSession(ctx)
	if err != nil {
		return nil, err
	}
	if !session.LoggedIn {
		return nil, ErrLoginRequired
	}
	lines, err := s.loadLines(ctx)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, ErrCartEmpty
	}

	receipt := &CheckoutDto{
		OrderID: uuid.NewString(),
		Totals:  ComputeTotals(lines, s.catalog.Load(ctx)),
	}
	if err := s.saveLines(ctx, []Line{}); err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "Checkout completed", "order_id", receipt.OrderID, "total", receipt.Totals.Total)
	return receipt, nil
}

type sessionState struct {
	LoggedIn bool `json:"logged_in"`
}

// cartView resolves the stored lines against the catalog. Must be called with s.mu held.
func (s *Service) cartView(ctx context.Context, lines []Line) *CartDto {
	products := s.catalog.Load(ctx)
	byID := make(map[int64]catalog.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	view := &CartDto{Items: make([]CartItemDto, 0, len(lines))}
	for _, line := range lines {
		p, ok := byID[line.ProductID]
		if !ok {
			// Unresolved lines are a defined degraded state: hidden from the
			// view, counted in the totals, removable via CleanupCart.
			continue
		}
		view.Items = append(view.Items, CartItemDto{
			Product:  p,
			Quantity: line.Quantity,
			Total:    p.Price * float64(line.Quantity),
		})
	}
	view.Totals = ComputeTotals(lines, products)
	return view
}

// wishlistView resolves wishlist ids in insertion order. Must be called with s.mu held.
func (s *Service) wishlistView(ctx context.Context, ids []string) *WishlistDto {
	products := s.catalog.Load(ctx)
	byID := make(map[string]catalog.Product, len(products))
	for _, p := range products {
		byID[strconv.FormatInt(p.ID, 10)] = p
	}

	view := &WishlistDto{Items: make([]catalog.Product, 0, len(ids)), Count: len(ids)}
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			view.Items = append(view.Items, p)
		}
	}
	return view
}

// loadLines reads the cart slot. A missing or malformed payload is treated as
// an empty cart and will be overwritten by the next successful write. Stored
// lines violating the quantity invariant are dropped on read.
func (s *Service) loadLines(ctx context.Context) ([]Line, error) {
	data, err := s.slots.Load(ctx, SlotCart)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	if data == nil {
		return nil, nil
	}
	var lines []Line
	if err := json.Unmarshal(data, &lines); err != nil {
		s.logger.WarnContext(ctx, "Malformed cart payload, treating as empty", "error", err)
		return nil, nil
	}
	valid := lines[:0]
	for _, line := range lines {
		if line.Quantity >= 1 {
			valid = append(valid, line)
		}
	}
	return valid, nil
}

func (s *Service) saveLines(ctx context.Context, lines []Line) error {
	if lines == nil {
		lines = []Line{}
	}
	data, err := json.Marshal(lines)
	if err != nil {
		return fmt.Errorf("failed to encode cart: %w", err)
	}
	if err := s.slots.Save(ctx, SlotCart, data); err != nil {
		return fmt.Errorf("failed to save cart: %w", err)
	}
	return nil
}

// loadWishlist reads the wishlist slot with the same lenient semantics as loadLines.
func (s *Service) loadWishlist(ctx context.Context) ([]string, error) {
	data, err := s.slots.Load(ctx, SlotWishlist)
	if err != nil {
		return nil, fmt.Errorf("failed to load wishlist: %w", err)
	}
	if data == nil {
		return nil, nil
	}
	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		s.logger.WarnContext(ctx, "Malformed wishlist payload, treating as empty", "error", err)
		return nil, nil
	}
	// Deduplicate while preserving first-seen order.
	seen := make(map[string]bool, len(ids))
	unique := ids[:0]
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			unique = append(unique, id)
		}
	}
	return unique, nil
}

func (s *Service) saveWishlist(ctx context.Context, ids []string) error {
	if ids == nil {
		ids = []string{}
	}
	data, err := json.Marshal(ids)
	if err != nil {
		return fmt.Errorf("failed to encode wishlist: %w", err)
	}
	if err := s.slots.Save(ctx, SlotWishlist, data); err != nil {
		return fmt.Errorf("failed to save wishlist: %w", err)
	}
	return nil
}

func (s *Service) loadSession(ctx context.Context) (sessionState, error) {
	var session sessionState
	data, err := s.slots.Load(ctx, SlotSession)
	if err != nil {
		return session, fmt.Errorf("failed to load session: %w", err)
	}
	if data == nil {
		return session, nil
	}
	if err := json.Unmarshal(data, &session); err != nil {
		s.logger.WarnContext(ctx, "Malformed session payload, treating as logged out", "error", err)
		return sessionState{}, nil
	}
	return session, nil
}

func (s *Service) saveSession(ctx context.Context, session sessionState) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	if err := s.slots.Save(ctx, SlotSession, data); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}
