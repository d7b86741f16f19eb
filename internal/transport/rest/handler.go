// Package rest exposes the storefront over HTTP. Handlers are the dispatch
// layer between UI actions and the catalog/shopper services; they carry no
// business logic of their own.
package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/abgdnv/storefront/internal/catalog"
	"github.com/abgdnv/storefront/internal/shopper"
	"github.com/abgdnv/storefront/pkg/web"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
)

const defaultNewArrivals = 8
const defaultRelated = 4

type Handler struct {
	catalog  shopper.Catalog
	shopper  shopper.ShopperService
	validate *validator.Validate
	logger   *slog.Logger
}

// NewHandler creates a new instance of the storefront API.
func NewHandler(cat shopper.Catalog, svc shopper.ShopperService, logger *slog.Logger) *Handler {
	return &Handler{
		catalog:  cat,
		shopper:  svc,
		validate: validator.New(),
		logger:   logger.With("component", "rest"),
	}
}

// RegisterRoutes registers the HTTP routes for the storefront.
func (h *Handler) RegisterRoutes(r *chi.Mux) {
	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/products", func(r chi.Router) {
			r.Get("/", h.ListProducts)
			r.Get("/facets", h.ProductFacets)
			r.Get("/new", h.NewArrivals)
			r.Get("/{id}", h.ProductByID)
		})

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", h.GetCart)
			r.Delete("/", h.ClearCart)
			r.Post("/items", h.AddToCart)
			r.Patch("/items/{id}", h.ChangeQuantity)
			r.Delete("/items/{id}", h.RemoveFromCart)
			r.Post("/cleanup", h.CleanupCart)
		})

		r.Get("/wishlist", h.GetWishlist)
		r.Put("/wishlist/{id}", h.ToggleWishlist)

		r.Get("/counters", h.GetCounters)

		r.Post("/session/login", h.Login)
		r.Post("/session/logout", h.Logout)
		r.Post("/checkout", h.Checkout)
	})

	r.Get("/healthz", h.HealthCheck)
}

// ProductListResponse carries a filtered product page plus the shown-count.
type ProductListResponse struct {
	Products []catalog.Product `json:"products"`
	Count    int               `json:"count"`
}

// ProductDetailResponse carries one product with its variants and related items.
type ProductDetailResponse struct {
	Product  catalog.Product   `json:"product"`
	Variants []catalog.Product `json:"variants"`
	Related  []catalog.Product `json:"related"`
}

// AddToCartRequest is the body of POST /cart/items.
type AddToCartRequest struct {
	ProductID int64 `json:"product_id" validate:"required,min=1"`
}

// ChangeQuantityRequest is the body of PATCH /cart/items/{id}.
// A single action moves the quantity by one step in either direction.
type ChangeQuantityRequest struct {
	Delta int `json:"delta" validate:"required,oneof=-1 1"`
}

// ListProducts applies the filter criteria carried in the query string.
// Malformed values degrade to "no constraint"; an unknown brand simply
// matches nothing.
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	criteria := catalog.Criteria{
		Brands:   web.QueryValues(r, "brand"),
		RAMs:     web.QueryValues(r, "ram"),
		ROMs:     web.QueryValues(r, "rom"),
		MaxPrice: web.QueryFloat(r, "max_price", 0),
		Sort:     catalog.ParseSortKey(web.QueryString(r, "sort")),
		Query:    web.QueryString(r, "search"),
	}
	products := catalog.Apply(h.catalog.Load(r.Context()), criteria)
	mLogger.DebugContext(r.Context(), "Filtered products", "count", len(products))
	web.RespondJSON(w, mLogger, http.StatusOK, ProductListResponse{Products: products, Count: len(products)})
}

// ProductFacets enumerates the filter control values from the full catalog.
func (h *Handler) ProductFacets(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	web.RespondJSON(w, mLogger, http.StatusOK, catalog.Facets(h.catalog.Load(r.Context())))
}

// NewArrivals returns the leading slice of the catalog for the home view.
func (h *Handler) NewArrivals(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	limit := web.QueryInt(r, "limit", defaultNewArrivals)
	products := catalog.NewArrivals(h.catalog.Load(r.Context()), limit)
	web.RespondJSON(w, mLogger, http.StatusOK, ProductListResponse{Products: products, Count: len(products)})
}

// ProductByID returns the product detail view: the product itself, its
// same-name variants ascending by price and up to four same-brand items.
func (h *Handler) ProductByID(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	id, ok := web.ParseID(w, r, mLogger)
	if !ok {
		return
	}
	product, err := h.catalog.FindByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, catalog.ErrProductNotFound) {
			mLogger.WarnContext(r.Context(), "Product not found", "ID", id)
			web.RespondError(w, mLogger, http.StatusNotFound, fmt.Sprintf("Product with ID %d not found", id))
			return
		}
		mLogger.ErrorContext(r.Context(), "Error retrieving product", "ID", id, "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, fmt.Sprintf("Failed to retrieve product with ID %d", id))
		return
	}
	all := h.catalog.Load(r.Context())
	web.RespondJSON(w, mLogger, http.StatusOK, ProductDetailResponse{
		Product:  *product,
		Variants: catalog.VariantsOf(all, *product),
		Related:  catalog.Related(all, *product, defaultRelated),
	})
}

// GetCart returns the resolved cart with totals.
func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	cart, err := h.shopper.Cart(r.Context())
	if err != nil {
		mLogger.ErrorContext(r.Context(), "Error loading cart", "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to load cart")
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, cart)
}

// AddToCart adds one unit of a product to the cart.
func (h *Handler) AddToCart(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	var req AddToCartRequest
	if !h.decodeAndValidate(w, r, mLogger, &req) {
		return
	}
	cart, err := h.shopper.AddToCart(r.Context(), req.ProductID)
	if err != nil {
		if errors.Is(err, catalog.ErrProductNotFound) {
			mLogger.WarnContext(r.Context(), "Attempt to add unknown product to cart", "ID", req.ProductID)
			web.RespondError(w, mLogger, http.StatusNotFound, fmt.Sprintf("Product with ID %d not found", req.ProductID))
			return
		}
		mLogger.ErrorContext(r.Context(), "Error adding product to cart", "ID", req.ProductID, "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to add product to cart")
		return
	}
	mLogger.InfoContext(r.Context(), "Product added to cart", "ID", req.ProductID)
	web.RespondJSON(w, mLogger, http.StatusOK, cart)
}

// ChangeQuantity moves a line's quantity by ±1; reaching zero removes the line.
func (h *Handler) ChangeQuantity(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	id, ok := web.ParseID(w, r, mLogger)
	if !ok {
		return
	}
	var req ChangeQuantityRequest
	if !h.decodeAndValidate(w, r, mLogger, &req) {
		return
	}
	cart, err := h.shopper.ChangeQuantity(r.Context(), id, req.Delta)
	if err != nil {
		mLogger.ErrorContext(r.Context(), "Error changing cart quantity", "ID", id, "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to change quantity")
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, cart)
}

// RemoveFromCart deletes the line for the product.
func (h *Handler) RemoveFromCart(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	id, ok := web.ParseID(w, r, mLogger)
	if !ok {
		return
	}
	cart, err := h.shopper.RemoveFromCart(r.Context(), id)
	if err != nil {
		mLogger.ErrorContext(r.Context(), "Error removing product from cart", "ID", id, "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to remove product from cart")
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, cart)
}

// ClearCart empties the cart.
func (h *Handler) ClearCart(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	if err := h.shopper.ClearCart(r.Context()); err != nil {
		mLogger.ErrorContext(r.Context(), "Error clearing cart", "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to clear cart")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CleanupCart drops cart lines whose product no longer exists in the catalog.
func (h *Handler) CleanupCart(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	cart, err := h.shopper.CleanupCart(r.Context())
	if err != nil {
		mLogger.ErrorContext(r.Context(), "Error cleaning up cart", "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to clean up cart")
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, cart)
}

// GetWishlist returns the wishlisted products in insertion order.
func (h *Handler) GetWishlist(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	wishlist, err := h.shopper.Wishlist(r.Context())
	if err != nil {
		mLogger.ErrorContext(r.Context(), "Error loading wishlist", "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to load wishlist")
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, wishlist)
}

// ToggleWishlist flips wishlist membership for the product id.
func (h *Handler) ToggleWishlist(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	id, ok := web.ParseID(w, r, mLogger)
	if !ok {
		return
	}
	wishlist, err := h.shopper.ToggleWishlist(r.Context(), id)
	if err != nil {
		mLogger.ErrorContext(r.Context(), "Error toggling wishlist", "ID", id, "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to toggle wishlist")
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, wishlist)
}

// GetCounters returns the header badge numbers.
func (h *Handler) GetCounters(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	counters, err := h.shopper.Counters(r.Context())
	if err != nil {
		mLogger.ErrorContext(r.Context(), "Error loading counters", "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to load counters")
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, counters)
}

// Login marks the session as logged in. There are no credentials to verify.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	if err := h.shopper.Login(r.Context()); err != nil {
		mLogger.ErrorContext(r.Context(), "Error logging in", "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to log in")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Logout clears the logged-in flag.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	if err := h.shopper.Logout(r.Context()); err != nil {
		mLogger.ErrorContext(r.Context(), "Error logging out", "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to log out")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Checkout finalizes the cart into a receipt and clears it.
func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	receipt, err := h.shopper.Checkout(r.Context())
	if err != nil {
		switch {
		case errors.Is(err, shopper.ErrLoginRequired):
			mLogger.WarnContext(r.Context(), "Checkout attempted without login")
			web.RespondError(w, mLogger, http.StatusUnauthorized, "You must be logged in to checkout")
		case errors.Is(err, shopper.ErrCartEmpty):
			mLogger.WarnContext(r.Context(), "Checkout attempted with empty cart")
			web.RespondError(w, mLogger, http.StatusConflict, "Cart is empty")
		default:
			mLogger.ErrorContext(r.Context(), "Error during checkout", "error", err)
			web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to checkout")
		}
		return
	}
	mLogger.InfoContext(r.Context(), "Checkout succeeded", "order_id", receipt.OrderID)
	web.RespondJSON(w, mLogger, http.StatusCreated, receipt)
}

// HealthCheck is a simple health check endpoint.
func (h *Handler) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// decodeAndValidate decodes the JSON body into dst and runs struct validation,
// responding with 400 on failure.
func (h *Handler) decodeAndValidate(w http.ResponseWriter, r *http.Request, mLogger *slog.Logger, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		mLogger.ErrorContext(r.Context(), "Error decoding request body", "error", err)
		web.RespondError(w, mLogger, http.StatusBadRequest, "Invalid request body")
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			errorResponse := make(map[string]string)
			for _, fieldErr := range validationErrors {
				errorResponse[fieldErr.Field()] = "failed on rule: " + fieldErr.Tag()
			}
			mLogger.WarnContext(r.Context(), "Validation errors occurred", "errors", errorResponse)
			web.RespondJSON(w, mLogger, http.StatusBadRequest, map[string]any{"validation_errors": errorResponse})
			return false
		}
		mLogger.ErrorContext(r.Context(), "Error validating request body", "error", err)
		web.RespondError(w, mLogger, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

// loggerWithReqID creates a logger with the request ID from the context.
func (h *Handler) loggerWithReqID(r *http.Request) *slog.Logger {
	reqID := middleware.GetReqID(r.Context())
	return h.logger.With("request_id", reqID)
}
