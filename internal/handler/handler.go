// Package handler exposes the storefront state over HTTP for the kiosk
// frontend: catalog browsing, the filtered collections view, the cart, and
// the auth session.
package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/streetlayer/storefront/internal/browse"
	"github.com/streetlayer/storefront/internal/cart"
	"github.com/streetlayer/storefront/internal/catalog"
	"github.com/streetlayer/storefront/internal/gateway"
	"github.com/streetlayer/storefront/internal/session"
	"github.com/streetlayer/storefront/pkg/debounce"
)

// ProfileUpdater pushes a profile patch to the backend before the local
// session is updated.
type ProfileUpdater interface {
	UpdateProfile(ctx context.Context, token string, patch session.Patch) (session.User, error)
}

// OrderReader fetches a user's order history from the backend.
type OrderReader interface {
	ListOrders(ctx context.Context, token, userID string, page, limit int, status string) (gateway.OrderHistory, error)
}

// Handler routes kiosk requests to the long-lived state containers.
type Handler struct {
	source  catalog.Source
	browse  *browse.State
	price   *debounce.Debouncer[browse.PriceRange]
	cart    *cart.Store
	session *session.Store
	orders  cart.OrderPlacer
	history OrderReader
	profile ProfileUpdater
	promo   cart.CodeChecker

	categories map[string]catalog.Category
}

// Deps bundles the Handler's collaborators. Promo may be nil when no promo
// filter is configured; checkout then skips the local prescreen.
type Deps struct {
	Source  catalog.Source
	Browse  *browse.State
	Price   *debounce.Debouncer[browse.PriceRange]
	Cart    *cart.Store
	Session *session.Store
	Orders  cart.OrderPlacer
	History OrderReader
	Profile ProfileUpdater
	Promo   cart.CodeChecker
}

// New constructs a Handler. Categories must already carry their subcategories
// (see catalog.BuildTree); the handler indexes them for cascade toggles.
func New(deps Deps, categories []catalog.Category) *Handler {
	index := make(map[string]catalog.Category, len(categories))
	for _, cat := range categories {
		index[cat.ID] = cat
	}
	return &Handler{
		source:     deps.Source,
		browse:     deps.Browse,
		price:      deps.Price,
		cart:       deps.Cart,
		session:    deps.Session,
		orders:     deps.Orders,
		history:    deps.History,
		profile:    deps.Profile,
		promo:      deps.Promo,
		categories: index,
	}
}

// Register wires all routes onto mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /catalog/categories", h.listCategories)
	mux.HandleFunc("GET /catalog/subcategories", h.listSubcategories)
	mux.HandleFunc("GET /catalog/products/{id}", h.getProduct)

	mux.HandleFunc("GET /browse", h.currentPage)
	mux.HandleFunc("POST /browse/categories/{id}", h.toggleCategory)
	mux.HandleFunc("POST /browse/subcategories/{id}", h.toggleSubcategory)
	mux.HandleFunc("PUT /browse/price", h.setPriceRange)
	mux.HandleFunc("PUT /browse/page", h.setPage)
	mux.HandleFunc("POST /browse/reset", h.resetBrowse)

	mux.HandleFunc("GET /cart", h.getCart)
	mux.HandleFunc("POST /cart/items", h.addCartItem)
	mux.HandleFunc("PUT /cart/items", h.updateCartItem)
	mux.HandleFunc("DELETE /cart/items/{id}", h.removeCartItem)
	mux.HandleFunc("DELETE /cart", h.clearCart)
	mux.HandleFunc("POST /checkout", h.checkout)

	mux.HandleFunc("POST /auth/login", h.login)
	mux.HandleFunc("POST /auth/logout", h.logout)
	mux.HandleFunc("GET /auth/me", h.me)
	mux.HandleFunc("PATCH /auth/profile", h.updateProfile)

	mux.HandleFunc("GET /orders", h.listOrders)
}

// errorResponse is the JSON error envelope.
type errorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func respond(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// respondError maps domain errors to stable status codes. Unknown errors are
// logged and answered as 500 without leaking internals.
func respondError(ctx context.Context, w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	msg := "internal error"

	var se *gateway.StatusError
	switch {
	case errors.Is(err, session.ErrNotAuthenticated):
		status, msg = http.StatusUnauthorized, err.Error()
	case errors.Is(err, cart.ErrEmptyCart):
		status, msg = http.StatusBadRequest, err.Error()
	case errors.Is(err, cart.ErrUnknownPromoCode):
		status, msg = http.StatusUnprocessableEntity, err.Error()
	case errors.Is(err, catalog.ErrNotFound):
		status, msg = http.StatusNotFound, err.Error()
	case errors.As(err, &se):
		status, msg = se.Status, se.Error()
	default:
		zctx.From(ctx).Error("Request failed", zap.Error(err))
	}

	respond(w, status, errorResponse{Code: status, Message: msg})
}

func badRequest(w http.ResponseWriter, msg string) {
	respond(w, http.StatusBadRequest, errorResponse{Code: http.StatusBadRequest, Message: msg})
}

// decodeBody decodes a JSON request body into dst, rejecting unknown fields.
func decodeBody(r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}
