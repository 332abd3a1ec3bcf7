package handler

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/streetlayer/storefront/internal/cart"
)

// cartView is the cart payload: the lines plus the recomputed total.
type cartView struct {
	Items []cart.Item     `json:"items"`
	Total decimal.Decimal `json:"total"`
}

func (h *Handler) cartViewNow() cartView {
	items := h.cart.Items()
	if items == nil {
		items = []cart.Item{}
	}
	return cartView{Items: items, Total: h.cart.Total()}
}

func (h *Handler) getCart(w http.ResponseWriter, _ *http.Request) {
	respond(w, http.StatusOK, h.cartViewNow())
}

func (h *Handler) addCartItem(w http.ResponseWriter, r *http.Request) {
	var item cart.Item
	if err := decodeBody(r, &item); err != nil {
		badRequest(w, "invalid body")
		return
	}
	if item.ID == "" {
		badRequest(w, "item id is required")
		return
	}

	if err := h.cart.Add(r.Context(), item); err != nil {
		respondError(r.Context(), w, err)
		return
	}
	respond(w, http.StatusOK, h.cartViewNow())
}

type updateQuantityRequest struct {
	ID       string `json:"id"`
	Size     string `json:"size"`
	Color    string `json:"color"`
	Quantity int    `json:"quantity"`
}

func (h *Handler) updateCartItem(w http.ResponseWriter, r *http.Request) {
	var req updateQuantityRequest
	if err := decodeBody(r, &req); err != nil {
		badRequest(w, "invalid body")
		return
	}
	if req.ID == "" {
		badRequest(w, "item id is required")
		return
	}

	if err := h.cart.UpdateQuantity(r.Context(), req.ID, req.Size, req.Color, req.Quantity); err != nil {
		respondError(r.Context(), w, err)
		return
	}
	respond(w, http.StatusOK, h.cartViewNow())
}

func (h *Handler) removeCartItem(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if err := h.cart.Remove(r.Context(), r.PathValue("id"), q.Get("size"), q.Get("color")); err != nil {
		respondError(r.Context(), w, err)
		return
	}
	respond(w, http.StatusOK, h.cartViewNow())
}

func (h *Handler) clearCart(w http.ResponseWriter, r *http.Request) {
	if err := h.cart.Clear(r.Context()); err != nil {
		respondError(r.Context(), w, err)
		return
	}
	respond(w, http.StatusOK, h.cartViewNow())
}

type checkoutRequest struct {
	PromoCode string `json:"promo_code"`
}

type checkoutResponse struct {
	OrderID string `json:"order_id"`
}

func (h *Handler) checkout(w http.ResponseWriter, r *http.Request) {
	var req checkoutRequest
	if err := decodeBody(r, &req); err != nil {
		badRequest(w, "invalid body")
		return
	}

	// Guest checkout is allowed; the user id is attached only when present.
	userID := ""
	if user := h.session.User(); user != nil {
		userID = user.ID
	}

	orderID, err := h.cart.Checkout(r.Context(), h.orders, h.promo, userID, req.PromoCode)
	if err != nil {
		respondError(r.Context(), w, err)
		return
	}
	respond(w, http.StatusCreated, checkoutResponse{OrderID: orderID})
}
