package handler

import (
	"net/http"
	"strconv"

	"github.com/streetlayer/storefront/internal/session"
)

// listOrders proxies the authenticated user's order history. Unlike catalog
// reads, history errors are surfaced: showing an empty history for a backend
// failure would look like the orders vanished.
func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	user := h.session.User()
	if user == nil {
		respondError(r.Context(), w, session.ErrNotAuthenticated)
		return
	}

	q := r.URL.Query()
	page := intQuery(q.Get("page"), 1)
	limit := intQuery(q.Get("limit"), 10)

	history, err := h.history.ListOrders(r.Context(), h.session.Token(), user.ID, page, limit, q.Get("status"))
	if err != nil {
		respondError(r.Context(), w, err)
		return
	}
	respond(w, http.StatusOK, history)
}

func intQuery(raw string, fallback int) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return fallback
	}
	return n
}
