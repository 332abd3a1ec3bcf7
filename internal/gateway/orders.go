package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/streetlayer/storefront/internal/cart"
	"github.com/streetlayer/storefront/internal/catalog"
)

var _ cart.OrderPlacer = (*Client)(nil)

// Order is one entry of a user's order history.
type Order struct {
	ID        string          `json:"id"`
	Status    string          `json:"status"`
	Total     decimal.Decimal `json:"total"`
	CreatedAt time.Time       `json:"created_at"`
}

// OrderHistory is one page of a user's orders.
type OrderHistory struct {
	Orders     []Order            `json:"orders"`
	Pagination catalog.Pagination `json:"pagination"`
}

// ListOrders fetches a page of the user's order history, optionally filtered
// by status. Unlike catalog reads, failures here are surfaced: the account
// page shows the error instead of silently rendering an empty history.
func (c *Client) ListOrders(ctx context.Context, token, userID string, page, limit int, status string) (OrderHistory, error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("limit", strconv.Itoa(limit))
	if status != "" {
		q.Set("status", status)
	}

	body, err := c.get(ctx, "/orders/user/"+url.PathEscape(userID), q, token)
	if err != nil {
		return OrderHistory{}, err
	}

	var out OrderHistory
	if err := json.Unmarshal(body, &out); err != nil {
		return OrderHistory{}, errors.Wrap(err, "decode orders response")
	}
	if out.Orders == nil {
		out.Orders = []Order{}
	}
	return out, nil
}

// placeOrderItem is the wire shape of one checkout line.
type placeOrderItem struct {
	ProductID string `json:"product_id"`
	Size      string `json:"size,omitempty"`
	Color     string `json:"color,omitempty"`
	Quantity  int    `json:"quantity"`
}

// PlaceOrder submits the checkout payload and returns the created order id.
// The idempotency key travels as a header so a retried submission cannot
// double-charge.
func (c *Client) PlaceOrder(ctx context.Context, req cart.PlaceOrderRequest) (string, error) {
	items := make([]placeOrderItem, len(req.Items))
	for i, it := range req.Items {
		items[i] = placeOrderItem{
			ProductID: it.ID,
			Size:      it.Size,
			Color:     it.Color,
			Quantity:  it.Quantity,
		}
	}

	header := http.Header{}
	header.Set("Idempotency-Key", req.IdempotencyKey)

	body, err := c.post(ctx, "/orders", map[string]any{
		"user_id":    req.UserID,
		"promo_code": req.PromoCode,
		"items":      items,
	}, "", header)
	if err != nil {
		return "", err
	}

	var envelope struct {
		Order struct {
			ID string `json:"id"`
		} `json:"order"`
		ID string `json:"id"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return "", errors.Wrap(err, "decode order response")
	}
	if envelope.Order.ID != "" {
		return envelope.Order.ID, nil
	}
	return envelope.ID, nil
}
