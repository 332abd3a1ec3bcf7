package cart

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrUnknownPromoCode is returned when the promo prescreen rejects a code
// before it ever reaches the backend.
var ErrUnknownPromoCode = errors.New("unknown promo code")

// PlaceOrderRequest is the checkout payload submitted to the backend.
type PlaceOrderRequest struct {
	IdempotencyKey string
	UserID         string
	PromoCode      string
	Items          []Item
}

// OrderPlacer submits a completed cart to the backend order endpoint.
type OrderPlacer interface {
	PlaceOrder(ctx context.Context, req PlaceOrderRequest) (orderID string, err error)
}

// CodeChecker gives a fast local verdict on a promo code. A false result is
// definitive; a true result still gets validated by the backend.
type CodeChecker interface {
	Check(code string) bool
}

// Checkout submits the current lines through the order placer and clears the
// cart on success. The promo code, when present, is prescreened by codes so
// obviously bogus codes never cost a round trip; pass a nil checker to skip
// the prescreen. Every submission carries a fresh idempotency key.
func (s *Store) Checkout(ctx context.Context, orders OrderPlacer, codes CodeChecker, userID, promoCode string) (string, error) {
	items := s.Items()
	if len(items) == 0 {
		return "", ErrEmptyCart
	}

	if promoCode != "" && codes != nil && !codes.Check(promoCode) {
		return "", ErrUnknownPromoCode
	}

	orderID, err := orders.PlaceOrder(ctx, PlaceOrderRequest{
		IdempotencyKey: uuid.New().String(),
		UserID:         userID,
		PromoCode:      promoCode,
		Items:          items,
	})
	if err != nil {
		return "", errors.Wrap(err, "place order")
	}

	if err := s.Clear(ctx); err != nil {
		// The order is already placed; an empty-cart persist failure must not
		// fail the checkout.
		s.lg.Error("Clearing cart after checkout failed", zap.Error(err))
	}
	return orderID, nil
}
