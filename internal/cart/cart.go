// Package cart owns the shopping cart lines for the lifetime of the process.
// Every mutation is persisted to durable storage before it returns, so a
// forced reload never loses the latest state.
package cart

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/streetlayer/storefront/internal/storage"
)

// StorageKey is the fixed durable-storage key for the serialized cart.
const StorageKey = "cart"

// ErrEmptyCart is returned by Checkout when there is nothing to submit.
var ErrEmptyCart = errors.New("cart is empty")

// Item is one cart line. Identity is the product id plus the size/color
// variant; quantity is always at least 1.
type Item struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Image    string          `json:"image"`
	Size     string          `json:"size"`
	Color    string          `json:"color"`
	Quantity int             `json:"quantity"`
}

// variantKey identifies a line within the cart.
type variantKey struct {
	id, size, color string
}

func (i Item) key() variantKey {
	return variantKey{id: i.ID, size: i.Size, color: i.Color}
}

// Store is the process-wide cart container. Mutations are serialized and
// applied in invocation order.
type Store struct {
	storage storage.Store
	lg      *zap.Logger

	mu    sync.Mutex // held across persist so mutations commit in call order
	items []Item
}

// NewStore creates an empty cart backed by the given durable store.
func NewStore(st storage.Store, lg *zap.Logger) *Store {
	return &Store{
		storage: st,
		lg:      lg.Named("cart"),
	}
}

// Load restores the persisted cart. A missing key leaves the cart empty; a
// malformed document is discarded with a log line rather than failing start.
func (s *Store) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := s.storage.Get(ctx, StorageKey)
	if errors.Is(err, storage.ErrNotFound) {
		return nil
	}
	if err != nil {
		return errors.Wrap(err, "load cart")
	}

	var items []Item
	if err := json.Unmarshal(raw, &items); err != nil {
		s.lg.Warn("Discarding malformed persisted cart", zap.Error(err))
		return nil
	}
	s.items = items
	return nil
}

// Add merges the item into the cart: an existing line with the same variant
// key has its quantity incremented, otherwise a new line is appended. A
// non-positive requested quantity defaults to 1.
func (s *Store) Add(ctx context.Context, item Item) error {
	if item.Quantity <= 0 {
		item.Quantity = 1
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	merged := false
	for i := range s.items {
		if s.items[i].key() == item.key() {
			s.items[i].Quantity += item.Quantity
			merged = true
			break
		}
	}
	if !merged {
		s.items = append(s.items, item)
	}
	return s.persist(ctx)
}

// UpdateQuantity sets the quantity of the line identified by id/size/color.
// A quantity of zero or less removes the line. Updating a missing line is a
// no-op.
func (s *Store) UpdateQuantity(ctx context.Context, id, size, color string, quantity int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := variantKey{id: id, size: size, color: color}
	if quantity <= 0 {
		s.removeLocked(key)
		return s.persist(ctx)
	}
	for i := range s.items {
		if s.items[i].key() == key {
			s.items[i].Quantity = quantity
			break
		}
	}
	return s.persist(ctx)
}

// Remove deletes the line unconditionally. Removing a missing line is a
// no-op, not an error.
func (s *Store) Remove(ctx context.Context, id, size, color string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.removeLocked(variantKey{id: id, size: size, color: color})
	return s.persist(ctx)
}

func (s *Store) removeLocked(key variantKey) {
	kept := s.items[:0]
	for _, it := range s.items {
		if it.key() != key {
			kept = append(kept, it)
		}
	}
	s.items = kept
}

// Clear empties the cart and persists the empty state. Used on logout and
// after checkout.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = nil
	return s.persist(ctx)
}

// Items returns a copy of the current lines.
func (s *Store) Items() []Item {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Item, len(s.items))
	copy(out, s.items)
	return out
}

// Total recomputes the cart total as the sum of price times quantity over all
// lines. It is never cached.
func (s *Store) Total() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := decimal.Zero
	for _, it := range s.items {
		total = total.Add(it.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return total
}

// persist writes the cart to durable storage. Caller holds the lock. The
// in-memory mutation stays applied even when the write fails; the error is
// surfaced so the caller can react.
func (s *Store) persist(ctx context.Context) error {
	items := s.items
	if items == nil {
		items = []Item{}
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return errors.Wrap(err, "encode cart")
	}
	if err := s.storage.Set(ctx, StorageKey, raw); err != nil {
		s.lg.Error("Persisting cart failed", zap.Error(err))
		return errors.Wrap(err, "persist cart")
	}
	return nil
}
