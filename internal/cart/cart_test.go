package cart

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/streetlayer/storefront/internal/storage"
)

// --- Mock implementations ---

type mockStorage struct {
	data   map[string][]byte
	setErr error
	sets   int
}

func newMockStorage() *mockStorage {
	return &mockStorage{data: make(map[string][]byte)}
}

func (m *mockStorage) Get(_ context.Context, key string) ([]byte, error) {
	raw, ok := m.data[key]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return raw, nil
}

func (m *mockStorage) Set(_ context.Context, key string, value []byte) error {
	m.sets++
	if m.setErr != nil {
		return m.setErr
	}
	m.data[key] = value
	return nil
}

func (m *mockStorage) Delete(_ context.Context, key string) error {
	delete(m.data, key)
	return nil
}

// --- Helpers ---

func newTestStore(st storage.Store) *Store {
	return NewStore(st, zap.NewNop())
}

func tee(size string, qty int) Item {
	return Item{
		ID:       "tee-01",
		Name:     "Logo Tee",
		Price:    decimal.RequireFromString("29.90"),
		Size:     size,
		Color:    "black",
		Quantity: qty,
	}
}

func persistedItems(t *testing.T, st *mockStorage) []Item {
	t.Helper()
	raw, ok := st.data[StorageKey]
	require.True(t, ok, "cart was never persisted")
	var items []Item
	require.NoError(t, json.Unmarshal(raw, &items))
	return items
}

// --- Tests ---

func TestAdd_MergesSameVariant(t *testing.T) {
	st := newMockStorage()
	s := newTestStore(st)
	ctx := context.Background()

	require.NoError(t, s.Add(ctx, tee("M", 1)))
	require.NoError(t, s.Add(ctx, tee("M", 2)))

	items := s.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 3, items[0].Quantity)

	assert.Len(t, persistedItems(t, st), 1)
	assert.Equal(t, 2, st.sets, "every mutation persists synchronously")
}

func TestAdd_DifferentVariantsAreSeparateLines(t *testing.T) {
	s := newTestStore(newMockStorage())
	ctx := context.Background()

	require.NoError(t, s.Add(ctx, tee("M", 1)))
	require.NoError(t, s.Add(ctx, tee("L", 1)))
	other := tee("M", 1)
	other.Color = "white"
	require.NoError(t, s.Add(ctx, other))

	assert.Len(t, s.Items(), 3)
}

func TestAdd_NonPositiveQuantityDefaultsToOne(t *testing.T) {
	s := newTestStore(newMockStorage())

	require.NoError(t, s.Add(context.Background(), tee("M", 0)))
	require.NoError(t, s.Add(context.Background(), tee("L", -3)))

	for _, it := range s.Items() {
		assert.Equal(t, 1, it.Quantity)
	}
}

func TestUpdateQuantity(t *testing.T) {
	s := newTestStore(newMockStorage())
	ctx := context.Background()
	require.NoError(t, s.Add(ctx, tee("M", 1)))

	require.NoError(t, s.UpdateQuantity(ctx, "tee-01", "M", "black", 5))
	assert.Equal(t, 5, s.Items()[0].Quantity)

	// Zero removes the line, same as Remove.
	require.NoError(t, s.UpdateQuantity(ctx, "tee-01", "M", "black", 0))
	assert.Empty(t, s.Items())
}

func TestUpdateQuantity_MissingLineIsNoop(t *testing.T) {
	s := newTestStore(newMockStorage())
	ctx := context.Background()
	require.NoError(t, s.Add(ctx, tee("M", 2)))

	require.NoError(t, s.UpdateQuantity(ctx, "ghost", "M", "black", 7))

	items := s.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 2, items[0].Quantity)
}

func TestRemove_IsIdempotent(t *testing.T) {
	s := newTestStore(newMockStorage())
	ctx := context.Background()
	require.NoError(t, s.Add(ctx, tee("M", 1)))

	require.NoError(t, s.Remove(ctx, "tee-01", "M", "black"))
	require.NoError(t, s.Remove(ctx, "tee-01", "M", "black"))
	assert.Empty(t, s.Items())
}

func TestTotal_Recomputed(t *testing.T) {
	s := newTestStore(newMockStorage())
	ctx := context.Background()

	assert.True(t, s.Total().IsZero())

	require.NoError(t, s.Add(ctx, tee("M", 2)))       // 59.80
	require.NoError(t, s.Add(ctx, Item{ID: "cap-01", Price: decimal.RequireFromString("15.50"), Quantity: 1}))

	assert.True(t, decimal.RequireFromString("75.30").Equal(s.Total()))

	require.NoError(t, s.UpdateQuantity(ctx, "tee-01", "M", "black", 1))
	assert.True(t, decimal.RequireFromString("45.40").Equal(s.Total()))
}

func TestLoad_RestoresPersistedCart(t *testing.T) {
	st := newMockStorage()
	first := newTestStore(st)
	ctx := context.Background()
	require.NoError(t, first.Add(ctx, tee("M", 2)))

	second := newTestStore(st)
	require.NoError(t, second.Load(ctx))

	items := second.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 2, items[0].Quantity)
	assert.True(t, tee("M", 2).Price.Equal(items[0].Price))
}

func TestLoad_MissingKeyIsEmptyCart(t *testing.T) {
	s := newTestStore(newMockStorage())
	require.NoError(t, s.Load(context.Background()))
	assert.Empty(t, s.Items())
}

func TestLoad_MalformedDocumentIsDiscarded(t *testing.T) {
	st := newMockStorage()
	st.data[StorageKey] = []byte(`{"not":"a cart"`)

	s := newTestStore(st)
	require.NoError(t, s.Load(context.Background()))
	assert.Empty(t, s.Items())
}

func TestPersistFailure_SurfacedButStateKept(t *testing.T) {
	st := newMockStorage()
	st.setErr = errors.New("disk full")
	s := newTestStore(st)

	err := s.Add(context.Background(), tee("M", 1))
	require.Error(t, err)
	assert.Len(t, s.Items(), 1, "in-memory mutation stays applied")
}

func TestClear_PersistsEmptyArray(t *testing.T) {
	st := newMockStorage()
	s := newTestStore(st)
	ctx := context.Background()
	require.NoError(t, s.Add(ctx, tee("M", 1)))

	require.NoError(t, s.Clear(ctx))

	assert.Equal(t, "[]", string(st.data[StorageKey]), "empty cart serializes as [], not null")
}
