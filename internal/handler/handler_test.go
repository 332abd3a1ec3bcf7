package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/streetlayer/storefront/internal/browse"
	"github.com/streetlayer/storefront/internal/cart"
	"github.com/streetlayer/storefront/internal/catalog"
	"github.com/streetlayer/storefront/internal/gateway"
	"github.com/streetlayer/storefront/internal/session"
	"github.com/streetlayer/storefront/internal/storage"
	"github.com/streetlayer/storefront/pkg/debounce"
)

// --- Stubs ---

type stubSource struct {
	categories    []catalog.Category
	subcategories []catalog.Subcategory
	product       *catalog.Product
}

func (s *stubSource) ListCategories(context.Context) []catalog.Category       { return s.categories }
func (s *stubSource) ListSubcategories(context.Context) []catalog.Subcategory { return s.subcategories }
func (s *stubSource) ListProducts(_ context.Context, _, limit int, _ catalog.ListFilter) catalog.ProductPage {
	return catalog.EmptyProductPage(limit)
}

func (s *stubSource) GetProduct(_ context.Context, id string) (*catalog.Product, error) {
	if s.product != nil && s.product.ID == id {
		return s.product, nil
	}
	return nil, catalog.ErrNotFound
}

type stubOrderPlacer struct {
	orderID string
	err     error
}

func (s *stubOrderPlacer) PlaceOrder(context.Context, cart.PlaceOrderRequest) (string, error) {
	return s.orderID, s.err
}

type stubHistory struct {
	history gateway.OrderHistory
	err     error
}

func (s *stubHistory) ListOrders(context.Context, string, string, int, int, string) (gateway.OrderHistory, error) {
	return s.history, s.err
}

type stubProfile struct {
	err error
}

func (s *stubProfile) UpdateProfile(context.Context, string, session.Patch) (session.User, error) {
	return session.User{}, s.err
}

type stubAuth struct {
	user  session.User
	token string
	err   error
}

func (s *stubAuth) Login(context.Context, string, string) (session.User, string, error) {
	return s.user, s.token, s.err
}
func (s *stubAuth) Profile(context.Context, string) (session.User, error) { return s.user, nil }
func (s *stubAuth) Logout(context.Context, string) error                  { return nil }

type memStore struct {
	data map[string][]byte
}

func (m *memStore) Get(_ context.Context, key string) ([]byte, error) {
	raw, ok := m.data[key]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return raw, nil
}

func (m *memStore) Set(_ context.Context, key string, value []byte) error {
	m.data[key] = value
	return nil
}

func (m *memStore) Delete(_ context.Context, key string) error {
	delete(m.data, key)
	return nil
}

// --- Fixture ---

type fixture struct {
	mux     *http.ServeMux
	browse  *browse.State
	cart    *cart.Store
	session *session.Store
	price   *debounce.Debouncer[browse.PriceRange]
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	tees := catalog.Category{ID: "tees", Name: "Tees", Subcategories: []catalog.Subcategory{
		{ID: "graphic", Name: "Graphic", CategoryIDs: []string{"tees"}},
		{ID: "plain", Name: "Plain", CategoryIDs: []string{"tees"}},
	}}
	hoodies := catalog.Category{ID: "hoodies", Name: "Hoodies"}

	products := make([]catalog.Product, 20)
	for i := range products {
		catID := "tees"
		if i%2 == 1 {
			catID = "hoodies"
		}
		products[i] = catalog.Product{
			ID:         fmt.Sprintf("p%02d", i),
			CategoryID: catID,
			Price:      decimal.NewFromInt(int64((i + 1) * 10)),
		}
	}

	state := browse.NewState(decimal.NewFromInt(1000), browse.DefaultPerPage)
	state.SetProducts(products)
	price := debounce.New(5*time.Millisecond, state.CommitPriceRange)
	t.Cleanup(price.Stop)

	st := &memStore{data: map[string][]byte{}}
	cartStore := cart.NewStore(st, zap.NewNop())
	sessionStore := session.NewStore(&stubAuth{
		user:  session.User{ID: "u1", Name: "Someone"},
		token: "tok-1",
	}, st, zap.NewNop())

	h := New(Deps{
		Source:  &stubSource{categories: []catalog.Category{tees, hoodies}},
		Browse:  state,
		Price:   price,
		Cart:    cartStore,
		Session: sessionStore,
		Orders:  &stubOrderPlacer{orderID: "ord-1"},
		History: &stubHistory{},
		Profile: &stubProfile{},
	}, []catalog.Category{tees, hoodies})

	mux := http.NewServeMux()
	h.Register(mux)

	return &fixture{mux: mux, browse: state, cart: cartStore, session: sessionStore, price: price}
}

func (f *fixture) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	w := httptest.NewRecorder()
	f.mux.ServeHTTP(w, req)
	return w
}

func decodeView[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(w.Body).Decode(&v))
	return v
}

// --- Tests ---

func TestBrowse_Current(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodGet, "/browse", nil)

	require.Equal(t, http.StatusOK, w.Code)
	view := decodeView[browseView](t, w)
	assert.Len(t, view.Items, 16)
	assert.Equal(t, 20, view.Pagination.TotalItems)
	assert.Equal(t, 2, view.Pagination.TotalPages)
}

func TestBrowse_ToggleCategoryCascades(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodPost, "/browse/categories/tees", toggleRequest{Checked: true})

	require.Equal(t, http.StatusOK, w.Code)
	view := decodeView[browseView](t, w)
	assert.ElementsMatch(t, []string{"tees"}, view.Categories)
	assert.ElementsMatch(t, []string{"graphic", "plain"}, view.Subcategories)
	assert.Equal(t, 10, view.Pagination.TotalItems)
}

func TestBrowse_UnknownCategory(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodPost, "/browse/categories/ghost", toggleRequest{Checked: true})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestBrowse_ToggleSubcategory(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodPost, "/browse/subcategories/graphic", toggleRequest{Checked: true, CategoryID: "tees"})

	require.Equal(t, http.StatusOK, w.Code)
	view := decodeView[browseView](t, w)
	assert.ElementsMatch(t, []string{"graphic"}, view.Subcategories)
	assert.Empty(t, view.Categories, "partial selection must not select the parent")
}

func TestBrowse_PriceIsDebounced(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodPut, "/browse/price", priceRequest{
		Min: decimal.NewFromInt(30),
		Max: decimal.NewFromInt(70),
	})
	require.Equal(t, http.StatusAccepted, w.Code, "price commits only after the quiet period")

	require.Eventually(t, func() bool {
		return f.browse.Current().Pagination.TotalItems == 5
	}, time.Second, 5*time.Millisecond)
}

func TestBrowse_PageNavigationAndReset(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodPut, "/browse/page", pageRequest{Page: 2})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 2, decodeView[browseView](t, w).Pagination.CurrentPage)

	// Out of range clamps.
	w = f.do(t, http.MethodPut, "/browse/page", pageRequest{Page: 50})
	assert.Equal(t, 2, decodeView[browseView](t, w).Pagination.CurrentPage)

	w = f.do(t, http.MethodPost, "/browse/reset", nil)
	view := decodeView[browseView](t, w)
	assert.Equal(t, 1, view.Pagination.CurrentPage)
	assert.Empty(t, view.Categories)
}

func TestCart_AddUpdateRemove(t *testing.T) {
	f := newFixture(t)
	item := cart.Item{ID: "tee-01", Price: decimal.RequireFromString("29.90"), Size: "M", Quantity: 1}

	w := f.do(t, http.MethodPost, "/cart/items", item)
	require.Equal(t, http.StatusOK, w.Code)

	w = f.do(t, http.MethodPost, "/cart/items", item)
	view := decodeView[cartView](t, w)
	require.Len(t, view.Items, 1, "same variant merges")
	assert.Equal(t, 2, view.Items[0].Quantity)

	w = f.do(t, http.MethodPut, "/cart/items", updateQuantityRequest{ID: "tee-01", Size: "M", Quantity: 0})
	view = decodeView[cartView](t, w)
	assert.Empty(t, view.Items, "zero quantity removes the line")

	w = f.do(t, http.MethodDelete, "/cart/items/tee-01?size=M", nil)
	assert.Equal(t, http.StatusOK, w.Code, "removing a missing line is a no-op")
}

func TestCart_AddRequiresID(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodPost, "/cart/items", cart.Item{Quantity: 1})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCheckout(t *testing.T) {
	f := newFixture(t)

	// Empty cart is a 400.
	w := f.do(t, http.MethodPost, "/checkout", checkoutRequest{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	f.do(t, http.MethodPost, "/cart/items", cart.Item{ID: "tee-01", Price: decimal.NewFromInt(10), Quantity: 1})

	w = f.do(t, http.MethodPost, "/checkout", checkoutRequest{})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "ord-1", decodeView[checkoutResponse](t, w).OrderID)

	w = f.do(t, http.MethodGet, "/cart", nil)
	assert.Empty(t, decodeView[cartView](t, w).Items)
}

func TestSession_LoginLogout(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodGet, "/auth/me", nil)
	view := decodeView[sessionView](t, w)
	assert.False(t, view.Authenticated)

	w = f.do(t, http.MethodPost, "/auth/login", loginRequest{Email: "u@example.com", Password: "pw"})
	require.Equal(t, http.StatusOK, w.Code)
	view = decodeView[sessionView](t, w)
	assert.True(t, view.Authenticated)
	require.NotNil(t, view.User)
	assert.Equal(t, "u1", view.User.ID)

	w = f.do(t, http.MethodPost, "/auth/logout", nil)
	view = decodeView[sessionView](t, w)
	assert.False(t, view.Authenticated)
	assert.Nil(t, view.User)
}

func TestSession_LoginValidation(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodPost, "/auth/login", loginRequest{Email: "u@example.com"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestProfile_RequiresAuth(t *testing.T) {
	f := newFixture(t)

	name := "New Name"
	w := f.do(t, http.MethodPatch, "/auth/profile", session.Patch{Name: &name})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestProfile_Update(t *testing.T) {
	f := newFixture(t)
	f.do(t, http.MethodPost, "/auth/login", loginRequest{Email: "u@example.com", Password: "pw"})

	name := "New Name"
	w := f.do(t, http.MethodPatch, "/auth/profile", session.Patch{Name: &name})

	require.Equal(t, http.StatusOK, w.Code)
	view := decodeView[sessionView](t, w)
	require.NotNil(t, view.User)
	assert.Equal(t, "New Name", view.User.Name)
}

func TestOrders_RequiresAuth(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodGet, "/orders", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCatalogEndpoints(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodGet, "/catalog/categories", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = f.do(t, http.MethodGet, "/catalog/products/ghost", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
