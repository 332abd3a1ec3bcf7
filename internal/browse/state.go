package browse

import (
	"sync"

	"github.com/shopspring/decimal"

	"github.com/streetlayer/storefront/internal/catalog"
	"github.com/streetlayer/storefront/internal/filter"
)

// State is the long-lived browse container for one collections view. It owns
// the catalog snapshot, the filter selection, the committed price range, and
// the current page. All mutations are serialized by a mutex and applied in
// call order; Current always derives from the latest committed snapshot, so a
// stale debounced price publish cannot resurrect older filter state.
//
// Any filter or price mutation resets the page to 1: keeping the old page
// position could land past the end of the newly filtered set.
type State struct {
	mu       sync.Mutex
	products []catalog.Product
	sel      filter.Selected
	price    PriceRange
	ceiling  decimal.Decimal
	page     int
	perPage  int
}

// NewState creates a State with an empty selection, the widest price range
// for the given ceiling, and the fixed page size.
func NewState(ceiling decimal.Decimal, perPage int) *State {
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	return &State{
		sel:     filter.NewSelected(),
		price:   NewPriceRange(ceiling),
		ceiling: ceiling,
		page:    1,
		perPage: perPage,
	}
}

// SetProducts replaces the catalog snapshot and rewinds to page 1.
func (s *State) SetProducts(products []catalog.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products = products
	s.page = 1
}

// ToggleCategory applies the category cascade toggle and resets the page.
func (s *State) ToggleCategory(cat catalog.Category, checked bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sel = filter.ApplyCategoryToggle(s.sel, cat, checked)
	s.page = 1
}

// ToggleSubcategory applies the subcategory cascade toggle and resets the page.
func (s *State) ToggleSubcategory(subID string, checked bool, parent catalog.Category) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sel = filter.ApplySubcategoryToggle(s.sel, subID, checked, parent)
	s.page = 1
}

// CommitPriceRange stores a clamped price range and resets the page. This is
// the debouncer's publish target.
func (s *State) CommitPriceRange(r PriceRange) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.price = r.Clamp(s.ceiling)
	s.page = 1
}

// Reset clears the selection and price range and rewinds to page 1.
func (s *State) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sel = filter.NewSelected()
	s.price = NewPriceRange(s.ceiling)
	s.page = 1
}

// GoToPage moves to the requested page, clamped to the filtered set's bounds.
// Out-of-range requests are silently corrected.
func (s *State) GoToPage(page int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	current := Paginate(s.products, s.sel, s.price, page, s.perPage)
	s.page = current.Pagination.CurrentPage
}

// Selection returns a copy-safe view of the active selection.
func (s *State) Selection() filter.Selected {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sel.Copy()
}

// Price returns the committed price range.
func (s *State) Price() PriceRange {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.price
}

// Current computes the visible page from the latest committed state.
func (s *State) Current() Page {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Paginate(s.products, s.sel, s.price, s.page, s.perPage)
}
