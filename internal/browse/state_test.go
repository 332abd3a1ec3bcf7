package browse

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/streetlayer/storefront/internal/catalog"
)

func newTestState(products int) *State {
	s := NewState(decimal.NewFromInt(1000), DefaultPerPage)
	s.SetProducts(makeProducts(products))
	return s
}

func TestState_MutationsResetPage(t *testing.T) {
	tees := catalog.Category{ID: "tees"}

	tests := []struct {
		name   string
		mutate func(s *State)
	}{
		{"toggle_category", func(s *State) { s.ToggleCategory(tees, true) }},
		{"toggle_subcategory", func(s *State) { s.ToggleSubcategory("graphic", true, tees) }},
		{"commit_price", func(s *State) { s.CommitPriceRange(PriceRange{Min: price("0"), Max: price("500")}) }},
		{"set_products", func(s *State) { s.SetProducts(makeProducts(40)) }},
		{"reset", func(s *State) { s.Reset() }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestState(40)
			s.GoToPage(2)
			assert.Equal(t, 2, s.Current().Pagination.CurrentPage)

			tt.mutate(s)
			assert.Equal(t, 1, s.Current().Pagination.CurrentPage)
		})
	}
}

func TestState_GoToPageClamps(t *testing.T) {
	s := newTestState(40) // 3 pages of 16

	s.GoToPage(99)
	assert.Equal(t, 3, s.Current().Pagination.CurrentPage)

	s.GoToPage(-1)
	assert.Equal(t, 1, s.Current().Pagination.CurrentPage)
}

func TestState_CommitPriceRangeClamps(t *testing.T) {
	s := NewState(decimal.NewFromInt(500), DefaultPerPage)

	s.CommitPriceRange(PriceRange{Min: price("-10"), Max: price("9999")})

	got := s.Price()
	assert.True(t, got.Min.IsZero())
	assert.True(t, price("500").Equal(got.Max))
}

func TestState_ResetRestoresWidestRange(t *testing.T) {
	s := newTestState(10)
	tees := catalog.Category{ID: "tees"}
	s.ToggleCategory(tees, true)
	s.CommitPriceRange(PriceRange{Min: price("50"), Max: price("100")})

	s.Reset()

	assert.True(t, s.Selection().IsEmpty())
	got := s.Price()
	assert.True(t, got.Min.IsZero())
	assert.True(t, price("1000").Equal(got.Max))
	assert.Equal(t, 10, s.Current().Pagination.TotalItems)
}

func TestState_SelectionViewIsDetached(t *testing.T) {
	s := newTestState(30)
	s.ToggleCategory(catalog.Category{ID: "tees"}, true)

	view := s.Selection()
	delete(view.Categories, "tees")
	view.Subcategories["graphic"] = struct{}{}

	assert.True(t, s.Selection().HasCategory("tees"), "mutating the view must not touch live state")
	assert.False(t, s.Selection().HasSubcategory("graphic"))
}

func TestState_StalePricePublishCannotResurrectOldFilters(t *testing.T) {
	// A debounced price commit landing after a filter toggle must apply on top
	// of the newer selection, not replace it.
	s := newTestState(30)
	tees := catalog.Category{ID: "tees"}

	s.ToggleCategory(tees, true)
	s.CommitPriceRange(PriceRange{Min: price("0"), Max: price("1000")})

	assert.True(t, s.Selection().HasCategory("tees"))
	assert.Equal(t, 15, s.Current().Pagination.TotalItems)
}
