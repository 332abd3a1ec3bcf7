// Package browse derives the visible product page from the full catalog
// snapshot, the active filter selection, and the committed price range.
package browse

import (
	"github.com/shopspring/decimal"

	"github.com/streetlayer/storefront/internal/catalog"
	"github.com/streetlayer/storefront/internal/filter"
)

// DefaultPerPage is the fixed page size of the collections grid.
const DefaultPerPage = 16

// PriceRange bounds the unit price of visible products, inclusive on both
// ends.
type PriceRange struct {
	Min decimal.Decimal `json:"min"`
	Max decimal.Decimal `json:"max"`
}

// NewPriceRange returns the widest valid range for the given ceiling.
func NewPriceRange(max decimal.Decimal) PriceRange {
	return PriceRange{Min: decimal.Zero, Max: max}
}

// Clamp normalizes the range into [0, ceiling] with min < max. Out-of-bounds
// or inverted inputs are corrected rather than rejected.
func (r PriceRange) Clamp(ceiling decimal.Decimal) PriceRange {
	out := r
	if out.Min.IsNegative() {
		out.Min = decimal.Zero
	}
	if out.Max.GreaterThan(ceiling) || out.Max.LessThanOrEqual(decimal.Zero) {
		out.Max = ceiling
	}
	if out.Min.GreaterThanOrEqual(out.Max) {
		out.Min = decimal.Zero
	}
	return out
}

// Contains reports whether p falls within the range.
func (r PriceRange) Contains(p decimal.Decimal) bool {
	return p.GreaterThanOrEqual(r.Min) && p.LessThanOrEqual(r.Max)
}

// Page is one rendered slice of the filtered product set.
type Page struct {
	Items      []catalog.Product `json:"items"`
	Pagination catalog.Pagination `json:"pagination"`
}

// Paginate filters products by the active selection and price range, then
// slices out the requested page. It is a pure function of its inputs:
//
//  1. when categories are selected, only products of those categories remain;
//  2. when subcategories are selected, only products of those subcategories
//     remain (an independent AND constraint, not OR);
//  3. only products inside the price range remain;
//  4. TotalPages is ceil(n/perPage) floored at 1, and page is clamped to
//     [1, TotalPages] — out-of-range requests are corrected, never errors.
func Paginate(products []catalog.Product, sel filter.Selected, price PriceRange, page, perPage int) Page {
	if perPage <= 0 {
		perPage = DefaultPerPage
	}

	filtered := make([]catalog.Product, 0, len(products))
	for _, p := range products {
		if len(sel.Categories) > 0 && !sel.HasCategory(p.CategoryID) {
			continue
		}
		if len(sel.Subcategories) > 0 && !sel.HasSubcategory(p.SubcategoryID) {
			continue
		}
		if !price.Contains(p.Price) {
			continue
		}
		filtered = append(filtered, p)
	}

	total := len(filtered)
	totalPages := (total + perPage - 1) / perPage
	if totalPages < 1 {
		totalPages = 1
	}
	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}

	start := (page - 1) * perPage
	end := start + perPage
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}

	return Page{
		Items: filtered[start:end],
		Pagination: catalog.Pagination{
			CurrentPage:  page,
			ItemsPerPage: perPage,
			TotalItems:   total,
			TotalPages:   totalPages,
			HasPrevious:  page > 1,
			HasNext:      page < totalPages,
		},
	}
}
