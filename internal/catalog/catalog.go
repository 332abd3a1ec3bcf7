// Package catalog defines the read-only storefront catalog entities and the
// contract for fetching them from the remote backend.
package catalog

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a requested product does not exist.
var ErrNotFound = errors.New("product not found")

// Category groups products and owns zero or more subcategories.
type Category struct {
	ID            string        `json:"id"`
	Name          string        `json:"name"`
	Subcategories []Subcategory `json:"subcategories"`
}

// Subcategory refines a category. A subcategory may be shared between
// several parent categories, referenced by id.
type Subcategory struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	CategoryIDs []string `json:"categories"`
}

// Product is a catalog item. Products are immutable snapshots from the
// client's perspective; prices are exact decimals.
type Product struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Price         decimal.Decimal `json:"price"`
	CategoryID    string          `json:"category"`
	SubcategoryID string          `json:"subcategory"`
	Stock         int             `json:"stock"`
	CreatedAt     time.Time       `json:"created_at"`
	ImageURL      string          `json:"url_image"`
	HoverImageURL string          `json:"url_image_hover"`
}

// Pagination carries page metadata alongside a slice of items, matching the
// backend wire shape.
type Pagination struct {
	CurrentPage  int  `json:"current_page"`
	ItemsPerPage int  `json:"items_per_page"`
	TotalItems   int  `json:"total_items"`
	TotalPages   int  `json:"total_pages"`
	HasPrevious  bool `json:"has_previous"`
	HasNext      bool `json:"has_next"`
}

// ProductPage is one page of products plus its pagination metadata.
type ProductPage struct {
	Items      []Product  `json:"items"`
	Pagination Pagination `json:"pagination"`
}

// EmptyProductPage is the stable shape returned whenever the backend fails or
// responds with garbage: zero items on page 1 of 1, keeping the caller's
// requested limit.
func EmptyProductPage(limit int) ProductPage {
	return ProductPage{
		Items: []Product{},
		Pagination: Pagination{
			CurrentPage:  1,
			ItemsPerPage: limit,
			TotalItems:   0,
			TotalPages:   1,
			HasPrevious:  false,
			HasNext:      false,
		},
	}
}

// BuildTree attaches each subcategory to every parent category that references
// it, returning categories ready for cascade toggling. Input slices are not
// modified; categories without subcategories keep a nil Subcategories field.
func BuildTree(cats []Category, subs []Subcategory) []Category {
	byParent := make(map[string][]Subcategory)
	for _, sub := range subs {
		for _, catID := range sub.CategoryIDs {
			byParent[catID] = append(byParent[catID], sub)
		}
	}

	out := make([]Category, len(cats))
	for i, cat := range cats {
		cat.Subcategories = byParent[cat.ID]
		out[i] = cat
	}
	return out
}

// ListFilter narrows ListProducts to a single category and/or subcategory.
// Empty fields mean no constraint.
type ListFilter struct {
	CategoryID    string
	SubcategoryID string
}

// Source fetches catalog data from the remote backend. List methods never
// return nil slices and implementations degrade to empty results on backend
// failure rather than propagating transport errors.
type Source interface {
	ListCategories(ctx context.Context) []Category
	ListSubcategories(ctx context.Context) []Subcategory
	ListProducts(ctx context.Context, page, limit int, filter ListFilter) ProductPage
	GetProduct(ctx context.Context, id string) (*Product, error)
}
