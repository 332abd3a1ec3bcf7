package gateway

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/streetlayer/storefront/internal/catalog"
)

// snapshotPageLimit is the backend page size used when draining the full
// product list for client-side filtering.
const snapshotPageLimit = 100

// Snapshot is the read-only catalog state a collections view works from.
type Snapshot struct {
	Categories    []catalog.Category
	Subcategories []catalog.Subcategory
	Products      []catalog.Product
}

// LoadSnapshot fetches categories, subcategories, and the complete product
// list concurrently. Because every read degrades to empty on failure, the
// snapshot is always usable; a dead backend simply yields an empty catalog.
func (c *Client) LoadSnapshot(ctx context.Context) Snapshot {
	var snap Snapshot

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		snap.Categories = c.ListCategories(ctx)
		return nil
	})
	g.Go(func() error {
		snap.Subcategories = c.ListSubcategories(ctx)
		return nil
	})
	g.Go(func() error {
		snap.Products = c.drainProducts(ctx)
		return nil
	})
	_ = g.Wait() // goroutines never return errors; reads degrade instead

	return snap
}

// drainProducts pages through the product endpoint until the backend reports
// no next page. The empty-page fallback has has_next=false, so a failing
// backend terminates the loop after one request.
func (c *Client) drainProducts(ctx context.Context) []catalog.Product {
	products := []catalog.Product{}
	for page := 1; ; page++ {
		result := c.ListProducts(ctx, page, snapshotPageLimit, catalog.ListFilter{})
		products = append(products, result.Items...)
		if !result.Pagination.HasNext {
			return products
		}
	}
}
