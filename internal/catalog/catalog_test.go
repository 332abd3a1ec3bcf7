package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildTree(t *testing.T) {
	cats := []Category{
		{ID: "tees", Name: "Tees"},
		{ID: "hoodies", Name: "Hoodies"},
		{ID: "accessories", Name: "Accessories"},
	}
	subs := []Subcategory{
		{ID: "graphic", Name: "Graphic", CategoryIDs: []string{"tees"}},
		{ID: "plain", Name: "Plain", CategoryIDs: []string{"tees"}},
		{ID: "caps", Name: "Caps", CategoryIDs: []string{"hoodies", "accessories"}},
	}

	tree := BuildTree(cats, subs)

	require.Len(t, tree, 3)
	assert.Len(t, tree[0].Subcategories, 2)
	assert.Equal(t, "graphic", tree[0].Subcategories[0].ID)

	// A shared subcategory lands under every parent that references it.
	assert.Len(t, tree[1].Subcategories, 1)
	assert.Len(t, tree[2].Subcategories, 1)
	assert.Equal(t, "caps", tree[1].Subcategories[0].ID)

	// Inputs stay untouched.
	assert.Nil(t, cats[0].Subcategories)
}

func TestEmptyProductPage(t *testing.T) {
	page := EmptyProductPage(24)

	assert.NotNil(t, page.Items)
	assert.Empty(t, page.Items)
	assert.Equal(t, 1, page.Pagination.CurrentPage)
	assert.Equal(t, 1, page.Pagination.TotalPages)
	assert.Equal(t, 24, page.Pagination.ItemsPerPage)
	assert.False(t, page.Pagination.HasNext)
}
