package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streetlayer/storefront/internal/catalog"
)

func newCategory(id string, subIDs ...string) catalog.Category {
	subs := make([]catalog.Subcategory, len(subIDs))
	for i, sid := range subIDs {
		subs[i] = catalog.Subcategory{ID: sid, Name: sid, CategoryIDs: []string{id}}
	}
	return catalog.Category{ID: id, Name: id, Subcategories: subs}
}

func TestCategoryToggle_CascadesDown(t *testing.T) {
	tees := newCategory("tees", "graphic", "plain")

	s := ApplyCategoryToggle(NewSelected(), tees, true)

	assert.True(t, s.HasCategory("tees"))
	assert.True(t, s.HasSubcategory("graphic"))
	assert.True(t, s.HasSubcategory("plain"))

	s = ApplyCategoryToggle(s, tees, false)
	assert.True(t, s.IsEmpty())
}

func TestCategoryToggle_NoSubcategories(t *testing.T) {
	accessories := newCategory("accessories")

	s := ApplyCategoryToggle(NewSelected(), accessories, true)
	assert.True(t, s.HasCategory("accessories"))
	assert.Empty(t, s.Subcategories)
}

func TestSubcategoryToggle_CascadesUp(t *testing.T) {
	tees := newCategory("tees", "graphic", "plain")

	s := ApplySubcategoryToggle(NewSelected(), "graphic", true, tees)
	assert.True(t, s.HasSubcategory("graphic"))
	assert.False(t, s.HasCategory("tees"), "partial selection must not select the parent")

	s = ApplySubcategoryToggle(s, "plain", true, tees)
	assert.True(t, s.HasCategory("tees"), "completing the set selects the parent")

	s = ApplySubcategoryToggle(s, "plain", false, tees)
	assert.False(t, s.HasCategory("tees"), "breaking the set deselects the parent")
	assert.True(t, s.HasSubcategory("graphic"))
}

func TestSubcategoryToggle_ParentWithoutSubcategories(t *testing.T) {
	accessories := newCategory("accessories")

	s := ApplyCategoryToggle(NewSelected(), accessories, true)
	s = ApplySubcategoryToggle(s, "stray", true, accessories)

	assert.True(t, s.HasCategory("accessories"), "a parent with no subcategories is never recomputed")
	assert.True(t, s.HasSubcategory("stray"))
}

func TestToggles_DoNotMutateInput(t *testing.T) {
	tees := newCategory("tees", "graphic", "plain")

	before := ApplyCategoryToggle(NewSelected(), tees, true)
	_ = ApplyCategoryToggle(before, tees, false)
	_ = ApplySubcategoryToggle(before, "graphic", false, tees)

	assert.True(t, before.HasCategory("tees"))
	assert.True(t, before.HasSubcategory("graphic"))
	assert.True(t, before.HasSubcategory("plain"))
}

func TestInvariant_RandomishSequences(t *testing.T) {
	tees := newCategory("tees", "graphic", "plain", "longsleeve")
	hoodies := newCategory("hoodies", "zip", "pullover")
	accessories := newCategory("accessories")
	all := []catalog.Category{tees, hoodies, accessories}

	type step struct {
		cat     *catalog.Category
		subID   string
		parent  *catalog.Category
		checked bool
	}
	steps := []step{
		{cat: &tees, checked: true},
		{subID: "zip", parent: &hoodies, checked: true},
		{subID: "graphic", parent: &tees, checked: false},
		{subID: "pullover", parent: &hoodies, checked: true},
		{cat: &accessories, checked: true},
		{subID: "graphic", parent: &tees, checked: true},
		{cat: &hoodies, checked: false},
		{subID: "longsleeve", parent: &tees, checked: false},
		{cat: &tees, checked: true},
		{subID: "zip", parent: &hoodies, checked: true},
	}

	s := NewSelected()
	for i, st := range steps {
		if st.cat != nil {
			s = ApplyCategoryToggle(s, *st.cat, st.checked)
		} else {
			s = ApplySubcategoryToggle(s, st.subID, st.checked, *st.parent)
		}
		require.True(t, Holds(s, all), "invariant broken after step %d", i)
	}
}

func TestSharedSubcategory(t *testing.T) {
	// "caps" lives under both categories; toggling it under one parent only
	// recomputes that parent.
	street := catalog.Category{ID: "street", Subcategories: []catalog.Subcategory{
		{ID: "caps", CategoryIDs: []string{"street", "sport"}},
	}}
	sport := catalog.Category{ID: "sport", Subcategories: []catalog.Subcategory{
		{ID: "caps", CategoryIDs: []string{"street", "sport"}},
		{ID: "jerseys", CategoryIDs: []string{"sport"}},
	}}

	s := ApplySubcategoryToggle(NewSelected(), "caps", true, street)
	assert.True(t, s.HasCategory("street"), "single-sub parent completes immediately")
	assert.False(t, s.HasCategory("sport"))

	s = ApplySubcategoryToggle(s, "jerseys", true, sport)
	assert.True(t, s.HasCategory("sport"))
}
