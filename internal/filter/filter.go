// Package filter implements the category/subcategory selection engine used by
// the collections browse page.
//
// Selection follows a cascade rule: ticking a category ticks every one of its
// subcategories, and a category is considered ticked exactly when all of its
// subcategories are. Both toggle operations are pure functions so the cascade
// invariant can be checked after every mutation.
package filter

import "github.com/streetlayer/storefront/internal/catalog"

// Selected holds the active category and subcategory ids. The zero value is
// an empty selection; use the methods rather than mutating the maps directly.
type Selected struct {
	Categories    map[string]struct{}
	Subcategories map[string]struct{}
}

// NewSelected returns an empty selection.
func NewSelected() Selected {
	return Selected{
		Categories:    map[string]struct{}{},
		Subcategories: map[string]struct{}{},
	}
}

// IsEmpty reports whether nothing is selected.
func (s Selected) IsEmpty() bool {
	return len(s.Categories) == 0 && len(s.Subcategories) == 0
}

// HasCategory reports whether the category id is selected.
func (s Selected) HasCategory(id string) bool {
	_, ok := s.Categories[id]
	return ok
}

// HasSubcategory reports whether the subcategory id is selected.
func (s Selected) HasSubcategory(id string) bool {
	_, ok := s.Subcategories[id]
	return ok
}

// Copy deep-copies both sets so the result never aliases the receiver. The
// toggle functions use it to leave their input untouched; holders of a shared
// selection use it to hand out a mutation-safe view.
func (s Selected) Copy() Selected {
	out := Selected{
		Categories:    make(map[string]struct{}, len(s.Categories)),
		Subcategories: make(map[string]struct{}, len(s.Subcategories)),
	}
	for id := range s.Categories {
		out.Categories[id] = struct{}{}
	}
	for id := range s.Subcategories {
		out.Subcategories[id] = struct{}{}
	}
	return out
}

// ApplyCategoryToggle adds or removes a category together with all of its
// subcategories (cascade down). It returns a new Selected; the input is left
// untouched.
func ApplyCategoryToggle(s Selected, cat catalog.Category, checked bool) Selected {
	out := s.Copy()
	if checked {
		out.Categories[cat.ID] = struct{}{}
		for _, sub := range cat.Subcategories {
			out.Subcategories[sub.ID] = struct{}{}
		}
		return out
	}
	delete(out.Categories, cat.ID)
	for _, sub := range cat.Subcategories {
		delete(out.Subcategories, sub.ID)
	}
	return out
}

// ApplySubcategoryToggle adds or removes a single subcategory, then
// recomputes the parent's membership: the parent is selected exactly when all
// of its subcategories are (cascade up). A parent with no subcategories is
// never touched here; such categories are only toggled directly.
func ApplySubcategoryToggle(s Selected, subID string, checked bool, parent catalog.Category) Selected {
	out := s.Copy()
	if checked {
		out.Subcategories[subID] = struct{}{}
	} else {
		delete(out.Subcategories, subID)
	}

	if len(parent.Subcategories) == 0 {
		return out
	}

	all := true
	for _, sub := range parent.Subcategories {
		if _, ok := out.Subcategories[sub.ID]; !ok {
			all = false
			break
		}
	}
	if all {
		out.Categories[parent.ID] = struct{}{}
	} else {
		delete(out.Categories, parent.ID)
	}
	return out
}

// Holds reports whether the cascade invariant is satisfied for the given
// categories: every category with subcategories is selected iff all of its
// subcategory ids are selected.
func Holds(s Selected, categories []catalog.Category) bool {
	for _, cat := range categories {
		if len(cat.Subcategories) == 0 {
			continue
		}
		all := true
		for _, sub := range cat.Subcategories {
			if !s.HasSubcategory(sub.ID) {
				all = false
				break
			}
		}
		if all != s.HasCategory(cat.ID) {
			return false
		}
	}
	return true
}
