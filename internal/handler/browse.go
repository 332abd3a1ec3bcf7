package handler

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/streetlayer/storefront/internal/browse"
	"github.com/streetlayer/storefront/internal/catalog"
)

// browseView is the collections page payload: the visible products plus the
// active filter state that produced them.
type browseView struct {
	Items         []catalog.Product  `json:"items"`
	Pagination    catalog.Pagination `json:"pagination"`
	Categories    []string           `json:"categories"`
	Subcategories []string           `json:"subcategories"`
	PriceMin      decimal.Decimal    `json:"price_min"`
	PriceMax      decimal.Decimal    `json:"price_max"`
}

func (h *Handler) browseViewNow() browseView {
	page := h.browse.Current()
	sel := h.browse.Selection()
	price := h.browse.Price()

	cats := make([]string, 0, len(sel.Categories))
	for id := range sel.Categories {
		cats = append(cats, id)
	}
	subs := make([]string, 0, len(sel.Subcategories))
	for id := range sel.Subcategories {
		subs = append(subs, id)
	}

	return browseView{
		Items:         page.Items,
		Pagination:    page.Pagination,
		Categories:    cats,
		Subcategories: subs,
		PriceMin:      price.Min,
		PriceMax:      price.Max,
	}
}

func (h *Handler) currentPage(w http.ResponseWriter, _ *http.Request) {
	respond(w, http.StatusOK, h.browseViewNow())
}

type toggleRequest struct {
	Checked bool `json:"checked"`
	// CategoryID names the parent a subcategory checkbox sits under. Needed
	// because a subcategory may belong to several categories.
	CategoryID string `json:"category_id,omitempty"`
}

func (h *Handler) toggleCategory(w http.ResponseWriter, r *http.Request) {
	var req toggleRequest
	if err := decodeBody(r, &req); err != nil {
		badRequest(w, "invalid body")
		return
	}

	cat, ok := h.categories[r.PathValue("id")]
	if !ok {
		respond(w, http.StatusNotFound, errorResponse{Code: http.StatusNotFound, Message: "unknown category"})
		return
	}

	h.browse.ToggleCategory(cat, req.Checked)
	respond(w, http.StatusOK, h.browseViewNow())
}

func (h *Handler) toggleSubcategory(w http.ResponseWriter, r *http.Request) {
	var req toggleRequest
	if err := decodeBody(r, &req); err != nil {
		badRequest(w, "invalid body")
		return
	}

	subID := r.PathValue("id")
	parent, ok := h.parentOf(subID, req.CategoryID)
	if !ok {
		respond(w, http.StatusNotFound, errorResponse{Code: http.StatusNotFound, Message: "unknown subcategory"})
		return
	}

	h.browse.ToggleSubcategory(subID, req.Checked, parent)
	respond(w, http.StatusOK, h.browseViewNow())
}

// parentOf resolves the category a subcategory toggle belongs to. An explicit
// category_id wins; otherwise the first category containing the subcategory
// is used.
func (h *Handler) parentOf(subID, categoryID string) (catalog.Category, bool) {
	if categoryID != "" {
		cat, ok := h.categories[categoryID]
		return cat, ok
	}
	for _, cat := range h.categories {
		for _, sub := range cat.Subcategories {
			if sub.ID == subID {
				return cat, true
			}
		}
	}
	return catalog.Category{}, false
}

type priceRequest struct {
	Min decimal.Decimal `json:"min"`
	Max decimal.Decimal `json:"max"`
}

// setPriceRange feeds the debouncer rather than the browse state directly:
// rapid slider updates collapse into one commit after the quiet period.
func (h *Handler) setPriceRange(w http.ResponseWriter, r *http.Request) {
	var req priceRequest
	if err := decodeBody(r, &req); err != nil {
		badRequest(w, "invalid body")
		return
	}

	h.price.Set(browse.PriceRange{Min: req.Min, Max: req.Max})
	respond(w, http.StatusAccepted, map[string]string{"status": "pending"})
}

type pageRequest struct {
	Page int `json:"page"`
}

func (h *Handler) setPage(w http.ResponseWriter, r *http.Request) {
	var req pageRequest
	if err := decodeBody(r, &req); err != nil {
		badRequest(w, "invalid body")
		return
	}

	h.browse.GoToPage(req.Page)
	respond(w, http.StatusOK, h.browseViewNow())
}

func (h *Handler) resetBrowse(w http.ResponseWriter, _ *http.Request) {
	h.browse.Reset()
	respond(w, http.StatusOK, h.browseViewNow())
}

func (h *Handler) listCategories(w http.ResponseWriter, r *http.Request) {
	respond(w, http.StatusOK, map[string]any{"items": h.source.ListCategories(r.Context())})
}

func (h *Handler) listSubcategories(w http.ResponseWriter, r *http.Request) {
	respond(w, http.StatusOK, map[string]any{"items": h.source.ListSubcategories(r.Context())})
}

func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.source.GetProduct(r.Context(), r.PathValue("id"))
	if err != nil {
		respondError(r.Context(), w, err)
		return
	}
	respond(w, http.StatusOK, map[string]any{"item": p})
}
