package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/streetlayer/storefront/internal/catalog"
)

var _ catalog.Source = (*Client)(nil)

// ListCategories fetches all categories. On any failure it logs and returns
// an empty slice, never nil.
func (c *Client) ListCategories(ctx context.Context) []catalog.Category {
	body, err := c.get(ctx, "/public/categories", nil, "")
	if err != nil {
		zctx.From(ctx).Warn("Listing categories failed", zap.Error(err))
		return []catalog.Category{}
	}

	var envelope struct {
		Items []catalog.Category `json:"items"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		zctx.From(ctx).Warn("Malformed categories response", zap.Error(err))
		return []catalog.Category{}
	}
	if envelope.Items == nil {
		return []catalog.Category{}
	}
	return envelope.Items
}

// ListSubcategories fetches all subcategories with the same degrade-to-empty
// contract as ListCategories.
func (c *Client) ListSubcategories(ctx context.Context) []catalog.Subcategory {
	body, err := c.get(ctx, "/public/subcategories", nil, "")
	if err != nil {
		zctx.From(ctx).Warn("Listing subcategories failed", zap.Error(err))
		return []catalog.Subcategory{}
	}

	var envelope struct {
		Items []catalog.Subcategory `json:"items"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		zctx.From(ctx).Warn("Malformed subcategories response", zap.Error(err))
		return []catalog.Subcategory{}
	}
	if envelope.Items == nil {
		return []catalog.Subcategory{}
	}
	return envelope.Items
}

// ListProducts fetches one backend page of products. Any transport or decode
// failure degrades to the stable empty page shape for the requested limit.
func (c *Client) ListProducts(ctx context.Context, page, limit int, f catalog.ListFilter) catalog.ProductPage {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("limit", strconv.Itoa(limit))
	if f.CategoryID != "" {
		q.Set("category", f.CategoryID)
	}
	if f.SubcategoryID != "" {
		q.Set("subcategory", f.SubcategoryID)
	}

	body, err := c.get(ctx, "/products", q, "")
	if err != nil {
		zctx.From(ctx).Warn("Listing products failed", zap.Error(err))
		return catalog.EmptyProductPage(limit)
	}

	result, err := decodeProductPage(body, limit)
	if err != nil {
		zctx.From(ctx).Warn("Malformed products response", zap.Error(err))
		return catalog.EmptyProductPage(limit)
	}
	return result
}

// GetProduct fetches a single product. A missing product yields
// catalog.ErrNotFound; other failures are returned as-is.
func (c *Client) GetProduct(ctx context.Context, id string) (*catalog.Product, error) {
	body, err := c.get(ctx, "/products/"+url.PathEscape(id), nil, "")
	if err != nil {
		var se *StatusError
		if errors.As(err, &se) && se.Status == http.StatusNotFound {
			return nil, catalog.ErrNotFound
		}
		return nil, err
	}

	d := jx.DecodeBytes(body)
	var p catalog.Product
	found := false
	err = d.Obj(func(d *jx.Decoder, key string) error {
		if key != "item" {
			return d.Skip()
		}
		found = true
		var derr error
		p, derr = decodeProduct(d)
		return derr
	})
	if err != nil {
		return nil, errors.Wrap(err, "decode product")
	}
	if !found {
		return nil, catalog.ErrNotFound
	}
	return &p, nil
}

// decodeProductPage streams through the paginated products envelope with jx,
// tolerating unknown keys and id fields encoded as either numbers or strings.
func decodeProductPage(body []byte, limit int) (catalog.ProductPage, error) {
	out := catalog.EmptyProductPage(limit)
	d := jx.DecodeBytes(body)

	err := d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "items":
			return d.Arr(func(d *jx.Decoder) error {
				p, err := decodeProduct(d)
				if err != nil {
					return err
				}
				out.Items = append(out.Items, p)
				return nil
			})
		case "pagination":
			return d.Obj(func(d *jx.Decoder, key string) error {
				switch key {
				case "current_page":
					v, err := d.Int()
					out.Pagination.CurrentPage = v
					return err
				case "items_per_page":
					v, err := d.Int()
					out.Pagination.ItemsPerPage = v
					return err
				case "total_items":
					v, err := d.Int()
					out.Pagination.TotalItems = v
					return err
				case "total_pages":
					v, err := d.Int()
					out.Pagination.TotalPages = v
					return err
				case "has_previous":
					v, err := d.Bool()
					out.Pagination.HasPrevious = v
					return err
				case "has_next":
					v, err := d.Bool()
					out.Pagination.HasNext = v
					return err
				default:
					return d.Skip()
				}
			})
		default:
			return d.Skip()
		}
	})
	if err != nil {
		return catalog.ProductPage{}, errors.Wrap(err, "decode products envelope")
	}
	return out, nil
}

// decodeProduct decodes a single product object.
func decodeProduct(d *jx.Decoder) (catalog.Product, error) {
	var p catalog.Product
	err := d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "id":
			v, err := flexID(d)
			p.ID = v
			return err
		case "name":
			v, err := d.Str()
			p.Name = v
			return err
		case "price":
			v, err := flexDecimal(d)
			p.Price = v
			return err
		case "category":
			v, err := refID(d)
			p.CategoryID = v
			return err
		case "subcategory":
			v, err := refID(d)
			p.SubcategoryID = v
			return err
		case "stock":
			v, err := d.Int()
			p.Stock = v
			return err
		case "created_at", "createdAt":
			v, err := d.Str()
			if err != nil {
				return err
			}
			if t, perr := time.Parse(time.RFC3339, v); perr == nil {
				p.CreatedAt = t
			}
			return nil
		case "url_image", "urlImage":
			v, err := d.Str()
			p.ImageURL = v
			return err
		case "url_image_hover", "urlImageHover":
			v, err := d.Str()
			p.HoverImageURL = v
			return err
		default:
			return d.Skip()
		}
	})
	return p, err
}

// flexID reads an identifier encoded as a JSON string or number.
func flexID(d *jx.Decoder) (string, error) {
	switch d.Next() {
	case jx.String:
		return d.Str()
	case jx.Number:
		n, err := d.Num()
		if err != nil {
			return "", err
		}
		return string(n), nil
	case jx.Null:
		return "", d.Null()
	default:
		return "", errors.New("unexpected id type")
	}
}

// flexDecimal reads a price encoded as a JSON number or numeric string.
func flexDecimal(d *jx.Decoder) (decimal.Decimal, error) {
	switch d.Next() {
	case jx.Number:
		n, err := d.Num()
		if err != nil {
			return decimal.Zero, err
		}
		return decimal.NewFromString(string(n))
	case jx.String:
		s, err := d.Str()
		if err != nil {
			return decimal.Zero, err
		}
		return decimal.NewFromString(s)
	case jx.Null:
		return decimal.Zero, d.Null()
	default:
		return decimal.Zero, errors.New("unexpected price type")
	}
}

// refID reads a category/subcategory reference: null, a bare id, or an
// object carrying an "id" field.
func refID(d *jx.Decoder) (string, error) {
	switch d.Next() {
	case jx.Null:
		return "", d.Null()
	case jx.Object:
		var id string
		err := d.Obj(func(d *jx.Decoder, key string) error {
			if key != "id" {
				return d.Skip()
			}
			v, err := flexID(d)
			id = v
			return err
		})
		return id, err
	default:
		return flexID(d)
	}
}
