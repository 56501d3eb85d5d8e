package catalog

import (
	"sort"
	"strings"
)

// Product is a single catalog entry as stored in products.json.
// The JSON field names are shared with the storefront frontend and must not change.
type Product struct {
	// ID is the unique product identifier.
	ID int64 `json:"id"`
	// Name is the display name of the product.
	Name string `json:"name"`
	// Code is the vendor article code shown on product cards.
	Code string `json:"code,omitempty"`
	// Category groups products for filtering.
	Category string `json:"category,omitempty"`
	// Price is the product price in the store currency.
	Price float64 `json:"price,omitempty"`
	// Description is the long-form product description.
	Description string `json:"description,omitempty"`
	// Visible controls whether the product is shown to customers.
	// A nil value means visible; entries written by hand often omit the field.
	Visible *bool `json:"visible,omitempty"`
}

// IsVisible reports whether the product should be shown to customers.
func (p *Product) IsVisible() bool {
	return p.Visible == nil || *p.Visible
}

// Clone returns a deep copy of the product to avoid leaking internal references.
func (p *Product) Clone() *Product {
	if p == nil {
		return nil
	}

	cloned := *p

	if p.Visible != nil {
		visible := *p.Visible
		cloned.Visible = &visible
	}

	return &cloned
}

// MatchesQuery reports whether the query occurs in the product name,
// code or description. Matching is case-insensitive substring search.
func (p *Product) MatchesQuery(query string) bool {
	query = strings.ToLower(query)

	return strings.Contains(strings.ToLower(p.Name), query) ||
		strings.Contains(strings.ToLower(p.Code), query) ||
		strings.Contains(strings.ToLower(p.Description), query)
}

// Filter narrows a product listing. Zero values leave the dimension unconstrained.
type Filter struct {
	// Category keeps only products of this category; "all" or "" keeps everything.
	Category string
	// MinPrice keeps products priced at or above this value when set.
	MinPrice *float64
	// MaxPrice keeps products priced at or below this value when set.
	MaxPrice *float64
	// VisibleOnly drops products hidden from customers.
	VisibleOnly bool
}

// Matches reports whether the product passes every constraint of the filter.
func (f *Filter) Matches(p *Product) bool {
	if f.VisibleOnly && !p.IsVisible() {
		return false
	}

	if f.Category != "" && f.Category != "all" && p.Category != f.Category {
		return false
	}

	if f.MinPrice != nil && p.Price < *f.MinPrice {
		return false
	}

	if f.MaxPrice != nil && p.Price > *f.MaxPrice {
		return false
	}

	return true
}

// SortOrder selects listing order for products.
type SortOrder string

// Supported sort orders. Unknown values fall back to SortDefault,
// which preserves the on-disk ordering.
const (
	SortDefault   SortOrder = "default"
	SortNameAsc   SortOrder = "name-asc"
	SortNameDesc  SortOrder = "name-desc"
	SortPriceAsc  SortOrder = "price-asc"
	SortPriceDesc SortOrder = "price-desc"
)

// ParseSortOrder maps a query string to a SortOrder, defaulting on unknown input.
func ParseSortOrder(s string) SortOrder {
	switch SortOrder(s) {
	case SortNameAsc, SortNameDesc, SortPriceAsc, SortPriceDesc:
		return SortOrder(s)
	default:
		return SortDefault
	}
}

// SortProducts orders the slice in place according to the sort order.
// Name comparison is case-insensitive; the sort is stable so equal
// keys keep their catalog order.
func SortProducts(products []*Product, order SortOrder) {
	switch order {
	case SortNameAsc:
		sort.SliceStable(products, func(i, j int) bool {
			return strings.ToLower(products[i].Name) < strings.ToLower(products[j].Name)
		})
	case SortNameDesc:
		sort.SliceStable(products, func(i, j int) bool {
			return strings.ToLower(products[i].Name) > strings.ToLower(products[j].Name)
		})
	case SortPriceAsc:
		sort.SliceStable(products, func(i, j int) bool {
			return products[i].Price < products[j].Price
		})
	case SortPriceDesc:
		sort.SliceStable(products, func(i, j int) bool {
			return products[i].Price > products[j].Price
		})
	case SortDefault:
	}
}

// Categories returns the sorted set of distinct categories among visible products.
// Products without a category are reported under "other".
func Categories(products []*Product) []string {
	set := make(map[string]struct{}, len(products))

	for _, p := range products {
		if !p.IsVisible() {
			continue
		}

		category := p.Category
		if category == "" {
			category = "other"
		}

		set[category] = struct{}{}
	}

	result := make([]string, 0, len(set))
	for category := range set {
		result = append(result, category)
	}

	sort.Strings(result)

	return result
}
