// Package query turns untrusted HTTP query parameters into a safe, bounded
// database query. Unrecognized keys are dropped and malformed values degrade
// to the field's default; Normalize never fails.
package query

import (
	"strconv"
	"strings"

	"gorm.io/gorm"
)

// DefaultLimit is the page size used when the caller provides none.
const DefaultLimit = 10

// Filter is the allow-listed predicate set a list query may carry. Nil fields
// are absent from the query.
type Filter struct {
	Category    *string
	SubCategory *string
	IsFeatured  *bool
	IsFlash     *bool
	MinPrice    *float64
	MaxPrice    *float64
}

// IsZero reports whether the filter carries no predicates.
func (f Filter) IsZero() bool {
	return f.Category == nil && f.SubCategory == nil &&
		f.IsFeatured == nil && f.IsFlash == nil &&
		f.MinPrice == nil && f.MaxPrice == nil
}

// Apply adds the filter predicates to a GORM query.
func (f Filter) Apply(tx *gorm.DB) *gorm.DB {
	if f.Category != nil {
		tx = tx.Where("category = ?", *f.Category)
	}
	if f.SubCategory != nil {
		tx = tx.Where("sub_category = ?", *f.SubCategory)
	}
	if f.IsFeatured != nil {
		tx = tx.Where("is_featured = ?", *f.IsFeatured)
	}
	if f.IsFlash != nil {
		tx = tx.Where("is_flash = ?", *f.IsFlash)
	}
	if f.MinPrice != nil {
		tx = tx.Where("price >= ?", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		tx = tx.Where("price <= ?", *f.MaxPrice)
	}
	return tx
}

// Options carries pagination, sorting and sampling for a list query.
// When Random is set, Skip and Sort are zeroed: sampling replaces pagination.
type Options struct {
	Page     int
	Limit    int
	Skip     int
	Sort     string // canonical sortable field name, "" for natural order
	SortDesc bool
	Random   bool
}

// sortColumns maps the accepted sort parameter names to their columns.
// Anything outside this list falls back to natural order.
var sortColumns = map[string]string{
	"id":            "id",
	"title":         "title",
	"price":         "price",
	"discountPrice": "discount_price",
	"ratingCount":   "rating_count",
	"avgRate":       "avg_rate",
	"createdAt":     "created_at",
}

// Apply adds pagination and ordering to a GORM query. Random sampling is
// expressed as ORDER BY RANDOM(), which both postgres and sqlite accept.
func (o Options) Apply(tx *gorm.DB) *gorm.DB {
	if o.Random {
		return tx.Order("RANDOM()").Limit(o.Limit)
	}
	if col, ok := sortColumns[o.Sort]; ok && o.Sort != "" {
		if o.SortDesc {
			tx = tx.Order(col + " DESC")
		} else {
			tx = tx.Order(col)
		}
	}
	return tx.Offset(o.Skip).Limit(o.Limit)
}

// Normalize converts a raw query-string map into a (Filter, Options) pair that
// is safe to hand to the storage layer. defaultLimit <= 0 falls back to
// DefaultLimit.
func Normalize(params map[string]string, defaultLimit int) (Filter, Options) {
	if defaultLimit <= 0 {
		defaultLimit = DefaultLimit
	}

	var f Filter
	if v, ok := nonEmpty(params, "category"); ok {
		f.Category = &v
	}
	if v, ok := nonEmpty(params, "subCategory"); ok {
		f.SubCategory = &v
	}
	if b, ok := parseBool(params["isFeatured"]); ok {
		f.IsFeatured = &b
	}
	if b, ok := parseBool(params["isFlash"]); ok {
		f.IsFlash = &b
	}
	if n, ok := parseFloat(params["minPrice"]); ok {
		f.MinPrice = &n
	}
	if n, ok := parseFloat(params["maxPrice"]); ok {
		f.MaxPrice = &n
	}

	o := Options{
		Page:  parsePositiveInt(params["page"], 1),
		Limit: parsePositiveInt(params["limit"], defaultLimit),
	}

	if random, ok := parseBool(params["random"]); ok && random {
		o.Random = true
		return f, o
	}

	o.Skip = (o.Page - 1) * o.Limit
	if sort := strings.TrimSpace(params["sort"]); sort != "" {
		field := strings.TrimPrefix(sort, "-")
		if _, ok := sortColumns[field]; ok {
			o.Sort = field
			o.SortDesc = strings.HasPrefix(sort, "-")
		}
	}
	return f, o
}

func nonEmpty(params map[string]string, key string) (string, bool) {
	v := strings.TrimSpace(params[key])
	return v, v != ""
}

func parseBool(raw string) (bool, bool) {
	b, err := strconv.ParseBool(strings.TrimSpace(raw))
	if err != nil {
		return false, false
	}
	return b, true
}

func parseFloat(raw string) (float64, bool) {
	n, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// parsePositiveInt coerces raw to an integer >= 1, falling back to def on
// anything malformed or below 1.
func parsePositiveInt(raw string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 1 {
		return def
	}
	return n
}
