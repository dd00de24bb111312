package inventory

import (
	"cmp"
	"slices"
	"strings"
)

type SortField int

const (
	SortNone SortField = iota
	SortSKU
	SortName
	SortCategory
	SortQuantity
	SortPrice
)

var sortFieldNames = map[string]SortField{
	"sku":      SortSKU,
	"name":     SortName,
	"category": SortCategory,
	"quantity": SortQuantity,
	"price":    SortPrice,
}

var comparators = map[SortField]func(a, b Product) int{
	SortSKU:      func(a, b Product) int { return cmp.Compare(a.sku, b.sku) },
	SortName:     func(a, b Product) int { return cmp.Compare(a.name, b.name) },
	SortCategory: func(a, b Product) int { return cmp.Compare(a.category, b.category) },
	SortQuantity: func(a, b Product) int { return cmp.Compare(a.quantity, b.quantity) },
	SortPrice:    func(a, b Product) int { return cmp.Compare(a.price, b.price) },
}

// ParseSortField maps a field name to a SortField. Unknown names give
// SortNone and false.
func ParseSortField(s string) (SortField, bool) {
	f, ok := sortFieldNames[strings.ToLower(strings.TrimSpace(s))]
	return f, ok
}

func (f SortField) String() string {
	for name, v := range sortFieldNames {
		if v == f {
			return name
		}
	}
	return "none"
}

func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.order)
}

func (c *Catalog) Get(sku string) (Product, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	p, ok := c.items[sku]
	if !ok {
		return Product{}, false
	}
	return *p, true
}

// ListAll returns every product. With SortNone (or any field without a
// comparator) the catalog's insertion order is kept.
func (c *Catalog) ListAll(field SortField, reverse bool) []Product {
	out := c.snapshot()
	SortProducts(out, field, reverse)
	return out
}

// SortProducts sorts products in place by field. Ties keep their relative
// order in both directions; SortNone leaves the slice untouched.
func SortProducts(products []Product, field SortField, reverse bool) {
	compare, ok := comparators[field]
	if !ok {
		return
	}
	slices.SortStableFunc(products, func(a, b Product) int {
		if reverse {
			return compare(b, a)
		}
		return compare(a, b)
	})
}

func (c *Catalog) FindByName(substr string) []Product {
	needle := strings.ToLower(substr)
	return c.filter(func(p Product) bool {
		return strings.Contains(strings.ToLower(p.name), needle)
	})
}

// Search matches text against name or category, ignoring case.
func (c *Catalog) Search(text string) []Product {
	needle := strings.ToLower(text)
	return c.filter(func(p Product) bool {
		return strings.Contains(strings.ToLower(p.name), needle) ||
			strings.Contains(strings.ToLower(p.category), needle)
	})
}

func (c *Catalog) FilterByCategory(category string) []Product {
	want := strings.ToLower(category)
	return c.filter(func(p Product) bool {
		return strings.ToLower(p.category) == want
	})
}

func (c *Catalog) LowStock(threshold int) []Product {
	return c.filter(func(p Product) bool { return p.quantity <= threshold })
}

func (c *Catalog) TotalValue() float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.totalLocked()
}

func (c *Catalog) snapshot() []Product {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snapshotLocked()
}

func (c *Catalog) filter(keep func(Product) bool) []Product {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]Product, 0)
	for _, sku := range c.order {
		if p := *c.items[sku]; keep(p) {
			out = append(out, p)
		}
	}
	return out
}
