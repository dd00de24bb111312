package inventory

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Product is a stock item. The zero value is not valid; build one with
// NewProduct or FromRecord.
type Product struct {
	sku      string
	name     string
	category string
	quantity int
	price    float64
}

// Record is the plain field mapping a Product is persisted as.
type Record struct {
	SKU      string  `json:"sku"`
	Name     string  `json:"name"`
	Category string  `json:"category"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}

func NewProduct(sku, name, category string, quantity int, price float64) (Product, error) {
	if sku == "" {
		return Product{}, invalid("sku", "must be a non-empty string")
	}
	if err := checkName(name); err != nil {
		return Product{}, err
	}
	if err := checkQuantity(quantity); err != nil {
		return Product{}, err
	}
	if err := checkPrice(price); err != nil {
		return Product{}, err
	}
	return Product{sku: sku, name: name, category: category, quantity: quantity, price: price}, nil
}

func checkName(name string) error {
	if name == "" {
		return invalid("name", "must not be empty")
	}
	return nil
}

func checkQuantity(q int) error {
	if q < 0 {
		return invalid("quantity", "must be an integer >= 0")
	}
	return nil
}

func checkPrice(p float64) error {
	if math.IsNaN(p) || math.IsInf(p, 0) || p < 0 {
		return invalid("price", "must be a number >= 0")
	}
	return nil
}

func (p Product) SKU() string      { return p.sku }
func (p Product) Name() string     { return p.name }
func (p Product) Category() string { return p.category }
func (p Product) Quantity() int    { return p.quantity }
func (p Product) Price() float64   { return p.price }

// Value is quantity times price.
func (p Product) Value() float64 { return float64(p.quantity) * p.price }

func (p *Product) SetName(name string) error {
	if err := checkName(name); err != nil {
		return err
	}
	p.name = name
	return nil
}

func (p *Product) SetCategory(category string) error {
	p.category = category
	return nil
}

func (p *Product) SetQuantity(q int) error {
	if err := checkQuantity(q); err != nil {
		return err
	}
	p.quantity = q
	return nil
}

func (p *Product) SetPrice(price float64) error {
	if err := checkPrice(price); err != nil {
		return err
	}
	p.price = price
	return nil
}

func (p Product) String() string {
	return fmt.Sprintf("Product(sku=%q, name=%q, qty=%d, price=%.2f)", p.sku, p.name, p.quantity, p.price)
}

func (p Product) Record() Record {
	return Record{
		SKU:      p.sku,
		Name:     p.name,
		Category: p.category,
		Quantity: p.quantity,
		Price:    p.price,
	}
}

func FromRecord(r Record) (Product, error) {
	return NewProduct(r.SKU, r.Name, r.Category, r.Quantity, r.Price)
}

func (p Product) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.Record())
}

var recordFields = [...]string{"sku", "name", "category", "quantity", "price"}

// DecodeRecord turns an untyped mapping (as decoded from JSON) into a
// validated Product. Quantity is coerced to an integer and price to a float
// before validation; booleans count as 1 and 0.
func DecodeRecord(m map[string]any) (Product, error) {
	for _, f := range recordFields {
		if _, ok := m[f]; !ok {
			return Product{}, missing(f)
		}
	}

	sku, ok := m["sku"].(string)
	if !ok {
		return Product{}, invalid("sku", "must be a non-empty string")
	}
	name, ok := m["name"].(string)
	if !ok {
		return Product{}, invalid("name", "must be a string")
	}
	category, ok := m["category"].(string)
	if !ok {
		return Product{}, invalid("category", "must be a string")
	}
	qty, err := coerceInt(m["quantity"])
	if err != nil {
		return Product{}, invalid("quantity", err.Error())
	}
	price, err := coerceFloat(m["price"])
	if err != nil {
		return Product{}, invalid("price", err.Error())
	}

	return NewProduct(sku, name, category, qty, price)
}

func coerceInt(v any) (int, error) {
	switch x := v.(type) {
	case int:
		return x, nil
	case int64:
		return intFromInt64(x)
	case float64:
		return intFromFloat(x)
	case json.Number:
		if n, err := x.Int64(); err == nil {
			return intFromInt64(n)
		}
		f, err := x.Float64()
		if err != nil {
			return 0, fmt.Errorf("not a number: %q", x.String())
		}
		return intFromFloat(f)
	case bool:
		if x {
			return 1, nil
		}
		return 0, nil
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(x))
		if err != nil {
			return 0, fmt.Errorf("not an integer: %q", x)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("not an integer: %v", v)
	}
}

func intFromInt64(n int64) (int, error) {
	if n > math.MaxInt || n < math.MinInt {
		return 0, fmt.Errorf("out of range: %d", n)
	}
	return int(n), nil
}

func intFromFloat(f float64) (int, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f >= math.MaxInt64 || f < math.MinInt64 {
		return 0, fmt.Errorf("out of range: %v", f)
	}
	return intFromInt64(int64(f))
}

func coerceFloat(v any) (float64, error) {
	switch x := v.(type) {
	case float64:
		return x, nil
	case int:
		return float64(x), nil
	case int64:
		return float64(x), nil
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			return 0, fmt.Errorf("not a number: %q", x.String())
		}
		return f, nil
	case bool:
		if x {
			return 1, nil
		}
		return 0, nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0, fmt.Errorf("not a number: %q", x)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("not a number: %v", v)
	}
}
