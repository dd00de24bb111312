package inventory

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"go.uber.org/zap"
)

// Catalog is the SKU-keyed product collection bound to a Store. Every
// successful mutation rewrites the store before returning; a failed write
// rolls the in-memory change back.
type Catalog struct {
	mu    sync.RWMutex
	store Store
	items map[string]*Product
	order []string

	log     *zap.Logger
	metrics *Metrics
}

type Option func(*Catalog)

// WithLogger sets the logger used for load/save debug events.
func WithLogger(l *zap.Logger) Option {
	return func(c *Catalog) {
		if l != nil {
			c.log = l
		}
	}
}

func WithMetrics(m *Metrics) Option {
	return func(c *Catalog) { c.metrics = m }
}

// Open loads the catalog from store. A SKU that appears more than once keeps
// its first position and takes the values of its last record.
func Open(ctx context.Context, store Store, opts ...Option) (*Catalog, error) {
	c := &Catalog{
		store: store,
		items: make(map[string]*Product),
		log:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}

	products, err := store.Load(ctx)
	if err != nil {
		return nil, err
	}
	for _, p := range products {
		if cur, dup := c.items[p.sku]; dup {
			*cur = p
			continue
		}
		stored := p
		c.items[p.sku] = &stored
		c.order = append(c.order, p.sku)
	}

	c.log.Debug("catalog loaded", zap.Int("products", len(c.order)))
	c.metrics.setState(len(c.order), c.totalLocked())
	return c, nil
}

func (c *Catalog) Store() Store { return c.store }

func (c *Catalog) Add(ctx context.Context, p Product) (err error) {
	if _, err := FromRecord(p.Record()); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	defer c.record("add", &err)

	if _, ok := c.items[p.sku]; ok {
		return duplicate(p.sku)
	}

	stored := p
	c.items[p.sku] = &stored
	c.order = append(c.order, p.sku)

	return c.persist(ctx, "add", func() {
		delete(c.items, p.sku)
		c.order = c.order[:len(c.order)-1]
	})
}

func (c *Catalog) Remove(ctx context.Context, sku string) (err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	defer c.record("remove", &err)

	removed, ok := c.items[sku]
	if !ok {
		return notFound(sku)
	}
	idx := slices.Index(c.order, sku)

	delete(c.items, sku)
	c.order = slices.Delete(c.order, idx, idx+1)

	return c.persist(ctx, "remove", func() {
		c.items[sku] = removed
		c.order = slices.Insert(c.order, idx, sku)
	})
}

// AdjustQuantity adds delta (possibly negative) to the stored quantity.
func (c *Catalog) AdjustQuantity(ctx context.Context, sku string, delta int) error {
	return c.update(ctx, "adjust_quantity", sku, func(p *Product) error {
		next := p.quantity + delta
		if next < 0 {
			return invalid("quantity", fmt.Sprintf("cannot go below zero (have %d, delta %d)", p.quantity, delta))
		}
		p.quantity = next
		return nil
	})
}

func (c *Catalog) SetQuantity(ctx context.Context, sku string, value int) error {
	return c.update(ctx, "set_quantity", sku, func(p *Product) error {
		return p.SetQuantity(value)
	})
}

func (c *Catalog) SetPrice(ctx context.Context, sku string, value float64) error {
	return c.update(ctx, "set_price", sku, func(p *Product) error {
		return p.SetPrice(value)
	})
}

// Edit replaces every mutable field at once.
func (c *Catalog) Edit(ctx context.Context, sku, name, category string, quantity int, price float64) error {
	return c.update(ctx, "edit", sku, func(p *Product) error {
		if err := p.SetName(name); err != nil {
			return err
		}
		if err := p.SetCategory(category); err != nil {
			return err
		}
		if err := p.SetQuantity(quantity); err != nil {
			return err
		}
		return p.SetPrice(price)
	})
}

// update applies fn to a copy of the product and swaps it in only when fn
// succeeds.
func (c *Catalog) update(ctx context.Context, op, sku string, fn func(p *Product) error) (err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	defer c.record(op, &err)

	cur, ok := c.items[sku]
	if !ok {
		return notFound(sku)
	}

	next := *cur
	if err := fn(&next); err != nil {
		return err
	}

	prev := *cur
	*cur = next

	return c.persist(ctx, op, func() { *cur = prev })
}

// persist must be called with c.mu held.
func (c *Catalog) persist(ctx context.Context, op string, undo func()) error {
	if err := c.store.Save(ctx, c.snapshotLocked()); err != nil {
		undo()
		return fmt.Errorf("save catalog: %w", err)
	}
	c.log.Debug("catalog saved", zap.String("op", op), zap.Int("products", len(c.order)))
	return nil
}

func (c *Catalog) record(op string, err *error) {
	c.metrics.observe(op, *err)
	c.metrics.setState(len(c.order), c.totalLocked())
}

func (c *Catalog) snapshotLocked() []Product {
	out := make([]Product, 0, len(c.order))
	for _, sku := range c.order {
		out = append(out, *c.items[sku])
	}
	return out
}

func (c *Catalog) totalLocked() float64 {
	var total float64
	for _, sku := range c.order {
		total += c.items[sku].Value()
	}
	return total
}
