package stores

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/gmcandra/mebelshop/app/models"
	"github.com/gmcandra/mebelshop/pkg/collection"
	"github.com/gmcandra/mebelshop/pkg/kv"
	"github.com/gmcandra/mebelshop/pkg/logger"
	"github.com/gmcandra/mebelshop/pkg/metrics"
)

// Line is one cart entry: a product snapshot frozen at add time plus the
// requested quantity. Stock is the ceiling quantities are clamped to.
type Line struct {
	ProductID uint    `json:"product_id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Image     string  `json:"image"`
	Category  string  `json:"category"`
	Stock     int     `json:"stock"`
	Quantity  int     `json:"quantity"`
}

// Subtotal returns price times quantity for this line.
func (l Line) Subtotal() float64 { return l.Price * float64(l.Quantity) }

// Cart is an ordered list of lines with set semantics on product id.
// Invariant: 1 <= Quantity <= Stock on every line. Every mutation writes
// the whole cart through to storage.
type Cart struct {
	mu    sync.Mutex
	store kv.Store
	key   string
	lines []Line
}

// NewCart creates a Cart persisting under key in store.
func NewCart(store kv.Store, key string) *Cart {
	return &Cart{store: store, key: key}
}

// clamp pulls qty into [1, ceiling] and records which bound fired.
// Callers guarantee ceiling >= 1.
func clamp(qty, ceiling int) int {
	if qty > ceiling {
		metrics.QuantityClamped.WithLabelValues("stock").Inc()
		return ceiling
	}
	if qty < 1 {
		metrics.QuantityClamped.WithLabelValues("floor").Inc()
		return 1
	}
	return qty
}

// Add puts qty units of product in the cart. An existing line is
// incremented instead of duplicated; the result is clamped to the
// product's stock ceiling. Out-of-stock products are refused: no
// ceiling >= 1 exists, so no line can satisfy the quantity invariant.
func (c *Cart) Add(ctx context.Context, product models.Product, qty int) {
	if product.Stock < 1 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.lines {
		if c.lines[i].ProductID == product.ID {
			c.lines[i].Quantity = clamp(c.lines[i].Quantity+qty, c.lines[i].Stock)
			metrics.CartOperations.WithLabelValues("add").Inc()
			c.persistLocked(ctx)
			return
		}
	}

	c.lines = append(c.lines, Line{
		ProductID: product.ID,
		Name:      product.Name,
		Price:     product.Price,
		Image:     product.Image,
		Category:  product.Category.Name,
		Stock:     product.Stock,
		Quantity:  clamp(qty, product.Stock),
	})
	metrics.CartOperations.WithLabelValues("add").Inc()
	c.persistLocked(ctx)
}

// UpdateQuantity sets the line's quantity, clamped to [1, stock].
// Unknown product ids are ignored.
func (c *Cart) UpdateQuantity(ctx context.Context, productID uint, qty int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.lines {
		if c.lines[i].ProductID == productID {
			c.lines[i].Quantity = clamp(qty, c.lines[i].Stock)
			metrics.CartOperations.WithLabelValues("update").Inc()
			c.persistLocked(ctx)
			return
		}
	}
}

// Remove deletes the line for productID; absent ids are a silent no-op.
func (c *Cart) Remove(ctx context.Context, productID uint) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.lines {
		if c.lines[i].ProductID == productID {
			c.lines = append(c.lines[:i], c.lines[i+1:]...)
			metrics.CartOperations.WithLabelValues("remove").Inc()
			c.persistLocked(ctx)
			return
		}
	}
}

// Clear empties the cart.
func (c *Cart) Clear(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.lines = nil
	metrics.CartOperations.WithLabelValues("clear").Inc()
	c.persistLocked(ctx)
}

// Lines returns a copy of the cart in insertion order.
func (c *Cart) Lines() []Line {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Line, len(c.lines))
	copy(out, c.lines)
	return out
}

// TotalItems sums quantities across all lines.
func (c *Cart) TotalItems() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return collection.SumInt(c.lines, func(l Line) int { return l.Quantity })
}

// TotalPrice sums price times quantity across all lines; 0 for an empty
// cart.
func (c *Cart) TotalPrice() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return collection.Sum(c.lines, Line.Subtotal)
}

// Load restores the cart from storage. A missing key yields an empty
// cart; unparsable or invariant-breaking payloads are discarded and the
// stored copy removed.
func (c *Cart) Load(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	raw, err := c.store.Get(ctx, c.key)
	if err != nil {
		if err != kv.ErrNotFound {
			logger.Warn("cart: load failed", "error", err)
		}
		c.lines = nil
		return
	}

	var lines []Line
	if err := json.Unmarshal(raw, &lines); err != nil || !validLines(lines) {
		logger.Warn("cart: discarding invalid persisted cart")
		c.lines = nil
		if err := c.store.Delete(ctx, c.key); err != nil && err != kv.ErrNotFound {
			logger.Warn("cart: clear failed", "error", err)
		}
		return
	}

	c.lines = lines
}

// validLines checks the persisted shape against the cart invariant.
func validLines(lines []Line) bool {
	seen := make(map[uint]bool, len(lines))
	for _, l := range lines {
		if l.ProductID == 0 || seen[l.ProductID] {
			return false
		}
		if l.Quantity < 1 || l.Quantity > l.Stock {
			return false
		}
		seen[l.ProductID] = true
	}
	return true
}

// persistLocked writes the full cart through to storage. Callers hold
// c.mu.
func (c *Cart) persistLocked(ctx context.Context) {
	raw, err := json.Marshal(c.lines)
	if err != nil {
		logger.Error("cart: marshal failed", "error", err)
		return
	}
	if err := c.store.Set(ctx, c.key, raw); err != nil {
		logger.Warn("cart: persist failed", "error", err)
	}
}
