package cart

import (
	"errors"
	"fmt"
	"sync"
)

const (
	// MaxDistinct is the cart-wide limit of distinct products.
	MaxDistinct = 20
	// MaxPerProduct is the per-line quantity ceiling.
	MaxPerProduct = 10
)

var (
	ErrCapacity        = errors.New("cart capacity exceeded")
	ErrQuantityRange   = errors.New("quantity out of range")
	ErrInvalidQuantity = errors.New("invalid quantity")
	ErrOutOfStock      = errors.New("out of stock")
	ErrNotFound        = errors.New("not in cart")
)

// Line is one cart entry. The product is referenced by id only; the
// catalog stays the owner of product data.
type Line struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// Cart is an ordered product -> quantity mapping. All effects are in
// memory; persistence is not the cart's concern.
type Cart struct {
	mu    sync.Mutex
	order []string
	lines map[string]int
}

func New() *Cart {
	return &Cart{lines: make(map[string]int)}
}

// Add merges qty into an existing line or appends a new one, keeping
// insertion order. stock is the available quantity of the product.
func (c *Cart) Add(productID string, qty, stock int) error {
	if qty < 1 || qty > MaxPerProduct {
		return fmt.Errorf("%w: quantity must be between 1 and %d", ErrQuantityRange, MaxPerProduct)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	cur := c.lines[productID]
	if cur == 0 && len(c.order) >= MaxDistinct {
		return fmt.Errorf("%w: at most %d distinct products", ErrCapacity, MaxDistinct)
	}

	next := cur + qty
	if next > MaxPerProduct {
		return fmt.Errorf("%w: at most %d of one product", ErrQuantityRange, MaxPerProduct)
	}
	if next > stock {
		return fmt.Errorf("%w: only %d available", ErrOutOfStock, stock)
	}

	if cur == 0 {
		c.order = append(c.order, productID)
	}
	c.lines[productID] = next
	return nil
}

// Edit sets the line quantity. Zero removes the line.
func (c *Cart) Edit(productID string, qty, stock int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.lines[productID]; !ok {
		return ErrNotFound
	}

	switch {
	case qty < 0:
		return ErrInvalidQuantity
	case qty == 0:
		c.removeLocked(productID)
		return nil
	case qty > MaxPerProduct:
		return fmt.Errorf("%w: at most %d of one product", ErrQuantityRange, MaxPerProduct)
	case qty > stock:
		return fmt.Errorf("%w: only %d available", ErrOutOfStock, stock)
	}

	c.lines[productID] = qty
	return nil
}

func (c *Cart) Remove(productID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.lines[productID]; !ok {
		return ErrNotFound
	}
	c.removeLocked(productID)
	return nil
}

func (c *Cart) removeLocked(productID string) {
	delete(c.lines, productID)
	for i, id := range c.order {
		if id == productID {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}

func (c *Cart) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.order = nil
	c.lines = make(map[string]int)
}

// Lines returns a snapshot copy in insertion order.
func (c *Cart) Lines() []Line {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]Line, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, Line{ProductID: id, Quantity: c.lines[id]})
	}
	return out
}

func (c *Cart) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.order)
}

func (c *Cart) Quantity(productID string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lines[productID]
}

// Sessions hands out one cart per user email, created on first use.
type Sessions struct {
	mu    sync.Mutex
	carts map[string]*Cart
}

func NewSessions() *Sessions {
	return &Sessions{carts: make(map[string]*Cart)}
}

func (s *Sessions) Cart(email string) *Cart {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.carts[email]
	if !ok {
		c = New()
		s.carts[email] = c
	}
	return c
}
