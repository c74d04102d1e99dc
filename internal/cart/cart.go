// Package cart holds the per-session checkout cart. A cart never reaches the relational
// store; only the order written at checkout does.
package cart

import (
	"pos-service/internal/model"

	"github.com/shopspring/decimal"
)

// Line is one cart entry. Product is a snapshot taken when the product was first added.
type Line struct {
	Product  model.Product `json:"product"`
	Quantity int           `json:"quantity"`
}

// Subtotal returns price times quantity
func (l Line) Subtotal() decimal.Decimal {
	return l.Product.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Cart is an ordered collection of lines keyed by product id.
// Every line has Quantity >= 1.
type Cart struct {
	Lines []Line `json:"lines"`
}

// New returns an empty cart
func New() *Cart {
	return &Cart{Lines: []Line{}}
}

// AdjustQuantity is the only mutation primitive besides Remove. An absent product is
// added with quantity 1 when delta > 0 and ignored otherwise; a present one has delta
// added and is dropped once its quantity falls to zero or below.
func (c *Cart) AdjustQuantity(product model.Product, delta int) {
	i := c.index(product.ID)
	if i < 0 {
		if delta > 0 {
			c.Lines = append(c.Lines, Line{Product: product, Quantity: 1})
		}
		return
	}

	qty := c.Lines[i].Quantity + delta
	if qty <= 0 {
		c.removeAt(i)
		return
	}
	c.Lines[i].Quantity = qty
}

// Remove drops the product's line regardless of quantity
func (c *Cart) Remove(productID uint) {
	if i := c.index(productID); i >= 0 {
		c.removeAt(i)
	}
}

// Quantity returns the quantity of a product, 0 when absent
func (c *Cart) Quantity(productID uint) int {
	if i := c.index(productID); i >= 0 {
		return c.Lines[i].Quantity
	}
	return 0
}

// Total sums price times quantity over the current lines
func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, l := range c.Lines {
		total = total.Add(l.Subtotal())
	}
	return total
}

// Line returns the product's line
func (c *Cart) Line(productID uint) (Line, bool) {
	if i := c.index(productID); i >= 0 {
		return c.Lines[i], true
	}
	return Line{}, false
}

// Count returns the number of distinct products
func (c *Cart) Count() int {
	return len(c.Lines)
}

// IsEmpty reports whether the cart has no lines
func (c *Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}

// Clear removes every line
func (c *Cart) Clear() {
	c.Lines = []Line{}
}

func (c *Cart) index(productID uint) int {
	for i, l := range c.Lines {
		if l.Product.ID == productID {
			return i
		}
	}
	return -1
}

func (c *Cart) removeAt(i int) {
	c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
}

// normalize drops lines that could only come from a corrupted stored value
func (c *Cart) normalize() {
	kept := c.Lines[:0]
	for _, l := range c.Lines {
		if l.Quantity > 0 {
			kept = append(kept, l)
		}
	}
	c.Lines = kept
}
