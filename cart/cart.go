// Package cart holds the shopping cart of a single session: an ordered,
// id-keyed list of line items, the totals derived from it, and a Store that
// mirrors it to durable storage.
package cart

import (
	"encoding/json"
	"slices"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// MaxQuantity is the largest quantity a line can hold. Adds and updates past
// it are capped.
const MaxQuantity = 9999

// Cart is an immutable ordered collection of items keyed by product id.
// Every operation returns a new Cart and leaves the receiver untouched.
// The zero value is an empty cart.
type Cart struct {
	items []Item
}

// Len returns the number of distinct lines.
func (c Cart) Len() int {
	return len(c.items)
}

// Items returns a copy of the lines in insertion order.
func (c Cart) Items() []Item {
	out := make([]Item, len(c.items))
	for i, it := range c.items {
		out[i] = it.clone()
	}
	return out
}

// Find returns the line for id.
func (c Cart) Find(id int64) (Item, bool) {
	i := c.index(id)
	if i < 0 {
		return Item{}, false
	}
	return c.items[i].clone(), true
}

func (c Cart) index(id int64) int {
	return slices.IndexFunc(c.items, func(it Item) bool { return it.ID == id })
}

// Add puts quantity units of p into the cart. A product already present keeps
// the name, price and image it was first added with and only gains quantity.
// A non-positive quantity counts as 1 and a line never exceeds MaxQuantity.
// A product with a negative price is not added.
func (c Cart) Add(p Product, quantity int) Cart {
	if p.Price.IsNegative() {
		return c
	}
	quantity = capQuantity(max(quantity, 1))
	items := slices.Clone(c.items)
	if i := c.index(p.ID); i >= 0 {
		// both terms are capped, so the sum cannot overflow
		items[i].Quantity = capQuantity(items[i].Quantity + quantity)
		return Cart{items: items}
	}
	return Cart{items: append(items, newItem(p, quantity))}
}

func capQuantity(quantity int) int {
	return min(quantity, MaxQuantity)
}

// Remove drops the line for id. Removing an absent id is a no-op.
func (c Cart) Remove(id int64) Cart {
	i := c.index(id)
	if i < 0 {
		return c
	}
	return Cart{items: slices.Delete(slices.Clone(c.items), i, i+1)}
}

// UpdateQuantity sets the quantity of the line for id, capped at MaxQuantity.
// A quantity of zero or less removes the line; an absent id is a no-op.
func (c Cart) UpdateQuantity(id int64, quantity int) Cart {
	if quantity <= 0 {
		return c.Remove(id)
	}
	i := c.index(id)
	if i < 0 {
		return c
	}
	items := slices.Clone(c.items)
	items[i].Quantity = capQuantity(quantity)
	return Cart{items: items}
}

// Clear returns an empty cart.
func (c Cart) Clear() Cart {
	return Cart{}
}

// Subtotal is the sum of price * quantity over all lines.
func (c Cart) Subtotal() decimal.Decimal {
	sum := decimal.Zero
	for _, it := range c.items {
		sum = sum.Add(it.LineTotal())
	}
	return sum
}

// Tax is Subtotal * rate.
func (c Cart) Tax(rate decimal.Decimal) decimal.Decimal {
	return c.Subtotal().Mul(rate)
}

// Total is Subtotal + Tax.
func (c Cart) Total(rate decimal.Decimal) decimal.Decimal {
	subtotal := c.Subtotal()
	return subtotal.Add(subtotal.Mul(rate))
}

// ItemCount is the sum of quantities.
func (c Cart) ItemCount() int {
	n := 0
	for _, it := range c.items {
		n += it.Quantity
	}
	return n
}

// MarshalJSON encodes the cart as a JSON array of items. An empty cart
// encodes as [].
func (c Cart) MarshalJSON() ([]byte, error) {
	items := c.items
	if items == nil {
		items = []Item{}
	}
	return json.Marshal(items)
}

// UnmarshalJSON decodes a JSON array of items. Duplicate ids and invalid
// items reject the whole record.
func (c *Cart) UnmarshalJSON(data []byte) error {
	var items []Item
	if err := json.Unmarshal(data, &items); err != nil {
		return errors.Wrap(err, "decode cart")
	}
	seen := make(map[int64]struct{}, len(items))
	for _, it := range items {
		if _, dup := seen[it.ID]; dup {
			return errors.Errorf("decode cart: duplicate item id %d", it.ID)
		}
		seen[it.ID] = struct{}{}
	}
	if len(items) == 0 {
		items = nil
	}
	c.items = items
	return nil
}
