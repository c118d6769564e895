package cart

import (
	"bytes"
	"encoding/json"
	"maps"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// Field names of the durable record.
const (
	fieldID       = "id"
	fieldName     = "name"
	fieldPrice    = "price"
	fieldImage    = "image"
	fieldQuantity = "quantity"
	fieldCategory = "category"
)

// Product is what the catalog hands to AddToCart.
type Product struct {
	ID       int64
	Name     string
	Price    decimal.Decimal
	Image    string
	Category string
	// Extra carries descriptive fields the cart does not interpret.
	Extra map[string]json.RawMessage
}

// Item is one product line in the cart. Price is the unit price captured
// when the product was first added.
type Item struct {
	ID       int64
	Name     string
	Price    decimal.Decimal
	Image    string
	Quantity int
	Extra    map[string]json.RawMessage
}

// LineTotal returns price * quantity.
func (it Item) LineTotal() decimal.Decimal {
	return it.Price.Mul(decimal.NewFromInt(int64(it.Quantity)))
}

// Category returns the pass-through category, if any.
func (it Item) Category() string {
	raw, ok := it.Extra[fieldCategory]
	if !ok {
		return ""
	}
	var category string
	if err := json.Unmarshal(raw, &category); err != nil {
		return ""
	}
	return category
}

func (it Item) clone() Item {
	it.Extra = maps.Clone(it.Extra)
	return it
}

func (it Item) validate() error {
	if it.Price.IsNegative() {
		return errors.Errorf("item %d: negative price %s", it.ID, it.Price)
	}
	if it.Quantity < 1 {
		return errors.Errorf("item %d: quantity %d below 1", it.ID, it.Quantity)
	}
	if it.Quantity > MaxQuantity {
		return errors.Errorf("item %d: quantity %d above %d", it.ID, it.Quantity, MaxQuantity)
	}
	return nil
}

func newItem(p Product, quantity int) Item {
	extra := maps.Clone(p.Extra)
	if p.Category != "" {
		if extra == nil {
			extra = make(map[string]json.RawMessage, 1)
		}
		raw, _ := json.Marshal(p.Category)
		extra[fieldCategory] = raw
	}
	return Item{
		ID:       p.ID,
		Name:     p.Name,
		Price:    p.Price,
		Image:    p.Image,
		Quantity: quantity,
		Extra:    extra,
	}
}

// MarshalJSON writes the item as a flat object. Opaque fields are written
// alongside the known ones; known fields win on a name clash.
func (it Item) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(it.Extra)+5)
	for k, v := range it.Extra {
		out[k] = v
	}
	out[fieldID] = it.ID
	out[fieldName] = it.Name
	out[fieldPrice] = json.Number(it.Price.String())
	out[fieldImage] = it.Image
	out[fieldQuantity] = it.Quantity
	return json.Marshal(out)
}

// UnmarshalJSON reads a flat object. id, name, price and quantity are
// required; image defaults to empty. Everything else lands in Extra.
func (it *Item) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return errors.Wrap(err, "decode item")
	}
	if fields == nil {
		return errors.New("item is null")
	}

	var item Item
	if err := takeField(fields, fieldID, true, &item.ID); err != nil {
		return err
	}
	if err := takeField(fields, fieldName, true, &item.Name); err != nil {
		return err
	}
	if err := takeField(fields, fieldPrice, true, &item.Price); err != nil {
		return err
	}
	if err := takeField(fields, fieldImage, false, &item.Image); err != nil {
		return err
	}
	if err := takeField(fields, fieldQuantity, true, &item.Quantity); err != nil {
		return err
	}
	if len(fields) > 0 {
		item.Extra = fields
	}
	if err := item.validate(); err != nil {
		return err
	}

	*it = item
	return nil
}

func takeField(fields map[string]json.RawMessage, name string, required bool, dst any) error {
	raw, ok := fields[name]
	delete(fields, name)
	if !ok || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		if required {
			return errors.Errorf("item field %q missing", name)
		}
		return nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return errors.Wrapf(err, "item field %q", name)
	}
	return nil
}
