package model

import (
	"strconv"

	"github.com/shopspring/decimal"
)

// CartEntry is one pending line in a student's cart. Price is a snapshot
// taken when the item was added; checkout recomputes from the live price.
type CartEntry struct {
	ItemID   int64           `json:"item_id"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
}

// Cart maps item id (as a string key, the session serialization format) to
// its entry. Carts live in the session, not the database: they do not
// survive logout and are never visible to the teacher.
type Cart map[string]CartEntry

func (c Cart) Key(itemID int64) string {
	return strconv.FormatInt(itemID, 10)
}

// Add inserts the item with a price snapshot, or bumps quantity if already
// present (the original snapshot is kept).
func (c Cart) Add(itemID int64, quantity int, price decimal.Decimal) {
	k := c.Key(itemID)
	if e, ok := c[k]; ok {
		e.Quantity += quantity
		c[k] = e
		return
	}
	c[k] = CartEntry{ItemID: itemID, Quantity: quantity, Price: price}
}

// SetQuantity updates a line, removing it when quantity drops to zero or
// below. Reports whether the item was in the cart.
func (c Cart) SetQuantity(itemID int64, quantity int) bool {
	k := c.Key(itemID)
	if _, ok := c[k]; !ok {
		return false
	}
	if quantity <= 0 {
		delete(c, k)
		return true
	}
	e := c[k]
	e.Quantity = quantity
	c[k] = e
	return true
}

// Remove deletes a line. Reports whether the item was in the cart.
func (c Cart) Remove(itemID int64) bool {
	k := c.Key(itemID)
	if _, ok := c[k]; !ok {
		return false
	}
	delete(c, k)
	return true
}
