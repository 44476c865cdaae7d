// Package cart holds the per-session shopping cart. A cart is never written
// to the catalog database; it lives in a Store keyed by session id.
package cart

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// LineItem snapshots the product at the time it was first added.
type LineItem struct {
	ProductID uint            `json:"product_id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Image     string          `json:"image"`
	Quantity  int             `json:"quantity"`
}

// Cart is an ordered list of line items, at most one per product.
type Cart struct {
	Items []LineItem `json:"items"`
}

func (c Cart) clone() Cart {
	items := make([]LineItem, len(c.Items))
	copy(items, c.Items)
	return Cart{Items: items}
}

func (c Cart) index(productID uint) int {
	for i, it := range c.Items {
		if it.ProductID == productID {
			return i
		}
	}
	return -1
}

// add merges item into the cart: an existing line gains item.Quantity,
// otherwise item is appended.
func (c *Cart) add(item LineItem) {
	if i := c.index(item.ProductID); i >= 0 {
		c.Items[i].Quantity += item.Quantity
		return
	}
	c.Items = append(c.Items, item)
}

// set replaces a line's quantity; qty <= 0 removes the line. Reports whether
// the product was in the cart.
func (c *Cart) set(productID uint, qty int) bool {
	i := c.index(productID)
	if i < 0 {
		return false
	}
	if qty <= 0 {
		c.Items = append(c.Items[:i], c.Items[i+1:]...)
		return true
	}
	c.Items[i].Quantity = qty
	return true
}

// Count is the total number of units across all lines.
func (c Cart) Count() int {
	n := 0
	for _, it := range c.Items {
		n += it.Quantity
	}
	return n
}

func (c Cart) Subtotal() decimal.Decimal {
	total := decimal.Zero
	for _, it := range c.Items {
		total = total.Add(it.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return total
}

// Quantity returns how many units of productID are in the cart.
func (c Cart) Quantity(productID uint) int {
	if i := c.index(productID); i >= 0 {
		return c.Items[i].Quantity
	}
	return 0
}

// SummaryLine is one row of the cart page.
type SummaryLine struct {
	ProductID uint        `json:"product_id"`
	Name      string      `json:"name"`
	Price     json.Number `json:"price"`
	Image     string      `json:"image"`
	Quantity  int         `json:"quantity"`
	LineTotal json.Number `json:"line_total"`
}

type Summary struct {
	Items      []SummaryLine `json:"items"`
	TotalItems int           `json:"total_items"`
	Subtotal   json.Number   `json:"subtotal"`
}

// Summarize renders the cart with per-line totals.
func (c Cart) Summarize() Summary {
	s := Summary{
		Items:      make([]SummaryLine, 0, len(c.Items)),
		TotalItems: c.Count(),
		Subtotal:   json.Number(c.Subtotal().StringFixed(2)),
	}
	for _, it := range c.Items {
		s.Items = append(s.Items, SummaryLine{
			ProductID: it.ProductID,
			Name:      it.Name,
			Price:     json.Number(it.Price.StringFixed(2)),
			Image:     it.Image,
			Quantity:  it.Quantity,
			LineTotal: json.Number(it.Price.Mul(decimal.NewFromInt(int64(it.Quantity))).StringFixed(2)),
		})
	}
	return s
}
