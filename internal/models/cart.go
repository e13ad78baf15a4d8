package models

import "errors"

// ErrLineItemNotFound is returned when a product is not part of the cart
var ErrLineItemNotFound = errors.New("line item not found")

// Item returns the line item for productID, or nil
func (c *Cart) Item(productID int64) *CartItem {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			return &c.Items[i]
		}
	}
	return nil
}

// AddItem accumulates quantity of p into the cart. It returns true when
// the product was already present and only its quantity grew.
func (c *Cart) AddItem(p *Product, quantity int64) bool {
	if item := c.Item(p.ID); item != nil {
		item.Quantity += quantity
		item.UnitPrice = p.Price
		item.ProductName = p.Name
		c.Recalculate()
		return true
	}

	c.Items = append(c.Items, CartItem{
		CartID:      c.ID,
		ProductID:   p.ID,
		ProductName: p.Name,
		UnitPrice:   p.Price,
		Quantity:    quantity,
	})
	c.Recalculate()
	return false
}

// SetQuantity replaces the quantity of an existing line item. It reports
// whether the quantity actually changed.
func (c *Cart) SetQuantity(productID, quantity int64) (bool, error) {
	item := c.Item(productID)
	if item == nil {
		return false, ErrLineItemNotFound
	}
	if item.Quantity == quantity {
		return false, nil
	}
	item.Quantity = quantity
	c.Recalculate()
	return true, nil
}

// RemoveItem drops the line item for productID
func (c *Cart) RemoveItem(productID int64) error {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			c.Recalculate()
			return nil
		}
	}
	return ErrLineItemNotFound
}

// Recalculate rewrites the cached totals from the line items
func (c *Cart) Recalculate() {
	var quantity, price int64
	for _, item := range c.Items {
		quantity += item.Quantity
		price += item.Quantity * item.UnitPrice
	}
	c.TotalQuantity = quantity
	c.TotalPrice = price
}

// OrderItems copies the line items into order lines, freezing name and price
func (c *Cart) OrderItems(orderID int64) []OrderItem {
	items := make([]OrderItem, 0, len(c.Items))
	for _, item := range c.Items {
		items = append(items, OrderItem{
			OrderID:     orderID,
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			UnitPrice:   item.UnitPrice,
			Quantity:    item.Quantity,
		})
	}
	return items
}
