package store

import (
	"context"

	"shop-service/internal/models"
)

// GetCartByUserID retrieves the cart of a user with its line items.
// forUpdate locks the cart row for the rest of the transaction.
func (q *Queries) GetCartByUserID(ctx context.Context, userID int64, forUpdate bool) (*models.Cart, error) {
	query := "SELECT * FROM carts WHERE user_id = $1"
	if forUpdate {
		query += " FOR UPDATE"
	}

	var cart models.Cart
	if err := q.get(ctx, &cart, query, userID); err != nil {
		return nil, err
	}

	items := []models.CartItem{}
	err := q.selectAll(ctx, &items, `
		SELECT ci.cart_id, ci.product_id, p.product_name, p.product_price, ci.quantity
		FROM cart_items ci
		JOIN products p ON p.id = ci.product_id
		WHERE ci.cart_id = $1
		ORDER BY ci.created_at, ci.product_id`, cart.ID)
	if err != nil {
		return nil, err
	}
	cart.Items = items

	return &cart, nil
}

// CreateCart inserts an empty cart row carrying the given totals
func (q *Queries) CreateCart(ctx context.Context, cart *models.Cart) error {
	query := `
		INSERT INTO carts (user_id, total_quantity, total_price)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at`

	return q.get(ctx, cart, query, cart.UserID, cart.TotalQuantity, cart.TotalPrice)
}

// UpdateCartTotals persists the cached totals of a cart
func (q *Queries) UpdateCartTotals(ctx context.Context, cart *models.Cart) error {
	return q.exec(ctx,
		"UPDATE carts SET total_quantity = $1, total_price = $2, updated_at = NOW() WHERE id = $3",
		cart.TotalQuantity, cart.TotalPrice, cart.ID)
}

// DeleteCart deletes a cart row
func (q *Queries) DeleteCart(ctx context.Context, cartID int64) error {
	return q.exec(ctx, "DELETE FROM carts WHERE id = $1", cartID)
}

// InsertCartItem adds a line item
func (q *Queries) InsertCartItem(ctx context.Context, item *models.CartItem) error {
	return q.exec(ctx,
		"INSERT INTO cart_items (cart_id, product_id, quantity) VALUES ($1, $2, $3)",
		item.CartID, item.ProductID, item.Quantity)
}

// UpdateCartItemQuantity sets the quantity of a line item
func (q *Queries) UpdateCartItemQuantity(ctx context.Context, cartID, productID, quantity int64) error {
	return q.exec(ctx,
		"UPDATE cart_items SET quantity = $1, updated_at = NOW() WHERE cart_id = $2 AND product_id = $3",
		quantity, cartID, productID)
}

// DeleteCartItem removes a line item
func (q *Queries) DeleteCartItem(ctx context.Context, cartID, productID int64) error {
	return q.exec(ctx,
		"DELETE FROM cart_items WHERE cart_id = $1 AND product_id = $2", cartID, productID)
}

// DeleteCartItems removes every line item of a cart
func (q *Queries) DeleteCartItems(ctx context.Context, cartID int64) error {
	_, err := q.q.ExecContext(ctx, "DELETE FROM cart_items WHERE cart_id = $1", cartID)
	return classify(err)
}
