package store

import (
	"context"

	"shop-service/internal/models"
)

// CreateOrder creates a new order
func (q *Queries) CreateOrder(ctx context.Context, order *models.Order) error {
	query := `
		INSERT INTO orders (
			user_id, receiver, phone, address, method_payment, order_date,
			total_money, total_quantity, order_status, order_status_desc)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at, updated_at`

	return q.get(ctx, order, query,
		order.UserID, order.Receiver, order.Phone, order.Address, order.PaymentMethod,
		order.OrderDate, order.TotalMoney, order.TotalQuantity, order.Status, order.StatusDesc)
}

// CreateOrderItem creates a new order item
func (q *Queries) CreateOrderItem(ctx context.Context, item *models.OrderItem) error {
	query := `
		INSERT INTO order_items (order_id, product_id, product_name, unit_price, quantity)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`

	return q.get(ctx, &item.ID, query,
		item.OrderID, item.ProductID, item.ProductName, item.UnitPrice, item.Quantity)
}

// GetOrderByID retrieves an order by ID
func (q *Queries) GetOrderByID(ctx context.Context, id int64, forUpdate bool) (*models.Order, error) {
	query := "SELECT * FROM orders WHERE id = $1"
	if forUpdate {
		query += " FOR UPDATE"
	}

	var order models.Order
	if err := q.get(ctx, &order, query, id); err != nil {
		return nil, err
	}
	return &order, nil
}

// GetOrdersByUserID retrieves orders for a user
func (q *Queries) GetOrdersByUserID(ctx context.Context, userID int64) ([]models.Order, error) {
	orders := []models.Order{}
	err := q.selectAll(ctx, &orders,
		"SELECT * FROM orders WHERE user_id = $1 ORDER BY created_at DESC, id DESC", userID)
	return orders, err
}

// GetOrders retrieves every order
func (q *Queries) GetOrders(ctx context.Context) ([]models.Order, error) {
	orders := []models.Order{}
	err := q.selectAll(ctx, &orders, "SELECT * FROM orders ORDER BY created_at DESC, id DESC")
	return orders, err
}

// GetOrderItemsByOrderID retrieves all items for an order
func (q *Queries) GetOrderItemsByOrderID(ctx context.Context, orderID int64) ([]models.OrderItem, error) {
	items := []models.OrderItem{}
	err := q.selectAll(ctx, &items,
		"SELECT * FROM order_items WHERE order_id = $1 ORDER BY id", orderID)
	return items, err
}

// UpdateOrderStatus overwrites the status code and its description
func (q *Queries) UpdateOrderStatus(ctx context.Context, orderID int64, status models.OrderStatus) error {
	return q.exec(ctx,
		"UPDATE orders SET order_status = $1, order_status_desc = $2, updated_at = NOW() WHERE id = $3",
		status, status.Desc(), orderID)
}

// CountOrdersByUserID counts the orders of a user
func (q *Queries) CountOrdersByUserID(ctx context.Context, userID int64) (int, error) {
	var n int
	err := q.get(ctx, &n, "SELECT COUNT(*) FROM orders WHERE user_id = $1", userID)
	return n, err
}

// IsEventProcessed checks if an event has been processed
func (q *Queries) IsEventProcessed(ctx context.Context, eventID string) (bool, error) {
	var exists bool
	err := q.get(ctx, &exists,
		"SELECT EXISTS(SELECT 1 FROM processed_events WHERE event_id = $1)", eventID)
	return exists, err
}

// MarkEventProcessed marks an event as processed
func (q *Queries) MarkEventProcessed(ctx context.Context, eventID, eventType string) error {
	_, err := q.q.ExecContext(ctx,
		"INSERT INTO processed_events (event_id, event_type) VALUES ($1, $2) ON CONFLICT (event_id) DO NOTHING",
		eventID, eventType)
	return classify(err)
}
