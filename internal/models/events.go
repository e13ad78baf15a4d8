package models

import (
	"time"

	"github.com/google/uuid"
)

// Event types
const (
	EventTypeUserRegistered     = "USER_REGISTERED"
	EventTypeOrderCreated       = "ORDER_CREATED"
	EventTypeOrderStatusChanged = "ORDER_STATUS_CHANGED"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// NewBaseEvent stamps a fresh event id and time
func NewBaseEvent(eventType string) BaseEvent {
	return BaseEvent{
		EventID:   uuid.New().String(),
		EventType: eventType,
		Timestamp: time.Now().UTC(),
	}
}

// UserRegisteredEvent published when an account is created and needs activation
type UserRegisteredEvent struct {
	BaseEvent
	UserID          int64  `json:"user_id"`
	Name            string `json:"name"`
	Email           string `json:"email"`
	ActivationToken string `json:"activation_token"`
}

// OrderCreatedEvent published when a cart is checked out
type OrderCreatedEvent struct {
	BaseEvent
	OrderID       int64           `json:"order_id"`
	UserID        int64           `json:"user_id"`
	Name          string          `json:"name"`
	Email         string          `json:"email"`
	TotalMoney    int64           `json:"total_money"`
	TotalQuantity int64           `json:"total_quantity"`
	Items         []OrderItemData `json:"items"`
}

// OrderStatusChangedEvent published when an administrator moves an order
type OrderStatusChangedEvent struct {
	BaseEvent
	OrderID    int64       `json:"order_id"`
	UserID     int64       `json:"user_id"`
	Name       string      `json:"name"`
	Email      string      `json:"email"`
	FromStatus OrderStatus `json:"from_status"`
	ToStatus   OrderStatus `json:"to_status"`
	StatusDesc string      `json:"status_desc"`
}

// OrderItemData represents item data in events
type OrderItemData struct {
	ProductID   int64  `json:"product_id"`
	ProductName string `json:"product_name"`
	Quantity    int64  `json:"quantity"`
	UnitPrice   int64  `json:"unit_price"`
}
