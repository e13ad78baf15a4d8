package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Role names
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// Role is a named permission group assigned to users
type Role struct {
	ID   int64  `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}

// User represents a customer or administrator account
type User struct {
	ID           int64     `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Email        string    `db:"email" json:"email"`
	Phone        string    `db:"phone" json:"phone"`
	Address      string    `db:"address" json:"address"`
	Gender       bool      `db:"gender" json:"gender"`
	Verify       bool      `db:"verify" json:"verify"`
	PasswordHash string    `db:"password" json:"-"`
	RoleID       int64     `db:"role_id" json:"-"`
	Role         string    `db:"role" json:"role"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// IsAdmin reports whether the user holds the administrator role
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Category groups products in the catalog
type Category struct {
	ID        int64     `db:"id" json:"id"`
	Name      string    `db:"category_name" json:"category_name"`
	Desc      string    `db:"category_desc" json:"category_desc"`
	Status    bool      `db:"category_status" json:"category_status"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Product represents a product in the catalog. Price is in the smallest currency unit.
type Product struct {
	ID         int64     `db:"id" json:"id"`
	Name       string    `db:"product_name" json:"product_name"`
	Price      int64     `db:"product_price" json:"product_price"`
	Status     bool      `db:"product_status" json:"product_status"`
	CategoryID int64     `db:"category_id" json:"category_id"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// ProductDetail holds the descriptive sheet of a product (one per product)
type ProductDetail struct {
	ID        int64           `db:"id" json:"id"`
	ProductID int64           `db:"product_id" json:"product_id"`
	Intro     string          `db:"product_detail_intro" json:"product_detail_intro"`
	Desc      string          `db:"product_detail_desc" json:"product_detail_desc"`
	Weight    decimal.Decimal `db:"product_detail_weight" json:"product_detail_weight"`
	Mfg       Date            `db:"product_detail_mfg" json:"product_detail_mfg"`
	Exp       Date            `db:"product_detail_exp" json:"product_detail_exp"`
	Origin    string          `db:"product_detail_origin" json:"product_detail_origin"`
	Manual    string          `db:"product_detail_manual" json:"product_detail_manual"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt time.Time       `db:"updated_at" json:"updated_at"`
}

// Cart is the single active cart of a user. TotalQuantity and TotalPrice
// are caches of the line items and are rewritten on every mutation.
type Cart struct {
	ID            int64      `db:"id" json:"id"`
	UserID        int64      `db:"user_id" json:"user_id"`
	TotalQuantity int64      `db:"total_quantity" json:"total_quantity"`
	TotalPrice    int64      `db:"total_price" json:"total_price"`
	Items         []CartItem `db:"-" json:"products"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at" json:"updated_at"`
}

// CartItem is a (product, quantity) line of a cart, joined with the current product price
type CartItem struct {
	CartID      int64  `db:"cart_id" json:"-"`
	ProductID   int64  `db:"product_id" json:"product_id"`
	ProductName string `db:"product_name" json:"product_name"`
	UnitPrice   int64  `db:"product_price" json:"product_price"`
	Quantity    int64  `db:"quantity" json:"quantity"`
}

// Order is the frozen snapshot of a cart at checkout
type Order struct {
	ID            int64       `db:"id" json:"id"`
	UserID        int64       `db:"user_id" json:"user_id"`
	Receiver      string      `db:"receiver" json:"receiver"`
	Phone         string      `db:"phone" json:"phone"`
	Address       string      `db:"address" json:"address"`
	PaymentMethod string      `db:"method_payment" json:"method_payment"`
	OrderDate     Date        `db:"order_date" json:"order_date"`
	TotalMoney    int64       `db:"total_money" json:"total_money"`
	TotalQuantity int64       `db:"total_quantity" json:"total_quantity"`
	Status        OrderStatus `db:"order_status" json:"order_status"`
	StatusDesc    string      `db:"order_status_desc" json:"order_status_desc"`
	Items         []OrderItem `db:"-" json:"products"`
	CreatedAt     time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time   `db:"updated_at" json:"updated_at"`
}

// OrderItem is a line of an order. Name and price are copied at checkout.
type OrderItem struct {
	ID          int64  `db:"id" json:"-"`
	OrderID     int64  `db:"order_id" json:"-"`
	ProductID   int64  `db:"product_id" json:"product_id"`
	ProductName string `db:"product_name" json:"product_name"`
	UnitPrice   int64  `db:"unit_price" json:"product_price"`
	Quantity    int64  `db:"quantity" json:"quantity"`
}

// ProcessedEvent for idempotency
type ProcessedEvent struct {
	EventID     string    `db:"event_id"`
	EventType   string    `db:"event_type"`
	ProcessedAt time.Time `db:"processed_at"`
}
