package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"shop-service/internal/models"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

var (
	ErrNotFound            = errors.New("record not found")
	ErrForeignKeyViolation = errors.New("foreign key violation")
	ErrUniqueViolation     = errors.New("unique violation")
)

// ListParams carries pagination and the optional name search of list endpoints
type ListParams struct {
	Page   int
	Limit  int
	Search string
}

// Offset returns the row offset of the requested page
func (p ListParams) Offset() int {
	if p.Page < 1 {
		return 0
	}
	return (p.Page - 1) * p.Limit
}

// Repository is the set of queries the services run, inside or outside a transaction
type Repository interface {
	ListCategories(ctx context.Context, params ListParams) ([]models.Category, int, error)
	GetCategoryByID(ctx context.Context, id int64) (*models.Category, error)
	CreateCategory(ctx context.Context, category *models.Category) error
	UpdateCategory(ctx context.Context, category *models.Category) error
	DeleteCategory(ctx context.Context, id int64) error
	CountProductsByCategory(ctx context.Context, categoryID int64) (int, error)
	GetProductsByCategory(ctx context.Context, categoryID int64) ([]models.Product, error)

	ListProducts(ctx context.Context, params ListParams) ([]models.Product, int, error)
	GetProductByID(ctx context.Context, id int64) (*models.Product, error)
	CreateProduct(ctx context.Context, product *models.Product) error
	UpdateProduct(ctx context.Context, product *models.Product) error
	DeleteProduct(ctx context.Context, id int64) error

	GetProductDetail(ctx context.Context, productID int64) (*models.ProductDetail, error)
	CreateProductDetail(ctx context.Context, detail *models.ProductDetail) error
	UpdateProductDetail(ctx context.Context, detail *models.ProductDetail) error
	DeleteProductDetail(ctx context.Context, productID int64) error

	GetCartByUserID(ctx context.Context, userID int64, forUpdate bool) (*models.Cart, error)
	CreateCart(ctx context.Context, cart *models.Cart) error
	UpdateCartTotals(ctx context.Context, cart *models.Cart) error
	DeleteCart(ctx context.Context, cartID int64) error
	InsertCartItem(ctx context.Context, item *models.CartItem) error
	UpdateCartItemQuantity(ctx context.Context, cartID, productID, quantity int64) error
	DeleteCartItem(ctx context.Context, cartID, productID int64) error
	DeleteCartItems(ctx context.Context, cartID int64) error

	CreateOrder(ctx context.Context, order *models.Order) error
	CreateOrderItem(ctx context.Context, item *models.OrderItem) error
	GetOrderByID(ctx context.Context, id int64, forUpdate bool) (*models.Order, error)
	GetOrdersByUserID(ctx context.Context, userID int64) ([]models.Order, error)
	GetOrders(ctx context.Context) ([]models.Order, error)
	GetOrderItemsByOrderID(ctx context.Context, orderID int64) ([]models.OrderItem, error)
	UpdateOrderStatus(ctx context.Context, orderID int64, status models.OrderStatus) error
	CountOrdersByUserID(ctx context.Context, userID int64) (int, error)

	ListUsers(ctx context.Context, params ListParams) ([]models.User, int, error)
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	CreateUser(ctx context.Context, user *models.User) error
	UpdateUser(ctx context.Context, user *models.User) error
	UpdateUserPassword(ctx context.Context, userID int64, passwordHash string) error
	SetUserVerified(ctx context.Context, userID int64) error
	DeleteUser(ctx context.Context, id int64) error

	IsEventProcessed(ctx context.Context, eventID string) (bool, error)
	MarkEventProcessed(ctx context.Context, eventID, eventType string) error
}

// DB is a Repository that can also open transactions
type DB interface {
	Repository
	WithTx(ctx context.Context, fn func(Repository) error) error
}

// Queries implements Repository on top of a database handle or a transaction
type Queries struct {
	q sqlx.ExtContext
}

type Store struct {
	*Queries
	db *sqlx.DB
}

// NewStore creates a new database store
func NewStore(databaseURL string) (*Store, error) {
	db, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return NewStoreFromDB(db), nil
}

// NewStoreFromDB wraps an existing connection
func NewStoreFromDB(db *sqlx.DB) *Store {
	return &Store{Queries: &Queries{q: db}, db: db}
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks the connection
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// WithTx runs fn inside a transaction. Any error from fn rolls everything back.
func (s *Store) WithTx(ctx context.Context, fn func(Repository) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(&Queries{q: tx}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// classify maps postgres constraint errors onto the store sentinels
func classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "23503":
			return fmt.Errorf("%w: %w", ErrForeignKeyViolation, err)
		case "23505":
			return fmt.Errorf("%w: %w", ErrUniqueViolation, err)
		}
	}
	return err
}

func (q *Queries) get(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	return classify(sqlx.GetContext(ctx, q.q, dest, query, args...))
}

func (q *Queries) selectAll(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	return classify(sqlx.SelectContext(ctx, q.q, dest, query, args...))
}

// exec runs a statement and reports ErrNotFound when no row was touched
func (q *Queries) exec(ctx context.Context, query string, args ...interface{}) error {
	res, err := q.q.ExecContext(ctx, query, args...)
	if err != nil {
		return classify(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
