// Package memory is an in-process store.DB used by service and handler tests.
// Transactions run on a copy of the data that replaces the live copy only on
// success, so a failed checkout leaves no trace.
package memory

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"

	"shop-service/internal/models"
	"shop-service/internal/store"
)

var roleIDs = map[string]int64{models.RoleAdmin: 1, models.RoleUser: 2}

type state struct {
	seq        map[string]int64
	users      map[int64]models.User
	categories map[int64]models.Category
	products   map[int64]models.Product
	details    map[int64]models.ProductDetail // keyed by product id
	carts      map[int64]models.Cart
	cartItems  map[int64][]models.CartItem // keyed by cart id
	orders     map[int64]models.Order
	orderItems map[int64][]models.OrderItem // keyed by order id
	processed  map[string]string
}

func newState() *state {
	return &state{
		seq:        map[string]int64{},
		users:      map[int64]models.User{},
		categories: map[int64]models.Category{},
		products:   map[int64]models.Product{},
		details:    map[int64]models.ProductDetail{},
		carts:      map[int64]models.Cart{},
		cartItems:  map[int64][]models.CartItem{},
		orders:     map[int64]models.Order{},
		orderItems: map[int64][]models.OrderItem{},
		processed:  map[string]string{},
	}
}

func (st *state) clone() *state {
	c := &state{
		seq:        maps.Clone(st.seq),
		users:      maps.Clone(st.users),
		categories: maps.Clone(st.categories),
		products:   maps.Clone(st.products),
		details:    maps.Clone(st.details),
		carts:      maps.Clone(st.carts),
		cartItems:  make(map[int64][]models.CartItem, len(st.cartItems)),
		orders:     maps.Clone(st.orders),
		orderItems: make(map[int64][]models.OrderItem, len(st.orderItems)),
		processed:  maps.Clone(st.processed),
	}
	for k, v := range st.cartItems {
		c.cartItems[k] = slices.Clone(v)
	}
	for k, v := range st.orderItems {
		c.orderItems[k] = slices.Clone(v)
	}
	return c
}

func (st *state) next(table string) int64 {
	st.seq[table]++
	return st.seq[table]
}

// Store implements store.DB in memory
type Store struct {
	mu       sync.Mutex
	st       *state
	failures map[string]error
}

// New returns an empty store
func New() *Store {
	return &Store{st: newState(), failures: map[string]error{}}
}

// FailOn makes every later call of the named Repository method return err
func (s *Store) FailOn(method string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[method] = err
}

// WithTx serializes transactions and commits the copy fn worked on when fn succeeds
func (s *Store) WithTx(ctx context.Context, fn func(store.Repository) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &Store{st: s.st.clone(), failures: s.failures}
	if err := fn(tx); err != nil {
		return err
	}
	s.st = tx.st
	return nil
}

func (s *Store) fail(method string) error {
	return s.failures[method]
}

func matches(name, search string) bool {
	return strings.Contains(strings.ToLower(name), strings.ToLower(search))
}

func sortedIDs[V any](m map[int64]V) []int64 {
	ids := make([]int64, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

func page[T any](rows []T, params store.ListParams) []T {
	start := params.Offset()
	if start >= len(rows) {
		return []T{}
	}
	end := start + params.Limit
	if params.Limit <= 0 || end > len(rows) {
		end = len(rows)
	}
	return rows[start:end]
}

func fkViolation(what string) error {
	return fmt.Errorf("%w: %s", store.ErrForeignKeyViolation, what)
}

func uniqueViolation(what string) error {
	return fmt.Errorf("%w: %s", store.ErrUniqueViolation, what)
}

// Categories

func (s *Store) ListCategories(ctx context.Context, params store.ListParams) ([]models.Category, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("ListCategories"); err != nil {
		return nil, 0, err
	}

	var rows []models.Category
	for _, id := range sortedIDs(s.st.categories) {
		if c := s.st.categories[id]; matches(c.Name, params.Search) {
			rows = append(rows, c)
		}
	}
	return page(rows, params), len(rows), nil
}

func (s *Store) GetCategoryByID(ctx context.Context, id int64) (*models.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("GetCategoryByID"); err != nil {
		return nil, err
	}

	c, ok := s.st.categories[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &c, nil
}

func (s *Store) categoryNameTaken(name string, except int64) bool {
	for id, c := range s.st.categories {
		if id != except && c.Name == name {
			return true
		}
	}
	return false
}

func (s *Store) CreateCategory(ctx context.Context, category *models.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("CreateCategory"); err != nil {
		return err
	}
	if s.categoryNameTaken(category.Name, 0) {
		return uniqueViolation("categories_category_name_key")
	}

	now := time.Now()
	category.ID = s.st.next("categories")
	category.CreatedAt, category.UpdatedAt = now, now
	s.st.categories[category.ID] = *category
	return nil
}

func (s *Store) UpdateCategory(ctx context.Context, category *models.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("UpdateCategory"); err != nil {
		return err
	}

	existing, ok := s.st.categories[category.ID]
	if !ok {
		return store.ErrNotFound
	}
	if s.categoryNameTaken(category.Name, category.ID) {
		return uniqueViolation("categories_category_name_key")
	}
	category.CreatedAt = existing.CreatedAt
	category.UpdatedAt = time.Now()
	s.st.categories[category.ID] = *category
	return nil
}

func (s *Store) DeleteCategory(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("DeleteCategory"); err != nil {
		return err
	}

	if _, ok := s.st.categories[id]; !ok {
		return store.ErrNotFound
	}
	for _, p := range s.st.products {
		if p.CategoryID == id {
			return fkViolation("products_category_id_fkey")
		}
	}
	delete(s.st.categories, id)
	return nil
}

func (s *Store) CountProductsByCategory(ctx context.Context, categoryID int64) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("CountProductsByCategory"); err != nil {
		return 0, err
	}

	n := 0
	for _, p := range s.st.products {
		if p.CategoryID == categoryID {
			n++
		}
	}
	return n, nil
}

func (s *Store) GetProductsByCategory(ctx context.Context, categoryID int64) ([]models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("GetProductsByCategory"); err != nil {
		return nil, err
	}

	rows := []models.Product{}
	for _, id := range sortedIDs(s.st.products) {
		if p := s.st.products[id]; p.CategoryID == categoryID {
			rows = append(rows, p)
		}
	}
	return rows, nil
}

// Products

func (s *Store) ListProducts(ctx context.Context, params store.ListParams) ([]models.Product, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("ListProducts"); err != nil {
		return nil, 0, err
	}

	var rows []models.Product
	for _, id := range sortedIDs(s.st.products) {
		if p := s.st.products[id]; matches(p.Name, params.Search) {
			rows = append(rows, p)
		}
	}
	return page(rows, params), len(rows), nil
}

func (s *Store) GetProductByID(ctx context.Context, id int64) (*models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("GetProductByID"); err != nil {
		return nil, err
	}

	p, ok := s.st.products[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &p, nil
}

func (s *Store) checkProduct(product *models.Product) error {
	for id, p := range s.st.products {
		if id != product.ID && p.Name == product.Name {
			return uniqueViolation("products_product_name_key")
		}
	}
	if _, ok := s.st.categories[product.CategoryID]; !ok {
		return fkViolation("products_category_id_fkey")
	}
	return nil
}

func (s *Store) CreateProduct(ctx context.Context, product *models.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("CreateProduct"); err != nil {
		return err
	}
	product.ID = 0
	if err := s.checkProduct(product); err != nil {
		return err
	}

	now := time.Now()
	product.ID = s.st.next("products")
	product.CreatedAt, product.UpdatedAt = now, now
	s.st.products[product.ID] = *product
	return nil
}

func (s *Store) UpdateProduct(ctx context.Context, product *models.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("UpdateProduct"); err != nil {
		return err
	}

	existing, ok := s.st.products[product.ID]
	if !ok {
		return store.ErrNotFound
	}
	if err := s.checkProduct(product); err != nil {
		return err
	}
	product.CreatedAt = existing.CreatedAt
	product.UpdatedAt = time.Now()
	s.st.products[product.ID] = *product
	return nil
}

func (s *Store) DeleteProduct(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("DeleteProduct"); err != nil {
		return err
	}

	if _, ok := s.st.products[id]; !ok {
		return store.ErrNotFound
	}
	if _, ok := s.st.details[id]; ok {
		return fkViolation("product_details_product_id_fkey")
	}
	for _, items := range s.st.cartItems {
		for _, item := range items {
			if item.ProductID == id {
				return fkViolation("cart_items_product_id_fkey")
			}
		}
	}
	for _, items := range s.st.orderItems {
		for _, item := range items {
			if item.ProductID == id {
				return fkViolation("order_items_product_id_fkey")
			}
		}
	}
	delete(s.st.products, id)
	return nil
}

// Product details

func (s *Store) GetProductDetail(ctx context.Context, productID int64) (*models.ProductDetail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("GetProductDetail"); err != nil {
		return nil, err
	}

	d, ok := s.st.details[productID]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &d, nil
}

func (s *Store) CreateProductDetail(ctx context.Context, detail *models.ProductDetail) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("CreateProductDetail"); err != nil {
		return err
	}

	if _, ok := s.st.products[detail.ProductID]; !ok {
		return fkViolation("product_details_product_id_fkey")
	}
	if _, ok := s.st.details[detail.ProductID]; ok {
		return uniqueViolation("product_details_product_id_key")
	}
	now := time.Now()
	detail.ID = s.st.next("product_details")
	detail.CreatedAt, detail.UpdatedAt = now, now
	s.st.details[detail.ProductID] = *detail
	return nil
}

func (s *Store) UpdateProductDetail(ctx context.Context, detail *models.ProductDetail) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("UpdateProductDetail"); err != nil {
		return err
	}

	existing, ok := s.st.details[detail.ProductID]
	if !ok {
		return store.ErrNotFound
	}
	detail.ID = existing.ID
	detail.CreatedAt = existing.CreatedAt
	detail.UpdatedAt = time.Now()
	s.st.details[detail.ProductID] = *detail
	return nil
}

func (s *Store) DeleteProductDetail(ctx context.Context, productID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("DeleteProductDetail"); err != nil {
		return err
	}

	if _, ok := s.st.details[productID]; !ok {
		return store.ErrNotFound
	}
	delete(s.st.details, productID)
	return nil
}

// Carts

func (s *Store) GetCartByUserID(ctx context.Context, userID int64, forUpdate bool) (*models.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("GetCartByUserID"); err != nil {
		return nil, err
	}

	for _, cart := range s.st.carts {
		if cart.UserID != userID {
			continue
		}
		cart.Items = []models.CartItem{}
		for _, item := range s.st.cartItems[cart.ID] {
			p := s.st.products[item.ProductID]
			item.ProductName = p.Name
			item.UnitPrice = p.Price
			cart.Items = append(cart.Items, item)
		}
		return &cart, nil
	}
	return nil, store.ErrNotFound
}

func (s *Store) CreateCart(ctx context.Context, cart *models.Cart) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("CreateCart"); err != nil {
		return err
	}

	if _, ok := s.st.users[cart.UserID]; !ok {
		return fkViolation("carts_user_id_fkey")
	}
	for _, c := range s.st.carts {
		if c.UserID == cart.UserID {
			return uniqueViolation("carts_user_id_key")
		}
	}
	now := time.Now()
	cart.ID = s.st.next("carts")
	cart.CreatedAt, cart.UpdatedAt = now, now
	row := *cart
	row.Items = nil
	s.st.carts[cart.ID] = row
	return nil
}

func (s *Store) UpdateCartTotals(ctx context.Context, cart *models.Cart) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("UpdateCartTotals"); err != nil {
		return err
	}

	row, ok := s.st.carts[cart.ID]
	if !ok {
		return store.ErrNotFound
	}
	row.TotalQuantity = cart.TotalQuantity
	row.TotalPrice = cart.TotalPrice
	row.UpdatedAt = time.Now()
	s.st.carts[cart.ID] = row
	return nil
}

func (s *Store) DeleteCart(ctx context.Context, cartID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("DeleteCart"); err != nil {
		return err
	}

	if _, ok := s.st.carts[cartID]; !ok {
		return store.ErrNotFound
	}
	delete(s.st.carts, cartID)
	delete(s.st.cartItems, cartID)
	return nil
}

func (s *Store) InsertCartItem(ctx context.Context, item *models.CartItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("InsertCartItem"); err != nil {
		return err
	}

	if _, ok := s.st.carts[item.CartID]; !ok {
		return fkViolation("cart_items_cart_id_fkey")
	}
	if _, ok := s.st.products[item.ProductID]; !ok {
		return fkViolation("cart_items_product_id_fkey")
	}
	for _, existing := range s.st.cartItems[item.CartID] {
		if existing.ProductID == item.ProductID {
			return uniqueViolation("cart_items_pkey")
		}
	}
	row := models.CartItem{CartID: item.CartID, ProductID: item.ProductID, Quantity: item.Quantity}
	s.st.cartItems[item.CartID] = append(s.st.cartItems[item.CartID], row)
	return nil
}

func (s *Store) UpdateCartItemQuantity(ctx context.Context, cartID, productID, quantity int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("UpdateCartItemQuantity"); err != nil {
		return err
	}

	items := s.st.cartItems[cartID]
	for i := range items {
		if items[i].ProductID == productID {
			items[i].Quantity = quantity
			return nil
		}
	}
	return store.ErrNotFound
}

func (s *Store) DeleteCartItem(ctx context.Context, cartID, productID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("DeleteCartItem"); err != nil {
		return err
	}

	items := s.st.cartItems[cartID]
	for i := range items {
		if items[i].ProductID == productID {
			s.st.cartItems[cartID] = slices.Delete(items, i, i+1)
			return nil
		}
	}
	return store.ErrNotFound
}

func (s *Store) DeleteCartItems(ctx context.Context, cartID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("DeleteCartItems"); err != nil {
		return err
	}

	delete(s.st.cartItems, cartID)
	return nil
}

// Orders

func (s *Store) CreateOrder(ctx context.Context, order *models.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("CreateOrder"); err != nil {
		return err
	}

	if _, ok := s.st.users[order.UserID]; !ok {
		return fkViolation("orders_user_id_fkey")
	}
	now := time.Now()
	order.ID = s.st.next("orders")
	order.CreatedAt, order.UpdatedAt = now, now
	row := *order
	row.Items = nil
	s.st.orders[order.ID] = row
	return nil
}

func (s *Store) CreateOrderItem(ctx context.Context, item *models.OrderItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("CreateOrderItem"); err != nil {
		return err
	}

	if _, ok := s.st.orders[item.OrderID]; !ok {
		return fkViolation("order_items_order_id_fkey")
	}
	if _, ok := s.st.products[item.ProductID]; !ok {
		return fkViolation("order_items_product_id_fkey")
	}
	item.ID = s.st.next("order_items")
	s.st.orderItems[item.OrderID] = append(s.st.orderItems[item.OrderID], *item)
	return nil
}

func (s *Store) GetOrderByID(ctx context.Context, id int64, forUpdate bool) (*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("GetOrderByID"); err != nil {
		return nil, err
	}

	o, ok := s.st.orders[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &o, nil
}

func (s *Store) ordersWhere(keep func(models.Order) bool) []models.Order {
	ids := sortedIDs(s.st.orders)
	slices.Reverse(ids)

	rows := []models.Order{}
	for _, id := range ids {
		if o := s.st.orders[id]; keep(o) {
			rows = append(rows, o)
		}
	}
	return rows
}

func (s *Store) GetOrdersByUserID(ctx context.Context, userID int64) ([]models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("GetOrdersByUserID"); err != nil {
		return nil, err
	}
	return s.ordersWhere(func(o models.Order) bool { return o.UserID == userID }), nil
}

func (s *Store) GetOrders(ctx context.Context) ([]models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("GetOrders"); err != nil {
		return nil, err
	}
	return s.ordersWhere(func(models.Order) bool { return true }), nil
}

func (s *Store) GetOrderItemsByOrderID(ctx context.Context, orderID int64) ([]models.OrderItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("GetOrderItemsByOrderID"); err != nil {
		return nil, err
	}

	items := slices.Clone(s.st.orderItems[orderID])
	if items == nil {
		items = []models.OrderItem{}
	}
	return items, nil
}

func (s *Store) UpdateOrderStatus(ctx context.Context, orderID int64, status models.OrderStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("UpdateOrderStatus"); err != nil {
		return err
	}

	o, ok := s.st.orders[orderID]
	if !ok {
		return store.ErrNotFound
	}
	o.Status = status
	o.StatusDesc = status.Desc()
	o.UpdatedAt = time.Now()
	s.st.orders[orderID] = o
	return nil
}

func (s *Store) CountOrdersByUserID(ctx context.Context, userID int64) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("CountOrdersByUserID"); err != nil {
		return 0, err
	}

	n := 0
	for _, o := range s.st.orders {
		if o.UserID == userID {
			n++
		}
	}
	return n, nil
}

// Users

func (s *Store) ListUsers(ctx context.Context, params store.ListParams) ([]models.User, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("ListUsers"); err != nil {
		return nil, 0, err
	}

	var rows []models.User
	for _, id := range sortedIDs(s.st.users) {
		if u := s.st.users[id]; matches(u.Name, params.Search) {
			rows = append(rows, u)
		}
	}
	return page(rows, params), len(rows), nil
}

func (s *Store) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("GetUserByID"); err != nil {
		return nil, err
	}

	u, ok := s.st.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &u, nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("GetUserByEmail"); err != nil {
		return nil, err
	}

	for _, u := range s.st.users {
		if strings.EqualFold(u.Email, email) {
			return &u, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("CreateUser"); err != nil {
		return err
	}

	roleID, ok := roleIDs[user.Role]
	if !ok {
		return fmt.Errorf("null value in column \"role_id\" for role %q", user.Role)
	}
	for _, u := range s.st.users {
		if strings.EqualFold(u.Email, user.Email) {
			return uniqueViolation("users_email_key")
		}
	}
	now := time.Now()
	user.ID = s.st.next("users")
	user.RoleID = roleID
	user.CreatedAt, user.UpdatedAt = now, now
	s.st.users[user.ID] = *user
	return nil
}

func (s *Store) UpdateUser(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("UpdateUser"); err != nil {
		return err
	}

	existing, ok := s.st.users[user.ID]
	if !ok {
		return store.ErrNotFound
	}
	roleID, ok := roleIDs[user.Role]
	if !ok {
		return fmt.Errorf("null value in column \"role_id\" for role %q", user.Role)
	}
	existing.Name = user.Name
	existing.Phone = user.Phone
	existing.Address = user.Address
	existing.Gender = user.Gender
	existing.Verify = user.Verify
	existing.Role = user.Role
	existing.RoleID = roleID
	existing.UpdatedAt = time.Now()
	s.st.users[user.ID] = existing

	user.RoleID = roleID
	user.UpdatedAt = existing.UpdatedAt
	return nil
}

func (s *Store) UpdateUserPassword(ctx context.Context, userID int64, passwordHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("UpdateUserPassword"); err != nil {
		return err
	}

	u, ok := s.st.users[userID]
	if !ok {
		return store.ErrNotFound
	}
	u.PasswordHash = passwordHash
	u.UpdatedAt = time.Now()
	s.st.users[userID] = u
	return nil
}

func (s *Store) SetUserVerified(ctx context.Context, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("SetUserVerified"); err != nil {
		return err
	}

	u, ok := s.st.users[userID]
	if !ok {
		return store.ErrNotFound
	}
	u.Verify = true
	u.UpdatedAt = time.Now()
	s.st.users[userID] = u
	return nil
}

func (s *Store) DeleteUser(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("DeleteUser"); err != nil {
		return err
	}

	if _, ok := s.st.users[id]; !ok {
		return store.ErrNotFound
	}
	for _, o := range s.st.orders {
		if o.UserID == id {
			return fkViolation("orders_user_id_fkey")
		}
	}
	for cartID, c := range s.st.carts {
		if c.UserID == id {
			delete(s.st.carts, cartID)
			delete(s.st.cartItems, cartID)
		}
	}
	delete(s.st.users, id)
	return nil
}

// Events

func (s *Store) IsEventProcessed(ctx context.Context, eventID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("IsEventProcessed"); err != nil {
		return false, err
	}

	_, ok := s.st.processed[eventID]
	return ok, nil
}

func (s *Store) MarkEventProcessed(ctx context.Context, eventID, eventType string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("MarkEventProcessed"); err != nil {
		return err
	}

	if _, ok := s.st.processed[eventID]; !ok {
		s.st.processed[eventID] = eventType
	}
	return nil
}

var _ store.DB = (*Store)(nil)
