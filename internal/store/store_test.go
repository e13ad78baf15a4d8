package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"shop-service/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })
	return NewStoreFromDB(sqlx.NewDb(mockDB, "postgres")), mock
}

func TestGetProductByIDNotFound(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(`SELECT \* FROM products WHERE id = \$1`).
		WithArgs(int64(9)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := store.GetProductByID(context.Background(), 9)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetCartByUserIDLoadsItems(t *testing.T) {
	store, mock := newMockStore(t)
	now := time.Now()

	mock.ExpectQuery(`SELECT \* FROM carts WHERE user_id = \$1 FOR UPDATE`).
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows(
			[]string{"id", "user_id", "total_quantity", "total_price", "created_at", "updated_at"}).
			AddRow(int64(10), int64(3), int64(3), int64(250), now, now))
	mock.ExpectQuery(`FROM cart_items ci\s+JOIN products p`).
		WithArgs(int64(10)).
		WillReturnRows(sqlmock.NewRows(
			[]string{"cart_id", "product_id", "product_name", "product_price", "quantity"}).
			AddRow(int64(10), int64(1), "A", int64(100), int64(2)).
			AddRow(int64(10), int64(2), "B", int64(50), int64(1)))

	cart, err := store.GetCartByUserID(context.Background(), 3, true)
	require.NoError(t, err)
	assert.Equal(t, int64(10), cart.ID)
	assert.Equal(t, int64(250), cart.TotalPrice)
	require.Len(t, cart.Items, 2)
	assert.Equal(t, "A", cart.Items[0].ProductName)
	assert.Equal(t, int64(100), cart.Items[0].UnitPrice)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteCategoryForeignKeyViolation(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec(`DELETE FROM categories WHERE id = \$1`).
		WithArgs(int64(4)).
		WillReturnError(&pq.Error{Code: "23503", Constraint: "products_category_id_fkey"})

	err := store.DeleteCategory(context.Background(), 4)
	assert.ErrorIs(t, err, ErrForeignKeyViolation)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateCategoryUniqueViolation(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(`INSERT INTO categories`).
		WillReturnError(&pq.Error{Code: "23505"})

	err := store.CreateCategory(context.Background(), &models.Category{Name: "Books"})
	assert.ErrorIs(t, err, ErrUniqueViolation)
}

func TestDeleteProductMissingRow(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec(`DELETE FROM products WHERE id = \$1`).
		WithArgs(int64(8)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := store.DeleteProduct(context.Background(), 8)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateOrderStatusWritesDescription(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec(`UPDATE orders SET order_status = \$1, order_status_desc = \$2`).
		WithArgs(int64(1), "Processing", int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, store.UpdateOrderStatus(context.Background(), 5, models.OrderStatusProcessing))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithTxCommits(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM cart_items WHERE cart_id = \$1`).
		WithArgs(int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(`DELETE FROM carts WHERE id = \$1`).
		WithArgs(int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := store.WithTx(context.Background(), func(repo Repository) error {
		if err := repo.DeleteCartItems(context.Background(), 1); err != nil {
			return err
		}
		return repo.DeleteCart(context.Background(), 1)
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithTxRollsBackOnError(t *testing.T) {
	store, mock := newMockStore(t)
	boom := errors.New("boom")

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM cart_items WHERE cart_id = \$1`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectRollback()

	err := store.WithTx(context.Background(), func(repo Repository) error {
		if err := repo.DeleteCartItems(context.Background(), 1); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListParamsOffset(t *testing.T) {
	assert.Equal(t, 0, ListParams{Page: 1, Limit: 5}.Offset())
	assert.Equal(t, 10, ListParams{Page: 3, Limit: 5}.Offset())
	assert.Equal(t, 0, ListParams{Page: 0, Limit: 5}.Offset())
}
