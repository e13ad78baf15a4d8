package service

import (
	"context"
	"errors"

	"shop-service/internal/apperr"
	"shop-service/internal/models"
	"shop-service/internal/store"
	"shop-service/internal/util"

	"go.uber.org/zap"
)

var errNotInCart = apperr.NotFound("Product not found in cart")

// CartService handles the cart of the authenticated user
type CartService struct {
	store  store.DB
	logger *zap.Logger
}

// NewCartService creates a new cart service
func NewCartService(store store.DB) *CartService {
	return &CartService{store: store, logger: util.GetLogger()}
}

// CartItemRequest is one (product, quantity) pair sent by the client
type CartItemRequest struct {
	ProductID int64 `json:"product_id" binding:"required,min=1"`
	Quantity  int64 `json:"quantity" binding:"required,min=1"`
}

// UpdateCartRequest sets exact quantities for several line items
type UpdateCartRequest struct {
	Products []CartItemRequest `json:"products" binding:"required,min=1,dive"`
}

// GetCart returns the cart of the user
func (s *CartService) GetCart(ctx context.Context, userID int64) (*models.Cart, error) {
	ctx, span := util.StartSpan(ctx, "CartService.GetCart")
	defer span.End()

	cart, err := s.store.GetCartByUserID(ctx, userID, false)
	return cart, storeErr(err, "Cart")
}

// AddProduct adds quantity of a product to the user's cart, creating the cart
// on first use. Repeated calls accumulate.
func (s *CartService) AddProduct(ctx context.Context, userID int64, req *CartItemRequest) (*models.Cart, error) {
	ctx, span := util.StartSpan(ctx, "CartService.AddProduct")
	defer span.End()

	var cart *models.Cart
	err := s.store.WithTx(ctx, func(tx store.Repository) error {
		product, err := tx.GetProductByID(ctx, req.ProductID)
		if err != nil {
			return storeErr(err, "Product")
		}

		cart, err = tx.GetCartByUserID(ctx, userID, true)
		if errors.Is(err, store.ErrNotFound) {
			cart = &models.Cart{UserID: userID}
			err = tx.CreateCart(ctx, cart)
		}
		if err != nil {
			return err
		}

		if cart.AddItem(product, req.Quantity) {
			item := cart.Item(product.ID)
			err = tx.UpdateCartItemQuantity(ctx, cart.ID, product.ID, item.Quantity)
		} else {
			err = tx.InsertCartItem(ctx, cart.Item(product.ID))
		}
		if err != nil {
			return err
		}
		return tx.UpdateCartTotals(ctx, cart)
	})
	if err != nil {
		return nil, storeErr(err, "Cart")
	}

	util.CartMutationsTotal.WithLabelValues("add").Inc()
	s.logger.Info("Product added to cart",
		zap.Int64("user_id", userID),
		zap.Int64("cart_id", cart.ID),
		zap.Int64("product_id", req.ProductID),
		zap.Int64("quantity", req.Quantity),
	)
	return cart, nil
}

// UpdateProducts sets the quantity of existing line items. Unchanged entries
// are skipped; the totals are persisted once after the whole batch.
func (s *CartService) UpdateProducts(ctx context.Context, userID int64, req *UpdateCartRequest) (*models.Cart, error) {
	ctx, span := util.StartSpan(ctx, "CartService.UpdateProducts")
	defer span.End()

	var cart *models.Cart
	err := s.store.WithTx(ctx, func(tx store.Repository) error {
		var err error
		if cart, err = tx.GetCartByUserID(ctx, userID, true); err != nil {
			return storeErr(err, "Cart")
		}

		for _, entry := range req.Products {
			if _, err := tx.GetProductByID(ctx, entry.ProductID); err != nil {
				return storeErr(err, "Product")
			}

			changed, err := cart.SetQuantity(entry.ProductID, entry.Quantity)
			if errors.Is(err, models.ErrLineItemNotFound) {
				return errNotInCart
			}
			if err != nil {
				return err
			}
			if !changed {
				continue
			}
			if err := tx.UpdateCartItemQuantity(ctx, cart.ID, entry.ProductID, entry.Quantity); err != nil {
				return err
			}
		}

		cart.Recalculate()
		return tx.UpdateCartTotals(ctx, cart)
	})
	if err != nil {
		return nil, storeErr(err, "Cart")
	}

	util.CartMutationsTotal.WithLabelValues("update").Inc()
	s.logger.Info("Cart quantities updated",
		zap.Int64("user_id", userID),
		zap.Int64("cart_id", cart.ID),
		zap.Int("entries", len(req.Products)),
	)
	return cart, nil
}

// RemoveProduct drops a line item from the user's cart
func (s *CartService) RemoveProduct(ctx context.Context, userID, productID int64) (*models.Cart, error) {
	ctx, span := util.StartSpan(ctx, "CartService.RemoveProduct")
	defer span.End()

	var cart *models.Cart
	err := s.store.WithTx(ctx, func(tx store.Repository) error {
		var err error
		if cart, err = tx.GetCartByUserID(ctx, userID, true); err != nil {
			return storeErr(err, "Cart")
		}

		if err := cart.RemoveItem(productID); err != nil {
			if errors.Is(err, models.ErrLineItemNotFound) {
				return errNotInCart
			}
			return err
		}
		if err := tx.DeleteCartItem(ctx, cart.ID, productID); err != nil {
			return err
		}
		return tx.UpdateCartTotals(ctx, cart)
	})
	if err != nil {
		return nil, storeErr(err, "Cart")
	}

	util.CartMutationsTotal.WithLabelValues("remove").Inc()
	s.logger.Info("Product removed from cart",
		zap.Int64("user_id", userID),
		zap.Int64("cart_id", cart.ID),
		zap.Int64("product_id", productID),
	)
	return cart, nil
}
