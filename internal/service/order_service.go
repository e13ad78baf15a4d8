package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"shop-service/internal/apperr"
	"shop-service/internal/models"
	"shop-service/internal/store"
	"shop-service/internal/util"

	"go.uber.org/zap"
)

// OrderService handles checkout and the order status workflow
type OrderService struct {
	store          store.DB
	publisher      EventPublisher
	idempotency    IdempotencyStore
	idempotencyTTL time.Duration
	now            func() time.Time
	logger         *zap.Logger
}

// NewOrderService creates a new order service. idempotency may be nil, in
// which case Idempotency-Key headers are ignored.
func NewOrderService(
	store store.DB,
	publisher EventPublisher,
	idempotency IdempotencyStore,
	idempotencyTTL time.Duration,
) *OrderService {
	return &OrderService{
		store:          store,
		publisher:      publisher,
		idempotency:    idempotency,
		idempotencyTTL: idempotencyTTL,
		now:            time.Now,
		logger:         util.GetLogger(),
	}
}

// CheckoutRequest carries the delivery and payment fields of a new order
type CheckoutRequest struct {
	Receiver      string `json:"receiver" binding:"required,max=255"`
	Phone         string `json:"phone" binding:"required,phone10"`
	Address       string `json:"address" binding:"required,max=255"`
	PaymentMethod string `json:"method_payment" binding:"required,max=100"`
}

// UpdateOrderStatusRequest carries the requested status code
type UpdateOrderStatusRequest struct {
	Status *int `json:"order_status" binding:"required,min=0,max=3"`
}

// Checkout converts the user's cart into a PENDING order. The order, its line
// items and the removal of the cart commit together or not at all.
// With a non-empty idempotencyKey a retried request returns the order of the
// first one instead of failing on the now missing cart.
func (s *OrderService) Checkout(ctx context.Context, userID int64, req *CheckoutRequest, idempotencyKey string) (*models.Order, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.Checkout")
	defer span.End()

	if idempotencyKey != "" && s.idempotency != nil {
		order, claimed, err := s.claimCheckout(ctx, userID, idempotencyKey)
		if err != nil || order != nil {
			return order, err
		}
		if claimed {
			order, err := s.checkout(ctx, userID, req)
			s.settleCheckout(ctx, userID, idempotencyKey, order, err)
			return order, err
		}
	}

	return s.checkout(ctx, userID, req)
}

// claimCheckout returns the stored order of a completed request, or claims the key
func (s *OrderService) claimCheckout(ctx context.Context, userID int64, key string) (*models.Order, bool, error) {
	claimed, err := s.idempotency.ClaimIdempotencyKey(ctx, userID, key, s.idempotencyTTL)
	if err != nil {
		return nil, false, fmt.Errorf("claim idempotency key: %w", err)
	}
	if claimed {
		return nil, true, nil
	}

	result, pending, err := s.idempotency.GetIdempotencyKey(ctx, userID, key)
	if err != nil {
		return nil, false, fmt.Errorf("read idempotency key: %w", err)
	}
	if pending || result == "" {
		return nil, false, apperr.Conflict("A request with this Idempotency-Key is already in progress")
	}

	orderID, err := strconv.ParseInt(result, 10, 64)
	if err != nil {
		return nil, false, fmt.Errorf("corrupt idempotency result %q: %w", result, err)
	}
	s.logger.Info("Duplicate checkout request detected",
		zap.String("idempotency_key", key),
		zap.Int64("order_id", orderID),
	)
	order, err := s.GetUserOrder(ctx, userID, orderID)
	return order, false, err
}

func (s *OrderService) settleCheckout(ctx context.Context, userID int64, key string, order *models.Order, checkoutErr error) {
	var err error
	if checkoutErr != nil {
		err = s.idempotency.ReleaseIdempotencyKey(ctx, userID, key)
	} else {
		err = s.idempotency.SetIdempotencyKey(ctx, userID, key, strconv.FormatInt(order.ID, 10), s.idempotencyTTL)
	}
	if err != nil {
		s.logger.Error("Failed to settle idempotency key",
			zap.String("idempotency_key", key),
			zap.Error(err),
		)
	}
}

func (s *OrderService) checkout(ctx context.Context, userID int64, req *CheckoutRequest) (*models.Order, error) {
	start := time.Now()
	defer func() {
		util.CheckoutLatency.Observe(time.Since(start).Seconds())
	}()

	var order *models.Order
	err := s.store.WithTx(ctx, func(tx store.Repository) error {
		cart, err := tx.GetCartByUserID(ctx, userID, true)
		if err != nil {
			return storeErr(err, "Cart")
		}
		// an emptied cart still checks out as a zero order
		cart.Recalculate()

		status := models.OrderStatusPending
		order = &models.Order{
			UserID:        userID,
			Receiver:      req.Receiver,
			Phone:         req.Phone,
			Address:       req.Address,
			PaymentMethod: req.PaymentMethod,
			OrderDate:     models.NewDate(s.now()),
			TotalMoney:    cart.TotalPrice,
			TotalQuantity: cart.TotalQuantity,
			Status:        status,
			StatusDesc:    status.Desc(),
		}
		if err := tx.CreateOrder(ctx, order); err != nil {
			return fmt.Errorf("create order: %w", err)
		}

		order.Items = cart.OrderItems(order.ID)
		for i := range order.Items {
			if err := tx.CreateOrderItem(ctx, &order.Items[i]); err != nil {
				return fmt.Errorf("create order item: %w", err)
			}
		}

		if err := tx.DeleteCartItems(ctx, cart.ID); err != nil {
			return fmt.Errorf("clear cart: %w", err)
		}
		if err := tx.DeleteCart(ctx, cart.ID); err != nil {
			return fmt.Errorf("delete cart: %w", err)
		}
		return nil
	})
	if err != nil {
		reason := "db_error"
		if e, ok := apperr.As(err); ok {
			reason = e.Kind.Error()
		}
		util.CheckoutFailedTotal.WithLabelValues(reason).Inc()
		return nil, storeErr(err, "Order")
	}

	util.OrdersCreatedTotal.Inc()
	util.OrderRevenueTotal.Add(float64(order.TotalMoney))
	s.logger.Info("Order created",
		zap.Int64("order_id", order.ID),
		zap.Int64("user_id", userID),
		zap.Int64("total_money", order.TotalMoney),
		zap.Int64("total_quantity", order.TotalQuantity),
	)

	s.publishOrderCreated(ctx, order)
	return order, nil
}

func (s *OrderService) publishOrderCreated(ctx context.Context, order *models.Order) {
	user, err := s.store.GetUserByID(ctx, order.UserID)
	if err != nil {
		s.logger.Error("Failed to load user for OrderCreated event", zap.Int64("order_id", order.ID), zap.Error(err))
		return
	}

	items := make([]models.OrderItemData, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, models.OrderItemData{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
		})
	}

	event := &models.OrderCreatedEvent{
		BaseEvent:     models.NewBaseEvent(models.EventTypeOrderCreated),
		OrderID:       order.ID,
		UserID:        order.UserID,
		Name:          user.Name,
		Email:         user.Email,
		TotalMoney:    order.TotalMoney,
		TotalQuantity: order.TotalQuantity,
		Items:         items,
	}
	if err := s.publisher.PublishOrderCreated(ctx, event); err != nil {
		s.logger.Error("Failed to publish OrderCreated event", zap.Int64("order_id", order.ID), zap.Error(err))
	}
}

// UpdateStatus overwrites the status of an order unless it is already
// COMPLETED or CANCELED.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID int64, req *UpdateOrderStatusRequest) (*models.Order, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.UpdateStatus")
	defer span.End()

	target := models.OrderStatus(*req.Status)
	if !target.Valid() {
		return nil, apperr.BadRequest("Invalid order status")
	}

	var order *models.Order
	var from models.OrderStatus
	err := s.store.WithTx(ctx, func(tx store.Repository) error {
		var err error
		if order, err = tx.GetOrderByID(ctx, orderID, true); err != nil {
			return err
		}

		from = order.Status
		if from.IsTerminal() {
			util.OrderStatusRejectedTotal.WithLabelValues(from.String()).Inc()
			return apperr.BadRequest(fmt.Sprintf("cannot update a %s order", strings.ToLower(from.Desc())))
		}

		if err := tx.UpdateOrderStatus(ctx, orderID, target); err != nil {
			return err
		}
		order.Status = target
		order.StatusDesc = target.Desc()

		order.Items, err = tx.GetOrderItemsByOrderID(ctx, orderID)
		return err
	})
	if err != nil {
		return nil, storeErr(err, "Order")
	}

	util.OrderStatusTransitionsTotal.WithLabelValues(from.String(), target.String()).Inc()
	s.logger.Info("Order status updated",
		zap.Int64("order_id", orderID),
		zap.String("from", from.String()),
		zap.String("to", target.String()),
	)

	s.publishStatusChanged(ctx, order, from)
	return order, nil
}

func (s *OrderService) publishStatusChanged(ctx context.Context, order *models.Order, from models.OrderStatus) {
	user, err := s.store.GetUserByID(ctx, order.UserID)
	if err != nil {
		s.logger.Error("Failed to load user for OrderStatusChanged event", zap.Int64("order_id", order.ID), zap.Error(err))
		return
	}

	event := &models.OrderStatusChangedEvent{
		BaseEvent:  models.NewBaseEvent(models.EventTypeOrderStatusChanged),
		OrderID:    order.ID,
		UserID:     order.UserID,
		Name:       user.Name,
		Email:      user.Email,
		FromStatus: from,
		ToStatus:   order.Status,
		StatusDesc: order.StatusDesc,
	}
	if err := s.publisher.PublishOrderStatusChanged(ctx, event); err != nil {
		s.logger.Error("Failed to publish OrderStatusChanged event", zap.Int64("order_id", order.ID), zap.Error(err))
	}
}

// ListUserOrders returns the orders of a user, newest first
func (s *OrderService) ListUserOrders(ctx context.Context, userID int64) ([]models.Order, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.ListUserOrders")
	defer span.End()

	orders, err := s.store.GetOrdersByUserID(ctx, userID)
	if err != nil {
		return nil, storeErr(err, "Order")
	}
	if len(orders) == 0 {
		return nil, apperr.NotFound("No orders found")
	}
	return orders, s.loadItems(ctx, orders)
}

// GetUserOrder returns one order of the user. Orders of other users are reported as missing.
func (s *OrderService) GetUserOrder(ctx context.Context, userID, orderID int64) (*models.Order, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.GetUserOrder")
	defer span.End()

	order, err := s.store.GetOrderByID(ctx, orderID, false)
	if err != nil {
		return nil, storeErr(err, "Order")
	}
	if order.UserID != userID {
		return nil, apperr.NotFound("Order not found")
	}
	if order.Items, err = s.store.GetOrderItemsByOrderID(ctx, orderID); err != nil {
		return nil, storeErr(err, "Order")
	}
	return order, nil
}

// ListOrders returns every order, newest first. No orders at all is reported as not found.
func (s *OrderService) ListOrders(ctx context.Context) ([]models.Order, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.ListOrders")
	defer span.End()

	orders, err := s.store.GetOrders(ctx)
	if err != nil {
		return nil, storeErr(err, "Order")
	}
	if len(orders) == 0 {
		return nil, apperr.NotFound("No orders found")
	}
	return orders, s.loadItems(ctx, orders)
}

// GetOrder returns any order by ID
func (s *OrderService) GetOrder(ctx context.Context, orderID int64) (*models.Order, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.GetOrder")
	defer span.End()

	order, err := s.store.GetOrderByID(ctx, orderID, false)
	if err != nil {
		return nil, storeErr(err, "Order")
	}
	if order.Items, err = s.store.GetOrderItemsByOrderID(ctx, orderID); err != nil {
		return nil, storeErr(err, "Order")
	}
	return order, nil
}

func (s *OrderService) loadItems(ctx context.Context, orders []models.Order) error {
	for i := range orders {
		items, err := s.store.GetOrderItemsByOrderID(ctx, orders[i].ID)
		if err != nil {
			return storeErr(err, "Order")
		}
		orders[i].Items = items
	}
	return nil
}
