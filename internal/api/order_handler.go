package api

import (
	"net/http"

	"shop-service/internal/service"

	"github.com/gin-gonic/gin"
)

func (h *Handler) getCart(c *gin.Context) {
	cart, err := h.services.Carts.GetCart(c.Request.Context(), principalFrom(c).UserID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Cart retrieved successfully", cart)
}

// addCartProduct adds to the quantity already in the cart
func (h *Handler) addCartProduct(c *gin.Context) {
	var req service.CartItemRequest
	if !h.bind(c, &req) {
		return
	}

	cart, err := h.services.Carts.AddProduct(c.Request.Context(), principalFrom(c).UserID, &req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Product added to cart successfully", cart)
}

func (h *Handler) updateCartProducts(c *gin.Context) {
	var req service.UpdateCartRequest
	if !h.bind(c, &req) {
		return
	}

	cart, err := h.services.Carts.UpdateProducts(c.Request.Context(), principalFrom(c).UserID, &req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Cart updated successfully", cart)
}

func (h *Handler) removeCartProduct(c *gin.Context) {
	productID, ok := h.pathID(c, "id", "product")
	if !ok {
		return
	}

	cart, err := h.services.Carts.RemoveProduct(c.Request.Context(), principalFrom(c).UserID, productID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Product removed from cart successfully", cart)
}

// checkout handles order creation from the caller's cart
func (h *Handler) checkout(c *gin.Context) {
	var req service.CheckoutRequest
	if !h.bind(c, &req) {
		return
	}

	order, err := h.services.Orders.Checkout(
		c.Request.Context(),
		principalFrom(c).UserID,
		&req,
		c.GetHeader("Idempotency-Key"),
	)
	if err != nil {
		h.respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, "Order created successfully", order)
}

func (h *Handler) listUserOrders(c *gin.Context) {
	orders, err := h.services.Orders.ListUserOrders(c.Request.Context(), principalFrom(c).UserID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Orders retrieved successfully", orders)
}

func (h *Handler) getUserOrder(c *gin.Context) {
	id, ok := h.pathID(c, "id", "order")
	if !ok {
		return
	}

	order, err := h.services.Orders.GetUserOrder(c.Request.Context(), principalFrom(c).UserID, id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Order retrieved successfully", order)
}

func (h *Handler) listOrders(c *gin.Context) {
	orders, err := h.services.Orders.ListOrders(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Orders retrieved successfully", orders)
}

// getOrder handles get order by ID
func (h *Handler) getOrder(c *gin.Context) {
	id, ok := h.pathID(c, "id", "order")
	if !ok {
		return
	}

	order, err := h.services.Orders.GetOrder(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Order retrieved successfully", order)
}

func (h *Handler) updateOrderStatus(c *gin.Context) {
	id, ok := h.pathID(c, "id", "order")
	if !ok {
		return
	}
	var req service.UpdateOrderStatusRequest
	if !h.bind(c, &req) {
		return
	}

	order, err := h.services.Orders.UpdateStatus(c.Request.Context(), id, &req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Order status updated successfully", order)
}
