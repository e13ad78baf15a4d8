package api

import (
	"net/http"

	"shop-service/internal/service"

	"github.com/gin-gonic/gin"
)

// categoryProduct is the product shape listed under a category
type categoryProduct struct {
	ID     int64  `json:"id"`
	Name   string `json:"product_name"`
	Price  int64  `json:"product_price"`
	Status bool   `json:"product_status"`
}

func (h *Handler) listCategories(c *gin.Context) {
	page, err := h.services.Catalog.ListCategories(c.Request.Context(), h.listParams(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	respondPage(c, "Categories retrieved successfully", page)
}

func (h *Handler) getCategory(c *gin.Context) {
	id, ok := h.pathID(c, "id", "category")
	if !ok {
		return
	}

	category, err := h.services.Catalog.GetCategory(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Category retrieved successfully", category)
}

func (h *Handler) getCategoryProducts(c *gin.Context) {
	id, ok := h.pathID(c, "id", "category")
	if !ok {
		return
	}

	products, err := h.services.Catalog.GetCategoryProducts(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}

	out := make([]categoryProduct, 0, len(products))
	for _, p := range products {
		out = append(out, categoryProduct{ID: p.ID, Name: p.Name, Price: p.Price, Status: p.Status})
	}
	respond(c, http.StatusOK, "Products retrieved successfully", out)
}

func (h *Handler) createCategory(c *gin.Context) {
	var req service.CategoryRequest
	if !h.bind(c, &req) {
		return
	}

	category, err := h.services.Catalog.CreateCategory(c.Request.Context(), &req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, "Category created successfully", category)
}

func (h *Handler) updateCategory(c *gin.Context) {
	id, ok := h.pathID(c, "id", "category")
	if !ok {
		return
	}
	var req service.CategoryRequest
	if !h.bind(c, &req) {
		return
	}

	category, err := h.services.Catalog.UpdateCategory(c.Request.Context(), id, &req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Category updated successfully", category)
}

func (h *Handler) deleteCategory(c *gin.Context) {
	id, ok := h.pathID(c, "id", "category")
	if !ok {
		return
	}

	if err := h.services.Catalog.DeleteCategory(c.Request.Context(), id); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) listProducts(c *gin.Context) {
	page, err := h.services.Catalog.ListProducts(c.Request.Context(), h.listParams(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	respondPage(c, "Products retrieved successfully", page)
}

func (h *Handler) getProduct(c *gin.Context) {
	id, ok := h.pathID(c, "id", "product")
	if !ok {
		return
	}

	product, err := h.services.Catalog.GetProduct(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Product retrieved successfully", product)
}

func (h *Handler) createProduct(c *gin.Context) {
	var req service.ProductRequest
	if !h.bind(c, &req) {
		return
	}

	product, err := h.services.Catalog.CreateProduct(c.Request.Context(), &req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, "Product created successfully", product)
}

func (h *Handler) updateProduct(c *gin.Context) {
	id, ok := h.pathID(c, "id", "product")
	if !ok {
		return
	}
	var req service.ProductRequest
	if !h.bind(c, &req) {
		return
	}

	product, err := h.services.Catalog.UpdateProduct(c.Request.Context(), id, &req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Product updated successfully", product)
}

func (h *Handler) deleteProduct(c *gin.Context) {
	id, ok := h.pathID(c, "id", "product")
	if !ok {
		return
	}

	if err := h.services.Catalog.DeleteProduct(c.Request.Context(), id); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) getProductDetail(c *gin.Context) {
	id, ok := h.pathID(c, "id", "product")
	if !ok {
		return
	}

	detail, err := h.services.Catalog.GetProductDetail(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Product detail retrieved successfully", detail)
}

func (h *Handler) createProductDetail(c *gin.Context) {
	id, ok := h.pathID(c, "id", "product")
	if !ok {
		return
	}
	var req service.ProductDetailRequest
	if !h.bind(c, &req) {
		return
	}

	detail, err := h.services.Catalog.CreateProductDetail(c.Request.Context(), id, &req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, "Product detail created successfully", detail)
}

func (h *Handler) updateProductDetail(c *gin.Context) {
	id, ok := h.pathID(c, "id", "product")
	if !ok {
		return
	}
	var req service.ProductDetailRequest
	if !h.bind(c, &req) {
		return
	}

	detail, err := h.services.Catalog.UpdateProductDetail(c.Request.Context(), id, &req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Product detail updated successfully", detail)
}

func (h *Handler) deleteProductDetail(c *gin.Context) {
	id, ok := h.pathID(c, "id", "product")
	if !ok {
		return
	}

	if err := h.services.Catalog.DeleteProductDetail(c.Request.Context(), id); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
