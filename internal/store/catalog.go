package store

import (
	"context"

	"shop-service/internal/models"
)

// ListCategories returns a page of categories filtered by name
func (q *Queries) ListCategories(ctx context.Context, params ListParams) ([]models.Category, int, error) {
	var total int
	if err := q.get(ctx, &total,
		"SELECT COUNT(*) FROM categories WHERE category_name ILIKE '%' || $1::text || '%'",
		params.Search); err != nil {
		return nil, 0, err
	}

	categories := []models.Category{}
	err := q.selectAll(ctx, &categories, `
		SELECT * FROM categories
		WHERE category_name ILIKE '%' || $1::text || '%'
		ORDER BY id
		LIMIT $2 OFFSET $3`,
		params.Search, params.Limit, params.Offset())
	return categories, total, err
}

// GetCategoryByID retrieves a category by ID
func (q *Queries) GetCategoryByID(ctx context.Context, id int64) (*models.Category, error) {
	var category models.Category
	if err := q.get(ctx, &category, "SELECT * FROM categories WHERE id = $1", id); err != nil {
		return nil, err
	}
	return &category, nil
}

// CreateCategory inserts a category
func (q *Queries) CreateCategory(ctx context.Context, category *models.Category) error {
	query := `
		INSERT INTO categories (category_name, category_desc, category_status)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at`

	return q.get(ctx, category, query, category.Name, category.Desc, category.Status)
}

// UpdateCategory overwrites the editable fields of a category
func (q *Queries) UpdateCategory(ctx context.Context, category *models.Category) error {
	query := `
		UPDATE categories
		SET category_name = $1, category_desc = $2, category_status = $3, updated_at = NOW()
		WHERE id = $4
		RETURNING updated_at`

	return q.get(ctx, &category.UpdatedAt, query,
		category.Name, category.Desc, category.Status, category.ID)
}

// DeleteCategory deletes a category
func (q *Queries) DeleteCategory(ctx context.Context, id int64) error {
	return q.exec(ctx, "DELETE FROM categories WHERE id = $1", id)
}

// CountProductsByCategory counts the products owned by a category
func (q *Queries) CountProductsByCategory(ctx context.Context, categoryID int64) (int, error) {
	var n int
	err := q.get(ctx, &n, "SELECT COUNT(*) FROM products WHERE category_id = $1", categoryID)
	return n, err
}

// GetProductsByCategory lists the products of a category
func (q *Queries) GetProductsByCategory(ctx context.Context, categoryID int64) ([]models.Product, error) {
	products := []models.Product{}
	err := q.selectAll(ctx, &products,
		"SELECT * FROM products WHERE category_id = $1 ORDER BY id", categoryID)
	return products, err
}

// ListProducts returns a page of products filtered by name
func (q *Queries) ListProducts(ctx context.Context, params ListParams) ([]models.Product, int, error) {
	var total int
	if err := q.get(ctx, &total,
		"SELECT COUNT(*) FROM products WHERE product_name ILIKE '%' || $1::text || '%'",
		params.Search); err != nil {
		return nil, 0, err
	}

	products := []models.Product{}
	err := q.selectAll(ctx, &products, `
		SELECT * FROM products
		WHERE product_name ILIKE '%' || $1::text || '%'
		ORDER BY id
		LIMIT $2 OFFSET $3`,
		params.Search, params.Limit, params.Offset())
	return products, total, err
}

// GetProductByID retrieves a product by ID
func (q *Queries) GetProductByID(ctx context.Context, id int64) (*models.Product, error) {
	var product models.Product
	if err := q.get(ctx, &product, "SELECT * FROM products WHERE id = $1", id); err != nil {
		return nil, err
	}
	return &product, nil
}

// CreateProduct inserts a product
func (q *Queries) CreateProduct(ctx context.Context, product *models.Product) error {
	query := `
		INSERT INTO products (product_name, product_price, product_status, category_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at`

	return q.get(ctx, product, query,
		product.Name, product.Price, product.Status, product.CategoryID)
}

// UpdateProduct overwrites the editable fields of a product
func (q *Queries) UpdateProduct(ctx context.Context, product *models.Product) error {
	query := `
		UPDATE products
		SET product_name = $1, product_price = $2, product_status = $3, category_id = $4, updated_at = NOW()
		WHERE id = $5
		RETURNING updated_at`

	return q.get(ctx, &product.UpdatedAt, query,
		product.Name, product.Price, product.Status, product.CategoryID, product.ID)
}

// DeleteProduct deletes a product
func (q *Queries) DeleteProduct(ctx context.Context, id int64) error {
	return q.exec(ctx, "DELETE FROM products WHERE id = $1", id)
}

// GetProductDetail retrieves the detail sheet of a product
func (q *Queries) GetProductDetail(ctx context.Context, productID int64) (*models.ProductDetail, error) {
	var detail models.ProductDetail
	if err := q.get(ctx, &detail,
		"SELECT * FROM product_details WHERE product_id = $1", productID); err != nil {
		return nil, err
	}
	return &detail, nil
}

// CreateProductDetail inserts a detail sheet
func (q *Queries) CreateProductDetail(ctx context.Context, detail *models.ProductDetail) error {
	query := `
		INSERT INTO product_details (
			product_id, product_detail_intro, product_detail_desc, product_detail_weight,
			product_detail_mfg, product_detail_exp, product_detail_origin, product_detail_manual)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at`

	return q.get(ctx, detail, query,
		detail.ProductID, detail.Intro, detail.Desc, detail.Weight,
		detail.Mfg, detail.Exp, detail.Origin, detail.Manual)
}

// UpdateProductDetail overwrites a detail sheet
func (q *Queries) UpdateProductDetail(ctx context.Context, detail *models.ProductDetail) error {
	query := `
		UPDATE product_details
		SET product_detail_intro = $1, product_detail_desc = $2, product_detail_weight = $3,
			product_detail_mfg = $4, product_detail_exp = $5, product_detail_origin = $6,
			product_detail_manual = $7, updated_at = NOW()
		WHERE product_id = $8
		RETURNING updated_at`

	return q.get(ctx, &detail.UpdatedAt, query,
		detail.Intro, detail.Desc, detail.Weight, detail.Mfg, detail.Exp,
		detail.Origin, detail.Manual, detail.ProductID)
}

// DeleteProductDetail deletes the detail sheet of a product
func (q *Queries) DeleteProductDetail(ctx context.Context, productID int64) error {
	return q.exec(ctx, "DELETE FROM product_details WHERE product_id = $1", productID)
}
