package service

import (
	"context"
	"errors"

	"shop-service/internal/apperr"
	"shop-service/internal/models"
	"shop-service/internal/store"
	"shop-service/internal/util"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CatalogService handles categories, products and product details
type CatalogService struct {
	store  store.DB
	logger *zap.Logger
}

// NewCatalogService creates a new catalog service
func NewCatalogService(store store.DB) *CatalogService {
	return &CatalogService{store: store, logger: util.GetLogger()}
}

// CategoryRequest is the body of category create and update
type CategoryRequest struct {
	Name   string `json:"category_name" binding:"required,max=255"`
	Desc   string `json:"category_desc" binding:"required"`
	Status *bool  `json:"category_status" binding:"required"`
}

// ProductRequest is the body of product create and update
type ProductRequest struct {
	Name       string `json:"product_name" binding:"required,max=255"`
	Price      *int64 `json:"product_price" binding:"required,min=0"`
	Status     *bool  `json:"product_status" binding:"required"`
	CategoryID int64  `json:"category_id" binding:"required,min=1"`
}

// ProductDetailRequest is the body of product detail create and update
type ProductDetailRequest struct {
	Intro  string           `json:"product_detail_intro" binding:"required"`
	Desc   string           `json:"product_detail_desc" binding:"required"`
	Weight *decimal.Decimal `json:"product_detail_weight" binding:"required"`
	Mfg    string           `json:"product_detail_mfg" binding:"required,datefmt"`
	Exp    string           `json:"product_detail_exp" binding:"required,datefmt"`
	Origin string           `json:"product_detail_origin" binding:"required,max=255"`
	Manual string           `json:"product_detail_manual" binding:"required"`
}

// ListCategories returns a page of categories
func (s *CatalogService) ListCategories(ctx context.Context, params store.ListParams) (*Page[models.Category], error) {
	ctx, span := util.StartSpan(ctx, "CatalogService.ListCategories")
	defer span.End()

	categories, total, err := s.store.ListCategories(ctx, params)
	if err != nil {
		return nil, storeErr(err, "Category")
	}
	return newPage(categories, total, params), nil
}

// GetCategory retrieves a category by ID
func (s *CatalogService) GetCategory(ctx context.Context, id int64) (*models.Category, error) {
	ctx, span := util.StartSpan(ctx, "CatalogService.GetCategory")
	defer span.End()

	category, err := s.store.GetCategoryByID(ctx, id)
	return category, storeErr(err, "Category")
}

// GetCategoryProducts lists the products of an existing category
func (s *CatalogService) GetCategoryProducts(ctx context.Context, id int64) ([]models.Product, error) {
	ctx, span := util.StartSpan(ctx, "CatalogService.GetCategoryProducts")
	defer span.End()

	if _, err := s.store.GetCategoryByID(ctx, id); err != nil {
		return nil, storeErr(err, "Category")
	}
	products, err := s.store.GetProductsByCategory(ctx, id)
	return products, storeErr(err, "Product")
}

func (s *CatalogService) CreateCategory(ctx context.Context, req *CategoryRequest) (*models.Category, error) {
	ctx, span := util.StartSpan(ctx, "CatalogService.CreateCategory")
	defer span.End()

	category := &models.Category{Name: req.Name, Desc: req.Desc, Status: *req.Status}
	if err := s.store.CreateCategory(ctx, category); err != nil {
		return nil, storeErr(err, "Category")
	}

	s.logger.Info("Category created", zap.Int64("category_id", category.ID))
	return category, nil
}

func (s *CatalogService) UpdateCategory(ctx context.Context, id int64, req *CategoryRequest) (*models.Category, error) {
	ctx, span := util.StartSpan(ctx, "CatalogService.UpdateCategory")
	defer span.End()

	var category *models.Category
	err := s.store.WithTx(ctx, func(tx store.Repository) error {
		var err error
		if category, err = tx.GetCategoryByID(ctx, id); err != nil {
			return err
		}
		category.Name = req.Name
		category.Desc = req.Desc
		category.Status = *req.Status
		return tx.UpdateCategory(ctx, category)
	})
	if err != nil {
		return nil, storeErr(err, "Category")
	}

	s.logger.Info("Category updated", zap.Int64("category_id", id))
	return category, nil
}

// DeleteCategory deletes a category that owns no products
func (s *CatalogService) DeleteCategory(ctx context.Context, id int64) error {
	ctx, span := util.StartSpan(ctx, "CatalogService.DeleteCategory")
	defer span.End()

	err := s.store.WithTx(ctx, func(tx store.Repository) error {
		if _, err := tx.GetCategoryByID(ctx, id); err != nil {
			return err
		}
		n, err := tx.CountProductsByCategory(ctx, id)
		if err != nil {
			return err
		}
		if n > 0 {
			return apperr.ConstraintViolation("Cannot delete category because it has products")
		}
		return tx.DeleteCategory(ctx, id)
	})
	if err != nil {
		return storeErr(err, "Category")
	}

	s.logger.Info("Category deleted", zap.Int64("category_id", id))
	return nil
}

// ListProducts returns a page of products
func (s *CatalogService) ListProducts(ctx context.Context, params store.ListParams) (*Page[models.Product], error) {
	ctx, span := util.StartSpan(ctx, "CatalogService.ListProducts")
	defer span.End()

	products, total, err := s.store.ListProducts(ctx, params)
	if err != nil {
		return nil, storeErr(err, "Product")
	}
	return newPage(products, total, params), nil
}

// GetProduct retrieves a product by ID
func (s *CatalogService) GetProduct(ctx context.Context, id int64) (*models.Product, error) {
	ctx, span := util.StartSpan(ctx, "CatalogService.GetProduct")
	defer span.End()

	product, err := s.store.GetProductByID(ctx, id)
	return product, storeErr(err, "Product")
}

func (s *CatalogService) CreateProduct(ctx context.Context, req *ProductRequest) (*models.Product, error) {
	ctx, span := util.StartSpan(ctx, "CatalogService.CreateProduct")
	defer span.End()

	product := &models.Product{
		Name:       req.Name,
		Price:      *req.Price,
		Status:     *req.Status,
		CategoryID: req.CategoryID,
	}

	err := s.store.WithTx(ctx, func(tx store.Repository) error {
		if _, err := tx.GetCategoryByID(ctx, req.CategoryID); err != nil {
			return storeErr(err, "Category")
		}
		return tx.CreateProduct(ctx, product)
	})
	if err != nil {
		return nil, storeErr(err, "Product")
	}

	s.logger.Info("Product created",
		zap.Int64("product_id", product.ID),
		zap.Int64("category_id", product.CategoryID),
	)
	return product, nil
}

// UpdateProduct overwrites a product. Carts pick up the new price on their next mutation;
// placed orders keep the price they were checked out with.
func (s *CatalogService) UpdateProduct(ctx context.Context, id int64, req *ProductRequest) (*models.Product, error) {
	ctx, span := util.StartSpan(ctx, "CatalogService.UpdateProduct")
	defer span.End()

	var product *models.Product
	err := s.store.WithTx(ctx, func(tx store.Repository) error {
		var err error
		if product, err = tx.GetProductByID(ctx, id); err != nil {
			return err
		}
		if _, err := tx.GetCategoryByID(ctx, req.CategoryID); err != nil {
			return storeErr(err, "Category")
		}
		product.Name = req.Name
		product.Price = *req.Price
		product.Status = *req.Status
		product.CategoryID = req.CategoryID
		return tx.UpdateProduct(ctx, product)
	})
	if err != nil {
		return nil, storeErr(err, "Product")
	}

	s.logger.Info("Product updated", zap.Int64("product_id", id))
	return product, nil
}

// DeleteProduct deletes a product without a detail sheet that no cart or order references
func (s *CatalogService) DeleteProduct(ctx context.Context, id int64) error {
	ctx, span := util.StartSpan(ctx, "CatalogService.DeleteProduct")
	defer span.End()

	err := s.store.WithTx(ctx, func(tx store.Repository) error {
		if _, err := tx.GetProductByID(ctx, id); err != nil {
			return err
		}
		_, err := tx.GetProductDetail(ctx, id)
		if err == nil {
			return apperr.ConstraintViolation("Cannot delete product because it has a detail")
		}
		if !errors.Is(err, store.ErrNotFound) {
			return err
		}
		return tx.DeleteProduct(ctx, id)
	})
	if errors.Is(err, store.ErrForeignKeyViolation) {
		return apperr.ConstraintViolation("Cannot delete product because it is used by carts or orders")
	}
	if err != nil {
		return storeErr(err, "Product")
	}

	s.logger.Info("Product deleted", zap.Int64("product_id", id))
	return nil
}

// GetProductDetail retrieves the detail sheet of a product
func (s *CatalogService) GetProductDetail(ctx context.Context, productID int64) (*models.ProductDetail, error) {
	ctx, span := util.StartSpan(ctx, "CatalogService.GetProductDetail")
	defer span.End()

	if _, err := s.store.GetProductByID(ctx, productID); err != nil {
		return nil, storeErr(err, "Product")
	}
	detail, err := s.store.GetProductDetail(ctx, productID)
	return detail, storeErr(err, "Product detail")
}

func (s *CatalogService) CreateProductDetail(ctx context.Context, productID int64, req *ProductDetailRequest) (*models.ProductDetail, error) {
	ctx, span := util.StartSpan(ctx, "CatalogService.CreateProductDetail")
	defer span.End()

	detail, err := detailFromRequest(productID, req)
	if err != nil {
		return nil, err
	}

	err = s.store.WithTx(ctx, func(tx store.Repository) error {
		if _, err := tx.GetProductByID(ctx, productID); err != nil {
			return storeErr(err, "Product")
		}
		_, err := tx.GetProductDetail(ctx, productID)
		if err == nil {
			return apperr.ConstraintViolation("Detail already exists")
		}
		if !errors.Is(err, store.ErrNotFound) {
			return err
		}
		return tx.CreateProductDetail(ctx, detail)
	})
	if errors.Is(err, store.ErrUniqueViolation) {
		return nil, apperr.ConstraintViolation("Detail already exists")
	}
	if err != nil {
		return nil, storeErr(err, "Product detail")
	}

	s.logger.Info("Product detail created", zap.Int64("product_id", productID))
	return detail, nil
}

func (s *CatalogService) UpdateProductDetail(ctx context.Context, productID int64, req *ProductDetailRequest) (*models.ProductDetail, error) {
	ctx, span := util.StartSpan(ctx, "CatalogService.UpdateProductDetail")
	defer span.End()

	detail, err := detailFromRequest(productID, req)
	if err != nil {
		return nil, err
	}

	err = s.store.WithTx(ctx, func(tx store.Repository) error {
		if _, err := tx.GetProductByID(ctx, productID); err != nil {
			return storeErr(err, "Product")
		}
		existing, err := tx.GetProductDetail(ctx, productID)
		if err != nil {
			return err
		}
		detail.ID = existing.ID
		detail.CreatedAt = existing.CreatedAt
		return tx.UpdateProductDetail(ctx, detail)
	})
	if err != nil {
		return nil, storeErr(err, "Product detail")
	}

	s.logger.Info("Product detail updated", zap.Int64("product_id", productID))
	return detail, nil
}

func (s *CatalogService) DeleteProductDetail(ctx context.Context, productID int64) error {
	ctx, span := util.StartSpan(ctx, "CatalogService.DeleteProductDetail")
	defer span.End()

	if _, err := s.store.GetProductByID(ctx, productID); err != nil {
		return storeErr(err, "Product")
	}
	if err := s.store.DeleteProductDetail(ctx, productID); err != nil {
		return storeErr(err, "Product detail")
	}

	s.logger.Info("Product detail deleted", zap.Int64("product_id", productID))
	return nil
}

func detailFromRequest(productID int64, req *ProductDetailRequest) (*models.ProductDetail, error) {
	mfg, err := models.ParseDate(req.Mfg)
	if err != nil {
		return nil, apperr.BadRequest("product_detail_mfg must be a YYYY-MM-DD date")
	}
	exp, err := models.ParseDate(req.Exp)
	if err != nil {
		return nil, apperr.BadRequest("product_detail_exp must be a YYYY-MM-DD date")
	}

	return &models.ProductDetail{
		ProductID: productID,
		Intro:     req.Intro,
		Desc:      req.Desc,
		Weight:    req.Weight.Round(2),
		Mfg:       mfg,
		Exp:       exp,
		Origin:    req.Origin,
		Manual:    req.Manual,
	}, nil
}
