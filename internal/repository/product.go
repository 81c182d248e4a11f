package repository

import (
	"context"
	"time"

	"github.com/Payphone-Digital/bilemo/internal/model"
	ctxutil "github.com/Payphone-Digital/bilemo/pkg/context"
	"github.com/Payphone-Digital/bilemo/pkg/logger"
	"gorm.io/gorm"
)

type ProductRepository struct {
	db     *gorm.DB
	source *EntitySource[model.Product]
}

func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{
		db:     db,
		source: NewEntitySource[model.Product](db, "product", nil),
	}
}

func (r *ProductRepository) Source() *EntitySource[model.Product] {
	return r.source
}

func (r *ProductRepository) GetByID(ctx context.Context, id uint) (*model.Product, error) {
	ctx = ctxutil.WithOperation(ctx, "repository", "GetProductByID")

	start := time.Now()
	var product model.Product
	result := r.db.WithContext(ctx).First(&product, id)
	duration := time.Since(start)

	if result.Error != nil {
		logger.ErrorWithContext(ctx, "Failed to get product by ID").
			Uint("product_id", id).
			Duration(duration).
			Err(result.Error).
			Log()
		return nil, result.Error
	}

	logger.DebugWithContext(ctx, "Product retrieved successfully").
		Uint("product_id", id).
		Duration(duration).
		Log()

	return &product, nil
}

// ExistsBySerialNumber ignores the product with excludeID so updates can keep their own serial
func (r *ProductRepository) ExistsBySerialNumber(ctx context.Context, serial string, excludeID uint) (bool, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&model.Product{}).Where("serial_number = ?", serial)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}
	err := query.Count(&count).Error
	return count > 0, err
}

func (r *ProductRepository) Create(ctx context.Context, product *model.Product) error {
	ctx = ctxutil.WithOperation(ctx, "repository", "CreateProduct")

	start := time.Now()
	result := r.db.WithContext(ctx).Create(product)
	duration := time.Since(start)

	if result.Error != nil {
		logger.ErrorWithContext(ctx, "Failed to create product").
			String("serial_number", product.SerialNumber).
			Duration(duration).
			Err(result.Error).
			Log()
		return result.Error
	}

	logger.InfoWithContext(ctx, "Product created successfully").
		Uint("product_id", product.ID).
		Duration(duration).
		Log()

	return nil
}

func (r *ProductRepository) Update(ctx context.Context, id uint, product *model.Product) error {
	ctx = ctxutil.WithOperation(ctx, "repository", "UpdateProduct")

	start := time.Now()
	result := r.db.WithContext(ctx).Model(&model.Product{}).Where("id = ?", id).Updates(map[string]interface{}{
		"name":          product.Name,
		"description":   product.Description,
		"price":         product.Price,
		"serial_number": product.SerialNumber,
	})
	duration := time.Since(start)

	if result.Error != nil {
		logger.ErrorWithContext(ctx, "Failed to update product").
			Uint("product_id", id).
			Duration(duration).
			Err(result.Error).
			Log()
		return result.Error
	}

	if result.RowsAffected == 0 {
		logger.WarnWithContext(ctx, "No product found to update").
			Uint("product_id", id).
			Log()
		return gorm.ErrRecordNotFound
	}

	logger.InfoWithContext(ctx, "Product updated successfully").
		Uint("product_id", id).
		Duration(duration).
		Log()

	return nil
}

func (r *ProductRepository) Delete(ctx context.Context, id uint) error {
	ctx = ctxutil.WithOperation(ctx, "repository", "DeleteProduct")

	start := time.Now()
	result := r.db.WithContext(ctx).Unscoped().Delete(&model.Product{}, id)
	duration := time.Since(start)

	if result.Error != nil {
		logger.ErrorWithContext(ctx, "Failed to delete product").
			Uint("product_id", id).
			Duration(duration).
			Err(result.Error).
			Log()
		return result.Error
	}

	if result.RowsAffected == 0 {
		logger.WarnWithContext(ctx, "No product found to delete").
			Uint("product_id", id).
			Log()
		return gorm.ErrRecordNotFound
	}

	logger.InfoWithContext(ctx, "Product deleted successfully").
		Uint("product_id", id).
		Duration(duration).
		Log()

	return nil
}
