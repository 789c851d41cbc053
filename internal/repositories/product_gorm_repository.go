package repositories

import (
	"context"
	"errors"
	"fmt"

	"dungji/internal/apperr"
	"dungji/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMProductRepository is a GORM implementation of ProductRepository.
type GORMProductRepository struct {
	db *gorm.DB
}

// NewGORMProductRepository creates a new instance of GORMProductRepository.
func NewGORMProductRepository(db *gorm.DB) *GORMProductRepository {
	return &GORMProductRepository{
		db: db,
	}
}

// GetAll retrieves products, newest first.
func (r *GORMProductRepository) GetAll(ctx context.Context, filter ProductFilter) ([]models.Product, error) {
	query := r.db.WithContext(ctx).Order("created_at DESC").Order("name")
	if filter.CategoryID != "" {
		query = query.Where("category_id = ?", filter.CategoryID)
	}
	if filter.Available != nil {
		query = query.Where("is_available = ?", *filter.Available)
	}

	var products []models.Product
	if err := query.Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to get all products: %w", err)
	}
	return products, nil
}

// GetByID retrieves a single product by its ID from the database.
func (r *GORMProductRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NewNotFound("product", id)
		}
		return nil, fmt.Errorf("failed to get product by ID %s: %w", id, err)
	}
	return &product, nil
}

// Create creates a new product in the database.
func (r *GORMProductRepository) Create(ctx context.Context, product *models.Product) error {
	if product.ID == "" {
		product.ID = uuid.New().String()
	}
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		return translateError(err, "category_id")
	}
	return nil
}

// CreateBatch inserts products in a single transaction.
func (r *GORMProductRepository) CreateBatch(ctx context.Context, products []models.Product) error {
	if len(products) == 0 {
		return nil
	}
	for i := range products {
		if products[i].ID == "" {
			products[i].ID = uuid.New().String()
		}
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(&products).Error
	})
	if err != nil {
		return translateError(err, "category_id")
	}
	return nil
}

// Update overwrites every column of an existing product.
func (r *GORMProductRepository) Update(ctx context.Context, product *models.Product) error {
	res := r.db.WithContext(ctx).Model(product).Select("*").Omit("id", "created_at").Updates(product)
	if res.Error != nil {
		return translateError(res.Error, "category_id")
	}
	if res.RowsAffected == 0 {
		return apperr.NewNotFound("product", product.ID)
	}
	return nil
}

// Delete deletes a product by its ID from the database.
func (r *GORMProductRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&models.Product{}, "id = ?", id)
	if res.Error != nil {
		if isForeignKeyViolation(res.Error) {
			return apperr.NewValidation("id", "product is still used by a group buy")
		}
		return fmt.Errorf("failed to delete product: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NewNotFound("product", id)
	}
	return nil
}
