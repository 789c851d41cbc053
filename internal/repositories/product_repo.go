package repositories

import (
	"context"

	"dungji/internal/models"
)

// ProductFilter narrows GetAll. Zero value lists every product.
type ProductFilter struct {
	CategoryID string
	Available  *bool
}

// ProductRepository defines the interface for product data access.
type ProductRepository interface {
	GetAll(ctx context.Context, filter ProductFilter) ([]models.Product, error)
	GetByID(ctx context.Context, id string) (*models.Product, error)
	Create(ctx context.Context, product *models.Product) error
	// CreateBatch inserts all products or none of them.
	CreateBatch(ctx context.Context, products []models.Product) error
	Update(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, id string) error
}
