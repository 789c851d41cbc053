package repositories

import (
	"context"

	"dungji/internal/models"
)

// CategoryFilter narrows GetAll. Zero value lists every category.
type CategoryFilter struct {
	ParentID string // only direct children of this category
	RootOnly bool   // only categories without a parent
}

// CategoryRepository defines the interface for category data access.
type CategoryRepository interface {
	GetAll(ctx context.Context, filter CategoryFilter) ([]models.Category, error)
	GetByID(ctx context.Context, id string) (*models.Category, error)
	Create(ctx context.Context, category *models.Category) error
	Update(ctx context.Context, category *models.Category) error
	Delete(ctx context.Context, id string) error
}
