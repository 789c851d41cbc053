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

// GORMCategoryRepository is a GORM implementation of CategoryRepository.
type GORMCategoryRepository struct {
	db *gorm.DB
}

// NewGORMCategoryRepository creates a new instance of GORMCategoryRepository.
func NewGORMCategoryRepository(db *gorm.DB) *GORMCategoryRepository {
	return &GORMCategoryRepository{db: db}
}

// GetAll retrieves categories ordered by name.
func (r *GORMCategoryRepository) GetAll(ctx context.Context, filter CategoryFilter) ([]models.Category, error) {
	query := r.db.WithContext(ctx).Order("name")
	switch {
	case filter.ParentID != "":
		query = query.Where("parent_id = ?", filter.ParentID)
	case filter.RootOnly:
		query = query.Where("parent_id IS NULL")
	}

	var categories []models.Category
	if err := query.Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("failed to get categories: %w", err)
	}
	return categories, nil
}

// GetByID retrieves a single category by its ID.
func (r *GORMCategoryRepository) GetByID(ctx context.Context, id string) (*models.Category, error) {
	var category models.Category
	if err := r.db.WithContext(ctx).First(&category, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NewNotFound("category", id)
		}
		return nil, fmt.Errorf("failed to get category by ID %s: %w", id, err)
	}
	return &category, nil
}

// Create inserts a new category.
func (r *GORMCategoryRepository) Create(ctx context.Context, category *models.Category) error {
	if category.ID == "" {
		category.ID = uuid.New().String()
	}
	if err := r.db.WithContext(ctx).Create(category).Error; err != nil {
		if isForeignKeyViolation(err) {
			return apperr.NewValidation("parent_id", "category does not exist")
		}
		return translateError(err, "slug")
	}
	return nil
}

// Update overwrites every column of an existing category.
func (r *GORMCategoryRepository) Update(ctx context.Context, category *models.Category) error {
	res := r.db.WithContext(ctx).Model(category).Select("*").Omit("id", "created_at").Updates(category)
	if res.Error != nil {
		if isForeignKeyViolation(res.Error) {
			return apperr.NewValidation("parent_id", "category does not exist")
		}
		return translateError(res.Error, "slug")
	}
	if res.RowsAffected == 0 {
		return apperr.NewNotFound("category", category.ID)
	}
	return nil
}

// Delete removes a category. Categories that still have children or
// products cannot be deleted.
func (r *GORMCategoryRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&models.Category{}, "id = ?", id)
	if res.Error != nil {
		if isForeignKeyViolation(res.Error) {
			return apperr.NewValidation("id", "category still has subcategories or products")
		}
		return fmt.Errorf("failed to delete category: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NewNotFound("category", id)
	}
	return nil
}
