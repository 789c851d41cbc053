package services

import (
	"context"
	"fmt"

	"dungji/internal/apperr"
	"dungji/internal/models"
	"dungji/internal/repositories"
	"dungji/internal/slug"

	"github.com/sirupsen/logrus"
)

// CategoryService handles business logic related to the category tree.
type CategoryService struct {
	repo repositories.CategoryRepository
	log  *logrus.Logger
}

// NewCategoryService creates a new CategoryService.
func NewCategoryService(repo repositories.CategoryRepository, log *logrus.Logger) *CategoryService {
	return &CategoryService{
		repo: repo,
		log:  log,
	}
}

// ListCategories retrieves categories matching filter.
func (s *CategoryService) ListCategories(ctx context.Context, filter repositories.CategoryFilter) ([]models.Category, error) {
	return s.repo.GetAll(ctx, filter)
}

// GetCategory retrieves a single category by its ID.
func (s *CategoryService) GetCategory(ctx context.Context, id string) (*models.Category, error) {
	return s.repo.GetByID(ctx, id)
}

// CreateCategory validates and stores a new category. The parent, when set,
// must already exist.
func (s *CategoryService) CreateCategory(ctx context.Context, category *models.Category) error {
	if err := s.validate(category); err != nil {
		s.log.Warnf("Rejected category %q: %v", category.Slug, err)
		return err
	}
	if category.ParentID != nil {
		if err := s.requireParent(ctx, *category.ParentID); err != nil {
			return err
		}
	}
	if err := s.repo.Create(ctx, category); err != nil {
		return err
	}
	s.log.Infof("Category %s (%s) created", category.Slug, category.ID)
	return nil
}

// UpdateCategory stores new values for an existing category. Moving a
// category below itself or one of its descendants is rejected.
func (s *CategoryService) UpdateCategory(ctx context.Context, category *models.Category) error {
	if err := s.validate(category); err != nil {
		return err
	}
	if _, err := s.repo.GetByID(ctx, category.ID); err != nil {
		return err
	}
	if category.ParentID != nil {
		if *category.ParentID == category.ID {
			return apperr.NewValidation("parent_id", "a category cannot be its own parent")
		}
		if err := s.requireParent(ctx, *category.ParentID); err != nil {
			return err
		}
		ancestors, err := s.Ancestors(ctx, *category.ParentID)
		if err != nil {
			return err
		}
		for _, a := range ancestors {
			if a.ID == category.ID {
				return apperr.NewValidation("parent_id", "a category cannot be moved below its own descendant")
			}
		}
	}
	if err := s.repo.Update(ctx, category); err != nil {
		return err
	}
	s.log.Infof("Category %s updated", category.ID)
	return nil
}

// DeleteCategory deletes a category that has no children and no products.
func (s *CategoryService) DeleteCategory(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Infof("Category %s deleted", id)
	return nil
}

// Ancestors returns the chain of parents of id, nearest first. The walk
// fails if it revisits a category.
func (s *CategoryService) Ancestors(ctx context.Context, id string) ([]models.Category, error) {
	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	visited := map[string]bool{current.ID: true}
	ancestors := []models.Category{}
	for current.ParentID != nil {
		parentID := *current.ParentID
		if visited[parentID] {
			return nil, fmt.Errorf("category %s: cycle detected in parent chain at %s", id, parentID)
		}
		visited[parentID] = true

		parent, err := s.repo.GetByID(ctx, parentID)
		if err != nil {
			return nil, fmt.Errorf("category %s: broken parent chain: %w", id, err)
		}
		ancestors = append(ancestors, *parent)
		current = parent
	}
	return ancestors, nil
}

// Children returns the direct subcategories of id.
func (s *CategoryService) Children(ctx context.Context, id string) ([]models.Category, error) {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return nil, err
	}
	return s.repo.GetAll(ctx, repositories.CategoryFilter{ParentID: id})
}

func (s *CategoryService) validate(category *models.Category) error {
	verr := &apperr.ValidationError{}
	if category.Name == "" {
		verr.Add("name", "is required")
	}
	if !slug.Valid(category.Slug) {
		verr.Add("slug", "must contain only letters, digits, hyphens or underscores")
	}
	return verr.OrNil()
}

func (s *CategoryService) requireParent(ctx context.Context, parentID string) error {
	if _, err := s.repo.GetByID(ctx, parentID); err != nil {
		if apperr.IsNotFound(err) {
			return apperr.NewValidation("parent_id", "category does not exist")
		}
		return err
	}
	return nil
}
