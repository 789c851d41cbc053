package services

import (
	"context"
	"errors"
	"fmt"

	"dungji/internal/apperr"
	"dungji/internal/models"
	"dungji/internal/repositories"
	"dungji/internal/slug"

	"github.com/sirupsen/logrus"
)

// ProductService handles business logic related to products.
type ProductService struct {
	repo       repositories.ProductRepository
	categories repositories.CategoryRepository
	log        *logrus.Logger
}

// NewProductService creates a new ProductService.
func NewProductService(repo repositories.ProductRepository, categories repositories.CategoryRepository, log *logrus.Logger) *ProductService {
	return &ProductService{
		repo:       repo,
		categories: categories,
		log:        log,
	}
}

// GetAllProducts retrieves products matching filter.
func (s *ProductService) GetAllProducts(ctx context.Context, filter repositories.ProductFilter) ([]models.Product, error) {
	return s.repo.GetAll(ctx, filter)
}

// GetProductByID retrieves a single product by its ID.
func (s *ProductService) GetProductByID(ctx context.Context, id string) (*models.Product, error) {
	return s.repo.GetByID(ctx, id)
}

// CreateProduct creates a new product. The slug is always derived from the name.
func (s *ProductService) CreateProduct(ctx context.Context, product *models.Product) error {
	if err := s.prepare(ctx, product, "", map[string]bool{}); err != nil {
		s.log.Warnf("Rejected product %q: %v", product.Name, err)
		return err
	}
	if err := s.repo.Create(ctx, product); err != nil {
		return err
	}
	s.log.Infof("Product %s (%s) created", product.Slug, product.ID)
	return nil
}

// CreateProducts validates every product, then inserts all of them at once.
// Nothing is stored when any product is invalid or the insert fails.
func (s *ProductService) CreateProducts(ctx context.Context, products []models.Product) error {
	known := map[string]bool{}
	verr := &apperr.ValidationError{}
	for i := range products {
		err := s.prepare(ctx, &products[i], fmt.Sprintf("products[%d].", i), known)
		if err == nil {
			continue
		}
		var itemErr *apperr.ValidationError
		if !errors.As(err, &itemErr) {
			return err
		}
		for field, msg := range itemErr.Fields {
			verr.Add(field, msg)
		}
	}
	if verr.HasErrors() {
		return verr
	}
	if err := s.repo.CreateBatch(ctx, products); err != nil {
		return err
	}
	s.log.Infof("Created %d products", len(products))
	return nil
}

// UpdateProduct stores new values for an existing product.
func (s *ProductService) UpdateProduct(ctx context.Context, product *models.Product) error {
	if err := s.prepare(ctx, product, "", map[string]bool{}); err != nil {
		return err
	}
	if err := s.repo.Update(ctx, product); err != nil {
		return err
	}
	s.log.Infof("Product %s updated", product.ID)
	return nil
}

// DeleteProduct deletes a product by its ID.
func (s *ProductService) DeleteProduct(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Infof("Product %s deleted", id)
	return nil
}

// prepare derives the slug and checks field invariants. known caches
// category ids already confirmed to exist; prefix qualifies field names.
func (s *ProductService) prepare(ctx context.Context, p *models.Product, prefix string, known map[string]bool) error {
	p.Slug = slug.Make(p.Name)

	verr := &apperr.ValidationError{}
	switch {
	case p.Name == "":
		verr.Add(prefix+"name", "is required")
	case p.Slug == "":
		verr.Add(prefix+"name", "must contain at least one letter or digit")
	}
	if p.BasePrice <= 0 {
		verr.Add(prefix+"base_price", "must be greater than zero")
	}
	if !p.ProductType.Valid() {
		verr.Add(prefix+"product_type", fmt.Sprintf("unknown product type %q", p.ProductType))
	}

	switch {
	case p.CategoryID == "":
		verr.Add(prefix+"category_id", "is required")
	case !known[p.CategoryID]:
		_, err := s.categories.GetByID(ctx, p.CategoryID)
		switch {
		case err == nil:
			known[p.CategoryID] = true
		case apperr.IsNotFound(err):
			verr.Add(prefix+"category_id", "category does not exist")
		default:
			return err
		}
	}
	return verr.OrNil()
}
