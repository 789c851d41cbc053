package services_test

import (
	"context"
	"fmt"
	"testing"

	"dungji/internal/apperr"
	"dungji/internal/models"
	"dungji/internal/repositories"
	"dungji/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestProductService_GetAllProducts(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo, new(MockCategoryRepository), quietLogger())

	expectedProducts := []models.Product{
		{ID: "1", Name: "아이폰 15 Pro", BasePrice: 1500000},
		{ID: "2", Name: "갤럭시 S24 Ultra", BasePrice: 1700000},
	}
	filter := repositories.ProductFilter{CategoryID: "smartphones"}
	mockRepo.On("GetAll", mock.Anything, filter).Return(expectedProducts, nil).Once()

	products, err := service.GetAllProducts(context.Background(), filter)

	assert.NoError(t, err)
	assert.Equal(t, expectedProducts, products)
	mockRepo.AssertExpectations(t)
}

func TestProductService_GetProductByID(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo, new(MockCategoryRepository), quietLogger())

	expectedProduct := &models.Product{ID: "1", Name: "맥북 프로 M3"}
	mockRepo.On("GetByID", mock.Anything, "1").Return(expectedProduct, nil).Once()
	product, err := service.GetProductByID(context.Background(), "1")
	assert.NoError(t, err)
	assert.Equal(t, expectedProduct, product)

	mockRepo.On("GetByID", mock.Anything, "nonexistent").Return(nil, apperr.NewNotFound("product", "nonexistent")).Once()
	product, err = service.GetProductByID(context.Background(), "nonexistent")
	assert.True(t, apperr.IsNotFound(err))
	assert.Nil(t, product)
	mockRepo.AssertExpectations(t)
}

func TestProductService_CreateProduct(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockProductRepository)
	mockCategories := new(MockCategoryRepository)
	service := services.NewProductService(mockRepo, mockCategories, quietLogger())

	mockCategories.On("GetByID", mock.Anything, "smartphones").Return(&models.Category{ID: "smartphones"}, nil)

	product := &models.Product{
		Name:        "아이폰 15 Pro",
		Slug:        "ignored",
		CategoryID:  "smartphones",
		ProductType: models.ProductTypeDevice,
		BasePrice:   1500000,
		IsAvailable: true,
	}
	mockRepo.On("Create", mock.Anything, product).Return(nil).Once()

	err := service.CreateProduct(ctx, product)
	require.NoError(t, err)
	assert.Equal(t, "아이폰-15-pro", product.Slug)
	mockRepo.AssertExpectations(t)
}

func TestProductService_CreateProduct_Validation(t *testing.T) {
	ctx := context.Background()
	mockCategories := new(MockCategoryRepository)
	mockCategories.On("GetByID", mock.Anything, "ghost").Return(nil, apperr.NewNotFound("category", "ghost"))
	mockCategories.On("GetByID", mock.Anything, "smartphones").Return(&models.Category{ID: "smartphones"}, nil)

	tests := []struct {
		name    string
		product models.Product
		field   string
	}{
		{"missing name", models.Product{CategoryID: "smartphones", ProductType: "device", BasePrice: 1}, "name"},
		{"name without letters", models.Product{Name: "!!!", CategoryID: "smartphones", ProductType: "device", BasePrice: 1}, "name"},
		{"zero price", models.Product{Name: "A", CategoryID: "smartphones", ProductType: "device"}, "base_price"},
		{"unknown type", models.Product{Name: "A", CategoryID: "smartphones", ProductType: "toy", BasePrice: 1}, "product_type"},
		{"unknown category", models.Product{Name: "A", CategoryID: "ghost", ProductType: "device", BasePrice: 1}, "category_id"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockProductRepository)
			service := services.NewProductService(mockRepo, mockCategories, quietLogger())

			err := service.CreateProduct(ctx, &tt.product)
			var verr *apperr.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Contains(t, verr.Fields, tt.field)
			mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestProductService_CreateProducts(t *testing.T) {
	ctx := context.Background()
	mockCategories := new(MockCategoryRepository)
	mockCategories.On("GetByID", mock.Anything, "smartphones").Return(&models.Category{ID: "smartphones"}, nil).Once()

	products := []models.Product{
		{Name: "아이폰 15 Pro", CategoryID: "smartphones", ProductType: "device", BasePrice: 1500000},
		{Name: "갤럭시 S24 Ultra", CategoryID: "smartphones", ProductType: "device", BasePrice: 1700000},
	}

	mockRepo := new(MockProductRepository)
	mockRepo.On("CreateBatch", mock.Anything, mock.MatchedBy(func(ps []models.Product) bool {
		return len(ps) == 2 && ps[0].Slug == "아이폰-15-pro" && ps[1].Slug == "갤럭시-s24-ultra"
	})).Return(nil).Once()

	err := services.NewProductService(mockRepo, mockCategories, quietLogger()).CreateProducts(ctx, products)
	require.NoError(t, err)
	// The category lookup is cached across the batch.
	mockCategories.AssertNumberOfCalls(t, "GetByID", 1)
	mockRepo.AssertExpectations(t)
}

func TestProductService_CreateProducts_OneInvalidStoresNothing(t *testing.T) {
	ctx := context.Background()
	mockCategories := new(MockCategoryRepository)
	mockCategories.On("GetByID", mock.Anything, "smartphones").Return(&models.Category{ID: "smartphones"}, nil)

	products := []models.Product{
		{Name: "아이폰 15 Pro", CategoryID: "smartphones", ProductType: "device", BasePrice: 1500000},
		{Name: "갤럭시 S24 Ultra", CategoryID: "smartphones", ProductType: "device", BasePrice: -1},
	}
	mockRepo := new(MockProductRepository)

	err := services.NewProductService(mockRepo, mockCategories, quietLogger()).CreateProducts(ctx, products)
	var verr *apperr.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "products[1].base_price")
	mockRepo.AssertNotCalled(t, "CreateBatch", mock.Anything, mock.Anything)
}

func TestProductService_DeleteProduct(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo, new(MockCategoryRepository), quietLogger())

	mockRepo.On("Delete", mock.Anything, "1").Return(nil).Once()
	assert.NoError(t, service.DeleteProduct(context.Background(), "1"))

	mockRepo.On("Delete", mock.Anything, "2").Return(fmt.Errorf("db error")).Once()
	assert.EqualError(t, service.DeleteProduct(context.Background(), "2"), "db error")
	mockRepo.AssertExpectations(t)
}
