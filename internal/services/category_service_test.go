package services_test

import (
	"context"
	"testing"

	"dungji/internal/apperr"
	"dungji/internal/models"
	"dungji/internal/repositories"
	"dungji/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestCategoryService_CreateCategory(t *testing.T) {
	ctx := context.Background()

	t.Run("root category", func(t *testing.T) {
		mockRepo := new(MockCategoryRepository)
		category := &models.Category{Name: "전자기기", Slug: "electronics"}
		mockRepo.On("Create", mock.Anything, category).Return(nil).Once()

		err := services.NewCategoryService(mockRepo, quietLogger()).CreateCategory(ctx, category)
		assert.NoError(t, err)
		mockRepo.AssertExpectations(t)
	})

	t.Run("missing parent", func(t *testing.T) {
		mockRepo := new(MockCategoryRepository)
		mockRepo.On("GetByID", mock.Anything, "ghost").Return(nil, apperr.NewNotFound("category", "ghost")).Once()

		err := services.NewCategoryService(mockRepo, quietLogger()).CreateCategory(ctx,
			&models.Category{Name: "스마트폰", Slug: "smartphones", ParentID: strPtr("ghost")})
		var verr *apperr.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Contains(t, verr.Fields, "parent_id")
		mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("invalid slug", func(t *testing.T) {
		mockRepo := new(MockCategoryRepository)
		err := services.NewCategoryService(mockRepo, quietLogger()).CreateCategory(ctx,
			&models.Category{Name: "전자기기", Slug: "전자 기기"})
		var verr *apperr.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Contains(t, verr.Fields, "slug")
	})
}

func TestCategoryService_UpdateCategory_RejectsCycles(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockCategoryRepository)
	service := services.NewCategoryService(mockRepo, quietLogger())

	// root <- mid <- leaf
	root := &models.Category{ID: "root", Name: "Root", Slug: "root"}
	mid := &models.Category{ID: "mid", Name: "Mid", Slug: "mid", ParentID: strPtr("root")}
	leaf := &models.Category{ID: "leaf", Name: "Leaf", Slug: "leaf", ParentID: strPtr("mid")}
	mockRepo.On("GetByID", mock.Anything, "root").Return(root, nil)
	mockRepo.On("GetByID", mock.Anything, "mid").Return(mid, nil)
	mockRepo.On("GetByID", mock.Anything, "leaf").Return(leaf, nil)

	err := service.UpdateCategory(ctx, &models.Category{ID: "root", Name: "Root", Slug: "root", ParentID: strPtr("leaf")})
	var verr *apperr.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields["parent_id"], "descendant")

	err = service.UpdateCategory(ctx, &models.Category{ID: "mid", Name: "Mid", Slug: "mid", ParentID: strPtr("mid")})
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields["parent_id"], "own parent")

	mockRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestCategoryService_Ancestors(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockCategoryRepository)
	service := services.NewCategoryService(mockRepo, quietLogger())

	mockRepo.On("GetByID", mock.Anything, "root").Return(&models.Category{ID: "root"}, nil)
	mockRepo.On("GetByID", mock.Anything, "mid").Return(&models.Category{ID: "mid", ParentID: strPtr("root")}, nil)
	mockRepo.On("GetByID", mock.Anything, "leaf").Return(&models.Category{ID: "leaf", ParentID: strPtr("mid")}, nil)

	ancestors, err := service.Ancestors(ctx, "leaf")
	require.NoError(t, err)
	require.Len(t, ancestors, 2)
	assert.Equal(t, "mid", ancestors[0].ID)
	assert.Equal(t, "root", ancestors[1].ID)

	ancestors, err = service.Ancestors(ctx, "root")
	require.NoError(t, err)
	assert.Empty(t, ancestors)
}

func TestCategoryService_Ancestors_DetectsStoredCycle(t *testing.T) {
	mockRepo := new(MockCategoryRepository)
	mockRepo.On("GetByID", mock.Anything, "a").Return(&models.Category{ID: "a", ParentID: strPtr("b")}, nil)
	mockRepo.On("GetByID", mock.Anything, "b").Return(&models.Category{ID: "b", ParentID: strPtr("a")}, nil)

	_, err := services.NewCategoryService(mockRepo, quietLogger()).Ancestors(context.Background(), "a")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cycle")
}

func TestCategoryService_Children(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockCategoryRepository)
	children := []models.Category{{ID: "c1"}, {ID: "c2"}}
	mockRepo.On("GetByID", mock.Anything, "root").Return(&models.Category{ID: "root"}, nil).Once()
	mockRepo.On("GetAll", mock.Anything, repositories.CategoryFilter{ParentID: "root"}).Return(children, nil).Once()

	got, err := services.NewCategoryService(mockRepo, quietLogger()).Children(ctx, "root")
	require.NoError(t, err)
	assert.Equal(t, children, got)
	mockRepo.AssertExpectations(t)
}
