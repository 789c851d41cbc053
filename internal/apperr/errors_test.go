package apperr_test

import (
	"fmt"
	"testing"

	"dungji/internal/apperr"

	"github.com/stretchr/testify/assert"
)

func TestValidationError(t *testing.T) {
	verr := &apperr.ValidationError{}
	assert.NoError(t, verr.OrNil())

	verr.Add("slug", "already exists").Add("name", "is required").Add("slug", "ignored")
	assert.True(t, verr.HasErrors())
	assert.Equal(t, "already exists", verr.Fields["slug"])
	assert.Equal(t, "validation failed: name: is required; slug: already exists", verr.Error())

	wrapped := fmt.Errorf("create category: %w", verr.OrNil())
	assert.True(t, apperr.IsValidation(wrapped))
	assert.False(t, apperr.IsNotFound(wrapped))
}

func TestNotFoundError(t *testing.T) {
	err := fmt.Errorf("lookup: %w", apperr.NewNotFound("product", "42"))
	assert.True(t, apperr.IsNotFound(err))
	assert.Contains(t, err.Error(), "product with ID 42 not found")
}
