package repositories

import (
	"context"

	"dungji/internal/models"
)

// UserRepository defines the interface for user data access.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	// GetOrCreate returns the user named user.Username, creating it when
	// absent. A non-empty phoneNumber is stored on a created user as a second
	// write. Both steps run in one transaction.
	GetOrCreate(ctx context.Context, user *models.User, phoneNumber string) (*models.User, bool, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetBySNS(ctx context.Context, provider, snsID string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
}
