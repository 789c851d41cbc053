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

// GORMUserRepository is a GORM implementation of UserRepository.
type GORMUserRepository struct {
	db *gorm.DB
}

// NewGORMUserRepository creates a new instance of GORMUserRepository.
func NewGORMUserRepository(db *gorm.DB) *GORMUserRepository {
	return &GORMUserRepository{
		db: db,
	}
}

// Create creates a new user in the database.
func (r *GORMUserRepository) Create(ctx context.Context, user *models.User) error {
	return createUser(r.db.WithContext(ctx), user)
}

func createUser(db *gorm.DB, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if err := db.Create(user).Error; err != nil {
		return translateError(err, "username")
	}
	return nil
}

// GetOrCreate looks the user up by username and creates it when missing.
// A concurrent creator that wins the race makes this call fail with a
// validation error on username instead of overwriting the row.
func (r *GORMUserRepository) GetOrCreate(ctx context.Context, user *models.User, phoneNumber string) (*models.User, bool, error) {
	var (
		result  models.User
		created bool
	)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.First(&result, "username = ?", user.Username).Error
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to get user by username %s: %w", user.Username, err)
		}

		if err := createUser(tx, user); err != nil {
			return err
		}
		if phoneNumber != "" {
			if err := tx.Model(user).Update("phone_number", phoneNumber).Error; err != nil {
				return fmt.Errorf("failed to set phone number: %w", err)
			}
			user.PhoneNumber = phoneNumber
		}
		result = *user
		created = true
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return &result, created, nil
}

// GetByUsername retrieves a user by their username from the database.
func (r *GORMUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.first(ctx, "username = ?", username)
}

// GetByEmail retrieves the oldest user registered with email.
func (r *GORMUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.first(ctx, "email = ?", email)
}

// GetByID retrieves a user by their ID from the database.
func (r *GORMUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	return r.first(ctx, "id = ?", id)
}

// GetBySNS retrieves the user linked to an external identity.
func (r *GORMUserRepository) GetBySNS(ctx context.Context, provider, snsID string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("sns_provider = ? AND sns_id = ?", provider, snsID).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NewNotFound("user", provider+":"+snsID)
		}
		return nil, fmt.Errorf("failed to get user by %s identity: %w", provider, err)
	}
	return &user, nil
}

// Update overwrites every column of an existing user.
func (r *GORMUserRepository) Update(ctx context.Context, user *models.User) error {
	res := r.db.WithContext(ctx).Model(user).Select("*").Omit("id", "created_at").Updates(user)
	if res.Error != nil {
		return translateError(res.Error, "username")
	}
	if res.RowsAffected == 0 {
		return apperr.NewNotFound("user", user.ID)
	}
	return nil
}

func (r *GORMUserRepository) first(ctx context.Context, where string, value string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Order("created_at").First(&user, where, value).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NewNotFound("user", value)
		}
		return nil, fmt.Errorf("failed to get user (%s): %w", where, err)
	}
	return &user, nil
}
