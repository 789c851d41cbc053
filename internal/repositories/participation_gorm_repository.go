package repositories

import (
	"context"
	"errors"
	"fmt"

	"dungji/internal/apperr"
	"dungji/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GORMParticipationRepository is a GORM implementation of ParticipationRepository.
type GORMParticipationRepository struct {
	db *gorm.DB
}

// NewGORMParticipationRepository creates a new instance of GORMParticipationRepository.
func NewGORMParticipationRepository(db *gorm.DB) *GORMParticipationRepository {
	return &GORMParticipationRepository{db: db}
}

// GetAll retrieves memberships in join order.
func (r *GORMParticipationRepository) GetAll(ctx context.Context, filter ParticipationFilter) ([]models.Participation, error) {
	query := r.db.WithContext(ctx).Order("joined_at").Order("id")
	if filter.GroupBuyID != "" {
		query = query.Where("group_buy_id = ?", filter.GroupBuyID)
	}
	if filter.UserID != "" {
		query = query.Where("user_id = ?", filter.UserID)
	}

	var participations []models.Participation
	if err := query.Find(&participations).Error; err != nil {
		return nil, fmt.Errorf("failed to get participations: %w", err)
	}
	return participations, nil
}

// GetByID retrieves a single membership.
func (r *GORMParticipationRepository) GetByID(ctx context.Context, id string) (*models.Participation, error) {
	var p models.Participation
	if err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NewNotFound("participation", id)
		}
		return nil, fmt.Errorf("failed to get participation by ID %s: %w", id, err)
	}
	return &p, nil
}

// Join stores the membership and bumps the counter atomically.
func (r *GORMParticipationRepository) Join(ctx context.Context, p *models.Participation, admit func(*models.GroupBuy) error) (*models.Participation, bool, error) {
	var (
		result  models.Participation
		created bool
	)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var groupBuy models.GroupBuy
		if err := tx.First(&groupBuy, "id = ?", p.GroupBuyID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NewNotFound("group buy", p.GroupBuyID)
			}
			return fmt.Errorf("failed to get group buy %s: %w", p.GroupBuyID, err)
		}

		err := tx.Where("group_buy_id = ? AND user_id = ?", p.GroupBuyID, p.UserID).First(&result).Error
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to look up membership: %w", err)
		}

		if admit != nil {
			if err := admit(&groupBuy); err != nil {
				return err
			}
		}

		if p.ID == "" {
			p.ID = uuid.New().String()
		}
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(p)
		if res.Error != nil {
			return translateError(res.Error, "user_id")
		}
		if res.RowsAffected == 0 {
			// Lost a race against an identical join.
			return tx.Where("group_buy_id = ? AND user_id = ?", p.GroupBuyID, p.UserID).First(&result).Error
		}

		bump := tx.Model(&models.GroupBuy{}).
			Where("id = ? AND current_participants < max_participants", p.GroupBuyID).
			Update("current_participants", gorm.Expr("current_participants + ?", 1))
		if bump.Error != nil {
			return fmt.Errorf("failed to increment participants: %w", bump.Error)
		}
		if bump.RowsAffected == 0 {
			return ErrGroupBuyFull
		}

		result = *p
		created = true
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return &result, created, nil
}

// Leave deletes the membership and decrements the counter, never below zero.
func (r *GORMParticipationRepository) Leave(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var p models.Participation
		if err := tx.First(&p, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NewNotFound("participation", id)
			}
			return fmt.Errorf("failed to get participation by ID %s: %w", id, err)
		}
		if err := tx.Delete(&p).Error; err != nil {
			return fmt.Errorf("failed to delete participation: %w", err)
		}
		err := tx.Model(&models.GroupBuy{}).
			Where("id = ? AND current_participants > 0", p.GroupBuyID).
			Update("current_participants", gorm.Expr("current_participants - ?", 1)).Error
		if err != nil {
			return fmt.Errorf("failed to decrement participants: %w", err)
		}
		return nil
	})
}
