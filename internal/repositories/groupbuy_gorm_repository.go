package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"dungji/internal/apperr"
	"dungji/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GORMGroupBuyRepository is a GORM implementation of GroupBuyRepository.
type GORMGroupBuyRepository struct {
	db *gorm.DB
}

// NewGORMGroupBuyRepository creates a new instance of GORMGroupBuyRepository.
func NewGORMGroupBuyRepository(db *gorm.DB) *GORMGroupBuyRepository {
	return &GORMGroupBuyRepository{db: db}
}

// GetAll retrieves group buys, soonest deadline first.
func (r *GORMGroupBuyRepository) GetAll(ctx context.Context, filter GroupBuyFilter) ([]models.GroupBuy, error) {
	db := r.db.WithContext(ctx)
	query := db.Order("end_time")
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.ProductID != "" {
		query = query.Where("product_id = ?", filter.ProductID)
	}
	if filter.CreatorID != "" {
		query = query.Where("creator_id = ?", filter.CreatorID)
	}

	var groupBuys []models.GroupBuy
	if err := query.Find(&groupBuys).Error; err != nil {
		return nil, fmt.Errorf("failed to get group buys: %w", err)
	}
	if err := attachParticipants(db, groupBuys); err != nil {
		return nil, err
	}
	return groupBuys, nil
}

// GetByID retrieves a single group buy with its participant ids.
func (r *GORMGroupBuyRepository) GetByID(ctx context.Context, id string) (*models.GroupBuy, error) {
	db := r.db.WithContext(ctx)
	var groupBuy models.GroupBuy
	if err := db.First(&groupBuy, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NewNotFound("group buy", id)
		}
		return nil, fmt.Errorf("failed to get group buy by ID %s: %w", id, err)
	}

	groupBuys := []models.GroupBuy{groupBuy}
	if err := attachParticipants(db, groupBuys); err != nil {
		return nil, err
	}
	return &groupBuys[0], nil
}

// Create inserts a new group buy.
func (r *GORMGroupBuyRepository) Create(ctx context.Context, groupBuy *models.GroupBuy) error {
	if groupBuy.ID == "" {
		groupBuy.ID = uuid.New().String()
	}
	if err := r.db.WithContext(ctx).Create(groupBuy).Error; err != nil {
		return translateError(err, "product_id")
	}
	if groupBuy.ParticipantIDs == nil {
		groupBuy.ParticipantIDs = []string{}
	}
	return nil
}

// Modify loads the group buy, lets change edit it and writes it back in one
// transaction. The row is locked on PostgreSQL, so joins and leaves committed
// meanwhile are never overwritten with a stale participant counter.
func (r *GORMGroupBuyRepository) Modify(ctx context.Context, id string, change func(*models.GroupBuy) error) (*models.GroupBuy, error) {
	var groupBuy models.GroupBuy
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		query := tx
		if tx.Dialector.Name() == "postgres" {
			query = tx.Clauses(clause.Locking{Strength: "UPDATE"})
		}
		if err := query.First(&groupBuy, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NewNotFound("group buy", id)
			}
			return fmt.Errorf("failed to get group buy by ID %s: %w", id, err)
		}

		creatorID, createdAt := groupBuy.CreatorID, groupBuy.CreatedAt
		if err := change(&groupBuy); err != nil {
			return err
		}
		groupBuy.ID, groupBuy.CreatorID, groupBuy.CreatedAt = id, creatorID, createdAt

		res := tx.Model(&groupBuy).Select("*").Omit("id", "creator_id", "created_at").Updates(&groupBuy)
		if res.Error != nil {
			return translateError(res.Error, "product_id")
		}

		groupBuys := []models.GroupBuy{groupBuy}
		if err := attachParticipants(tx, groupBuys); err != nil {
			return err
		}
		groupBuy = groupBuys[0]
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &groupBuy, nil
}

// Delete removes memberships first, then the group buy.
func (r *GORMGroupBuyRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("group_buy_id = ?", id).Delete(&models.Participation{}).Error; err != nil {
			return fmt.Errorf("failed to delete participations of group buy %s: %w", id, err)
		}
		res := tx.Delete(&models.GroupBuy{}, "id = ?", id)
		if res.Error != nil {
			return fmt.Errorf("failed to delete group buy: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return apperr.NewNotFound("group buy", id)
		}
		return nil
	})
}

// AddParticipant inserts the membership unless it already exists.
func (r *GORMGroupBuyRepository) AddParticipant(ctx context.Context, groupBuyID, userID string, joinedAt time.Time) (bool, error) {
	p := &models.Participation{
		ID:         uuid.New().String(),
		GroupBuyID: groupBuyID,
		UserID:     userID,
		JoinedAt:   joinedAt,
	}
	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(p)
	if res.Error != nil {
		return false, translateError(res.Error, "user_id")
	}
	return res.RowsAffected == 1, nil
}

func attachParticipants(db *gorm.DB, groupBuys []models.GroupBuy) error {
	if len(groupBuys) == 0 {
		return nil
	}
	ids := make([]string, len(groupBuys))
	index := make(map[string]int, len(groupBuys))
	for i := range groupBuys {
		ids[i] = groupBuys[i].ID
		index[groupBuys[i].ID] = i
		groupBuys[i].ParticipantIDs = []string{}
	}

	var members []models.Participation
	err := db.Where("group_buy_id IN ?", ids).Order("joined_at").Order("id").Find(&members).Error
	if err != nil {
		return fmt.Errorf("failed to load participants: %w", err)
	}
	for _, m := range members {
		i := index[m.GroupBuyID]
		groupBuys[i].ParticipantIDs = append(groupBuys[i].ParticipantIDs, m.UserID)
	}
	return nil
}
