package repositories

import (
	"context"
	"time"

	"dungji/internal/models"
)

// GroupBuyFilter narrows GetAll. Zero value lists every group buy.
type GroupBuyFilter struct {
	Status    models.GroupBuyStatus
	ProductID string
	CreatorID string
}

// GroupBuyRepository defines the interface for group buy data access.
// Returned group buys carry their ParticipantIDs.
type GroupBuyRepository interface {
	GetAll(ctx context.Context, filter GroupBuyFilter) ([]models.GroupBuy, error)
	GetByID(ctx context.Context, id string) (*models.GroupBuy, error)
	Create(ctx context.Context, groupBuy *models.GroupBuy) error
	// Modify applies change to the stored group buy and saves the result
	// atomically. An error from change aborts without writing. The id and
	// the creator never change.
	Modify(ctx context.Context, id string, change func(*models.GroupBuy) error) (*models.GroupBuy, error)
	// Delete removes the group buy together with its memberships.
	Delete(ctx context.Context, id string) error
	// AddParticipant records membership of userID, ignoring repeats. It
	// reports whether a new membership was stored. The participant counter
	// is left untouched.
	AddParticipant(ctx context.Context, groupBuyID, userID string, joinedAt time.Time) (bool, error)
}

// ParticipationFilter narrows GetAll. Zero value lists every membership.
type ParticipationFilter struct {
	GroupBuyID string
	UserID     string
}

// ParticipationRepository defines the interface for membership data access.
type ParticipationRepository interface {
	GetAll(ctx context.Context, filter ParticipationFilter) ([]models.Participation, error)
	GetByID(ctx context.Context, id string) (*models.Participation, error)
	// Join stores p and increments the group buy's participant counter in
	// one transaction. admit is called with the current group buy before
	// anything is written and may veto the join. Joining twice returns the
	// existing membership with created == false. ErrGroupBuyFull is returned
	// when the counter already reached the maximum.
	Join(ctx context.Context, p *models.Participation, admit func(*models.GroupBuy) error) (*models.Participation, bool, error)
	// Leave deletes the membership and decrements the counter.
	Leave(ctx context.Context, id string) error
}
