package services

import (
	"context"
	"errors"
	"time"

	"dungji/internal/apperr"
	"dungji/internal/models"
	"dungji/internal/repositories"

	"github.com/sirupsen/logrus"
)

// ParticipationService handles joining and leaving group buys.
type ParticipationService struct {
	repo      repositories.ParticipationRepository
	publisher EventPublisher
	log       *logrus.Logger
}

// NewParticipationService creates a new ParticipationService. publisher may be nil.
func NewParticipationService(repo repositories.ParticipationRepository, publisher EventPublisher, log *logrus.Logger) *ParticipationService {
	return &ParticipationService{
		repo:      repo,
		publisher: publisher,
		log:       log,
	}
}

// ListParticipations retrieves memberships matching filter.
func (s *ParticipationService) ListParticipations(ctx context.Context, filter repositories.ParticipationFilter) ([]models.Participation, error) {
	return s.repo.GetAll(ctx, filter)
}

// GetParticipation retrieves a single membership.
func (s *ParticipationService) GetParticipation(ctx context.Context, id string) (*models.Participation, error) {
	return s.repo.GetByID(ctx, id)
}

// Join makes userID a member of the group buy and increments its counter.
// Joining again returns the existing membership with created == false.
func (s *ParticipationService) Join(ctx context.Context, groupBuyID, userID string, now time.Time) (*models.Participation, bool, error) {
	p := &models.Participation{
		GroupBuyID: groupBuyID,
		UserID:     userID,
		JoinedAt:   now,
	}
	admit := func(gb *models.GroupBuy) error {
		if !gb.Status.AcceptsParticipants() {
			return apperr.NewValidation("groupbuy_id", "group buy is not recruiting")
		}
		if !now.Before(gb.EndTime) {
			return apperr.NewValidation("groupbuy_id", "group buy has ended")
		}
		return nil
	}

	result, created, err := s.repo.Join(ctx, p, admit)
	if err != nil {
		if errors.Is(err, repositories.ErrGroupBuyFull) {
			return nil, false, apperr.NewValidation("groupbuy_id", "group buy is full")
		}
		return nil, false, err
	}
	if !created {
		return result, false, nil
	}

	s.log.Infof("User %s joined group buy %s", userID, groupBuyID)
	publishEvent(s.publisher, s.log, EventParticipationJoined, map[string]interface{}{
		"participation_id": result.ID,
		"group_buy_id":     groupBuyID,
		"user_id":          userID,
	})
	return result, true, nil
}

// Leave removes a membership. Only the member may leave.
func (s *ParticipationService) Leave(ctx context.Context, id, userID string) error {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if p.UserID != userID {
		return &apperr.ForbiddenError{Reason: "only the participant can leave a group buy"}
	}
	if err := s.repo.Leave(ctx, id); err != nil {
		return err
	}

	s.log.Infof("User %s left group buy %s", userID, p.GroupBuyID)
	publishEvent(s.publisher, s.log, EventParticipationLeft, map[string]interface{}{
		"participation_id": id,
		"group_buy_id":     p.GroupBuyID,
		"user_id":          userID,
	})
	return nil
}
