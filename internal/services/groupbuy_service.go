package services

import (
	"context"
	"fmt"
	"time"

	"dungji/internal/apperr"
	"dungji/internal/models"
	"dungji/internal/repositories"

	"github.com/sirupsen/logrus"
)

// GroupBuyService handles business logic related to group buys.
type GroupBuyService struct {
	repo      repositories.GroupBuyRepository
	products  repositories.ProductRepository
	users     repositories.UserRepository
	publisher EventPublisher
	log       *logrus.Logger
}

// NewGroupBuyService creates a new GroupBuyService. publisher may be nil.
func NewGroupBuyService(repo repositories.GroupBuyRepository, products repositories.ProductRepository, users repositories.UserRepository, publisher EventPublisher, log *logrus.Logger) *GroupBuyService {
	return &GroupBuyService{
		repo:      repo,
		products:  products,
		users:     users,
		publisher: publisher,
		log:       log,
	}
}

// ListGroupBuys retrieves group buys matching filter.
func (s *GroupBuyService) ListGroupBuys(ctx context.Context, filter repositories.GroupBuyFilter) ([]models.GroupBuy, error) {
	return s.repo.GetAll(ctx, filter)
}

// GetGroupBuy retrieves a group buy with its participant ids.
func (s *GroupBuyService) GetGroupBuy(ctx context.Context, id string) (*models.GroupBuy, error) {
	return s.repo.GetByID(ctx, id)
}

// CreateGroupBuy validates and stores a new group buy. An empty status
// becomes recruiting.
func (s *GroupBuyService) CreateGroupBuy(ctx context.Context, gb *models.GroupBuy, now time.Time) error {
	if gb.Status == "" {
		gb.Status = models.StatusRecruiting
	}

	verr := checkBounds(gb)
	if !gb.EndTime.After(now) {
		verr.Add("end_time", "must be in the future")
	}
	if err := s.checkReferences(ctx, gb, verr); err != nil {
		return err
	}
	if err := verr.OrNil(); err != nil {
		s.log.Warnf("Rejected group buy for product %s: %v", gb.ProductID, err)
		return err
	}

	if err := s.repo.Create(ctx, gb); err != nil {
		return err
	}
	s.log.Infof("Group buy %s created by %s", gb.ID, gb.CreatorID)
	publishEvent(s.publisher, s.log, EventGroupBuyCreated, map[string]interface{}{
		"group_buy_id": gb.ID,
		"product_id":   gb.ProductID,
		"creator_id":   gb.CreatorID,
	})
	return nil
}

// UpdateGroupBuy applies change to a group buy on behalf of callerID, who
// must be its creator. The creator cannot change and the status must follow
// the lifecycle. change may run more than once and must only assign fields.
func (s *GroupBuyService) UpdateGroupBuy(ctx context.Context, id, callerID string, change func(*models.GroupBuy)) (*models.GroupBuy, error) {
	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.CreatorID != callerID {
		return nil, &apperr.ForbiddenError{Reason: "only the creator can change a group buy"}
	}

	// References live outside the row, so they are checked before the write.
	preview := *current
	change(&preview)
	if preview.ProductID != current.ProductID {
		verr := &apperr.ValidationError{}
		if err := s.checkProduct(ctx, preview.ProductID, verr); err != nil {
			return nil, err
		}
		if err := verr.OrNil(); err != nil {
			return nil, err
		}
	}

	updated, err := s.repo.Modify(ctx, id, func(gb *models.GroupBuy) error {
		from := gb.Status
		creatorID, createdAt := gb.CreatorID, gb.CreatedAt
		change(gb)
		gb.CreatorID, gb.CreatedAt = creatorID, createdAt

		verr := checkBounds(gb)
		if gb.Status.Valid() && !from.CanTransitionTo(gb.Status) {
			verr.Add("status", fmt.Sprintf("cannot change from %s to %s", from, gb.Status))
		}
		return verr.OrNil()
	})
	if err != nil {
		return nil, err
	}
	s.log.Infof("Group buy %s updated (status %s)", updated.ID, updated.Status)
	return updated, nil
}

// DeleteGroupBuy deletes a group buy and its memberships. Only the creator
// may delete it.
func (s *GroupBuyService) DeleteGroupBuy(ctx context.Context, id, callerID string) error {
	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if current.CreatorID != callerID {
		return &apperr.ForbiddenError{Reason: "only the creator can delete a group buy"}
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Infof("Group buy %s deleted", id)
	return nil
}

// AddParticipant records userID as a member of the group buy without
// touching its participant counter. Repeats are ignored; the result reports
// whether a membership was added.
func (s *GroupBuyService) AddParticipant(ctx context.Context, groupBuyID, userID string) (bool, error) {
	added, err := s.repo.AddParticipant(ctx, groupBuyID, userID, time.Now())
	if err != nil {
		return false, err
	}
	if added {
		s.log.Debugf("User %s added to group buy %s", userID, groupBuyID)
	}
	return added, nil
}

func checkBounds(gb *models.GroupBuy) *apperr.ValidationError {
	verr := &apperr.ValidationError{}
	if gb.MinParticipants < 1 {
		verr.Add("min_participants", "must be at least 1")
	}
	if gb.MaxParticipants < gb.MinParticipants {
		verr.Add("max_participants", "must not be less than min_participants")
	}
	if gb.CurrentParticipants < 0 || gb.CurrentParticipants > gb.MaxParticipants {
		verr.Add("current_participants", "must be between 0 and max_participants")
	}
	if gb.TargetPrice <= 0 {
		verr.Add("target_price", "must be greater than zero")
	}
	if !gb.Status.Valid() {
		verr.Add("status", fmt.Sprintf("unknown status %q", gb.Status))
	}
	return verr
}

func (s *GroupBuyService) checkReferences(ctx context.Context, gb *models.GroupBuy, verr *apperr.ValidationError) error {
	if err := s.checkProduct(ctx, gb.ProductID, verr); err != nil {
		return err
	}
	if _, err := s.users.GetByID(ctx, gb.CreatorID); err != nil {
		if !apperr.IsNotFound(err) {
			return err
		}
		verr.Add("creator_id", "user does not exist")
	}
	return nil
}

func (s *GroupBuyService) checkProduct(ctx context.Context, productID string, verr *apperr.ValidationError) error {
	if _, err := s.products.GetByID(ctx, productID); err != nil {
		if !apperr.IsNotFound(err) {
			return err
		}
		verr.Add("product_id", "product does not exist")
	}
	return nil
}
