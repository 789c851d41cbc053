package handlers

import (
	"time"

	"dungji/internal/middleware"
	"dungji/internal/models"
	"dungji/internal/repositories"
	"dungji/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// GroupBuyHandler handles HTTP requests for group buys.
type GroupBuyHandler struct {
	service  *services.GroupBuyService
	validate *validator.Validate
	log      *logrus.Logger
}

// NewGroupBuyHandler creates a new GroupBuyHandler.
func NewGroupBuyHandler(service *services.GroupBuyService, log *logrus.Logger) *GroupBuyHandler {
	return &GroupBuyHandler{
		service:  service,
		validate: newValidator(),
		log:      log,
	}
}

// GroupBuyRequest is the body of POST and PUT. The creator is always the
// caller. On PUT an omitted current_participants or status keeps the stored
// value.
type GroupBuyRequest struct {
	ProductID           string                `json:"product_id" validate:"required"`
	MinParticipants     int                   `json:"min_participants" validate:"gte=1"`
	MaxParticipants     int                   `json:"max_participants" validate:"gte=1"`
	CurrentParticipants *int                  `json:"current_participants" validate:"omitempty,gte=0"`
	EndTime             time.Time             `json:"end_time"`
	TargetPrice         int64                 `json:"target_price" validate:"gt=0"`
	Status              models.GroupBuyStatus `json:"status" validate:"omitempty,oneof=recruiting confirmed completed cancelled"`
}

// GroupBuyPatch is the body of PATCH.
type GroupBuyPatch struct {
	ProductID           *string                `json:"product_id"`
	MinParticipants     *int                   `json:"min_participants" validate:"omitempty,gte=1"`
	MaxParticipants     *int                   `json:"max_participants" validate:"omitempty,gte=1"`
	CurrentParticipants *int                   `json:"current_participants" validate:"omitempty,gte=0"`
	EndTime             *time.Time             `json:"end_time"`
	TargetPrice         *int64                 `json:"target_price" validate:"omitempty,gt=0"`
	Status              *models.GroupBuyStatus `json:"status" validate:"omitempty,oneof=recruiting confirmed completed cancelled"`
}

func (r GroupBuyRequest) apply(gb *models.GroupBuy) {
	gb.ProductID = r.ProductID
	gb.MinParticipants = r.MinParticipants
	gb.MaxParticipants = r.MaxParticipants
	if r.CurrentParticipants != nil {
		gb.CurrentParticipants = *r.CurrentParticipants
	}
	gb.EndTime = r.EndTime
	gb.TargetPrice = r.TargetPrice
	if r.Status != "" {
		gb.Status = r.Status
	}
}

func (r GroupBuyPatch) apply(gb *models.GroupBuy) {
	if r.ProductID != nil {
		gb.ProductID = *r.ProductID
	}
	if r.MinParticipants != nil {
		gb.MinParticipants = *r.MinParticipants
	}
	if r.MaxParticipants != nil {
		gb.MaxParticipants = *r.MaxParticipants
	}
	if r.CurrentParticipants != nil {
		gb.CurrentParticipants = *r.CurrentParticipants
	}
	if r.EndTime != nil {
		gb.EndTime = *r.EndTime
	}
	if r.TargetPrice != nil {
		gb.TargetPrice = *r.TargetPrice
	}
	if r.Status != nil {
		gb.Status = *r.Status
	}
}

// RegisterRoutes registers the group buy routes. Writes go through auth.
func (h *GroupBuyHandler) RegisterRoutes(router fiber.Router, auth fiber.Handler) {
	groupBuyRoutes := router.Group("/groupbuys")
	groupBuyRoutes.Get("/", h.HandleGetGroupBuys)
	groupBuyRoutes.Post("/", auth, h.HandleCreateGroupBuy)
	groupBuyRoutes.Get("/:id", h.HandleGetGroupBuy)
	groupBuyRoutes.Put("/:id", auth, h.HandleReplaceGroupBuy)
	groupBuyRoutes.Patch("/:id", auth, h.HandlePatchGroupBuy)
	groupBuyRoutes.Delete("/:id", auth, h.HandleDeleteGroupBuy)
}

// HandleGetGroupBuys lists group buys, optionally by ?status= and ?product=.
func (h *GroupBuyHandler) HandleGetGroupBuys(c *fiber.Ctx) error {
	filter := repositories.GroupBuyFilter{
		Status:    models.GroupBuyStatus(c.Query("status")),
		ProductID: c.Query("product"),
		CreatorID: c.Query("creator"),
	}
	groupBuys, err := h.service.ListGroupBuys(c.UserContext(), filter)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(groupBuys)
}

// HandleGetGroupBuy retrieves a group buy with its participants.
func (h *GroupBuyHandler) HandleGetGroupBuy(c *fiber.Ctx) error {
	groupBuy, err := h.service.GetGroupBuy(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(groupBuy)
}

// HandleCreateGroupBuy opens a new group buy run by the caller.
func (h *GroupBuyHandler) HandleCreateGroupBuy(c *fiber.Ctx) error {
	var req GroupBuyRequest
	if err := parseBody(c, h.validate, &req); err != nil {
		return respondError(c, h.log, err)
	}

	groupBuy := &models.GroupBuy{CreatorID: middleware.UserID(c)}
	req.apply(groupBuy)
	if err := h.service.CreateGroupBuy(c.UserContext(), groupBuy, time.Now()); err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(groupBuy)
}

// HandleReplaceGroupBuy overwrites the fields of a group buy except its creator.
func (h *GroupBuyHandler) HandleReplaceGroupBuy(c *fiber.Ctx) error {
	var req GroupBuyRequest
	if err := parseBody(c, h.validate, &req); err != nil {
		return respondError(c, h.log, err)
	}

	groupBuy, err := h.service.UpdateGroupBuy(c.UserContext(), c.Params("id"), middleware.UserID(c), req.apply)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(groupBuy)
}

// HandlePatchGroupBuy changes the fields present in the body.
func (h *GroupBuyHandler) HandlePatchGroupBuy(c *fiber.Ctx) error {
	var req GroupBuyPatch
	if err := parseBody(c, h.validate, &req); err != nil {
		return respondError(c, h.log, err)
	}

	groupBuy, err := h.service.UpdateGroupBuy(c.UserContext(), c.Params("id"), middleware.UserID(c), req.apply)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(groupBuy)
}

// HandleDeleteGroupBuy deletes a group buy and its memberships.
func (h *GroupBuyHandler) HandleDeleteGroupBuy(c *fiber.Ctx) error {
	if err := h.service.DeleteGroupBuy(c.UserContext(), c.Params("id"), middleware.UserID(c)); err != nil {
		return respondError(c, h.log, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
