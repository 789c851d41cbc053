package handlers

import (
	"time"

	"dungji/internal/middleware"
	"dungji/internal/repositories"
	"dungji/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// ParticipationHandler handles HTTP requests for group buy memberships.
type ParticipationHandler struct {
	service  *services.ParticipationService
	validate *validator.Validate
	log      *logrus.Logger
}

// NewParticipationHandler creates a new ParticipationHandler.
func NewParticipationHandler(service *services.ParticipationService, log *logrus.Logger) *ParticipationHandler {
	return &ParticipationHandler{
		service:  service,
		validate: newValidator(),
		log:      log,
	}
}

// JoinRequest is the body of POST. The member is always the caller.
type JoinRequest struct {
	GroupBuyID string `json:"groupbuy_id" validate:"required"`
}

// RegisterRoutes registers the participation routes. Writes go through auth.
func (h *ParticipationHandler) RegisterRoutes(router fiber.Router, auth fiber.Handler) {
	participationRoutes := router.Group("/participations")
	participationRoutes.Get("/", h.HandleGetParticipations)
	participationRoutes.Post("/", auth, h.HandleJoin)
	participationRoutes.Get("/:id", h.HandleGetParticipation)
	participationRoutes.Delete("/:id", auth, h.HandleLeave)

	immutable := methodNotAllowed("Memberships cannot be modified; leave and join again instead")
	participationRoutes.Put("/:id", immutable)
	participationRoutes.Patch("/:id", immutable)
}

// HandleGetParticipations lists memberships, optionally by ?groupbuy= and ?user=.
func (h *ParticipationHandler) HandleGetParticipations(c *fiber.Ctx) error {
	filter := repositories.ParticipationFilter{
		GroupBuyID: c.Query("groupbuy"),
		UserID:     c.Query("user"),
	}
	participations, err := h.service.ListParticipations(c.UserContext(), filter)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(participations)
}

// HandleGetParticipation retrieves a single membership.
func (h *ParticipationHandler) HandleGetParticipation(c *fiber.Ctx) error {
	participation, err := h.service.GetParticipation(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(participation)
}

// HandleJoin adds the caller to a group buy. A repeated join answers 200
// with the existing membership.
func (h *ParticipationHandler) HandleJoin(c *fiber.Ctx) error {
	var req JoinRequest
	if err := parseBody(c, h.validate, &req); err != nil {
		return respondError(c, h.log, err)
	}

	participation, created, err := h.service.Join(c.UserContext(), req.GroupBuyID, middleware.UserID(c), time.Now())
	if err != nil {
		return respondError(c, h.log, err)
	}
	if created {
		return c.Status(fiber.StatusCreated).JSON(participation)
	}
	return c.JSON(participation)
}

// HandleLeave removes the caller's membership.
func (h *ParticipationHandler) HandleLeave(c *fiber.Ctx) error {
	if err := h.service.Leave(c.UserContext(), c.Params("id"), middleware.UserID(c)); err != nil {
		return respondError(c, h.log, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
