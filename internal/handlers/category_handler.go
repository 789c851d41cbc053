package handlers

import (
	"dungji/internal/models"
	"dungji/internal/repositories"
	"dungji/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// CategoryHandler handles HTTP requests for the category tree.
type CategoryHandler struct {
	service  *services.CategoryService
	validate *validator.Validate
	log      *logrus.Logger
}

// NewCategoryHandler creates a new CategoryHandler.
func NewCategoryHandler(service *services.CategoryService, log *logrus.Logger) *CategoryHandler {
	return &CategoryHandler{
		service:  service,
		validate: newValidator(),
		log:      log,
	}
}

// CategoryRequest is the body of POST and PUT.
type CategoryRequest struct {
	Name     string  `json:"name" validate:"required,max=100"`
	Slug     string  `json:"slug" validate:"required,max=100,slug"`
	ParentID *string `json:"parent_id"`
}

// CategoryPatch is the body of PATCH. An empty parent_id moves the category
// to the root.
type CategoryPatch struct {
	Name     *string `json:"name" validate:"omitempty,max=100"`
	Slug     *string `json:"slug" validate:"omitempty,max=100,slug"`
	ParentID *string `json:"parent_id"`
}

// RegisterRoutes registers the category routes. Writes go through auth
// and then seller, which admits catalogue managers only.
func (h *CategoryHandler) RegisterRoutes(router fiber.Router, auth, seller fiber.Handler) {
	categoryRoutes := router.Group("/categories")
	categoryRoutes.Get("/", h.HandleGetCategories)
	categoryRoutes.Post("/", auth, seller, h.HandleCreateCategory)
	categoryRoutes.Get("/:id/ancestors", h.HandleGetAncestors)
	categoryRoutes.Get("/:id/children", h.HandleGetChildren)
	categoryRoutes.Get("/:id", h.HandleGetCategory)
	categoryRoutes.Put("/:id", auth, seller, h.HandleReplaceCategory)
	categoryRoutes.Patch("/:id", auth, seller, h.HandlePatchCategory)
	categoryRoutes.Delete("/:id", auth, seller, h.HandleDeleteCategory)
}

// HandleGetCategories lists categories. ?parent=<id> lists the children of
// one category, ?root=true only top-level categories.
func (h *CategoryHandler) HandleGetCategories(c *fiber.Ctx) error {
	filter := repositories.CategoryFilter{
		ParentID: c.Query("parent"),
		RootOnly: c.QueryBool("root"),
	}
	categories, err := h.service.ListCategories(c.UserContext(), filter)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(categories)
}

// HandleGetCategory retrieves a single category by its ID.
func (h *CategoryHandler) HandleGetCategory(c *fiber.Ctx) error {
	category, err := h.service.GetCategory(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(category)
}

// HandleGetAncestors lists the parents of a category, nearest first.
func (h *CategoryHandler) HandleGetAncestors(c *fiber.Ctx) error {
	ancestors, err := h.service.Ancestors(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(ancestors)
}

// HandleGetChildren lists the direct subcategories of a category.
func (h *CategoryHandler) HandleGetChildren(c *fiber.Ctx) error {
	children, err := h.service.Children(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(children)
}

// HandleCreateCategory creates a new category.
func (h *CategoryHandler) HandleCreateCategory(c *fiber.Ctx) error {
	var req CategoryRequest
	if err := parseBody(c, h.validate, &req); err != nil {
		return respondError(c, h.log, err)
	}

	category := &models.Category{
		Name:     req.Name,
		Slug:     req.Slug,
		ParentID: emptyToNil(req.ParentID),
	}
	if err := h.service.CreateCategory(c.UserContext(), category); err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(category)
}

// HandleReplaceCategory overwrites every field of a category.
func (h *CategoryHandler) HandleReplaceCategory(c *fiber.Ctx) error {
	var req CategoryRequest
	if err := parseBody(c, h.validate, &req); err != nil {
		return respondError(c, h.log, err)
	}

	category, err := h.service.GetCategory(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	category.Name = req.Name
	category.Slug = req.Slug
	category.ParentID = emptyToNil(req.ParentID)

	if err := h.service.UpdateCategory(c.UserContext(), category); err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(category)
}

// HandlePatchCategory changes the fields present in the body.
func (h *CategoryHandler) HandlePatchCategory(c *fiber.Ctx) error {
	var req CategoryPatch
	if err := parseBody(c, h.validate, &req); err != nil {
		return respondError(c, h.log, err)
	}

	category, err := h.service.GetCategory(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	if req.Name != nil {
		category.Name = *req.Name
	}
	if req.Slug != nil {
		category.Slug = *req.Slug
	}
	if req.ParentID != nil {
		category.ParentID = emptyToNil(req.ParentID)
	}

	if err := h.service.UpdateCategory(c.UserContext(), category); err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(category)
}

// HandleDeleteCategory deletes a category without children or products.
func (h *CategoryHandler) HandleDeleteCategory(c *fiber.Ctx) error {
	if err := h.service.DeleteCategory(c.UserContext(), c.Params("id")); err != nil {
		return respondError(c, h.log, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func emptyToNil(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}
