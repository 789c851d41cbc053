package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"dungji/internal/apperr"
	"dungji/internal/models"
	"dungji/internal/repositories"
	"dungji/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// ProductHandler handles HTTP requests for products.
type ProductHandler struct {
	service  *services.ProductService
	validate *validator.Validate
	log      *logrus.Logger
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(service *services.ProductService, log *logrus.Logger) *ProductHandler {
	return &ProductHandler{
		service:  service,
		validate: newValidator(),
		log:      log,
	}
}

// ProductRequest is the body of POST and PUT. The slug is always derived
// from the name.
type ProductRequest struct {
	Name        string             `json:"name" validate:"required,max=200"`
	Description string             `json:"description"`
	CategoryID  string             `json:"category_id" validate:"required"`
	ProductType models.ProductType `json:"product_type" validate:"required,oneof=device fashion food general"`
	BasePrice   int64              `json:"base_price" validate:"gt=0"`
	ImageURL    string             `json:"image_url" validate:"omitempty,url"`
	IsAvailable *bool              `json:"is_available"`
}

// ProductPatch is the body of PATCH.
type ProductPatch struct {
	Name        *string             `json:"name" validate:"omitempty,max=200"`
	Description *string             `json:"description"`
	CategoryID  *string             `json:"category_id"`
	ProductType *models.ProductType `json:"product_type" validate:"omitempty,oneof=device fashion food general"`
	BasePrice   *int64              `json:"base_price" validate:"omitempty,gt=0"`
	ImageURL    *string             `json:"image_url" validate:"omitempty,url"`
	IsAvailable *bool               `json:"is_available"`
}

func (r ProductRequest) apply(p *models.Product) {
	p.Name = r.Name
	p.Description = r.Description
	p.CategoryID = r.CategoryID
	p.ProductType = r.ProductType
	p.BasePrice = r.BasePrice
	p.ImageURL = r.ImageURL
	p.IsAvailable = r.IsAvailable == nil || *r.IsAvailable
}

// RegisterRoutes registers the product routes. Writes go through auth
// and then seller, which admits catalogue managers only.
func (h *ProductHandler) RegisterRoutes(router fiber.Router, auth, seller fiber.Handler) {
	productRoutes := router.Group("/products")
	productRoutes.Get("/", h.HandleGetProducts)
	productRoutes.Post("/", auth, seller, h.HandleCreateProduct)
	productRoutes.Get("/:id", h.HandleGetProduct)
	productRoutes.Put("/:id", auth, seller, h.HandleReplaceProduct)
	productRoutes.Patch("/:id", auth, seller, h.HandlePatchProduct)
	productRoutes.Delete("/:id", auth, seller, h.HandleDeleteProduct)
}

// HandleGetProducts lists products, optionally by ?category= and ?available=.
func (h *ProductHandler) HandleGetProducts(c *fiber.Ctx) error {
	filter := repositories.ProductFilter{CategoryID: c.Query("category")}
	if raw := c.Query("available"); raw != "" {
		available, err := strconv.ParseBool(raw)
		if err != nil {
			return respondError(c, h.log, apperr.NewValidation("available", "must be true or false"))
		}
		filter.Available = &available
	}

	products, err := h.service.GetAllProducts(c.UserContext(), filter)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(products)
}

// HandleGetProduct retrieves a single product by its ID.
func (h *ProductHandler) HandleGetProduct(c *fiber.Ctx) error {
	product, err := h.service.GetProductByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(product)
}

// HandleCreateProduct creates one product, or all products of a JSON array
// in a single batch.
func (h *ProductHandler) HandleCreateProduct(c *fiber.Ctx) error {
	if bytes.HasPrefix(bytes.TrimSpace(c.Body()), []byte("[")) {
		return h.createBatch(c)
	}

	var req ProductRequest
	if err := parseBody(c, h.validate, &req); err != nil {
		return respondError(c, h.log, err)
	}
	product := &models.Product{}
	req.apply(product)

	if err := h.service.CreateProduct(c.UserContext(), product); err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(product)
}

func (h *ProductHandler) createBatch(c *fiber.Ctx) error {
	var reqs []ProductRequest
	if err := json.Unmarshal(c.Body(), &reqs); err != nil {
		return respondError(c, h.log, apperr.NewValidation("body", fmt.Sprintf("invalid request body: %v", err)))
	}
	if len(reqs) == 0 {
		return respondError(c, h.log, apperr.NewValidation("body", "at least one product is required"))
	}

	verr := &apperr.ValidationError{}
	products := make([]models.Product, len(reqs))
	for i, req := range reqs {
		var itemErr *apperr.ValidationError
		err := validateStruct(h.validate, req, fmt.Sprintf("products[%d].", i))
		switch {
		case errors.As(err, &itemErr):
			for field, msg := range itemErr.Fields {
				verr.Add(field, msg)
			}
		case err != nil:
			return respondError(c, h.log, err)
		}
		req.apply(&products[i])
	}
	if err := verr.OrNil(); err != nil {
		return respondError(c, h.log, err)
	}

	if err := h.service.CreateProducts(c.UserContext(), products); err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(products)
}

// HandleReplaceProduct overwrites every field of a product.
func (h *ProductHandler) HandleReplaceProduct(c *fiber.Ctx) error {
	var req ProductRequest
	if err := parseBody(c, h.validate, &req); err != nil {
		return respondError(c, h.log, err)
	}

	product, err := h.service.GetProductByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	req.apply(product)

	if err := h.service.UpdateProduct(c.UserContext(), product); err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(product)
}

// HandlePatchProduct changes the fields present in the body.
func (h *ProductHandler) HandlePatchProduct(c *fiber.Ctx) error {
	var req ProductPatch
	if err := parseBody(c, h.validate, &req); err != nil {
		return respondError(c, h.log, err)
	}

	product, err := h.service.GetProductByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	if req.Name != nil {
		product.Name = *req.Name
	}
	if req.Description != nil {
		product.Description = *req.Description
	}
	if req.CategoryID != nil {
		product.CategoryID = *req.CategoryID
	}
	if req.ProductType != nil {
		product.ProductType = *req.ProductType
	}
	if req.BasePrice != nil {
		product.BasePrice = *req.BasePrice
	}
	if req.ImageURL != nil {
		product.ImageURL = *req.ImageURL
	}
	if req.IsAvailable != nil {
		product.IsAvailable = *req.IsAvailable
	}

	if err := h.service.UpdateProduct(c.UserContext(), product); err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(product)
}

// HandleDeleteProduct deletes a product by its ID.
func (h *ProductHandler) HandleDeleteProduct(c *fiber.Ctx) error {
	if err := h.service.DeleteProduct(c.UserContext(), c.Params("id")); err != nil {
		return respondError(c, h.log, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
