package handlers

import (
	"errors"

	"dungji/internal/apperr"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// respondError writes the response for an error returned by a service.
func respondError(c *fiber.Ctx, log *logrus.Logger, err error) error {
	var (
		validationErr *apperr.ValidationError
		notFoundErr   *apperr.NotFoundError
		authErr       *apperr.AuthenticationError
		forbiddenErr  *apperr.ForbiddenError
	)
	switch {
	case errors.As(err, &validationErr):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"errors":  validationErr.Fields,
		})
	case errors.As(err, &notFoundErr):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": notFoundErr.Error(),
		})
	case errors.As(err, &authErr):
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "Authentication failed",
			"error":   authErr.Error(),
		})
	case errors.As(err, &forbiddenErr):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"message": forbiddenErr.Error(),
		})
	}

	log.WithFields(logrus.Fields{
		"method": c.Method(),
		"path":   c.Path(),
	}).Errorf("Request failed: %v", err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"message": "Internal server error",
	})
}

// ErrorHandler renders errors that escape the handlers, such as unknown
// routes, in the same shape as handler errors.
func ErrorHandler(log *logrus.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return c.Status(fiberErr.Code).JSON(fiber.Map{
				"message": fiberErr.Message,
			})
		}
		return respondError(c, log, err)
	}
}

// methodNotAllowed rejects requests on immutable resources.
func methodNotAllowed(reason string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusMethodNotAllowed).JSON(fiber.Map{
			"message": reason,
		})
	}
}
