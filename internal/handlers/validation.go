package handlers

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"dungji/internal/apperr"
	"dungji/internal/slug"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// newValidator returns a validator that reports fields by their JSON name
// and knows the "slug" tag.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	// Registration only fails for an empty tag or nil func.
	_ = v.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
		return slug.Valid(fl.Field().String())
	})
	return v
}

// parseBody decodes the JSON body into dst and validates it. Failures are
// returned as validation errors.
func parseBody(c *fiber.Ctx, v *validator.Validate, dst interface{}) error {
	if err := c.BodyParser(dst); err != nil {
		return apperr.NewValidation("body", fmt.Sprintf("invalid request body: %v", err))
	}
	return validateStruct(v, dst, "")
}

func validateStruct(v *validator.Validate, s interface{}, prefix string) error {
	err := v.Struct(s)
	if err == nil {
		return nil
	}
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err
	}

	verr := &apperr.ValidationError{}
	for _, e := range validationErrors {
		verr.Add(prefix+e.Field(), describe(e))
	}
	return verr
}

func describe(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "url":
		return "must be a valid URL"
	case "slug":
		return "must contain only letters, digits, hyphens or underscores"
	case "oneof":
		return fmt.Sprintf("must be one of: %s", e.Param())
	case "min", "gte":
		return fmt.Sprintf("must be at least %s", e.Param())
	case "max", "lte":
		return fmt.Sprintf("must be at most %s", e.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", e.Param())
	}
	return fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
}
