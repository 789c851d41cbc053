package handlers

import (
	"dungji/internal/middleware"
	"dungji/internal/models"
	"dungji/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// AuthHandler handles HTTP requests for authentication and profiles.
type AuthHandler struct {
	authService *services.AuthService
	userService *services.UserService
	validate    *validator.Validate
	log         *logrus.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService, userService *services.UserService, log *logrus.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		userService: userService,
		validate:    newValidator(),
		log:         log,
	}
}

// LoginRequest represents the request body for login.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// RefreshRequest represents the request body for a token refresh.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// RegisterRequest represents the request body for sign-up.
type RegisterRequest struct {
	Username    string      `json:"username" validate:"required,email"`
	Email       string      `json:"email" validate:"omitempty,email"`
	Password    string      `json:"password" validate:"required,min=8"`
	FirstName   string      `json:"first_name" validate:"max=150"`
	Role        models.Role `json:"role" validate:"omitempty,oneof=buyer seller"`
	PhoneNumber string      `json:"phone_number" validate:"max=20"`
}

// SNSLoginRequest represents an identity asserted by an external provider.
type SNSLoginRequest struct {
	Provider     string `json:"provider" validate:"required,oneof=kakao naver google apple"`
	SNSID        string `json:"sns_id" validate:"required,max=100"`
	Email        string `json:"email" validate:"omitempty,email"`
	Name         string `json:"name" validate:"max=150"`
	ProfileImage string `json:"profile_image" validate:"omitempty,url"`
}

// ProfileRequest represents the editable profile fields.
type ProfileRequest struct {
	FirstName    *string `json:"first_name" validate:"omitempty,max=150"`
	Email        *string `json:"email" validate:"omitempty,email"`
	PhoneNumber  *string `json:"phone_number" validate:"omitempty,max=20"`
	ProfileImage *string `json:"profile_image" validate:"omitempty,url"`
}

// RegisterRoutes registers the authentication routes. Credential endpoints
// pass through limit; profile endpoints through auth.
func (h *AuthHandler) RegisterRoutes(router fiber.Router, auth, limit fiber.Handler) {
	authRoutes := router.Group("/auth")
	authRoutes.Post("/login", limit, h.HandleLogin)
	authRoutes.Post("/refresh", h.HandleRefresh)
	authRoutes.Post("/register", limit, h.HandleRegister)
	authRoutes.Post("/sns-login", limit, h.HandleSNSLogin)
	authRoutes.Get("/profile", auth, h.HandleGetProfile)
	authRoutes.Put("/profile", auth, h.HandleUpdateProfile)
}

// HandleLogin handles user login and issues an access/refresh token pair.
func (h *AuthHandler) HandleLogin(c *fiber.Ctx) error {
	var req LoginRequest
	if err := parseBody(c, h.validate, &req); err != nil {
		return respondError(c, h.log, err)
	}

	pair, err := h.authService.Login(c.UserContext(), req.Username, req.Password)
	if err != nil {
		h.log.WithField("username", req.Username).Infof("Login failed: %v", err)
		return respondError(c, h.log, err)
	}
	return c.JSON(pair)
}

// HandleRefresh exchanges a refresh token for a new access token.
func (h *AuthHandler) HandleRefresh(c *fiber.Ctx) error {
	var req RefreshRequest
	if err := parseBody(c, h.validate, &req); err != nil {
		return respondError(c, h.log, err)
	}

	access, err := h.authService.Refresh(c.UserContext(), req.RefreshToken)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(fiber.Map{"access_token": access})
}

// HandleRegister handles new user registration.
func (h *AuthHandler) HandleRegister(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := parseBody(c, h.validate, &req); err != nil {
		return respondError(c, h.log, err)
	}

	user, err := h.userService.RegisterUser(c.UserContext(), services.RegisterInput{
		Username:    req.Username,
		Email:       req.Email,
		Password:    req.Password,
		FirstName:   req.FirstName,
		Role:        req.Role,
		PhoneNumber: req.PhoneNumber,
	})
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(user)
}

// HandleSNSLogin signs in, links or creates the account of an external
// identity and issues a token pair. New accounts answer 201.
func (h *AuthHandler) HandleSNSLogin(c *fiber.Ctx) error {
	var req SNSLoginRequest
	if err := parseBody(c, h.validate, &req); err != nil {
		return respondError(c, h.log, err)
	}

	user, created, err := h.userService.SNSLogin(c.UserContext(), services.SNSLoginInput{
		Provider:     req.Provider,
		SNSID:        req.SNSID,
		Email:        req.Email,
		Name:         req.Name,
		ProfileImage: req.ProfileImage,
	})
	if err != nil {
		return respondError(c, h.log, err)
	}
	pair, err := h.authService.IssueTokens(user)
	if err != nil {
		return respondError(c, h.log, err)
	}

	status := fiber.StatusOK
	if created {
		status = fiber.StatusCreated
	}
	return c.Status(status).JSON(fiber.Map{
		"user":          user,
		"access_token":  pair.AccessToken,
		"refresh_token": pair.RefreshToken,
	})
}

// HandleGetProfile returns the caller's account.
func (h *AuthHandler) HandleGetProfile(c *fiber.Ctx) error {
	user, err := h.userService.GetProfile(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(user)
}

// HandleUpdateProfile changes the caller's editable profile fields.
func (h *AuthHandler) HandleUpdateProfile(c *fiber.Ctx) error {
	var req ProfileRequest
	if err := parseBody(c, h.validate, &req); err != nil {
		return respondError(c, h.log, err)
	}

	user, err := h.userService.UpdateProfile(c.UserContext(), middleware.UserID(c), services.ProfileUpdate{
		FirstName:    req.FirstName,
		Email:        req.Email,
		PhoneNumber:  req.PhoneNumber,
		ProfileImage: req.ProfileImage,
	})
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(user)
}
