package services

import (
	"context"
	"fmt"
	"time"

	"dungji/internal/apperr"
	"dungji/internal/models"
	"dungji/internal/repositories"

	"github.com/dgrijalva/jwt-go"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

// Token types carried in the token_type claim.
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// TokenPair is the result of a successful login.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// AuthService handles business logic for authentication and authorization.
type AuthService struct {
	userRepo   repositories.UserRepository
	jwtSecret  []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	log        *logrus.Logger
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repositories.UserRepository, jwtSecret string, accessTTL, refreshTTL time.Duration, log *logrus.Logger) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		jwtSecret:  []byte(jwtSecret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		log:        log,
	}
}

// Login authenticates a user and returns an access/refresh token pair.
func (s *AuthService) Login(ctx context.Context, username, password string) (*TokenPair, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		if !apperr.IsNotFound(err) {
			return nil, err
		}
		// Do not reveal whether the username exists.
		return nil, apperr.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, apperr.ErrInvalidCredentials
	}

	pair, err := s.IssueTokens(user)
	if err != nil {
		return nil, err
	}
	s.log.Infof("User %s logged in", user.Username)
	return pair, nil
}

// IssueTokens signs a fresh token pair for user.
func (s *AuthService) IssueTokens(user *models.User) (*TokenPair, error) {
	access, err := s.sign(user, TokenTypeAccess, s.accessTTL)
	if err != nil {
		return nil, err
	}
	refresh, err := s.sign(user, TokenTypeRefresh, s.refreshTTL)
	if err != nil {
		return nil, err
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// Refresh exchanges a valid refresh token for a new access token. The user
// must still exist.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	claims, err := s.ValidateToken(refreshToken, TokenTypeRefresh)
	if err != nil {
		return "", err
	}
	userID, _ := claims["user_id"].(string)
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if apperr.IsNotFound(err) {
			return "", &apperr.AuthenticationError{Reason: "invalid token: user no longer exists"}
		}
		return "", err
	}
	return s.sign(user, TokenTypeAccess, s.accessTTL)
}

// ValidateAccessToken validates a token presented on an API request.
func (s *AuthService) ValidateAccessToken(tokenString string) (jwt.MapClaims, error) {
	return s.ValidateToken(tokenString, TokenTypeAccess)
}

// ValidateToken parses and validates a JWT token of the given type,
// returning the claims if valid.
func (s *AuthService) ValidateToken(tokenString, tokenType string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		// Validate the alg is what we expect:
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		s.log.Debugf("Token validation error: %v", err)
		return nil, &apperr.AuthenticationError{Reason: fmt.Sprintf("invalid token: %v", err)}
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, &apperr.AuthenticationError{Reason: "invalid token"}
	}
	if claims["token_type"] != tokenType {
		return nil, &apperr.AuthenticationError{Reason: fmt.Sprintf("invalid token: expected %s token", tokenType)}
	}
	return claims, nil
}

func (s *AuthService) sign(user *models.User, tokenType string, ttl time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":    user.ID,
		"username":   user.Username,
		"role":       string(user.Role),
		"token_type": tokenType,
		"jti":        uuid.New().String(),
		"exp":        now.Add(ttl).Unix(),
		"iat":        now.Unix(),
	})

	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return tokenString, nil
}
