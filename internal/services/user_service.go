package services

import (
	"context"
	"errors"
	"fmt"

	"dungji/internal/apperr"
	"dungji/internal/models"
	"dungji/internal/repositories"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 8

// GetOrCreateUserInput describes the account GetOrCreateUser creates when
// Username is not taken yet.
type GetOrCreateUserInput struct {
	Username    string
	Email       string
	Password    string
	FirstName   string
	Role        models.Role
	PhoneNumber string
}

// RegisterInput is a self-service sign-up.
type RegisterInput struct {
	Username    string
	Email       string
	Password    string
	FirstName   string
	Role        models.Role
	PhoneNumber string
}

// SNSLoginInput is an identity asserted by an external provider.
type SNSLoginInput struct {
	Provider     string
	SNSID        string
	Email        string
	Name         string
	ProfileImage string
}

// ProfileUpdate holds the profile fields a user may change. Nil fields are
// left as they are.
type ProfileUpdate struct {
	FirstName    *string
	Email        *string
	PhoneNumber  *string
	ProfileImage *string
}

// UserService handles account creation and profiles.
type UserService struct {
	repo     repositories.UserRepository
	validate *validator.Validate
	log      *logrus.Logger
}

// NewUserService creates a new UserService.
func NewUserService(repo repositories.UserRepository, log *logrus.Logger) *UserService {
	return &UserService{
		repo:     repo,
		validate: validator.New(),
		log:      log,
	}
}

// GetOrCreateUser returns the user with in.Username, creating it when it does
// not exist. The boolean reports whether a user was created.
func (s *UserService) GetOrCreateUser(ctx context.Context, in GetOrCreateUserInput) (*models.User, bool, error) {
	existing, err := s.repo.GetByUsername(ctx, in.Username)
	if err == nil {
		return existing, false, nil
	}
	if !apperr.IsNotFound(err) {
		return nil, false, err
	}

	if err := s.checkAccount(in.Username, in.Email, in.Password, in.Role); err != nil {
		return nil, false, err
	}
	hashed, err := hashPassword(in.Password)
	if err != nil {
		return nil, false, err
	}

	user := &models.User{
		Username:  in.Username,
		Email:     in.Email,
		Password:  hashed,
		FirstName: in.FirstName,
		Role:      in.Role,
	}
	result, created, err := s.repo.GetOrCreate(ctx, user, in.PhoneNumber)
	if err != nil {
		return nil, false, err
	}
	if created {
		s.log.Infof("User %s created with role %s", result.Username, result.Role)
	}
	return result, created, nil
}

// RegisterUser registers a new user, hashes their password, and saves them to the database.
func (s *UserService) RegisterUser(ctx context.Context, in RegisterInput) (*models.User, error) {
	if in.Email == "" {
		in.Email = in.Username
	}
	if in.Role == "" {
		in.Role = models.RoleBuyer
	}
	if err := s.checkAccount(in.Username, in.Email, in.Password, in.Role); err != nil {
		return nil, err
	}

	if existing, err := s.repo.GetByUsername(ctx, in.Username); err == nil && existing != nil {
		return nil, apperr.NewValidation("username", "a user with that username already exists")
	} else if err != nil && !apperr.IsNotFound(err) {
		return nil, err
	}

	hashed, err := hashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	user := &models.User{
		Username:    in.Username,
		Email:       in.Email,
		Password:    hashed,
		FirstName:   in.FirstName,
		Role:        in.Role,
		PhoneNumber: in.PhoneNumber,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}
	s.log.Infof("User %s registered", user.Username)
	return user, nil
}

// SNSLogin resolves an external identity to a user. Known identities return
// their user; otherwise a buyer account is created. An unknown identity is
// never attached to an existing account, so an email that is already
// registered is refused. The boolean reports creation.
func (s *UserService) SNSLogin(ctx context.Context, in SNSLoginInput) (*models.User, bool, error) {
	verr := &apperr.ValidationError{}
	if in.Provider == "" {
		verr.Add("provider", "is required")
	}
	if in.SNSID == "" {
		verr.Add("sns_id", "is required")
	}
	if in.Email != "" && s.validate.Var(in.Email, "email") != nil {
		verr.Add("email", "must be a valid email address")
	}
	if err := verr.OrNil(); err != nil {
		return nil, false, err
	}

	user, err := s.repo.GetBySNS(ctx, in.Provider, in.SNSID)
	if err == nil {
		return user, false, nil
	}
	if !apperr.IsNotFound(err) {
		return nil, false, err
	}

	if in.Email != "" {
		user, err := s.repo.GetByEmail(ctx, in.Email)
		switch {
		case err == nil:
			s.log.Warnf("Refused %s login for registered email of user %s", in.Provider, user.ID)
			return nil, false, apperr.NewValidation("email", "already registered; log in with your password")
		case !apperr.IsNotFound(err):
			return nil, false, err
		}
	}

	username := in.Email
	if username == "" {
		username = fmt.Sprintf("%s_%s@sns.local", in.Provider, in.SNSID)
	}
	// Nobody knows this password, so the account can only sign in through
	// its provider.
	hashed, err := hashPassword(uuid.New().String())
	if err != nil {
		return nil, false, err
	}
	user = &models.User{
		Username:     username,
		Email:        in.Email,
		Password:     hashed,
		FirstName:    in.Name,
		Role:         models.RoleBuyer,
		ProfileImage: in.ProfileImage,
		SNSProvider:  &in.Provider,
		SNSID:        &in.SNSID,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, false, err
	}
	s.log.Infof("User %s created from %s login", user.Username, in.Provider)
	return user, true, nil
}

// GetProfile retrieves the user with id.
func (s *UserService) GetProfile(ctx context.Context, id string) (*models.User, error) {
	return s.repo.GetByID(ctx, id)
}

// UpdateProfile applies update to the user with id. Username and role
// cannot change.
func (s *UserService) UpdateProfile(ctx context.Context, id string, update ProfileUpdate) (*models.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if update.Email != nil && *update.Email != "" && s.validate.Var(*update.Email, "email") != nil {
		return nil, apperr.NewValidation("email", "must be a valid email address")
	}

	if update.FirstName != nil {
		user.FirstName = *update.FirstName
	}
	if update.Email != nil {
		user.Email = *update.Email
	}
	if update.PhoneNumber != nil {
		user.PhoneNumber = *update.PhoneNumber
	}
	if update.ProfileImage != nil {
		user.ProfileImage = *update.ProfileImage
	}
	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}
	s.log.Infof("Profile of user %s updated", user.Username)
	return user, nil
}

func (s *UserService) checkAccount(username, email, password string, role models.Role) error {
	verr := &apperr.ValidationError{}
	if s.validate.Var(username, "required,email") != nil {
		verr.Add("username", "must be an email address")
	}
	if email != "" && s.validate.Var(email, "email") != nil {
		verr.Add("email", "must be a valid email address")
	}
	if len(password) < minPasswordLength {
		verr.Add("password", fmt.Sprintf("must be at least %d characters", minPasswordLength))
	}
	if !role.Valid() {
		verr.Add("role", fmt.Sprintf("unknown role %q", role))
	}
	return verr.OrNil()
}

func hashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", apperr.NewValidation("password", "is too long")
		}
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}
