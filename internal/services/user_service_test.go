package services_test

import (
	"context"
	"testing"

	"dungji/internal/apperr"
	"dungji/internal/models"
	"dungji/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestUserService_GetOrCreateUser(t *testing.T) {
	ctx := context.Background()
	in := services.GetOrCreateUserInput{
		Username:    "test@example.com",
		Email:       "test@example.com",
		Password:    "testpassword123",
		FirstName:   "Test User",
		Role:        models.RoleBuyer,
		PhoneNumber: "010-1234-5678",
	}

	t.Run("existing user is returned untouched", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		existing := &models.User{ID: "u1", Username: in.Username}
		mockRepo.On("GetByUsername", mock.Anything, in.Username).Return(existing, nil).Once()

		user, created, err := services.NewUserService(mockRepo, quietLogger()).GetOrCreateUser(ctx, in)
		require.NoError(t, err)
		assert.False(t, created)
		assert.Same(t, existing, user)
		mockRepo.AssertExpectations(t)
	})

	t.Run("missing user is created with a hashed password", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		mockRepo.On("GetByUsername", mock.Anything, in.Username).
			Return(nil, apperr.NewNotFound("user", in.Username)).Once()
		mockRepo.On("GetOrCreate", mock.Anything, mock.MatchedBy(func(u *models.User) bool {
			return u.Username == in.Username &&
				u.Role == models.RoleBuyer &&
				bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(in.Password)) == nil
		}), in.PhoneNumber).Return(&models.User{ID: "u1", Username: in.Username}, true, nil).Once()

		user, created, err := services.NewUserService(mockRepo, quietLogger()).GetOrCreateUser(ctx, in)
		require.NoError(t, err)
		assert.True(t, created)
		assert.Equal(t, "u1", user.ID)
		mockRepo.AssertExpectations(t)
	})

	t.Run("invalid input is rejected before storage", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		bad := in
		bad.Username = "organizer"
		bad.Role = "admin"
		mockRepo.On("GetByUsername", mock.Anything, bad.Username).
			Return(nil, apperr.NewNotFound("user", bad.Username)).Once()

		_, _, err := services.NewUserService(mockRepo, quietLogger()).GetOrCreateUser(ctx, bad)
		var verr *apperr.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Contains(t, verr.Fields, "username")
		assert.Contains(t, verr.Fields, "role")
		mockRepo.AssertNotCalled(t, "GetOrCreate", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestUserService_RegisterUser(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockUserRepository)
	service := services.NewUserService(mockRepo, quietLogger())

	in := services.RegisterInput{Username: "new@example.com", Password: "password123"}

	// Test successful registration
	mockRepo.On("GetByUsername", mock.Anything, in.Username).
		Return(nil, apperr.NewNotFound("user", in.Username)).Once()
	mockRepo.On("Create", mock.Anything, mock.AnythingOfType("*models.User")).Return(nil).Once()
	user, err := service.RegisterUser(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, models.RoleBuyer, user.Role)
	assert.Equal(t, in.Username, user.Email)
	assert.NotEqual(t, in.Password, user.Password)

	// Test username already taken
	mockRepo.On("GetByUsername", mock.Anything, in.Username).Return(&models.User{ID: "1"}, nil).Once()
	_, err = service.RegisterUser(ctx, in)
	var verr *apperr.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "username")

	// Test short password
	_, err = service.RegisterUser(ctx, services.RegisterInput{Username: "x@example.com", Password: "short"})
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "password")

	mockRepo.AssertExpectations(t)
}

func TestUserService_SNSLogin(t *testing.T) {
	ctx := context.Background()
	in := services.SNSLoginInput{Provider: "kakao", SNSID: "12345", Email: "kakao@example.com", Name: "카카오"}

	t.Run("known identity", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		existing := &models.User{ID: "u1"}
		mockRepo.On("GetBySNS", mock.Anything, "kakao", "12345").Return(existing, nil).Once()

		user, created, err := services.NewUserService(mockRepo, quietLogger()).SNSLogin(ctx, in)
		require.NoError(t, err)
		assert.False(t, created)
		assert.Same(t, existing, user)
		mockRepo.AssertExpectations(t)
	})

	t.Run("registered email is refused", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		existing := &models.User{ID: "u1", Email: in.Email}
		mockRepo.On("GetBySNS", mock.Anything, "kakao", "12345").Return(nil, apperr.NewNotFound("user", "kakao:12345")).Once()
		mockRepo.On("GetByEmail", mock.Anything, in.Email).Return(existing, nil).Once()

		user, _, err := services.NewUserService(mockRepo, quietLogger()).SNSLogin(ctx, in)
		var verr *apperr.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Contains(t, verr.Fields, "email")
		assert.Nil(t, user)
		assert.Nil(t, existing.SNSProvider)
		mockRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
		mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		mockRepo.AssertExpectations(t)
	})

	t.Run("new buyer with email", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		mockRepo.On("GetBySNS", mock.Anything, "kakao", "12345").Return(nil, apperr.NewNotFound("user", "kakao:12345")).Once()
		mockRepo.On("GetByEmail", mock.Anything, in.Email).Return(nil, apperr.NewNotFound("user", in.Email)).Once()
		mockRepo.On("Create", mock.Anything, mock.AnythingOfType("*models.User")).Return(nil).Once()

		user, created, err := services.NewUserService(mockRepo, quietLogger()).SNSLogin(ctx, in)
		require.NoError(t, err)
		assert.True(t, created)
		assert.Equal(t, in.Email, user.Username)
		require.NotNil(t, user.SNSProvider)
		assert.Equal(t, "kakao", *user.SNSProvider)
		mockRepo.AssertExpectations(t)
	})

	t.Run("new buyer without email", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		noEmail := in
		noEmail.Email = ""
		mockRepo.On("GetBySNS", mock.Anything, "kakao", "12345").Return(nil, apperr.NewNotFound("user", "kakao:12345")).Once()
		mockRepo.On("Create", mock.Anything, mock.AnythingOfType("*models.User")).Return(nil).Once()

		user, created, err := services.NewUserService(mockRepo, quietLogger()).SNSLogin(ctx, noEmail)
		require.NoError(t, err)
		assert.True(t, created)
		assert.Equal(t, "kakao_12345@sns.local", user.Username)
		assert.Equal(t, models.RoleBuyer, user.Role)
		assert.Equal(t, "카카오", user.FirstName)
		mockRepo.AssertNotCalled(t, "GetByEmail", mock.Anything, mock.Anything)
		mockRepo.AssertExpectations(t)
	})

	t.Run("provider and id are required", func(t *testing.T) {
		_, _, err := services.NewUserService(new(MockUserRepository), quietLogger()).SNSLogin(ctx, services.SNSLoginInput{})
		var verr *apperr.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Contains(t, verr.Fields, "provider")
		assert.Contains(t, verr.Fields, "sns_id")
	})
}

func TestUserService_UpdateProfile(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockUserRepository)
	service := services.NewUserService(mockRepo, quietLogger())

	stored := &models.User{ID: "u1", Username: "test@example.com", FirstName: "Test User", Role: models.RoleBuyer}
	mockRepo.On("GetByID", mock.Anything, "u1").Return(stored, nil)
	mockRepo.On("Update", mock.Anything, stored).Return(nil).Once()

	name := "New Name"
	user, err := service.UpdateProfile(ctx, "u1", services.ProfileUpdate{FirstName: &name})
	require.NoError(t, err)
	assert.Equal(t, "New Name", user.FirstName)
	assert.Equal(t, "test@example.com", user.Username)

	badEmail := "not-an-email"
	_, err = service.UpdateProfile(ctx, "u1", services.ProfileUpdate{Email: &badEmail})
	assert.True(t, apperr.IsValidation(err))

	mockRepo.AssertExpectations(t)
}
