package services_test

import (
	"context"
	"io"
	"time"

	"dungji/internal/models"
	"dungji/internal/repositories"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/mock"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

// MockCategoryRepository is a mock implementation of repositories.CategoryRepository
type MockCategoryRepository struct {
	mock.Mock
}

func (m *MockCategoryRepository) GetAll(ctx context.Context, filter repositories.CategoryFilter) ([]models.Category, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]models.Category), args.Error(1)
}

func (m *MockCategoryRepository) GetByID(ctx context.Context, id string) (*models.Category, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Category), args.Error(1)
}

func (m *MockCategoryRepository) Create(ctx context.Context, category *models.Category) error {
	return m.Called(ctx, category).Error(0)
}

func (m *MockCategoryRepository) Update(ctx context.Context, category *models.Category) error {
	return m.Called(ctx, category).Error(0)
}

func (m *MockCategoryRepository) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

// MockProductRepository is a mock implementation of repositories.ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) GetAll(ctx context.Context, filter repositories.ProductFilter) ([]models.Product, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]models.Product), args.Error(1)
}

func (m *MockProductRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *MockProductRepository) Create(ctx context.Context, product *models.Product) error {
	return m.Called(ctx, product).Error(0)
}

func (m *MockProductRepository) CreateBatch(ctx context.Context, products []models.Product) error {
	return m.Called(ctx, products).Error(0)
}

func (m *MockProductRepository) Update(ctx context.Context, product *models.Product) error {
	return m.Called(ctx, product).Error(0)
}

func (m *MockProductRepository) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

// MockUserRepository is a mock implementation of repositories.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockUserRepository) GetOrCreate(ctx context.Context, user *models.User, phoneNumber string) (*models.User, bool, error) {
	args := m.Called(ctx, user, phoneNumber)
	if args.Get(0) == nil {
		return nil, false, args.Error(2)
	}
	return args.Get(0).(*models.User), args.Bool(1), args.Error(2)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	return m.user(m.Called(ctx, id))
}

func (m *MockUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return m.user(m.Called(ctx, username))
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return m.user(m.Called(ctx, email))
}

func (m *MockUserRepository) GetBySNS(ctx context.Context, provider, snsID string) (*models.User, error) {
	return m.user(m.Called(ctx, provider, snsID))
}

func (m *MockUserRepository) Update(ctx context.Context, user *models.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockUserRepository) user(args mock.Arguments) (*models.User, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

// MockGroupBuyRepository is a mock implementation of repositories.GroupBuyRepository
type MockGroupBuyRepository struct {
	mock.Mock
}

func (m *MockGroupBuyRepository) GetAll(ctx context.Context, filter repositories.GroupBuyFilter) ([]models.GroupBuy, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]models.GroupBuy), args.Error(1)
}

func (m *MockGroupBuyRepository) GetByID(ctx context.Context, id string) (*models.GroupBuy, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.GroupBuy), args.Error(1)
}

func (m *MockGroupBuyRepository) Create(ctx context.Context, groupBuy *models.GroupBuy) error {
	return m.Called(ctx, groupBuy).Error(0)
}

// Modify applies change to a copy of the group buy given as the first return
// value, as the GORM repository does to the stored row.
func (m *MockGroupBuyRepository) Modify(ctx context.Context, id string, change func(*models.GroupBuy) error) (*models.GroupBuy, error) {
	args := m.Called(ctx, id, change)
	stored, _ := args.Get(0).(*models.GroupBuy)
	if stored == nil {
		return nil, args.Error(1)
	}
	gb := *stored
	if err := change(&gb); err != nil {
		return nil, err
	}
	return &gb, args.Error(1)
}

func (m *MockGroupBuyRepository) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockGroupBuyRepository) AddParticipant(ctx context.Context, groupBuyID, userID string, joinedAt time.Time) (bool, error) {
	args := m.Called(ctx, groupBuyID, userID, joinedAt)
	return args.Bool(0), args.Error(1)
}

// MockParticipationRepository is a mock implementation of repositories.ParticipationRepository
type MockParticipationRepository struct {
	mock.Mock
}

func (m *MockParticipationRepository) GetAll(ctx context.Context, filter repositories.ParticipationFilter) ([]models.Participation, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]models.Participation), args.Error(1)
}

func (m *MockParticipationRepository) GetByID(ctx context.Context, id string) (*models.Participation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Participation), args.Error(1)
}

// Join runs admit against the group buy given as the third Return value
// before returning the stubbed result.
func (m *MockParticipationRepository) Join(ctx context.Context, p *models.Participation, admit func(*models.GroupBuy) error) (*models.Participation, bool, error) {
	args := m.Called(ctx, p)
	if len(args) > 3 && admit != nil {
		if gb, ok := args.Get(3).(*models.GroupBuy); ok {
			if err := admit(gb); err != nil {
				return nil, false, err
			}
		}
	}
	if args.Get(0) == nil {
		return nil, false, args.Error(2)
	}
	return args.Get(0).(*models.Participation), args.Bool(1), args.Error(2)
}

func (m *MockParticipationRepository) Leave(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

// MockPublisher records published events.
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(exchange, routingKey string, body []byte) error {
	return m.Called(exchange, routingKey, body).Error(0)
}
