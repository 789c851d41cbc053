// Package seed fills a development database with a fixed marketplace
// catalogue, two accounts and four open group buys.
package seed

import (
	"context"
	"errors"
	"fmt"
	"time"

	"dungji/internal/config"
	"dungji/internal/models"
	"dungji/internal/repositories"
	"dungji/internal/services"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Password shared by the seeded accounts.
const Password = "testpassword123"

// Seeded usernames.
const (
	TestUsername      = "test@example.com"
	OrganizerUsername = "organizer@example.com"
)

// ErrProductionGuard is returned when seeding a production database
// without force.
var ErrProductionGuard = errors.New("refusing to seed a production database; pass --force to override")

// Guard refuses seeding in production unless force is set.
func Guard(env string, force bool) error {
	if env == config.EnvProduction && !force {
		return ErrProductionGuard
	}
	return nil
}

// Summary counts what a run stored.
type Summary struct {
	Categories     int
	Products       int
	UsersCreated   int
	GroupBuys      int
	Participations int
	TestUserID     string
	GroupBuyIDs    []string
}

// Seeder replaces the catalogue and group buys with the fixed data set.
type Seeder struct {
	db  *gorm.DB
	log *logrus.Logger
	now func() time.Time
}

// New creates a Seeder writing to db.
func New(db *gorm.DB, log *logrus.Logger) *Seeder {
	return &Seeder{db: db, log: log, now: time.Now}
}

type categorySeed struct {
	name, slug string
	children   []categorySeed
}

var categories = []categorySeed{
	{name: "전자기기", slug: "electronics", children: []categorySeed{
		{name: "스마트폰", slug: "smartphones"},
		{name: "노트북", slug: "laptops"},
	}},
	{name: "패션", slug: "fashion", children: []categorySeed{
		{name: "의류", slug: "clothes"},
		{name: "신발", slug: "shoes"},
	}},
	{name: "식품", slug: "food", children: []categorySeed{
		{name: "과일", slug: "fruits"},
		{name: "채소", slug: "vegetables"},
	}},
}

type productSeed struct {
	name, description, category, imageURL string
	basePrice                             int64
}

var products = []productSeed{
	{
		name:        "아이폰 15 Pro",
		description: "어디서나 등장하는 프로급 성능과 디자인. 새로운 티타늄 디자인과 A17 Pro 칩으로 업그레이드된 아이폰 15 Pro.",
		category:    "smartphones",
		imageURL:    "https://example.com/iphone15.jpg",
		basePrice:   1500000,
	},
	{
		name:        "갤럭시 S24 Ultra",
		description: "삼성의 최신 플래그십 스마트폰. Galaxy AI를 탑재한 혁신적인 기능들과 함께.",
		category:    "smartphones",
		imageURL:    "https://example.com/s24.jpg",
		basePrice:   1700000,
	},
	{
		name:        "맥북 프로 M3",
		description: "M3 칩으로 더욱 강력해진 맥북 프로. 전문가를 위한 최고의 성능과 뛰어난 배터리 지속시간.",
		category:    "laptops",
		imageURL:    "https://example.com/macbook.jpg",
		basePrice:   2500000,
	},
	{
		name:        "노스페이스 패딩",
		description: "최고의 따뜻함과 스타일을 동시에. 겨울을 따뜻하게 날 수 있는 노스페이스의 인기 패딩.",
		category:    "clothes",
		imageURL:    "https://example.com/padding.jpg",
		basePrice:   300000,
	},
}

// groupBuySeed refers to products by index. The participant counter is
// stored as given, independent of the memberships added afterwards.
type groupBuySeed struct {
	product           int
	min, max, current int
	endsIn            time.Duration
	targetPrice       int64
	withTestUser      bool
}

var groupBuys = []groupBuySeed{
	{product: 0, min: 3, max: 10, current: 8, endsIn: 12 * time.Hour, targetPrice: 1300000, withTestUser: true},
	{product: 1, min: 5, max: 15, current: 2, endsIn: 7 * 24 * time.Hour, targetPrice: 1500000, withTestUser: true},
	{product: 2, min: 4, max: 12, current: 5, endsIn: 3 * 24 * time.Hour, targetPrice: 2200000},
	{product: 3, min: 5, max: 20, current: 18, endsIn: 5 * 24 * time.Hour, targetPrice: 250000},
}

// Run clears categories, products, group buys and memberships, then stores
// the data set. Accounts are reused when they exist. Everything happens in
// one transaction, so a failed run leaves the database untouched.
func (s *Seeder) Run(ctx context.Context) (*Summary, error) {
	summary := &Summary{}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		store := repositories.NewStore(tx)

		if err := s.clear(tx); err != nil {
			return err
		}
		categoryIDs, err := s.seedCategories(ctx, store, summary)
		if err != nil {
			return err
		}
		productIDs, err := s.seedProducts(ctx, store, categoryIDs, summary)
		if err != nil {
			return err
		}
		testUser, organizer, err := s.seedUsers(ctx, store, summary)
		if err != nil {
			return err
		}
		summary.TestUserID = testUser.ID
		return s.seedGroupBuys(ctx, store, productIDs, testUser, organizer, summary)
	})
	if err != nil {
		return nil, fmt.Errorf("seeding failed, nothing was stored: %w", err)
	}
	s.log.WithFields(logrus.Fields{
		"categories":     summary.Categories,
		"products":       summary.Products,
		"group_buys":     summary.GroupBuys,
		"participations": summary.Participations,
	}).Info("Test data created")
	return summary, nil
}

func (s *Seeder) clear(tx *gorm.DB) error {
	all := tx.Session(&gorm.Session{AllowGlobalUpdate: true})
	for _, model := range []interface{}{
		&models.Participation{},
		&models.GroupBuy{},
		&models.Product{},
		&models.Category{},
	} {
		if err := all.Delete(model).Error; err != nil {
			return fmt.Errorf("failed to clear %T: %w", model, err)
		}
	}
	s.log.Debug("Existing catalogue cleared")
	return nil
}

func (s *Seeder) seedCategories(ctx context.Context, store *repositories.Store, summary *Summary) (map[string]string, error) {
	service := services.NewCategoryService(store.Categories, s.log)
	ids := make(map[string]string)

	var create func(seeds []categorySeed, parentID *string) error
	create = func(seeds []categorySeed, parentID *string) error {
		for _, seed := range seeds {
			category := &models.Category{Name: seed.name, Slug: seed.slug, ParentID: parentID}
			if err := service.CreateCategory(ctx, category); err != nil {
				return fmt.Errorf("category %s: %w", seed.slug, err)
			}
			ids[seed.slug] = category.ID
			summary.Categories++
			if err := create(seed.children, &category.ID); err != nil {
				return err
			}
		}
		return nil
	}
	if err := create(categories, nil); err != nil {
		return nil, err
	}
	return ids, nil
}

func (s *Seeder) seedProducts(ctx context.Context, store *repositories.Store, categoryIDs map[string]string, summary *Summary) ([]string, error) {
	batch := make([]models.Product, len(products))
	for i, seed := range products {
		batch[i] = models.Product{
			Name:        seed.name,
			Description: seed.description,
			CategoryID:  categoryIDs[seed.category],
			ProductType: models.ProductTypeDevice,
			BasePrice:   seed.basePrice,
			ImageURL:    seed.imageURL,
			IsAvailable: true,
		}
	}

	service := services.NewProductService(store.Products, store.Categories, s.log)
	if err := service.CreateProducts(ctx, batch); err != nil {
		return nil, fmt.Errorf("products: %w", err)
	}

	ids := make([]string, len(batch))
	for i := range batch {
		ids[i] = batch[i].ID
	}
	summary.Products = len(batch)
	return ids, nil
}

func (s *Seeder) seedUsers(ctx context.Context, store *repositories.Store, summary *Summary) (*models.User, *models.User, error) {
	service := services.NewUserService(store.Users, s.log)

	testUser, created, err := service.GetOrCreateUser(ctx, services.GetOrCreateUserInput{
		Username:    TestUsername,
		Email:       TestUsername,
		Password:    Password,
		FirstName:   "Test User",
		Role:        models.RoleBuyer,
		PhoneNumber: "010-1234-5678",
	})
	if err != nil {
		return nil, nil, fmt.Errorf("test user: %w", err)
	}
	if created {
		summary.UsersCreated++
	}

	organizer, created, err := service.GetOrCreateUser(ctx, services.GetOrCreateUserInput{
		Username:  OrganizerUsername,
		Email:     OrganizerUsername,
		Password:  Password,
		FirstName: "공구장",
		Role:      models.RoleSeller,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("organizer: %w", err)
	}
	if created {
		summary.UsersCreated++
	}
	return testUser, organizer, nil
}

func (s *Seeder) seedGroupBuys(ctx context.Context, store *repositories.Store, productIDs []string, testUser, organizer *models.User, summary *Summary) error {
	service := services.NewGroupBuyService(store.GroupBuys, store.Products, store.Users, nil, s.log)
	now := s.now()

	for i, seed := range groupBuys {
		gb := &models.GroupBuy{
			ProductID:           productIDs[seed.product],
			CreatorID:           organizer.ID,
			MinParticipants:     seed.min,
			MaxParticipants:     seed.max,
			CurrentParticipants: seed.current,
			EndTime:             now.Add(seed.endsIn),
			TargetPrice:         seed.targetPrice,
			Status:              models.StatusRecruiting,
		}
		if err := service.CreateGroupBuy(ctx, gb, now); err != nil {
			return fmt.Errorf("group buy %d: %w", i, err)
		}
		summary.GroupBuys++
		summary.GroupBuyIDs = append(summary.GroupBuyIDs, gb.ID)

		if !seed.withTestUser {
			continue
		}
		added, err := service.AddParticipant(ctx, gb.ID, testUser.ID)
		if err != nil {
			return fmt.Errorf("group buy %d participant: %w", i, err)
		}
		if added {
			summary.Participations++
		}
	}
	return nil
}
