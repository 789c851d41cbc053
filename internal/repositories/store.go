package repositories

import "gorm.io/gorm"

// Store bundles the GORM repositories bound to one database handle. Building
// a Store from a transaction makes every repository write inside it.
type Store struct {
	Categories     *GORMCategoryRepository
	Products       *GORMProductRepository
	Users          *GORMUserRepository
	GroupBuys      *GORMGroupBuyRepository
	Participations *GORMParticipationRepository
}

// NewStore creates repositories sharing db.
func NewStore(db *gorm.DB) *Store {
	return &Store{
		Categories:     NewGORMCategoryRepository(db),
		Products:       NewGORMProductRepository(db),
		Users:          NewGORMUserRepository(db),
		GroupBuys:      NewGORMGroupBuyRepository(db),
		Participations: NewGORMParticipationRepository(db),
	}
}
