package models

import "time"

// GroupBuy is a time-boxed campaign in which participants commit to buy one
// product together at TargetPrice.
type GroupBuy struct {
	ID                  string         `json:"id" gorm:"primaryKey;type:varchar(36)"`
	ProductID           string         `json:"product_id" gorm:"type:varchar(36);not null;index"`
	Product             *Product       `json:"-"`
	CreatorID           string         `json:"creator_id" gorm:"type:varchar(36);not null;index"`
	Creator             *User          `json:"-"`
	MinParticipants     int            `json:"min_participants" gorm:"not null"`
	MaxParticipants     int            `json:"max_participants" gorm:"not null"`
	CurrentParticipants int            `json:"current_participants" gorm:"not null"`
	EndTime             time.Time      `json:"end_time" gorm:"not null"`
	TargetPrice         int64          `json:"target_price" gorm:"not null"`
	Status              GroupBuyStatus `json:"status" gorm:"type:varchar(20);not null;index"`
	// ParticipantIDs is filled from the participations table on reads.
	ParticipantIDs []string  `json:"participants" gorm:"-"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Participation records that a user joined a group buy. A user joins a given
// group buy at most once.
type Participation struct {
	ID         string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	GroupBuyID string    `json:"groupbuy_id" gorm:"type:varchar(36);not null;uniqueIndex:idx_participations_member"`
	GroupBuy   *GroupBuy `json:"-"`
	UserID     string    `json:"user_id" gorm:"type:varchar(36);not null;uniqueIndex:idx_participations_member;index"`
	User       *User     `json:"-"`
	JoinedAt   time.Time `json:"joined_at" gorm:"not null"`
}

// All lists every persisted model in dependency order, for migrations.
func All() []interface{} {
	return []interface{}{
		&Category{},
		&Product{},
		&User{},
		&GroupBuy{},
		&Participation{},
	}
}
