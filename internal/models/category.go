package models

import "time"

// Category is a node of the product taxonomy. The tree is stored as parent
// id references and walked by lookups.
type Category struct {
	ID       string  `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name     string  `json:"name" gorm:"type:varchar(100);not null"`
	Slug     string  `json:"slug" gorm:"uniqueIndex;type:varchar(100);not null"`
	ParentID *string `json:"parent_id" gorm:"type:varchar(36);index"`
	// Parent only declares the foreign key; it is never loaded.
	Parent    *Category `json:"-" gorm:"foreignKey:ParentID"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
