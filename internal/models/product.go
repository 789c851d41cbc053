package models

import "time"

// Product represents a sellable item listed under a category.
type Product struct {
	ID          string      `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name        string      `json:"name" gorm:"type:varchar(200);not null"`
	Slug        string      `json:"slug" gorm:"type:varchar(200);index;not null"`
	Description string      `json:"description" gorm:"type:text"`
	CategoryID  string      `json:"category_id" gorm:"type:varchar(36);not null;index"`
	Category    *Category   `json:"-"`
	ProductType ProductType `json:"product_type" gorm:"type:varchar(20);not null"`
	BasePrice   int64       `json:"base_price" gorm:"not null"` // in won
	ImageURL    string      `json:"image_url" gorm:"type:varchar(500)"`
	IsAvailable bool        `json:"is_available" gorm:"not null"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}
