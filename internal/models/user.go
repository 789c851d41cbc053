package models

import "time"

// User represents a marketplace account. Username is email-shaped.
type User struct {
	ID           string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Username     string    `json:"username" gorm:"uniqueIndex;type:varchar(150);not null"`
	Email        string    `json:"email" gorm:"type:varchar(255);index"`
	Password     string    `json:"-" gorm:"type:varchar(255);not null"` // bcrypt hash
	FirstName    string    `json:"first_name" gorm:"type:varchar(150)"`
	Role         Role      `json:"role" gorm:"type:varchar(10);not null"`
	PhoneNumber  string    `json:"phone_number" gorm:"type:varchar(20)"`
	ProfileImage string    `json:"profile_image" gorm:"type:varchar(500)"`
	SNSProvider  *string   `json:"sns_provider,omitempty" gorm:"type:varchar(20);uniqueIndex:idx_users_sns"`
	SNSID        *string   `json:"-" gorm:"type:varchar(100);uniqueIndex:idx_users_sns"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
