package models

import "time"

// User owns books; everything below a book is reached through it.
type User struct {
	ID             uint `gorm:"primaryKey"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
	Name           string `gorm:"size:255;not null"`
	Email          string `gorm:"size:255;not null;uniqueIndex"`
	HashedPassword []byte `gorm:"not null" json:"-"`
	// PhotoURL is an opaque reference into file storage; the backend never
	// interprets the bytes behind it.
	PhotoURL string `gorm:"size:512"`
	// Preferences is a free-form settings bag (currency, language, theme,
	// notifications_enabled) persisted as JSON.
	Preferences map[string]any `gorm:"serializer:json"`
	Books       []Book         `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}
