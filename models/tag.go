package models

import "time"

// Tag is a user-scoped label (unlike categories, tags hang off the user, not
// a book). Deletes are tombstones for client sync.
type Tag struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time
	UserID    uint   `gorm:"not null;uniqueIndex:idx_tags_user_name"`
	Name      string `gorm:"size:255;not null;uniqueIndex:idx_tags_user_name"`
	Color     int    `gorm:"default:0;not null"`
	IsDeleted bool   `gorm:"default:false;not null;index"`
	// client-side timestamps, ms
	CreatedAtMs *int64
	UpdatedAtMs *int64

	User User `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
}
