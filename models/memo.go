package models

import "time"

// Memo is a free-text note attached to a book. Sync-oriented: deletes are
// tombstones so offline clients can reconcile.
type Memo struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time
	BookID    uint   `gorm:"not null;index"`
	Title     string `gorm:"size:255;not null"`
	Content   string `gorm:"type:text;not null"`
	// comma separated tag names as sent by the client
	Tags      string `gorm:"type:text"`
	Date      int64  `gorm:"not null"` // ms
	IsDeleted bool   `gorm:"default:false;not null;index"`
	// client-side timestamps, ms
	CreatedAtMs *int64
	UpdatedAtMs *int64

	Book Book `gorm:"foreignKey:BookID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
}
