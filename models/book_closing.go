package models

import "time"

// BookClosing is an append-only snapshot of a book's balance for a reporting
// period. Mobile clients cache these, so deletion is a tombstone (is_deleted)
// rather than a row removal. FinalBalance stays double precision to match the
// client schema; it is a reported snapshot and never feeds balance math.
type BookClosing struct {
	ID          uint `gorm:"primaryKey"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
	BookID      uint   `gorm:"not null;index"`
	PeriodStart int64  `gorm:"not null"` // ms
	PeriodEnd   int64  `gorm:"not null"` // ms
	PeriodLabel string `gorm:"size:255;not null"`
	ClosedAt    int64  `gorm:"not null"` // ms
	FinalBalance float64
	IsVerified   bool   `gorm:"default:false;not null"`
	Notes        string `gorm:"type:text"`
	IsDeleted    bool   `gorm:"default:false;not null;index"`
	// client-side timestamps, ms
	CreatedAtMs *int64
	UpdatedAtMs *int64

	Book Book `gorm:"foreignKey:BookID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
}
