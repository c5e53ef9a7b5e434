package models

import "time"

// Transaction is a single income or expense entry. Amount is a non-negative
// integer in the smallest currency unit; CreatedAtMs is the client-facing
// event time in milliseconds (server-assigned at insert when absent).
// Transactions are deliberately NOT deduplicated: identical entries on the
// same day are legitimate.
type Transaction struct {
	ID         uint `gorm:"primaryKey"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
	BookID     uint   `gorm:"not null;index"`
	WalletID   uint   `gorm:"not null;index"`
	CategoryID uint   `gorm:"not null;index"`
	Type       string `gorm:"size:16;not null"`
	Amount     int64  `gorm:"not null"`
	Note       string `gorm:"size:500"`
	// event time in ms, ordering key for listings
	CreatedAtMs int64 `gorm:"index;not null"`
	// opaque receipt image reference
	ImageURL string `gorm:"size:512"`

	Book     Book     `gorm:"foreignKey:BookID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	Wallet   Wallet   `gorm:"foreignKey:WalletID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	Category Category `gorm:"foreignKey:CategoryID;constraint:OnUpdate:CASCADE;" json:"-"`
}
