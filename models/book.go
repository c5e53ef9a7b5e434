package models

import "time"

// Book is a ledger: the top-level container for a user's wallets, categories
// and transactions. The (user_id, name) unique index backs idempotent
// creation for retrying mobile clients.
type Book struct {
	ID          uint `gorm:"primaryKey"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
	UserID      uint   `gorm:"not null;uniqueIndex:idx_books_owner_name"`
	Name        string `gorm:"size:255;not null;uniqueIndex:idx_books_owner_name"`
	Description string `gorm:"size:512"`
	Icon        string `gorm:"size:10"`
	Color       string `gorm:"size:7"`
	// At most one book per user may be default; the store flips siblings
	// inside the same transaction before setting this.
	IsDefault bool `gorm:"default:false;not null"`

	User         User          `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	Wallets      []Wallet      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Categories   []Category    `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Transactions []Transaction `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
}
