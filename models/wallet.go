package models

import "time"

// Wallet types.
const (
	WalletCash    = "CASH"
	WalletBank    = "BANK"
	WalletEWallet = "E_WALLET"
)

// ValidWalletType reports whether t is a declared wallet type.
func ValidWalletType(t string) bool {
	return t == WalletCash || t == WalletBank || t == WalletEWallet
}

// Wallet is a money-holding account within a book. Balances are in the
// smallest currency unit. CurrentBalance is never stored: it is derived from
// initial_balance plus the live transaction sum on every read.
type Wallet struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time
	BookID    uint   `gorm:"not null;uniqueIndex:idx_wallets_identity"`
	Name      string `gorm:"size:255;not null;uniqueIndex:idx_wallets_identity"`
	Type      string `gorm:"size:16;not null;uniqueIndex:idx_wallets_identity"`
	Icon      string `gorm:"size:10"`
	Color     string `gorm:"size:7"`
	// smallest currency unit, never negative
	InitialBalance int64 `gorm:"not null;default:0"`
	IsDefault      bool  `gorm:"default:false;not null"`

	CurrentBalance int64 `gorm:"-" json:"current_balance"`

	Book         Book          `gorm:"foreignKey:BookID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	Transactions []Transaction `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
}
