package models

import "time"

// Transaction / category types. TRANSFER is accepted on categories only.
const (
	TypePemasukan   = "PEMASUKAN"   // income
	TypePengeluaran = "PENGELUARAN" // expense
	TypeTransfer    = "TRANSFER"
)

// ValidCategoryType reports whether t may be used as a category type.
func ValidCategoryType(t string) bool {
	return t == TypePemasukan || t == TypePengeluaran || t == TypeTransfer
}

// ValidTransactionType reports whether t may be used as a transaction type.
func ValidTransactionType(t string) bool {
	return t == TypePemasukan || t == TypePengeluaran
}

// Category classifies transactions within a book. The (book_id, name, type)
// unique index backs idempotent creation.
type Category struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time
	BookID    uint   `gorm:"not null;uniqueIndex:idx_categories_identity"`
	Name      string `gorm:"size:255;not null;uniqueIndex:idx_categories_identity"`
	Type      string `gorm:"size:16;not null;uniqueIndex:idx_categories_identity"`
	Color     string `gorm:"size:7"`
	Icon      string `gorm:"size:10"`
	IsDefault bool   `gorm:"default:false;not null"`
	// client-supplied creation time, seconds
	CreatedAtTs int64 `gorm:"index"`

	Book         Book          `gorm:"foreignKey:BookID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	Transactions []Transaction `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"-"`
}
