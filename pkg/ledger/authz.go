package ledger

import (
	"keuanganku/models"

	"gorm.io/gorm"
)

// Ownership is always resolved through the owning book's user_id. Child rows
// never carry a denormalized user id, so a book transfer can never leave a
// stale owner behind. Every denial is the same ErrUnauthorized whether the
// entity is missing or belongs to someone else.

// AuthorizeBook allows iff the book exists and belongs to userID.
func (s *Store) AuthorizeBook(userID, bookID uint) error {
	return s.authorizeBook(s.db, userID, bookID)
}

func (s *Store) authorizeBook(tx *gorm.DB, userID, bookID uint) error {
	var n int64
	if err := tx.Model(&models.Book{}).
		Where("id = ? AND user_id = ?", bookID, userID).
		Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return ErrUnauthorized
	}
	return nil
}

// AuthorizeWallet allows iff the wallet's book belongs to userID.
func (s *Store) AuthorizeWallet(userID, walletID uint) error {
	var n int64
	if err := s.db.Model(&models.Wallet{}).
		Joins("JOIN books ON books.id = wallets.book_id").
		Where("wallets.id = ? AND books.user_id = ?", walletID, userID).
		Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return ErrUnauthorized
	}
	return nil
}

// AuthorizeCategory allows iff the category's book belongs to userID.
func (s *Store) AuthorizeCategory(userID, categoryID uint) error {
	var n int64
	if err := s.db.Model(&models.Category{}).
		Joins("JOIN books ON books.id = categories.book_id").
		Where("categories.id = ? AND books.user_id = ?", categoryID, userID).
		Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return ErrUnauthorized
	}
	return nil
}

// AuthorizeTransaction allows iff the transaction's book belongs to userID.
func (s *Store) AuthorizeTransaction(userID, transactionID uint) error {
	var n int64
	if err := s.db.Model(&models.Transaction{}).
		Joins("JOIN books ON books.id = transactions.book_id").
		Where("transactions.id = ? AND books.user_id = ?", transactionID, userID).
		Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return ErrUnauthorized
	}
	return nil
}

// ownedBook loads a book enforcing ownership, with the uniform denial.
func ownedBook(tx *gorm.DB, userID, bookID uint) (*models.Book, error) {
	var b models.Book
	if err := tx.Where("id = ? AND user_id = ?", bookID, userID).First(&b).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrUnauthorized
		}
		return nil, err
	}
	return &b, nil
}
