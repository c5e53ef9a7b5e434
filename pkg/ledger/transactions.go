package ledger

import (
	"errors"
	"time"

	"keuanganku/models"

	"gorm.io/gorm"
)

// TransactionInput carries the fields a client may set when recording a
// transaction. CreatedAtMs of zero means "server time at insert".
type TransactionInput struct {
	BookID      uint
	WalletID    uint
	CategoryID  uint
	Type        string
	Amount      int64
	Note        string
	CreatedAtMs int64
	ImageURL    string
}

// Filter restricts a transaction listing or aggregation. Zero values mean
// "not filtered". Both StartMs and EndMs must be set for the date range to
// apply. Search is a substring match on the note.
type Filter struct {
	BookID     uint
	WalletID   uint
	CategoryID uint
	Type       string
	StartMs    int64
	EndMs      int64
	Search     string
	Page       int
	PerPage    int
}

// scope builds the authorization-scoped base query for f. With a book id the
// book must belong to userID (uniform denial, same as any other ownership
// check); without one the query joins down from the user's books.
func (s *Store) scope(userID uint, f Filter) (*gorm.DB, error) {
	q := s.db.Model(&models.Transaction{})
	if f.BookID != 0 {
		if err := s.AuthorizeBook(userID, f.BookID); err != nil {
			return nil, err
		}
		q = q.Where("transactions.book_id = ?", f.BookID)
	} else {
		q = q.Joins("JOIN books ON books.id = transactions.book_id").
			Where("books.user_id = ?", userID)
	}
	if f.WalletID != 0 {
		q = q.Where("transactions.wallet_id = ?", f.WalletID)
	}
	if f.CategoryID != 0 {
		q = q.Where("transactions.category_id = ?", f.CategoryID)
	}
	if f.Type != "" {
		if !models.ValidTransactionType(f.Type) {
			return nil, invalid("type", "must be PEMASUKAN or PENGELUARAN")
		}
		q = q.Where("transactions.type = ?", f.Type)
	}
	if f.StartMs != 0 && f.EndMs != 0 {
		q = q.Where("transactions.created_at_ms BETWEEN ? AND ?", f.StartMs, f.EndMs)
	}
	if f.Search != "" {
		q = q.Where("transactions.note LIKE ?", "%"+f.Search+"%")
	}
	return q, nil
}

// checkReferences verifies that wallet and category rows exist and belong to
// bookID. A wallet or category under a different book is a conflict, never a
// silent accept.
func checkReferences(tx *gorm.DB, bookID, walletID, categoryID uint) error {
	var w models.Wallet
	if err := tx.First(&w, walletID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return conflict("wallet does not exist")
		}
		return err
	}
	if w.BookID != bookID {
		return conflict("wallet does not belong to this book")
	}
	var c models.Category
	if err := tx.First(&c, categoryID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return conflict("category does not exist")
		}
		return err
	}
	if c.BookID != bookID {
		return conflict("category does not belong to this book")
	}
	return nil
}

// CreateTransaction records a transaction. The wallet's derived balance
// changes on the next read simply because the transaction log changed; there
// is no stored balance to update.
func (s *Store) CreateTransaction(userID uint, in TransactionInput) (*models.Transaction, error) {
	if !models.ValidTransactionType(in.Type) {
		return nil, invalid("type", "must be PEMASUKAN or PENGELUARAN")
	}
	if in.Amount < 0 {
		return nil, invalid("amount", "must not be negative")
	}
	if len(in.Note) > 500 {
		return nil, invalid("note", "too long (max 500)")
	}
	var out models.Transaction
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.authorizeBook(tx, userID, in.BookID); err != nil {
			return err
		}
		if err := checkReferences(tx, in.BookID, in.WalletID, in.CategoryID); err != nil {
			return err
		}
		t := models.Transaction{
			BookID:      in.BookID,
			WalletID:    in.WalletID,
			CategoryID:  in.CategoryID,
			Type:        in.Type,
			Amount:      in.Amount,
			Note:        in.Note,
			CreatedAtMs: in.CreatedAtMs,
			ImageURL:    in.ImageURL,
		}
		if t.CreatedAtMs == 0 {
			t.CreatedAtMs = time.Now().UnixMilli()
		}
		if err := tx.Create(&t).Error; err != nil {
			return err
		}
		out = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// GetTransaction returns a single transaction.
func (s *Store) GetTransaction(userID, id uint) (*models.Transaction, error) {
	if err := s.AuthorizeTransaction(userID, id); err != nil {
		return nil, err
	}
	var t models.Transaction
	if err := s.db.First(&t, id).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

// UpdateTransaction applies a partial update under the same referential
// checks as creation: a patched wallet or category must belong to the
// transaction's book.
func (s *Store) UpdateTransaction(userID, id uint, p TransactionPatch) (*models.Transaction, error) {
	if p.Type != nil && !models.ValidTransactionType(*p.Type) {
		return nil, invalid("type", "must be PEMASUKAN or PENGELUARAN")
	}
	if p.Amount != nil && *p.Amount < 0 {
		return nil, invalid("amount", "must not be negative")
	}
	if p.Note != nil && len(*p.Note) > 500 {
		return nil, invalid("note", "too long (max 500)")
	}
	var out models.Transaction
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var t models.Transaction
		if err := tx.Joins("JOIN books ON books.id = transactions.book_id").
			Where("transactions.id = ? AND books.user_id = ?", id, userID).
			First(&t).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUnauthorized
			}
			return err
		}
		walletID := t.WalletID
		if p.WalletID != nil {
			walletID = *p.WalletID
		}
		categoryID := t.CategoryID
		if p.CategoryID != nil {
			categoryID = *p.CategoryID
		}
		if walletID != t.WalletID || categoryID != t.CategoryID {
			if err := checkReferences(tx, t.BookID, walletID, categoryID); err != nil {
				return err
			}
		}
		if updates := p.updates(); len(updates) > 0 {
			if err := tx.Model(&models.Transaction{}).Where("id = ?", id).Updates(updates).Error; err != nil {
				return err
			}
		}
		return tx.First(&out, id).Error
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteTransaction removes a transaction. Derived wallet balances adjust
// implicitly on the next read.
func (s *Store) DeleteTransaction(userID, id uint) error {
	if err := s.AuthorizeTransaction(userID, id); err != nil {
		return err
	}
	return s.db.Delete(&models.Transaction{}, id).Error
}

// BulkDeleteTransactions removes a set of transactions. All ids must resolve
// to transactions owned by userID, otherwise nothing is deleted.
func (s *Store) BulkDeleteTransactions(userID uint, ids []uint) error {
	if len(ids) == 0 {
		return invalid("transaction_ids", "required")
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&models.Transaction{}).
			Joins("JOIN books ON books.id = transactions.book_id").
			Where("transactions.id IN ? AND books.user_id = ?", ids, userID).
			Count(&n).Error; err != nil {
			return err
		}
		if n != int64(len(ids)) {
			return ErrUnauthorized
		}
		return tx.Where("id IN ?", ids).Delete(&models.Transaction{}).Error
	})
}

// ListTransactions returns one page ordered by created_at_ms descending,
// plus the total row count for the filter.
func (s *Store) ListTransactions(userID uint, f Filter) ([]models.Transaction, int64, error) {
	q, err := s.scope(userID, f)
	if err != nil {
		return nil, 0, err
	}
	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	page := f.Page
	if page < 1 {
		page = 1
	}
	perPage := f.PerPage
	if perPage < 1 {
		perPage = 15
	}
	var ts []models.Transaction
	if err := q.Order("transactions.created_at_ms DESC, transactions.id DESC").
		Limit(perPage).
		Offset((page - 1) * perPage).
		Find(&ts).Error; err != nil {
		return nil, 0, err
	}
	return ts, total, nil
}
