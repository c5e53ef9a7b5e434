package ledger

import (
	"errors"
	"strings"

	"keuanganku/models"

	"gorm.io/gorm"
)

// WalletInput carries the fields a client may set when creating a wallet.
type WalletInput struct {
	BookID         uint
	Name           string
	Type           string
	Icon           string
	Color          string
	InitialBalance int64
	IsDefault      bool
}

// currentBalance derives a wallet balance from the live transaction log:
// initial + income - expense. This is the single source of truth; no stored
// balance column exists that could drift from it.
func (s *Store) currentBalance(tx *gorm.DB, walletID uint, initial int64) (int64, error) {
	var delta int64
	err := tx.Model(&models.Transaction{}).
		Where("wallet_id = ?", walletID).
		Select("COALESCE(SUM(CASE WHEN type = ? THEN amount WHEN type = ? THEN -amount ELSE 0 END), 0)",
			models.TypePemasukan, models.TypePengeluaran).
		Scan(&delta).Error
	if err != nil {
		return 0, err
	}
	return initial + delta, nil
}

// CurrentBalance returns the derived balance of a wallet owned by userID.
func (s *Store) CurrentBalance(userID, walletID uint) (int64, error) {
	w, err := s.GetWallet(userID, walletID)
	if err != nil {
		return 0, err
	}
	return w.CurrentBalance, nil
}

// CreateWallet creates a wallet in a book owned by userID, or returns the
// existing wallet with the same (name, type) in that book. Default-flag
// exclusivity is scoped to the book.
func (s *Store) CreateWallet(userID uint, in WalletInput) (*models.Wallet, bool, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, false, invalid("name", "required")
	}
	if len(name) > 255 {
		return nil, false, invalid("name", "too long (max 255)")
	}
	if !models.ValidWalletType(in.Type) {
		return nil, false, invalid("type", "must be one of CASH, BANK, E_WALLET")
	}
	if in.InitialBalance < 0 {
		return nil, false, invalid("initial_balance", "must not be negative")
	}

	var out *models.Wallet
	created := false
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.authorizeBook(tx, userID, in.BookID); err != nil {
			return err
		}
		var existing models.Wallet
		err := tx.Where("book_id = ? AND name = ? AND type = ?", in.BookID, name, in.Type).
			First(&existing).Error
		if err == nil {
			out = &existing
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if in.IsDefault {
			if err := tx.Model(&models.Wallet{}).
				Where("book_id = ?", in.BookID).
				Update("is_default", false).Error; err != nil {
				return err
			}
		}
		w := models.Wallet{
			BookID:         in.BookID,
			Name:           name,
			Type:           in.Type,
			Icon:           in.Icon,
			Color:          in.Color,
			InitialBalance: in.InitialBalance,
			IsDefault:      in.IsDefault,
		}
		if err := tx.Create(&w).Error; err != nil {
			return err
		}
		created = true
		out = &w
		return nil
	})
	if err != nil {
		if isUniqueViolation(err) {
			var existing models.Wallet
			if e := s.db.Where("book_id = ? AND name = ? AND type = ?", in.BookID, name, in.Type).
				First(&existing).Error; e == nil {
				bal, berr := s.currentBalance(s.db, existing.ID, existing.InitialBalance)
				if berr != nil {
					return nil, false, berr
				}
				existing.CurrentBalance = bal
				return &existing, false, nil
			}
			return nil, false, conflict("wallet %q already exists", name)
		}
		return nil, false, err
	}
	bal, err := s.currentBalance(s.db, out.ID, out.InitialBalance)
	if err != nil {
		return nil, false, err
	}
	out.CurrentBalance = bal
	return out, created, nil
}

// GetWallet returns a wallet with its derived balance.
func (s *Store) GetWallet(userID, walletID uint) (*models.Wallet, error) {
	if err := s.AuthorizeWallet(userID, walletID); err != nil {
		return nil, err
	}
	var w models.Wallet
	if err := s.db.First(&w, walletID).Error; err != nil {
		return nil, err
	}
	bal, err := s.currentBalance(s.db, w.ID, w.InitialBalance)
	if err != nil {
		return nil, err
	}
	w.CurrentBalance = bal
	return &w, nil
}

// ListWallets returns the user's wallets, optionally restricted to one book,
// with derived balances.
func (s *Store) ListWallets(userID uint, bookID uint) ([]models.Wallet, error) {
	q := s.db.Model(&models.Wallet{})
	if bookID != 0 {
		if err := s.AuthorizeBook(userID, bookID); err != nil {
			return nil, err
		}
		q = q.Where("book_id = ?", bookID)
	} else {
		q = q.Joins("JOIN books ON books.id = wallets.book_id").
			Where("books.user_id = ?", userID)
	}
	var wallets []models.Wallet
	if err := q.Order("wallets.id").Find(&wallets).Error; err != nil {
		return nil, err
	}
	for i := range wallets {
		bal, err := s.currentBalance(s.db, wallets[i].ID, wallets[i].InitialBalance)
		if err != nil {
			return nil, err
		}
		wallets[i].CurrentBalance = bal
	}
	return wallets, nil
}

// UpdateWallet applies a partial update. A changed initial_balance never
// shifts the derived balance incrementally: the balance is recomputed from
// scratch on the reload below, so it cannot drift.
func (s *Store) UpdateWallet(userID, walletID uint, p WalletPatch) (*models.Wallet, error) {
	if p.Name != nil {
		n := strings.TrimSpace(*p.Name)
		if n == "" {
			return nil, invalid("name", "required")
		}
		if len(n) > 255 {
			return nil, invalid("name", "too long (max 255)")
		}
		p.Name = &n
	}
	if p.Type != nil && !models.ValidWalletType(*p.Type) {
		return nil, invalid("type", "must be one of CASH, BANK, E_WALLET")
	}
	if p.InitialBalance != nil && *p.InitialBalance < 0 {
		return nil, invalid("initial_balance", "must not be negative")
	}
	var out models.Wallet
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var w models.Wallet
		if err := tx.Joins("JOIN books ON books.id = wallets.book_id").
			Where("wallets.id = ? AND books.user_id = ?", walletID, userID).
			First(&w).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUnauthorized
			}
			return err
		}
		if p.IsDefault != nil && *p.IsDefault {
			if err := tx.Model(&models.Wallet{}).
				Where("book_id = ? AND id != ?", w.BookID, walletID).
				Update("is_default", false).Error; err != nil {
				return err
			}
		}
		if updates := p.updates(); len(updates) > 0 {
			if err := tx.Model(&models.Wallet{}).Where("id = ?", walletID).Updates(updates).Error; err != nil {
				return err
			}
		}
		return tx.First(&out, walletID).Error
	})
	if err != nil {
		if isUniqueViolation(err) {
			return nil, conflict("a wallet with that name and type already exists in this book")
		}
		return nil, err
	}
	bal, err := s.currentBalance(s.db, out.ID, out.InitialBalance)
	if err != nil {
		return nil, err
	}
	out.CurrentBalance = bal
	return &out, nil
}

// DeleteWallet removes a wallet unless transactions still reference it.
func (s *Store) DeleteWallet(userID, walletID uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var w models.Wallet
		if err := tx.Joins("JOIN books ON books.id = wallets.book_id").
			Where("wallets.id = ? AND books.user_id = ?", walletID, userID).
			First(&w).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUnauthorized
			}
			return err
		}
		var n int64
		if err := tx.Model(&models.Transaction{}).Where("wallet_id = ?", walletID).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return conflict("cannot delete wallet with existing transactions")
		}
		return tx.Delete(&models.Wallet{}, walletID).Error
	})
}
