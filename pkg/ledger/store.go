package ledger

import (
	"errors"
	"strings"

	"keuanganku/models"

	"gorm.io/gorm"
)

// Store is the exclusive owner of book/wallet/category/transaction
// persistence and of the invariants over them. It carries no state between
// calls; every mutation that touches more than one row runs inside a single
// database transaction.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// BookInput carries the fields a client may set when creating a book.
type BookInput struct {
	Name        string
	Description string
	Icon        string
	Color       string
	IsDefault   bool
}

// CreateBook creates a book for userID, or returns the existing one when a
// book with the same name already exists (idempotent create for retrying
// clients). The boolean reports whether a new row was inserted. Requesting
// is_default clears the flag on the user's other books first, inside the
// same transaction.
func (s *Store) CreateBook(userID uint, in BookInput) (*models.Book, bool, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, false, invalid("name", "required")
	}
	if len(name) > 255 {
		return nil, false, invalid("name", "too long (max 255)")
	}

	var out *models.Book
	created := false
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var existing models.Book
		err := tx.Where("user_id = ? AND name = ?", userID, name).First(&existing).Error
		if err == nil {
			out = &existing
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if in.IsDefault {
			if err := tx.Model(&models.Book{}).
				Where("user_id = ?", userID).
				Update("is_default", false).Error; err != nil {
				return err
			}
		}
		b := models.Book{
			UserID:      userID,
			Name:        name,
			Description: in.Description,
			Icon:        in.Icon,
			Color:       in.Color,
			IsDefault:   in.IsDefault,
		}
		if err := tx.Create(&b).Error; err != nil {
			return err
		}
		created = true
		out = &b
		return nil
	})
	if err != nil {
		// Lost a concurrent duplicate-create race: the unique index on
		// (user_id, name) is the real guarantee, the pre-check above only
		// exists to answer politely. Fetch the row that won.
		if isUniqueViolation(err) {
			var existing models.Book
			if e := s.db.Where("user_id = ? AND name = ?", userID, name).First(&existing).Error; e == nil {
				return &existing, false, nil
			}
			return nil, false, conflict("book %q already exists", name)
		}
		return nil, false, err
	}
	return out, created, nil
}

// GetBook returns a book with its wallets (balances derived) and categories.
func (s *Store) GetBook(userID, bookID uint) (*models.Book, error) {
	if err := s.AuthorizeBook(userID, bookID); err != nil {
		return nil, err
	}
	var b models.Book
	if err := s.db.Preload("Wallets").Preload("Categories").First(&b, bookID).Error; err != nil {
		return nil, err
	}
	for i := range b.Wallets {
		bal, err := s.currentBalance(s.db, b.Wallets[i].ID, b.Wallets[i].InitialBalance)
		if err != nil {
			return nil, err
		}
		b.Wallets[i].CurrentBalance = bal
	}
	return &b, nil
}

// ListBooks returns all books owned by userID with wallets and categories.
func (s *Store) ListBooks(userID uint) ([]models.Book, error) {
	var books []models.Book
	if err := s.db.Preload("Wallets").Preload("Categories").
		Where("user_id = ?", userID).
		Order("id").
		Find(&books).Error; err != nil {
		return nil, err
	}
	for i := range books {
		for j := range books[i].Wallets {
			w := &books[i].Wallets[j]
			bal, err := s.currentBalance(s.db, w.ID, w.InitialBalance)
			if err != nil {
				return nil, err
			}
			w.CurrentBalance = bal
		}
	}
	return books, nil
}

// UpdateBook applies a partial update. Setting is_default true flips the
// flag off the user's other books atomically.
func (s *Store) UpdateBook(userID, bookID uint, p BookPatch) (*models.Book, error) {
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
	var out models.Book
	err := s.db.Transaction(func(tx *gorm.DB) error {
		b, err := ownedBook(tx, userID, bookID)
		if err != nil {
			return err
		}
		if p.IsDefault != nil && *p.IsDefault {
			if err := tx.Model(&models.Book{}).
				Where("user_id = ? AND id != ?", userID, bookID).
				Update("is_default", false).Error; err != nil {
				return err
			}
		}
		if updates := p.updates(); len(updates) > 0 {
			if err := tx.Model(b).Updates(updates).Error; err != nil {
				return err
			}
		}
		return tx.First(&out, bookID).Error
	})
	if err != nil {
		if isUniqueViolation(err) {
			return nil, conflict("book name already in use")
		}
		return nil, err
	}
	return &out, nil
}

// DeleteBook removes a book and, through the cascade constraints, its
// wallets, categories and transactions. The user's only book cannot be
// deleted while it is the default one.
func (s *Store) DeleteBook(userID, bookID uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		b, err := ownedBook(tx, userID, bookID)
		if err != nil {
			return err
		}
		if b.IsDefault {
			var n int64
			if err := tx.Model(&models.Book{}).Where("user_id = ?", userID).Count(&n).Error; err != nil {
				return err
			}
			if n == 1 {
				return conflict("cannot delete the only default book")
			}
		}
		return tx.Delete(&models.Book{}, bookID).Error
	})
}
