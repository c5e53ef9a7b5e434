package ledger

import (
	"errors"
	"strings"
	"time"

	"keuanganku/models"

	"gorm.io/gorm"
)

// CategoryInput carries the fields a client may set when creating a category.
type CategoryInput struct {
	BookID    uint
	Name      string
	Type      string
	Color     string
	Icon      string
	IsDefault bool
}

// CreateCategory creates a category in a book owned by userID, or returns
// the existing category with the same (name, type) in that book.
func (s *Store) CreateCategory(userID uint, in CategoryInput) (*models.Category, bool, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, false, invalid("name", "required")
	}
	if len(name) > 255 {
		return nil, false, invalid("name", "too long (max 255)")
	}
	if !models.ValidCategoryType(in.Type) {
		return nil, false, invalid("type", "must be one of PEMASUKAN, PENGELUARAN, TRANSFER")
	}

	var out *models.Category
	created := false
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.authorizeBook(tx, userID, in.BookID); err != nil {
			return err
		}
		var existing models.Category
		err := tx.Where("book_id = ? AND name = ? AND type = ?", in.BookID, name, in.Type).
			First(&existing).Error
		if err == nil {
			out = &existing
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		c := models.Category{
			BookID:      in.BookID,
			Name:        name,
			Type:        in.Type,
			Color:       in.Color,
			Icon:        in.Icon,
			IsDefault:   in.IsDefault,
			CreatedAtTs: time.Now().Unix(),
		}
		if err := tx.Create(&c).Error; err != nil {
			return err
		}
		created = true
		out = &c
		return nil
	})
	if err != nil {
		if isUniqueViolation(err) {
			var existing models.Category
			if e := s.db.Where("book_id = ? AND name = ? AND type = ?", in.BookID, name, in.Type).
				First(&existing).Error; e == nil {
				return &existing, false, nil
			}
			return nil, false, conflict("category %q already exists", name)
		}
		return nil, false, err
	}
	return out, created, nil
}

// GetCategory returns a single category.
func (s *Store) GetCategory(userID, categoryID uint) (*models.Category, error) {
	if err := s.AuthorizeCategory(userID, categoryID); err != nil {
		return nil, err
	}
	var c models.Category
	if err := s.db.First(&c, categoryID).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

// ListCategories returns the user's categories ordered by name, optionally
// restricted to one book and one type.
func (s *Store) ListCategories(userID uint, bookID uint, typ string) ([]models.Category, error) {
	q := s.db.Model(&models.Category{})
	if bookID != 0 {
		if err := s.AuthorizeBook(userID, bookID); err != nil {
			return nil, err
		}
		q = q.Where("book_id = ?", bookID)
	} else {
		q = q.Joins("JOIN books ON books.id = categories.book_id").
			Where("books.user_id = ?", userID)
	}
	if typ != "" {
		if !models.ValidCategoryType(typ) {
			return nil, invalid("type", "unknown category type")
		}
		q = q.Where("categories.type = ?", typ)
	}
	var categories []models.Category
	if err := q.Order("categories.name").Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

// UpdateCategory applies a partial update.
func (s *Store) UpdateCategory(userID, categoryID uint, p CategoryPatch) (*models.Category, error) {
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
	if p.Type != nil && !models.ValidCategoryType(*p.Type) {
		return nil, invalid("type", "must be one of PEMASUKAN, PENGELUARAN, TRANSFER")
	}
	if err := s.AuthorizeCategory(userID, categoryID); err != nil {
		return nil, err
	}
	if updates := p.updates(); len(updates) > 0 {
		if err := s.db.Model(&models.Category{}).Where("id = ?", categoryID).Updates(updates).Error; err != nil {
			if isUniqueViolation(err) {
				return nil, conflict("a category with that name and type already exists in this book")
			}
			return nil, err
		}
	}
	var out models.Category
	if err := s.db.First(&out, categoryID).Error; err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteCategory removes a category unless transactions still reference it.
func (s *Store) DeleteCategory(userID, categoryID uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var c models.Category
		if err := tx.Joins("JOIN books ON books.id = categories.book_id").
			Where("categories.id = ? AND books.user_id = ?", categoryID, userID).
			First(&c).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUnauthorized
			}
			return err
		}
		var n int64
		if err := tx.Model(&models.Transaction{}).Where("category_id = ?", categoryID).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return conflict("cannot delete category with existing transactions")
		}
		return tx.Delete(&models.Category{}, categoryID).Error
	})
}
