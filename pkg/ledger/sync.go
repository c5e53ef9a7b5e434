package ledger

import (
	"errors"
	"strings"

	"keuanganku/models"

	"gorm.io/gorm"
)

// Sync-oriented entities: book closings, memos and tags. Offline clients
// cache these, so a delete is a tombstone (is_deleted = true) and listings
// exclude tombstoned rows. Lookups are by id with an ownership check through
// the book (or directly on user_id for tags); a missing id is a plain
// not-found since these listings are already user-scoped.

// ClosingInput carries the fields of a new book closing.
type ClosingInput struct {
	BookID       uint
	PeriodStart  int64
	PeriodEnd    int64
	PeriodLabel  string
	ClosedAt     int64
	FinalBalance float64
	IsVerified   bool
	Notes        string
	CreatedAtMs  *int64
	UpdatedAtMs  *int64
}

// CreateClosing appends a period snapshot to a book owned by userID.
func (s *Store) CreateClosing(userID uint, in ClosingInput) (*models.BookClosing, error) {
	if strings.TrimSpace(in.PeriodLabel) == "" {
		return nil, invalid("period_label", "required")
	}
	if in.PeriodStart == 0 || in.PeriodEnd == 0 || in.ClosedAt == 0 {
		return nil, invalid("period", "period_start, period_end and closed_at are required")
	}
	if in.PeriodEnd < in.PeriodStart {
		return nil, invalid("period_end", "must not precede period_start")
	}
	if err := s.AuthorizeBook(userID, in.BookID); err != nil {
		return nil, err
	}
	c := models.BookClosing{
		BookID:       in.BookID,
		PeriodStart:  in.PeriodStart,
		PeriodEnd:    in.PeriodEnd,
		PeriodLabel:  strings.TrimSpace(in.PeriodLabel),
		ClosedAt:     in.ClosedAt,
		FinalBalance: in.FinalBalance,
		IsVerified:   in.IsVerified,
		Notes:        in.Notes,
		CreatedAtMs:  in.CreatedAtMs,
		UpdatedAtMs:  in.UpdatedAtMs,
	}
	if err := s.db.Create(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

// ListClosings returns the live (non-tombstoned) closings across all books
// owned by userID.
func (s *Store) ListClosings(userID uint) ([]models.BookClosing, error) {
	var cs []models.BookClosing
	err := s.db.Joins("JOIN books ON books.id = book_closings.book_id").
		Where("books.user_id = ? AND book_closings.is_deleted = ?", userID, false).
		Order("book_closings.closed_at DESC").
		Find(&cs).Error
	return cs, err
}

func (s *Store) closingByID(userID, id uint) (*models.BookClosing, error) {
	var c models.BookClosing
	if err := s.db.First(&c, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Entity: "book closing"}
		}
		return nil, err
	}
	if err := s.AuthorizeBook(userID, c.BookID); err != nil {
		return nil, err
	}
	return &c, nil
}

// GetClosing returns one closing by id.
func (s *Store) GetClosing(userID, id uint) (*models.BookClosing, error) {
	return s.closingByID(userID, id)
}

// ClosingPatch is a partial update for a book closing.
type ClosingPatch struct {
	PeriodStart  *int64
	PeriodEnd    *int64
	PeriodLabel  *string
	ClosedAt     *int64
	FinalBalance *float64
	IsVerified   *bool
	Notes        *string
	UpdatedAtMs  *int64
}

func (p ClosingPatch) updates() map[string]any {
	u := map[string]any{}
	if p.PeriodStart != nil {
		u["period_start"] = *p.PeriodStart
	}
	if p.PeriodEnd != nil {
		u["period_end"] = *p.PeriodEnd
	}
	if p.PeriodLabel != nil {
		u["period_label"] = *p.PeriodLabel
	}
	if p.ClosedAt != nil {
		u["closed_at"] = *p.ClosedAt
	}
	if p.FinalBalance != nil {
		u["final_balance"] = *p.FinalBalance
	}
	if p.IsVerified != nil {
		u["is_verified"] = *p.IsVerified
	}
	if p.Notes != nil {
		u["notes"] = *p.Notes
	}
	if p.UpdatedAtMs != nil {
		u["updated_at_ms"] = *p.UpdatedAtMs
	}
	return u
}

// UpdateClosing applies a partial update to a closing.
func (s *Store) UpdateClosing(userID, id uint, p ClosingPatch) (*models.BookClosing, error) {
	if p.PeriodLabel != nil && strings.TrimSpace(*p.PeriodLabel) == "" {
		return nil, invalid("period_label", "required")
	}
	c, err := s.closingByID(userID, id)
	if err != nil {
		return nil, err
	}
	if updates := p.updates(); len(updates) > 0 {
		if err := s.db.Model(c).Updates(updates).Error; err != nil {
			return nil, err
		}
	}
	return c, nil
}

// DeleteClosing tombstones a closing.
func (s *Store) DeleteClosing(userID, id uint) error {
	c, err := s.closingByID(userID, id)
	if err != nil {
		return err
	}
	return s.db.Model(c).Update("is_deleted", true).Error
}

// MemoInput carries the fields of a new memo.
type MemoInput struct {
	BookID      uint
	Title       string
	Content     string
	Tags        string
	Date        int64
	CreatedAtMs *int64
	UpdatedAtMs *int64
}

// CreateMemo attaches a memo to a book owned by userID.
func (s *Store) CreateMemo(userID uint, in MemoInput) (*models.Memo, error) {
	if strings.TrimSpace(in.Title) == "" {
		return nil, invalid("title", "required")
	}
	if strings.TrimSpace(in.Content) == "" {
		return nil, invalid("content", "required")
	}
	if in.Date == 0 {
		return nil, invalid("date", "required")
	}
	if err := s.AuthorizeBook(userID, in.BookID); err != nil {
		return nil, err
	}
	m := models.Memo{
		BookID:      in.BookID,
		Title:       strings.TrimSpace(in.Title),
		Content:     in.Content,
		Tags:        in.Tags,
		Date:        in.Date,
		CreatedAtMs: in.CreatedAtMs,
		UpdatedAtMs: in.UpdatedAtMs,
	}
	if err := s.db.Create(&m).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

// ListMemos returns live memos across the user's books.
func (s *Store) ListMemos(userID uint) ([]models.Memo, error) {
	var ms []models.Memo
	err := s.db.Joins("JOIN books ON books.id = memos.book_id").
		Where("books.user_id = ? AND memos.is_deleted = ?", userID, false).
		Order("memos.date DESC").
		Find(&ms).Error
	return ms, err
}

func (s *Store) memoByID(userID, id uint) (*models.Memo, error) {
	var m models.Memo
	if err := s.db.First(&m, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Entity: "memo"}
		}
		return nil, err
	}
	if err := s.AuthorizeBook(userID, m.BookID); err != nil {
		return nil, err
	}
	return &m, nil
}

// GetMemo returns one memo by id.
func (s *Store) GetMemo(userID, id uint) (*models.Memo, error) {
	return s.memoByID(userID, id)
}

// MemoPatch is a partial update for a memo.
type MemoPatch struct {
	Title       *string
	Content     *string
	Tags        *string
	Date        *int64
	UpdatedAtMs *int64
}

func (p MemoPatch) updates() map[string]any {
	u := map[string]any{}
	if p.Title != nil {
		u["title"] = *p.Title
	}
	if p.Content != nil {
		u["content"] = *p.Content
	}
	if p.Tags != nil {
		u["tags"] = *p.Tags
	}
	if p.Date != nil {
		u["date"] = *p.Date
	}
	if p.UpdatedAtMs != nil {
		u["updated_at_ms"] = *p.UpdatedAtMs
	}
	return u
}

// UpdateMemo applies a partial update to a memo.
func (s *Store) UpdateMemo(userID, id uint, p MemoPatch) (*models.Memo, error) {
	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		return nil, invalid("title", "required")
	}
	m, err := s.memoByID(userID, id)
	if err != nil {
		return nil, err
	}
	if updates := p.updates(); len(updates) > 0 {
		if err := s.db.Model(m).Updates(updates).Error; err != nil {
			return nil, err
		}
	}
	return m, nil
}

// DeleteMemo tombstones a memo.
func (s *Store) DeleteMemo(userID, id uint) error {
	m, err := s.memoByID(userID, id)
	if err != nil {
		return err
	}
	return s.db.Model(m).Update("is_deleted", true).Error
}

// TagInput carries the fields of a new tag.
type TagInput struct {
	Name        string
	Color       int
	CreatedAtMs *int64
	UpdatedAtMs *int64
}

// CreateTag creates a user-scoped tag. Tag names are unique per user; a
// duplicate is a conflict rather than an idempotent return, because deleted
// tags are tombstoned and silently resurrecting one would confuse syncing
// clients.
func (s *Store) CreateTag(userID uint, in TagInput) (*models.Tag, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, invalid("name", "required")
	}
	t := models.Tag{
		UserID:      userID,
		Name:        name,
		Color:       in.Color,
		CreatedAtMs: in.CreatedAtMs,
		UpdatedAtMs: in.UpdatedAtMs,
	}
	if err := s.db.Create(&t).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, conflict("tag %q already exists", name)
		}
		return nil, err
	}
	return &t, nil
}

// ListTags returns the user's live tags.
func (s *Store) ListTags(userID uint) ([]models.Tag, error) {
	var tags []models.Tag
	err := s.db.Where("user_id = ? AND is_deleted = ?", userID, false).
		Order("name").
		Find(&tags).Error
	return tags, err
}

func (s *Store) tagByID(userID, id uint) (*models.Tag, error) {
	var t models.Tag
	if err := s.db.Where("user_id = ?", userID).First(&t, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Entity: "tag"}
		}
		return nil, err
	}
	return &t, nil
}

// GetTag returns one tag by id.
func (s *Store) GetTag(userID, id uint) (*models.Tag, error) {
	return s.tagByID(userID, id)
}

// TagPatch is a partial update for a tag.
type TagPatch struct {
	Name        *string
	Color       *int
	UpdatedAtMs *int64
}

func (p TagPatch) updates() map[string]any {
	u := map[string]any{}
	if p.Name != nil {
		u["name"] = *p.Name
	}
	if p.Color != nil {
		u["color"] = *p.Color
	}
	if p.UpdatedAtMs != nil {
		u["updated_at_ms"] = *p.UpdatedAtMs
	}
	return u
}

// UpdateTag applies a partial update to a tag.
func (s *Store) UpdateTag(userID, id uint, p TagPatch) (*models.Tag, error) {
	if p.Name != nil {
		n := strings.TrimSpace(*p.Name)
		if n == "" {
			return nil, invalid("name", "required")
		}
		p.Name = &n
	}
	t, err := s.tagByID(userID, id)
	if err != nil {
		return nil, err
	}
	if updates := p.updates(); len(updates) > 0 {
		if err := s.db.Model(t).Updates(updates).Error; err != nil {
			if isUniqueViolation(err) {
				return nil, conflict("tag name already in use")
			}
			return nil, err
		}
	}
	return t, nil
}

// DeleteTag tombstones a tag.
func (s *Store) DeleteTag(userID, id uint) error {
	t, err := s.tagByID(userID, id)
	if err != nil {
		return err
	}
	return s.db.Model(t).Update("is_deleted", true).Error
}
