package main

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"keuanganku/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// RegisterUser creates a user and seeds the starter ledger every fresh
// account gets: the default book, a cash wallet and the standard categories.
func RegisterUser(name, email, password string) (*models.User, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))
	if name == "" {
		return nil, fmt.Errorf("name required")
	}
	if email == "" || !strings.Contains(email, "@") {
		return nil, fmt.Errorf("valid email required")
	}
	if len(password) < 8 { // basic password policy
		return nil, fmt.Errorf("password too short (min 8)")
	}
	// pre-check existing (optimistic)
	var existing models.User
	if err := db.Where("email = ?", email).First(&existing).Error; err == nil {
		return nil, fmt.Errorf("email already registered")
	}
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	user := models.User{Name: name, Email: email, HashedPassword: hashedPassword}
	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		return seedUserDefaults(tx, user.ID)
	})
	if err != nil {
		if isUniqueConstraintError(err) { // race condition after initial check
			return nil, fmt.Errorf("email already registered")
		}
		return nil, err
	}
	return &user, nil
}

// seedUserDefaults creates "Buku Utama" with its cash wallet and the default
// category set. Runs inside the registration transaction; a brand-new user
// has no siblings, so the default flags hold trivially.
func seedUserDefaults(tx *gorm.DB, userID uint) error {
	book := models.Book{
		UserID:      userID,
		Name:        "Buku Utama",
		Description: "Buku keuangan utama",
		Icon:        "📖",
		Color:       "#4CAF50",
		IsDefault:   true,
	}
	if err := tx.Create(&book).Error; err != nil {
		return err
	}
	wallet := models.Wallet{
		BookID:         book.ID,
		Name:           "Tunai",
		Type:           models.WalletCash,
		Icon:           "💵",
		Color:          "#4CAF50",
		InitialBalance: 0,
		IsDefault:      true,
	}
	if err := tx.Create(&wallet).Error; err != nil {
		return err
	}
	defaults := []models.Category{
		{Name: "Makanan & Minuman", Icon: "🍔", Type: models.TypePengeluaran},
		{Name: "Transport", Icon: "🚌", Type: models.TypePengeluaran},
		{Name: "Belanja", Icon: "🛒", Type: models.TypePengeluaran},
		{Name: "Hiburan", Icon: "🎮", Type: models.TypePengeluaran},
		{Name: "Lainnya (Pengeluaran)", Icon: "⚙️", Type: models.TypePengeluaran},
		{Name: "Gaji", Icon: "💼", Type: models.TypePemasukan},
		{Name: "Bonus", Icon: "💰", Type: models.TypePemasukan},
		{Name: "Lainnya (Pemasukan)", Icon: "⚙️", Type: models.TypePemasukan},
	}
	now := time.Now().Unix()
	for _, c := range defaults {
		c.BookID = book.ID
		c.IsDefault = true
		c.CreatedAtTs = now
		if err := tx.Create(&c).Error; err != nil {
			return err
		}
	}
	return nil
}

// Authenticate verifies an email/password pair. Failures are reported
// uniformly so callers cannot probe which emails exist.
func Authenticate(email, password string) (models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	var user models.User
	if err := db.Where("email = ?", email).First(&user).Error; err != nil {
		return models.User{}, fmt.Errorf("invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword(user.HashedPassword, []byte(password)); err != nil {
		return models.User{}, fmt.Errorf("invalid credentials")
	}
	return user, nil
}

func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	s := err.Error()
	return strings.Contains(s, "duplicate key") || strings.Contains(s, "unique constraint") || strings.Contains(s, "already exists")
}

// createAndStoreRefreshToken generates a random refresh token, stores its hash with expiry and returns the raw token string
func createAndStoreRefreshToken(userID uint) (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	token := hex.EncodeToString(b)
	h := sha256.Sum256([]byte(token))
	th := hex.EncodeToString(h[:])
	rt := models.RefreshToken{UserID: userID, TokenHash: th, ExpiresAt: time.Now().Add(30 * 24 * time.Hour)}
	if err := db.Create(&rt).Error; err != nil {
		return "", err
	}
	return token, nil
}

// findRefreshTokenByRaw resolves a raw refresh token to its stored record.
func findRefreshTokenByRaw(token string) (*models.RefreshToken, error) {
	h := sha256.Sum256([]byte(token))
	th := hex.EncodeToString(h[:])
	var rt models.RefreshToken
	if err := db.Where("token_hash = ?", th).First(&rt).Error; err != nil {
		return nil, err
	}
	return &rt, nil
}

// revokeAllRefreshTokens invalidates every refresh token of a user, e.g.
// after a password change.
func revokeAllRefreshTokens(userID uint) error {
	return db.Model(&models.RefreshToken{}).
		Where("user_id = ? AND revoked = ?", userID, false).
		Update("revoked", true).Error
}
