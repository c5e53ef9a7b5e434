package main

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"keuanganku/models"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	if len(os.Args) < 4 {
		fmt.Println("usage: go run ./cmd/create_user <name> <email> <password>")
		os.Exit(2)
	}
	name := os.Args[1]
	email := strings.ToLower(strings.TrimSpace(os.Args[2]))
	password := os.Args[3]

	_ = godotenv.Load()
	dsn := os.Getenv("DB_DSN")
	if strings.TrimSpace(dsn) == "" {
		log.Fatal("DB_DSN not set in environment")
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to open db: %v", err)
	}

	// check existing
	var existing models.User
	if err := db.Where("email = ?", email).First(&existing).Error; err == nil {
		fmt.Printf("user %s already exists (id=%d)\n", email, existing.ID)
		os.Exit(0)
	}

	hpw, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("bcrypt failed: %v", err)
	}
	user := models.User{Name: name, Email: email, HashedPassword: hpw}
	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		return seedDefaults(tx, user.ID)
	})
	if err != nil {
		log.Fatalf("failed to create user: %v", err)
	}
	fmt.Printf("created user %s id=%d\n", email, user.ID)
}

// seedDefaults mirrors what registration gives a fresh account: the default
// book, a cash wallet and the standard category set.
func seedDefaults(tx *gorm.DB, userID uint) error {
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
		BookID:    book.ID,
		Name:      "Tunai",
		Type:      models.WalletCash,
		Icon:      "💵",
		Color:     "#4CAF50",
		IsDefault: true,
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
