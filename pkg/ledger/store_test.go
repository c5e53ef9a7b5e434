package ledger

import (
	"fmt"
	"os"
	"testing"
	"time"

	"keuanganku/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Store tests run against a real Postgres and are opt-in. Set DB_DSN_TEST=1
// and DB_DSN to run them. Each test gets its own user; rows cascade away with
// the user on cleanup.

func testStore(t *testing.T) (*Store, uint) {
	t.Helper()
	if os.Getenv("DB_DSN_TEST") != "1" {
		t.Skip("store tests are disabled; set DB_DSN_TEST=1 to enable")
	}
	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		t.Skip("DB_DSN not set")
	}
	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	for _, m := range []any{
		&models.User{}, &models.Book{}, &models.Wallet{}, &models.Category{},
		&models.Transaction{}, &models.BookClosing{}, &models.Memo{}, &models.Tag{},
	} {
		if err := gdb.AutoMigrate(m); err != nil {
			t.Fatalf("migrate %T: %v", m, err)
		}
	}
	s := NewStore(gdb)
	return s, testUser(t, gdb)
}

func testUser(t *testing.T, gdb *gorm.DB) uint {
	t.Helper()
	u := models.User{
		Name:           "Test User",
		Email:          fmt.Sprintf("ledger-%d@example.com", time.Now().UnixNano()),
		HashedPassword: []byte("not-a-real-hash"),
	}
	if err := gdb.Create(&u).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	t.Cleanup(func() {
		// FK cascades take books, wallets, categories, transactions and tags
		gdb.Delete(&models.User{}, u.ID)
	})
	return u.ID
}

// seedLedger builds one book with a wallet and an income + expense category.
func seedLedger(t *testing.T, s *Store, userID uint, bookName string) (book *models.Book, wallet *models.Wallet, income, expense *models.Category) {
	t.Helper()
	book, _, err := s.CreateBook(userID, BookInput{Name: bookName, IsDefault: true})
	if err != nil {
		t.Fatalf("create book: %v", err)
	}
	wallet, _, err = s.CreateWallet(userID, WalletInput{BookID: book.ID, Name: "Tunai", Type: models.WalletCash})
	if err != nil {
		t.Fatalf("create wallet: %v", err)
	}
	income, _, err = s.CreateCategory(userID, CategoryInput{BookID: book.ID, Name: "Gaji", Type: models.TypePemasukan})
	if err != nil {
		t.Fatalf("create income category: %v", err)
	}
	expense, _, err = s.CreateCategory(userID, CategoryInput{BookID: book.ID, Name: "Belanja", Type: models.TypePengeluaran})
	if err != nil {
		t.Fatalf("create expense category: %v", err)
	}
	return book, wallet, income, expense
}

func record(t *testing.T, s *Store, userID uint, book *models.Book, wallet *models.Wallet, cat *models.Category, typ string, amount int64) *models.Transaction {
	t.Helper()
	tx, err := s.CreateTransaction(userID, TransactionInput{
		BookID:     book.ID,
		WalletID:   wallet.ID,
		CategoryID: cat.ID,
		Type:       typ,
		Amount:     amount,
	})
	if err != nil {
		t.Fatalf("create transaction: %v", err)
	}
	return tx
}

func TestDerivedBalance(t *testing.T) {
	s, userID := testStore(t)
	book, wallet, income, expense := seedLedger(t, s, userID, "Balance Book")

	w, err := s.UpdateWallet(userID, wallet.ID, WalletPatch{InitialBalance: i64p(1000)})
	if err != nil {
		t.Fatalf("set initial balance: %v", err)
	}
	if w.CurrentBalance != 1000 {
		t.Fatalf("balance = %d, want 1000", w.CurrentBalance)
	}

	record(t, s, userID, book, wallet, income, models.TypePemasukan, 500)
	exp := record(t, s, userID, book, wallet, expense, models.TypePengeluaran, 200)

	if bal, err := s.CurrentBalance(userID, wallet.ID); err != nil || bal != 1300 {
		t.Fatalf("balance = %d (%v), want 1300", bal, err)
	}

	// deleting a transaction adjusts the derived balance on the next read
	if err := s.DeleteTransaction(userID, exp.ID); err != nil {
		t.Fatalf("delete transaction: %v", err)
	}
	if bal, _ := s.CurrentBalance(userID, wallet.ID); bal != 1500 {
		t.Fatalf("balance after delete = %d, want 1500", bal)
	}
}

func TestIdempotentCreate(t *testing.T) {
	s, userID := testStore(t)
	book, wasCreated, err := s.CreateBook(userID, BookInput{Name: "Buku Utama"})
	if err != nil || !wasCreated {
		t.Fatalf("first create: created=%v err=%v", wasCreated, err)
	}
	again, wasCreated, err := s.CreateBook(userID, BookInput{Name: "Buku Utama"})
	if err != nil {
		t.Fatalf("second create: %v", err)
	}
	if wasCreated || again.ID != book.ID {
		t.Fatalf("expected existing book back, got created=%v id=%d (want %d)", wasCreated, again.ID, book.ID)
	}

	w1, _, err := s.CreateWallet(userID, WalletInput{BookID: book.ID, Name: "Tunai", Type: models.WalletCash})
	if err != nil {
		t.Fatalf("create wallet: %v", err)
	}
	w2, wasCreated, err := s.CreateWallet(userID, WalletInput{BookID: book.ID, Name: "Tunai", Type: models.WalletCash})
	if err != nil || wasCreated || w2.ID != w1.ID {
		t.Fatalf("wallet create not idempotent: created=%v err=%v", wasCreated, err)
	}
	// same name under a different type is a distinct wallet
	w3, wasCreated, err := s.CreateWallet(userID, WalletInput{BookID: book.ID, Name: "Tunai", Type: models.WalletBank})
	if err != nil || !wasCreated || w3.ID == w1.ID {
		t.Fatalf("distinct type should insert: created=%v err=%v", wasCreated, err)
	}

	c1, _, err := s.CreateCategory(userID, CategoryInput{BookID: book.ID, Name: "Gaji", Type: models.TypePemasukan})
	if err != nil {
		t.Fatalf("create category: %v", err)
	}
	c2, wasCreated, err := s.CreateCategory(userID, CategoryInput{BookID: book.ID, Name: "Gaji", Type: models.TypePemasukan})
	if err != nil || wasCreated || c2.ID != c1.ID {
		t.Fatalf("category create not idempotent: created=%v err=%v", wasCreated, err)
	}
}

func TestDefaultExclusivity(t *testing.T) {
	s, userID := testStore(t)
	b1, _, err := s.CreateBook(userID, BookInput{Name: "First", IsDefault: true})
	if err != nil {
		t.Fatalf("create first: %v", err)
	}
	b2, _, err := s.CreateBook(userID, BookInput{Name: "Second", IsDefault: true})
	if err != nil {
		t.Fatalf("create second: %v", err)
	}
	if !b2.IsDefault {
		t.Fatal("second book should hold the default flag")
	}
	reloaded, err := s.GetBook(userID, b1.ID)
	if err != nil {
		t.Fatalf("reload first: %v", err)
	}
	if reloaded.IsDefault {
		t.Fatal("default flag must be exclusive per user")
	}

	// flipping it back via update clears the sibling
	if _, err := s.UpdateBook(userID, b1.ID, BookPatch{IsDefault: boolp(true)}); err != nil {
		t.Fatalf("update: %v", err)
	}
	second, _ := s.GetBook(userID, b2.ID)
	if second.IsDefault {
		t.Fatal("update did not clear the sibling default")
	}
}

func TestOwnershipDenialIsUniform(t *testing.T) {
	s, owner := testStore(t)
	stranger := testUser(t, s.db)
	book, wallet, income, _ := seedLedger(t, s, owner, "Private Book")
	tx := record(t, s, owner, book, wallet, income, models.TypePemasukan, 100)

	// a foreign id and a missing id answer identically
	if _, err := s.GetBook(stranger, book.ID); !IsUnauthorized(err) {
		t.Fatalf("foreign book: got %v", err)
	}
	if _, err := s.GetBook(stranger, 99999999); !IsUnauthorized(err) {
		t.Fatalf("missing book: got %v", err)
	}
	if _, err := s.GetWallet(stranger, wallet.ID); !IsUnauthorized(err) {
		t.Fatalf("foreign wallet: got %v", err)
	}
	if _, err := s.GetTransaction(stranger, tx.ID); !IsUnauthorized(err) {
		t.Fatalf("foreign transaction: got %v", err)
	}
	if err := s.DeleteTransaction(stranger, tx.ID); !IsUnauthorized(err) {
		t.Fatalf("foreign delete: got %v", err)
	}
}

func TestCrossBookReferencesRejected(t *testing.T) {
	s, userID := testStore(t)
	bookA, walletA, incomeA, _ := seedLedger(t, s, userID, "Book A")
	_, walletB, _, _ := seedLedger(t, s, userID, "Book B")

	// creating against a wallet from another book is a referential conflict
	_, err := s.CreateTransaction(userID, TransactionInput{
		BookID:     bookA.ID,
		WalletID:   walletB.ID,
		CategoryID: incomeA.ID,
		Type:       models.TypePemasukan,
		Amount:     100,
	})
	if !IsConflict(err) {
		t.Fatalf("cross-book wallet on create: got %v", err)
	}

	tx := record(t, s, userID, bookA, walletA, incomeA, models.TypePemasukan, 100)
	if _, err := s.UpdateTransaction(userID, tx.ID, TransactionPatch{WalletID: &walletB.ID}); !IsConflict(err) {
		t.Fatalf("cross-book wallet on update: got %v", err)
	}
}

func TestDeletionGuards(t *testing.T) {
	s, userID := testStore(t)
	book, wallet, income, _ := seedLedger(t, s, userID, "Guarded Book")
	record(t, s, userID, book, wallet, income, models.TypePemasukan, 100)

	if err := s.DeleteWallet(userID, wallet.ID); !IsConflict(err) {
		t.Fatalf("wallet with transactions: got %v", err)
	}
	if err := s.DeleteCategory(userID, income.ID); !IsConflict(err) {
		t.Fatalf("category with transactions: got %v", err)
	}
	// the user's only book is the default one and cannot go
	if err := s.DeleteBook(userID, book.ID); !IsConflict(err) {
		t.Fatalf("only default book: got %v", err)
	}
}

func TestSummaryAndByCategory(t *testing.T) {
	s, userID := testStore(t)
	book, wallet, income, expense := seedLedger(t, s, userID, "Summary Book")
	record(t, s, userID, book, wallet, income, models.TypePemasukan, 700)
	record(t, s, userID, book, wallet, income, models.TypePemasukan, 500)
	record(t, s, userID, book, wallet, expense, models.TypePengeluaran, 400)

	totals, err := s.Summary(userID, Filter{BookID: book.ID})
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if totals.Income != 1200 || totals.Expense != 400 || totals.Balance != 800 {
		t.Fatalf("totals = %+v, want {1200 400 800}", totals)
	}

	rows, err := s.ByCategory(userID, Filter{BookID: book.ID})
	if err != nil {
		t.Fatalf("by category: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 category rows, got %d", len(rows))
	}
	// largest total first
	if rows[0].CategoryID != income.ID || rows[0].TotalAmount != 1200 || rows[0].TransactionCount != 2 {
		t.Fatalf("first row = %+v", rows[0])
	}
	if rows[1].CategoryID != expense.ID || rows[1].TotalAmount != 400 {
		t.Fatalf("second row = %+v", rows[1])
	}
}

func TestListTransactionsPagingAndFilters(t *testing.T) {
	s, userID := testStore(t)
	book, wallet, income, expense := seedLedger(t, s, userID, "Paged Book")
	base := time.Now().UnixMilli()
	for i := 0; i < 5; i++ {
		if _, err := s.CreateTransaction(userID, TransactionInput{
			BookID: book.ID, WalletID: wallet.ID, CategoryID: income.ID,
			Type: models.TypePemasukan, Amount: int64(100 * (i + 1)),
			CreatedAtMs: base + int64(i*1000),
			Note:        fmt.Sprintf("income %d", i),
		}); err != nil {
			t.Fatalf("create: %v", err)
		}
	}
	record(t, s, userID, book, wallet, expense, models.TypePengeluaran, 50)

	ts, total, err := s.ListTransactions(userID, Filter{BookID: book.ID, Page: 1, PerPage: 4})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 6 || len(ts) != 4 {
		t.Fatalf("total=%d len=%d, want 6 and 4", total, len(ts))
	}
	// newest first
	for i := 1; i < len(ts); i++ {
		if ts[i-1].CreatedAtMs < ts[i].CreatedAtMs {
			t.Fatal("listing not ordered by created_at_ms descending")
		}
	}

	_, total, err = s.ListTransactions(userID, Filter{BookID: book.ID, Type: models.TypePengeluaran})
	if err != nil || total != 1 {
		t.Fatalf("type filter: total=%d err=%v", total, err)
	}
	_, total, err = s.ListTransactions(userID, Filter{BookID: book.ID, Search: "income 3"})
	if err != nil || total != 1 {
		t.Fatalf("search filter: total=%d err=%v", total, err)
	}
	_, total, err = s.ListTransactions(userID, Filter{BookID: book.ID, StartMs: base + 1000, EndMs: base + 3000})
	if err != nil || total != 3 {
		t.Fatalf("range filter: total=%d err=%v", total, err)
	}
}

func TestBulkDeleteAllOrNothing(t *testing.T) {
	s, owner := testStore(t)
	stranger := testUser(t, s.db)
	book, wallet, income, _ := seedLedger(t, s, owner, "Bulk Book")
	foreignBook, foreignWallet, foreignIncome, _ := seedLedger(t, s, stranger, "Foreign Book")

	t1 := record(t, s, owner, book, wallet, income, models.TypePemasukan, 100)
	t2 := record(t, s, owner, book, wallet, income, models.TypePemasukan, 200)
	foreign := record(t, s, stranger, foreignBook, foreignWallet, foreignIncome, models.TypePemasukan, 300)

	// one foreign id poisons the whole batch
	if err := s.BulkDeleteTransactions(owner, []uint{t1.ID, t2.ID, foreign.ID}); !IsUnauthorized(err) {
		t.Fatalf("mixed batch: got %v", err)
	}
	if _, _, err := s.ListTransactions(owner, Filter{BookID: book.ID}); err != nil {
		t.Fatalf("list: %v", err)
	}
	if _, total, _ := s.ListTransactions(owner, Filter{BookID: book.ID}); total != 2 {
		t.Fatalf("nothing should have been deleted, total=%d", total)
	}

	if err := s.BulkDeleteTransactions(owner, []uint{t1.ID, t2.ID}); err != nil {
		t.Fatalf("clean batch: %v", err)
	}
	if _, total, _ := s.ListTransactions(owner, Filter{BookID: book.ID}); total != 0 {
		t.Fatalf("batch not deleted, total=%d", total)
	}
}

func TestTagTombstone(t *testing.T) {
	s, userID := testStore(t)
	tag, err := s.CreateTag(userID, TagInput{Name: "Work", Color: 0xFF5722})
	if err != nil {
		t.Fatalf("create tag: %v", err)
	}
	if _, err := s.CreateTag(userID, TagInput{Name: "Work"}); !IsConflict(err) {
		t.Fatalf("duplicate tag: got %v", err)
	}
	if err := s.DeleteTag(userID, tag.ID); err != nil {
		t.Fatalf("delete tag: %v", err)
	}
	tags, err := s.ListTags(userID)
	if err != nil {
		t.Fatalf("list tags: %v", err)
	}
	for _, tg := range tags {
		if tg.ID == tag.ID {
			t.Fatal("tombstoned tag still listed")
		}
	}
	// the row survives as a tombstone for syncing clients
	got, err := s.GetTag(userID, tag.ID)
	if err != nil {
		t.Fatalf("get tombstoned tag: %v", err)
	}
	if !got.IsDeleted {
		t.Fatal("tag not marked deleted")
	}
}

func TestClosingLifecycle(t *testing.T) {
	s, userID := testStore(t)
	book, _, _, _ := seedLedger(t, s, userID, "Closing Book")
	start := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC).UnixMilli()
	end := time.Date(2024, 4, 30, 23, 59, 59, 0, time.UTC).UnixMilli()

	c, err := s.CreateClosing(userID, ClosingInput{
		BookID: book.ID, PeriodStart: start, PeriodEnd: end,
		PeriodLabel: "April 2024", ClosedAt: end, FinalBalance: 1500000,
	})
	if err != nil {
		t.Fatalf("create closing: %v", err)
	}
	if _, err := s.CreateClosing(userID, ClosingInput{
		BookID: book.ID, PeriodStart: end, PeriodEnd: start,
		PeriodLabel: "Backwards", ClosedAt: end,
	}); !IsValidation(err) {
		t.Fatalf("inverted period: got %v", err)
	}

	if _, err := s.UpdateClosing(userID, c.ID, ClosingPatch{IsVerified: boolp(true)}); err != nil {
		t.Fatalf("update closing: %v", err)
	}
	if err := s.DeleteClosing(userID, c.ID); err != nil {
		t.Fatalf("delete closing: %v", err)
	}
	cs, err := s.ListClosings(userID)
	if err != nil {
		t.Fatalf("list closings: %v", err)
	}
	for _, row := range cs {
		if row.ID == c.ID {
			t.Fatal("tombstoned closing still listed")
		}
	}
}
