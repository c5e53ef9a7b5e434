package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

// helper to perform requests with auth token
func performRequest(r http.Handler, method, path string, body io.Reader, token string, contentType string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func setupTestServer(t *testing.T) *gin.Engine {
	// integration tests are opt-in. Set DB_DSN_TEST=1 and DB_DSN to run them.
	if os.Getenv("DB_DSN_TEST") != "1" {
		t.Skip("integration tests are disabled; set DB_DSN_TEST=1 to enable")
	}
	gin.SetMode(gin.TestMode)
	jwtSecret = []byte("test-secret")
	tmp := t.TempDir()
	_ = os.Setenv("UPLOAD_BASE", tmp)
	initDB()
	r := gin.Default()
	setupRoutes(r)
	return r
}

func postJSON(r http.Handler, path string, payload any, token string) *httptest.ResponseRecorder {
	b, _ := json.Marshal(payload)
	return performRequest(r, http.MethodPost, path, bytes.NewBuffer(b), token, "application/json")
}

// data unwraps the success envelope of a response body.
func data(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("bad response body: %v (%s)", err, rec.Body.String())
	}
	d, _ := body["data"].(map[string]any)
	return d
}

// registerTestUser creates a fresh account and returns its access token.
func registerTestUser(t *testing.T, r http.Handler) string {
	t.Helper()
	email := fmt.Sprintf("flow-%d@example.com", time.Now().UnixNano())
	resp := postJSON(r, "/api/auth/register", map[string]string{
		"name": "Flow Tester", "email": email, "password": "secret-pass-1",
	}, "")
	if resp.Code != http.StatusCreated {
		t.Fatalf("register failed status=%d body=%s", resp.Code, resp.Body.String())
	}
	token, _ := data(t, resp)["token"].(string)
	if token == "" {
		t.Fatalf("empty token in register response: %s", resp.Body.String())
	}
	return token
}

func TestFullFlow(t *testing.T) {
	r := setupTestServer(t)
	token := registerTestUser(t, r)

	// registration seeds the default ledger
	resp := performRequest(r, http.MethodGet, "/api/books", nil, token, "")
	if resp.Code != http.StatusOK {
		t.Fatalf("list books failed status=%d body=%s", resp.Code, resp.Body.String())
	}
	var booksBody struct {
		Data []struct {
			ID        float64
			Name      string
			IsDefault bool
			Wallets   []struct {
				ID   float64
				Name string
			}
			Categories []struct {
				ID   float64
				Name string
				Type string
			}
		}
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &booksBody); err != nil {
		t.Fatalf("decode books: %v", err)
	}
	if len(booksBody.Data) != 1 || booksBody.Data[0].Name != "Buku Utama" || !booksBody.Data[0].IsDefault {
		t.Fatalf("expected seeded default book, got %s", resp.Body.String())
	}
	book := booksBody.Data[0]
	if len(book.Wallets) != 1 || book.Wallets[0].Name != "Tunai" {
		t.Fatalf("expected seeded Tunai wallet, got %+v", book.Wallets)
	}
	var gajiID float64
	for _, c := range book.Categories {
		if c.Name == "Gaji" {
			gajiID = c.ID
		}
	}
	if gajiID == 0 {
		t.Fatalf("seeded Gaji category missing: %+v", book.Categories)
	}

	// idempotent create: same name answers 200 with the existing book
	resp = postJSON(r, "/api/books", map[string]any{"name": "Buku Utama"}, token)
	if resp.Code != http.StatusOK {
		t.Fatalf("duplicate book create status=%d, want 200; body=%s", resp.Code, resp.Body.String())
	}
	if id, _ := data(t, resp)["ID"].(float64); id != book.ID {
		t.Fatalf("idempotent create returned a different book: %v vs %v", id, book.ID)
	}

	// record a salary payment
	resp = postJSON(r, "/api/transactions", map[string]any{
		"book_id":     book.ID,
		"wallet_id":   book.Wallets[0].ID,
		"category_id": gajiID,
		"type":        "PEMASUKAN",
		"amount":      2000000,
		"note":        "Gaji bulan ini",
	}, token)
	if resp.Code != http.StatusCreated {
		t.Fatalf("create transaction status=%d body=%s", resp.Code, resp.Body.String())
	}

	// the wallet balance is derived from the new entry
	resp = performRequest(r, http.MethodGet, fmt.Sprintf("/api/wallets/%.0f", book.Wallets[0].ID), nil, token, "")
	if resp.Code != http.StatusOK {
		t.Fatalf("get wallet status=%d body=%s", resp.Code, resp.Body.String())
	}
	if bal, _ := data(t, resp)["current_balance"].(float64); bal != 2000000 {
		t.Fatalf("current_balance = %v, want 2000000", bal)
	}

	// the summary reflects the same ledger
	resp = performRequest(r, http.MethodGet, fmt.Sprintf("/api/reports/summary?book_id=%.0f", book.ID), nil, token, "")
	if resp.Code != http.StatusOK {
		t.Fatalf("summary status=%d body=%s", resp.Code, resp.Body.String())
	}
	sum := data(t, resp)
	if sum["income"].(float64) != 2000000 || sum["balance"].(float64) != 2000000 {
		t.Fatalf("summary = %v", sum)
	}

	// protected endpoints without a token answer 401
	unauth := performRequest(r, http.MethodGet, "/api/transactions", nil, "", "")
	if unauth.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", unauth.Code)
	}
}

func TestOwnershipAcrossUsers(t *testing.T) {
	r := setupTestServer(t)
	owner := registerTestUser(t, r)
	stranger := registerTestUser(t, r)

	resp := postJSON(r, "/api/books", map[string]any{"name": "Rahasia"}, owner)
	if resp.Code != http.StatusCreated {
		t.Fatalf("create book status=%d body=%s", resp.Code, resp.Body.String())
	}
	bookID, _ := data(t, resp)["ID"].(float64)

	// a foreign book answers the same as a missing one
	denied := performRequest(r, http.MethodGet, fmt.Sprintf("/api/books/%.0f", bookID), nil, stranger, "")
	if denied.Code != http.StatusForbidden {
		t.Fatalf("foreign book status=%d, want 403; body=%s", denied.Code, denied.Body.String())
	}
	missing := performRequest(r, http.MethodGet, "/api/books/99999999", nil, stranger, "")
	if missing.Code != http.StatusForbidden {
		t.Fatalf("missing book status=%d, want 403", missing.Code)
	}
	if denied.Body.String() != missing.Body.String() {
		t.Fatalf("denial must be uniform: %s vs %s", denied.Body.String(), missing.Body.String())
	}
}

func TestRefreshTokenRotation(t *testing.T) {
	r := setupTestServer(t)
	email := fmt.Sprintf("rotate-%d@example.com", time.Now().UnixNano())
	resp := postJSON(r, "/api/auth/register", map[string]string{
		"name": "Rotator", "email": email, "password": "secret-pass-1",
	}, "")
	if resp.Code != http.StatusCreated {
		t.Fatalf("register status=%d body=%s", resp.Code, resp.Body.String())
	}
	refresh, _ := data(t, resp)["refresh_token"].(string)
	if refresh == "" {
		t.Fatal("no refresh token issued at registration")
	}

	resp = postJSON(r, "/api/auth/refresh", map[string]string{"refresh_token": refresh}, "")
	if resp.Code != http.StatusOK {
		t.Fatalf("refresh status=%d body=%s", resp.Code, resp.Body.String())
	}
	next, _ := data(t, resp)["refresh_token"].(string)
	if next == "" || next == refresh {
		t.Fatal("refresh must rotate the token")
	}

	// the used token is revoked
	resp = postJSON(r, "/api/auth/refresh", map[string]string{"refresh_token": refresh}, "")
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("replayed refresh status=%d, want 401", resp.Code)
	}
}

func TestMigrateCommand(t *testing.T) {
	if os.Getenv("DB_DSN_TEST") != "1" {
		t.Skip("integration tests are disabled; set DB_DSN_TEST=1 to enable")
	}
	initDB()
}
