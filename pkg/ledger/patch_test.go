package ledger

import (
	"reflect"
	"testing"
)

func strp(s string) *string { return &s }
func i64p(v int64) *int64   { return &v }
func boolp(v bool) *bool    { return &v }

func TestBookPatchUpdates(t *testing.T) {
	if u := (BookPatch{}).updates(); len(u) != 0 {
		t.Fatalf("empty patch must yield no updates, got %v", u)
	}
	p := BookPatch{Name: strp("Rumah"), IsDefault: boolp(false)}
	want := map[string]any{"name": "Rumah", "is_default": false}
	if got := p.updates(); !reflect.DeepEqual(got, want) {
		t.Fatalf("updates = %v, want %v", got, want)
	}
}

func TestWalletPatchZeroValuesStillApply(t *testing.T) {
	// a set pointer to the zero value is an explicit update, not "unchanged"
	p := WalletPatch{InitialBalance: i64p(0), Icon: strp("")}
	got := p.updates()
	if v, okKey := got["initial_balance"]; !okKey || v.(int64) != 0 {
		t.Fatalf("initial_balance zero not carried: %v", got)
	}
	if v, okKey := got["icon"]; !okKey || v.(string) != "" {
		t.Fatalf("empty icon not carried: %v", got)
	}
	if len(got) != 2 {
		t.Fatalf("unset fields leaked into updates: %v", got)
	}
}

func TestTransactionPatchUpdates(t *testing.T) {
	wid := uint(7)
	p := TransactionPatch{
		WalletID:    &wid,
		Amount:      i64p(2500),
		Note:        strp("kopi"),
		CreatedAtMs: i64p(1700000000000),
	}
	want := map[string]any{
		"wallet_id":     uint(7),
		"amount":        int64(2500),
		"note":          "kopi",
		"created_at_ms": int64(1700000000000),
	}
	if got := p.updates(); !reflect.DeepEqual(got, want) {
		t.Fatalf("updates = %v, want %v", got, want)
	}
}

func TestClosingPatchUpdates(t *testing.T) {
	fb := 125000.0
	p := ClosingPatch{FinalBalance: &fb, IsVerified: boolp(true)}
	want := map[string]any{"final_balance": 125000.0, "is_verified": true}
	if got := p.updates(); !reflect.DeepEqual(got, want) {
		t.Fatalf("updates = %v, want %v", got, want)
	}
}
