package ledger

import (
	"testing"
	"time"

	"keuanganku/models"
)

func TestDateKey(t *testing.T) {
	// build the timestamp in local time so the expected key is stable
	// regardless of the machine's timezone
	ms := time.Date(2024, 5, 17, 12, 30, 0, 0, time.Local).UnixMilli()
	if got := DateKey(ms); got != "2024-05-17" {
		t.Fatalf("DateKey = %s, want 2024-05-17", got)
	}
	endOfDay := time.Date(2024, 5, 17, 23, 59, 59, 0, time.Local).UnixMilli()
	if DateKey(endOfDay) != "2024-05-17" {
		t.Fatal("end of day must stay in the same bucket")
	}
	nextDay := time.Date(2024, 5, 18, 0, 0, 1, 0, time.Local).UnixMilli()
	if DateKey(nextDay) != "2024-05-18" {
		t.Fatal("first second of the next day must open a new bucket")
	}
}

func TestGroupByDate(t *testing.T) {
	day1a := time.Date(2024, 5, 17, 20, 0, 0, 0, time.Local).UnixMilli()
	day1b := time.Date(2024, 5, 17, 9, 0, 0, 0, time.Local).UnixMilli()
	day2 := time.Date(2024, 5, 18, 10, 0, 0, 0, time.Local).UnixMilli()

	ts := []models.Transaction{
		{ID: 3, CreatedAtMs: day2, Amount: 500},
		{ID: 2, CreatedAtMs: day1a, Amount: 1200},
		{ID: 1, CreatedAtMs: day1b, Amount: 400},
	}
	grouped := GroupByDate(ts)
	if len(grouped) != 2 {
		t.Fatalf("expected 2 buckets, got %d", len(grouped))
	}
	d1 := grouped["2024-05-17"]
	if len(d1) != 2 {
		t.Fatalf("expected 2 transactions on day one, got %d", len(d1))
	}
	// input order preserved inside a bucket
	if d1[0].ID != 2 || d1[1].ID != 1 {
		t.Fatalf("bucket order not preserved: %d, %d", d1[0].ID, d1[1].ID)
	}
	if len(grouped["2024-05-18"]) != 1 || grouped["2024-05-18"][0].ID != 3 {
		t.Fatalf("day two bucket wrong: %+v", grouped["2024-05-18"])
	}
}

func TestGroupByDateEmpty(t *testing.T) {
	if g := GroupByDate(nil); len(g) != 0 {
		t.Fatalf("nil input must yield an empty map, got %v", g)
	}
}
