package ledger

import (
	"time"

	"keuanganku/models"
)

// The summary engine is read-only: every view here is derived from the
// filtered transaction set under the exact same authorization scoping as
// ListTransactions.

// Totals is the income/expense/balance rollup for a filter.
type Totals struct {
	Income  int64 `json:"income"`
	Expense int64 `json:"expense"`
	Balance int64 `json:"balance"`
}

// Summary sums amounts by type over the filtered set. Balance is
// income - expense.
func (s *Store) Summary(userID uint, f Filter) (Totals, error) {
	type row struct {
		Type  string
		Total int64
	}
	q, err := s.scope(userID, f)
	if err != nil {
		return Totals{}, err
	}
	var rows []row
	if err := q.Select("transactions.type AS type, COALESCE(SUM(transactions.amount), 0) AS total").
		Group("transactions.type").
		Scan(&rows).Error; err != nil {
		return Totals{}, err
	}
	var t Totals
	for _, r := range rows {
		switch r.Type {
		case models.TypePemasukan:
			t.Income = r.Total
		case models.TypePengeluaran:
			t.Expense = r.Total
		}
	}
	t.Balance = t.Income - t.Expense
	return t, nil
}

// CategoryTotal is one row of the by-category grouping.
type CategoryTotal struct {
	CategoryID       uint  `json:"category_id"`
	TotalAmount      int64 `json:"total_amount"`
	TransactionCount int64 `json:"transaction_count"`
}

// ByCategory groups the filtered set per category, largest total first.
func (s *Store) ByCategory(userID uint, f Filter) ([]CategoryTotal, error) {
	q, err := s.scope(userID, f)
	if err != nil {
		return nil, err
	}
	var rows []CategoryTotal
	if err := q.Select("transactions.category_id AS category_id, SUM(transactions.amount) AS total_amount, COUNT(*) AS transaction_count").
		Group("transactions.category_id").
		Order("total_amount DESC").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// ByDate returns the filtered transactions grouped per calendar day
// (server timezone). Within a day the created_at_ms descending order of the
// base listing is preserved.
func (s *Store) ByDate(userID uint, f Filter) (map[string][]models.Transaction, error) {
	q, err := s.scope(userID, f)
	if err != nil {
		return nil, err
	}
	var ts []models.Transaction
	if err := q.Order("transactions.created_at_ms DESC, transactions.id DESC").Find(&ts).Error; err != nil {
		return nil, err
	}
	return GroupByDate(ts), nil
}

// DateKey converts an event timestamp in milliseconds to its calendar-day
// grouping key in the server timezone.
func DateKey(ms int64) string {
	return time.UnixMilli(ms).Format("2006-01-02")
}

// GroupByDate buckets transactions by calendar day, preserving input order
// within each bucket.
func GroupByDate(ts []models.Transaction) map[string][]models.Transaction {
	grouped := make(map[string][]models.Transaction, len(ts))
	for _, t := range ts {
		k := DateKey(t.CreatedAtMs)
		grouped[k] = append(grouped[k], t)
	}
	return grouped
}
