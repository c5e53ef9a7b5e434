package ledger

import "keuanganku/models"

// WalletBalance is a wallet with only its identifying fields and the derived
// balance, for the statistics view.
type WalletBalance struct {
	ID             uint   `json:"id"`
	Name           string `json:"name"`
	Type           string `json:"type"`
	CurrentBalance int64  `json:"current_balance"`
}

// UserStatistics is the account-wide rollup across all of a user's books.
type UserStatistics struct {
	TotalBooks        int64           `json:"total_books"`
	TotalTransactions int64           `json:"total_transactions"`
	TotalIncome       int64           `json:"total_income"`
	TotalExpense      int64           `json:"total_expense"`
	Balance           int64           `json:"balance"`
	Wallets           []WalletBalance `json:"wallets"`
}

// Statistics aggregates totals and per-wallet derived balances for userID.
func (s *Store) Statistics(userID uint) (*UserStatistics, error) {
	stats := &UserStatistics{}
	if err := s.db.Model(&models.Book{}).
		Where("user_id = ?", userID).
		Count(&stats.TotalBooks).Error; err != nil {
		return nil, err
	}
	if err := s.db.Model(&models.Transaction{}).
		Joins("JOIN books ON books.id = transactions.book_id").
		Where("books.user_id = ?", userID).
		Count(&stats.TotalTransactions).Error; err != nil {
		return nil, err
	}
	totals, err := s.Summary(userID, Filter{})
	if err != nil {
		return nil, err
	}
	stats.TotalIncome = totals.Income
	stats.TotalExpense = totals.Expense
	stats.Balance = totals.Balance

	wallets, err := s.ListWallets(userID, 0)
	if err != nil {
		return nil, err
	}
	stats.Wallets = make([]WalletBalance, 0, len(wallets))
	for _, w := range wallets {
		stats.Wallets = append(stats.Wallets, WalletBalance{
			ID:             w.ID,
			Name:           w.Name,
			Type:           w.Type,
			CurrentBalance: w.CurrentBalance,
		})
	}
	return stats, nil
}
