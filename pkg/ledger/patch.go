package ledger

// Patch objects replace ad hoc SQL fragment building: a nil field means
// "leave unchanged", a set pointer becomes one column in a single
// parameterized UPDATE. Validation of the set fields happens in the store
// method that applies the patch.

// BookPatch is a partial update for a book.
type BookPatch struct {
	Name        *string
	Description *string
	Icon        *string
	Color       *string
	IsDefault   *bool
}

func (p BookPatch) updates() map[string]any {
	u := map[string]any{}
	if p.Name != nil {
		u["name"] = *p.Name
	}
	if p.Description != nil {
		u["description"] = *p.Description
	}
	if p.Icon != nil {
		u["icon"] = *p.Icon
	}
	if p.Color != nil {
		u["color"] = *p.Color
	}
	if p.IsDefault != nil {
		u["is_default"] = *p.IsDefault
	}
	return u
}

// WalletPatch is a partial update for a wallet.
type WalletPatch struct {
	Name           *string
	Type           *string
	Icon           *string
	Color          *string
	InitialBalance *int64
	IsDefault      *bool
}

func (p WalletPatch) updates() map[string]any {
	u := map[string]any{}
	if p.Name != nil {
		u["name"] = *p.Name
	}
	if p.Type != nil {
		u["type"] = *p.Type
	}
	if p.Icon != nil {
		u["icon"] = *p.Icon
	}
	if p.Color != nil {
		u["color"] = *p.Color
	}
	if p.InitialBalance != nil {
		u["initial_balance"] = *p.InitialBalance
	}
	if p.IsDefault != nil {
		u["is_default"] = *p.IsDefault
	}
	return u
}

// CategoryPatch is a partial update for a category.
type CategoryPatch struct {
	Name      *string
	Type      *string
	Color     *string
	Icon      *string
	IsDefault *bool
}

func (p CategoryPatch) updates() map[string]any {
	u := map[string]any{}
	if p.Name != nil {
		u["name"] = *p.Name
	}
	if p.Type != nil {
		u["type"] = *p.Type
	}
	if p.Color != nil {
		u["color"] = *p.Color
	}
	if p.Icon != nil {
		u["icon"] = *p.Icon
	}
	if p.IsDefault != nil {
		u["is_default"] = *p.IsDefault
	}
	return u
}

// TransactionPatch is a partial update for a transaction. Identity (the id)
// is immutable; everything else may change under the same referential checks
// as creation.
type TransactionPatch struct {
	WalletID    *uint
	CategoryID  *uint
	Type        *string
	Amount      *int64
	Note        *string
	CreatedAtMs *int64
	ImageURL    *string
}

func (p TransactionPatch) updates() map[string]any {
	u := map[string]any{}
	if p.WalletID != nil {
		u["wallet_id"] = *p.WalletID
	}
	if p.CategoryID != nil {
		u["category_id"] = *p.CategoryID
	}
	if p.Type != nil {
		u["type"] = *p.Type
	}
	if p.Amount != nil {
		u["amount"] = *p.Amount
	}
	if p.Note != nil {
		u["note"] = *p.Note
	}
	if p.CreatedAtMs != nil {
		u["created_at_ms"] = *p.CreatedAtMs
	}
	if p.ImageURL != nil {
		u["image_url"] = *p.ImageURL
	}
	return u
}
