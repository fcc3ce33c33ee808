package models

import "time"

// Expense is a committed ledger row. Owned exclusively by the ledger store:
// the staging side keeps no claim on it after commit.
type Expense struct {
	ID           uint    `gorm:"primaryKey" json:"id"`
	OwnerID      string  `gorm:"index:idx_expenses_owner_date;index:idx_expenses_owner_category" json:"owner_id"`
	Date         string  `gorm:"index:idx_expenses_owner_date" json:"date"` // YYYY-MM-DD
	Amount       float64 `gorm:"index" json:"amount"`
	MainCategory string  `gorm:"index:idx_expenses_owner_category" json:"main_category"`
	SubCategory  string  `json:"sub_category,omitempty"`
	Payee        string  `json:"payee,omitempty"`
	Consumer     string  `json:"consumer,omitempty"`
	Remark       string  `json:"remark,omitempty"`

	// HashID is an indexed dedup fingerprint. Deliberately not unique: a
	// duplicate-flagged confirmation still commits like any other item.
	HashID string `gorm:"index" json:"hash_id,omitempty"`

	SourceChannel string    `json:"source_channel,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// FromPayload builds an expense row from a staged payload.
func FromPayload(ownerID string, p EntryPayload, source string) Expense {
	return Expense{
		OwnerID:       ownerID,
		Date:          p.Date,
		Amount:        p.Amount,
		MainCategory:  p.MainCategory,
		SubCategory:   p.SubCategory,
		Payee:         p.Payee,
		Consumer:      p.Consumer,
		Remark:        p.Remark,
		HashID:        p.HashID,
		SourceChannel: source,
	}
}
