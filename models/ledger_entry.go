package models

import "time"

const (
	FlowCredit = "credit"
	FlowDebit  = "debit"

	EntryTypeTaskReward = "task_reward"
	EntryTypeWithdrawal = "withdrawal"
)

// LedgerEntry is the audit trail of balance mutations. Every credit from an
// approved task submission and every debit from an approved withdrawal writes
// exactly one entry in the same transaction as the balance update.
type LedgerEntry struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	UserID     uint       `gorm:"not null;index" json:"user_id"`
	Amount     float64    `gorm:"type:decimal(20,8);not null" json:"amount"`
	CryptoType CryptoType `gorm:"type:varchar(10);not null" json:"crypto_type"`
	Flow       string     `gorm:"type:varchar(10);not null" json:"flow"`
	EntryType  string     `gorm:"type:varchar(50);not null" json:"entry_type"`
	OrderID    string     `gorm:"type:varchar(191);not null;uniqueIndex" json:"order_id"`
	Message    *string    `gorm:"type:text" json:"message,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

func (LedgerEntry) TableName() string {
	return "ledger_entries"
}
