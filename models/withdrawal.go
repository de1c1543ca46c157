package models

import "time"

const (
	WithdrawalStatusPending  = "pending"
	WithdrawalStatusApproved = "approved"
	WithdrawalStatusRejected = "rejected"
)

type Withdrawal struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	UserID         uint       `gorm:"not null;index" json:"user_id"`
	FaucetpayEmail string     `gorm:"size:191;not null" json:"faucetpay_email"`
	TaskProof      string     `gorm:"type:text;not null" json:"task_proof"`
	Amount         float64    `gorm:"type:decimal(20,8);not null" json:"amount"`
	CryptoType     CryptoType `gorm:"type:varchar(10);not null" json:"crypto_type"`
	OrderID        string     `gorm:"type:varchar(191);not null;uniqueIndex" json:"order_id"`
	Status         string     `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"-"`
}

func (Withdrawal) TableName() string {
	return "withdrawals"
}
