package models

import (
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"
)

type User struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	Email          string    `gorm:"size:191;uniqueIndex;not null" json:"email"`
	Password       string    `gorm:"size:255;not null" json:"-"`
	BalancePepe    float64   `gorm:"column:balance_pepe;type:decimal(20,8);not null;default:0" json:"balance_pepe"`
	BalanceDash    float64   `gorm:"column:balance_dash;type:decimal(20,8);not null;default:0" json:"balance_dash"`
	BalanceLtc     float64   `gorm:"column:balance_ltc;type:decimal(20,8);not null;default:0" json:"balance_ltc"`
	FaucetpayEmail *string   `gorm:"size:191" json:"faucetpay_email,omitempty"`
	IsAdmin        bool      `gorm:"not null;default:false" json:"is_admin"`
	CreatedAt      time.Time `json:"-"`
	UpdatedAt      time.Time `json:"-"`
}

func (User) TableName() string {
	return "users"
}

// BalanceFor returns the balance held in the given denomination. Access goes
// through this switch so a denomination can never be looked up by a raw
// column/string key.
func (u *User) BalanceFor(ct CryptoType) float64 {
	switch ct {
	case CryptoPepe:
		return u.BalancePepe
	case CryptoDash:
		return u.BalanceDash
	case CryptoLtc:
		return u.BalanceLtc
	}
	return 0
}

// SetBalance stores an already-rounded balance in the given denomination.
func (u *User) SetBalance(ct CryptoType, v float64) {
	switch ct {
	case CryptoPepe:
		u.BalancePepe = v
	case CryptoDash:
		u.BalanceDash = v
	case CryptoLtc:
		u.BalanceLtc = v
	}
}

// BalanceColumn maps a denomination to its users-table column for targeted
// UPDATEs inside ledger transactions.
func BalanceColumn(ct CryptoType) (string, error) {
	switch ct {
	case CryptoPepe:
		return "balance_pepe", nil
	case CryptoDash:
		return "balance_dash", nil
	case CryptoLtc:
		return "balance_ltc", nil
	}
	return "", fmt.Errorf("unknown crypto type %q", ct)
}

func (u *User) HashPassword() error {
	hashed, err := bcrypt.GenerateFromPassword([]byte(u.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = string(hashed)
	return nil
}

func (u *User) ValidatePassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)) == nil
}
