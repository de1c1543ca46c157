package users

import (
	"github.com/chatgpt805/crypto-click-earn/store"

	"gorm.io/gorm"
)

// Controller serves the end-user endpoints. Listing queries go straight to the
// DB handle; every balance-affecting operation goes through the ledger.
type Controller struct {
	db     *gorm.DB
	ledger *store.Ledger
}

func NewController(db *gorm.DB, ledger *store.Ledger) *Controller {
	return &Controller{db: db, ledger: ledger}
}
