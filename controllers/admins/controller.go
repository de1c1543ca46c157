package admins

import (
	"github.com/chatgpt805/crypto-click-earn/store"

	"gorm.io/gorm"
)

// Controller serves the administrative endpoints. Listing and reporting
// queries use the DB handle; every state transition (task review, withdrawal
// resolution) goes through the ledger, which re-checks the admin flag itself.
type Controller struct {
	db     *gorm.DB
	ledger *store.Ledger
}

func NewController(db *gorm.DB, ledger *store.Ledger) *Controller {
	return &Controller{db: db, ledger: ledger}
}
