package admins

import (
	"net/http"
	"time"

	"github.com/chatgpt805/crypto-click-earn/models"
	"github.com/chatgpt805/crypto-click-earn/utils"
)

type LedgerDetail struct {
	UserEmail  string    `json:"user_email"`
	Amount     float64   `json:"amount"`
	CryptoType string    `json:"crypto_type"`
	Flow       string    `json:"flow"`
	EntryType  string    `json:"entry_type"`
	Message    *string   `json:"message"`
	CreatedAt  time.Time `json:"created_at"`
}

type DashboardStats struct {
	TotalUsers         int64              `json:"total_users"`
	TotalTasks         int64              `json:"total_tasks"`
	PendingTasks       int64              `json:"pending_tasks"`
	PendingSubmissions int64              `json:"pending_submissions"`
	TotalWithdrawals   int64              `json:"total_withdrawals"`
	PendingWithdrawals int64              `json:"pending_withdrawals"`
	TotalBalances      map[string]float64 `json:"total_balances"`
	TotalPaidOut       map[string]float64 `json:"total_paid_out"`
	LastEntries        []LedgerDetail     `json:"last_entries"`
}

// GET /admin/dashboard
func (c *Controller) Dashboard(w http.ResponseWriter, r *http.Request) {
	var stats DashboardStats
	db := c.db

	stats.TotalBalances = make(map[string]float64)
	stats.TotalPaidOut = make(map[string]float64)
	stats.LastEntries = make([]LedgerDetail, 0)

	db.Model(&models.User{}).Count(&stats.TotalUsers)
	db.Model(&models.Task{}).Count(&stats.TotalTasks)
	db.Model(&models.Task{}).Where("status = ?", models.TaskStatusPending).Count(&stats.PendingTasks)
	db.Model(&models.TaskSubmission{}).Where("status = ?", models.SubmissionStatusPending).Count(&stats.PendingSubmissions)
	db.Model(&models.Withdrawal{}).Count(&stats.TotalWithdrawals)
	db.Model(&models.Withdrawal{}).Where("status = ?", models.WithdrawalStatusPending).Count(&stats.PendingWithdrawals)

	// Total balance held per denomination
	for _, ct := range models.AllCryptoTypes() {
		column, err := models.BalanceColumn(ct)
		if err != nil {
			continue
		}
		type Result struct {
			Total float64
		}
		var result Result
		db.Model(&models.User{}).
			Select("COALESCE(SUM(" + column + "), 0) as total").
			Scan(&result)
		stats.TotalBalances[string(ct)] = result.Total
	}

	// Total approved payouts per denomination
	rows, err := db.Model(&models.Withdrawal{}).
		Select("crypto_type, COALESCE(SUM(amount), 0)").
		Where("status = ?", models.WithdrawalStatusApproved).
		Group("crypto_type").
		Rows()
	if err == nil {
		defer rows.Close()
		for rows.Next() {
			var ct string
			var amount float64
			if scanErr := rows.Scan(&ct, &amount); scanErr == nil {
				stats.TotalPaidOut[ct] = amount
			}
		}
	}

	// Last 10 ledger entries joined with the user's email
	rows, err = db.Model(&models.LedgerEntry{}).
		Select("users.email, ledger_entries.amount, ledger_entries.crypto_type, ledger_entries.flow, ledger_entries.entry_type, ledger_entries.message, ledger_entries.created_at").
		Joins("JOIN users ON ledger_entries.user_id = users.id").
		Order("ledger_entries.id DESC").
		Limit(10).
		Rows()
	if err == nil {
		defer rows.Close()
		for rows.Next() {
			var ld LedgerDetail
			if scanErr := rows.Scan(&ld.UserEmail, &ld.Amount, &ld.CryptoType, &ld.Flow, &ld.EntryType, &ld.Message, &ld.CreatedAt); scanErr == nil {
				stats.LastEntries = append(stats.LastEntries, ld)
			}
		}
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Successfully",
		Data:    stats,
	})
}
