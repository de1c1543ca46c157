package users

import (
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/chatgpt805/crypto-click-earn/controllers"
	"github.com/chatgpt805/crypto-click-earn/middleware"
	"github.com/chatgpt805/crypto-click-earn/models"
	"github.com/chatgpt805/crypto-click-earn/store"
	"github.com/chatgpt805/crypto-click-earn/utils"
)

type WithdrawalRequest struct {
	Amount         float64 `json:"amount"`
	CryptoType     string  `json:"crypto_type"`
	FaucetpayEmail string  `json:"faucetpay_email"`
	TaskProof      string  `json:"task_proof"`
}

// POST /users/withdrawals — creates a pending withdrawal request. The balance
// is validated here but debited only when an admin approves.
func (c *Controller) CreateWithdrawal(w http.ResponseWriter, r *http.Request) {
	uid, ok := middleware.GetUserID(r)
	if !ok || uid == 0 {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}

	var req WithdrawalRequest
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return
	}

	// fall back to the payout address saved on the profile
	if strings.TrimSpace(req.FaucetpayEmail) == "" {
		if user, err := c.ledger.GetUser(uid); err == nil && user.FaucetpayEmail != nil {
			req.FaucetpayEmail = *user.FaucetpayEmail
		}
	}

	// enforce the configured minimum, if any
	var setting models.Setting
	if err := c.db.First(&setting).Error; err == nil && setting.MinWithdraw > 0 && req.Amount < setting.MinWithdraw {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Amount is below the minimum withdrawal"})
		return
	}

	wd, err := c.ledger.CreateWithdrawal(uid, store.WithdrawalSpec{
		Amount:         req.Amount,
		CryptoType:     req.CryptoType,
		FaucetpayEmail: req.FaucetpayEmail,
		TaskProof:      req.TaskProof,
	})
	if err != nil {
		controllers.WriteStoreError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusCreated, utils.APIResponse{
		Success: true,
		Message: "Withdrawal request submitted",
		Data: map[string]interface{}{
			"id":              wd.ID,
			"order_id":        wd.OrderID,
			"amount":          wd.Amount,
			"crypto_type":     wd.CryptoType,
			"faucetpay_email": wd.FaucetpayEmail,
			"status":          wd.Status,
			"created_at":      wd.CreatedAt.Format(time.RFC3339),
		},
	})
}

// GET /users/withdrawals — lists the caller's withdrawal requests, paginated,
// with optional order-id search.
func (c *Controller) ListWithdrawals(w http.ResponseWriter, r *http.Request) {
	uid, ok := middleware.GetUserID(r)
	if !ok || uid == 0 {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	search := strings.TrimSpace(r.URL.Query().Get("search"))
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}

	countQuery := c.db.Model(&models.Withdrawal{}).Where("user_id = ?", uid)
	if search != "" {
		countQuery = countQuery.Where("order_id LIKE ?", "%"+search+"%")
	}
	var totalRows int64
	if err := countQuery.Count(&totalRows).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Failed to retrieve withdrawal data"})
		return
	}

	totalPages := int(math.Ceil(float64(totalRows) / float64(limit)))
	offset := (page - 1) * limit

	var withdrawals []models.Withdrawal
	query := c.db.Where("user_id = ?", uid)
	if search != "" {
		query = query.Where("order_id LIKE ?", "%"+search+"%")
	}
	if err := query.Order("id DESC").Limit(limit).Offset(offset).Find(&withdrawals).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Failed to retrieve withdrawal data"})
		return
	}

	items := make([]map[string]interface{}, 0, len(withdrawals))
	for _, wd := range withdrawals {
		items = append(items, map[string]interface{}{
			"id":              wd.ID,
			"order_id":        wd.OrderID,
			"amount":          wd.Amount,
			"crypto_type":     wd.CryptoType,
			"faucetpay_email": wd.FaucetpayEmail,
			"status":          wd.Status,
			"created_at":      wd.CreatedAt.Format(time.RFC3339),
		})
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Successfully",
		Data: map[string]interface{}{
			"data": items,
			"pagination": map[string]interface{}{
				"page":        page,
				"limit":       limit,
				"total_rows":  totalRows,
				"total_pages": totalPages,
			},
		},
	})
}

// GET /users/history — the caller's ledger entries, newest first.
func (c *Controller) LedgerHistory(w http.ResponseWriter, r *http.Request) {
	uid, ok := middleware.GetUserID(r)
	if !ok || uid == 0 {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	offset := (page - 1) * limit

	var entries []models.LedgerEntry
	if err := c.db.Where("user_id = ?", uid).Order("id DESC").Limit(limit).Offset(offset).Find(&entries).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Failed to retrieve history"})
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Successfully", Data: entries})
}
