package admins

import (
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/chatgpt805/crypto-click-earn/controllers"
	"github.com/chatgpt805/crypto-click-earn/middleware"
	"github.com/chatgpt805/crypto-click-earn/models"
	"github.com/chatgpt805/crypto-click-earn/utils"

	"github.com/gorilla/mux"
)

type WithdrawalDetail struct {
	ID             uint    `json:"id"`
	UserID         uint    `json:"user_id"`
	UserEmail      string  `json:"user_email"`
	FaucetpayEmail string  `json:"faucetpay_email"`
	TaskProof      string  `json:"task_proof"`
	Amount         float64 `json:"amount"`
	CryptoType     string  `json:"crypto_type"`
	OrderID        string  `json:"order_id"`
	Status         string  `json:"status"`
	CreatedAt      string  `json:"created_at"`
}

// GET /admins/withdrawals — paginated withdrawal requests with the requesting
// user's email joined in, filterable by status and order-id search.
func (c *Controller) Withdrawals(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	status := r.URL.Query().Get("status")
	search := strings.TrimSpace(r.URL.Query().Get("search"))
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	offset := (page - 1) * limit

	base := c.db.Model(&models.Withdrawal{}).
		Joins("JOIN users ON withdrawals.user_id = users.id")
	if status != "" {
		base = base.Where("withdrawals.status = ?", status)
	}
	if search != "" {
		base = base.Where("withdrawals.order_id LIKE ?", "%"+search+"%")
	}

	var totalRows int64
	if err := base.Count(&totalRows).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Failed to retrieve withdrawal data"})
		return
	}
	totalPages := int(math.Ceil(float64(totalRows) / float64(limit)))

	type row struct {
		models.Withdrawal
		UserEmail string
	}
	var rows []row
	if err := base.
		Select("withdrawals.*, users.email as user_email").
		Order("withdrawals.id DESC").
		Limit(limit).
		Offset(offset).
		Find(&rows).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Failed to retrieve withdrawal data"})
		return
	}

	items := make([]WithdrawalDetail, 0, len(rows))
	for _, rw := range rows {
		items = append(items, WithdrawalDetail{
			ID:             rw.ID,
			UserID:         rw.UserID,
			UserEmail:      rw.UserEmail,
			FaucetpayEmail: rw.FaucetpayEmail,
			TaskProof:      rw.TaskProof,
			Amount:         rw.Amount,
			CryptoType:     string(rw.CryptoType),
			OrderID:        rw.OrderID,
			Status:         rw.Status,
			CreatedAt:      rw.CreatedAt.Format(time.RFC3339),
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

// PUT /admin/withdrawals/{id}/approve — debits the balance and marks the
// request approved; a shortfall leaves it pending and returns 422.
func (c *Controller) ApproveWithdrawal(w http.ResponseWriter, r *http.Request) {
	c.resolveWithdrawal(w, r, models.WithdrawalStatusApproved, "Withdrawal approved")
}

// PUT /admin/withdrawals/{id}/reject — marks the request rejected; the
// balance is untouched since nothing was debited at request time.
func (c *Controller) RejectWithdrawal(w http.ResponseWriter, r *http.Request) {
	c.resolveWithdrawal(w, r, models.WithdrawalStatusRejected, "Withdrawal rejected")
}

func (c *Controller) resolveWithdrawal(w http.ResponseWriter, r *http.Request, status, message string) {
	adminID, ok := middleware.GetUserID(r)
	if !ok || adminID == 0 {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}

	vars := mux.Vars(r)
	id, err := strconv.ParseUint(vars["id"], 10, 32)
	if err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid withdrawal id"})
		return
	}

	if err := c.ledger.SetWithdrawalStatus(adminID, uint(id), status); err != nil {
		controllers.WriteStoreError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: message,
		Data:    map[string]interface{}{"id": id, "status": status},
	})
}
