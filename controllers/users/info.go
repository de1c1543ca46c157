package users

import (
	"net/http"
	"strings"

	"github.com/chatgpt805/crypto-click-earn/controllers"
	"github.com/chatgpt805/crypto-click-earn/middleware"
	"github.com/chatgpt805/crypto-click-earn/models"
	"github.com/chatgpt805/crypto-click-earn/utils"
)

// GET /users/info
func (c *Controller) Info(w http.ResponseWriter, r *http.Request) {
	uid, ok := middleware.GetUserID(r)
	if !ok || uid == 0 {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}

	user, err := c.ledger.GetUser(uid)
	if err != nil {
		controllers.WriteStoreError(w, err)
		return
	}

	var pendingWithdrawals int64
	c.db.Model(&models.Withdrawal{}).Where("user_id = ? AND status = ?", uid, models.WithdrawalStatusPending).Count(&pendingWithdrawals)

	var approvedSubmissions int64
	c.db.Model(&models.TaskSubmission{}).Where("user_id = ? AND status = ?", uid, models.SubmissionStatusApproved).Count(&approvedSubmissions)

	balances := map[string]float64{}
	for _, ct := range models.AllCryptoTypes() {
		balances[string(ct)] = user.BalanceFor(ct)
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Successfully",
		Data: map[string]interface{}{
			"id":                  user.ID,
			"email":               user.Email,
			"balances":            balances,
			"faucetpay_email":     utils.GetStringValue(user.FaucetpayEmail),
			"is_admin":            user.IsAdmin,
			"pending_withdrawals": pendingWithdrawals,
			"tasks_completed":     approvedSubmissions,
		},
	})
}

type ProfileRequest struct {
	FaucetpayEmail string `json:"faucetpay_email" validate:"required,email"`
}

// PUT /users/profile — updates the FaucetPay payout address used as the
// default destination for withdrawals.
func (c *Controller) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	uid, ok := middleware.GetUserID(r)
	if !ok || uid == 0 {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}

	var req ProfileRequest
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return
	}

	fp := strings.TrimSpace(req.FaucetpayEmail)
	if err := c.db.Model(&models.User{}).Where("id = ?", uid).Update("faucetpay_email", fp).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Failed to update profile"})
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Profile updated"})
}
