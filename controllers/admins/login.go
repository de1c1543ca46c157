package admins

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/chatgpt805/crypto-click-earn/middleware"
	"github.com/chatgpt805/crypto-click-earn/models"
	"github.com/chatgpt805/crypto-click-earn/store"
	"github.com/chatgpt805/crypto-click-earn/utils"
)

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,pwdmin"`
}

// POST /admin/login — sign-in restricted to accounts with the admin flag.
// Non-admin credentials get the same generic rejection as bad ones so the
// endpoint does not confirm which accounts exist.
func (c *Controller) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return
	}

	user, err := c.ledger.GetUserByEmail(strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Invalid email or password"})
			return
		}
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error"})
		return
	}

	if locked, retry := middleware.IsAccountLocked(user.ID); locked {
		utils.WriteJSON(w, http.StatusTooManyRequests, utils.APIResponse{Success: false, Message: "Too many sign-in attempts, please try again later", Data: map[string]interface{}{"retry_after_seconds": int(retry.Seconds())}})
		return
	}

	if !user.ValidatePassword(req.Password) || !user.IsAdmin {
		middleware.RecordFailedLogin(user.ID)
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Invalid email or password"})
		return
	}

	middleware.ResetFailedLogin(user.ID)

	expiry := 6 * time.Hour
	accessToken, err := utils.GenerateAccessTokenWithExpiry(user.ID, "admin", expiry)
	if err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Failed to sign in"})
		return
	}
	rt, err := models.NewRefreshToken(user.ID, 7)
	if err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Failed to sign in"})
		return
	}
	if err := c.db.Create(rt).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Failed to sign in"})
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Signed in",
		Data: map[string]interface{}{
			"access_token":  accessToken,
			"access_expire": time.Now().Add(expiry).UTC().Format(time.RFC3339),
			"refresh_token": rt.ID,
			"admin": map[string]interface{}{
				"id":    user.ID,
				"email": user.Email,
			},
		},
	})
}
