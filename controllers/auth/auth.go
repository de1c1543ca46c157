package auth

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/chatgpt805/crypto-click-earn/middleware"
	"github.com/chatgpt805/crypto-click-earn/models"
	"github.com/chatgpt805/crypto-click-earn/store"
	"github.com/chatgpt805/crypto-click-earn/utils"

	"gorm.io/gorm"
)

// Controller owns the sign-up/sign-in/sign-out lifecycle. Signing in again
// while already authenticated simply issues fresh tokens.
type Controller struct {
	db     *gorm.DB
	ledger *store.Ledger
}

func NewController(db *gorm.DB, ledger *store.Ledger) *Controller {
	return &Controller{db: db, ledger: ledger}
}

type RegisterRequest struct {
	Email                string `json:"email" validate:"required,email"`
	Password             string `json:"password" validate:"required,pwdmin"`
	PasswordConfirmation string `json:"password_confirmation" validate:"required,eqfield=Password"`
	FaucetpayEmail       string `json:"faucetpay_email" validate:"email"`
}

func (c *Controller) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return
	}

	var appSetting models.Setting
	if err := c.db.Model(&models.Setting{}).Select("closed_register, maintenance, name").Take(&appSetting).Error; err == nil {
		if appSetting.ClosedRegister {
			utils.WriteJSON(w, http.StatusForbidden, utils.APIResponse{
				Success: false,
				Message: "Registration is currently closed",
				Data:    map[string]interface{}{"closed_register": true, "application": appSetting.Name},
			})
			return
		}
		if appSetting.Maintenance {
			utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{
				Success: false,
				Message: "Application is under maintenance, please try again later",
				Data:    map[string]interface{}{"maintenance": true, "application": appSetting.Name},
			})
			return
		}
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))

	if _, err := c.ledger.GetUserByEmail(email); err == nil {
		utils.WriteJSON(w, http.StatusConflict, utils.APIResponse{Success: false, Message: "Email is already registered"})
		return
	} else if !errors.Is(err, store.ErrNotFound) {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error"})
		return
	}

	user := models.User{
		Email:    email,
		Password: req.Password,
	}
	if fp := strings.TrimSpace(req.FaucetpayEmail); fp != "" {
		user.FaucetpayEmail = &fp
	}
	if err := user.HashPassword(); err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error"})
		return
	}
	if err := c.db.Create(&user).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Failed to create account"})
		return
	}

	tokens, err := c.issueTokens(&user)
	if err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Failed to sign in"})
		return
	}

	utils.WriteJSON(w, http.StatusCreated, utils.APIResponse{
		Success: true,
		Message: "Account created",
		Data:    tokens,
	})
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,pwdmin"`
}

func (c *Controller) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return
	}

	var appSetting models.Setting
	if err := c.db.Model(&models.Setting{}).Select("maintenance, name").Take(&appSetting).Error; err == nil && appSetting.Maintenance {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{
			Success: false,
			Message: "Application is under maintenance, please try again later",
			Data:    map[string]interface{}{"maintenance": true, "application": appSetting.Name},
		})
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

	if !user.ValidatePassword(req.Password) {
		middleware.RecordFailedLogin(user.ID)
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Invalid email or password"})
		return
	}

	middleware.ResetFailedLogin(user.ID)

	tokens, err := c.issueTokens(user)
	if err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Failed to sign in"})
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Signed in",
		Data:    tokens,
	})
}

// issueTokens creates an access token plus a DB-backed refresh token and
// bundles them with the user's public profile.
func (c *Controller) issueTokens(user *models.User) (map[string]interface{}, error) {
	role := "user"
	expiry := 24 * time.Hour
	if user.IsAdmin {
		role = "admin"
		expiry = 6 * time.Hour
	}
	exp := time.Now().Add(expiry)

	accessToken, err := utils.GenerateAccessTokenWithExpiry(user.ID, role, expiry)
	if err != nil {
		return nil, err
	}
	rt, err := models.NewRefreshToken(user.ID, 7)
	if err != nil {
		return nil, err
	}
	if err := c.db.Create(rt).Error; err != nil {
		return nil, err
	}

	return map[string]interface{}{
		"access_token":  accessToken,
		"access_expire": exp.UTC().Format(time.RFC3339),
		"refresh_token": rt.ID,
		"user": map[string]interface{}{
			"id":              user.ID,
			"email":           user.Email,
			"balance_pepe":    user.BalancePepe,
			"balance_dash":    user.BalanceDash,
			"balance_ltc":     user.BalanceLtc,
			"faucetpay_email": utils.GetStringValue(user.FaucetpayEmail),
			"is_admin":        user.IsAdmin,
		},
	}, nil
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// Refresh exchanges a valid refresh token for a new access token and a rotated
// refresh token.
func (c *Controller) Refresh(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return
	}

	var rt models.RefreshToken
	if err := c.db.Where("id = ?", req.RefreshToken).First(&rt).Error; err != nil {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Invalid refresh token"})
		return
	}
	if rt.Revoked || time.Now().After(rt.ExpiresAt) {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Invalid refresh token"})
		return
	}

	user, err := c.ledger.GetUser(rt.UserID)
	if err != nil {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Invalid refresh token"})
		return
	}

	// rotate: revoke the old token, issue a new one, in one transaction
	var tokens map[string]interface{}
	err = c.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&rt).Update("revoked", true).Error; err != nil {
			return err
		}
		inner := &Controller{db: tx, ledger: c.ledger}
		var issueErr error
		tokens, issueErr = inner.issueTokens(user)
		return issueErr
	})
	if err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error"})
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Token refreshed", Data: tokens})
}

type LogoutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// Logout revokes the presented refresh token and blacklists the access token's
// jti when a revocation store is configured. Logging out twice is a no-op.
func (c *Controller) Logout(w http.ResponseWriter, r *http.Request) {
	var req LogoutRequest
	_ = json.NewDecoder(r.Body).Decode(&req)
	if req.RefreshToken != "" {
		c.db.Model(&models.RefreshToken{}).Where("id = ?", req.RefreshToken).Update("revoked", true)
	}

	authz := r.Header.Get("Authorization")
	if strings.HasPrefix(authz, "Bearer ") {
		tokenStr := strings.TrimSpace(strings.TrimPrefix(authz, "Bearer "))
		if _, claims, err := utils.ValidateAccessToken(tokenStr); err == nil {
			if jti, ok := claims["jti"].(string); ok {
				_ = utils.RevokeJTI(jti, 24*time.Hour)
			}
		}
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Signed out"})
}
