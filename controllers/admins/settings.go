package admins

import (
	"net/http"

	"github.com/chatgpt805/crypto-click-earn/middleware"
	"github.com/chatgpt805/crypto-click-earn/models"
	"github.com/chatgpt805/crypto-click-earn/utils"
)

// GET /admin/settings
func (c *Controller) Settings(w http.ResponseWriter, r *http.Request) {
	var setting models.Setting
	if err := c.db.First(&setting).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Failed to retrieve settings"})
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Successfully", Data: setting})
}

type SettingsRequest struct {
	Name           string  `json:"name"`
	MinWithdraw    float64 `json:"min_withdraw"`
	Maintenance    bool    `json:"maintenance"`
	ClosedRegister bool    `json:"closed_register"`
}

// PUT /admin/settings
func (c *Controller) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req SettingsRequest
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return
	}
	if req.MinWithdraw < 0 {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "min_withdraw must not be negative"})
		return
	}

	var setting models.Setting
	if err := c.db.First(&setting).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Failed to retrieve settings"})
		return
	}

	updates := map[string]interface{}{
		"min_withdraw":    req.MinWithdraw,
		"maintenance":     req.Maintenance,
		"closed_register": req.ClosedRegister,
	}
	if req.Name != "" {
		updates["name"] = req.Name
	}
	if err := c.db.Model(&setting).Updates(updates).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Failed to update settings"})
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Settings updated", Data: setting})
}
