package admins

import (
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/chatgpt805/crypto-click-earn/models"
	"github.com/chatgpt805/crypto-click-earn/utils"
)

// GET /admin/users — paginated user list with email search.
func (c *Controller) Users(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	search := strings.TrimSpace(r.URL.Query().Get("search"))
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	offset := (page - 1) * limit

	countQuery := c.db.Model(&models.User{})
	if search != "" {
		countQuery = countQuery.Where("email LIKE ?", "%"+search+"%")
	}
	var totalRows int64
	if err := countQuery.Count(&totalRows).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Failed to retrieve users"})
		return
	}
	totalPages := int(math.Ceil(float64(totalRows) / float64(limit)))

	var users []models.User
	query := c.db.Order("id DESC").Limit(limit).Offset(offset)
	if search != "" {
		query = query.Where("email LIKE ?", "%"+search+"%")
	}
	if err := query.Find(&users).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Failed to retrieve users"})
		return
	}

	items := make([]map[string]interface{}, 0, len(users))
	for _, u := range users {
		balances := map[string]float64{}
		for _, ct := range models.AllCryptoTypes() {
			balances[string(ct)] = u.BalanceFor(ct)
		}
		items = append(items, map[string]interface{}{
			"id":              u.ID,
			"email":           u.Email,
			"balances":        balances,
			"faucetpay_email": utils.GetStringValue(u.FaucetpayEmail),
			"is_admin":        u.IsAdmin,
			"created_at":      u.CreatedAt.Format(time.RFC3339),
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
