package admins

import (
	"net/http"
	"strconv"
	"time"

	"github.com/chatgpt805/crypto-click-earn/controllers"
	"github.com/chatgpt805/crypto-click-earn/middleware"
	"github.com/chatgpt805/crypto-click-earn/models"
	"github.com/chatgpt805/crypto-click-earn/utils"

	"github.com/gorilla/mux"
)

type SubmissionDetail struct {
	ID            uint    `json:"id"`
	TaskID        uint    `json:"task_id"`
	TaskLink      string  `json:"task_link"`
	Price         float64 `json:"price"`
	CryptoType    string  `json:"crypto_type"`
	UserID        uint    `json:"user_id"`
	UserEmail     string  `json:"user_email"`
	Proof         string  `json:"proof"`
	ScreenshotURL string  `json:"screenshot_url,omitempty"`
	Status        string  `json:"status"`
	CreatedAt     string  `json:"created_at"`
}

// GET /admin/submissions — completion claims with task and user detail,
// filterable by status. Stored screenshot keys are swapped for short-lived
// signed URLs so the review UI can display them directly.
func (c *Controller) Submissions(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")

	type row struct {
		models.TaskSubmission
		TaskLink       string
		Price          float64
		TaskCryptoType string
		UserEmail      string
	}

	query := c.db.Model(&models.TaskSubmission{}).
		Select("task_submissions.*, tasks.task_link, tasks.price, tasks.crypto_type as task_crypto_type, users.email as user_email").
		Joins("JOIN tasks ON task_submissions.task_id = tasks.id").
		Joins("JOIN users ON task_submissions.user_id = users.id").
		Order("task_submissions.id DESC")
	if status != "" {
		query = query.Where("task_submissions.status = ?", status)
	}

	var rows []row
	if err := query.Find(&rows).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Failed to retrieve submissions"})
		return
	}

	resp := make([]SubmissionDetail, 0, len(rows))
	for _, rw := range rows {
		detail := SubmissionDetail{
			ID:         rw.ID,
			TaskID:     rw.TaskID,
			TaskLink:   rw.TaskLink,
			Price:      rw.Price,
			CryptoType: rw.TaskCryptoType,
			UserID:     rw.UserID,
			UserEmail:  rw.UserEmail,
			Proof:      rw.Proof,
			Status:     rw.Status,
			CreatedAt:  rw.CreatedAt.Format(time.RFC3339),
		}
		if rw.ScreenshotURL != nil && *rw.ScreenshotURL != "" {
			if signed, err := utils.ProofSignedURL(*rw.ScreenshotURL, 900); err == nil {
				detail.ScreenshotURL = signed
			}
		}
		resp = append(resp, detail)
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Successfully", Data: resp})
}

type ReviewRequest struct {
	Decision string `json:"decision" validate:"required"`
}

// POST /admin/submissions/{id}/review — approves or rejects a pending claim.
// Approval credits the task reward inside the ledger transaction.
func (c *Controller) ReviewSubmission(w http.ResponseWriter, r *http.Request) {
	adminID, ok := middleware.GetUserID(r)
	if !ok || adminID == 0 {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}

	vars := mux.Vars(r)
	subID, err := strconv.ParseUint(vars["id"], 10, 32)
	if err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid submission id"})
		return
	}

	var req ReviewRequest
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return
	}

	if err := c.ledger.ReviewSubmission(adminID, uint(subID), req.Decision); err != nil {
		controllers.WriteStoreError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Submission " + req.Decision,
		Data:    map[string]interface{}{"id": subID, "status": req.Decision},
	})
}
