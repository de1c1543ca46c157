package users

import (
	"fmt"
	"net/http"
	"path"
	"strconv"
	"time"

	"github.com/chatgpt805/crypto-click-earn/controllers"
	"github.com/chatgpt805/crypto-click-earn/middleware"
	"github.com/chatgpt805/crypto-click-earn/models"
	"github.com/chatgpt805/crypto-click-earn/utils"

	"github.com/gorilla/mux"
)

// GET /tasks — lists tasks together with the caller's submission state so the
// client can mark which ones are already claimed or under review.
func (c *Controller) TaskList(w http.ResponseWriter, r *http.Request) {
	uid, ok := middleware.GetUserID(r)
	if !ok || uid == 0 {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}

	tasks, err := c.ledger.Tasks()
	if err != nil {
		controllers.WriteStoreError(w, err)
		return
	}

	var subs []models.TaskSubmission
	c.db.Where("user_id = ?", uid).Find(&subs)
	subByTask := make(map[uint]string, len(subs))
	for _, s := range subs {
		subByTask[s.TaskID] = s.Status
	}

	resp := make([]map[string]interface{}, 0, len(tasks))
	for _, t := range tasks {
		item := map[string]interface{}{
			"id":          t.ID,
			"task_link":   t.TaskLink,
			"description": t.Description,
			"price":       t.Price,
			"crypto_type": t.CryptoType,
			"status":      t.Status,
			"created_at":  t.CreatedAt.Format(time.RFC3339),
		}
		if st, ok := subByTask[t.ID]; ok {
			item["submission_status"] = st
		}
		resp = append(resp, item)
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Successfully", Data: resp})
}

type SubmitRequest struct {
	Proof string `json:"proof" validate:"required"`
}

// POST /tasks/{id}/submit — records a completion claim for admin review. The
// reward is not credited here.
func (c *Controller) TaskSubmit(w http.ResponseWriter, r *http.Request) {
	uid, ok := middleware.GetUserID(r)
	if !ok || uid == 0 {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}

	vars := mux.Vars(r)
	taskID, err := strconv.ParseUint(vars["id"], 10, 32)
	if err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid task id"})
		return
	}

	var req SubmitRequest
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return
	}

	sub, err := c.ledger.SubmitCompletion(uid, uint(taskID), req.Proof, nil)
	if err != nil {
		controllers.WriteStoreError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusCreated, utils.APIResponse{
		Success: true,
		Message: "Task submitted for review",
		Data:    sub,
	})
}

// POST /users/submissions/{id}/screenshot — attaches a proof screenshot to the
// caller's own pending submission. The file is stored in R2 and the object URL
// recorded on the submission.
func (c *Controller) UploadSubmissionScreenshot(w http.ResponseWriter, r *http.Request) {
	uid, ok := middleware.GetUserID(r)
	if !ok || uid == 0 {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}

	vars := mux.Vars(r)
	subID, err := strconv.ParseUint(vars["id"], 10, 32)
	if err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid submission id"})
		return
	}

	var sub models.TaskSubmission
	if err := c.db.Where("id = ? AND user_id = ?", subID, uid).First(&sub).Error; err != nil {
		utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "Submission not found"})
		return
	}
	if sub.Status != models.SubmissionStatusPending {
		utils.WriteJSON(w, http.StatusConflict, utils.APIResponse{Success: false, Message: "Submission is no longer pending"})
		return
	}

	// 5 MiB cap for screenshots
	if err := r.ParseMultipartForm(5 << 20); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid multipart form"})
		return
	}
	file, header, err := r.FormFile("screenshot")
	if err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "screenshot file is required"})
		return
	}
	defer file.Close()

	ext := path.Ext(header.Filename)
	if ext != ".png" && ext != ".jpg" && ext != ".jpeg" {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Screenshot must be a PNG or JPEG"})
		return
	}

	objectName := fmt.Sprintf("proofs/%d/%d%s", uid, sub.ID, ext)
	if err := utils.UploadProof(objectName, file); err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Failed to store screenshot"})
		return
	}

	if err := c.db.Model(&sub).Update("screenshot_url", objectName).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Failed to update submission"})
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Screenshot uploaded",
		Data:    map[string]interface{}{"screenshot_url": objectName},
	})
}
