package admins

import (
	"net/http"
	"strconv"

	"github.com/chatgpt805/crypto-click-earn/controllers"
	"github.com/chatgpt805/crypto-click-earn/middleware"
	"github.com/chatgpt805/crypto-click-earn/store"
	"github.com/chatgpt805/crypto-click-earn/utils"

	"github.com/gorilla/mux"
)

type TaskRequest struct {
	TaskLink    string  `json:"task_link" validate:"required"`
	Description string  `json:"description" validate:"required"`
	Price       float64 `json:"price"`
	CryptoType  string  `json:"crypto_type" validate:"required"`
}

// GET /admin/tasks
func (c *Controller) Tasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := c.ledger.Tasks()
	if err != nil {
		controllers.WriteStoreError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Successfully", Data: tasks})
}

// POST /admin/tasks
func (c *Controller) CreateTask(w http.ResponseWriter, r *http.Request) {
	adminID, ok := middleware.GetUserID(r)
	if !ok || adminID == 0 {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}

	var req TaskRequest
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return
	}

	task, err := c.ledger.CreateTask(adminID, store.TaskSpec{
		TaskLink:    req.TaskLink,
		Description: req.Description,
		Price:       req.Price,
		CryptoType:  req.CryptoType,
	})
	if err != nil {
		controllers.WriteStoreError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusCreated, utils.APIResponse{Success: true, Message: "Task created", Data: task})
}

// PUT /admin/tasks/{id}
func (c *Controller) UpdateTask(w http.ResponseWriter, r *http.Request) {
	adminID, ok := middleware.GetUserID(r)
	if !ok || adminID == 0 {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}

	vars := mux.Vars(r)
	taskID, err := strconv.ParseUint(vars["id"], 10, 32)
	if err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid task id"})
		return
	}

	var req TaskRequest
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return
	}

	task, err := c.ledger.UpdateTask(adminID, uint(taskID), store.TaskSpec{
		TaskLink:    req.TaskLink,
		Description: req.Description,
		Price:       req.Price,
		CryptoType:  req.CryptoType,
	})
	if err != nil {
		controllers.WriteStoreError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Task updated", Data: task})
}
