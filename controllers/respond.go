package controllers

import (
	"errors"
	"log"
	"net/http"

	"github.com/chatgpt805/crypto-click-earn/store"
	"github.com/chatgpt805/crypto-click-earn/utils"
)

// WriteStoreError maps ledger errors onto HTTP statuses and the standard
// response envelope. Unknown errors are logged and reported generically.
func WriteStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrValidation):
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: err.Error()})
	case errors.Is(err, store.ErrNotFound):
		utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: err.Error()})
	case errors.Is(err, store.ErrForbidden):
		utils.WriteJSON(w, http.StatusForbidden, utils.APIResponse{Success: false, Message: "Forbidden"})
	case errors.Is(err, store.ErrInsufficientBalance):
		utils.WriteJSON(w, http.StatusUnprocessableEntity, utils.APIResponse{Success: false, Message: err.Error()})
	case errors.Is(err, store.ErrInvalidTransition):
		utils.WriteJSON(w, http.StatusConflict, utils.APIResponse{Success: false, Message: err.Error()})
	default:
		log.Printf("[store] unexpected error: %v", err)
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Internal server error"})
	}
}
