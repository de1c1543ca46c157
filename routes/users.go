package routes

import (
	"net/http"
	"time"

	"github.com/chatgpt805/crypto-click-earn/controllers/auth"
	"github.com/chatgpt805/crypto-click-earn/controllers/users"
	"github.com/chatgpt805/crypto-click-earn/middleware"

	"github.com/gorilla/mux"
)

// UsersRoutes registers the public auth endpoints and the authenticated
// end-user endpoints on the given subrouter.
func UsersRoutes(api *mux.Router, authC *auth.Controller, usersC *users.Controller) {
	// Rate limiter for register/login/refresh: 60 per IP per 5 minutes
	loginLimiter := middleware.NewIPRateLimiter(60, 5*time.Minute)
	// Per-user limiter: 120 reads, 60 writes per minute
	userLimiter := middleware.NewUserRateLimiter(120, 60, 60)

	// Register & Login
	api.Handle("/register", loginLimiter.Middleware(http.HandlerFunc(authC.Register))).Methods(http.MethodPost)
	api.Handle("/login", loginLimiter.Middleware(http.HandlerFunc(authC.Login))).Methods(http.MethodPost)
	api.Handle("/refresh", loginLimiter.Middleware(http.HandlerFunc(authC.Refresh))).Methods(http.MethodPost)
	api.Handle("/logout", userLimiter.Middleware(middleware.AuthMiddleware(http.HandlerFunc(authC.Logout)))).Methods(http.MethodPost)

	// User info & profile
	api.Handle("/users/info", userLimiter.Middleware(middleware.AuthMiddleware(http.HandlerFunc(usersC.Info)))).Methods(http.MethodGet)
	api.Handle("/users/profile", userLimiter.Middleware(middleware.AuthMiddleware(http.HandlerFunc(usersC.UpdateProfile)))).Methods(http.MethodPut)

	// Tasks
	api.Handle("/tasks", userLimiter.Middleware(middleware.AuthMiddleware(http.HandlerFunc(usersC.TaskList)))).Methods(http.MethodGet)
	api.Handle("/tasks/{id:[0-9]+}/submit", userLimiter.Middleware(middleware.AuthMiddleware(http.HandlerFunc(usersC.TaskSubmit)))).Methods(http.MethodPost)
	api.Handle("/users/submissions/{id:[0-9]+}/screenshot", userLimiter.Middleware(middleware.AuthMiddleware(http.HandlerFunc(usersC.UploadSubmissionScreenshot)))).Methods(http.MethodPost)

	// Withdrawals
	api.Handle("/users/withdrawals", userLimiter.Middleware(middleware.AuthMiddleware(http.HandlerFunc(usersC.CreateWithdrawal)))).Methods(http.MethodPost)
	api.Handle("/users/withdrawals", userLimiter.Middleware(middleware.AuthMiddleware(http.HandlerFunc(usersC.ListWithdrawals)))).Methods(http.MethodGet)

	// Balance history
	api.Handle("/users/history", userLimiter.Middleware(middleware.AuthMiddleware(http.HandlerFunc(usersC.LedgerHistory)))).Methods(http.MethodGet)
}
