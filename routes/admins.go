package routes

import (
	"net/http"
	"time"

	"github.com/chatgpt805/crypto-click-earn/controllers/admins"
	"github.com/chatgpt805/crypto-click-earn/middleware"
	"github.com/chatgpt805/crypto-click-earn/store"

	"github.com/gorilla/mux"
)

// AdminRoutes registers the admin login endpoint and the protected admin
// surface behind AdminAuth.
func AdminRoutes(api *mux.Router, ledger *store.Ledger, adminsC *admins.Controller) {
	// Rate limiter for admin login: 5 attempts per IP per minute
	adminLoginLimiter := middleware.NewIPRateLimiter(5, time.Minute)

	api.Handle("/admin/login", adminLoginLimiter.Middleware(http.HandlerFunc(adminsC.Login))).Methods(http.MethodPost)

	adminRouter := api.PathPrefix("/admin").Subrouter()
	adminRouter.Use(middleware.AdminAuth(ledger))

	// Dashboard stats
	adminRouter.Handle("/dashboard", http.HandlerFunc(adminsC.Dashboard)).Methods(http.MethodGet)

	// User management
	adminRouter.Handle("/users", http.HandlerFunc(adminsC.Users)).Methods(http.MethodGet)

	// Task management
	adminRouter.Handle("/tasks", http.HandlerFunc(adminsC.Tasks)).Methods(http.MethodGet)
	adminRouter.Handle("/tasks", http.HandlerFunc(adminsC.CreateTask)).Methods(http.MethodPost)
	adminRouter.Handle("/tasks/{id:[0-9]+}", http.HandlerFunc(adminsC.UpdateTask)).Methods(http.MethodPut)

	// Submission review
	adminRouter.Handle("/submissions", http.HandlerFunc(adminsC.Submissions)).Methods(http.MethodGet)
	adminRouter.Handle("/submissions/{id:[0-9]+}/review", http.HandlerFunc(adminsC.ReviewSubmission)).Methods(http.MethodPost)

	// Withdrawal management
	adminRouter.Handle("/withdrawals", http.HandlerFunc(adminsC.Withdrawals)).Methods(http.MethodGet)
	adminRouter.Handle("/withdrawals/{id:[0-9]+}/approve", http.HandlerFunc(adminsC.ApproveWithdrawal)).Methods(http.MethodPut)
	adminRouter.Handle("/withdrawals/{id:[0-9]+}/reject", http.HandlerFunc(adminsC.RejectWithdrawal)).Methods(http.MethodPut)

	// Application settings
	adminRouter.Handle("/settings", http.HandlerFunc(adminsC.Settings)).Methods(http.MethodGet)
	adminRouter.Handle("/settings", http.HandlerFunc(adminsC.UpdateSettings)).Methods(http.MethodPut)
}
