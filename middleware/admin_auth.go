package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/chatgpt805/crypto-click-earn/store"
	"github.com/chatgpt805/crypto-click-earn/utils"
)

// AdminAuth verifies that the request carries an admin token AND that the
// account still has the admin flag in the store. The token role alone is not
// trusted; privilege could have been revoked since the token was issued.
func AdminAuth(ledger *store.Ledger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
				utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{
					Success: false,
					Message: "Unauthorized: No token provided",
				})
				return
			}

			tokenString := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
			_, claims, err := utils.ValidateAccessToken(tokenString)
			if err != nil {
				utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{
					Success: false,
					Message: "Unauthorized: Invalid token",
				})
				return
			}

			role, ok := claims["role"].(string)
			if !ok || role != "admin" {
				utils.WriteJSON(w, http.StatusForbidden, utils.APIResponse{
					Success: false,
					Message: "Forbidden: Admin access required",
				})
				return
			}

			adminID, ok := utils.UserIDFromClaims(claims)
			if !ok || adminID == 0 {
				utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{
					Success: false,
					Message: "Unauthorized: Invalid token payload",
				})
				return
			}

			admin, err := ledger.GetUser(adminID)
			if err != nil {
				utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{
					Success: false,
					Message: "Unauthorized: Admin not found",
				})
				return
			}
			if !admin.IsAdmin {
				utils.WriteJSON(w, http.StatusForbidden, utils.APIResponse{
					Success: false,
					Message: "Forbidden",
				})
				return
			}

			ctx := context.WithValue(r.Context(), utils.UserIDKey, adminID)
			ctx = context.WithValue(ctx, utils.UserRoleKey, role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
