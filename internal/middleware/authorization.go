package middleware

import (
	"net/http"
	"slices"

	"go.uber.org/zap"
)

// StockWriterRoles may create and update products and move their stock
var StockWriterRoles = []string{RoleAdmin, RoleOperator}

// RequireAdmin guards product deletion, which is reserved to admins.
func RequireAdmin(logger *zap.Logger) func(http.Handler) http.Handler {
	return RequireRole([]string{RoleAdmin}, logger)
}

// RequireRole lets a request through only when the role claim placed in the
// context by AuthMiddleware is one of allowedRoles. Warehouse operators are
// admitted to stock increase/decrease and product edits via StockWriterRoles;
// anything else, including a token without a role, gets 403.
func RequireRole(allowedRoles []string, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, _ := GetUserRole(r.Context())
			if !slices.Contains(allowedRoles, role) {
				userID, _ := GetUserID(r.Context())
				logger.Warn("Product mutation denied",
					zap.String("user_id", userID),
					zap.String("role", role),
					zap.Strings("allowed_roles", allowedRoles),
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
				)
				RespondWithError(w, http.StatusForbidden, "insufficient permissions")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
