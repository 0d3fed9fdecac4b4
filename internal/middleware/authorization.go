package middleware

import (
	"net/http"

	"go.uber.org/zap"
)

// RequireRole lets through only callers whose token role is listed.
// Anonymous-role tokens are thereby treated exactly like missing ones.
// An empty list allows every role.
func RequireRole(allowedRoles []string, logger *zap.Logger) func(http.Handler) http.Handler {
	allowed := make(map[string]struct{}, len(allowedRoles))
	for _, role := range allowedRoles {
		allowed[role] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(allowed) == 0 {
				next.ServeHTTP(w, r)
				return
			}

			role, _ := GetUserRole(r.Context())
			if _, ok := allowed[role]; !ok {
				logger.Warn("User role not authorized",
					zap.String("role", role),
					zap.Strings("allowed_roles", allowedRoles),
				)
				RespondUnauthorized(w)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
