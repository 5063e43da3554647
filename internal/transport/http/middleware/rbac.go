package middleware

import (
	"context"
	"net/http"

	"github.com/ghinaderbes2002/vita-hr-sub000/internal/transport/http/api"
)

type PermissionStore interface {
	HasPermission(ctx context.Context, roleID, permission string) (bool, error)
}

// RequirePermission gates a route on a single permission key. Missing
// authentication is reported as 401 rather than 403 so clients can
// distinguish an expired token from a role gap.
func RequirePermission(permission string, store PermissionStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !Allow(w, r, store, permission) {
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Allow performs the permission check and writes the failure response
// itself, reporting whether the wrapped handler may run.
func Allow(w http.ResponseWriter, r *http.Request, store PermissionStore, permission string) bool {
	reqID := GetRequestID(r.Context())
	user, ok := GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return false
	}
	allowed, err := store.HasPermission(r.Context(), user.RoleID, permission)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "permission_error", "permission check failed", reqID)
		return false
	}
	if !allowed {
		api.Fail(w, http.StatusForbidden, "forbidden", "insufficient permissions", reqID)
		return false
	}
	return true
}
