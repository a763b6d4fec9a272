// Package rbac provides role-based access control middleware.
package rbac

import (
	"net/http"
	"strings"

	"github.com/gmcandra/mebelshop/pkg/auth"
	"github.com/gmcandra/mebelshop/pkg/middleware"
	"github.com/gmcandra/mebelshop/pkg/response"
)

// HasRole allows access only to users holding one of the given roles.
// Requires middleware.Auth to have already run.
func HasRole(roles ...string) func(http.Handler) http.Handler {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, ok := middleware.RoleFromCtx(r)
			if !ok || !allowed[role] {
				response.Forbidden(w)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Guest blocks requests that carry a valid authenticated identity.
// Useful on login and register endpoints. Guest routes are mounted
// without the auth middleware, so the bearer token is checked here.
func Guest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := middleware.UserIDFromCtx(r); ok {
			response.Error(w, http.StatusConflict, "Already authenticated")
			return
		}

		header := r.Header.Get("Authorization")
		if t, found := strings.CutPrefix(header, "Bearer "); found {
			if _, err := auth.ValidateToken(t); err == nil {
				response.Error(w, http.StatusConflict, "Already authenticated")
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}
