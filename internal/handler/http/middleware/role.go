package middleware

import (
	"fmt"
	"net/http"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-attendance-go/internal/handler/http/response"
)

// requireClaims rejects the request when check returns an error for the
// authenticated caller. It must run after AuthRequired.
func requireClaims(check func(user.Claims) error) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFromContext(r.Context())
			if !ok {
				response.HandleError(w, user.ErrInvalidToken)
				return
			}
			if err := check(claims); err != nil {
				response.HandleError(w, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireManager requires manager or owner role
var RequireManager = requireClaims(func(c user.Claims) error {
	if !c.Role.IsManager() {
		return user.ErrManagerAccessRequired
	}
	return nil
})

// RequirePermission checks if the caller's role grants permission
func RequirePermission(permission user.Permission) func(http.Handler) http.Handler {
	return requireClaims(func(c user.Claims) error {
		if !user.HasPermission(c.Role, permission) {
			return fmt.Errorf("%w: required '%s', role is '%s'", user.ErrInsufficientPermissions, permission, c.Role)
		}
		return nil
	})
}
