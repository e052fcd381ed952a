package middleware

import (
	"net/http"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-backend-go/internal/handler/http/response"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/jwt"
)

// RequireRole allows the request through only for the listed roles
func RequireRole(roles ...employee.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := jwt.ClaimsFromContext(r.Context())
			if err != nil {
				response.HandleError(w, auth.ErrInvalidToken)
				return
			}

			for _, role := range roles {
				if employee.Role(claims.Role) == role {
					next.ServeHTTP(w, r)
					return
				}
			}

			response.HandleError(w, auth.ErrForbidden)
		})
	}
}

// RequireManager requires admin or boss role
func RequireManager(next http.Handler) http.Handler {
	return RequireRole(employee.RoleAdmin, employee.RoleBoss)(next)
}
