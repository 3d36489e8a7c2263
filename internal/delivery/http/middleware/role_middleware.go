package middleware

import (
	"net/http"
	"slices"

	"service-marketplace/internal/domain/entity"
	"service-marketplace/pkg/response"
)

// RequireRole lets the request through when the authenticated role is one of
// allowedRoleIDs. It must run after Authenticate.
func RequireRole(allowedRoleIDs ...int) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			roleID, ok := GetRoleIDFromContext(r.Context())
			if !ok {
				response.Unauthorized(w, "Role information not found")
				return
			}
			if !slices.Contains(allowedRoleIDs, roleID) {
				response.Forbidden(w, "Only "+roleNames(allowedRoleIDs)+" can access this resource")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func roleNames(roleIDs []int) string {
	names := ""
	for i, id := range roleIDs {
		switch {
		case i == 0:
		case i == len(roleIDs)-1:
			names += " or "
		default:
			names += ", "
		}
		names += entity.RoleNameByID(id) + "s"
	}
	return names
}

func RequireAdmin(next http.Handler) http.Handler {
	return RequireRole(entity.RoleIDAdmin)(next)
}

func RequireProvider(next http.Handler) http.Handler {
	return RequireRole(entity.RoleIDProvider)(next)
}

func RequireCustomer(next http.Handler) http.Handler {
	return RequireRole(entity.RoleIDCustomer)(next)
}
