package middleware

import (
	"net/http"

	"github.com/angelmondragon/vendorkyc-backend/api/responses"
	"github.com/angelmondragon/vendorkyc-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/vendorkyc-backend/pkg/errors"
	"github.com/angelmondragon/vendorkyc-backend/pkg/logger"
)

// RequireRole gates a route group on the role claim set by Auth. A request
// that reached it without any role never authenticated and gets a 401.
func RequireRole(role enums.UserRole, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch RoleFromContext(r.Context()) {
			case "":
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required"))
			case string(role):
				next.ServeHTTP(w, r)
			default:
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, role.String()+" role required"))
			}
		})
	}
}
