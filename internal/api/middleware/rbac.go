package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/carepoint/scheduling-api/internal/core/authz"
	"github.com/carepoint/scheduling-api/internal/core/domain"
)

// Require rejects callers whose role has no grant on op. Ownership is
// checked later by the service, once the resource is loaded.
func Require(op authz.Operation) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ac, ok := Caller(c)
			if !ok {
				return domain.Unauthorizedf("Authentication required")
			}
			if !authz.RoleAllowed(op, ac.Role) {
				return domain.Forbiddenf("Access denied")
			}
			return next(c)
		}
	}
}
