package middleware

import (
	"context"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/carepoint/scheduling-api/internal/core/domain"
)

const authContextKey = "auth"

// TokenVerifier resolves a bearer token to the caller's identity.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (domain.AuthContext, error)
}

// Authenticate verifies the bearer token and injects the resolved
// domain.AuthContext into the echo context.
func Authenticate(verifier TokenVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" {
				return domain.Unauthorizedf("Missing authorization header")
			}

			scheme, token, ok := strings.Cut(authHeader, " ")
			token = strings.TrimSpace(token)
			if !ok || !strings.EqualFold(scheme, "bearer") || token == "" {
				return domain.Unauthorizedf("Invalid authorization header")
			}

			ac, err := verifier.Verify(c.Request().Context(), token)
			if err != nil {
				return err
			}

			c.Set(authContextKey, ac)
			return next(c)
		}
	}
}

// Caller returns the identity set by Authenticate.
func Caller(c echo.Context) (domain.AuthContext, bool) {
	ac, ok := c.Get(authContextKey).(domain.AuthContext)
	return ac, ok
}

// SetCaller injects ac as the authenticated identity. Tests use it to skip
// token handling.
func SetCaller(c echo.Context, ac domain.AuthContext) {
	c.Set(authContextKey, ac)
}
