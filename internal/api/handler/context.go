package handler

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/carepoint/scheduling-api/internal/api/middleware"
	"github.com/carepoint/scheduling-api/internal/core/domain"
)

// caller returns the identity injected by the Authenticate middleware. A
// missing identity means the route was mounted without it, which is reported
// as 401 rather than trusted.
func caller(c echo.Context) (domain.AuthContext, error) {
	ac, ok := middleware.Caller(c)
	if !ok {
		return domain.AuthContext{}, domain.Unauthorizedf("Authentication required")
	}
	return ac, nil
}

// pathID parses the named path parameter as a positive numeric id.
func pathID(c echo.Context, name string) (int64, error) {
	raw := c.Param(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.Validationf("Invalid %s: %s", name, raw)
	}
	return id, nil
}

// queryID parses an optional numeric query parameter; absent means zero.
func queryID(c echo.Context, name string) (int64, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return 0, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.Validationf("Invalid %s: %s", name, raw)
	}
	return id, nil
}
