package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/carepoint/scheduling-api/internal/core/domain"
)

// StatusCode maps a domain error kind to its HTTP status. Errors outside the
// taxonomy map to 500.
func StatusCode(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrInvalidState):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func isDomainError(err error) bool {
	var de *domain.Error
	return errors.As(err, &de)
}

// textOutcome answers the plain-text workflow endpoints. Domain failures are
// written as "Failed to <verb> appointment: <message>" with the mapped status;
// anything else goes to the central error handler.
func textOutcome(c echo.Context, verb, msg string, err error) error {
	if err == nil {
		return c.String(http.StatusOK, msg)
	}
	if !isDomainError(err) {
		return err
	}
	return c.String(StatusCode(err), "Failed to "+verb+" appointment: "+domain.Message(err))
}

// bindAndValidate decodes the body into req and runs its validate tags.
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return domain.Validationf("Invalid request payload")
	}
	return c.Validate(req)
}
