package handler // handler defines http handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/restaurant-table-reservation/internal/domain"
)

// getUserID extracts the user_id from echo.Context and converts it to
// uint64.  The JWT middleware stores the token subject under this key;
// tokens are issued by the external auth service.
func getUserID(c echo.Context) (uint64, error) {
	v := c.Get("user_id")
	switch t := v.(type) {
	case uint64:
		return t, nil
	case int:
		return uint64(t), nil
	case int64:
		return uint64(t), nil
	case float64:
		return uint64(t), nil
	case string:
		if n, err := strconv.ParseUint(t, 10, 64); err == nil {
			return n, nil
		}
	}
	return 0, errors.New("invalid user_id in context")
}

// writeError converts a domain error into the single JSON error shape
// used by every endpoint.  This is the one place error kinds map to
// HTTP status codes, so handlers never branch on envelope shape.
func writeError(c echo.Context, err error) error {
	kind, ok := domain.KindOf(err)
	if !ok {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
	status := http.StatusInternalServerError
	switch kind {
	case domain.KindValidation:
		status = http.StatusBadRequest
	case domain.KindAvailability:
		status = http.StatusBadGateway
	case domain.KindConflict:
		status = http.StatusConflict
	case domain.KindPayment:
		status = http.StatusPaymentRequired
	case domain.KindNetwork:
		status = http.StatusBadGateway
	case domain.KindNotFound:
		status = http.StatusNotFound
	case domain.KindForbidden:
		status = http.StatusForbidden
	}
	return c.JSON(status, echo.Map{"error": err.Error()})
}

// parseID parses a positive uint64 path parameter.
func parseID(c echo.Context, name string) (uint64, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, domain.Validation("invalid " + name)
	}
	return id, nil
}
