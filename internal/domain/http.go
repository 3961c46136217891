package domain

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// HTTPError converts a taxonomy error into its transport form. Anything
// outside the taxonomy becomes a bare 500 so internals never leak.
func HTTPError(err error) *echo.HTTPError {
	status := StatusOf(err)
	if status == http.StatusInternalServerError {
		return echo.NewHTTPError(status, "internal error")
	}
	return echo.NewHTTPError(status, err.Error())
}
