package auth

import (
	"crypto/subtle"
	"net/http"

	"github.com/labstack/echo/v4"
)

const HeaderWorkerToken = "X-Worker-Token"

// RequireWorkerToken guards worker callbacks with a shared secret. An empty
// token rejects every request.
func RequireWorkerToken(token string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			got := c.Request().Header.Get(HeaderWorkerToken)
			if token == "" || subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid worker token")
			}
			return next(c)
		}
	}
}
