package auth

import (
	"net/http"
	"slices"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/doc_service/internal/logging"
	"github.com/Skotchmaster/doc_service/internal/models"
)

func RequireRole(required ...models.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id, ok := IdentityFrom(c)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, MsgInvalidToken)
			}
			if !slices.Contains(required, id.Role) {
				logging.FromContext(c.Request().Context()).Warn("access_denied",
					"status", 403, "role", id.Role, "required", required)
				return echo.NewHTTPError(http.StatusForbidden, "insufficient role")
			}
			return next(c)
		}
	}
}
