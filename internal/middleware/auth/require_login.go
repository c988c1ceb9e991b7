package auth

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/doc_service/internal/logging"
	"github.com/Skotchmaster/doc_service/internal/service"
)

const (
	MsgMissingHeader = "missing or invalid Authorization header"
	MsgInvalidToken  = "invalid or expired token"
)

type TokenAuthenticator interface {
	Authenticate(ctx context.Context, accessToken string) (*service.Identity, error)
}

type FailureRecorder interface {
	AuthFailure(reason string)
}

// Authenticator guards protected routes: it takes the bearer token from the
// Authorization header, resolves it through the session store and attaches
// the caller identity to the request.
type Authenticator struct {
	Tokens   TokenAuthenticator
	Failures FailureRecorder
}

func (a *Authenticator) fail(reason string) {
	if a.Failures != nil {
		a.Failures.AuthFailure(reason)
	}
}

// Authenticate resolves a raw bearer token. It exists separately from the
// middleware so non-HTTP callers can reuse the same checks.
func (a *Authenticator) Authenticate(ctx context.Context, raw string) (*service.Identity, error) {
	return a.Tokens.Authenticate(ctx, raw)
}

func (a *Authenticator) RequireAuth() echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		ContextKey:  ContextKey,
		TokenLookup: "header:Authorization:Bearer ",
		ParseTokenFunc: func(c echo.Context, raw string) (interface{}, error) {
			return a.Authenticate(c.Request().Context(), raw)
		},
		SuccessHandler: func(c echo.Context) {
			id, _ := c.Get(ContextKey).(*service.Identity)
			ctx := c.Request().Context()
			l := logging.FromContext(ctx).With("user_id", id.UserID)
			ctx = logging.IntoContext(IntoContext(ctx, id), l)
			c.SetRequest(c.Request().WithContext(ctx))
			c.Response().Header().Set("X-User-ID", strconv.FormatUint(uint64(id.UserID), 10))
		},
		ErrorHandler: a.errorHandler,
	})
}

func (a *Authenticator) errorHandler(c echo.Context, err error) error {
	l := logging.FromContext(c.Request().Context())

	var parseErr *echojwt.TokenParsingError
	if !errors.As(err, &parseErr) {
		a.fail("missing_header")
		l.Warn("auth_failed", "status", 401, "reason", "missing or malformed header")
		return echo.NewHTTPError(http.StatusUnauthorized, MsgMissingHeader)
	}
	if !errors.Is(parseErr.Err, service.ErrUnauthorized) {
		l.Error("auth_failed", "status", 500, "error", parseErr.Err)
		return echo.NewHTTPError(http.StatusInternalServerError).SetInternal(parseErr.Err)
	}

	a.fail("invalid_token")
	l.Warn("auth_failed", "status", 401, "error", parseErr.Err)
	return echo.NewHTTPError(http.StatusUnauthorized, MsgInvalidToken)
}
