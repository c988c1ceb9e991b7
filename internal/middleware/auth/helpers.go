package auth

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/doc_service/internal/service"
)

// ContextKey is where the authenticated identity is stored on the echo context.
const ContextKey = "identity"

type ctxKey struct{}

func IntoContext(ctx context.Context, id *service.Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

func FromContext(ctx context.Context) (*service.Identity, bool) {
	id, ok := ctx.Value(ctxKey{}).(*service.Identity)
	return id, ok && id != nil
}

func IdentityFrom(c echo.Context) (*service.Identity, bool) {
	id, ok := c.Get(ContextKey).(*service.Identity)
	if ok && id != nil {
		return id, true
	}
	return FromContext(c.Request().Context())
}

// MustIdentity is for handlers mounted behind RequireAuth.
func MustIdentity(c echo.Context) (*service.Identity, error) {
	id, ok := IdentityFrom(c)
	if !ok {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, MsgInvalidToken)
	}
	return id, nil
}
