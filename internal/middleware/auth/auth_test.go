package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/doc_service/internal/models"
	"github.com/Skotchmaster/doc_service/internal/service"
)

type fakeTokens struct {
	valid map[string]*service.Identity
	err   error
}

func (f *fakeTokens) Authenticate(_ context.Context, raw string) (*service.Identity, error) {
	if f.err != nil {
		return nil, f.err
	}
	if id, ok := f.valid[raw]; ok {
		return id, nil
	}
	return nil, fmt.Errorf("%w: unknown token", service.ErrUnauthorized)
}

type countingRecorder struct{ reasons []string }

func (r *countingRecorder) AuthFailure(reason string) { r.reasons = append(r.reasons, reason) }

var editor = &service.Identity{UserID: 3, CredentialID: 5, Username: "ed", Role: models.RoleEditor}

func newProtectedServer(tokens *fakeTokens, rec *countingRecorder) *echo.Echo {
	a := &Authenticator{Tokens: tokens, Failures: rec}
	e := echo.New()
	g := e.Group("", a.RequireAuth())
	g.GET("/me", func(c echo.Context) error {
		id, err := MustIdentity(c)
		if err != nil {
			return err
		}
		fromCtx, ok := FromContext(c.Request().Context())
		if !ok || fromCtx != id {
			return echo.NewHTTPError(http.StatusInternalServerError, "identity not in request context")
		}
		return c.JSON(http.StatusOK, echo.Map{"id": id.UserID, "role": id.Role})
	})
	g.GET("/admin", func(c echo.Context) error { return c.NoContent(http.StatusOK) }, RequireRole(models.RoleAdmin))
	g.GET("/edit", func(c echo.Context) error { return c.NoContent(http.StatusOK) }, RequireRole(models.RoleAdmin, models.RoleEditor))
	return e
}

func TestRequireAuth(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		header     string
		storeErr   error
		wantCode   int
		wantBody   string
		wantReason string
	}{
		{name: "valid bearer", header: "Bearer good", wantCode: http.StatusOK, wantBody: `"role":"editor"`},
		{name: "lowercase scheme", header: "bearer good", wantCode: http.StatusOK},
		{name: "missing header", header: "", wantCode: http.StatusUnauthorized, wantBody: MsgMissingHeader, wantReason: "missing_header"},
		{name: "basic scheme", header: "Basic Zm9vOmJhcg==", wantCode: http.StatusUnauthorized, wantBody: MsgMissingHeader, wantReason: "missing_header"},
		{name: "empty bearer", header: "Bearer ", wantCode: http.StatusUnauthorized, wantBody: MsgMissingHeader, wantReason: "missing_header"},
		{name: "unknown token", header: "Bearer forged", wantCode: http.StatusUnauthorized, wantBody: MsgInvalidToken, wantReason: "invalid_token"},
		{name: "store failure", header: "Bearer good", storeErr: errors.New("db down"), wantCode: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rec := &countingRecorder{}
			e := newProtectedServer(&fakeTokens{valid: map[string]*service.Identity{"good": editor}, err: tt.storeErr}, rec)

			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set(echo.HeaderAuthorization, tt.header)
			}
			w := httptest.NewRecorder()
			e.ServeHTTP(w, req)

			assert.Equal(t, tt.wantCode, w.Code)
			if tt.wantBody != "" {
				assert.Contains(t, w.Body.String(), tt.wantBody)
			}
			if tt.wantReason != "" {
				assert.Equal(t, []string{tt.wantReason}, rec.reasons)
			}
			if tt.wantCode == http.StatusOK {
				assert.Equal(t, "3", w.Header().Get("X-User-ID"))
			}
		})
	}
}

func TestRequireRole(t *testing.T) {
	t.Parallel()

	e := newProtectedServer(&fakeTokens{valid: map[string]*service.Identity{"good": editor}}, &countingRecorder{})

	do := func(path string) int {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.Header.Set(echo.HeaderAuthorization, "Bearer good")
		w := httptest.NewRecorder()
		e.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusForbidden, do("/admin"))
	assert.Equal(t, http.StatusOK, do("/edit"))
}

func TestRequireRole_WithoutIdentity(t *testing.T) {
	t.Parallel()

	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	h := RequireRole(models.RoleAdmin)(func(c echo.Context) error { return nil })

	err := h(c)
	require.Error(t, err)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusUnauthorized, he.Code)
}

func TestRequireWorkerToken(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		token    string
		header   string
		wantCode int
	}{
		{name: "match", token: "s3cret", header: "s3cret", wantCode: http.StatusOK},
		{name: "mismatch", token: "s3cret", header: "guess", wantCode: http.StatusUnauthorized},
		{name: "missing", token: "s3cret", header: "", wantCode: http.StatusUnauthorized},
		{name: "unconfigured", token: "", header: "", wantCode: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			e := echo.New()
			e.POST("/cb", func(c echo.Context) error { return c.NoContent(http.StatusOK) }, RequireWorkerToken(tt.token))

			req := httptest.NewRequest(http.MethodPost, "/cb", nil)
			if tt.header != "" {
				req.Header.Set(HeaderWorkerToken, tt.header)
			}
			w := httptest.NewRecorder()
			e.ServeHTTP(w, req)
			assert.Equal(t, tt.wantCode, w.Code)
		})
	}
}
