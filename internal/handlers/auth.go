package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/doc_service/internal/logging"
	authmw "github.com/Skotchmaster/doc_service/internal/middleware/auth"
	"github.com/Skotchmaster/doc_service/internal/service"
)

type AuthHandler struct {
	Svc *service.AuthService
}

type registerRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

func (h *AuthHandler) Register(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_register")

	var req registerRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("register_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	cred, err := h.Svc.Register(ctx, service.RegisterInput{
		Username: req.Username,
		Password: req.Password,
		Email:    req.Email,
		Role:     req.Role,
	})
	if err != nil {
		return httpError(l, "register_error", err)
	}

	return c.JSON(http.StatusCreated, cred)
}

func (h *AuthHandler) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_login")

	var req loginRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("login_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	pair, err := h.Svc.Login(ctx, req.Email, req.Password)
	if err != nil {
		return httpError(l, "login_failed", err)
	}

	l.Info("login_successful")
	return c.JSON(http.StatusCreated, pair)
}

func (h *AuthHandler) RefreshToken(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_refresh")

	var req refreshRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("refresh_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	access, err := h.Svc.Refresh(ctx, req.RefreshToken)
	if err != nil {
		return httpError(l, "refresh_failed", err)
	}

	return c.JSON(http.StatusCreated, echo.Map{"accessToken": access})
}

func (h *AuthHandler) Logout(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_logout")

	id, err := authmw.MustIdentity(c)
	if err != nil {
		return err
	}

	var req refreshRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("logout_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	if err := h.Svc.Logout(ctx, *id, req.RefreshToken); err != nil {
		return httpError(l, "logout_failed", err)
	}

	l.Info("successful_logout")
	return c.JSON(http.StatusCreated, echo.Map{"message": "Logged out successfully"})
}

func (h *AuthHandler) Profile(c echo.Context) error {
	id, err := authmw.MustIdentity(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{
		"id":       id.UserID,
		"username": id.Username,
		"role":     id.Role,
	})
}
