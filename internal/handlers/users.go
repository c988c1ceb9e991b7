package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/doc_service/internal/logging"
	"github.com/Skotchmaster/doc_service/internal/service"
)

type UsersHandler struct {
	Svc *service.UsersService
}

func (h *UsersHandler) List(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "users_list")

	users, err := h.Svc.List(ctx)
	if err != nil {
		return httpError(l, "list_users_error", err)
	}
	return c.JSON(http.StatusOK, users)
}

func (h *UsersHandler) Get(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "users_get")

	id, err := parseID(c)
	if err != nil {
		return err
	}
	user, err := h.Svc.Get(ctx, id)
	if err != nil {
		return httpError(l, "get_user_error", err)
	}
	return c.JSON(http.StatusOK, user)
}

func (h *UsersHandler) Create(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "users_create")

	var req struct {
		Email string `json:"email"`
		Role  string `json:"role"`
	}
	if err := c.Bind(&req); err != nil {
		l.Warn("create_user_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	created, err := h.Svc.Create(ctx, req.Email, req.Role)
	if err != nil {
		return httpError(l, "create_user_error", err)
	}
	return c.JSON(http.StatusCreated, created)
}

func (h *UsersHandler) UpdateRole(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "users_update_role")

	id, err := parseID(c)
	if err != nil {
		return err
	}
	var req struct {
		Role string `json:"role"`
	}
	if err := c.Bind(&req); err != nil {
		l.Warn("update_role_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	user, err := h.Svc.UpdateRole(ctx, id, req.Role)
	if err != nil {
		return httpError(l, "update_role_error", err)
	}
	return c.JSON(http.StatusOK, user)
}

func (h *UsersHandler) Delete(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "users_delete")

	id, err := parseID(c)
	if err != nil {
		return err
	}
	if err := h.Svc.Delete(ctx, id); err != nil {
		return httpError(l, "delete_user_error", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "User deleted successfully"})
}
