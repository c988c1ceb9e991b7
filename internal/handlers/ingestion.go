package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/doc_service/internal/logging"
	"github.com/Skotchmaster/doc_service/internal/service"
)

type IngestionHandler struct {
	Svc *service.IngestionService
}

func envelope(message string, data any) echo.Map {
	return echo.Map{"status": "success", "message": message, "data": data}
}

func (h *IngestionHandler) Trigger(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "ingestion_trigger")

	var req struct {
		DocumentID uint `json:"documentId"`
	}
	if err := c.Bind(&req); err != nil {
		l.Warn("trigger_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	job, err := h.Svc.Trigger(ctx, req.DocumentID)
	if err != nil {
		return httpError(l, "trigger_error", err)
	}
	return c.JSON(http.StatusCreated, envelope("Ingestion process started successfully", job))
}

func (h *IngestionHandler) List(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "ingestion_list")

	jobs, err := h.Svc.List(ctx)
	if err != nil {
		return httpError(l, "list_ingestions_error", err)
	}
	return c.JSON(http.StatusOK, envelope("Ingestions retrieved successfully", jobs))
}

func (h *IngestionHandler) Get(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "ingestion_get")

	id, err := parseID(c)
	if err != nil {
		return err
	}
	job, err := h.Svc.Get(ctx, id)
	if err != nil {
		return httpError(l, "get_ingestion_error", err)
	}
	return c.JSON(http.StatusOK, envelope("Ingestion status retrieved successfully", job))
}

func (h *IngestionHandler) Cancel(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "ingestion_cancel")

	id, err := parseID(c)
	if err != nil {
		return err
	}
	job, err := h.Svc.Cancel(ctx, id)
	if err != nil {
		return httpError(l, "cancel_error", err)
	}
	return c.JSON(http.StatusOK, envelope("Ingestion process canceled successfully", job))
}

func (h *IngestionHandler) Callback(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "ingestion_callback")

	id, err := parseID(c)
	if err != nil {
		return err
	}
	var req struct {
		Status string `json:"status"`
		Error  string `json:"error"`
	}
	if err := c.Bind(&req); err != nil {
		l.Warn("callback_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	job, err := h.Svc.Callback(ctx, id, req.Status, req.Error)
	if err != nil {
		return httpError(l, "callback_error", err)
	}
	return c.JSON(http.StatusOK, envelope("Callback processed successfully", job))
}
