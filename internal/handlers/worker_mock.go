package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/doc_service/internal/logging"
)

// WorkerMockHandler stands in for the external ingestion worker in local
// setups. It accepts every ingest request and reports the job as running.
type WorkerMockHandler struct {
	Delay time.Duration
}

func (h *WorkerMockHandler) Ingest(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "worker_mock_ingest")

	var req struct {
		DocumentID uint `json:"documentId"`
		JobID      uint `json:"jobId"`
	}
	if err := c.Bind(&req); err != nil || req.DocumentID == 0 {
		l.Warn("mock_ingest_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid document ID")
	}

	if h.Delay > 0 {
		select {
		case <-time.After(h.Delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	l.Info("mock_ingest_started", "document_id", req.DocumentID, "job_id", req.JobID)
	return c.JSON(http.StatusOK, echo.Map{
		"message": fmt.Sprintf("Ingestion for document %d started successfully", req.DocumentID),
		"status":  "in_progress",
	})
}
