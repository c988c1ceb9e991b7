package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/Skotchmaster/doc_service/internal/db"
	"github.com/Skotchmaster/doc_service/internal/handlers"
	"github.com/Skotchmaster/doc_service/internal/logging"
	"github.com/Skotchmaster/doc_service/internal/metrics"
	authmw "github.com/Skotchmaster/doc_service/internal/middleware/auth"
	"github.com/Skotchmaster/doc_service/internal/models"
)

type Deps struct {
	DB            *gorm.DB
	Metrics       *metrics.Metrics
	Authenticator *authmw.Authenticator
	WorkerToken   string

	AuthHandler      *handlers.AuthHandler
	UsersHandler     *handlers.UsersHandler
	DocumentsHandler *handlers.DocumentsHandler
	IngestionHandler *handlers.IngestionHandler
	// WorkerMock is mounted only when set.
	WorkerMock *handlers.WorkerMockHandler
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error {
		if err := db.Ping(c.Request().Context(), d.DB); err != nil {
			logging.FromContext(c.Request().Context()).Error("readiness_failed", "error", err)
			return c.NoContent(http.StatusServiceUnavailable)
		}
		return c.NoContent(http.StatusOK)
	})
	if d.Metrics != nil {
		e.GET("/metrics", echo.WrapHandler(d.Metrics.Handler()))
	}

	requireAuth := d.Authenticator.RequireAuth()
	writers := authmw.RequireRole(models.RoleAdmin, models.RoleEditor)

	auth := e.Group("/auth")
	auth.POST("/register", d.AuthHandler.Register)
	auth.POST("/login", d.AuthHandler.Login)
	auth.POST("/refresh-token", d.AuthHandler.RefreshToken)
	auth.POST("/logout", d.AuthHandler.Logout, requireAuth)
	auth.GET("/profile", d.AuthHandler.Profile, requireAuth)

	users := e.Group("/users", requireAuth, authmw.RequireRole(models.RoleAdmin))
	users.GET("", d.UsersHandler.List)
	users.GET("/:id", d.UsersHandler.Get)
	users.POST("", d.UsersHandler.Create)
	users.PATCH("/:id/role", d.UsersHandler.UpdateRole)
	users.DELETE("/:id", d.UsersHandler.Delete)

	documents := e.Group("/documents", requireAuth)
	documents.POST("/upload", d.DocumentsHandler.Upload)
	documents.GET("", d.DocumentsHandler.List)
	documents.GET("/search", d.DocumentsHandler.Search)
	documents.GET("/:id", d.DocumentsHandler.Get)
	documents.PATCH("/:id", d.DocumentsHandler.Update)
	documents.DELETE("/:id", d.DocumentsHandler.Delete)

	ingestion := e.Group("/ingestion")
	ingestion.POST("/trigger", d.IngestionHandler.Trigger, requireAuth, writers)
	ingestion.GET("", d.IngestionHandler.List, requireAuth)
	ingestion.GET("/:id", d.IngestionHandler.Get, requireAuth)
	ingestion.PATCH("/:id/cancel", d.IngestionHandler.Cancel, requireAuth, writers)
	ingestion.POST("/:id/callback", d.IngestionHandler.Callback, authmw.RequireWorkerToken(d.WorkerToken))

	if d.WorkerMock != nil {
		e.POST("/python-mock/ingest", d.WorkerMock.Ingest)
	}
}
