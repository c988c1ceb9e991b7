package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/Skotchmaster/doc_service/internal/config"
	"github.com/Skotchmaster/doc_service/internal/db"
	"github.com/Skotchmaster/doc_service/internal/es"
	"github.com/Skotchmaster/doc_service/internal/handlers"
	"github.com/Skotchmaster/doc_service/internal/logging"
	"github.com/Skotchmaster/doc_service/internal/metrics"
	authmw "github.com/Skotchmaster/doc_service/internal/middleware/auth"
	loggingmw "github.com/Skotchmaster/doc_service/internal/middleware/logging"
	"github.com/Skotchmaster/doc_service/internal/mykafka"
	"github.com/Skotchmaster/doc_service/internal/repo"
	"github.com/Skotchmaster/doc_service/internal/service"
	"github.com/Skotchmaster/doc_service/internal/service/search"
	"github.com/Skotchmaster/doc_service/internal/storage"
	"github.com/Skotchmaster/doc_service/internal/tokens"
	httpserver "github.com/Skotchmaster/doc_service/internal/transport/http"
	"github.com/Skotchmaster/doc_service/internal/worker"
)

func main() {
	cfg, err := config.Load(".env")
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.LogLevel).With("service", "doc_service")
	slog.SetDefault(logger)

	startCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)

	gdb, err := db.Open(startCtx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db open: %v", err)
	}
	if err := db.Migrate(gdb); err != nil {
		log.Fatalf("db migrate: %v", err)
	}

	codec, err := tokens.NewCodec(cfg.JWT.AccessSecret, cfg.JWT.RefreshSecret, cfg.JWT.AccessTTL, cfg.JWT.RefreshTTL)
	if err != nil {
		log.Fatalf("tokens: %v", err)
	}

	topics := []string{service.TopicUserEvents, service.TopicDocumentEvents, service.TopicIngestionEvents}
	prod, err := mykafka.NewProducer(cfg.KafkaBrokers, topics)
	if err != nil {
		log.Fatal(err)
	}
	if !prod.Enabled() {
		logger.Info("kafka_disabled")
	}

	esClient, err := es.NewClient(startCtx, cfg.ES, logger)
	if err != nil {
		log.Fatal(err)
	}
	var index service.DocumentIndex
	if esClient != nil {
		index = search.NewIndex(esClient, cfg.ES.Index)
	}

	blobs, err := storage.New(startCtx, cfg.S3)
	cancel()
	if err != nil {
		log.Fatal(err)
	}

	m := metrics.New()
	r := repo.New(gdb)

	authSvc := &service.AuthService{Store: r, Codec: codec, Events: prod}
	usersSvc := &service.UsersService{Repo: r, Blobs: blobs, Index: index, Events: prod}
	docSvc := &service.DocumentService{Repo: r, Blobs: blobs, Index: index, Events: prod}
	ingestSvc := &service.IngestionService{
		Repo:   r,
		Worker: worker.NewClient(cfg.Worker.URL, cfg.Worker.Token, cfg.Worker.Timeout),
		Events: prod,
	}

	deps := httpserver.Deps{
		DB:               gdb,
		Metrics:          m,
		Authenticator:    &authmw.Authenticator{Tokens: authSvc, Failures: m},
		WorkerToken:      cfg.Worker.Token,
		AuthHandler:      &handlers.AuthHandler{Svc: authSvc},
		UsersHandler:     &handlers.UsersHandler{Svc: usersSvc},
		DocumentsHandler: &handlers.DocumentsHandler{Svc: docSvc, MaxUploadBytes: cfg.MaxUploadBytes},
		IngestionHandler: &handlers.IngestionHandler{Svc: ingestSvc},
	}
	if cfg.Worker.Mock {
		logger.Warn("worker_mock_enabled")
		deps.WorkerMock = &handlers.WorkerMockHandler{Delay: cfg.Worker.MockDelay}
	}

	e := echo.New()
	e.HideBanner = true
	e.Pre(echomw.RemoveTrailingSlash())
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(m.Middleware())
	e.Use(loggingmw.RequestLogger(logger))
	e.Use(echomw.CORS())

	httpserver.Register(e, &deps)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           e,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		ReadHeaderTimeout: 3 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("http_listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting_down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server_shutdown_error", "error", err)
	}

	if sqlDB, err := gdb.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			logger.Error("db_close_error", "error", err)
		}
	}

	if err := prod.Close(); err != nil {
		logger.Error("kafka_close_error", "error", err)
	}

	logger.Info("shutdown_complete")
}
