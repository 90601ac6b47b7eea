package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"submissionmap/internal/cache"
	"submissionmap/internal/config"
	"submissionmap/internal/handler"
	"submissionmap/internal/loader"
	"submissionmap/internal/logging"
	"submissionmap/internal/middleware"
	"submissionmap/internal/render"
	"submissionmap/internal/service"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	zapLogger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}

	logger := logging.New(zapLogger)
	ctx = logging.ContextWithLogger(ctx, logger)

	cfg, err := config.New()
	if err != nil {
		logger.Fatal(ctx, "cannot create config", zap.Error(err))
	}

	schema := loader.Schema{
		Category:     cfg.CategoryColumn,
		Timestamp:    cfg.TimestampColumn,
		ID:           cfg.IDColumn,
		PrimaryLat:   cfg.PrimaryLatColumn,
		PrimaryLon:   cfg.PrimaryLonColumn,
		SecondaryLat: cfg.SecondaryLatColumn,
		SecondaryLon: cfg.SecondaryLonColumn,
	}

	datasets := cache.NewSingleSlot()
	dashboardService := service.NewDashboardService(datasets, schema, cfg.MapZoom)
	dashboardHandler := handler.NewDashboardHandler(dashboardService, render.NewTimelineChart())

	r := chi.NewRouter()
	r.Use(middleware.NewLoggingMiddleware(logger))
	r.Use(func(next http.Handler) http.Handler {
		return http.MaxBytesHandler(next, cfg.MaxUploadBytes)
	})
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	dashboardHandler.RegisterRoutes(r)

	port := fmt.Sprintf(":%d", cfg.HTTPPort)
	logger.Info(ctx, "Starting server", zap.String("port", port))

	srv := &http.Server{
		Addr:    port,
		Handler: r,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal(ctx, "cannot start http server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info(ctx, "Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal(ctx, "server forced to shutdown", zap.Error(err))
	}
	logger.Info(ctx, "Server stopped")
}
