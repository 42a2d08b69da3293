// cmd/activities-api/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"mergington-activities/internal/api/activities"
	"mergington-activities/internal/common/config"
	commonhttp "mergington-activities/internal/common/http"
	"mergington-activities/internal/common/logger"
	"mergington-activities/internal/common/observability"
	"mergington-activities/internal/enrollment"
	"mergington-activities/internal/events"
	"mergington-activities/internal/registry"
	"mergington-activities/pkg/catalog"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fallback := logger.New("info", "console")
		fallback.Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting activities API...",
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
	)

	ctx := context.Background()

	obs, err := observability.New(ctx, cfg.Observability.ServiceName, cfg.Observability.OTLPEndpoint)
	if err != nil {
		zapLog.Fatal("observability setup failed", zap.Error(err))
	}

	// --- Registry ---
	cat, err := loadCatalog(cfg.Registry.CatalogPath)
	if err != nil {
		zapLog.Fatal("catalog load failed", zap.Error(err))
	}

	opts := []registry.Option{registry.WithCapacityEnforcement(cfg.Registry.EnforceCapacity)}
	if cfg.Registry.ValidateEmail {
		opts = append(opts, registry.WithParticipantValidator(registry.EmailAddress))
	}
	reg, err := registry.FromCatalog(cat, opts...)
	if err != nil {
		zapLog.Fatal("registry seed rejected", zap.Error(err))
	}
	zapLog.Info("Registry seeded",
		zap.Int("activities", reg.Len()),
		zap.Bool("enforceCapacity", cfg.Registry.EnforceCapacity),
	)

	// --- Event sinks ---
	infra := connectInfrastructure(ctx, cfg, zapLog)
	defer infra.Close()

	dispatcher := events.NewDispatcher(
		events.NewFanout(infra.sinks...),
		cfg.Events.Workers,
		cfg.Events.QueueSize,
		config.GetDuration(cfg.Events.PublishTimeout),
		log,
	)
	zapLog.Info("Event dispatcher started",
		zap.Int("sinks", len(infra.sinks)),
		zap.Int("workers", cfg.Events.Workers),
		zap.Int("queueSize", cfg.Events.QueueSize),
	)

	// --- HTTP ---
	svc := enrollment.NewService(reg, dispatcher, log, enrollment.WithObservability(obs))
	handler := activities.NewHandler(activities.LoadConfig(cfg.Server.StaticDir, infra.checks...), svc, log)

	server := &http.Server{
		Addr: cfg.Server.Address,
		Handler: commonhttp.Chain(handler.Routes(),
			commonhttp.RequestID(),
			commonhttp.Recover(log),
			commonhttp.AccessLog(log),
		),
		ReadTimeout:  config.GetDuration(cfg.Server.ReadTimeout),
		WriteTimeout: config.GetDuration(cfg.Server.WriteTimeout),
	}

	go func() {
		zapLog.Info("HTTP server listening", zap.String("address", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLog.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, draining...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.GetDuration(cfg.Server.ShutdownTimeout))
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error shutting down HTTP server", zap.Error(err))
	}
	if err := dispatcher.Close(shutdownCtx); err != nil {
		zapLog.Error("Event queue not fully drained", zap.Error(err))
	}
	if err := obs.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error shutting down telemetry", zap.Error(err))
	}

	zapLog.Info("Activities API stopped gracefully")
}

func loadCatalog(path string) (*catalog.Catalog, error) {
	if path == "" {
		return catalog.Default()
	}
	return catalog.LoadCatalog(path)
}
