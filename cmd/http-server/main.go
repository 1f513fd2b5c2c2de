package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"electronicos-api/internal/config"
	"electronicos-api/internal/database"
	handler "electronicos-api/internal/handler/http"
	"electronicos-api/internal/logger"
	middleware_http "electronicos-api/internal/middleware/http"
	"electronicos-api/internal/service"
	"electronicos-api/internal/tracer"
	"electronicos-api/internal/version"
)

func main() {
	globalCtx := context.Background()

	log := logger.Instance()
	cfg := config.Instance()
	logger.SetLevel(cfg.LogLevel)
	logger.SetRemote(cfg.RemoteLogHttpURI, cfg.AppName)

	log.Info(cfg.AppName,
		slog.String("version", version.Version),
		slog.String("commit", version.Commit),
		slog.String("buildTime", version.BuildTime),
	)

	// OpenTelemetry + Pyroscope
	shutdown, err := tracer.Instance(globalCtx)
	if err != nil {
		log.Error("Failed to initialize telemetry", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// MongoDB is dialed lazily; a down server turns into 500s per request, not a boot failure
	gateway := database.NewGateway(database.Config{
		URI:            cfg.MongoURI,
		DBName:         cfg.MongoDBName,
		PerRequest:     cfg.MongoPerRequest,
		ConnectTimeout: cfg.MongoConnectTimeout,
		PingTimeout:    cfg.MongoPingTimeout,
		MaxPoolSize:    cfg.MongoMaxPoolSize,
	})

	// Wiring
	electronicoService := service.NewElectronicoService(gateway, cfg.MongoCollection)
	electronicoHandler := handler.NewElectronicoHandler(electronicoService)

	healthService := service.NewHealthService(gateway)
	healthHandler := handler.NewHealthHandler(healthService)

	router := handler.NewRouter(electronicoHandler, healthHandler, middleware_http.TraceMiddleware)

	server := &http.Server{
		Addr:         ":" + cfg.AppPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	log.Info("HTTP server running", slog.String("addr", server.Addr))

	// No signal handling: the process stops when killed. Telemetry is flushed
	// only when the listener itself fails.
	if err := server.ListenAndServe(); err != nil {
		log.Error("Server failed", slog.String("error", err.Error()))
		if err := shutdown(globalCtx); err != nil {
			log.Error("Failed to flush telemetry", slog.String("error", err.Error()))
		}
		os.Exit(1)
	}
}
