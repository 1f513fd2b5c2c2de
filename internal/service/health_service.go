package service

import (
	"context"
	"time"

	"electronicos-api/internal/logger"

	"go.opentelemetry.io/otel"
)

// Pinger reports database reachability; database.Gateway implements it.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthService struct {
	Mongo   Pinger
	Timeout time.Duration
}

type HealthStatus struct {
	Mongo string
}

var HealthServiceTracer = otel.Tracer("HealthService")

func NewHealthService(mongo Pinger) *HealthService {
	return &HealthService{
		Mongo:   mongo,
		Timeout: 2 * time.Second,
	}
}

func (s *HealthService) Check(ctx context.Context) HealthStatus {
	ctx, span := HealthServiceTracer.Start(ctx, "HealthService.Check")
	defer span.End()
	logger.Info(ctx, "Service")

	status := HealthStatus{Mongo: "UP"}

	mongoCtx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()
	if err := s.Mongo.Ping(mongoCtx); err != nil {
		status.Mongo = "DOWN"
	}

	return status
}
