package tracer

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"

	"electronicos-api/internal/config"
	"electronicos-api/internal/logger"

	otelpyroscope "github.com/grafana/otel-profiling-go"
	"github.com/grafana/pyroscope-go"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
)

// Options selects exporters. Every field is optional; with none set spans are
// still created so trace ids reach logs and the X-Trace-ID header.
type Options struct {
	AppName      string
	Env          string
	TraceRpcURI  string
	TraceStdout  bool
	StdoutWriter io.Writer
	ProfilingURI string
}

type ShutdownFunc func(ctx context.Context) error

var (
	once         sync.Once
	shutdownFunc ShutdownFunc
	initErr      error
)

var pyroLogrus = func() *logrus.Logger {
	l := logrus.New()
	l.SetLevel(logrus.InfoLevel)
	return l
}()

func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		AppName:      cfg.AppName,
		Env:          "production",
		TraceRpcURI:  cfg.RemoteTraceRpcURI,
		TraceStdout:  cfg.TraceStdout,
		ProfilingURI: cfg.RemoteProfilingHttpURI,
	}
}

// Instance sets up tracing once per process from config.Instance().
func Instance(globalCtx context.Context) (ShutdownFunc, error) {
	once.Do(func() {
		shutdownFunc, initErr = Setup(globalCtx, OptionsFromConfig(config.Instance()))
	})
	return shutdownFunc, initErr
}

// Setup installs the global tracer provider and propagator.
func Setup(ctx context.Context, opts Options) (ShutdownFunc, error) {
	var tpOpts []trace.TracerProviderOption

	if opts.TraceRpcURI != "" {
		exp, err := otlptracegrpc.New(ctx,
			otlptracegrpc.WithInsecure(),
			otlptracegrpc.WithEndpoint(opts.TraceRpcURI),
			otlptracegrpc.WithCompressor("gzip"),
		)
		if err != nil {
			logger.Error(ctx, "Failed to create OTLP exporter", slog.String("error", err.Error()))
			return nil, err
		}
		tpOpts = append(tpOpts, trace.WithBatcher(exp))
	}

	if opts.TraceStdout {
		stdOpts := []stdouttrace.Option{stdouttrace.WithPrettyPrint()}
		if opts.StdoutWriter != nil {
			stdOpts = append(stdOpts, stdouttrace.WithWriter(opts.StdoutWriter))
		}
		exp, err := stdouttrace.New(stdOpts...)
		if err != nil {
			logger.Error(ctx, "Failed to create stdout exporter", slog.String("error", err.Error()))
			return nil, err
		}
		tpOpts = append(tpOpts, trace.WithSyncer(exp))
	}

	env := opts.Env
	if env == "" {
		env = "development"
	}
	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceNameKey.String(opts.AppName),
			attribute.String("env", env),
		),
	)
	if err != nil {
		logger.Error(ctx, "Failed to create resource", slog.String("error", err.Error()))
		return nil, err
	}
	tpOpts = append(tpOpts, trace.WithResource(res))

	tp := trace.NewTracerProvider(tpOpts...)

	// spans carry pyroscope profile ids when the profiler runs
	otel.SetTracerProvider(otelpyroscope.NewTracerProvider(tp))
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
	logger.Info(ctx, "OpenTelemetry Tracer initialized",
		slog.Bool("otlp", opts.TraceRpcURI != ""),
		slog.Bool("stdout", opts.TraceStdout),
	)

	var profiler *pyroscope.Profiler
	if opts.ProfilingURI != "" {
		profiler, err = pyroscope.Start(pyroscope.Config{
			ApplicationName: opts.AppName,
			ServerAddress:   opts.ProfilingURI,
			Logger:          pyroLogrus,
		})
		if err != nil {
			logger.Error(ctx, "Pyroscope failed to start", slog.String("error", err.Error()))
		} else {
			logger.Info(ctx, "Pyroscope started successfully")
		}
	}

	return func(ctx context.Context) error {
		var errs []error
		if err := tp.Shutdown(ctx); err != nil {
			logger.Error(ctx, "Error shutting down tracer provider", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
		if profiler != nil {
			errs = append(errs, profiler.Stop())
		}
		return errors.Join(errs...)
	}, nil
}
