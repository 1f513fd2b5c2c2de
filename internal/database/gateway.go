package database

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"electronicos-api/internal/logger"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.opentelemetry.io/contrib/instrumentation/go.mongodb.org/mongo-driver/mongo/otelmongo"
	"go.opentelemetry.io/otel"
	"golang.org/x/sync/singleflight"
)

var (
	ErrConnect       = errors.New("failed to connect to mongo")
	ErrGatewayClosed = errors.New("mongo gateway closed")
)

var GatewayTracer = otel.Tracer("MongoGateway")

type Config struct {
	URI            string
	DBName         string
	PerRequest     bool
	ConnectTimeout time.Duration
	PingTimeout    time.Duration
	MaxPoolSize    uint64
}

// DialFunc opens a ready to use client.
type DialFunc func(ctx context.Context, cfg Config) (*mongo.Client, error)

// Gateway hands out database handles. In pooled mode all handles share one
// client and its connection pool; in per-request mode every Connect dials a new
// client that the matching Disconnect closes.
type Gateway struct {
	cfg  Config
	dial DialFunc

	dials  singleflight.Group
	mu     sync.Mutex
	client *mongo.Client
	closed bool
}

func NewGateway(cfg Config) *Gateway {
	return NewGatewayWithDialer(cfg, Dial)
}

func NewGatewayWithDialer(cfg Config, dial DialFunc) *Gateway {
	return &Gateway{cfg: cfg, dial: dial}
}

// Dial connects with the otelmongo monitor attached and pings the primary.
func Dial(ctx context.Context, cfg Config) (*mongo.Client, error) {
	opts := options.Client().
		ApplyURI(cfg.URI).
		SetMonitor(otelmongo.NewMonitor())
	if cfg.ConnectTimeout > 0 {
		opts.SetConnectTimeout(cfg.ConnectTimeout)
	}
	if cfg.MaxPoolSize > 0 {
		opts.SetMaxPoolSize(cfg.MaxPoolSize)
	}

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, err
	}

	pingTimeout := cfg.PingTimeout
	if pingTimeout <= 0 {
		pingTimeout = 5 * time.Second
	}
	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.WithoutCancel(ctx))
		return nil, err
	}
	return client, nil
}

// Connect returns a handle on the configured database.
func (g *Gateway) Connect(ctx context.Context) (*Conn, error) {
	ctx, span := GatewayTracer.Start(ctx, "MongoGateway.Connect")
	defer span.End()

	if g.cfg.PerRequest {
		client, err := g.dial(ctx, g.cfg)
		if err != nil {
			logger.Error(ctx, "Failed to connect to MongoDB", slog.String("error", err.Error()))
			span.RecordError(err)
			return nil, errors.Join(ErrConnect, err)
		}
		return NewConn(client, client.Database(g.cfg.DBName), client.Disconnect), nil
	}

	client, err := g.shared(ctx)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return NewConn(client, client.Database(g.cfg.DBName), nil), nil
}

// shared lazily dials the pooled client. Concurrent callers share one dial,
// which runs without holding g.mu; a failed dial is retried by the next caller.
func (g *Gateway) shared(ctx context.Context) (*mongo.Client, error) {
	if client, err := g.current(); client != nil || err != nil {
		return client, err
	}

	v, err, _ := g.dials.Do("shared", func() (any, error) {
		if client, err := g.current(); client != nil || err != nil {
			return client, err
		}

		client, err := g.dial(context.WithoutCancel(ctx), g.cfg)
		if err != nil {
			logger.Error(ctx, "Failed to connect to MongoDB", slog.String("error", err.Error()))
			return nil, errors.Join(ErrConnect, err)
		}

		g.mu.Lock()
		defer g.mu.Unlock()
		if g.closed {
			_ = client.Disconnect(context.WithoutCancel(ctx))
			return nil, errors.Join(ErrConnect, ErrGatewayClosed)
		}
		logger.Info(ctx, "Connected to MongoDB successfully", slog.String("database", g.cfg.DBName))
		g.client = client
		return client, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*mongo.Client), nil
}

// current returns the pooled client, or nil when none is dialed yet.
func (g *Gateway) current() (*mongo.Client, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return nil, errors.Join(ErrConnect, ErrGatewayClosed)
	}
	return g.client, nil
}

// Ping checks the database through a fresh handle.
func (g *Gateway) Ping(ctx context.Context) error {
	conn, err := g.Connect(ctx)
	if err != nil {
		return err
	}
	defer conn.Disconnect(context.WithoutCancel(ctx))
	return conn.Client.Ping(ctx, nil)
}

// Close disconnects the pooled client. Safe to call more than once.
func (g *Gateway) Close(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.closed = true
	if g.client == nil {
		return nil
	}
	client := g.client
	g.client = nil
	return client.Disconnect(ctx)
}
