package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"electronicos-api/internal/logger"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
)

var HttpClientTracer = otel.Tracer("HttpClient")

// HTTPClient sends traced requests against one base URL.
type HTTPClient struct {
	client  *http.Client
	baseURL string
	headers map[string]string
}

// Response is the raw outcome of a request.
type Response struct {
	StatusCode int
	Headers    http.Header
	RawBody    []byte
}

func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		client: &http.Client{
			Timeout: timeout,
		},
		baseURL: strings.TrimRight(baseURL, "/"),
		headers: make(map[string]string),
	}
}

func (c *HTTPClient) SetDefaultHeader(key, value string) {
	c.headers[key] = value
}

// Do sends body (nil, []byte, string or any JSON-encodable value) to path.
// Non-2xx statuses are not errors here; see Response.IsSuccess.
func (c *HTTPClient) Do(ctx context.Context, method, path string, body any) (*Response, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	var bodyReader io.Reader
	if body != nil {
		b, err := encodeBody(body)
		if err != nil {
			logger.Error(ctx, "Failed to encode body", slog.Any("error", err))
			return nil, fmt.Errorf("failed to encode body: %w", err)
		}
		bodyReader = bytes.NewReader(b)
	}

	ctx, span := HttpClientTracer.Start(ctx, method+" "+path)
	defer span.End()

	req, err := http.NewRequestWithContext(ctx, method, c.buildURL(path), bodyReader)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		logger.Error(ctx, "Failed to create request", slog.Any("error", err))
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	if bodyReader != nil && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))
	req.Header.Set("X-Trace-ID", span.SpanContext().TraceID().String())

	logger.Info(ctx, "HTTP", logger.LogHTTPRequest(req, "outgoing::request")...)

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		logger.Error(ctx, "Failed to execute request", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	rawBody, err := io.ReadAll(resp.Body)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		logger.Error(ctx, "Failed to read response body", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	logger.Info(ctx, "HTTP", logger.LogHTTPResponse(req, resp.Header, resp.StatusCode, rawBody, time.Since(start), "outgoing::response")...)

	return &Response{
		StatusCode: resp.StatusCode,
		Headers:    resp.Header,
		RawBody:    rawBody,
	}, nil
}

func (c *HTTPClient) Get(ctx context.Context, path string) (*Response, error) {
	return c.Do(ctx, http.MethodGet, path, nil)
}

func (c *HTTPClient) Post(ctx context.Context, path string, body any) (*Response, error) {
	return c.Do(ctx, http.MethodPost, path, body)
}

func (c *HTTPClient) Put(ctx context.Context, path string, body any) (*Response, error) {
	return c.Do(ctx, http.MethodPut, path, body)
}

func (c *HTTPClient) Patch(ctx context.Context, path string, body any) (*Response, error) {
	return c.Do(ctx, http.MethodPatch, path, body)
}

func (c *HTTPClient) Delete(ctx context.Context, path string) (*Response, error) {
	return c.Do(ctx, http.MethodDelete, path, nil)
}

// DecodeJSON unmarshals the body into v; an empty body leaves v untouched.
func (r *Response) DecodeJSON(v any) error {
	if len(r.RawBody) == 0 {
		return nil
	}
	if err := json.Unmarshal(r.RawBody, v); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

func (r *Response) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

func (c *HTTPClient) buildURL(path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	return c.baseURL + "/" + strings.TrimLeft(path, "/")
}

func encodeBody(body any) ([]byte, error) {
	switch v := body.(type) {
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	default:
		return json.Marshal(body)
	}
}
