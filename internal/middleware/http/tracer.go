package middleware_http

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"electronicos-api/internal/logger"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
)

var tracer = otel.Tracer("HttpMiddleware")

// ResponseWriter captures status, size and body (up to logger.MaxBodyLogged).
type ResponseWriter struct {
	http.ResponseWriter
	statusCode  int
	size        int64
	wroteHeader bool
	buf         bytes.Buffer
}

func NewResponseWriter(w http.ResponseWriter) *ResponseWriter {
	return &ResponseWriter{ResponseWriter: w, statusCode: http.StatusOK}
}

func (rw *ResponseWriter) WriteHeader(code int) {
	if !rw.wroteHeader {
		rw.statusCode = code
		rw.wroteHeader = true
	}
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *ResponseWriter) Write(b []byte) (int, error) {
	rw.wroteHeader = true
	n, err := rw.ResponseWriter.Write(b)
	rw.size += int64(n)

	if rw.buf.Len() < logger.MaxBodyLogged {
		toCopy := logger.MaxBodyLogged - rw.buf.Len()
		if len(b) < toCopy {
			toCopy = len(b)
		}
		rw.buf.Write(b[:toCopy])
	}
	return n, err
}

func (rw *ResponseWriter) Status() int { return rw.statusCode }

func (rw *ResponseWriter) Size() int64 { return rw.size }

func (rw *ResponseWriter) Body() []byte { return rw.buf.Bytes() }

func (rw *ResponseWriter) Unwrap() http.ResponseWriter { return rw.ResponseWriter }

// TraceMiddleware starts a server span per request, continuing any incoming
// trace context, exposes the trace id as X-Trace-ID and logs request and
// response. Panics are recorded on the span and re-raised.
func TraceMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))

		ctx, span := tracer.Start(ctx, r.Method+" "+r.URL.Path)
		defer func() {
			if rec := recover(); rec != nil {
				span.RecordError(errFromRecover(rec))
				span.SetStatus(codes.Error, "panic occurred")
				span.End()
				panic(rec)
			}
			span.End()
		}()

		logger.Info(ctx, "HTTP", logger.LogHTTPRequest(r, "incoming::request")...)

		rw := NewResponseWriter(w)
		start := time.Now()

		rw.Header().Set("X-Trace-ID", span.SpanContext().TraceID().String())

		next.ServeHTTP(rw, r.WithContext(ctx))

		span.SetAttributes(
			attribute.String("http.method", r.Method),
			attribute.String("http.path", r.URL.Path),
			attribute.Int("http.status_code", rw.Status()),
			attribute.Int64("http.response_size", rw.Size()),
		)
		// 4xx answers are the caller's fault; a server span leaves them Unset.
		switch {
		case rw.Status() >= 500:
			span.SetStatus(codes.Error, "internal server error")
		case rw.Status() < 400:
			span.SetStatus(codes.Ok, "")
		}

		attrs := logger.LogHTTPResponse(r, rw.Header(), rw.Status(), rw.Body(), time.Since(start), "incoming::response")
		logger.Info(ctx, "HTTP", attrs...)
	})
}

func errFromRecover(rec interface{}) error {
	if err, ok := rec.(error); ok {
		return err
	}
	return fmt.Errorf("panic: %v", rec)
}
