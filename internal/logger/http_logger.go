package logger

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// MaxBodyLogged limits how much of a body is captured. 1 << 20 = 1 MiB.
const MaxBodyLogged = 1 << 20

// binarySample is how many bytes of a non text body are kept, base64 encoded.
const binarySample = 256

var allowedHeaders = map[string]bool{
	"content-type":   true,
	"user-agent":     true,
	"content-length": true,
	"x-trace-id":     true,
	"x-error-code":   true,
	"traceparent":    true,
	"authorization":  true,
	"set-cookie":     true,
}

var secretHeaders = map[string]bool{
	"authorization": true,
	"set-cookie":    true,
}

// CaptureBody returns up to MaxBodyLogged bytes of r.Body. The body the next
// reader sees is unchanged: the captured prefix followed by whatever was left.
func CaptureBody(r *http.Request) ([]byte, error) {
	if r.Body == nil || r.Body == http.NoBody {
		return nil, nil
	}
	orig := r.Body
	body, err := io.ReadAll(io.LimitReader(orig, MaxBodyLogged))
	if err != nil {
		return nil, err
	}
	r.Body = struct {
		io.Reader
		io.Closer
	}{io.MultiReader(bytes.NewReader(body), orig), orig}
	return body, nil
}

// HeaderAttrs keeps allow-listed headers, masking credentials.
func HeaderAttrs(hdr http.Header) []slog.Attr {
	attrs := make([]slog.Attr, 0, len(allowedHeaders))
	for name, values := range hdr {
		key := strings.ToLower(name)
		if !allowedHeaders[key] {
			continue
		}
		v := strings.Join(values, ", ")
		if secretHeaders[key] {
			v = "***"
		}
		attrs = append(attrs, slog.String("http.header."+key, v))
	}
	return attrs
}

// DecodeBody turns a body into attributes according to its content type.
// JSON content that does not parse is kept as text: error answers of this API
// are plain sentences served as application/json.
func DecodeBody(contentType string, body []byte) ([]slog.Attr, error) {
	if len(body) == 0 {
		return nil, nil
	}

	mediaType, _, _ := mime.ParseMediaType(contentType)
	switch mediaType {
	case "application/json":
		var data any
		if err := json.Unmarshal(body, &data); err != nil {
			return []slog.Attr{slog.String("http.body", redactIfNeeded(string(body)))}, nil
		}
		var attrs []slog.Attr
		flattenJSON("http.body", data, &attrs)
		return attrs, nil
	case "application/x-www-form-urlencoded":
		vals, err := url.ParseQuery(string(body))
		if err != nil {
			return nil, err
		}
		return valuesAttrs("http.body.", vals), nil
	case "text/plain":
		return []slog.Attr{slog.String("http.body", redactIfNeeded(string(body)))}, nil
	default:
		return binaryAttrs(body), nil
	}
}

// QueryAttrs flattens url.Values into "http.query." attributes.
func QueryAttrs(q url.Values) []slog.Attr {
	return valuesAttrs("http.query.", q)
}

func valuesAttrs(prefix string, vals url.Values) []slog.Attr {
	attrs := make([]slog.Attr, 0, len(vals))
	for k, v := range vals {
		if len(v) == 0 {
			continue
		}
		attrs = append(attrs, slog.String(prefix+k, redactIfNeeded(strings.Join(v, ","))))
	}
	return attrs
}

// flattenJSON expands objects into dotted keys. Arrays contribute their length
// plus the first and last element, which is enough to identify a listing.
func flattenJSON(prefix string, v any, dst *[]slog.Attr) {
	switch t := v.(type) {
	case map[string]any:
		for k, child := range t {
			flattenJSON(prefix+"."+k, child, dst)
		}
	case []any:
		*dst = append(*dst, slog.Int(prefix+".len", len(t)))
		if len(t) > 0 {
			flattenJSON(prefix+".0", t[0], dst)
		}
		if len(t) > 1 {
			last := len(t) - 1
			flattenJSON(prefix+"."+strconv.Itoa(last), t[last], dst)
		}
	case string:
		*dst = append(*dst, slog.String(prefix, redactIfNeeded(t)))
	case float64:
		*dst = append(*dst, slog.Float64(prefix, t))
	case bool:
		*dst = append(*dst, slog.Bool(prefix, t))
	case nil:
	default:
		*dst = append(*dst, slog.String(prefix, fmt.Sprint(t)))
	}
}

func binaryAttrs(b []byte) []slog.Attr {
	if len(b) <= binarySample {
		return []slog.Attr{slog.String("http.body.base64", base64.StdEncoding.EncodeToString(b))}
	}
	return []slog.Attr{
		slog.Int("http.body.size_bytes", len(b)),
		slog.String("http.body.sample_base64", base64.StdEncoding.EncodeToString(b[:binarySample])),
	}
}

func redactIfNeeded(s string) string {
	if strings.Contains(strings.ToLower(s), "password") {
		return "***"
	}
	return s
}

func requestLine(r *http.Request, direction string) []slog.Attr {
	return []slog.Attr{
		slog.String("http.direction", direction),
		slog.String("http.remote_addr", r.RemoteAddr),
		slog.String("http.method", r.Method),
		slog.String("http.path", r.URL.Path),
	}
}

func appendBody(attrs []slog.Attr, contentType string, body []byte) []slog.Attr {
	if len(body) == 0 {
		return attrs
	}
	bodyAttrs, err := DecodeBody(contentType, body)
	if err != nil {
		return append(attrs, slog.String("http.body.error", err.Error()))
	}
	return append(attrs, bodyAttrs...)
}

// LogHTTPRequest builds request attributes: metadata, allowed headers, query
// and body. The body stays readable for the next handler.
func LogHTTPRequest(r *http.Request, direction string) []slog.Attr {
	attrs := requestLine(r, direction)
	attrs = append(attrs, HeaderAttrs(r.Header)...)
	attrs = append(attrs, QueryAttrs(r.URL.Query())...)

	body, err := CaptureBody(r)
	if err != nil {
		return append(attrs, slog.String("http.body.error", err.Error()))
	}
	return appendBody(attrs, r.Header.Get("Content-Type"), body)
}

// LogHTTPResponse builds response attributes. body is the buffered response payload.
func LogHTTPResponse(req *http.Request, header http.Header, status int, body []byte, duration time.Duration, direction string) []slog.Attr {
	attrs := append(requestLine(req, direction),
		slog.Int("http.status", status),
		slog.Int64("duration_ms", duration.Milliseconds()),
	)
	attrs = append(attrs, HeaderAttrs(header)...)
	return appendBody(attrs, header.Get("Content-Type"), body)
}
