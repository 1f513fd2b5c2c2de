package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"electronicos-api/internal/model"
	"electronicos-api/internal/version"
)

// APIError is a non-2xx answer. Message is the server's text body.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%d %s: %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

// IsNotFound reports whether err is a 404 from the API.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

// ElectronicosClient wraps every route of the electronicos API.
type ElectronicosClient struct {
	http *HTTPClient
}

// UserAgent identifies this client in the server's request logs.
var UserAgent = "electronicos-client/" + version.Version

func NewElectronicosClient(baseURL string, timeout time.Duration) *ElectronicosClient {
	c := NewHTTPClient(baseURL, timeout)
	c.SetDefaultHeader("Accept", "application/json")
	c.SetDefaultHeader("User-Agent", UserAgent)
	return &ElectronicosClient{http: c}
}

func (c *ElectronicosClient) Welcome(ctx context.Context) (string, error) {
	resp, err := expect(c.http.Get(ctx, "/"))
	if err != nil {
		return "", err
	}
	return string(resp.RawBody), nil
}

func (c *ElectronicosClient) Health(ctx context.Context) (map[string]any, error) {
	resp, err := c.http.Get(ctx, "/healthz")
	if err != nil {
		return nil, err
	}
	out := map[string]any{}
	if err := resp.DecodeJSON(&out); err != nil {
		return nil, err
	}
	if !resp.IsSuccess() {
		return out, apiError(resp)
	}
	return out, nil
}

func (c *ElectronicosClient) List(ctx context.Context) ([]model.Electronico, error) {
	return c.list(ctx, "/electronicos")
}

func (c *ElectronicosClient) GetByCodigo(ctx context.Context, codigo int) (model.Electronico, error) {
	return decodeOne(c.http.Get(ctx, codigoPath(codigo)))
}

func (c *ElectronicosClient) SearchByNombre(ctx context.Context, nombre string) ([]model.Electronico, error) {
	return c.list(ctx, "/electronicos/nombre/"+url.PathEscape(nombre))
}

func (c *ElectronicosClient) SearchByCategoria(ctx context.Context, categoria string) ([]model.Electronico, error) {
	return c.list(ctx, "/electronicos/categoria/"+url.PathEscape(categoria))
}

func (c *ElectronicosClient) SearchByPrecio(ctx context.Context, precio int) ([]model.Electronico, error) {
	return c.list(ctx, "/electronicos/precio/"+strconv.Itoa(precio))
}

func (c *ElectronicosClient) Create(ctx context.Context, doc model.Electronico) (model.Electronico, error) {
	return decodeOne(c.http.Post(ctx, "/electronicos", doc))
}

// Update sends a PUT; only the supplied fields change on the server.
func (c *ElectronicosClient) Update(ctx context.Context, codigo int, fields model.Electronico) (model.Electronico, error) {
	return decodeOne(c.http.Put(ctx, codigoPath(codigo), fields))
}

func (c *ElectronicosClient) Patch(ctx context.Context, codigo int, fields model.Electronico) (model.Electronico, error) {
	return decodeOne(c.http.Patch(ctx, codigoPath(codigo), fields))
}

func (c *ElectronicosClient) UpdatePrecio(ctx context.Context, codigo int, precio any) (model.Electronico, error) {
	body := model.Electronico{model.FieldPrecio: precio}
	return decodeOne(c.http.Patch(ctx, "/electronicos/"+strconv.Itoa(codigo), body))
}

func (c *ElectronicosClient) Delete(ctx context.Context, codigo int) error {
	_, err := expect(c.http.Delete(ctx, codigoPath(codigo)))
	return err
}

func codigoPath(codigo int) string {
	return "/electronicos/codigo/" + strconv.Itoa(codigo)
}

func (c *ElectronicosClient) list(ctx context.Context, path string) ([]model.Electronico, error) {
	resp, err := expect(c.http.Get(ctx, path))
	if err != nil {
		return nil, err
	}
	out := []model.Electronico{}
	if err := resp.DecodeJSON(&out); err != nil {
		return nil, err
	}
	return out, nil
}

func decodeOne(resp *Response, err error) (model.Electronico, error) {
	resp, err = expect(resp, err)
	if err != nil {
		return nil, err
	}
	out := model.Electronico{}
	if err := resp.DecodeJSON(&out); err != nil {
		return nil, err
	}
	return out, nil
}

// expect turns a non-2xx response into an *APIError.
func expect(resp *Response, err error) (*Response, error) {
	if err != nil {
		return nil, err
	}
	if !resp.IsSuccess() {
		return resp, apiError(resp)
	}
	return resp, nil
}

func apiError(resp *Response) *APIError {
	return &APIError{
		Status:  resp.StatusCode,
		Code:    resp.Headers.Get("X-Error-Code"),
		Message: string(resp.RawBody),
	}
}
