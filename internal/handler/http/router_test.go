package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"electronicos-api/internal/model"
	"electronicos-api/internal/service"
	"electronicos-api/internal/service/servicetest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
)

type fixture struct {
	server *httptest.Server
	repo   *servicetest.MemoryRepository
	conn   *servicetest.Connector
}

func newFixture(t *testing.T, seed ...model.Electronico) *fixture {
	t.Helper()
	repo := servicetest.NewMemoryRepository(seed...)
	conn := &servicetest.Connector{}
	svc := service.NewElectronicoServiceWithFactory(conn, func(*mongo.Database) service.Repository { return repo })

	router := NewRouter(NewElectronicoHandler(svc), nil)
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	return &fixture{server: srv, repo: repo, conn: conn}
}

func (f *fixture) do(t *testing.T, method, path, body string) (*http.Response, string) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, f.server.URL+path, reader)
	require.NoError(t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(b)
}

func decodeList(t *testing.T, body string) []map[string]any {
	t.Helper()
	var out []map[string]any
	require.NoError(t, json.Unmarshal([]byte(body), &out))
	return out
}

func seedCatalog() []model.Electronico {
	return []model.Electronico{
		{"codigo": int32(1), "nombre": "Smart TV 55", "categoria": "Televisores", "precio": int32(800)},
		{"codigo": int32(2), "nombre": "Auriculares", "categoria": "Audio", "precio": int32(60)},
	}
}

func TestWelcomeAndCatchAll(t *testing.T) {
	f := newFixture(t)

	resp, body := f.do(t, http.MethodGet, "/", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Bienvenido a la API de Electronicos", body)
	assert.Equal(t, contentTypeJSON, resp.Header.Get("Content-Type"))

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/productos"},
		{http.MethodPost, "/electronicos/codigo/5"},
		{http.MethodDelete, "/"},
		{http.MethodGet, "/electronicos/codigo"},
	} {
		resp, body := f.do(t, tc.method, tc.path, "")
		assert.Equal(t, http.StatusNotFound, resp.StatusCode, tc.path)
		assert.Equal(t, "Lo sentimos, la página que buscas no existe.", body, tc.path)
		assert.Equal(t, CodeNotFound, resp.Header.Get("X-Error-Code"), tc.path)
	}
}

func TestLifecycle(t *testing.T) {
	f := newFixture(t)

	resp, body := f.do(t, http.MethodGet, "/electronicos", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "[]", body)

	resp, body = f.do(t, http.MethodPost, "/electronicos",
		`{"codigo":101,"nombre":"Mouse","categoria":"Perifericos","precio":15}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created map[string]any
	require.NoError(t, json.Unmarshal([]byte(body), &created))
	assert.EqualValues(t, 101, created["codigo"])
	assert.NotEmpty(t, created["_id"])

	resp, body = f.do(t, http.MethodGet, "/electronicos/codigo/101", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(body), &got))
	assert.Equal(t, created["_id"], got["_id"])
	delete(got, "_id")
	assert.Equal(t, map[string]any{
		"codigo":    float64(101),
		"nombre":    "Mouse",
		"categoria": "Perifericos",
		"precio":    float64(15),
	}, got)

	resp, body = f.do(t, http.MethodPatch, "/electronicos/101", `{"precio":20}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"precio":20}`, body)

	resp, body = f.do(t, http.MethodGet, "/electronicos/precio/18", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	list := decodeList(t, body)
	require.Len(t, list, 1)
	assert.EqualValues(t, 101, list[0]["codigo"])

	resp, body = f.do(t, http.MethodGet, "/electronicos/nombre/mou", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decodeList(t, body), 1)

	resp, body = f.do(t, http.MethodDelete, "/electronicos/codigo/101", "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Empty(t, body)

	resp, body = f.do(t, http.MethodGet, "/electronicos/codigo/101", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "Producto no encontrado", body)

	assert.True(t, f.conn.Balanced())
}

func TestSearchMisses(t *testing.T) {
	f := newFixture(t, seedCatalog()...)

	cases := []struct {
		path string
		want string
	}{
		{"/electronicos/nombre/heladera", "No se encontraron productos con el nombre solicidado"},
		{"/electronicos/categoria/lavado", "No se encontraron productos en la categoría especificada"},
		{"/electronicos/precio/5000", "Producto no encontrado"},
		{"/electronicos/precio/caro", "Producto no encontrado"},
		{"/electronicos/codigo/abc", "Producto no encontrado"},
	}
	for _, tc := range cases {
		resp, body := f.do(t, http.MethodGet, tc.path, "")
		assert.Equal(t, http.StatusNotFound, resp.StatusCode, tc.path)
		assert.Equal(t, tc.want, body, tc.path)
	}
}

func TestSearchDecodesPathSegments(t *testing.T) {
	f := newFixture(t, seedCatalog()...)

	resp, body := f.do(t, http.MethodGet, "/electronicos/nombre/smart%20tv", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	list := decodeList(t, body)
	require.Len(t, list, 1)
	assert.Equal(t, "Smart TV 55", list[0]["nombre"])

	resp, body = f.do(t, http.MethodGet, "/electronicos/categoria/AUDIO", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decodeList(t, body), 1)
}

func TestSearchDecodesOnce(t *testing.T) {
	f := newFixture(t,
		model.Electronico{"codigo": int32(1), "nombre": "A", "categoria": "Letras", "precio": int32(1)},
		model.Electronico{"codigo": int32(2), "nombre": "Cable 50%41", "categoria": "Cables", "precio": int32(5)},
		model.Electronico{"codigo": int32(3), "nombre": "Cable a/b", "categoria": "Cables", "precio": int32(7)},
	)

	resp, body := f.do(t, http.MethodGet, "/electronicos/nombre/%2541", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	list := decodeList(t, body)
	require.Len(t, list, 1)
	assert.Equal(t, "Cable 50%41", list[0]["nombre"])

	// an escaped slash keeps the raw path, so the segment is unescaped here
	resp, body = f.do(t, http.MethodGet, "/electronicos/nombre/a%2Fb", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	list = decodeList(t, body)
	require.Len(t, list, 1)
	assert.Equal(t, "Cable a/b", list[0]["nombre"])
}

func TestPatchRoutesDoNotCollide(t *testing.T) {
	f := newFixture(t, seedCatalog()...)

	// full merge on /codigo/{codigo}
	resp, body := f.do(t, http.MethodPatch, "/electronicos/codigo/2", `{"nombre":"Auriculares BT","color":"negro"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"nombre":"Auriculares BT","color":"negro"}`, body)

	// precio only on /{codigo}
	resp, body = f.do(t, http.MethodPatch, "/electronicos/2", `{"precio":75,"nombre":"Ignorado"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"precio":75,"nombre":"Ignorado"}`, body)

	resp, body = f.do(t, http.MethodGet, "/electronicos/codigo/2", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(body), &got))
	assert.Equal(t, "Auriculares BT", got["nombre"])
	assert.Equal(t, "negro", got["color"])
	assert.EqualValues(t, 75, got["precio"])
	assert.Equal(t, "Audio", got["categoria"])
}

func TestPutReplacesSuppliedFields(t *testing.T) {
	f := newFixture(t, seedCatalog()...)

	resp, _ := f.do(t, http.MethodPut, "/electronicos/codigo/1", `{"precio":750}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	_, body := f.do(t, http.MethodGet, "/electronicos/codigo/1", "")
	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(body), &got))
	assert.EqualValues(t, 750, got["precio"])
	assert.Equal(t, "Smart TV 55", got["nombre"])
}

func TestBadRequests(t *testing.T) {
	f := newFixture(t, seedCatalog()...)

	cases := []struct {
		method, path, body string
	}{
		{http.MethodPost, "/electronicos", `not json`},
		{http.MethodPost, "/electronicos", `[1,2]`},
		{http.MethodPost, "/electronicos", ``},
		{http.MethodPut, "/electronicos/codigo/1", `{}`},
		{http.MethodPut, "/electronicos/codigo/uno", `{"precio":1}`},
		{http.MethodPatch, "/electronicos/1", `{"nombre":"sin precio"}`},
		{http.MethodDelete, "/electronicos/codigo/0", ``},
		{http.MethodDelete, "/electronicos/codigo/x", ``},
	}
	for _, tc := range cases {
		resp, body := f.do(t, tc.method, tc.path, tc.body)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, tc.method+" "+tc.path+" "+tc.body)
		assert.Equal(t, msgBadBody, body)
		assert.Equal(t, CodeInvalidInput, resp.Header.Get("X-Error-Code"))
	}
	assert.Equal(t, 2, f.repo.Len())
}

func TestDeleteMissing(t *testing.T) {
	f := newFixture(t, seedCatalog()...)

	resp, body := f.do(t, http.MethodDelete, "/electronicos/codigo/99", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "No se encontro el producto con id seleccionado", body)
	assert.Equal(t, 2, f.repo.Len())
}

func TestConnectionFailure(t *testing.T) {
	f := newFixture(t, seedCatalog()...)
	f.conn.Err = errors.New("server selection timeout")

	for _, path := range []string{"/electronicos", "/electronicos/codigo/1", "/electronicos/nombre/tv"} {
		resp, body := f.do(t, http.MethodGet, path, "")
		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode, path)
		assert.Equal(t, "Error al conectarse a MongoDB", body, path)
		assert.Equal(t, CodeConnectionFailed, resp.Header.Get("X-Error-Code"), path)
	}
}

func TestQueryFailure(t *testing.T) {
	f := newFixture(t, seedCatalog()...)
	f.repo.Err = errors.New("cursor killed")

	resp, body := f.do(t, http.MethodGet, "/electronicos", "")
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, "Error al obtener los productos de la base de datos", body)
	assert.Equal(t, CodeInternal, resp.Header.Get("X-Error-Code"))

	resp, body = f.do(t, http.MethodDelete, "/electronicos/codigo/1", "")
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, "Error al eliminar el producto", body)
	assert.True(t, f.conn.Balanced())
}

func TestMiddlewaresRun(t *testing.T) {
	repo := servicetest.NewMemoryRepository()
	svc := service.NewElectronicoServiceWithFactory(&servicetest.Connector{}, func(*mongo.Database) service.Repository { return repo })

	seen := 0
	mw := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen++
			next.ServeHTTP(w, r)
		})
	}

	rec := httptest.NewRecorder()
	NewRouter(NewElectronicoHandler(svc), nil, mw).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, seen)
}

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestHealthz(t *testing.T) {
	svc := service.NewElectronicoServiceWithFactory(&servicetest.Connector{}, func(*mongo.Database) service.Repository {
		return servicetest.NewMemoryRepository()
	})

	up := NewHealthHandler(service.NewHealthService(pingFunc(func(context.Context) error { return nil })))
	rec := httptest.NewRecorder()
	NewRouter(NewElectronicoHandler(svc), up).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"UP","data":{"mongodb":"UP"}}`, rec.Body.String())

	down := NewHealthHandler(service.NewHealthService(pingFunc(func(context.Context) error { return errors.New("down") })))
	rec = httptest.NewRecorder()
	NewRouter(NewElectronicoHandler(svc), down).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"status":"DOWN","data":{"mongodb":"DOWN"}}`, rec.Body.String())

	// without a health handler the path falls through to the catch-all
	rec = httptest.NewRecorder()
	NewRouter(NewElectronicoHandler(svc), nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
