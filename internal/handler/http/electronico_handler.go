package http

import (
	"context"
	"net/http"
	"net/url"

	"electronicos-api/internal/logger"
	"electronicos-api/internal/model"
	"electronicos-api/internal/service"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
)

// ElectronicoService is what the handler needs from service.ElectronicoService.
type ElectronicoService interface {
	GetAll(ctx context.Context) ([]model.Electronico, error)
	GetByCodigo(ctx context.Context, rawCodigo string) (model.Electronico, error)
	SearchByNombre(ctx context.Context, nombre string) ([]model.Electronico, error)
	SearchByCategoria(ctx context.Context, categoria string) ([]model.Electronico, error)
	SearchByPrecio(ctx context.Context, rawPrecio string) ([]model.Electronico, error)
	Create(ctx context.Context, doc model.Electronico) (model.Electronico, error)
	Update(ctx context.Context, rawCodigo string, fields model.Electronico) error
	UpdatePrecio(ctx context.Context, rawCodigo string, body model.Electronico) error
	Delete(ctx context.Context, rawCodigo string) error
}

type ElectronicoHandler struct {
	service ElectronicoService
}

var HttpElectronicoHandlerTracer = otel.Tracer("HttpElectronicoHandler")

var (
	getAllFailures = failures{
		internal: "Error al obtener los productos de la base de datos",
	}
	getByCodigoFailures = failures{
		notFound: "Producto no encontrado",
		internal: "Error al obtener el producto de la base de datos",
	}
	byNombreFailures = failures{
		notFound: "No se encontraron productos con el nombre solicidado",
		internal: "Error al obtener el nombre de la base de datos",
	}
	byPrecioFailures = failures{
		notFound: "Producto no encontrado",
		internal: "Error al obtener el producto de la base de datos",
	}
	byCategoriaFailures = failures{
		notFound: "No se encontraron productos en la categoría especificada",
		internal: "Error al obtener la categoria de la base de datos",
	}
	createFailures = failures{
		badRequest: msgBadBody,
		internal:   "Error al intentar agregar un nuevo producto",
	}
	updateFailures = failures{
		badRequest: msgBadBody,
		internal:   "Error al modificar el producto",
	}
	updatePrecioFailures = failures{
		badRequest: msgBadBody,
		internal:   "Error al modificar el precio",
	}
	deleteFailures = failures{
		notFound:   "No se encontro el producto con id seleccionado",
		badRequest: msgBadBody,
		internal:   "Error al eliminar el producto",
	}
)

func NewElectronicoHandler(service ElectronicoService) *ElectronicoHandler {
	return &ElectronicoHandler{
		service: service,
	}
}

func (h *ElectronicoHandler) Welcome(w http.ResponseWriter, r *http.Request) {
	writeText(w, http.StatusOK, "Bienvenido a la API de Electronicos")
}

func (h *ElectronicoHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("X-Error-Code", CodeNotFound)
	writeText(w, http.StatusNotFound, msgNoRoute)
}

func (h *ElectronicoHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	ctx, span := HttpElectronicoHandlerTracer.Start(r.Context(), "HttpElectronicoHandler.GetAll")
	defer span.End()
	logger.Info(ctx, "HttpElectronicoHandler.GetAll")

	docs, err := h.service.GetAll(ctx)
	h.respond(ctx, w, http.StatusOK, docs, err, getAllFailures)
}

func (h *ElectronicoHandler) GetByCodigo(w http.ResponseWriter, r *http.Request) {
	ctx, span := HttpElectronicoHandlerTracer.Start(r.Context(), "HttpElectronicoHandler.GetByCodigo")
	defer span.End()
	logger.Info(ctx, "HttpElectronicoHandler.GetByCodigo")

	doc, err := h.service.GetByCodigo(ctx, param(r, "codigo"))
	h.respond(ctx, w, http.StatusOK, doc, err, getByCodigoFailures)
}

func (h *ElectronicoHandler) GetByNombre(w http.ResponseWriter, r *http.Request) {
	ctx, span := HttpElectronicoHandlerTracer.Start(r.Context(), "HttpElectronicoHandler.GetByNombre")
	defer span.End()
	logger.Info(ctx, "HttpElectronicoHandler.GetByNombre")

	docs, err := h.service.SearchByNombre(ctx, param(r, "nombre"))
	h.respond(ctx, w, http.StatusOK, docs, err, byNombreFailures)
}

func (h *ElectronicoHandler) GetByPrecio(w http.ResponseWriter, r *http.Request) {
	ctx, span := HttpElectronicoHandlerTracer.Start(r.Context(), "HttpElectronicoHandler.GetByPrecio")
	defer span.End()
	logger.Info(ctx, "HttpElectronicoHandler.GetByPrecio")

	docs, err := h.service.SearchByPrecio(ctx, param(r, "precio"))
	h.respond(ctx, w, http.StatusOK, docs, err, byPrecioFailures)
}

func (h *ElectronicoHandler) GetByCategoria(w http.ResponseWriter, r *http.Request) {
	ctx, span := HttpElectronicoHandlerTracer.Start(r.Context(), "HttpElectronicoHandler.GetByCategoria")
	defer span.End()
	logger.Info(ctx, "HttpElectronicoHandler.GetByCategoria")

	docs, err := h.service.SearchByCategoria(ctx, param(r, "categoria"))
	h.respond(ctx, w, http.StatusOK, docs, err, byCategoriaFailures)
}

func (h *ElectronicoHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx, span := HttpElectronicoHandlerTracer.Start(r.Context(), "HttpElectronicoHandler.Create")
	defer span.End()
	logger.Info(ctx, "HttpElectronicoHandler.Create")

	doc, err := model.DecodeElectronico(r.Body)
	if err != nil {
		writeError(ctx, w, service.ErrInvalidBody, createFailures)
		return
	}

	created, err := h.service.Create(ctx, doc)
	h.respond(ctx, w, http.StatusCreated, created, err, createFailures)
}

// Update serves both PUT and PATCH on /electronicos/codigo/{codigo}.
func (h *ElectronicoHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx, span := HttpElectronicoHandlerTracer.Start(r.Context(), "HttpElectronicoHandler.Update")
	defer span.End()
	logger.Info(ctx, "HttpElectronicoHandler.Update")

	body, err := model.DecodeElectronico(r.Body)
	if err != nil {
		writeError(ctx, w, service.ErrInvalidBody, updateFailures)
		return
	}

	err = h.service.Update(ctx, param(r, "codigo"), body)
	h.respond(ctx, w, http.StatusOK, body, err, updateFailures)
}

// UpdatePrecio answers with the whole body even though only precio is stored.
func (h *ElectronicoHandler) UpdatePrecio(w http.ResponseWriter, r *http.Request) {
	ctx, span := HttpElectronicoHandlerTracer.Start(r.Context(), "HttpElectronicoHandler.UpdatePrecio")
	defer span.End()
	logger.Info(ctx, "HttpElectronicoHandler.UpdatePrecio")

	body, err := model.DecodeElectronico(r.Body)
	if err != nil {
		writeError(ctx, w, service.ErrInvalidBody, updatePrecioFailures)
		return
	}

	err = h.service.UpdatePrecio(ctx, param(r, "codigo"), body)
	h.respond(ctx, w, http.StatusOK, body, err, updatePrecioFailures)
}

func (h *ElectronicoHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx, span := HttpElectronicoHandlerTracer.Start(r.Context(), "HttpElectronicoHandler.Delete")
	defer span.End()
	logger.Info(ctx, "HttpElectronicoHandler.Delete")

	if err := h.service.Delete(ctx, param(r, "codigo")); err != nil {
		writeError(ctx, w, err, deleteFailures)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// param returns a path parameter decoded exactly once. chi matches on
// r.URL.RawPath when it is set, leaving escapes in the value.
func param(r *http.Request, name string) string {
	raw := chi.URLParam(r, name)
	if r.URL.RawPath == "" {
		return raw
	}
	if v, err := url.PathUnescape(raw); err == nil {
		return v
	}
	return raw
}

func (h *ElectronicoHandler) respond(ctx context.Context, w http.ResponseWriter, status int, v any, err error, f failures) {
	if err != nil {
		writeError(ctx, w, err, f)
		return
	}
	if err := writeJSON(w, status, v); err != nil {
		writeError(ctx, w, err, f)
	}
}
