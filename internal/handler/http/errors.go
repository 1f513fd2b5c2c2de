package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"electronicos-api/internal/logger"
	"electronicos-api/internal/service"
)

// Error codes exposed in the X-Error-Code header. Bodies stay static text.
const (
	CodeConnectionFailed = "connection_failed"
	CodeNotFound         = "not_found"
	CodeInvalidInput     = "invalid_input"
	CodeInternal         = "internal"
)

const (
	msgConnection = "Error al conectarse a MongoDB"
	msgBadBody    = "Error en el formato de datos a crear"
	msgNoRoute    = "Lo sentimos, la página que buscas no existe."
)

// failures holds the static texts one route answers with.
type failures struct {
	notFound   string
	badRequest string
	internal   string
}

type apiError struct {
	status  int
	code    string
	message string
}

func classify(err error, f failures) apiError {
	switch {
	case errors.Is(err, service.ErrConnection):
		return apiError{http.StatusInternalServerError, CodeConnectionFailed, msgConnection}
	case errors.Is(err, service.ErrNotFound):
		return apiError{http.StatusNotFound, CodeNotFound, f.notFound}
	case errors.Is(err, service.ErrInvalidBody), errors.Is(err, service.ErrInvalidCodigo):
		return apiError{http.StatusBadRequest, CodeInvalidInput, f.badRequest}
	default:
		return apiError{http.StatusInternalServerError, CodeInternal, f.internal}
	}
}

func writeError(ctx context.Context, w http.ResponseWriter, err error, f failures) {
	e := classify(err, f)
	if e.status >= http.StatusInternalServerError {
		logger.Error(ctx, e.message, slog.String("error", err.Error()))
	}
	w.Header().Set("X-Error-Code", e.code)
	writeText(w, e.status, e.message)
}
