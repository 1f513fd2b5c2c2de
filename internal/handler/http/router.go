package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter registers every route. Order matters for readers only: chi prefers
// the static "codigo/" segment, so PATCH /electronicos/codigo/{codigo} never
// falls through to PATCH /electronicos/{codigo}.
func NewRouter(electronicos *ElectronicoHandler, health *HealthHandler, mws ...func(http.Handler) http.Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(mws...)
	r.Use(jsonContentType)

	r.Get("/", electronicos.Welcome)
	if health != nil {
		r.Get("/healthz", health.Check)
	}

	r.Route("/electronicos", func(r chi.Router) {
		r.Get("/", electronicos.GetAll)
		r.Post("/", electronicos.Create)

		r.Get("/codigo/{codigo}", electronicos.GetByCodigo)
		r.Get("/nombre/{nombre}", electronicos.GetByNombre)
		r.Get("/precio/{precio}", electronicos.GetByPrecio)
		r.Get("/categoria/{categoria}", electronicos.GetByCategoria)

		r.Put("/codigo/{codigo}", electronicos.Update)
		r.Patch("/codigo/{codigo}", electronicos.Update)
		r.Patch("/{codigo}", electronicos.UpdatePrecio)
		r.Delete("/codigo/{codigo}", electronicos.Delete)
	})

	r.NotFound(electronicos.NotFound)
	r.MethodNotAllowed(electronicos.NotFound)

	return r
}
