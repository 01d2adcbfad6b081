//go:build swagger

package httpapi

import (
	"github.com/go-chi/chi/v5"
	httpSwagger "github.com/swaggo/http-swagger"
	"github.com/swaggo/swag"
)

// docTemplate is the serialized OpenAPI document served at /swagger/doc.json.
// Regenerate with `make swagger-gen` after changing handler annotations.
const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "orchd API",
        "description": "Model orchestrator control and status API.",
        "version": "1.0"
    },
    "basePath": "/"
}`

type swaggerDoc struct{}

func (swaggerDoc) ReadDoc() string { return docTemplate }

func init() {
	swag.Register(swag.Name, swaggerDoc{})
}

// MountSwagger serves the swagger UI. Enabled with -tags=swagger.
func MountSwagger(r chi.Router) {
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))
}
