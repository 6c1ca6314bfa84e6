package http

import (
	"net/http"

	"github.com/gorilla/mux"
	httpSwagger "github.com/swaggo/http-swagger/v2"
)

// RegisterSwaggerDocs registers Swagger documentation routes. The document itself
// is registered with swag by the docs package.
func RegisterSwaggerDocs(router *mux.Router) {
	router.PathPrefix("/swagger/").Handler(SwaggerHandler())
}

// SwaggerHandler serves the Swagger UI reading /swagger/doc.json
func SwaggerHandler() http.Handler {
	return httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json"))
}
