package swagger

import (
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"
)

func Handler() http.Handler {
	// Swagger UI reads the API document served by the router.
	return httpSwagger.Handler(
		httpSwagger.URL("/openapi.yml"),
	)
}
