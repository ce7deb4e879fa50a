package restapi

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
)

// SetRoutes registers the JSON API on router. Endpoints under /api are rate limited per client.
func (api *RestAPI) SetRoutes(router *httprouter.Router) {
	limited := func(h http.HandlerFunc) http.Handler {
		return api.rateLimiter.Handler(h)
	}

	router.HandlerFunc(http.MethodGet, "/health", api.healthHandler)
	router.Handler(http.MethodGet, "/api/stops", limited(api.searchStopsHandler))
	router.Handler(http.MethodGet, "/api/stops/:id", limited(api.stopHandler))
	router.Handler(http.MethodGet, "/api/stops/:id/arrivals", limited(api.arrivalsHandler))

	if api.Config.Settings.MetricsEnabled && api.Metrics != nil {
		router.Handler(http.MethodGet, "/metrics", api.Metrics.Handler())
	}

	router.NotFound = http.HandlerFunc(api.notFoundResponse)
	router.MethodNotAllowed = http.HandlerFunc(api.methodNotAllowedResponse)
	router.PanicHandler = api.panicResponse
}
