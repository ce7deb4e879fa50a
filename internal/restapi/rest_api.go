package restapi

import (
	"net/http"
	"time"

	"paradas.buscoruna.org/internal/app"
)

type RestAPI struct {
	*app.Application
	rateLimiter *RateLimitMiddleware
}

// NewRestAPI creates a new RestAPI instance with initialized rate limiter
func NewRestAPI(app *app.Application) *RestAPI {
	return &RestAPI{
		Application: app,
		rateLimiter: NewRateLimitMiddleware(app.Config.Settings.RateLimit, time.Second),
	}
}

// Close stops background work owned by the API.
func (api *RestAPI) Close() {
	api.rateLimiter.Stop()
}

// Handler wraps routes with the middleware chain. Outermost first: request id,
// request logging, security headers and CORS, compression.
func (api *RestAPI) Handler(routes http.Handler) http.Handler {
	settings := api.Config.Settings

	handler := CompressionMiddleware(routes)
	handler = NewSecurityMiddleware(settings.AllowedOrigins(), settings.RequestIDHeader)(handler)
	handler = NewRequestLoggingMiddleware(api.Logger, api.Metrics)(handler)
	handler = NewRequestIDMiddleware(settings.RequestIDHeader)(handler)
	return handler
}
