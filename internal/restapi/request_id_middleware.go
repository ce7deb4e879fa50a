package restapi

import (
	"net/http"

	"github.com/google/uuid"

	"paradas.buscoruna.org/internal/logging"
)

const maxRequestIDLength = 128

// NewRequestIDMiddleware propagates a correlation id. An id sent by the client
// in header is reused; otherwise a random UUID is generated. The id is echoed
// back in the same header and stored in the request context.
func NewRequestIDMiddleware(header string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(header)
			if id == "" || len(id) > maxRequestIDLength {
				id = uuid.NewString()
			}

			w.Header().Set(header, id)
			next.ServeHTTP(w, r.WithContext(logging.WithRequestID(r.Context(), id)))
		})
	}
}
