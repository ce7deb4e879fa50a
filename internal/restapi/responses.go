package restapi

import (
	"encoding/json"
	"net/http"

	"paradas.buscoruna.org/internal/logging"
)

func setJSONResponseType(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
}

func (api *RestAPI) writeJSON(w http.ResponseWriter, r *http.Request, status int, body any) {
	setJSONResponseType(w)
	w.WriteHeader(status)
	if err := writeJSONBody(w, body); err != nil {
		logging.LogError(logging.FromContext(r.Context()), "failed to encode response", err)
	}
}

func (api *RestAPI) sendResponse(w http.ResponseWriter, r *http.Request, body any) {
	api.writeJSON(w, r, http.StatusOK, body)
}

func writeJSONBody(w http.ResponseWriter, body any) error {
	return json.NewEncoder(w).Encode(body)
}
