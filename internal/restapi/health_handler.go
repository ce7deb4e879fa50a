package restapi

import (
	"net/http"

	"paradas.buscoruna.org/internal/models"
)

func (api *RestAPI) healthHandler(w http.ResponseWriter, r *http.Request) {
	api.sendResponse(w, r, models.NewHealthResponse(api.Version()))
}
