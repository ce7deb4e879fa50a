package restapi

import (
	"net/http"

	"paradas.buscoruna.org/internal/models"
	"paradas.buscoruna.org/internal/utils"
)

func (api *RestAPI) searchStopsHandler(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()
	fieldErrors := make(map[string][]string)

	query, err := utils.ValidateAndSanitizeQuery(params.Get("q"))
	if err != nil {
		fieldErrors["q"] = append(fieldErrors["q"], err.Error())
	}

	limit, err := utils.ParseLimit(params.Get("limit"), utils.DefaultSearchLimit, utils.MinSearchLimit, utils.MaxSearchLimit)
	if err != nil {
		fieldErrors["limit"] = append(fieldErrors["limit"], err.Error())
	}

	if len(fieldErrors) > 0 {
		api.validationErrorResponse(w, r, fieldErrors)
		return
	}

	stops, err := api.Transit.SearchStops(r.Context(), query, limit)
	if err != nil {
		api.serverErrorResponse(w, r, err)
		return
	}

	api.sendResponse(w, r, models.NewStopSearchResponse(stops))
}

// stopIDFromRequest parses the :id path parameter, writing a 422 when it is invalid.
func (api *RestAPI) stopIDFromRequest(w http.ResponseWriter, r *http.Request) (int, bool) {
	stopID, err := utils.ParseStopID(utils.ExtractIDFromParams(r, "id"))
	if err != nil {
		api.validationErrorResponse(w, r, map[string][]string{"id": {err.Error()}})
		return 0, false
	}
	return stopID, true
}

func (api *RestAPI) stopHandler(w http.ResponseWriter, r *http.Request) {
	stopID, ok := api.stopIDFromRequest(w, r)
	if !ok {
		return
	}

	stop, err := api.Transit.GetStop(r.Context(), stopID)
	if err != nil {
		api.serverErrorResponse(w, r, err)
		return
	}
	if stop == nil {
		api.stopNotFoundResponse(w, r)
		return
	}

	api.sendResponse(w, r, stop)
}
