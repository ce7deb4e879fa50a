package restapi

import (
	"net/http"
)

func (api *RestAPI) arrivalsHandler(w http.ResponseWriter, r *http.Request) {
	stopID, ok := api.stopIDFromRequest(w, r)
	if !ok {
		return
	}

	ctx := r.Context()

	stop, err := api.Transit.GetStop(ctx, stopID)
	if err != nil {
		api.serverErrorResponse(w, r, err)
		return
	}
	if stop == nil {
		api.stopNotFoundResponse(w, r)
		return
	}

	arrivals, err := api.Transit.GetArrivals(ctx, stopID)
	if err != nil {
		api.upstreamErrorResponse(w, r, err)
		return
	}

	api.sendResponse(w, r, arrivals)
}
