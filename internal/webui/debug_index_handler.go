package webui

import (
	"bytes"
	"net/http"

	"github.com/davecgh/go-spew/spew"

	"paradas.buscoruna.org/internal/logging"
)

type debugData struct {
	Title string
	Pre   string
}

func (webUI *WebUI) writeDebugData(w http.ResponseWriter, r *http.Request, title string, data interface{}) {
	dataStruct := debugData{
		Title: title,
		Pre:   spew.Sdump(data),
	}

	var buf bytes.Buffer
	if err := webUI.templates.ExecuteTemplate(&buf, "debug_index.html", dataStruct); err != nil {
		logging.LogError(logging.FromContext(r.Context()), "failed to render debug page", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

// debugIndexHandler dumps the cached catalog without triggering a refresh,
// except for stops which loads the catalog when it is missing.
func (webUI *WebUI) debugIndexHandler(w http.ResponseWriter, r *http.Request) {
	dataType := r.URL.Query().Get("dataType")

	var data interface{}
	var title string

	switch dataType {
	case "catalog":
		data = webUI.Transit.CatalogInfo()
		title = "Stop Catalog - Summary"
	case "stops":
		stops, err := webUI.Transit.LoadStops(r.Context(), false)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		data = stops
		title = "Stop Catalog - Stops"
	case "lines":
		data = webUI.Transit.CatalogLines()
		title = "Stop Catalog - Lines"
	case "config":
		data = webUI.Config
		title = "Configuration"
	default:
		data = map[string]string{
			"error": "Please use one of the following: catalog, stops, lines, config.",
		}
		title = "Choose a data type"
	}

	webUI.writeDebugData(w, r, title, data)
}
