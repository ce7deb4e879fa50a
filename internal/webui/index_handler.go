package webui

import (
	"bytes"
	"log/slog"
	"net/http"
	"strings"

	"paradas.buscoruna.org/internal/logging"
)

type indexData struct {
	Title         string
	Version       string
	BasePath      string
	PrimaryStopID int
	StopName      string
}

func (webUI *WebUI) indexHandler(w http.ResponseWriter, r *http.Request) {
	logger := logging.FromContext(r.Context())
	stopID := webUI.PrimaryStopID()

	// The page still renders when the catalog is unavailable.
	name := webUI.Transit.PlaceholderName(stopID)
	stop, err := webUI.Transit.GetStop(r.Context(), stopID)
	if err != nil {
		logging.LogError(logger, "failed to load primary stop", err, slog.Int("stop_id", stopID))
	} else if stop != nil {
		name = stop.Name
	}

	data := indexData{
		Title:         webUI.Config.Settings.APITitle,
		Version:       webUI.Version(),
		BasePath:      strings.TrimRight(webUI.Config.Settings.RootPath, "/"),
		PrimaryStopID: stopID,
		StopName:      name,
	}

	var buf bytes.Buffer
	if err := webUI.templates.ExecuteTemplate(&buf, "index.html", data); err != nil {
		logging.LogError(logger, "failed to render index", err)
		http.Error(w, "internal_error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	_, _ = buf.WriteTo(w)
}
