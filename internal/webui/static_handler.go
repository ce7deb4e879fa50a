package webui

import (
	"bytes"
	"io/fs"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"

	"paradas.buscoruna.org/internal/logging"
)

// staticHandler serves /static/*filepath from the embedded assets.
func (webUI *WebUI) staticHandler() http.Handler {
	files := http.FileServer(http.FS(webUI.static))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		params := httprouter.ParamsFromContext(r.Context())
		req := r.Clone(r.Context())
		req.URL.Path = params.ByName("filepath")
		w.Header().Set("Cache-Control", "public, max-age=3600")
		files.ServeHTTP(w, req)
	})
}

// assetHandler serves a single embedded file at a fixed path with an explicit content type.
func (webUI *WebUI) assetHandler(name, contentType string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		content, err := fs.ReadFile(webUI.static, name)
		if err != nil {
			logging.LogError(logging.FromContext(r.Context()), "missing embedded asset", err)
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", contentType)
		// The service worker must be revalidated so updates roll out.
		if name == "sw.js" {
			w.Header().Set("Cache-Control", "no-cache")
		}
		http.ServeContent(w, r, name, time.Time{}, bytes.NewReader(content))
	}
}
