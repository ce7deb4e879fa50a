package webui

import (
	"net/http"

	"github.com/julienschmidt/httprouter"

	"paradas.buscoruna.org/internal/appconf"
)

// SetWebUIRoutes registers the front end. The debug pages are left out in production.
func (webUI *WebUI) SetWebUIRoutes(router *httprouter.Router) {
	router.HandlerFunc(http.MethodGet, "/", webUI.indexHandler)
	router.Handler(http.MethodGet, "/static/*filepath", webUI.staticHandler())
	router.HandlerFunc(http.MethodGet, "/favicon.ico", webUI.assetHandler("favicon-64.png", "image/png"))
	router.HandlerFunc(http.MethodGet, "/manifest.webmanifest", webUI.assetHandler("manifest.webmanifest", "application/manifest+json"))
	router.HandlerFunc(http.MethodGet, "/sw.js", webUI.assetHandler("sw.js", "application/javascript"))

	if webUI.Config.Settings.Env != appconf.Production {
		router.HandlerFunc(http.MethodGet, "/debug/", webUI.debugIndexHandler)
	}
}
