package app

import (
	"log/slog"

	"paradas.buscoruna.org/internal/appconf"
	"paradas.buscoruna.org/internal/metrics"
	"paradas.buscoruna.org/internal/transit"
)

// Application holds the dependencies shared by HTTP handlers, helpers,
// and middleware. It is built once in main and passed by reference.
type Application struct {
	Config  appconf.Config
	Logger  *slog.Logger
	Transit *transit.Service
	// Metrics is nil when metrics are disabled.
	Metrics *metrics.Collector
}

// PrimaryStopID is the stop shown on the home page.
func (a *Application) PrimaryStopID() int {
	return a.Config.App.PrimaryStopID
}

// Version reported by /health.
func (a *Application) Version() string {
	if a.Config.Settings.Version == "" {
		return "0.0.0"
	}
	return a.Config.Settings.Version
}
