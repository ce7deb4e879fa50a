package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/julienschmidt/httprouter"

	"paradas.buscoruna.org/internal/app"
	"paradas.buscoruna.org/internal/appconf"
	"paradas.buscoruna.org/internal/logging"
	"paradas.buscoruna.org/internal/metrics"
	"paradas.buscoruna.org/internal/restapi"
	"paradas.buscoruna.org/internal/transit"
	"paradas.buscoruna.org/internal/upstream"
	"paradas.buscoruna.org/internal/webui"
)

// flags override values read from the environment when set.
type flags struct {
	port       int
	env        string
	configPath string
	envFile    string
}

func parseFlags(args []string, stderr io.Writer) (flags, error) {
	var f flags
	fs := flag.NewFlagSet("api", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.IntVar(&f.port, "port", 0, "API server port (overrides PORT)")
	fs.StringVar(&f.env, "env", "", "Environment (dev|test|production, overrides ENV)")
	fs.StringVar(&f.configPath, "config", "", "Path to the app config file (overrides APP_CONFIG_PATH)")
	fs.StringVar(&f.envFile, "env-file", ".env", "Optional .env file")
	err := fs.Parse(args)
	return f, err
}

func loadConfig(f flags) (appconf.Config, error) {
	settings, err := appconf.LoadSettings(f.envFile)
	if err != nil {
		return appconf.Config{}, err
	}
	if f.port != 0 {
		settings.Port = f.port
	}
	if f.env != "" {
		settings.Env = appconf.Environment(f.env)
	}
	if f.configPath != "" {
		settings.AppConfigPath = f.configPath
	}

	appCfg, err := appconf.LoadAppConfig(settings.AppConfigPath, settings.DefaultStopID)
	if err != nil {
		return appconf.Config{}, err
	}

	cfg := appconf.Config{Settings: settings, App: appCfg}
	if err := cfg.Validate(); err != nil {
		return appconf.Config{}, err
	}
	return cfg, nil
}

// newApplication wires the shared dependencies. The transit service is created
// once here and handed to every handler.
func newApplication(cfg appconf.Config, logger *slog.Logger) *app.Application {
	var m *metrics.Collector
	if cfg.Settings.MetricsEnabled {
		m = metrics.NewCollector()
	}

	client := upstream.New(cfg.Settings.HTTPTimeout, logger,
		upstream.WithMetrics(m),
		upstream.WithUserAgent(fmt.Sprintf("%s/%s", cfg.Settings.APITitle, cfg.Settings.Version)))

	return &app.Application{
		Config:  cfg,
		Logger:  logger,
		Transit: transit.NewService(transit.ConfigFromApp(cfg), client, logger, m),
		Metrics: m,
	}
}

// newHandler builds the router with the API and web routes behind the middleware chain.
func newHandler(application *app.Application) (http.Handler, *restapi.RestAPI, error) {
	api := restapi.NewRestAPI(application)
	webUI, err := webui.New(application)
	if err != nil {
		api.Close()
		return nil, nil, err
	}

	router := httprouter.New()
	api.SetRoutes(router)
	webUI.SetWebUIRoutes(router)

	return api.Handler(router), api, nil
}

// warmCatalog loads the stop catalog in the background so the first visitor
// does not pay for the upstream fetch.
func warmCatalog(ctx context.Context, application *app.Application) {
	start := time.Now()
	stops, err := application.Transit.LoadStops(ctx, false)
	if err != nil {
		logging.LogError(application.Logger, "catalog warmup failed", err)
		return
	}
	logging.LogOperation(application.Logger, "catalog_warmup_completed",
		slog.Int("stops_count", len(stops)),
		slog.Duration("duration", time.Since(start)))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	f, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(f)
	if err != nil {
		return err
	}

	logger := logging.NewStructuredLogger(stdout, logging.ParseLevel(cfg.Settings.LogLevel))
	slog.SetDefault(logger)

	application := newApplication(cfg, logger)
	handler, api, err := newHandler(application)
	if err != nil {
		return err
	}
	defer api.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Settings.Port),
		Handler:      handler,
		IdleTimeout:  time.Minute,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: cfg.Settings.HTTPTimeout + 10*time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	go warmCatalog(ctx, application)

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("starting server",
			slog.String("addr", srv.Addr),
			slog.String("env", string(cfg.Settings.Env)),
			slog.Int("primary_stop_id", cfg.App.PrimaryStopID),
			slog.Any("interest_lines", cfg.App.InterestLines))
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
