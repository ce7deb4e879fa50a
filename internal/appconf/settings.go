package appconf

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DefaultStopsSourceURL      = "https://itranvias.com/queryitr_v3.php?dato=20160101T000000_gl_0_20160101T000000&func=7"
	DefaultArrivalsURLTemplate = "https://itranvias.com/queryitr_v3.php?func=0&dato={stop_id}"

	// StopIDPlaceholder is substituted with the stop id in the arrivals URL template.
	StopIDPlaceholder = "{stop_id}"
)

// Environment is the name of the current operating environment.
type Environment string

const (
	Development Environment = "dev"
	Test        Environment = "test"
	Production  Environment = "production"
)

// Settings holds runtime configuration read from the process environment.
type Settings struct {
	Env                 Environment `validate:"required"`
	APITitle            string      `validate:"required"`
	Port                int         `validate:"gt=0,lte=65535"`
	DefaultStopID       int         `validate:"gt=0"`
	StopsSourceURL      string      `validate:"required,url"`
	ArrivalsURLTemplate string      `validate:"required"`
	CacheTTL            time.Duration
	HTTPTimeout         time.Duration `validate:"gt=0"`
	CORSOrigins         string
	RequestIDHeader     string `validate:"required"`
	AppConfigPath       string
	RootPath            string
	LogLevel            string `validate:"omitempty,oneof=debug info warn warning error"`
	RateLimit           int
	MetricsEnabled      bool
	Version             string
}

// DefaultSettings returns the settings used when no environment overrides are present.
func DefaultSettings() Settings {
	return Settings{
		Env:                 Development,
		APITitle:            "BusCorunaMayores",
		Port:                8000,
		DefaultStopID:       42,
		StopsSourceURL:      DefaultStopsSourceURL,
		ArrivalsURLTemplate: DefaultArrivalsURLTemplate,
		CacheTTL:            0,
		HTTPTimeout:         8 * time.Second,
		CORSOrigins:         "*",
		RequestIDHeader:     "X-Request-ID",
		AppConfigPath:       "config/app_config.json",
		RootPath:            "",
		LogLevel:            "info",
		RateLimit:           100,
		MetricsEnabled:      true,
		Version:             "0.1.0",
	}
}

// LoadSettings reads a .env file (if present) into the environment and builds
// Settings from it. envFiles defaults to ".env".
func LoadSettings(envFiles ...string) (Settings, error) {
	// Missing .env files are fine; real environment variables still apply.
	_ = godotenv.Load(envFiles...)
	return settingsFromLookup(os.LookupEnv)
}

func settingsFromLookup(lookup func(string) (string, bool)) (Settings, error) {
	cfg := DefaultSettings()

	get := func(key string) (string, bool) {
		v, ok := lookup(key)
		if !ok || strings.TrimSpace(v) == "" {
			return "", false
		}
		return strings.TrimSpace(v), true
	}

	if v, ok := get("ENV"); ok {
		cfg.Env = Environment(strings.ToLower(v))
	}
	if v, ok := get("API_TITLE"); ok {
		cfg.APITitle = v
	}
	if v, ok := get("PORT"); ok {
		port, err := strconv.Atoi(v)
		if err != nil {
			return Settings{}, fmt.Errorf("invalid PORT: %q", v)
		}
		cfg.Port = port
	}
	if v, ok := get("DEFAULT_STOP_ID"); ok {
		id, err := strconv.Atoi(v)
		if err != nil {
			return Settings{}, fmt.Errorf("invalid DEFAULT_STOP_ID: %q", v)
		}
		cfg.DefaultStopID = id
	}
	if v, ok := get("STOPS_SOURCE_URL"); ok {
		cfg.StopsSourceURL = v
	}
	if v, ok := get("ARRIVALS_URL_TEMPLATE"); ok {
		cfg.ArrivalsURLTemplate = v
	}
	if v, ok := get("CACHE_TTL_SECONDS"); ok {
		sec, err := strconv.Atoi(v)
		if err != nil {
			return Settings{}, fmt.Errorf("invalid CACHE_TTL_SECONDS: %q", v)
		}
		if sec < 0 {
			sec = -1
		}
		cfg.CacheTTL = time.Duration(sec) * time.Second
	}
	if v, ok := get("HTTP_TIMEOUT_SECONDS"); ok {
		sec, err := strconv.ParseFloat(v, 64)
		if err != nil || sec <= 0 {
			return Settings{}, fmt.Errorf("invalid HTTP_TIMEOUT_SECONDS: %q", v)
		}
		cfg.HTTPTimeout = time.Duration(sec * float64(time.Second))
	}
	if v, ok := get("CORS_ORIGINS"); ok {
		cfg.CORSOrigins = v
	}
	if v, ok := get("REQUEST_ID_HEADER"); ok {
		cfg.RequestIDHeader = v
	}
	if v, ok := get("APP_CONFIG_PATH"); ok {
		cfg.AppConfigPath = v
	}
	if v, ok := lookup("ROOT_PATH"); ok {
		cfg.RootPath = strings.TrimRight(strings.TrimSpace(v), "/")
	}
	if v, ok := get("LOG_LEVEL"); ok {
		cfg.LogLevel = strings.ToLower(v)
	}
	if v, ok := get("RATE_LIMIT"); ok {
		limit, err := strconv.Atoi(v)
		if err != nil {
			return Settings{}, fmt.Errorf("invalid RATE_LIMIT: %q", v)
		}
		cfg.RateLimit = limit
	}
	if v, ok := get("METRICS_ENABLED"); ok {
		cfg.MetricsEnabled = parseBool(v)
	}
	if v, ok := get("APP_VERSION"); ok {
		cfg.Version = v
	}

	return cfg, nil
}

// AllowedOrigins splits CORSOrigins into a list; "*" means any origin.
func (s Settings) AllowedOrigins() []string {
	if strings.TrimSpace(s.CORSOrigins) == "*" {
		return []string{"*"}
	}
	var origins []string
	for _, origin := range strings.Split(s.CORSOrigins, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}
	return origins
}

func parseBool(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "t", "yes", "y", "on":
		return true
	default:
		return false
	}
}
