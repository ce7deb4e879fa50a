package appconf

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Config is the complete, immutable runtime configuration.
type Config struct {
	Settings Settings
	App      AppConfig
}

// Load builds the configuration from the environment (and .env) plus the app config file.
func Load(envFiles ...string) (Config, error) {
	settings, err := LoadSettings(envFiles...)
	if err != nil {
		return Config{}, err
	}

	app, err := LoadAppConfig(settings.AppConfigPath, settings.DefaultStopID)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{Settings: settings, App: app}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks struct constraints on both halves of the configuration.
func (c Config) Validate() error {
	v := validator.New()
	if err := v.Struct(c.Settings); err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}
	if !strings.Contains(c.Settings.ArrivalsURLTemplate, StopIDPlaceholder) {
		return fmt.Errorf("invalid settings: ARRIVALS_URL_TEMPLATE must contain %s", StopIDPlaceholder)
	}
	if err := v.Struct(c.App); err != nil {
		return fmt.Errorf("invalid app config: %w", err)
	}
	return nil
}
