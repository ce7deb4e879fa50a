package appconf

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// AppConfig holds operator choices that live in a file rather than the environment.
// The file may be JSON or YAML.
type AppConfig struct {
	PrimaryStopID int      `yaml:"primary_stop_id" json:"primary_stop_id" validate:"gt=0"`
	InterestLines []string `yaml:"interest_lines" json:"interest_lines" validate:"dive,required"`
}

// DefaultAppConfig is used when no config file exists.
func DefaultAppConfig() AppConfig {
	return AppConfig{
		PrimaryStopID: 42,
		InterestLines: []string{"3", "3A", "12", "14"},
	}
}

// LoadAppConfig reads the app config at path. A missing file yields the defaults;
// keys absent from the file keep their default values. defaultStopID, when
// positive, replaces the built-in primary stop default.
func LoadAppConfig(path string, defaultStopID int) (AppConfig, error) {
	cfg := DefaultAppConfig()
	if defaultStopID > 0 {
		cfg.PrimaryStopID = defaultStopID
	}
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return AppConfig{}, fmt.Errorf("reading app config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return AppConfig{}, fmt.Errorf("parsing app config %s: %w", path, err)
	}

	return cfg, nil
}

// NormalizedInterestLines returns the interest lines trimmed and lower-cased, without blanks.
func (c AppConfig) NormalizedInterestLines() []string {
	out := make([]string, 0, len(c.InterestLines))
	for _, line := range c.InterestLines {
		if line = strings.ToLower(strings.TrimSpace(line)); line != "" {
			out = append(out, line)
		}
	}
	return out
}
