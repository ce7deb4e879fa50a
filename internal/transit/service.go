package transit

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"paradas.buscoruna.org/internal/appconf"
	"paradas.buscoruna.org/internal/metrics"
	"paradas.buscoruna.org/internal/models"
)

// ErrInvalidLimit is returned by SearchStops for a limit below one.
var ErrInvalidLimit = errors.New("limit must be at least 1")

// DefaultPlaceholderPrefix names stops whose catalog entry has no name.
const DefaultPlaceholderPrefix = "Parada"

// Fetcher retrieves a JSON object from the transit API.
type Fetcher interface {
	FetchObject(ctx context.Context, url string) (map[string]any, error)
}

// Config is the part of the application configuration the service needs.
type Config struct {
	StopsURL            string
	ArrivalsURLTemplate string
	CacheTTL            time.Duration // <= 0 caches forever
	PrimaryStopID       int
	InterestLines       []string
	PlaceholderPrefix   string
}

// ConfigFromApp extracts the service configuration.
func ConfigFromApp(cfg appconf.Config) Config {
	return Config{
		StopsURL:            cfg.Settings.StopsSourceURL,
		ArrivalsURLTemplate: cfg.Settings.ArrivalsURLTemplate,
		CacheTTL:            cfg.Settings.CacheTTL,
		PrimaryStopID:       cfg.App.PrimaryStopID,
		InterestLines:       cfg.App.InterestLines,
		PlaceholderPrefix:   DefaultPlaceholderPrefix,
	}
}

// Service aggregates the stop catalog and live arrivals. Create one per
// process and share it between handlers.
type Service struct {
	cfg           Config
	fetcher       Fetcher
	logger        *slog.Logger
	metrics       *metrics.Collector
	interestNames map[string]struct{}
	now           func() time.Time

	current   atomic.Pointer[catalog]
	refreshMu sync.Mutex

	arrivals singleflight.Group
}

func NewService(cfg Config, fetcher Fetcher, logger *slog.Logger, m *metrics.Collector) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.PlaceholderPrefix == "" {
		cfg.PlaceholderPrefix = DefaultPlaceholderPrefix
	}

	names := make(map[string]struct{}, len(cfg.InterestLines))
	for _, line := range cfg.InterestLines {
		if line = strings.ToLower(strings.TrimSpace(line)); line != "" {
			names[line] = struct{}{}
		}
	}

	return &Service{
		cfg:           cfg,
		fetcher:       fetcher,
		logger:        logger.With(slog.String("component", "transit_service")),
		metrics:       m,
		interestNames: names,
		now:           time.Now,
	}
}

// PrimaryStopID is the stop shown on the home page.
func (s *Service) PrimaryStopID() int {
	return s.cfg.PrimaryStopID
}

// PlaceholderName is the display name used for a stop without catalog data.
func (s *Service) PlaceholderName(id int) string {
	return placeholderName(s.cfg.PlaceholderPrefix, id)
}

// SearchStops returns up to limit interest-filtered stops sorted by name whose
// name contains query (case-insensitive). A blank query matches every stop.
func (s *Service) SearchStops(ctx context.Context, query string, limit int) ([]models.Stop, error) {
	if limit < 1 {
		return nil, ErrInvalidLimit
	}

	cat, err := s.loadCatalog(ctx, false)
	if err != nil {
		return nil, err
	}
	stops := filterInterestStops(cat.stops, cat.interestIDs)

	needle := strings.ToLower(strings.TrimSpace(query))
	if needle != "" {
		matches := stops[:0]
		for _, stop := range stops {
			if strings.Contains(strings.ToLower(stop.Name), needle) {
				matches = append(matches, stop)
			}
		}
		stops = matches
	}

	if len(stops) > limit {
		stops = stops[:limit]
	}
	return stops, nil
}

// GetStop returns the interest-filtered stop with the given id, or nil when
// the catalog has no such stop.
func (s *Service) GetStop(ctx context.Context, stopID int) (*models.Stop, error) {
	cat, err := s.loadCatalog(ctx, false)
	if err != nil {
		return nil, err
	}

	for _, stop := range cat.stops {
		if stop.ID == stopID {
			view := applyInterestToStop(stop, cat.interestIDs)
			return &view, nil
		}
	}
	return nil, nil
}
