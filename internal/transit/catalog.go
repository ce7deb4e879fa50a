package transit

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"paradas.buscoruna.org/internal/logging"
	"paradas.buscoruna.org/internal/metrics"
	"paradas.buscoruna.org/internal/models"
	"paradas.buscoruna.org/internal/upstream"
)

// catalog is one immutable generation of the stop catalog. Stops, line
// metadata and interest ids always come from the same fetch.
type catalog struct {
	stops       []models.Stop
	lineMeta    map[int]models.LineMeta
	interestIDs interestSet
	loadedAt    time.Time
	expiresAt   time.Time // zero means never
	placeholder bool
}

func (c *catalog) usable() bool {
	return c != nil && len(c.stops) > 0
}

func (c *catalog) fresh(now time.Time) bool {
	return c.usable() && (c.expiresAt.IsZero() || now.Before(c.expiresAt))
}

// CatalogInfo summarizes the cached catalog.
type CatalogInfo struct {
	Loaded        bool      `json:"loaded"`
	Placeholder   bool      `json:"placeholder"`
	Stops         int       `json:"stops"`
	Lines         int       `json:"lines"`
	InterestLines []int     `json:"interest_lines"`
	LoadedAt      time.Time `json:"loaded_at"`
	ExpiresAt     time.Time `json:"expires_at"`
}

// LoadStops returns the cached stop catalog, refreshing it when it is missing,
// expired, or force is set. The returned stops are copies.
//
// Upstream failures never surface here: a previous catalog is served stale, and
// without one a placeholder catalog holding only the primary stop is installed.
func (s *Service) LoadStops(ctx context.Context, force bool) ([]models.Stop, error) {
	cat, err := s.loadCatalog(ctx, force)
	if err != nil {
		return nil, err
	}
	stops := make([]models.Stop, len(cat.stops))
	for i, stop := range cat.stops {
		stops[i] = stop.Clone()
	}
	return stops, nil
}

func (s *Service) loadCatalog(ctx context.Context, force bool) (*catalog, error) {
	if !force {
		if cat := s.current.Load(); cat.fresh(s.now()) {
			s.metrics.CatalogHit()
			return cat, nil
		}
	}

	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()

	// Another caller may have refreshed while we waited for the lock.
	if !force {
		if cat := s.current.Load(); cat.fresh(s.now()) {
			s.metrics.CatalogHit()
			return cat, nil
		}
	}

	logger := logging.FromContext(ctx).With(slog.String("component", "stop_catalog"))
	start := time.Now()

	next, err := s.fetchCatalog(ctx)
	if err == nil {
		s.current.Store(next)
		s.metrics.CatalogRefreshed(metrics.RefreshFresh, len(next.stops))
		logging.LogOperation(logger, "stop_catalog_refreshed",
			slog.Int("stops_count", len(next.stops)),
			slog.Int("lines_count", len(next.lineMeta)),
			slog.Int("interest_lines_count", len(next.interestIDs)),
			slog.Duration("duration", time.Since(start)))
		return next, nil
	}

	// A cancelled caller must not degrade the shared cache.
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}

	if prev := s.current.Load(); prev.usable() {
		s.metrics.CatalogRefreshed(metrics.RefreshStale, len(prev.stops))
		logging.LogError(logger, "serving stale stop catalog", err,
			slog.Bool("placeholder", prev.placeholder))
		return prev, nil
	}

	placeholder := s.placeholderCatalog()
	s.current.Store(placeholder)
	s.metrics.CatalogRefreshed(metrics.RefreshPlaceholder, len(placeholder.stops))
	logging.LogWarning(logger, "falling back to placeholder stop catalog",
		slog.String("error", err.Error()),
		slog.Int("primary_stop_id", s.cfg.PrimaryStopID))
	return placeholder, nil
}

func (s *Service) fetchCatalog(ctx context.Context) (*catalog, error) {
	payload, err := s.fetcher.FetchObject(upstream.WithEndpoint(ctx, metrics.EndpointStops), s.cfg.StopsURL)
	if err != nil {
		return nil, err
	}

	stops, lines, err := decodeCatalog(payload, s.cfg.PlaceholderPrefix)
	if err != nil {
		return nil, err
	}

	meta, interest := parseLineMeta(lines, s.interestNames)
	now := s.now()
	return &catalog{
		stops:       stops,
		lineMeta:    meta,
		interestIDs: interest,
		loadedAt:    now,
		expiresAt:   s.expiry(now),
	}, nil
}

func (s *Service) placeholderCatalog() *catalog {
	id := s.cfg.PrimaryStopID
	now := s.now()
	return &catalog{
		stops:       []models.Stop{models.NewStop(id, placeholderName(s.cfg.PlaceholderPrefix, id), 0, 0, nil)},
		lineMeta:    map[int]models.LineMeta{},
		interestIDs: interestSet{},
		loadedAt:    now,
		expiresAt:   s.expiry(now),
		placeholder: true,
	}
}

// expiry returns the zero time (never) when the TTL is not positive.
func (s *Service) expiry(now time.Time) time.Time {
	if s.cfg.CacheTTL <= 0 {
		return time.Time{}
	}
	return now.Add(s.cfg.CacheTTL)
}

// CatalogInfo reports on the cached catalog without loading it.
func (s *Service) CatalogInfo() CatalogInfo {
	cat := s.current.Load()
	if cat == nil {
		return CatalogInfo{InterestLines: []int{}}
	}
	return CatalogInfo{
		Loaded:        true,
		Placeholder:   cat.placeholder,
		Stops:         len(cat.stops),
		Lines:         len(cat.lineMeta),
		InterestLines: cat.interestIDs.sorted(),
		LoadedAt:      cat.loadedAt,
		ExpiresAt:     cat.expiresAt,
	}
}

// CatalogLines returns the cached line metadata ordered by id.
func (s *Service) CatalogLines() []models.LineMeta {
	cat := s.current.Load()
	if cat == nil {
		return []models.LineMeta{}
	}
	lines := make([]models.LineMeta, 0, len(cat.lineMeta))
	for _, meta := range cat.lineMeta {
		lines = append(lines, meta)
	}
	sort.Slice(lines, func(i, j int) bool { return lines[i].ID < lines[j].ID })
	return lines
}
