package transit

import (
	"context"
	"log/slog"
	"math"
	"sort"
	"strconv"
	"strings"

	"paradas.buscoruna.org/internal/appconf"
	"paradas.buscoruna.org/internal/logging"
	"paradas.buscoruna.org/internal/metrics"
	"paradas.buscoruna.org/internal/models"
	"paradas.buscoruna.org/internal/upstream"
)

// GetArrivals fetches the live arrivals for a stop, keeps only interesting
// lines, and orders buses and lines by ETA. It does not check that the stop
// exists in the catalog. Concurrent calls for the same stop share one fetch.
func (s *Service) GetArrivals(ctx context.Context, stopID int) (models.ArrivalsResult, error) {
	cat := s.current.Load()
	if cat == nil || len(cat.lineMeta) == 0 {
		var err error
		if cat, err = s.loadCatalog(ctx, false); err != nil {
			return models.ArrivalsResult{}, err
		}
	}

	key := strconv.Itoa(stopID)
	// The shared fetch must outlive any single caller; the client timeout bounds it.
	shared := context.WithoutCancel(ctx)
	v, err, coalesced := s.arrivals.Do(key, func() (any, error) {
		return s.fetchArrivals(shared, stopID, cat)
	})
	if err != nil {
		return models.ArrivalsResult{}, err
	}

	if coalesced {
		logging.FromContext(ctx).Debug("arrivals fetch shared", slog.Int("stop_id", stopID))
	}
	return v.(models.ArrivalsResult).Clone(), nil
}

func (s *Service) arrivalsURL(stopID int) string {
	return strings.ReplaceAll(s.cfg.ArrivalsURLTemplate, appconf.StopIDPlaceholder, strconv.Itoa(stopID))
}

func (s *Service) fetchArrivals(ctx context.Context, stopID int, cat *catalog) (models.ArrivalsResult, error) {
	payload, err := s.fetcher.FetchObject(upstream.WithEndpoint(ctx, metrics.EndpointArrivals), s.arrivalsURL(stopID))
	if err != nil {
		return models.ArrivalsResult{}, err
	}
	return models.ArrivalsResult{
		StopID: stopID,
		Lines:  s.normalizeArrivals(decodeArrivals(payload), cat),
	}, nil
}

func (s *Service) normalizeArrivals(raw []rawArrivalLine, cat *catalog) []models.LineArrivals {
	lines := make([]models.LineArrivals, 0, len(raw))
	for _, item := range raw {
		meta, known := cat.lineMeta[item.lineID]
		if !s.isInterestLine(item.lineID, meta, known, cat) {
			continue
		}

		line := models.LineArrivals{LineID: item.lineID, Buses: item.buses}
		if known {
			name := meta.Name
			line.LineName = &name
			line.ColorHex = meta.ColorHex
		}
		sortBusesByEta(line.Buses)
		lines = append(lines, line)
	}

	sort.SliceStable(lines, func(i, j int) bool {
		return firstEtaKey(lines[i]) < firstEtaKey(lines[j])
	})
	return lines
}

// isInterestLine passes every line when no interest lines are configured.
func (s *Service) isInterestLine(lineID int, meta models.LineMeta, known bool, cat *catalog) bool {
	if len(s.interestNames) == 0 {
		return true
	}
	if cat.interestIDs.has(lineID) {
		return true
	}
	if _, ok := s.interestNames[strconv.Itoa(lineID)]; ok {
		return true
	}
	if known {
		if _, ok := s.interestNames[meta.NormalizedName]; ok {
			return true
		}
	}
	return false
}

// Missing ETAs sort after every real one.
func etaKey(eta *int) int {
	if eta == nil {
		return math.MaxInt
	}
	return *eta
}

func sortBusesByEta(buses []models.Bus) {
	sort.SliceStable(buses, func(i, j int) bool {
		return etaKey(buses[i].EtaMinutes) < etaKey(buses[j].EtaMinutes)
	})
}

func firstEtaKey(line models.LineArrivals) int {
	if eta, ok := line.FirstEta(); ok {
		return eta
	}
	return math.MaxInt
}
