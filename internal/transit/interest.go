package transit

import (
	"sort"
	"strconv"
	"strings"

	"paradas.buscoruna.org/internal/models"
)

// interestSet is the set of line ids the operator cares about.
type interestSet map[int]struct{}

func (s interestSet) has(id int) bool {
	_, ok := s[id]
	return ok
}

func (s interestSet) sorted() []int {
	ids := make([]int, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// parseLineMeta builds the line metadata and the matching interest set from a
// single catalog fetch. A line is interesting when its lower-cased commercial
// name or its id matches one of names (already lower-cased).
func parseLineMeta(lines []rawLine, names map[string]struct{}) (map[int]models.LineMeta, interestSet) {
	meta := make(map[int]models.LineMeta, len(lines))
	interest := make(interestSet)

	for _, line := range lines {
		normalized := strings.ToLower(line.name)
		meta[line.id] = models.LineMeta{
			ID:             line.id,
			Name:           line.name,
			NormalizedName: normalized,
			ColorHex:       line.color,
		}

		_, byName := names[normalized]
		_, byID := names[strconv.Itoa(line.id)]
		if byName || byID {
			interest[line.id] = struct{}{}
		}
	}

	return meta, interest
}

// applyInterestToStop returns a copy of stop whose lines are restricted to the
// interest set. With an empty set every line is kept.
func applyInterestToStop(stop models.Stop, interest interestSet) models.Stop {
	if len(interest) == 0 {
		return stop.Clone()
	}

	lines := make([]int, 0, len(stop.Lines))
	for _, id := range stop.Lines {
		if interest.has(id) {
			lines = append(lines, id)
		}
	}
	return stop.WithLines(lines)
}

// filterInterestStops returns filtered copies of the stops that serve at least
// one interesting line, sorted by name. With an empty set all stops are returned.
func filterInterestStops(stops []models.Stop, interest interestSet) []models.Stop {
	filtered := make([]models.Stop, 0, len(stops))
	for _, stop := range stops {
		view := applyInterestToStop(stop, interest)
		if len(interest) > 0 && len(view.Lines) == 0 {
			continue
		}
		filtered = append(filtered, view)
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].Name < filtered[j].Name
	})
	return filtered
}
