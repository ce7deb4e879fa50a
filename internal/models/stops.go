package models

// Stop is a bus stop from the upstream catalog. Lines holds line ids in the
// order the catalog lists them.
type Stop struct {
	ID        int     `json:"id"`
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Lines     []int   `json:"lines"`
}

func NewStop(id int, name string, lat, lon float64, lines []int) Stop {
	if lines == nil {
		lines = []int{}
	}
	return Stop{
		ID:        id,
		Name:      name,
		Latitude:  lat,
		Longitude: lon,
		Lines:     lines,
	}
}

// WithLines returns a copy of the stop carrying the given lines. The receiver
// is left untouched so cached stops are never aliased by filtered views.
func (s Stop) WithLines(lines []int) Stop {
	out := s
	out.Lines = make([]int, len(lines))
	copy(out.Lines, lines)
	return out
}

// Clone returns a deep copy of the stop.
func (s Stop) Clone() Stop {
	return s.WithLines(s.Lines)
}

type StopSearchResponse struct {
	Total int    `json:"total"`
	Stops []Stop `json:"stops"`
}

func NewStopSearchResponse(stops []Stop) StopSearchResponse {
	if stops == nil {
		stops = []Stop{}
	}
	return StopSearchResponse{Total: len(stops), Stops: stops}
}
