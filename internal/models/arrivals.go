package models

// Bus is one vehicle approaching a stop. Numeric fields are nil when the
// upstream sent a placeholder instead of a number.
type Bus struct {
	BusID          int  `json:"bus_id"`
	EtaMinutes     *int `json:"eta_minutes"`
	DistanceMeters *int `json:"distance_meters"`
	Status         *int `json:"status"`
	LastStopID     *int `json:"last_stop_id"`
}

type LineArrivals struct {
	LineID   int     `json:"line_id"`
	LineName *string `json:"line_name"`
	ColorHex *string `json:"color_hex"`
	Buses    []Bus   `json:"buses"`
}

// FirstEta returns the ETA of the soonest bus, if any.
func (l LineArrivals) FirstEta() (int, bool) {
	if len(l.Buses) == 0 || l.Buses[0].EtaMinutes == nil {
		return 0, false
	}
	return *l.Buses[0].EtaMinutes, true
}

type ArrivalsResult struct {
	StopID int            `json:"stop_id"`
	Lines  []LineArrivals `json:"lines"`
}

// Clone returns a deep copy so callers sharing one upstream fetch never share slices.
func (a ArrivalsResult) Clone() ArrivalsResult {
	out := ArrivalsResult{StopID: a.StopID, Lines: make([]LineArrivals, len(a.Lines))}
	for i, line := range a.Lines {
		line.Buses = append([]Bus(nil), line.Buses...)
		if line.Buses == nil {
			line.Buses = []Bus{}
		}
		out.Lines[i] = line
	}
	return out
}
