package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLineArrivalsFirstEta(t *testing.T) {
	_, ok := LineArrivals{}.FirstEta()
	assert.False(t, ok)

	_, ok = LineArrivals{Buses: []Bus{{BusID: 1}}}.FirstEta()
	assert.False(t, ok)

	eta, ok := LineArrivals{Buses: []Bus{{BusID: 1, EtaMinutes: IntPtr(3)}, {BusID: 2, EtaMinutes: IntPtr(1)}}}.FirstEta()
	require.True(t, ok)
	assert.Equal(t, 3, eta)
}

func TestArrivalsResultClone(t *testing.T) {
	original := ArrivalsResult{
		StopID: 42,
		Lines: []LineArrivals{
			{LineID: 3, LineName: StringPtr("3"), Buses: []Bus{{BusID: 1, EtaMinutes: IntPtr(4)}}},
			{LineID: 5},
		},
	}

	clone := original.Clone()
	clone.Lines[0].Buses[0].BusID = 99
	clone.Lines[0].LineID = 7

	assert.Equal(t, 1, original.Lines[0].Buses[0].BusID)
	assert.Equal(t, 3, original.Lines[0].LineID)
	assert.NotNil(t, clone.Lines[1].Buses)
}

func TestArrivalsResultJSON(t *testing.T) {
	result := ArrivalsResult{
		StopID: 42,
		Lines: []LineArrivals{{
			LineID:   3,
			LineName: StringPtr("3"),
			ColorHex: StringPtr("#C0910F"),
			Buses:    []Bus{{BusID: 301, EtaMinutes: IntPtr(5), DistanceMeters: IntPtr(900)}},
		}},
	}

	data, err := json.Marshal(result)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"stop_id": 42,
		"lines": [{
			"line_id": 3,
			"line_name": "3",
			"color_hex": "#C0910F",
			"buses": [{"bus_id": 301, "eta_minutes": 5, "distance_meters": 900, "status": null, "last_stop_id": null}]
		}]
	}`, string(data))
}

func TestHealthResponse(t *testing.T) {
	assert.Equal(t, HealthResponse{Status: "ok", Version: "1.0.0"}, NewHealthResponse("1.0.0"))
	assert.Equal(t, "0.0.0", NewHealthResponse("").Version)
}

func TestLineMetaJSONHidesNormalizedName(t *testing.T) {
	data, err := json.Marshal(LineMeta{ID: 3, Name: "3A", NormalizedName: "3a"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":3,"name":"3A"}`, string(data))
}
