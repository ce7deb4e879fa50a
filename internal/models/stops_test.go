package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStopCreation(t *testing.T) {
	stop := NewStop(42, "Praza de Pontevedra", 43.3623, -8.4115, []int{3, 14})

	assert.Equal(t, 42, stop.ID)
	assert.Equal(t, "Praza de Pontevedra", stop.Name)
	assert.Equal(t, 43.3623, stop.Latitude)
	assert.Equal(t, -8.4115, stop.Longitude)
	assert.Equal(t, []int{3, 14}, stop.Lines)
}

func TestStopWithNilLines(t *testing.T) {
	stop := NewStop(1, "", 0, 0, nil)
	require.NotNil(t, stop.Lines)

	data, err := json.Marshal(stop)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":1,"name":"","latitude":0,"longitude":0,"lines":[]}`, string(data))
}

func TestStopJSON(t *testing.T) {
	stop := NewStop(7, "Abente y Lago", 43.37, -8.39, []int{12})

	data, err := json.Marshal(stop)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":7,"name":"Abente y Lago","latitude":43.37,"longitude":-8.39,"lines":[12]}`, string(data))
}

func TestStopWithLinesDoesNotAlias(t *testing.T) {
	original := NewStop(1, "A", 0, 0, []int{1, 2, 3})
	lines := []int{2}

	filtered := original.WithLines(lines)
	lines[0] = 99
	filtered.Lines = append(filtered.Lines, 5)

	assert.Equal(t, []int{1, 2, 3}, original.Lines)
	assert.Equal(t, []int{2, 5}, filtered.Lines)

	clone := original.Clone()
	clone.Lines[0] = 100
	assert.Equal(t, 1, original.Lines[0])
}

func TestStopSearchResponse(t *testing.T) {
	resp := NewStopSearchResponse([]Stop{NewStop(1, "A", 0, 0, nil), NewStop(2, "B", 0, 0, nil)})
	assert.Equal(t, 2, resp.Total)

	empty := NewStopSearchResponse(nil)
	data, err := json.Marshal(empty)
	require.NoError(t, err)
	assert.JSONEq(t, `{"total":0,"stops":[]}`, string(data))
}
