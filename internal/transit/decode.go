package transit

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"paradas.buscoruna.org/internal/models"
)

// ErrMalformedCatalog is returned when the stop catalog contains a stop whose
// id cannot be read. Stops have no safe default id, so the whole catalog is rejected.
var ErrMalformedCatalog = errors.New("malformed stop catalog")

// The upstream payloads are loosely typed: numbers arrive as JSON numbers or
// strings, and missing values are sometimes placeholder tokens like "----".
// Every accessor below treats a field as optional and reports absence instead
// of failing.

func asInt(v any) (int, bool) {
	switch t := v.(type) {
	case json.Number:
		if i, err := strconv.Atoi(t.String()); err == nil {
			return i, true
		}
		f, err := t.Float64()
		if err != nil {
			return 0, false
		}
		return floatToInt(f)
	case float64:
		return floatToInt(t)
	case int:
		return t, true
	case int64:
		return int(t), true
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(t))
		if err != nil {
			return 0, false
		}
		return i, true
	default:
		return 0, false
	}
}

// floatToInt truncates toward zero.
func floatToInt(f float64) (int, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f > math.MaxInt64 || f < math.MinInt64 {
		return 0, false
	}
	return int(f), true
}

func asFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	case float64:
		return t, true
	case int:
		return float64(t), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func asString(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case json.Number:
		return t.String(), true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case int:
		return strconv.Itoa(t), true
	default:
		return "", false
	}
}

func asObject(v any) map[string]any {
	obj, _ := v.(map[string]any)
	return obj
}

func asSlice(v any) []any {
	s, _ := v.([]any)
	return s
}

// path walks nested objects, returning nil as soon as a key is missing.
func path(obj map[string]any, keys ...string) any {
	var cur any = obj
	for _, key := range keys {
		m := asObject(cur)
		if m == nil {
			return nil
		}
		cur = m[key]
	}
	return cur
}

// rawLine is a line entry of the catalog before interest matching.
type rawLine struct {
	id    int
	name  string
	color *string
}

// decodeCatalog extracts stops and lines from iTranvias.actualizacion.
func decodeCatalog(payload map[string]any, placeholderPrefix string) ([]models.Stop, []rawLine, error) {
	update := asObject(path(payload, "iTranvias", "actualizacion"))

	rawStops := asSlice(update["paradas"])
	stops := make([]models.Stop, 0, len(rawStops))
	for i, item := range rawStops {
		stop, err := mapStop(asObject(item), placeholderPrefix)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: paradas[%d]: %v", ErrMalformedCatalog, i, err)
		}
		stops = append(stops, stop)
	}

	return stops, decodeLines(asSlice(update["lineas"])), nil
}

func mapStop(raw map[string]any, placeholderPrefix string) (models.Stop, error) {
	id, ok := asInt(raw["id"])
	if !ok {
		return models.Stop{}, fmt.Errorf("stop id %v is not an integer", raw["id"])
	}

	name, ok := asString(raw["nombre"])
	if !ok {
		name = placeholderName(placeholderPrefix, id)
	}

	lat, _ := asFloat(raw["posy"])
	lon, _ := asFloat(raw["posx"])

	links := asSlice(raw["enlaces"])
	lines := make([]int, 0, len(links))
	for _, link := range links {
		if lineID, ok := asInt(link); ok {
			lines = append(lines, lineID)
		}
	}

	return models.NewStop(id, name, lat, lon, lines), nil
}

func decodeLines(raw []any) []rawLine {
	lines := make([]rawLine, 0, len(raw))
	for _, item := range raw {
		obj := asObject(item)
		id, ok := asInt(obj["id"])
		if !ok {
			continue
		}

		name, _ := asString(obj["lin_comer"])
		name = strings.TrimSpace(name)
		if name == "" {
			name = strconv.Itoa(id)
		}

		lines = append(lines, rawLine{id: id, name: name, color: normalizeColor(obj["color"])})
	}
	return lines
}

// normalizeColor turns "C0910F" or "910F" into "#C0910F" / "#00910F".
// Values already starting with '#' are kept as they are.
func normalizeColor(v any) *string {
	color, ok := asString(v)
	if !ok || color == "" {
		return nil
	}
	if !strings.HasPrefix(color, "#") {
		if len(color) < 6 {
			color = strings.Repeat("0", 6-len(color)) + color
		}
		color = "#" + color
	}
	return &color
}

// rawArrivalLine is one entry of buses.lineas.
type rawArrivalLine struct {
	lineID int
	buses  []models.Bus
}

func decodeArrivals(payload map[string]any) []rawArrivalLine {
	rawLines := asSlice(path(payload, "buses", "lineas"))
	lines := make([]rawArrivalLine, 0, len(rawLines))
	for _, item := range rawLines {
		obj := asObject(item)
		lineID, ok := asInt(obj["linea"])
		if !ok {
			continue
		}

		rawBuses := asSlice(obj["buses"])
		buses := make([]models.Bus, 0, len(rawBuses))
		for _, b := range rawBuses {
			if bus, ok := decodeBus(asObject(b)); ok {
				buses = append(buses, bus)
			}
		}
		lines = append(lines, rawArrivalLine{lineID: lineID, buses: buses})
	}
	return lines
}

func decodeBus(raw map[string]any) (models.Bus, bool) {
	busID, ok := asInt(raw["bus"])
	if !ok {
		return models.Bus{}, false
	}
	return models.Bus{
		BusID:          busID,
		EtaMinutes:     optionalInt(raw["tiempo"]),
		DistanceMeters: optionalInt(raw["distancia"]),
		Status:         optionalInt(raw["estado"]),
		LastStopID:     optionalInt(raw["ult_parada"]),
	}, true
}

func optionalInt(v any) *int {
	if i, ok := asInt(v); ok {
		return &i
	}
	return nil
}

func placeholderName(prefix string, id int) string {
	return fmt.Sprintf("%s %d", prefix, id)
}
