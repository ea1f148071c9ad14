package clean

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"
	"github.com/twpayne/go-geom/xy"

	"urbandata/internal/tabular"
)

var (
	latLonPattern  = regexp.MustCompile(`^\s*(-?[0-9.]+)\s*,\s*(-?[0-9.]+)\s*$`)
	firstPairRegex = regexp.MustCompile(`\[\s*(-?[0-9.]+)\s*,\s*(-?[0-9.]+)\s*\]`)
)

// parsePoint reads the portal's geo_point_2d form "lat, lon".
func parsePoint(s string) (lon, lat float64, ok bool) {
	m := latLonPattern.FindStringSubmatch(s)
	if m == nil {
		return 0, 0, false
	}
	lat, okLat := tabular.ParseNumber(m[1])
	lon, okLon := tabular.ParseNumber(m[2])
	if !okLat || !okLon {
		return 0, 0, false
	}
	return lon, lat, true
}

// shapeCentroid returns the centroid of a GeoJSON geometry or feature. Exports
// sometimes double their quotes, so `""` is collapsed before a second try.
// When the JSON cannot be decoded the first coordinate pair found is used.
func shapeCentroid(s string) (lon, lat float64, ok bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, 0, false
	}
	for _, candidate := range []string{s, strings.ReplaceAll(s, `""`, `"`)} {
		g, err := decodeGeometry([]byte(candidate))
		if err != nil || g == nil {
			continue
		}
		c, err := xy.Centroid(g)
		if err != nil || len(c) < 2 {
			continue
		}
		return c[0], c[1], true
	}
	if m := firstPairRegex.FindStringSubmatch(s); m != nil {
		lon, okLon := tabular.ParseNumber(m[1])
		lat, okLat := tabular.ParseNumber(m[2])
		if okLon && okLat {
			return lon, lat, true
		}
	}
	return 0, 0, false
}

func decodeGeometry(data []byte) (geom.T, error) {
	var probe struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, err
	}
	if probe.Type == "Feature" {
		var f geojson.Feature
		if err := json.Unmarshal(data, &f); err != nil {
			return nil, err
		}
		return f.Geometry, nil
	}
	var g geom.T
	if err := geojson.Unmarshal(data, &g); err != nil {
		return nil, err
	}
	return g, nil
}

// coordinates resolves lon/lat cells from a point column, falling back to
// the centroid of a shape column. Both cells are empty when neither parses.
func coordinates(point, shape string) (lonCell, latCell string) {
	lon, lat, ok := parsePoint(point)
	if !ok {
		lon, lat, ok = shapeCentroid(shape)
	}
	if !ok {
		return "", ""
	}
	return tabular.FormatFloat(lon), tabular.FormatFloat(lat)
}
