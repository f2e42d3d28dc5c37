// Package geo resolves free-text destinations to coordinates for the map
// panel. Lookup never fails outward: unknown destinations fall back to a
// model call, and any failure there degrades to a fixed default point.
package geo

import (
	"context"
	"strconv"
	"strings"
	"sync"

	"github.com/ringsaturn/tzf"

	"backend/ai"
	"backend/planner"
)

// Point is a WGS84 coordinate pair.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// DefaultPoint is the country-center fallback used when nothing else resolves.
var DefaultPoint = Point{Lat: 20.5937, Lng: 78.9629}

type tableEntry struct {
	key   string
	point Point
}

// Known place names, matched case-insensitively as substrings in table order.
var coordinateTable = []tableEntry{
	{"delhi", Point{28.6139, 77.2090}},
	{"mumbai", Point{19.0760, 72.8777}},
	{"bangalore", Point{12.9716, 77.5946}},
	{"chennai", Point{13.0827, 80.2707}},
	{"kolkata", Point{22.5726, 88.3639}},
	{"hyderabad", Point{17.3850, 78.4867}},
	{"pune", Point{18.5204, 73.8567}},
	{"ahmedabad", Point{23.0225, 72.5714}},
	{"jaipur", Point{26.9124, 75.7873}},
	{"goa", Point{15.2993, 74.1240}},
	{"kerala", Point{10.8505, 76.2711}},
	{"kashmir", Point{34.0837, 74.7973}},
	{"rajasthan", Point{27.0238, 74.2179}},
	{"uttarakhand", Point{30.0668, 79.0193}},
	{"himachal pradesh", Point{31.1048, 77.1734}},
	{"paris", Point{48.8566, 2.3522}},
	{"london", Point{51.5074, -0.1278}},
	{"new york", Point{40.7128, -74.0060}},
	{"tokyo", Point{35.6762, 139.6503}},
	{"bangkok", Point{13.7563, 100.5018}},
	{"dubai", Point{25.2048, 55.2708}},
	{"singapore", Point{1.3521, 103.8198}},
	{"malaysia", Point{4.2105, 101.9758}},
	{"indonesia", Point{-0.7893, 113.9213}},
	{"thailand", Point{15.8700, 100.9925}},
	{"nepal", Point{28.3949, 84.1240}},
	{"bhutan", Point{27.5142, 90.4336}},
	{"sri lanka", Point{7.8731, 80.7718}},
	{"maldives", Point{3.2028, 73.2207}},
}

// Locate resolves a destination to coordinates. Table matches are
// deterministic; otherwise one model completion is attempted in a strict
// "latitude,longitude" format, and any failure returns DefaultPoint.
func Locate(ctx context.Context, destination string, fallback ai.Completer) Point {
	lowered := strings.ToLower(destination)
	for _, entry := range coordinateTable {
		if strings.Contains(lowered, entry.key) {
			return entry.point
		}
	}

	if fallback == nil {
		return DefaultPoint
	}
	reply, err := fallback.Complete(ctx, planner.GeocodePrompt(destination))
	if err != nil {
		return DefaultPoint
	}
	if pt, ok := parsePoint(reply); ok {
		return pt
	}
	return DefaultPoint
}

// parsePoint accepts exactly two comma-separated numbers.
func parsePoint(s string) (Point, bool) {
	parts := strings.Split(strings.TrimSpace(s), ",")
	if len(parts) != 2 {
		return Point{}, false
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return Point{}, false
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return Point{}, false
	}
	if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return Point{}, false
	}
	return Point{Lat: lat, Lng: lng}, true
}

var (
	finderOnce sync.Once
	finder     tzf.F
)

// Timezone returns the IANA timezone name for a point, or "" when the
// timezone index is unavailable.
func Timezone(pt Point) string {
	finderOnce.Do(func() {
		f, err := tzf.NewDefaultFinder()
		if err == nil {
			finder = f
		}
	})
	if finder == nil {
		return ""
	}
	return finder.GetTimezoneName(pt.Lng, pt.Lat)
}

// MapAvailable reports whether the timezone/map index could be initialized.
// When false the map panel degrades to plain coordinates.
func MapAvailable() bool {
	return Timezone(DefaultPoint) != ""
}
