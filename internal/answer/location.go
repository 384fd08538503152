package answer

// #region imports
import (
	"fmt"
	"strconv"
	"strings"
)

// #endregion

// #region location-class

// LocationClass is the interpretation of a stored location answer.
type LocationClass int

const (
	// LocationFreeform carries no enrichment trigger.
	LocationFreeform LocationClass = iota
	// LocationPolygonID is an opaque gateway polygon identifier.
	LocationPolygonID
	// LocationCoordinates is a lat,lon pair.
	LocationCoordinates
)

// Coordinates is a parsed lat,lon location answer.
type Coordinates struct {
	Lat float64
	Lon float64
}

// #endregion location-class

// #region classify

// ClassifyLocation interprets a location answer. A comma-free string of
// six or more characters is treated as a polygon identifier (this can
// misclassify free text; the heuristic is kept as-is on purpose). A string
// with a comma must split into exactly two parseable floats; a non-nil
// error means the coordinate attempt failed and the caller should log and
// move on. Everything else is freeform.
func ClassifyLocation(loc string) (LocationClass, Coordinates, error) {
	if !strings.Contains(loc, ",") {
		if len(loc) >= 6 {
			return LocationPolygonID, Coordinates{}, nil
		}
		return LocationFreeform, Coordinates{}, nil
	}

	parts := strings.Split(loc, ",")
	if len(parts) != 2 {
		return LocationFreeform, Coordinates{}, fmt.Errorf("location %q: want lat,lon, got %d parts", loc, len(parts))
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return LocationFreeform, Coordinates{}, fmt.Errorf("location %q: parse lat: %w", loc, err)
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return LocationFreeform, Coordinates{}, fmt.Errorf("location %q: parse lon: %w", loc, err)
	}
	return LocationCoordinates, Coordinates{Lat: lat, Lon: lon}, nil
}

// #endregion classify
