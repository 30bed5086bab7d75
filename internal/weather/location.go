package weather

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ParseLocationString splits a ";"-delimited list into canonical "<lat>,<lon>"
// strings. Parts that are not valid coordinate pairs (place names, zip codes,
// out-of-range values) are dropped; order and duplicates are kept.
func ParseLocationString(input string) []string {
	locations := []string{}
	if input == "" {
		return locations
	}

	for _, part := range strings.Split(input, ";") {
		coord, err := ParseCoordinate(part)
		if err != nil {
			continue
		}
		locations = append(locations, coord.String())
	}
	return locations
}

// ParseCoordinate parses a single "lat,lon" string.
func ParseCoordinate(s string) (CoordinateQuery, error) {
	trimmed := strings.TrimSpace(s)
	latStr, lonStr, ok := strings.Cut(trimmed, ",")
	if !ok {
		return CoordinateQuery{}, fmt.Errorf("%w: %q is not a lat,lon pair", ErrInvalidLocationFormat, trimmed)
	}
	latStr = strings.TrimSpace(latStr)
	lonStr = strings.TrimSpace(lonStr)

	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		return CoordinateQuery{}, fmt.Errorf("%w: latitude %q is not a number", ErrInvalidLocationFormat, latStr)
	}
	lon, err := strconv.ParseFloat(lonStr, 64)
	if err != nil {
		return CoordinateQuery{}, fmt.Errorf("%w: longitude %q is not a number", ErrInvalidLocationFormat, lonStr)
	}

	q := CoordinateQuery{Latitude: lat, Longitude: lon, text: latStr + "," + lonStr}
	if err := validate.Struct(q); err != nil {
		return CoordinateQuery{}, fmt.Errorf("%w: %q is out of range", ErrInvalidLocationFormat, q.text)
	}
	return q, nil
}

// LocationKey returns the canonical key of a "lat,lon" string, or s unchanged
// when it is not a valid pair.
func LocationKey(s string) string {
	coord, err := ParseCoordinate(s)
	if err != nil {
		return s
	}
	return coord.Key()
}
