package entity

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Waypoint is a named, geolocated point of interest a caravan can route
// through. Identity is the (Name, Location) pair: two waypoints are the same
// entity iff both fields match.
type Waypoint struct {
	Name     string
	Location string // decimal "lat,long", e.g. "37.7,-122.4"
}

// LatLng is a parsed decimal coordinate pair.
type LatLng struct {
	Lat float64
	Lng float64
}

// LatLng parses the waypoint's Location field. Catalog construction
// validates locations up front, so downstream callers only see an error for
// waypoints built outside the catalog.
func (w Waypoint) LatLng() (LatLng, error) {
	return ParseLatLng(w.Location)
}

// MapsLink returns a Google Maps link pointing at the waypoint.
func (w Waypoint) MapsLink() string {
	return "https://maps.google.com/?q=" + url.QueryEscape(w.Location)
}

// IsZero reports whether the waypoint carries no identity.
func (w Waypoint) IsZero() bool {
	return w.Name == "" && w.Location == ""
}

// ParseLatLng parses a "lat,long" pair in decimal degrees.
func ParseLatLng(location string) (LatLng, error) {
	parts := strings.Split(location, ",")
	if len(parts) != 2 {
		return LatLng{}, fmt.Errorf("invalid location %q: want \"lat,long\"", location)
	}

	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return LatLng{}, fmt.Errorf("invalid latitude in %q: %w", location, err)
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return LatLng{}, fmt.Errorf("invalid longitude in %q: %w", location, err)
	}

	if lat < -90 || lat > 90 {
		return LatLng{}, fmt.Errorf("latitude %v out of range in %q", lat, location)
	}
	if lng < -180 || lng > 180 {
		return LatLng{}, fmt.Errorf("longitude %v out of range in %q", lng, location)
	}

	return LatLng{Lat: lat, Lng: lng}, nil
}

// FuzzyWaypoint pairs a waypoint with the confidence that it is what the
// user meant by one fuzzy query. Certainty is in [0.0, 1.0].
type FuzzyWaypoint struct {
	Waypoint  Waypoint
	Certainty float64
}
