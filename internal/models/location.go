package models

import (
	"fmt"
	"strings"
)

// Location identifies where an event happened at city granularity, with an
// optional finer-grained address inside the city. Two locations are in the
// same city iff their City strings match exactly; the canonical form keeps
// the municipality suffix (e.g. 北京市), so no normalization is applied.
type Location struct {
	City             string `json:"city" db:"city"`
	SpecificLocation string `json:"specificLocation,omitempty" db:"specific_location"`
}

// NewLocation creates a validated location. An empty city is a construction
// error; the detection engine assumes it never sees one.
func NewLocation(city, specificLocation string) (Location, error) {
	l := Location{City: city, SpecificLocation: specificLocation}
	if err := l.Validate(); err != nil {
		return Location{}, err
	}
	return l, nil
}

// Validate checks the non-empty-city invariant.
func (l Location) Validate() error {
	if strings.TrimSpace(l.City) == "" {
		return fmt.Errorf("location city must not be empty")
	}
	return nil
}

// IsZero reports whether the location is unset (used for optional fields
// like a taxi's endpoints).
func (l Location) IsZero() bool {
	return l.City == "" && l.SpecificLocation == ""
}

// FullAddress returns the specific location appended to the city, or just
// the city when no finer-grained address is known.
func (l Location) FullAddress() string {
	if l.SpecificLocation == "" {
		return l.City
	}
	return l.City + l.SpecificLocation
}

// SameCity reports whether both locations are in the same municipality.
func (l Location) SameCity(other Location) bool {
	return l.City == other.City
}
