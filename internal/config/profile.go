package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/jengzang/expense-audit-go/internal/detection"
	"github.com/jengzang/expense-audit-go/internal/models"
	"github.com/jengzang/expense-audit-go/internal/spatial"
)

// ProfileLocation is a location entry in the YAML profile, with optional
// coordinates registered into the geocode resolver.
type ProfileLocation struct {
	City             string   `yaml:"city"`
	SpecificLocation string   `yaml:"specific_location"`
	Lat              *float64 `yaml:"lat"`
	Lng              *float64 `yaml:"lng"`
}

// Profile is the optional YAML context profile. Every field is a pointer or
// map so absent keys keep the engine defaults.
type Profile struct {
	WorkingHours *detection.WorkingHours `yaml:"working_hours"`

	TaxiHighValueThreshold  *float64 `yaml:"taxi_high_value_threshold"`
	FuelTankCapacityLiters  *float64 `yaml:"standard_fuel_tank_capacity"`
	FuelPricePerLiter       *float64 `yaml:"fuel_price_per_liter"`
	MaxTravelSpeedKmh       *float64 `yaml:"max_travel_speed_kmh"`
	MinTravelHours          *float64 `yaml:"min_travel_hours"`
	MinSuspiciousDistanceKm *float64 `yaml:"min_suspicious_distance"`
	MinSuspiciousStayNights *float64 `yaml:"min_suspicious_stay_nights"`

	OfficeLocations map[string]ProfileLocation `yaml:"office_locations"` // keyed by city
	WorkLocations   map[string]ProfileLocation `yaml:"work_locations"`   // keyed by user id
	HomeLocations   map[string]ProfileLocation `yaml:"home_locations"`   // keyed by user id

	CityCoordinates map[string]spatial.Coordinates `yaml:"city_coordinates"`
}

// LoadProfile reads a YAML context profile from disk.
func LoadProfile(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read context profile: %w", err)
	}
	var p Profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to parse context profile: %w", err)
	}
	return &p, nil
}

// Apply overlays the profile onto an evaluation context. Absent keys leave
// the context untouched, preserving get-with-default semantics.
func (p *Profile) Apply(ctx *detection.EvalContext) {
	if p.WorkingHours != nil {
		ctx.WorkingHours = *p.WorkingHours
	}
	if p.TaxiHighValueThreshold != nil {
		ctx.TaxiHighValueThreshold = *p.TaxiHighValueThreshold
	}
	if p.FuelTankCapacityLiters != nil {
		ctx.FuelTankCapacityLiters = *p.FuelTankCapacityLiters
	}
	if p.FuelPricePerLiter != nil {
		ctx.FuelPricePerLiter = *p.FuelPricePerLiter
	}
	if p.MaxTravelSpeedKmh != nil {
		ctx.MaxTravelSpeedKmh = *p.MaxTravelSpeedKmh
	}
	if p.MinTravelHours != nil {
		ctx.MinTravelHours = *p.MinTravelHours
	}
	if p.MinSuspiciousDistanceKm != nil {
		ctx.MinSuspiciousDistanceKm = *p.MinSuspiciousDistanceKm
	}
	if p.MinSuspiciousStayNights != nil {
		ctx.MinSuspiciousStayNights = *p.MinSuspiciousStayNights
	}

	for city, loc := range p.OfficeLocations {
		ctx.DefaultOfficeLocations[city] = p.register(ctx, loc)
	}
	for userID, loc := range p.WorkLocations {
		ctx.DefaultWorkLocations[userID] = p.register(ctx, loc)
	}
	for userID, loc := range p.HomeLocations {
		ctx.DefaultHomeLocations[userID] = p.register(ctx, loc)
	}
	for city, coords := range p.CityCoordinates {
		ctx.Resolver.Add(city, coords)
	}
}

// register converts a profile location and, when it carries coordinates,
// adds them to the resolver under the full address.
func (p *Profile) register(ctx *detection.EvalContext, loc ProfileLocation) models.Location {
	l := models.Location{City: loc.City, SpecificLocation: loc.SpecificLocation}
	if loc.Lat != nil && loc.Lng != nil {
		ctx.Resolver.Add(l.FullAddress(), spatial.Coordinates{Lat: *loc.Lat, Lng: *loc.Lng})
	}
	return l
}
