package detection

import (
	"github.com/jengzang/expense-audit-go/internal/models"
	"github.com/jengzang/expense-audit-go/internal/spatial"
	"github.com/jengzang/expense-audit-go/internal/temporal"
)

// WorkingHours bounds the working day in local wall-clock hours.
type WorkingHours struct {
	Start float64 `json:"start" yaml:"start"`
	End   float64 `json:"end" yaml:"end"`
}

// Default threshold values, matching the documented rule defaults.
const (
	DefaultTaxiHighValueThreshold   = 50.0  // yuan
	DefaultFuelTankCapacityLiters   = 100.0 // liters
	DefaultFuelPricePerLiter        = 7.5   // yuan per liter
	DefaultMaxTravelSpeedKmh        = 200.0 // conservative high-speed-rail ceiling
	DefaultMinTravelHours           = 1.0   // boarding/transfer overhead
	DefaultMinSuspiciousDistanceKm  = 150.0
	DefaultMinSuspiciousStayNights  = 1.0
	DefaultCommuteMatchDistanceKm   = 1.0
	DefaultIntercityJustifyWindowHr = 24.0
)

// EvalContext is the read-only configuration snapshot handed to every detect
// and format call. It lives for exactly one evaluation batch; rules must not
// mutate it. Lookups follow get-with-default semantics: a missing entry
// falls back, it never errors.
type EvalContext struct {
	// Default location tables.
	DefaultOfficeLocations map[string]models.Location // city -> office
	DefaultWorkLocations   map[string]models.Location // user id -> workplace
	DefaultHomeLocations   map[string]models.Location // user id -> home

	WorkingHours WorkingHours

	// Rule thresholds.
	TaxiHighValueThreshold   float64
	FuelTankCapacityLiters   float64
	FuelPricePerLiter        float64
	MaxTravelSpeedKmh        float64
	MinTravelHours           float64
	MinSuspiciousDistanceKm  float64
	MinSuspiciousStayNights  float64
	CommuteMatchDistanceKm   float64
	IntercityJustifyWindowHr float64

	// Resolver turns locations into coordinates for distance queries.
	Resolver *spatial.Resolver
}

// NewEvalContext creates a context populated with documented defaults and a
// resolver seeded with the built-in city table.
func NewEvalContext() *EvalContext {
	return &EvalContext{
		DefaultOfficeLocations:   make(map[string]models.Location),
		DefaultWorkLocations:     make(map[string]models.Location),
		DefaultHomeLocations:     make(map[string]models.Location),
		WorkingHours:             WorkingHours{Start: temporal.DefaultWorkStartHour, End: temporal.DefaultWorkEndHour},
		TaxiHighValueThreshold:   DefaultTaxiHighValueThreshold,
		FuelTankCapacityLiters:   DefaultFuelTankCapacityLiters,
		FuelPricePerLiter:        DefaultFuelPricePerLiter,
		MaxTravelSpeedKmh:        DefaultMaxTravelSpeedKmh,
		MinTravelHours:           DefaultMinTravelHours,
		MinSuspiciousDistanceKm:  DefaultMinSuspiciousDistanceKm,
		MinSuspiciousStayNights:  DefaultMinSuspiciousStayNights,
		CommuteMatchDistanceKm:   DefaultCommuteMatchDistanceKm,
		IntercityJustifyWindowHr: DefaultIntercityJustifyWindowHr,
		Resolver:                 spatial.NewResolver(),
	}
}

// WorkLocation looks up a user's default workplace.
func (c *EvalContext) WorkLocation(userID string) (models.Location, bool) {
	loc, ok := c.DefaultWorkLocations[userID]
	return loc, ok
}

// HomeLocation looks up a user's default home.
func (c *EvalContext) HomeLocation(userID string) (models.Location, bool) {
	loc, ok := c.DefaultHomeLocations[userID]
	return loc, ok
}

// OfficeLocation looks up the company office in a city.
func (c *EvalContext) OfficeLocation(city string) (models.Location, bool) {
	loc, ok := c.DefaultOfficeLocations[city]
	return loc, ok
}
