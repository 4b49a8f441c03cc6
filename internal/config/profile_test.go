package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jengzang/expense-audit-go/internal/detection"
	"github.com/jengzang/expense-audit-go/internal/models"
)

const sampleProfile = `
taxi_high_value_threshold: 80
standard_fuel_tank_capacity: 60
min_suspicious_distance: 200
working_hours:
  start: 8.5
  end: 17.5
work_locations:
  U1:
    city: 北京市
    specific_location: 国贸写字楼
    lat: 39.9080
    lng: 116.4600
home_locations:
  U1:
    city: 北京市
    specific_location: 望京某小区
office_locations:
  上海市:
    city: 上海市
    specific_location: 浦东分部
city_coordinates:
  拉萨市:
    lat: 29.6520
    lng: 91.1721
`

func writeProfile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "profile.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadProfileAndApply(t *testing.T) {
	p, err := LoadProfile(writeProfile(t, sampleProfile))
	require.NoError(t, err)

	ctx := detection.NewEvalContext()
	p.Apply(ctx)

	// Overridden values.
	assert.Equal(t, 80.0, ctx.TaxiHighValueThreshold)
	assert.Equal(t, 60.0, ctx.FuelTankCapacityLiters)
	assert.Equal(t, 200.0, ctx.MinSuspiciousDistanceKm)
	assert.Equal(t, 8.5, ctx.WorkingHours.Start)
	assert.Equal(t, 17.5, ctx.WorkingHours.End)

	// Absent keys keep the defaults.
	assert.Equal(t, detection.DefaultFuelPricePerLiter, ctx.FuelPricePerLiter)
	assert.Equal(t, detection.DefaultMaxTravelSpeedKmh, ctx.MaxTravelSpeedKmh)

	work, ok := ctx.WorkLocation("U1")
	require.True(t, ok)
	assert.Equal(t, models.Location{City: "北京市", SpecificLocation: "国贸写字楼"}, work)

	home, ok := ctx.HomeLocation("U1")
	require.True(t, ok)
	assert.Equal(t, "望京某小区", home.SpecificLocation)

	office, ok := ctx.OfficeLocation("上海市")
	require.True(t, ok)
	assert.Equal(t, "浦东分部", office.SpecificLocation)

	// Work location coordinates were registered under the full address.
	coords, ok := ctx.Resolver.Resolve(work)
	require.True(t, ok)
	assert.Equal(t, 39.9080, coords.Lat)

	// City coordinates extend the built-in table.
	lhasa, ok := ctx.Resolver.Resolve(models.Location{City: "拉萨市"})
	require.True(t, ok)
	assert.Equal(t, 29.6520, lhasa.Lat)
}

func TestLoadProfileErrors(t *testing.T) {
	_, err := LoadProfile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = LoadProfile(writeProfile(t, "taxi_high_value_threshold: [not, a, number]"))
	assert.Error(t, err)
}

func TestEmptyProfileKeepsDefaults(t *testing.T) {
	p, err := LoadProfile(writeProfile(t, "{}"))
	require.NoError(t, err)

	ctx := detection.NewEvalContext()
	p.Apply(ctx)
	assert.Equal(t, detection.DefaultTaxiHighValueThreshold, ctx.TaxiHighValueThreshold)
	assert.Empty(t, ctx.DefaultWorkLocations)
}
