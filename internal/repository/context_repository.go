package repository

import (
	"database/sql"
	"fmt"

	"github.com/jengzang/expense-audit-go/internal/models"
	"github.com/jengzang/expense-audit-go/internal/spatial"
)

// User location kinds
const (
	LocationKindWork = "work"
	LocationKindHome = "home"
)

// ContextRepository loads the lookup tables backing the evaluation context:
// city geocodes and per-user default locations.
type ContextRepository struct {
	db *sql.DB
}

// NewContextRepository creates a new context repository
func NewContextRepository(db *sql.DB) *ContextRepository {
	return &ContextRepository{db: db}
}

// LoadCityGeocodes returns all stored city coordinates.
func (r *ContextRepository) LoadCityGeocodes() (map[string]spatial.Coordinates, error) {
	rows, err := r.db.Query("SELECT city, lat, lng FROM city_geocodes")
	if err != nil {
		return nil, fmt.Errorf("failed to query city geocodes: %w", err)
	}
	defer rows.Close()

	geocodes := make(map[string]spatial.Coordinates)
	for rows.Next() {
		var city string
		var c spatial.Coordinates
		if err := rows.Scan(&city, &c.Lat, &c.Lng); err != nil {
			return nil, fmt.Errorf("failed to scan geocode: %w", err)
		}
		geocodes[city] = c
	}
	return geocodes, rows.Err()
}

// UpsertCityGeocode stores coordinates for a city.
func (r *ContextRepository) UpsertCityGeocode(city string, c spatial.Coordinates) error {
	_, err := r.db.Exec(`
		INSERT INTO city_geocodes (city, lat, lng) VALUES (?, ?, ?)
		ON CONFLICT(city) DO UPDATE SET lat = excluded.lat, lng = excluded.lng
	`, city, c.Lat, c.Lng)
	if err != nil {
		return fmt.Errorf("failed to upsert geocode for %s: %w", city, err)
	}
	return nil
}

// UserLocationRow is one stored default location with optional coordinates.
type UserLocationRow struct {
	UserID   string
	Location models.Location
	Coords   *spatial.Coordinates
}

// LoadUserLocations returns all default locations of one kind.
func (r *ContextRepository) LoadUserLocations(kind string) ([]UserLocationRow, error) {
	rows, err := r.db.Query(`
		SELECT user_id, city, specific_location, lat, lng
		FROM user_locations
		WHERE kind = ?
	`, kind)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s locations: %w", kind, err)
	}
	defer rows.Close()

	var result []UserLocationRow
	for rows.Next() {
		var row UserLocationRow
		var lat, lng sql.NullFloat64
		if err := rows.Scan(&row.UserID, &row.Location.City, &row.Location.SpecificLocation, &lat, &lng); err != nil {
			return nil, fmt.Errorf("failed to scan %s location: %w", kind, err)
		}
		if lat.Valid && lng.Valid {
			row.Coords = &spatial.Coordinates{Lat: lat.Float64, Lng: lng.Float64}
		}
		result = append(result, row)
	}
	return result, rows.Err()
}

// UpsertUserLocation stores a user's default work or home location.
func (r *ContextRepository) UpsertUserLocation(userID, kind string, loc models.Location, coords *spatial.Coordinates) error {
	var lat, lng interface{}
	if coords != nil {
		lat, lng = coords.Lat, coords.Lng
	}
	_, err := r.db.Exec(`
		INSERT INTO user_locations (user_id, kind, city, specific_location, lat, lng)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id, kind) DO UPDATE SET
			city = excluded.city,
			specific_location = excluded.specific_location,
			lat = excluded.lat,
			lng = excluded.lng
	`, userID, kind, loc.City, loc.SpecificLocation, lat, lng)
	if err != nil {
		return fmt.Errorf("failed to upsert %s location for %s: %w", kind, userID, err)
	}
	return nil
}
