package spatial

import (
	"sync"

	"github.com/jengzang/expense-audit-go/internal/models"
)

// Coordinates is a WGS84 latitude/longitude pair in degrees.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Resolver maps locations to coordinates. It resolves the full address first
// and falls back to the city centroid, so user-specific addresses (home,
// office) can be registered alongside the built-in city table.
type Resolver struct {
	mu     sync.RWMutex
	coords map[string]Coordinates
}

// builtinCityCoords are centroids for the cities that show up in expense
// data most often. Additional entries come from the city_geocodes table and
// the context profile.
var builtinCityCoords = map[string]Coordinates{
	"北京市":  {39.9042, 116.4074},
	"上海市":  {31.2304, 121.4737},
	"广州市":  {23.1291, 113.2644},
	"深圳市":  {22.5431, 114.0579},
	"成都市":  {30.5728, 104.0668},
	"重庆市":  {29.5630, 106.5516},
	"杭州市":  {30.2741, 120.1551},
	"武汉市":  {30.5928, 114.3055},
	"西安市":  {34.3416, 108.9398},
	"南京市":  {32.0603, 118.7969},
	"天津市":  {39.3434, 117.3616},
	"苏州市":  {31.2989, 120.5853},
	"长沙市":  {28.2282, 112.9388},
	"郑州市":  {34.7466, 113.6254},
	"青岛市":  {36.0671, 120.3826},
	"沈阳市":  {41.8057, 123.4315},
	"大连市":  {38.9140, 121.6147},
	"厦门市":  {24.4798, 118.0894},
	"昆明市":  {24.8801, 102.8329},
	"哈尔滨市": {45.8038, 126.5349},
}

// NewResolver creates a resolver seeded with the built-in city table.
func NewResolver() *Resolver {
	coords := make(map[string]Coordinates, len(builtinCityCoords))
	for city, c := range builtinCityCoords {
		coords[city] = c
	}
	return &Resolver{coords: coords}
}

// Add registers coordinates for a city or full address key.
func (r *Resolver) Add(key string, c Coordinates) {
	if key == "" {
		return
	}
	r.mu.Lock()
	r.coords[key] = c
	r.mu.Unlock()
}

// Resolve returns the coordinates for a location, preferring the full
// address over the city centroid. ok is false when neither is known.
func (r *Resolver) Resolve(loc models.Location) (Coordinates, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if loc.SpecificLocation != "" {
		if c, ok := r.coords[loc.FullAddress()]; ok {
			return c, true
		}
	}
	c, ok := r.coords[loc.City]
	return c, ok
}
