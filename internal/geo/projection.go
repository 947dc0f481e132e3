package geo

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/project"
)

const (
	// EarthRadius is the WGS84 semi-major axis in meters
	EarthRadius = orb.EarthRadius

	// MaxMercatorLat is the latitude at which spherical mercator becomes square
	MaxMercatorLat = 85.0511287798

	// levelZeroResolution is meters per pixel for a 256px world at level 0
	levelZeroResolution = 2 * math.Pi * EarthRadius / 256

	minLevel = 0
	maxLevel = 18
)

// Default view: Denver at level 8
var (
	defaultCenter     = LatLon{Lat: 39.7406, Lon: -104.985441}
	defaultResolution = 611.4962
)

// ErrUnknownProjection is returned by ProjectionByName for unsupported names
var ErrUnknownProjection = errors.New("unknown projection")

// Projection maps geographic coordinates to a planar world system and back.
// Implementations hold no mutable state and are safe to share.
type Projection interface {
	// Forward converts lat/lon to world units. ok is false when the
	// coordinate lies outside the projection's domain.
	Forward(ll LatLon) (p XY, ok bool)

	// Inverse converts world units back to lat/lon
	Inverse(p XY) LatLon

	MinLevel() int
	MaxLevel() int

	// FromLevel returns the resolution (world units per pixel) for a zoom level
	FromLevel(level float64) float64

	// ToLevel returns the (possibly fractional) zoom level for a resolution
	ToLevel(resolution float64) float64

	DefaultCenter() LatLon
	DefaultResolution() float64
}

// ProjectionByName returns a projection for a configuration name
func ProjectionByName(name string) (Projection, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "mercator", "epsg:3857", "webmercator":
		return SphericalMercator{}, nil
	case "equirectangular", "platecarree", "epsg:4326":
		return Equirectangular{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProjection, name)
	}
}

// levelLadder implements the shared power-of-two zoom ladder
type levelLadder struct{}

func (levelLadder) MinLevel() int { return minLevel }
func (levelLadder) MaxLevel() int { return maxLevel }

func (levelLadder) FromLevel(level float64) float64 {
	return levelZeroResolution / math.Exp2(level)
}

func (levelLadder) ToLevel(resolution float64) float64 {
	return math.Log2(levelZeroResolution / resolution)
}

func (levelLadder) DefaultCenter() LatLon      { return defaultCenter }
func (levelLadder) DefaultResolution() float64 { return defaultResolution }

// SphericalMercator is the EPSG:3857 projection in meters
type SphericalMercator struct {
	levelLadder
}

// Forward projects lat/lon to mercator meters.
// Latitudes beyond MaxMercatorLat have no finite image and report !ok;
// they are rejected here because ToMercator would clamp them.
func (SphericalMercator) Forward(ll LatLon) (XY, bool) {
	if !ll.Valid() || math.Abs(ll.Lat) > MaxMercatorLat {
		return XY{}, false
	}

	p := fromPoint(project.WGS84.ToMercator(ll.Point()))
	return p, p.Valid()
}

// Inverse converts mercator meters back to lat/lon
func (SphericalMercator) Inverse(p XY) LatLon {
	return latLonFromPoint(project.Mercator.ToWGS84(orb.Point{p.X, p.Y}))
}

// Equirectangular is a plate carree projection scaled to meters at the equator
type Equirectangular struct {
	levelLadder
}

// Forward projects lat/lon linearly; the domain is the whole globe
func (Equirectangular) Forward(ll LatLon) (XY, bool) {
	if !ll.Valid() || math.Abs(ll.Lat) > 90 || math.Abs(ll.Lon) > 180 {
		return XY{}, false
	}

	return XY{
		X: EarthRadius * ll.Lon * math.Pi / 180.0,
		Y: EarthRadius * ll.Lat * math.Pi / 180.0,
	}, true
}

// Inverse converts equirectangular meters back to lat/lon
func (Equirectangular) Inverse(p XY) LatLon {
	return LatLon{
		Lat: p.Y / EarthRadius * 180.0 / math.Pi,
		Lon: p.X / EarthRadius * 180.0 / math.Pi,
	}
}
