package geo

import (
	"math"

	"github.com/paulmach/orb"
)

// FeatureType represents the kind of geographic feature a layer draws
type FeatureType int

const (
	FeatureBorder FeatureType = iota
	FeatureRiver
	FeatureCoastline
	FeaturePlace
)

// String returns a string representation of the feature type
func (f FeatureType) String() string {
	switch f {
	case FeatureBorder:
		return "Border"
	case FeatureRiver:
		return "River"
	case FeatureCoastline:
		return "Coastline"
	case FeaturePlace:
		return "Place"
	default:
		return "Unknown"
	}
}

// LatLon represents a geographic coordinate in degrees
type LatLon struct {
	Lat float64
	Lon float64
}

// Valid reports whether both components are finite numbers
func (ll LatLon) Valid() bool {
	return finite(ll.Lat) && finite(ll.Lon)
}

// Normalized wraps the longitude into [-180, 180]. Latitude is left alone.
func (ll LatLon) Normalized() LatLon {
	if ll.Lon >= -180 && ll.Lon <= 180 || !finite(ll.Lon) {
		return ll
	}
	lon := math.Mod(ll.Lon+180, 360)
	if lon < 0 {
		lon += 360
	}
	return LatLon{Lat: ll.Lat, Lon: lon - 180}
}

// Point returns ll as an orb point, longitude first
func (ll LatLon) Point() orb.Point {
	return orb.Point{ll.Lon, ll.Lat}
}

func latLonFromPoint(p orb.Point) LatLon {
	return LatLon{Lat: p.Lat(), Lon: p.Lon()}
}

func fromPoint(p orb.Point) XY {
	return XY{X: p.X(), Y: p.Y()}
}

// XY is a planar coordinate: world units, pixels or surface pixels
// depending on where it came from.
type XY struct {
	X float64
	Y float64
}

// Add returns the component-wise sum
func (p XY) Add(q XY) XY {
	return XY{X: p.X + q.X, Y: p.Y + q.Y}
}

// Sub returns the component-wise difference
func (p XY) Sub(q XY) XY {
	return XY{X: p.X - q.X, Y: p.Y - q.Y}
}

// Scale multiplies both components by s
func (p XY) Scale(s float64) XY {
	return XY{X: p.X * s, Y: p.Y * s}
}

// Valid reports whether both components are finite numbers
func (p XY) Valid() bool {
	return finite(p.X) && finite(p.Y)
}

// Point represents a terminal cell coordinate
type Point struct {
	X int
	Y int
}

// Feature represents a geographic polyline or named point
type Feature struct {
	Type   FeatureType // Type of feature
	Points []LatLon    // Polyline points (empty for point features)
	Point  *LatLon     // Single point (places)
	Name   string      // Label for places
}

// NewLineFeature creates a new polyline feature
func NewLineFeature(ftype FeatureType, points []LatLon) *Feature {
	return &Feature{
		Type:   ftype,
		Points: points,
	}
}

// NewPointFeature creates a new named point feature
func NewPointFeature(ftype FeatureType, point LatLon, name string) *Feature {
	return &Feature{
		Type:  ftype,
		Point: &point,
		Name:  name,
	}
}

// IsPoint returns true if this is a point feature
func (f *Feature) IsPoint() bool {
	return f.Point != nil
}

// IsLine returns true if this is a polyline feature
func (f *Feature) IsLine() bool {
	return len(f.Points) > 1
}

// Extent returns the bounding box of the feature geometry
func (f *Feature) Extent() Bounds {
	if f.IsPoint() {
		return Bounds{MinLat: f.Point.Lat, MaxLat: f.Point.Lat, MinLon: f.Point.Lon, MaxLon: f.Point.Lon}
	}

	b := Bounds{
		MinLat: math.Inf(1), MaxLat: math.Inf(-1),
		MinLon: math.Inf(1), MaxLon: math.Inf(-1),
	}
	for _, p := range f.Points {
		b.Extend(p)
	}
	return b
}

// Bounds represents a geographic bounding box
type Bounds struct {
	MinLat float64
	MaxLat float64
	MinLon float64
	MaxLon float64
}

// Bound returns the box as an orb bound, longitude on the X axis
func (b Bounds) Bound() orb.Bound {
	return orb.Bound{
		Min: orb.Point{b.MinLon, b.MinLat},
		Max: orb.Point{b.MaxLon, b.MaxLat},
	}
}

func boundsFrom(ob orb.Bound) Bounds {
	return Bounds{MinLat: ob.Min.Lat(), MaxLat: ob.Max.Lat(), MinLon: ob.Min.Lon(), MaxLon: ob.Max.Lon()}
}

// Contains checks if a point is within the bounds
func (b Bounds) Contains(lat, lon float64) bool {
	return b.Bound().Contains(orb.Point{lon, lat})
}

// Intersects reports whether two boxes overlap
func (b Bounds) Intersects(o Bounds) bool {
	return b.Bound().Intersects(o.Bound())
}

// Extend grows the box to include ll
func (b *Bounds) Extend(ll LatLon) {
	*b = boundsFrom(b.Bound().Extend(ll.Point()))
}

// Empty reports whether the box encloses nothing
func (b Bounds) Empty() bool {
	return !(b.MinLat <= b.MaxLat && b.MinLon <= b.MaxLon)
}

// Finite reports whether all four edges are finite numbers
func (b Bounds) Finite() bool {
	return finite(b.MinLat) && finite(b.MaxLat) && finite(b.MinLon) && finite(b.MaxLon)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
