package geo

import (
	"errors"
	"fmt"
	"math"
	"sync/atomic"
)

var (
	// ErrInvalidResolution is returned for non-positive or non-finite resolutions
	ErrInvalidResolution = errors.New("resolution must be a positive finite number")

	// ErrOutOfDomain is returned when an anchor or center cannot be projected
	ErrOutOfDomain = errors.New("coordinate outside projection domain")
)

// Sequencer hands out increasing Transform sequence numbers.
// The zero value is ready to use; each viewport owns one.
type Sequencer struct {
	last atomic.Uint64
}

func (s *Sequencer) next() uint64 {
	return s.last.Add(1)
}

// Transform is an immutable snapshot of a projection at a fixed resolution,
// anchored so that Anchor maps to surface (0, 0).
type Transform struct {
	projection  Projection
	resolution  float64
	anchor      LatLon
	anchorPixel XY
	sequence    uint64
	seq         *Sequencer
}

// NewTransform builds a transform. A zero resolution or nil anchor falls back
// to the projection defaults; (0, 0) is a real anchor. seq may be nil, in
// which case the transform gets its own private counter.
func NewTransform(p Projection, resolution float64, at *LatLon, seq *Sequencer) (*Transform, error) {
	if resolution == 0 {
		resolution = p.DefaultResolution()
	}
	anchor := p.DefaultCenter()
	if at != nil {
		anchor = *at
	}
	if resolution < 0 || math.IsNaN(resolution) || math.IsInf(resolution, 0) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResolution, resolution)
	}

	world, ok := p.Forward(anchor)
	if !ok {
		return nil, fmt.Errorf("anchor %.6f,%.6f: %w", anchor.Lat, anchor.Lon, ErrOutOfDomain)
	}

	if seq == nil {
		seq = &Sequencer{}
	}

	return &Transform{
		projection:  p,
		resolution:  resolution,
		anchor:      anchor,
		anchorPixel: world.Scale(1 / resolution),
		sequence:    seq.next(),
		seq:         seq,
	}, nil
}

// Rescale returns a new transform sharing the projection and sequencer.
// A nil anchor keeps the current one.
func (t *Transform) Rescale(resolution float64, anchor *LatLon) (*Transform, error) {
	if resolution == 0 {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResolution, resolution)
	}
	if anchor == nil {
		anchor = &t.anchor
	}
	return NewTransform(t.projection, resolution, anchor, t.seq)
}

// ToPixels converts lat/lon to absolute pixels at this resolution
func (t *Transform) ToPixels(ll LatLon) (XY, bool) {
	world, ok := t.projection.Forward(ll)
	if !ok {
		return XY{}, false
	}
	return world.Scale(1 / t.resolution), true
}

// ToSurface converts lat/lon to anchor-relative pixels with y growing downward
func (t *Transform) ToSurface(ll LatLon) (XY, bool) {
	px, ok := t.ToPixels(ll)
	if !ok {
		return XY{}, false
	}
	return XY{
		X: px.X - t.anchorPixel.X,
		Y: t.anchorPixel.Y - px.Y,
	}, true
}

// FromPixels converts absolute pixels back to lat/lon
func (t *Transform) FromPixels(px XY) LatLon {
	return t.projection.Inverse(px.Scale(t.resolution))
}

// FromSurface converts anchor-relative pixels back to lat/lon
func (t *Transform) FromSurface(s XY) LatLon {
	return t.FromPixels(t.SurfaceToPixels(s))
}

// SurfaceToPixels undoes the anchor bias and y flip
func (t *Transform) SurfaceToPixels(s XY) XY {
	return XY{
		X: s.X + t.anchorPixel.X,
		Y: t.anchorPixel.Y - s.Y,
	}
}

func (t *Transform) Projection() Projection { return t.projection }
func (t *Transform) Resolution() float64    { return t.resolution }
func (t *Transform) Anchor() LatLon         { return t.anchor }
func (t *Transform) AnchorPixel() XY        { return t.anchorPixel }

// Sequence identifies this transform; a cached computation tagged with a
// different sequence was made against a stale transform.
func (t *Transform) Sequence() uint64 { return t.sequence }

// Level returns the fractional zoom level of this transform
func (t *Transform) Level() float64 {
	return t.projection.ToLevel(t.resolution)
}
