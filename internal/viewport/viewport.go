// Package viewport keeps attached elements in sync with a moving, zooming
// view of a projection.
//
// A pan keeps the current transform and only moves the managed content
// offset; elements get a position notification. A zoom replaces the
// transform, and every element gets a reset notification because pixel
// placements computed at the old resolution are meaningless.
//
// Everything runs synchronously on the caller's goroutine. A Viewport is not
// safe for concurrent use.
package viewport

import (
	"errors"
	"fmt"
	"math"

	"geoview/internal/debug"
	"geoview/internal/geo"
)

// ErrBusy is returned when a mutator is called from inside a notification cycle
var ErrBusy = errors.New("viewport notification in progress")

// State is the notification protocol state
type State int

const (
	Idle State = iota
	Panning
	Rescaling
)

// String returns a string representation of the state
func (s State) String() string {
	switch s {
	case Idle:
		return "Idle"
	case Panning:
		return "Panning"
	case Rescaling:
		return "Rescaling"
	default:
		return "Unknown"
	}
}

// Binding ties an attached element to the delegate chosen at attach time
type Binding struct {
	element  Element
	delegate Delegate
	managed  bool
}

func (b *Binding) Element() Element   { return b.element }
func (b *Binding) Delegate() Delegate { return b.delegate }

// Managed reports whether the element scrolls with the viewport offset
func (b *Binding) Managed() bool { return b.managed }

// Viewport owns the current transform and center
type Viewport struct {
	seq       geo.Sequencer
	transform *geo.Transform
	center    geo.LatLon
	width     float64
	height    float64
	offset    geo.XY
	bindings  []*Binding
	events    Events
	state     State
}

type options struct {
	center     *geo.LatLon
	resolution float64
	level      *float64
	width      float64
	height     float64
}

// Option configures a new Viewport
type Option func(*options)

// WithCenter sets the initial center. Without it the projection's default
// center is used; (0, 0) is a valid center.
func WithCenter(c geo.LatLon) Option {
	return func(o *options) { o.center = &c }
}

// WithResolution sets the initial resolution
func WithResolution(r float64) Option {
	return func(o *options) { o.resolution = r }
}

// WithLevel sets the initial zoom level; it wins over WithResolution
func WithLevel(level float64) Option {
	return func(o *options) { o.level = &level }
}

// WithSize sets the viewport size in pixels
func WithSize(w, h float64) Option {
	return func(o *options) { o.width, o.height = w, h }
}

// New creates a viewport over p. Without options it uses the projection's
// default center and resolution.
func New(p geo.Projection, opts ...Option) (*Viewport, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	resolution := o.resolution
	if o.level != nil {
		resolution = p.FromLevel(clampLevel(p, *o.level))
	}

	v := &Viewport{
		width:  o.width,
		height: o.height,
	}

	t, err := geo.NewTransform(p, resolution, o.center, &v.seq)
	if err != nil {
		return nil, fmt.Errorf("failed to create viewport: %w", err)
	}

	v.transform = t
	v.center = t.Anchor()
	v.updateOffset()
	return v, nil
}

// Transform returns the current transform
func (v *Viewport) Transform() *geo.Transform { return v.transform }

// Center returns the geographic center of the view
func (v *Viewport) Center() geo.LatLon { return v.center }

// Resolution returns world units per pixel
func (v *Viewport) Resolution() float64 { return v.transform.Resolution() }

// Level returns the fractional zoom level
func (v *Viewport) Level() float64 { return v.transform.Level() }

// Size returns the viewport size in pixels
func (v *Viewport) Size() (w, h float64) { return v.width, v.height }

// Offset is added to the surface position of managed elements to get their
// viewport position.
func (v *Viewport) Offset() geo.XY { return v.offset }

// State returns the protocol state; it is Idle outside notification cycles
func (v *Viewport) State() State { return v.state }

// Events returns the listener registry for viewport events
func (v *Viewport) Events() *Events { return &v.events }

// SetCenter pans the view. The transform is kept and every element receives
// a position notification.
func (v *Viewport) SetCenter(c geo.LatLon) error {
	if v.state != Idle {
		return ErrBusy
	}
	c = c.Normalized()
	if _, ok := v.transform.ToSurface(c); !ok {
		return fmt.Errorf("center %.6f,%.6f: %w", c.Lat, c.Lon, geo.ErrOutOfDomain)
	}

	v.center = c
	v.updateOffset()
	v.notify(Panning)
	v.emit(EventCenter)
	return nil
}

// SetResolution replaces the transform. When preserve is non-nil, the
// geographic point under that viewport pixel stays under it. Every element
// receives exactly one reset notification.
func (v *Viewport) SetResolution(resolution float64, preserve *geo.XY) error {
	if v.state != Idle {
		return ErrBusy
	}

	// The pinned point is kept unwrapped so that zooming at a cursor past
	// the antimeridian does not jump a world width.
	var pinned geo.LatLon
	havePin := false
	if preserve != nil {
		pinned = v.transform.FromSurface(preserve.Sub(v.offset))
		havePin = pinned.Valid()
	}

	t, err := v.transform.Rescale(resolution, &v.center)
	if err != nil {
		return fmt.Errorf("set resolution: %w", err)
	}

	v.transform = t
	v.updateOffset()

	moved := false
	if havePin {
		moved = v.pin(pinned, *preserve)
	}

	v.notify(Rescaling)
	v.emit(EventZoom)
	if moved {
		v.emit(EventCenter)
	}
	return nil
}

// pin moves the center so that ll shows at viewport pixel screen
func (v *Viewport) pin(ll geo.LatLon, screen geo.XY) bool {
	s, ok := v.transform.ToSurface(ll)
	if !ok {
		return false
	}

	// Offset must become screen - s, i.e. the center's surface position
	// must become s + half size - screen.
	half := geo.XY{X: v.width / 2, Y: v.height / 2}
	c := v.transform.FromSurface(s.Add(half).Sub(screen))
	if _, ok := v.transform.ToSurface(c); !ok {
		return false
	}

	v.center = c
	v.updateOffset()
	return true
}

// SetLevel clamps level to the projection's range and sets the matching resolution
func (v *Viewport) SetLevel(level float64, preserve *geo.XY) error {
	if math.IsNaN(level) {
		return fmt.Errorf("set level: %w", geo.ErrInvalidResolution)
	}
	p := v.transform.Projection()
	return v.SetResolution(p.FromLevel(clampLevel(p, level)), preserve)
}

// MoveBy pans so that the point dx, dy pixels from the current center
// becomes the new center. Panning across the antimeridian wraps the
// longitude; panning past the projection's latitude limit fails.
func (v *Viewport) MoveBy(dx, dy float64) error {
	c, ok := v.ToLatLng(geo.XY{X: v.width/2 + dx, Y: v.height/2 + dy})
	if !ok {
		return fmt.Errorf("move by %.1f,%.1f: %w", dx, dy, geo.ErrOutOfDomain)
	}
	return v.SetCenter(c)
}

// Resize changes the viewport size and keeps the center in the middle
func (v *Viewport) Resize(w, h float64) error {
	if v.state != Idle {
		return ErrBusy
	}

	v.width, v.height = w, h
	v.updateOffset()
	v.notify(Panning)
	v.emit(EventResize)
	return nil
}

// ToLatLng converts a viewport pixel to lat/lon with the longitude wrapped
// into [-180, 180]. ok is false when the point has no place in the
// projection's domain.
func (v *Viewport) ToLatLng(screen geo.XY) (geo.LatLon, bool) {
	ll := v.transform.FromSurface(screen.Sub(v.offset)).Normalized()
	if _, ok := v.transform.Projection().Forward(ll); !ok {
		return ll, false
	}
	return ll, true
}

// ToGlobalPixels converts a viewport pixel to absolute pixels at the current resolution
func (v *Viewport) ToGlobalPixels(screen geo.XY) (geo.XY, bool) {
	px := v.transform.SurfaceToPixels(screen.Sub(v.offset))
	return px, px.Valid()
}

// ToScreen converts lat/lon to a viewport pixel
func (v *Viewport) ToScreen(ll geo.LatLon) (geo.XY, bool) {
	s, ok := v.transform.ToSurface(ll)
	if !ok {
		return geo.XY{}, false
	}
	return s.Add(v.offset), true
}

// Bounds returns the geographic box covered by the viewport, clipped to
// the world. Corners beyond the world's edge are pulled back onto it.
func (v *Viewport) Bounds() geo.Bounds {
	b := geo.Bounds{
		MinLat: math.Inf(1), MaxLat: math.Inf(-1),
		MinLon: math.Inf(1), MaxLon: math.Inf(-1),
	}
	for _, corner := range []geo.XY{
		{X: 0, Y: 0},
		{X: v.width, Y: 0},
		{X: 0, Y: v.height},
		{X: v.width, Y: v.height},
	} {
		ll := v.transform.FromSurface(corner.Sub(v.offset))
		if !ll.Valid() {
			continue
		}
		b.Extend(geo.LatLon{
			Lat: math.Max(-90, math.Min(90, ll.Lat)),
			Lon: math.Max(-180, math.Min(180, ll.Lon)),
		})
	}
	return b
}

// AttachOption configures how an element is attached
type AttachOption func(*attachOptions)

type attachOptions struct {
	delegate  Delegate
	unmanaged bool
}

// WithDelegate uses d instead of the element's own or the default delegate
func WithDelegate(d Delegate) AttachOption {
	return func(o *attachOptions) { o.delegate = d }
}

// WithUnmanaged excludes the element from offset scrolling
func WithUnmanaged() AttachOption {
	return func(o *attachOptions) { o.unmanaged = true }
}

// Attach binds el to the viewport and places it immediately. Attaching an
// element twice returns the existing binding.
func (v *Viewport) Attach(el Element, opts ...AttachOption) *Binding {
	if b := v.binding(el); b != nil {
		return b
	}

	var o attachOptions
	for _, opt := range opts {
		opt(&o)
	}

	d := o.delegate
	if d == nil {
		if own, ok := el.(Delegate); ok {
			d = own
		} else {
			d = DefaultDelegate{}
		}
	}

	unmanaged := o.unmanaged
	if u, ok := d.(unmanager); ok && u.Unmanaged() {
		unmanaged = true
	}

	b := &Binding{element: el, delegate: d, managed: !unmanaged}
	v.bindings = append(v.bindings, b)
	d.OnReset(v, el)
	return b
}

// Detach removes el; it reports whether el was attached
func (v *Viewport) Detach(el Element) bool {
	for i, b := range v.bindings {
		if b.element == el {
			v.bindings = append(v.bindings[:i:i], v.bindings[i+1:]...)
			return true
		}
	}
	return false
}

// Each calls fn for every binding in attach order until fn returns false
func (v *Viewport) Each(fn func(b *Binding) bool) {
	for _, b := range v.bindings {
		if !fn(b) {
			return
		}
	}
}

// Len returns the number of attached elements
func (v *Viewport) Len() int {
	return len(v.bindings)
}

func (v *Viewport) binding(el Element) *Binding {
	for _, b := range v.bindings {
		if b.element == el {
			return b
		}
	}
	return nil
}

// notify runs one notification cycle over a snapshot of the bindings
func (v *Viewport) notify(kind State) {
	v.state = kind
	defer func() { v.state = Idle }()

	bindings := make([]*Binding, len(v.bindings))
	copy(bindings, v.bindings)

	for _, b := range bindings {
		if kind == Rescaling {
			b.delegate.OnReset(v, b.element)
		} else {
			b.delegate.OnPosition(v, b.element)
		}
	}

	if debug.Enabled() {
		debug.Logger().Debug("viewport notified",
			"kind", kind,
			"elements", len(bindings),
			"sequence", v.transform.Sequence(),
			"level", v.Level())
	}
}

func (v *Viewport) emit(name string) {
	v.events.Emit(Event{
		Name:       name,
		Center:     v.center,
		Resolution: v.Resolution(),
		Level:      v.Level(),
	})
}

func (v *Viewport) updateOffset() {
	s, ok := v.transform.ToSurface(v.center)
	if !ok {
		s = geo.XY{}
	}
	v.offset = geo.XY{X: v.width/2 - s.X, Y: v.height/2 - s.Y}
}

func clampLevel(p geo.Projection, level float64) float64 {
	return math.Max(float64(p.MinLevel()), math.Min(float64(p.MaxLevel()), level))
}
