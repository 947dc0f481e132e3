package viewport

import (
	"strconv"
	"strings"

	"geoview/internal/geo"
)

// Element is the host side of an attached visual element: something that can
// be moved and shown or hidden. Elements are compared by identity, so
// implementations should be pointer types.
type Element interface {
	// SetPosition places the element. Managed elements receive surface
	// coordinates; unmanaged ones are expected to use viewport coordinates.
	SetPosition(p geo.XY)
	SetVisible(visible bool)
}

// Placement is where an element wants to be: a geographic point plus a
// pixel offset applied after projection.
type Placement struct {
	Position geo.LatLon
	Offset   geo.XY
}

// GeoSource is implemented by elements carrying an explicit geo record
type GeoSource interface {
	GeoRecord() (Placement, bool)
}

// Attributes is implemented by elements carrying positional hints as text
// (latitude, longitude, xoffset, yoffset).
type Attributes interface {
	Attr(name string) (string, bool)
}

// Delegate places one element against the viewport's current transform.
type Delegate interface {
	// OnReset recomputes placement from scratch; sent after every
	// transform replacement.
	OnReset(v *Viewport, el Element)

	// OnPosition is sent after a pan. Managed content moves with the
	// viewport offset, so most delegates can ignore it.
	OnPosition(v *Viewport, el Element)
}

// unmanager is optionally implemented by delegates positioning their element
// in viewport pixels rather than surface pixels.
type unmanager interface {
	Unmanaged() bool
}

// DefaultDelegate is used for elements that bring no delegate of their own
type DefaultDelegate struct{}

// OnReset places el at its projected position, or hides it when the position
// is unknown or outside the projection domain.
func (DefaultDelegate) OnReset(v *Viewport, el Element) {
	placement, ok := ResolvePlacement(el)
	if !ok {
		el.SetVisible(false)
		return
	}

	s, ok := v.Transform().ToSurface(placement.Position)
	if !ok {
		el.SetVisible(false)
		return
	}

	el.SetPosition(s.Add(placement.Offset))
	el.SetVisible(true)
}

// OnPosition is a no-op
func (DefaultDelegate) OnPosition(*Viewport, Element) {}

// ResolvePlacement reads an element's placement from its geo record, falling
// back to its positional attributes.
func ResolvePlacement(el Element) (Placement, bool) {
	if src, ok := el.(GeoSource); ok {
		if p, ok := src.GeoRecord(); ok && p.Position.Valid() {
			return p, true
		}
	}

	attrs, ok := el.(Attributes)
	if !ok {
		return Placement{}, false
	}

	lat, ok := parseAttr(attrs, geo.AttrLatitude)
	if !ok {
		return Placement{}, false
	}
	lon, ok := parseAttr(attrs, geo.AttrLongitude)
	if !ok {
		return Placement{}, false
	}

	// Offsets are optional but must parse when given
	var offset geo.XY
	if offset.X, ok = parseOptionalAttr(attrs, geo.AttrXOffset); !ok {
		return Placement{}, false
	}
	if offset.Y, ok = parseOptionalAttr(attrs, geo.AttrYOffset); !ok {
		return Placement{}, false
	}

	p := Placement{Position: geo.LatLon{Lat: lat, Lon: lon}, Offset: offset}
	return p, p.Position.Valid() && p.Offset.Valid()
}

func parseAttr(attrs Attributes, name string) (float64, bool) {
	raw, ok := attrs.Attr(name)
	if !ok {
		return 0, false
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func parseOptionalAttr(attrs Attributes, name string) (float64, bool) {
	raw, ok := attrs.Attr(name)
	if !ok || strings.TrimSpace(raw) == "" {
		return 0, true
	}
	return parseAttr(attrs, name)
}
