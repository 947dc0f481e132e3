package geo

import (
	"errors"
	"math"
	"testing"
)

var projections = map[string]Projection{
	"mercator":        SphericalMercator{},
	"equirectangular": Equirectangular{},
}

func TestForwardInverse(t *testing.T) {
	points := []LatLon{
		{Lat: 0, Lon: 0},
		{Lat: 39.7406, Lon: -104.985441},
		{Lat: -33.8688, Lon: 151.2093},
		{Lat: 85, Lon: 179.9},
		{Lat: -85, Lon: -179.9},
	}

	for name, p := range projections {
		for _, ll := range points {
			xy, ok := p.Forward(ll)
			if !ok {
				t.Errorf("%s: expected %v inside domain", name, ll)
				continue
			}
			back := p.Inverse(xy)
			if math.Abs(back.Lat-ll.Lat) > 1e-9 || math.Abs(back.Lon-ll.Lon) > 1e-9 {
				t.Errorf("%s: expected %v after round trip, got %v", name, ll, back)
			}
		}
	}
}

func TestForwardOutsideDomain(t *testing.T) {
	mercator := SphericalMercator{}
	for _, ll := range []LatLon{
		{Lat: 90, Lon: 0},
		{Lat: -90, Lon: 0},
		{Lat: 85.06, Lon: 0},
		{Lat: math.NaN(), Lon: 0},
		{Lat: 0, Lon: math.Inf(1)},
	} {
		if _, ok := mercator.Forward(ll); ok {
			t.Errorf("Expected mercator to reject %v", ll)
		}
	}

	equirect := Equirectangular{}
	if _, ok := equirect.Forward(LatLon{Lat: 90, Lon: 0}); !ok {
		t.Error("Expected equirectangular to accept the pole")
	}
	if _, ok := equirect.Forward(LatLon{Lat: 91, Lon: 0}); ok {
		t.Error("Expected equirectangular to reject latitude 91")
	}
}

func TestMercatorKnownValues(t *testing.T) {
	xy, _ := SphericalMercator{}.Forward(LatLon{Lat: MaxMercatorLat, Lon: 180})
	const edge = 20037508.342789244
	if math.Abs(xy.X-edge) > 1e-6 || math.Abs(xy.Y-edge) > 1e-2 {
		t.Errorf("Expected world corner (%v, %v), got %v", edge, edge, xy)
	}
}

func TestLevelLadder(t *testing.T) {
	for name, p := range projections {
		for level := p.MinLevel(); level <= p.MaxLevel(); level++ {
			got := p.ToLevel(p.FromLevel(float64(level)))
			if math.Abs(got-float64(level)) > 1e-9 {
				t.Errorf("%s: expected level %d, got %v", name, level, got)
			}
			if level > p.MinLevel() {
				ratio := p.FromLevel(float64(level-1)) / p.FromLevel(float64(level))
				if math.Abs(ratio-2) > 1e-12 {
					t.Errorf("%s: expected resolution to halve per level, ratio %v", name, ratio)
				}
			}
		}

		// Continuous zoom
		if got := p.ToLevel(p.FromLevel(7.25)); math.Abs(got-7.25) > 1e-9 {
			t.Errorf("%s: expected fractional level 7.25, got %v", name, got)
		}
	}
}

func TestDefaultResolutionIsLevelEight(t *testing.T) {
	p := SphericalMercator{}
	if math.Abs(p.ToLevel(p.DefaultResolution())-8) > 1e-5 {
		t.Errorf("Expected default resolution near level 8, got level %v", p.ToLevel(p.DefaultResolution()))
	}
}

func TestProjectionByName(t *testing.T) {
	cases := map[string]Projection{
		"":                SphericalMercator{},
		"Mercator":        SphericalMercator{},
		"EPSG:3857":       SphericalMercator{},
		"equirectangular": Equirectangular{},
	}
	for name, want := range cases {
		got, err := ProjectionByName(name)
		if err != nil {
			t.Errorf("%q: unexpected error %v", name, err)
			continue
		}
		if got != want {
			t.Errorf("%q: expected %T, got %T", name, want, got)
		}
	}

	if _, err := ProjectionByName("robinson"); !errors.Is(err, ErrUnknownProjection) {
		t.Errorf("Expected ErrUnknownProjection, got %v", err)
	}
}
