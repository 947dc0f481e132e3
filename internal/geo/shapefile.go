package geo

import (
	"fmt"
	"path/filepath"
	"strings"

	"geoview/internal/debug"

	"github.com/jonas-p/go-shp"
)

// Shapefile bases the loader looks for in its data directory
const (
	BordersBase   = "ne_50m_admin_0_boundary_lines_land"
	RiversBase    = "ne_50m_rivers_lake_centerlines"
	CoastlineBase = "ne_50m_coastline"
	PlacesBase    = "ne_50m_populated_places"
)

// ShapefileLoader loads and parses ESRI shapefiles
type ShapefileLoader struct {
	dataDir string
}

// NewShapefileLoader creates a new shapefile loader
func NewShapefileLoader(dataDir string) *ShapefileLoader {
	return &ShapefileLoader{
		dataDir: dataDir,
	}
}

// LoadAll loads every known shapefile and returns features by type.
// Missing files are skipped with a warning; the viewer still runs without them.
func (s *ShapefileLoader) LoadAll() map[FeatureType][]*Feature {
	features := make(map[FeatureType][]*Feature)

	for _, src := range []struct {
		base  string
		ftype FeatureType
	}{
		{BordersBase, FeatureBorder},
		{RiversBase, FeatureRiver},
		{CoastlineBase, FeatureCoastline},
	} {
		loaded, err := s.LoadLines(s.path(src.base), src.ftype)
		if err != nil {
			debug.Logger().Warn("skipping shapefile", "type", src.ftype, "error", err)
			continue
		}
		features[src.ftype] = loaded
	}

	places, err := s.LoadPlaces(s.path(PlacesBase))
	if err != nil {
		debug.Logger().Warn("skipping shapefile", "type", FeaturePlace, "error", err)
	} else {
		features[FeaturePlace] = places
	}

	debug.Logger().Info("shapefiles loaded",
		"borders", len(features[FeatureBorder]),
		"rivers", len(features[FeatureRiver]),
		"coastlines", len(features[FeatureCoastline]),
		"places", len(features[FeaturePlace]))
	return features
}

func (s *ShapefileLoader) path(base string) string {
	return filepath.Join(s.dataDir, base+".shp")
}

// LoadLines loads polylines and polygon outlines as line features, one per part
func (s *ShapefileLoader) LoadLines(path string, ftype FeatureType) ([]*Feature, error) {
	shape, err := shp.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer shape.Close()

	features := make([]*Feature, 0)

	for shape.Next() {
		_, p := shape.Shape()

		var parts []int32
		var points []shp.Point
		switch geom := p.(type) {
		case *shp.PolyLine:
			parts, points = geom.Parts, geom.Points
		case *shp.Polygon:
			parts, points = geom.Parts, geom.Points
		default:
			continue
		}

		for _, line := range splitParts(parts, points) {
			if len(line) > 1 {
				features = append(features, NewLineFeature(ftype, line))
			}
		}
	}

	return features, nil
}

// splitParts cuts a shapefile point array at its part offsets
func splitParts(parts []int32, points []shp.Point) [][]LatLon {
	if len(parts) == 0 {
		parts = []int32{0}
	}

	lines := make([][]LatLon, 0, len(parts))
	for i, start := range parts {
		end := int32(len(points))
		if i+1 < len(parts) {
			end = parts[i+1]
		}
		if start < 0 || end > int32(len(points)) || start >= end {
			continue
		}

		line := make([]LatLon, 0, end-start)
		for _, pt := range points[start:end] {
			line = append(line, LatLon{Lat: pt.Y, Lon: pt.X})
		}
		lines = append(lines, line)
	}
	return lines
}

// LoadPlaces loads populated places with names
func (s *ShapefileLoader) LoadPlaces(path string) ([]*Feature, error) {
	shape, err := shp.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer shape.Close()

	nameIdx := -1
	for i, field := range shape.Fields() {
		// Field names are NUL padded byte arrays
		fieldName := strings.TrimRight(string(field.Name[:]), "\x00 ")
		if fieldName == "NAME" || fieldName == "NAMEASCII" || fieldName == "NAME_EN" {
			nameIdx = i
			break
		}
	}

	features := make([]*Feature, 0)

	for shape.Next() {
		n, p := shape.Shape()

		point, ok := p.(*shp.Point)
		if !ok {
			continue
		}

		name := ""
		if nameIdx >= 0 {
			name = strings.TrimSpace(shape.ReadAttribute(n, nameIdx))
		}

		features = append(features, NewPointFeature(FeaturePlace, LatLon{Lat: point.Y, Lon: point.X}, name))
	}

	return features, nil
}
