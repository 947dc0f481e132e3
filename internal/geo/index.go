package geo

import (
	"errors"
	"fmt"

	"geoview/internal/debug"

	"github.com/dhconnelly/rtreego"
)

// ErrBadExtent is returned for features whose extent is empty or not finite
var ErrBadExtent = errors.New("feature extent is empty or not finite")

// FeatureIndex answers "which features touch this box" with an R-tree
type FeatureIndex struct {
	rtree *rtreego.Rtree
	count int
}

// indexedFeature wraps a feature for R-tree storage
type indexedFeature struct {
	feature *Feature
	rect    rtreego.Rect
}

// Bounds implements rtreego.Spatial
func (f *indexedFeature) Bounds() rtreego.Rect {
	return f.rect
}

// NewFeatureIndex indexes the given features. Features with no geometry are
// skipped; features with a broken extent are skipped with a warning.
func NewFeatureIndex(features []*Feature) *FeatureIndex {
	idx := &FeatureIndex{
		rtree: rtreego.NewTree(2, 25, 50),
	}
	for _, f := range features {
		if f == nil || (!f.IsPoint() && !f.IsLine()) {
			continue
		}
		if err := idx.Insert(f); err != nil {
			debug.Logger().Warn("skipping feature", "type", f.Type, "name", f.Name, "error", err)
		}
	}
	return idx
}

// Insert adds a feature to the index
func (idx *FeatureIndex) Insert(f *Feature) error {
	if f == nil {
		return fmt.Errorf("nil feature: %w", ErrBadExtent)
	}
	rect, err := toRect(f.Extent())
	if err != nil {
		return err
	}
	idx.rtree.Insert(&indexedFeature{feature: f, rect: rect})
	idx.count++
	return nil
}

// Len returns the number of indexed features
func (idx *FeatureIndex) Len() int {
	return idx.count
}

// Search returns all features whose extent intersects bounds
func (idx *FeatureIndex) Search(bounds Bounds) []*Feature {
	if idx.count == 0 {
		return nil
	}
	rect, err := toRect(bounds)
	if err != nil {
		return nil
	}

	spatials := idx.rtree.SearchIntersect(rect)
	features := make([]*Feature, 0, len(spatials))
	for _, s := range spatials {
		if f, ok := s.(*indexedFeature); ok {
			features = append(features, f.feature)
		}
	}
	return features
}

func toRect(b Bounds) (rtreego.Rect, error) {
	if b.Empty() || !b.Finite() {
		return rtreego.Rect{}, fmt.Errorf("%+v: %w", b, ErrBadExtent)
	}

	// R-tree rectangles need non-zero sides; points get ~11m
	const epsilon = 0.0001
	lonLength := b.MaxLon - b.MinLon
	latLength := b.MaxLat - b.MinLat
	if lonLength < epsilon {
		lonLength = epsilon
	}
	if latLength < epsilon {
		latLength = epsilon
	}

	rect, err := rtreego.NewRect(rtreego.Point{b.MinLon, b.MinLat}, []float64{lonLength, latLength})
	if err != nil {
		return rtreego.Rect{}, fmt.Errorf("index rect: %w", err)
	}
	return rect, nil
}
