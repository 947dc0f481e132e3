package ui

import (
	"geoview/internal/geo"
	"geoview/internal/render"
	"geoview/internal/viewport"
)

var legendKeys = []string{
	"arrows  pan",
	"+ -     zoom",
	"wheel   zoom at cursor",
	"c       recenter",
	"?       legend",
	"q       quit",
}

var legendFeatures = []geo.FeatureType{
	geo.FeatureCoastline,
	geo.FeatureBorder,
	geo.FeatureRiver,
	geo.FeaturePlace,
}

// Legend is a framed key and symbol list in the top left corner, hidden
// until toggled.
type Legend struct {
	visible bool
}

func (l *Legend) OnReset(*viewport.Viewport, viewport.Element)    {}
func (l *Legend) OnPosition(*viewport.Viewport, viewport.Element) {}
func (l *Legend) Unmanaged() bool                                 { return true }
func (l *Legend) SetPosition(geo.XY)                              {}
func (l *Legend) SetVisible(v bool)                               { l.visible = v }

// Visible reports whether the legend is shown
func (l *Legend) Visible() bool { return l.visible }

// Toggle shows or hides the legend
func (l *Legend) Toggle() { l.visible = !l.visible }

// DrawOverlay draws the frame and its contents
func (l *Legend) DrawOverlay(c *render.Canvas) {
	if !l.visible {
		return
	}

	width := 26
	height := len(legendKeys) + len(legendFeatures) + 3

	// Clear the panel area first so map lines don't show through
	c.FillRect(1, 1, width-2, height-2, ' ', render.StyleLabel)
	c.DrawBox(0, 0, width, height, render.StyleLabel)
	c.DrawText(2, 0, " Legend ", render.StyleLabel)

	y := 1
	for _, line := range legendKeys {
		c.DrawText(2, y, line, render.StyleLabel)
		y++
	}
	y++ // blank separator
	for _, ftype := range legendFeatures {
		c.Set(2, y, render.GetCharForFeature(ftype), render.GetStyleForFeature(ftype))
		c.DrawText(4, y, ftype.String(), render.StyleLabel)
		y++
	}
}
