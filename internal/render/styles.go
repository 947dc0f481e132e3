package render

import (
	"fmt"

	"geoview/internal/geo"

	"github.com/gdamore/tcell/v2"
	"github.com/lucasb-eyer/go-colorful"
)

// Style definitions for different map features
var (
	StyleBorder    = tcell.StyleDefault.Foreground(tcell.ColorDarkGray)
	StyleRiver     = tcell.StyleDefault.Foreground(tcell.ColorDarkCyan)
	StyleCoastline = tcell.StyleDefault.Foreground(tcell.ColorDarkBlue)
	StylePlace     = tcell.StyleDefault.Foreground(tcell.ColorWhite)
	StyleMarker    = tcell.StyleDefault.Foreground(tcell.ColorGreen).Bold(true)
	StyleLabel     = tcell.StyleDefault.Foreground(tcell.ColorWhite)
	StyleStatus    = tcell.StyleDefault.Foreground(tcell.ColorBlack).Background(tcell.ColorWhite)
)

// GetStyleForFeature returns the appropriate style for a feature type
func GetStyleForFeature(ftype geo.FeatureType) tcell.Style {
	switch ftype {
	case geo.FeatureBorder:
		return StyleBorder
	case geo.FeatureRiver:
		return StyleRiver
	case geo.FeatureCoastline:
		return StyleCoastline
	case geo.FeaturePlace:
		return StylePlace
	default:
		return tcell.StyleDefault
	}
}

// GetCharForFeature returns the appropriate character for drawing a feature
func GetCharForFeature(ftype geo.FeatureType) rune {
	switch ftype {
	case geo.FeatureBorder:
		return '-'
	case geo.FeatureRiver:
		return '~'
	case geo.FeatureCoastline:
		return '.'
	case geo.FeaturePlace:
		return '●'
	default:
		return '·'
	}
}

// ParseColor converts a CSS style hex color ("#ff8800" or "#f80") to a
// terminal color
func ParseColor(hex string) (tcell.Color, error) {
	c, err := colorful.Hex(hex)
	if err != nil {
		return tcell.ColorDefault, fmt.Errorf("invalid color %q: %w", hex, err)
	}
	r, g, b := c.RGB255()
	return tcell.NewRGBColor(int32(r), int32(g), int32(b)), nil
}
