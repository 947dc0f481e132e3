package ui

import (
	"geoview/internal/geo"
	"geoview/internal/render"
	"geoview/internal/viewport"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// StatusBar is a one-line overlay on the bottom row showing the view state.
// It is its own delegate and never scrolls with the map.
type StatusBar struct {
	printer *message.Printer
	text    string
	visible bool
}

// NewStatusBar creates a status bar
func NewStatusBar() *StatusBar {
	return &StatusBar{
		printer: message.NewPrinter(language.English),
		visible: true,
	}
}

func (s *StatusBar) OnReset(v *viewport.Viewport, _ viewport.Element)    { s.refresh(v) }
func (s *StatusBar) OnPosition(v *viewport.Viewport, _ viewport.Element) { s.refresh(v) }

// Unmanaged keeps the status bar out of offset scrolling
func (s *StatusBar) Unmanaged() bool { return true }

func (s *StatusBar) SetPosition(geo.XY) {}
func (s *StatusBar) SetVisible(v bool)  { s.visible = v }

// Text returns the last formatted status line
func (s *StatusBar) Text() string { return s.text }

func (s *StatusBar) refresh(v *viewport.Viewport) {
	c := v.Center()
	s.text = s.printer.Sprintf(" %.4f, %.4f  level %.2f  %.1f m/px ",
		c.Lat, c.Lon, v.Level(), v.Resolution())
}

// DrawOverlay draws the bar across the last canvas row
func (s *StatusBar) DrawOverlay(c *render.Canvas) {
	if !s.visible || c.Height() == 0 {
		return
	}

	y := c.Height() - 1
	c.FillRect(0, y, c.Width(), 1, ' ', render.StyleStatus)
	c.DrawText(0, y, s.text, render.StyleStatus)
}
