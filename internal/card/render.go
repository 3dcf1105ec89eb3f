package card

import (
	"bytes"
	"fmt"
	"strings"

	svg "github.com/ajstarks/svgo"

	"github.com/xwteam/mascot/internal/visitor"
)

const (
	width  = 400
	height = 250

	weatherTop   = 175
	weatherPitch = 15
)

const (
	titleStyle   = "font-family:Arial, sans-serif;font-size:18px;font-weight:bold;fill:#ffffff;text-anchor:middle"
	infoStyle    = "font-family:Arial, sans-serif;font-size:12px;fill:#ffffff"
	headingStyle = "font-family:Arial, sans-serif;font-size:12px;font-weight:bold;fill:#ffffff"
	weatherStyle = "font-family:Arial, sans-serif;font-size:10px;fill:#ffffff"
	footerStyle  = "font-family:Arial, sans-serif;font-size:10px;fill:#ffffff;fill-opacity:0.8;text-anchor:middle"
	dividerStyle = "stroke:#ffffff;stroke-opacity:0.5;stroke-width:1"
)

// Record is everything printed on one visitor's card.
type Record struct {
	visitor.ClientInfo
	Location   string
	Weather    string
	Background Gradient
}

// BrowserLine is the browser caption, "name (version)" or just the name.
func (r Record) BrowserLine(l Labels) string {
	name := l.localize(r.Browser.Name)
	if r.Browser.Version == "" {
		return name
	}
	return fmt.Sprintf("%s (%s)", name, r.Browser.Version)
}

// Render draws the card. Weather lines are laid out one per row starting at
// a fixed offset; all text is XML-escaped by the SVG writer.
func Render(rec Record, l Labels, footer string) []byte {
	var buf bytes.Buffer
	canvas := svg.New(&buf)
	canvas.Start(width, height)
	canvas.Title(l.Title)

	canvas.Def()
	canvas.LinearGradient("bg", 0, 0, 100, 100, []svg.Offcolor{
		{Offset: 0, Color: rec.Background.From, Opacity: 1},
		{Offset: 100, Color: rec.Background.To, Opacity: 1},
	})
	canvas.DefEnd()
	canvas.Roundrect(0, 0, width, height, 10, 10, "fill:url(#bg)")

	canvas.Text(width/2, 30, l.Title, titleStyle)
	canvas.Line(20, 45, width-20, 45, dividerStyle)

	canvas.Text(20, 70, fmt.Sprintf("%s: %s", l.IP, rec.IP), infoStyle)
	canvas.Text(20, 90, fmt.Sprintf("%s: 「%s」", l.From, l.localize(rec.Location)), infoStyle)
	canvas.Text(20, 110, fmt.Sprintf("%s: %s", l.Browser, rec.BrowserLine(l)), infoStyle)
	canvas.Text(20, 130, fmt.Sprintf("%s: %s", l.OS, l.localize(rec.OS)), infoStyle)

	canvas.Text(20, 155, l.Weather+":", headingStyle)
	for i, line := range strings.Split(l.localize(rec.Weather), "\n") {
		canvas.Text(20, weatherTop+i*weatherPitch, line, weatherStyle)
	}

	canvas.Text(width/2, 240, footer, footerStyle)
	canvas.End()
	return buf.Bytes()
}
