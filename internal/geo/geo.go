// Package geo builds the view model for the project map embed.
package geo

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
)

// Point is a latitude/longitude pair.
type Point struct {
	Lat float64 `json:"lat" yaml:"lat"`
	Lng float64 `json:"lng" yaml:"lng"`
}

func (p Point) String() string {
	return fmt.Sprintf("%.4f,%.4f", p.Lat, p.Lng)
}

// ViewportHint is supplied by the hosting shell so the map does not have to
// inspect the client environment itself.
type ViewportHint int

const (
	ViewportWide ViewportHint = iota
	ViewportCompact
)

// ViewportWidthHeader is the client hint HintFromRequest reads. Pages that
// embed a map advertise it through Accept-CH.
const ViewportWidthHeader = "Sec-CH-Viewport-Width"

const (
	compactHeightPx = 300
	wideHeightPx    = 400
)

// Defaults is the deployment-wide map configuration.
type Defaults struct {
	Center Point
	Zoom   int
	// CompactBelowPx is the viewport width under which ViewportCompact is chosen.
	CompactBelowPx int
}

// MapView is everything the template needs to draw one map.
type MapView struct {
	Label    string `json:"label"`
	Center   Point  `json:"center"`
	Zoom     int    `json:"zoom"`
	HeightPx int    `json:"height_px"`
	Fallback bool   `json:"fallback"`
}

// NewMapView centres on p when present, otherwise on the configured default.
// A zero latitude or longitude counts as an unset coordinate.
func NewMapView(label string, p *Point, defaults Defaults, hint ViewportHint) MapView {
	view := MapView{
		Label:    label,
		Center:   defaults.Center,
		Zoom:     defaults.Zoom,
		HeightPx: wideHeightPx,
		Fallback: true,
	}
	if view.Zoom <= 0 {
		view.Zoom = 15
	}
	if p != nil && p.Lat != 0 && p.Lng != 0 {
		view.Center = *p
		view.Fallback = false
	}
	if hint == ViewportCompact {
		view.HeightPx = compactHeightPx
	}
	return view
}

// HintFromRequest reads an explicit ?viewport= query value first, then the
// Sec-CH-Viewport-Width client hint.
func HintFromRequest(r *http.Request, compactBelowPx int) ViewportHint {
	if compactBelowPx <= 0 {
		compactBelowPx = 768
	}
	switch strings.ToLower(r.URL.Query().Get("viewport")) {
	case "compact", "mobile":
		return ViewportCompact
	case "wide", "desktop":
		return ViewportWide
	}
	if width, err := strconv.Atoi(strings.TrimSpace(r.Header.Get(ViewportWidthHeader))); err == nil && width > 0 {
		if width < compactBelowPx {
			return ViewportCompact
		}
	}
	return ViewportWide
}
