package geo

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

var testDefaults = Defaults{Center: Point{Lat: 28.6139, Lng: 77.2090}, Zoom: 15}

func TestNewMapViewUsesProjectLocation(t *testing.T) {
	view := NewMapView("Sunrise Towers", &Point{Lat: 19.07, Lng: 72.87}, testDefaults, ViewportWide)

	assert.Equal(t, Point{Lat: 19.07, Lng: 72.87}, view.Center)
	assert.False(t, view.Fallback)
	assert.Equal(t, 400, view.HeightPx)
	assert.Equal(t, "Sunrise Towers", view.Label)
}

func TestNewMapViewFallsBackToDefault(t *testing.T) {
	view := NewMapView("Krupal Habitat", nil, testDefaults, ViewportCompact)

	assert.Equal(t, testDefaults.Center, view.Center)
	assert.True(t, view.Fallback)
	assert.Equal(t, 300, view.HeightPx)
}

func TestNewMapViewZeroPointIsAbsent(t *testing.T) {
	view := NewMapView("x", &Point{}, Defaults{Center: Point{Lat: 1, Lng: 2}}, ViewportWide)

	assert.True(t, view.Fallback)
	assert.Equal(t, 15, view.Zoom)
}

func TestNewMapViewSingleZeroCoordinateIsAbsent(t *testing.T) {
	for _, p := range []Point{{Lat: 0, Lng: 72.87}, {Lat: 19.07, Lng: 0}} {
		view := NewMapView("x", &p, testDefaults, ViewportWide)

		assert.True(t, view.Fallback, "point %v", p)
		assert.Equal(t, testDefaults.Center, view.Center)
	}
}

func TestHintFromRequest(t *testing.T) {
	tests := []struct {
		name   string
		target string
		header string
		want   ViewportHint
	}{
		{name: "default wide", target: "/", want: ViewportWide},
		{name: "query compact", target: "/?viewport=compact", want: ViewportCompact},
		{name: "query wins over header", target: "/?viewport=wide", header: "320", want: ViewportWide},
		{name: "narrow client hint", target: "/", header: "412", want: ViewportCompact},
		{name: "wide client hint", target: "/", header: "1280", want: ViewportWide},
		{name: "garbage header", target: "/", header: "narrow", want: ViewportWide},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", tt.target, nil)
			if tt.header != "" {
				req.Header.Set("Sec-CH-Viewport-Width", tt.header)
			}
			assert.Equal(t, tt.want, HintFromRequest(req, 768))
		})
	}
}
