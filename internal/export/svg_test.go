package export

import (
	"strings"
	"testing"
)

func TestChartSVGContainsSeries(t *testing.T) {
	series := []Series{
		{
			Label: "Power (MW)",
			Color: "#00ff00",
			Points: []Point{
				{X: 0, Y: 0}, {X: 1, Y: 40}, {X: 2, Y: 80},
			},
		},
		{
			Label: "Temperature (°C)",
			Color: "#ffaa00",
			Points: []Point{
				{X: 0, Y: 25}, {X: 1, Y: 60}, {X: 2, Y: 80},
			},
		},
	}

	svg := ChartSVG(series, 640, 360, "baseload run")

	if !strings.HasPrefix(svg, `<?xml version="1.0"`) {
		t.Fatalf("missing XML header")
	}
	if !strings.Contains(svg, "baseload run") {
		t.Errorf("title missing from output")
	}
	if strings.Count(svg, "<path") != 2 {
		t.Errorf("expected 2 paths, got %d", strings.Count(svg, "<path"))
	}
	for _, want := range []string{"Power (MW)", "Temperature (°C)", "#00ff00", "#ffaa00"} {
		if !strings.Contains(svg, want) {
			t.Errorf("output missing %q", want)
		}
	}
}

func TestChartSVGSkipsShortSeries(t *testing.T) {
	svg := ChartSVG([]Series{{Label: "one", Color: "#fff", Points: []Point{{X: 0, Y: 1}}}}, 200, 100, "")
	if strings.Contains(svg, "<path") {
		t.Errorf("series with one point should not produce a path")
	}
}

func TestChartSVGEscapesTitle(t *testing.T) {
	svg := ChartSVG(nil, 200, 100, "a<b & c")
	if !strings.Contains(svg, "a&lt;b &amp; c") {
		t.Errorf("title not escaped: %s", svg)
	}
}
