// Package export renders recorded run series as standalone SVG charts.
package export

import (
	"fmt"
	"strings"
)

// Point is one sample of a plotted series.
type Point struct {
	X, Y float64
}

// Series is a named line on a chart.
type Series struct {
	Label  string
	Color  string
	Points []Point
}

// ChartSVG renders one or more series as a line chart. All series
// share the X axis; each series is scaled to its own Y range so
// quantities with different units remain readable on one chart.
func ChartSVG(series []Series, width, height int, title string) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height))

	if title != "" {
		sb.WriteString(fmt.Sprintf(`<text x="%d" y="18" fill="#cccccc" font-family="monospace" font-size="13">%s</text>
`, 10, escapeText(title)))
	}

	const margin = 28
	plotW := float64(width - 2*margin)
	plotH := float64(height - 2*margin)

	for i, s := range series {
		if len(s.Points) < 2 {
			continue
		}
		sb.WriteString(seriesPath(s, margin, plotW, plotH))
		sb.WriteString(fmt.Sprintf(`<text x="%d" y="%d" fill="%s" font-family="monospace" font-size="11">%s</text>
`, width-margin-90, margin+14*(i+1), s.Color, escapeText(s.Label)))
	}

	sb.WriteString("</svg>")
	return sb.String()
}

func seriesPath(s Series, margin int, plotW, plotH float64) string {
	minX, maxX := s.Points[0].X, s.Points[0].X
	minY, maxY := s.Points[0].Y, s.Points[0].Y
	for _, p := range s.Points {
		if p.X < minX {
			minX = p.X
		}
		if p.X > maxX {
			maxX = p.X
		}
		if p.Y < minY {
			minY = p.Y
		}
		if p.Y > maxY {
			maxY = p.Y
		}
	}

	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minY -= rangeY * 0.05
	maxY += rangeY * 0.05
	rangeY = maxY - minY

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<path fill="none" stroke="%s" stroke-width="1.5" d="M`, s.Color))

	for i, p := range s.Points {
		x := float64(margin) + (p.X-minX)/rangeX*plotW
		y := float64(margin) + plotH - (p.Y-minY)/rangeY*plotH

		if i == 0 {
			sb.WriteString(fmt.Sprintf("%.1f,%.1f", x, y))
		} else {
			sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
		}
	}

	sb.WriteString("\"/>\n")
	return sb.String()
}

func escapeText(s string) string {
	r := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	return r.Replace(s)
}
