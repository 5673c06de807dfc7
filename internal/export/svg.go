// Package export renders cloth snapshots as standalone SVG documents.
package export

import (
	"fmt"
	"strings"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/clothsim/internal/viz"
)

const svgHeader = `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`

// CanvasToSVG draws every lit dot of a braille canvas as a circle, scale
// pixels apart.
func CanvasToSVG(canvas *viz.Canvas, scale float64, fill string) string {
	if canvas == nil {
		return ""
	}

	width := int(float64(canvas.DotWidth()) * scale)
	height := int(float64(canvas.DotHeight()) * scale)

	var sb strings.Builder
	fmt.Fprintf(&sb, svgHeader, width, height, width, height)
	fmt.Fprintf(&sb, "<g fill=\"%s\">\n", fill)

	r := scale * 0.4
	for y := 0; y < canvas.DotHeight(); y++ {
		for x := 0; x < canvas.DotWidth(); x++ {
			if canvas.IsSet(x, y) {
				fmt.Fprintf(&sb, "<circle cx=\"%.1f\" cy=\"%.1f\" r=\"%.1f\"/>\n",
					(float64(x)+0.5)*scale, (float64(y)+0.5)*scale, r)
			}
		}
	}

	sb.WriteString("</g>\n</svg>\n")
	return sb.String()
}

// TraceSVG draws a 2D path fitted into width×height with 10% padding, y up.
// Fewer than two points yield an empty string.
func TraceSVG(points []mgl64.Vec2, width, height int, stroke string) string {
	if len(points) < 2 {
		return ""
	}

	lo, hi := points[0], points[0]
	for _, p := range points {
		lo = mgl64.Vec2{min(lo.X(), p.X()), min(lo.Y(), p.Y())}
		hi = mgl64.Vec2{max(hi.X(), p.X()), max(hi.Y(), p.Y())}
	}

	span := hi.Sub(lo)
	for i := range span {
		if span[i] == 0 {
			span[i] = 1
		}
	}
	lo = lo.Sub(span.Mul(0.1))
	span = span.Mul(1.2)

	var sb strings.Builder
	fmt.Fprintf(&sb, svgHeader, width, height, width, height)
	fmt.Fprintf(&sb, "<path fill=\"none\" stroke=\"%s\" stroke-width=\"1.5\" d=\"", stroke)

	for i, p := range points {
		x := (p.X() - lo.X()) / span.X() * float64(width)
		y := float64(height) - (p.Y()-lo.Y())/span.Y()*float64(height)
		if i == 0 {
			fmt.Fprintf(&sb, "M%.1f,%.1f", x, y)
		} else {
			fmt.Fprintf(&sb, " L%.1f,%.1f", x, y)
		}
	}

	sb.WriteString("\"/>\n</svg>\n")
	return sb.String()
}
