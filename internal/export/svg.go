// Package export renders particle frames and metric series as SVG.
package export

import (
	"fmt"
	"strings"

	"github.com/san-kum/sphindex/internal/dynamo"
	"github.com/san-kum/sphindex/internal/physics"
	"github.com/san-kum/sphindex/internal/spatial"
	"github.com/san-kum/sphindex/internal/spatial/overlay"
)

// Overlay is the index structure drawn under the particles.
type Overlay struct {
	Rects   []spatial.Rect
	Path    []dynamo.Vec2
	Pointer *dynamo.Vec2
}

// FrameToSVG draws particles in world coordinates, scaled by scale, over
// an optional index overlay.
func FrameToSVG(ps []dynamo.Particle, width, height, scale float64, ov Overlay) string {
	if scale <= 0 {
		scale = 1
	}
	w, h := width*scale, height*scale

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, w, h, w, h))

	if len(ov.Rects) > 0 {
		sb.WriteString(`<g fill="none" stroke="#ff00ff" stroke-width="0.5" stroke-opacity="0.6">` + "\n")
		for _, r := range ov.Rects {
			sb.WriteString(fmt.Sprintf(`<rect x="%.1f" y="%.1f" width="%.1f" height="%.1f"/>`+"\n",
				r.MinX*scale, r.MinY*scale, r.Width()*scale, r.Height()*scale))
		}
		sb.WriteString("</g>\n")
	}

	if len(ov.Path) > 1 {
		sb.WriteString(`<path fill="none" stroke="#4488aa" stroke-width="0.5" d="M`)
		for i, p := range ov.Path {
			if i > 0 {
				sb.WriteString(" L")
			}
			sb.WriteString(fmt.Sprintf("%.1f,%.1f", p.X*scale, p.Y*scale))
		}
		sb.WriteString(`"/>` + "\n")
	}

	sb.WriteString(`<g fill="#00ffff">` + "\n")
	for _, p := range ps {
		sb.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="%.1f"/>`+"\n",
			p.Position.X*scale, p.Position.Y*scale, 1.5*scale))
	}
	sb.WriteString("</g>\n")

	if ov.Pointer != nil {
		sb.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="%.1f" fill="none" stroke="#ffff00"/>`+"\n",
			ov.Pointer.X*scale, ov.Pointer.Y*scale, 4*scale))
	}

	sb.WriteString("</svg>")
	return sb.String()
}

// WorldOverlay collects the pointer of w and, when structure is set, the
// clipped node rectangles and curve path of its current index.
func WorldOverlay(w *physics.World, structure bool) Overlay {
	var ov Overlay
	if structure {
		idx := w.Index()
		ov.Rects = overlay.Clip(overlay.Rects(idx), w.Width(), w.Height())
		ov.Path = overlay.Path(idx)
	}
	if p, ok, _ := w.Pointer(); ok {
		ov.Pointer = &p
	}
	return ov
}

// SeriesToSVG plots values against their index as a line chart. It
// returns "" for fewer than two values.
func SeriesToSVG(values []float64, width, height int, strokeColor string) string {
	if len(values) < 2 {
		return ""
	}

	lo, hi := values[0], values[0]
	for _, v := range values {
		lo = min(lo, v)
		hi = max(hi, v)
	}
	span := hi - lo
	if span == 0 {
		span = 1
	}
	// 10% headroom above and below.
	lo -= span * 0.1
	span *= 1.2

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<path fill="none" stroke="%s" stroke-width="1.5" d="M`,
		width, height, width, height, strokeColor))

	last := float64(len(values) - 1)
	for i, v := range values {
		x := float64(i) / last * float64(width)
		y := float64(height) - (v-lo)/span*float64(height)
		if i == 0 {
			sb.WriteString(fmt.Sprintf("%.1f,%.1f", x, y))
		} else {
			sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
		}
	}

	sb.WriteString(`"/>
</svg>`)
	return sb.String()
}
