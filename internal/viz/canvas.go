package viz

import (
	"strings"

	"github.com/san-kum/sphindex/internal/dynamo"
	"github.com/san-kum/sphindex/internal/spatial"
)

// Braille Patterns: 2x4 dots
// 1 4
// 2 5
// 3 6
// 7 8
//
// Unicode offset 0x2800
const brailleBlank = 0x2800

var pixelMap = [4][2]rune{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

// Canvas is a grid of braille cells. Each cell holds 2x4 dots, so the
// canvas is Width*2 by Height*4 dots.
type Canvas struct {
	Width, Height int
	Grid          [][]rune
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{
		Width:  w,
		Height: h,
		Grid:   make([][]rune, h),
	}
	for i := range c.Grid {
		c.Grid[i] = make([]rune, w)
	}
	c.Clear()
	return c
}

// Dots returns the canvas size in dots.
func (c *Canvas) Dots() (int, int) { return c.Width * 2, c.Height * 4 }

// Set turns on the dot at (x, y). Out-of-range dots are ignored.
func (c *Canvas) Set(x, y int) {
	if x < 0 || y < 0 {
		return
	}
	col, row := x/2, y/4
	if col >= c.Width || row >= c.Height {
		return
	}
	c.Grid[row][col] |= pixelMap[y%4][x%2]
}

// IsSet reports whether any dot in cell (col, row) is on.
func (c *Canvas) IsSet(col, row int) bool {
	return c.Grid[row][col] != brailleBlank
}

func (c *Canvas) Clear() {
	for i := range c.Grid {
		for j := range c.Grid[i] {
			c.Grid[i][j] = brailleBlank
		}
	}
}

// DrawLine draws a line using Bresenham's algorithm
func (c *Canvas) DrawLine(x0, y0, x1, y1 int) {
	dx := absInt(x1 - x0)
	dy := absInt(y1 - y0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy

	for {
		c.Set(x0, y0)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

// DrawRect outlines the rectangle with corners (x0, y0) and (x1, y1).
func (c *Canvas) DrawRect(x0, y0, x1, y1 int) {
	c.DrawLine(x0, y0, x1, y0)
	c.DrawLine(x1, y0, x1, y1)
	c.DrawLine(x1, y1, x0, y1)
	c.DrawLine(x0, y1, x0, y0)
}

func (c *Canvas) String() string {
	var b strings.Builder
	for _, row := range c.Grid {
		b.WriteString(string(row) + "\n")
	}
	return b.String()
}

// Projection maps world coordinates onto canvas dots. World y grows
// downwards, like the terminal.
type Projection struct {
	WorldW, WorldH float64
	DotsW, DotsH   int
}

func (c *Canvas) Projection(worldW, worldH float64) Projection {
	w, h := c.Dots()
	return Projection{WorldW: worldW, WorldH: worldH, DotsW: w, DotsH: h}
}

func (p Projection) Dot(v dynamo.Vec2) (int, int) {
	x := int(v.X / p.WorldW * float64(p.DotsW))
	y := int(v.Y / p.WorldH * float64(p.DotsH))
	return min(x, p.DotsW-1), min(y, p.DotsH-1)
}

// World returns the world position at the centre of dot (x, y).
func (p Projection) World(x, y int) dynamo.Vec2 {
	return dynamo.V(
		(float64(x)+0.5)/float64(p.DotsW)*p.WorldW,
		(float64(y)+0.5)/float64(p.DotsH)*p.WorldH,
	)
}

func DrawParticles(c *Canvas, p Projection, ps []dynamo.Particle) {
	for _, pt := range ps {
		c.Set(p.Dot(pt.Position))
	}
}

func DrawRects(c *Canvas, p Projection, rects []spatial.Rect) {
	for _, r := range rects {
		x0, y0 := p.Dot(dynamo.V(r.MinX, r.MinY))
		x1, y1 := p.Dot(dynamo.V(r.MaxX, r.MaxY))
		c.DrawRect(x0, y0, x1, y1)
	}
}

// DrawPath joins consecutive points with lines.
func DrawPath(c *Canvas, p Projection, path []dynamo.Vec2) {
	for i := 1; i < len(path); i++ {
		x0, y0 := p.Dot(path[i-1])
		x1, y1 := p.Dot(path[i])
		c.DrawLine(x0, y0, x1, y1)
	}
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
