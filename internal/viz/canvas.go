package viz

import "strings"

// blankCell is U+2800, the braille pattern with no dots raised. Every cell of
// a Canvas is blankCell plus the bits of its raised dots.
const blankCell rune = 0x2800

// dotBits[row][col] is the braille bit for one dot of a 2 wide, 4 tall cell.
var dotBits = [4][2]rune{
	{0x01, 0x08},
	{0x02, 0x10},
	{0x04, 0x20},
	{0x40, 0x80},
}

// Canvas is a Width by Height grid of terminal cells. Drawing happens in dot
// space, which is twice as wide and four times as tall as the cell grid.
type Canvas struct {
	Width, Height int
	cells         []rune
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{Width: w, Height: h, cells: make([]rune, w*h)}
	c.Clear()
	return c
}

// cell maps a dot to its index in cells and its bit there. ok is false for
// dots off the canvas.
func (c *Canvas) cell(x, y int) (idx int, bit rune, ok bool) {
	if x < 0 || y < 0 || x >= 2*c.Width || y >= 4*c.Height {
		return 0, 0, false
	}
	return (y/4)*c.Width + x/2, dotBits[y%4][x%2], true
}

// Set raises a dot. Off-canvas dots are ignored.
func (c *Canvas) Set(x, y int) {
	if i, bit, ok := c.cell(x, y); ok {
		c.cells[i] |= bit
	}
}

func (c *Canvas) Unset(x, y int) {
	if i, bit, ok := c.cell(x, y); ok {
		c.cells[i] &^= bit
	}
}

func (c *Canvas) Lit(x, y int) bool {
	i, bit, ok := c.cell(x, y)
	return ok && c.cells[i]&bit != 0
}

func (c *Canvas) Clear() {
	for i := range c.cells {
		c.cells[i] = blankCell
	}
}

// DrawLine raises every dot on the segment between two dots, endpoints
// included. It walks the major axis one dot at a time and carries the minor
// axis error as an integer.
func (c *Canvas) DrawLine(x0, y0, x1, y1 int) {
	runX, runY := absInt(x1-x0), absInt(y1-y0)
	stepX, stepY := 1, 1
	if x1 < x0 {
		stepX = -1
	}
	if y1 < y0 {
		stepY = -1
	}

	x, y := x0, y0
	slack := runX - runY
	for {
		c.Set(x, y)
		if x == x1 && y == y1 {
			return
		}
		twice := 2 * slack
		if twice > -runY {
			slack -= runY
			x += stepX
		}
		if twice < runX {
			slack += runX
			y += stepY
		}
	}
}

// DrawRect outlines the axis-aligned rectangle with corners (x0, y0) and
// (x1, y1).
func (c *Canvas) DrawRect(x0, y0, x1, y1 int) {
	c.DrawLine(x0, y0, x1, y0)
	c.DrawLine(x1, y0, x1, y1)
	c.DrawLine(x1, y1, x0, y1)
	c.DrawLine(x0, y1, x0, y0)
}

// Dots returns the drawable size in dots.
func (c *Canvas) Dots() (int, int) {
	return c.Width * 2, c.Height * 4
}

// String renders one line per cell row, each ending in a newline.
func (c *Canvas) String() string {
	var b strings.Builder
	b.Grow(len(c.cells)*3 + c.Height)
	for row := 0; row < c.Height; row++ {
		b.WriteString(string(c.cells[row*c.Width : (row+1)*c.Width]))
		b.WriteByte('\n')
	}
	return b.String()
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
