package surface

import (
	"image/color"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Braille Patterns: 2x4 dots
// 1 4
// 2 5
// 3 6
// 7 8
//
// Unicode offset 0x2800
var pixelMap = [4][2]int{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

const blank = 0x2800

// Canvas is a terminal surface of braille cells. One world unit is one
// sub-pixel, so a Width x Height canvas spans Width*2 x Height*4 units.
type Canvas struct {
	Width, Height int
	Grid          [][]rune
	fg            [][]color.NRGBA
	bg            [][]color.NRGBA
	background    color.NRGBA
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{
		Width:      w,
		Height:     h,
		Grid:       make([][]rune, h),
		fg:         make([][]color.NRGBA, h),
		bg:         make([][]color.NRGBA, h),
		background: color.NRGBA{R: 10, G: 10, B: 10, A: 0xff},
	}
	for i := range c.Grid {
		c.Grid[i] = make([]rune, w)
		c.fg[i] = make([]color.NRGBA, w)
		c.bg[i] = make([]color.NRGBA, w)
	}
	c.Clear()
	return c
}

// Bounds is the canvas extent in world units.
func (c *Canvas) Bounds() (w, h float64) {
	return float64(c.Width * 2), float64(c.Height * 4)
}

// Set sets a pixel at (x, y) where x,y are in "sub-pixel" coordinates.
func (c *Canvas) Set(x, y int) {
	if x < 0 || y < 0 {
		return
	}

	col := x / 2
	row := y / 4
	if col >= c.Width || row >= c.Height {
		return
	}

	c.Grid[row][col] |= rune(pixelMap[y%4][x%2])
}

func (c *Canvas) Lit(x, y int) bool {
	if x < 0 || y < 0 || x/2 >= c.Width || y/4 >= c.Height {
		return false
	}
	return c.Grid[y/4][x/2]&rune(pixelMap[y%4][x%2]) != 0
}

// Clear resets the canvas
func (c *Canvas) Clear() {
	for i := range c.Grid {
		for j := range c.Grid[i] {
			c.Grid[i][j] = blank
			c.fg[i][j] = color.NRGBA{}
			c.bg[i][j] = c.background
		}
	}
}

// FillRect tints the background of every cell the rectangle touches.
func (c *Canvas) FillRect(left, top, right, bottom float64, col color.Color) {
	c0, c1 := clampCell(left/2, c.Width), clampCell(math.Ceil(right/2), c.Width)
	r0, r1 := clampCell(top/4, c.Height), clampCell(math.Ceil(bottom/4), c.Height)
	for row := r0; row < r1; row++ {
		for cc := c0; cc < c1; cc++ {
			c.bg[row][cc] = over(c.bg[row][cc], col)
		}
	}
}

// FillCircle lights every sub-pixel whose centre lies inside the circle.
func (c *Canvas) FillCircle(cx, cy, r float64, col color.Color) {
	if r <= 0 {
		return
	}
	fill := color.NRGBAModel.Convert(col).(color.NRGBA)
	x0, x1 := int(math.Floor(cx-r)), int(math.Ceil(cx+r))
	y0, y1 := int(math.Floor(cy-r)), int(math.Ceil(cy+r))
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			dx, dy := float64(x)+0.5-cx, float64(y)+0.5-cy
			if dx*dx+dy*dy > r*r {
				continue
			}
			c.Set(x, y)
			if x >= 0 && y >= 0 && x/2 < c.Width && y/4 < c.Height {
				c.fg[y/4][x/2] = fill
			}
		}
	}
}

// String is the canvas as plain braille text, one line per row.
func (c *Canvas) String() string {
	var b strings.Builder
	for _, row := range c.Grid {
		b.WriteString(string(row) + "\n")
	}
	return b.String()
}

// Render draws the canvas with cell colours, batching runs of equal style.
func (c *Canvas) Render() string {
	var b strings.Builder
	for row := range c.Grid {
		start := 0
		for col := 1; col <= c.Width; col++ {
			if col < c.Width && c.fg[row][col] == c.fg[row][start] && c.bg[row][col] == c.bg[row][start] {
				continue
			}
			style := lipgloss.NewStyle().Background(lipgloss.Color(Hex(c.bg[row][start])))
			if c.fg[row][start].A != 0 {
				style = style.Foreground(lipgloss.Color(Hex(c.fg[row][start])))
			}
			b.WriteString(style.Render(string(c.Grid[row][start:col])))
			start = col
		}
		if row < c.Height-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func clampCell(v float64, n int) int {
	i := int(math.Floor(v))
	if i < 0 {
		return 0
	}
	if i > n {
		return n
	}
	return i
}
