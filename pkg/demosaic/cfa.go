package demosaic

// A CFA describes the color filter array laid over the sensor: a
// small tile of per-photosite color indexes, repeated across the
// whole sensor. Color indexes are 0=R 1=G 2=B when IsRGB is set;
// four-color sensors (CMYG, RGBE) use indexes 0..3 as channel numbers.

import(
	"fmt"
	"strings"
)

type CFA struct {
	Name    string
	Width   int   // tile width
	Height  int   // tile height
	Pattern []int // per-cell color index, row major, len Width*Height
	IsRGB   bool
}

// ColorAt returns the color index of the photosite at absolute
// sensor coordinates (x,y). Negative coordinates wrap, so edge
// handling code can probe outside the image.
func (c CFA)ColorAt(x, y int) int {
	x = ((x % c.Width) + c.Width) % c.Width
	y = ((y % c.Height) + c.Height) % c.Height
	return c.Pattern[y*c.Width + x]
}

// UniqueColors counts the distinct color indexes in the tile.
func (c CFA)UniqueColors() int {
	seen := map[int]bool{}
	for _, v := range c.Pattern {
		seen[v] = true
	}
	return len(seen)
}

func (c CFA)String() string {
	return fmt.Sprintf("CFA{%s %dx%d}", c.Name, c.Width, c.Height)
}

// NewBayerCFA builds a 2x2 RGB tile from a pattern string such as
// "RGGB" or "GBRG".
func NewBayerCFA(pattern string) (CFA, error) {
	if len(pattern) != 4 {
		return CFA{}, fmt.Errorf("bayer pattern '%s' should have 4 cells", pattern)
	}

	cells := make([]int, 4)
	for i, r := range strings.ToUpper(pattern) {
		switch r {
		case 'R': cells[i] = 0
		case 'G': cells[i] = 1
		case 'B': cells[i] = 2
		default:
			return CFA{}, fmt.Errorf("bayer pattern '%s' has unknown cell '%c'", pattern, r)
		}
	}

	return CFA{Name:pattern, Width:2, Height:2, Pattern:cells, IsRGB:true}, nil
}

// NewXTransCFA returns the standard Fuji 6x6 X-Trans tile.
func NewXTransCFA() CFA {
	const p = "GBGGRG" + "RGRBGB" + "GBGGRG" + "GRGGBG" + "BGBRGR" + "GRGGBG"

	cells := make([]int, 36)
	for i, r := range p {
		switch r {
		case 'R': cells[i] = 0
		case 'G': cells[i] = 1
		case 'B': cells[i] = 2
		}
	}

	return CFA{Name:"X-Trans", Width:6, Height:6, Pattern:cells, IsRGB:true}
}
