// Package keyboard lays out the lattice as an on-screen keyboard whose keys
// grow and shrink with the harmony prior, and maps pointer gestures back to
// lattice indices.
//
// All geometry lives in the unit square with y pointing down, so (0,0) is the
// top-left corner of the window and (1,1) the bottom-right.
package keyboard

import (
	"fmt"
	"math"

	"github.com/rationalkeyboard/keys"
	"github.com/rationalkeyboard/keys/harmony"
)

type (
	Point struct {
		X, Y float64
	}

	// Color components are in [0,1].
	Color struct {
		R, G, B float64
	}

	Key struct {
		Index   int
		Outline []Point
		Color   Color
		// Label is shown at LabelAt with opacity LabelAlpha; zero alpha hides it.
		LabelAt    Point
		LabelAlpha float64
	}

	// Style computes key geometry from a harmony snapshot and hit tests
	// against it. Update must be called before Keys, Click or Swipe.
	Style interface {
		Name() string
		// Update recomputes the geometry for a window of the given size in
		// pixels. The size only affects resolution and text padding.
		Update(lattice keys.Lattice, s harmony.Snapshot, width, height float64) error
		// Keys lists the keys back to front.
		Keys() []Key
		// Click returns the lattice index under (x, y), if any.
		Click(x, y float64) (int, bool)
		// Swipe returns the lattice indices crossed by moving from (x0, y0)
		// to (x1, y1). Styles without swiping return nil.
		Swipe(x0, y0, x1, y1 float64) []int
	}
)

// StyleNames lists the available styles.
var StyleNames = []string{"thermal", "flow", "piano", "wedges"}

// NewStyle returns the style with the given name.
func NewStyle(name string, config keys.KeyboardConfig) (Style, error) {
	switch name {
	case "thermal":
		return &Thermal{}, nil
	case "flow":
		return &Flow{}, nil
	case "piano":
		return &Piano{KeyThresh: config.KeyThresh, CornerRadius: config.CornerRadius}, nil
	case "wedges":
		return &Wedges{KeyThresh: config.KeyThresh, Temperature: config.Temperature}, nil
	}
	return nil, fmt.Errorf("unknown keyboard style: %q", name)
}

// KeyColor shades a key from white to red: c is the key's brightness from
// the prior and active its recent attack.
func KeyColor(c, active float64) Color {
	g := max(0, c-active)
	return Color{R: min(1, c+active), G: g, B: g}
}

// keyColors returns, for each kept lattice index, sqrt(prior/max prior) and
// 1-exp(-attack).
func keyColors(s harmony.Snapshot, indices []int) (color, active []float64) {
	scale := 1 / s.Prior.Max()
	color = make([]float64, len(indices))
	active = make([]float64, len(indices))
	for k, i := range indices {
		color[k] = math.Sqrt(scale * s.Prior[i])
		active[k] = 1 - math.Exp(-s.Attack[i])
	}
	return color, active
}

func allIndices(n int) []int {
	ret := make([]int, n)
	for i := range ret {
		ret[i] = i
	}
	return ret
}

// rows is the vertical resolution of band geometries.
func rows(pixels float64) int {
	return int(math.Floor(2 + math.Sqrt(max(0, pixels))))
}

// truncatedPrior returns the Boltzmann distribution of the prior energy, with
// keyThresh subtracted and the points below it dropped, and the lattice
// indices that were kept.
func truncatedPrior(s harmony.Snapshot, keyThresh float64) (keys.MassField, []int, error) {
	probs, err := keys.Boltzmann(s.PriorEnergy, keys.DefaultTemperature)
	if err != nil {
		return nil, nil, err
	}
	indices := probs.Truncate(keyThresh)
	return probs, indices, nil
}

// quadTo appends n points of the quadratic Bézier curve from p0 through the
// control point c to p1, excluding p0.
func quadTo(points []Point, p0, c, p1 Point, n int) []Point {
	for i := 1; i <= n; i++ {
		t := float64(i) / float64(n)
		u := 1 - t
		points = append(points, Point{
			X: u*u*p0.X + 2*u*t*c.X + t*t*p1.X,
			Y: u*u*p0.Y + 2*u*t*c.Y + t*t*p1.Y,
		})
	}
	return points
}

// bandClick hit tests vertical bands: geometry[k][y] is the left edge of
// band k at row y, rows counted from the bottom.
func bandClick(geometry [][]float64, x01, y01 float64) (int, bool) {
	if len(geometry) < 2 {
		return 0, false
	}
	Y := len(geometry[0])
	y := (1 - y01) * float64(Y-1)
	y0 := max(0, min(Y-2, int(math.Floor(y))))
	y1 := y0 + 1
	w0 := float64(y1) - y
	w1 := y - float64(y0)
	for k := 0; k < len(geometry)-1; k++ {
		if x01 <= w0*geometry[k+1][y0]+w1*geometry[k+1][y1] {
			return k, true
		}
	}
	return 0, false
}

// bandOutline traces band k from its top left down the left edge and back up
// the right edge.
func bandOutline(geometry [][]float64, k int) []Point {
	lhs, rhs := geometry[k], geometry[k+1]
	Y := len(lhs)
	outline := make([]Point, 0, 2*Y)
	for y := Y - 1; y >= 0; y-- {
		outline = append(outline, Point{lhs[y], 1 - float64(y)/float64(Y-1)})
	}
	for y := 0; y < Y; y++ {
		outline = append(outline, Point{rhs[y], 1 - float64(y)/float64(Y-1)})
	}
	return outline
}

// transpose turns rows of cumulative widths into per-band edges.
func transpose(geometryYX [][]float64) [][]float64 {
	if len(geometryYX) == 0 {
		return nil
	}
	ret := make([][]float64, len(geometryYX[0]))
	for k := range ret {
		ret[k] = make([]float64, len(geometryYX))
		for y, row := range geometryYX {
			ret[k][y] = row[k]
		}
	}
	return ret
}
