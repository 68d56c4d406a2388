package keyboard

import (
	"fmt"
	"math"

	"github.com/rationalkeyboard/keys"
	"github.com/rationalkeyboard/keys/harmony"
)

const (
	flowKeyThresh   = 1e-3
	flowKeyExponent = 8
)

// Flow draws only the likely points, as bands that are widest at the height
// matching their probability: likely keys bulge near the top, unlikely ones
// near the bottom.
type Flow struct {
	geometry [][]float64
	indices  []int
	keys     []Key
}

func (f *Flow) Name() string { return "flow" }

func (f *Flow) Update(lattice keys.Lattice, s harmony.Snapshot, width, height float64) error {
	probs, indices, err := truncatedPrior(s, flowKeyThresh)
	if err != nil {
		return fmt.Errorf("flow: %w", err)
	}
	f.indices = indices
	f.keys = f.keys[:0]
	K := len(indices)
	if K == 0 {
		f.geometry = nil
		return nil
	}
	if err := probs.Normalize(); err != nil {
		return fmt.Errorf("flow: %w", err)
	}
	probs.Scale((1 - 0.5/flowKeyExponent) / probs.Max())

	Y := rows(height + width)
	geometryYX := make([][]float64, Y)
	widths := make(keys.MassField, K)
	for y := range geometryYX {
		y01 := (float64(y) + 0.5) / float64(Y) * (1 - 0.5/flowKeyExponent)
		for k, p := range probs {
			widths[k] = math.Pow(p, flowKeyExponent*(1-y01)) * math.Pow(1-p, flowKeyExponent*y01)
		}
		if err := widths.Normalize(); err != nil {
			return fmt.Errorf("flow: %w", err)
		}
		geometryYX[y] = edges(widths)
	}
	f.geometry = transpose(geometryYX)

	color, active := keyColors(s, indices)
	for k, i := range indices {
		// the label sits where the band is widest, at height 1-p
		p := probs[k]
		py := (1 - p) * float64(Y-1)
		y0 := min(Y-2, int(math.Floor(py)))
		w0 := float64(y0+1) - py
		w1 := py - float64(y0)
		lhs := w0*f.geometry[k][y0] + w1*f.geometry[k][y0+1]
		rhs := w0*f.geometry[k+1][y0] + w1*f.geometry[k+1][y0+1]
		f.keys = append(f.keys, Key{
			Index:      i,
			Outline:    bandOutline(f.geometry, k),
			Color:      KeyColor(color[k], active[k]),
			LabelAt:    Point{(lhs + rhs) / 2, p},
			LabelAlpha: labelAlpha(color[k], 0.25),
		})
	}
	return nil
}

func (f *Flow) Keys() []Key { return f.keys }

func (f *Flow) Click(x, y float64) (int, bool) {
	k, ok := bandClick(f.geometry, x, y)
	if !ok {
		return 0, false
	}
	return f.indices[k], true
}

func (f *Flow) Swipe(x0, y0, x1, y1 float64) []int { return nil }

func labelAlpha(c, thresh float64) float64 {
	if c <= thresh {
		return 0
	}
	return math.Sqrt((c - thresh) / (1 - thresh))
}
