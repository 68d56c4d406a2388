package keyboard

import (
	"fmt"

	"github.com/rationalkeyboard/keys"
	"github.com/rationalkeyboard/keys/harmony"
	"github.com/viterin/vek"
)

// Thermal draws every lattice point as a vertical band. Band widths follow
// the prior at a temperature rising from the top of the window to the
// bottom, so the top is dominated by the most consonant points and the bottom
// is nearly uniform.
type Thermal struct {
	geometry [][]float64
	keys     []Key
}

func (t *Thermal) Name() string { return "thermal" }

func (t *Thermal) Update(lattice keys.Lattice, s harmony.Snapshot, width, height float64) error {
	X := len(lattice)
	Y := rows(height)
	geometryYX := make([][]float64, Y)
	for y := range geometryYX {
		temperature := 1 / (1 - 0.8*float64(y)/float64(Y-1))
		widths, err := keys.Boltzmann(s.PriorEnergy, temperature)
		if err != nil {
			return fmt.Errorf("thermal: %w", err)
		}
		geometryYX[y] = edges(widths)
	}
	t.geometry = transpose(geometryYX)

	color, active := keyColors(s, allIndices(X))
	t.keys = t.keys[:0]
	for x := 0; x < X; x++ {
		top := (t.geometry[x][Y-1] + t.geometry[x+1][Y-1]) / 2
		t.keys = append(t.keys, Key{
			Index:      x,
			Outline:    bandOutline(t.geometry, x),
			Color:      KeyColor(color[x], active[x]),
			LabelAt:    Point{top, 0},
			LabelAlpha: labelAlpha(color[x], 0.4),
		})
	}
	return nil
}

func (t *Thermal) Keys() []Key { return t.keys }

func (t *Thermal) Click(x, y float64) (int, bool) {
	return bandClick(t.geometry, x, y)
}

func (t *Thermal) Swipe(x0, y0, x1, y1 float64) []int { return nil }

// edges returns the cumulative sums of widths, starting at 0 and pinned to
// end at exactly 1.
func edges(widths []float64) []float64 {
	ret := make([]float64, len(widths)+1)
	if len(widths) > 0 {
		copy(ret[1:], vek.CumSum(widths))
		ret[len(widths)] = 1
	}
	return ret
}
