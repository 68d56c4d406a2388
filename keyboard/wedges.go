package keyboard

import (
	"fmt"
	"math"
	"slices"

	"github.com/rationalkeyboard/keys"
	"github.com/rationalkeyboard/keys/harmony"
	"github.com/viterin/vek"
)

// wedgesTextHeight is the space in pixels kept free below the longest wedge
// for its label.
const wedgesTextHeight = 28

// Wedges draws a triangle for every likely point. The apex sits on the top
// edge at the point's log pitch; the base sits at a depth growing with log
// probability, with bases packed side by side in lattice order.
type Wedges struct {
	KeyThresh   float64
	Temperature float64

	indices          []int
	depthSorted      []int
	xtop, xbot, ypos []float64
	radii            []float64
	keys             []Key
}

func (w *Wedges) Name() string { return "wedges" }

func (w *Wedges) Update(lattice keys.Lattice, s harmony.Snapshot, width, height float64) error {
	pitches := make([]float64, len(lattice))
	for i, q := range lattice {
		pitches[i] = math.Log(q.Float())
	}
	minPitch, maxPitch := pitches[0], pitches[len(pitches)-1]
	for i := range pitches {
		if maxPitch > minPitch {
			pitches[i] = (pitches[i] - minPitch) / (maxPitch - minPitch)
		} else {
			pitches[i] = 0.5
		}
	}

	probs, indices, err := truncatedPrior(s, w.KeyThresh)
	if err != nil {
		return fmt.Errorf("wedges: %w", err)
	}
	K := len(indices)
	w.indices = indices
	w.keys = w.keys[:0]
	if K == 0 {
		w.depthSorted, w.xtop, w.xbot, w.ypos, w.radii = nil, nil, nil, nil, nil
		return nil
	}

	ymin := math.Log(w.KeyThresh)
	ypos := make([]float64, K)
	for k, prob := range probs {
		ypos[k] = math.Log(prob + w.KeyThresh)
	}
	ymax := vek.Max(ypos)
	makeRoomForText := 1.0
	if height > wedgesTextHeight {
		makeRoomForText = 1 - wedgesTextHeight/height
	}
	for k := range ypos {
		ypos[k] = ((ypos[k]-ymin)/(ymax-ymin) + 1e-20) * makeRoomForText
	}

	depthSorted := allIndices(K)
	slices.SortStableFunc(depthSorted, func(k1, k2 int) int {
		switch {
		case ypos[k1] < ypos[k2]:
			return -1
		case ypos[k1] > ypos[k2]:
			return 1
		}
		return 0
	})

	xtop := make([]float64, K)
	for k, i := range indices {
		xtop[k] = pitches[i]
	}

	radii := make([]float64, K)
	for k, prob := range probs {
		radii[k] = math.Pow(prob, 1/w.Temperature)
	}
	vek.MulNumber_Inplace(radii, 0.5/vek.Sum(radii))

	xbot := make([]float64, K)
	xbot[0] = radii[0]
	for k := 1; k < K; k++ {
		xbot[k] = xbot[k-1] + radii[k-1] + radii[k]
	}
	for k, y := range ypos {
		xbot[k] = xtop[k] + y*(xbot[k]-xtop[k])
		radii[k] *= y
	}
	w.depthSorted, w.xtop, w.xbot, w.ypos, w.radii = depthSorted, xtop, xbot, ypos, radii

	color, active := keyColors(s, indices)
	for _, k := range depthSorted {
		alpha := 0.0
		if color[k] >= 0.1 {
			alpha = 1
		}
		w.keys = append(w.keys, Key{
			Index:      indices[k],
			Outline:    []Point{{xtop[k], 0}, {xbot[k] - radii[k], ypos[k]}, {xbot[k] + radii[k], ypos[k]}},
			Color:      KeyColor(color[k], active[k]),
			LabelAt:    Point{xbot[k], ypos[k]},
			LabelAlpha: alpha,
		})
	}
	return nil
}

func (w *Wedges) Keys() []Key { return w.keys }

func (w *Wedges) Click(x, y float64) (int, bool) {
	for d := len(w.depthSorted) - 1; d >= 0; d-- {
		k := w.depthSorted[d]
		if y > w.ypos[k] {
			continue
		}
		t := y / w.ypos[k]
		if math.Abs(t*w.xbot[k]+(1-t)*w.xtop[k]-x) <= t*w.radii[k] {
			return w.indices[k], true
		}
	}
	return 0, false
}

// Swipe returns the wedges whose center line was crossed, comparing slopes
// as seen from each apex.
func (w *Wedges) Swipe(x0, y0, x1, y1 float64) []int {
	if (x0 == x1 && y0 == y1) || y0 <= 0 || y1 <= 0 {
		return nil
	}
	var ret []int
	for k, i := range w.indices {
		y := w.ypos[k]
		if y0 > y || y1 > y {
			continue
		}
		xt, xb := w.xtop[k], w.xbot[k]
		a := (xb - xt) / y
		a0 := (x0 - xt) / y0
		a1 := (x1 - xt) / y1
		if (a0-a)*(a-a1) > 0 {
			ret = append(ret, i)
		}
	}
	return ret
}
