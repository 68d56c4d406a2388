package keyboard

import (
	"fmt"
	"math"
	"slices"

	"github.com/rationalkeyboard/keys"
	"github.com/rationalkeyboard/keys/harmony"
	"github.com/viterin/vek"
)

// Piano hangs a key from the top of the window for every likely point. Key
// length grows with the log probability and width with length; keys are
// packed left to right in lattice order, overlapping where their lengths
// differ a lot. Shorter keys are drawn in front.
type Piano struct {
	KeyThresh    float64
	CornerRadius float64

	indices     []int
	depthSorted []int
	xpos, ypos  []float64
	radii       []float64
	keys        []Key
}

func (p *Piano) Name() string { return "piano" }

func (p *Piano) Update(lattice keys.Lattice, s harmony.Snapshot, width, height float64) error {
	probs, indices, err := truncatedPrior(s, p.KeyThresh)
	if err != nil {
		return fmt.Errorf("piano: %w", err)
	}
	K := len(indices)
	p.indices = indices
	p.keys = p.keys[:0]
	if K == 0 {
		p.depthSorted, p.xpos, p.ypos, p.radii = nil, nil, nil, nil
		return nil
	}

	ymin := math.Log(p.KeyThresh)
	ypos := make([]float64, K)
	for k, prob := range probs {
		ypos[k] = math.Log(prob + p.KeyThresh)
	}
	ymax := vek.Max(ypos)
	for k := range ypos {
		ypos[k] = (ypos[k] - ymin) / (ymax - ymin)
	}

	radii := make([]float64, K)
	for k, y := range ypos {
		radii[k] = 1 - (1-y)*(1-y)
	}
	xpos := make([]float64, K)
	xmax := 0.0
	for k := range xpos {
		r, y := radii[k], ypos[k]
		x := r
		for k2 := 0; k2 < k; k2++ {
			r2, y2 := radii[k2], ypos[k2]
			if y == 0 || y2 == 0 {
				continue
			}
			padding := (r2 + r) * math.Pow(2/(y2/y+y/y2), 8)
			x = max(x, xpos[k2]+padding)
		}
		xpos[k] = x
		xmax = max(xmax, x+r)
	}
	vek.MulNumber_Inplace(xpos, 1/xmax)
	vek.MulNumber_Inplace(radii, 1/xmax)

	depthSorted := allIndices(K)
	slices.SortStableFunc(depthSorted, func(k1, k2 int) int {
		switch {
		case ypos[k1] > ypos[k2]:
			return -1
		case ypos[k1] < ypos[k2]:
			return 1
		}
		return 0
	})
	p.depthSorted, p.xpos, p.ypos, p.radii = depthSorted, xpos, ypos, radii

	color, active := keyColors(s, indices)
	aspect := 1.0
	if height > 0 {
		aspect = width / height
	}
	for _, k := range depthSorted {
		x, y, r := xpos[k], ypos[k], radii[k]
		corner := r * p.CornerRadius * aspect // vertical extent of the rounded corner
		outline := []Point{{x - r, 0}, {x - r, y - corner}}
		outline = quadTo(outline, Point{x - r, y - corner}, Point{x - r, y}, Point{x - r*(1-p.CornerRadius), y}, 4)
		outline = append(outline, Point{x + r*(1-p.CornerRadius), y})
		outline = quadTo(outline, Point{x + r*(1-p.CornerRadius), y}, Point{x + r, y}, Point{x + r, y - corner}, 4)
		outline = append(outline, Point{x + r, 0})
		alpha := 0.0
		if r*width >= 6 {
			alpha = 1
		}
		p.keys = append(p.keys, Key{
			Index:      indices[k],
			Outline:    outline,
			Color:      KeyColor(color[k], active[k]),
			LabelAt:    Point{x, y},
			LabelAlpha: alpha,
		})
	}
	return nil
}

func (p *Piano) Keys() []Key { return p.keys }

func (p *Piano) Click(x, y float64) (int, bool) {
	for d := len(p.depthSorted) - 1; d >= 0; d-- {
		k := p.depthSorted[d]
		if y <= p.ypos[k] && math.Abs(x-p.xpos[k]) <= p.radii[k] {
			return p.indices[k], true
		}
	}
	return 0, false
}

// Swipe returns the keys whose center line was crossed, among those long
// enough to reach both endpoints.
func (p *Piano) Swipe(x0, y0, x1, y1 float64) []int {
	if x0 == x1 && y0 == y1 {
		return nil
	}
	var ret []int
	for k, i := range p.indices {
		y := p.ypos[k]
		if y0 > y || y1 > y {
			continue
		}
		x := p.xpos[k]
		if (x0-x)*(x-x1) > 0 {
			ret = append(ret, i)
		}
	}
	return ret
}
