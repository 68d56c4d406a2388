package keys

import (
	"fmt"
	"math"
	"slices"
)

type (
	// Lattice is the ordered set of pitch ratios an instrument can play,
	// sorted ascending by value. A valid lattice always has an odd number of
	// points, symmetric around the unison 1/1 at Center().
	Lattice []Rational

	// Dissonance is a symmetric matrix of harmonic distances between the
	// points of a Lattice; row i is the distance of every point to point i.
	Dissonance [][]float64
)

// Ball returns all reduced ratios i/j, i,j >= 1, with i*i + j*j <= radius*radius,
// sorted ascending by value.
func Ball(radius float64) (Lattice, error) {
	if !(radius > 0) {
		return nil, fmt.Errorf("Ball(%v): %w", radius, ErrInvalidRadius)
	}
	r2 := radius * radius
	var ret Lattice
	for i := 1; float64(i) <= radius; i++ {
		for j := 1; float64(i*i+j*j) <= r2; j++ {
			if GCD(i, j) == 1 {
				ret = append(ret, Rational{numer: i, denom: j})
			}
		}
	}
	slices.SortFunc(ret, Cmp)
	if err := ret.Validate(); err != nil {
		return nil, fmt.Errorf("Ball(%v): %w", radius, err)
	}
	return ret, nil
}

// Validate checks that the lattice is nonempty and has an odd number of
// points.
func (l Lattice) Validate() error {
	if len(l) == 0 {
		return ErrEmptyLattice
	}
	if len(l)%2 == 0 {
		return fmt.Errorf("%w: %d points", ErrEvenLattice, len(l))
	}
	return nil
}

// Center is the index of the middle point, which is 1/1 for lattices built
// with Ball.
func (l Lattice) Center() int {
	return (len(l) - 1) / 2
}

// IndexOf returns the index of q in the lattice, or -1 if q is not in it.
func (l Lattice) IndexOf(q Rational) int {
	i, found := slices.BinarySearchFunc(l, q, Cmp)
	if !found {
		return -1
	}
	return i
}

func (l Lattice) Floats() []float64 {
	ret := make([]float64, len(l))
	for i, q := range l {
		ret[i] = q.Float()
	}
	return ret
}

func (l Lattice) Norms() []float64 {
	ret := make([]float64, len(l))
	for i, q := range l {
		ret[i] = q.Norm()
	}
	return ret
}

// Cents returns the interval of each point relative to 1/1 in cents.
func (l Lattice) Cents() []float64 {
	ret := make([]float64, len(l))
	for i, q := range l {
		ret[i] = 1200 * math.Log2(q.Float())
	}
	return ret
}

// Dissonance computes the matrix of pairwise distances Dist(l[i], l[j]).
func (l Lattice) Dissonance() Dissonance {
	ret := make(Dissonance, len(l))
	for i := range l {
		ret[i] = make([]float64, len(l))
	}
	for i := range l {
		ret[i][i] = Dist(l[i], l[i])
		for j := 0; j < i; j++ {
			d := Dist(l[i], l[j])
			ret[i][j] = d
			ret[j][i] = d
		}
	}
	return ret
}
