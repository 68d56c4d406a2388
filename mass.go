package keys

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/viterin/vek"
)

// MassField is a vector of nonnegative weights ("likes") indexed by lattice
// index. Depending on context it is a likelihood, a probability (after
// Normalize) or a loudness weighting.
type MassField []float64

// ZeroMass returns a field of n zero weights.
func ZeroMass(n int) MassField {
	return make(MassField, n)
}

// Degenerate returns a field of length n with all mass at index i.
func Degenerate(i, n int) (MassField, error) {
	if i < 0 || i >= n {
		return nil, fmt.Errorf("Degenerate(%d, %d): %w", i, n, ErrIndexOutOfRange)
	}
	ret := make(MassField, n)
	ret[i] = 1
	return ret, nil
}

// Uniform returns a normalized field of length n with equal weights.
func Uniform(n int) MassField {
	ret := make(MassField, n)
	for i := range ret {
		ret[i] = 1 / float64(n)
	}
	return ret
}

func (m MassField) Clone() MassField {
	ret := make(MassField, len(m))
	copy(ret, m)
	return ret
}

func (m MassField) Total() float64 {
	if len(m) == 0 {
		return 0
	}
	return vek.Sum(m)
}

func (m MassField) Max() float64 {
	if len(m) == 0 {
		return 0
	}
	return vek.Max(m)
}

// Normalize scales the weights in place so that they sum to 1.
func (m MassField) Normalize() error {
	total := m.Total()
	if !(total > 0) {
		return fmt.Errorf("cannot normalize: %w (total = %v)", ErrDegenerateMass, total)
	}
	vek.MulNumber_Inplace(m, 1/total)
	return nil
}

func (m MassField) Scale(s float64) {
	if len(m) == 0 {
		return
	}
	vek.MulNumber_Inplace(m, s)
}

// Dot returns the inner product of the weights with values. values must have
// at least as many elements as the field; the caller guarantees dimension.
func (m MassField) Dot(values []float64) float64 {
	if len(m) == 0 {
		return 0
	}
	return vek.Dot(m, values[:len(m)])
}

// AddScaled adds scale*other to the field in place.
func (m MassField) AddScaled(other MassField, scale float64) error {
	if len(m) != len(other) {
		return fmt.Errorf("AddScaled: %w (%d != %d)", ErrLengthMismatch, len(m), len(other))
	}
	for i, v := range other {
		m[i] += scale * v
	}
	return nil
}

// ShiftTowards replaces the field in place with the convex combination
// (1-rate)*m + rate*target. It is the primitive of all exponential
// relaxation in the harmony update.
func (m MassField) ShiftTowards(target MassField, rate float64) error {
	if len(m) != len(target) {
		return fmt.Errorf("ShiftTowards: %w (%d != %d)", ErrLengthMismatch, len(m), len(target))
	}
	if !(0 <= rate && rate <= 1) {
		return fmt.Errorf("ShiftTowards: %w (rate = %v)", ErrInvalidRate, rate)
	}
	w0, w1 := 1-rate, rate
	for i, t := range target {
		m[i] = w0*m[i] + w1*t
	}
	return nil
}

// Truncate subtracts threshold from every weight, drops the entries that
// become nonpositive and compacts the rest, keeping their order. It returns
// the original indices of the kept entries.
func (m *MassField) Truncate(threshold float64) []int {
	old := *m
	kept := old[:0]
	indices := make([]int, 0, len(old))
	for i, v := range old {
		if like := v - threshold; like > 0 {
			kept = append(kept, like)
			indices = append(indices, i)
		}
	}
	*m = kept
	return indices
}

// Sample draws an index with probability proportional to its weight. If rng is
// nil, the global source of math/rand/v2 is used.
func (m MassField) Sample(rng *rand.Rand) (int, error) {
	total := m.Total()
	if !(total > 0) {
		return 0, fmt.Errorf("cannot sample: %w", ErrDegenerateMass)
	}
	float := rand.Float64
	if rng != nil {
		float = rng.Float64
	}
	for { // round-off may leave t slightly positive after the last entry
		t := float() * total
		for i, v := range m {
			if t -= v; t < 0 {
				return i, nil
			}
		}
	}
}

// Multiply returns the elementwise product of two fields.
func Multiply(lhs, rhs MassField) (MassField, error) {
	if len(lhs) != len(rhs) {
		return nil, fmt.Errorf("Multiply: %w (%d != %d)", ErrLengthMismatch, len(lhs), len(rhs))
	}
	ret := make(MassField, len(lhs))
	if len(ret) > 0 {
		vek.Mul_Into(ret, lhs, rhs)
	}
	return ret, nil
}

// DefaultTemperature is the temperature used by the harmony engine.
const DefaultTemperature = 1

// Boltzmann returns the normalized field exp(-energy[i]/temperature). Lower
// energies get higher likelihoods. The exponent is taken relative to the
// minimum energy, which leaves the normalized result unchanged but keeps at
// least one weight equal to 1 before normalization.
func Boltzmann(energy []float64, temperature float64) (MassField, error) {
	if !(temperature > 0) {
		return nil, fmt.Errorf("Boltzmann: %w (temperature = %v)", ErrInvalidTemperature, temperature)
	}
	if len(energy) == 0 {
		return nil, fmt.Errorf("Boltzmann: %w", ErrDegenerateMass)
	}
	minEnergy := math.Inf(1)
	for _, e := range energy {
		minEnergy = min(minEnergy, e)
	}
	ret := make(MassField, len(energy))
	for i, e := range energy {
		ret[i] = math.Exp(-(e - minEnergy) / temperature)
	}
	if err := ret.Normalize(); err != nil {
		return nil, fmt.Errorf("Boltzmann: %w", err)
	}
	return ret, nil
}
