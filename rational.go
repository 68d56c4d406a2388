package keys

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Rational is an extended nonnegative rational number m/n in lowest terms.
// Either the numerator or the denominator may be zero, but not both, so 0/1
// and 1/0 are valid endpoints. The zero value is not a valid Rational; use
// NewRational or one of Zero, Inf and One.
type Rational struct {
	numer, denom int
}

var (
	Zero = Rational{0, 1}
	Inf  = Rational{1, 0}
	One  = Rational{1, 1}
)

// GCD returns the greatest common divisor of two nonnegative integers. As a
// convention that keeps Rational construction from ever dividing by zero,
// GCD(a, 0) = GCD(0, a) = 1 for every a, including GCD(0, 0) = 1.
func GCD(a, b int) int {
	if b > a {
		a, b = b, a
	}
	if b == 0 {
		return 1
	}
	for {
		a %= b
		if a == 0 {
			return b
		}
		b %= a
		if b == 0 {
			return a
		}
	}
}

// NewRational returns m/n reduced to lowest terms. Negative arguments and 0/0
// are rejected with ErrInvalidRational.
func NewRational(m, n int) (Rational, error) {
	if m < 0 || n < 0 {
		return Rational{}, fmt.Errorf("%d/%d: %w: negative component", m, n, ErrInvalidRational)
	}
	if m == 0 && n == 0 {
		return Rational{}, fmt.Errorf("0/0: %w", ErrInvalidRational)
	}
	return reduce(m, n), nil
}

// ParseRational parses "m/n" or a plain integer "m" into a Rational.
func ParseRational(s string) (Rational, error) {
	numer, denom, found := strings.Cut(strings.TrimSpace(s), "/")
	m, err := strconv.Atoi(strings.TrimSpace(numer))
	if err != nil {
		return Rational{}, fmt.Errorf("could not parse numerator of %q: %w", s, ErrInvalidRational)
	}
	n := 1
	if found {
		if n, err = strconv.Atoi(strings.TrimSpace(denom)); err != nil {
			return Rational{}, fmt.Errorf("could not parse denominator of %q: %w", s, ErrInvalidRational)
		}
	}
	return NewRational(m, n)
}

// reduce assumes m, n >= 0 and not both zero
func reduce(m, n int) Rational {
	g := GCD(m, n)
	return Rational{numer: m / g, denom: n / g}
}

func (q Rational) Numer() int { return q.numer }
func (q Rational) Denom() int { return q.denom }

func (q Rational) String() string {
	return strconv.Itoa(q.numer) + "/" + strconv.Itoa(q.denom)
}

// Float returns the value of the rational as a float; 1/0 becomes +Inf.
func (q Rational) Float() float64 {
	return float64(q.numer) / float64(q.denom)
}

func (q Rational) Recip() Rational {
	return Rational{numer: q.denom, denom: q.numer}
}

func (q Rational) NormSquared() int {
	return q.numer*q.numer + q.denom*q.denom
}

// Norm is the Euclidean length of (numer, denom). Simple ratios have small
// norms.
func (q Rational) Norm() float64 {
	return math.Sqrt(float64(q.NormSquared()))
}

// IsNormal reports whether q is neither 0/1 nor 1/0.
func (q Rational) IsNormal() bool {
	return q.numer != 0 && q.denom != 0
}

// Cmp compares lhs and rhs by value: negative if lhs < rhs, zero if equal and
// positive if lhs > rhs.
func Cmp(lhs, rhs Rational) int {
	return lhs.numer*rhs.denom - rhs.numer*lhs.denom
}

func Mul(lhs, rhs Rational) Rational {
	return reduce(lhs.numer*rhs.numer, lhs.denom*rhs.denom)
}

// Div panics when both the product numerator and denominator are zero, e.g.
// 0/1 divided by 0/1.
func Div(lhs, rhs Rational) Rational {
	m, n := lhs.numer*rhs.denom, lhs.denom*rhs.numer
	if m == 0 && n == 0 {
		panic(fmt.Sprintf("keys.Div: %v / %v is 0/0", lhs, rhs))
	}
	return reduce(m, n)
}

func Add(lhs, rhs Rational) Rational {
	return reduce(lhs.numer*rhs.denom+lhs.denom*rhs.numer, lhs.denom*rhs.denom)
}

// Dist is the harmonic distance between two ratios: the norm of their
// quotient. Consonant intervals have small distances.
func Dist(lhs, rhs Rational) float64 {
	return Div(lhs, rhs).Norm()
}

func DistSquared(lhs, rhs Rational) int {
	return Div(lhs, rhs).NormSquared()
}
