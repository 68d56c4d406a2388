package keys_test

import (
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/rationalkeyboard/keys"
)

func TestBallSmall(t *testing.T) {
	lattice, err := keys.Ball(4)
	if err != nil {
		t.Fatalf("Ball(4) error: %v", err)
	}
	var got []string
	for _, q := range lattice {
		got = append(got, q.String())
	}
	want := []string{"1/3", "1/2", "2/3", "1/1", "3/2", "2/1", "3/1"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Ball(4) = %v, want %v", got, want)
	}
	if lattice.Center() != 3 || lattice.IndexOf(keys.One) != 3 {
		t.Fatalf("1/1 is not at the center of %v", got)
	}
}

func TestBallInvariants(t *testing.T) {
	for radius := 1.5; radius < 30; radius += 0.7 {
		lattice, err := keys.Ball(radius)
		if err != nil {
			t.Fatalf("Ball(%v) error: %v", radius, err)
		}
		if len(lattice)%2 != 1 {
			t.Fatalf("Ball(%v) has even size %d", radius, len(lattice))
		}
		if lattice[lattice.Center()] != keys.One {
			t.Fatalf("Ball(%v) center is %v", radius, lattice[lattice.Center()])
		}
		for i, q := range lattice {
			if keys.GCD(q.Numer(), q.Denom()) != 1 {
				t.Fatalf("Ball(%v)[%d] = %v is not reduced", radius, i, q)
			}
			if float64(q.NormSquared()) > radius*radius {
				t.Fatalf("Ball(%v)[%d] = %v is outside the ball", radius, i, q)
			}
			if i > 0 && keys.Cmp(lattice[i-1], q) >= 0 {
				t.Fatalf("Ball(%v) is not strictly ascending at %d", radius, i)
			}
			if lattice.IndexOf(q) != i {
				t.Fatalf("Ball(%v).IndexOf(%v) = %d, want %d", radius, q, lattice.IndexOf(q), i)
			}
		}
	}
}

func TestBallErrors(t *testing.T) {
	for _, radius := range []float64{0, -1, math.NaN()} {
		if _, err := keys.Ball(radius); !errors.Is(err, keys.ErrInvalidRadius) {
			t.Errorf("Ball(%v) error = %v, want ErrInvalidRadius", radius, err)
		}
	}
	if _, err := keys.Ball(1); !errors.Is(err, keys.ErrEmptyLattice) {
		t.Errorf("Ball(1) error = %v, want ErrEmptyLattice", err)
	}
	even := keys.Lattice{keys.One, keys.Inf}
	if err := even.Validate(); !errors.Is(err, keys.ErrEvenLattice) {
		t.Errorf("Validate of a 2 point lattice = %v, want ErrEvenLattice", err)
	}
}

func TestDissonance(t *testing.T) {
	lattice, err := keys.Ball(8)
	if err != nil {
		t.Fatalf("Ball(8) error: %v", err)
	}
	d := lattice.Dissonance()
	if len(d) != len(lattice) {
		t.Fatalf("dissonance has %d rows, want %d", len(d), len(lattice))
	}
	for i := range d {
		if d[i][i] != math.Sqrt2 {
			t.Errorf("d[%d][%d] = %v, want sqrt(2)", i, i, d[i][i])
		}
		for j := range d[i] {
			if d[i][j] != d[j][i] {
				t.Fatalf("dissonance is not symmetric at %d,%d", i, j)
			}
			if want := keys.Dist(lattice[i], lattice[j]); d[i][j] != want {
				t.Fatalf("d[%d][%d] = %v, want %v", i, j, d[i][j], want)
			}
		}
	}
}

func TestCents(t *testing.T) {
	lattice, _ := keys.Ball(4)
	cents := lattice.Cents()
	if cents[lattice.Center()] != 0 {
		t.Errorf("1/1 is %v cents, want 0", cents[lattice.Center()])
	}
	if math.Abs(cents[5]-1200) > 1e-9 {
		t.Errorf("2/1 is %v cents, want 1200", cents[5])
	}
}
