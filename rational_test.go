package keys_test

import (
	"errors"
	"math"
	"testing"

	"github.com/rationalkeyboard/keys"
)

func TestGCD(t *testing.T) {
	tests := []struct {
		a, b, want int
	}{
		{0, 0, 1},
		{0, 5, 1},
		{5, 0, 1},
		{1, 1, 1},
		{12, 18, 6},
		{18, 12, 6},
		{7, 3, 1},
		{9, 9, 9},
	}
	for _, tt := range tests {
		if got := keys.GCD(tt.a, tt.b); got != tt.want {
			t.Errorf("GCD(%d, %d) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestNewRational(t *testing.T) {
	tests := []struct {
		m, n int
		want string
	}{
		{6, 4, "3/2"},
		{3, 2, "3/2"},
		{0, 5, "0/1"},
		{5, 0, "1/0"},
		{7, 7, "1/1"},
	}
	for _, tt := range tests {
		q, err := keys.NewRational(tt.m, tt.n)
		if err != nil {
			t.Fatalf("NewRational(%d, %d) error: %v", tt.m, tt.n, err)
		}
		if q.String() != tt.want {
			t.Errorf("NewRational(%d, %d) = %v, want %v", tt.m, tt.n, q, tt.want)
		}
		if keys.GCD(q.Numer(), q.Denom()) != 1 {
			t.Errorf("NewRational(%d, %d) = %v is not in lowest terms", tt.m, tt.n, q)
		}
	}
	for _, bad := range [][2]int{{0, 0}, {-1, 2}, {1, -2}} {
		if _, err := keys.NewRational(bad[0], bad[1]); !errors.Is(err, keys.ErrInvalidRational) {
			t.Errorf("NewRational(%d, %d) error = %v, want ErrInvalidRational", bad[0], bad[1], err)
		}
	}
}

func TestParseRational(t *testing.T) {
	tests := []struct {
		input string
		want  string
		err   bool
	}{
		{"3/2", "3/2", false},
		{" 4 / 6 ", "2/3", false},
		{"5", "5/1", false},
		{"0/0", "", true},
		{"a/b", "", true},
		{"1/x", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			q, err := keys.ParseRational(tt.input)
			if tt.err {
				if !errors.Is(err, keys.ErrInvalidRational) {
					t.Fatalf("ParseRational(%q) error = %v, want ErrInvalidRational", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseRational(%q) error: %v", tt.input, err)
			}
			if q.String() != tt.want {
				t.Fatalf("ParseRational(%q) = %v, want %v", tt.input, q, tt.want)
			}
		})
	}
}

func TestRationalArithmetic(t *testing.T) {
	half, _ := keys.NewRational(1, 2)
	third, _ := keys.NewRational(1, 3)
	fifth, _ := keys.NewRational(3, 2)
	twoThirds, _ := keys.NewRational(2, 3)
	threeQuarters, _ := keys.NewRational(3, 4)
	if got := keys.Mul(twoThirds, threeQuarters); got != half {
		t.Errorf("2/3 * 3/4 = %v, want 1/2", got)
	}
	if got := keys.Add(half, third).String(); got != "5/6" {
		t.Errorf("1/2 + 1/3 = %v, want 5/6", got)
	}
	if got := keys.Div(fifth, fifth); got != keys.One {
		t.Errorf("3/2 / 3/2 = %v, want 1/1", got)
	}
	if got := fifth.Recip(); got != twoThirds {
		t.Errorf("recip of 3/2 = %v, want 2/3", got)
	}
	if keys.Cmp(half, twoThirds) >= 0 || keys.Cmp(fifth, half) <= 0 || keys.Cmp(half, half) != 0 {
		t.Errorf("Cmp orders 1/2, 2/3, 3/2 incorrectly")
	}
	if !math.IsInf(keys.Inf.Float(), 1) || keys.Zero.Float() != 0 {
		t.Errorf("endpoints have wrong float values: %v %v", keys.Zero.Float(), keys.Inf.Float())
	}
	if keys.Zero.IsNormal() || keys.Inf.IsNormal() || !fifth.IsNormal() {
		t.Errorf("IsNormal is wrong")
	}
}

func TestDist(t *testing.T) {
	two, _ := keys.NewRational(2, 1)
	fifth, _ := keys.NewRational(3, 2)
	if got := keys.Dist(fifth, keys.One); math.Abs(got-math.Sqrt(13)) > 1e-12 {
		t.Errorf("Dist(3/2, 1/1) = %v, want sqrt(13)", got)
	}
	if got := keys.DistSquared(two, fifth); got != 25 {
		t.Errorf("DistSquared(2/1, 3/2) = %v, want 25 (4/3)", got)
	}
	if keys.Dist(two, fifth) != keys.Dist(fifth, two) {
		t.Errorf("Dist is not symmetric")
	}
}

func TestDivZeroByZeroPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("0/1 divided by 0/1 did not panic")
		}
	}()
	keys.Div(keys.Zero, keys.Zero)
}
