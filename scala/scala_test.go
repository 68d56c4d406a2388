package scala_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/rationalkeyboard/keys"
	"github.com/rationalkeyboard/keys/scala"
)

const wantScale = `! rational-keyboard.scl
!
Rational keyboard lattice of radius 4 (7 points)
 3
!
 3/2 ! 701.955 cents
 2/1 ! 1200.000 cents
 3/1 ! 1901.955 cents
`

func TestExport(t *testing.T) {
	lattice, err := keys.Ball(4)
	if err != nil {
		t.Fatalf("Ball failed: %v", err)
	}
	e, err := scala.New()
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	var buf bytes.Buffer
	if err := e.Export(&buf, scala.NewScale("Rational Keyboard", 4, lattice)); err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	if got := buf.String(); got != wantScale {
		t.Errorf("Export wrote\n%s\nwant\n%s", got, wantScale)
	}
}

func TestNewFromTemplate(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scale.scl")
	if err := os.WriteFile(path, []byte(`{{ range .Degrees }}{{ .Ratio }} {{ end }}`), 0644); err != nil {
		t.Fatal(err)
	}
	e, err := scala.NewFromTemplate(path)
	if err != nil {
		t.Fatalf("NewFromTemplate failed: %v", err)
	}
	lattice, _ := keys.Ball(4)
	var buf bytes.Buffer
	if err := e.Export(&buf, scala.NewScale("x", 4, lattice)); err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	if got, want := buf.String(), "3/2 2/1 3/1 "; got != want {
		t.Errorf("Export wrote %q, want %q", got, want)
	}
	other := filepath.Join(dir, "other.txt")
	if err := os.WriteFile(other, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := scala.NewFromTemplate(other); err == nil {
		t.Errorf("NewFromTemplate should reject a template with the wrong name")
	}
}
