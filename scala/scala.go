// Package scala exports a lattice as a Scala .scl tuning file.
package scala

import (
	"embed"
	"fmt"
	"io"
	"math"
	"text/template"

	"github.com/Masterminds/sprig"
	"github.com/rationalkeyboard/keys"
)

type (
	Degree struct {
		Ratio keys.Rational
		Cents float64
	}

	Scale struct {
		Name        string
		Description string
		Degrees     []Degree
	}

	Exporter struct {
		Template *template.Template
	}
)

//go:embed templates/*
var templateFS embed.FS

const templateName = "scale.scl"

// NewScale lists the lattice points above 1/1 as scale degrees; Scala
// implies the unison.
func NewScale(name string, radius float64, lattice keys.Lattice) Scale {
	var degrees []Degree
	for _, q := range lattice {
		if keys.Cmp(q, keys.One) > 0 {
			degrees = append(degrees, Degree{Ratio: q, Cents: 1200 * math.Log2(q.Float())})
		}
	}
	return Scale{
		Name:        name,
		Description: fmt.Sprintf("Rational keyboard lattice of radius %v (%d points)", radius, len(lattice)),
		Degrees:     degrees,
	}
}

// New returns an exporter using the embedded template.
func New() (*Exporter, error) {
	tmpl, err := template.New("base").Funcs(sprig.TxtFuncMap()).ParseFS(templateFS, "templates/*")
	if err != nil {
		return nil, fmt.Errorf(`could not create templates: %v`, err)
	}
	return &Exporter{Template: tmpl}, nil
}

// NewFromTemplate returns an exporter using a template file, which must be
// named scale.scl.
func NewFromTemplate(path string) (*Exporter, error) {
	tmpl, err := template.New("base").Funcs(sprig.TxtFuncMap()).ParseFiles(path)
	if err != nil {
		return nil, fmt.Errorf(`could not create template based on file "%v": %v`, path, err)
	}
	if tmpl.Lookup(templateName) == nil {
		return nil, fmt.Errorf(`template file "%v" is not named %v`, path, templateName)
	}
	return &Exporter{Template: tmpl}, nil
}

func (e *Exporter) Export(w io.Writer, s Scale) error {
	if err := e.Template.ExecuteTemplate(w, templateName, s); err != nil {
		return fmt.Errorf(`could not execute template "%v": %v`, templateName, err)
	}
	return nil
}
