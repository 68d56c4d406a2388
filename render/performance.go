// Package render plays a scripted performance through the harmony and the
// synthesizer offline, as fast as the machine allows, and returns the
// samples.
package render

import (
	"cmp"
	"encoding/json"
	"fmt"
	"slices"

	"github.com/rationalkeyboard/keys"
	"gopkg.in/yaml.v3"
)

type (
	EventKind string

	// Event presses keys at Time seconds after the start. A click with
	// several ratios plays them as a chord; a swipe crosses them in order.
	Event struct {
		Time   float64   `yaml:"time" json:"time"`
		Kind   EventKind `yaml:"kind" json:"kind"`
		Ratio  string    `yaml:"ratio,omitempty" json:"ratio,omitempty"`
		Ratios []string  `yaml:"ratios,omitempty" json:"ratios,omitempty"`
	}

	// Performance is a list of events. Duration is in seconds; zero renders
	// Tail seconds past the last event.
	Performance struct {
		Duration float64 `yaml:"duration,omitempty" json:"duration,omitempty"`
		Seed     uint64  `yaml:"seed,omitempty" json:"seed,omitempty"`
		Events   []Event `yaml:"events" json:"events"`
	}
)

const (
	Click EventKind = "click"
	Swipe EventKind = "swipe"
)

// Tail is how long a performance without an explicit duration rings after
// its last event, in seconds.
const Tail = 2.0

// Parse reads a performance as JSON, or failing that, as YAML.
func Parse(data []byte) (Performance, error) {
	var p Performance
	if errJSON := json.Unmarshal(data, &p); errJSON != nil {
		p = Performance{}
		if errYaml := yaml.Unmarshal(data, &p); errYaml != nil {
			return Performance{}, fmt.Errorf("the performance could not be parsed as .json (%v) or .yml (%v)", errJSON, errYaml)
		}
	}
	return p, nil
}

// Length returns the duration of the performance in seconds.
func (p Performance) Length() float64 {
	if p.Duration > 0 {
		return p.Duration
	}
	last := 0.0
	for _, e := range p.Events {
		last = max(last, e.Time)
	}
	return last + Tail
}

// resolvedEvent is an event with its ratios looked up in the lattice.
type resolvedEvent struct {
	time    float64
	kind    EventKind
	indices []int
}

// resolve checks the events and sorts them by time; events at the same time
// keep their order.
func (p Performance) resolve(lattice keys.Lattice) ([]resolvedEvent, error) {
	ret := make([]resolvedEvent, 0, len(p.Events))
	for n, e := range p.Events {
		if !(e.Time >= 0) {
			return nil, fmt.Errorf("event %d: negative time %v", n, e.Time)
		}
		if e.Kind != Click && e.Kind != Swipe {
			return nil, fmt.Errorf("event %d: unknown kind %q", n, e.Kind)
		}
		ratios := e.Ratios
		if e.Ratio != "" {
			ratios = append([]string{e.Ratio}, ratios...)
		}
		if len(ratios) == 0 {
			return nil, fmt.Errorf("event %d: no ratios", n)
		}
		indices := make([]int, len(ratios))
		for i, s := range ratios {
			q, err := keys.ParseRational(s)
			if err != nil {
				return nil, fmt.Errorf("event %d: %w", n, err)
			}
			if indices[i] = lattice.IndexOf(q); indices[i] < 0 {
				return nil, fmt.Errorf("event %d: %v is not in the lattice: %w", n, q, keys.ErrIndexOutOfRange)
			}
		}
		ret = append(ret, resolvedEvent{time: e.Time, kind: e.Kind, indices: indices})
	}
	slices.SortStableFunc(ret, func(a, b resolvedEvent) int { return cmp.Compare(a.time, b.time) })
	return ret, nil
}
