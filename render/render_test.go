package render_test

import (
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/rationalkeyboard/keys"
	"github.com/rationalkeyboard/keys/render"
)

const performanceYaml = `
duration: 0.5
seed: 7
events:
  - time: 0.1
    kind: click
    ratio: 3/2
  - time: 0.2
    kind: swipe
    ratios: [1/1, 5/4, 3/2]
`

const performanceJSON = `{"duration": 0.5, "seed": 7, "events": [
  {"time": 0.1, "kind": "click", "ratio": "3/2"},
  {"time": 0.2, "kind": "swipe", "ratios": ["1/1", "5/4", "3/2"]}
]}`

func testConfig() keys.Config {
	config := keys.DefaultConfig()
	config.Harmony.Radius = 8
	config.Synth.SampleRate = 8000
	return config
}

func TestParse(t *testing.T) {
	want := render.Performance{
		Duration: 0.5,
		Seed:     7,
		Events: []render.Event{
			{Time: 0.1, Kind: render.Click, Ratio: "3/2"},
			{Time: 0.2, Kind: render.Swipe, Ratios: []string{"1/1", "5/4", "3/2"}},
		},
	}
	for _, tt := range []struct{ name, data string }{{"yaml", performanceYaml}, {"json", performanceJSON}} {
		t.Run(tt.name, func(t *testing.T) {
			p, err := render.Parse([]byte(tt.data))
			if err != nil {
				t.Fatalf("Parse failed: %v", err)
			}
			if !reflect.DeepEqual(p, want) {
				t.Errorf("Parse = %+v, want %+v", p, want)
			}
		})
	}
	if _, err := render.Parse([]byte("events: [")); err == nil {
		t.Errorf("Parse of broken input should fail")
	}
}

func TestLength(t *testing.T) {
	p := render.Performance{Events: []render.Event{{Time: 1.5}, {Time: 0.5}}}
	if got, want := p.Length(), 1.5+render.Tail; got != want {
		t.Errorf("Length() = %v, want %v", got, want)
	}
	p.Duration = 3
	if got := p.Length(); got != 3 {
		t.Errorf("Length() = %v, want 3", got)
	}
}

func TestRender(t *testing.T) {
	p, err := render.Parse([]byte(performanceYaml))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	config := testConfig()
	samples, err := render.Render(p, config, nil)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if got, want := len(samples), 4000; got != want {
		t.Fatalf("rendered %d samples, want %d", got, want)
	}
	peak := 0.0
	for i, v := range samples {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Fatalf("sample %d is %v", i, v)
		}
		peak = max(peak, math.Abs(v))
	}
	if peak == 0 {
		t.Errorf("rendered silence")
	}
	again, err := render.Render(p, config, nil)
	if err != nil {
		t.Fatalf("second Render failed: %v", err)
	}
	if !reflect.DeepEqual(samples, again) {
		t.Errorf("rendering the same performance twice gave different samples")
	}
}

func TestRenderClickIsLouder(t *testing.T) {
	config := testConfig()
	quiet, err := render.Render(render.Performance{Duration: 0.5}, config, nil)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	loud, err := render.Render(render.Performance{
		Duration: 0.5,
		Events:   []render.Event{{Time: 0.25, Kind: render.Click, Ratio: "3/2"}},
	}, config, nil)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if !reflect.DeepEqual(quiet[:1000], loud[:1000]) {
		t.Errorf("samples before the click should not depend on it")
	}
	energy := func(s []float64) (e float64) {
		for _, v := range s {
			e += v * v
		}
		return
	}
	if energy(loud[2000:]) <= energy(quiet[2000:]) {
		t.Errorf("the click did not add energy")
	}
}

func TestRenderErrors(t *testing.T) {
	tests := []struct {
		name  string
		event render.Event
		is    error
	}{
		{"not in lattice", render.Event{Kind: render.Click, Ratio: "1000/1"}, keys.ErrIndexOutOfRange},
		{"bad ratio", render.Event{Kind: render.Click, Ratio: "x"}, keys.ErrInvalidRational},
		{"bad kind", render.Event{Kind: "tap", Ratio: "1/1"}, nil},
		{"no ratios", render.Event{Kind: render.Swipe}, nil},
		{"negative time", render.Event{Time: -1, Kind: render.Click, Ratio: "1/1"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := render.Performance{Duration: 0.1, Events: []render.Event{tt.event}}
			_, err := render.Render(p, testConfig(), nil)
			if err == nil {
				t.Fatalf("Render should fail")
			}
			if tt.is != nil && !errors.Is(err, tt.is) {
				t.Errorf("Render error %v, want %v", err, tt.is)
			}
		})
	}
}
