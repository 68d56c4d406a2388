package render

import (
	"fmt"
	"math"
	"time"

	"github.com/rationalkeyboard/keys"
	"github.com/rationalkeyboard/keys/harmony"
	"github.com/rationalkeyboard/keys/synth"
)

// Render plays the performance and returns Length() seconds of mono samples.
// Sustain windows are overlap-added every half window and onsets are mixed
// in at the exact sample of their event.
func Render(p Performance, config keys.Config, logger keys.Logger) ([]float64, error) {
	if logger == nil {
		logger = keys.NullLogger{}
	}
	h, err := harmony.New(config.Harmony, logger)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	h.Seed(p.Seed)
	lattice := h.Lattice()
	events, err := p.resolve(lattice)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	sustain, err := synth.NewSynthesizer(synth.SustainInit(lattice, config.Synth))
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	sampleRate := float64(config.Synth.SampleRate)
	window := sustain.NumSamples()
	hop := max(1, window/2)
	length := int(math.Round(p.Length() * sampleRate))
	out := make([]float64, length+2*window)

	onsetInit := synth.OnsetInit(lattice, config.Synth)
	centerFreq := onsetInit.Freqs[lattice.Center()]
	onsets := make(map[int][]float64)
	addOnset := func(index, at int) {
		o, ok := onsets[index]
		if !ok {
			o = synth.Onset(onsetInit.Gain, centerFreq, onsetInit.Freqs[index], onsetInit.NumSamples)
			onsets[index] = o
		}
		for t, v := range o {
			if at+t < len(out) {
				out[at+t] += v
			}
		}
	}

	tickPeriod := config.Harmony.UpdatePeriod()
	hopDuration := time.Duration(float64(hop) / sampleRate * float64(time.Second))
	next := 0
	for pos := 0; pos < length; pos += hop {
		for ; next < len(events) && events[next].time*sampleRate < float64(pos+hop); next++ {
			e := events[next]
			at := int(math.Round(e.time * sampleRate))
			gain := config.Synth.ClickGain
			if e.kind == Swipe {
				gain = config.Synth.SwipeGain
			}
			for _, i := range e.indices {
				if err := h.AddImpulse(i, gain); err != nil {
					return nil, fmt.Errorf("render: %w", err)
				}
				addOnset(i, at)
			}
		}
		for left := hopDuration; left > 0; left -= tickPeriod {
			if err := h.Tick(min(left, tickPeriod)); err != nil {
				return nil, fmt.Errorf("render: %w", err)
			}
		}
		samples, err := sustain.Samples(h.Mass())
		if err != nil {
			return nil, fmt.Errorf("render: %w", err)
		}
		for t, v := range samples {
			out[pos+t] += v
		}
	}
	logger.Log(fmt.Sprintf("rendered %.1f s with %d events", float64(length)/sampleRate, len(events)))
	return out[:length], nil
}
