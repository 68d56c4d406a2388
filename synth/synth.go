// Package synth turns a harmony mass field into sound: an additive
// synthesizer renders the loudest lattice points into short overlapping
// windows, and short plucked onsets are rendered once for every point.
package synth

import (
	"cmp"
	"fmt"
	"math"
	"slices"

	"github.com/rationalkeyboard/keys"
	"github.com/viterin/vek"
)

type (
	// Init configures a Synthesizer. Freqs are angular frequencies in
	// radians per sample, one per lattice point, with the unison at the
	// center. TaskOrder is only used by onset workers.
	Init struct {
		Gain       float64
		Freqs      []float64
		NumVoices  int
		NumSamples int
		SampleRate int
		TaskOrder  []int
	}

	Synthesizer struct {
		init       Init
		numVoices  int
		centerFreq float64
		samples    []float64
	}
)

// Frequencies converts lattice points to angular frequencies in radians per
// sample, with 1/1 sounding at centerHz.
func Frequencies(lattice keys.Lattice, centerHz float64, sampleRate int) []float64 {
	centerFreq := 2 * math.Pi * centerHz / float64(sampleRate)
	ret := lattice.Floats()
	vek.MulNumber_Inplace(ret, centerFreq)
	return ret
}

func (i Init) validate() error {
	if len(i.Freqs) == 0 || len(i.Freqs)%2 == 0 {
		return fmt.Errorf("synth: need an odd number of frequencies, got %d", len(i.Freqs))
	}
	if i.NumSamples <= 0 {
		return fmt.Errorf("synth: numSamples must be positive, got %d", i.NumSamples)
	}
	if i.SampleRate <= 0 {
		return fmt.Errorf("synth: sampleRate must be positive, got %d", i.SampleRate)
	}
	return nil
}

func NewSynthesizer(init Init) (*Synthesizer, error) {
	if err := init.validate(); err != nil {
		return nil, err
	}
	if init.NumVoices <= 0 {
		return nil, fmt.Errorf("synth: numVoices must be positive, got %d", init.NumVoices)
	}
	return &Synthesizer{
		init:       init,
		numVoices:  min(init.NumVoices, len(init.Freqs)),
		centerFreq: init.Freqs[(len(init.Freqs)-1)/2],
		samples:    make([]float64, init.NumSamples),
	}, nil
}

func (s *Synthesizer) NumSamples() int { return s.init.NumSamples }

// Amplitudes returns gain*sqrt(mass) scaled so that the window envelope
// (t+1)(T-t) peaks near 1 for a voice at the center frequency.
func (s *Synthesizer) Amplitudes(mass keys.MassField) ([]float64, error) {
	if len(mass) != len(s.init.Freqs) {
		return nil, fmt.Errorf("synth: mass has %d points, want %d: %w", len(mass), len(s.init.Freqs), keys.ErrLengthMismatch)
	}
	T := float64(s.init.NumSamples)
	normalize := 4 / ((T + 1) * (T + 1))
	amps := vek.Sqrt(mass)
	vek.MulNumber_Inplace(amps, s.init.Gain*normalize*s.centerFreq)
	return amps, nil
}

// SelectVoices returns the indices of the numVoices largest amplitudes,
// largest first, breaking ties by lower index.
func SelectVoices(amps []float64, numVoices int) []int {
	order := make([]int, len(amps))
	for i := range order {
		order[i] = i
	}
	slices.SortFunc(order, func(i, j int) int {
		if c := cmp.Compare(amps[j], amps[i]); c != 0 {
			return c
		}
		return i - j
	})
	return order[:min(numVoices, len(order))]
}

// Samples renders one window. The returned slice is reused by the next call.
func (s *Synthesizer) Samples(mass keys.MassField) ([]float64, error) {
	amps, err := s.Amplitudes(mass)
	if err != nil {
		return nil, err
	}
	voices := SelectVoices(amps, s.numVoices)
	voiceAmps := make([]float64, len(voices))
	voiceFreqs := make([]float64, len(voices))
	for g, f := range voices {
		voiceAmps[g] = amps[f] / s.init.Freqs[f]
		voiceFreqs[g] = s.init.Freqs[f]
	}
	T := s.init.NumSamples
	for t := range s.samples {
		chord := 0.0
		for g, amp := range voiceAmps {
			chord += amp * math.Sin(voiceFreqs[g]*float64(t))
		}
		chord *= float64(t+1) * float64(T-t) // envelope
		s.samples[t] = softClip(chord)
	}
	return s.samples, nil
}

// Synthesize renders one window and encodes it as a Wave.
func (s *Synthesizer) Synthesize(mass keys.MassField) (keys.Wave, error) {
	samples, err := s.Samples(mass)
	if err != nil {
		return nil, err
	}
	return keys.EncodeWave(samples, s.init.SampleRate)
}

// softClip maps the reals smoothly into (-0.5, 0.5).
func softClip(x float64) float64 {
	return 0.5 * x / math.Sqrt(1+x*x)
}
