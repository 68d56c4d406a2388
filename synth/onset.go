package synth

import (
	"cmp"
	"math"
	"slices"

	"github.com/rationalkeyboard/keys"
)

// Onset renders a decaying pluck at angular frequency freq. Lower notes are
// louder, in proportion to centerFreq/freq.
func Onset(gain, centerFreq, freq float64, numSamples int) []float64 {
	T := float64(numSamples)
	g := gain * centerFreq / freq / T
	ret := make([]float64, numSamples)
	for t := range ret {
		ret[t] = softClip(g * (T - float64(t)) * math.Sin(freq*float64(t)))
	}
	return ret
}

// OnsetOrder lists lattice indices by ascending norm, so that the simplest
// ratios get their onsets first.
func OnsetOrder(lattice keys.Lattice) []int {
	norms := lattice.Norms()
	order := make([]int, len(lattice))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(i, j int) int { return cmp.Compare(norms[i], norms[j]) })
	return order
}

// OnsetInit is the worker configuration that renders onsets of twice the
// window length for every lattice point.
func OnsetInit(lattice keys.Lattice, config keys.SynthConfig) Init {
	return Init{
		Gain:       config.OnsetGain,
		Freqs:      Frequencies(lattice, config.CenterHz, config.SampleRate),
		NumSamples: 2 * config.WindowSamples(),
		SampleRate: config.SampleRate,
		TaskOrder:  OnsetOrder(lattice),
	}
}

// SustainInit is the worker configuration of the sustained synthesizer.
func SustainInit(lattice keys.Lattice, config keys.SynthConfig) Init {
	return Init{
		Gain:       config.SustainGain,
		Freqs:      Frequencies(lattice, config.CenterHz, config.SampleRate),
		NumVoices:  min(len(lattice), config.NumVoices),
		NumSamples: config.WindowSamples(),
		SampleRate: config.SampleRate,
	}
}
