package keys

import (
	_ "embed"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v2"
)

type (
	Config struct {
		Harmony  HarmonyConfig
		Synth    SynthConfig
		Keyboard KeyboardConfig
	}

	HarmonyConfig struct {
		Radius            float64
		PriorSec          float64
		SustainSec        float64
		AttackSec         float64
		BackgroundGain    float64
		Acuity            float64
		UpdateHz          float64
		RandomizeRate     float64
		PriorWidthOctaves float64
	}

	SynthConfig struct {
		SampleRate  int
		CenterHz    float64
		WindowSec   float64
		NumVoices   int
		SustainGain float64
		OnsetGain   float64
		ClickGain   float64
		SwipeGain   float64
	}

	KeyboardConfig struct {
		UpdateHz     float64
		Style        string
		KeyThresh    float64
		Temperature  float64
		CornerRadius float64
	}
)

// ConfigDirName is the directory under os.UserConfigDir searched for a
// config.yml overriding the defaults.
const ConfigDirName = "rationalkeyboard"

//go:embed config.yml
var defaultConfigYaml []byte

// DefaultConfig returns the built-in configuration.
func DefaultConfig() Config {
	var config Config
	if err := yaml.UnmarshalStrict(defaultConfigYaml, &config); err != nil {
		panic(fmt.Errorf("failed to unmarshal default config: %w", err))
	}
	return config
}

// LoadConfig returns the defaults, overlaid by the user's config.yml if it
// exists, overlaid by the files given as arguments. Fields missing from an
// overlay keep their previous values.
func LoadConfig(files ...string) (Config, error) {
	config := DefaultConfig()
	if configDir, err := os.UserConfigDir(); err == nil {
		path := filepath.Join(configDir, ConfigDirName, "config.yml")
		if err := overlayConfig(path, &config); err != nil && !errors.Is(err, os.ErrNotExist) {
			return config, err
		}
	}
	for _, file := range files {
		if err := overlayConfig(file, &config); err != nil {
			return config, err
		}
	}
	return config, config.Validate()
}

func overlayConfig(path string, config *Config) error {
	bytes, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.UnmarshalStrict(bytes, config); err != nil {
		return fmt.Errorf("could not parse config %v: %w", path, err)
	}
	return nil
}

func (c *Config) Validate() error {
	positive := []struct {
		name  string
		value float64
	}{
		{"harmony.radius", c.Harmony.Radius},
		{"harmony.priorsec", c.Harmony.PriorSec},
		{"harmony.sustainsec", c.Harmony.SustainSec},
		{"harmony.attacksec", c.Harmony.AttackSec},
		{"harmony.acuity", c.Harmony.Acuity},
		{"harmony.updatehz", c.Harmony.UpdateHz},
		{"synth.samplerate", float64(c.Synth.SampleRate)},
		{"synth.centerhz", c.Synth.CenterHz},
		{"synth.windowsec", c.Synth.WindowSec},
		{"synth.numvoices", float64(c.Synth.NumVoices)},
		{"keyboard.updatehz", c.Keyboard.UpdateHz},
		{"keyboard.temperature", c.Keyboard.Temperature},
		{"keyboard.keythresh", c.Keyboard.KeyThresh},
	}
	for _, p := range positive {
		if !(p.value > 0) || math.IsInf(p.value, 1) {
			return fmt.Errorf("config: %v must be positive and finite, got %v", p.name, p.value)
		}
	}
	nonNegative := []struct {
		name  string
		value float64
	}{
		{"harmony.backgroundgain", c.Harmony.BackgroundGain},
		{"harmony.randomizerate", c.Harmony.RandomizeRate},
		{"harmony.priorwidthoctaves", c.Harmony.PriorWidthOctaves},
		{"synth.sustaingain", c.Synth.SustainGain},
		{"synth.onsetgain", c.Synth.OnsetGain},
		{"synth.clickgain", c.Synth.ClickGain},
		{"synth.swipegain", c.Synth.SwipeGain},
		{"keyboard.cornerradius", c.Keyboard.CornerRadius},
	}
	for _, p := range nonNegative {
		if !(p.value >= 0) {
			return fmt.Errorf("config: %v must be nonnegative, got %v", p.name, p.value)
		}
	}
	if c.Synth.WindowSamples() < 2 {
		return fmt.Errorf("config: synth.windowsec %v is shorter than two samples", c.Synth.WindowSec)
	}
	return nil
}

// Rate converts a time constant in seconds into a rate per millisecond.
func Rate(timeConstantSec float64) float64 {
	return 1e-3 / timeConstantSec
}

func (h HarmonyConfig) UpdatePeriod() time.Duration {
	return time.Duration(float64(time.Second) / h.UpdateHz)
}

func (k KeyboardConfig) UpdatePeriod() time.Duration {
	return time.Duration(float64(time.Second) / k.UpdateHz)
}

// WindowSamples is the length of one synthesis buffer in samples.
func (s SynthConfig) WindowSamples() int {
	return int(math.Floor(s.WindowSec * float64(s.SampleRate)))
}

// Window is the duration of one synthesis buffer.
func (s SynthConfig) Window() time.Duration {
	return time.Duration(s.WindowSec * float64(time.Second))
}
