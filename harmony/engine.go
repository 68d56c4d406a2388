// Package harmony implements the diffusion of harmonic mass over a lattice
// of just intervals. Clicked keys inject mass into an attack buffer; the mass
// then relaxes towards a prior that favors intervals consonant with whatever
// is currently sounding.
package harmony

import (
	"fmt"
	"math"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/rationalkeyboard/keys"
)

type (
	Engine struct {
		lattice    keys.Lattice
		dissonance keys.Dissonance
		bias       []float64

		priorRate      float64 // per millisecond
		sustainRate    float64
		attackRate     float64
		backgroundGain float64
		acuity         float64
		randomizeRate  float64

		mu       sync.RWMutex
		mass     keys.MassField
		attack   keys.MassField
		prior    keys.MassField
		rng      *rand.Rand
		lastTime time.Time

		profileTime  time.Time
		profileCount int

		task   *keys.Task
		logger keys.Logger
	}

	// Snapshot is a copy of the engine state, safe to keep and modify.
	Snapshot struct {
		Mass        keys.MassField
		Attack      keys.MassField
		Prior       keys.MassField
		PriorEnergy []float64
	}
)

// New builds the lattice of the configured radius and initializes the state:
// all mass on the unison, no attack, and the prior in equilibrium with the
// mass.
func New(config keys.HarmonyConfig, logger keys.Logger) (*Engine, error) {
	if !(config.Acuity > 0) {
		return nil, fmt.Errorf("harmony: acuity must be positive, got %v", config.Acuity)
	}
	for _, sec := range []float64{config.PriorSec, config.SustainSec, config.AttackSec} {
		if !(sec > 0) {
			return nil, fmt.Errorf("harmony: time constants must be positive, got %v", sec)
		}
	}
	lattice, err := keys.Ball(config.Radius)
	if err != nil {
		return nil, fmt.Errorf("harmony: %w", err)
	}
	if logger == nil {
		logger = keys.NullLogger{}
	}
	e := &Engine{
		lattice:        lattice,
		dissonance:     lattice.Dissonance(),
		bias:           make([]float64, len(lattice)),
		priorRate:      keys.Rate(config.PriorSec),
		sustainRate:    keys.Rate(config.SustainSec),
		attackRate:     keys.Rate(config.AttackSec),
		backgroundGain: config.BackgroundGain,
		acuity:         config.Acuity,
		randomizeRate:  config.RandomizeRate,
		rng:            rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		logger:         logger,
	}
	if w := config.PriorWidthOctaves; w > 0 {
		variance := math.Pow(w*math.Ln2, 2)
		for i, q := range lattice {
			logFreq := math.Log(q.Float())
			e.bias[i] = 0.5 * logFreq * logFreq / variance
		}
	}
	e.mass, _ = keys.Degenerate(lattice.Center(), len(lattice))
	e.attack = keys.ZeroMass(len(lattice))
	if e.prior, err = e.boltzmann(e.mass); err != nil {
		return nil, fmt.Errorf("harmony: %w", err)
	}
	period := time.Second
	if config.UpdateHz > 0 {
		period = config.UpdatePeriod()
	}
	e.task = keys.NewTask(period, func() error { return e.Update(time.Now()) }, logger)
	return e, nil
}

func (e *Engine) Lattice() keys.Lattice { return e.lattice }
func (e *Engine) Len() int              { return len(e.lattice) }

// Seed makes the random jitter reproducible.
func (e *Engine) Seed(seed uint64) {
	e.mu.Lock()
	e.rng = rand.New(rand.NewPCG(seed, seed))
	e.mu.Unlock()
}

// Start begins ticking at the configured update rate, using the wall clock.
func (e *Engine) Start() {
	if e.task.Running() {
		return
	}
	now := time.Now()
	e.mu.Lock()
	e.lastTime = now
	e.profileTime = now
	e.profileCount = 0
	e.mu.Unlock()
	e.task.Start()
}

// Stop halts ticking and logs the measured update rate. No tick runs after
// Stop returns.
func (e *Engine) Stop() {
	if !e.task.Running() {
		e.task.Stop()
		return
	}
	e.task.Stop()
	e.mu.RLock()
	elapsed := time.Since(e.profileTime)
	count := e.profileCount
	e.mu.RUnlock()
	if elapsed > 0 {
		e.logger.Log(fmt.Sprintf("harmony update rate = %.1f Hz", float64(count)/elapsed.Seconds()))
	}
}

// Update advances the state to now. The first call after construction only
// sets the reference time.
func (e *Engine) Update(now time.Time) error {
	e.mu.Lock()
	if e.lastTime.IsZero() {
		e.lastTime = now
	}
	if now.Before(e.lastTime) {
		last := e.lastTime
		e.mu.Unlock()
		return fmt.Errorf("harmony: update at %v, before %v: %w", now, last, keys.ErrClockRegression)
	}
	dt := now.Sub(e.lastTime)
	e.lastTime = now
	e.mu.Unlock()
	return e.Tick(dt)
}

// Tick advances the state by dt.
func (e *Engine) Tick(dt time.Duration) error {
	if dt < 0 {
		return fmt.Errorf("harmony: tick of %v: %w", dt, keys.ErrClockRegression)
	}
	ms := float64(dt) / float64(time.Millisecond)

	e.mu.Lock()
	defer e.mu.Unlock()

	newPrior, err := e.boltzmann(e.mass)
	if err != nil {
		return fmt.Errorf("harmony: tick: %w", err)
	}
	if err := e.prior.ShiftTowards(newPrior, 1-math.Exp(-ms*e.priorRate)); err != nil {
		return fmt.Errorf("harmony: tick: %w", err)
	}

	newPrior.Scale(e.backgroundGain)
	if err := e.mass.ShiftTowards(newPrior, 1-math.Exp(-ms*e.sustainRate)); err != nil {
		return fmt.Errorf("harmony: tick: %w", err)
	}

	decayAttack(e.mass, e.attack, math.Exp(-ms*e.attackRate))

	if e.randomizeRate > 0 {
		sigma := e.randomizeRate * math.Sqrt(ms/1000) * math.Sqrt(12)
		for i := range e.mass {
			e.mass[i] *= math.Exp(sigma * (e.rng.Float64() - 0.5))
		}
	}
	e.profileCount++
	return nil
}

// decayAttack moves attack into mass so that the total amount moved over an
// interval does not depend on how the interval is split into ticks.
// It stays finite when decay underflows to zero on very long ticks.
func decayAttack(mass, attack keys.MassField, decay float64) {
	for i, a := range attack {
		moved := a * (1 - decay)
		attack[i] -= moved
		mass[i] += moved
	}
}

// AddImpulse injects magnitude into the attack buffer at index; it enters the
// mass over the following ticks.
func (e *Engine) AddImpulse(index int, magnitude float64) error {
	if index < 0 || index >= len(e.lattice) {
		return fmt.Errorf("harmony: impulse at %d of %d: %w", index, len(e.lattice), keys.ErrIndexOutOfRange)
	}
	e.mu.Lock()
	e.attack[index] += magnitude
	e.mu.Unlock()
	return nil
}

// Energy returns the harmonic energy of every lattice point relative to the
// given mass: its mass-weighted mean dissonance scaled by 1/acuity, plus the
// optional pitch bias. Consonant points have low energy.
func (e *Engine) Energy(mass keys.MassField) ([]float64, error) {
	if len(mass) != len(e.lattice) {
		return nil, fmt.Errorf("harmony: energy: %w (%d != %d)", keys.ErrLengthMismatch, len(mass), len(e.lattice))
	}
	total := mass.Total()
	if !(total > 0) {
		return nil, fmt.Errorf("harmony: energy: %w", keys.ErrDegenerateMass)
	}
	scale := 1 / (total * e.acuity)
	energy := make([]float64, len(e.lattice))
	for i, row := range e.dissonance {
		energy[i] = scale*mass.Dot(row) + e.bias[i]
	}
	return energy, nil
}

func (e *Engine) boltzmann(mass keys.MassField) (keys.MassField, error) {
	energy, err := e.Energy(mass)
	if err != nil {
		return nil, err
	}
	return keys.Boltzmann(energy, keys.DefaultTemperature)
}

// Mass returns a copy of the current mass.
func (e *Engine) Mass() keys.MassField {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.mass.Clone()
}

func (e *Engine) Snapshot() (Snapshot, error) {
	e.mu.RLock()
	s := Snapshot{
		Mass:   e.mass.Clone(),
		Attack: e.attack.Clone(),
		Prior:  e.prior.Clone(),
	}
	e.mu.RUnlock()
	energy, err := e.Energy(s.Prior)
	if err != nil {
		return s, err
	}
	s.PriorEnergy = energy
	return s, nil
}
