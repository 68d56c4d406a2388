package synth

import (
	"fmt"
	"sync"
	"time"

	"github.com/rationalkeyboard/keys"
)

type (
	// MassSource provides snapshots of the current harmony mass.
	MassSource interface {
		Mass() keys.MassField
	}

	// Dialer starts a worker and returns the transport to it.
	Dialer func() (Transport, error)

	// Engine keeps a worker busy synthesizing windows from the current mass
	// and plays them back to back. It also owns the onsets, which are
	// rendered once in the background at construction.
	Engine struct {
		source MassSource
		audio  keys.AudioContext
		logger keys.Logger
		dial   Dialer
		init   Init
		window time.Duration

		onsetMu    sync.RWMutex
		onsets     map[int]keys.Wave
		onsetsDone chan struct{}

		mu   sync.Mutex
		stop chan struct{}
		done chan struct{}

		profileMu      sync.Mutex
		profileCount   int
		profileElapsed time.Duration
	}
)

// NewEngine starts rendering the onsets of every lattice point on a worker of
// its own. If dial is nil, in-process workers are used.
func NewEngine(lattice keys.Lattice, config keys.SynthConfig, source MassSource, audio keys.AudioContext, dial Dialer, logger keys.Logger) (*Engine, error) {
	if err := lattice.Validate(); err != nil {
		return nil, fmt.Errorf("synth: %w", err)
	}
	if dial == nil {
		dial = Dial
	}
	if audio == nil {
		audio = keys.NullAudioContext{}
	}
	if logger == nil {
		logger = keys.NullLogger{}
	}
	e := &Engine{
		source:     source,
		audio:      audio,
		logger:     logger,
		dial:       dial,
		init:       SustainInit(lattice, config),
		window:     config.Window(),
		onsets:     make(map[int]keys.Wave, len(lattice)),
		onsetsDone: make(chan struct{}),
	}
	if err := e.init.validate(); err != nil {
		return nil, err
	}
	onsetWorker, err := dial()
	if err != nil {
		return nil, fmt.Errorf("synth: could not start onset worker: %w", err)
	}
	onsetInit := OnsetInit(lattice, config)
	if err := onsetWorker.Send(Request{Cmd: CmdInit, Init: &onsetInit}); err != nil {
		onsetWorker.Close()
		return nil, fmt.Errorf("synth: could not init onset worker: %w", err)
	}
	go e.collectOnsets(onsetWorker, len(onsetInit.TaskOrder))
	return e, nil
}

// collectOnsets stores onsets until every task has answered, the worker logs
// the end of the batch, or the worker rejects the batch before its first
// onset.
func (e *Engine) collectOnsets(worker Transport, tasks int) {
	defer close(e.onsetsDone)
	defer worker.Close()
	answered := 0
	for resp := range worker.Responses() {
		switch resp.Type {
		case WaveResponse:
			e.onsetMu.Lock()
			e.onsets[resp.Index] = resp.Data
			e.onsetMu.Unlock()
		case ErrorResponse:
			e.logger.Log("onset worker error: " + resp.Message)
			if answered == 0 {
				return
			}
		case LogResponse:
			e.logger.Log("onset worker: " + resp.Message)
			return
		}
		if answered++; answered >= tasks {
			return
		}
	}
}

// WaitOnsets blocks until the onset worker has finished.
func (e *Engine) WaitOnsets() {
	<-e.onsetsDone
}

// Onset returns the onset of the lattice point at index, if it is ready.
func (e *Engine) Onset(index int) (keys.Wave, bool) {
	e.onsetMu.RLock()
	defer e.onsetMu.RUnlock()
	wave, ok := e.onsets[index]
	return wave, ok
}

// PlayOnset plays the onset at index if it has been rendered, and does
// nothing otherwise.
func (e *Engine) PlayOnset(index int) error {
	wave, ok := e.Onset(index)
	if !ok {
		return nil
	}
	return e.audio.Play(wave)
}

// Start dials a worker and starts the synthesis loop. Starting a running
// engine does nothing.
func (e *Engine) Start() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.stop != nil {
		return nil
	}
	worker, err := e.dial()
	if err != nil {
		return fmt.Errorf("synth: could not start worker: %w", err)
	}
	init := e.init
	if err := worker.Send(Request{Cmd: CmdInit, Init: &init}); err != nil {
		worker.Close()
		return fmt.Errorf("synth: could not init worker: %w", err)
	}
	e.profileMu.Lock()
	e.profileCount, e.profileElapsed = 0, 0
	e.profileMu.Unlock()
	e.stop, e.done = make(chan struct{}), make(chan struct{})
	go e.loop(worker, e.stop, e.done)
	return nil
}

// Stop halts the loop, closes the worker and logs the mean synthesis time.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.stop == nil {
		return
	}
	close(e.stop)
	<-e.done
	e.stop, e.done = nil, nil
	e.profileMu.Lock()
	count, elapsed := e.profileCount, e.profileElapsed
	e.profileMu.Unlock()
	if count > 0 {
		e.logger.Log(fmt.Sprintf("synthesizer mean time = %v", elapsed/time.Duration(count)))
	}
}

func (e *Engine) loop(worker Transport, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	defer worker.Close()
	scheduler := NewScheduler(e.window, time.Now())
	timer := time.NewTimer(0)
	timer.Stop()
	var pending keys.Wave
	request := func() bool {
		err := worker.Send(Request{Cmd: CmdSynthesize, Mass: e.source.Mass()})
		if err != nil {
			e.logger.Log(fmt.Sprintf("synth worker: %v", err))
			return false
		}
		return true
	}
	if !request() {
		return
	}
	for {
		select {
		case <-stop:
			return
		case resp, ok := <-worker.Responses():
			if !ok {
				e.logger.Log("synth worker exited")
				return
			}
			switch resp.Type {
			case WaveResponse:
				pending = resp.Data
				timer.Reset(max(0, scheduler.Next(time.Now())))
				e.profileMu.Lock()
				e.profileCount++
				e.profileElapsed += resp.ProfileElapsed
				e.profileMu.Unlock()
			case ErrorResponse:
				e.logger.Log("synth worker error: " + resp.Message)
				pending = nil
				timer.Reset(scheduler.Hop())
			case LogResponse:
				e.logger.Log("synth worker: " + resp.Message)
			}
		case <-timer.C:
			if pending != nil {
				if err := e.audio.Play(pending); err != nil {
					e.logger.Log(fmt.Sprintf("could not play window: %v", err))
				}
				pending = nil
			}
			if !request() {
				return
			}
		}
	}
}
