package synth_test

import (
	"sync"
	"testing"
	"time"

	"github.com/rationalkeyboard/keys"
	"github.com/rationalkeyboard/keys/synth"
)

type recordingAudio struct {
	mu    sync.Mutex
	waves []keys.Wave
}

func (a *recordingAudio) Play(wave keys.Wave) error {
	a.mu.Lock()
	a.waves = append(a.waves, wave)
	a.mu.Unlock()
	return nil
}

func (a *recordingAudio) Close() error { return nil }

func (a *recordingAudio) count() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.waves)
}

type constantSource keys.MassField

func (s constantSource) Mass() keys.MassField { return keys.MassField(s).Clone() }

func TestEngineOnsets(t *testing.T) {
	lattice := testLattice(t)
	audio := &recordingAudio{}
	engine, err := synth.NewEngine(lattice, testConfig(), constantSource(keys.Uniform(len(lattice))), audio, nil, nil)
	if err != nil {
		t.Fatalf("NewEngine error: %v", err)
	}
	engine.WaitOnsets()
	for i := range lattice {
		if _, ok := engine.Onset(i); !ok {
			t.Fatalf("onset %d is missing", i)
		}
	}
	if err := engine.PlayOnset(-1); err != nil || audio.count() != 0 {
		t.Fatalf("missing onset played: %v", err)
	}
	if err := engine.PlayOnset(lattice.Center()); err != nil || audio.count() != 1 {
		t.Fatalf("PlayOnset did not play: %v", err)
	}
}

// rejectingTransport answers every request with a single error and nothing
// else, like an rpc client whose call failed.
type rejectingTransport struct {
	responses chan synth.Response
}

func (r *rejectingTransport) Send(req synth.Request) error {
	select {
	case r.responses <- synth.Response{Type: synth.ErrorResponse, Message: "connection refused"}:
	default:
	}
	return nil
}

func (r *rejectingTransport) Responses() <-chan synth.Response { return r.responses }
func (r *rejectingTransport) Close() error                     { return nil }

func TestEngineOnsetWorkerFailure(t *testing.T) {
	lattice := testLattice(t)
	dial := func() (synth.Transport, error) {
		return &rejectingTransport{responses: make(chan synth.Response, 1)}, nil
	}
	engine, err := synth.NewEngine(lattice, testConfig(), constantSource(keys.Uniform(len(lattice))), nil, dial, nil)
	if err != nil {
		t.Fatalf("NewEngine error: %v", err)
	}
	done := make(chan struct{})
	go func() {
		engine.WaitOnsets()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("WaitOnsets still blocked after the onset worker failed")
	}
	if _, ok := engine.Onset(lattice.Center()); ok {
		t.Errorf("failed onset worker produced an onset")
	}
}

func TestEngineStartStop(t *testing.T) {
	lattice := testLattice(t)
	audio := &recordingAudio{}
	engine, err := synth.NewEngine(lattice, testConfig(), constantSource(keys.Uniform(len(lattice))), audio, nil, nil)
	if err != nil {
		t.Fatalf("NewEngine error: %v", err)
	}
	engine.WaitOnsets()
	if err := engine.Start(); err != nil {
		t.Fatalf("Start error: %v", err)
	}
	engine.Start()
	deadline := time.Now().Add(10 * time.Second)
	for audio.count() < 3 {
		if time.Now().After(deadline) {
			t.Fatalf("engine played %d windows", audio.count())
		}
		time.Sleep(time.Millisecond)
	}
	engine.Stop()
	engine.Stop()
	stopped := audio.count()
	time.Sleep(50 * time.Millisecond)
	if audio.count() != stopped {
		t.Fatalf("engine played after Stop")
	}
	for _, wave := range audio.waves {
		if wave.NumSamples() != testConfig().WindowSamples() {
			t.Fatalf("window has %d samples", wave.NumSamples())
		}
	}
}
