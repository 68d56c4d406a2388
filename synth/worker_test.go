package synth_test

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/rationalkeyboard/keys"
	"github.com/rationalkeyboard/keys/synth"
)

func receive(t *testing.T, worker synth.Transport) synth.Response {
	t.Helper()
	select {
	case resp, ok := <-worker.Responses():
		if !ok {
			t.Fatalf("worker closed its responses")
		}
		return resp
	case <-time.After(10 * time.Second):
		t.Fatalf("worker did not respond")
	}
	return synth.Response{}
}

func TestWorkerRequiresInit(t *testing.T) {
	worker := synth.NewWorker()
	defer worker.Close()
	if err := worker.Send(synth.Request{Cmd: synth.CmdSynthesize, Mass: keys.MassField{1}}); err != nil {
		t.Fatalf("Send error: %v", err)
	}
	resp := receive(t, worker)
	if resp.Type != synth.ErrorResponse || resp.Message != keys.ErrNotInitialized.Error() {
		t.Fatalf("got %v %q, want an uninitialized error", resp.Type, resp.Message)
	}
}

func TestWorkerOrder(t *testing.T) {
	lattice := testLattice(t)
	init := synth.SustainInit(lattice, testConfig())
	reference, err := synth.NewSynthesizer(init)
	if err != nil {
		t.Fatalf("NewSynthesizer error: %v", err)
	}
	worker := synth.NewWorker()
	defer worker.Close()
	if err := worker.Send(synth.Request{Cmd: synth.CmdInit, Init: &init}); err != nil {
		t.Fatalf("Send error: %v", err)
	}
	var masses []keys.MassField
	for i := range 3 {
		mass, _ := keys.Degenerate(i, len(lattice))
		masses = append(masses, mass)
		if err := worker.Send(synth.Request{Cmd: synth.CmdSynthesize, Mass: mass}); err != nil {
			t.Fatalf("Send error: %v", err)
		}
	}
	// a bad request in the middle yields exactly one error and does not
	// disturb the order
	worker.Send(synth.Request{Cmd: synth.CmdSynthesize, Mass: keys.MassField{1}})
	last, _ := keys.Degenerate(3, len(lattice))
	masses = append(masses, last)
	worker.Send(synth.Request{Cmd: synth.CmdSynthesize, Mass: last})

	for i, mass := range masses {
		if i == 3 {
			if resp := receive(t, worker); resp.Type != synth.ErrorResponse {
				t.Fatalf("bad request got a %v response", resp.Type)
			}
		}
		resp := receive(t, worker)
		if resp.Type != synth.WaveResponse {
			t.Fatalf("response %d is %v: %v", i, resp.Type, resp.Message)
		}
		want, _ := reference.Synthesize(mass)
		if !bytes.Equal(resp.Data, want) {
			t.Fatalf("response %d does not match its request", i)
		}
	}
}

func TestWorkerOnsets(t *testing.T) {
	lattice := testLattice(t)
	init := synth.OnsetInit(lattice, testConfig())
	worker := synth.NewWorker()
	defer worker.Close()
	worker.Send(synth.Request{Cmd: synth.CmdInit, Init: &init})
	for _, want := range init.TaskOrder {
		resp := receive(t, worker)
		if resp.Type != synth.WaveResponse || resp.Index != want {
			t.Fatalf("got %v for %d, want wave for %d", resp.Type, resp.Index, want)
		}
		if resp.Data.NumSamples() != 2*testConfig().WindowSamples() {
			t.Fatalf("onset has %d samples", resp.Data.NumSamples())
		}
	}
	if resp := receive(t, worker); resp.Type != synth.LogResponse || !strings.Contains(resp.Message, "onsets") {
		t.Fatalf("got %v %q, want a log line", resp.Type, resp.Message)
	}
}

func TestHandlerRecoversPanics(t *testing.T) {
	var h synth.Handler
	init := synth.OnsetInit(testLattice(t), testConfig())
	init.TaskOrder = make([]int, len(init.Freqs))
	init.TaskOrder[0] = len(init.Freqs) // out of range
	var responses []synth.Response
	h.Handle(synth.Request{Cmd: synth.CmdInit, Init: &init}, func(r synth.Response) { responses = append(responses, r) })
	last := responses[len(responses)-1]
	if last.Type != synth.ErrorResponse {
		t.Fatalf("panic was not reported: %+v", last)
	}
}

func TestWorkerClose(t *testing.T) {
	worker := synth.NewWorker()
	worker.Close()
	worker.Close()
	if err := worker.Send(synth.Request{}); err != synth.ErrWorkerClosed {
		t.Fatalf("Send after Close error = %v", err)
	}
	if _, ok := <-worker.Responses(); ok {
		t.Fatalf("responses are open after Close")
	}
}
