package rpc_test

import (
	"bytes"
	"net"
	"net/http"
	netrpc "net/rpc"
	"testing"
	"time"

	"github.com/rationalkeyboard/keys"
	"github.com/rationalkeyboard/keys/rpc"
	"github.com/rationalkeyboard/keys/synth"
)

func startServer(t *testing.T) string {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("net.Listen error: %v", err)
	}
	t.Cleanup(func() { l.Close() })
	go rpc.Serve(l)
	return l.Addr().String()
}

func receive(t *testing.T, c synth.Transport) synth.Response {
	t.Helper()
	select {
	case resp := <-c.Responses():
		return resp
	case <-time.After(10 * time.Second):
		t.Fatalf("no response from rpc worker")
	}
	return synth.Response{}
}

func TestSynthesizeRoundTrip(t *testing.T) {
	address := startServer(t)
	client, err := rpc.Dial(address)
	if err != nil {
		t.Fatalf("rpc.Dial error: %v", err)
	}
	defer client.Close()

	lattice, _ := keys.Ball(5)
	config := keys.DefaultConfig().Synth
	config.SampleRate = 8000
	config.WindowSec = 0.01
	init := synth.SustainInit(lattice, config)
	mass := keys.Uniform(len(lattice))

	client.Send(synth.Request{Cmd: synth.CmdSynthesize, Mass: mass})
	if resp := receive(t, client); resp.Type != synth.ErrorResponse {
		t.Fatalf("uninitialized worker answered %v", resp.Type)
	}
	client.Send(synth.Request{Cmd: synth.CmdInit, Init: &init})
	client.Send(synth.Request{Cmd: synth.CmdSynthesize, Mass: mass})
	resp := receive(t, client)
	if resp.Type != synth.WaveResponse {
		t.Fatalf("got %v: %v", resp.Type, resp.Message)
	}
	s, _ := synth.NewSynthesizer(init)
	want, _ := s.Synthesize(mass)
	if !bytes.Equal(resp.Data, want) {
		t.Fatalf("rpc wave differs from local synthesis")
	}
}

func TestSessionsAreIndependent(t *testing.T) {
	address := startServer(t)
	a, err := rpc.Dial(address)
	if err != nil {
		t.Fatalf("rpc.Dial error: %v", err)
	}
	defer a.Close()
	b, err := rpc.Dial(address)
	if err != nil {
		t.Fatalf("rpc.Dial error: %v", err)
	}
	defer b.Close()

	lattice, _ := keys.Ball(5)
	init := synth.SustainInit(lattice, keys.DefaultConfig().Synth)
	a.Send(synth.Request{Cmd: synth.CmdInit, Init: &init})
	a.Send(synth.Request{Cmd: synth.CmdSynthesize, Mass: keys.Uniform(len(lattice))})
	if resp := receive(t, a); resp.Type != synth.WaveResponse {
		t.Fatalf("initialized session answered %v: %v", resp.Type, resp.Message)
	}
	b.Send(synth.Request{Cmd: synth.CmdSynthesize, Mass: keys.Uniform(len(lattice))})
	if resp := receive(t, b); resp.Type != synth.ErrorResponse {
		t.Fatalf("fresh session answered %v", resp.Type)
	}
}

func TestEngineOverRPC(t *testing.T) {
	address := startServer(t)
	lattice, _ := keys.Ball(5)
	config := keys.DefaultConfig().Synth
	config.SampleRate = 8000
	config.WindowSec = 0.02
	engine, err := synth.NewEngine(lattice, config, nil, nil, rpc.Dialer(address), nil)
	if err != nil {
		t.Fatalf("NewEngine error: %v", err)
	}
	engine.WaitOnsets()
	for i := range lattice {
		if _, ok := engine.Onset(i); !ok {
			t.Fatalf("onset %d did not arrive over rpc", i)
		}
	}
}

// stallingWorker accepts sessions but never answers Handle until released.
type stallingWorker struct {
	release chan struct{}
}

func (w *stallingWorker) Open(_ int, id *int) error { *id = 1; return nil }
func (w *stallingWorker) Close(_ int, _ *int) error { return nil }

func (w *stallingWorker) Handle(_ rpc.HandleArgs, _ *[]synth.Response) error {
	<-w.release
	return nil
}

func TestCloseWithStalledWorker(t *testing.T) {
	worker := &stallingWorker{release: make(chan struct{})}
	t.Cleanup(func() { close(worker.release) })
	server := netrpc.NewServer()
	if err := server.RegisterName("Worker", worker); err != nil {
		t.Fatalf("RegisterName error: %v", err)
	}
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("net.Listen error: %v", err)
	}
	t.Cleanup(func() { l.Close() })
	mux := http.NewServeMux()
	mux.Handle(netrpc.DefaultRPCPath, server)
	go http.Serve(l, mux)

	client, err := rpc.Dial(l.Addr().String())
	if err != nil {
		t.Fatalf("rpc.Dial error: %v", err)
	}
	if err := client.Send(synth.Request{Cmd: synth.CmdSynthesize}); err != nil {
		t.Fatalf("Send error: %v", err)
	}
	time.Sleep(100 * time.Millisecond) // let the Handle call reach the worker
	closed := make(chan struct{})
	go func() {
		client.Close()
		close(closed)
	}()
	select {
	case <-closed:
	case <-time.After(2 * time.Second):
		t.Fatalf("Close blocked on a stalled worker")
	}
}
