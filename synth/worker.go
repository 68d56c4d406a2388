package synth

import (
	"fmt"
	"sync"
	"time"

	"github.com/rationalkeyboard/keys"
)

type (
	// Handler is the worker side of the protocol. It is not safe for
	// concurrent use; every worker owns one.
	Handler struct {
		synth *Synthesizer
	}

	// Worker runs a Handler on its own goroutine and implements Transport.
	Worker struct {
		requests  chan Request
		responses chan Response
		quit      chan struct{}
		done      chan struct{}
		closeOnce sync.Once
	}
)

// Handle processes one request, calling emit for every response. Each
// synthesize request produces exactly one wave or error response; panics are
// recovered and reported as errors.
func (h *Handler) Handle(req Request, emit func(Response)) {
	defer func() {
		if r := recover(); r != nil {
			emit(Response{Type: ErrorResponse, Message: fmt.Sprintf("%v: %v", req.Cmd, r)})
		}
	}()
	switch req.Cmd {
	case CmdInit:
		if req.Init == nil {
			emit(errorResponse(fmt.Errorf("init without configuration")))
			return
		}
		if req.Init.TaskOrder != nil {
			h.onsets(*req.Init, emit)
			return
		}
		s, err := NewSynthesizer(*req.Init)
		if err != nil {
			emit(errorResponse(err))
			return
		}
		h.synth = s
	case CmdSynthesize:
		if h.synth == nil {
			emit(errorResponse(keys.ErrNotInitialized))
			return
		}
		start := time.Now()
		wave, err := h.synth.Synthesize(req.Mass)
		if err != nil {
			emit(errorResponse(err))
			return
		}
		emit(Response{Type: WaveResponse, Data: wave, ProfileElapsed: time.Since(start)})
	default:
		emit(errorResponse(fmt.Errorf("unknown command: %d", req.Cmd)))
	}
}

func (h *Handler) onsets(init Init, emit func(Response)) {
	start := time.Now()
	count := 0
	defer func() {
		emit(Response{Type: LogResponse, Message: fmt.Sprintf("synthesized %d onsets in %v", count, time.Since(start))})
	}()
	if err := init.validate(); err != nil {
		emit(errorResponse(err))
		return
	}
	if len(init.TaskOrder) != len(init.Freqs) {
		emit(errorResponse(fmt.Errorf("onset task order has %d entries, want %d", len(init.TaskOrder), len(init.Freqs))))
		return
	}
	centerFreq := init.Freqs[(len(init.Freqs)-1)/2]
	for _, f := range init.TaskOrder {
		samples := Onset(init.Gain, centerFreq, init.Freqs[f], init.NumSamples)
		wave, err := keys.EncodeWave(samples, init.SampleRate)
		if err != nil {
			emit(errorResponse(err))
			continue
		}
		emit(Response{Type: WaveResponse, Index: f, Data: wave})
		count++
	}
}

func errorResponse(err error) Response {
	return Response{Type: ErrorResponse, Message: err.Error()}
}

// NewWorker starts an in-process worker.
func NewWorker() *Worker {
	w := &Worker{
		requests:  make(chan Request, 16),
		responses: make(chan Response, 16),
		quit:      make(chan struct{}),
		done:      make(chan struct{}),
	}
	go w.run()
	return w
}

func (w *Worker) run() {
	defer close(w.done)
	defer close(w.responses)
	var handler Handler
	emit := func(r Response) {
		select {
		case w.responses <- r:
		case <-w.quit:
		}
	}
	for {
		select {
		case <-w.quit:
			return
		case req := <-w.requests:
			handler.Handle(req, emit)
		}
	}
}

func (w *Worker) Send(req Request) error {
	select {
	case <-w.quit:
		return ErrWorkerClosed
	default:
	}
	select {
	case w.requests <- req:
		return nil
	case <-w.quit:
		return ErrWorkerClosed
	}
}

func (w *Worker) Responses() <-chan Response { return w.responses }

// Close stops the worker, dropping pending requests, and waits for it to exit.
func (w *Worker) Close() error {
	w.closeOnce.Do(func() { close(w.quit) })
	<-w.done
	return nil
}

// Dial starts an in-process worker. It is the default dialer of NewEngine.
func Dial() (Transport, error) {
	return NewWorker(), nil
}
