package synth

import (
	"errors"
	"time"

	"github.com/rationalkeyboard/keys"
)

type (
	Command int

	// Request is a message to a worker. Init carries the configuration of an
	// init command; Mass the weights of a synthesize command.
	Request struct {
		Cmd  Command
		Init *Init
		Mass keys.MassField
	}

	ResponseType int

	// Response is a message from a worker. Wave responses carry Data, and
	// Index for onsets; error and log responses carry Message.
	Response struct {
		Type           ResponseType
		Index          int
		Data           keys.Wave
		Message        string
		ProfileElapsed time.Duration
	}

	// Transport carries requests to a worker and its responses back, in
	// order. Responses is closed when the worker exits.
	Transport interface {
		Send(req Request) error
		Responses() <-chan Response
		Close() error
	}
)

const (
	CmdInit Command = iota
	CmdSynthesize
)

const (
	WaveResponse ResponseType = iota
	ErrorResponse
	LogResponse
)

var ErrWorkerClosed = errors.New("worker is closed")

func (c Command) String() string {
	switch c {
	case CmdInit:
		return "init"
	case CmdSynthesize:
		return "synthesize"
	}
	return "unknown"
}

func (t ResponseType) String() string {
	switch t {
	case WaveResponse:
		return "wave"
	case ErrorResponse:
		return "error"
	case LogResponse:
		return "log"
	}
	return "unknown"
}
