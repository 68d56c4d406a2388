package keys

import "log"

type (
	// Logger receives human readable diagnostic messages: profiling results
	// and worker failures.
	Logger interface {
		Log(message string)
	}

	// StdLogger writes to a log.Logger, or to the standard logger if nil.
	StdLogger struct {
		*log.Logger
	}

	NullLogger struct{}
)

func (l StdLogger) Log(message string) {
	if l.Logger == nil {
		log.Print(message)
		return
	}
	l.Logger.Print(message)
}

func (NullLogger) Log(message string) {}
