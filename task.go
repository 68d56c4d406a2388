package keys

import (
	"fmt"
	"sync"
	"time"
)

// Task calls a function periodically on its own goroutine. The timer is
// re-armed only after the function returns, so slow calls stretch the period
// rather than pile up. If the function returns an error, the error is logged
// and the task stops by itself.
type Task struct {
	period time.Duration
	run    func() error
	logger Logger

	mu   sync.Mutex
	stop chan struct{}
	done chan struct{}
}

func NewTask(period time.Duration, run func() error, logger Logger) *Task {
	if logger == nil {
		logger = NullLogger{}
	}
	return &Task{period: period, run: run, logger: logger}
}

// Start runs the function immediately and then every period. Starting a
// running task does nothing.
func (t *Task) Start() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.done != nil {
		select {
		case <-t.done:
		default:
			return
		}
	}
	t.stop = make(chan struct{})
	t.done = make(chan struct{})
	go t.loop(t.stop, t.done)
}

// Stop cancels the task and waits until a call in progress returns. After
// Stop returns, the function is not called again until the next Start.
func (t *Task) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.done == nil {
		return
	}
	select {
	case <-t.stop:
	default:
		close(t.stop)
	}
	<-t.done
	t.stop, t.done = nil, nil
}

// Running reports whether the task loop is alive.
func (t *Task) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.done == nil {
		return false
	}
	select {
	case <-t.done:
		return false
	default:
		return true
	}
}

func (t *Task) loop(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	timer := time.NewTimer(0)
	defer timer.Stop()
	for {
		select {
		case <-stop:
			return
		case <-timer.C:
		}
		select {
		case <-stop:
			return
		default:
		}
		if err := t.run(); err != nil {
			t.logger.Log(fmt.Sprintf("task stopped: %v", err))
			return
		}
		timer.Reset(t.period)
	}
}
