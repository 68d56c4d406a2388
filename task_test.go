package keys_test

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rationalkeyboard/keys"
)

func TestTaskStartStop(t *testing.T) {
	var count atomic.Int64
	task := keys.NewTask(time.Millisecond, func() error {
		count.Add(1)
		return nil
	}, nil)
	task.Start()
	task.Start()
	deadline := time.Now().Add(5 * time.Second)
	for count.Load() < 3 {
		if time.Now().After(deadline) {
			t.Fatalf("task ran only %d times", count.Load())
		}
		time.Sleep(time.Millisecond)
	}
	task.Stop()
	task.Stop()
	if task.Running() {
		t.Fatalf("task is running after Stop")
	}
	stopped := count.Load()
	time.Sleep(20 * time.Millisecond)
	if count.Load() != stopped {
		t.Fatalf("task ran %d times after Stop", count.Load()-stopped)
	}
}

type recordingLogger struct {
	messages chan string
}

func (l recordingLogger) Log(message string) { l.messages <- message }

func TestTaskStopsOnError(t *testing.T) {
	logger := recordingLogger{messages: make(chan string, 1)}
	var count atomic.Int64
	task := keys.NewTask(time.Millisecond, func() error {
		count.Add(1)
		return errors.New("boom")
	}, logger)
	task.Start()
	select {
	case <-logger.messages:
	case <-time.After(5 * time.Second):
		t.Fatalf("task error was not logged")
	}
	time.Sleep(10 * time.Millisecond)
	if count.Load() != 1 {
		t.Fatalf("task ran %d times after failing", count.Load())
	}
	if task.Running() {
		t.Fatalf("task is running after an error")
	}
	task.Stop()
}
