// Package gomidi feeds MIDI note-on messages into a keyboard as clicks.
package gomidi

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/rationalkeyboard/keys"
	"github.com/rationalkeyboard/keys/keyboard"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	"gitlab.com/gomidi/midi/v2/drivers/rtmididrv"
)

// MiddleC is the note that plays the lattice center 1/1.
const MiddleC = 60

type (
	RTMIDIContext struct {
		driver *rtmididrv.Driver
		target keyboard.Clicker
		size   int
		logger keys.Logger

		mu        sync.Mutex
		currentIn drivers.In
		stop      func()
	}
)

// NewContext opens the rtmidi driver. If that fails the context has no
// inputs, but is still usable.
func NewContext(target keyboard.Clicker, size int, logger keys.Logger) *RTMIDIContext {
	if logger == nil {
		logger = keys.NullLogger{}
	}
	m := RTMIDIContext{target: target, size: size, logger: logger}
	var err error
	if m.driver, err = rtmididrv.New(); err != nil {
		logger.Log(fmt.Sprintf("no MIDI driver: %v", err))
		m.driver = nil
	}
	return &m
}

// InputDevices lists the names of the available MIDI inputs.
func (c *RTMIDIContext) InputDevices() []string {
	if c.driver == nil {
		return nil
	}
	ins, err := c.driver.Ins()
	if err != nil {
		return nil
	}
	ret := make([]string, len(ins))
	for i, in := range ins {
		ret[i] = in.String()
	}
	return ret
}

// Open starts listening to the first input whose name starts with
// namePrefix, closing the currently open input. An empty prefix takes the
// first input.
func (c *RTMIDIContext) Open(namePrefix string) error {
	if c.driver == nil {
		return errors.New("no MIDI driver available")
	}
	ins, err := c.driver.Ins()
	if err != nil {
		return fmt.Errorf("listing MIDI inputs failed: %w", err)
	}
	for _, in := range ins {
		if strings.HasPrefix(in.String(), namePrefix) {
			return c.open(in)
		}
	}
	return fmt.Errorf("no MIDI input starting with %q", namePrefix)
}

func (c *RTMIDIContext) open(in drivers.In) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closeCurrent()
	if err := in.Open(); err != nil {
		return fmt.Errorf("opening MIDI input failed: %w", err)
	}
	stop, err := midi.ListenTo(in, c.HandleMessage)
	if err != nil {
		in.Close()
		return fmt.Errorf("listening to MIDI input failed: %w", err)
	}
	c.currentIn, c.stop = in, stop
	c.logger.Log(fmt.Sprintf("listening to MIDI input %v", in))
	return nil
}

func (c *RTMIDIContext) closeCurrent() {
	if c.stop != nil {
		c.stop()
		c.stop = nil
	}
	if c.currentIn != nil && c.currentIn.IsOpen() {
		c.currentIn.Close()
	}
	c.currentIn = nil
}

func (c *RTMIDIContext) Close() {
	if c.driver == nil {
		return
	}
	c.mu.Lock()
	c.closeCurrent()
	c.mu.Unlock()
	c.driver.Close()
}

// HandleMessage clicks the key of every note-on with nonzero velocity.
func (c *RTMIDIContext) HandleMessage(msg midi.Message, timestampms int32) {
	var channel, key, velocity uint8
	if !msg.GetNoteOn(&channel, &key, &velocity) || velocity == 0 {
		return
	}
	index, ok := NoteIndex(key, c.size)
	if !ok {
		return
	}
	if err := c.target.OnClick(index); err != nil {
		c.logger.Log(fmt.Sprintf("MIDI note %d: %v", key, err))
	}
}

// NoteIndex maps a MIDI note to a lattice index: MiddleC is the center and
// each semitone steps one lattice point.
func NoteIndex(note uint8, size int) (int, bool) {
	i := (size-1)/2 + int(note) - MiddleC
	if i < 0 || i >= size {
		return 0, false
	}
	return i, true
}
