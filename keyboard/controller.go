package keyboard

import (
	"errors"
	"fmt"
	"sync"

	"github.com/rationalkeyboard/keys"
	"github.com/rationalkeyboard/keys/harmony"
)

type (
	// Harmony is the part of harmony.Engine the keyboard uses.
	Harmony interface {
		Lattice() keys.Lattice
		Snapshot() (harmony.Snapshot, error)
		AddImpulse(index int, magnitude float64) error
	}

	OnsetPlayer interface {
		PlayOnset(index int) error
	}

	// Clicker receives clicks from other input devices than the pointer.
	Clicker interface {
		OnClick(index int) error
	}

	// MIDIContext is a source of note input that clicks keys.
	MIDIContext interface {
		InputDevices() []string
		Open(namePrefix string) error
		Close()
	}

	NullMIDIContext struct{}

	// Keyboard ties a Style to the harmony: Update refreshes the geometry
	// from the current prior, and pointer gestures become impulses and onsets.
	Keyboard struct {
		harmony   Harmony
		onsets    OnsetPlayer
		clickGain float64
		swipeGain float64
		logger    keys.Logger

		mu      sync.Mutex
		style   Style
		pressed bool
		swiped  bool
		lastX   float64
		lastY   float64
		updates int
	}
)

// New returns a keyboard in the configured style. onsets may be nil.
func New(h Harmony, onsets OnsetPlayer, config keys.Config, logger keys.Logger) (*Keyboard, error) {
	style, err := NewStyle(config.Keyboard.Style, config.Keyboard)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = keys.NullLogger{}
	}
	logger.Log(fmt.Sprintf("setting keyboard style = %v", style.Name()))
	return &Keyboard{
		harmony:   h,
		onsets:    onsets,
		clickGain: config.Synth.ClickGain,
		swipeGain: config.Synth.SwipeGain,
		logger:    logger,
		style:     style,
	}, nil
}

func (NullMIDIContext) InputDevices() []string { return nil }
func (NullMIDIContext) Open(string) error {
	return errors.New("MIDI input is not supported in this build")
}
func (NullMIDIContext) Close() {}

func (k *Keyboard) Style() Style {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.style
}

// SetStyle switches to the named style. The new geometry appears on the next
// Update.
func (k *Keyboard) SetStyle(name string, config keys.KeyboardConfig) error {
	style, err := NewStyle(name, config)
	if err != nil {
		return err
	}
	k.mu.Lock()
	k.style = style
	k.pressed = false
	k.mu.Unlock()
	k.logger.Log(fmt.Sprintf("setting keyboard style = %v", name))
	return nil
}

// Update recomputes the geometry for a window of width x height pixels and
// returns the keys to draw, back to front.
func (k *Keyboard) Update(width, height float64) ([]Key, error) {
	s, err := k.harmony.Snapshot()
	if err != nil {
		return nil, err
	}
	k.mu.Lock()
	defer k.mu.Unlock()
	if err := k.style.Update(k.harmony.Lattice(), s, width, height); err != nil {
		return nil, err
	}
	k.updates++
	return k.style.Keys(), nil
}

// Updates returns the number of Update calls so far.
func (k *Keyboard) Updates() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.updates
}

// OnClick injects the click gain at index and plays its onset.
func (k *Keyboard) OnClick(index int) error {
	if err := k.harmony.AddImpulse(index, k.clickGain); err != nil {
		return err
	}
	if k.onsets != nil {
		return k.onsets.PlayOnset(index)
	}
	return nil
}

// OnSwipe injects the swipe gain at every index and plays their onsets.
func (k *Keyboard) OnSwipe(indices []int) error {
	for _, i := range indices {
		if err := k.harmony.AddImpulse(i, k.swipeGain); err != nil {
			return err
		}
		if k.onsets != nil {
			if err := k.onsets.PlayOnset(i); err != nil {
				return err
			}
		}
	}
	return nil
}

// Press starts a gesture at (x, y) in unit coordinates.
func (k *Keyboard) Press(x, y float64) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.pressed, k.swiped = true, false
	k.lastX, k.lastY = x, y
}

// Drag continues a gesture; every key crossed since the last position is
// swiped.
func (k *Keyboard) Drag(x, y float64) error {
	k.mu.Lock()
	if !k.pressed {
		k.mu.Unlock()
		return nil
	}
	indices := k.style.Swipe(k.lastX, k.lastY, x, y)
	k.lastX, k.lastY = x, y
	if len(indices) > 0 {
		k.swiped = true
	}
	k.mu.Unlock()
	if len(indices) == 0 {
		return nil
	}
	return k.OnSwipe(indices)
}

// Cancel abandons a gesture without clicking.
func (k *Keyboard) Cancel() {
	k.mu.Lock()
	k.pressed = false
	k.mu.Unlock()
}

// Release ends a gesture. A gesture that swiped nothing is a click.
func (k *Keyboard) Release(x, y float64) error {
	k.mu.Lock()
	wasPressed, swiped := k.pressed, k.swiped
	k.pressed = false
	var index int
	var hit bool
	if wasPressed && !swiped {
		index, hit = k.style.Click(x, y)
	}
	k.mu.Unlock()
	if !hit {
		return nil
	}
	return k.OnClick(index)
}
