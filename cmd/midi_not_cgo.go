//go:build !cgo

package cmd

import (
	"github.com/rationalkeyboard/keys"
	"github.com/rationalkeyboard/keys/keyboard"
)

func NewMidiContext(target keyboard.Clicker, size int, logger keys.Logger) keyboard.MIDIContext {
	// rtmidi needs cgo
	return keyboard.NullMIDIContext{}
}
