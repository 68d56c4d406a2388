//go:build cgo

package cmd

import (
	"github.com/rationalkeyboard/keys"
	"github.com/rationalkeyboard/keys/keyboard"
	"github.com/rationalkeyboard/keys/keyboard/gomidi"
)

func NewMidiContext(target keyboard.Clicker, size int, logger keys.Logger) keyboard.MIDIContext {
	return gomidi.NewContext(target, size, logger)
}
