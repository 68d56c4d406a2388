package cmd

import (
	"github.com/rationalkeyboard/keys/rpc"
	"github.com/rationalkeyboard/keys/synth"
)

// Dialer returns the in-process worker dialer when address is empty and an
// rpc dialer otherwise.
func Dialer(address string) synth.Dialer {
	if address == "" {
		return synth.Dial
	}
	return rpc.Dialer(address)
}
