// Package oto plays Waves on the default audio device.
package oto

import (
	"bytes"
	"fmt"
	"sync"

	"github.com/ebitengine/oto/v3"
	"github.com/rationalkeyboard/keys"
)

// Context is a keys.AudioContext. Every Wave gets its own player, so windows
// and onsets overlap freely; finished players are closed on the next Play.
type Context struct {
	context    *oto.Context
	sampleRate int

	mu      sync.Mutex
	players map[*oto.Player]struct{}
}

// NewContext opens the audio device for mono 16-bit playback. There can only
// be one context per process.
func NewContext(sampleRate int) (*Context, error) {
	context, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 1,
		Format:       oto.FormatSignedInt16LE,
	})
	if err != nil {
		return nil, fmt.Errorf("cannot create oto context: %w", err)
	}
	<-ready
	return &Context{
		context:    context,
		sampleRate: sampleRate,
		players:    make(map[*oto.Player]struct{}),
	}, nil
}

func (c *Context) Play(wave keys.Wave) error {
	if rate := wave.SampleRate(); rate != c.sampleRate {
		return fmt.Errorf("cannot play %d Hz wave on a %d Hz context", rate, c.sampleRate)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reap()
	player := c.context.NewPlayer(bytes.NewReader(wave.PCM()))
	player.Play()
	c.players[player] = struct{}{}
	if err := c.context.Err(); err != nil {
		return fmt.Errorf("oto context error: %w", err)
	}
	return nil
}

// reap assumes c.mu is held
func (c *Context) reap() {
	for player := range c.players {
		if !player.IsPlaying() {
			player.Close()
			delete(c.players, player)
		}
	}
}

// Close stops every player and suspends the device.
func (c *Context) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for player := range c.players {
		player.Close()
		delete(c.players, player)
	}
	if err := c.context.Suspend(); err != nil {
		return fmt.Errorf("cannot suspend oto context: %w", err)
	}
	return nil
}
