package keys

type (
	// Wave is a complete in-memory WAV file: a 44 byte RIFF header followed by
	// 16-bit little-endian mono PCM samples.
	Wave []byte

	// AudioContext plays Waves. Play must not block for the duration of the
	// sound; several Waves may sound at the same time.
	AudioContext interface {
		Play(wave Wave) error
		Close() error
	}

	// NullAudioContext discards everything it is asked to play.
	NullAudioContext struct{}
)

func (NullAudioContext) Play(wave Wave) error { return nil }
func (NullAudioContext) Close() error         { return nil }
