package keys

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
)

const (
	waveHeaderSize = 44
	bytesPerSample = 2
)

// EncodeWave converts samples in [-1,1] to a 16-bit mono PCM WAV at the given
// sample rate. Samples outside the range are clamped.
func EncodeWave(samples []float64, sampleRate int) (Wave, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("EncodeWave: invalid sample rate %d", sampleRate)
	}
	buf := new(bytes.Buffer)
	buf.Grow(waveHeaderSize + bytesPerSample*len(samples))
	waveHeader(len(samples), sampleRate, buf)
	if err := pcmToBuffer(samples, buf); err != nil {
		return nil, fmt.Errorf("EncodeWave failed: %w", err)
	}
	return buf.Bytes(), nil
}

// PCM returns the raw sample data of the wave without the header.
func (w Wave) PCM() []byte {
	if len(w) < waveHeaderSize {
		return nil
	}
	return w[waveHeaderSize:]
}

// NumSamples returns the number of (mono) samples in the wave.
func (w Wave) NumSamples() int {
	return len(w.PCM()) / bytesPerSample
}

// SampleRate reads the sample rate back from the header.
func (w Wave) SampleRate() int {
	if len(w) < waveHeaderSize {
		return 0
	}
	return int(binary.LittleEndian.Uint32(w[24:28]))
}

func pcmToBuffer(data []float64, buf *bytes.Buffer) error {
	int16data := make([]int16, len(data))
	for i, v := range data {
		int16data[i] = int16(clamp(int(math.Round(v*math.MaxInt16)), math.MinInt16, math.MaxInt16))
	}
	if err := binary.Write(buf, binary.LittleEndian, int16data); err != nil {
		return fmt.Errorf("could not binary write data to binary buffer: %w", err)
	}
	return nil
}

// waveHeader writes a canonical 44 byte header for mono int16 audio.
func waveHeader(numSamples, sampleRate int, buf *bytes.Buffer) {
	// Refer to: http://www-mmsp.ece.mcgill.ca/Documents/AudioFormats/WAVE/WAVE.html
	const numChannels = 1
	dataSize := bytesPerSample * numSamples
	buf.Write([]byte("RIFF"))
	binary.Write(buf, binary.LittleEndian, uint32(36+dataSize))
	buf.Write([]byte("WAVE"))
	buf.Write([]byte("fmt "))
	binary.Write(buf, binary.LittleEndian, uint32(16)) // fmt chunk size
	binary.Write(buf, binary.LittleEndian, uint16(1))  // PCM
	binary.Write(buf, binary.LittleEndian, uint16(numChannels))
	binary.Write(buf, binary.LittleEndian, uint32(sampleRate))
	binary.Write(buf, binary.LittleEndian, uint32(sampleRate*numChannels*bytesPerSample)) // avgBytesPerSec
	binary.Write(buf, binary.LittleEndian, uint16(numChannels*bytesPerSample))            // blockAlign
	binary.Write(buf, binary.LittleEndian, uint16(8*bytesPerSample))                      // bits per sample
	buf.Write([]byte("data"))
	binary.Write(buf, binary.LittleEndian, uint32(dataSize))
}

func clamp(value, min, max int) int {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}
