package audio

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
)

const (
	toneSampleRate = 44100
	toneFrequency  = 880.0
	toneSeconds    = 0.6
	toneAmplitude  = 0.35
)

// DefaultTone renders a short 880 Hz mono beep with a linear fade-out.
func DefaultTone() []byte {
	n := int(toneSampleRate * toneSeconds)
	samples := make([]byte, n*2)
	for i := 0; i < n; i++ {
		t := float64(i) / toneSampleRate
		fade := 1.0
		if n > 1 {
			fade = 1 - float64(i)/float64(n-1)
		}
		v := toneAmplitude * math.Sin(2*math.Pi*toneFrequency*t) * fade
		binary.LittleEndian.PutUint16(samples[i*2:], uint16(int16(v*32767)))
	}
	return EncodeWAV(Format{SampleRate: toneSampleRate, Channels: 1, BitDepth: 16}, samples)
}

// EnsureDefaultTone writes DefaultTone to path unless a file already exists
// there. It reports whether a file was created.
func EnsureDefaultTone(path string) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return false, fmt.Errorf("checking sound file: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, fmt.Errorf("creating sound directory: %w", err)
	}
	if err := os.WriteFile(path, DefaultTone(), 0o644); err != nil {
		return false, fmt.Errorf("writing default tone: %w", err)
	}
	return true, nil
}
