package audio

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// fakeBackend hands out players whose clip lasts clipLen (forever when zero)
// and records how many players were audible at once.
type fakeBackend struct {
	mu        sync.Mutex
	clipLen   time.Duration
	failWith  error
	created   int
	active    int
	maxActive int
	players   []*fakePlayer
}

func (b *fakeBackend) NewPlayer(_ Format, r io.Reader) (Player, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.failWith != nil {
		return nil, b.failWith
	}
	if _, err := io.ReadAll(r); err != nil {
		return nil, err
	}
	p := &fakePlayer{backend: b, clipLen: b.clipLen}
	b.created++
	b.players = append(b.players, p)
	return p, nil
}

func (b *fakeBackend) stats() (created, active, maxActive int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.created, b.active, b.maxActive
}

type fakePlayer struct {
	backend *fakeBackend
	clipLen time.Duration

	mu      sync.Mutex
	started time.Time
	playing bool
	closed  bool
	volumes []float64
}

func (p *fakePlayer) Play() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.playing || p.closed {
		return
	}
	p.playing = true
	p.started = time.Now()
	p.backend.mu.Lock()
	p.backend.active++
	if p.backend.active > p.backend.maxActive {
		p.backend.maxActive = p.backend.active
	}
	p.backend.mu.Unlock()
}

func (p *fakePlayer) halt() {
	if !p.playing {
		return
	}
	p.playing = false
	p.backend.mu.Lock()
	p.backend.active--
	p.backend.mu.Unlock()
}

func (p *fakePlayer) Pause() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.halt()
}

func (p *fakePlayer) IsPlaying() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.playing && p.clipLen > 0 && time.Since(p.started) >= p.clipLen {
		p.halt()
	}
	return p.playing
}

func (p *fakePlayer) SetVolume(v float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.volumes = append(p.volumes, v)
}

func (p *fakePlayer) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return errors.New("already closed")
	}
	p.halt()
	p.closed = true
	return nil
}

func writeTone(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tone.wav")
	require.NoError(t, os.WriteFile(path, DefaultTone(), 0o644))
	return path
}

func fastOptions() Options {
	return Options{
		PollInterval: 5 * time.Millisecond,
		StopTimeout:  time.Second,
		LoopPause:    time.Millisecond,
	}
}

func waitUntil(t *testing.T, timeout time.Duration, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("timed out waiting: %s", msg)
}
