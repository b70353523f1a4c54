package audio

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
)

var ErrSoundFileNotFound = errors.New("sound file not found")

// Status is a snapshot of the engine's playback. Session is empty when idle.
type Status struct {
	Playing bool
	Volume  float64
	Session string
}

type Options struct {
	// PollInterval bounds both volume update cadence and cancellation latency.
	PollInterval time.Duration
	// StopTimeout bounds how long Stop waits for the worker to exit.
	StopTimeout time.Duration
	// LoopPause is the gap between passes over the clip.
	LoopPause time.Duration
	Logger    *slog.Logger
	Now       func() time.Time
}

func DefaultOptions() Options {
	return Options{
		PollInterval: 200 * time.Millisecond,
		StopTimeout:  2 * time.Second,
		LoopPause:    50 * time.Millisecond,
	}
}

// Engine plays one looping clip at a time with a software volume ramp.
// Starting a new session always stops and joins the previous one first.
type Engine struct {
	backend Backend
	opts    Options
	log     *slog.Logger

	// ctl serializes session start and stop.
	ctl  sync.Mutex
	sess *session

	mu     sync.Mutex
	gen    uint64
	status Status
}

type session struct {
	gen    uint64
	id     string
	cancel chan struct{}
	done   chan struct{}
}

func NewEngine(backend Backend, opts Options) *Engine {
	def := DefaultOptions()
	if opts.PollInterval <= 0 {
		opts.PollInterval = def.PollInterval
	}
	if opts.StopTimeout <= 0 {
		opts.StopTimeout = def.StopTimeout
	}
	if opts.LoopPause < 0 {
		opts.LoopPause = 0
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Engine{backend: backend, opts: opts, log: logger}
}

// PlayLoopWithRamp stops any running session, then loops the WAV file at path
// until Stop, ramping the volume as described by ramp. The file is read and
// decoded before returning, so a missing or undecodable file leaves the
// engine idle.
func (e *Engine) PlayLoopWithRamp(path string, ramp Ramp) error {
	e.ctl.Lock()
	defer e.ctl.Unlock()

	e.stopLocked()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrSoundFileNotFound, path)
		}
		return fmt.Errorf("reading sound file: %w", err)
	}
	format, samples, err := DecodeWAV(data)
	if err != nil {
		return fmt.Errorf("decoding %s: %w", path, err)
	}

	s := &session{
		id:     uuid.NewString(),
		cancel: make(chan struct{}),
		done:   make(chan struct{}),
	}
	e.mu.Lock()
	e.gen++
	s.gen = e.gen
	e.status = Status{Playing: true, Volume: ramp.VolumeAt(0), Session: s.id}
	e.mu.Unlock()
	e.sess = s

	e.log.Info("audio session started",
		"session", s.id,
		"path", path,
		"ramp", ramp.Duration,
		"start_volume", ramp.StartVolume,
		"max_volume", ramp.MaxVolume,
	)
	go e.run(s, format, samples, ramp)
	return nil
}

// Stop cancels the running session, waits up to StopTimeout for it to exit
// and resets the status. Safe to call when nothing is playing.
func (e *Engine) Stop() {
	e.ctl.Lock()
	defer e.ctl.Unlock()
	e.stopLocked()
}

// Close stops playback. The engine may still be reused afterwards.
func (e *Engine) Close() error {
	e.Stop()
	return nil
}

func (e *Engine) Status() Status {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.status
}

func (e *Engine) stopLocked() {
	if s := e.sess; s != nil {
		e.sess = nil
		close(s.cancel)
		select {
		case <-s.done:
			e.log.Debug("audio session stopped", "session", s.id)
		case <-time.After(e.opts.StopTimeout):
			e.log.Warn("audio session did not exit before timeout", "session", s.id, "timeout", e.opts.StopTimeout)
		}
	}
	// Bumping the generation fences off writes from a worker that missed the timeout.
	e.mu.Lock()
	e.gen++
	e.status = Status{}
	e.mu.Unlock()
}

func (e *Engine) publish(gen uint64, st Status) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if gen == e.gen {
		e.status = st
	}
}

func (e *Engine) run(s *session, format Format, samples []byte, ramp Ramp) {
	defer close(s.done)

	start := e.opts.Now()
	volume := func() float64 {
		return ramp.VolumeAt(e.opts.Now().Sub(start))
	}

	for {
		p, err := e.backend.NewPlayer(format, bytes.NewReader(samples))
		if err != nil {
			e.log.Error("audio player unavailable", "session", s.id, "error", err)
			e.publish(s.gen, Status{})
			return
		}

		v := volume()
		p.SetVolume(v)
		e.publish(s.gen, Status{Playing: true, Volume: v, Session: s.id})
		p.Play()

		if stopped := e.waitClip(s, p, volume); stopped {
			return
		}
		if err := p.Close(); err != nil {
			e.log.Warn("closing audio player", "session", s.id, "error", err)
		}

		select {
		case <-s.cancel:
			return
		case <-time.After(e.opts.LoopPause):
		}
	}
}

// waitClip polls until the clip finishes or the session is cancelled,
// updating the volume on every tick. It reports whether cancellation was seen,
// in which case the player has already been closed.
func (e *Engine) waitClip(s *session, p Player, volume func() float64) bool {
	ticker := time.NewTicker(e.opts.PollInterval)
	defer ticker.Stop()

	for p.IsPlaying() {
		select {
		case <-s.cancel:
			p.Pause()
			_ = p.Close()
			return true
		case <-ticker.C:
			v := volume()
			p.SetVolume(v)
			e.publish(s.gen, Status{Playing: true, Volume: v, Session: s.id})
		}
	}
	return false
}
