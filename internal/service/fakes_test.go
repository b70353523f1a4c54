package service

import (
	"context"
	"sync"

	"github.com/alexanderramin/bedside/internal/audio"
)

type fakePlayer struct {
	mu      sync.Mutex
	plays   []string
	stops   int
	playing bool
	failErr error
}

func (p *fakePlayer) PlayLoopWithRamp(path string, ramp audio.Ramp) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.playing = false
	if p.failErr != nil {
		return p.failErr
	}
	p.plays = append(p.plays, path)
	p.playing = true
	return nil
}

func (p *fakePlayer) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stops++
	p.playing = false
}

func (p *fakePlayer) Status() audio.Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.playing {
		return audio.Status{Playing: true, Volume: 1, Session: "fake"}
	}
	return audio.Status{}
}

func (p *fakePlayer) playCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.plays)
}

func (p *fakePlayer) isPlaying() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.playing
}

type recordingObserver struct {
	mu     sync.Mutex
	events []UseCaseEvent
}

func (o *recordingObserver) ObserveUseCase(_ context.Context, e UseCaseEvent) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.events = append(o.events, e)
}

func (o *recordingObserver) names() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]string, 0, len(o.events))
	for _, e := range o.events {
		out = append(out, e.Name)
	}
	return out
}
