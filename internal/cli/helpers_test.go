package cli

import (
	"bytes"
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/alexanderramin/bedside/internal/audio"
	"github.com/alexanderramin/bedside/internal/config"
	"github.com/alexanderramin/bedside/internal/platform"
	"github.com/alexanderramin/bedside/internal/repository"
	"github.com/alexanderramin/bedside/internal/service"
	"github.com/alexanderramin/bedside/internal/testutil"
)

type fakePlayer struct {
	mu      sync.Mutex
	plays   int
	stops   int
	playing bool
}

func (p *fakePlayer) PlayLoopWithRamp(string, audio.Ramp) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.plays++
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
		return audio.Status{Playing: true, Volume: 0.4, Session: "fake"}
	}
	return audio.Status{}
}

func (p *fakePlayer) counts() (plays, stops int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.plays, p.stops
}

type fakeLauncher struct {
	enabled bool
}

func (l *fakeLauncher) IsEnabled() bool { return l.enabled }
func (l *fakeLauncher) Enable() error   { l.enabled = true; return nil }
func (l *fakeLauncher) Disable() error  { l.enabled = false; return nil }

type testEnv struct {
	app      *App
	repo     *repository.SQLiteAlarmRepo
	player   *fakePlayer
	launcher *fakeLauncher
}

// newTestEnv wires a full App on an in-memory DB with a fixed clock at
// testutil.RefMonday (Monday 07:00 UTC) and a fake audio player.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	repo, database := testutil.NewTestAlarmRepo(t)
	player := &fakePlayer{}
	launcher := &fakeLauncher{}

	cfg := config.DefaultConfig()
	cfg.Audio.SoundPath = filepath.Join(t.TempDir(), "sounds", "alarm.wav")
	cfg.Alarm.TickIntervalMS = 5

	app := &App{
		Config:   cfg,
		Alarms:   service.NewAlarmService(repo, testutil.NewTestUoW(database)),
		Machine:  service.NewRingingMachine(repo, player, cfg.RingingConfig(), nil),
		Player:   player,
		Now:      func() time.Time { return testutil.RefMonday },
		Launcher: func() (platform.Launcher, error) { return launcher, nil },
	}
	return &testEnv{app: app, repo: repo, player: player, launcher: launcher}
}

// executeCmd runs a cobra command and captures stdout/stderr.
func executeCmd(t *testing.T, app *App, args ...string) (string, error) {
	t.Helper()
	return executeCmdContext(t, context.Background(), app, args...)
}

func executeCmdContext(t *testing.T, ctx context.Context, app *App, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd(app)
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)
	err := root.ExecuteContext(ctx)
	return buf.String(), err
}
