package cli

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexanderramin/bedside/internal/domain"
	"github.com/alexanderramin/bedside/internal/platform"
	"github.com/alexanderramin/bedside/internal/testutil"
)

func TestNext(t *testing.T) {
	env := newTestEnv(t)

	out, err := executeCmd(t, env.app, "next")
	require.NoError(t, err)
	assert.Contains(t, out, "No alarms scheduled.")

	testutil.SeedWeekly(t, env.repo, "Work", 7, 30, domain.MaskWeekdays)
	testutil.SeedWeekly(t, env.repo, "Gym", 6, 0, domain.MaskWeekdays)

	out, err = executeCmd(t, env.app, "next")
	require.NoError(t, err)
	assert.Contains(t, out, "Work")
	assert.Contains(t, out, "Today 07:30")
	assert.Contains(t, out, "in 30m 00s")
}

func TestNext_WatchPrintsUntilCancelled(t *testing.T) {
	env := newTestEnv(t)
	testutil.SeedWeekly(t, env.repo, "Work", 7, 30, domain.MaskWeekdays)

	ctx, cancel := context.WithTimeout(context.Background(), 80*time.Millisecond)
	defer cancel()
	out, err := executeCmdContext(t, ctx, env.app, "next", "--watch", "--interval", "10ms")
	require.NoError(t, err)
	assert.GreaterOrEqual(t, strings.Count(out, "Next: "), 2)
}

func TestNext_WatchRejectsBadInterval(t *testing.T) {
	env := newTestEnv(t)
	_, err := executeCmd(t, env.app, "next", "-w", "--interval", "0s")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--interval must be positive")
}

func TestRun_HeadlessRingsDueAlarm(t *testing.T) {
	env := newTestEnv(t)
	testutil.SeedWeekly(t, env.repo, "Work", 7, 0, domain.MaskWeekdays)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	out, err := executeCmdContext(t, ctx, env.app, "run", "--headless")
	require.NoError(t, err)

	assert.Contains(t, out, "IDLE", "first line is the state at startup")
	assert.Contains(t, out, "RINGING")
	assert.Contains(t, out, "Work")

	plays, stops := env.player.counts()
	assert.Equal(t, 1, plays, "a trigger rings once across ticks")
	assert.GreaterOrEqual(t, stops, 1, "audio is stopped on exit")
	assert.FileExists(t, env.app.Config.Audio.SoundPath, "default tone is written before the clock starts")
}

func TestRun_RestoresPersistedSnooze(t *testing.T) {
	env := newTestEnv(t)
	id := testutil.SeedWeekly(t, env.repo, "Work", 6, 55, domain.MaskWeekdays)
	require.NoError(t, env.repo.SetSnooze(context.Background(), &domain.SnoozeSlot{
		Until:   testutil.RefMonday.Add(4 * time.Minute),
		AlarmID: &id,
	}))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	out, err := executeCmdContext(t, ctx, env.app, "run", "--headless")
	require.NoError(t, err)
	assert.Contains(t, out, "SNOOZED")
	assert.Contains(t, out, "until 07:04")
	assert.Equal(t, domain.PhaseSnoozed, env.app.Machine.State().Phase)
}

func TestRun_EnablesAutostartWhenConfigured(t *testing.T) {
	env := newTestEnv(t)
	env.app.Config.Autostart = true

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	_, err := executeCmdContext(t, ctx, env.app, "run", "--headless")
	require.NoError(t, err)
	assert.True(t, env.launcher.enabled)
}

func TestRun_StateWebsocketListenError(t *testing.T) {
	env := newTestEnv(t)
	env.app.Config.StateWS.Listen = "127.0.0.1:99999"

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := executeCmdContext(t, ctx, env.app, "run", "--headless")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "listening on")
}

func TestTone(t *testing.T) {
	env := newTestEnv(t)
	path := filepath.Join(t.TempDir(), "beep.wav")

	out, err := executeCmd(t, env.app, "tone", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote default tone")
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Positive(t, info.Size())

	out, err = executeCmd(t, env.app, "tone", path)
	require.NoError(t, err)
	assert.Contains(t, out, "already exists")

	require.NoError(t, os.WriteFile(path, []byte("junk"), 0o644))
	out, err = executeCmd(t, env.app, "tone", "--force", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote default tone")
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "RIFF", string(data[:4]))
}

func TestTone_DefaultsToConfiguredPath(t *testing.T) {
	env := newTestEnv(t)

	_, err := executeCmd(t, env.app, "tone")
	require.NoError(t, err)
	assert.FileExists(t, env.app.Config.Audio.SoundPath)
}

func TestAutostart(t *testing.T) {
	env := newTestEnv(t)

	out, err := executeCmd(t, env.app, "autostart", "on")
	require.NoError(t, err)
	assert.Contains(t, out, "Autostart enabled")
	assert.True(t, env.launcher.enabled)

	out, err = executeCmd(t, env.app, "autostart", "on")
	require.NoError(t, err)
	assert.Contains(t, out, "Autostart already on")

	out, err = executeCmd(t, env.app, "autostart", "off")
	require.NoError(t, err)
	assert.Contains(t, out, "Autostart disabled")
	assert.False(t, env.launcher.enabled)

	_, err = executeCmd(t, env.app, "autostart", "maybe")
	require.Error(t, err)
}

func TestAutostart_LauncherUnavailable(t *testing.T) {
	env := newTestEnv(t)
	boom := errors.New("no executable")
	env.app.Launcher = func() (platform.Launcher, error) { return nil, boom }

	_, err := executeCmd(t, env.app, "autostart", "on")
	assert.ErrorIs(t, err, boom)
}

func TestConfigCmd_PrintsYAML(t *testing.T) {
	env := newTestEnv(t)

	out, err := executeCmd(t, env.app, "config")
	require.NoError(t, err)
	assert.Contains(t, out, "snooze_minutes: 9")
	assert.Contains(t, out, "sound_path: "+env.app.Config.Audio.SoundPath)
}

func TestRootCmd_BootstrapSeesConfigFlag(t *testing.T) {
	env := newTestEnv(t)
	var seen string
	env.app.Bootstrap = func(app *App) error {
		seen = app.ConfigPath
		return nil
	}

	_, err := executeCmd(t, env.app, "--config", "/tmp/bedside.yaml", "next")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/bedside.yaml", seen)

	env.app.Bootstrap = func(*App) error { return errors.New("bad config") }
	_, err = executeCmd(t, env.app, "next")
	require.EqualError(t, err, "bad config")
}
