package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/alexanderramin/bedside/internal/audio"
	"github.com/alexanderramin/bedside/internal/domain"
	"github.com/alexanderramin/bedside/internal/service"
)

// Config is the on-disk configuration of the bedside clock. Defaults,
// file values and environment overrides are layered in that order by Load.
type Config struct {
	Database  DatabaseConfig `yaml:"database"`
	Audio     AudioConfig    `yaml:"audio"`
	Alarm     AlarmConfig    `yaml:"alarm"`
	Display   DisplayConfig  `yaml:"display"`
	Logging   LoggingConfig  `yaml:"logging"`
	StateWS   StateWSConfig  `yaml:"state_ws"`
	Autostart bool           `yaml:"autostart"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

type AudioConfig struct {
	SoundPath      string  `yaml:"sound_path"`
	RampSeconds    float64 `yaml:"ramp_seconds"`
	StartVolume    float64 `yaml:"start_volume"`
	MaxVolume      float64 `yaml:"max_volume"`
	PollIntervalMS int     `yaml:"poll_interval_ms"`
	StopTimeoutMS  int     `yaml:"stop_timeout_ms"`
	LoopPauseMS    int     `yaml:"loop_pause_ms"`
}

type AlarmConfig struct {
	SnoozeMinutes      int `yaml:"snooze_minutes"`
	TickIntervalMS     int `yaml:"tick_interval_ms"`
	MissedGraceSeconds int `yaml:"missed_grace_seconds"`
}

// DisplayConfig holds the night-mode window; equal hours disable it.
// Timezone is an IANA name for the clock's wall time; empty means the
// system zone.
type DisplayConfig struct {
	NightStartHour int    `yaml:"night_start_hour"`
	NightEndHour   int    `yaml:"night_end_hour"`
	Timezone       string `yaml:"timezone"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

// StateWSConfig enables the state websocket when Listen is non-empty.
type StateWSConfig struct {
	Listen string `yaml:"listen"`
}

func DefaultConfig() Config {
	return Config{
		Database: DatabaseConfig{
			Path: "~/.bedside/bedside.db",
		},
		Audio: AudioConfig{
			SoundPath:      "~/.bedside/sounds/alarm.wav",
			RampSeconds:    30,
			StartVolume:    0.15,
			MaxVolume:      1.0,
			PollIntervalMS: 200,
			StopTimeoutMS:  2000,
			LoopPauseMS:    50,
		},
		Alarm: AlarmConfig{
			SnoozeMinutes:      service.DefaultSnoozeMinutes,
			TickIntervalMS:     500,
			MissedGraceSeconds: 60,
		},
		Display: DisplayConfig{
			NightStartHour: 22,
			NightEndHour:   5,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// DefaultPath is ~/.bedside/config.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("finding home directory: %w", err)
	}
	return filepath.Join(home, ".bedside", "config.yaml"), nil
}

// Load builds the configuration. An empty path uses DefaultPath when that
// file exists and plain defaults otherwise; an explicit path must exist.
// BEDSIDE_* environment variables override file values, then the result is
// validated.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		def, err := DefaultPath()
		if err == nil {
			if _, statErr := os.Stat(def); statErr == nil {
				path = def
			}
		}
	}
	if path != "" {
		fileCfg, err := LoadFile(path)
		if err != nil {
			return Config{}, err
		}
		cfg = fileCfg
	}

	applyEnv(&cfg)
	cfg.Database.Path = ExpandPath(cfg.Database.Path)
	cfg.Audio.SoundPath = ExpandPath(cfg.Audio.SoundPath)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadFile decodes a YAML file on top of the defaults. Unknown keys are
// rejected so typos do not pass silently.
func LoadFile(path string) (Config, error) {
	b, err := os.ReadFile(ExpandPath(path))
	if err != nil {
		return Config{}, fmt.Errorf("read config file: %w", err)
	}

	cfg := DefaultConfig()
	if len(bytes.TrimSpace(b)) == 0 {
		return cfg, nil
	}

	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config yaml: %w", err)
	}
	if err := dec.Decode(&struct{}{}); err == nil {
		return Config{}, errors.New("decode config yaml: unexpected trailing document")
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("BEDSIDE_DB"); v != "" {
		cfg.Database.Path = v
	}
	if v := os.Getenv("BEDSIDE_SOUND"); v != "" {
		cfg.Audio.SoundPath = v
	}
	if v := os.Getenv("BEDSIDE_RAMP_SECONDS"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Audio.RampSeconds = f
		}
	}
	if v := os.Getenv("BEDSIDE_SNOOZE_MINUTES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Alarm.SnoozeMinutes = n
		}
	}
	if v := os.Getenv("BEDSIDE_TICK_INTERVAL_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Alarm.TickIntervalMS = n
		}
	}
	if v := os.Getenv("BEDSIDE_TIMEZONE"); v != "" {
		cfg.Display.Timezone = v
	}
	if v := os.Getenv("BEDSIDE_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v, ok := os.LookupEnv("BEDSIDE_STATE_WS_LISTEN"); ok {
		cfg.StateWS.Listen = v
	}
	if v := os.Getenv("BEDSIDE_AUTOSTART"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Autostart = b
		}
	}
}

// Validate reports every invalid field at once.
func (c Config) Validate() error {
	var problems []string
	add := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	if strings.TrimSpace(c.Database.Path) == "" {
		add("database.path must not be empty")
	}
	if strings.TrimSpace(c.Audio.SoundPath) == "" {
		add("audio.sound_path must not be empty")
	}
	if c.Audio.RampSeconds < 0 {
		add("audio.ramp_seconds must be >= 0 (got %v)", c.Audio.RampSeconds)
	}
	if c.Audio.StartVolume < 0 || c.Audio.StartVolume > 1 {
		add("audio.start_volume must be within [0,1] (got %v)", c.Audio.StartVolume)
	}
	if c.Audio.MaxVolume < 0 || c.Audio.MaxVolume > 1 {
		add("audio.max_volume must be within [0,1] (got %v)", c.Audio.MaxVolume)
	}
	if c.Audio.PollIntervalMS <= 0 || c.Audio.PollIntervalMS > 1000 {
		add("audio.poll_interval_ms must be within 1..1000 (got %d)", c.Audio.PollIntervalMS)
	}
	if c.Audio.StopTimeoutMS <= 0 {
		add("audio.stop_timeout_ms must be > 0 (got %d)", c.Audio.StopTimeoutMS)
	}
	if c.Audio.LoopPauseMS < 0 {
		add("audio.loop_pause_ms must be >= 0 (got %d)", c.Audio.LoopPauseMS)
	}
	if c.Alarm.SnoozeMinutes < 1 || c.Alarm.SnoozeMinutes > 120 {
		add("alarm.snooze_minutes must be within 1..120 (got %d)", c.Alarm.SnoozeMinutes)
	}
	if c.Alarm.TickIntervalMS < 100 || c.Alarm.TickIntervalMS > 5000 {
		add("alarm.tick_interval_ms must be within 100..5000 (got %d)", c.Alarm.TickIntervalMS)
	}
	if c.Alarm.MissedGraceSeconds < 1 {
		add("alarm.missed_grace_seconds must be >= 1 (got %d)", c.Alarm.MissedGraceSeconds)
	} else if c.Alarm.MissedGraceSeconds*1000 < 2*c.Alarm.TickIntervalMS {
		// A shorter look-back lets regular ticks step over a trigger.
		add("alarm.missed_grace_seconds must cover two ticks of %dms (got %ds)",
			c.Alarm.TickIntervalMS, c.Alarm.MissedGraceSeconds)
	}
	if c.Display.NightStartHour < 0 || c.Display.NightStartHour > 23 {
		add("display.night_start_hour must be within 0..23 (got %d)", c.Display.NightStartHour)
	}
	if c.Display.NightEndHour < 0 || c.Display.NightEndHour > 23 {
		add("display.night_end_hour must be within 0..23 (got %d)", c.Display.NightEndHour)
	}
	if _, err := c.Location(); err != nil {
		add("display.timezone: %v", err)
	}
	if _, err := ParseLogLevel(c.Logging.Level); err != nil {
		add("logging.level: %v", err)
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid config:\n  - %s", strings.Join(problems, "\n  - "))
	}
	return nil
}

func (c Config) Ramp() audio.Ramp {
	return audio.Ramp{
		Duration:    time.Duration(c.Audio.RampSeconds * float64(time.Second)),
		StartVolume: c.Audio.StartVolume,
		MaxVolume:   c.Audio.MaxVolume,
	}
}

func (c Config) TickInterval() time.Duration {
	return time.Duration(c.Alarm.TickIntervalMS) * time.Millisecond
}

func (c Config) NightWindow() domain.NightWindow {
	return domain.NightWindow{StartHour: c.Display.NightStartHour, EndHour: c.Display.NightEndHour}
}

// Location resolves display.timezone.
func (c Config) Location() (*time.Location, error) {
	if strings.TrimSpace(c.Display.Timezone) == "" {
		return time.Local, nil
	}
	return time.LoadLocation(c.Display.Timezone)
}

func (c Config) RingingConfig() service.RingingConfig {
	return service.RingingConfig{
		SoundPath:     c.Audio.SoundPath,
		Ramp:          c.Ramp(),
		SnoozeMinutes: c.Alarm.SnoozeMinutes,
		MissedGrace:   time.Duration(c.Alarm.MissedGraceSeconds) * time.Second,
		TickInterval:  c.TickInterval(),
		Night:         c.NightWindow(),
	}
}

func (c Config) EngineOptions() audio.Options {
	return audio.Options{
		PollInterval: time.Duration(c.Audio.PollIntervalMS) * time.Millisecond,
		StopTimeout:  time.Duration(c.Audio.StopTimeoutMS) * time.Millisecond,
		LoopPause:    time.Duration(c.Audio.LoopPauseMS) * time.Millisecond,
	}
}

// Marshal renders the configuration as YAML, for `bedside config`.
func (c Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}

// ExpandPath expands a leading "~" using the user's home directory.
func ExpandPath(p string) string {
	if p == "" || p[0] != '~' {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	if p == "~" {
		return home
	}
	if strings.HasPrefix(p, "~/") {
		return filepath.Join(home, p[2:])
	}
	return p
}
