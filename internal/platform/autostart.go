// Package platform holds integrations with the host desktop session.
package platform

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/emersion/go-autostart"
)

const (
	AppName        = "bedside"
	AppDisplayName = "Bedside Alarm Clock"
)

// Launcher is the subset of *autostart.App the toggle needs.
type Launcher interface {
	IsEnabled() bool
	Enable() error
	Disable() error
}

// NewLauncher builds the session autostart entry that runs the current
// executable with args (normally "run").
func NewLauncher(args ...string) (*autostart.App, error) {
	execPath, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("locating executable: %w", err)
	}
	execPath, err = filepath.EvalSymlinks(execPath)
	if err != nil {
		return nil, fmt.Errorf("resolving executable: %w", err)
	}
	return &autostart.App{
		Name:        AppName,
		DisplayName: AppDisplayName,
		Exec:        append([]string{execPath}, args...),
	}, nil
}

// SetAutostart enables or disables the launcher. It reports whether anything
// changed; asking for the current state is a no-op.
func SetAutostart(l Launcher, enable bool) (bool, error) {
	if l.IsEnabled() == enable {
		return false, nil
	}
	if enable {
		if err := l.Enable(); err != nil {
			return false, fmt.Errorf("enabling autostart: %w", err)
		}
		return true, nil
	}
	if err := l.Disable(); err != nil {
		return false, fmt.Errorf("disabling autostart: %w", err)
	}
	return true, nil
}
