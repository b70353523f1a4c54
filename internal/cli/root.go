package cli

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/alexanderramin/bedside/internal/config"
	"github.com/alexanderramin/bedside/internal/platform"
	"github.com/alexanderramin/bedside/internal/service"
)

// App holds the configuration and services used by CLI commands.
type App struct {
	// ConfigPath is bound to the --config flag before Bootstrap runs.
	ConfigPath string

	Config  config.Config
	Logger  *slog.Logger
	Alarms  service.AlarmService
	Machine *service.RingingMachine
	Player  service.AudioPlayer

	Now           func() time.Time
	IsInteractive func() bool
	Launcher      func() (platform.Launcher, error)

	// Bootstrap fills the fields above from ConfigPath. Tests leave it nil
	// and wire the App directly.
	Bootstrap func(app *App) error
}

func (a *App) now() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now()
}

func (a *App) logger() *slog.Logger {
	if a.Logger != nil {
		return a.Logger
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func (a *App) interactive() bool {
	return a.IsInteractive != nil && a.IsInteractive()
}

// NewRootCmd creates the top-level "bedside" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "bedside",
		Short:         "Bedside alarm clock",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if app.Bootstrap == nil {
				return nil
			}
			return app.Bootstrap(app)
		},
	}
	root.PersistentFlags().StringVar(&app.ConfigPath, "config", "", "Config file (default ~/.bedside/config.yaml)")

	root.AddCommand(
		newAlarmCmd(app),
		newNextCmd(app),
		newRunCmd(app),
		newToneCmd(app),
		newAutostartCmd(app),
		newConfigCmd(app),
	)

	return root
}

func cmdContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
