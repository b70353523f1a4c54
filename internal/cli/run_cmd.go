package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/alexanderramin/bedside/internal/audio"
	"github.com/alexanderramin/bedside/internal/cli/formatter"
	"github.com/alexanderramin/bedside/internal/platform"
	"github.com/alexanderramin/bedside/internal/service"
	"github.com/alexanderramin/bedside/internal/statews"
)

func newRunCmd(app *App) *cobra.Command {
	var headless bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the clock: ring alarms, snooze and stop",
		Long: `Run the clock. On a terminal this shows a full-screen clock face with
snooze and stop keys; otherwise it runs headless and prints one line per
state change. When state_ws.listen is set, attached displays can follow the
state and snooze or stop over a websocket.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmdContext(cmd)
			if app.Machine == nil {
				return errors.New("ringing machine is not configured")
			}
			defer func() {
				if app.Player != nil {
					app.Player.Stop()
				}
			}()

			prepareRun(app)

			if err := app.Machine.Restore(ctx, app.now()); err != nil {
				return fmt.Errorf("restoring snooze: %w", err)
			}

			ctx, cancel := context.WithCancel(ctx)
			defer cancel()

			var wg sync.WaitGroup
			errCh := make(chan error, 1)
			if listen := app.Config.StateWS.Listen; listen != "" {
				srv := statews.NewServer(app.logger(), app.Machine, statews.ServerConfig{Now: app.now})
				unsubscribe := app.Machine.Subscribe(srv.Publish)
				defer unsubscribe()

				wg.Add(1)
				go func() {
					defer wg.Done()
					if err := srv.ListenAndServe(ctx, listen); err != nil {
						errCh <- err
						cancel()
					}
				}()
			}

			var err error
			if !headless && app.interactive() {
				err = runClockFace(ctx, app)
			} else {
				err = runHeadless(ctx, app, cmd.OutOrStdout())
			}
			cancel()
			wg.Wait()

			if err != nil {
				return err
			}
			select {
			case err := <-errCh:
				return err
			default:
				return nil
			}
		},
	}

	cmd.Flags().BoolVar(&headless, "headless", false, "Never start the clock face, even on a terminal")
	return cmd
}

// prepareRun does the best-effort setup before the clock starts: the default
// tone and the autostart entry. Failures are logged, never fatal.
func prepareRun(app *App) {
	logger := app.logger()
	if path := app.Config.Audio.SoundPath; path != "" {
		created, err := audio.EnsureDefaultTone(path)
		switch {
		case err != nil:
			logger.Warn("default alarm tone unavailable", "path", path, "error", err)
		case created:
			logger.Info("wrote default alarm tone", "path", path)
		}
	}

	if app.Config.Autostart && app.Launcher != nil {
		l, err := app.Launcher()
		if err == nil {
			_, err = platform.SetAutostart(l, true)
		}
		if err != nil {
			logger.Warn("autostart not enabled", "error", err)
		}
	}
}

func runClockFace(ctx context.Context, app *App) error {
	model := newClockModel(ctx, app.Machine, app.now, app.Config.TickInterval())
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("clock face: %w", err)
	}
	return nil
}

// runHeadless ticks the machine until ctx is done and prints a line for every
// published state change.
func runHeadless(ctx context.Context, app *App, out io.Writer) error {
	var mu sync.Mutex
	unsubscribe := app.Machine.Subscribe(func(v service.View) {
		mu.Lock()
		defer mu.Unlock()
		fmt.Fprintln(out, formatter.FormatStateLine(v))
	})
	defer unsubscribe()

	interval := app.Config.TickInterval()
	if interval <= 0 {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	tick := func() {
		if err := app.Machine.Tick(ctx, app.now()); err != nil {
			app.logger().Warn("alarm tick failed", "error", err)
		}
	}

	app.logger().Info("clock running", "tick_interval", interval)
	mu.Lock()
	fmt.Fprintln(out, formatter.FormatStateLine(app.Machine.View(app.now())))
	mu.Unlock()
	tick()
	for {
		select {
		case <-ctx.Done():
			app.logger().Info("clock stopped")
			return nil
		case <-ticker.C:
			tick()
		}
	}
}
