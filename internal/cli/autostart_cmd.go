package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alexanderramin/bedside/internal/platform"
)

func newAutostartCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:       "autostart on|off",
		Short:     "Start the clock with the desktop session",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"on", "off"},
		RunE: func(cmd *cobra.Command, args []string) error {
			var enable bool
			switch args[0] {
			case "on":
				enable = true
			case "off":
			default:
				return fmt.Errorf("expected on or off, got %q", args[0])
			}
			if app.Launcher == nil {
				return errors.New("autostart is not available")
			}

			l, err := app.Launcher()
			if err != nil {
				return err
			}
			changed, err := platform.SetAutostart(l, enable)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			switch {
			case !changed:
				fmt.Fprintf(out, "Autostart already %s\n", args[0])
			case enable:
				fmt.Fprintln(out, "Autostart enabled")
			default:
				fmt.Fprintln(out, "Autostart disabled")
			}
			return nil
		},
	}
}
