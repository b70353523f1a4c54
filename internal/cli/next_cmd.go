package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/alexanderramin/bedside/internal/cli/formatter"
)

func newNextCmd(app *App) *cobra.Command {
	var watch bool
	var interval time.Duration

	cmd := &cobra.Command{
		Use:   "next",
		Short: "Show the next alarm and the time left until it rings",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmdContext(cmd)
			out := cmd.OutOrStdout()

			show := func() error {
				now := app.now()
				next, err := app.Alarms.Next(ctx, now)
				if err != nil {
					return err
				}
				fmt.Fprintln(out, formatter.FormatNext(next, now))
				return nil
			}

			if err := show(); err != nil {
				return err
			}
			if !watch {
				return nil
			}
			if interval <= 0 {
				return fmt.Errorf("--interval must be positive, got %s", interval)
			}

			ticker := time.NewTicker(interval)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return nil
				case <-ticker.C:
					if err := show(); err != nil {
						if ctx.Err() != nil {
							return nil
						}
						return err
					}
				}
			}
		},
	}

	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Keep printing the countdown until interrupted")
	cmd.Flags().DurationVar(&interval, "interval", time.Second, "Refresh interval for --watch")

	return cmd
}
