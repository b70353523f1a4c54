package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/alexanderramin/bedside/internal/audio"
)

func newToneCmd(app *App) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "tone [path]",
		Short: "Write the built-in alarm beep as a WAV file",
		Long: `Write the built-in alarm beep (0.6s, 880 Hz, 16-bit mono WAV) to path,
or to the configured audio.sound_path. An existing file is kept unless --force.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := app.Config.Audio.SoundPath
			if len(args) == 1 {
				path = args[0]
			}
			if path == "" {
				return fmt.Errorf("no path given and audio.sound_path is not set")
			}
			out := cmd.OutOrStdout()

			if force {
				if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
					return fmt.Errorf("creating sound directory: %w", err)
				}
				if err := os.WriteFile(path, audio.DefaultTone(), 0o644); err != nil {
					return fmt.Errorf("writing default tone: %w", err)
				}
				fmt.Fprintf(out, "Wrote default tone to %s\n", path)
				return nil
			}

			created, err := audio.EnsureDefaultTone(path)
			if err != nil {
				return err
			}
			if created {
				fmt.Fprintf(out, "Wrote default tone to %s\n", path)
			} else {
				fmt.Fprintf(out, "%s already exists (use --force to overwrite)\n", path)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file")
	return cmd
}
