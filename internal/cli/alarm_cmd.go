package cli

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/alexanderramin/bedside/internal/cli/formatter"
	"github.com/alexanderramin/bedside/internal/domain"
	"github.com/alexanderramin/bedside/internal/scheduler"
	"github.com/alexanderramin/bedside/internal/service"
)

// scheduleFlags are the flags shared by "alarm add" and "alarm edit".
type scheduleFlags struct {
	label    string
	timeText string
	days     string
	date     string
}

func (f *scheduleFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.label, "label", "", "Alarm label")
	fs.StringVar(&f.timeText, "time", "", "Time of day (HH:MM, 24h)")
	fs.StringVar(&f.days, "days", "", "Repeat days: mon,tue,... or weekdays, weekend, daily")
	fs.StringVar(&f.date, "date", "", "One-shot date (YYYY-MM-DD)")
}

func (f *scheduleFlags) validate() error {
	if f.days != "" && f.date != "" {
		return service.ErrConflictingSchedule
	}
	return nil
}

func parseAlarmID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid alarm id %q", s)
	}
	return id, nil
}

func newAlarmCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "alarm",
		Short: "Manage alarms",
	}

	cmd.AddCommand(
		newAlarmAddCmd(app),
		newAlarmListCmd(app),
		newAlarmEditCmd(app),
		newAlarmEnableCmd(app, true),
		newAlarmEnableCmd(app, false),
		newAlarmRemoveCmd(app),
	)

	return cmd
}

func newAlarmAddCmd(app *App) *cobra.Command {
	var flags scheduleFlags
	var disabled, interactive bool

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create an alarm",
		Example: `  bedside alarm add --time 07:00 --days weekdays --label "Work"
  bedside alarm add --time 05:30 --date 2025-07-01 --label "Flight"
  bedside alarm add -i`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmdContext(cmd)

			if interactive {
				in, err := runAlarmForm(app.now())
				if err != nil {
					return err
				}
				flags = in
			}
			if err := flags.validate(); err != nil {
				return err
			}
			if flags.timeText == "" {
				return errors.New("--time is required")
			}

			var (
				a   *domain.Alarm
				err error
			)
			if flags.date != "" {
				date, perr := domain.ParseDate(flags.date, time.Local)
				if perr != nil {
					return perr
				}
				a, err = app.Alarms.AddOneShot(ctx, flags.label, flags.timeText, date, !disabled)
			} else {
				if flags.days == "" {
					return errors.New("either --days or --date is required")
				}
				mask, perr := domain.ParseWeekdays(flags.days)
				if perr != nil {
					return perr
				}
				a, err = app.Alarms.AddWeekly(ctx, flags.label, flags.timeText, mask, !disabled)
			}
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Created alarm %s\n", formatter.FormatAlarm(*a))
			return nil
		},
	}

	flags.register(cmd.Flags())
	cmd.Flags().BoolVar(&disabled, "disabled", false, "Create the alarm switched off")
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "Fill in the alarm with a form")

	return cmd
}

func newAlarmListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List alarms with their next ring time",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmdContext(cmd)
			out := cmd.OutOrStdout()

			alarms, err := app.Alarms.List(ctx)
			if err != nil {
				return err
			}
			if len(alarms) == 0 {
				fmt.Fprintln(out, "No alarms found.")
				return nil
			}

			now := app.now()
			next := make(map[int64]time.Time, len(alarms))
			for _, n := range scheduler.Upcoming(alarms, now) {
				next[n.Alarm.ID] = n.TriggerAt
			}
			fmt.Fprint(out, formatter.FormatAlarmList(alarms, next, now))

			slot, err := app.Alarms.SnoozeSlot(ctx)
			if err != nil {
				return err
			}
			if slot != nil && slot.Until.After(now) {
				ref := ""
				if slot.AlarmID != nil {
					ref = fmt.Sprintf(" (alarm #%d)", *slot.AlarmID)
				}
				fmt.Fprintf(out, "\nSnoozed until %s%s\n", slot.Until.In(now.Location()).Format("15:04"), ref)
			}
			return nil
		},
	}
}

func newAlarmEditCmd(app *App) *cobra.Command {
	var flags scheduleFlags

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change an alarm's label, time or schedule",
		Long: `Change an alarm's label, time or schedule. Only the flags given are changed.
The alarm is replaced by an edited copy, so it gets a new id.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseAlarmID(args[0])
			if err != nil {
				return err
			}
			if err := flags.validate(); err != nil {
				return err
			}

			var edit service.AlarmEdit
			fs := cmd.Flags()
			if fs.Changed("label") {
				edit.Label = &flags.label
			}
			if fs.Changed("time") {
				edit.TimeText = &flags.timeText
			}
			if fs.Changed("days") {
				mask, err := domain.ParseWeekdays(flags.days)
				if err != nil {
					return err
				}
				edit.Days = &mask
			}
			if fs.Changed("date") {
				date, err := domain.ParseDate(flags.date, time.Local)
				if err != nil {
					return err
				}
				edit.Date = &date
			}
			if edit == (service.AlarmEdit{}) {
				return errors.New("nothing to change: pass --label, --time, --days or --date")
			}

			a, err := app.Alarms.Edit(cmdContext(cmd), id, edit)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated alarm %s\n", formatter.FormatAlarm(*a))
			return nil
		},
	}

	flags.register(cmd.Flags())
	return cmd
}

func newAlarmEnableCmd(app *App, enabled bool) *cobra.Command {
	use, short, verb := "enable <id>", "Switch an alarm on", "Enabled"
	if !enabled {
		use, short, verb = "disable <id>", "Switch an alarm off", "Disabled"
	}

	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseAlarmID(args[0])
			if err != nil {
				return err
			}
			if err := app.Alarms.SetEnabled(cmdContext(cmd), id, enabled); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s alarm #%d\n", verb, id)
			return nil
		},
	}
}

func newAlarmRemoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "remove <id>",
		Aliases: []string{"rm"},
		Short:   "Delete an alarm",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseAlarmID(args[0])
			if err != nil {
				return err
			}
			if err := app.Alarms.Delete(cmdContext(cmd), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed alarm #%d\n", id)
			return nil
		},
	}
}
