package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"tccretro/internal/calendar"
)

type calendarDay struct {
	Date    string `json:"date"`
	Weekday string `json:"weekday"`
	Kind    string `json:"kind"`
	Holiday string `json:"holiday,omitempty"`
}

func newCalendarCommand(ctx *commandContext) *cobra.Command {
	var dates rangeFlags
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "calendar",
		Short: "Show Japanese weekday, weekend, and holiday classification for a range",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			rg, err := dates.resolve(cfg.Input.DateLayouts)
			if err != nil {
				return err
			}
			resolver := calendar.NewResolver()
			if rg == nil {
				y := calendar.SingleDay(resolver.Yesterday())
				rg = &y
			}
			if rg.Days() > 366 {
				return errors.New("calendar range is limited to 366 days")
			}

			days := resolver.Days(*rg)
			if asJSON {
				out := make([]calendarDay, 0, len(days))
				for _, d := range days {
					out = append(out, calendarDay{
						Date:    d.Date.Format(calendar.DateLayout),
						Weekday: d.Weekday.String(),
						Kind:    d.Kind(),
						Holiday: d.HolidayName,
					})
				}
				return writeJSON(cmd, out)
			}

			rows := make([][]string, 0, len(days))
			for _, d := range days {
				rows = append(rows, []string{
					d.Date.Format(calendar.DateLayout),
					d.Weekday.String()[:3],
					d.Kind(),
					d.HolidayName,
				})
			}
			w := cmd.OutOrStdout()
			_, err = fmt.Fprintln(w, renderTable(
				[]string{"Date", "Weekday", "Type", "Holiday"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft},
				shouldColorize(w),
			))
			return err
		},
	}

	cmd.Flags().StringVar(&dates.date, "date", "", "Single date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&dates.start, "start", "", "Range start date (requires --end)")
	cmd.Flags().StringVar(&dates.end, "end", "", "Range end date (requires --start)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}
