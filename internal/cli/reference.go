package cli

import (
	"fmt"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/okian/profilemeta/internal/domain/calendar"
	"github.com/okian/profilemeta/internal/domain/sensors"
	"github.com/okian/profilemeta/internal/domain/solarbands"
)

type doyResult struct {
	Date      string `json:"date"`
	DayOfYear int    `json:"day_of_year"`
}

func doyCommand(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "doy DATE | doy YEAR DAY",
		Short: "Convert between a calendar date and a day of year",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(_ *cobra.Command, args []string) error {
			var d time.Time
			if len(args) == 1 {
				var err error
				if d, err = calendar.ParseDate(args[0]); err != nil {
					return err
				}
			} else {
				year, err := strconv.Atoi(args[0])
				if err != nil {
					return fmt.Errorf("year %q: %w", args[0], err)
				}
				day, err := strconv.Atoi(args[1])
				if err != nil {
					return fmt.Errorf("day %q: %w", args[1], err)
				}
				d = calendar.DateFromDayOfYear(year, day)
			}
			res := doyResult{Date: d.Format(time.DateOnly), DayOfYear: calendar.DayOfYear(d)}
			if env.jsonOut {
				return env.printJSON(res)
			}
			env.printf("%s\t%d\n", res.Date, res.DayOfYear)
			return nil
		},
	}
}

func bandsCommand(env *Env) *cobra.Command {
	var (
		lat, lon  float64
		date      string
		halfWidth int
	)
	cmd := &cobra.Command{
		Use:   "bands",
		Short: "Suggest midnight and noon bands from the solar position at a site",
		RunE: func(cmd *cobra.Command, _ []string) error {
			d := time.Now().UTC()
			if date != "" {
				var err error
				if d, err = calendar.ParseDate(date); err != nil {
					return err
				}
			}
			svc, err := env.start(cmd.Context())
			if err != nil {
				return err
			}
			s, err := svc.SuggestBands(lat, lon, d, time.Duration(halfWidth)*time.Minute)
			if err != nil {
				return err
			}
			if env.jsonOut {
				return env.printJSON(s)
			}
			env.printf("solar midnight  %s  band [%s, %s]\n",
				s.SolarMidnight.Format(recordTimeLayout), clock(s.Bands.Midnight.Lo), clock(s.Bands.Midnight.Hi))
			env.printf("solar noon      %s  band [%s, %s]\n",
				s.SolarNoon.Format(recordTimeLayout), clock(s.Bands.Noon.Lo), clock(s.Bands.Noon.Hi))
			return nil
		},
	}
	cmd.Flags().Float64Var(&lat, "lat", 44.53, "Latitude in degrees")
	cmd.Flags().Float64Var(&lon, "lon", -125.39, "Longitude in degrees, east positive")
	cmd.Flags().StringVar(&date, "date", "", "Day to compute for, YYYY-MM-DD (default today)")
	cmd.Flags().IntVar(&halfWidth, "half-width", int(solarbands.DefaultHalfWidth/time.Minute), "Band half-width in minutes")
	return cmd
}

func sensorsCommand(env *Env) *cobra.Command {
	var schedule string
	cmd := &cobra.Command{
		Use:   "sensors [CODE]",
		Short: "Show the sensor data dictionary",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := env.start(cmd.Context())
			if err != nil {
				return err
			}
			var list []sensors.Sensor
			if len(args) == 1 {
				s, err := svc.Sensor(args[0])
				if err != nil {
					return err
				}
				list = []sensors.Sensor{s}
			} else {
				all, err := svc.Sensors()
				if err != nil {
					return err
				}
				for _, s := range all {
					if schedule == "" || string(s.Schedule) == schedule {
						list = append(list, s)
					}
				}
			}
			if env.jsonOut {
				return env.printJSON(list)
			}
			tw := tabwriter.NewWriter(env.Out, 0, 4, 2, ' ', 0)
			_, _ = fmt.Fprintln(tw, "CODE\tNAME\tINSTRUMENT\tSCHEDULE\tRANGE")
			for _, s := range list {
				rng := "-"
				if len(s.Range) == 2 {
					rng = fmt.Sprintf("%g..%g", s.Range[0], s.Range[1])
				}
				_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", s.Code, s.Name, s.Instrument, s.Schedule, rng)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&schedule, "schedule", "", "Only list sensors with this schedule")
	return cmd
}

func clock(d time.Duration) string {
	m := int(d / time.Minute)
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}
