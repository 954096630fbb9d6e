package cli

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/okian/profilemeta/internal/domain/calendar"
	"github.com/okian/profilemeta/internal/domain/model"
	"github.com/okian/profilemeta/internal/domain/selector"
)

const recordTimeLayout = "2006-01-02 15:04:05"

type siteYearFlags struct {
	site string
	year int
}

func (f *siteYearFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.site, "site", "osb", "Site code")
	cmd.Flags().IntVar(&f.year, "year", 0, "Year of the table")
	_ = cmd.MarkFlagRequired("year")
}

type windowResult struct {
	Site    string              `json:"site"`
	Year    int                 `json:"year"`
	Indices []int               `json:"indices"`
	Records []model.CycleRecord `json:"records"`
}

func windowCommand(env *Env) *cobra.Command {
	var (
		sy           siteYearFlags
		date0, date1 string
		time0, time1 string
	)
	cmd := &cobra.Command{
		Use:   "window",
		Short: "List cycles by date range and time-of-day window",
		Long: "Selects cycles with date0 <= ascent start <= date1 + 1 day and a time of day\n" +
			"between time0 and time1 inclusive. Times are minutes or HH:MM, UTC.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var w selector.Window
			var err error
			if w.Date0, err = calendar.ParseDate(date0); err != nil {
				return err
			}
			if w.Date1, err = calendar.ParseDate(date1); err != nil {
				return err
			}
			if w.Time0, err = calendar.ParseMinutes(time0); err != nil {
				return err
			}
			if w.Time1, err = calendar.ParseMinutes(time1); err != nil {
				return err
			}
			svc, err := env.start(cmd.Context())
			if err != nil {
				return err
			}
			idx, t, err := svc.SelectWindow(cmd.Context(), sy.site, sy.year, w)
			if err != nil {
				return err
			}
			return env.printWindow(t, idx)
		},
	}
	sy.register(cmd)
	cmd.Flags().StringVar(&date0, "date0", "", "First date, YYYY-MM-DD")
	cmd.Flags().StringVar(&date1, "date1", "", "Last date, YYYY-MM-DD")
	cmd.Flags().StringVar(&time0, "time0", "0", "Window start (minutes or HH:MM)")
	cmd.Flags().StringVar(&time1, "time1", "1440", "Window end (minutes or HH:MM)")
	_ = cmd.MarkFlagRequired("date0")
	_ = cmd.MarkFlagRequired("date1")
	return cmd
}

func nearestCommand(env *Env) *cobra.Command {
	var (
		sy     siteYearFlags
		target string
		window int
	)
	cmd := &cobra.Command{
		Use:   "nearest",
		Short: "List cycles within ±window minutes of a target time",
		Long: "Target is YYYY-MM-DDTHH:MM. The window does not wrap across midnight, so\n" +
			"cycles just after midnight are not found from a late-evening target.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := env.start(cmd.Context())
			if err != nil {
				return err
			}
			idx, t, err := svc.FindNearest(cmd.Context(), sy.site, sy.year, target, window)
			if err != nil {
				return err
			}
			return env.printWindow(t, idx)
		},
	}
	sy.register(cmd)
	cmd.Flags().StringVar(&target, "target", "", "Target time, YYYY-MM-DDTHH:MM")
	cmd.Flags().IntVar(&window, "window", 10, "Half-width in minutes")
	_ = cmd.MarkFlagRequired("target")
	return cmd
}

func evaluateCommand(env *Env) *cobra.Command {
	var (
		sy     siteYearFlags
		t0, t1 string
	)
	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Count cycles and classify long descents as midnight or noon",
		RunE: func(cmd *cobra.Command, _ []string) error {
			from, err := parseInstant(t0)
			if err != nil {
				return err
			}
			to, err := parseInstant(t1)
			if err != nil {
				return err
			}
			svc, err := env.start(cmd.Context())
			if err != nil {
				return err
			}
			r, err := svc.Evaluate(cmd.Context(), sy.site, sy.year, from, to)
			if err != nil {
				return err
			}
			if env.jsonOut {
				return env.printJSON(r)
			}
			env.printf("cycles:         %s (expected %s)\n", humanize.Comma(int64(r.Total)), humanize.Comma(int64(r.ExpectedCycles)))
			env.printf("long descents:  %s\n", humanize.Comma(int64(r.LongDescents)))
			env.printf("midnight:       %s\n", humanize.Comma(int64(r.Midnight)))
			env.printf("noon:           %s\n", humanize.Comma(int64(r.Noon)))
			env.printf("anomalies:      %s\n", humanize.Comma(int64(len(r.Anomalies))))
			if r.Descent.Count > 0 {
				env.printf("descent (min):  mean %.1f  sd %.1f  min %.1f  max %.1f\n",
					r.Descent.Mean, r.Descent.StdDev, r.Descent.Min, r.Descent.Max)
			}
			for _, a := range r.Anomalies {
				env.printf("  #%d %s descent %s\n", a.Index, a.AscentStart.Format(recordTimeLayout), a.Descent)
			}
			return nil
		},
	}
	sy.register(cmd)
	cmd.Flags().StringVar(&t0, "t0", "", "Range start, RFC 3339 or YYYY-MM-DD")
	cmd.Flags().StringVar(&t1, "t1", "", "Range end, RFC 3339 or YYYY-MM-DD")
	_ = cmd.MarkFlagRequired("t0")
	_ = cmd.MarkFlagRequired("t1")
	return cmd
}

func (e *Env) printWindow(t *model.Table, idx []int) error {
	if e.jsonOut {
		return e.printJSON(windowResult{Site: t.Site(), Year: t.Year(), Indices: idx, Records: t.Pick(idx)})
	}
	tw := tabwriter.NewWriter(e.Out, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "INDEX\tASCENT START\tDESCENT\tREST")
	for _, i := range idx {
		c := t.At(i)
		_, _ = fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", i, c.AscentStart.Format(recordTimeLayout), c.DescentDuration(), c.RestDuration())
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	e.printf("%s of %s cycles\n", humanize.Comma(int64(len(idx))), humanize.Comma(int64(t.Len())))
	return nil
}

func parseInstant(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	return calendar.ParseDate(s)
}
