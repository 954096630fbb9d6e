package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/okian/profilemeta/internal/audit"
	"github.com/okian/profilemeta/pkg/logger"
)

type auditResult struct {
	Results []audit.Result `json:"results"`
	Totals  audit.Totals   `json:"totals"`
}

func auditCommand(env *Env) *cobra.Command {
	var (
		site     string
		from, to int
		workers  int
	)
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Evaluate whole years of one site concurrently",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if to == 0 {
				to = from
			}
			if to < from {
				return fmt.Errorf("--to %d is before --from %d", to, from)
			}
			svc, err := env.start(cmd.Context())
			if err != nil {
				return err
			}
			pool := audit.NewPool(svc,
				audit.WithWorkers(workers),
				audit.WithLogger(logger.Get().Named("audit")),
			)
			results := pool.Run(cmd.Context(), audit.YearJobs(site, from, to))
			totals := audit.Summarize(results)
			if env.jsonOut {
				return env.printJSON(auditResult{Results: results, Totals: totals})
			}

			tw := tabwriter.NewWriter(env.Out, 0, 4, 2, ' ', 0)
			_, _ = fmt.Fprintln(tw, "YEAR\tCYCLES\tEXPECTED\tMIDNIGHT\tNOON\tANOMALIES\tERROR")
			for _, r := range results {
				if r.Err != nil {
					_, _ = fmt.Fprintf(tw, "%d\t-\t-\t-\t-\t-\t%s\n", r.Job.Year, r.Error)
					continue
				}
				_, _ = fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%d\t%d\t\n", r.Job.Year,
					humanize.Comma(int64(r.Report.Total)), humanize.Comma(int64(r.Report.ExpectedCycles)),
					r.Report.Midnight, r.Report.Noon, len(r.Report.Anomalies))
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			env.printf("%d of %d years evaluated, %s cycles\n",
				totals.Jobs-totals.Failed, totals.Jobs, humanize.Comma(int64(totals.Cycles)))
			return nil
		},
	}
	cmd.Flags().StringVar(&site, "site", "osb", "Site code")
	cmd.Flags().IntVar(&from, "from", 0, "First year")
	cmd.Flags().IntVar(&to, "to", 0, "Last year (default --from)")
	cmd.Flags().IntVar(&workers, "workers", 0, "Concurrent evaluations (default CPU count)")
	_ = cmd.MarkFlagRequired("from")
	return cmd
}
