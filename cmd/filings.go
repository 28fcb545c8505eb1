package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/statements-cli/internal/edgar"
	"github.com/sells-group/statements-cli/internal/model"
	"github.com/sells-group/statements-cli/internal/pipeline"
	"github.com/sells-group/statements-cli/internal/statement"
)

var filingsCmd = &cobra.Command{
	Use:   "filings <ticker|cik>",
	Short: "List the filings an extraction would read, with their fiscal quarters",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		start, _ := cmd.Flags().GetInt("start")
		end, _ := cmd.Flags().GetInt("end")
		if end == 0 {
			end = time.Now().Year()
		}

		f := initFetcher()
		company, err := edgar.Resolve(ctx, initLookup(f), args[0])
		if err != nil {
			return eris.Wrap(err, "filings")
		}
		company, filings, err := initEDGAR(f).ListFilings(ctx, company, edgar.FilingQuery{
			Forms:             cfg.Extract.Forms,
			StartYear:         start,
			EndYear:           end,
			IncludeAmendments: cfg.Extract.IncludeAmendments,
		})
		if err != nil {
			return eris.Wrap(err, "filings")
		}

		cal := pipeline.ResolveCalendar(cfg, company)
		_, _ = fmt.Fprintf(os.Stdout, "%s (%s, CIK %s), fiscal year ends month %d\n\n",
			company.DisplayName(), company.Ticker, company.CIK, cal.YearEndMonth)
		if len(filings) == 0 {
			fmt.Fprintln(os.Stderr, "No filings found.")
			return nil
		}
		formatFilings(os.Stdout, cal, filings)
		return nil
	},
}

func init() {
	filingsCmd.Flags().Int("start", time.Now().Year()-2, "first filing year")
	filingsCmd.Flags().Int("end", 0, "last filing year (default current year)")
	rootCmd.AddCommand(filingsCmd)
}

// formatFilings writes one row per filing with the period label it would get.
func formatFilings(out io.Writer, cal statement.Calendar, filings []model.Filing) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "PERIOD\tFORM\tREPORT_DATE\tFILED\tACCESSION")
	_, _ = fmt.Fprintln(w, "------\t----\t-----------\t-----\t---------")
	for _, f := range filings {
		period, err := cal.Label(f.ReportDate)
		label := string(period)
		if err != nil {
			label = "?"
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			label, f.FormType, f.ReportDate, f.FilingDate, f.AccessionNumber)
	}
	_ = w.Flush()
}
