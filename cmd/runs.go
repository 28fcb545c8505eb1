package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/statements-cli/internal/edgar"
	"github.com/sells-group/statements-cli/internal/model"
	"github.com/sells-group/statements-cli/internal/statement"
	"github.com/sells-group/statements-cli/internal/store"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Inspect extraction run history",
	Long:  "Commands for listing and viewing extraction runs and what each filing contributed.",
}

// -- runs list --

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List extraction runs",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		status, _ := cmd.Flags().GetString("status")
		ticker, _ := cmd.Flags().GetString("ticker")
		limit, _ := cmd.Flags().GetInt("limit")

		filter := store.RunFilter{
			Status: model.RunStatus(status),
			Ticker: edgar.NormalizeTicker(ticker),
			Limit:  limit,
		}

		runs, err := st.ListRuns(ctx, filter)
		if err != nil {
			return eris.Wrap(err, "runs list")
		}

		if len(runs) == 0 {
			fmt.Fprintln(os.Stderr, "No runs found.")
			return nil
		}

		formatRunsList(os.Stdout, runs)
		return nil
	},
}

// -- runs show --

var runsShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show a run and its per-filing outcomes",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		run, err := st.GetRun(ctx, args[0])
		if err != nil {
			return eris.Wrap(err, "runs show")
		}
		outcomes, err := st.ListFilingOutcomes(ctx, run.ID)
		if err != nil {
			return eris.Wrap(err, "runs show")
		}

		asJSON, _ := cmd.Flags().GetBool("json")
		if asJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(struct {
				*model.Run
				Filings []model.FilingOutcome `json:"filings"`
			}{run, outcomes})
		}

		formatRun(os.Stdout, run)
		_, _ = fmt.Fprintln(os.Stdout)
		formatOutcomes(os.Stdout, outcomes)
		return nil
	},
}

func init() {
	runsListCmd.Flags().String("status", "", "filter by run status (queued, fetching, extracting, complete, failed)")
	runsListCmd.Flags().String("ticker", "", "filter by ticker")
	runsListCmd.Flags().Int("limit", 50, "max number of runs to display")

	runsShowCmd.Flags().Bool("json", false, "print the run as JSON")

	runsCmd.AddCommand(runsListCmd)
	runsCmd.AddCommand(runsShowCmd)
	rootCmd.AddCommand(runsCmd)
}

// formatRunsList writes a tabular list of runs to w.
func formatRunsList(out io.Writer, runs []model.Run) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tTICKER\tYEARS\tSTATUS\tFILINGS\tCREATED\tDURATION")
	_, _ = fmt.Fprintln(w, "--\t------\t-----\t------\t-------\t-------\t--------")

	for _, r := range runs {
		dur := r.UpdatedAt.Sub(r.CreatedAt).Round(time.Second).String()

		filings := ""
		if r.Result != nil {
			filings = fmt.Sprintf("%d/%d", r.Result.FilingsExtracted, r.Result.FilingsTotal)
		}

		_, _ = fmt.Fprintf(w, "%s\t%s\t%d-%d\t%s\t%s\t%s\t%s\n",
			truncateID(r.ID),
			r.Company.Ticker,
			r.StartYear, r.EndYear,
			r.Status,
			filings,
			r.CreatedAt.Format("2006-01-02 15:04"),
			dur,
		)
	}
	_ = w.Flush()
}

// formatRun writes a run's header and summary to w.
func formatRun(out io.Writer, r *model.Run) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(w, "Run:\t%s\n", r.ID)
	_, _ = fmt.Fprintf(w, "Company:\t%s (%s, CIK %s)\n", r.Company.DisplayName(), r.Company.Ticker, r.Company.CIK)
	_, _ = fmt.Fprintf(w, "Years:\t%d-%d\n", r.StartYear, r.EndYear)
	_, _ = fmt.Fprintf(w, "Status:\t%s\n", r.Status)
	_, _ = fmt.Fprintf(w, "Created:\t%s\n", r.CreatedAt.Format("2006-01-02 15:04:05"))
	if res := r.Result; res != nil {
		_, _ = fmt.Fprintf(w, "Filings:\t%d found, %d extracted, %d skipped\n",
			res.FilingsTotal, res.FilingsExtracted, res.FilingsSkipped)
		for _, t := range statement.Types {
			if n, ok := res.Periods[t.String()]; ok {
				_, _ = fmt.Fprintf(w, "  %s:\t%d quarters\n", t.Title(), n)
			}
		}
		if res.OutputPath != "" {
			_, _ = fmt.Fprintf(w, "Output:\t%s\n", res.OutputPath)
		}
		if res.Error != "" {
			_, _ = fmt.Fprintf(w, "Error:\t%s\n", res.Error)
		}
	}
	_ = w.Flush()
}

// formatOutcomes writes one row per filing outcome to w.
func formatOutcomes(out io.Writer, outcomes []model.FilingOutcome) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "PERIOD\tFORM\tREPORT_DATE\tACCESSION\tSTATEMENTS\tSKIPPED")
	_, _ = fmt.Fprintln(w, "------\t----\t-----------\t---------\t----------\t-------")
	for _, o := range outcomes {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			o.Period, o.FormType, o.ReportDate, o.AccessionNumber,
			strings.Join(o.Statements, ","), o.SkipReason)
	}
	_ = w.Flush()
}

// truncateID returns the first 8 characters of a UUID for compact display.
func truncateID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
