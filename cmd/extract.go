package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/statements-cli/internal/edgar"
	"github.com/sells-group/statements-cli/internal/model"
	"github.com/sells-group/statements-cli/internal/pipeline"
	"github.com/sells-group/statements-cli/internal/statement"
	"github.com/sells-group/statements-cli/internal/store"
)

var extractCmd = &cobra.Command{
	Use:   "extract <ticker|cik>",
	Short: "Extract quarterly statements for a company into a workbook",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		start, _ := cmd.Flags().GetInt("start")
		end, _ := cmd.Flags().GetInt("end")
		output, _ := cmd.Flags().GetString("output")
		noStore, _ := cmd.Flags().GetBool("no-store")
		yearEnd, _ := cmd.Flags().GetInt("fiscal-year-end")
		if end == 0 {
			end = time.Now().Year()
		}

		if yearEnd != 0 {
			cal, err := statement.CalendarForYearEnd(yearEnd)
			if err != nil {
				return err
			}
			if cfg.Fiscal.Calendars == nil {
				cfg.Fiscal.Calendars = make(map[string]statement.Calendar)
			}
			key := edgar.NormalizeTicker(args[0])
			if edgar.IsCIK(args[0]) {
				key = model.PadCIK(args[0])
			}
			cfg.Fiscal.Calendars[key] = cal
		}
		if err := cfg.Validate("extract"); err != nil {
			return err
		}

		var st store.Store
		if !noStore {
			s, err := initStore(ctx)
			if err != nil {
				return err
			}
			defer s.Close() //nolint:errcheck
			st = s
		}

		f := initFetcher()
		p, err := pipeline.New(cfg, st, initEDGAR(f), initLookup(f))
		if err != nil {
			return err
		}

		res, err := p.Run(ctx, pipeline.Request{
			Ticker:     args[0],
			StartYear:  start,
			EndYear:    end,
			OutputPath: output,
		})
		if res != nil {
			formatRunSummary(os.Stdout, res)
		}
		if err != nil {
			return eris.Wrap(err, "extract")
		}
		zap.L().Info("extract: done", zap.String("output", res.Summary.OutputPath))
		return nil
	},
}

func init() {
	extractCmd.Flags().Int("start", time.Now().Year()-2, "first filing year")
	extractCmd.Flags().Int("end", 0, "last filing year (default current year)")
	extractCmd.Flags().StringP("output", "o", "", "output workbook path (default <ticker>_quarterly_<start>_<end>.xlsx in export.dir)")
	extractCmd.Flags().Bool("no-store", false, "do not record the run or cache documents")
	extractCmd.Flags().Int("fiscal-year-end", 0, "fiscal year end month (1-12) overriding config and EDGAR")
	rootCmd.AddCommand(extractCmd)
}

// formatRunSummary prints what a run produced.
func formatRunSummary(out io.Writer, res *pipeline.Result) {
	s := res.Summary
	_, _ = fmt.Fprintf(out, "Company:    %s (%s, CIK %s)\n", res.Company.DisplayName(), res.Company.Ticker, res.Company.CIK)
	if res.RunID != "" {
		_, _ = fmt.Fprintf(out, "Run:        %s\n", res.RunID)
	}
	_, _ = fmt.Fprintf(out, "Filings:    %d found, %d extracted, %d skipped\n", s.FilingsTotal, s.FilingsExtracted, s.FilingsSkipped)
	for _, t := range statement.Types {
		if n, ok := s.Periods[t.String()]; ok {
			_, _ = fmt.Fprintf(out, "  %-20s %d quarters\n", t.Title()+":", n)
		}
	}
	if s.OutputPath != "" {
		_, _ = fmt.Fprintf(out, "Output:     %s\n", s.OutputPath)
	}
}
