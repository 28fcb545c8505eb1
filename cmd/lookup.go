package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/statements-cli/internal/edgar"
)

var lookupCmd = &cobra.Command{
	Use:   "lookup <ticker|cik>",
	Short: "Resolve a ticker to its CIK and EDGAR company details",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		f := initFetcher()

		company, err := edgar.Resolve(ctx, initLookup(f), args[0])
		if err != nil {
			return eris.Wrap(err, "lookup")
		}
		meta, _, err := initEDGAR(f).Submissions(ctx, company.CIK, 0)
		if err != nil {
			return eris.Wrap(err, "lookup")
		}
		if company.Ticker == "" {
			company.Ticker = meta.Ticker
		}
		company.Name = meta.Name
		company.FiscalYearEnd = meta.FiscalYearEnd

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(company)
	},
}

func init() {
	rootCmd.AddCommand(lookupCmd)
}
