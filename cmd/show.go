package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/statements-cli/internal/export"
	"github.com/sells-group/statements-cli/internal/statement"
)

var showCmd = &cobra.Command{
	Use:   "show <workbook.xlsx>",
	Short: "Print a statement sheet from a written workbook",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name, _ := cmd.Flags().GetString("statement")

		sheet := export.SummarySheet
		if name != "summary" {
			t, err := statement.ParseType(name)
			if err != nil {
				return err
			}
			sheet = t.Title()
		}

		rows, err := export.ReadSheet(args[0], export.ReadOptions{SheetName: sheet})
		if err != nil {
			names, _ := export.SheetNames(args[0])
			if len(names) > 0 {
				return eris.Wrapf(err, "show (sheets: %s)", strings.Join(names, ", "))
			}
			return eris.Wrap(err, "show")
		}
		formatSheet(os.Stdout, rows)
		return nil
	},
}

func init() {
	showCmd.Flags().StringP("statement", "s", "income", "statement to print (income, balance, cashflow, summary)")
	rootCmd.AddCommand(showCmd)
}

// formatSheet writes rows as aligned columns.
func formatSheet(out io.Writer, rows [][]string) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
	for _, row := range rows {
		_, _ = fmt.Fprintln(w, strings.Join(row, "\t")+"\t")
	}
	_ = w.Flush()
}
