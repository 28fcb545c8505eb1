package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/statements-cli/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "statements-cli",
	Short: "Quarterly financial statement extraction from SEC filings",
	Long:  "Downloads a company's 10-Q/10-K filings from EDGAR, finds the income statement, balance sheet and cash flow statement in each, and merges them into one workbook with fiscal quarters as columns.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
