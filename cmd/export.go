package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/frahmantamala/expense-tracker/internal"
	"github.com/frahmantamala/expense-tracker/internal/expense"
	"github.com/frahmantamala/expense-tracker/pkg/logger"
	"github.com/spf13/cobra"
)

var (
	exportFormat string
	exportOutput string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the expense table as csv, json or yaml",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(func(ctx context.Context, cfg *internal.Config, h *storeHandle) error {
			workflow := newWorkflow(cfg, h.Store, nil, logger.LoggerWrapper())
			summary, err := workflow.Refresh(ctx)
			if err != nil {
				return err
			}

			var w io.Writer = cmd.OutOrStdout()
			if exportOutput != "" && exportOutput != "-" {
				f, err := os.Create(exportOutput)
				if err != nil {
					return fmt.Errorf("create %s: %w", exportOutput, err)
				}
				defer f.Close()
				w = f
			}

			return expense.WriteExport(w, exportFormat, *summary)
		})
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", expense.FormatCSV, "csv, json or yaml")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "-", "output file; - for stdout")
}
