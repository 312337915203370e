package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/frahmantamala/expense-tracker/internal"
	"github.com/frahmantamala/expense-tracker/internal/expense"
	"github.com/frahmantamala/expense-tracker/pkg/logger"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Show every expense, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(func(ctx context.Context, cfg *internal.Config, h *storeHandle) error {
			workflow := newWorkflow(cfg, h.Store, nil, logger.LoggerWrapper())
			summary, err := workflow.Refresh(ctx)
			if err != nil {
				return err
			}
			return renderTable(cmd.OutOrStdout(), workflow.Table(), summary.TotalLabel)
		})
	},
}

func renderTable(w io.Writer, table *expense.Table, totalLabel string) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	names := make([]string, table.ColumnCount())
	for c := range names {
		names[c] = table.ColumnName(c)
	}
	fmt.Fprintln(tw, strings.Join(names, "\t"))

	for r := 0; r < table.RowCount(); r++ {
		cells := make([]string, table.ColumnCount())
		for c := range cells {
			cells[c] = table.ValueAt(r, c)
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}

	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintln(w, totalLabel)
	return err
}
