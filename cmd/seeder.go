package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/frahmantamala/expense-tracker/internal"
	"github.com/frahmantamala/expense-tracker/internal/expense"
	"github.com/frahmantamala/expense-tracker/pkg/logger"
	"github.com/spf13/cobra"
)

type seedExpense struct {
	amount      string
	category    string
	description string
	daysAgo     int
}

var sampleExpenses = []seedExpense{
	{"250.00", "Food", "Groceries", 6},
	{"45.50", "Transport", "Metro card top-up", 5},
	{"1299.00", "Shopping", "Running shoes", 4},
	{"1850.75", "Bills", "Electricity", 3},
	{"400.00", "Entertainment", "Concert ticket", 2},
	{"320.00", "Healthcare", "Pharmacy", 1},
	{"99.99", "Other", "Gift wrap", 0},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the store with sample expenses",
	Long:  `Seed the store with sample expenses for development and testing purposes.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(func(ctx context.Context, cfg *internal.Config, h *storeHandle) error {
			workflow := newWorkflow(cfg, h.Store, nil, logger.LoggerWrapper())

			if seedIfEmpty {
				existing, err := h.Store.ListAll(ctx)
				if err != nil {
					return internal.NewStorageError(expense.ActionLoadExpenses, err)
				}
				if len(existing) > 0 {
					fmt.Fprintf(cmd.OutOrStdout(), "store already holds %d expenses; skipping seed\n", len(existing))
					return nil
				}
			}

			allowed := make(map[string]bool, len(cfg.Display.Categories))
			for _, c := range cfg.Display.Categories {
				allowed[c] = true
			}

			now := time.Now()
			var last *expense.SubmitResult
			for _, s := range sampleExpenses {
				category := s.category
				if !allowed[category] {
					category = ""
				}
				form := &expense.EntryForm{
					Amount:      s.amount,
					Category:    category,
					Description: s.description,
					Date:        now.AddDate(0, 0, -s.daysAgo),
				}
				res, err := workflow.Submit(ctx, form)
				if err != nil {
					return err
				}
				last = res
				fmt.Fprintf(cmd.OutOrStdout(), "Seeded %s %s (%s)\n", res.Expense.Category, expense.FormatAmount(res.Expense.Amount), res.Expense.Description)
			}

			if last != nil {
				fmt.Fprintln(cmd.OutOrStdout(), last.Summary.TotalLabel)
			}
			return nil
		})
	},
}
