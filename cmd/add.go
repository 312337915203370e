package cmd

import (
	"context"
	"fmt"

	"github.com/frahmantamala/expense-tracker/internal"
	"github.com/frahmantamala/expense-tracker/internal/core/common/validation"
	"github.com/frahmantamala/expense-tracker/internal/expense"
	"github.com/frahmantamala/expense-tracker/pkg/logger"
	"github.com/spf13/cobra"
)

var (
	addAmount      string
	addCategory    string
	addDescription string
	addDate        string
)

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Record one expense",
	Long:  `Validate and store one expense, then print the refreshed total.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(func(ctx context.Context, cfg *internal.Config, h *storeHandle) error {
			workflow := newWorkflow(cfg, h.Store, nil, logger.LoggerWrapper())

			date, err := expense.ParseDate(addDate)
			if err != nil {
				return internal.NewValidationFieldError("date", validation.MsgInvalidDate, internal.ErrCodeInvalidDate)
			}

			form := workflow.NewForm()
			form.Amount = addAmount
			form.Description = addDescription
			if addCategory != "" {
				form.Category = addCategory
			}
			if !date.IsZero() {
				form.Date = date
			}

			result, err := workflow.Submit(ctx, form)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, result.Message)
			fmt.Fprintln(out, result.Summary.TotalLabel)
			return nil
		})
	},
}

func init() {
	addCmd.Flags().StringVarP(&addAmount, "amount", "a", "", "amount, e.g. 150.50")
	addCmd.Flags().StringVar(&addCategory, "category", "", "category; defaults to the first configured one")
	addCmd.Flags().StringVarP(&addDescription, "description", "m", "", "free-text description")
	addCmd.Flags().StringVar(&addDate, "date", "", "date as YYYY-MM-DD; defaults to now")
}
