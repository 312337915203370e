package cmd

import (
	"context"
	"fmt"

	"github.com/frahmantamala/expense-tracker/internal"
	"github.com/frahmantamala/expense-tracker/internal/category"
	"github.com/frahmantamala/expense-tracker/pkg/logger"
	"github.com/spf13/cobra"
)

var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Check the store connection",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(func(ctx context.Context, cfg *internal.Config, h *storeHandle) error {
			ctx, cancel := internal.WithTimeout(ctx, 0)
			defer cancel()
			if err := h.Pinger.Ping(ctx); err != nil {
				return internal.NewStartupError(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Connected to database: %s\n", h.Name)
			return nil
		})
	},
}

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List the configured categories",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(configPath)
		if err != nil {
			return err
		}
		svc := category.NewService(cfg.Display.Categories, logger.LoggerWrapper())
		for _, c := range svc.GetAllCategories() {
			marker := ""
			if c.IsDefault {
				marker = " (default)"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s%s\n", c.Name, marker)
		}
		return nil
	},
}
