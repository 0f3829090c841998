package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"curator/internal/api"
	"curator/internal/catalog"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show catalog summary counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openStore()
			if err != nil {
				return err
			}
			stats, err := api.NewItemService(store).Stats(cmd.Context())
			if err != nil {
				return err
			}

			order := []catalog.Status{
				catalog.StatusPending,
				catalog.StatusApproved,
				catalog.StatusRejected,
				catalog.StatusIgnored,
				catalog.StatusMigrated,
			}
			rows := make([][]string, 0, len(order)+3)
			for _, status := range order {
				rows = append(rows, []string{string(status), fmt.Sprintf("%d", stats.ByStatus[string(status)])})
			}
			rows = append(rows,
				[]string{"classified", fmt.Sprintf("%d", stats.Classified)},
				[]string{"needs review", fmt.Sprintf("%d", stats.NeedsReview)},
				[]string{"total", fmt.Sprintf("%d", stats.Total)},
			)
			for _, bucket := range []string{"high", "medium", "low"} {
				rows = append(rows, []string{
					"confidence " + bucket,
					fmt.Sprintf("%d", stats.Confidence[bucket]),
				})
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable(out,
				[]string{"Status", "Count"},
				rows,
				[]columnAlignment{alignLeft, alignRight},
			))
			return nil
		},
	}
}
