package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"curator/internal/api"
	"curator/internal/migrate"
)

func newMigrateCommand(ctx *commandContext) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Move approved items into the library",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := ctx.openStore()
			if err != nil {
				return err
			}

			migrator := migrate.New(cfg, store, ctx.newLogger())
			report, err := api.NewMigrationService(migrator).Run(cmd.Context(), dryRun)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if report.DryRun {
				if len(report.Entries) == 0 {
					fmt.Fprintln(out, "Nothing to migrate")
					return nil
				}
				rows := make([][]string, 0, len(report.Entries))
				for _, entry := range report.Entries {
					rows = append(rows, []string{shortID(entry.ID), entry.Action, entry.Destination, entry.Note})
				}
				fmt.Fprintln(out, renderTable(out,
					[]string{"ID", "Action", "Destination", "Note"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft},
				))
				fmt.Fprintf(out, "Planned %d item(s), nothing moved\n", report.Planned)
				return nil
			}

			fmt.Fprintf(out, "Migrated %d, skipped %d, failed %d (of %d planned)\n",
				report.Migrated, report.Skipped, len(report.Failures), report.Planned)
			for _, failure := range report.Failures {
				fmt.Fprintf(out, "  %s: %s\n", shortID(failure.ID), failure.Error)
			}
			if len(report.Failures) > 0 {
				return fmt.Errorf("%d item(s) failed to migrate", len(report.Failures))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Plan the migration without moving any files")
	return cmd
}
