package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"curator/internal/config"
	"curator/internal/scanner"
)

func newScanCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "scan [directory]",
		Short: "Discover files and register them in the catalog",
		Long: "Scan walks the source directory (or an explicit directory argument), " +
			"hashes every regular file, and registers new files as pending catalog items. " +
			"Already-cataloged files are skipped, so scanning is safe to repeat.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			root := cfg.Paths.SourceDir
			if len(args) == 1 {
				expanded, err := config.ExpandPath(args[0])
				if err != nil {
					return err
				}
				root = expanded
			}

			store, err := ctx.openStore()
			if err != nil {
				return err
			}

			report, err := scanner.New(store, ctx.newLogger()).Scan(cmd.Context(), root)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Scanned %s\n", root)
			fmt.Fprintf(out, "  seen:       %d\n", report.Seen)
			fmt.Fprintf(out, "  registered: %d\n", report.Registered)
			fmt.Fprintf(out, "  skipped:    %d\n", report.Skipped)
			if report.Pruned > 0 {
				fmt.Fprintf(out, "  pruned:     %d\n", report.Pruned)
			}
			if len(report.Errors) > 0 {
				fmt.Fprintf(out, "  errors:     %d\n", len(report.Errors))
				for _, message := range report.Errors {
					fmt.Fprintf(out, "    %s\n", message)
				}
			}
			return nil
		},
	}
}
