package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"curator/internal/api"
	"curator/internal/taxonomy"
)

func newTaxonomyCommand(ctx *commandContext) *cobra.Command {
	taxonomyCmd := &cobra.Command{
		Use:   "taxonomy",
		Short: "Inspect the category taxonomy",
	}

	taxonomyCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "List every category with its description",
		RunE: func(cmd *cobra.Command, args []string) error {
			registry, err := ctx.loadRegistry()
			if err != nil {
				return err
			}
			nodes := api.NewTaxonomyService(registry).Nodes()
			rows := make([][]string, 0, len(nodes))
			for _, node := range nodes {
				rows = append(rows, []string{node.Path, node.Description, yesNo(node.HasNaming)})
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable(out,
				[]string{"Category", "Description", "Naming"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft},
			))
			return nil
		},
	})

	taxonomyCmd.AddCommand(&cobra.Command{
		Use:   "validate [file]",
		Short: "Check a taxonomy file and report every problem",
		Long: "Check a taxonomy file and report every problem. Without an argument the\n" +
			"configured taxonomy is checked; with one, any file can be checked before\n" +
			"it is put in place.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			registry, err := taxonomyForValidation(ctx, args)
			if err != nil {
				return err
			}
			issues := api.NewTaxonomyService(registry).Validate()
			out := cmd.OutOrStdout()
			errorCount := 0
			for _, issue := range issues {
				if issue.Severity == string(taxonomy.SeverityError) {
					errorCount++
				}
				if issue.Path != "" {
					fmt.Fprintf(out, "%s: %s: %s\n", issue.Severity, issue.Path, issue.Message)
				} else {
					fmt.Fprintf(out, "%s: %s\n", issue.Severity, issue.Message)
				}
			}
			if errorCount > 0 {
				return fmt.Errorf("taxonomy has %d error(s)", errorCount)
			}
			fmt.Fprintf(out, "Taxonomy is valid (%d categories)\n", len(registry.Nodes()))
			return nil
		},
	})

	taxonomyCmd.AddCommand(newTaxonomyInitCommand(ctx))

	return taxonomyCmd
}

// taxonomyForValidation parses without rejecting content issues, so validate
// can itemize every problem instead of failing on the first one.
func taxonomyForValidation(ctx *commandContext, args []string) (*taxonomy.Registry, error) {
	path := ""
	if len(args) == 1 {
		path = args[0]
	} else {
		cfg, err := ctx.ensureConfig()
		if err != nil {
			return nil, err
		}
		if _, statErr := os.Stat(cfg.Taxonomy.Path); errors.Is(statErr, os.ErrNotExist) {
			return taxonomy.Default(), nil
		}
		path = cfg.Taxonomy.Path
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read taxonomy: %w", err)
	}
	return taxonomy.Parse(data)
}

func newTaxonomyInitCommand(ctx *commandContext) *cobra.Command {
	var overwrite bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write the sample taxonomy to the configured path",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			path := cfg.Taxonomy.Path
			if !overwrite {
				if _, err := os.Stat(path); err == nil {
					return fmt.Errorf("taxonomy already exists at %s (use --overwrite to replace)", path)
				} else if !errors.Is(err, os.ErrNotExist) {
					return err
				}
			}
			if err := os.WriteFile(path, []byte(taxonomy.SampleYAML()), 0o644); err != nil {
				return fmt.Errorf("write taxonomy: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote sample taxonomy to %s\n", path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Replace an existing taxonomy file")
	return cmd
}
