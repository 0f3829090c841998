package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"curator/internal/api"
	"curator/internal/catalog"
)

func newItemsCommand(ctx *commandContext) *cobra.Command {
	itemsCmd := &cobra.Command{
		Use:   "items",
		Short: "Inspect and edit catalog items",
	}

	itemsCmd.AddCommand(newItemsListCommand(ctx))
	itemsCmd.AddCommand(newItemsShowCommand(ctx))
	itemsCmd.AddCommand(newItemsEditCommand(ctx))

	return itemsCmd
}

func newItemsListCommand(ctx *commandContext) *cobra.Command {
	var statusFilter string
	var categoryFilter string
	var reviewOnly bool
	var minConfidence float64
	var maxConfidence float64
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List catalog items",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openStore()
			if err != nil {
				return err
			}

			filter := catalog.Filter{Category: categoryFilter, Limit: limit}
			if statusFilter != "" {
				for _, value := range strings.Split(statusFilter, ",") {
					status, ok := catalog.ParseStatus(value)
					if !ok {
						return fmt.Errorf("unknown status %q", value)
					}
					filter.Statuses = append(filter.Statuses, status)
				}
			}
			if reviewOnly {
				needs := true
				filter.NeedsReview = &needs
			}
			if cmd.Flags().Changed("min-confidence") {
				filter.MinConfidence = &minConfidence
			}
			if cmd.Flags().Changed("max-confidence") {
				filter.MaxConfidence = &maxConfidence
			}

			items, err := api.NewItemService(store).List(cmd.Context(), filter)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(items) == 0 {
				fmt.Fprintln(out, "No items")
				return nil
			}

			rows := make([][]string, 0, len(items))
			for _, item := range items {
				rows = append(rows, []string{
					shortID(item.ID),
					item.Filename,
					item.Status,
					item.ProposedPath,
					formatConfidence(item),
					yesNo(item.NeedsReview),
				})
			}
			fmt.Fprintln(out, renderTable(out,
				[]string{"ID", "File", "Status", "Category", "Conf", "Review"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignLeft},
			))
			return nil
		},
	}

	cmd.Flags().StringVar(&statusFilter, "status", "", "Comma-separated status filter (pending, approved, rejected, ignored, migrated)")
	cmd.Flags().StringVar(&categoryFilter, "category", "", "Filter by proposed category path")
	cmd.Flags().BoolVar(&reviewOnly, "review", false, "Only items flagged for review")
	cmd.Flags().Float64Var(&minConfidence, "min-confidence", 0, "Minimum confidence (0-5)")
	cmd.Flags().Float64Var(&maxConfidence, "max-confidence", 5, "Maximum confidence (0-5)")
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum number of items to show")
	return cmd
}

func newItemsShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one catalog item in full",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openStore()
			if err != nil {
				return err
			}
			id, err := resolveItemID(cmd, store, args[0])
			if err != nil {
				return err
			}
			item, err := api.NewItemService(store).Describe(cmd.Context(), id)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "ID:          %s\n", item.ID)
			fmt.Fprintf(out, "File:        %s\n", item.Filename)
			fmt.Fprintf(out, "Source:      %s\n", item.SourcePath)
			fmt.Fprintf(out, "Size:        %d bytes\n", item.SizeBytes)
			fmt.Fprintf(out, "Hash:        %s\n", item.Hash)
			fmt.Fprintf(out, "Status:      %s\n", item.Status)
			if item.ProposedPath != "" {
				fmt.Fprintf(out, "Category:    %s\n", item.ProposedPath)
				if item.ProposedSubpath != "" {
					fmt.Fprintf(out, "Subpath:     %s\n", item.ProposedSubpath)
				}
				if item.ProposedFilename != "" {
					fmt.Fprintf(out, "Rename to:   %s\n", item.ProposedFilename)
				}
				fmt.Fprintf(out, "Confidence:  %.1f/5 (%s)\n", item.Confidence, item.Method)
				if item.Reason != "" {
					fmt.Fprintf(out, "Reason:      %s\n", item.Reason)
				}
				fmt.Fprintf(out, "Review:      %s\n", yesNo(item.NeedsReview))
			}
			if item.Notes != "" {
				fmt.Fprintf(out, "Notes:       %s\n", item.Notes)
			}
			if item.DestinationPath != "" {
				fmt.Fprintf(out, "Migrated to: %s\n", item.DestinationPath)
			}
			if item.ErrorMessage != "" {
				fmt.Fprintf(out, "Error:       %s\n", item.ErrorMessage)
			}
			return nil
		},
	}
}

func newItemsEditCommand(ctx *commandContext) *cobra.Command {
	var category string
	var subpath string
	var filename string
	var notes string

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Override an item's proposed category, subpath, filename, or notes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			notesSet := cmd.Flags().Changed("notes")
			if category == "" && subpath == "" && filename == "" && !notesSet {
				return fmt.Errorf("nothing to edit: pass --category, --subpath, --filename, or --notes")
			}
			store, err := ctx.openStore()
			if err != nil {
				return err
			}
			if category != "" {
				registry, err := ctx.loadRegistry()
				if err != nil {
					return err
				}
				if !registry.Contains(category) {
					return fmt.Errorf("unknown category %q", category)
				}
			}
			id, err := resolveItemID(cmd, store, args[0])
			if err != nil {
				return err
			}

			service := api.NewItemService(store)
			var item *api.Item
			if category != "" || subpath != "" || filename != "" {
				item, err = service.EditProposal(cmd.Context(), id, category, subpath, filename)
				if err != nil {
					return err
				}
			}
			if notesSet {
				item, err = service.SetNotes(cmd.Context(), id, notes)
				if err != nil {
					return err
				}
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Updated %s -> %s", shortID(item.ID), item.ProposedPath)
			if item.ProposedSubpath != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "/%s", item.ProposedSubpath)
			}
			fmt.Fprintln(cmd.OutOrStdout())
			return nil
		},
	}

	cmd.Flags().StringVar(&category, "category", "", "New category path")
	cmd.Flags().StringVar(&subpath, "subpath", "", "New subfolder under the category")
	cmd.Flags().StringVar(&filename, "filename", "", "New destination filename")
	cmd.Flags().StringVar(&notes, "notes", "", "Reviewer notes")
	return cmd
}
