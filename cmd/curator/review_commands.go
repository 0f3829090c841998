package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"curator/internal/api"
	"curator/internal/catalog"
)

// newReviewCommands builds the four review verbs. Each applies the same
// transition to every listed item in one transaction; invalid ids are
// reported individually and do not block the rest.
func newReviewCommands(ctx *commandContext) []*cobra.Command {
	specs := []struct {
		use    string
		short  string
		target catalog.Status
	}{
		{"approve <id>...", "Approve items for migration", catalog.StatusApproved},
		{"reject <id>...", "Reject proposed classifications", catalog.StatusRejected},
		{"ignore <id>...", "Ignore items entirely", catalog.StatusIgnored},
		{"reopen <id>...", "Return rejected or ignored items to pending", catalog.StatusPending},
	}

	commands := make([]*cobra.Command, 0, len(specs))
	for _, spec := range specs {
		target := spec.target
		commands = append(commands, &cobra.Command{
			Use:   spec.use,
			Short: spec.short,
			Args:  cobra.MinimumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return runReview(cmd, ctx, args, target)
			},
		})
	}
	return commands
}

func runReview(cmd *cobra.Command, ctx *commandContext, args []string, target catalog.Status) error {
	store, err := ctx.openStore()
	if err != nil {
		return err
	}

	ids := make([]string, 0, len(args))
	for _, arg := range args {
		id, err := resolveItemID(cmd, store, arg)
		if err != nil {
			return err
		}
		ids = append(ids, id)
	}

	report, err := api.NewItemService(store).Review(cmd.Context(), ids, target)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	failed := 0
	for _, outcome := range report.Outcomes {
		if outcome.Error != "" {
			failed++
			fmt.Fprintf(out, "%s: %s\n", shortID(outcome.ID), outcome.Error)
		}
	}
	fmt.Fprintf(out, "Applied %s to %d of %d item(s)\n", target, report.Applied, len(ids))
	if failed > 0 {
		return fmt.Errorf("%d item(s) could not be updated", failed)
	}
	return nil
}
