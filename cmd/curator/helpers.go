package main

import (
	"fmt"
	"strings"

	"curator/internal/api"
	"curator/internal/catalog"
	"curator/internal/services"

	"github.com/spf13/cobra"
)

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}

func formatConfidence(item api.Item) string {
	if item.ProposedPath == "" {
		return "-"
	}
	return fmt.Sprintf("%.1f", item.Confidence)
}

// resolveItemID accepts either a full item ID or a unique prefix of one.
func resolveItemID(cmd *cobra.Command, store *catalog.Store, arg string) (string, error) {
	arg = strings.TrimSpace(arg)
	if arg == "" {
		return "", fmt.Errorf("item id is required")
	}
	if len(arg) == 36 {
		return arg, nil
	}

	items, err := store.List(cmd.Context(), catalog.Filter{})
	if err != nil {
		return "", err
	}
	var matches []string
	for _, item := range items {
		if strings.HasPrefix(item.ID, arg) {
			matches = append(matches, item.ID)
		}
	}
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("%w: no item matches id %q", services.ErrNotFound, arg)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("id %q is ambiguous (%d matches)", arg, len(matches))
	}
}
