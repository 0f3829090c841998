package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"curator/internal/api"
	"curator/internal/classify"
	"curator/internal/inference"
)

func newClassifyCommand(ctx *commandContext) *cobra.Command {
	var workers int
	var offline bool

	cmd := &cobra.Command{
		Use:   "classify",
		Short: "Propose categories for pending items",
		Long: "Classify evaluates every pending item against the heuristic rules and, " +
			"when those are inconclusive, asks the configured inference backend. Each item " +
			"ends the run with a category proposal; items nothing could place land in the " +
			"fallback category flagged for review.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := ctx.openStore()
			if err != nil {
				return err
			}
			registry, err := ctx.loadRegistry()
			if err != nil {
				return err
			}

			var backend inference.Backend
			if !offline {
				backend, err = inference.Select(cmd.Context(), cfg)
				if err != nil {
					return err
				}
			}

			if workers > 0 {
				cfg.Inference.Workers = workers
			}
			logger := ctx.newLogger()
			classifier := classify.New(cfg, registry, backend, logger)
			orchestrator := classify.NewOrchestrator(store, classifier, cfg.Inference.Workers, logger)
			orchestrator.RetryErroredAfter = time.Duration(cfg.Workflow.ErrorRetryInterval) * time.Second
			service := api.NewClassifyService(orchestrator)

			out := cmd.OutOrStdout()
			progress, err := runWithPolling(cmd.Context(), out, service,
				time.Duration(cfg.Workflow.BatchPollInterval)*time.Second)
			if err != nil {
				return err
			}

			if progress.Total == 0 {
				fmt.Fprintln(out, "Nothing to classify")
				return nil
			}
			fmt.Fprintf(out, "Batch %s\n", progress.BatchID)
			fmt.Fprintf(out, "  classified: %d/%d\n", progress.Done, progress.Total)
			fmt.Fprintf(out, "  heuristic:  %d\n", progress.Heuristic)
			fmt.Fprintf(out, "  inference:  %d\n", progress.Inference)
			fmt.Fprintf(out, "  fallback:   %d\n", progress.Fallback)
			if progress.Failed > 0 {
				fmt.Fprintf(out, "  failed:     %d\n", progress.Failed)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&workers, "workers", 0, "Concurrent classification workers (defaults to inference.workers)")
	cmd.Flags().BoolVar(&offline, "offline", false, "Skip the inference backend; heuristics and fallback only")
	return cmd
}

// runWithPolling runs the batch in the background and prints a progress line
// at every poll interval until it finishes.
func runWithPolling(ctx context.Context, out io.Writer, service *api.ClassifyService, interval time.Duration) (api.ClassifyProgress, error) {
	type outcome struct {
		progress api.ClassifyProgress
		err      error
	}
	done := make(chan outcome, 1)
	go func() {
		progress, err := service.Run(ctx)
		done <- outcome{progress, err}
	}()

	if interval <= 0 {
		result := <-done
		return result.progress, result.err
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case result := <-done:
			return result.progress, result.err
		case <-ticker.C:
			progress := service.Progress()
			if progress.Total > 0 {
				fmt.Fprintf(out, "  working:    %d/%d\n", progress.Done, progress.Total)
			}
		}
	}
}
