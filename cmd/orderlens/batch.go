package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"github.com/Veraticus/orderlens/internal/cli"
	"github.com/Veraticus/orderlens/internal/common"
	"github.com/Veraticus/orderlens/internal/pipeline"
)

const profileSuffix = ".profile.json"

func batchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batch <orders.csv>...",
		Short: "Profile several exports concurrently",
		Long: `Run every export through the pipeline, writing each result next to its
input as <file>.profile.json.`,
		Args: cobra.MinimumNArgs(1),
		RunE: runBatch,
	}

	cmd.Flags().Int("concurrency", 0, "Maximum concurrent runs (default pipeline.concurrency)")
	cmd.Flags().Bool("no-cache", false, "Always call the model, ignoring cached replies")
	cmd.Flags().Bool("ephemeral", false, "Do not touch the database; cache replies in memory only")

	return cmd
}

func runBatch(cmd *cobra.Command, args []string) error {
	concurrency, _ := cmd.Flags().GetInt("concurrency")
	noCache, _ := cmd.Flags().GetBool("no-cache")
	ephemeral, _ := cmd.Flags().GetBool("ephemeral")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if concurrency <= 0 {
		concurrency = cfg.Pipeline.Concurrency
	}

	ctx := cmd.Context()
	p, cleanup, err := buildPipeline(ctx, cfg, runOptions{noCache: noCache, ephemeral: ephemeral})
	if err != nil {
		return err
	}
	defer cleanup()

	slog.Info("Starting batch", "files", len(args), "concurrency", concurrency)

	var mu sync.Mutex
	writeErrs := make(map[int]error)

	progress := cli.NewProgress(cmd.ErrOrStderr(), len(args), "Profiling exports...")
	items, err := p.RunBatch(ctx, args, concurrency, func(item pipeline.BatchItem) {
		defer progress.Increment()
		if item.Err == nil {
			item.Err = writeResult(item)
			if item.Err != nil {
				mu.Lock()
				writeErrs[item.Index] = item.Err
				mu.Unlock()
			}
		}
		if item.Err != nil {
			common.LogError(item.Err, "Export failed", common.Fields{"path": item.Path})
		}
	})
	if err != nil {
		return fmt.Errorf("batch interrupted: %w", err)
	}

	var failed []string
	for _, item := range items {
		switch {
		case item.Err != nil || writeErrs[item.Index] != nil:
			failed = append(failed, item.Path)
		case item.Result.Failed():
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatWarning(fmt.Sprintf("%s: %s", item.Path, item.Result.Error)))
		default:
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(item.Path + profileSuffix))
		}
	}
	if len(failed) > 0 {
		return fmt.Errorf("%d of %d exports failed: %s", len(failed), len(items), strings.Join(failed, ", "))
	}
	return nil
}

func writeResult(item pipeline.BatchItem) error {
	out, err := cli.JSON(item.Result)
	if err != nil {
		return err
	}
	if err := os.WriteFile(item.Path+profileSuffix, []byte(out+"\n"), 0o600); err != nil {
		return fmt.Errorf("failed to write result: %w", err)
	}
	return nil
}
