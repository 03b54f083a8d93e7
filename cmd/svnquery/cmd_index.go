package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/svnquery/svnquery/internal/index"
)

func indexCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "index",
		Short: "Bring the local index up to the repository head",
		Args:  cobra.NoArgs,
		RunE:  runIndex,
	}
	cmd.Flags().Bool("full", false, "Rebuild from scratch instead of resuming")
	return cmd
}

func runIndex(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer logger.Sync()

	repo, err := openRepository(cfg)
	if err != nil {
		return err
	}

	state, err := index.LoadState(cfg.Index.Path, cfg.Repository.URL)
	if err != nil {
		return err
	}
	if full, _ := cmd.Flags().GetBool("full"); full {
		state = index.NewState(cfg.Index.Path, cfg.Repository.URL)
	}

	store, err := index.Open(cfg.Index.Path)
	if err != nil {
		return err
	}
	defer store.Close()

	quiet, _ := cmd.Flags().GetBool("quiet")

	// Progress display state.
	spinIdx := 0
	startTime := time.Now()

	progressFn := func(phase string, done, total int) {
		if quiet {
			return
		}
		frame := spinnerFrames[spinIdx%len(spinnerFrames)]
		spinIdx++
		if done >= total {
			fmt.Printf("\r%s%s%s %s [%d/%d]%s\n", green, "✓", reset, phase, done, total, reset)
		} else {
			fmt.Printf("\r%s%s%s %s [%d/%d]", cyan, frame, reset, phase, done, total)
		}
	}

	if !quiet {
		fmt.Printf("%s%ssvnquery indexing %s%s\n", bold, cyan, cfg.Repository.URL, reset)
		fmt.Printf("  index: %s\n", cfg.Index.Path)
		if state.IsEmpty() {
			fmt.Printf("  mode: full\n")
		} else {
			fmt.Printf("  mode: incremental from r%d\n", state.Revision+1)
		}
		fmt.Println()
	}

	result, err := index.Run(cmd.Context(), index.Config{
		Source:          repo,
		Store:           store,
		State:           state,
		Filter:          index.NewPathFilter(cfg.Index.Include, cfg.Index.Exclude),
		MaxWorkers:      cfg.Index.MaxWorkers,
		CheckpointEvery: cfg.Index.OptimizeEvery,
		Logger:          logger,
		ProgressFn:      progressFn,
	})
	if err != nil {
		return fmt.Errorf("indexing failed: %w", err)
	}

	elapsed := time.Since(startTime)

	type summary struct {
		FromRevision int `json:"from_revision"`
		ToRevision   int `json:"to_revision"`
		Indexed      int `json:"indexed"`
		Deleted      int `json:"deleted"`
		Skipped      int `json:"skipped"`
		Errors       int `json:"errors"`
	}
	data := summary{
		FromRevision: result.FromRevision,
		ToRevision:   result.ToRevision,
		Indexed:      result.Indexed,
		Deleted:      result.Deleted,
		Skipped:      result.Skipped,
		Errors:       len(result.Errors),
	}

	writeOutput(cmd, data, func() {
		fmt.Println()
		fmt.Printf("%s%s=== Summary ===%s\n", bold, green, reset)
		fmt.Printf("  revisions: r%d..r%d\n", result.FromRevision, result.ToRevision)
		fmt.Printf("  indexed:   %d\n", result.Indexed)
		fmt.Printf("  deleted:   %d\n", result.Deleted)
		fmt.Printf("  skipped:   %d\n", result.Skipped)
		fmt.Printf("  errors:    %d\n", len(result.Errors))
		fmt.Printf("  elapsed:   %s\n", elapsed.Round(time.Millisecond))

		if len(result.Errors) > 0 {
			fmt.Printf("\n%s%sWarnings:%s\n", bold, yellow, reset)
			for i, e := range result.Errors {
				if i >= 10 {
					fmt.Printf("  ... and %d more\n", len(result.Errors)-10)
					break
				}
				fmt.Printf("  - %v\n", e)
			}
		}
	})
	return nil
}
