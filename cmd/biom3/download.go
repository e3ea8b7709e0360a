package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tnnandi/biom3-docker/internal/config"
	"github.com/tnnandi/biom3-docker/internal/storage"
	"github.com/tnnandi/biom3-docker/internal/ui"
	"github.com/tnnandi/biom3-docker/internal/weights"
)

var downloadCmd = &cobra.Command{
	Use:   "download [component...]",
	Short: "Download the BioM3 model weights",
	Long: `Downloads the model weights the pipeline needs: the PenCL, Facilitator
and ProteoScribe checkpoints plus the ESM2 and PubMedBERT language model
repositories (~9 GB in total).

Components that are already on disk are skipped. With no arguments every
component is downloaded; name components to restrict the set:

  biom3 download
  biom3 download PenCL Facilitator
  biom3 download ESM2`,
	RunE: runDownload,
}

func init() {
	rootCmd.AddCommand(downloadCmd)
}

func runDownload(cmd *cobra.Command, args []string) error {
	paths, err := newPaths()
	if err != nil {
		return err
	}

	if err := paths.Initialize(); err != nil {
		return fmt.Errorf("failed to create directories: %w", err)
	}

	manager := newWeightsManager(paths)
	components, err := manager.Lookup(args...)
	if err != nil {
		return err
	}

	fmt.Printf("Downloading weights to: %s\n\n", paths.WeightsDir())

	for _, comp := range components {
		if err := ensureComponent(cmd.Context(), manager, comp); err != nil {
			return err
		}
	}

	fmt.Println("\n✅ All requested weights are in place")
	return nil
}

// ensureAllWeights downloads every catalog component in order. Shared
// between setup and download.
func ensureAllWeights(ctx context.Context, paths *storage.Paths) error {
	manager := newWeightsManager(paths)
	for _, comp := range manager.Catalog() {
		if err := ensureComponent(ctx, manager, comp); err != nil {
			return err
		}
	}
	return nil
}

// ensureComponent downloads one component unless it is already present,
// rendering a progress bar for HTTP fetches.
func ensureComponent(ctx context.Context, manager *weights.Manager, comp weights.Component) error {
	status := manager.Status(comp)
	if status.Present {
		if status.SizeBytes > 0 {
			fmt.Printf("  ✓ %s already present (%s)\n", comp.Name, ui.FormatBytes(status.SizeBytes))
		} else {
			fmt.Printf("  ✓ %s already present\n", comp.Name)
		}
		return nil
	}

	var bar *ui.ProgressBar
	progress := func(downloaded, total int64) {
		if bar == nil {
			bar = ui.NewProgressBar(total, comp.Name)
		}
		bar.Update(downloaded)
	}
	if !config.Get().UI.ProgressBar {
		progress = nil
	}

	created, err := manager.Ensure(ctx, comp, progress)
	if bar != nil {
		bar.Finish()
	}
	if err != nil {
		return err
	}

	if created {
		fmt.Printf("  ✅ %s downloaded\n", comp.Name)
	}
	return nil
}
