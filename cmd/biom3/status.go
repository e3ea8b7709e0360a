package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tnnandi/biom3-docker/internal/config"
	"github.com/tnnandi/biom3-docker/internal/docker"
	"github.com/tnnandi/biom3-docker/internal/ui"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show weight and image readiness",
	Long: `Reports what a pipeline run still needs: the Docker image, each weight
component, the prompts file, and how much disk the layout uses.`,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg := config.Get()

	paths, err := newPaths()
	if err != nil {
		return err
	}

	fmt.Printf("BioM3 status (base: %s)\n\n", paths.BaseDir())

	// Pipeline image
	ref := cfg.Docker.ImageRef()
	dockerClient := docker.NewClient()
	fmt.Println("Pipeline image:")
	switch {
	case !dockerClient.Installed():
		fmt.Println("  ✗ docker is not installed")
	case !dockerClient.DaemonRunning():
		fmt.Println("  ✗ docker daemon is not responding")
	case dockerClient.ImagePresent(ref):
		fmt.Printf("  ✓ %s\n", ref)
	default:
		fmt.Printf("  ✗ %s (not pulled)\n", ref)
	}

	// Weight components
	manager := newWeightsManager(paths)
	fmt.Println("\nWeights:")
	fmt.Printf("  %s %s %s %s\n",
		ui.PadRight("COMPONENT", 14),
		ui.PadRight("STATUS", 8),
		ui.PadRight("SIZE", 10),
		"REVISION")

	missing := 0
	for _, status := range manager.StatusAll() {
		state := "ready"
		size := ""
		revision := ""

		if !status.Present {
			state = "missing"
			missing++
		} else {
			if status.SizeBytes > 0 {
				size = ui.FormatBytes(status.SizeBytes)
			}
			if len(status.Revision) >= 8 {
				revision = status.Revision[:8]
			}
		}

		fmt.Printf("  %s %s %s %s\n",
			ui.PadRight(status.Component, 14),
			ui.PadRight(state, 8),
			ui.PadRight(size, 10),
			revision)
	}

	// Prompts file
	fmt.Println("\nPrompts:")
	if prompts, err := paths.ReadPrompts(); err == nil {
		fmt.Printf("  ✓ %s (%d prompt(s))\n", paths.PromptsPath(), len(prompts))
	} else {
		fmt.Printf("  ✗ %s (missing)\n", paths.PromptsPath())
	}

	// Disk usage
	usage := paths.GetDiskUsage()
	fmt.Println("\nDisk usage:")
	fmt.Printf("  input:   %s\n", ui.FormatBytes(usage.Input))
	fmt.Printf("  output:  %s\n", ui.FormatBytes(usage.Output))
	fmt.Printf("  weights: %s\n", ui.FormatBytes(usage.Weights))
	fmt.Printf("  total:   %s\n", ui.FormatBytes(usage.Total))

	if missing > 0 {
		fmt.Printf("\n%d component(s) missing. Run 'biom3 setup' or 'biom3 download' to fetch them.\n", missing)
	}

	return nil
}
