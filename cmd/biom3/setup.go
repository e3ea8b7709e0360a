package main

import (
	"context"
	"errors"
	"fmt"
	"os/exec"

	"github.com/spf13/cobra"
	"github.com/tnnandi/biom3-docker/internal/config"
	"github.com/tnnandi/biom3-docker/internal/docker"
	"github.com/tnnandi/biom3-docker/internal/pipeline"
)

var (
	setupSkipImage   bool
	setupSkipWeights bool
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Prepare the BioM3 environment end to end",
	Long: `Prepares everything a pipeline run needs, in order:

  1. Check required tools (docker, git, git-lfs)
  2. Create the input/output/weights directory layout
  3. Download the model weights (~9 GB, skipped when already present)
  4. Pull the pipeline Docker image
  5. Create input/prompts.txt with an example prompt if missing

Setup is idempotent: weights that already pass the size check are not
re-downloaded and an existing prompts file is never touched.`,
	RunE: runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)

	setupCmd.Flags().BoolVar(&setupSkipImage, "skip-image", false, "skip pulling the Docker image")
	setupCmd.Flags().BoolVar(&setupSkipWeights, "skip-weights", false, "skip downloading model weights")
}

func runSetup(cmd *cobra.Command, args []string) error {
	paths, err := newPaths()
	if err != nil {
		return err
	}

	fmt.Printf("Setting up BioM3 in: %s\n\n", paths.BaseDir())

	// Step 1: tool checks
	fmt.Println("Checking required tools...")
	if err := checkSetupTools(); err != nil {
		return err
	}

	// Step 2: directory layout
	fmt.Println("\nCreating directory layout...")
	if err := paths.Initialize(); err != nil {
		return fmt.Errorf("failed to create directories: %w", err)
	}
	fmt.Printf("  ✅ Layout ready under %s\n", paths.BaseDir())

	// Step 3: weights
	if !setupSkipWeights {
		fmt.Println("\nDownloading model weights...")
		if err := ensureAllWeights(cmd.Context(), paths); err != nil {
			return err
		}
	}

	// Step 4: pipeline image
	if !setupSkipImage {
		fmt.Println("\nPreparing Docker image...")
		if err := ensureImage(cmd.Context()); err != nil {
			return err
		}
	}

	// Step 5: prompts file
	fmt.Println("\nChecking prompts file...")
	if _, err := pipeline.LoadPrompts(paths); err != nil {
		if errors.Is(err, pipeline.ErrPromptsPlaceholder) {
			fmt.Printf("  ✅ Created %s with an example prompt\n", paths.PromptsPath())
		} else {
			return err
		}
	} else {
		fmt.Printf("  ✓ Prompts file already exists: %s\n", paths.PromptsPath())
	}

	fmt.Println("\n✅ BioM3 setup complete!")
	fmt.Println("\nNext steps:")
	fmt.Printf("  1. Edit %s with your protein descriptions\n", paths.PromptsPath())
	fmt.Println("  2. Run 'biom3 run' to generate sequences")
	fmt.Printf("  3. Results appear under %s\n", paths.OutputDir())

	return nil
}

// checkSetupTools verifies the binaries setup itself shells out to.
// The doctor command runs the wider report; setup only needs these.
func checkSetupTools() error {
	dockerClient := docker.NewClient()
	if !dockerClient.Installed() {
		return fmt.Errorf("docker is not installed. Install it from https://docs.docker.com/get-docker/")
	}
	fmt.Println("  ✓ docker")

	if !dockerClient.DaemonRunning() {
		return fmt.Errorf("docker daemon is not responding. Start the Docker service and retry")
	}
	fmt.Println("  ✓ docker daemon")

	if _, err := exec.LookPath("git"); err != nil {
		return fmt.Errorf("git is not installed. Install it from https://git-scm.com")
	}
	fmt.Println("  ✓ git")

	if _, err := exec.LookPath("git-lfs"); err != nil {
		return fmt.Errorf("git-lfs is not installed. Install it from https://git-lfs.com and run 'git lfs install'")
	}
	fmt.Println("  ✓ git-lfs")

	return nil
}

// ensureImage pulls the pipeline image unless it is already local.
func ensureImage(ctx context.Context) error {
	ref := config.Get().Docker.ImageRef()
	dockerClient := docker.NewClient()

	if dockerClient.ImagePresent(ref) {
		fmt.Printf("  ✓ Image already present: %s\n", ref)
		return nil
	}

	fmt.Printf("  Pulling %s...\n", ref)
	if err := dockerClient.Pull(ctx, ref); err != nil {
		return err
	}

	fmt.Printf("  ✅ Image ready: %s\n", ref)
	return nil
}
