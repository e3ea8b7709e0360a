package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tnnandi/biom3-docker/internal/config"
	"github.com/tnnandi/biom3-docker/internal/docker"
	"github.com/tnnandi/biom3-docker/internal/doctor"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check the host for everything BioM3 needs",
	Long: `Probes the host for the external tools the toolkit shells out to:
docker and its daemon, the pipeline image, git, git-lfs, python3 and
gcloud. Exits nonzero when any probe fails.`,
	RunE: runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

func runDoctor(cmd *cobra.Command, args []string) error {
	imageRef := config.Get().Docker.ImageRef()
	checks := doctor.New(docker.NewClient(), imageRef).RunChecks()

	fmt.Println("BioM3 environment checks:")
	fmt.Println()

	for _, check := range checks {
		mark := "✓"
		if !check.OK {
			mark = "✗"
		}

		fmt.Printf("  %s %s", mark, check.Name)
		if check.Detail != "" {
			fmt.Printf(" - %s", check.Detail)
		}
		fmt.Println()

		if !check.OK && check.Hint != "" {
			fmt.Printf("      hint: %s\n", check.Hint)
		}
	}

	if !doctor.Healthy(checks) {
		return fmt.Errorf("some checks failed")
	}

	fmt.Println("\n✅ All checks passed")
	return nil
}
