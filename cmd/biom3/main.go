package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/tnnandi/biom3-docker/internal/config"
	"github.com/tnnandi/biom3-docker/internal/fetch"
	"github.com/tnnandi/biom3-docker/internal/storage"
	"github.com/tnnandi/biom3-docker/internal/weights"
)

var (
	cfgFile string
	rootCmd = &cobra.Command{
		Use:   "biom3",
		Short: "Dockerized BioM3 protein generation pipeline",
		Long: `BioM3 is a toolkit for running the BioM3 protein design pipeline in Docker.
It downloads the model weights, prepares the input/output layout, runs the
containerized pipeline, and deploys the same pipeline as a Cloud Run service.

Key Commands:
  setup     - Prepare everything: tools, layout, weights, image, prompts
  download  - Download the model weights only
  run       - Run the pipeline container on input/prompts.txt
  serve     - Start the HTTP prediction service (container entrypoint)
  deploy    - Build and deploy the service to Google Cloud Run
  predict   - Call a deployed prediction service
  status    - Show weight and image readiness`,
	}
)

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/biom3/config.yaml)")
	rootCmd.PersistentFlags().Bool("verbose", false, "enable verbose output")
	viper.BindPFlag("ui.verbose", rootCmd.PersistentFlags().Lookup("verbose"))
}

func initConfig() {
	// Initialize our config system
	if err := config.Initialize(); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing config: %v\n", err)
		os.Exit(1)
	}

	// If user specified a config file, load it on top
	if cfgFile != "" {
		if err := config.LoadFile(cfgFile); err != nil {
			fmt.Fprintf(os.Stderr, "Error reading config file: %v\n", err)
			os.Exit(1)
		}
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// newPaths builds the directory layout rooted at the configured base.
func newPaths() (*storage.Paths, error) {
	paths, err := storage.NewPathsAt(config.Get().Storage.BaseDir)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize paths: %w", err)
	}
	return paths, nil
}

// newWeightsManager wires the weights catalog to the HTTP fetcher and
// the git cloner, both configured from the download section.
func newWeightsManager(paths *storage.Paths) *weights.Manager {
	cfg := config.Get()
	fetcher := fetch.NewFetcher(cfg.Download.RateLimit, cfg.Download.HFToken)
	cloner := fetch.NewGitCloner(fetch.CloneOptions{})
	return weights.NewManager(paths, fetcher, cloner)
}
