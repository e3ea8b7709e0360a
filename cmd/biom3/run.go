package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/tnnandi/biom3-docker/internal/config"
	"github.com/tnnandi/biom3-docker/internal/docker"
	"github.com/tnnandi/biom3-docker/internal/pipeline"
	"github.com/tnnandi/biom3-docker/pkg/types"
)

// Container-side mount points baked into the pipeline image.
const (
	containerInputDir   = "/app/input"
	containerOutputDir  = "/app/output"
	containerWeightsDir = "/app/weights"
)

var (
	runDiffusionSteps int
	runNumReplicas    int
	runGPUs           string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the BioM3 pipeline container",
	Long: `Runs the containerized BioM3 pipeline against input/prompts.txt.

The container mounts input/, output/ and weights/ from the base directory
and writes stage results plus predicted structures under output/. The
command blocks until the pipeline finishes and propagates its exit code.

Generation parameters can be set per run:

  biom3 run --diffusion_steps 512 --num_replicas 2 --gpus all`,
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().IntVar(&runDiffusionSteps, "diffusion_steps", 0, "denoising steps for sequence generation (default from config: 1024)")
	runCmd.Flags().IntVar(&runNumReplicas, "num_replicas", 0, "sequences generated per prompt (default from config: 5)")
	runCmd.Flags().StringVar(&runGPUs, "gpus", "", "GPU spec passed to docker run (e.g. 'all')")
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg := config.Get()

	paths, err := newPaths()
	if err != nil {
		return err
	}

	if err := paths.Initialize(); err != nil {
		return fmt.Errorf("failed to create directories: %w", err)
	}

	// The pipeline reads prompts from the mounted input directory. A
	// fresh placeholder means there is nothing real to run yet.
	prompts, err := pipeline.LoadPrompts(paths)
	if err != nil {
		return err
	}

	params := runParams(cmd, cfg)

	dockerClient := docker.NewClient()
	if !dockerClient.Installed() {
		return fmt.Errorf("docker is not installed. Run 'biom3 doctor' for details")
	}
	if !dockerClient.DaemonRunning() {
		return fmt.Errorf("docker daemon is not responding. Start the Docker service and retry")
	}
	if err := ensureImage(cmd.Context()); err != nil {
		return err
	}

	gpus := cfg.Docker.GPUs
	if cmd.Flags().Changed("gpus") {
		gpus = runGPUs
	}

	fmt.Printf("\nRunning BioM3 pipeline on %d prompt(s)\n", len(prompts))
	fmt.Printf("  diffusion_steps: %d\n", params.DiffusionSteps)
	fmt.Printf("  num_replicas:    %d\n", params.NumReplicas)
	if gpus != "" {
		fmt.Printf("  gpus:            %s\n", gpus)
	}
	fmt.Println()

	opts := docker.RunOptions{
		Image:  cfg.Docker.ImageRef(),
		Remove: !cfg.Docker.KeepContainer,
		GPUs:   gpus,
		Env: []docker.EnvVar{
			{Name: "DIFFUSION_STEPS", Value: strconv.Itoa(params.DiffusionSteps)},
			{Name: "NUM_REPLICAS", Value: strconv.Itoa(params.NumReplicas)},
		},
		Volumes: []docker.VolumeMount{
			{Host: paths.InputDir(), Container: containerInputDir},
			{Host: paths.OutputDir(), Container: containerOutputDir},
			{Host: paths.WeightsDir(), Container: containerWeightsDir},
		},
	}

	if err := dockerClient.Run(cmd.Context(), opts); err != nil {
		return err
	}

	fmt.Println("\n✅ Pipeline complete!")
	fmt.Printf("Results written under %s\n", paths.OutputDir())
	return nil
}

// runParams applies the run flags over the configured defaults.
func runParams(cmd *cobra.Command, cfg *config.Config) types.PipelineParams {
	params := types.PipelineParams{
		DiffusionSteps: cfg.Pipeline.DiffusionSteps,
		NumReplicas:    cfg.Pipeline.NumReplicas,
	}
	if cmd.Flags().Changed("diffusion_steps") {
		params.DiffusionSteps = runDiffusionSteps
	}
	if cmd.Flags().Changed("num_replicas") {
		params.NumReplicas = runNumReplicas
	}
	return params
}
