package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/tnnandi/biom3-docker/internal/api/client"
	"github.com/tnnandi/biom3-docker/internal/config"
	"github.com/tnnandi/biom3-docker/pkg/types"
)

// serviceReadyTimeout caps how long --wait polls /health.
const serviceReadyTimeout = 300 * time.Second

var (
	predictURL            string
	predictWait           bool
	predictDiffusionSteps int
	predictNumReplicas    int
	predictOutput         string
)

var predictCmd = &cobra.Command{
	Use:   "predict PROMPT...",
	Short: "Generate sequences with a deployed prediction service",
	Long: `Sends prompts to a running BioM3 prediction service and prints the
generated sequences.

The service can be a Cloud Run deployment or a local 'biom3 serve'. Full
pipeline runs take minutes, so the request timeout is 10 minutes.

  biom3 predict --url https://biom3-service-abc-uc.a.run.app --wait \
    "PROTEIN NAME: Translation initiation factor IF-1. FUNCTION: ..."`,
	Args: cobra.MinimumNArgs(1),
	RunE: runPredict,
}

func init() {
	rootCmd.AddCommand(predictCmd)

	predictCmd.Flags().StringVar(&predictURL, "url", "http://127.0.0.1:8080", "base URL of the prediction service")
	predictCmd.Flags().BoolVar(&predictWait, "wait", false, "wait for the service to become healthy first")
	predictCmd.Flags().IntVar(&predictDiffusionSteps, "diffusion_steps", 0, "denoising steps for sequence generation")
	predictCmd.Flags().IntVar(&predictNumReplicas, "num_replicas", 0, "sequences generated per prompt")
	predictCmd.Flags().StringVar(&predictOutput, "output", "", "write the raw JSON response to this file")
}

func runPredict(cmd *cobra.Command, args []string) error {
	cfg := config.Get()
	apiClient := client.NewClient(predictURL)

	if predictWait {
		fmt.Println("Waiting for service to be ready...")
		if err := apiClient.WaitForService(cmd.Context(), serviceReadyTimeout); err != nil {
			return err
		}
		fmt.Println("Service is ready")
	}

	params := types.PipelineParams{
		DiffusionSteps: cfg.Pipeline.DiffusionSteps,
		NumReplicas:    cfg.Pipeline.NumReplicas,
	}
	if cmd.Flags().Changed("diffusion_steps") {
		params.DiffusionSteps = predictDiffusionSteps
	}
	if cmd.Flags().Changed("num_replicas") {
		params.NumReplicas = predictNumReplicas
	}

	fmt.Printf("Sending %d prompt(s) to %s...\n", len(args), predictURL)

	resp, err := apiClient.Predict(cmd.Context(), args, params)
	if err != nil {
		return fmt.Errorf("prediction failed: %w", err)
	}

	if predictOutput != "" {
		if err := writeResponse(predictOutput, resp); err != nil {
			return err
		}
		fmt.Printf("Response written to %s\n", predictOutput)
	}

	return printSequences(resp)
}

// printSequences renders the stage 3 records, falling back to the raw
// response when the service returned no parseable sequences.
func printSequences(resp *types.PredictResponse) error {
	if resp.Results == nil {
		return fmt.Errorf("service returned no results")
	}

	records, err := resp.Results.DecodeSequences()
	if err != nil {
		// The run may have produced embeddings only; show what came back
		data, merr := json.MarshalIndent(resp, "", "  ")
		if merr != nil {
			return fmt.Errorf("failed to render response: %w", merr)
		}
		fmt.Println(string(data))
		return nil
	}

	fmt.Printf("\nProcessed %d prompt(s)\n", resp.ProcessedPrompts)
	for _, record := range records {
		fmt.Printf("\nPrompt: %s\n", record.Prompt)
		for i, seq := range record.Sequences {
			fmt.Printf("  Sequence %d: %s\n", i+1, seq)
		}
	}

	if resp.Results.PipelineSummary != "" {
		fmt.Printf("\n%s\n", resp.Results.PipelineSummary)
	}
	return nil
}

func writeResponse(path string, resp *types.PredictResponse) error {
	data, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode response: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write response: %w", err)
	}
	return nil
}
