package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tnnandi/biom3-docker/internal/cloudrun"
	"github.com/tnnandi/biom3-docker/internal/config"
	"github.com/tnnandi/biom3-docker/pkg/types"
)

var (
	deployProject   string
	deployRegion    string
	deployService   string
	deployImage     string
	deployManifest  string
	deploySkipBuild bool
)

var deployCmd = &cobra.Command{
	Use:   "deploy",
	Short: "Deploy the prediction service to Google Cloud Run",
	Long: `Builds the service image with Cloud Build and deploys it to Cloud Run.

Requires the gcloud CLI and a project ID (--project, PROJECT_ID, or the
cloudrun.project_id config key). The service is deployed with 16Gi memory,
4 CPUs and a one hour request timeout, sized for full pipeline runs.

  biom3 deploy --project my-project
  biom3 deploy --project my-project --region europe-west4 --skip-build

With --manifest the command writes the equivalent Knative Service YAML
instead of calling gcloud, for use with 'gcloud run services replace':

  biom3 deploy --project my-project --manifest service.yaml`,
	RunE: runDeploy,
}

func init() {
	rootCmd.AddCommand(deployCmd)

	deployCmd.Flags().StringVar(&deployProject, "project", "", "Google Cloud project ID")
	deployCmd.Flags().StringVar(&deployRegion, "region", "", "Cloud Run region (default: us-central1)")
	deployCmd.Flags().StringVar(&deployService, "service", "", "Cloud Run service name (default: biom3-service)")
	deployCmd.Flags().StringVar(&deployImage, "image", "", "image reference (default: gcr.io/<project>/biom3-cloudrun)")
	deployCmd.Flags().StringVar(&deployManifest, "manifest", "", "write a Knative Service manifest to this path instead of deploying")
	deployCmd.Flags().BoolVar(&deploySkipBuild, "skip-build", false, "deploy an already-built image without running Cloud Build")
}

func runDeploy(cmd *cobra.Command, args []string) error {
	opts, err := deployOptions()
	if err != nil {
		return err
	}

	// Manifest rendering needs no gcloud at all
	if deployManifest != "" {
		if err := cloudrun.WriteManifest(deployManifest, opts); err != nil {
			return err
		}
		fmt.Printf("✅ Manifest written to %s\n", deployManifest)
		fmt.Println("\nApply it with:")
		fmt.Printf("  gcloud run services replace %s --region %s\n", deployManifest, opts.Region)
		return nil
	}

	deployer := cloudrun.NewDeployer()
	if !deployer.Installed() {
		return fmt.Errorf("gcloud is not installed. Install the Google Cloud SDK from https://cloud.google.com/sdk")
	}

	if !deploySkipBuild {
		fmt.Printf("Building image %s with Cloud Build...\n", opts.ImageRef())
		if err := deployer.Submit(cmd.Context(), opts); err != nil {
			return err
		}
		fmt.Println("✅ Image built")
	}

	fmt.Printf("\nDeploying %s to Cloud Run (%s)...\n", opts.ServiceName, opts.Region)
	if err := deployer.Deploy(cmd.Context(), opts); err != nil {
		return err
	}

	fmt.Println("\n✅ Deployment complete!")
	fmt.Println("\nCheck the service with:")
	fmt.Printf("  gcloud run services describe %s --region %s\n", opts.ServiceName, opts.Region)
	fmt.Println("  biom3 predict --url <service-url> --wait \"<prompt>\"")
	return nil
}

// deployOptions merges deploy flags over the cloudrun config section.
func deployOptions() (cloudrun.Options, error) {
	cfg := config.Get()

	opts := cloudrun.Options{
		ProjectID:            cfg.CloudRun.ProjectID,
		Region:               cfg.CloudRun.Region,
		ServiceName:          cfg.CloudRun.ServiceName,
		Image:                deployImage,
		Memory:               cfg.CloudRun.Memory,
		CPU:                  cfg.CloudRun.CPU,
		TimeoutSeconds:       cfg.CloudRun.TimeoutSeconds,
		AllowUnauthenticated: cfg.CloudRun.AllowUnauthenticated,
		Params: types.PipelineParams{
			DiffusionSteps: cfg.Pipeline.DiffusionSteps,
			NumReplicas:    cfg.Pipeline.NumReplicas,
		},
	}

	if deployProject != "" {
		opts.ProjectID = deployProject
	}
	if deployRegion != "" {
		opts.Region = deployRegion
	}
	if deployService != "" {
		opts.ServiceName = deployService
	}

	if opts.ProjectID == "" {
		return cloudrun.Options{}, fmt.Errorf("project ID is required: pass --project, set PROJECT_ID, or set cloudrun.project_id in the config")
	}

	return opts, nil
}
