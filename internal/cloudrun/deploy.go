package cloudrun

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strconv"

	"github.com/tnnandi/biom3-docker/pkg/types"
)

// Options collects everything a Cloud Run deployment needs. Defaults come
// from config; PROJECT_ID has no default and must be supplied.
type Options struct {
	ProjectID            string
	Region               string
	ServiceName          string
	Image                string
	Memory               string
	CPU                  string
	TimeoutSeconds       int
	AllowUnauthenticated bool
	Params               types.PipelineParams
}

// ImageRef returns the image to deploy, defaulting to the GCR path the
// build step publishes to.
func (o Options) ImageRef() string {
	if o.Image != "" {
		return o.Image
	}
	return fmt.Sprintf("gcr.io/%s/biom3-cloudrun", o.ProjectID)
}

// BuildSubmitArgs constructs the gcloud argument list for the image build
func BuildSubmitArgs(opts Options) []string {
	return []string{"builds", "submit", "--tag", opts.ImageRef(), "."}
}

// BuildDeployArgs constructs the gcloud argument list for the service deploy
func BuildDeployArgs(opts Options) []string {
	args := []string{
		"run", "deploy", opts.ServiceName,
		"--image", opts.ImageRef(),
		"--platform", "managed",
		"--region", opts.Region,
		"--memory", opts.Memory,
		"--cpu", opts.CPU,
		"--timeout", strconv.Itoa(opts.TimeoutSeconds),
		"--port", "8080",
		"--set-env-vars", fmt.Sprintf("DIFFUSION_STEPS=%d,NUM_REPLICAS=%d",
			opts.Params.DiffusionSteps, opts.Params.NumReplicas),
	}

	if opts.AllowUnauthenticated {
		args = append(args, "--allow-unauthenticated")
	}

	return args
}

// Deployer shells out to the gcloud CLI
type Deployer struct{}

func NewDeployer() *Deployer {
	return &Deployer{}
}

// Installed reports whether the gcloud CLI is on PATH
func (d *Deployer) Installed() bool {
	_, err := exec.LookPath("gcloud")
	return err == nil
}

// Submit builds and pushes the container image with Cloud Build
func (d *Deployer) Submit(ctx context.Context, opts Options) error {
	if err := d.run(ctx, BuildSubmitArgs(opts)); err != nil {
		return fmt.Errorf("gcloud builds submit failed: %w", err)
	}
	return nil
}

// Deploy rolls the image out as a Cloud Run service
func (d *Deployer) Deploy(ctx context.Context, opts Options) error {
	if err := d.run(ctx, BuildDeployArgs(opts)); err != nil {
		return fmt.Errorf("gcloud run deploy failed: %w", err)
	}
	return nil
}

func (d *Deployer) run(ctx context.Context, args []string) error {
	cmd := exec.CommandContext(ctx, "gcloud", args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}
