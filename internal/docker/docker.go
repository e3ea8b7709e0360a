package docker

import (
	"context"
	"fmt"
	"os"
	"os/exec"
)

// EnvVar is one -e flag of a docker run invocation.
type EnvVar struct {
	Name  string
	Value string
}

// VolumeMount is one -v flag of a docker run invocation.
type VolumeMount struct {
	Host      string
	Container string
}

// RunOptions describe a docker run invocation.
type RunOptions struct {
	Image   string
	Remove  bool
	GPUs    string // value for --gpus, empty disables GPU passthrough
	Env     []EnvVar
	Volumes []VolumeMount
}

// BuildRunArgs turns RunOptions into docker CLI arguments. Flags keep
// the order they were given so invocations stay reproducible.
func BuildRunArgs(opts RunOptions) []string {
	args := []string{"run"}

	if opts.Remove {
		args = append(args, "--rm")
	}
	if opts.GPUs != "" {
		args = append(args, "--gpus", opts.GPUs)
	}
	for _, env := range opts.Env {
		args = append(args, "-e", fmt.Sprintf("%s=%s", env.Name, env.Value))
	}
	for _, vol := range opts.Volumes {
		args = append(args, "-v", fmt.Sprintf("%s:%s", vol.Host, vol.Container))
	}

	return append(args, opts.Image)
}

// Client drives the docker CLI. All container work goes through the
// binary on PATH rather than the engine API, matching how the image is
// documented to be used.
type Client struct{}

// NewClient creates a docker Client.
func NewClient() *Client {
	return &Client{}
}

// Installed reports whether the docker binary is on PATH.
func (c *Client) Installed() bool {
	_, err := exec.LookPath("docker")
	return err == nil
}

// DaemonRunning reports whether the docker daemon answers.
func (c *Client) DaemonRunning() bool {
	return exec.Command("docker", "info").Run() == nil
}

// ImagePresent reports whether the image exists locally.
func (c *Client) ImagePresent(ref string) bool {
	return exec.Command("docker", "image", "inspect", ref).Run() == nil
}

// Pull downloads an image, streaming docker's own progress output.
func (c *Client) Pull(ctx context.Context, ref string) error {
	cmd := exec.CommandContext(ctx, "docker", "pull", ref)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("docker pull failed: %w", err)
	}
	return nil
}

// Run starts a container and blocks until it exits, streaming its
// output to the terminal.
func (c *Client) Run(ctx context.Context, opts RunOptions) error {
	cmd := exec.CommandContext(ctx, "docker", BuildRunArgs(opts)...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("docker run failed: %w", err)
	}
	return nil
}
