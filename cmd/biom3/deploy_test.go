package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tnnandi/biom3-docker/internal/config"
)

// installFakeBinary puts a stub executable on PATH that logs every
// invocation and exits with exitCode.
func installFakeBinary(t *testing.T, name string, exitCode int) string {
	t.Helper()

	binDir := t.TempDir()
	logPath := filepath.Join(binDir, name+".log")

	script := fmt.Sprintf("#!/bin/sh\necho \"$@\" >> %q\nexit %d\n", logPath, exitCode)
	require.NoError(t, os.WriteFile(filepath.Join(binDir, name), []byte(script), 0755))

	originalPath := os.Getenv("PATH")
	os.Setenv("PATH", binDir+string(os.PathListSeparator)+originalPath)
	t.Cleanup(func() { os.Setenv("PATH", originalPath) })

	return logPath
}

func resetDeployFlags(t *testing.T) {
	t.Helper()

	deployProject = ""
	deployRegion = ""
	deployService = ""
	deployImage = ""
	deployManifest = ""
	deploySkipBuild = false

	t.Setenv("PROJECT_ID", "")
	t.Setenv("REGION", "")
	t.Setenv("SERVICE_NAME", "")
	require.NoError(t, config.Initialize())
}

func TestDeployOptionsDefaults(t *testing.T) {
	resetDeployFlags(t)
	deployProject = "my-project"

	opts, err := deployOptions()
	require.NoError(t, err)

	assert.Equal(t, "my-project", opts.ProjectID)
	assert.Equal(t, "us-central1", opts.Region)
	assert.Equal(t, "biom3-service", opts.ServiceName)
	assert.Equal(t, "16Gi", opts.Memory)
	assert.Equal(t, "4", opts.CPU)
	assert.Equal(t, 3600, opts.TimeoutSeconds)
	assert.True(t, opts.AllowUnauthenticated)
	assert.Equal(t, 1024, opts.Params.DiffusionSteps)
	assert.Equal(t, 5, opts.Params.NumReplicas)
	assert.Equal(t, "gcr.io/my-project/biom3-cloudrun", opts.ImageRef())
}

func TestDeployOptionsFlagOverrides(t *testing.T) {
	resetDeployFlags(t)
	deployProject = "other-project"
	deployRegion = "europe-west4"
	deployService = "biom3-staging"

	opts, err := deployOptions()
	require.NoError(t, err)

	assert.Equal(t, "other-project", opts.ProjectID)
	assert.Equal(t, "europe-west4", opts.Region)
	assert.Equal(t, "biom3-staging", opts.ServiceName)
}

func TestDeployOptionsProjectFromEnv(t *testing.T) {
	resetDeployFlags(t)
	t.Setenv("PROJECT_ID", "env-project")
	require.NoError(t, config.Initialize())

	opts, err := deployOptions()
	require.NoError(t, err)
	assert.Equal(t, "env-project", opts.ProjectID)
}

func TestDeployOptionsRequiresProject(t *testing.T) {
	resetDeployFlags(t)

	_, err := deployOptions()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "project ID is required")
}

func TestRunDeployWritesManifest(t *testing.T) {
	resetDeployFlags(t)
	deployProject = "my-project"
	deployManifest = filepath.Join(t.TempDir(), "service.yaml")

	require.NoError(t, runDeploy(nil, nil))

	data, err := os.ReadFile(deployManifest)
	require.NoError(t, err)

	manifest := string(data)
	assert.Contains(t, manifest, "serving.knative.dev/v1")
	assert.Contains(t, manifest, "biom3-service")
	assert.Contains(t, manifest, "gcr.io/my-project/biom3-cloudrun")
	assert.Contains(t, manifest, "DIFFUSION_STEPS")
}

func TestRunDeployRequiresGcloud(t *testing.T) {
	resetDeployFlags(t)
	deployProject = "my-project"

	// Empty PATH so gcloud cannot be found
	originalPath := os.Getenv("PATH")
	os.Setenv("PATH", t.TempDir())
	defer os.Setenv("PATH", originalPath)

	err := runDeploy(nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gcloud is not installed")
}

func TestRunDeployInvokesGcloud(t *testing.T) {
	resetDeployFlags(t)
	deployProject = "my-project"
	logPath := installFakeBinary(t, "gcloud", 0)

	deployCmd.SetContext(context.Background())
	require.NoError(t, runDeploy(deployCmd, nil))

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "builds submit --tag gcr.io/my-project/biom3-cloudrun")
	assert.Contains(t, lines[1], "run deploy biom3-service")
	assert.Contains(t, lines[1], "--region us-central1")
}

func TestRunDeploySkipBuild(t *testing.T) {
	resetDeployFlags(t)
	deployProject = "my-project"
	deploySkipBuild = true
	logPath := installFakeBinary(t, "gcloud", 0)

	deployCmd.SetContext(context.Background())
	require.NoError(t, runDeploy(deployCmd, nil))

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], "run deploy")
	assert.NotContains(t, lines[0], "builds submit")
}
