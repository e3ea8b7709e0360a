package main

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tnnandi/biom3-docker/internal/config"
	"github.com/tnnandi/biom3-docker/internal/pipeline"
	"github.com/tnnandi/biom3-docker/internal/storage"
)

func resetRunFlags() {
	for _, name := range []string{"diffusion_steps", "num_replicas", "gpus"} {
		f := runCmd.Flags().Lookup(name)
		f.Value.Set(f.DefValue)
		f.Changed = false
	}
}

func TestRunRunRefusesFreshPromptsFile(t *testing.T) {
	paths := initTestConfig(t)

	runCmd.SetContext(context.Background())
	err := runRun(runCmd, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, pipeline.ErrPromptsPlaceholder)
	assert.Contains(t, err.Error(), "edit")

	// The seeded file is waiting for the user's prompts
	data, err := os.ReadFile(paths.PromptsPath())
	require.NoError(t, err)
	assert.Contains(t, string(data), storage.ExamplePrompt)
}

func TestRunParams(t *testing.T) {
	initTestConfig(t)
	cfg := config.Get()

	resetRunFlags()
	params := runParams(runCmd, cfg)
	assert.Equal(t, 1024, params.DiffusionSteps)
	assert.Equal(t, 5, params.NumReplicas)

	require.NoError(t, runCmd.Flags().Set("diffusion_steps", "512"))
	require.NoError(t, runCmd.Flags().Set("num_replicas", "2"))
	defer resetRunFlags()

	params = runParams(runCmd, cfg)
	assert.Equal(t, 512, params.DiffusionSteps)
	assert.Equal(t, 2, params.NumReplicas)
}
