package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRunStatus(t *testing.T) {
	paths := initTestConfig(t)
	installFakeBinary(t, "docker", 0)

	// One weight present, prompts file written
	penclDir := paths.WeightComponentDir("PenCL")
	require.NoError(t, os.MkdirAll(penclDir, 0755))
	require.NoError(t, os.WriteFile(
		filepath.Join(penclDir, "BioM3_PenCL_epoch20.bin"), make([]byte, 2_000_000), 0644))
	require.NoError(t, paths.WritePrompts([]string{"PROTEIN NAME: test. FUNCTION: test."}))

	require.NoError(t, runStatus(statusCmd, nil))
}

func TestRunStatusEmptyLayout(t *testing.T) {
	initTestConfig(t)

	// No docker on PATH at all
	originalPath := os.Getenv("PATH")
	os.Setenv("PATH", t.TempDir())
	defer os.Setenv("PATH", originalPath)

	// Status is a report, not a gate; it never errors on missing pieces
	require.NoError(t, runStatus(statusCmd, nil))
}
