package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetDefaultBaseDir(t *testing.T) {
	tests := []struct {
		name     string
		envVar   string
		expected string
	}{
		{
			name:     "with environment variable",
			envVar:   "/custom/path",
			expected: "/custom/path",
		},
		{
			name:     "without environment variable",
			envVar:   "",
			expected: ".",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Save original env
			originalEnv := os.Getenv("BIOM3_HOME")
			defer os.Setenv("BIOM3_HOME", originalEnv)

			os.Setenv("BIOM3_HOME", tt.envVar)
			result := getDefaultBaseDir()

			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestExpandPath(t *testing.T) {
	home := os.Getenv("HOME")
	if home == "" {
		home = os.Getenv("USERPROFILE") // Windows
	}

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "expand tilde",
			input:    "~/biom3",
			expected: filepath.Join(home, "biom3"),
		},
		{
			name:     "expand environment variable",
			input:    "$HOME/biom3",
			expected: filepath.Join(home, "biom3"),
		},
		{
			name:     "no expansion needed",
			input:    "/absolute/path",
			expected: "/absolute/path",
		},
		{
			name:     "empty path",
			input:    "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := expandPath(tt.input)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestSetDefaults(t *testing.T) {
	v := viper.New()
	setDefaults(v)

	// Docker defaults
	assert.Equal(t, "tnnandi/biom3", v.GetString("docker.image"))
	assert.Equal(t, "v1.1", v.GetString("docker.tag"))
	assert.False(t, v.GetBool("docker.keep_container"))

	// Pipeline defaults
	assert.Equal(t, 1024, v.GetInt("pipeline.diffusion_steps"))
	assert.Equal(t, 5, v.GetInt("pipeline.num_replicas"))
	assert.Equal(t, "python3", v.GetString("pipeline.driver"))

	// Server defaults
	assert.Equal(t, 8080, v.GetInt("server.port"))
	assert.Equal(t, "0.0.0.0", v.GetString("server.host"))

	// Cloud Run defaults
	assert.Empty(t, v.GetString("cloudrun.project_id"))
	assert.Equal(t, "us-central1", v.GetString("cloudrun.region"))
	assert.Equal(t, "biom3-service", v.GetString("cloudrun.service_name"))
	assert.Equal(t, "16Gi", v.GetString("cloudrun.memory"))
	assert.Equal(t, 3600, v.GetInt("cloudrun.timeout_seconds"))

	// Download defaults
	assert.Equal(t, int64(0), v.GetInt64("download.rate_limit"))

	// UI defaults
	assert.True(t, v.GetBool("ui.progress_bar"))
	assert.False(t, v.GetBool("ui.verbose"))
}

func TestBindScriptEnv(t *testing.T) {
	// The bare names the shell scripts consumed must override defaults
	envVars := map[string]string{
		"DIFFUSION_STEPS": "256",
		"NUM_REPLICAS":    "2",
		"PORT":            "9090",
		"PROJECT_ID":      "my-project",
		"REGION":          "europe-west1",
		"SERVICE_NAME":    "biom3-test",
	}

	for key, value := range envVars {
		original := os.Getenv(key)
		os.Setenv(key, value)
		defer os.Setenv(key, original)
	}

	v := viper.New()
	setDefaults(v)
	bindScriptEnv(v)

	assert.Equal(t, 256, v.GetInt("pipeline.diffusion_steps"))
	assert.Equal(t, 2, v.GetInt("pipeline.num_replicas"))
	assert.Equal(t, 9090, v.GetInt("server.port"))
	assert.Equal(t, "my-project", v.GetString("cloudrun.project_id"))
	assert.Equal(t, "europe-west1", v.GetString("cloudrun.region"))
	assert.Equal(t, "biom3-test", v.GetString("cloudrun.service_name"))
}

func TestPrefixedEnvOverride(t *testing.T) {
	original := os.Getenv("BIOM3_DOCKER_TAG")
	os.Setenv("BIOM3_DOCKER_TAG", "v2.0")
	defer os.Setenv("BIOM3_DOCKER_TAG", original)

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix("BIOM3")
	v.SetEnvKeyReplacer(newDotReplacer())
	v.AutomaticEnv()

	assert.Equal(t, "v2.0", v.GetString("docker.tag"))
}

func TestImageRef(t *testing.T) {
	d := DockerConfig{Image: "tnnandi/biom3", Tag: "v1.1"}
	assert.Equal(t, "tnnandi/biom3:v1.1", d.ImageRef())
}

func TestInitialize(t *testing.T) {
	// Save original config
	originalCfg := cfg
	originalV := v
	defer func() {
		cfg = originalCfg
		v = originalV
	}()

	// Reset global variables
	cfg = nil
	v = nil

	err := Initialize()
	require.NoError(t, err)

	// Check that config was initialized
	assert.NotNil(t, cfg)
	assert.NotNil(t, v)

	assert.NotEmpty(t, cfg.Storage.BaseDir)
	assert.Equal(t, 1024, cfg.Pipeline.DiffusionSteps)
	assert.Equal(t, 5, cfg.Pipeline.NumReplicas)
}

func TestGet(t *testing.T) {
	// Save original config
	originalCfg := cfg
	defer func() {
		cfg = originalCfg
	}()

	// Test panic when not initialized
	cfg = nil
	assert.Panics(t, func() {
		Get()
	})

	// Test normal operation
	cfg = &Config{}
	result := Get()
	assert.Equal(t, cfg, result)
}

func TestConfigWithFile(t *testing.T) {
	// Create temp config file
	tempDir := t.TempDir()
	configFile := filepath.Join(tempDir, "config.yaml")

	configContent := `
storage:
  base_dir: /data/biom3
docker:
  tag: v1.2
pipeline:
  diffusion_steps: 512
cloudrun:
  region: us-east1
`
	err := os.WriteFile(configFile, []byte(configContent), 0644)
	require.NoError(t, err)

	v := viper.New()
	v.SetConfigFile(configFile)
	setDefaults(v)

	err = v.ReadInConfig()
	require.NoError(t, err)

	// Check that values were overridden
	assert.Equal(t, "/data/biom3", v.GetString("storage.base_dir"))
	assert.Equal(t, "v1.2", v.GetString("docker.tag"))
	assert.Equal(t, 512, v.GetInt("pipeline.diffusion_steps"))
	assert.Equal(t, "us-east1", v.GetString("cloudrun.region"))

	// Check that defaults are still set for non-overridden values
	assert.Equal(t, "tnnandi/biom3", v.GetString("docker.image"))
	assert.Equal(t, 5, v.GetInt("pipeline.num_replicas"))
	assert.Equal(t, 8080, v.GetInt("server.port"))
}
