package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/viper"
)

// Config represents the BioM3 toolkit configuration
type Config struct {
	// Storage paths
	Storage StorageConfig `mapstructure:"storage"`

	// Docker image settings
	Docker DockerConfig `mapstructure:"docker"`

	// Pipeline generation parameters
	Pipeline PipelineConfig `mapstructure:"pipeline"`

	// HTTP service settings (container entrypoint)
	Server ServerConfig `mapstructure:"server"`

	// Cloud Run deployment settings
	CloudRun CloudRunConfig `mapstructure:"cloudrun"`

	// Weight download settings
	Download DownloadConfig `mapstructure:"download"`

	// UI settings
	UI UIConfig `mapstructure:"ui"`
}

type StorageConfig struct {
	// BaseDir is the root of the fixed input/output/weights tree.
	// The original scripts operate in the invoking directory, so the
	// default is "." (BIOM3_HOME overrides it).
	BaseDir string `mapstructure:"base_dir"`
}

type DockerConfig struct {
	Image         string `mapstructure:"image"`
	Tag           string `mapstructure:"tag"`
	GPUs          string `mapstructure:"gpus"`
	KeepContainer bool   `mapstructure:"keep_container"`
}

// ImageRef returns the full image reference passed to docker.
func (d DockerConfig) ImageRef() string {
	return fmt.Sprintf("%s:%s", d.Image, d.Tag)
}

type PipelineConfig struct {
	DiffusionSteps int `mapstructure:"diffusion_steps"`
	NumReplicas    int `mapstructure:"num_replicas"`

	// Driver is the external command that actually runs the ML stages
	// inside the container. The toolkit only invokes it.
	Driver       string `mapstructure:"driver"`
	DriverScript string `mapstructure:"driver_script"`
}

type ServerConfig struct {
	Host    string `mapstructure:"host"`
	Port    int    `mapstructure:"port"`
	GUIHTML string `mapstructure:"gui_html"`
}

type CloudRunConfig struct {
	ProjectID            string `mapstructure:"project_id"`
	Region               string `mapstructure:"region"`
	ServiceName          string `mapstructure:"service_name"`
	Memory               string `mapstructure:"memory"`
	CPU                  string `mapstructure:"cpu"`
	TimeoutSeconds       int    `mapstructure:"timeout_seconds"`
	AllowUnauthenticated bool   `mapstructure:"allow_unauthenticated"`
}

type DownloadConfig struct {
	// RateLimit caps download bandwidth in bytes/sec (0 = unlimited)
	RateLimit int64  `mapstructure:"rate_limit"`
	HFToken   string `mapstructure:"hf_token"`
}

type UIConfig struct {
	ProgressBar bool `mapstructure:"progress_bar"`
	Verbose     bool `mapstructure:"verbose"`
}

var (
	cfg *Config
	v   *viper.Viper
)

// Initialize sets up the configuration
func Initialize() error {
	v = viper.New()

	// Set config name and type
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	// Add config paths
	// 1. Same directory as executable
	if exe, err := os.Executable(); err == nil {
		v.AddConfigPath(filepath.Dir(exe))
	}

	// 2. Current working directory
	v.AddConfigPath(".")

	// 3. User config directory
	if configDir := getUserConfigDir(); configDir != "" {
		v.AddConfigPath(configDir)
	}

	// Set defaults
	setDefaults(v)

	// Bind environment variables
	v.SetEnvPrefix("BIOM3")
	v.SetEnvKeyReplacer(newDotReplacer())
	v.AutomaticEnv()
	bindScriptEnv(v)

	// Read config file if exists
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is ok, we'll use defaults
	}

	// Unmarshal into struct
	cfg = &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return fmt.Errorf("error unmarshaling config: %w", err)
	}

	// Expand paths
	expandPaths(cfg)

	return nil
}

// setDefaults sets all default values
func setDefaults(v *viper.Viper) {
	// Storage defaults
	v.SetDefault("storage.base_dir", getDefaultBaseDir())

	// Docker defaults
	v.SetDefault("docker.image", "tnnandi/biom3")
	v.SetDefault("docker.tag", "v1.1")
	v.SetDefault("docker.gpus", "")
	v.SetDefault("docker.keep_container", false)

	// Pipeline defaults
	v.SetDefault("pipeline.diffusion_steps", 1024)
	v.SetDefault("pipeline.num_replicas", 5)
	v.SetDefault("pipeline.driver", "python3")
	v.SetDefault("pipeline.driver_script", "/app/biom3_container.py")

	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.gui_html", "biom3_web_gui.html")

	// Cloud Run defaults
	v.SetDefault("cloudrun.project_id", "")
	v.SetDefault("cloudrun.region", "us-central1")
	v.SetDefault("cloudrun.service_name", "biom3-service")
	v.SetDefault("cloudrun.memory", "16Gi")
	v.SetDefault("cloudrun.cpu", "4")
	v.SetDefault("cloudrun.timeout_seconds", 3600)
	v.SetDefault("cloudrun.allow_unauthenticated", true)

	// Download defaults
	v.SetDefault("download.rate_limit", 0) // Unlimited
	v.SetDefault("download.hf_token", "")

	// UI defaults
	v.SetDefault("ui.progress_bar", true)
	v.SetDefault("ui.verbose", false)
}

// newDotReplacer maps nested config keys onto env-style names
// (docker.tag -> BIOM3_DOCKER_TAG).
func newDotReplacer() *strings.Replacer {
	return strings.NewReplacer(".", "_")
}

// bindScriptEnv binds the bare variable names the original shell scripts
// consumed, so they keep working alongside the BIOM3_* prefixed forms.
func bindScriptEnv(v *viper.Viper) {
	v.BindEnv("pipeline.diffusion_steps", "DIFFUSION_STEPS")
	v.BindEnv("pipeline.num_replicas", "NUM_REPLICAS")
	v.BindEnv("server.port", "PORT")
	v.BindEnv("cloudrun.project_id", "PROJECT_ID")
	v.BindEnv("cloudrun.region", "REGION")
	v.BindEnv("cloudrun.service_name", "SERVICE_NAME")
	v.BindEnv("download.hf_token", "HF_TOKEN")
}

// getDefaultBaseDir returns the default base directory
func getDefaultBaseDir() string {
	if dir := os.Getenv("BIOM3_HOME"); dir != "" {
		return dir
	}

	// The shell scripts worked out of the invoking directory
	return "."
}

// getUserConfigDir returns the user's config directory
func getUserConfigDir() string {
	// Use XDG_CONFIG_HOME if set
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "biom3")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "biom3")
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, "biom3")
		}
		return filepath.Join(home, "AppData", "Roaming", "biom3")
	default:
		return filepath.Join(home, ".config", "biom3")
	}
}

// expandPaths expands relative paths
func expandPaths(cfg *Config) {
	if cfg.Storage.BaseDir != "" {
		cfg.Storage.BaseDir = expandPath(cfg.Storage.BaseDir)
	}
}

// expandPath expands ~ and environment variables
func expandPath(path string) string {
	if path == "" {
		return path
	}

	// Expand ~
	if path[0] == '~' {
		home, err := os.UserHomeDir()
		if err == nil {
			path = filepath.Join(home, path[1:])
		}
	}

	// Expand environment variables
	return os.ExpandEnv(path)
}

// LoadFile reads an explicit config file on top of the defaults and
// refreshes the parsed configuration.
func LoadFile(path string) error {
	if v == nil {
		if err := Initialize(); err != nil {
			return err
		}
	}

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("error reading config file: %w", err)
	}

	cfg = &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return fmt.Errorf("error unmarshaling config: %w", err)
	}

	expandPaths(cfg)
	return nil
}

// Get returns the current configuration
func Get() *Config {
	if cfg == nil {
		panic("config not initialized")
	}
	return cfg
}

// GetViper returns the viper instance
func GetViper() *viper.Viper {
	if v == nil {
		panic("config not initialized")
	}
	return v
}

// SaveConfig saves the current configuration to file
func SaveConfig(path string) error {
	return v.WriteConfigAs(path)
}
