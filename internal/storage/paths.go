package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	// PromptsFileName is the flat text input file, one prompt per line
	PromptsFileName = "prompts.txt"

	// ExamplePrompt is the placeholder written when no prompts file
	// exists yet. It is the IF-1 example shipped with the pipeline.
	ExamplePrompt = "PROTEIN NAME: Translation initiation factor IF-1. FUNCTION: One of the essential components for the initiation of protein synthesis. Binds in the vicinity of the A-site. Stabilizes the binding of IF-2 and IF-3 on the 30S subunit to which N-formylmethionyl-tRNA(fMet) subsequently binds. Helps modulate mRNA selection, yielding the 30S pre-initiation complex (PIC). Upon addition of the 50S ribosomal subunit, IF-1, IF-2 and IF-3 are released leaving the mature 70S translation initiation complex."
)

// WeightComponents are the four weight subdirectories, in download order.
var WeightComponents = []string{"LLMs", "PenCL", "Facilitator", "ProteoScribe"}

// Paths manages the fixed directory layout the pipeline container mounts:
// input/, output/ and weights/ under a single base directory.
type Paths struct {
	baseDir    string
	inputDir   string
	outputDir  string
	weightsDir string
}

// NewPaths creates a Paths instance rooted at the default base directory.
func NewPaths() (*Paths, error) {
	baseDir, err := getBaseDir()
	if err != nil {
		return nil, err
	}
	return NewPathsAt(baseDir)
}

// NewPathsAt creates a Paths instance rooted at dir. The base is resolved
// to an absolute path because it ends up in docker volume mounts.
func NewPathsAt(dir string) (*Paths, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve base directory: %w", err)
	}

	return &Paths{
		baseDir:    abs,
		inputDir:   filepath.Join(abs, "input"),
		outputDir:  filepath.Join(abs, "output"),
		weightsDir: filepath.Join(abs, "weights"),
	}, nil
}

// getBaseDir returns the base directory for the BioM3 layout
func getBaseDir() (string, error) {
	// Check environment variable first
	if dir := os.Getenv("BIOM3_HOME"); dir != "" {
		return dir, nil
	}

	// The shell scripts worked out of the invoking directory
	return ".", nil
}

// Initialize creates the fixed directory tree. It is idempotent: existing
// directories are left untouched.
func (p *Paths) Initialize() error {
	dirs := []string{
		p.inputDir,
		p.outputDir,
		p.weightsDir,
	}
	for _, name := range WeightComponents {
		dirs = append(dirs, p.WeightComponentDir(name))
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}

// BaseDir returns the base directory
func (p *Paths) BaseDir() string {
	return p.baseDir
}

// InputDir returns the input directory
func (p *Paths) InputDir() string {
	return p.inputDir
}

// OutputDir returns the output directory
func (p *Paths) OutputDir() string {
	return p.outputDir
}

// WeightsDir returns the weights directory
func (p *Paths) WeightsDir() string {
	return p.weightsDir
}

// WeightComponentDir returns the directory for one weight component
func (p *Paths) WeightComponentDir(name string) string {
	return filepath.Join(p.weightsDir, name)
}

// PromptsPath returns the path of the prompts file
func (p *Paths) PromptsPath() string {
	return filepath.Join(p.inputDir, PromptsFileName)
}

// StageConfigDir returns the directory holding the stage config files
// (BioM3/ next to input/ and output/; /app/BioM3 inside the container).
func (p *Paths) StageConfigDir() string {
	return filepath.Join(p.baseDir, "BioM3")
}

// StageConfigPaths returns the three stage config files the container
// entrypoint validates before serving.
func (p *Paths) StageConfigPaths() []string {
	dir := p.StageConfigDir()
	return []string{
		filepath.Join(dir, "stage1_config.json"),
		filepath.Join(dir, "stage2_config.json"),
		filepath.Join(dir, "stage3_config.json"),
	}
}

// EnsurePromptsFile writes the example prompt if no prompts file exists.
// It reports whether the file was created; an existing file is never
// modified.
func (p *Paths) EnsurePromptsFile() (bool, error) {
	path := p.PromptsPath()

	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !os.IsNotExist(err) {
		return false, fmt.Errorf("failed to check prompts file: %w", err)
	}

	if err := os.MkdirAll(p.inputDir, 0755); err != nil {
		return false, fmt.Errorf("failed to create input directory: %w", err)
	}

	if err := os.WriteFile(path, []byte(ExamplePrompt+"\n"), 0644); err != nil {
		return false, fmt.Errorf("failed to write prompts file: %w", err)
	}

	return true, nil
}

// ReadPrompts returns the non-empty lines of the prompts file.
func (p *Paths) ReadPrompts() ([]string, error) {
	data, err := os.ReadFile(p.PromptsPath())
	if err != nil {
		return nil, fmt.Errorf("failed to read prompts file: %w", err)
	}

	var prompts []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			prompts = append(prompts, line)
		}
	}

	return prompts, nil
}

// WritePrompts replaces the prompts file, one prompt per line.
func (p *Paths) WritePrompts(prompts []string) error {
	if err := os.MkdirAll(p.inputDir, 0755); err != nil {
		return fmt.Errorf("failed to create input directory: %w", err)
	}

	content := strings.Join(prompts, "\n") + "\n"
	if err := os.WriteFile(p.PromptsPath(), []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write prompts file: %w", err)
	}

	return nil
}

// GetDiskUsage returns disk usage of the managed tree
func (p *Paths) GetDiskUsage() DiskUsage {
	usage := DiskUsage{
		Input:   getDirSize(p.inputDir),
		Output:  getDirSize(p.outputDir),
		Weights: getDirSize(p.weightsDir),
	}
	usage.Total = usage.Input + usage.Output + usage.Weights

	return usage
}

// DiskUsage represents disk space usage
type DiskUsage struct {
	Total   int64
	Input   int64
	Output  int64
	Weights int64
}

// DirSize returns the total size of all files under path.
func DirSize(path string) int64 {
	return getDirSize(path)
}

// getDirSize calculates the total size of a directory
func getDirSize(path string) int64 {
	var size int64

	filepath.Walk(path, func(_ string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if !info.IsDir() {
			size += info.Size()
		}
		return nil
	})

	return size
}
