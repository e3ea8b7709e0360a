package pipeline

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/tnnandi/biom3-docker/internal/storage"
	"github.com/tnnandi/biom3-docker/pkg/types"
)

// Runner executes the pipeline driver script for one request at a time.
// The driver works on shared files (input/prompts.txt, output/), so runs
// are serialized behind a mutex.
type Runner struct {
	mu     sync.Mutex
	paths  *storage.Paths
	driver string // interpreter, e.g. "python3"
	script string // driver script path
}

// NewRunner creates a Runner executing script with driver.
func NewRunner(paths *storage.Paths, driver, script string) *Runner {
	return &Runner{
		paths:  paths,
		driver: driver,
		script: script,
	}
}

// ValidateStageConfigs checks the stage config files the driver loads at
// startup, naming every missing one.
func ValidateStageConfigs(paths *storage.Paths) error {
	var missing []string
	for _, path := range paths.StageConfigPaths() {
		if _, err := os.Stat(path); err != nil {
			missing = append(missing, filepath.Base(path))
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing stage config files: %s", strings.Join(missing, ", "))
	}
	return nil
}

// Run processes prompts through the pipeline and collects the stage
// outputs. The request prompts temporarily replace input/prompts.txt;
// whatever was there before is restored afterwards.
func (r *Runner) Run(ctx context.Context, prompts []string, params types.PipelineParams) (*types.PipelineResults, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	runID := uuid.NewString()[:8]
	log.Printf("[run %s] processing %d prompts (diffusion_steps=%d num_replicas=%d)",
		runID, len(prompts), params.DiffusionSteps, params.NumReplicas)

	restore, err := r.swapPrompts(prompts)
	if err != nil {
		return nil, err
	}
	defer restore()

	if err := r.execDriver(ctx, params, runID); err != nil {
		return nil, err
	}

	results, err := ReadResults(r.paths.OutputDir())
	if err != nil {
		return nil, err
	}

	log.Printf("[run %s] pipeline finished", runID)
	return results, nil
}

// swapPrompts writes the request prompts over input/prompts.txt and
// returns a restore func that puts the previous file back (or removes
// the file if none existed).
func (r *Runner) swapPrompts(prompts []string) (func(), error) {
	promptsPath := r.paths.PromptsPath()
	backupPath := promptsPath + ".backup"

	hadOriginal := false
	if _, err := os.Stat(promptsPath); err == nil {
		if err := os.Rename(promptsPath, backupPath); err != nil {
			return nil, fmt.Errorf("failed to back up prompts file: %w", err)
		}
		hadOriginal = true
	}

	if err := r.paths.WritePrompts(prompts); err != nil {
		if hadOriginal {
			os.Rename(backupPath, promptsPath)
		}
		return nil, err
	}

	return func() {
		if hadOriginal {
			os.Rename(backupPath, promptsPath)
		} else {
			os.Remove(promptsPath)
		}
	}, nil
}

// execDriver runs the driver script, forwarding the parameters both as
// flags and as environment variables, the two ways the driver accepts
// them. Driver output is streamed into our log.
func (r *Runner) execDriver(ctx context.Context, params types.PipelineParams, runID string) error {
	args := []string{
		r.script,
		"--diffusion_steps", strconv.Itoa(params.DiffusionSteps),
		"--num_replicas", strconv.Itoa(params.NumReplicas),
	}

	cmd := exec.CommandContext(ctx, r.driver, args...)
	cmd.Dir = r.paths.BaseDir()
	cmd.Env = append(os.Environ(),
		fmt.Sprintf("DIFFUSION_STEPS=%d", params.DiffusionSteps),
		fmt.Sprintf("NUM_REPLICAS=%d", params.NumReplicas),
		"BIOM3_HOME="+r.paths.BaseDir(),
	)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("failed to create stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("failed to create stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start pipeline driver: %w", err)
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go scanLines(&wg, stdout, runID)
	go scanLines(&wg, stderr, runID)
	wg.Wait()

	if err := cmd.Wait(); err != nil {
		return fmt.Errorf("pipeline driver failed: %w", err)
	}
	return nil
}

// scanLines forwards driver output line by line into our log.
func scanLines(wg *sync.WaitGroup, r io.Reader, runID string) {
	defer wg.Done()

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 256*1024)
	for scanner.Scan() {
		log.Printf("[run %s] %s", runID, scanner.Text())
	}
}
