package pipeline

import (
	"errors"
	"fmt"

	"github.com/tnnandi/biom3-docker/internal/storage"
)

// ErrPromptsPlaceholder means input/prompts.txt was just seeded with the
// stock example prompt and needs editing before a run makes sense.
var ErrPromptsPlaceholder = errors.New("prompts file contains the example prompt")

// LoadPrompts prepares input/prompts.txt for a local run. A missing file
// is created with the example prompt and the run aborts so the user can
// put real prompts in; an existing file is read as-is.
func LoadPrompts(paths *storage.Paths) ([]string, error) {
	created, err := paths.EnsurePromptsFile()
	if err != nil {
		return nil, err
	}
	if created {
		return nil, fmt.Errorf("%w: edit %s and re-run", ErrPromptsPlaceholder, paths.PromptsPath())
	}

	prompts, err := paths.ReadPrompts()
	if err != nil {
		return nil, err
	}
	if len(prompts) == 0 {
		return nil, fmt.Errorf("no prompts found in %s", paths.PromptsPath())
	}

	return prompts, nil
}
