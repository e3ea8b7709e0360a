package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tnnandi/biom3-docker/pkg/types"
)

// Output files the driver writes per run.
const (
	Stage1File  = "stage1_embeddings.json"
	Stage2File  = "stage2_embeddings.json"
	Stage3File  = "stage3_sequences.json"
	SummaryFile = "pipeline_summary.txt"
)

// ReadResults collects whatever stage outputs the driver left in
// outputDir. Missing files are simply skipped; a file that exists but
// holds broken JSON is an error.
func ReadResults(outputDir string) (*types.PipelineResults, error) {
	results := &types.PipelineResults{}

	stage1, err := readStageJSON(filepath.Join(outputDir, Stage1File))
	if err != nil {
		return nil, err
	}
	results.Stage1Embeddings = stage1

	stage2, err := readStageJSON(filepath.Join(outputDir, Stage2File))
	if err != nil {
		return nil, err
	}
	results.Stage2Embeddings = stage2

	stage3, err := readStageJSON(filepath.Join(outputDir, Stage3File))
	if err != nil {
		return nil, err
	}
	results.Stage3Sequences = stage3

	if data, err := os.ReadFile(filepath.Join(outputDir, SummaryFile)); err == nil {
		results.PipelineSummary = string(data)
	}

	return results, nil
}

func readStageJSON(path string) (json.RawMessage, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", filepath.Base(path), err)
	}

	if !json.Valid(data) {
		return nil, fmt.Errorf("%s holds invalid JSON", filepath.Base(path))
	}
	return json.RawMessage(data), nil
}
