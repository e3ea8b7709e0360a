package types

import (
	"encoding/json"
	"fmt"
)

// PipelineParams are the two generation knobs every surface of the
// toolkit shares: CLI flags, container environment, and the HTTP API.
type PipelineParams struct {
	DiffusionSteps int `json:"diffusion_steps"`
	NumReplicas    int `json:"num_replicas"`
}

// PredictRequest is the body of POST /predict.
type PredictRequest struct {
	Prompts []string        `json:"prompts"`
	Config  *PipelineParams `json:"config,omitempty"`
}

// BatchRequest is the body of POST /predict/batch.
type BatchRequest struct {
	Requests []PredictRequest `json:"requests"`
}

// PipelineResults collects whatever output files a pipeline run produced.
// The stage payloads are written by the external driver, so they pass
// through untouched as raw JSON.
type PipelineResults struct {
	Stage1Embeddings json.RawMessage `json:"stage1_embeddings,omitempty"`
	Stage2Embeddings json.RawMessage `json:"stage2_embeddings,omitempty"`
	Stage3Sequences  json.RawMessage `json:"stage3_sequences,omitempty"`
	PipelineSummary  string          `json:"pipeline_summary,omitempty"`
}

// Stage3Record is one prompt's entry in stage3_sequences.json.
type Stage3Record struct {
	Prompt    string         `json:"prompt"`
	Sequences []string       `json:"sequences"`
	Config    PipelineParams `json:"config"`
}

// DecodeSequences parses the stage 3 payload into typed records.
func (r *PipelineResults) DecodeSequences() ([]Stage3Record, error) {
	if len(r.Stage3Sequences) == 0 {
		return nil, fmt.Errorf("no stage 3 sequences in results")
	}

	var records []Stage3Record
	if err := json.Unmarshal(r.Stage3Sequences, &records); err != nil {
		return nil, fmt.Errorf("failed to parse stage 3 sequences: %w", err)
	}

	return records, nil
}

// PredictResponse is the envelope returned by POST /predict.
type PredictResponse struct {
	Status           string           `json:"status,omitempty"`
	Results          *PipelineResults `json:"results,omitempty"`
	ProcessedPrompts int              `json:"processed_prompts,omitempty"`
	Error            string           `json:"error,omitempty"`
	Message          string           `json:"message,omitempty"`
}

// BatchItemResult is the per-request entry in a batch response. Failed
// items carry only index and error; the rest of the batch still runs.
type BatchItemResult struct {
	Index   int              `json:"index"`
	Status  string           `json:"status,omitempty"`
	Results *PipelineResults `json:"results,omitempty"`
	Error   string           `json:"error,omitempty"`
}

// BatchResponse is the envelope returned by POST /predict/batch.
type BatchResponse struct {
	Status        string            `json:"status,omitempty"`
	Results       []BatchItemResult `json:"results,omitempty"`
	TotalRequests int               `json:"total_requests,omitempty"`
	Error         string            `json:"error,omitempty"`
	Message       string            `json:"message,omitempty"`
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status      string `json:"status"`
	Service     string `json:"service"`
	Initialized bool   `json:"initialized"`
}

// ServiceInfo is returned by GET /info.
type ServiceInfo struct {
	Service          string            `json:"service"`
	Version          string            `json:"version"`
	Description      string            `json:"description"`
	Endpoints        map[string]string `json:"endpoints"`
	SupportedConfigs map[string]string `json:"supported_configs"`
}

// WeightStatus describes one weight component on disk.
type WeightStatus struct {
	Component string `json:"component"`
	Path      string `json:"path"`
	Present   bool   `json:"present"`
	SizeBytes int64  `json:"size_bytes"`

	// Revision is the HEAD commit of a cloned repository component,
	// empty for plain file downloads.
	Revision string `json:"revision,omitempty"`
}
