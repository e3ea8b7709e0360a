package handlers

import (
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/tnnandi/biom3-docker/pkg/types"
)

// predictBody is the raw binding for a predict request. Prompts stays a
// raw message so a missing field and an empty list report different errors.
type predictBody struct {
	Prompts json.RawMessage        `json:"prompts"`
	Config  map[string]interface{} `json:"config"`
}

// batchBody is the raw binding for POST /predict/batch
type batchBody struct {
	Requests json.RawMessage `json:"requests"`
}

// Predict runs the pipeline over the prompts in the request body
func (h *Handlers) Predict(c *gin.Context) {
	if !isJSONRequest(c) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Content-Type must be application/json"})
		return
	}

	var body predictBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid request: %v", err)})
		return
	}

	prompts, errMsg := parsePrompts(body.Prompts)
	if errMsg != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": errMsg})
		return
	}

	params, errMsg := h.mergeParams(body.Config)
	if errMsg != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": errMsg})
		return
	}

	results, err := h.runner.Run(c.Request.Context(), prompts, params)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Internal server error",
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":            "success",
		"results":           results,
		"processed_prompts": len(prompts),
	})
}

// PredictBatch runs the pipeline once per request in the batch. Requests
// are isolated: a failed entry reports its error in place while the rest
// of the batch still runs.
func (h *Handlers) PredictBatch(c *gin.Context) {
	if !isJSONRequest(c) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Content-Type must be application/json"})
		return
	}

	var body batchBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid request: %v", err)})
		return
	}

	if body.Requests == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required field: requests"})
		return
	}

	var requests []predictBody
	if err := json.Unmarshal(body.Requests, &requests); err != nil || len(requests) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Requests must be a non-empty list"})
		return
	}

	results := make([]types.BatchItemResult, 0, len(requests))
	for i, req := range requests {
		results = append(results, h.runBatchItem(c, i, req))
	}

	c.JSON(http.StatusOK, gin.H{
		"status":         "success",
		"results":        results,
		"total_requests": len(requests),
	})
}

// runBatchItem validates and executes one batch entry
func (h *Handlers) runBatchItem(c *gin.Context, index int, req predictBody) types.BatchItemResult {
	prompts, errMsg := parsePrompts(req.Prompts)
	if errMsg != "" {
		return types.BatchItemResult{Index: index, Error: errMsg}
	}

	params, errMsg := h.mergeParams(req.Config)
	if errMsg != "" {
		return types.BatchItemResult{Index: index, Error: errMsg}
	}

	results, err := h.runner.Run(c.Request.Context(), prompts, params)
	if err != nil {
		return types.BatchItemResult{Index: index, Error: err.Error()}
	}

	return types.BatchItemResult{
		Index:   index,
		Status:  "success",
		Results: results,
	}
}

// parsePrompts validates the prompts field shared by both predict routes
func parsePrompts(raw json.RawMessage) ([]string, string) {
	if raw == nil {
		return nil, "Missing required field: prompts"
	}

	var prompts []string
	if err := json.Unmarshal(raw, &prompts); err != nil || len(prompts) == 0 {
		return nil, "Prompts must be a non-empty list"
	}

	return prompts, ""
}

// mergeParams overlays request config values onto the service defaults
func (h *Handlers) mergeParams(config map[string]interface{}) (types.PipelineParams, string) {
	params := h.defaults
	if config == nil {
		return params, ""
	}

	if v, ok := config["diffusion_steps"]; ok {
		n, ok := positiveInt(v)
		if !ok {
			return params, "diffusion_steps must be a positive integer"
		}
		params.DiffusionSteps = n
	}

	if v, ok := config["num_replicas"]; ok {
		n, ok := positiveInt(v)
		if !ok {
			return params, "num_replicas must be a positive integer"
		}
		params.NumReplicas = n
	}

	return params, ""
}

// positiveInt accepts a decoded JSON value only if it is a positive whole
// number. encoding/json hands numbers over as float64.
func positiveInt(v interface{}) (int, bool) {
	f, ok := v.(float64)
	if !ok {
		return 0, false
	}
	if f != math.Trunc(f) || f <= 0 {
		return 0, false
	}
	return int(f), true
}

// isJSONRequest reports whether the request declared a JSON body
func isJSONRequest(c *gin.Context) bool {
	ct := strings.ToLower(strings.TrimSpace(c.GetHeader("Content-Type")))
	return strings.HasPrefix(ct, "application/json")
}
