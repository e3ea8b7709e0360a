package handlers

import (
	"context"
	"net/http"
	"sync/atomic"

	"github.com/gin-gonic/gin"
	"github.com/tnnandi/biom3-docker/pkg/types"
)

// Runner executes the generation pipeline for one request. The HTTP layer
// never touches the pipeline directly so tests can substitute a stub.
type Runner interface {
	Run(ctx context.Context, prompts []string, params types.PipelineParams) (*types.PipelineResults, error)
}

// Handlers contains the HTTP handler context for the service
type Handlers struct {
	runner      Runner
	defaults    types.PipelineParams
	guiPath     string
	initialized atomic.Bool
}

// NewHandlers creates a new Handlers instance
func NewHandlers(runner Runner, defaults types.PipelineParams, guiPath string) *Handlers {
	return &Handlers{
		runner:   runner,
		defaults: defaults,
		guiPath:  guiPath,
	}
}

// SetInitialized records whether startup validation completed. The health
// endpoint reports the flag so orchestrators can tell a warm service from
// one still missing its stage configs.
func (h *Handlers) SetInitialized(ok bool) {
	h.initialized.Store(ok)
}

// Health returns the service health status
func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":      "healthy",
		"service":     "BioM3 Cloud Run",
		"initialized": h.initialized.Load(),
	})
}

// Info describes the service and its endpoints
func (h *Handlers) Info(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"service":     "BioM3 Cloud Run",
		"version":     "1.0.0",
		"description": "BioM3 protein generation and structure prediction pipeline",
		"endpoints": gin.H{
			"health":        "/health",
			"predict":       "/predict",
			"predict_batch": "/predict/batch",
			"info":          "/info",
		},
		"supported_configs": gin.H{
			"diffusion_steps": "Number of diffusion steps (default: 1024)",
			"num_replicas":    "Number of sequence replicas to generate (default: 5)",
		},
	})
}
