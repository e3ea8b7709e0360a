package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tnnandi/biom3-docker/pkg/types"
)

// stubRunner stands in for the pipeline so handler tests never shell out.
// A request whose first prompt is "explode" fails, everything else
// returns the canned results.
type stubRunner struct {
	calls   [][]string
	params  []types.PipelineParams
	results *types.PipelineResults
}

func (s *stubRunner) Run(ctx context.Context, prompts []string, params types.PipelineParams) (*types.PipelineResults, error) {
	s.calls = append(s.calls, prompts)
	s.params = append(s.params, params)

	if len(prompts) > 0 && prompts[0] == "explode" {
		return nil, errors.New("pipeline driver failed: exit status 3")
	}

	return s.results, nil
}

func setupTestHandlers(t *testing.T) (*Handlers, *stubRunner) {
	t.Helper()

	// Set test mode for Gin
	gin.SetMode(gin.TestMode)

	runner := &stubRunner{
		results: &types.PipelineResults{
			Stage3Sequences: json.RawMessage(`[{"prompt":"p","sequences":["MATG"],"config":{"diffusion_steps":1024,"num_replicas":5}}]`),
			PipelineSummary: "BioM3 Pipeline Results",
		},
	}

	defaults := types.PipelineParams{DiffusionSteps: 1024, NumReplicas: 5}
	h := NewHandlers(runner, defaults, filepath.Join(t.TempDir(), "biom3_web_gui.html"))

	return h, runner
}

func TestHealthEndpoint(t *testing.T) {
	h, _ := setupTestHandlers(t)

	router := gin.New()
	router.GET("/health", h.Health)

	req, _ := http.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	require.NoError(t, err)

	assert.Equal(t, "healthy", response["status"])
	assert.Equal(t, "BioM3 Cloud Run", response["service"])
	assert.Equal(t, false, response["initialized"])
}

func TestHealthReportsInitialized(t *testing.T) {
	h, _ := setupTestHandlers(t)
	h.SetInitialized(true)

	router := gin.New()
	router.GET("/health", h.Health)

	req, _ := http.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	require.NoError(t, err)

	assert.Equal(t, true, response["initialized"])
}

func TestInfoEndpoint(t *testing.T) {
	h, _ := setupTestHandlers(t)

	router := gin.New()
	router.GET("/info", h.Info)

	req, _ := http.NewRequest("GET", "/info", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	require.NoError(t, err)

	assert.Equal(t, "BioM3 Cloud Run", response["service"])
	assert.Equal(t, "1.0.0", response["version"])
	assert.Equal(t, "BioM3 protein generation and structure prediction pipeline", response["description"])

	endpoints, ok := response["endpoints"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "/health", endpoints["health"])
	assert.Equal(t, "/predict", endpoints["predict"])
	assert.Equal(t, "/predict/batch", endpoints["predict_batch"])
	assert.Equal(t, "/info", endpoints["info"])

	configs, ok := response["supported_configs"].(map[string]interface{})
	require.True(t, ok)
	assert.Contains(t, configs, "diffusion_steps")
	assert.Contains(t, configs, "num_replicas")
}

func TestGUIServesExternalFile(t *testing.T) {
	h, _ := setupTestHandlers(t)

	err := os.WriteFile(h.guiPath, []byte("<html>custom gui</html>"), 0644)
	require.NoError(t, err)

	router := gin.New()
	router.GET("/", h.GUI)

	req, _ := http.NewRequest("GET", "/", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	assert.Equal(t, "<html>custom gui</html>", w.Body.String())
}

func TestGUIFallsBackToEmbeddedPage(t *testing.T) {
	h, _ := setupTestHandlers(t)

	router := gin.New()
	router.GET("/", h.GUI)

	req, _ := http.NewRequest("GET", "/", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, w.Body.String(), "BioM3")
	assert.Contains(t, w.Body.String(), "generateProtein")
}
