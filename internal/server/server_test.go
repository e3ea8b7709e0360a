package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tnnandi/biom3-docker/internal/config"
	"github.com/tnnandi/biom3-docker/internal/storage"
	"github.com/tnnandi/biom3-docker/pkg/types"
)

type stubRunner struct {
	calls int
}

func (s *stubRunner) Run(ctx context.Context, prompts []string, params types.PipelineParams) (*types.PipelineResults, error) {
	s.calls++
	return &types.PipelineResults{PipelineSummary: "ok"}, nil
}

func testConfig(baseDir string) *config.Config {
	return &config.Config{
		Storage: config.StorageConfig{BaseDir: baseDir},
		Pipeline: config.PipelineConfig{
			DiffusionSteps: 1024,
			NumReplicas:    5,
		},
		Server: config.ServerConfig{
			Host:    "127.0.0.1",
			Port:    0,
			GUIHTML: filepath.Join(baseDir, "biom3_web_gui.html"),
		},
	}
}

func writeStageConfigs(t *testing.T, paths *storage.Paths) {
	t.Helper()

	require.NoError(t, os.MkdirAll(paths.StageConfigDir(), 0755))
	for _, p := range paths.StageConfigPaths() {
		require.NoError(t, os.WriteFile(p, []byte("{}"), 0644))
	}
}

func newTestPaths(t *testing.T, dir string) *storage.Paths {
	t.Helper()

	paths, err := storage.NewPathsAt(dir)
	require.NoError(t, err)
	return paths
}

func TestPrepareFailsWithoutStageConfigs(t *testing.T) {
	gin.SetMode(gin.TestMode)
	dir := t.TempDir()

	srv := New(testConfig(dir), newTestPaths(t, dir), &stubRunner{})

	_, err := srv.prepare()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing stage config files")
	assert.Contains(t, err.Error(), "stage1_config.json")
}

func TestPrepareServesRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	dir := t.TempDir()
	paths := newTestPaths(t, dir)
	writeStageConfigs(t, paths)

	srv := New(testConfig(dir), paths, &stubRunner{})

	handler, err := srv.prepare()
	require.NoError(t, err)

	// Health reports the warm startup
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/health", nil)
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var health map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &health))
	assert.Equal(t, "healthy", health["status"])
	assert.Equal(t, true, health["initialized"])
}

func TestPreparedHandlerRunsPredict(t *testing.T) {
	gin.SetMode(gin.TestMode)
	dir := t.TempDir()
	paths := newTestPaths(t, dir)
	writeStageConfigs(t, paths)

	runner := &stubRunner{}
	srv := New(testConfig(dir), paths, runner)

	handler, err := srv.prepare()
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/predict", strings.NewReader(`{"prompts":["p"]}`))
	req.Header.Set("Content-Type", "application/json")
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, runner.calls)
}

func TestUnknownRouteReturnsJSON(t *testing.T) {
	gin.SetMode(gin.TestMode)
	dir := t.TempDir()
	paths := newTestPaths(t, dir)
	writeStageConfigs(t, paths)

	srv := New(testConfig(dir), paths, &stubRunner{})

	handler, err := srv.prepare()
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/nope", nil)
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "endpoint not found", body["error"])
	assert.Equal(t, "/nope", body["path"])
}

func TestOptionsPreflightShortCircuits(t *testing.T) {
	gin.SetMode(gin.TestMode)
	dir := t.TempDir()
	paths := newTestPaths(t, dir)
	writeStageConfigs(t, paths)

	runner := &stubRunner{}
	srv := New(testConfig(dir), paths, runner)

	handler, err := srv.prepare()
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("OPTIONS", "/predict", nil)
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, 0, runner.calls)
}

func TestShutdownBeforeRun(t *testing.T) {
	dir := t.TempDir()
	srv := New(testConfig(dir), newTestPaths(t, dir), &stubRunner{})

	assert.NoError(t, srv.Shutdown())
}
