package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tnnandi/biom3-docker/internal/api"
	"github.com/tnnandi/biom3-docker/internal/api/handlers"
	"github.com/tnnandi/biom3-docker/internal/config"
	"github.com/tnnandi/biom3-docker/internal/pipeline"
	"github.com/tnnandi/biom3-docker/internal/storage"
	"github.com/tnnandi/biom3-docker/pkg/types"
)

// Server is the container entrypoint: it owns the HTTP listener and the
// handler wiring around a pipeline runner.
type Server struct {
	cfg      *config.Config
	paths    *storage.Paths
	handlers *handlers.Handlers
	server   *http.Server
}

func New(cfg *config.Config, paths *storage.Paths, runner handlers.Runner) *Server {
	defaults := types.PipelineParams{
		DiffusionSteps: cfg.Pipeline.DiffusionSteps,
		NumReplicas:    cfg.Pipeline.NumReplicas,
	}

	h := handlers.NewHandlers(runner, defaults, cfg.Server.GUIHTML)

	return &Server{
		cfg:      cfg,
		paths:    paths,
		handlers: h,
	}
}

// prepare validates startup requirements and builds the HTTP handler
func (s *Server) prepare() (http.Handler, error) {
	// The pipeline cannot run without its stage configs, so refuse to
	// serve rather than accept requests that can only fail.
	if err := pipeline.ValidateStageConfigs(s.paths); err != nil {
		return nil, err
	}
	s.handlers.SetInitialized(true)

	return api.SetupRoutes(s.handlers), nil
}

// Run starts the service and blocks until a shutdown signal arrives
func (s *Server) Run() error {
	handler, err := s.prepare()
	if err != nil {
		return err
	}

	addr := fmt.Sprintf("%s:%d", s.cfg.Server.Host, s.cfg.Server.Port)
	s.server = &http.Server{
		Addr:        addr,
		Handler:     handler,
		ReadTimeout: 30 * time.Second,
		// Predict responses block for the full pipeline run
		WriteTimeout: 15 * time.Minute,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("BioM3 service listening on %s", addr)
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case err := <-errCh:
		return fmt.Errorf("service failed: %w", err)
	case sig := <-sigCh:
		log.Printf("received %s, shutting down gracefully...", sig)
	}

	return s.Shutdown()
}

// Shutdown stops the listener, letting in-flight requests finish
func (s *Server) Shutdown() error {
	if s.server == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("error shutting down service: %w", err)
	}

	log.Println("service stopped")
	return nil
}
