package main

import (
	"github.com/spf13/cobra"
	"github.com/tnnandi/biom3-docker/internal/config"
	"github.com/tnnandi/biom3-docker/internal/pipeline"
	"github.com/tnnandi/biom3-docker/internal/server"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the BioM3 prediction service",
	Long: `Starts the HTTP prediction service, the entrypoint of the Cloud Run
container image.

The service validates the three stage config files at startup and then
serves /predict, /predict/batch, /health, /info and a browser GUI on /.
It listens on PORT (default 8080) and shuts down gracefully on SIGINT
or SIGTERM.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().IntVar(&servePort, "port", 0, "listen port (default: PORT env or 8080)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := config.Get()
	if cmd.Flags().Changed("port") {
		cfg.Server.Port = servePort
	}

	paths, err := newPaths()
	if err != nil {
		return err
	}

	runner := pipeline.NewRunner(paths, cfg.Pipeline.Driver, cfg.Pipeline.DriverScript)
	return server.New(cfg, paths, runner).Run()
}
