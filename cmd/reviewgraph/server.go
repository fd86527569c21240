package reviewgraph

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/soundprediction/reviewgraph/pkg/config"
	"github.com/soundprediction/reviewgraph/pkg/server"
)

var serverCmd = &cobra.Command{
	Use:     "serve",
	Aliases: []string{"server"},
	Short:   "Start the read-only HTTP API over a saved graph",
	Long: `Start the HTTP server exposing snapshot, brand and stats queries over a
previously ingested graph.

The server provides endpoints for:
- Point-in-time snapshots (/api/v1/snapshot)
- Brand listing (/api/v1/brands)
- Graph statistics (/api/v1/stats)
- Health checks (/health, /ready, /live)`,
	RunE: runServer,
}

var (
	serverHost string
	serverPort int
	serverMode string
)

func init() {
	rootCmd.AddCommand(serverCmd)

	serverCmd.Flags().StringVar(&serverHost, "host", "localhost", "Server host")
	serverCmd.Flags().IntVar(&serverPort, "port", 8080, "Server port")
	serverCmd.Flags().StringVar(&serverMode, "mode", "debug", "Server mode (debug, release, test)")
}

func overrideServerFlags(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("host") {
		cfg.Server.Host = serverHost
	}
	if cmd.Flags().Changed("port") {
		cfg.Server.Port = serverPort
	}
	if cmd.Flags().Changed("mode") {
		cfg.Server.Mode = serverMode
	}
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}
	overrideServerFlags(cmd, cfg)

	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("invalid configuration: port %d out of range", cfg.Server.Port)
	}

	g, err := loadGraph(cmd, cfg)
	if err != nil {
		return err
	}
	log.Info("Graph loaded", "path", cfg.Persistence.Path, "nodes", g.NodeCount(), "edges", g.EdgeCount())

	srv := server.New(cfg, g, log)
	srv.Setup()

	serverErrChan := make(chan error, 1)
	go func() {
		log.Info("Starting server", "addr", srv.Addr())
		if err := srv.Start(); err != nil {
			serverErrChan <- err
		}
	}()

	select {
	case err := <-serverErrChan:
		return fmt.Errorf("server error: %w", err)
	case <-cmd.Context().Done():
		log.Info("Shutting down server")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Stop(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}
		log.Info("Server stopped gracefully")
		return nil
	}
}
