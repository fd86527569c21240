package reviewgraph

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/soundprediction/reviewgraph/pkg/config"
	"github.com/soundprediction/reviewgraph/pkg/graph"
	"github.com/soundprediction/reviewgraph/pkg/logger"
	"github.com/soundprediction/reviewgraph/pkg/persistence"
)

var (
	cfgFile string
	rootCmd = &cobra.Command{
		Use:   "reviewgraph",
		Short: "ReviewGraph: temporal brand review knowledge graph",
		Long: `ReviewGraph builds a temporal knowledge graph linking brands to the
reviews written about them, labelled with topic and sentiment, and answers
point-in-time questions about what was being said about a brand.

Ingest a directory of review files, then query snapshots from the CLI or
the HTTP API.`,
		SilenceUsage: true,
	}
)

// Execute adds all child commands to the root command and sets flags appropriately.
// SIGINT and SIGTERM cancel the command context.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.reviewgraph.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "text", "log format (text, json)")
	rootCmd.PersistentFlags().String("graph", "review_graph.json", "path of the persisted graph")
	rootCmd.PersistentFlags().String("backend", "file", "graph storage backend (file, badger)")

	// Bind flags to viper
	viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("log.format", rootCmd.PersistentFlags().Lookup("log-format"))
	viper.BindPFlag("persistence.path", rootCmd.PersistentFlags().Lookup("graph"))
	viper.BindPFlag("persistence.backend", rootCmd.PersistentFlags().Lookup("backend"))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		// Search config in home directory with name ".reviewgraph" (without extension).
		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".reviewgraph")
	}

	// REVIEWGRAPH_INGEST_BATCH_SIZE overrides ingest.batch_size, and so on.
	viper.SetEnvPrefix("REVIEWGRAPH")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// loadConfig loads the configuration and builds the console logger.
func loadConfig() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, logger.New(cfg.Log), nil
}

// loadGraph opens the configured store and reads the graph from it.
func loadGraph(cmd *cobra.Command, cfg *config.Config) (*graph.TemporalGraph, error) {
	store, err := persistence.Open(cfg.Persistence)
	if err != nil {
		return nil, err
	}
	g, err := store.Load(cmd.Context())
	if err != nil {
		return nil, fmt.Errorf("failed to load graph from %s: %w", cfg.Persistence.Path, err)
	}
	return g, nil
}
