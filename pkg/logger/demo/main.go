package main

import (
	"log/slog"

	"github.com/soundprediction/reviewgraph/pkg/logger"
)

func main() {
	// Create a colored logger
	log := logger.NewDefaultLogger(slog.LevelDebug)

	log.Info("============================================")
	log.Info("    reviewgraph Colored Logger Demo")
	log.Info("============================================")

	log.Debug("Debug message - standard color")
	log.Info("Info message - standard color")
	log.Info("Saving graph snapshot - green!", "path", "review_graph.json")
	log.Info("Graph saved", "nodes", 412, "edges", 380)
	log.Warn("Classifier batch failed, dropping batch", "file", "reviews.csv", "size", 16)
	log.Error("Failed to ingest file", "file", "broken.json")

	log.Info("Demo complete!")
}
