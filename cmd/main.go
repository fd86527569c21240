package main

import (
	"os"

	"github.com/soundprediction/reviewgraph/cmd/reviewgraph"
)

func main() {
	if err := reviewgraph.Execute(); err != nil {
		os.Exit(1)
	}
}
