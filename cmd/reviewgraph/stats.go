package reviewgraph

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/soundprediction/reviewgraph/pkg/types"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print node, edge and label counts",
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
	statsCmd.Flags().String("format", "text", "output format (text, json, yaml)")
}

func runStats(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}
	g, err := loadGraph(cmd, cfg)
	if err != nil {
		return err
	}

	stats := g.Stats()
	format, _ := cmd.Flags().GetString("format")
	return printResult(cmd.OutOrStdout(), format, stats, func(w io.Writer) error {
		fmt.Fprintf(w, "Nodes:   %d (%d brands, %d reviews)\n", stats.Nodes, stats.Brands, stats.Reviews)
		fmt.Fprintf(w, "Edges:   %d\n", stats.Edges)
		fmt.Fprintln(w, "Topics:")
		for _, t := range types.AllTopics {
			fmt.Fprintf(w, "  %-12s %d\n", t.String(), stats.Topics[t])
		}
		fmt.Fprintln(w, "Sentiments:")
		for _, s := range []types.SentimentLabel{types.SentimentPositive, types.SentimentNeutral, types.SentimentNegative} {
			fmt.Fprintf(w, "  %-12s %d\n", s.String(), stats.Moods[s])
		}
		return nil
	})
}
