package reviewgraph

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/soundprediction/reviewgraph"
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Show the facts about a brand that were valid on a date",
	Example: `  reviewgraph snapshot --date 2016-09-01 --brand apple
  reviewgraph snapshot --date "June 1 2016" --format json`,
	RunE: runSnapshot,
}

func init() {
	rootCmd.AddCommand(snapshotCmd)

	snapshotCmd.Flags().String("date", "", "query date (YYYY-MM-DD or any common date format)")
	snapshotCmd.Flags().String("brand", "", "case-insensitive brand substring (empty matches all)")
	snapshotCmd.Flags().Bool("strict", false, "fail when no brand matches --brand")
	snapshotCmd.Flags().String("format", "text", "output format (text, json, yaml)")
	snapshotCmd.MarkFlagRequired("date")
}

func runSnapshot(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}
	g, err := loadGraph(cmd, cfg)
	if err != nil {
		return err
	}

	date, _ := cmd.Flags().GetString("date")
	brand, _ := cmd.Flags().GetString("brand")
	strict, _ := cmd.Flags().GetBool("strict")
	res, err := reviewgraph.QuerySnapshot(g, reviewgraph.SnapshotQuery{Date: date, Brand: brand, Strict: strict})
	if err != nil {
		return err
	}

	format, _ := cmd.Flags().GetString("format")
	return printResult(cmd.OutOrStdout(), format, res, func(w io.Writer) error {
		_, err := fmt.Fprintln(w, res.Text)
		return err
	})
}
