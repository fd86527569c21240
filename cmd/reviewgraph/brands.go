package reviewgraph

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

var brandsCmd = &cobra.Command{
	Use:   "brands",
	Short: "List the brands in the graph",
	RunE:  runBrands,
}

func init() {
	rootCmd.AddCommand(brandsCmd)

	brandsCmd.Flags().String("query", "", "case-insensitive substring filter")
	brandsCmd.Flags().Int("limit", 0, "maximum number of brands (0 = all)")
	brandsCmd.Flags().String("format", "text", "output format (text, json, yaml)")
}

func runBrands(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}
	g, err := loadGraph(cmd, cfg)
	if err != nil {
		return err
	}

	query, _ := cmd.Flags().GetString("query")
	limit, _ := cmd.Flags().GetInt("limit")
	query = strings.ToLower(query)

	brands := []string{}
	for _, b := range g.Brands() {
		if query != "" && !strings.Contains(strings.ToLower(b), query) {
			continue
		}
		brands = append(brands, b)
		if limit > 0 && len(brands) == limit {
			break
		}
	}

	format, _ := cmd.Flags().GetString("format")
	return printResult(cmd.OutOrStdout(), format, brands, func(w io.Writer) error {
		for _, b := range brands {
			if _, err := fmt.Fprintln(w, b); err != nil {
				return err
			}
		}
		return nil
	})
}
