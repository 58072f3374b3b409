package commands

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/valkey-io/valkey-glide-go"
	"github.com/valkey-io/valkey-glide-go/internal/cli/output"
)

var statsOutput string

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print the runtime metrics registry snapshot",
	RunE:  runStats,
}

func init() {
	statsCmd.Flags().StringVarP(&statsOutput, "output", "o", "table", "Output format (table|json|yaml)")
}

func runStats(cmd *cobra.Command, args []string) error {
	format, err := output.ParseFormat(statsOutput)
	if err != nil {
		return err
	}

	snapshot, err := glide.GetStatistics()
	if err != nil {
		return fmt.Errorf("stats: %w", err)
	}

	switch format {
	case output.FormatJSON:
		return output.PrintJSON(os.Stdout, snapshot)
	case output.FormatYAML:
		return output.PrintYAML(os.Stdout, snapshot)
	default:
		return printStatsTable(snapshot)
	}
}

func printStatsTable(snapshot map[string]float64) error {
	keys := make([]string, 0, len(snapshot))
	for k := range snapshot {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([][2]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, [2]string{k, fmt.Sprintf("%g", snapshot[k])})
	}
	return output.SimpleTable(os.Stdout, pairs)
}
