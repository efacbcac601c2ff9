package main

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/RishiKendai/overlap/internal/matcher"
	"github.com/spf13/cobra"
)

var (
	benchPatterns []string
	benchRounds   int
)

var benchCmd = &cobra.Command{
	Use:   "bench <text-file>",
	Short: "Time every search algorithm over a text file",
	Args:  cobra.ExactArgs(1),
	RunE:  runBench,
}

func init() {
	benchCmd.Flags().StringArrayVar(&benchPatterns, "pattern", nil, "Pattern to search for (repeatable); defaults to samples of the text")
	benchCmd.Flags().IntVar(&benchRounds, "rounds", 10, "Searches per pattern and algorithm")
}

func runBench(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read text: %w", err)
	}
	text := string(data)

	patterns := benchPatterns
	if len(patterns) == 0 {
		patterns = samplePatterns(text)
	}
	rounds := max(1, benchRounds)

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ALGORITHM\tPATTERN\tMATCHES\tPER SEARCH")
	for _, kind := range matcher.Kinds() {
		var total time.Duration
		for _, p := range patterns {
			m, err := matcher.New(kind, p)
			if err != nil {
				return fmt.Errorf("pattern %q: %w", p, err)
			}
			var found []int
			start := time.Now()
			for i := 0; i < rounds; i++ {
				found = m.Search(text)
			}
			took := time.Since(start)
			total += took
			fmt.Fprintf(w, "%s\t%q\t%d\t%s\n", kind, truncate(p, 32), len(found), took/time.Duration(rounds))
		}
		fmt.Fprintf(w, "%s\ttotal\t\t%s\n", kind, total)
	}
	return w.Flush()
}

// samplePatterns takes a few slices of text plus one pattern that is absent.
func samplePatterns(text string) []string {
	var out []string
	for _, frac := range []int{1, 3, 5, 7} {
		start := len(text) * frac / 8
		end := min(len(text), start+40)
		if end > start {
			out = append(out, text[start:end])
		}
	}
	return append(out, "zz_NOT_IN_TEXT_zz")
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
