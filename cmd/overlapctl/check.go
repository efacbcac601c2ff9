package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/RishiKendai/overlap/internal/canonical"
	"github.com/RishiKendai/overlap/internal/matcher"
	"github.com/RishiKendai/overlap/internal/models"
	"github.com/RishiKendai/overlap/internal/plagiarism"
	"github.com/RishiKendai/overlap/internal/repository"
	"github.com/RishiKendai/overlap/internal/shingle"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	corpusFile   string
	algorithm    string
	shingleSize  int
	language     string
	alphabetSize int
	workers      int
	jsonOutput   bool
)

var checkCmd = &cobra.Command{
	Use:   "check <candidate-file|->",
	Short: "Score a candidate text against a corpus file",
	Args:  cobra.ExactArgs(1),
	RunE:  runCheck,
}

func init() {
	checkCmd.Flags().StringVar(&corpusFile, "corpus", "db.json", "Corpus file: JSON or YAML mapping of id to text")
	checkCmd.Flags().StringVar(&algorithm, "algorithm", string(matcher.KindKMP), "Search algorithm")
	checkCmd.Flags().IntVar(&shingleSize, "shingle-size", shingle.DefaultSize, "Words per shingle")
	checkCmd.Flags().StringVar(&language, "language", "english", "Stemming language, or \"none\"")
	checkCmd.Flags().IntVar(&alphabetSize, "alphabet-size", matcher.DefaultAlphabetSize, "Boyer-Moore bad-character table size")
	checkCmd.Flags().IntVar(&workers, "workers", 0, "Concurrent shingle searches (0 = GOMAXPROCS)")
	checkCmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the full result as JSON")
}

func runCheck(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	kind, err := matcher.ParseKind(algorithm)
	if err != nil {
		return err
	}

	raw, err := readInput(cmd.InOrStdin(), args[0])
	if err != nil {
		return err
	}

	pipeline, err := canonical.NewPipeline(language)
	if err != nil {
		return err
	}

	seed, err := repository.LoadSeedFile(corpusFile)
	if err != nil {
		return err
	}
	corpus := make([]models.Document, 0, len(seed))
	for _, s := range seed {
		normalized, err := pipeline.Canonicalize(ctx, s.Text)
		if err != nil {
			return fmt.Errorf("failed to canonicalize %q: %w", s.ID, err)
		}
		corpus = append(corpus, models.Document{ID: s.ID, Title: s.Title, RawText: s.Text, NormalizedText: normalized})
	}
	log.Debug().Int("documents", len(corpus)).Str("file", corpusFile).Msg("Corpus loaded")

	session := plagiarism.NewSession(pipeline, shingleSize)
	if err := session.SetPattern(ctx, raw); err != nil {
		return err
	}
	if stable, err := canonical.IsStable(ctx, pipeline, raw); err == nil && !stable {
		log.Warn().Msg("Candidate canonical form is not stable under re-canonicalization")
	}

	result, err := session.Search(ctx, kind, corpus,
		plagiarism.WithWorkers(workers),
		plagiarism.WithBuilder(func(pattern string) (matcher.Matcher, error) {
			return matcher.New(kind, pattern, matcher.WithAlphabetSize(alphabetSize))
		}),
	)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if jsonOutput {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	fmt.Fprintf(out, "algorithm:  %s\n", kind)
	fmt.Fprintf(out, "shingles:   %d (%d found in corpus)\n", result.TotalShingles, result.HitShingles)
	fmt.Fprintf(out, "documents:  %d\n", result.Documents)
	fmt.Fprintf(out, "uniqueness: %.2f%%\n", result.Uniqueness)
	for _, hit := range result.Hits {
		fmt.Fprintf(out, "  #%d %q in %s at %v\n", hit.ShingleIndex, hit.Shingle, hit.DocumentID, hit.Occurrences)
	}
	return nil
}

func readInput(stdin io.Reader, path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(stdin)
		return string(data), err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read candidate: %w", err)
	}
	return string(data), nil
}
