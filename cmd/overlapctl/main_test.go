package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/RishiKendai/overlap/internal/plagiarism"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestCheckCommand(t *testing.T) {
	dir := t.TempDir()
	corpus := filepath.Join(dir, "db.json")
	require.NoError(t, os.WriteFile(corpus, []byte(`{
		"text1": "Purple elephants dance quietly under silver moonlight",
		"text2": "Completely unrelated sentence about mountain railways"
	}`), 0o600))

	out, err := run(t, "Purple elephants dance quietly beside golden rivers",
		"check", "-", "--corpus", corpus, "--language", "none", "--algorithm", "bm-good-suffix", "--json")
	require.NoError(t, err)

	var result plagiarism.Result
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	// purple elephants dance quietly beside golden rivers -> 5 shingles, 2 copied
	assert.Equal(t, 5, result.TotalShingles)
	assert.Equal(t, 2, result.HitShingles)
	assert.Equal(t, 2, result.Documents)
	assert.InDelta(t, 60.0, result.Uniqueness, 1e-9)
	for _, hit := range result.Hits {
		assert.Equal(t, "text1", hit.DocumentID)
	}
}

func TestCheckCommandErrors(t *testing.T) {
	dir := t.TempDir()
	corpus := filepath.Join(dir, "db.json")
	require.NoError(t, os.WriteFile(corpus, []byte(`{"text1": "a b c"}`), 0o600))

	_, err := run(t, "some words here", "check", "-", "--corpus", corpus, "--algorithm", "soundex", "--json=false")
	assert.Error(t, err)

	_, err = run(t, "short", "check", "-", "--corpus", corpus, "--algorithm", "kmp", "--language", "none")
	assert.ErrorIs(t, err, plagiarism.ErrEmptyShingleSet)
}

func TestBenchCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "text.txt")
	require.NoError(t, os.WriteFile(path, []byte(strings.Repeat("the quick brown fox jumps over the lazy dog ", 50)), 0o600))

	out, err := run(t, "", "bench", path, "--rounds", "2", "--pattern", "lazy dog")
	require.NoError(t, err)
	assert.Contains(t, out, "ALGORITHM")
	assert.Contains(t, out, "rabin-karp")
	assert.Contains(t, out, "bm-good-suffix")
	assert.Contains(t, out, "50")
}
