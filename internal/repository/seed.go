package repository

import (
	"fmt"
	"os"

	"github.com/RishiKendai/overlap/internal/models"
	"gopkg.in/yaml.v3"
)

// LoadSeedFile reads a corpus seed: a JSON or YAML mapping from document id
// to text, e.g. {"text1": "...", "text2": "..."}. Entries keep file order.
func LoadSeedFile(path string) ([]models.DocumentSubmission, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}
	return ParseSeed(data)
}

func ParseSeed(data []byte) ([]models.DocumentSubmission, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("failed to parse seed: %w", err)
	}
	if len(root.Content) == 0 {
		return nil, nil
	}

	mapping := root.Content[0]
	if mapping.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("seed must be a mapping of id to text, line %d", mapping.Line)
	}

	docs := make([]models.DocumentSubmission, 0, len(mapping.Content)/2)
	seen := make(map[string]bool, len(mapping.Content)/2)
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		key, value := mapping.Content[i], mapping.Content[i+1]
		if value.Kind != yaml.ScalarNode {
			return nil, fmt.Errorf("seed entry %q must be a string, line %d", key.Value, value.Line)
		}
		if seen[key.Value] {
			return nil, fmt.Errorf("duplicate seed entry %q, line %d", key.Value, key.Line)
		}
		seen[key.Value] = true
		docs = append(docs, models.DocumentSubmission{
			ID:     key.Value,
			Title:  key.Value,
			Text:   value.Value,
			Source: models.SourceSeed,
		})
	}
	return docs, nil
}
