package replay

// #region imports
import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/agroplan/crop-advisor/go-agent/internal/agro"
)

// #endregion

// #region fixture-types

// Fixture is the top-level JSON structure for a recorded scenario:
// the initial query, the follow-up answers keyed by question text, the
// canned gateway payloads, and the expected outcome.
type Fixture struct {
	Description string           `json:"description"`
	Query       string           `json:"query"`
	Answers     map[string]any   `json:"answers"`
	Soil        agro.Observation `json:"soil,omitempty"`
	Weather     agro.Observation `json:"weather,omitempty"`
	Expected    ExpectedResult   `json:"expected"`
}

// ExpectedResult captures the assertions for one scenario. Zero values
// mean "don't check".
type ExpectedResult struct {
	Crop       string `json:"crop,omitempty"`
	Confidence string `json:"confidence,omitempty"`
	Questions  int    `json:"questions,omitempty"`
}

// #endregion fixture-types

// #region fixture-loader

// LoadFixture reads and parses a JSON fixture file.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture %s: %w", path, err)
	}
	var f Fixture
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixture %s: %w", path, err)
	}
	if f.Query == "" {
		return nil, fmt.Errorf("fixture %s: empty query", path)
	}
	return &f, nil
}

// SaveFixture writes a fixture as indented JSON.
func SaveFixture(path string, f *Fixture) error {
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal fixture: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write fixture %s: %w", path, err)
	}
	return nil
}

// #endregion fixture-loader
