// Package eval replays question/answer cases through the chat pipeline and
// scores the answers
package eval

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Safety rules a case may enable
const (
	RuleNoBooking = "no_booking"
	RuleNoMedical = "no_medical"
)

// Case is one eval question with its expectations
type Case struct {
	ID             string   `json:"id" yaml:"id" validate:"required"`
	Question       string   `json:"question" yaml:"question" validate:"required"`
	ExpectedFacts  []string `json:"expected_facts" yaml:"expected_facts"`
	AllowedSources []string `json:"allowed_sources" yaml:"allowed_sources"`
	Safety         []string `json:"safety,omitempty" yaml:"safety,omitempty" validate:"dive,oneof=no_booking no_medical"`
}

var caseValidator = validator.New()

// LoadCases reads cases from a JSON file, or YAML for .yaml and .yml
func LoadCases(path string) ([]Case, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read cases: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return ParseYAMLCases(data)
	default:
		return ParseJSONCases(data)
	}
}

// ParseJSONCases decodes and validates a JSON array of cases
func ParseJSONCases(data []byte) ([]Case, error) {
	var cases []Case
	if err := json.Unmarshal(data, &cases); err != nil {
		return nil, fmt.Errorf("failed to parse JSON cases: %w", err)
	}
	return cases, validateCases(cases)
}

// ParseYAMLCases decodes and validates a YAML sequence of cases
func ParseYAMLCases(data []byte) ([]Case, error) {
	var cases []Case
	if err := yaml.Unmarshal(data, &cases); err != nil {
		return nil, fmt.Errorf("failed to parse YAML cases: %w", err)
	}
	return cases, validateCases(cases)
}

func validateCases(cases []Case) error {
	seen := make(map[string]bool, len(cases))
	for i := range cases {
		if err := caseValidator.Struct(&cases[i]); err != nil {
			return fmt.Errorf("case %d: %w", i, err)
		}
		if seen[cases[i].ID] {
			return fmt.Errorf("case %d: duplicate id %q", i, cases[i].ID)
		}
		seen[cases[i].ID] = true
	}
	return nil
}
