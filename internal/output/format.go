package output

import (
	"encoding/json"
	"fmt"
	"strings"

	"sigs.k8s.io/yaml"
)

// OutputFormat specifies how documents are printed.
type OutputFormat string

const (
	// FormatYAML outputs in YAML format.
	FormatYAML OutputFormat = "yaml"

	// FormatJSON outputs in JSON format.
	FormatJSON OutputFormat = "json"
)

// String returns the string representation of the output format.
func (f OutputFormat) String() string {
	return string(f)
}

// IsValid checks if the output format is valid.
func (f OutputFormat) IsValid() bool {
	switch f {
	case FormatYAML, FormatJSON:
		return true
	default:
		return false
	}
}

// ParseOutputFormat parses a string into an OutputFormat.
// Returns FormatJSON if the string is empty or invalid.
func ParseOutputFormat(s string) OutputFormat {
	switch strings.ToLower(s) {
	case "yaml", "yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// ValidFormats returns a slice of valid output format strings.
func ValidFormats() []string {
	return []string{"json", "yaml"}
}

// Marshal renders v in the given format. YAML output is produced from the
// JSON encoding so key order matches the stored document.
func Marshal(format OutputFormat, v any) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding json: %w", err)
	}
	if format != FormatYAML {
		return string(data) + "\n", nil
	}

	out, err := yaml.JSONToYAML(data)
	if err != nil {
		return "", fmt.Errorf("converting to yaml: %w", err)
	}
	return string(out), nil
}
