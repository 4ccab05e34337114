// Package loader decodes JSON, NDJSON, YAML and TOML input into the
// structview value model. Objects keep their source key order wherever
// the format defines one.
package loader

import (
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Format names a detected input format.
type Format string

const (
	FormatJSON   Format = "json"
	FormatNDJSON Format = "ndjson"
	FormatYAML   Format = "yaml"
	FormatTOML   Format = "toml"
)

var (
	tomlSectionPattern  = regexp.MustCompile(`^\s*\[{1,2}(?:[a-zA-Z_][a-zA-Z0-9_-]*|"[^"]+"|'[^']+')+(?:\.(?:[a-zA-Z_][a-zA-Z0-9_-]*|"[^"]+"|'[^']+'))*\]{1,2}\s*$`)
	tomlKeyValuePattern = regexp.MustCompile(`^\s*(?:[a-zA-Z_][a-zA-Z0-9_-]*|"[^"]+"|'[^']+')+(?:\.(?:[a-zA-Z_][a-zA-Z0-9_-]*|"[^"]+"|'[^']+'))*\s*=\s*.+$`)
)

// Detect guesses the format of input.
func Detect(input string) Format {
	input = strings.TrimSpace(input)
	if strings.Contains(input, "\n---") || strings.HasPrefix(input, "---") {
		return FormatYAML
	}
	if lines := strings.Split(input, "\n"); len(lines) > 1 && isLikelyNDJSON(lines) {
		if _, err := parseJSON(input); err != nil {
			return FormatNDJSON
		}
		return FormatJSON
	}
	// TOML headers look like JSON arrays ("[server]" vs "[1, 2]").
	if isLikelyTOML(input) {
		return FormatTOML
	}
	if strings.HasPrefix(input, "{") || strings.HasPrefix(input, "[") {
		return FormatJSON
	}
	return FormatYAML
}

// LoadData parses every document of input. Single-document inputs yield
// one element.
func LoadData(input string) ([]any, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, errors.New("empty input")
	}
	switch Detect(input) {
	case FormatNDJSON:
		return loadNDJSON(input)
	case FormatTOML:
		return loadTOML(input)
	case FormatJSON:
		if v, err := parseJSON(input); err == nil {
			return []any{v}, nil
		}
		// Flow-style YAML ("{a: 1}") starts like JSON.
		return loadYAML(input)
	}
	return loadYAML(input)
}

// LoadRoot parses input into a single root. Multi-document inputs become a
// list of documents.
func LoadRoot(input string) (any, error) {
	docs, err := LoadData(input)
	if err != nil {
		return nil, err
	}
	if len(docs) == 1 {
		return docs[0], nil
	}
	return docs, nil
}

// LoadReader reads r to the end and parses it with LoadRoot.
func LoadReader(r io.Reader) (any, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	return LoadRoot(string(data))
}

// LoadFile reads and parses the file at path.
func LoadFile(path string) (any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return LoadRoot(string(data))
}

// loadYAML decodes one or more YAML documents. Empty and null documents
// are skipped.
func loadYAML(input string) ([]any, error) {
	dec := yaml.NewDecoder(strings.NewReader(input))
	var docs []any
	for {
		var node yaml.Node
		if err := dec.Decode(&node); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("invalid YAML: %w", err)
		}
		if len(node.Content) == 0 {
			continue
		}
		v, err := fromYAMLNode(&node)
		if err != nil {
			return nil, fmt.Errorf("invalid YAML: %w", err)
		}
		if v == nil {
			continue
		}
		docs = append(docs, v)
	}
	if len(docs) == 0 {
		return nil, errors.New("no documents found in YAML input")
	}
	return docs, nil
}

// loadNDJSON decodes one JSON value per line. Lines that are not JSON are
// kept as plain strings.
func loadNDJSON(input string) ([]any, error) {
	lines := strings.Split(input, "\n")
	docs := make([]any, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		v, err := parseJSON(line)
		if err != nil {
			docs = append(docs, line)
			continue
		}
		docs = append(docs, v)
	}
	if len(docs) == 0 {
		return nil, errors.New("no data found in input")
	}
	return docs, nil
}

// isLikelyNDJSON requires a majority of the non-empty lines to open a
// JSON object or array, so YAML lists of bare items stay YAML.
func isLikelyNDJSON(lines []string) bool {
	jsonCount := 0
	nonEmptyCount := 0
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		nonEmptyCount++
		if strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "[") {
			jsonCount++
		}
	}
	return nonEmptyCount > 1 && jsonCount > nonEmptyCount/2
}

// isLikelyTOML looks for section headers or a majority of key = value
// lines.
func isLikelyTOML(input string) bool {
	sectionCount := 0
	keyValueCount := 0
	nonEmptyCount := 0
	for _, line := range strings.Split(input, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		nonEmptyCount++
		if tomlSectionPattern.MatchString(line) {
			sectionCount++
		}
		if tomlKeyValuePattern.MatchString(line) {
			keyValueCount++
		}
	}
	return sectionCount > 0 || (nonEmptyCount > 0 && keyValueCount > nonEmptyCount/2)
}

// loadTOML decodes a TOML document. go-toml does not report table order,
// so keys come back sorted.
func loadTOML(input string) ([]any, error) {
	var data map[string]any
	if err := toml.Unmarshal([]byte(input), &data); err != nil {
		return nil, fmt.Errorf("invalid TOML: %w", err)
	}
	return []any{toOrdered(data)}, nil
}
