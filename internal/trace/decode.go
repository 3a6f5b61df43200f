package trace

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Format is an on-disk encoding of a structured context.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatForPath picks the format from a file extension, defaulting to JSON.
func FormatForPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// Decode reads a structured context. Type mismatches against the schema
// (for example a non-array "rounds") are reported as errors.
func Decode(r io.Reader, format Format) (*StructuredContext, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading context: %w", err)
	}
	return Parse(data, format)
}

// Parse decodes a structured context from bytes.
func Parse(data []byte, format Format) (*StructuredContext, error) {
	if format == FormatYAML {
		converted, err := yamlToJSON(data)
		if err != nil {
			return nil, err
		}
		data = converted
	}

	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return &StructuredContext{}, nil
	}

	var sc StructuredContext
	if err := json.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("parsing context: %w", err)
	}
	return &sc, nil
}

// Load reads a structured context from a file.
func Load(path string) (*StructuredContext, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	sc, err := Parse(data, FormatForPath(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return sc, nil
}

// MarshalIndent encodes the context as indented JSON without escaping HTML
// characters, so stored traces stay readable.
func MarshalIndent(sc *StructuredContext) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(sc); err != nil {
		return nil, fmt.Errorf("encoding context: %w", err)
	}
	return buf.Bytes(), nil
}

// yamlToJSON routes YAML through a generic value so the JSON field rules
// (ids, raw tasks) apply to both formats.
func yamlToJSON(data []byte) ([]byte, error) {
	var v any
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("parsing yaml context: %w", err)
	}
	if v == nil {
		return nil, nil
	}
	out, err := json.Marshal(normalizeYAML(v))
	if err != nil {
		return nil, fmt.Errorf("converting yaml context: %w", err)
	}
	return out, nil
}

func normalizeYAML(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, val := range t {
			t[k] = normalizeYAML(val)
		}
		return t
	case map[any]any:
		m := make(map[string]any, len(t))
		for k, val := range t {
			m[fmt.Sprint(k)] = normalizeYAML(val)
		}
		return m
	case []any:
		for i, val := range t {
			t[i] = normalizeYAML(val)
		}
		return t
	default:
		return v
	}
}
