package graph

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/pipegraph/pkg/errors"
)

// Format is a graph serialization format.
type Format string

// Supported formats.
const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// Formats lists the supported formats.
var Formats = []Format{FormatJSON, FormatYAML, FormatTOML}

// ParseFormat parses a format name. "yml" is accepted as YAML.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "toml":
		return FormatTOML, nil
	}
	return "", errors.New(errors.ErrCodeInvalidFormat, "unsupported graph format %q", s)
}

// FormatFromPath picks the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		return "", errors.New(errors.ErrCodeInvalidFormat, "cannot infer graph format from %q", path)
	}
	return ParseFormat(ext)
}

// =============================================================================
// Graph Serialization API
// =============================================================================

// Marshal encodes g in the given format.
func Marshal(g Graph, format Format) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(g, &buf, format); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Unmarshal decodes a graph and runs Prepare on it.
func Unmarshal(data []byte, format Format, opts ...ValidateOption) (Graph, error) {
	return Read(bytes.NewReader(data), format, opts...)
}

// Write encodes g to w. JSON output is indented.
func Write(g Graph, w io.Writer, format Format) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(g); err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(g); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	case FormatTOML:
		if err := toml.NewEncoder(w).Encode(g); err != nil {
			return fmt.Errorf("encode toml: %w", err)
		}
	default:
		return errors.New(errors.ErrCodeInvalidFormat, "unsupported graph format %q", format)
	}
	return nil
}

// Read decodes a graph from r and runs Prepare on it.
func Read(r io.Reader, format Format, opts ...ValidateOption) (Graph, error) {
	g, err := decode(r, format)
	if err != nil {
		return Graph{}, err
	}
	if err := Prepare(&g, opts...); err != nil {
		return Graph{}, err
	}
	return g, nil
}

// ReadFile reads a graph file, choosing the format by extension.
func ReadFile(path string, opts ...ValidateOption) (Graph, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return Graph{}, err
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Graph{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "graph file %s", path)
		}
		return Graph{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return Read(f, format, opts...)
}

// WriteFile writes g to path, choosing the format by extension.
// The file is created with 0644 permissions.
func WriteFile(g Graph, path string) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := Write(g, f, format); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// =============================================================================
// Internal Implementation
// =============================================================================

func decode(r io.Reader, format Format) (Graph, error) {
	var g Graph
	var err error
	switch format {
	case FormatJSON:
		err = json.NewDecoder(r).Decode(&g)
	case FormatYAML:
		err = yaml.NewDecoder(r).Decode(&g)
		if err == io.EOF {
			err = nil
		}
	case FormatTOML:
		_, err = toml.NewDecoder(r).Decode(&g)
	default:
		return Graph{}, errors.New(errors.ErrCodeInvalidFormat, "unsupported graph format %q", format)
	}
	if err != nil {
		return Graph{}, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode %s", format)
	}
	return g, nil
}
