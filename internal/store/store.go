// Package store persists scenarios as YAML or JSON files.
package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/mj1618/uiarec/internal/model"
)

// ErrNotExist is returned by Load for a missing scenario file.
var ErrNotExist = errors.New("scenario file does not exist")

// Format is a scenario file encoding.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// FormatFor picks the encoding from the file extension. Anything other
// than .json is YAML.
func FormatFor(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return FormatJSON
	}
	return FormatYAML
}

// Encode serializes sc in the given format.
func Encode(sc *model.Scenario, f Format) ([]byte, error) {
	switch f {
	case FormatJSON:
		data, err := json.MarshalIndent(sc, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("encode scenario: %w", err)
		}
		return append(data, '\n'), nil
	default:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(sc); err != nil {
			return nil, fmt.Errorf("encode scenario: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, fmt.Errorf("encode scenario: %w", err)
		}
		return buf.Bytes(), nil
	}
}

// Decode parses a scenario in the given format.
func Decode(data []byte, f Format) (*model.Scenario, error) {
	sc := model.New()
	var err error
	switch f {
	case FormatJSON:
		err = json.Unmarshal(data, sc)
	default:
		err = yaml.Unmarshal(data, sc)
	}
	if err != nil {
		return nil, fmt.Errorf("decode scenario: %w", err)
	}
	return sc, nil
}

// Load reads the scenario at path.
func Load(path string) (*model.Scenario, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotExist, path)
	}
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}
	sc, err := Decode(data, FormatFor(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return sc, nil
}

// LoadOrNew reads the scenario at path, or returns an empty one when the
// file does not exist yet.
func LoadOrNew(path string) (*model.Scenario, error) {
	sc, err := Load(path)
	if errors.Is(err, ErrNotExist) {
		return model.New(), nil
	}
	return sc, err
}

// Save writes sc to path atomically.
func Save(path string, sc *model.Scenario) error {
	data, err := Encode(sc, FormatFor(path))
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create scenario dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".uiarec-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write scenario: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write scenario: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace scenario: %w", err)
	}
	return nil
}
