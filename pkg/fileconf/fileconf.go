// Package fileconf decodes the YAML and JSON files the aggregator is
// configured with (feed registry, publishers).
package fileconf

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrUnknownFormat is returned when no decoder accepts the file.
var ErrUnknownFormat = errors.New("format not recognized (expected YAML or JSON)")

type decoder struct {
	name string
	exts []string
	fn   func([]byte, any) error
}

var decoders = []decoder{
	{name: "yaml", exts: []string{".yaml", ".yml"}, fn: yaml.Unmarshal},
	{name: "json", exts: []string{".json"}, fn: json.Unmarshal},
}

// ReadFile reads path and decodes it into out.
func ReadFile(path string, out any) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return errors.New("file path is empty")
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	return Decode(raw, filepath.Ext(path), out)
}

// Decode unmarshals data into out with the decoder registered for ext. An
// empty ext tries every decoder in order; an unknown one fails.
func Decode(data []byte, ext string, out any) error {
	ext = strings.ToLower(strings.TrimSpace(ext))

	var errs []error
	for _, d := range decoders {
		if ext != "" && !slices.Contains(d.exts, ext) {
			continue
		}
		err := d.fn(data, out)
		if err == nil {
			return nil
		}
		errs = append(errs, fmt.Errorf("decode %s: %w", d.name, err))
	}
	return errors.Join(append([]error{ErrUnknownFormat}, errs...)...)
}
