package catalog

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// FormatVersion is the catalog document version this build reads and writes.
const FormatVersion = 1

// ErrUnsupportedVersion is returned for catalog documents of another version.
var ErrUnsupportedVersion = errors.New("unsupported catalog version")

// Document is the YAML catalog file layout. A file may hold several
// documents separated by "---".
type Document struct {
	Version int     `yaml:"version"`
	Source  string  `yaml:"source,omitempty"`
	Classes []Class `yaml:"classes"`
}

// ParseYAML decodes every document in data and returns the validated classes
// in file order.
func ParseYAML(data []byte) ([]Class, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))

	var classes []Class
	for n := 1; ; n++ {
		var doc Document
		err := dec.Decode(&doc)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parsing document %d: %w", n, err)
		}
		if doc.Version != FormatVersion {
			return nil, fmt.Errorf("document %d: %w %d (want %d)", n, ErrUnsupportedVersion, doc.Version, FormatVersion)
		}
		for i := range doc.Classes {
			if err := doc.Classes[i].Validate(); err != nil {
				return nil, fmt.Errorf("document %d, class %d: %w", n, i+1, err)
			}
		}
		classes = append(classes, doc.Classes...)
	}
	return classes, nil
}

// ReadYAML reads and parses a YAML catalog file.
func ReadYAML(path string) ([]Class, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog: %w", err)
	}
	return ParseYAML(data)
}

// MarshalYAML encodes classes as a single catalog document.
func MarshalYAML(classes []Class, source string) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	doc := Document{Version: FormatVersion, Source: source, Classes: classes}
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("encoding catalog: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encoding catalog: %w", err)
	}
	return buf.Bytes(), nil
}
