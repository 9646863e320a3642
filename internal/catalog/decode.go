package catalog

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

//go:embed schema.json
var schemaJSON []byte

// Schema returns the JSON Schema catalog documents are validated against.
func Schema() []byte {
	return bytes.Clone(schemaJSON)
}

// Format is the encoding of a catalog document.
type Format string

// Supported document formats.
const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFromPath picks a format from a file extension, defaulting to JSON.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

var compiledSchema = sync.OnceValues(func() (*gojsonschema.Schema, error) {
	return gojsonschema.NewSchema(gojsonschema.NewBytesLoader(schemaJSON))
})

// ValidationError lists every schema violation of a rejected document.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", ErrMalformed, strings.Join(e.Problems, "; "))
}

// Unwrap lets errors.Is match ErrMalformed.
func (e *ValidationError) Unwrap() error {
	return ErrMalformed
}

// Validate checks a JSON catalog document against the embedded schema.
func Validate(doc []byte) error {
	schema, err := compiledSchema()
	if err != nil {
		return fmt.Errorf("compile catalog schema: %w", err)
	}

	result, err := schema.Validate(gojsonschema.NewBytesLoader(doc))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if result.Valid() {
		return nil
	}

	problems := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		problems = append(problems, e.String())
	}
	return &ValidationError{Problems: problems}
}

// Decode validates and decodes a catalog document.
func Decode(data []byte, format Format) (*Catalog, error) {
	doc, err := DecodeDocument(data, format)
	if err != nil {
		return nil, err
	}
	return FromDocument(doc)
}

// DecodeDocument validates and decodes a catalog document without building
// the lookup indexes.
func DecodeDocument(data []byte, format Format) (Document, error) {
	raw, err := normalize(data, format)
	if err != nil {
		return Document{}, err
	}

	if err := Validate(raw); err != nil {
		return Document{}, err
	}

	var doc Document
	dec := json.NewDecoder(bytes.NewReader(raw))
	if err := dec.Decode(&doc); err != nil {
		return Document{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return doc, nil
}

// normalize converts YAML documents to JSON so both formats share one
// validation path.
func normalize(data []byte, format Format) ([]byte, error) {
	if format != FormatYAML {
		return data, nil
	}

	var v any
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	out, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return out, nil
}
