// pkg/storage/artifact.go
package storage

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/dattu/lab_variants/pkg/variant"
)

// DefaultArtifact is the well-known artifact name at the project root.
const DefaultArtifact = ".variant_config.json"

// ErrMissingArtifact reports that no artifact exists at the requested path.
var ErrMissingArtifact = errors.New("storage: variant artifact not found")

const schemaURL = "https://lab-variants.local/variant.schema.json"

//go:embed schema/variant.schema.json
var schemaJSON string

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

func compiledSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		c := jsonschema.NewCompiler()
		c.Draft = jsonschema.Draft2020
		if err := c.AddResource(schemaURL, bytes.NewReader([]byte(schemaJSON))); err != nil {
			schemaErr = fmt.Errorf("artifact schema load failed: %w", err)
			return
		}
		schema, schemaErr = c.Compile(schemaURL)
	})
	return schema, schemaErr
}

// Save stamps b with the current UTC time and overwrites destination with
// its indented JSON encoding.
func Save(b *variant.Bundle, destination string) error {
	return SaveAt(b, destination, time.Now())
}

// SaveAt is Save with an explicit stamp.
func SaveAt(b *variant.Bundle, destination string, now time.Time) error {
	stamp := now.UTC()
	b.GeneratedAt = &stamp

	data, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return fmt.Errorf("encode variant: %w", err)
	}
	if err := AtomicWrite(destination, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", destination, err)
	}
	return nil
}

// Load reads and validates the artifact at path. A missing file yields an
// error wrapping ErrMissingArtifact.
func Load(path string) (*variant.Bundle, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrMissingArtifact, path)
	}
	if err != nil {
		return nil, err
	}
	return Decode(data)
}

// Decode validates data against the artifact schema and decodes it.
func Decode(data []byte) (*variant.Bundle, error) {
	if err := Validate(data); err != nil {
		return nil, err
	}
	var b variant.Bundle
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("decode variant: %w", err)
	}
	return &b, nil
}

// Validate checks raw artifact JSON against the embedded schema.
func Validate(data []byte) error {
	s, err := compiledSchema()
	if err != nil {
		return err
	}
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("decode variant: %w", err)
	}
	if err := s.Validate(doc); err != nil {
		return fmt.Errorf("invalid variant artifact: %w", err)
	}
	return nil
}
