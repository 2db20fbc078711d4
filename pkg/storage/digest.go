package storage

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/gowebpki/jcs"

	"github.com/dattu/lab_variants/pkg/variant"
)

// ContentDigest returns the hex SHA-256 of the RFC 8785 canonical JSON of b
// with its generation stamp cleared. Bundles that differ only in
// GeneratedAt share a digest.
func ContentDigest(b *variant.Bundle) (string, error) {
	clone := *b
	clone.GeneratedAt = nil

	raw, err := json.Marshal(&clone)
	if err != nil {
		return "", fmt.Errorf("encode variant: %w", err)
	}
	canonical, err := jcs.Transform(raw)
	if err != nil {
		return "", fmt.Errorf("canonicalize variant: %w", err)
	}
	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:]), nil
}
