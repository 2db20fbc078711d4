// pkg/fingerprint/fingerprint.go
package fingerprint

import (
	"crypto/sha256"
	"strconv"
)

// Fingerprint holds the SHA-256 digest of an identity and slices it into
// bounded fixture values.
type Fingerprint struct {
	digest [sha256.Size]byte
}

// New hashes the UTF-8 bytes of identity.
func New(identity string) *Fingerprint {
	return &Fingerprint{digest: sha256.Sum256([]byte(identity))}
}

// Digest returns a copy of the underlying digest.
func (f *Fingerprint) Digest() []byte {
	out := make([]byte, len(f.digest))
	copy(out, f.digest[:])
	return out
}

// byteAt wraps index around the digest length.
func (f *Fingerprint) byteAt(index int) byte {
	n := len(f.digest)
	i := index % n
	if i < 0 {
		i += n
	}
	return f.digest[i]
}

// Value maps the byte at index onto [min, max] by modular reduction.
func (f *Fingerprint) Value(index, min, max int) int {
	return min + int(f.byteAt(index))%(max-min+1)
}

// Float maps the byte at index linearly onto [min, max] over the byte range
// 0..255 and rounds the result to decimals places.
func (f *Fingerprint) Float(index int, min, max float64, decimals int) float64 {
	raw := min + (float64(f.byteAt(index))/255)*(max-min)
	return Round(raw, decimals)
}

// Round rounds x to decimals places using the exact decimal value of x,
// so that ties on exactly representable halves go to the even digit.
func Round(x float64, decimals int) float64 {
	r, err := strconv.ParseFloat(strconv.FormatFloat(x, 'f', decimals, 64), 64)
	if err != nil {
		return x
	}
	return r
}
