// Package fixtures exposes a variant bundle to test suites as named
// values, falling back to the built-in default bundle when no artifact has
// been generated.
package fixtures

import (
	"errors"
	"log"
	"math"
	"testing"

	"github.com/dattu/lab_variants/pkg/storage"
	"github.com/dattu/lab_variants/pkg/variant"
)

// DefaultTolerance is the absolute tolerance for float comparisons.
const DefaultTolerance = 0.01

type Fixtures struct {
	bundle   *variant.Bundle
	fallback bool
}

// Load reads the artifact at path. A missing artifact is not an error: the
// default bundle is used and the fallback is logged. A malformed artifact
// is an error.
func Load(path string) (*Fixtures, error) {
	b, err := storage.Load(path)
	switch {
	case errors.Is(err, storage.ErrMissingArtifact):
		log.Printf("No variant config found at %s, using default values", path)
		return &Fixtures{bundle: variant.Default(), fallback: true}, nil
	case err != nil:
		return nil, err
	}
	log.Printf("Loaded variant config for student: %s", b.StudentID)
	return &Fixtures{bundle: b}, nil
}

// New wraps an in-memory bundle.
func New(b *variant.Bundle) *Fixtures { return &Fixtures{bundle: b} }

// Bundle returns the complete variant bundle.
func (f *Fixtures) Bundle() *variant.Bundle { return f.bundle }

// IsDefault reports whether the built-in default bundle is in use.
func (f *Fixtures) IsDefault() bool { return f.fallback }

func (f *Fixtures) StudentID() string { return f.bundle.StudentID }

func (f *Fixtures) Circle() variant.Circle       { return f.bundle.Shapes.Circle }
func (f *Fixtures) Rectangle() variant.Rectangle { return f.bundle.Shapes.Rectangle }
func (f *Fixtures) Square() variant.Square       { return f.bundle.Shapes.Square }
func (f *Fixtures) Triangle() variant.Triangle   { return f.bundle.Shapes.Triangle }
func (f *Fixtures) Shapes() variant.ShapeTests   { return f.bundle.Shapes }

func (f *Fixtures) Payments() variant.PaymentTests { return f.bundle.Payments }
func (f *Fixtures) PaymentAmounts() []float64      { return f.bundle.Payments.Amounts }

// PaymentFees is keyed credit_card, paypal and crypto_discount.
func (f *Fixtures) PaymentFees() map[string]float64 {
	p := f.bundle.Payments
	return map[string]float64{
		"credit_card":     p.CreditCardFeePercent,
		"paypal":          p.PayPalFeePercent,
		"crypto_discount": p.CryptoDiscountPercent,
	}
}

// ExpectedPayments is keyed credit_card, paypal and crypto.
func (f *Fixtures) ExpectedPayments() map[string][]float64 {
	p := f.bundle.Payments
	return map[string][]float64{
		"credit_card": p.ExpectedCreditCard,
		"paypal":      p.ExpectedPayPal,
		"crypto":      p.ExpectedCrypto,
	}
}

func (f *Fixtures) Observer() variant.ObserverTests { return f.bundle.Observer }
func (f *Fixtures) EventTypes() []string            { return f.bundle.Observer.EventTypes }
func (f *Fixtures) EmitCounts() []int               { return f.bundle.Observer.EmitCounts }
func (f *Fixtures) TestPayloads() variant.Payloads  { return f.bundle.Observer.TestPayloads }

func (f *Fixtures) Composition() variant.CompositionTests { return f.bundle.Composition }
func (f *Fixtures) VehicleTypes() []string                { return f.bundle.Composition.VehicleTypes }
func (f *Fixtures) VehicleFeatures() []string             { return f.bundle.Composition.Features }

func (f *Fixtures) Tolerance() float64 { return DefaultTolerance }

// AssertFloatEqual fails t unless actual is strictly within the tolerance
// of expected.
func (f *Fixtures) AssertFloatEqual(t testing.TB, actual, expected float64, msg string) {
	t.Helper()
	if math.Abs(actual-expected) >= f.Tolerance() {
		t.Errorf("%s: expected %v, got %v (tolerance: %v)", msg, expected, actual, f.Tolerance())
	}
}
