// Package assignment fills the human-readable assignment template with the
// values of a variant bundle.
package assignment

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/dattu/lab_variants/pkg/storage"
	"github.com/dattu/lab_variants/pkg/variant"
)

// ErrMissingTemplate reports that the template document does not exist.
var ErrMissingTemplate = errors.New("assignment: template not found")

// Render replaces the named {{PLACEHOLDER}} tokens of tmpl with values from
// b. Substitution is a single pass, so values containing placeholder text
// are never expanded again. Unknown placeholders are left untouched.
func Render(tmpl string, b *variant.Bundle) string {
	return strings.NewReplacer(pairs(b)...).Replace(tmpl)
}

func pairs(b *variant.Bundle) []string {
	s, p, o := b.Shapes, b.Payments, b.Observer
	kv := []string{
		"{{STUDENT_ID}}", b.StudentID,

		"{{CIRCLE_RADIUS}}", num(s.Circle.Radius),
		"{{CIRCLE_EXPECTED_AREA}}", num(s.Circle.ExpectedArea),
		"{{CIRCLE_EXPECTED_PERIMETER}}", num(s.Circle.ExpectedPerimeter),

		"{{RECTANGLE_WIDTH}}", num(s.Rectangle.Width),
		"{{RECTANGLE_HEIGHT}}", num(s.Rectangle.Height),
		"{{RECTANGLE_EXPECTED_AREA}}", num(s.Rectangle.ExpectedArea),
		"{{RECTANGLE_EXPECTED_PERIMETER}}", num(s.Rectangle.ExpectedPerimeter),

		"{{SQUARE_SIDE}}", num(s.Square.Side),
		"{{SQUARE_EXPECTED_AREA}}", num(s.Square.ExpectedArea),

		"{{TRIANGLE_SIDE_A}}", num(s.Triangle.SideA),
		"{{TRIANGLE_SIDE_B}}", num(s.Triangle.SideB),
		"{{TRIANGLE_SIDE_C}}", num(s.Triangle.SideC),
		"{{TRIANGLE_EXPECTED_AREA}}", num(s.Triangle.ExpectedArea),
		"{{TRIANGLE_EXPECTED_PERIMETER}}", num(s.Triangle.ExpectedPerimeter),

		"{{CREDIT_CARD_FEE_PERCENT}}", num(p.CreditCardFeePercent),
		"{{PAYPAL_FEE_PERCENT}}", num(p.PayPalFeePercent),
		"{{CRYPTO_DISCOUNT_PERCENT}}", num(p.CryptoDiscountPercent),
		"{{EXPECTED_CREDIT_CARD_1}}", at(p.ExpectedCreditCard, 0),
		"{{EXPECTED_PAYPAL_2}}", at(p.ExpectedPayPal, 1),
		"{{EXPECTED_CRYPTO_3}}", at(p.ExpectedCrypto, 2),

		"{{EVENT_TYPES}}", quoted(o.EventTypes),
		"{{EVENT_TYPE_1}}", pick(o.EventTypes, 0, "event1"),
		"{{EVENT_TYPE_2}}", pick(o.EventTypes, 1, "event2"),
		"{{TEST_PAYLOAD_1}}", compact(o.TestPayloads.Message),
		"{{TEST_PAYLOAD_2}}", compact(o.TestPayloads.Value),
	}
	for i := 0; i < 3; i++ {
		kv = append(kv, fmt.Sprintf("{{PAYMENT_AMOUNT_%d}}", i+1), at(p.Amounts, i))
	}
	return kv
}

// num prints a float in its shortest form, always keeping one fractional
// digit so whole values read as 5.0 rather than 5.
func num(f float64) string {
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.ContainsRune(s, '.') {
		s += ".0"
	}
	return s
}

func at(xs []float64, i int) string {
	if i >= len(xs) {
		return ""
	}
	return num(xs[i])
}

func pick(xs []string, i int, fallback string) string {
	if i >= len(xs) {
		return fallback
	}
	return xs[i]
}

func quoted(xs []string) string {
	q := make([]string, len(xs))
	for i, x := range xs {
		q[i] = "`" + x + "`"
	}
	return strings.Join(q, ", ")
}

func compact(v any) string {
	raw, err := json.Marshal(v)
	if err != nil {
		return "{}"
	}
	return string(raw)
}

// Fill reads the artifact and template, renders, and writes output. A
// missing artifact returns storage.ErrMissingArtifact and a missing template
// returns ErrMissingTemplate; in both cases output is left untouched.
func Fill(artifactPath, templatePath, outputPath string) error {
	b, err := storage.Load(artifactPath)
	if err != nil {
		return err
	}
	tmpl, err := os.ReadFile(templatePath)
	if errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%w: %s", ErrMissingTemplate, templatePath)
	}
	if err != nil {
		return err
	}
	return storage.AtomicWrite(outputPath, []byte(Render(string(tmpl), b)), 0o644)
}
