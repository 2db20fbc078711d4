// pkg/variant/generate.go
package variant

import (
	"errors"
	"math"
	"strings"

	"github.com/dattu/lab_variants/pkg/fingerprint"
)

// ErrInvalidInput is returned for an identity that is empty after trimming.
var ErrInvalidInput = errors.New("variant: student id cannot be empty")

// Digest byte index of every derived field. Each field owns its index so a
// range change never shifts another field.
const (
	idxCircleRadius = iota
	idxRectWidth
	idxRectHeight
	idxSquareSide
	idxTriangleA
	idxTriangleB
	idxTriangleC
	idxAmount1
	idxAmount2
	idxAmount3
	idxCreditCardFee
	idxPayPalFee
	idxCryptoDiscount
	idxEventFirst // 13..16, one per draw
	_
	_
	_
	idxEmitCount1
	idxEmitCount2
	idxEmitCount3
	idxPayloadID
	idxPayloadValue
	idxPayloadActive
)

const (
	eventDraws       = 4
	placeholderEvent = "custom_event"
	shapeDecimals    = 4
	moneyDecimals    = 2
)

// EventPool is the ordered candidate pool for observer event names.
var EventPool = []string{
	"user_login", "user_logout", "data_update", "notification",
	"error", "warning", "info", "debug", "purchase", "refund",
	"click", "hover", "submit", "load", "unload", "resize",
}

// Generate derives the bundle for identity. The result depends only on
// identity; GeneratedAt is left unset.
func Generate(identity string) (*Bundle, error) {
	if strings.TrimSpace(identity) == "" {
		return nil, ErrInvalidInput
	}
	fp := fingerprint.New(identity)

	return &Bundle{
		StudentID:   identity,
		Lab:         Lab,
		Shapes:      deriveShapes(fp),
		Payments:    derivePayments(fp),
		Observer:    deriveObserver(fp, identity),
		Composition: Catalog(),
	}, nil
}

func deriveShapes(fp *fingerprint.Fingerprint) ShapeTests {
	r := fp.Float(idxCircleRadius, 3.0, 15.0, 2)
	w := fp.Float(idxRectWidth, 2.0, 12.0, 2)
	h := fp.Float(idxRectHeight, 2.0, 10.0, 2)
	s := fp.Float(idxSquareSide, 2.0, 10.0, 2)

	return ShapeTests{
		Circle: Circle{
			Radius:            r,
			ExpectedArea:      fingerprint.Round(math.Pi*r*r, shapeDecimals),
			ExpectedPerimeter: fingerprint.Round(2*math.Pi*r, shapeDecimals),
		},
		Rectangle: Rectangle{
			Width:             w,
			Height:            h,
			ExpectedArea:      fingerprint.Round(w*h, shapeDecimals),
			ExpectedPerimeter: fingerprint.Round(2*(w+h), shapeDecimals),
		},
		Square: Square{
			Side:              s,
			ExpectedArea:      fingerprint.Round(s*s, shapeDecimals),
			ExpectedPerimeter: fingerprint.Round(4*s, shapeDecimals),
		},
		Triangle: NewTriangle(
			fp.Float(idxTriangleA, 3.0, 8.0, 2),
			fp.Float(idxTriangleB, 4.0, 9.0, 2),
			fp.Float(idxTriangleC, 5.0, 10.0, 2),
		),
	}
}

// NewTriangle repairs the sides of (a, b, c) and fills in the expected
// area (Heron) and perimeter.
func NewTriangle(a, b, c float64) Triangle {
	a, b, c = RepairTriangle(a, b, c)
	return Triangle{
		SideA:             a,
		SideB:             b,
		SideC:             c,
		ExpectedArea:      fingerprint.Round(HeronArea(a, b, c), shapeDecimals),
		ExpectedPerimeter: fingerprint.Round(a+b+c, shapeDecimals),
	}
}

// RepairTriangle checks a+b>c, a+c>b and b+c>a in that order and shrinks the
// offending side of each violated check to the sum of the other two minus
// 0.5. Checks are applied once each; an earlier check is not revisited after
// a later repair.
func RepairTriangle(a, b, c float64) (float64, float64, float64) {
	if a+b <= c {
		c = fingerprint.Round(a+b-0.5, 2)
	}
	if a+c <= b {
		b = fingerprint.Round(a+c-0.5, 2)
	}
	if b+c <= a {
		a = fingerprint.Round(b+c-0.5, 2)
	}
	return a, b, c
}

// HeronArea computes the area from the semi-perimeter. A degenerate or
// invalid triangle yields 0 rather than NaN.
func HeronArea(a, b, c float64) float64 {
	semi := (a + b + c) / 2
	sq := semi * (semi - a) * (semi - b) * (semi - c)
	if sq <= 0 {
		return 0
	}
	return math.Sqrt(sq)
}

func derivePayments(fp *fingerprint.Fingerprint) PaymentTests {
	p := PaymentTests{
		Amounts: []float64{
			fp.Float(idxAmount1, 10.0, 100.0, 2),
			fp.Float(idxAmount2, 50.0, 500.0, 2),
			fp.Float(idxAmount3, 100.0, 1000.0, 2),
		},
		CreditCardFeePercent:  fp.Float(idxCreditCardFee, 2.0, 4.0, 1),
		PayPalFeePercent:      fp.Float(idxPayPalFee, 2.5, 3.5, 1),
		CryptoDiscountPercent: fp.Float(idxCryptoDiscount, 1.0, 5.0, 1),
	}
	p.ExpectedCreditCard = WithFee(p.Amounts, p.CreditCardFeePercent)
	p.ExpectedPayPal = WithFee(p.Amounts, p.PayPalFeePercent)
	p.ExpectedCrypto = WithDiscount(p.Amounts, p.CryptoDiscountPercent)
	return p
}

// WithFee returns round(amount*(1+percent/100), 2) for every amount.
func WithFee(amounts []float64, percent float64) []float64 {
	out := make([]float64, len(amounts))
	for i, amt := range amounts {
		out[i] = fingerprint.Round(amt*(1+percent/100), moneyDecimals)
	}
	return out
}

// WithDiscount returns round(amount*(1-percent/100), 2) for every amount.
func WithDiscount(amounts []float64, percent float64) []float64 {
	out := make([]float64, len(amounts))
	for i, amt := range amounts {
		out[i] = fingerprint.Round(amt*(1-percent/100), moneyDecimals)
	}
	return out
}

func deriveObserver(fp *fingerprint.Fingerprint, identity string) ObserverTests {
	return ObserverTests{
		EventTypes: SelectEvents(fp, EventPool),
		EmitCounts: []int{
			fp.Value(idxEmitCount1, 1, 5),
			fp.Value(idxEmitCount2, 2, 6),
			fp.Value(idxEmitCount3, 1, 4),
		},
		TestPayloads: Payloads{
			Message: MessagePayload{
				ID:      fp.Value(idxPayloadID, 100, 999),
				Message: "test_" + prefix(identity, 8),
			},
			Value: ValuePayload{
				Value:  fp.Float(idxPayloadValue, 1.0, 100.0, 2),
				Active: fp.Value(idxPayloadActive, 0, 1) == 1,
			},
		},
	}
}

// SelectEvents draws four names from pool. A draw that repeats an earlier
// pick is replaced by the first unpicked name in pool order. If fewer than
// four names could be picked the result is padded with a placeholder.
func SelectEvents(fp *fingerprint.Fingerprint, pool []string) []string {
	selected := make([]string, 0, eventDraws)
	seen := make(map[string]bool, eventDraws)
	for i := 0; i < eventDraws && len(pool) > 0; i++ {
		name := pool[fp.Value(idxEventFirst+i, 0, len(pool)-1)]
		if seen[name] {
			name = ""
			for _, e := range pool {
				if !seen[e] {
					name = e
					break
				}
			}
			if name == "" {
				continue
			}
		}
		seen[name] = true
		selected = append(selected, name)
	}
	for len(selected) < eventDraws {
		selected = append(selected, placeholderEvent)
	}
	return selected
}

// prefix returns the first n characters (runes) of s.
func prefix(s string, n int) string {
	r := []rune(s)
	if len(r) > n {
		r = r[:n]
	}
	return string(r)
}
