// Package variant derives reproducible per-student lab fixtures from a
// student identifier.
package variant

import (
	"encoding/json"
	"fmt"
	"time"
)

// Lab is the label attached to every bundle.
const Lab = "lab04-oop-design"

// Bundle is the full set of fixtures for one student. It is created once by
// Generate and never mutated by consumers.
type Bundle struct {
	StudentID   string           `json:"student_id"`
	Lab         string           `json:"lab"`
	Shapes      ShapeTests       `json:"shape_tests"`
	Payments    PaymentTests     `json:"payment_tests"`
	Observer    ObserverTests    `json:"observer_tests"`
	Composition CompositionTests `json:"composition_tests"`
	// GeneratedAt is stamped at save time; Generate leaves it nil.
	GeneratedAt *time.Time `json:"generated_at"`
}

type Circle struct {
	Radius            float64 `json:"radius"`
	ExpectedArea      float64 `json:"expected_area"`
	ExpectedPerimeter float64 `json:"expected_perimeter"`
}

type Rectangle struct {
	Width             float64 `json:"width"`
	Height            float64 `json:"height"`
	ExpectedArea      float64 `json:"expected_area"`
	ExpectedPerimeter float64 `json:"expected_perimeter"`
}

type Square struct {
	Side              float64 `json:"side"`
	ExpectedArea      float64 `json:"expected_area"`
	ExpectedPerimeter float64 `json:"expected_perimeter"`
}

type Triangle struct {
	SideA             float64 `json:"side_a"`
	SideB             float64 `json:"side_b"`
	SideC             float64 `json:"side_c"`
	ExpectedArea      float64 `json:"expected_area"`
	ExpectedPerimeter float64 `json:"expected_perimeter"`
}

type ShapeTests struct {
	Circle    Circle    `json:"circle"`
	Rectangle Rectangle `json:"rectangle"`
	Square    Square    `json:"square"`
	Triangle  Triangle  `json:"triangle"`
}

// PaymentTests holds three amounts, three rates and the expected total of
// every amount under every rate.
type PaymentTests struct {
	Amounts               []float64 `json:"amounts"`
	CreditCardFeePercent  float64   `json:"credit_card_fee_percent"`
	PayPalFeePercent      float64   `json:"paypal_fee_percent"`
	CryptoDiscountPercent float64   `json:"crypto_discount_percent"`
	ExpectedCreditCard    []float64 `json:"expected_credit_card"`
	ExpectedPayPal        []float64 `json:"expected_paypal"`
	ExpectedCrypto        []float64 `json:"expected_crypto"`
}

type ObserverTests struct {
	EventTypes   []string `json:"event_types"`
	EmitCounts   []int    `json:"emit_counts"`
	TestPayloads Payloads `json:"test_payloads"`
}

// MessagePayload is the first illustrative callback payload.
type MessagePayload struct {
	ID      int    `json:"id"`
	Message string `json:"message"`
}

// ValuePayload is the second illustrative callback payload.
type ValuePayload struct {
	Value  float64 `json:"value"`
	Active bool    `json:"active"`
}

// Payloads serializes as a two-element JSON array of differently shaped
// objects.
type Payloads struct {
	Message MessagePayload
	Value   ValuePayload
}

func (p Payloads) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{p.Message, p.Value})
}

func (p *Payloads) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw) != 2 {
		return fmt.Errorf("test_payloads: expected 2 entries, got %d", len(raw))
	}
	if err := json.Unmarshal(raw[0], &p.Message); err != nil {
		return fmt.Errorf("test_payloads[0]: %w", err)
	}
	if err := json.Unmarshal(raw[1], &p.Value); err != nil {
		return fmt.Errorf("test_payloads[1]: %w", err)
	}
	return nil
}

type Combination struct {
	Vehicle  string   `json:"vehicle"`
	Features []string `json:"features"`
}

type CompositionTests struct {
	VehicleTypes     []string      `json:"vehicle_types"`
	Features         []string      `json:"features"`
	TestCombinations []Combination `json:"test_combinations"`
}
